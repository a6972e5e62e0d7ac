package backendapi

import (
	"context"
	"strconv"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mrejesho/core/submission"
)

var _ submission.Gateway = (*Client)(nil)

type scheduledDTO struct {
	FeedbackID       int         `json:"feedbackId" validate:"required"`
	FeedbackGroupID  int         `json:"feedbackGroupId" validate:"required"`
	FeedbackTypeID   int         `json:"feedbackTypeId" validate:"required"`
	FeedbackTypeName string      `json:"feedbackTypeName"`
	CourseName       string      `json:"courseName"`
	ModuleName       null.String `json:"moduleName"`
	StaffName        null.String `json:"staffName"`
	Session          null.Int    `json:"session"`
	StartDate        null.String `json:"startDate"`
	EndDate          null.String `json:"endDate"`
}

type submittedAnswerDTO struct {
	QuestionID   int      `json:"questionId" validate:"required"`
	QuestionText string   `json:"questionText"`
	AnswerText   flexText `json:"answerText"`
}

type submittedFeedbackDTO struct {
	Answers []submittedAnswerDTO `json:"answers" validate:"required,dive"`
}

func (cl *Client) scheduled(ctx context.Context, c call, page, pageSize int) ([]submission.Scheduled, int, error) {
	var body pageBody
	c = c.params("page", strconv.Itoa(page), "pageSize", strconv.Itoa(pageSize))
	if err := cl.do(ctx, c, &body); err != nil {
		return nil, 0, err
	}
	var dtos []scheduledDTO
	if err := decodePage(c.endpoint, body, &dtos); err != nil {
		return nil, 0, err
	}
	items := make([]submission.Scheduled, 0, len(dtos))
	for _, dto := range dtos {
		items = append(items, submission.Scheduled{
			FeedbackID:       dto.FeedbackID,
			FeedbackGroupID:  dto.FeedbackGroupID,
			FeedbackTypeID:   dto.FeedbackTypeID,
			FeedbackTypeName: dto.FeedbackTypeName,
			CourseName:       dto.CourseName,
			ModuleName:       dto.ModuleName.String,
			StaffName:        dto.StaffName.String,
			Session:          dto.Session.Int,
			StartDate:        dto.StartDate.String,
			EndDate:          dto.EndDate.String,
		})
	}
	return items, body.TotalCount, nil
}

// ListPending lists a page of the feedback a student has yet to submit. page is 1-based.
func (cl *Client) ListPending(ctx context.Context, token, studentID string, page, pageSize int) ([]submission.Scheduled, int, error) {
	c := get("Feedback/GetScheduledFeedbackByStudent/{id}", pathf("Feedback", "GetScheduledFeedbackByStudent", studentID))
	return cl.scheduled(ctx, c.auth(token), page, pageSize)
}

// ListHistory lists a page of the feedback a student submitted. page is 1-based.
func (cl *Client) ListHistory(ctx context.Context, token, studentID string, page, pageSize int) ([]submission.Scheduled, int, error) {
	c := get("Feedback/GetSubmittedFeedbackHistory/{id}", pathf("Feedback", "GetSubmittedFeedbackHistory", studentID))
	return cl.scheduled(ctx, c.auth(token), page, pageSize)
}

func (cl *Client) SubmitAnswers(ctx context.Context, token string, s submission.Submission) error {
	c := post("QuestionAnswer/SubmitFeedbackAnswers", "QuestionAnswer/SubmitFeedbackAnswers", s)
	return cl.do(ctx, c.auth(token), nil)
}

func (cl *Client) ViewSubmission(ctx context.Context, token string, feedbackGroupID int, studentID string) ([]submission.SubmittedAnswer, error) {
	var dto submittedFeedbackDTO
	c := get(
		"Feedback/GetSubmittedFeedbackDetailsForView/{groupId}/{studentId}",
		pathf("Feedback", "GetSubmittedFeedbackDetailsForView", feedbackGroupID, studentID),
	)
	if err := cl.do(ctx, c.auth(token), &dto); err != nil {
		return nil, err
	}
	answers := make([]submission.SubmittedAnswer, 0, len(dto.Answers))
	for _, a := range dto.Answers {
		answers = append(answers, submission.SubmittedAnswer{
			QuestionID:   a.QuestionID,
			QuestionText: a.QuestionText,
			AnswerText:   string(a.AnswerText),
		})
	}
	return answers, nil
}
