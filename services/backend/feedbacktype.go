package backendapi

import (
	"context"
	"strings"

	"github.com/trezcool/mrejesho/core/feedbacktype"
)

var _ feedbacktype.Gateway = (*Client)(nil)

type feedbackTypeSummaryDTO struct {
	ID          int    `json:"feedback_type_id" validate:"required"`
	Title       string `json:"feedback_type_title" validate:"required"`
	Description string `json:"feedback_type_description"`
	Group       string `json:"group" validate:"required"`
	IsStaff     bool   `json:"is_staff"`
	IsSession   bool   `json:"is_session"`
	Behaviour   bool   `json:"behaviour"`
}

type templateQuestionDTO struct {
	ID   int    `json:"questionId,omitempty"`
	Text string `json:"question" validate:"required"`
	Type string `json:"questionType" validate:"required"`
}

// feedbackTypeDTO is both the detail response and the create/update payload.
type feedbackTypeDTO struct {
	ID          int                   `json:"feedbackTypeId,omitempty"`
	Title       string                `json:"feedbackTypeTitle" validate:"required"`
	Description string                `json:"feedbackTypeDescription"`
	IsModule    bool                  `json:"isModule"`
	Group       string                `json:"group" validate:"required"`
	IsStaff     bool                  `json:"isStaff"`
	IsSession   bool                  `json:"isSession"`
	Behaviour   bool                  `json:"behaviour"`
	Questions   []templateQuestionDTO `json:"questions" validate:"dive"`
}

type questionDTO struct {
	ID   int    `json:"question_id" validate:"required"`
	Text string `json:"question" validate:"required"`
	Type string `json:"question_type" validate:"required"`
}

type editableResponse struct {
	IsEditable *bool `json:"isEditable" validate:"required"`
}

// wireGroup renders a group mode the way the backend stores it ("Single", "Multiple").
func wireGroup(gm feedbacktype.GroupMode) string {
	s := string(gm)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (cl *Client) feedbackTypeSummaries(ctx context.Context, c call) ([]feedbacktype.Summary, error) {
	var dtos []feedbackTypeSummaryDTO
	if err := cl.do(ctx, c, &dtos); err != nil {
		return nil, err
	}
	types := make([]feedbacktype.Summary, 0, len(dtos))
	for i, dto := range dtos {
		gm, err := feedbacktype.ParseGroupMode(dto.Group)
		if err != nil {
			return nil, &SchemaError{Endpoint: c.endpoint, Err: itemErr(i, err)}
		}
		types = append(types, feedbacktype.Summary{
			ID:          dto.ID,
			Title:       dto.Title,
			Description: dto.Description,
			Group:       gm,
			IsStaff:     dto.IsStaff,
			IsSession:   dto.IsSession,
			Behaviour:   dto.Behaviour,
		})
	}
	return types, nil
}

func (cl *Client) ListFeedbackTypes(ctx context.Context, token string) ([]feedbacktype.Summary, error) {
	return cl.feedbackTypeSummaries(ctx, get("FeedbackType/GetFeedbackType", "FeedbackType/GetFeedbackType").auth(token))
}

func (cl *Client) ListFeedbackTypesByGroup(ctx context.Context, token string, group feedbacktype.GroupMode) ([]feedbacktype.Summary, error) {
	return cl.feedbackTypeSummaries(ctx, get("FeedbackType/ByGroup/{group}", pathf("FeedbackType", "ByGroup", string(group))).auth(token))
}

func (cl *Client) GetFeedbackType(ctx context.Context, token string, id int) (feedbacktype.FeedbackType, error) {
	const endpoint = "FeedbackType/{id}"

	var dto feedbackTypeDTO
	if err := cl.do(ctx, get(endpoint, pathf("FeedbackType", id)).auth(token), &dto); err != nil {
		return feedbacktype.FeedbackType{}, err
	}
	gm, err := feedbacktype.ParseGroupMode(dto.Group)
	if err != nil {
		return feedbacktype.FeedbackType{}, &SchemaError{Endpoint: endpoint, Err: err}
	}
	ft := feedbacktype.FeedbackType{
		ID:          id,
		Title:       dto.Title,
		Description: dto.Description,
		IsModule:    dto.IsModule,
		Group:       gm,
		IsStaff:     dto.IsStaff,
		IsSession:   dto.IsSession,
		Behaviour:   dto.Behaviour,
		Questions:   make([]feedbacktype.Question, 0, len(dto.Questions)),
	}
	for i, q := range dto.Questions {
		qt, err := feedbacktype.ParseQuestionType(q.Type)
		if err != nil {
			return feedbacktype.FeedbackType{}, &SchemaError{Endpoint: endpoint, Err: itemErr(i, err)}
		}
		ft.Questions = append(ft.Questions, feedbacktype.Question{ID: q.ID, Text: q.Text, Type: qt})
	}
	return ft, nil
}

func (cl *Client) ListQuestions(ctx context.Context, token string, feedbackTypeID int) ([]feedbacktype.Question, error) {
	const endpoint = "QuestionAnswer/GetAllQuestions/{id}"

	var dtos []questionDTO
	if err := cl.do(ctx, get(endpoint, pathf("QuestionAnswer", "GetAllQuestions", feedbackTypeID)).auth(token), &dtos); err != nil {
		return nil, err
	}
	questions := make([]feedbacktype.Question, 0, len(dtos))
	for i, dto := range dtos {
		qt, err := feedbacktype.ParseQuestionType(dto.Type)
		if err != nil {
			return nil, &SchemaError{Endpoint: endpoint, Err: itemErr(i, err)}
		}
		questions = append(questions, feedbacktype.Question{ID: dto.ID, Text: dto.Text, Type: qt})
	}
	return questions, nil
}

func feedbackTypePayload(nft feedbacktype.NewFeedbackType) feedbackTypeDTO {
	dto := feedbackTypeDTO{
		Title:       nft.Title,
		Description: nft.Description,
		IsModule:    nft.IsModule,
		Group:       wireGroup(nft.Group),
		IsStaff:     nft.IsStaff,
		IsSession:   nft.IsSession,
		Behaviour:   nft.Behaviour,
		Questions:   make([]templateQuestionDTO, 0, len(nft.Questions)),
	}
	for _, q := range nft.Questions {
		dto.Questions = append(dto.Questions, templateQuestionDTO{Text: q.Text, Type: string(q.Type)})
	}
	return dto
}

func (cl *Client) CreateFeedbackType(ctx context.Context, token string, nft feedbacktype.NewFeedbackType) error {
	c := post("FeedbackType/CreateFeedbackType", "FeedbackType/CreateFeedbackType", feedbackTypePayload(nft))
	return cl.do(ctx, c.auth(token), nil)
}

func (cl *Client) UpdateFeedbackType(ctx context.Context, token string, id int, uft feedbacktype.UpdateFeedbackType) error {
	c := put("FeedbackType/{id}", pathf("FeedbackType", id), feedbackTypePayload(uft.NewFeedbackType))
	return cl.do(ctx, c.auth(token), nil)
}

func (cl *Client) DeleteFeedbackType(ctx context.Context, token string, id int) error {
	return cl.do(ctx, del("FeedbackType/{id}", pathf("FeedbackType", id)).auth(token), nil)
}

func (cl *Client) CheckFeedbackTypeEditable(ctx context.Context, token string, id int) (bool, error) {
	var res editableResponse
	c := get("FeedbackType/CheckEditable/{id}", pathf("FeedbackType", "CheckEditable", id)).auth(token)
	if err := cl.do(ctx, c, &res); err != nil {
		return false, err
	}
	return *res.IsEditable, nil
}
