package backendapi

import (
	"context"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/roster"
)

var _ roster.Gateway = (*Client)(nil)

type studentDTO struct {
	RollNo    flexID `json:"student_rollno" validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (cl *Client) students(ctx context.Context, c call) ([]roster.Student, error) {
	var dtos []studentDTO
	if err := cl.do(ctx, c, &dtos); err != nil {
		return nil, err
	}
	students := make([]roster.Student, 0, len(dtos))
	for _, dto := range dtos {
		students = append(students, roster.Student{
			RollNo:    string(dto.RollNo),
			FirstName: dto.FirstName,
			LastName:  dto.LastName,
			Email:     core.CleanString(dto.Email, true /* lower */),
		})
	}
	return students, nil
}

func (cl *Client) ListSubmitted(ctx context.Context, token string, feedbackGroupID int) ([]roster.Student, error) {
	return cl.students(ctx, get("StudentApi/Submitted/{id}", pathf("StudentApi", "Submitted", feedbackGroupID)).auth(token))
}

func (cl *Client) ListNotSubmitted(ctx context.Context, token string, feedbackGroupID int) ([]roster.Student, error) {
	return cl.students(ctx, get("StudentApi/NotSubmitted/{id}", pathf("StudentApi", "NotSubmitted", feedbackGroupID)).auth(token))
}
