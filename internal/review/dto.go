// AngelaMos | 2026
// dto.go

package review

import (
	"time"
)

type CreateReviewRequest struct {
	Text  string `json:"text"  validate:"required"`
	Score int    `json:"score" validate:"required,min=1,max=10"`
}

type UpdateReviewRequest struct {
	Text  *string `json:"text,omitempty"  validate:"omitempty,min=1"`
	Score *int    `json:"score,omitempty" validate:"omitempty,min=1,max=10"`
}

type CreateCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

type UpdateCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

type ReviewResponse struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"pub_date"`
}

type CommentResponse struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"pub_date"`
}

type ListParams struct {
	Page     int
	PageSize int
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToReviewResponse(rv *Review) ReviewResponse {
	return ReviewResponse{
		ID:        rv.ID,
		Author:    rv.AuthorUsername,
		Text:      rv.Text,
		Score:     rv.Score,
		CreatedAt: rv.CreatedAt,
	}
}

func ToReviewResponseList(reviews []Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, ToReviewResponse(&reviews[i]))
	}
	return out
}

func ToCommentResponse(c *Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		Author:    c.AuthorUsername,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

func ToCommentResponseList(comments []Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, ToCommentResponse(&comments[i]))
	}
	return out
}
