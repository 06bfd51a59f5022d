// AngelaMos | 2026
// service.go

package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/carterperez-dev/reviewdb/internal/core"
	"github.com/carterperez-dev/reviewdb/internal/permission"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// resolveTitle anchors the nested path: every review operation is
// scoped to an existing title, and an unknown title is a plain 404
// regardless of what the rest of the path says.
func (s *Service) resolveTitle(ctx context.Context, titleID int64) error {
	exists, err := s.repo.TitleExists(ctx, titleID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("resolve title: %w", core.ErrNotFound)
	}
	return nil
}

func (s *Service) ListReviews(
	ctx context.Context,
	titleID int64,
	params ListParams,
) ([]Review, int, error) {
	if err := s.resolveTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListReviews(ctx, titleID, params)
}

// CreateReview stamps the author from the verified actor and lets the
// unique index reject a second review by the same author atomically.
func (s *Service) CreateReview(
	ctx context.Context,
	actor permission.Actor,
	titleID int64,
	req CreateReviewRequest,
) (*Review, error) {
	if err := s.resolveTitle(ctx, titleID); err != nil {
		return nil, err
	}

	rv := &Review{
		TitleID:        titleID,
		AuthorID:       actor.ID,
		AuthorUsername: actor.Username,
		Text:           req.Text,
		Score:          req.Score,
	}

	if err := s.repo.CreateReview(ctx, rv); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ValidationError(
				"validation failed",
				map[string]string{
					"title": "you have already reviewed this title",
				},
			)
		}
		return nil, err
	}

	return rv, nil
}

func (s *Service) GetReview(
	ctx context.Context,
	titleID, reviewID int64,
) (*Review, error) {
	if err := s.resolveTitle(ctx, titleID); err != nil {
		return nil, err
	}
	return s.repo.GetReview(ctx, titleID, reviewID)
}

func (s *Service) UpdateReview(
	ctx context.Context,
	actor permission.Actor,
	titleID, reviewID int64,
	req UpdateReviewRequest,
) (*Review, error) {
	rv, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if !permission.AuthorModeratorAdminInstance(actor, "PATCH", rv.AuthorID) {
		return nil, fmt.Errorf("update review: %w", core.ErrForbidden)
	}

	if req.Text != nil {
		rv.Text = *req.Text
	}
	if req.Score != nil {
		rv.Score = *req.Score
	}

	if err := s.repo.UpdateReview(ctx, rv); err != nil {
		return nil, err
	}

	return rv, nil
}

func (s *Service) DeleteReview(
	ctx context.Context,
	actor permission.Actor,
	titleID, reviewID int64,
) error {
	rv, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return err
	}

	if !permission.AuthorModeratorAdminInstance(actor, "DELETE", rv.AuthorID) {
		return fmt.Errorf("delete review: %w", core.ErrForbidden)
	}

	return s.repo.DeleteReview(ctx, rv.ID)
}

// resolveReview anchors a comment operation. The review must belong to
// the title named in the path, checked jointly in one lookup.
func (s *Service) resolveReview(
	ctx context.Context,
	titleID, reviewID int64,
) (*Review, error) {
	if err := s.resolveTitle(ctx, titleID); err != nil {
		return nil, err
	}
	return s.repo.GetReview(ctx, titleID, reviewID)
}

func (s *Service) ListComments(
	ctx context.Context,
	titleID, reviewID int64,
	params ListParams,
) ([]Comment, int, error) {
	if _, err := s.resolveReview(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListComments(ctx, reviewID, params)
}

func (s *Service) CreateComment(
	ctx context.Context,
	actor permission.Actor,
	titleID, reviewID int64,
	req CreateCommentRequest,
) (*Comment, error) {
	parent, err := s.resolveReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	c := &Comment{
		ReviewID:       parent.ID,
		AuthorID:       actor.ID,
		AuthorUsername: actor.Username,
		Text:           req.Text,
	}

	if err := s.repo.CreateComment(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) GetComment(
	ctx context.Context,
	titleID, reviewID, commentID int64,
) (*Comment, error) {
	if _, err := s.resolveReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	return s.repo.GetComment(ctx, reviewID, commentID)
}

func (s *Service) UpdateComment(
	ctx context.Context,
	actor permission.Actor,
	titleID, reviewID, commentID int64,
	req UpdateCommentRequest,
) (*Comment, error) {
	c, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	if !permission.AuthorModeratorAdminInstance(actor, "PATCH", c.AuthorID) {
		return nil, fmt.Errorf("update comment: %w", core.ErrForbidden)
	}

	c.Text = req.Text

	if err := s.repo.UpdateComment(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) DeleteComment(
	ctx context.Context,
	actor permission.Actor,
	titleID, reviewID, commentID int64,
) error {
	c, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}

	if !permission.AuthorModeratorAdminInstance(actor, "DELETE", c.AuthorID) {
		return fmt.Errorf("delete comment: %w", core.ErrForbidden)
	}

	return s.repo.DeleteComment(ctx, c.ID)
}
