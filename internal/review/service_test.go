// AngelaMos | 2026
// service_test.go

package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/reviewdb/internal/core"
	"github.com/carterperez-dev/reviewdb/internal/permission"
)

type fakeRepository struct {
	titles   map[int64]bool
	reviews  map[int64]*Review
	comments map[int64]*Comment
	nextID   int64
}

func newFakeRepository(titleIDs ...int64) *fakeRepository {
	f := &fakeRepository{
		titles:   make(map[int64]bool),
		reviews:  make(map[int64]*Review),
		comments: make(map[int64]*Comment),
	}
	for _, id := range titleIDs {
		f.titles[id] = true
	}
	return f
}

func (f *fakeRepository) TitleExists(
	_ context.Context,
	titleID int64,
) (bool, error) {
	return f.titles[titleID], nil
}

func (f *fakeRepository) CreateReview(_ context.Context, rv *Review) error {
	for _, existing := range f.reviews {
		if existing.TitleID == rv.TitleID &&
			existing.AuthorID == rv.AuthorID {
			return core.ErrDuplicateKey
		}
	}
	f.nextID++
	rv.ID = f.nextID
	rv.CreatedAt = time.Now()
	stored := *rv
	f.reviews[rv.ID] = &stored
	return nil
}

func (f *fakeRepository) GetReview(
	_ context.Context,
	titleID, reviewID int64,
) (*Review, error) {
	rv, ok := f.reviews[reviewID]
	if !ok || rv.TitleID != titleID {
		return nil, core.ErrNotFound
	}
	copied := *rv
	return &copied, nil
}

func (f *fakeRepository) UpdateReview(_ context.Context, rv *Review) error {
	stored, ok := f.reviews[rv.ID]
	if !ok {
		return core.ErrNotFound
	}
	*stored = *rv
	return nil
}

func (f *fakeRepository) DeleteReview(_ context.Context, id int64) error {
	if _, ok := f.reviews[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeRepository) ListReviews(
	_ context.Context,
	titleID int64,
	_ ListParams,
) ([]Review, int, error) {
	var out []Review
	for _, rv := range f.reviews {
		if rv.TitleID == titleID {
			out = append(out, *rv)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepository) CreateComment(_ context.Context, c *Comment) error {
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = time.Now()
	stored := *c
	f.comments[c.ID] = &stored
	return nil
}

func (f *fakeRepository) GetComment(
	_ context.Context,
	reviewID, commentID int64,
) (*Comment, error) {
	c, ok := f.comments[commentID]
	if !ok || c.ReviewID != reviewID {
		return nil, core.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeRepository) UpdateComment(_ context.Context, c *Comment) error {
	stored, ok := f.comments[c.ID]
	if !ok {
		return core.ErrNotFound
	}
	*stored = *c
	return nil
}

func (f *fakeRepository) DeleteComment(_ context.Context, id int64) error {
	if _, ok := f.comments[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.comments, id)
	return nil
}

func (f *fakeRepository) ListComments(
	_ context.Context,
	reviewID int64,
	_ ListParams,
) ([]Comment, int, error) {
	var out []Comment
	for _, c := range f.comments {
		if c.ReviewID == reviewID {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

func regular(id string) permission.Actor {
	return permission.Actor{
		ID:       id,
		Username: "u-" + id,
		Role:     permission.RoleUser,
	}
}

func moderator(id string) permission.Actor {
	return permission.Actor{
		ID:       id,
		Username: "m-" + id,
		Role:     permission.RoleModerator,
	}
}

func TestCreateReviewStampsAuthor(t *testing.T) {
	svc := NewService(newFakeRepository(1))

	rv, err := svc.CreateReview(
		context.Background(),
		regular("b"),
		1,
		CreateReviewRequest{Text: "great", Score: 8},
	)
	require.NoError(t, err)
	assert.Equal(t, "b", rv.AuthorID)
	assert.Equal(t, int64(1), rv.TitleID)
	assert.Equal(t, 8, rv.Score)
}

func TestCreateReviewUnknownTitle(t *testing.T) {
	svc := NewService(newFakeRepository(1))

	_, err := svc.CreateReview(
		context.Background(),
		regular("b"),
		42,
		CreateReviewRequest{Text: "great", Score: 8},
	)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCreateReviewDuplicatePerAuthor(t *testing.T) {
	svc := NewService(newFakeRepository(1))
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, regular("b"), 1,
		CreateReviewRequest{Text: "great", Score: 8})
	require.NoError(t, err)

	_, err = svc.CreateReview(ctx, regular("b"), 1,
		CreateReviewRequest{Text: "changed my mind", Score: 5})
	require.Error(t, err)

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	// Another actor is unaffected.
	_, err = svc.CreateReview(ctx, regular("c"), 1,
		CreateReviewRequest{Text: "fine", Score: 9})
	assert.NoError(t, err)
}

func TestGetReviewScopedToTitle(t *testing.T) {
	svc := NewService(newFakeRepository(1, 2))
	ctx := context.Background()

	rv, err := svc.CreateReview(ctx, regular("b"), 1,
		CreateReviewRequest{Text: "great", Score: 8})
	require.NoError(t, err)

	_, err = svc.GetReview(ctx, 1, rv.ID)
	assert.NoError(t, err)

	// Same review id through the wrong title reads as absent.
	_, err = svc.GetReview(ctx, 2, rv.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateReviewPermissions(t *testing.T) {
	svc := NewService(newFakeRepository(1))
	ctx := context.Background()

	rv, err := svc.CreateReview(ctx, regular("author"), 1,
		CreateReviewRequest{Text: "great", Score: 8})
	require.NoError(t, err)

	t.Run("author can edit", func(t *testing.T) {
		updated, err := svc.UpdateReview(ctx, regular("author"), 1, rv.ID,
			UpdateReviewRequest{Score: intPtr(6)})
		require.NoError(t, err)
		assert.Equal(t, 6, updated.Score)
	})

	t.Run("other regular cannot edit", func(t *testing.T) {
		_, err := svc.UpdateReview(ctx, regular("other"), 1, rv.ID,
			UpdateReviewRequest{Score: intPtr(1)})
		assert.ErrorIs(t, err, core.ErrForbidden)
	})

	t.Run("moderator can edit", func(t *testing.T) {
		updated, err := svc.UpdateReview(ctx, moderator("mod"), 1, rv.ID,
			UpdateReviewRequest{Text: strPtr("moderated")})
		require.NoError(t, err)
		assert.Equal(t, "moderated", updated.Text)
	})
}

func TestDeleteReviewPermissions(t *testing.T) {
	svc := NewService(newFakeRepository(1))
	ctx := context.Background()

	rv, err := svc.CreateReview(ctx, regular("author"), 1,
		CreateReviewRequest{Text: "great", Score: 8})
	require.NoError(t, err)

	err = svc.DeleteReview(ctx, regular("other"), 1, rv.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	err = svc.DeleteReview(ctx, moderator("mod"), 1, rv.ID)
	assert.NoError(t, err)
}

func TestCommentScopedToAncestorChain(t *testing.T) {
	svc := NewService(newFakeRepository(1, 2))
	ctx := context.Background()

	rv, err := svc.CreateReview(ctx, regular("author"), 1,
		CreateReviewRequest{Text: "great", Score: 8})
	require.NoError(t, err)

	c, err := svc.CreateComment(ctx, regular("commenter"), 1, rv.ID,
		CreateCommentRequest{Text: "agreed"})
	require.NoError(t, err)
	assert.Equal(t, "commenter", c.AuthorID)
	assert.Equal(t, rv.ID, c.ReviewID)

	// Reaching the comment through a mismatched title fails at the
	// review resolution step.
	_, err = svc.GetComment(ctx, 2, rv.ID, c.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.GetComment(ctx, 1, rv.ID, c.ID)
	assert.NoError(t, err)
}

func TestCommentCreateOnMissingReview(t *testing.T) {
	svc := NewService(newFakeRepository(1))

	_, err := svc.CreateComment(
		context.Background(),
		regular("commenter"),
		1,
		999,
		CreateCommentRequest{Text: "hello"},
	)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateCommentPermissions(t *testing.T) {
	svc := NewService(newFakeRepository(1))
	ctx := context.Background()

	rv, err := svc.CreateReview(ctx, regular("author"), 1,
		CreateReviewRequest{Text: "great", Score: 8})
	require.NoError(t, err)

	c, err := svc.CreateComment(ctx, regular("commenter"), 1, rv.ID,
		CreateCommentRequest{Text: "agreed"})
	require.NoError(t, err)

	_, err = svc.UpdateComment(ctx, regular("other"), 1, rv.ID, c.ID,
		UpdateCommentRequest{Text: "hijacked"})
	assert.ErrorIs(t, err, core.ErrForbidden)

	updated, err := svc.UpdateComment(ctx, regular("commenter"), 1, rv.ID,
		c.ID, UpdateCommentRequest{Text: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)
}

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }
