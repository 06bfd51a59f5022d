// AngelaMos | 2026
// service_test.go

package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/reviewdb/internal/core"
)

type fakeRepository struct {
	categories map[string]*Category
	genres     map[string]*Genre
	titles     map[int64]*Title
	titleGenre map[int64][]int64
	nextID     int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		categories: make(map[string]*Category),
		genres:     make(map[string]*Genre),
		titles:     make(map[int64]*Title),
		titleGenre: make(map[int64][]int64),
	}
}

func (f *fakeRepository) CreateCategory(_ context.Context, c *Category) error {
	if _, ok := f.categories[c.Slug]; ok {
		return ErrDuplicateSlug
	}
	for _, existing := range f.categories {
		if existing.Name == c.Name {
			return ErrDuplicateName
		}
	}
	f.nextID++
	c.ID = f.nextID
	stored := *c
	f.categories[c.Slug] = &stored
	return nil
}

func (f *fakeRepository) GetCategoryBySlug(
	_ context.Context,
	slug string,
) (*Category, error) {
	if c, ok := f.categories[slug]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepository) ListCategories(
	_ context.Context,
	_ ListParams,
) ([]Category, int, error) {
	out := make([]Category, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (f *fakeRepository) DeleteCategory(
	_ context.Context,
	slug string,
) error {
	if _, ok := f.categories[slug]; !ok {
		return core.ErrNotFound
	}
	delete(f.categories, slug)
	return nil
}

func (f *fakeRepository) CreateGenre(_ context.Context, g *Genre) error {
	if _, ok := f.genres[g.Slug]; ok {
		return ErrDuplicateSlug
	}
	for _, existing := range f.genres {
		if existing.Name == g.Name {
			return ErrDuplicateName
		}
	}
	f.nextID++
	g.ID = f.nextID
	stored := *g
	f.genres[g.Slug] = &stored
	return nil
}

func (f *fakeRepository) GetGenresBySlugs(
	_ context.Context,
	slugs []string,
) ([]Genre, error) {
	var out []Genre
	for _, slug := range slugs {
		if g, ok := f.genres[slug]; ok {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListGenres(
	_ context.Context,
	_ ListParams,
) ([]Genre, int, error) {
	out := make([]Genre, 0, len(f.genres))
	for _, g := range f.genres {
		out = append(out, *g)
	}
	return out, len(out), nil
}

func (f *fakeRepository) DeleteGenre(_ context.Context, slug string) error {
	if _, ok := f.genres[slug]; !ok {
		return core.ErrNotFound
	}
	delete(f.genres, slug)
	return nil
}

func (f *fakeRepository) CreateTitle(
	_ context.Context,
	t *Title,
	genreIDs []int64,
) error {
	f.nextID++
	t.ID = f.nextID
	stored := *t
	f.titles[t.ID] = &stored
	f.titleGenre[t.ID] = genreIDs
	return nil
}

func (f *fakeRepository) GetTitle(
	_ context.Context,
	id int64,
) (*Title, error) {
	if t, ok := f.titles[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepository) UpdateTitle(
	_ context.Context,
	t *Title,
	genreIDs []int64,
) error {
	stored, ok := f.titles[t.ID]
	if !ok {
		return core.ErrNotFound
	}
	*stored = *t
	if genreIDs != nil {
		f.titleGenre[t.ID] = genreIDs
	}
	return nil
}

func (f *fakeRepository) DeleteTitle(_ context.Context, id int64) error {
	if _, ok := f.titles[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.titles, id)
	delete(f.titleGenre, id)
	return nil
}

func (f *fakeRepository) ListTitles(
	_ context.Context,
	_ ListTitlesParams,
) ([]Title, int, error) {
	out := make([]Title, 0, len(f.titles))
	for _, t := range f.titles {
		out = append(out, *t)
	}
	return out, len(out), nil
}

func seedCatalog(t *testing.T, repo *fakeRepository) {
	t.Helper()
	require.NoError(t, repo.CreateCategory(context.Background(),
		&Category{Name: "Books", Slug: "books"}))
	require.NoError(t, repo.CreateGenre(context.Background(),
		&Genre{Name: "Fiction", Slug: "fiction"}))
	require.NoError(t, repo.CreateGenre(context.Background(),
		&Genre{Name: "Drama", Slug: "drama"}))
}

func TestCreateTitle(t *testing.T) {
	repo := newFakeRepository()
	seedCatalog(t, repo)
	svc := NewService(repo)

	title, err := svc.CreateTitle(context.Background(), CreateTitleRequest{
		Name:     "The Long Road",
		Year:     2001,
		Category: "books",
		Genres:   []string{"fiction", "drama"},
	})
	require.NoError(t, err)
	assert.NotZero(t, title.ID)
	require.NotNil(t, title.Category)
	assert.Equal(t, "books", title.Category.Slug)
	assert.Len(t, title.Genres, 2)
	assert.Nil(t, title.Rating)
}

func TestCreateTitleUnknownCategory(t *testing.T) {
	repo := newFakeRepository()
	seedCatalog(t, repo)
	svc := NewService(repo)

	_, err := svc.CreateTitle(context.Background(), CreateTitleRequest{
		Name:     "The Long Road",
		Year:     2001,
		Category: "missing",
		Genres:   []string{"fiction"},
	})
	require.Error(t, err)

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "category")
}

func TestCreateTitleUnknownGenre(t *testing.T) {
	repo := newFakeRepository()
	seedCatalog(t, repo)
	svc := NewService(repo)

	_, err := svc.CreateTitle(context.Background(), CreateTitleRequest{
		Name:     "The Long Road",
		Year:     2001,
		Category: "books",
		Genres:   []string{"fiction", "missing"},
	})
	require.Error(t, err)

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "genre")
}

func TestCreateTitleFutureYear(t *testing.T) {
	repo := newFakeRepository()
	seedCatalog(t, repo)
	svc := NewService(repo)

	_, err := svc.CreateTitle(context.Background(), CreateTitleRequest{
		Name:     "From the Future",
		Year:     time.Now().Year() + 1,
		Category: "books",
		Genres:   []string{"fiction"},
	})
	require.Error(t, err)

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "year")
}

func TestUpdateTitlePartial(t *testing.T) {
	repo := newFakeRepository()
	seedCatalog(t, repo)
	svc := NewService(repo)
	ctx := context.Background()

	title, err := svc.CreateTitle(ctx, CreateTitleRequest{
		Name:     "The Long Road",
		Year:     2001,
		Category: "books",
		Genres:   []string{"fiction"},
	})
	require.NoError(t, err)

	name := "The Longer Road"
	updated, err := svc.UpdateTitle(ctx, title.ID, UpdateTitleRequest{
		Name: &name,
	})
	require.NoError(t, err)
	assert.Equal(t, "The Longer Road", updated.Name)
	assert.Equal(t, 2001, updated.Year)
}

func TestDeleteCategory(t *testing.T) {
	repo := newFakeRepository()
	seedCatalog(t, repo)
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.DeleteCategory(ctx, "books"))
	assert.ErrorIs(t, svc.DeleteCategory(ctx, "books"), core.ErrNotFound)
}

func TestCreateCategoryDuplicateSlug(t *testing.T) {
	repo := newFakeRepository()
	seedCatalog(t, repo)
	svc := NewService(repo)

	_, err := svc.CreateCategory(context.Background(), CreateCategoryRequest{
		Name: "More Books",
		Slug: "books",
	})
	require.Error(t, err)

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "slug")
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	repo := newFakeRepository()
	seedCatalog(t, repo)
	svc := NewService(repo)

	_, err := svc.CreateCategory(context.Background(), CreateCategoryRequest{
		Name: "Books",
		Slug: "paper-books",
	})
	require.Error(t, err)

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "name")
	assert.NotContains(t, appErr.Fields, "slug")
}
