// AngelaMos | 2026
// service.go

package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/carterperez-dev/reviewdb/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateCategory(
	ctx context.Context,
	req CreateCategoryRequest,
) (*Category, error) {
	c := &Category{Name: req.Name, Slug: req.Slug}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, duplicateFieldError(err)
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) ListCategories(
	ctx context.Context,
	params ListParams,
) ([]Category, int, error) {
	return s.repo.ListCategories(ctx, params)
}

func (s *Service) DeleteCategory(ctx context.Context, slug string) error {
	return s.repo.DeleteCategory(ctx, slug)
}

func (s *Service) CreateGenre(
	ctx context.Context,
	req CreateGenreRequest,
) (*Genre, error) {
	g := &Genre{Name: req.Name, Slug: req.Slug}
	if err := s.repo.CreateGenre(ctx, g); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, duplicateFieldError(err)
		}
		return nil, err
	}
	return g, nil
}

// duplicateFieldError turns a unique-violation error into a field-level
// validation error naming the column that collided. Violations that the
// repository could not attribute fall back to the slug, the only field
// clients address resources by.
func duplicateFieldError(err error) error {
	field := "slug"
	if errors.Is(err, ErrDuplicateName) {
		field = "name"
	}
	return core.ValidationError(
		"validation failed",
		map[string]string{field: "already exists"},
	)
}

func (s *Service) ListGenres(
	ctx context.Context,
	params ListParams,
) ([]Genre, int, error) {
	return s.repo.ListGenres(ctx, params)
}

func (s *Service) DeleteGenre(ctx context.Context, slug string) error {
	return s.repo.DeleteGenre(ctx, slug)
}

func (s *Service) CreateTitle(
	ctx context.Context,
	req CreateTitleRequest,
) (*Title, error) {
	if err := validateYear(req.Year); err != nil {
		return nil, err
	}

	category, err := s.repo.GetCategoryBySlug(ctx, req.Category)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ValidationError(
				"validation failed",
				map[string]string{"category": "unknown slug"},
			)
		}
		return nil, err
	}

	genres, err := s.resolveGenres(ctx, req.Genres)
	if err != nil {
		return nil, err
	}

	t := &Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		CategoryID:  &category.ID,
		Category:    category,
		Genres:      genres,
	}

	if err := s.repo.CreateTitle(ctx, t, genreIDs(genres)); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) GetTitle(ctx context.Context, id int64) (*Title, error) {
	return s.repo.GetTitle(ctx, id)
}

func (s *Service) UpdateTitle(
	ctx context.Context,
	id int64,
	req UpdateTitleRequest,
) (*Title, error) {
	t, err := s.repo.GetTitle(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Year != nil {
		if err := validateYear(*req.Year); err != nil {
			return nil, err
		}
		t.Year = *req.Year
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Category != nil {
		category, err := s.repo.GetCategoryBySlug(ctx, *req.Category)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return nil, core.ValidationError(
					"validation failed",
					map[string]string{"category": "unknown slug"},
				)
			}
			return nil, err
		}
		t.CategoryID = &category.ID
		t.Category = category
	}

	var ids []int64
	if req.Genres != nil {
		genres, err := s.resolveGenres(ctx, req.Genres)
		if err != nil {
			return nil, err
		}
		t.Genres = genres
		ids = genreIDs(genres)
	}

	if err := s.repo.UpdateTitle(ctx, t, ids); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) DeleteTitle(ctx context.Context, id int64) error {
	return s.repo.DeleteTitle(ctx, id)
}

func (s *Service) ListTitles(
	ctx context.Context,
	params ListTitlesParams,
) ([]Title, int, error) {
	return s.repo.ListTitles(ctx, params)
}

func (s *Service) resolveGenres(
	ctx context.Context,
	slugs []string,
) ([]Genre, error) {
	genres, err := s.repo.GetGenresBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}

	if len(genres) != len(unique(slugs)) {
		return nil, core.ValidationError(
			"validation failed",
			map[string]string{"genre": "unknown slug"},
		)
	}

	return genres, nil
}

func validateYear(year int) error {
	if year > time.Now().Year() {
		return core.ValidationError(
			"validation failed",
			map[string]string{"year": "cannot be in the future"},
		)
	}
	return nil
}

func genreIDs(genres []Genre) []int64 {
	ids := make([]int64, 0, len(genres))
	for _, g := range genres {
		ids = append(ids, g.ID)
	}
	return ids
}

func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
