// AngelaMos | 2026
// repository.go

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/reviewdb/internal/core"
)

var (
	ErrDuplicateName = fmt.Errorf("name taken: %w", core.ErrDuplicateKey)
	ErrDuplicateSlug = fmt.Errorf("slug taken: %w", core.ErrDuplicateKey)
)

type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	ListCategories(
		ctx context.Context,
		params ListParams,
	) ([]Category, int, error)
	DeleteCategory(ctx context.Context, slug string) error

	CreateGenre(ctx context.Context, g *Genre) error
	GetGenresBySlugs(ctx context.Context, slugs []string) ([]Genre, error)
	ListGenres(ctx context.Context, params ListParams) ([]Genre, int, error)
	DeleteGenre(ctx context.Context, slug string) error

	CreateTitle(ctx context.Context, t *Title, genreIDs []int64) error
	GetTitle(ctx context.Context, id int64) (*Title, error)
	UpdateTitle(ctx context.Context, t *Title, genreIDs []int64) error
	DeleteTitle(ctx context.Context, id int64) error
	ListTitles(
		ctx context.Context,
		params ListTitlesParams,
	) ([]Title, int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateCategory(ctx context.Context, c *Category) error {
	query := `
		INSERT INTO categories (name, slug)
		VALUES ($1, $2)
		RETURNING id`

	err := r.db.GetContext(ctx, &c.ID, query, c.Name, c.Slug)
	if err != nil {
		if dup := duplicateKeyError(err); dup != nil {
			return fmt.Errorf("create category: %w", dup)
		}
		return fmt.Errorf("create category: %w", err)
	}

	return nil
}

func (r *repository) GetCategoryBySlug(
	ctx context.Context,
	slug string,
) (*Category, error) {
	query := `SELECT id, name, slug FROM categories WHERE slug = $1`

	var c Category
	err := r.db.GetContext(ctx, &c, query, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get category: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}

	return &c, nil
}

func (r *repository) ListCategories(
	ctx context.Context,
	params ListParams,
) ([]Category, int, error) {
	params.Normalize()

	where, args := searchClause(params.Search)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM categories %s", where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, slug FROM categories %s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	var cats []Category
	if err := r.db.SelectContext(ctx, &cats, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}

	return cats, total, nil
}

func (r *repository) DeleteCategory(ctx context.Context, slug string) error {
	return r.deleteBySlug(ctx, "categories", "category", slug)
}

func (r *repository) CreateGenre(ctx context.Context, g *Genre) error {
	query := `
		INSERT INTO genres (name, slug)
		VALUES ($1, $2)
		RETURNING id`

	err := r.db.GetContext(ctx, &g.ID, query, g.Name, g.Slug)
	if err != nil {
		if dup := duplicateKeyError(err); dup != nil {
			return fmt.Errorf("create genre: %w", dup)
		}
		return fmt.Errorf("create genre: %w", err)
	}

	return nil
}

func (r *repository) GetGenresBySlugs(
	ctx context.Context,
	slugs []string,
) ([]Genre, error) {
	query, args, err := sqlx.In(
		`SELECT id, name, slug FROM genres WHERE slug IN (?)`,
		slugs,
	)
	if err != nil {
		return nil, fmt.Errorf("get genres: %w", err)
	}

	var genres []Genre
	err = r.db.SelectContext(ctx, &genres, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("get genres: %w", err)
	}

	return genres, nil
}

func (r *repository) ListGenres(
	ctx context.Context,
	params ListParams,
) ([]Genre, int, error) {
	params.Normalize()

	where, args := searchClause(params.Search)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM genres %s", where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count genres: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, slug FROM genres %s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	var genres []Genre
	if err := r.db.SelectContext(ctx, &genres, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list genres: %w", err)
	}

	return genres, total, nil
}

func (r *repository) DeleteGenre(ctx context.Context, slug string) error {
	return r.deleteBySlug(ctx, "genres", "genre", slug)
}

const titleSelect = `
	SELECT t.id, t.name, t.year, t.description, t.category_id,
	       AVG(rv.score)::float8 AS rating
	FROM titles t
	LEFT JOIN reviews rv ON rv.title_id = t.id`

func (r *repository) CreateTitle(
	ctx context.Context,
	t *Title,
	genreIDs []int64,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO titles (name, year, description, category_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id`

		err := tx.GetContext(ctx, &t.ID, query,
			t.Name, t.Year, t.Description, t.CategoryID)
		if err != nil {
			return fmt.Errorf("create title: %w", err)
		}

		return r.replaceGenreLinks(ctx, tx, t.ID, genreIDs)
	})
}

func (r *repository) GetTitle(ctx context.Context, id int64) (*Title, error) {
	query := titleSelect + `
		WHERE t.id = $1
		GROUP BY t.id`

	var t Title
	err := r.db.GetContext(ctx, &t, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get title: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get title: %w", err)
	}

	ts := []Title{t}
	if err := r.attachRelations(ctx, ts); err != nil {
		return nil, err
	}

	return &ts[0], nil
}

func (r *repository) UpdateTitle(
	ctx context.Context,
	t *Title,
	genreIDs []int64,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE titles
			SET name = $2, year = $3, description = $4, category_id = $5
			WHERE id = $1`

		result, err := tx.ExecContext(ctx, query,
			t.ID, t.Name, t.Year, t.Description, t.CategoryID)
		if err != nil {
			return fmt.Errorf("update title: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("update title: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("update title: %w", core.ErrNotFound)
		}

		if genreIDs == nil {
			return nil
		}
		return r.replaceGenreLinks(ctx, tx, t.ID, genreIDs)
	})
}

func (r *repository) DeleteTitle(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM titles WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("delete title: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete title: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete title: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListTitles(
	ctx context.Context,
	params ListTitlesParams,
) ([]Title, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	if params.Category != "" {
		conditions = append(conditions, fmt.Sprintf(
			"t.category_id = (SELECT id FROM categories WHERE slug = $%d)",
			argIdx))
		args = append(args, params.Category)
		argIdx++
	}

	if params.Genre != "" {
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM title_genres tg
			JOIN genres g ON g.id = tg.genre_id
			WHERE tg.title_id = t.id AND g.slug = $%d)`, argIdx))
		args = append(args, params.Genre)
		argIdx++
	}

	if params.Name != "" {
		conditions = append(conditions, fmt.Sprintf(
			"t.name ILIKE $%d", argIdx))
		args = append(args, "%"+escapeLike(params.Name)+"%")
		argIdx++
	}

	if params.Year != nil {
		conditions = append(conditions, fmt.Sprintf("t.year = $%d", argIdx))
		args = append(args, *params.Year)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM titles t %s",
		where,
	)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	query := fmt.Sprintf(`%s
		%s
		GROUP BY t.id
		ORDER BY t.name ASC, t.id ASC
		LIMIT $%d OFFSET $%d`,
		titleSelect, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, params.Offset())

	var titles []Title
	if err := r.db.SelectContext(ctx, &titles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}

	if err := r.attachRelations(ctx, titles); err != nil {
		return nil, 0, err
	}

	return titles, total, nil
}

func (r *repository) replaceGenreLinks(
	ctx context.Context,
	tx *sqlx.Tx,
	titleID int64,
	genreIDs []int64,
) error {
	_, err := tx.ExecContext(
		ctx,
		`DELETE FROM title_genres WHERE title_id = $1`,
		titleID,
	)
	if err != nil {
		return fmt.Errorf("clear genre links: %w", err)
	}

	for _, genreID := range genreIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO title_genres (title_id, genre_id) VALUES ($1, $2)`,
			titleID, genreID)
		if err != nil {
			return fmt.Errorf("link genre: %w", err)
		}
	}

	return nil
}

// attachRelations fills Category and Genres on the given titles in two
// batched queries instead of one per row.
func (r *repository) attachRelations(
	ctx context.Context,
	titles []Title,
) error {
	if len(titles) == 0 {
		return nil
	}

	titleIDs := make([]int64, 0, len(titles))
	categoryIDs := make([]int64, 0, len(titles))
	for i := range titles {
		titleIDs = append(titleIDs, titles[i].ID)
		if titles[i].CategoryID != nil {
			categoryIDs = append(categoryIDs, *titles[i].CategoryID)
		}
	}

	if len(categoryIDs) > 0 {
		query, args, err := sqlx.In(
			`SELECT id, name, slug FROM categories WHERE id IN (?)`,
			categoryIDs,
		)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}

		var cats []Category
		err = r.db.SelectContext(ctx, &cats, r.db.Rebind(query), args...)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}

		byID := make(map[int64]*Category, len(cats))
		for i := range cats {
			byID[cats[i].ID] = &cats[i]
		}
		for i := range titles {
			if titles[i].CategoryID != nil {
				titles[i].Category = byID[*titles[i].CategoryID]
			}
		}
	}

	type genreLink struct {
		TitleID int64  `db:"title_id"`
		ID      int64  `db:"id"`
		Name    string `db:"name"`
		Slug    string `db:"slug"`
	}

	query, args, err := sqlx.In(`
		SELECT tg.title_id, g.id, g.name, g.slug
		FROM title_genres tg
		JOIN genres g ON g.id = tg.genre_id
		WHERE tg.title_id IN (?)
		ORDER BY g.name ASC`, titleIDs)
	if err != nil {
		return fmt.Errorf("load genres: %w", err)
	}

	var links []genreLink
	err = r.db.SelectContext(ctx, &links, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("load genres: %w", err)
	}

	byTitle := make(map[int64][]Genre, len(titles))
	for _, l := range links {
		byTitle[l.TitleID] = append(byTitle[l.TitleID], Genre{
			ID:   l.ID,
			Name: l.Name,
			Slug: l.Slug,
		})
	}
	for i := range titles {
		titles[i].Genres = byTitle[titles[i].ID]
	}

	return nil
}

func (r *repository) deleteBySlug(
	ctx context.Context,
	table, resource, slug string,
) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE slug = $1", table)

	result, err := r.db.ExecContext(ctx, query, slug)
	if err != nil {
		return fmt.Errorf("delete %s: %w", resource, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", resource, err)
	}
	if rows == 0 {
		return fmt.Errorf("delete %s: %w", resource, core.ErrNotFound)
	}

	return nil
}

func searchClause(search string) (string, []any) {
	if search == "" {
		return "", nil
	}
	return "WHERE name = $1", []any{search}
}

// duplicateKeyError maps a unique violation to the column it hit so the
// service can report the right field. Postgres names the implicit
// constraints <table>_<column>_key.
func duplicateKeyError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	switch {
	case strings.HasSuffix(pgErr.ConstraintName, "_name_key"):
		return ErrDuplicateName
	case strings.HasSuffix(pgErr.ConstraintName, "_slug_key"):
		return ErrDuplicateSlug
	}
	return core.ErrDuplicateKey
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
