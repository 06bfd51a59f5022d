// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/reviewdb/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByUsernameAndEmail(
		ctx context.Context,
		username, email string,
	) (*User, error)
	Update(ctx context.Context, user *User) error
	SetConfirmationCode(
		ctx context.Context,
		id, codeHash string,
		expiresAt time.Time,
	) error
	Delete(ctx context.Context, username string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `id, username, email, first_name, last_name, bio, role,
       is_superuser, is_staff, confirmation_code_hash, confirmation_expires_at,
       created_at, updated_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, username, email, first_name, last_name, bio, role,
		                   is_superuser, is_staff)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.Role,
		user.Superuser,
		user.Staff,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByUsername(
	ctx context.Context,
	username string,
) (*User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users WHERE username = $1`,
		userColumns,
	)

	var user User
	err := r.db.GetContext(ctx, &user, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by username: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByUsernameAndEmail(
	ctx context.Context,
	username, email string,
) (*User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users WHERE username = $1 AND email = $2`,
		userColumns,
	)

	var user User
	err := r.db.GetContext(ctx, &user, query, username, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by pair: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by pair: %w", err)
	}

	return &user, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET email = $2, first_name = $3, last_name = $4, bio = $5, role = $6,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.Role,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("update user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

func (r *repository) SetConfirmationCode(
	ctx context.Context,
	id, codeHash string,
	expiresAt time.Time,
) error {
	query := `
		UPDATE users
		SET confirmation_code_hash = $2, confirmation_expires_at = $3,
		    updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, codeHash, expiresAt)
	if err != nil {
		return fmt.Errorf("set confirmation code: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set confirmation code: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set confirmation code: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, username string) error {
	query := `DELETE FROM users WHERE username = $1`

	result, err := r.db.ExecContext(ctx, query, username)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"username ILIKE $%d", argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY username ASC
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) ExistsByUsername(
	ctx context.Context,
	username string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, username); err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}

	return exists, nil
}

func (r *repository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}

	return exists, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
