// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/reviewdb/internal/auth"
	"github.com/carterperez-dev/reviewdb/internal/core"
	"github.com/carterperez-dev/reviewdb/internal/permission"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateUser handles the admin-facing create. Role defaults to the
// regular role when omitted.
func (s *Service) CreateUser(
	ctx context.Context,
	req CreateUserRequest,
) (*User, error) {
	role := req.Role
	if role == "" {
		role = string(permission.RoleUser)
	}

	u := &User{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Email:     strings.ToLower(req.Email),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      role,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ValidationError(
				"validation failed",
				map[string]string{"username": "already taken"},
			)
		}
		return nil, err
	}

	return u, nil
}

func (s *Service) GetUser(
	ctx context.Context,
	username string,
) (*User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *Service) UpdateUser(
	ctx context.Context,
	username string,
	req UpdateUserRequest,
) (*User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	applyProfilePatch(u, req.Email, req.FirstName, req.LastName, req.Bio)
	if req.Role != nil {
		if !permission.Role(*req.Role).Valid() {
			return nil, fmt.Errorf(
				"update user: invalid role %q: %w",
				*req.Role,
				core.ErrInvalidInput,
			)
		}
		u.Role = *req.Role
	}

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ValidationError(
				"validation failed",
				map[string]string{"email": "already registered"},
			)
		}
		return nil, err
	}

	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, username string) error {
	return s.repo.Delete(ctx, username)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

// UpdateMe applies a profile patch to the calling account. Role is not
// part of UpdateMeRequest, so privileges cannot change through here.
func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateMeRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	applyProfilePatch(u, req.Email, req.FirstName, req.LastName, req.Bio)

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ValidationError(
				"validation failed",
				map[string]string{"email": "already registered"},
			)
		}
		return nil, err
	}

	return u, nil
}

func applyProfilePatch(u *User, email, firstName, lastName, bio *string) {
	if email != nil {
		u.Email = strings.ToLower(*email)
	}
	if firstName != nil {
		u.FirstName = *firstName
	}
	if lastName != nil {
		u.LastName = *lastName
	}
	if bio != nil {
		u.Bio = *bio
	}
}

// auth.UserProvider implementation, used by the signup and token flows.

func (s *Service) GetByUsername(
	ctx context.Context,
	username string,
) (*auth.AccountInfo, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return toAccountInfo(u), nil
}

func (s *Service) FindByUsernameAndEmail(
	ctx context.Context,
	username, email string,
) (*auth.AccountInfo, error) {
	u, err := s.repo.GetByUsernameAndEmail(
		ctx,
		username,
		strings.ToLower(email),
	)
	if err != nil {
		return nil, err
	}
	return toAccountInfo(u), nil
}

func (s *Service) ExistsByUsername(
	ctx context.Context,
	username string,
) (bool, error) {
	return s.repo.ExistsByUsername(ctx, username)
}

func (s *Service) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	return s.repo.ExistsByEmail(ctx, strings.ToLower(email))
}

func (s *Service) CreateAccount(
	ctx context.Context,
	username, email string,
) (*auth.AccountInfo, error) {
	u := &User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    strings.ToLower(email),
		Role:     string(permission.RoleUser),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return toAccountInfo(u), nil
}

func (s *Service) StoreConfirmationCode(
	ctx context.Context,
	userID, codeHash string,
	expiresAt time.Time,
) error {
	return s.repo.SetConfirmationCode(ctx, userID, codeHash, expiresAt)
}

func toAccountInfo(u *User) *auth.AccountInfo {
	return &auth.AccountInfo{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Role:          u.Role,
		Superuser:     u.Superuser,
		Staff:         u.Staff,
		CodeHash:      u.ConfirmationCodeHash,
		CodeExpiresAt: u.ConfirmationExpiresAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
