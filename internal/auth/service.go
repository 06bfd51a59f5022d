// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carterperez-dev/reviewdb/internal/core"
	"github.com/carterperez-dev/reviewdb/internal/email"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AccountInfo is the slice of an account the provisioning flow needs.
type AccountInfo struct {
	ID            string
	Username      string
	Email         string
	Role          string
	Superuser     bool
	Staff         bool
	CodeHash      string
	CodeExpiresAt *time.Time
}

type UserProvider interface {
	GetByUsername(ctx context.Context, username string) (*AccountInfo, error)
	FindByUsernameAndEmail(
		ctx context.Context,
		username, email string,
	) (*AccountInfo, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateAccount(
		ctx context.Context,
		username, email string,
	) (*AccountInfo, error)
	StoreConfirmationCode(
		ctx context.Context,
		userID, codeHash string,
		expiresAt time.Time,
	) error
}

type Config struct {
	CodeLength int
	CodeExpire time.Duration
}

type Service struct {
	users  UserProvider
	jwt    *JWTManager
	mailer email.Mailer
	cfg    Config
}

func NewService(
	users UserProvider,
	jwt *JWTManager,
	mailer email.Mailer,
	cfg Config,
) *Service {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 20
	}
	if cfg.CodeExpire <= 0 {
		cfg.CodeExpire = 24 * time.Hour
	}

	return &Service{
		users:  users,
		jwt:    jwt,
		mailer: mailer,
		cfg:    cfg,
	}
}

// Signup provisions an account and dispatches a confirmation code.
// Re-registering with the exact (username, email) pair of an existing
// account is not an error: the code is recomputed and re-sent so a user
// who lost the original email can self-serve.
func (s *Service) Signup(ctx context.Context, req SignupRequest) error {
	existing, err := s.users.FindByUsernameAndEmail(
		ctx,
		req.Username,
		req.Email,
	)
	if err == nil {
		return s.issueConfirmationCode(ctx, existing)
	}
	if !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("find account: %w", err)
	}

	taken, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if taken {
		return core.ValidationError("validation failed", map[string]string{
			"username": "already taken",
		})
	}

	taken, err = s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return core.ValidationError("validation failed", map[string]string{
			"email": "already registered",
		})
	}

	account, err := s.users.CreateAccount(ctx, req.Username, req.Email)
	if err != nil {
		// Backstop for a concurrent signup racing past the pre-checks.
		if errors.Is(err, core.ErrDuplicateKey) {
			return core.ValidationError("validation failed", map[string]string{
				"username": "already taken",
			})
		}
		return fmt.Errorf("create account: %w", err)
	}

	return s.issueConfirmationCode(ctx, account)
}

// IssueToken exchanges a confirmation code for a signed access token.
// Unknown usernames and wrong codes produce the same error so the
// response does not reveal whether an account exists.
func (s *Service) IssueToken(
	ctx context.Context,
	req TokenRequest,
) (string, error) {
	account, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("get account: %w", err)
	}

	if account.CodeHash == "" {
		return "", ErrInvalidCredentials
	}

	if account.CodeExpiresAt != nil &&
		time.Now().After(*account.CodeExpiresAt) {
		return "", ErrInvalidCredentials
	}

	if !core.CompareTokenHash(req.ConfirmationCode, account.CodeHash) {
		return "", ErrInvalidCredentials
	}

	token, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:    account.ID,
		Username:  account.Username,
		Role:      account.Role,
		Superuser: account.Superuser,
		Staff:     account.Staff,
	})
	if err != nil {
		return "", fmt.Errorf("create access token: %w", err)
	}

	return token, nil
}

func (s *Service) issueConfirmationCode(
	ctx context.Context,
	account *AccountInfo,
) error {
	code, err := core.GenerateConfirmationCode(s.cfg.CodeLength)
	if err != nil {
		return fmt.Errorf("generate confirmation code: %w", err)
	}

	expiresAt := time.Now().Add(s.cfg.CodeExpire)
	if err := s.users.StoreConfirmationCode(
		ctx,
		account.ID,
		core.HashToken(code),
		expiresAt,
	); err != nil {
		return fmt.Errorf("store confirmation code: %w", err)
	}

	// Delivery is best-effort: signup succeeds even when the mail side
	// channel is down, and the code can be re-sent by signing up again.
	subject := "Your confirmation code"
	body := fmt.Sprintf(
		"Hello %s!\n\nYour confirmation code is: %s\n",
		account.Username,
		code,
	)
	if err := s.mailer.Send(ctx, account.Email, subject, body); err != nil {
		slog.Warn("confirmation code dispatch failed",
			"username", account.Username,
			"error", err,
		)
	}

	return nil
}
