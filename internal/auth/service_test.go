// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/reviewdb/internal/config"
	"github.com/carterperez-dev/reviewdb/internal/core"
)

type fakeUserProvider struct {
	accounts map[string]*AccountInfo
	nextID   int
}

func newFakeUserProvider() *fakeUserProvider {
	return &fakeUserProvider{accounts: make(map[string]*AccountInfo)}
}

func (f *fakeUserProvider) GetByUsername(
	_ context.Context,
	username string,
) (*AccountInfo, error) {
	if a, ok := f.accounts[username]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeUserProvider) FindByUsernameAndEmail(
	_ context.Context,
	username, email string,
) (*AccountInfo, error) {
	if a, ok := f.accounts[username]; ok && a.Email == email {
		copied := *a
		return &copied, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeUserProvider) ExistsByUsername(
	_ context.Context,
	username string,
) (bool, error) {
	_, ok := f.accounts[username]
	return ok, nil
}

func (f *fakeUserProvider) ExistsByEmail(
	_ context.Context,
	email string,
) (bool, error) {
	for _, a := range f.accounts {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserProvider) CreateAccount(
	_ context.Context,
	username, email string,
) (*AccountInfo, error) {
	if _, ok := f.accounts[username]; ok {
		return nil, core.ErrDuplicateKey
	}
	f.nextID++
	a := &AccountInfo{
		ID:       fmt.Sprintf("id-%d", f.nextID),
		Username: username,
		Email:    email,
		Role:     "user",
	}
	f.accounts[username] = a
	copied := *a
	return &copied, nil
}

func (f *fakeUserProvider) StoreConfirmationCode(
	_ context.Context,
	userID, codeHash string,
	expiresAt time.Time,
) error {
	for _, a := range f.accounts {
		if a.ID == userID {
			a.CodeHash = codeHash
			a.CodeExpiresAt = &expiresAt
			return nil
		}
	}
	return core.ErrNotFound
}

type fakeMailer struct {
	sent []sentMail
	fail bool
}

type sentMail struct {
	to   string
	body string
}

func (f *fakeMailer) Send(_ context.Context, to, _, body string) error {
	if f.fail {
		return fmt.Errorf("smtp unavailable")
	}
	f.sent = append(f.sent, sentMail{to: to, body: body})
	return nil
}

func newTestJWTManager(t *testing.T) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	privPath := filepath.Join(dir, "jwt.pem")
	pubPath := filepath.Join(dir, "jwt.pub.pem")
	require.NoError(t, GenerateKeyPair(privPath, pubPath))

	manager, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:    privPath,
		PublicKeyPath:     pubPath,
		AccessTokenExpire: time.Hour,
		Issuer:            "reviewdb-test",
		Audience:          "reviewdb",
	})
	require.NoError(t, err)
	return manager
}

func newTestService(
	t *testing.T,
) (*Service, *fakeUserProvider, *fakeMailer, *JWTManager) {
	t.Helper()

	users := newFakeUserProvider()
	mailer := &fakeMailer{}
	manager := newTestJWTManager(t)
	svc := NewService(users, manager, mailer, Config{
		CodeLength: 20,
		CodeExpire: time.Hour,
	})
	return svc, users, mailer, manager
}

func TestSignupCreatesAccountAndSendsCode(t *testing.T) {
	svc, users, mailer, _ := newTestService(t)
	ctx := context.Background()

	err := svc.Signup(ctx, SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)

	account := users.accounts["alice"]
	require.NotNil(t, account)
	assert.NotEmpty(t, account.CodeHash)
	require.NotNil(t, account.CodeExpiresAt)
	assert.True(t, account.CodeExpiresAt.After(time.Now()))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "alice@example.com", mailer.sent[0].to)
}

func TestSignupResendIsIdempotent(t *testing.T) {
	svc, users, mailer, _ := newTestService(t)
	ctx := context.Background()

	req := SignupRequest{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, svc.Signup(ctx, req))
	firstHash := users.accounts["alice"].CodeHash

	require.NoError(t, svc.Signup(ctx, req))

	assert.Len(t, users.accounts, 1)
	assert.Len(t, mailer.sent, 2)
	assert.NotEqual(t, firstHash, users.accounts["alice"].CodeHash)
}

func TestSignupRejectsTakenUsername(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
	}))

	err := svc.Signup(ctx, SignupRequest{
		Username: "alice",
		Email:    "different@example.com",
	})
	require.Error(t, err)

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "username")
}

func TestSignupRejectsTakenEmail(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
	}))

	err := svc.Signup(ctx, SignupRequest{
		Username: "bob",
		Email:    "alice@example.com",
	})
	require.Error(t, err)

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "email")
}

func TestSignupSucceedsWhenMailerFails(t *testing.T) {
	svc, users, mailer, _ := newTestService(t)
	mailer.fail = true
	ctx := context.Background()

	err := svc.Signup(ctx, SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, users.accounts["alice"].CodeHash)
}

func TestIssueTokenHappyPath(t *testing.T) {
	svc, users, _, manager := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
	}))

	// Store a known code behind the provider's back.
	code := "KNOWNCODE12345678901"
	expires := time.Now().Add(time.Hour)
	account := users.accounts["alice"]
	require.NoError(t, users.StoreConfirmationCode(
		ctx,
		account.ID,
		core.HashToken(code),
		expires,
	))

	token, err := svc.IssueToken(ctx, TokenRequest{
		Username:         "alice",
		ConfirmationCode: code,
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.VerifyAccessToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, account.ID, claims.UserID)
	assert.Equal(t, "user", claims.Role)
}

func TestIssueTokenUniformFailures(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
	}))

	t.Run("unknown username", func(t *testing.T) {
		_, err := svc.IssueToken(ctx, TokenRequest{
			Username:         "nobody",
			ConfirmationCode: "whatever",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong code", func(t *testing.T) {
		_, err := svc.IssueToken(ctx, TokenRequest{
			Username:         "alice",
			ConfirmationCode: "definitely-wrong",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("expired code", func(t *testing.T) {
		code := "EXPIREDCODE123456789"
		past := time.Now().Add(-time.Minute)
		account := users.accounts["alice"]
		require.NoError(t, users.StoreConfirmationCode(
			ctx,
			account.ID,
			core.HashToken(code),
			past,
		))

		_, err := svc.IssueToken(ctx, TokenRequest{
			Username:         "alice",
			ConfirmationCode: code,
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
