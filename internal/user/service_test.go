// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/reviewdb/internal/core"
)

type fakeRepository struct {
	byID       map[string]*User
	byUsername map[string]*User
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		byID:       make(map[string]*User),
		byUsername: make(map[string]*User),
	}
}

func (f *fakeRepository) Create(_ context.Context, u *User) error {
	if _, ok := f.byUsername[u.Username]; ok {
		return core.ErrDuplicateKey
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	stored := *u
	f.byID[u.ID] = &stored
	f.byUsername[u.Username] = &stored
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id string) (*User, error) {
	if u, ok := f.byID[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepository) GetByUsername(
	_ context.Context,
	username string,
) (*User, error) {
	if u, ok := f.byUsername[username]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepository) GetByUsernameAndEmail(
	_ context.Context,
	username, email string,
) (*User, error) {
	if u, ok := f.byUsername[username]; ok && u.Email == email {
		copied := *u
		return &copied, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepository) Update(_ context.Context, u *User) error {
	stored, ok := f.byID[u.ID]
	if !ok {
		return core.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	*stored = *u
	return nil
}

func (f *fakeRepository) SetConfirmationCode(
	_ context.Context,
	id, codeHash string,
	expiresAt time.Time,
) error {
	stored, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	stored.ConfirmationCodeHash = codeHash
	stored.ConfirmationExpiresAt = &expiresAt
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, username string) error {
	u, ok := f.byUsername[username]
	if !ok {
		return core.ErrNotFound
	}
	delete(f.byID, u.ID)
	delete(f.byUsername, username)
	return nil
}

func (f *fakeRepository) List(
	_ context.Context,
	_ ListUsersParams,
) ([]User, int, error) {
	users := make([]User, 0, len(f.byUsername))
	for _, u := range f.byUsername {
		users = append(users, *u)
	}
	return users, len(users), nil
}

func (f *fakeRepository) ExistsByUsername(
	_ context.Context,
	username string,
) (bool, error) {
	_, ok := f.byUsername[username]
	return ok, nil
}

func (f *fakeRepository) ExistsByEmail(
	_ context.Context,
	email string,
) (bool, error) {
	for _, u := range f.byUsername {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func strPtr(s string) *string { return &s }

func TestCreateUserDefaultsRole(t *testing.T) {
	svc := NewService(newFakeRepository())

	u, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "alice",
		Email:    "Alice@Example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "user", u.Role)
	assert.Equal(t, "alice@example.com", u.Email)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	svc := NewService(newFakeRepository())
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserRequest{
		Username: "alice",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, CreateUserRequest{
		Username: "alice",
		Email:    "other@example.com",
	})
	require.Error(t, err)

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "username")
}

func TestUpdateUserCanChangeRole(t *testing.T) {
	svc := NewService(newFakeRepository())
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserRequest{
		Username: "alice",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)

	u, err := svc.UpdateUser(ctx, "alice", UpdateUserRequest{
		Role: strPtr("moderator"),
	})
	require.NoError(t, err)
	assert.Equal(t, "moderator", u.Role)
}

func TestUpdateUserRejectsUnknownRole(t *testing.T) {
	svc := NewService(newFakeRepository())
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserRequest{
		Username: "alice",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)

	_, err = svc.UpdateUser(ctx, "alice", UpdateUserRequest{
		Role: strPtr("emperor"),
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestUpdateMePatchesProfileOnly(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Role:     "user",
	})
	require.NoError(t, err)

	u, err := svc.UpdateMe(ctx, created.ID, UpdateMeRequest{
		Bio:       strPtr("hello"),
		FirstName: strPtr("Alice"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", u.Bio)
	assert.Equal(t, "Alice", u.FirstName)
	assert.Equal(t, "user", u.Role)
	assert.Equal(t, "alice@example.com", u.Email)
}

func TestUpdateMeRequiresIdentity(t *testing.T) {
	svc := NewService(newFakeRepository())

	_, err := svc.UpdateMe(context.Background(), "", UpdateMeRequest{})
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestDeleteUser(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserRequest{
		Username: "alice",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, "alice"))
	assert.ErrorIs(t, svc.DeleteUser(ctx, "alice"), core.ErrNotFound)
}
