// AngelaMos | 2026
// permission_test.go

package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func regular(id string) Actor {
	return Actor{ID: id, Username: "u-" + id, Role: RoleUser}
}

func moderator(id string) Actor {
	return Actor{ID: id, Username: "m-" + id, Role: RoleModerator}
}

func admin(id string) Actor {
	return Actor{ID: id, Username: "a-" + id, Role: RoleAdmin}
}

func TestActorFlags(t *testing.T) {
	t.Run("role admin is admin", func(t *testing.T) {
		assert.True(t, admin("1").IsAdmin())
	})

	t.Run("superuser is admin regardless of role", func(t *testing.T) {
		a := Actor{ID: "1", Role: RoleUser, Superuser: true}
		assert.True(t, a.IsAdmin())
		assert.False(t, a.IsModerator())
	})

	t.Run("staff is moderator regardless of role", func(t *testing.T) {
		a := Actor{ID: "1", Role: RoleUser, Staff: true}
		assert.True(t, a.IsModerator())
		assert.False(t, a.IsAdmin())
	})

	t.Run("anonymous is not authenticated", func(t *testing.T) {
		assert.False(t, Anonymous().IsAuthenticated())
		assert.False(t, Anonymous().IsAdmin())
		assert.False(t, Anonymous().IsModerator())
	})

	t.Run("regular user", func(t *testing.T) {
		a := regular("1")
		assert.True(t, a.IsAuthenticated())
		assert.True(t, a.IsRegular())
		assert.False(t, a.IsAdmin())
		assert.False(t, a.IsModerator())
	})
}

func TestRoleValid(t *testing.T) {
	assert.True(t, Role("user").Valid())
	assert.True(t, Role("moderator").Valid())
	assert.True(t, Role("admin").Valid())
	assert.False(t, Role("superadmin").Valid())
	assert.False(t, Role("").Valid())
}

func TestAdminOnly(t *testing.T) {
	assert.False(t, AdminOnly(Anonymous()))
	assert.False(t, AdminOnly(regular("1")))
	assert.False(t, AdminOnly(moderator("1")))
	assert.True(t, AdminOnly(admin("1")))
	assert.True(t, AdminOnly(Actor{ID: "1", Role: RoleUser, Superuser: true}))
}

func TestAdminOrReadOnly(t *testing.T) {
	tests := []struct {
		name   string
		actor  Actor
		method string
		want   bool
	}{
		{"anonymous read", Anonymous(), "GET", true},
		{"anonymous head", Anonymous(), "HEAD", true},
		{"anonymous options", Anonymous(), "OPTIONS", true},
		{"anonymous write", Anonymous(), "POST", false},
		{"regular read", regular("1"), "GET", true},
		{"regular write", regular("1"), "POST", false},
		{"moderator write", moderator("1"), "DELETE", false},
		{"admin write", admin("1"), "POST", true},
		{"admin delete", admin("1"), "DELETE", true},
		{
			"superuser write",
			Actor{ID: "1", Role: RoleUser, Superuser: true},
			"PATCH",
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(
				t,
				tt.want,
				AdminOrReadOnly(tt.actor, tt.method),
			)
		})
	}
}

func TestAuthorModeratorAdminCollection(t *testing.T) {
	tests := []struct {
		name   string
		actor  Actor
		method string
		want   bool
	}{
		{"anonymous read", Anonymous(), "GET", true},
		{"anonymous write", Anonymous(), "POST", false},
		{"regular write", regular("1"), "POST", true},
		{"moderator write", moderator("1"), "POST", true},
		{"admin write", admin("1"), "POST", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(
				t,
				tt.want,
				AuthorModeratorAdminCollection(tt.actor, tt.method),
			)
		})
	}
}

func TestAuthorModeratorAdminInstance(t *testing.T) {
	const ownerID = "owner"

	tests := []struct {
		name   string
		actor  Actor
		method string
		want   bool
	}{
		{"anonymous read", Anonymous(), "GET", true},
		{"anonymous write", Anonymous(), "PATCH", false},
		{"author edits own", regular(ownerID), "PATCH", true},
		{"author deletes own", regular(ownerID), "DELETE", true},
		{"other regular edits", regular("other"), "PATCH", false},
		{"other regular reads", regular("other"), "GET", true},
		{"moderator edits any", moderator("other"), "PATCH", true},
		{"moderator deletes any", moderator("other"), "DELETE", true},
		{"admin edits any", admin("other"), "PATCH", true},
		{
			"staff flag moderates",
			Actor{ID: "other", Role: RoleUser, Staff: true},
			"DELETE",
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(
				t,
				tt.want,
				AuthorModeratorAdminInstance(tt.actor, tt.method, ownerID),
			)
		})
	}
}
