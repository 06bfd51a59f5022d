// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/reviewdb/internal/permission"
)

type User struct {
	ID                    string     `db:"id"`
	Username              string     `db:"username"`
	Email                 string     `db:"email"`
	FirstName             string     `db:"first_name"`
	LastName              string     `db:"last_name"`
	Bio                   string     `db:"bio"`
	Role                  string     `db:"role"`
	Superuser             bool       `db:"is_superuser"`
	Staff                 bool       `db:"is_staff"`
	ConfirmationCodeHash  string     `db:"confirmation_code_hash"`
	ConfirmationExpiresAt *time.Time `db:"confirmation_expires_at"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
}

func (u *User) Actor() permission.Actor {
	return permission.Actor{
		ID:        u.ID,
		Username:  u.Username,
		Role:      permission.Role(u.Role),
		Superuser: u.Superuser,
		Staff:     u.Staff,
	}
}

func (u *User) IsAdmin() bool {
	return u.Actor().IsAdmin()
}
