// AngelaMos | 2026
// actor.go

package permission

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Actor is the identity attached to a request. The zero value is the
// anonymous actor. Superuser and Staff are independent elevation flags,
// not extra role values: an account keeps exactly one role while either
// flag can grant the corresponding capability on top of it.
type Actor struct {
	ID        string
	Username  string
	Role      Role
	Superuser bool
	Staff     bool
}

func Anonymous() Actor {
	return Actor{}
}

func (a Actor) IsAuthenticated() bool {
	return a.ID != ""
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Superuser
}

func (a Actor) IsModerator() bool {
	return a.Role == RoleModerator || a.Staff
}

func (a Actor) IsRegular() bool {
	return a.Role == RoleUser
}
