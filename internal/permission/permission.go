// AngelaMos | 2026
// permission.go

package permission

import "net/http"

// The predicates below are pure functions of (actor, method, owner).
// Handlers consult them in two phases: the collection phase before any
// resource is resolved, the instance phase once the target is loaded.

func ReadOnlyMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// AdminOnly gates the user-management collection: every operation,
// reads included, requires an authenticated admin.
func AdminOnly(actor Actor) bool {
	return actor.IsAuthenticated() && actor.IsAdmin()
}

// AdminOrReadOnly gates categories, genres and titles: reads are public,
// writes require an authenticated admin.
func AdminOrReadOnly(actor Actor, method string) bool {
	return ReadOnlyMethod(method) ||
		(actor.IsAuthenticated() && actor.IsAdmin())
}

// AuthorModeratorAdminCollection is the collection phase for reviews and
// comments: reads are public, writes require authentication. Anonymous
// writers are rejected here, before any ancestor lookup happens.
func AuthorModeratorAdminCollection(actor Actor, method string) bool {
	return ReadOnlyMethod(method) || actor.IsAuthenticated()
}

// AuthorModeratorAdminInstance is the instance phase: a write against a
// specific review or comment is allowed for its author, a moderator or
// an admin. ownerID is the author of the loaded resource.
func AuthorModeratorAdminInstance(
	actor Actor,
	method string,
	ownerID string,
) bool {
	return ReadOnlyMethod(method) ||
		actor.ID == ownerID ||
		actor.IsAdmin() ||
		actor.IsModerator()
}
