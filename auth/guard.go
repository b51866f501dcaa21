package auth

import "github.com/devmarvs/jokebox/apperr"

// Decision is the outcome of an authorization check.
type Decision int

const (
	Forbidden Decision = iota
	Allowed
)

func (d Decision) String() string {
	if d == Allowed {
		return "allowed"
	}
	return "forbidden"
}

// AuthorizeOwnerMutation allows a mutation only when the current user owns
// the resource. An empty id on either side is never an owner.
func AuthorizeOwnerMutation(ownerID, currentUserID string) Decision {
	if ownerID == "" || currentUserID == "" {
		return Forbidden
	}
	if ownerID != currentUserID {
		return Forbidden
	}
	return Allowed
}

// CheckOwnerMutation runs the existence guard, then the ownership guard.
// Callers must not mutate anything unless it returns nil.
func CheckOwnerMutation(found bool, ownerID, currentUserID string) error {
	if !found {
		return apperr.NotFound("not found", nil)
	}
	if AuthorizeOwnerMutation(ownerID, currentUserID) != Allowed {
		return apperr.Forbidden("you may only modify your own content", nil)
	}
	return nil
}
