// Package identity describes who is calling an operation.
package identity

// UserID is the opaque identifier of a user account.
type UserID string

// Role is the authorization role of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Identity is the authenticated caller of an operation. It is either Anonymous
// (the zero value) or a user with an id and a role.
type Identity struct {
	UserID UserID
	Role   Role
}

// Anonymous is the identity of a caller without a valid session.
var Anonymous = Identity{}

// NewUser returns the identity of a signed-in user. An empty role is treated as RoleUser.
func NewUser(id UserID, role Role) Identity {
	if role == "" {
		role = RoleUser
	}

	return Identity{UserID: id, Role: role}
}

// IsAnonymous reports whether the caller has no user id.
func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}

// IsAdmin reports whether the caller is a signed-in administrator.
func (i Identity) IsAdmin() bool {
	return !i.IsAnonymous() && i.Role == RoleAdmin
}

// Owns reports whether the caller is the signed-in user identified by owner.
func (i Identity) Owns(owner UserID) bool {
	return !i.IsAnonymous() && owner != "" && i.UserID == owner
}
