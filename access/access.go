// Package access decides whether a principal may act on a resource. Every
// rule is a pure function and a denial is a value, not an error.
package access

import (
	"strconv"

	"github.com/krishkalaria12/snap-album/apperr"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a stored role string to a Role. Anything unknown is a
// plain user.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// Principal is the authenticated identity attached to a session or token.
type Principal struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

func (p Principal) IDString() string { return strconv.FormatUint(uint64(p.UserID), 10) }

type Decision bool

const (
	Authorized Decision = true
	Forbidden  Decision = false
)

func (d Decision) Allowed() bool { return bool(d) }

// Err converts a denial into a Forbidden failure carrying msg; it is nil when
// the decision is Authorized.
func (d Decision) Err(msg string) error {
	if d {
		return nil
	}
	return apperr.Forbidden(msg)
}

// SelfOrAdmin applies to user records: the principal acts on itself or is an admin.
func SelfOrAdmin(p Principal, ownerID uint) Decision {
	return Decision(p.UserID != 0 && (p.UserID == ownerID || p.IsAdmin()))
}

// OwnerOnly applies to photos, albums, tags and both ends of an association.
// Admins get no override here.
func OwnerOnly(p Principal, ownerID uint) Decision {
	return Decision(p.UserID != 0 && p.UserID == ownerID)
}

func AdminOnly(p Principal) Decision {
	return Decision(p.UserID != 0 && p.IsAdmin())
}
