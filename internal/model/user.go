package model

import (
	"time"

	"github.com/authcore/authcore/pkg/kernel"
)

// User is the primary identity record (spec.md §3 "User").
type User struct {
	ID           kernel.UserID  `bson:"_id" json:"id"`
	Email        string         `bson:"email" json:"email"`
	FirstName    string         `bson:"first_name" json:"firstName"`
	LastName     string         `bson:"last_name" json:"lastName"`
	PasswordHash string         `bson:"password_hash" json:"-"`
	Salt         string         `bson:"salt" json:"-"`
	TOTPSecret   *string        `bson:"totp_secret,omitempty" json:"-"`
	Token        string         `bson:"token" json:"-"`
	Roles        []kernel.RoleID `bson:"roles" json:"roles"`
	Disabled     bool           `bson:"disabled" json:"disabled"`
	CreatedAt    time.Time      `bson:"created_at" json:"createdAt"`
}

// UserDTO is the sanitized representation returned over the wire: no password
// hash, salt, raw TOTP secret, or bearer token — only derived booleans.
type UserDTO struct {
	ID        kernel.UserID  `json:"id"`
	Email     string         `json:"email"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Roles     []kernel.RoleID `json:"roles"`
	Disabled  bool           `json:"disabled"`
	MFAEnabled bool          `json:"mfaEnabled"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ToDTO strips every sensitive field.
func (u *User) ToDTO() UserDTO {
	return UserDTO{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Roles:      u.Roles,
		Disabled:   u.Disabled,
		MFAEnabled: u.TOTPSecret != nil,
		CreatedAt:  u.CreatedAt,
	}
}

// HasRole reports whether the user's role set contains id.
func (u *User) HasRole(id kernel.RoleID) bool {
	for _, r := range u.Roles {
		if r == id {
			return true
		}
	}
	return false
}

// IsAdmin implements the §4.8 predicate `is_admin`.
func (u *User) IsAdmin() bool {
	return IsSystemUser(u.ID) || u.HasRole(AdminRoleID)
}

// IsSystem implements the §4.8 predicate `is_system`.
func (u *User) IsSystem() bool {
	return IsSystemUser(u.ID)
}

// MFAEnabled reports whether the user has completed TOTP enrollment.
func (u *User) MFAEnabled() bool {
	return u.TOTPSecret != nil
}
