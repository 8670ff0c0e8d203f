package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the user_type discriminator selecting customer or vendor behaviour.
type Role string

// The two roles. A profile's role is fixed at creation.
const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
)

// ValidRole returns true if r is one of the known roles.
func ValidRole(r Role) bool {
	return r == RoleCustomer || r == RoleVendor
}

// User is a profile row in the users table.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      Role      `json:"user_type"`
	CreatedAt time.Time `json:"created_at"`
}

// IsVendor reports whether the profile belongs to a vendor.
func (u User) IsVendor() bool {
	return u.Role == RoleVendor
}

// NewProfile is the payload for creating a profile row.
type NewProfile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      Role      `json:"user_type"`
}

// ProfileUpdate is a partial update of a profile row. Nil fields are left alone.
type ProfileUpdate struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Empty reports whether the update changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Email == nil && p.AvatarURL == nil
}
