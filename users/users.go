package users

import (
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/baysawarr-web/internal/errors"
)

// RoleType represents the role the remote API assigns to an account
type RoleType string

const (
	RoleMember  RoleType = "member"  // Enrolled producer or entrepreneur
	RoleAdmin   RoleType = "admin"   // Back-office operator
	RolePartner RoleType = "partner" // Partner organisation
	RoleClient  RoleType = "client"  // Buyer connected through the network
)

// Roles lists every role the API can return
var Roles = []RoleType{RoleMember, RoleAdmin, RolePartner, RoleClient}

// Valid reports whether r is one of the known roles
func (r RoleType) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Company holds the optional business details attached to an account
type Company struct {
	Name    string `json:"name,omitempty"`
	Sector  string `json:"sector,omitempty"`
	Country string `json:"country,omitempty"`
	Website string `json:"website,omitempty"`
}

// User is the identity record returned by the remote API
type User struct {
	ID        string   `json:"id"`                  // Unique identifier assigned by the API
	Email     string   `json:"email"`               // Login email
	FirstName string   `json:"firstName,omitempty"` // First name
	LastName  string   `json:"lastName,omitempty"`  // Last name
	Role      RoleType `json:"role"`                // One of Roles
	Phone     *string  `json:"phone,omitempty"`     // Optional phone number
	Photo     *string  `json:"photo,omitempty"`     // Optional photo URL
	Company   *Company `json:"company,omitempty"`   // Optional company details
}

// Validate checks the fields every identity payload must carry
func (u *User) Validate() error {
	if u == nil {
		return fmt.Errorf("[users Validate] nil identity: %w", apperrors.ErrMalformedIdentity)
	}
	if u.ID == "" || u.Email == "" {
		return fmt.Errorf("[users Validate] identity missing id or email: %w", apperrors.ErrMalformedIdentity)
	}
	if u.Role != "" && !u.Role.Valid() {
		return fmt.Errorf("[users Validate] role %q: %w", u.Role, apperrors.ErrInvalidRole)
	}
	return nil
}

// DisplayName returns "First Last", falling back to the email address
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return u.Email
}

// Initials returns up to two upper-case initials for avatar placeholders
func (u *User) Initials() string {
	var b strings.Builder
	for _, part := range []string{u.FirstName, u.LastName} {
		if part != "" {
			b.WriteString(strings.ToUpper(part[:1]))
		}
	}
	if b.Len() == 0 && u.Email != "" {
		b.WriteString(strings.ToUpper(u.Email[:1]))
	}
	return b.String()
}

// IsAdmin returns true if the account may use the back-office
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// HasRole checks if the user holds any of the given roles
func (u *User) HasRole(roles ...RoleType) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
