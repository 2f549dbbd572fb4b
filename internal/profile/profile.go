package profile

import (
	"time"

	"github.com/google/uuid"
)

// Role governs route access across the application.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCoreTeam Role = "core_team"
	RoleMember   Role = "member"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoreTeam, RoleMember:
		return true
	}
	return false
}

// NotificationPreferences controls which delivery channels a member has
// opted into.
type NotificationPreferences struct {
	Email bool `json:"email"`
	InApp bool `json:"in_app"`
}

// Profile is the application-owned record describing a member, keyed 1:1
// by the identity provider's user id. A profile must exist for every
// session the application treats as logged in.
type Profile struct {
	ID                      uuid.UUID               `json:"id"`
	Email                   string                  `json:"email"`
	FirstName               string                  `json:"first_name"`
	LastName                string                  `json:"last_name"`
	Role                    Role                    `json:"role"`
	StudentID               *string                 `json:"student_id,omitempty"`
	Faculty                 *string                 `json:"faculty,omitempty"`
	YearOfStudy             *int                    `json:"year_of_study,omitempty"`
	Phone                   *string                 `json:"phone,omitempty"`
	ProfileImageURL         *string                 `json:"profile_image_url,omitempty"`
	Bio                     *string                 `json:"bio,omitempty"`
	NotificationPreferences NotificationPreferences `json:"notification_preferences"`
	CreatedAt               time.Time               `json:"created_at"`
	UpdatedAt               time.Time               `json:"updated_at"`
}

// FullName returns the member's display name.
func (p *Profile) FullName() string {
	if p == nil {
		return ""
	}
	return p.FirstName + " " + p.LastName
}

// UpdateParams carries a partial profile update. Nil fields are left
// untouched. Email and role are deliberately absent: email is owned by the
// identity provider, and role changes go through admin tooling.
type UpdateParams struct {
	FirstName               *string
	LastName                *string
	StudentID               *string
	Faculty                 *string
	YearOfStudy             *int
	Phone                   *string
	ProfileImageURL         *string
	Bio                     *string
	NotificationPreferences *NotificationPreferences
}

// Empty reports whether the update would change nothing.
func (p UpdateParams) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.StudentID == nil &&
		p.Faculty == nil && p.YearOfStudy == nil && p.Phone == nil &&
		p.ProfileImageURL == nil && p.Bio == nil && p.NotificationPreferences == nil
}
