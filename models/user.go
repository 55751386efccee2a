package models

import "time"

// Role names known to the system.
const (
	RoleAdmin      = "Admin"
	RoleUser       = "User"
	RoleRestaurant = "Restaurant"
)

// Role is a named role assignable to users.
type Role struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

type User struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Email         string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash  string         `json:"-" gorm:"not null"`
	FirstName     string         `json:"first_name" gorm:"not null"`
	LastName      string         `json:"last_name" gorm:"not null"`
	Address       string         `json:"address"`
	Phone         string         `json:"phone"`
	DateOfBirth   time.Time      `json:"date_of_birth"` // always stored in UTC
	Roles         []Role         `json:"roles,omitempty" gorm:"many2many:user_roles"`
	RefreshTokens []RefreshToken `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// RoleNames returns the user's role names for token claims.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// RefreshToken is an opaque long-lived credential owned by a user.
// Tokens are revoked rather than deleted so the rotation chain
// (ReplacedByToken) stays traceable; physical deletion happens only
// through pruning once a token is inactive and past retention.
type RefreshToken struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	UserID          uint       `json:"user_id" gorm:"index;not null"`
	Token           string     `json:"token" gorm:"uniqueIndex;not null"`
	Created         time.Time  `json:"created" gorm:"not null"`
	CreatedByIP     string     `json:"created_by_ip"`
	Expires         time.Time  `json:"expires" gorm:"index;not null"`
	Revoked         *time.Time `json:"revoked,omitempty" gorm:"index"`
	RevokedByIP     string     `json:"revoked_by_ip,omitempty"`
	ReplacedByToken string     `json:"replaced_by_token,omitempty"`
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.Expires)
}

func (t *RefreshToken) Active(now time.Time) bool {
	return t.Revoked == nil && !t.Expired(now)
}
