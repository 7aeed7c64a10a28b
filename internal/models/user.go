package models

import "time"

// Roles understood by the admin application.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a row of the users table. Username and email carry unique indexes;
// GoogleID is nullable so unlinked rows do not collide on the index.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"column:username;uniqueIndex;size:191;not null" json:"username"`
	Email     string    `gorm:"column:email;uniqueIndex;size:191;not null" json:"email"`
	Password  string    `gorm:"column:password;size:255;not null" json:"-"`
	Role      string    `gorm:"column:role;size:16;not null;default:'user'" json:"role"`
	GoogleID  *string   `gorm:"column:google_id;uniqueIndex;size:191" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsLinked reports whether an external Google identity is attached.
func (u *User) IsLinked() bool {
	return u.GoogleID != nil && *u.GoogleID != ""
}
