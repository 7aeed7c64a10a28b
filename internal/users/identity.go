package users

import (
	"time"

	"github.com/gogotex/admin-service/internal/models"
)

// Identity is the authenticated view of a user: id, role and public profile
// fields. It never carries the password hash.
type Identity struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Linked    bool      `json:"linked"`
	CreatedAt time.Time `json:"createdAt"`
}

func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

func identityOf(u *models.User) Identity {
	return Identity{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Linked:    u.IsLinked(),
		CreatedAt: u.CreatedAt,
	}
}
