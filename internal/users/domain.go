package users

import (
	"time"

	"github.com/minimart-pos/minimart-pos/internal/rbac"
)

// User is a staff account. The password hash never leaves the package.
type User struct {
	ID        int64     `json:"user_id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      rbac.Role `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PasswordHash string `json:"-"`
}

// CreateInput describes a new account.
type CreateInput struct {
	Username string
	Password string
	FullName string
	Email    string
	Phone    string
	Role     string
}

// Update is a typed partial update. Nil fields are left untouched.
type Update struct {
	FullName *string
	Email    *string
	Phone    *string
	Role     *string
	IsActive *bool
	Password *string
}

// Empty reports whether the update carries no changes.
func (u Update) Empty() bool {
	return u.FullName == nil && u.Email == nil && u.Phone == nil &&
		u.Role == nil && u.IsActive == nil && u.Password == nil
}
