package user

import "errors"

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

type User struct {
	ID           int64  `json:"user_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // never expose hash in JSON
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Telephone    string `json:"telephone,omitempty"`
	Address      string `json:"address,omitempty"`
	Role         string `json:"role"`
}

var (
	ErrNotFound    = errors.New("user not found")
	ErrAlreadyUsed = errors.New("username or email already in use")
)

func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleAdmin
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=60"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required,max=80"`
	LastName  string `json:"last_name" binding:"required,max=80"`
	Telephone string `json:"telephone" binding:"omitempty,max=30"`
	Address   string `json:"address" binding:"omitempty,max=200"`
	Role      string `json:"role" binding:"omitempty,oneof=student admin"`
}

// Unset fields leave the stored value unchanged. An empty password is
// treated as "no change", never as "set empty password", so it carries
// no binding rules here; the handler enforces the minimum length once
// the value is known to be non-empty.
type UpdateRequest struct {
	Username  *string `json:"username" binding:"omitempty,min=3,max=60"`
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"first_name" binding:"omitempty,max=80"`
	LastName  *string `json:"last_name" binding:"omitempty,max=80"`
	Telephone *string `json:"telephone" binding:"omitempty,max=30"`
	Address   *string `json:"address" binding:"omitempty,max=200"`
	Role      *string `json:"role" binding:"omitempty,oneof=student admin"`
	Password  *string `json:"password"`
}

// WantsRoleChange reports whether the payload is trying to set a role.
func (r UpdateRequest) WantsRoleChange() bool {
	return r.Role != nil && *r.Role != ""
}

type ListFilter struct {
	Search *string
	Role   *string
}
