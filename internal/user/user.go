package user

import (
	"time"

	userDatamodel "github.com/serfi-platform/user-management/internal/core/datamodel/user"
)

// Permission names seeded at bootstrap. Roles reference these through the
// role_permissions association.
const (
	PermCreateUser  = "CreateUser"
	PermEditUser    = "EditUser"
	PermDeleteUser  = "DeleteUser"
	PermReadUsers   = "ReadUsers"
	PermReadOwnData = "ReadOwnData"
)

type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Country      string     `json:"country"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	RoleID       int64      `json:"role_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AuthorizationView is the flattened projection of a user plus their role
// name and the permission names held transitively through that role. It is
// computed on demand and never persisted.
type AuthorizationView struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Country     string     `json:"country"`
	RoleName    string     `json:"role_name"`
	LastLoginAt *time.Time `json:"last_login_at"`
	Permissions []string   `json:"permissions"`
}

func (v *AuthorizationView) HasPermission(permission string) bool {
	for _, p := range v.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Country:      u.Country,
		LastLoginAt:  u.LastLoginAt,
		RoleID:       u.RoleID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Country:      u.Country,
		LastLoginAt:  u.LastLoginAt,
		RoleID:       u.RoleID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
