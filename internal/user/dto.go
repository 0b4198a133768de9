package user

import (
	errors "github.com/serfi-platform/user-management/internal"
	"github.com/serfi-platform/user-management/internal/core/common/validation"
)

// CreateUserDTO is the payload for registering a user. The password arrives
// as plaintext and is hashed before it reaches the repository.
type CreateUserDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Country  string `json:"country"`
	RoleID   int64  `json:"role_id"`
}

func (dto CreateUserDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(200)
	v.Field("email", dto.Email).Required().Email().MaxLength(254)
	v.Field("password", dto.Password).Required().MinLength(6).MaxLength(72)
	v.Field("role_id", dto.RoleID).Required()
	return v.Validate()
}

// UpdateUserDTO carries a partial update. A nil field means "leave the stored
// value unchanged"; this is distinct from a pointer to an empty string. A nil
// or empty password never touches the stored hash.
type UpdateUserDTO struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Country  *string `json:"country"`
	RoleID   *int64  `json:"role_id"`
}

func (dto UpdateUserDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", dto.Name).Required().MaxLength(200)
	}
	if dto.Email != nil {
		v.Field("email", dto.Email).Required().Email().MaxLength(254)
	}
	if dto.Password != nil && *dto.Password != "" {
		v.Field("password", dto.Password).MinLength(6).MaxLength(72)
	}
	return v.Validate()
}

// IsEmpty reports whether the update would change nothing.
func (dto UpdateUserDTO) IsEmpty() bool {
	return dto.Name == nil && dto.Email == nil && dto.Password == nil &&
		dto.Country == nil && dto.RoleID == nil
}
