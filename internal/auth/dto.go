package auth

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordDTO requires the current password; it must verify before the
// new one is accepted.
type ChangePasswordDTO struct {
	UserID          int64  `json:"user_id"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d LoginDTO) Validate() error {
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

func (d RefreshTokenDTO) Validate() error {
	if d.RefreshToken == "" {
		return ValidationError{Msg: "refresh_token is required"}
	}
	return nil
}

func (d ChangePasswordDTO) Validate() error {
	if d.UserID == 0 {
		return ValidationError{Msg: "user_id is required"}
	}
	if d.CurrentPassword == "" {
		return ValidationError{Msg: "current_password is required"}
	}
	if d.NewPassword == "" {
		return ValidationError{Msg: "new_password is required"}
	}
	if len(d.NewPassword) < 6 {
		return ValidationError{Msg: "new_password must be at least 6 characters"}
	}
	return nil
}
