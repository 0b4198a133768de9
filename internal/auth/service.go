package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/serfi-platform/user-management/internal"
	"github.com/serfi-platform/user-management/internal/core/events"
	"github.com/serfi-platform/user-management/internal/user"
)

// DirectoryAPI is the slice of the user directory the login flow needs.
type DirectoryAPI interface {
	GetByEmail(email string) (*user.User, error)
	GetByID(id int64) (*user.User, error)
	GetAuthorizationView(id int64) (*user.AuthorizationView, error)
	UpdateLastLogin(id int64, at time.Time) error
	SetPasswordHash(id int64, hash string) error
}

// Service orchestrates credential verification against the user directory.
type Service struct {
	directory      DirectoryAPI
	tokenGenerator TokenGeneratorAPI
	bcryptCost     int
	bus            *events.EventBus
	logger         *slog.Logger
	now            func() time.Time
}

func NewService(directory DirectoryAPI, tokenGen TokenGeneratorAPI, bcryptCost int, bus *events.EventBus, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		directory:      directory,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		bus:            bus,
		logger:         logger,
		now:            time.Now,
	}
}

func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * 7 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// Login resolves the user by email and verifies the password. Unknown email
// and wrong password are indistinguishable to the caller so registered
// addresses cannot be probed.
func (s *Service) Login(dto LoginDTO) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), apperrors.ErrCodeValidationFailed)
	}

	account, err := s.directory.GetByEmail(dto.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.NewInternalError("failed to complete login", err)
	}

	if !VerifyPassword(account.PasswordHash, dto.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	// Credential check already succeeded: a failed timestamp write must not
	// turn the login into a failure. Surface it to operators instead.
	if err := s.directory.UpdateLastLogin(account.ID, s.now().UTC()); err != nil {
		s.logger.Warn("failed to update last login timestamp", "error", err, "user_id", account.ID)
	}

	view, err := s.directory.GetAuthorizationView(account.ID)
	if err != nil {
		s.logger.Error("failed to build authorization view after login", "error", err, "user_id", account.ID)
		return nil, apperrors.NewInternalError("failed to complete login", err)
	}

	accessToken, err := s.tokenGenerator.GenerateAccessToken(account.ID, account.Email)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue tokens", err)
	}
	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(account.ID, account.Email)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue tokens", err)
	}

	if s.bus != nil {
		s.bus.Publish(context.Background(), events.NewUserLoggedInEvent(account.ID, account.Email))
	}

	return &LoginResult{
		User:         *view,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ChangePassword verifies the current password before accepting the new one.
// A wrong current password is reported distinctly; the caller is already
// assumed authorized to attempt the change.
func (s *Service) ChangePassword(dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error(), apperrors.ErrCodeValidationFailed)
	}

	account, err := s.directory.GetByID(dto.UserID)
	if err != nil {
		return err
	}

	if !VerifyPassword(account.PasswordHash, dto.CurrentPassword) {
		return apperrors.ErrWrongCurrentPassword
	}

	hash, err := HashPassword(dto.NewPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError("failed to hash password", err)
	}

	if err := s.directory.SetPasswordHash(dto.UserID, hash); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return err
		}
		s.logger.Error("failed to store new password hash", "error", err, "user_id", dto.UserID)
		return apperrors.NewInternalError("failed to change password", err)
	}

	if s.bus != nil {
		s.bus.Publish(context.Background(), events.NewPasswordChangedEvent(dto.UserID))
	}
	return nil
}

// RefreshTokens validates a refresh token and rotates the pair.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	accessToken, err := s.tokenGenerator.GenerateAccessToken(claims.UserID, claims.Email)
	if err != nil {
		return AuthTokens{}, apperrors.NewInternalError("failed to issue tokens", err)
	}
	newRefreshToken, err := s.tokenGenerator.GenerateRefreshToken(claims.UserID, claims.Email)
	if err != nil {
		return AuthTokens{}, apperrors.NewInternalError("failed to issue tokens", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

// GetUserWithPermissions loads the authorization view for an authenticated
// user id. Used by the auth middleware to populate the request context.
func (s *Service) GetUserWithPermissions(userID int64) (*user.AuthorizationView, error) {
	return s.directory.GetAuthorizationView(userID)
}

// HashPassword hashes with the service's configured cost. Satisfies
// user.PasswordHasher so the directory stores hashes only.
func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

// BCryptHasher is a standalone user.PasswordHasher for wiring the user
// directory before the session service exists.
type BCryptHasher struct {
	cost int
}

func NewBCryptHasher(cost int) *BCryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BCryptHasher{cost: cost}
}

func (h *BCryptHasher) HashPassword(password string) (string, error) {
	return HashPassword(password, h.cost)
}

func (j *JWTTokenGenerator) GenerateAccessToken(userID int64, email string) (string, error) {
	return j.sign(userID, email, j.AccessTokenSecret, j.AccessTokenTTL)
}

func (j *JWTTokenGenerator) GenerateRefreshToken(userID int64, email string) (string, error) {
	return j.sign(userID, email, j.RefreshTokenSecret, j.RefreshTokenTTL)
}

func (j *JWTTokenGenerator) sign(userID int64, email string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) validate(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, apperrors.ErrInvalidToken
}
