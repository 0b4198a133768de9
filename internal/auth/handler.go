package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apperrors "github.com/serfi-platform/user-management/internal"
	"github.com/serfi-platform/user-management/internal/transport"
	"github.com/serfi-platform/user-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// Login handles POST /user/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.Login(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// RefreshToken handles POST /user/refresh.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.Service.RefreshTokens(dto.RefreshToken)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// ChangePassword handles POST /user/change-password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var dto ChangePasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.ChangePassword(dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

// Me handles GET /users/me and returns the authenticated user's own
// authorization view from the request context.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	view, ok := UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

// AuthMiddleware validates the bearer token and loads the caller's
// authorization view into the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := h.ExtractTokenFromHeader(r)
		if tokenString == "" {
			h.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		claims, err := h.Service.ValidateAccessToken(tokenString)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}

		view, err := h.Service.GetUserWithPermissions(claims.UserID)
		if err != nil {
			if _, ok := apperrors.IsAppError(err); ok {
				h.WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			h.WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), view)))
	})
}
