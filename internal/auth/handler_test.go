package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	apperrors "github.com/serfi-platform/user-management/internal"
	"github.com/serfi-platform/user-management/internal/user"
)

// Mock service for handler tests
type mockAuthService struct {
	loginResult    *LoginResult
	loginErr       error
	changePwErr    error
	refreshTokens  AuthTokens
	refreshErr     error
	validateClaims *Claims
	validateErr    error
	view           *user.AuthorizationView
	viewErr        error
}

func (m *mockAuthService) Login(dto LoginDTO) (*LoginResult, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.loginResult, nil
}

func (m *mockAuthService) ChangePassword(dto ChangePasswordDTO) error {
	return m.changePwErr
}

func (m *mockAuthService) RefreshTokens(refreshToken string) (AuthTokens, error) {
	if m.refreshErr != nil {
		return AuthTokens{}, m.refreshErr
	}
	return m.refreshTokens, nil
}

func (m *mockAuthService) ValidateAccessToken(tokenString string) (*Claims, error) {
	if m.validateErr != nil {
		return nil, m.validateErr
	}
	return m.validateClaims, nil
}

func (m *mockAuthService) GetUserWithPermissions(userID int64) (*user.AuthorizationView, error) {
	if m.viewErr != nil {
		return nil, m.viewErr
	}
	return m.view, nil
}

var _ = ginkgo.Describe("AuthHandler", func() {
	var (
		handler *Handler
		service *mockAuthService
	)

	ginkgo.BeforeEach(func() {
		service = &mockAuthService{}
		handler = NewHandler(service)
	})

	postJSON := func(path string, payload interface{}) (*httptest.ResponseRecorder, *http.Request) {
		body, err := json.Marshal(payload)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return httptest.NewRecorder(), req
	}

	ginkgo.Describe("Login", func() {
		ginkgo.It("should return the view and tokens on success", func() {
			service.loginResult = &LoginResult{
				User:         user.AuthorizationView{ID: 1, Email: "alice@example.com", RoleName: "Client", Permissions: []string{user.PermReadOwnData}},
				AccessToken:  "access",
				RefreshToken: "refresh",
			}
			rec, req := postJSON("/user/login", LoginDTO{Email: "alice@example.com", Password: "pw"})

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

			var result LoginResult
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(gomega.Succeed())
			gomega.Expect(result.User.Email).To(gomega.Equal("alice@example.com"))
			gomega.Expect(result.AccessToken).To(gomega.Equal("access"))
			gomega.Expect(result.RefreshToken).To(gomega.Equal("refresh"))
		})

		ginkgo.It("should answer identical 401 bodies for any credential failure", func() {
			service.loginErr = apperrors.ErrInvalidCredentials

			firstRec, firstReq := postJSON("/user/login", LoginDTO{Email: "nobody@example.com", Password: "pw"})
			handler.Login(firstRec, firstReq)

			secondRec, secondReq := postJSON("/user/login", LoginDTO{Email: "alice@example.com", Password: "wrong"})
			handler.Login(secondRec, secondReq)

			gomega.Expect(firstRec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(secondRec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(firstRec.Body.String()).To(gomega.Equal(secondRec.Body.String()))
		})

		ginkgo.It("should reject a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/user/login", bytes.NewReader([]byte("{not json")))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("ChangePassword", func() {
		ginkgo.It("should return 200 on success", func() {
			rec, req := postJSON("/user/change-password", ChangePasswordDTO{
				UserID: 1, CurrentPassword: "old_password", NewPassword: "new_password",
			})

			handler.ChangePassword(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should return 404 for an unknown user", func() {
			service.changePwErr = apperrors.ErrUserNotFound
			rec, req := postJSON("/user/change-password", ChangePasswordDTO{
				UserID: 42, CurrentPassword: "old_password", NewPassword: "new_password",
			})

			handler.ChangePassword(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
		})

		ginkgo.It("should return 400 for a wrong current password", func() {
			service.changePwErr = apperrors.ErrWrongCurrentPassword
			rec, req := postJSON("/user/change-password", ChangePasswordDTO{
				UserID: 1, CurrentPassword: "bad", NewPassword: "new_password",
			})

			handler.ChangePassword(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("RefreshToken", func() {
		ginkgo.It("should return the rotated pair", func() {
			service.refreshTokens = AuthTokens{AccessToken: "new_access", RefreshToken: "new_refresh"}
			rec, req := postJSON("/user/refresh", RefreshTokenDTO{RefreshToken: "old_refresh"})

			handler.RefreshToken(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

			var tokens AuthTokens
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &tokens)).To(gomega.Succeed())
			gomega.Expect(tokens.AccessToken).To(gomega.Equal("new_access"))
		})

		ginkgo.It("should return 401 for an invalid refresh token", func() {
			service.refreshErr = apperrors.ErrInvalidToken
			rec, req := postJSON("/user/refresh", RefreshTokenDTO{RefreshToken: "garbage"})

			handler.RefreshToken(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("should return 400 for an empty refresh token", func() {
			rec, req := postJSON("/user/refresh", RefreshTokenDTO{})

			handler.RefreshToken(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("AuthMiddleware", func() {
		var next http.Handler
		var nextCalled bool

		ginkgo.BeforeEach(func() {
			nextCalled = false
			next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})
		})

		ginkgo.It("should reject a request without a bearer token", func() {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(nextCalled).To(gomega.BeFalse())
		})

		ginkgo.It("should reject an invalid token", func() {
			service.validateErr = apperrors.ErrInvalidToken
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req.Header.Set("Authorization", "Bearer bad-token")
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(nextCalled).To(gomega.BeFalse())
		})

		ginkgo.It("should put the caller's view into the request context", func() {
			service.validateClaims = &Claims{UserID: 1, Email: "alice@example.com"}
			service.view = &user.AuthorizationView{ID: 1, Email: "alice@example.com", Permissions: []string{user.PermReadOwnData}}

			var fromCtx *user.AuthorizationView
			inspect := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fromCtx, _ = UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req.Header.Set("Authorization", "Bearer good-token")
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(inspect).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(fromCtx).ToNot(gomega.BeNil())
			gomega.Expect(fromCtx.Email).To(gomega.Equal("alice@example.com"))
		})
	})

	ginkgo.Describe("Me", func() {
		ginkgo.It("should return the context view", func() {
			view := &user.AuthorizationView{ID: 1, Email: "alice@example.com", RoleName: "Client", Permissions: []string{user.PermReadOwnData}}
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req = req.WithContext(ContextWithUser(req.Context(), view))
			rec := httptest.NewRecorder()

			handler.Me(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

			var got user.AuthorizationView
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &got)).To(gomega.Succeed())
			gomega.Expect(got.RoleName).To(gomega.Equal("Client"))
		})

		ginkgo.It("should reject a request without an authenticated user", func() {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			rec := httptest.NewRecorder()

			handler.Me(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.Describe("PermissionChecker", func() {
		var checker *PermissionChecker
		var next http.Handler
		var nextCalled bool

		ginkgo.BeforeEach(func() {
			checker = NewPermissionChecker()
			nextCalled = false
			next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})
		})

		requestWithView := func(view *user.AuthorizationView) *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/user", nil)
			if view != nil {
				req = req.WithContext(ContextWithUser(req.Context(), view))
			}
			return req
		}

		ginkgo.It("should pass a caller holding the permission", func() {
			view := &user.AuthorizationView{ID: 1, Permissions: []string{user.PermReadUsers}}
			rec := httptest.NewRecorder()

			checker.RequireReadUsers()(next).ServeHTTP(rec, requestWithView(view))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(nextCalled).To(gomega.BeTrue())
		})

		ginkgo.It("should return 403 for a caller lacking the permission", func() {
			view := &user.AuthorizationView{ID: 1, Permissions: []string{user.PermReadOwnData}}
			rec := httptest.NewRecorder()

			checker.RequireDeleteUser()(next).ServeHTTP(rec, requestWithView(view))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(nextCalled).To(gomega.BeFalse())
		})

		ginkgo.It("should return 401 when no user is in context", func() {
			rec := httptest.NewRecorder()

			checker.RequireReadUsers()(next).ServeHTTP(rec, requestWithView(nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(nextCalled).To(gomega.BeFalse())
		})
	})
})
