package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	apperrors "github.com/serfi-platform/user-management/internal"
)

// Mock service for handler tests
type mockUserService struct {
	views      []AuthorizationView
	userByID   *User
	createView *AuthorizationView
	view       *AuthorizationView
	err        error
}

func (m *mockUserService) GetAll() ([]AuthorizationView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.views, nil
}

func (m *mockUserService) GetByID(id int64) (*User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.userByID, nil
}

func (m *mockUserService) Create(dto CreateUserDTO) (*AuthorizationView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.createView, nil
}

func (m *mockUserService) Update(id int64, dto UpdateUserDTO) error {
	return m.err
}

func (m *mockUserService) Delete(id int64) error {
	return m.err
}

func (m *mockUserService) GetAuthorizationView(id int64) (*AuthorizationView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.view, nil
}

var _ = ginkgo.Describe("UserHandler", func() {
	var (
		handler *Handler
		service *mockUserService
		router  *chi.Mux
	)

	ginkgo.BeforeEach(func() {
		service = &mockUserService{}
		handler = NewHandler(service)

		router = chi.NewRouter()
		router.Get("/user", handler.ListUsers)
		router.Post("/user", handler.CreateUser)
		router.Get("/user/{id}", handler.GetUser)
		router.Put("/user/{id}", handler.UpdateUser)
		router.Delete("/user/{id}", handler.DeleteUser)
		router.Get("/user/userWithRole/{id}", handler.GetUserWithRole)
	})

	ginkgo.Describe("ListUsers", func() {
		ginkgo.It("should return every user as an authorization view", func() {
			service.views = []AuthorizationView{
				{ID: 1, Email: "alice@example.com", RoleName: "Admin", Permissions: []string{PermReadUsers}},
				{ID: 2, Email: "bob@example.com", RoleName: "Client", Permissions: []string{PermReadOwnData}},
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

			var got []AuthorizationView
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &got)).To(gomega.Succeed())
			gomega.Expect(got).To(gomega.HaveLen(2))
			gomega.Expect(got[0].RoleName).To(gomega.Equal("Admin"))
		})
	})

	ginkgo.Describe("GetUser", func() {
		ginkgo.It("should return the user", func() {
			service.userByID = &User{ID: 1, Name: "Alice", Email: "alice@example.com"}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/1", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should return 404 for an unknown id", func() {
			service.err = apperrors.ErrUserNotFound

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/42", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
		})

		ginkgo.It("should return 400 for a non-numeric id", func() {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/abc", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("CreateUser", func() {
		ginkgo.It("should return 201 with the projected view", func() {
			service.createView = &AuthorizationView{ID: 1, Email: "alice@example.com", RoleName: "Client"}
			body, _ := json.Marshal(CreateUserDTO{
				Name: "Alice", Email: "alice@example.com", Password: "secret123", RoleID: 3,
			})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/user", bytes.NewReader(body)))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
		})

		ginkgo.It("should return 400 for a duplicate email", func() {
			service.err = apperrors.ErrEmailTaken
			body, _ := json.Marshal(CreateUserDTO{
				Name: "Alice", Email: "alice@example.com", Password: "secret123", RoleID: 3,
			})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/user", bytes.NewReader(body)))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should return 400 for a malformed body", func() {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/user", bytes.NewReader([]byte("{nope"))))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("UpdateUser", func() {
		ginkgo.It("should return 204 on success", func() {
			country := "Chile"
			body, _ := json.Marshal(UpdateUserDTO{Country: &country})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/user/1", bytes.NewReader(body)))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
		})

		ginkgo.It("should return 404 for an unknown id", func() {
			service.err = apperrors.ErrUserNotFound
			body, _ := json.Marshal(UpdateUserDTO{})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/user/42", bytes.NewReader(body)))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
		})
	})

	ginkgo.Describe("DeleteUser", func() {
		ginkgo.It("should return 204 on success", func() {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/user/1", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
		})

		ginkgo.It("should return 404 for an unknown id", func() {
			service.err = apperrors.ErrUserNotFound

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/user/42", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
		})
	})

	ginkgo.Describe("GetUserWithRole", func() {
		ginkgo.It("should return the authorization view", func() {
			service.view = &AuthorizationView{
				ID: 1, Email: "alice@example.com", RoleName: "Admin",
				Permissions: []string{PermCreateUser, PermDeleteUser, PermEditUser, PermReadOwnData, PermReadUsers},
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/userWithRole/1", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

			var got AuthorizationView
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &got)).To(gomega.Succeed())
			gomega.Expect(got.Permissions).To(gomega.HaveLen(5))
		})

		ginkgo.It("should return 404 for an unknown id", func() {
			service.err = apperrors.ErrUserNotFound

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/userWithRole/42", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
		})
	})
})
