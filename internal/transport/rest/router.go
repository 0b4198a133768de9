package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/serfi-platform/user-management/internal/auth"
	"github.com/serfi-platform/user-management/internal/country"
	"github.com/serfi-platform/user-management/internal/transport/middleware"
	"github.com/serfi-platform/user-management/internal/transport/swagger"
	"github.com/serfi-platform/user-management/internal/user"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, redisClient *redis.Client, authHandler *auth.Handler, userHandler *user.Handler, countryHandler *country.Handler, allowedOrigins []string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, redisClient)
	rbac := auth.NewPermissionChecker()

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	// Apply global middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Public country directory used by signup forms
		if countryHandler != nil {
			r.Get("/countries", countryHandler.ListCountries)
		}

		if authHandler != nil {
			// Session routes, no token required
			r.Post("/user/login", authHandler.Login)
			r.Post("/user/refresh", authHandler.RefreshToken)

			// Protected routes that require authentication
			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)

				pr.Get("/users/me", authHandler.Me)
				pr.Post("/user/change-password", authHandler.ChangePassword)

				if userHandler != nil {
					pr.Route("/user", func(ur chi.Router) {
						ur.Group(func(gr chi.Router) {
							gr.Use(rbac.RequireReadUsers())
							gr.Get("/", userHandler.ListUsers)
							gr.Get("/{id}", userHandler.GetUser)
							gr.Get("/userWithRole/{id}", userHandler.GetUserWithRole)
						})

						ur.Group(func(gr chi.Router) {
							gr.Use(rbac.RequireCreateUser())
							gr.Post("/", userHandler.CreateUser)
						})

						ur.Group(func(gr chi.Router) {
							gr.Use(rbac.RequireEditUser())
							gr.Put("/{id}", userHandler.UpdateUser)
						})

						ur.Group(func(gr chi.Router) {
							gr.Use(rbac.RequireDeleteUser())
							gr.Delete("/{id}", userHandler.DeleteUser)
						})
					})
				}
			})
		}
	})
}
