package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/crm-management/internal/auth"
	"github.com/frahmantamala/crm-management/internal/authz"
	"github.com/frahmantamala/crm-management/internal/contract"
	"github.com/frahmantamala/crm-management/internal/customer"
	"github.com/frahmantamala/crm-management/internal/event"
	"github.com/frahmantamala/crm-management/internal/transport/middleware"
	"github.com/frahmantamala/crm-management/internal/transport/swagger"
	"github.com/frahmantamala/crm-management/internal/user"
)

// RegisterAllRoutes wires the full route tree. Each resource group sits
// behind a coarse <resource>:read gate; the services re-run the fine-grained
// decision on every call, so the middleware is a cheap first fence, not the
// authorization itself.
func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	rbac *auth.RBACAuthorization,
	userHandler *user.Handler,
	customerHandler *customer.Handler,
	contractHandler *contract.Handler,
	eventHandler *event.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/refresh", authHandler.RefreshToken)
			sr.Post("/logout", authHandler.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Get("/users/me", userHandler.Me)

			pr.Route("/users", func(ur chi.Router) {
				ur.Use(rbac.Middleware(authz.PermUserRead))
				ur.Post("/", userHandler.CreateUser)
				ur.Get("/", userHandler.ListUsers)
				ur.Get("/{id}", userHandler.GetUser)
				ur.Patch("/{id}", userHandler.UpdateUser)
				ur.Delete("/{id}", userHandler.DeleteUser)
			})

			pr.Route("/customers", func(cr chi.Router) {
				cr.Use(rbac.Middleware(authz.PermCustomerRead))
				cr.Post("/", customerHandler.CreateCustomer)
				cr.Get("/", customerHandler.ListCustomers)
				cr.Get("/{id}", customerHandler.GetCustomer)
				cr.Patch("/{id}", customerHandler.UpdateCustomer)
				cr.Delete("/{id}", customerHandler.DeleteCustomer)
			})

			pr.Route("/contracts", func(cr chi.Router) {
				cr.Use(rbac.Middleware(authz.PermContractRead))
				cr.Post("/", contractHandler.CreateContract)
				cr.Get("/", contractHandler.ListContracts)
				cr.Get("/{id}", contractHandler.GetContract)
				cr.Patch("/{id}", contractHandler.UpdateContract)
				cr.Delete("/{id}", contractHandler.DeleteContract)
			})

			pr.Route("/events", func(er chi.Router) {
				er.Use(rbac.Middleware(authz.PermEventRead))
				er.Post("/", eventHandler.CreateEvent)
				er.Get("/", eventHandler.ListEvents)
				er.Get("/{id}", eventHandler.GetEvent)
				er.Patch("/{id}", eventHandler.UpdateEvent)
				er.Patch("/{id}/support", eventHandler.AssignSupport)
				er.Delete("/{id}", eventHandler.DeleteEvent)
			})
		})
	})
}
