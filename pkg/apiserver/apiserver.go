package apiserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/asepeyo/receipts-backend/pkg/directory"
	"github.com/asepeyo/receipts-backend/pkg/hierarchy"
	"github.com/asepeyo/receipts-backend/pkg/logger"
	"github.com/asepeyo/receipts-backend/pkg/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ResolverFactory builds a hierarchy resolver with a fresh delegated
// credential. A new resolver is created per request, credentials are never
// pooled across requests.
type ResolverFactory func(ctx context.Context) (*hierarchy.Resolver, error)

type Handler struct {
	resolvers ResolverFactory
	log       logger.Logger
}

func New(resolvers ResolverFactory, log logger.Logger) *Handler {
	return &Handler{
		resolvers: resolvers,
		log:       log.WithComponent("apiserver"),
	}
}

type managersResponse struct {
	Managers []hierarchy.Manager `json:"managers"`
	Error    *string             `json:"error"`
}

type usersResponse struct {
	Users []hierarchy.ManagedUser `json:"users"`
	Error *string                 `json:"error"`
}

type roleResponse struct {
	IsManager bool    `json:"isManager"`
	Error     *string `json:"error"`
}

func (h *Handler) Router() chi.Router {
	router := chi.NewRouter()

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Correlation-ID"},
		}))
		r.Use(middleware.CorrelationID)
		r.Use(middleware.RequireAuthenticatedEmail)

		r.Get("/me/role", h.getOwnRole)
		r.Get("/me/managers", h.getOwnManagers)
		r.Get("/me/reports", h.getOwnReports)
		r.Get("/users/{email}/managers", h.getManagersForUser)
	})

	return router
}

// getOwnRole tells the UI whether the caller manages anybody, which gates
// access to the approval review page.
func (h *Handler) getOwnRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := middleware.AuthenticatedEmail(ctx)

	resolver, err := h.resolvers(ctx)
	if err != nil {
		h.writeResolverError(w, r, err, func(msg *string) any {
			return roleResponse{Error: msg}
		})
		return
	}

	users, err := resolver.ResolveManagedUsers(ctx, email)
	if err != nil {
		h.writeResolverError(w, r, err, func(msg *string) any {
			return roleResponse{Error: msg}
		})
		return
	}

	writeJSON(w, http.StatusOK, roleResponse{IsManager: len(users) > 0})
}

func (h *Handler) getOwnManagers(w http.ResponseWriter, r *http.Request) {
	h.respondManagers(w, r, middleware.AuthenticatedEmail(r.Context()))
}

// getManagersForUser resolves the managers of an explicit subject, used by
// the export view to scope queries to a reviewer's own reports.
func (h *Handler) getManagersForUser(w http.ResponseWriter, r *http.Request) {
	h.respondManagers(w, r, chi.URLParam(r, "email"))
}

func (h *Handler) respondManagers(w http.ResponseWriter, r *http.Request, subject string) {
	ctx := r.Context()

	resolver, err := h.resolvers(ctx)
	if err != nil {
		h.writeResolverError(w, r, err, func(msg *string) any {
			return managersResponse{Error: msg}
		})
		return
	}

	managers, err := resolver.ResolveManagers(ctx, subject)
	if err != nil {
		h.writeResolverError(w, r, err, func(msg *string) any {
			return managersResponse{Error: msg}
		})
		return
	}

	writeJSON(w, http.StatusOK, managersResponse{Managers: managers})
}

func (h *Handler) getOwnReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := middleware.AuthenticatedEmail(ctx)

	resolver, err := h.resolvers(ctx)
	if err != nil {
		h.writeResolverError(w, r, err, func(msg *string) any {
			return usersResponse{Error: msg}
		})
		return
	}

	users, err := resolver.ResolveManagedUsers(ctx, email)
	if err != nil {
		h.writeResolverError(w, r, err, func(msg *string) any {
			return usersResponse{Error: msg}
		})
		return
	}

	writeJSON(w, http.StatusOK, usersResponse{Users: users})
}

// writeResolverError logs the internal error and responds with the user
// facing message in the payload shape of the endpoint.
func (h *Handler) writeResolverError(w http.ResponseWriter, r *http.Request, err error, payload func(msg *string) any) {
	log := h.log.WithCorrelationID(middleware.CorrelationIDFromContext(r.Context()))
	if email := middleware.AuthenticatedEmail(r.Context()); email != "" {
		log = log.WithUser(email)
	}
	log.WithError(err).Errorf("resolve hierarchy")

	msg := hierarchy.UserFacingError(err)
	writeJSON(w, statusFor(err), payload(&msg))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, hierarchy.ErrMissingSubject):
		return http.StatusBadRequest
	case errors.Is(err, directory.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, directory.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
