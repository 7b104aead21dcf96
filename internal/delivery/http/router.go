package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// NewRouter initializes the main service router with all event routes.
// Admin routes require a token carrying the admin role.
func NewRouter(
	public *controllers.PublicEventController,
	users *controllers.UserEventController,
	admin *controllers.AdminEventController,
	comments *controllers.CommentController,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()
	requireAdmin := middleware.RequireRole(verifier, domain.RoleAdmin)

	// Public
	mux.HandleFunc("GET /events", public.SearchEvents)
	mux.HandleFunc("GET /events/{id}", public.GetEvent)
	mux.HandleFunc("POST /events/{eventId}/comments/screen", comments.ScreenComment)

	// Initiator
	mux.HandleFunc("GET /users/{userId}/events", users.ListEvents)
	mux.HandleFunc("POST /users/{userId}/events", users.CreateEvent)
	mux.HandleFunc("GET /users/{userId}/events/{eventId}", users.GetEvent)
	mux.HandleFunc("PATCH /users/{userId}/events/{eventId}", users.UpdateEvent)

	// Admin
	mux.HandleFunc("GET /admin/events", requireAdmin(admin.SearchEvents))
	mux.HandleFunc("PATCH /admin/events/{eventId}", requireAdmin(admin.UpdateEvent))
	mux.HandleFunc("GET /admin/events/{eventId}/forbidden-words", requireAdmin(admin.GetForbiddenWords))
	mux.HandleFunc("PATCH /admin/events/{eventId}/forbidden-words", requireAdmin(admin.MergeForbiddenWords))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewStatsRouter initializes the stats server router. Both routes require a service token.
func NewStatsRouter(stats *controllers.StatsController, verifier domain.TokenVerifier) *http.ServeMux {
	mux := http.NewServeMux()
	requireService := middleware.RequireRole(verifier, domain.RoleService)

	mux.HandleFunc("POST /hit", requireService(stats.SaveHit))
	mux.HandleFunc("GET /stats", requireService(stats.GetStats))

	return mux
}
