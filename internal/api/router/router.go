package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clinicware/intake-agent/internal/conversation"
	httpmiddleware "github.com/clinicware/intake-agent/internal/http/middleware"
	"github.com/clinicware/intake-agent/internal/webchat"
	"github.com/clinicware/intake-agent/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	IntakeHandler      *conversation.Handler
	WebchatHandler     *webchat.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Route("/api", func(api chi.Router) {
		api.Post("/chat", cfg.IntakeHandler.Chat)
		api.Post("/select-slot", cfg.IntakeHandler.SelectSlot)
		api.Get("/bookings/{bookingID}", cfg.IntakeHandler.GetBooking)
		api.Post("/reset-session", cfg.IntakeHandler.ResetSession)
		api.Get("/health", cfg.IntakeHandler.Health)
	})

	if cfg.WebchatHandler != nil {
		r.Handle("/chat/ws", cfg.WebchatHandler.WebSocketServer())
	}

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
