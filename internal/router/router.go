package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"zen-backend/internal/handlers"
	"zen-backend/internal/middleware"
	"zen-backend/internal/models"
	"zen-backend/internal/websocket"
)

func New(
	logger *zap.Logger,
	jwtAuth *middleware.JWTAuth,
	rateLimiter *middleware.RateLimiter,
	chatHandler *handlers.ChatHandler,
	profileHandler *handlers.ProfileHandler,
	contentHandler *handlers.ContentHandler,
	wsHub *websocket.Hub,
	maxBodyBytes int64,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(frontendURL))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Not found","code":"` + string(models.CodeNotFound) + `"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(rateLimiter.Middleware)
		r.Use(middleware.BodyLimit(maxBodyBytes))

		// ──── Chat Relay ────
		r.Get("/health", chatHandler.Health)
		r.Get("/test", chatHandler.Test)
		r.Post("/chat", chatHandler.Chat)
		r.Get("/chat/ws", wsHub.HandleWebSocket)

		// ──── Profile Routes ────
		r.Route("/profile", func(r chi.Router) {
			r.Post("/", profileHandler.Create) // Public

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Get("/", profileHandler.Get)
				r.Delete("/", profileHandler.Delete)
				r.Put("/questionnaire", profileHandler.CompleteQuestionnaire)
				r.Post("/check-ins", profileHandler.AddCheckIn)
				r.Post("/pomodoro-sessions", profileHandler.CompletePomodoro)
				r.Post("/lessons", profileHandler.CompleteLesson)
				r.Post("/breathing", profileHandler.CompleteBreathing)
				r.Get("/rewards", profileHandler.Rewards)
			})
		})

		// ──── Content Routes ────
		r.Route("/content", func(r chi.Router) {
			r.Get("/lessons", contentHandler.ListLessons)
			r.Get("/lessons/{slug}", contentHandler.GetLesson)
			r.Get("/study-techniques", contentHandler.ListStudyTechniques)
			r.Get("/psychologists", contentHandler.ListPsychologists)
		})
	})

	return r
}
