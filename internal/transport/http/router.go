// Package http exposes the quiz over JSON HTTP endpoints and a websocket feed.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"weekly-quiz-service/internal/app"
	"weekly-quiz-service/internal/auth"
	"weekly-quiz-service/internal/metrics"
)

// Services are the use cases the API serves.
type Services struct {
	Questions    *app.QuestionService
	Scheduler    *app.Scheduler
	Attempts     *app.AttemptService
	Leaderboard  *app.LeaderboardService
	Contributors *app.ContributorService
	Audio        *app.AudioProxy
}

type Options struct {
	JWTSecret []byte
	AudioPath string
	Metrics   *metrics.Metrics
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	Log            *logrus.Entry
}

// API holds the handlers' shared dependencies.
type API struct {
	svc     Services
	metrics *metrics.Metrics
	log     *logrus.Entry
	ws      *WSHandler
}

func NewRouter(svc Services, opts Options) http.Handler {
	if opts.AudioPath == "" {
		opts.AudioPath = "/api/audio"
	}
	a := &API{
		svc:     svc,
		metrics: opts.Metrics,
		log:     opts.Log,
		ws:      NewWSHandler(svc.Leaderboard, opts.Log),
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(requestLogger(opts.Log))
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(auth.Middleware(opts.JWTSecret))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]string{"status": "ok"}})
	})
	if opts.MetricsHandler != nil {
		mux.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}
	mux.Get("/ws/leaderboard", a.ws.ServeWS)
	mux.Get(opts.AudioPath, a.handleAudio)

	mux.Route("/api/quiz", func(r chi.Router) {
		r.Get("/current", a.handleCurrent)
		r.Get("/archive", a.handleArchive)
		r.Post("/guess", a.handleGuess)
		r.Post("/score", a.handleScore)
		r.Get("/leaderboard", a.handleLeaderboard)
	})

	mux.Post("/api/questions", a.handleSubmit)

	mux.Route("/api/contributors", func(r chi.Router) {
		r.Get("/me", a.handleContributorMe)
		r.Post("/register", a.handleRegister)
	})

	mux.Route("/api/admin", func(r chi.Router) {
		r.Get("/questions", a.handleListQuestions)
		r.Post("/questions/moderate", a.handleModerate)

		r.Get("/schedule", a.handleListSchedule)
		r.Post("/schedule/autofill", a.handleAutoFill)
		r.Post("/schedule/activate", a.handleActivate)

		r.Get("/contributors", a.handleListContributors)
		r.Post("/contributors", a.handleCreateInvite)
		r.Post("/contributors/{id}/active", a.handleSetContributorActive)
		r.Delete("/contributors/{id}", a.handleDeleteContributor)
	})

	return mux
}

// requestLogger logs one line per request with the chi request id.
func requestLogger(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				log.WithFields(logrus.Fields{
					"request_id": middleware.GetReqID(r.Context()),
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     ww.Status(),
					"bytes":      ww.BytesWritten(),
					"duration":   time.Since(start).String(),
				}).Info("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
