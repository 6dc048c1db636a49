package rest

import (
	"net/http"
	"strings"

	"quizarena/internal/metrics"
	"quizarena/internal/service"
	"quizarena/internal/transport/rest/handler"
	"quizarena/internal/transport/rest/middleware"
	"quizarena/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService        *service.AuthService
	UserService        *service.UserService
	QuizService        *service.QuizService
	GeneratorService   *service.GeneratorService
	SessionService     *service.SessionService
	PlayerService      *service.PlayerService
	AnswerService      *service.AnswerService
	CompletionService  *service.CompletionService
	LeaderboardService *service.LeaderboardService
	ReportService      *service.ReportService
	Metrics            *metrics.Metrics
	WSHub              *ws.Hub
	JoinLimiter        *middleware.RateLimiter
	CORSOrigins        []string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	validate := handler.NewValidator()
	authHandler := handler.NewAuthHandler(c.UserService, validate)
	quizHandler := handler.NewQuizHandler(c.QuizService, c.GeneratorService, validate)
	sessionHandler := handler.NewSessionHandler(c.SessionService, c.PlayerService, c.LeaderboardService, validate)
	playerHandler := handler.NewPlayerHandler(c.PlayerService, c.AnswerService, c.CompletionService, validate)
	reportHandler := handler.NewReportHandler(c.ReportService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.SessionService, c.PlayerService, c.CORSOrigins)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(corsMiddleware(c.CORSOrigins))
	r.Use(middleware.RequestID)
	r.Use(middleware.Instrument(c.Metrics))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.Handle("/metrics", c.Metrics.Handler()).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/leaderboard", authHandler.Leaderboard).Methods("GET", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/sessions/{sessionId}/host", wsHandler.HostWS).Methods("GET")
	v1.HandleFunc("/ws/sessions/{sessionId}/player", wsHandler.PlayerWS).Methods("GET")

	// Authenticated routes
	user := v1.NewRoute().Subrouter()
	user.Use(authMW.RequireUser)

	user.HandleFunc("/users/me", authHandler.Me).Methods("GET", "OPTIONS")

	user.HandleFunc("/quizzes", quizHandler.Create).Methods("POST", "OPTIONS")
	user.HandleFunc("/quizzes/mine", quizHandler.Mine).Methods("GET", "OPTIONS")
	user.HandleFunc("/quizzes/generate", quizHandler.Generate).Methods("POST", "OPTIONS")
	user.HandleFunc("/quizzes/{quizId}", quizHandler.Get).Methods("GET", "OPTIONS")
	user.HandleFunc("/quizzes/{quizId}/questions", quizHandler.AddQuestion).Methods("POST", "OPTIONS")
	user.HandleFunc("/quizzes/{quizId}/import", quizHandler.Import).Methods("POST", "OPTIONS")

	user.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	user.HandleFunc("/sessions", sessionHandler.List).Methods("GET", "OPTIONS")
	user.HandleFunc("/sessions/rehost", sessionHandler.Rehost).Methods("POST", "OPTIONS")
	user.Handle("/sessions/by-code/{code}", c.JoinLimiter.Middleware(http.HandlerFunc(sessionHandler.JoinByCode))).Methods("GET", "OPTIONS")
	user.HandleFunc("/sessions/{sessionId}", sessionHandler.Get).Methods("GET", "OPTIONS")
	user.HandleFunc("/sessions/{sessionId}/end", sessionHandler.End).Methods("POST", "OPTIONS")
	user.HandleFunc("/sessions/{sessionId}/leaderboard", sessionHandler.Leaderboard).Methods("GET", "OPTIONS")
	user.HandleFunc("/sessions/{sessionId}/result", reportHandler.PlayerResult).Methods("GET", "OPTIONS")

	user.HandleFunc("/answers", playerHandler.SubmitAnswer).Methods("POST", "OPTIONS")
	user.HandleFunc("/completions", playerHandler.Complete).Methods("POST", "OPTIONS")
	user.HandleFunc("/player-quiz/{playerQuizId}", playerHandler.GetPlayerQuiz).Methods("GET", "OPTIONS")
	user.HandleFunc("/player-quiz/{playerQuizId}/settings", playerHandler.UpdateSettings).Methods("PATCH", "OPTIONS")

	return r
}

// ParseOrigins splits a comma separated origin list.
func ParseOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func corsMiddleware(origins []string) mux.MiddlewareFunc {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
