// Package app assembles repositories, caches, and services into the HTTP
// handler served by the server command.
package app

import (
	"net/http"
	"time"

	"quizarena/internal/cache"
	"quizarena/internal/config"
	"quizarena/internal/metrics"
	"quizarena/internal/repository"
	"quizarena/internal/service"
	"quizarena/internal/transport/rest"
	"quizarena/internal/transport/rest/middleware"
	"quizarena/internal/transport/ws"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Repositories is the persistence layer the services run on.
type Repositories struct {
	Users         repository.UserRepo
	Quizzes       repository.QuizRepo
	Questions     repository.QuestionRepo
	Sessions      repository.SessionRepo
	PlayerQuizzes repository.PlayerQuizRepo
	Answers       repository.AnswerRepo
}

type App struct {
	Config    config.Config
	Container *rest.Container
	Handler   http.Handler
}

// New wires every service against repos and the Redis client.
func New(cfg config.Config, repos Repositories, rdb *redis.Client) *App {
	cacheTTL := config.Duration(cfg.Redis.TTL, 24*time.Hour)
	m := metrics.New()
	hub := ws.NewHub()

	sessionCache := cache.NewSessionCache(rdb)
	leaderboardCache := cache.NewLeaderboardCache(rdb, cacheTTL)
	questionCache := cache.NewQuestionCache(rdb, repos.Questions, cacheTTL)

	authSvc := service.NewAuthService(cfg.Auth.JWTSecret, config.Duration(cfg.Auth.TokenTTL, 72*time.Hour))
	userSvc := service.NewUserService(repos.Users, authSvc)
	quizSvc := service.NewQuizService(repos.Quizzes, repos.Questions, repos.Users)
	generatorSvc := service.NewGeneratorService(cfg.AI, quizSvc)

	sessionSvc := service.NewSessionService(repos.Sessions, repos.Quizzes, repos.Questions, repos.Users, sessionCache, cfg.Session.DefaultDuration)
	sessionSvc.SetBroadcaster(hub)
	sessionSvc.SetMetrics(m)

	playerSvc := service.NewPlayerService(sessionSvc, repos.PlayerQuizzes, repos.Users)
	playerSvc.SetBroadcaster(hub)
	playerSvc.SetMetrics(m)

	recorder := service.NewAnswerRecorder(questionCache, repos.Answers)
	recorder.SetMetrics(m)
	aggregator := service.NewScoreAggregator(repos.Answers)
	leaderboardSvc := service.NewLeaderboardService(leaderboardCache, repos.PlayerQuizzes)

	completionSvc := service.NewCompletionService(repos.PlayerQuizzes, repos.Sessions, repos.Users, recorder, aggregator, leaderboardSvc, service.CompletionOptions{
		EnforceEndTime: cfg.Session.EnforceEndTime,
		Grace:          config.Duration(cfg.Session.Grace, 30*time.Second),
	})
	completionSvc.SetBroadcaster(hub)
	completionSvc.SetMetrics(m)

	answerSvc := service.NewAnswerService(repos.PlayerQuizzes, recorder, aggregator)
	reportSvc := service.NewReportService(sessionSvc, repos.PlayerQuizzes, repos.Answers, repos.Questions)

	container := &rest.Container{
		AuthService:        authSvc,
		UserService:        userSvc,
		QuizService:        quizSvc,
		GeneratorService:   generatorSvc,
		SessionService:     sessionSvc,
		PlayerService:      playerSvc,
		AnswerService:      answerSvc,
		CompletionService:  completionSvc,
		LeaderboardService: leaderboardSvc,
		ReportService:      reportSvc,
		Metrics:            m,
		WSHub:              hub,
		JoinLimiter:        middleware.NewRateLimiter(cfg.RateLimit.Requests, config.Duration(cfg.RateLimit.Window, time.Minute)),
		CORSOrigins:        rest.ParseOrigins(cfg.Server.CORSOrigins),
	}

	return &App{
		Config:    cfg,
		Container: container,
		Handler:   rest.NewRouter(container),
	}
}

// Close stops background workers.
func (a *App) Close() {
	a.Container.JoinLimiter.Stop()
	a.Container.WSHub.Close()
}

// MongoRepositories builds the Mongo-backed repositories.
func MongoRepositories(db *mongo.Database) Repositories {
	return Repositories{
		Users:         repository.NewUserRepo(db),
		Quizzes:       repository.NewQuizRepo(db),
		Questions:     repository.NewQuestionRepo(db),
		Sessions:      repository.NewSessionRepo(db),
		PlayerQuizzes: repository.NewPlayerQuizRepo(db),
		Answers:       repository.NewAnswerRepo(db),
	}
}
