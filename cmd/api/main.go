package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"devsync/internal/app"
	"devsync/internal/config"
	"devsync/internal/database"
	apphttp "devsync/internal/http"
	"devsync/internal/http/handlers"
	"devsync/internal/http/metrics"
	httpmw "devsync/internal/http/middleware"
	"devsync/internal/http/response"
	"devsync/internal/observability"
	"devsync/internal/repository/postgres"
	"devsync/internal/security"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger()

	db := database.NewPostgres(database.PostgresConfig{
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	})
	defer db.Close()

	if err := database.RunMigrations(context.Background(), db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	userRepo := postgres.NewUserRepository(db)
	refreshRepo := postgres.NewRefreshTokenRepository(db)
	projectRepo := postgres.NewProjectRepository(db)
	applicationRepo := postgres.NewApplicationRepository(db)
	postRepo := postgres.NewPostRepository(db)
	commentRepo := postgres.NewCommentRepository(db)
	reportRepo := postgres.NewReportRepository(db)

	jwtProvider := security.NewJWTProvider(cfg.AccessSecret, cfg.RefreshSecret)

	authService := app.NewAuthService(userRepo, refreshRepo, jwtProvider, logger, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	projectService := app.NewProjectService(projectRepo)
	applicationService := app.NewApplicationService(applicationRepo, projectRepo, userRepo, logger)
	postService := app.NewPostService(postRepo, commentRepo)
	commentService := app.NewCommentService(commentRepo, postRepo)
	reportService := app.NewReportService(reportRepo, userRepo, projectRepo, postRepo, commentRepo, applicationRepo)

	var limiter httpmw.Limiter = httpmw.NewRateLimiter()
	if cfg.RedisAddr != "" {
		limiter = httpmw.NewRedisLimiter(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
		logger.Info().Str("addr", cfg.RedisAddr).Msg("using redis rate limiter")
	}

	collector := metrics.NewCollector()
	response.SetErrorCollector(collector)

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		AuthHandler:        handlers.NewAuthHandler(authService, limiter),
		ProjectHandler:     handlers.NewProjectHandler(projectService),
		ApplicationHandler: handlers.NewApplicationHandler(applicationService, limiter),
		PostHandler:        handlers.NewPostHandler(postService),
		CommentHandler:     handlers.NewCommentHandler(commentService),
		ReportHandler:      handlers.NewReportHandler(reportService),
		AuthMiddleware:     httpmw.NewAuthMiddleware(jwtProvider),
		Metrics:            collector,
		Logger:             logger,
		RequestTimeout:     cfg.RequestTimeout,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Msg("API started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("shutdown failed")
	}
}
