package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yourorg/testtrack/internal/featureflags"
	"github.com/yourorg/testtrack/internal/handler"
	"github.com/yourorg/testtrack/internal/infrastructure/logger"
	"github.com/yourorg/testtrack/internal/infrastructure/redis"
	"github.com/yourorg/testtrack/internal/notify"
	"github.com/yourorg/testtrack/internal/observability/metrics"
	"github.com/yourorg/testtrack/internal/observability/tracing"
	"github.com/yourorg/testtrack/internal/reliability/retry"
	"github.com/yourorg/testtrack/internal/repository"
	"github.com/yourorg/testtrack/internal/security"
	"github.com/yourorg/testtrack/internal/security/audit"
	"github.com/yourorg/testtrack/internal/security/auth"
	"github.com/yourorg/testtrack/internal/security/middleware"
	"github.com/yourorg/testtrack/internal/security/ratelimit"
	"github.com/yourorg/testtrack/internal/service"
	"github.com/yourorg/testtrack/internal/worker"
	"github.com/yourorg/testtrack/pkg/config"
	"github.com/yourorg/testtrack/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting TestTrack server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op without an OTLP endpoint)
	shutdownTracing, err := tracing.Init(ctx, log, cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer shutdownTracing(context.Background())

	retryCfg := retry.DefaultConfig()

	// 4. Connect to PostgreSQL
	pool, err := retry.Do(ctx, retryCfg, log, "connect postgres", func(ctx context.Context) (*database.ConnectionPool, error) {
		return database.NewConnectionPool(ctx, cfg, log)
	})
	if err != nil {
		log.Error("failed to connect to PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	db := pool.GetDB()

	// 5. Run migrations. Failures are logged and startup continues so a bad
	// migration never takes the API down with it.
	database.Migrate(db, log)

	// 6. Connect to Redis
	redisClient, err := retry.Do(ctx, retryCfg, log, "connect redis", func(ctx context.Context) (*redis.Client, error) {
		return redis.NewClient(cfg.RedisURL)
	})
	if err != nil {
		log.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	// 7. Initialize repositories
	userRepo := repository.NewPostgresUserRepository(db, log)
	projectRepo := repository.NewPostgresProjectRepository(db, log)
	suiteRepo := repository.NewPostgresSuiteRepository(db, log)
	testCaseRepo := repository.NewPostgresTestCaseRepository(db, log)
	executionRepo := repository.NewPostgresExecutionRepository(db, log)
	permissionRepo := repository.NewPostgresPermissionRepository(db, log)
	commentRepo := repository.NewPostgresCommentRepository(db, log)
	analyticsRepo := repository.NewPostgresAnalyticsRepository(db, log)

	// 8. Initialize services
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "testtrack", time.Duration(cfg.TokenTTLHours)*time.Hour)
	auditLogger := audit.NewLogger(log)
	mailer := notify.NewMailer(cfg, log)

	analyticsTTL := time.Duration(cfg.AnalyticsCacheTTLSeconds) * time.Second
	projectsTTL := time.Duration(cfg.ProjectsCacheTTLSeconds) * time.Second

	authService := service.NewAuthService(userRepo, tokenManager, log)
	projectService := service.NewProjectService(projectRepo, redisClient, projectsTTL, auditLogger, log)
	suiteService := service.NewSuiteService(suiteRepo, projectRepo, log)
	testCaseService := service.NewTestCaseService(testCaseRepo, userRepo, redisClient, mailer, auditLogger, log)
	executionService := service.NewExecutionService(executionRepo, testCaseRepo, permissionRepo, redisClient, log)
	permissionService := service.NewPermissionService(permissionRepo, userRepo, auditLogger, log)
	commentService := service.NewCommentService(commentRepo, testCaseRepo, log)
	analyticsService := service.NewAnalyticsService(analyticsRepo, redisClient, analyticsTTL, log)

	// 9. Initialize handlers
	authHandler := handler.NewAuthHandler(authService, log)
	projectHandler := handler.NewProjectHandler(projectService, log)
	suiteHandler := handler.NewSuiteHandler(suiteService, log)
	testCaseHandler := handler.NewTestCaseHandler(testCaseService, log)
	executionHandler := handler.NewExecutionHandler(executionService, log)
	permissionHandler := handler.NewPermissionHandler(permissionService, log)
	commentHandler := handler.NewCommentHandler(commentService, log)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, log)
	userHandler := handler.NewUserHandler(userRepo, log)
	healthHandler := handler.NewHealthHandler(pool, redisClient, log)

	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)

	admin := security.RoleAdmin
	testLead := security.RoleTestLead
	tester := security.RoleTester

	authz := security.NewAuthorizationService(log)
	requireRoles := func(h http.HandlerFunc, roles ...security.Role) http.Handler {
		return middleware.RequireAnyRole(authz, log, roles...)(h)
	}

	// 10. Setup HTTP routes
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/me", authHandler.Me)

	mux.Handle("POST /api/projects", requireRoles(projectHandler.Create, admin, testLead))
	mux.HandleFunc("GET /api/projects", projectHandler.List)
	mux.HandleFunc("GET /api/projects/{id}", projectHandler.Get)
	mux.Handle("PUT /api/projects/{id}", requireRoles(projectHandler.Update, admin, testLead))
	mux.Handle("DELETE /api/projects/{id}", requireRoles(projectHandler.Delete, admin))

	mux.Handle("POST /api/test-suites", requireRoles(suiteHandler.Create, admin, testLead))
	mux.HandleFunc("GET /api/test-suites/project/{id}", suiteHandler.ListByProject)

	mux.Handle("POST /api/test-cases", requireRoles(testCaseHandler.Create, admin, testLead, tester))
	mux.HandleFunc("GET /api/test-cases", testCaseHandler.List)
	mux.HandleFunc("GET /api/test-cases/passed", testCaseHandler.ListPassed)
	mux.HandleFunc("GET /api/test-cases/{id}", testCaseHandler.Get)
	mux.Handle("PUT /api/test-cases/{id}", requireRoles(testCaseHandler.Update, admin, testLead, tester))
	mux.Handle("PATCH /api/test-case-status/{id}/reopen", requireRoles(testCaseHandler.Reopen, admin))

	mux.Handle("POST /api/test-executions", requireRoles(executionHandler.Record, admin, testLead, tester))
	mux.HandleFunc("GET /api/test-executions/test-case/{id}", executionHandler.History)

	mux.Handle("POST /api/test-cases/{id}/comments", requireRoles(commentHandler.Create, admin, testLead, tester))
	mux.HandleFunc("GET /api/test-cases/{id}/comments", commentHandler.List)
	mux.HandleFunc("DELETE /api/comments/{id}", commentHandler.Delete)

	mux.Handle("POST /api/execution-permissions/grant", requireRoles(permissionHandler.Grant, admin))
	mux.Handle("DELETE /api/execution-permissions/revoke/{userId}", requireRoles(permissionHandler.Revoke, admin))
	mux.HandleFunc("GET /api/execution-permissions/check", permissionHandler.Check)
	mux.Handle("GET /api/execution-permissions", requireRoles(permissionHandler.List, admin))

	mux.HandleFunc("GET /api/analytics", analyticsHandler.Dashboard)

	mux.Handle("GET /api/users", requireRoles(userHandler.List, admin, testLead))

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Chain middleware: request ID -> metrics -> JWT -> rate limit
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.JWTMiddleware(tokenManager, log)(
				middleware.RateLimitMiddleware(rateLimiter, log)(mux),
			),
		),
		log,
	)
	rootHandler = otelhttp.NewHandler(rootHandler, "testtrack")

	// 11. Start the cache warmer unless disabled
	if !featureflags.Enabled("disable_cache_warmer") {
		warmer := worker.NewCacheWarmer(analyticsService, log, time.Duration(cfg.CacheWarmIntervalMinutes)*time.Minute)
		go warmer.Start(ctx)
	}

	// 12. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", cfg.RateLimitPerMinute),
		slog.String("rate_limit_window", "1m"),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop cache warmer
	rateLimiter.Stop()
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
