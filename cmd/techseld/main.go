// Package main is the entry point for the techseld server.
//
// techseld exposes the technology selection planner over HTTP. It accepts
// a plan of technologies (profit, cost, dependencies), computes the most
// profitable closed subset via a max-flow reduction, and optionally stores
// the results in PostgreSQL for later retrieval and export.
//
// # Service Overview
//
// The server exposes the following endpoints:
//   - POST /v1/plans/solve             - Solve a plan (JSON or text format)
//   - GET  /v1/solutions               - List stored solutions (paginated)
//   - GET  /v1/solutions/{id}          - Get a stored solution
//   - GET  /v1/solutions/{id}/export   - Export a solution (csv, xlsx, pdf)
//   - GET  /healthz                    - Liveness probe
//
// # Architecture
//
// The service follows a clean architecture pattern with clear separation of concerns:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                     HTTP Transport Layer                    │
//	│  Middleware: recovery, request-id, logging, metrics,        │
//	│  CORS, rate-limit, auth (internal/middleware)               │
//	├─────────────────────────────────────────────────────────────┤
//	│                      Handler Layer                          │
//	│  (internal/handlers - routing, payload decoding,            │
//	│   pagination, report download)                              │
//	├─────────────────────────────────────────────────────────────┤
//	│                      Service Layer                          │
//	│  (internal/service - PlannerService)                        │
//	│  - Plan validation and size limits                          │
//	│  - Caching by canonical plan hash                           │
//	│  - Persistence of solved plans                              │
//	├─────────────────────────────────────────────────────────────┤
//	│                      Flow Network Layer                     │
//	│  (internal/flownet)                                         │
//	│  - Closure network construction                             │
//	│  - BFS augmenting-path max-flow                             │
//	│  - Min-cut extraction of the chosen set                     │
//	├─────────────────────────────────────────────────────────────┤
//	│                      Storage Layer                          │
//	│  (internal/repository - PostgreSQL via pgx)                 │
//	│  (internal/report - CSV/XLSX/PDF generation)                │
//	└─────────────────────────────────────────────────────────────┘
//
// # Configuration
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Environment variables (prefix: TECHSEL_)
//  2. Config files (config.yaml, config/config.yaml, /etc/techsel/config.yaml)
//  3. Default values
//
// Key configuration options (environment variable format):
//
//	# Application
//	TECHSEL_APP_NAME           - Service name (default: techsel)
//	TECHSEL_APP_VERSION        - Service version (default: 1.0.0)
//	TECHSEL_APP_ENVIRONMENT    - Environment: development, staging, production
//
//	# HTTP Server
//	TECHSEL_HTTP_PORT             - HTTP server port (default: 8080)
//	TECHSEL_HTTP_READ_TIMEOUT     - Read timeout (default: 30s)
//	TECHSEL_HTTP_WRITE_TIMEOUT    - Write timeout (default: 30s)
//	TECHSEL_HTTP_SHUTDOWN_TIMEOUT - Graceful shutdown timeout (default: 10s)
//
//	# Logging
//	TECHSEL_LOG_LEVEL    - Log level: debug, info, warn, error (default: info)
//	TECHSEL_LOG_FORMAT   - Log format: json, text (default: json)
//	TECHSEL_LOG_OUTPUT   - Output: stdout, stderr, file (default: stdout)
//	TECHSEL_LOG_FILE_PATH - Log file path when output=file
//
//	# Database (PostgreSQL)
//	TECHSEL_DATABASE_HOST         - Host (default: localhost)
//	TECHSEL_DATABASE_PORT         - Port (default: 5432)
//	TECHSEL_DATABASE_DATABASE     - Database name (default: techsel)
//	TECHSEL_DATABASE_USERNAME     - Username (default: postgres)
//	TECHSEL_DATABASE_PASSWORD     - Password
//	TECHSEL_DATABASE_AUTO_MIGRATE - Run embedded migrations on start (default: true)
//
//	# Caching
//	TECHSEL_CACHE_ENABLED     - Enable result caching (default: false)
//	TECHSEL_CACHE_DRIVER      - Cache backend: memory, redis (default: memory)
//	TECHSEL_CACHE_HOST        - Redis host (default: localhost)
//	TECHSEL_CACHE_PORT        - Redis port (default: 6379)
//	TECHSEL_CACHE_DEFAULT_TTL - Cache TTL duration (default: 5m)
//
//	# Tracing (OpenTelemetry)
//	TECHSEL_TRACING_ENABLED     - Enable distributed tracing (default: false)
//	TECHSEL_TRACING_ENDPOINT    - OTLP endpoint (default: localhost:4317)
//	TECHSEL_TRACING_SAMPLE_RATE - Sampling rate 0.0-1.0 (default: 0.1)
//
//	# Metrics (Prometheus)
//	TECHSEL_METRICS_ENABLED   - Enable Prometheus metrics (default: true)
//	TECHSEL_METRICS_PORT      - Metrics HTTP port (default: 9090)
//	TECHSEL_METRICS_PATH      - Metrics endpoint path (default: /metrics)
//	TECHSEL_METRICS_NAMESPACE - Metrics namespace (default: techsel)
//
//	# Rate Limiting
//	TECHSEL_RATE_LIMIT_ENABLED  - Enable rate limiting (default: true)
//	TECHSEL_RATE_LIMIT_REQUESTS - Requests per window (default: 100)
//	TECHSEL_RATE_LIMIT_WINDOW   - Time window (default: 1m)
//
//	# Authentication
//	TECHSEL_AUTH_ENABLED    - Require JWT bearer tokens (default: false)
//	TECHSEL_AUTH_JWT_SECRET - HMAC signing secret (required when enabled)
//
//	# Solver Limits
//	TECHSEL_SOLVER_SOLVE_TIMEOUT    - Per-request solve deadline (default: 30s)
//	TECHSEL_SOLVER_MAX_TECHNOLOGIES - Max technologies per plan (default: 10000)
//	TECHSEL_SOLVER_MAX_DEPENDENCIES - Max dependencies per plan (default: 100000)
//	TECHSEL_SOLVER_MAX_PLAN_BYTES   - Max request payload size (default: 4MB)
//
//	# Audit Logging
//	TECHSEL_AUDIT_ENABLED      - Enable audit logging (default: false)
//	TECHSEL_AUDIT_BACKEND      - Backend: stdout, file (default: stdout)
//	TECHSEL_AUDIT_FILE_PATH    - Audit log file path
//
// # Middleware Chain
//
// The HTTP server uses a chain of middleware (applied in order):
//  1. Recovery - Catches panics and returns proper JSON errors
//  2. RequestID - Assigns or propagates X-Request-Id
//  3. Logging - Structured request/response logging
//  4. Metrics - Prometheus metrics collection (latency, counts, in-flight)
//  5. CORS - Cross-origin headers (if enabled)
//  6. RateLimit - Per-client rate limiting (if enabled)
//  7. Auth - JWT bearer token validation (if enabled)
//
// /healthz and /metrics are excluded from authentication and rate limiting.
//
// # Graceful Shutdown
//
// The service handles SIGINT and SIGTERM signals for graceful shutdown:
//  1. Stops accepting new connections
//  2. Waits for in-flight requests to complete (up to shutdown_timeout)
//  3. Flushes telemetry and audit buffers
//  4. Closes rate limiter, cache, and database connections
//
// # Observability
//
// Metrics (Prometheus):
//
//	techsel_http_requests_total            - Total requests by method, path, status
//	techsel_http_request_duration_seconds  - Request latency histogram
//	techsel_http_requests_in_flight        - Currently processed requests
//	techsel_solve_total                    - Solve operations by outcome
//	techsel_solve_duration_seconds         - Solve latency histogram
//	techsel_cache_hits_total               - Cache hit counter
//	techsel_cache_misses_total             - Cache miss counter
//
// Logging (Structured JSON):
//
//	Each request logs:
//	  - request_id: Unique identifier for correlation
//	  - method, path, status: Request routing information
//	  - duration_ms: Request duration in milliseconds
//	  - user_id: Authenticated user (when auth is enabled)
//
// # Local Development
//
// Manual run:
//
//	go run ./cmd/techseld
//
// With custom config:
//
//	CONFIG_PATH=./config/local.yaml go run ./cmd/techseld
//
// # API Usage Example
//
// Solving a plan:
//
//	curl -X POST localhost:8080/v1/plans/solve \
//	  -H 'Content-Type: application/json' \
//	  -d '{
//	    "technologies": [
//	      {"name": "pottery", "profit": 6, "cost": 2},
//	      {"name": "writing", "profit": 4, "cost": 8}
//	    ],
//	    "dependencies": [
//	      {"from": "writing", "to": "pottery"}
//	    ]
//	  }'
//
// Response:
//
//	{
//	  "id": "7d9f...",
//	  "revenue": 4,
//	  "chosen": ["pottery"],
//	  "max_flow": 10,
//	  "technology_count": 2,
//	  "dependency_count": 1,
//	  "solve_duration_ms": 0.12,
//	  "cached": false,
//	  "canonical": "4\npottery\n"
//	}
//
// # Error Handling
//
// Errors are returned as JSON with stable machine-readable codes:
//
//	400 MALFORMED_PLAN, EMPTY_PLAN, DUPLICATE_TECHNOLOGY,
//	    UNKNOWN_TECHNOLOGY, NEGATIVE_PROFIT, NEGATIVE_COST,
//	    SELF_DEPENDENCY, INVALID_PAGINATION, INVALID_ARGUMENT
//	401 UNAUTHENTICATED
//	404 NOT_FOUND
//	429 RATE_LIMITED
//	501 UNIMPLEMENTED (storage endpoints without a database)
//	504 TIMEOUT
//	500 INTERNAL_ERROR
package main

import (
	"context"
	"log"
	"time"

	"github.com/go-chi/chi/v5"

	"techsel/internal/handlers"
	"techsel/internal/middleware"
	"techsel/internal/repository"
	"techsel/internal/service"
	"techsel/migrations"
	"techsel/pkg/cache"
	"techsel/pkg/config"
	"techsel/pkg/database"
	"techsel/pkg/logger"
	"techsel/pkg/metrics"
	"techsel/pkg/passhash"
	"techsel/pkg/ratelimit"
	"techsel/pkg/server"
	"techsel/pkg/telemetry"
)

func main() {
	// =========================================================================
	// Configuration Loading
	// =========================================================================
	//
	// Load loads configuration with the following priority:
	//   1. Environment variables (TECHSEL_* prefix)
	//   2. Config files (config.yaml in standard locations)
	//   3. Default values from pkg/config/loader.go
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// =========================================================================
	// Logger Initialization
	// =========================================================================
	//
	// The logger is configured based on the loaded configuration.
	// Supported outputs:
	//   - stdout/stderr: Direct console output
	//   - file: File output with automatic rotation (via lumberjack)
	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	ctx := context.Background()

	// =========================================================================
	// Telemetry Initialization (OpenTelemetry)
	// =========================================================================
	//
	// When enabled, initializes the OpenTelemetry trace provider early so that
	// database and cache setup is traced as well. Traces are exported to the
	// configured OTLP endpoint. Shutdown flushes pending spans before exit.
	if cfg.Tracing.Enabled {
		tp, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:     cfg.Tracing.Enabled,
			Endpoint:    cfg.Tracing.Endpoint,
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
			Environment: cfg.App.Environment,
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Log.Warn("Failed to init telemetry", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					logger.Log.Warn("Failed to shutdown telemetry", "error", err)
				}
			}()
			logger.Log.Info("Telemetry initialized", "endpoint", cfg.Tracing.Endpoint)
		}
	}

	// =========================================================================
	// Metrics Initialization (Prometheus)
	// =========================================================================
	//
	// Initializes Prometheus metrics with the configured namespace.
	// The metrics server itself is started by server.Run() on the metrics port.
	metrics.InitMetrics(cfg.Metrics.Namespace, cfg.App.Name)

	// =========================================================================
	// Database Initialization (PostgreSQL)
	// =========================================================================
	//
	// Persistence is optional: when the database is unreachable the service
	// still solves plans, but /v1/solutions endpoints answer UNIMPLEMENTED.
	// With auto_migrate enabled the embedded goose migrations are applied.
	var repo repository.SolutionRepository
	db, err := database.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		logger.Log.Warn("Failed to connect to database, continuing without persistence",
			"error", err)
	} else {
		defer db.Close()

		if err := database.RunMigrations(ctx, db.Pool(), &cfg.Database, migrations.FS, "."); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}

		repo = repository.NewPostgresSolutionRepository(db)
		logger.Log.Info("Database connected",
			"host", cfg.Database.Host,
			"database", cfg.Database.Database,
		)
	}

	// =========================================================================
	// Cache Initialization
	// =========================================================================
	//
	// The planner cache stores solved selections keyed by the canonical plan
	// hash, so resubmitting the same plan skips the max-flow computation.
	//
	// Supported backends:
	//   - memory: In-process cache (fast, not shared between instances)
	//   - redis: Distributed cache (shared, requires Redis server)
	//
	// The cache is optional and the service continues without it on failure.
	var plannerCache *cache.PlannerCache
	if cfg.Cache.Enabled {
		baseCache, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			logger.Log.Warn("Failed to create cache, continuing without cache", "error", err)
		} else {
			plannerCache = cache.NewPlannerCache(baseCache, cfg.Cache.DefaultTTL)
			logger.Log.Info("Planner cache initialized",
				"driver", cfg.Cache.Driver,
				"ttl", cfg.Cache.DefaultTTL,
			)
		}
	}

	// =========================================================================
	// Service Layer
	// =========================================================================
	plannerService := service.NewPlannerService(cfg.Solver, repo, plannerCache)

	// =========================================================================
	// Rate Limiter
	// =========================================================================
	//
	// The limiter is created here because the middleware chain needs it before
	// the server is built; the server owns closing it during shutdown.
	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter, err = ratelimit.New(&ratelimit.Config{
			Requests:        cfg.RateLimit.Requests,
			Window:          cfg.RateLimit.Window,
			BurstSize:       cfg.RateLimit.BurstSize,
			CleanupInterval: cfg.RateLimit.CleanupInterval,
		})
		if err != nil {
			logger.Log.Warn("Failed to create rate limiter, continuing without it", "error", err)
			limiter = nil
		} else {
			logger.Log.Info("Rate limiter initialized",
				"requests", cfg.RateLimit.Requests,
				"window", cfg.RateLimit.Window,
			)
		}
	}

	// =========================================================================
	// Router and Middleware Chain
	// =========================================================================
	//
	// Middleware order matters: recovery first so every later panic is caught,
	// request id before logging so log entries can be correlated, metrics
	// before CORS/auth so rejected requests are still counted.
	r := chi.NewRouter()
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)

	if cfg.HTTP.CORS.Enabled {
		r.Use(middleware.CORS(cfg.HTTP.CORS))
	}

	if limiter != nil {
		r.Use(middleware.RateLimit(&middleware.RateLimitConfig{
			Limiter:      limiter,
			ExcludePaths: middleware.PublicPaths(),
		}))
	}

	if cfg.Auth.Enabled {
		jwtCfg := passhash.DefaultJWTConfig()
		jwtCfg.SecretKey = cfg.Auth.JWTSecret
		jwtCfg.AccessTokenExpiry = cfg.Auth.TokenTTL
		if cfg.Auth.Issuer != "" {
			jwtCfg.Issuer = cfg.Auth.Issuer
		}

		r.Use(middleware.Auth(&middleware.AuthConfig{
			Manager:     passhash.NewJWTManager(jwtCfg),
			PublicPaths: middleware.PublicPaths(),
		}))
		logger.Log.Info("JWT authentication enabled", "issuer", jwtCfg.Issuer)
	}

	handlers.New(plannerService, cfg).Register(r)

	// =========================================================================
	// Server Startup
	// =========================================================================
	logger.Info("Starting techsel server",
		"port", cfg.HTTP.Port,
		"environment", cfg.App.Environment,
		"version", cfg.App.Version,
		"persistence_enabled", repo != nil,
		"cache_enabled", plannerCache != nil,
	)

	// =========================================================================
	// Run Server (Blocking)
	// =========================================================================
	//
	// srv.Run() performs the following:
	//   1. Starts the metrics HTTP server (if enabled)
	//   2. Starts the Swagger UI server (if enabled)
	//   3. Binds to the HTTP port
	//   4. Logs an audit event for service start
	//   5. Blocks until shutdown signal received
	//   6. Performs graceful shutdown (see waitForShutdown in pkg/server)
	srv := server.NewWithOptions(cfg, r, &server.Options{
		RateLimiter: limiter,
	})
	if err := srv.Run(); err != nil {
		logger.Fatal("server failed", "error", err)
	}
}
