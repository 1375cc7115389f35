package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/audit"
	"github.com/mrlokans/weddingplanner/internal/auth"
	"github.com/mrlokans/weddingplanner/internal/config"
	"github.com/mrlokans/weddingplanner/internal/database"
	dbaudit "github.com/mrlokans/weddingplanner/internal/database/audit"
	"github.com/mrlokans/weddingplanner/internal/database/blog"
	dbpayments "github.com/mrlokans/weddingplanner/internal/database/payments"
	"github.com/mrlokans/weddingplanner/internal/database/settings"
	"github.com/mrlokans/weddingplanner/internal/database/uploads"
	"github.com/mrlokans/weddingplanner/internal/database/users"
	"github.com/mrlokans/weddingplanner/internal/database/visionboard"
	"github.com/mrlokans/weddingplanner/internal/database/websites"
	"github.com/mrlokans/weddingplanner/internal/database/wedding"
	"github.com/mrlokans/weddingplanner/internal/demo"
	"github.com/mrlokans/weddingplanner/internal/functions"
	"github.com/mrlokans/weddingplanner/internal/gemini"
	"github.com/mrlokans/weddingplanner/internal/ratelimit"
	http_controllers "github.com/mrlokans/weddingplanner/internal/http"
	"github.com/mrlokans/weddingplanner/internal/logging"
	"github.com/mrlokans/weddingplanner/internal/metrics"
	"github.com/mrlokans/weddingplanner/internal/payments"
	"github.com/mrlokans/weddingplanner/internal/scheduler"
	"github.com/mrlokans/weddingplanner/internal/storage/providers/local"
	"github.com/mrlokans/weddingplanner/internal/tasks"
	"github.com/mrlokans/weddingplanner/internal/website"
)

const (
	imageFetchTimeout = 15 * time.Second

	// Public RSVP submissions allowed per client and site within rsvpWindow.
	rsvpMaxSubmissions = 10
	rsvpWindow         = 10 * time.Minute
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, logger *slog.Logger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down server", "signal", sig.String(), "timeout", timeout)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so no task writes after the database closes.
	if onShutdown != nil {
		onShutdown(ctx)
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}

// Run wires every component from cfg and serves until interrupted.
func Run(cfg *config.Config, version string) error {
	logger := logging.Setup(cfg.Log)
	logger.Info("starting wedding planner", "version", version)
	if err := cfg.Validate(); err != nil {
		return err
	}
	gin.SetMode(gin.ReleaseMode)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database", "error", err)
		}
	}()

	weddingRepo := wedding.NewRepository(db.DB)
	boardRepo := visionboard.NewRepository(db.DB)
	uploadRepo := uploads.NewRepository(db.DB)
	blogRepo := blog.NewRepository(db.DB)
	siteRepo := websites.NewRepository(db.DB)
	userRepo := users.NewRepository(db.DB)
	settingsRepo := settings.NewRepository(db.DB)
	paymentRepo := dbpayments.NewRepository(db.DB)

	var appMetrics *metrics.Metrics
	var errorRecorder apperr.Recorder
	var taskRecorder tasks.Recorder
	if cfg.Metrics.Enabled {
		appMetrics = metrics.New()
		errorRecorder = appMetrics
		taskRecorder = appMetrics
	}
	errs := apperr.NewHandler(logger, errorRecorder)

	events := audit.NewService(dbaudit.NewRepository(db.DB), logger)
	defer events.Wait()

	files, err := local.New(cfg.Storage.Dir, cfg.Storage.PublicPath)
	if err != nil {
		return fmt.Errorf("initialize file storage: %w", err)
	}
	logger.Info("file storage ready", "dir", files.BasePath(), "public_path", cfg.Storage.PublicPath)

	fn := functions.NewClient(cfg.Functions)
	if !fn.Configured() {
		logger.Warn("functions backend is not configured, image search and payments will answer 503")
	}

	// Interfaces stay nil when Gemini is missing so the endpoints answer 503.
	var analyzer gemini.ImageAnalyzer
	var generator gemini.ContentGenerator
	geminiClient, err := gemini.NewClient(context.Background(), cfg.Gemini)
	switch {
	case errors.Is(err, gemini.ErrNotConfigured):
		logger.Warn("Gemini API key is not set, AI features are disabled")
	case err != nil:
		return fmt.Errorf("initialize gemini: %w", err)
	default:
		analyzer, generator = geminiClient, geminiClient
		logger.Info("Gemini enabled", "model", geminiClient.Model())
	}

	images := &tasks.ImageLoader{
		Uploads:  uploadRepo,
		Files:    files,
		HTTP:     &http.Client{Timeout: imageFetchTimeout},
		MaxBytes: cfg.Storage.MaxUploadBytes,
	}

	catalog, err := website.LoadCatalog()
	if err != nil {
		return err
	}
	renderer, err := website.NewRenderer(catalog, cfg.HTTP.PublicBaseURL)
	if err != nil {
		return err
	}
	rsvps := website.NewRSVPService(siteRepo, weddingRepo, logger)
	rsvpLimiter := ratelimit.New(ratelimit.Config{MaxAttempts: rsvpMaxSubmissions, Window: rsvpWindow, Lockout: rsvpWindow})
	defer rsvpLimiter.Stop()

	// TaskQueue must stay an untyped nil when tasks are disabled.
	var queue http_controllers.TaskQueue
	var taskClient *tasks.Client
	var cleanup *scheduler.CleanupScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromAppConfig(cfg.Tasks), logger)
		if err != nil {
			return fmt.Errorf("initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				logger.Error("error closing task client", "error", err)
			}
		}()

		taskClient.Register(tasks.Queues(tasks.Dependencies{
			Uploads:       uploadRepo,
			Files:         files,
			ThumbnailSize: cfg.Storage.ThumbnailSize,
			VisionItems:   boardRepo,
			Images:        images,
			Analyzer:      analyzer,
			AuditCleaner:  events,
			Checkouts:     paymentRepo,
			Recorder:      taskRecorder,
			Logger:        logger,
		})...)

		taskCtx, taskCancel := context.WithCancel(context.Background())
		defer taskCancel()
		taskClient.Start(taskCtx)
		queue = taskClient

		if cfg.Scheduler.Enabled {
			cleanup = scheduler.NewCleanupScheduler(taskClient, scheduler.Config{
				Schedule:            cfg.Scheduler.CleanupSchedule,
				AuditRetentionDays:  cfg.Audit.RetentionDays,
				CheckoutExpiryHours: cfg.Scheduler.CheckoutExpiryHours,
			}, logger)
			if err := cleanup.Start(taskCtx); err != nil {
				return fmt.Errorf("start cleanup scheduler: %w", err)
			}
		}
	} else {
		logger.Warn("background tasks are disabled, thumbnails and AI analysis will not run")
	}

	var checkout http_controllers.CheckoutService
	if cfg.Auth.Mode == config.AuthModeLocal {
		checkout = payments.NewService(fn, paymentRepo, userRepo, cfg.Payments, logger)
	}

	routerCfg := http_controllers.RouterConfig{
		Version: version,
		Logger:  logger,
		Errors:  errs,
		Metrics: appMetrics,
		Health:  db,

		Profiles:    weddingRepo,
		Budgets:     weddingRepo,
		Guests:      weddingRepo,
		Tables:      weddingRepo,
		VisionBoard: boardRepo,
		Uploads:     uploadRepo,
		Blog:        blogRepo,
		Websites:    siteRepo,
		RSVPs:       rsvps,
		RSVPLimiter: rsvpLimiter,

		Users:    userRepo,
		Settings: settingsRepo,
		AuditLog: events,
		AllRSVPs: siteRepo,
		Dashboard: http_controllers.DashboardSources{
			Guests:   weddingRepo,
			Websites: siteRepo,
			Posts:    blogRepo,
			Payments: paymentRepo,
			Uploads:  uploadRepo,
		},
		Auditor:            events,
		AuditRetentionDays: cfg.Audit.RetentionDays,

		Files:          files,
		FilesPath:      cfg.Storage.PublicPath,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,

		Images:        images,
		ImageSearch:   fn,
		Analyzer:      analyzer,
		Generator:     generator,
		Checkout:      checkout,
		Tasks:         queue,
		Catalog:       catalog,
		Renderer:      renderer,
		PublicBaseURL: cfg.HTTP.PublicBaseURL,
	}

	var authController *auth.AuthController
	var sessionManager *auth.SessionManager
	if cfg.Auth.Mode == config.AuthModeLocal {
		logger.Info("authentication mode: local")

		authService := auth.NewService(userRepo, settingsRepo, cfg.Auth)

		sqlDB, err := db.DB.DB()
		if err != nil {
			return fmt.Errorf("get sql database for sessions: %w", err)
		}
		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			return fmt.Errorf("initialize session manager: %w", err)
		}
		defer sessionManager.Close()

		secret, err := sessionSecret(cfg.Auth.SessionSecret, logger)
		if err != nil {
			return err
		}
		jwtSecret := cfg.Auth.JWTSecret
		if jwtSecret == "" {
			jwtSecret = hex.EncodeToString(secret)
		}
		tokens := auth.NewJWTManager(jwtSecret, cfg.Auth.JWTExpiry)

		authController = auth.NewAuthController(authService, tokens, sessionManager, events, errs, cfg.Auth)
		defer authController.Stop()

		routerCfg.AuthController = authController
		routerCfg.AuthMiddleware = auth.NewMiddleware(authService, tokens, sessionManager, cfg.Auth)
		routerCfg.SessionManager = sessionManager
		routerCfg.Tokens = tokens
		routerCfg.CSRFSecret = secret
		routerCfg.SecureCookies = cfg.Auth.SecureCookies

		if hasUsers, err := authService.HasUsers(); err == nil && !hasUsers {
			logger.Info("no users found, the first signup becomes the administrator")
		}
	} else {
		logger.Info("authentication mode: none (single user, no login required)")
	}

	if cfg.Demo.Enabled {
		logger.Info("demo mode enabled, write operations will be blocked")
		routerCfg.Demo = demo.NewMiddleware(demo.Options{Enabled: true, Notice: cfg.Demo.Notice})
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if cleanup != nil {
			cleanup.Stop()
		}
		if taskClient != nil {
			if !taskClient.Stop(ctx) {
				logger.Warn("task workers did not stop before the shutdown timeout")
			}
		}
	}
	return Serve(router, cfg, logger, onShutdown)
}

// sessionSecret decodes a hex secret, falls back to the raw bytes, and
// generates one when none is configured.
func sessionSecret(configured string, logger *slog.Logger) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		return []byte(configured), nil
	}
	secret, err := auth.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	logger.Warn("generated a session secret, set AUTH_SESSION_SECRET to keep sessions across restarts")
	return secret, nil
}
