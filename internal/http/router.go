package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/auth"
	"github.com/mrlokans/weddingplanner/internal/config"
	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/logging"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	errs := cfg.Errors
	if errs == nil {
		errs = apperr.NewHandler(cfg.Logger, nil)
	}
	authMiddleware := cfg.AuthMiddleware
	if authMiddleware == nil {
		authMiddleware = auth.NewMiddleware(nil, nil, nil, config.Auth{Mode: config.AuthModeNone})
	}

	router := gin.New()
	router.MaxMultipartMemory = 8 << 20
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		errs.Handle(c.Request.Context(), apperr.Internal(fmt.Errorf("panic: %v", recovered)), apperr.Options{
			Operation: "recover " + c.FullPath(),
			Severity:  apperr.SeverityCritical,
		})
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "internal"})
	}))
	router.Use(logging.RequestLogger(cfg.Logger, func(c *gin.Context) (uint, bool) {
		if !auth.IsAuthenticated(c) {
			return 0, false
		}
		return auth.GetUserID(c), true
	}))
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}

	router.Use(auth.SecurityHeaders(cfg.SecureCookies))

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(auth.CSRFOptions{Secret: cfg.CSRFSecret, Secure: cfg.SecureCookies, Tokens: cfg.Tokens}))
	}
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}
	router.Use(authMiddleware.Handler())
	if cfg.Demo != nil {
		router.Use(cfg.Demo.Handler())
	}

	health := NewHealthController(cfg.Version, healthChecks(cfg)...)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(router)
	}
	router.GET("/api/demo/status", cfg.Demo.StatusHandler)

	api := router.Group("/api")
	api.Use(authMiddleware.RequireAuth())
	premium := authMiddleware.RequirePremium()

	if cfg.Profiles != nil {
		profiles := NewProfileController(cfg.Profiles, errs)
		api.GET("/profile", profiles.GetProfile)
		api.PUT("/profile", profiles.UpdateProfile)
	}

	if cfg.Budgets != nil {
		budgets := NewBudgetController(cfg.Budgets, cfg.Auditor, errs)
		api.GET("/budget", budgets.GetBudget)
		api.PUT("/budget", budgets.UpdateBudget)
		api.GET("/budget/summary", budgets.Summary)
		api.GET("/budget/suggestions", budgets.Suggestions)
		api.GET("/expenses", budgets.ListExpenses)
		api.POST("/expenses", budgets.CreateExpense)
		api.GET("/expenses/:id", budgets.GetExpense)
		api.PUT("/expenses/:id", budgets.UpdateExpense)
		api.DELETE("/expenses/:id", budgets.DeleteExpense)
	}

	if cfg.Guests != nil {
		guests := NewGuestController(cfg.Guests, cfg.Auditor, errs)
		api.GET("/guests", guests.ListGuests)
		api.POST("/guests", guests.CreateGuest)
		api.GET("/guests/summary", guests.Summary)
		api.GET("/guests/export", guests.Export)
		api.POST("/guests/import", guests.Import)
		api.GET("/guests/:id", guests.GetGuest)
		api.PUT("/guests/:id", guests.UpdateGuest)
		api.DELETE("/guests/:id", guests.DeleteGuest)
	}

	if cfg.Tables != nil {
		tables := NewTableController(cfg.Tables, errs)
		api.GET("/tables", tables.ListTables)
		api.POST("/tables", tables.CreateTable)
		api.PUT("/tables/:id", tables.UpdateTable)
		api.DELETE("/tables/:id", tables.DeleteTable)
		api.POST("/tables/:id/guests/:guestId", tables.AssignGuest)
		api.DELETE("/tables/:id/guests/:guestId", tables.UnassignGuest)
	}

	if cfg.VisionBoard != nil {
		board := NewVisionBoardController(cfg.VisionBoard, cfg.Uploads, cfg.ImageSearch, cfg.Tasks, errs)
		vb := api.Group("/vision-board")
		vb.GET("/preferences", board.GetPreferences)
		vb.PUT("/preferences", board.UpdatePreferences)
		vb.GET("/items", board.ListItems)
		vb.POST("/items", board.CreateItem)
		vb.POST("/items/reorder", board.Reorder)
		vb.PUT("/items/:id", board.UpdateItem)
		vb.DELETE("/items/:id", board.DeleteItem)
		vb.POST("/items/:id/analyze", premium, board.Analyze)
		vb.GET("/search", premium, board.Search)

		ai := NewAIController(cfg.Analyzer, cfg.Generator, cfg.Images, cfg.VisionBoard, errs)
		api.POST("/ai/analyze-image", premium, ai.AnalyzeImage)
		api.POST("/ai/generate", premium, ai.Generate)
	}

	if cfg.Uploads != nil && cfg.Files != nil {
		uploads := NewUploadController(cfg.Uploads, cfg.Files, cfg.Tasks, cfg.Auditor, cfg.MaxUploadBytes, errs)
		api.POST("/uploads", uploads.Upload)
		api.GET("/uploads", uploads.ListUploads)
		api.DELETE("/uploads/:id", uploads.DeleteUpload)

		filesPath := "/" + strings.Trim(cfg.FilesPath, "/")
		if filesPath == "/" {
			filesPath = "/files"
		}
		router.GET(filesPath+"/*filepath", uploads.ServeFile)
	}

	if cfg.Websites != nil {
		sites := NewWebsiteController(cfg.Websites, cfg.RSVPs, cfg.Catalog, cfg.Renderer, cfg.PublicBaseURL, cfg.Auditor, errs)
		sites.limiter = cfg.RSVPLimiter
		api.GET("/website", sites.GetWebsite)
		api.PUT("/website", sites.SaveWebsite)
		api.POST("/website/publish", sites.Publish)
		api.POST("/website/unpublish", sites.Unpublish)
		api.GET("/website/slug-available", sites.SlugAvailable)
		api.GET("/website/rsvps", sites.ListRSVPs)
		api.GET("/website/themes", sites.Themes)

		router.GET("/w/:slug", sites.PublicPage)
		router.GET("/api/public/websites/:slug", sites.PublicSite)
		router.POST("/api/public/websites/:slug/rsvp", sites.SubmitRSVP)
	}

	if cfg.Checkout != nil {
		payments := NewPaymentController(cfg.Checkout, cfg.Auditor, errs)
		api.POST("/payments/checkout", payments.Checkout)
		api.POST("/payments/verify", payments.Verify)
	}

	admin := api.Group("/admin")
	admin.Use(authMiddleware.RequireRole(entities.UserRoleAdmin))

	if cfg.Blog != nil {
		posts := NewBlogController(cfg.Blog, cfg.Auditor, errs)
		router.GET("/api/blog/posts", posts.ListPublished)
		router.GET("/api/blog/posts/:slug", posts.GetPublished)
		router.GET("/api/blog/tags", posts.ListTags)

		admin.GET("/blog/posts", posts.AdminList)
		admin.POST("/blog/posts", posts.Create)
		admin.GET("/blog/posts/:id", posts.AdminGet)
		admin.PUT("/blog/posts/:id", posts.Update)
		admin.DELETE("/blog/posts/:id", posts.Delete)
		admin.POST("/blog/posts/:id/publish", posts.Publish)
		admin.POST("/blog/posts/:id/unpublish", posts.Unpublish)
	}

	if cfg.Users != nil {
		dashboard := NewAdminController(cfg.Users, cfg.Dashboard, cfg.AuditLog, cfg.AllRSVPs, errs)
		admin.GET("/dashboard", dashboard.Dashboard)
		if cfg.AllRSVPs != nil {
			admin.GET("/rsvps", dashboard.ListRSVPs)
		}

		users := NewUserAdminController(cfg.Users, cfg.Auditor, errs)
		admin.GET("/users", users.ListUsers)
		admin.PATCH("/users/:id/role", users.UpdateRole)
		admin.PATCH("/users/:id/subscription", users.UpdateSubscription)
		admin.DELETE("/users/:id", users.DeleteUser)
	}

	if cfg.AuditLog != nil {
		events := NewAuditController(cfg.AuditLog, errs)
		admin.GET("/audit", events.GetAuditEvents)
		admin.GET("/audit/types", events.GetEventTypes)
		admin.GET("/audit/:id", events.GetAuditEvent)
	}

	if cfg.Settings != nil {
		settings := NewSettingsController(cfg.Settings, cfg.Auditor, errs)
		admin.GET("/settings", settings.GetSettings)
		admin.PUT("/settings", settings.UpdateSettings)
	}

	taskAdmin := NewTasksController(cfg.Tasks, cfg.AuditRetentionDays, cfg.Auditor, errs)
	admin.GET("/tasks/types", taskAdmin.ListTaskTypes)
	admin.GET("/tasks/:id", taskAdmin.GetTaskStatus)
	admin.POST("/tasks/:type/run", taskAdmin.RunTask)

	return router
}
