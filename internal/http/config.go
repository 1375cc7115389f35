package http

import (
	"log/slog"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/auth"
	"github.com/mrlokans/weddingplanner/internal/demo"
	"github.com/mrlokans/weddingplanner/internal/gemini"
	"github.com/mrlokans/weddingplanner/internal/metrics"
	"github.com/mrlokans/weddingplanner/internal/ratelimit"
	"github.com/mrlokans/weddingplanner/internal/storage"
	"github.com/mrlokans/weddingplanner/internal/tasks"
	"github.com/mrlokans/weddingplanner/internal/website"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. Optional integrations are nil when not
// configured; their endpoints then answer 503.
type RouterConfig struct {
	Version string
	Logger  *slog.Logger
	Errors  *apperr.Handler
	Metrics *metrics.Metrics
	Health  Pinger

	// Authentication
	AuthController *auth.AuthController
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	Tokens         *auth.JWTManager
	CSRFSecret     []byte
	SecureCookies  bool
	Demo           *demo.Middleware

	// Planning data
	Profiles    ProfileStore
	Budgets     BudgetStore
	Guests      GuestStore
	Tables      TableStore
	VisionBoard VisionBoardStore
	Uploads     UploadStore
	Blog        BlogStore
	Websites    WebsiteStore
	RSVPs       RSVPSubmitter
	RSVPLimiter *ratelimit.Limiter

	// Administration
	Users              UserAdminStore
	Settings           SettingsStore
	AuditLog           AuditLog
	AllRSVPs           RSVPLister
	Dashboard          DashboardSources
	Auditor            Auditor
	AuditRetentionDays int

	// Files
	Files          storage.FileStore
	FilesPath      string
	MaxUploadBytes int64

	// Integrations
	Images        tasks.ImageSource
	ImageSearch   ImageSearcher
	Analyzer      gemini.ImageAnalyzer
	Generator     gemini.ContentGenerator
	Checkout      CheckoutService
	Tasks         TaskQueue
	Catalog       *website.Catalog
	Renderer      *website.Renderer
	PublicBaseURL string
}
