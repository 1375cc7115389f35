package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/audit"
	"github.com/mrlokans/weddingplanner/internal/auth"
	dbaudit "github.com/mrlokans/weddingplanner/internal/database/audit"
	"github.com/mrlokans/weddingplanner/internal/database/blog"
	"github.com/mrlokans/weddingplanner/internal/database/payments"
	"github.com/mrlokans/weddingplanner/internal/database/settings"
	"github.com/mrlokans/weddingplanner/internal/database/uploads"
	"github.com/mrlokans/weddingplanner/internal/database/users"
	"github.com/mrlokans/weddingplanner/internal/database/visionboard"
	"github.com/mrlokans/weddingplanner/internal/database/websites"
	"github.com/mrlokans/weddingplanner/internal/database/wedding"
	"github.com/mrlokans/weddingplanner/internal/functions"
	"github.com/mrlokans/weddingplanner/internal/gemini"
	"github.com/mrlokans/weddingplanner/internal/http"
	"github.com/mrlokans/weddingplanner/internal/metrics"
	checkout "github.com/mrlokans/weddingplanner/internal/payments"
	"github.com/mrlokans/weddingplanner/internal/scheduler"
	"github.com/mrlokans/weddingplanner/internal/storage"
	"github.com/mrlokans/weddingplanner/internal/storage/providers/local"
	"github.com/mrlokans/weddingplanner/internal/tasks"
	"github.com/mrlokans/weddingplanner/internal/website"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var (
	_ http.ProfileStore     = (*wedding.Repository)(nil)
	_ http.BudgetStore      = (*wedding.Repository)(nil)
	_ http.GuestStore       = (*wedding.Repository)(nil)
	_ http.TableStore       = (*wedding.Repository)(nil)
	_ http.VisionBoardStore = (*visionboard.Repository)(nil)
	_ http.UploadStore      = (*uploads.Repository)(nil)
	_ http.BlogStore        = (*blog.Repository)(nil)
	_ http.WebsiteStore     = (*websites.Repository)(nil)
	_ http.RSVPLister       = (*websites.Repository)(nil)
	_ http.UserAdminStore   = (*users.Repository)(nil)
	_ http.SettingsStore    = (*settings.Repository)(nil)
	_ http.AuditLog         = (*audit.Service)(nil)

	_ auth.UserStore      = (*users.Repository)(nil)
	_ auth.SettingsReader = (*settings.Repository)(nil)
	_ auth.EventLogger    = (*audit.Service)(nil)
	_ audit.Store         = (*dbaudit.Repository)(nil)

	_ website.SiteStore  = (*websites.Repository)(nil)
	_ website.GuestStore = (*wedding.Repository)(nil)

	_ checkout.SessionStore = (*payments.Repository)(nil)
	_ checkout.UserStore    = (*users.Repository)(nil)
)

// =============================================================================
// Background Work
// =============================================================================

var (
	_ http.TaskQueue             = (*tasks.Client)(nil)
	_ tasks.Enqueuer             = (*tasks.Client)(nil)
	_ scheduler.Enqueuer         = (*tasks.Client)(nil)
	_ tasks.UploadThumbnailStore = (*uploads.Repository)(nil)
	_ tasks.VisionItemStore      = (*visionboard.Repository)(nil)
	_ tasks.UploadLookup         = (*uploads.Repository)(nil)
	_ tasks.ImageSource          = (*tasks.ImageLoader)(nil)
	_ tasks.AuditEventCleaner    = (*audit.Service)(nil)
	_ tasks.CheckoutExpirer      = (*payments.Repository)(nil)
	_ tasks.Recorder             = (*metrics.Metrics)(nil)
	_ apperr.Recorder            = (*metrics.Metrics)(nil)
	_ http.Auditor               = (*audit.Service)(nil)
)

// =============================================================================
// External Services
// =============================================================================

var (
	_ storage.FileStore          = (*local.Store)(nil)
	_ http.ImageSearcher         = (*functions.Client)(nil)
	_ checkout.CheckoutFunctions = (*functions.Client)(nil)
	_ http.CheckoutService       = (*checkout.Service)(nil)
	_ http.RSVPSubmitter         = (*website.RSVPService)(nil)
	_ gemini.ImageAnalyzer       = (*gemini.Client)(nil)
	_ gemini.ContentGenerator    = (*gemini.Client)(nil)
)
