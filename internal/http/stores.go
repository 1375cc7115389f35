package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/weddingplanner/internal/audit"
	dbaudit "github.com/mrlokans/weddingplanner/internal/database/audit"
	"github.com/mrlokans/weddingplanner/internal/database/blog"
	"github.com/mrlokans/weddingplanner/internal/database/wedding"
	"github.com/mrlokans/weddingplanner/internal/database/websites"
	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/functions"
	"github.com/mrlokans/weddingplanner/internal/payments"
	"github.com/mrlokans/weddingplanner/internal/website"
)

// This file consolidates the store interfaces used by HTTP controllers.
// Each controller depends only on the methods it calls; the repositories in
// internal/database satisfy them (see internal/interfaces).

// ProfileStore backs the wedding profile endpoints.
type ProfileStore interface {
	GetProfile(userID uint) (*entities.WeddingProfile, error)
	SaveProfile(profile *entities.WeddingProfile) error
}

// BudgetStore backs the budget and expense endpoints.
type BudgetStore interface {
	GetOrCreateBudget(userID uint) (*entities.Budget, error)
	UpdateBudget(userID uint, total float64, currency string) (*entities.Budget, error)
	ListExpenses(userID uint, filter wedding.ExpenseFilter) ([]entities.Expense, error)
	GetExpense(userID, id uint) (*entities.Expense, error)
	CreateExpense(expense *entities.Expense) error
	UpdateExpense(expense *entities.Expense) error
	DeleteExpense(userID, id uint) error
}

// GuestStore backs the guest list endpoints.
type GuestStore interface {
	ListGuests(userID uint, filter wedding.GuestFilter) ([]entities.Guest, error)
	GetGuest(userID, id uint) (*entities.Guest, error)
	CreateGuest(guest *entities.Guest) error
	CreateGuests(guests []entities.Guest) error
	UpdateGuest(guest *entities.Guest) error
	DeleteGuest(userID, id uint) error
	GetTable(userID, id uint) (*entities.SeatingTable, error)
}

// TableStore backs the seating table endpoints.
type TableStore interface {
	ListTables(userID uint) ([]entities.SeatingTable, error)
	GetTable(userID, id uint) (*entities.SeatingTable, error)
	CreateTable(table *entities.SeatingTable) error
	UpdateTable(table *entities.SeatingTable) error
	DeleteTable(userID, id uint) error
	GetGuest(userID, id uint) (*entities.Guest, error)
	AssignGuestToTable(userID, guestID uint, tableID *uint) error
}

// VisionBoardStore backs the vision board endpoints.
type VisionBoardStore interface {
	GetPreferences(userID uint) (*entities.VisionBoardPreference, error)
	SavePreferences(pref *entities.VisionBoardPreference) error
	ListItems(userID uint) ([]entities.VisionBoardItem, error)
	GetItem(userID, id uint) (*entities.VisionBoardItem, error)
	CreateItem(item *entities.VisionBoardItem) error
	UpdateItem(item *entities.VisionBoardItem) error
	DeleteItem(userID, id uint) error
	SavePositions(userID uint, items []entities.VisionBoardItem) error
	SetAnalysisPending(userID, id uint) error
}

// UploadStore backs the upload endpoints.
type UploadStore interface {
	CreateUpload(upload *entities.Upload) error
	GetUpload(userID, id uint) (*entities.Upload, error)
	ListUploads(userID uint, purpose entities.UploadPurpose) ([]entities.Upload, error)
	DeleteUpload(userID, id uint) error
}

// ImageSearcher queries the external image search function.
type ImageSearcher interface {
	SearchImages(ctx context.Context, query string, page, perPage int) (*functions.ImageSearchResult, error)
}

// BlogStore backs the public and admin blog endpoints.
type BlogStore interface {
	ListPosts(filter blog.PostFilter) ([]entities.BlogPost, int64, error)
	GetPostByID(id uint) (*entities.BlogPost, error)
	GetPostBySlug(slug string) (*entities.BlogPost, error)
	SlugExists(slug string, excludeID uint) (bool, error)
	CreatePost(post *entities.BlogPost, tagNames []string) error
	UpdatePost(post *entities.BlogPost, tagNames []string) error
	DeletePost(id uint) error
	IncrementViews(id uint) error
	ListTags() ([]entities.BlogTag, error)
}

// WebsiteStore backs the website builder endpoints.
type WebsiteStore interface {
	GetByUser(userID uint) (*entities.WeddingWebsite, error)
	GetBySlug(slug string) (*entities.WeddingWebsite, error)
	Save(site *entities.WeddingWebsite) error
	SlugTaken(slug string, userID uint) (bool, error)
	SetPublished(userID uint, published bool, at time.Time) (*entities.WeddingWebsite, error)
	IncrementViews(id uint) error
	ListRSVPs(websiteID uint, limit, offset int) ([]entities.RSVPResponse, int64, error)
}

// RSVPSubmitter records public RSVPs.
type RSVPSubmitter interface {
	Submit(ctx context.Context, slug string, req website.RSVPRequest) (*website.RSVPResult, error)
}

// CheckoutService runs premium checkout.
type CheckoutService interface {
	StartCheckout(ctx context.Context, user *entities.User) (*entities.CheckoutSession, error)
	Verify(ctx context.Context, userID uint, sessionID string) (*payments.Verification, error)
}

// UserAdminStore backs the admin user management endpoints.
type UserAdminStore interface {
	GetUserByID(id uint) (*entities.User, error)
	ListUsers(query string, limit, offset int) ([]entities.User, int64, error)
	UpdateRole(id uint, role entities.UserRole) error
	UpdateSubscription(id uint, tier entities.SubscriptionTier, expiresAt *time.Time) error
	DeleteUser(id uint) error
	CountUsers() (int64, error)
	CountByRole(role entities.UserRole) (int64, error)
	CountActivePremium(now time.Time) (int64, error)
}

// DashboardSources are the repositories the admin dashboard aggregates.
// Nil sources are reported as zero.
type DashboardSources struct {
	Guests interface {
		CountGuests() (int64, error)
	}
	Websites interface {
		CountPublished() (int64, error)
		CountRSVPs() (int64, error)
	}
	Posts interface {
		CountByStatus(status entities.PostStatus) (int64, error)
	}
	Payments interface {
		RevenueByCurrency() (map[string]int64, error)
	}
	Uploads interface {
		TotalSize() (int64, error)
	}
}

// RSVPLister lists every RSVP across websites.
type RSVPLister interface {
	ListAllRSVPs(limit, offset int) ([]websites.RSVPWithSite, int64, error)
}

// SettingsStore reads and writes application settings.
type SettingsStore interface {
	All() (map[string]string, error)
	SetMany(values map[string]string) error
}

// AuditLog reads recorded audit events.
type AuditLog interface {
	ListEvents(filter dbaudit.EventFilter) ([]entities.AuditEvent, int64, error)
	GetEvent(id uint) (*entities.AuditEvent, error)
	CountLastDay() (map[entities.AuditEventType]int64, error)
}

// Auditor records user actions. *audit.Service satisfies it.
type Auditor interface {
	Record(a audit.Action)
}

// TaskQueue enqueues background work and reports its status.
type TaskQueue interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}
