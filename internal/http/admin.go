package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

// AdminController serves the admin dashboard and cross-account listings.
type AdminController struct {
	users   UserAdminStore
	sources DashboardSources
	audit   AuditLog
	rsvps   RSVPLister
	errors  *apperr.Handler
	now     func() time.Time
}

func NewAdminController(users UserAdminStore, sources DashboardSources, auditLog AuditLog, rsvps RSVPLister, errs *apperr.Handler) *AdminController {
	return &AdminController{
		users:   users,
		sources: sources,
		audit:   auditLog,
		rsvps:   rsvps,
		errors:  errs,
		now:     time.Now,
	}
}

// DashboardStats are the platform totals shown on the admin dashboard.
type DashboardStats struct {
	Users          int64                             `json:"users"`
	Admins         int64                             `json:"admins"`
	PremiumUsers   int64                             `json:"premium_users"`
	Guests         int64                             `json:"guests"`
	PublishedSites int64                             `json:"published_sites"`
	RSVPs          int64                             `json:"rsvps"`
	PublishedPosts int64                             `json:"published_posts"`
	DraftPosts     int64                             `json:"draft_posts"`
	StorageBytes   int64                             `json:"storage_bytes"`
	Revenue        map[string]int64                  `json:"revenue"`
	EventsLastDay  map[entities.AuditEventType]int64 `json:"events_last_day"`
	GeneratedAt    time.Time                         `json:"generated_at"`
}

// Dashboard gathers every total concurrently. Any failing query fails the
// whole response.
func (ac *AdminController) Dashboard(c *gin.Context) {
	stats := DashboardStats{
		Revenue:       map[string]int64{},
		EventsLastDay: map[entities.AuditEventType]int64{},
		GeneratedAt:   ac.now().UTC(),
	}
	now := ac.now()

	var g errgroup.Group
	count := func(dst *int64, fn func() (int64, error)) {
		g.Go(func() error {
			n, err := fn()
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}

	count(&stats.Users, ac.users.CountUsers)
	count(&stats.Admins, func() (int64, error) { return ac.users.CountByRole(entities.UserRoleAdmin) })
	count(&stats.PremiumUsers, func() (int64, error) { return ac.users.CountActivePremium(now) })
	if src := ac.sources.Guests; src != nil {
		count(&stats.Guests, src.CountGuests)
	}
	if src := ac.sources.Websites; src != nil {
		count(&stats.PublishedSites, src.CountPublished)
		count(&stats.RSVPs, src.CountRSVPs)
	}
	if src := ac.sources.Posts; src != nil {
		count(&stats.PublishedPosts, func() (int64, error) { return src.CountByStatus(entities.PostStatusPublished) })
		count(&stats.DraftPosts, func() (int64, error) { return src.CountByStatus(entities.PostStatusDraft) })
	}
	if src := ac.sources.Uploads; src != nil {
		count(&stats.StorageBytes, src.TotalSize)
	}
	if src := ac.sources.Payments; src != nil {
		g.Go(func() error {
			revenue, err := src.RevenueByCurrency()
			if err != nil {
				return err
			}
			stats.Revenue = revenue
			return nil
		})
	}
	if ac.audit != nil {
		g.Go(func() error {
			counts, err := ac.audit.CountLastDay()
			if err != nil {
				return err
			}
			stats.EventsLastDay = counts
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		ac.errors.Respond(c, err, "admin_dashboard")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListRSVPs pages through RSVPs across every website.
func (ac *AdminController) ListRSVPs(c *gin.Context) {
	p := parsePagination(c)
	responses, total, err := ac.rsvps.ListAllRSVPs(p.Limit, p.Offset)
	if err != nil {
		ac.errors.Respond(c, err, "admin_list_rsvps")
		return
	}
	c.JSON(http.StatusOK, newPaginatedResponse(responses, total, p))
}
