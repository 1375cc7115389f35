package http

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/audit"
	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/ratelimit"
	"github.com/mrlokans/weddingplanner/internal/security"
	"github.com/mrlokans/weddingplanner/internal/website"
)

// WebsiteController runs the website builder and the public site pages.
type WebsiteController struct {
	store    WebsiteStore
	rsvps    RSVPSubmitter
	limiter  *ratelimit.Limiter
	catalog  *website.Catalog
	renderer *website.Renderer
	baseURL  string
	auditor  Auditor
	errors   *apperr.Handler
	now      func() time.Time
}

func NewWebsiteController(store WebsiteStore, rsvps RSVPSubmitter, catalog *website.Catalog, renderer *website.Renderer, baseURL string, auditor Auditor, errs *apperr.Handler) *WebsiteController {
	return &WebsiteController{
		store:    store,
		rsvps:    rsvps,
		catalog:  catalog,
		renderer: renderer,
		baseURL:  baseURL,
		auditor:  auditor,
		errors:   errs,
		now:      time.Now,
	}
}

// WebsiteResponse wraps the owner's site with its public address.
type WebsiteResponse struct {
	Website  *entities.WeddingWebsite `json:"website"`
	ShareURL string                   `json:"share_url,omitempty"`
	RSVPOpen bool                     `json:"rsvp_open"`
}

func (wc *WebsiteController) response(site *entities.WeddingWebsite) WebsiteResponse {
	resp := WebsiteResponse{Website: site}
	if site != nil && site.Slug != "" {
		resp.ShareURL = website.ShareURL(wc.baseURL, site.Slug)
		resp.RSVPOpen = website.RSVPOpen(site, wc.now())
	}
	return resp
}

// GetWebsite returns the caller's site, or a null website before the first save.
func (wc *WebsiteController) GetWebsite(c *gin.Context) {
	site, err := wc.store.GetByUser(GetUserID(c))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, wc.response(nil))
		return
	}
	if err != nil {
		wc.errors.Respond(c, err, "get_website")
		return
	}
	c.JSON(http.StatusOK, wc.response(site))
}

// SaveWebsite creates or replaces the caller's site. A published site must
// stay publishable.
func (wc *WebsiteController) SaveWebsite(c *gin.Context) {
	var in website.Input
	if err := bindJSON(c, &in); err != nil {
		wc.errors.Respond(c, err, "save_website")
		return
	}

	userID := GetUserID(c)
	site, err := wc.store.GetByUser(userID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		site = &entities.WeddingWebsite{UserID: userID}
	case err != nil:
		wc.errors.Respond(c, err, "save_website")
		return
	}

	if err := in.Apply(site, wc.catalog); err != nil {
		wc.errors.Respond(c, err, "save_website")
		return
	}
	if site.IsPublished {
		if err := website.ValidateForPublish(site, wc.catalog); err != nil {
			wc.errors.Respond(c, err, "save_website")
			return
		}
	}
	if err := wc.checkSlug(site); err != nil {
		wc.errors.Respond(c, err, "save_website")
		return
	}

	if err := wc.store.Save(site); err != nil {
		wc.errors.Respond(c, err, "save_website")
		return
	}
	wc.record(c, "website_save", site)
	c.JSON(http.StatusOK, wc.response(site))
}

func (wc *WebsiteController) checkSlug(site *entities.WeddingWebsite) error {
	if site.Slug == "" {
		return nil
	}
	taken, err := wc.store.SlugTaken(site.Slug, site.UserID)
	if err != nil {
		return err
	}
	if taken {
		conflict := apperr.Conflict("slug is already in use")
		conflict.Details = map[string]string{"slug": "is already in use"}
		return conflict
	}
	return nil
}

// Publish makes the site reachable at its share URL.
func (wc *WebsiteController) Publish(c *gin.Context) {
	userID := GetUserID(c)
	site, err := wc.store.GetByUser(userID)
	if err != nil {
		wc.errors.Respond(c, notFoundAs(err, "website"), "publish_website")
		return
	}
	if err := website.ValidateForPublish(site, wc.catalog); err != nil {
		wc.errors.Respond(c, err, "publish_website")
		return
	}
	if err := wc.checkSlug(site); err != nil {
		wc.errors.Respond(c, err, "publish_website")
		return
	}

	site, err = wc.store.SetPublished(userID, true, wc.now().UTC())
	if err != nil {
		wc.errors.Respond(c, notFoundAs(err, "website"), "publish_website")
		return
	}
	wc.record(c, "website_publish", site)
	c.JSON(http.StatusOK, wc.response(site))
}

func (wc *WebsiteController) Unpublish(c *gin.Context) {
	site, err := wc.store.SetPublished(GetUserID(c), false, wc.now().UTC())
	if err != nil {
		wc.errors.Respond(c, notFoundAs(err, "website"), "unpublish_website")
		return
	}
	wc.record(c, "website_unpublish", site)
	c.JSON(http.StatusOK, wc.response(site))
}

// SlugAvailable checks ?slug= for format and uniqueness.
func (wc *WebsiteController) SlugAvailable(c *gin.Context) {
	slug := strings.ToLower(strings.TrimSpace(c.Query("slug")))
	if err := security.ValidateSlug(slug); err != nil {
		c.JSON(http.StatusOK, gin.H{"slug": slug, "available": false, "reason": "invalid"})
		return
	}
	taken, err := wc.store.SlugTaken(slug, GetUserID(c))
	if err != nil {
		wc.errors.Respond(c, err, "slug_available")
		return
	}
	resp := gin.H{"slug": slug, "available": !taken}
	if taken {
		resp["reason"] = "taken"
	}
	c.JSON(http.StatusOK, resp)
}

// ListRSVPs pages through submissions to the caller's site.
func (wc *WebsiteController) ListRSVPs(c *gin.Context) {
	site, err := wc.store.GetByUser(GetUserID(c))
	if err != nil {
		wc.errors.Respond(c, notFoundAs(err, "website"), "list_rsvps")
		return
	}
	p := parsePagination(c)
	responses, total, err := wc.store.ListRSVPs(site.ID, p.Limit, p.Offset)
	if err != nil {
		wc.errors.Respond(c, err, "list_rsvps")
		return
	}
	c.JSON(http.StatusOK, newPaginatedResponse(responses, total, p))
}

func (wc *WebsiteController) Themes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"themes":        wc.catalog.All(),
		"default":       wc.catalog.Default().ID,
		"section_types": website.SectionTypes(),
	})
}

// published loads a published site by slug. Drafts look missing.
func (wc *WebsiteController) published(c *gin.Context) (*entities.WeddingWebsite, error) {
	slug := strings.ToLower(c.Param("slug"))
	site, err := wc.store.GetBySlug(slug)
	if err != nil {
		return nil, notFoundAs(err, "website")
	}
	if !site.IsPublished {
		return nil, apperr.NotFound("website")
	}
	if err := wc.store.IncrementViews(site.ID); err != nil {
		wc.errors.Handle(c.Request.Context(), err, apperr.Options{Operation: "increment_site_views", Severity: apperr.SeverityLow})
	} else {
		site.ViewCount++
	}
	return site, nil
}

// PublicPage renders the published site as HTML.
func (wc *WebsiteController) PublicPage(c *gin.Context) {
	site, err := wc.published(c)
	if err != nil {
		status := apperr.StatusOf(err)
		if status >= http.StatusInternalServerError {
			wc.errors.Handle(c.Request.Context(), err, apperr.Options{Operation: "public_page"})
		}
		c.Data(status, "text/html; charset=utf-8", []byte("<!doctype html><title>Not found</title><p>This wedding website is not available.</p>"))
		return
	}

	var buf bytes.Buffer
	if err := wc.renderer.Render(&buf, site); err != nil {
		wc.errors.Handle(c.Request.Context(), err, apperr.Options{Operation: "render_website"})
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte("<!doctype html><p>Something went wrong.</p>"))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// PublicSite is the JSON form of a published site.
func (wc *WebsiteController) PublicSite(c *gin.Context) {
	site, err := wc.published(c)
	if err != nil {
		wc.errors.Respond(c, err, "public_site")
		return
	}
	theme, ok := wc.catalog.Get(site.Theme)
	if !ok {
		theme = wc.catalog.Default()
	}
	c.JSON(http.StatusOK, gin.H{
		"slug":          site.Slug,
		"title":         site.Title,
		"headline":      site.Headline,
		"story":         site.Story,
		"event_date":    site.EventDate,
		"venue_name":    site.VenueName,
		"venue_address": site.VenueAddress,
		"sections":      website.VisibleSections(site),
		"theme":         theme,
		"rsvp_enabled":  site.RSVPEnabled,
		"rsvp_deadline": site.RSVPDeadline,
		"rsvp_open":     website.RSVPOpen(site, wc.now()),
		"share_url":     website.ShareURL(wc.baseURL, site.Slug),
	})
}

// SubmitRSVP accepts JSON from API clients and form posts from the public
// page. Form posts are redirected back to the page.
func (wc *WebsiteController) SubmitRSVP(c *gin.Context) {
	slug := strings.ToLower(c.Param("slug"))
	isForm := c.ContentType() == gin.MIMEPOSTForm || c.ContentType() == gin.MIMEMultipartPOSTForm

	var req website.RSVPRequest
	var err error
	if isForm {
		err = c.ShouldBind(&req)
	} else {
		err = bindJSON(c, &req)
	}
	if err != nil {
		wc.errors.Respond(c, apperr.Validation("invalid request body", nil), "submit_rsvp")
		return
	}

	result, err := wc.submit(c, slug, req)
	if err != nil {
		if isForm && apperr.StatusOf(err) < http.StatusInternalServerError {
			c.Redirect(http.StatusSeeOther, "/w/"+url.PathEscape(slug)+"?rsvp=error")
			return
		}
		wc.errors.Respond(c, err, "submit_rsvp")
		return
	}

	if isForm {
		c.Redirect(http.StatusSeeOther, "/w/"+url.PathEscape(slug)+"?rsvp=received")
		return
	}
	respondCreated(c, result)
}

// submit throttles submissions per client and site before handing the
// request to the RSVP service.
func (wc *WebsiteController) submit(c *gin.Context, slug string, req website.RSVPRequest) (*website.RSVPResult, error) {
	if wc.limiter != nil {
		key := ratelimit.Key(c.ClientIP(), slug)
		if ok, retryAfter := wc.limiter.Allow(key); !ok {
			setRetryAfter(c, retryAfter)
			return nil, apperr.RateLimited("too many RSVP submissions", retryAfter)
		}
		wc.limiter.Hit(key)
	}
	return wc.rsvps.Submit(c.Request.Context(), slug, req)
}

func (wc *WebsiteController) record(c *gin.Context, action string, site *entities.WeddingWebsite) {
	recordAction(wc.auditor, c, audit.Action{
		EventType:  entities.AuditEventWebsite,
		Action:     action,
		EntityType: "website",
		EntityID:   site.ID,
		Metadata:   map[string]any{"slug": site.Slug, "published": site.IsPublished},
	})
}
