package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/ratelimit"
	"github.com/mrlokans/weddingplanner/internal/website"
)

func newWebsiteEnv(t *testing.T, configure ...func(*RouterConfig)) *testEnv {
	t.Helper()
	catalog, err := website.LoadCatalog()
	require.NoError(t, err)
	renderer, err := website.NewRenderer(catalog, "https://weddings.example.com")
	require.NoError(t, err)

	configure = append([]func(*RouterConfig){func(cfg *RouterConfig) {
		cfg.Catalog = catalog
		cfg.Renderer = renderer
		cfg.PublicBaseURL = "https://weddings.example.com"
		cfg.RSVPs = website.NewRSVPService(
			cfg.Websites.(website.SiteStore),
			cfg.Guests.(website.GuestStore),
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)
	}}, configure...)
	return newTestEnv(t, configure...)
}

func saveSite(t *testing.T, env *testEnv, body map[string]any) WebsiteResponse {
	t.Helper()
	w := env.do(t, http.MethodPut, "/api/website", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[WebsiteResponse](t, w)
}

func publishSite(t *testing.T, env *testEnv) {
	t.Helper()
	saveSite(t, env, map[string]any{
		"slug":         "ada-and-charles",
		"title":        "Ada & Charles",
		"theme":        "garden",
		"headline":     "We're getting married",
		"rsvp_enabled": true,
	})
	w := env.do(t, http.MethodPost, "/api/website/publish", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestWebsites_GetBeforeFirstSave(t *testing.T) {
	env := newWebsiteEnv(t)

	w := env.do(t, http.MethodGet, "/api/website", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[WebsiteResponse](t, w)
	assert.Nil(t, resp.Website)
	assert.Empty(t, resp.ShareURL)
}

func TestWebsites_SaveUsesThemeDefaults(t *testing.T) {
	env := newWebsiteEnv(t)

	resp := saveSite(t, env, map[string]any{"slug": "Ada-And-Charles", "title": "Ada & Charles"})

	require.NotNil(t, resp.Website)
	assert.Equal(t, "ada-and-charles", resp.Website.Slug)
	assert.Equal(t, "classic", resp.Website.Theme)
	assert.NotEmpty(t, resp.Website.Sections)
	assert.False(t, resp.Website.IsPublished)
	assert.Equal(t, "https://weddings.example.com/w/ada-and-charles", resp.ShareURL)
	assert.False(t, resp.RSVPOpen, "drafts do not take RSVPs")
	assert.True(t, env.auditor.has("website_save"))

	w := env.do(t, http.MethodGet, "/api/website", nil)
	assert.Equal(t, "Ada & Charles", decode[WebsiteResponse](t, w).Website.Title)
}

func TestWebsites_SaveValidation(t *testing.T) {
	env := newWebsiteEnv(t)

	for _, body := range []map[string]any{
		{"slug": "A!", "title": "x"},
		{"title": "x", "theme": "neon"},
		{"title": "x", "sections": []map[string]any{{"type": "casino", "title": "Bets"}}},
	} {
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/website", body).Code, body)
	}
}

func TestWebsites_SlugConflictAndAvailability(t *testing.T) {
	env := newWebsiteEnv(t)
	require.NoError(t, env.websites.Save(&entities.WeddingWebsite{UserID: 9, Slug: "taken-slug", Title: "Other", Theme: "classic"}))

	w := env.do(t, http.MethodPut, "/api/website", map[string]any{"slug": "taken-slug", "title": "Mine"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Details, "slug")

	w = env.do(t, http.MethodGet, "/api/website/slug-available?slug=taken-slug", nil)
	assert.JSONEq(t, `{"slug":"taken-slug","available":false,"reason":"taken"}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/website/slug-available?slug=x", nil)
	assert.JSONEq(t, `{"slug":"x","available":false,"reason":"invalid"}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/website/slug-available?slug=Free-Slug", nil)
	assert.JSONEq(t, `{"slug":"free-slug","available":true}`, w.Body.String())
}

func TestWebsites_PublishRequiresTitleAndSlug(t *testing.T) {
	env := newWebsiteEnv(t)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/website/publish", nil).Code)

	saveSite(t, env, map[string]any{"headline": "Soon"})
	w := env.do(t, http.MethodPost, "/api/website/publish", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	details := decode[ErrorResponse](t, w).Details
	assert.Contains(t, details, "title")
	assert.Contains(t, details, "slug")
}

func TestWebsites_PublicPages(t *testing.T) {
	env := newWebsiteEnv(t)
	saveSite(t, env, map[string]any{"slug": "ada-and-charles", "title": "Ada & Charles"})

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/public/websites/ada-and-charles", nil).Code)
	w := env.do(t, http.MethodGet, "/w/ada-and-charles", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/website/publish", nil).Code)
	assert.True(t, env.auditor.has("website_publish"))

	w = env.do(t, http.MethodGet, "/w/ada-and-charles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<title>Ada &amp; Charles</title>")

	w = env.do(t, http.MethodGet, "/api/public/websites/ADA-AND-CHARLES", nil)
	require.Equal(t, http.StatusOK, w.Code)
	public := decode[struct {
		Title    string `json:"title"`
		ShareURL string `json:"share_url"`
		Theme    struct {
			ID string `json:"id"`
		} `json:"theme"`
	}](t, w)
	assert.Equal(t, "Ada & Charles", public.Title)
	assert.Equal(t, "classic", public.Theme.ID)
	assert.Equal(t, "https://weddings.example.com/w/ada-and-charles", public.ShareURL)

	site, err := env.websites.GetByUser(0)
	require.NoError(t, err)
	assert.Equal(t, 2, site.ViewCount)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/website/unpublish", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/w/ada-and-charles", nil).Code)
}

func TestWebsites_RSVPJSON(t *testing.T) {
	env := newWebsiteEnv(t)
	invited := createGuest(t, env, map[string]any{"first_name": "Grace", "last_name": "Hopper", "email": "grace@example.com"})
	publishSite(t, env)

	w := env.do(t, http.MethodPost, "/api/public/websites/ada-and-charles/rsvp", map[string]any{
		"first_name":      "Grace",
		"email":           "GRACE@example.com",
		"attending":       true,
		"meal_preference": "fish",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	result := decode[website.RSVPResult](t, w)
	assert.True(t, result.Matched)
	require.NotNil(t, result.Response)
	assert.Equal(t, invited.ID, result.Response.GuestID)
	assert.Equal(t, 1, result.Response.PartySize)

	stored, err := env.wedding.GetGuest(0, invited.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RSVPAttending, stored.RSVPStatus)
	assert.Equal(t, "fish", stored.MealPreference)

	w = env.do(t, http.MethodPost, "/api/public/websites/ada-and-charles/rsvp", map[string]any{"first_name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/public/websites/nobody/rsvp", map[string]any{"first_name": "Grace"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/website/rsvps", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[PaginatedResponse](t, w).Total)
}

func TestWebsites_RSVPFormRedirects(t *testing.T) {
	env := newWebsiteEnv(t)
	publishSite(t, env)

	post := func(form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/public/websites/ada-and-charles/rsvp", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		return w
	}

	w := post(url.Values{"first_name": {"Alan"}, "last_name": {"Turing"}, "attending": {"true"}, "plus_one_name": {"Christopher"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/w/ada-and-charles?rsvp=received", w.Header().Get("Location"))

	guest, err := env.wedding.FindGuestByName(0, "Alan", "Turing")
	require.NoError(t, err)
	assert.Equal(t, website.WebsiteGroup, guest.Group)
	assert.Equal(t, "Christopher", guest.PlusOneName)
	assert.True(t, guest.PlusOneAttending)

	w = post(url.Values{"email": {"not-an-email"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/w/ada-and-charles?rsvp=error", w.Header().Get("Location"))
}

func TestWebsites_Themes(t *testing.T) {
	env := newWebsiteEnv(t)

	w := env.do(t, http.MethodGet, "/api/website/themes", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		Themes       []website.Theme `json:"themes"`
		Default      string          `json:"default"`
		SectionTypes []string        `json:"section_types"`
	}](t, w)
	assert.Len(t, resp.Themes, 5)
	assert.Equal(t, "classic", resp.Default)
	assert.Contains(t, resp.SectionTypes, "rsvp")
}

func TestWebsites_RSVPRateLimited(t *testing.T) {
	env := newWebsiteEnv(t, func(cfg *RouterConfig) {
		limiter := ratelimit.New(ratelimit.Config{MaxAttempts: 2, Window: time.Hour, Lockout: time.Hour})
		t.Cleanup(limiter.Stop)
		cfg.RSVPLimiter = limiter
	})
	publishSite(t, env)

	for _, name := range []string{"Alan", "Grace"} {
		w := env.do(t, http.MethodPost, "/api/public/websites/ada-and-charles/rsvp", map[string]any{"first_name": name, "attending": true})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := env.do(t, http.MethodPost, "/api/public/websites/ada-and-charles/rsvp", map[string]any{"first_name": "Edsger"})
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", decode[ErrorResponse](t, w).Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))

	_, err := env.wedding.FindGuestByName(0, "Edsger", "")
	assert.Error(t, err)
}
