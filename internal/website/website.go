// Package website builds, validates and renders couples' public wedding websites.
package website

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/security"
)

const (
	MaxSections      = 30
	maxSectionBody   = 10000
	maxStoryLength   = 20000
	maxAddressLength = security.MaxShortText
)

var sectionOrder = []entities.SectionType{
	entities.SectionHero,
	entities.SectionStory,
	entities.SectionSchedule,
	entities.SectionTravel,
	entities.SectionRegistry,
	entities.SectionGallery,
	entities.SectionFAQ,
	entities.SectionRSVP,
}

// Sections that may appear more than once on a page.
var repeatable = map[entities.SectionType]bool{
	entities.SectionGallery: true,
	entities.SectionFAQ:     true,
	entities.SectionTravel:  true,
}

var defaultTitles = map[entities.SectionType]string{
	entities.SectionHero:     "Welcome",
	entities.SectionStory:    "Our Story",
	entities.SectionSchedule: "Schedule",
	entities.SectionTravel:   "Travel & Stay",
	entities.SectionRegistry: "Registry",
	entities.SectionGallery:  "Gallery",
	entities.SectionFAQ:      "Questions",
	entities.SectionRSVP:     "RSVP",
}

func KnownSection(t entities.SectionType) bool {
	_, ok := defaultTitles[t]
	return ok
}

// SectionTypes lists the section types in their natural page order.
func SectionTypes() []entities.SectionType {
	return append([]entities.SectionType(nil), sectionOrder...)
}

// DefaultSections returns the starter sections of theme, all visible.
func DefaultSections(theme Theme) []entities.WebsiteSection {
	sections := make([]entities.WebsiteSection, 0, len(theme.Sections))
	for i, st := range theme.Sections {
		sections = append(sections, entities.WebsiteSection{
			Type:     st,
			Title:    defaultTitles[st],
			Visible:  true,
			Position: i,
		})
	}
	return sections
}

// NormalizeSections sanitizes sections, keeps the first occurrence of each
// single-use type and renumbers positions in the given order. Unknown types
// are reported as validation errors.
func NormalizeSections(in []entities.WebsiteSection) ([]entities.WebsiteSection, error) {
	errs := security.FieldErrors{}
	if len(in) > MaxSections {
		errs.Add("sections", "too many sections")
		return nil, errs.Err()
	}

	out := make([]entities.WebsiteSection, 0, len(in))
	seen := make(map[entities.SectionType]bool)
	for _, s := range in {
		s.Type = entities.SectionType(strings.ToLower(strings.TrimSpace(string(s.Type))))
		if !KnownSection(s.Type) {
			errs.Add("sections", "unknown section type "+string(s.Type))
			continue
		}
		if seen[s.Type] && !repeatable[s.Type] {
			continue
		}
		seen[s.Type] = true

		s.Title = security.SanitizeText(s.Title, security.MaxTitleLength)
		if s.Title == "" {
			s.Title = defaultTitles[s.Type]
		}
		s.Body = security.Truncate(strings.TrimSpace(s.Body), maxSectionBody)
		s.Position = len(out)
		out = append(out, s)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Input is the editable part of a website.
type Input struct {
	Slug         string                    `json:"slug"`
	Title        string                    `json:"title"`
	Theme        string                    `json:"theme"`
	Headline     string                    `json:"headline"`
	Story        string                    `json:"story"`
	EventDate    *time.Time                `json:"event_date"`
	VenueName    string                    `json:"venue_name"`
	VenueAddress string                    `json:"venue_address"`
	Sections     []entities.WebsiteSection `json:"sections"`
	RSVPEnabled  bool                      `json:"rsvp_enabled"`
	RSVPDeadline *time.Time                `json:"rsvp_deadline"`
}

// Apply validates the input against catalog and copies it onto site. When no
// sections are given the theme's defaults are used.
func (in Input) Apply(site *entities.WeddingWebsite, catalog *Catalog) error {
	errs := security.FieldErrors{}

	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if slug != "" && security.ValidateSlug(slug) != nil {
		errs.Add("slug", "must be 3-80 lowercase letters, digits or hyphens")
	}

	themeID := strings.ToLower(strings.TrimSpace(in.Theme))
	if themeID == "" {
		themeID = catalog.Default().ID
	}
	theme, ok := catalog.Get(themeID)
	if !ok {
		errs.Add("theme", "unknown theme")
	}

	sections := in.Sections
	if len(sections) == 0 && ok {
		sections = DefaultSections(theme)
	}
	normalized, err := NormalizeSections(sections)
	if err != nil {
		errs.Add("sections", sectionError(err))
	}

	if in.RSVPDeadline != nil && in.EventDate != nil && in.RSVPDeadline.After(*in.EventDate) {
		errs.Add("rsvp_deadline", "must not be after the event date")
	}
	if err := errs.Err(); err != nil {
		return err
	}

	site.Slug = slug
	site.Title = security.SanitizeText(in.Title, security.MaxTitleLength)
	site.Theme = themeID
	site.Headline = security.SanitizeText(in.Headline, security.MaxTitleLength)
	site.Story = security.SanitizeHTML(security.Truncate(in.Story, maxStoryLength))
	site.EventDate = in.EventDate
	site.VenueName = security.SanitizeText(in.VenueName, security.MaxTitleLength)
	site.VenueAddress = security.SanitizeText(in.VenueAddress, maxAddressLength)
	site.Sections = normalized
	site.RSVPEnabled = in.RSVPEnabled
	site.RSVPDeadline = in.RSVPDeadline
	return nil
}

// ValidateForPublish checks that site has everything a public page needs.
func ValidateForPublish(site *entities.WeddingWebsite, catalog *Catalog) error {
	errs := security.FieldErrors{}
	errs.Required("title", site.Title)
	errs.Required("slug", site.Slug)
	if site.Slug != "" && security.ValidateSlug(site.Slug) != nil {
		errs.Add("slug", "must be 3-80 lowercase letters, digits or hyphens")
	}
	if site.Theme == "" {
		errs.Add("theme", "is required")
	} else if _, ok := catalog.Get(site.Theme); !ok {
		errs.Add("theme", "unknown theme")
	}
	return errs.Err()
}

// ShareURL is the public address of a site.
func ShareURL(baseURL, slug string) string {
	base := strings.TrimRight(baseURL, "/")
	return base + "/w/" + url.PathEscape(slug)
}

// RSVPOpen reports whether the site currently accepts RSVPs. The deadline
// day is inclusive: RSVPs close when that calendar day ends.
func RSVPOpen(site *entities.WeddingWebsite, now time.Time) bool {
	if !site.IsPublished || !site.RSVPEnabled {
		return false
	}
	if site.RSVPDeadline == nil {
		return true
	}
	d := *site.RSVPDeadline
	closes := time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, d.Location())
	return now.Before(closes)
}

// VisibleSections returns the visible sections ordered by position.
func VisibleSections(site *entities.WeddingWebsite) []entities.WebsiteSection {
	out := make([]entities.WebsiteSection, 0, len(site.Sections))
	for _, s := range site.Sections {
		if s.Visible {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func sectionError(err error) string {
	if details, ok := apperr.Classify(err).Details.(map[string]string); ok {
		if msg, ok := details["sections"]; ok {
			return msg
		}
	}
	return "invalid sections"
}
