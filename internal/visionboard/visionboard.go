// Package visionboard orders vision-board items and builds the text sent to the
// image search function and the image analyzer.
package visionboard

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/security"
)

var (
	ErrIndexOutOfRange = errors.New("position out of range")
	ErrOrderMismatch   = errors.New("ordering must list every item exactly once")
)

const (
	MaxItems         = 200
	maxSearchColors  = 2
	maxSearchThemes  = 3
	maxQueryLength   = 200
	maxCaptionLength = security.MaxShortText
)

var seasons = map[string]bool{"spring": true, "summer": true, "autumn": true, "winter": true}

// Reorder moves the item at from to index to and returns a new slice with
// positions reassigned 0..n-1. The input slice is not modified.
func Reorder(items []entities.VisionBoardItem, from, to int) ([]entities.VisionBoardItem, error) {
	n := len(items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, fmt.Errorf("%w: move %d to %d with %d items", ErrIndexOutOfRange, from, to, n)
	}

	out := make([]entities.VisionBoardItem, 0, n)
	moved := items[from]
	for i, item := range items {
		if i != from {
			out = append(out, item)
		}
	}
	out = append(out[:to], append([]entities.VisionBoardItem{moved}, out[to:]...)...)
	reindex(out)
	return out, nil
}

// ApplyOrder returns items arranged in the order of ids. The id list must
// contain each existing item exactly once.
func ApplyOrder(items []entities.VisionBoardItem, ids []uint) ([]entities.VisionBoardItem, error) {
	if len(ids) != len(items) {
		return nil, fmt.Errorf("%w: got %d ids for %d items", ErrOrderMismatch, len(ids), len(items))
	}
	byID := make(map[uint]entities.VisionBoardItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	out := make([]entities.VisionBoardItem, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown or repeated id %d", ErrOrderMismatch, id)
		}
		delete(byID, id)
		out = append(out, item)
	}
	reindex(out)
	return out, nil
}

// Sorted returns items ordered by position, then id.
func Sorted(items []entities.VisionBoardItem) []entities.VisionBoardItem {
	out := append([]entities.VisionBoardItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func reindex(items []entities.VisionBoardItem) {
	for i := range items {
		items[i].Position = i
	}
}

// BuildSearchQuery composes the image search text from the couple's
// preferences. extra, when given, leads the query.
func BuildSearchQuery(pref entities.VisionBoardPreference, extra string) string {
	var parts []string
	add := func(s string) {
		s = strings.TrimSpace(security.SanitizeText(s, security.MaxNameLength))
		if s != "" {
			parts = append(parts, s)
		}
	}

	add(extra)
	add(pref.Style)
	if seasons[strings.ToLower(pref.Season)] {
		add(strings.ToLower(pref.Season))
	}
	for i, theme := range pref.Themes {
		if i == maxSearchThemes {
			break
		}
		add(theme)
	}
	for i, color := range pref.Colors {
		if i == maxSearchColors {
			break
		}
		add(color)
	}
	add(pref.Keywords)

	if len(parts) == 0 {
		return "wedding inspiration"
	}
	parts = append(parts, "wedding")
	return security.Truncate(dedupeWords(strings.Join(parts, " ")), maxQueryLength)
}

// AnalysisPrompt asks the image analyzer to describe an image in relation to
// the couple's preferences and to answer with a JSON object.
func AnalysisPrompt(pref entities.VisionBoardPreference) string {
	var b strings.Builder
	b.WriteString("You are a wedding stylist reviewing an inspiration image for a couple's vision board.\n")
	b.WriteString("Describe the image and how it could be used at their wedding.\n")

	if pref.Style != "" {
		fmt.Fprintf(&b, "Preferred style: %s.\n", pref.Style)
	}
	if pref.Season != "" {
		fmt.Fprintf(&b, "Season: %s.\n", pref.Season)
	}
	if len(pref.Colors) > 0 {
		fmt.Fprintf(&b, "Colour palette: %s.\n", strings.Join(pref.Colors, ", "))
	}
	if len(pref.Themes) > 0 {
		fmt.Fprintf(&b, "Themes: %s.\n", strings.Join(pref.Themes, ", "))
	}
	if pref.Keywords != "" {
		fmt.Fprintf(&b, "Other notes: %s.\n", pref.Keywords)
	}

	b.WriteString(`Respond with a single JSON object with the keys "description" (string), ` +
		`"style" (string), "colors" (array of colour names), "tags" (array of short keywords) ` +
		`and "suggestions" (array of concrete ideas that fit the couple's preferences).`)
	return b.String()
}

// ValidatePreferences sanitizes preferences in place.
func ValidatePreferences(p *entities.VisionBoardPreference) error {
	p.Style = strings.ToLower(security.SanitizeText(p.Style, 50))
	p.Season = strings.ToLower(security.SanitizeText(p.Season, 20))
	p.Keywords = security.SanitizeText(p.Keywords, security.MaxShortText)
	p.Colors = cleanList(p.Colors, 12, 30)
	p.Themes = cleanList(p.Themes, 12, 50)

	errs := security.FieldErrors{}
	if p.Season != "" && !seasons[p.Season] {
		errs.Add("season", "must be spring, summer, autumn or winter")
	}
	return errs.Err()
}

// ValidateItem sanitizes an item in place. Uploaded items carry a relative
// image URL, everything else needs an absolute http(s) URL.
func ValidateItem(item *entities.VisionBoardItem) error {
	item.Caption = security.SanitizeText(item.Caption, maxCaptionLength)
	item.Category = strings.ToLower(security.SanitizeText(item.Category, 50))
	item.ImageURL = strings.TrimSpace(item.ImageURL)
	item.SourceURL = strings.TrimSpace(item.SourceURL)
	if item.Source == "" {
		item.Source = entities.VisionSourceLink
	}

	errs := security.FieldErrors{}
	switch item.Source {
	case entities.VisionSourceUpload:
		if item.UploadID == nil {
			errs.Add("upload_id", "is required for uploaded images")
		}
	case entities.VisionSourceSearch, entities.VisionSourceLink:
		errs.Required("image_url", item.ImageURL)
		errs.URL("image_url", item.ImageURL)
	default:
		errs.Add("source", "must be upload, search or link")
	}
	errs.URL("source_url", item.SourceURL)
	return errs.Err()
}

func cleanList(values []string, maxItems, maxLen int) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool)
	for _, v := range values {
		v = strings.ToLower(security.SanitizeText(v, maxLen))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
		if len(out) == maxItems {
			break
		}
	}
	return out
}

func dedupeWords(s string) string {
	seen := make(map[string]bool)
	words := strings.Fields(s)
	out := words[:0]
	for _, w := range words {
		key := strings.ToLower(w)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
	}
	return strings.Join(out, " ")
}
