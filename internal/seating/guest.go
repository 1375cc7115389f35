package seating

import (
	"strings"

	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/security"
)

const (
	MaxTableCapacity = 50
	maxGroupLength   = 50
	maxMealLength    = 50
)

// ValidateGuest sanitizes the guest's text fields in place and validates them.
func ValidateGuest(g *entities.Guest) error {
	g.FirstName = security.SanitizeText(g.FirstName, security.MaxNameLength)
	g.LastName = security.SanitizeText(g.LastName, security.MaxNameLength)
	g.Email = strings.ToLower(strings.TrimSpace(g.Email))
	g.Phone = strings.TrimSpace(g.Phone)
	g.Group = strings.ToLower(security.SanitizeText(g.Group, maxGroupLength))
	g.Side = strings.ToLower(security.SanitizeText(g.Side, 20))
	g.MealPreference = security.SanitizeText(g.MealPreference, maxMealLength)
	g.DietaryNotes = security.SanitizeText(g.DietaryNotes, security.MaxShortText)
	g.PlusOneName = security.SanitizeText(g.PlusOneName, security.MaxNameLength)
	g.Notes = security.SanitizeText(g.Notes, security.MaxNoteLength)
	if g.RSVPStatus == "" {
		g.RSVPStatus = entities.RSVPPending
	}
	if !g.PlusOneAllowed {
		g.PlusOneName = ""
		g.PlusOneAttending = false
	}

	errs := security.FieldErrors{}
	errs.Required("first_name", g.FirstName)
	errs.Email("email", g.Email)
	errs.Phone("phone", g.Phone)
	if !g.RSVPStatus.Valid() {
		errs.Add("rsvp_status", "must be one of pending, attending, declined, maybe")
	}
	return errs.Err()
}

// ValidateTable sanitizes and validates a seating table in place.
func ValidateTable(t *entities.SeatingTable) error {
	t.Name = security.SanitizeText(t.Name, security.MaxNameLength)
	t.Shape = strings.ToLower(security.SanitizeText(t.Shape, 20))
	t.Notes = security.SanitizeText(t.Notes, security.MaxShortText)

	errs := security.FieldErrors{}
	errs.Required("name", t.Name)
	if t.Capacity < 1 || t.Capacity > MaxTableCapacity {
		errs.Add("capacity", "must be between 1 and 50")
	}
	switch t.Shape {
	case "", "round", "rectangle", "square":
	default:
		errs.Add("shape", "must be round, rectangle or square")
	}
	return errs.Err()
}
