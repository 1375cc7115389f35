// Package seating aggregates guest RSVPs and enforces table capacity.
package seating

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mrlokans/weddingplanner/internal/entities"
)

var (
	ErrTableFull     = errors.New("table is full")
	ErrGuestDeclined = errors.New("guest has declined and cannot be seated")
)

// Headcount is the number of seats a guest occupies: the guest plus an
// allowed plus-one who is attending or named. Declined guests take no seat.
func Headcount(g entities.Guest) int {
	if g.RSVPStatus == entities.RSVPDeclined {
		return 0
	}
	n := 1
	if g.PlusOneAllowed && (g.PlusOneAttending || strings.TrimSpace(g.PlusOneName) != "") {
		n++
	}
	return n
}

// Summary describes the RSVP state of a guest list.
type Summary struct {
	TotalGuests       int            `json:"total_guests"`
	Attending         int            `json:"attending"`
	Declined          int            `json:"declined"`
	Pending           int            `json:"pending"`
	Maybe             int            `json:"maybe"`
	PlusOnes          int            `json:"plus_ones"`
	ExpectedAttendees int            `json:"expected_attendees"`
	ResponseRate      float64        `json:"response_rate"` // percent of guests who answered yes or no
	Seated            int            `json:"seated"`
	Unseated          int            `json:"unseated"`
	MealPreferences   map[string]int `json:"meal_preferences"`
}

// RSVPSummary counts guests by status. Expected attendees is the headcount of
// attending guests. Meal preferences are counted for attending guests only.
func RSVPSummary(guests []entities.Guest) Summary {
	s := Summary{TotalGuests: len(guests), MealPreferences: map[string]int{}}
	for _, g := range guests {
		switch g.RSVPStatus {
		case entities.RSVPAttending:
			s.Attending++
			hc := Headcount(g)
			s.ExpectedAttendees += hc
			s.PlusOnes += hc - 1
			meal := strings.ToLower(strings.TrimSpace(g.MealPreference))
			if meal == "" {
				meal = "unspecified"
			}
			s.MealPreferences[meal]++
		case entities.RSVPDeclined:
			s.Declined++
		case entities.RSVPMaybe:
			s.Maybe++
		default:
			s.Pending++
		}

		if g.TableID != nil {
			s.Seated++
		} else if g.RSVPStatus != entities.RSVPDeclined {
			s.Unseated++
		}
	}
	if s.TotalGuests > 0 {
		answered := s.Attending + s.Declined
		s.ResponseRate = math.Round(float64(answered)/float64(s.TotalGuests)*1000) / 10
	}
	return s
}

// Occupancy is a table's seat usage.
type Occupancy struct {
	TableID   uint   `json:"table_id"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	SeatsUsed int    `json:"seats_used"`
	SeatsFree int    `json:"seats_free"`
	Full      bool   `json:"full"`
}

// TableOccupancy counts the seats taken by guests at table.
func TableOccupancy(table entities.SeatingTable, guests []entities.Guest) Occupancy {
	used := 0
	for _, g := range guests {
		used += Headcount(g)
	}
	free := table.Capacity - used
	if free < 0 {
		free = 0
	}
	return Occupancy{
		TableID:   table.ID,
		Name:      table.Name,
		Capacity:  table.Capacity,
		SeatsUsed: used,
		SeatsFree: free,
		Full:      used >= table.Capacity,
	}
}

// CanSeat checks whether guest fits at table alongside seated. The guest is
// ignored in seated, so re-seating at the same table is always allowed when it fits.
func CanSeat(table entities.SeatingTable, seated []entities.Guest, guest entities.Guest) error {
	if guest.RSVPStatus == entities.RSVPDeclined {
		return ErrGuestDeclined
	}
	used := 0
	for _, g := range seated {
		if g.ID == guest.ID {
			continue
		}
		used += Headcount(g)
	}
	if used+Headcount(guest) > table.Capacity {
		return fmt.Errorf("%w: %d of %d seats taken at %q", ErrTableFull, used, table.Capacity, table.Name)
	}
	return nil
}

// Groups returns the distinct, non-empty guest groups sorted alphabetically.
func Groups(guests []entities.Guest) []string {
	seen := make(map[string]bool)
	groups := make([]string, 0)
	for _, g := range guests {
		if g.Group == "" || seen[g.Group] {
			continue
		}
		seen[g.Group] = true
		groups = append(groups, g.Group)
	}
	sort.Strings(groups)
	return groups
}

// ParseRSVPStatus maps free-form input to a status. Common synonyms are accepted;
// blank input is pending.
func ParseRSVPStatus(s string) (entities.RSVPStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pending", "invited", "no response":
		return entities.RSVPPending, nil
	case "attending", "yes", "accepted", "confirmed":
		return entities.RSVPAttending, nil
	case "declined", "no", "not attending", "regrets":
		return entities.RSVPDeclined, nil
	case "maybe", "tentative":
		return entities.RSVPMaybe, nil
	}
	return "", fmt.Errorf("unknown RSVP status %q", s)
}
