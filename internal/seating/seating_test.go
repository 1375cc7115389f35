package seating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

func uintPtr(v uint) *uint { return &v }

func TestHeadcount(t *testing.T) {
	tests := []struct {
		name  string
		guest entities.Guest
		want  int
	}{
		{"single", entities.Guest{RSVPStatus: entities.RSVPAttending}, 1},
		{"plus one attending", entities.Guest{RSVPStatus: entities.RSVPAttending, PlusOneAllowed: true, PlusOneAttending: true}, 2},
		{"plus one named", entities.Guest{RSVPStatus: entities.RSVPPending, PlusOneAllowed: true, PlusOneName: "Sam"}, 2},
		{"plus one allowed but unused", entities.Guest{RSVPStatus: entities.RSVPAttending, PlusOneAllowed: true}, 1},
		{"plus one not allowed", entities.Guest{RSVPStatus: entities.RSVPAttending, PlusOneAttending: true}, 1},
		{"declined", entities.Guest{RSVPStatus: entities.RSVPDeclined, PlusOneAllowed: true, PlusOneAttending: true}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Headcount(tt.guest))
		})
	}
}

func TestRSVPSummary(t *testing.T) {
	guests := []entities.Guest{
		{RSVPStatus: entities.RSVPAttending, MealPreference: "Vegan", PlusOneAllowed: true, PlusOneAttending: true, TableID: uintPtr(1)},
		{RSVPStatus: entities.RSVPAttending, MealPreference: "vegan"},
		{RSVPStatus: entities.RSVPAttending},
		{RSVPStatus: entities.RSVPDeclined, MealPreference: "fish"},
		{RSVPStatus: entities.RSVPMaybe},
		{RSVPStatus: entities.RSVPPending},
	}

	s := RSVPSummary(guests)

	assert.Equal(t, 6, s.TotalGuests)
	assert.Equal(t, 3, s.Attending)
	assert.Equal(t, 1, s.Declined)
	assert.Equal(t, 1, s.Maybe)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 1, s.PlusOnes)
	assert.Equal(t, 4, s.ExpectedAttendees)
	assert.Equal(t, 66.7, s.ResponseRate)
	assert.Equal(t, 1, s.Seated)
	assert.Equal(t, 4, s.Unseated)
	assert.Equal(t, map[string]int{"vegan": 2, "unspecified": 1}, s.MealPreferences)
}

func TestRSVPSummary_Empty(t *testing.T) {
	s := RSVPSummary(nil)
	assert.Zero(t, s.TotalGuests)
	assert.Zero(t, s.ResponseRate)
	assert.NotNil(t, s.MealPreferences)
}

func TestTableOccupancy(t *testing.T) {
	table := entities.SeatingTable{ID: 3, Name: "Family", Capacity: 4}
	guests := []entities.Guest{
		{RSVPStatus: entities.RSVPAttending, PlusOneAllowed: true, PlusOneName: "Alex"},
		{RSVPStatus: entities.RSVPPending},
	}

	occ := TableOccupancy(table, guests)
	assert.Equal(t, 3, occ.SeatsUsed)
	assert.Equal(t, 1, occ.SeatsFree)
	assert.False(t, occ.Full)

	guests = append(guests, entities.Guest{RSVPStatus: entities.RSVPAttending, PlusOneAllowed: true, PlusOneAttending: true})
	occ = TableOccupancy(table, guests)
	assert.Equal(t, 5, occ.SeatsUsed)
	assert.Equal(t, 0, occ.SeatsFree)
	assert.True(t, occ.Full)
}

func TestCanSeat(t *testing.T) {
	table := entities.SeatingTable{ID: 1, Name: "Head", Capacity: 3}
	seated := []entities.Guest{
		{ID: 1, RSVPStatus: entities.RSVPAttending, PlusOneAllowed: true, PlusOneAttending: true},
	}

	t.Run("fits", func(t *testing.T) {
		assert.NoError(t, CanSeat(table, seated, entities.Guest{ID: 2, RSVPStatus: entities.RSVPAttending}))
	})

	t.Run("full", func(t *testing.T) {
		err := CanSeat(table, seated, entities.Guest{ID: 2, PlusOneAllowed: true, PlusOneName: "Kim"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTableFull)
		assert.Contains(t, err.Error(), `"Head"`)
	})

	t.Run("reseating the same guest is not double counted", func(t *testing.T) {
		assert.NoError(t, CanSeat(table, seated, seated[0]))
	})

	t.Run("declined guests cannot be seated", func(t *testing.T) {
		err := CanSeat(table, nil, entities.Guest{ID: 5, RSVPStatus: entities.RSVPDeclined})
		assert.ErrorIs(t, err, ErrGuestDeclined)
	})
}

func TestGroups(t *testing.T) {
	guests := []entities.Guest{{Group: "work"}, {Group: ""}, {Group: "family"}, {Group: "work"}}
	assert.Equal(t, []string{"family", "work"}, Groups(guests))
	assert.Empty(t, Groups(nil))
}

func TestParseRSVPStatus(t *testing.T) {
	valid := map[string]entities.RSVPStatus{
		"":          entities.RSVPPending,
		"Yes":       entities.RSVPAttending,
		" accepted": entities.RSVPAttending,
		"REGRETS":   entities.RSVPDeclined,
		"no":        entities.RSVPDeclined,
		"tentative": entities.RSVPMaybe,
		"pending":   entities.RSVPPending,
	}
	for in, want := range valid {
		got, err := ParseRSVPStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseRSVPStatus("perhaps later")
	assert.Error(t, err)
}

func TestValidateGuest(t *testing.T) {
	g := entities.Guest{
		FirstName:   "  <b>Ana</b> ",
		Email:       " Ana@Example.COM ",
		Group:       "Family",
		PlusOneName: "ignored",
	}
	require.NoError(t, ValidateGuest(&g))
	assert.Equal(t, "Ana", g.FirstName)
	assert.Equal(t, "ana@example.com", g.Email)
	assert.Equal(t, "family", g.Group)
	assert.Equal(t, entities.RSVPPending, g.RSVPStatus)
	assert.Empty(t, g.PlusOneName, "plus-one name is dropped when no plus-one is allowed")

	bad := entities.Guest{Email: "nope", RSVPStatus: "sometimes"}
	err := ValidateGuest(&bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	details := apperr.Classify(err).Details.(map[string]string)
	assert.Contains(t, details, "first_name")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "rsvp_status")
}

func TestValidateTable(t *testing.T) {
	ok := entities.SeatingTable{Name: "Table 1", Capacity: 8, Shape: "Round"}
	require.NoError(t, ValidateTable(&ok))
	assert.Equal(t, "round", ok.Shape)

	bad := entities.SeatingTable{Name: "", Capacity: 0, Shape: "hexagon"}
	err := ValidateTable(&bad)
	require.Error(t, err)
	details := apperr.Classify(err).Details.(map[string]string)
	assert.Len(t, details, 3)
}
