package http

import (
	"bytes"
	"encoding/csv"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/weddingplanner/internal/database/wedding"
	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/seating"
)

type guestList struct {
	Guests []entities.Guest `json:"guests"`
	Total  int              `json:"total"`
	Groups []string         `json:"groups"`
}

func createGuest(t *testing.T, env *testEnv, body map[string]any) entities.Guest {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/guests", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[entities.Guest](t, w)
}

func TestGuests_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)

	guest := createGuest(t, env, map[string]any{
		"first_name":       " Ada ",
		"last_name":        "Lovelace",
		"email":            "ADA@Example.com",
		"group":            "Family",
		"rsvp_status":      "attending",
		"plus_one_allowed": true,
		"plus_one_name":    "Charles",
	})

	assert.Equal(t, "Ada", guest.FirstName)
	assert.Equal(t, "ada@example.com", guest.Email)
	assert.Equal(t, "family", guest.Group)
	assert.NotNil(t, guest.RespondedAt)

	w := env.do(t, http.MethodGet, "/api/guests/"+itoa(guest.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Lovelace", decode[entities.Guest](t, w).LastName)
}

func TestGuests_CreateDefaultsToPending(t *testing.T) {
	env := newTestEnv(t)

	guest := createGuest(t, env, map[string]any{"first_name": "Grace", "plus_one_name": "ignored"})

	assert.Equal(t, entities.RSVPPending, guest.RSVPStatus)
	assert.Nil(t, guest.RespondedAt)
	assert.Empty(t, guest.PlusOneName)
}

func TestGuests_CreateValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/guests", map[string]any{"first_name": "", "email": "nope", "rsvp_status": "sure"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[struct {
		Details map[string]string `json:"details"`
	}](t, w)
	assert.Contains(t, resp.Details, "first_name")
	assert.Contains(t, resp.Details, "email")
	assert.Contains(t, resp.Details, "rsvp_status")
}

func TestGuests_ListFilters(t *testing.T) {
	env := newTestEnv(t)
	createGuest(t, env, map[string]any{"first_name": "Ada", "last_name": "Lovelace", "group": "family", "rsvp_status": "attending"})
	createGuest(t, env, map[string]any{"first_name": "Grace", "last_name": "Hopper", "group": "work", "rsvp_status": "declined"})
	createGuest(t, env, map[string]any{"first_name": "Alan", "last_name": "Turing", "group": "work"})

	w := env.do(t, http.MethodGet, "/api/guests", nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[guestList](t, w)
	assert.Equal(t, 3, all.Total)
	assert.Equal(t, []string{"family", "work"}, all.Groups)

	w = env.do(t, http.MethodGet, "/api/guests?group=work", nil)
	assert.Equal(t, 2, decode[guestList](t, w).Total)

	w = env.do(t, http.MethodGet, "/api/guests?status=yes", nil)
	list := decode[guestList](t, w)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Ada", list.Guests[0].FirstName)

	w = env.do(t, http.MethodGet, "/api/guests?q=hop", nil)
	assert.Equal(t, 1, decode[guestList](t, w).Total)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/guests?status=perhaps", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/guests?table_id=x", nil).Code)
}

func TestGuests_UpdateToDeclinedUnseats(t *testing.T) {
	env := newTestEnv(t)
	guest := createGuest(t, env, map[string]any{"first_name": "Ada", "rsvp_status": "attending"})
	table := &entities.SeatingTable{Name: "Head", Capacity: 4}
	require.NoError(t, env.wedding.CreateTable(table))
	require.NoError(t, env.wedding.AssignGuestToTable(0, guest.ID, &table.ID))

	w := env.do(t, http.MethodPut, "/api/guests/"+itoa(guest.ID), map[string]any{"first_name": "Ada", "rsvp_status": "declined"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[entities.Guest](t, w)
	assert.Equal(t, entities.RSVPDeclined, updated.RSVPStatus)
	assert.Nil(t, updated.TableID)
	assert.NotNil(t, updated.RespondedAt)

	stored, err := env.wedding.GetGuest(0, guest.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.TableID)
}

func TestGuests_DeleteIsAuditedAndScoped(t *testing.T) {
	env := newTestEnv(t)
	guest := createGuest(t, env, map[string]any{"first_name": "Ada"})
	foreign := &entities.Guest{UserID: 7, FirstName: "Eve", RSVPStatus: entities.RSVPPending}
	require.NoError(t, env.wedding.CreateGuest(foreign))

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/guests/"+itoa(foreign.ID), nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/guests/"+itoa(guest.ID), nil).Code)
	assert.True(t, env.auditor.has("guest_delete"))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/guests/"+itoa(guest.ID), nil).Code)
}

func TestGuests_Summary(t *testing.T) {
	env := newTestEnv(t)
	createGuest(t, env, map[string]any{"first_name": "Ada", "rsvp_status": "attending", "meal_preference": "Vegan", "plus_one_allowed": true, "plus_one_attending": true})
	createGuest(t, env, map[string]any{"first_name": "Grace", "rsvp_status": "declined"})
	createGuest(t, env, map[string]any{"first_name": "Alan"})
	createGuest(t, env, map[string]any{"first_name": "Edsger", "rsvp_status": "maybe"})

	w := env.do(t, http.MethodGet, "/api/guests/summary", nil)

	require.Equal(t, http.StatusOK, w.Code)
	s := decode[seating.Summary](t, w)
	assert.Equal(t, 4, s.TotalGuests)
	assert.Equal(t, 1, s.Attending)
	assert.Equal(t, 1, s.Declined)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 1, s.Maybe)
	assert.Equal(t, 2, s.ExpectedAttendees)
	assert.Equal(t, 1, s.PlusOnes)
	assert.Equal(t, 50.0, s.ResponseRate)
	assert.Equal(t, 1, s.MealPreferences["vegan"])
	assert.Equal(t, 3, s.Unseated)
}

const guestCSV = "first_name,last_name,email,rsvp_status,meal_preference\n" +
	"Ada,Lovelace,ada@example.com,yes,fish\n" +
	",Nobody,,,\n" +
	"Grace,Hopper,not-an-email,no,\n" +
	"Alan,Turing,,maybe,\n"

func TestGuests_ImportRawBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/guests/import", strings.NewReader(guestCSV))
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[struct {
		Imported int                `json:"imported"`
		Rejected int                `json:"rejected"`
		Errors   []seating.RowError `json:"errors"`
	}](t, w)
	assert.Equal(t, 2, resp.Imported)
	assert.Equal(t, 2, resp.Rejected)
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, 3, resp.Errors[0].Line)
	assert.Equal(t, 4, resp.Errors[1].Line)
	assert.True(t, env.auditor.has("guest_import"))

	guests, err := env.wedding.ListGuests(0, wedding.GuestFilter{})
	require.NoError(t, err)
	assert.Len(t, guests, 2)
}

func TestGuests_ImportMultipart(t *testing.T) {
	env := newTestEnv(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "guests.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("first_name\nAda\nGrace\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/guests/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"imported":2`)
}

func TestGuests_ImportRejectsBadFiles(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{"", "   \n", "last_name\nLovelace\n"} {
		req := httptest.NewRequest(http.MethodPost, "/api/guests/import", strings.NewReader(body))
		req.Header.Set("Content-Type", "text/csv")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestGuests_Export(t *testing.T) {
	env := newTestEnv(t)
	createGuest(t, env, map[string]any{"first_name": "Ada", "last_name": "Lovelace", "rsvp_status": "attending"})

	w := env.do(t, http.MethodGet, "/api/guests/export", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "guests-")

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, seating.CSVHeader, records[0])
	assert.Equal(t, "Ada", records[1][0])
	assert.Equal(t, "attending", records[1][6])
}
