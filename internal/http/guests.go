package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/audit"
	"github.com/mrlokans/weddingplanner/internal/database/wedding"
	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/seating"
)

const maxImportBytes = 2 << 20

type GuestController struct {
	store   GuestStore
	auditor Auditor
	errors  *apperr.Handler
	now     func() time.Time
}

func NewGuestController(store GuestStore, auditor Auditor, errs *apperr.Handler) *GuestController {
	return &GuestController{store: store, auditor: auditor, errors: errs, now: time.Now}
}

type guestRequest struct {
	FirstName        string              `json:"first_name"`
	LastName         string              `json:"last_name"`
	Email            string              `json:"email"`
	Phone            string              `json:"phone"`
	Group            string              `json:"group"`
	Side             string              `json:"side"`
	RSVPStatus       entities.RSVPStatus `json:"rsvp_status"`
	MealPreference   string              `json:"meal_preference"`
	DietaryNotes     string              `json:"dietary_notes"`
	PlusOneAllowed   bool                `json:"plus_one_allowed"`
	PlusOneName      string              `json:"plus_one_name"`
	PlusOneAttending bool                `json:"plus_one_attending"`
	Notes            string              `json:"notes"`
}

func (r guestRequest) apply(g *entities.Guest) {
	g.FirstName = r.FirstName
	g.LastName = r.LastName
	g.Email = r.Email
	g.Phone = r.Phone
	g.Group = r.Group
	g.Side = r.Side
	g.RSVPStatus = r.RSVPStatus
	g.MealPreference = r.MealPreference
	g.DietaryNotes = r.DietaryNotes
	g.PlusOneAllowed = r.PlusOneAllowed
	g.PlusOneName = r.PlusOneName
	g.PlusOneAttending = r.PlusOneAttending
	g.Notes = r.Notes
}

// ListGuests supports ?status=, ?group=, ?table_id=, ?unassigned=true and ?q=.
func (gc *GuestController) ListGuests(c *gin.Context) {
	filter := wedding.GuestFilter{
		Group:      c.Query("group"),
		Unassigned: queryBool(c, "unassigned"),
		Search:     c.Query("q"),
	}
	if raw := c.Query("status"); raw != "" {
		status, err := seating.ParseRSVPStatus(raw)
		if err != nil {
			respondBadRequest(c, "invalid status")
			return
		}
		filter.Status = status
	}
	tableID, ok := parseOptionalQueryID(c, "table_id")
	if !ok {
		return
	}
	filter.TableID = tableID

	guests, err := gc.store.ListGuests(GetUserID(c), filter)
	if err != nil {
		gc.errors.Respond(c, err, "list_guests")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"guests": guests,
		"total":  len(guests),
		"groups": seating.Groups(guests),
	})
}

func (gc *GuestController) GetGuest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	guest, err := gc.store.GetGuest(GetUserID(c), id)
	if err != nil {
		gc.errors.Respond(c, notFoundAs(err, "guest"), "get_guest")
		return
	}
	c.JSON(http.StatusOK, guest)
}

func (gc *GuestController) CreateGuest(c *gin.Context) {
	var req guestRequest
	if err := bindJSON(c, &req); err != nil {
		gc.errors.Respond(c, err, "create_guest")
		return
	}

	guest := &entities.Guest{UserID: GetUserID(c)}
	req.apply(guest)
	if err := seating.ValidateGuest(guest); err != nil {
		gc.errors.Respond(c, err, "create_guest")
		return
	}
	gc.markResponded(guest, entities.RSVPPending)
	if err := gc.store.CreateGuest(guest); err != nil {
		gc.errors.Respond(c, err, "create_guest")
		return
	}
	respondCreated(c, guest)
}

func (gc *GuestController) UpdateGuest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req guestRequest
	if err := bindJSON(c, &req); err != nil {
		gc.errors.Respond(c, err, "update_guest")
		return
	}

	guest, err := gc.store.GetGuest(GetUserID(c), id)
	if err != nil {
		gc.errors.Respond(c, notFoundAs(err, "guest"), "update_guest")
		return
	}
	previous := guest.RSVPStatus
	seatsBefore := seating.Headcount(*guest)
	req.apply(guest)
	if err := seating.ValidateGuest(guest); err != nil {
		gc.errors.Respond(c, err, "update_guest")
		return
	}
	gc.markResponded(guest, previous)
	if guest.RSVPStatus == entities.RSVPDeclined {
		guest.TableID = nil
	}
	if guest.TableID != nil && seating.Headcount(*guest) > seatsBefore {
		table, err := gc.store.GetTable(guest.UserID, *guest.TableID)
		if err != nil {
			gc.errors.Respond(c, notFoundAs(err, "table"), "update_guest")
			return
		}
		if err := seating.CanSeat(*table, table.Guests, *guest); err != nil {
			gc.errors.Respond(c, seatingError(err), "update_guest")
			return
		}
	}
	if err := gc.store.UpdateGuest(guest); err != nil {
		gc.errors.Respond(c, notFoundAs(err, "guest"), "update_guest")
		return
	}
	c.JSON(http.StatusOK, guest)
}

// markResponded stamps RespondedAt when the status moves to an answer.
func (gc *GuestController) markResponded(g *entities.Guest, previous entities.RSVPStatus) {
	if g.RSVPStatus == entities.RSVPPending {
		g.RespondedAt = nil
		return
	}
	if g.RSVPStatus != previous || g.RespondedAt == nil {
		now := gc.now()
		g.RespondedAt = &now
	}
}

func (gc *GuestController) DeleteGuest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)
	guest, err := gc.store.GetGuest(userID, id)
	if err != nil {
		gc.errors.Respond(c, notFoundAs(err, "guest"), "delete_guest")
		return
	}
	if err := gc.store.DeleteGuest(userID, id); err != nil {
		gc.errors.Respond(c, notFoundAs(err, "guest"), "delete_guest")
		return
	}
	recordAction(gc.auditor, c, audit.Action{
		EventType:   entities.AuditEventGuest,
		Action:      "guest_delete",
		Description: "Deleted guest: " + guest.FullName(),
		EntityType:  "guest",
		EntityID:    id,
	})
	c.Status(http.StatusNoContent)
}

// Summary returns RSVP totals, expected headcount and meal counts.
func (gc *GuestController) Summary(c *gin.Context) {
	guests, err := gc.store.ListGuests(GetUserID(c), wedding.GuestFilter{})
	if err != nil {
		gc.errors.Respond(c, err, "guest_summary")
		return
	}
	c.JSON(http.StatusOK, seating.RSVPSummary(guests))
}

// Import reads a CSV guest list from the multipart "file" field or the raw
// request body. Invalid rows are skipped and reported.
func (gc *GuestController) Import(c *gin.Context) {
	data, err := readImportBody(c)
	if err != nil {
		gc.errors.Respond(c, err, "import_guests")
		return
	}

	userID := GetUserID(c)
	guests, rowErrors, err := seating.ImportCSV(bytes.NewReader(data))
	if err != nil {
		gc.recordImport(c, 0, len(rowErrors), err)
		gc.errors.Respond(c, err, "import_guests")
		return
	}
	for i := range guests {
		guests[i].UserID = userID
		gc.markResponded(&guests[i], entities.RSVPPending)
	}
	if err := gc.store.CreateGuests(guests); err != nil {
		gc.recordImport(c, 0, len(rowErrors), err)
		gc.errors.Respond(c, err, "import_guests")
		return
	}
	gc.recordImport(c, len(guests), len(rowErrors), nil)

	status := http.StatusCreated
	if len(guests) == 0 {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"imported": len(guests),
		"rejected": len(rowErrors),
		"errors":   rowErrors,
	})
}

func (gc *GuestController) recordImport(c *gin.Context, imported, rejected int, err error) {
	recordAction(gc.auditor, c, audit.Action{
		EventType:   entities.AuditEventGuest,
		Action:      "guest_import",
		Description: "Imported guests from CSV",
		EntityType:  "guest",
		Metadata:    map[string]any{"imported": imported, "rejected": rejected},
		Err:         err,
	})
}

func readImportBody(c *gin.Context) ([]byte, error) {
	var r io.Reader
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, apperr.Validation("could not read uploaded file", nil)
		}
		defer f.Close()
		r = f
	} else {
		r = c.Request.Body
	}

	data, err := io.ReadAll(io.LimitReader(r, maxImportBytes+1))
	if err != nil {
		return nil, apperr.Validation("could not read request body", nil)
	}
	if len(data) > maxImportBytes {
		return nil, apperr.Validation("file is too large", map[string]string{"file": "must be at most 2 MB"})
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperr.Validation("a CSV file is required", map[string]string{"file": "is required"})
	}
	return data, nil
}

// Export streams the guest list as CSV.
func (gc *GuestController) Export(c *gin.Context) {
	guests, err := gc.store.ListGuests(GetUserID(c), wedding.GuestFilter{})
	if err != nil {
		gc.errors.Respond(c, err, "export_guests")
		return
	}

	var buf bytes.Buffer
	if err := seating.ExportCSV(&buf, guests); err != nil {
		gc.errors.Respond(c, err, "export_guests")
		return
	}
	filename := fmt.Sprintf("guests-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
