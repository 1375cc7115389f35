package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/seating"
)

type TableController struct {
	store  TableStore
	errors *apperr.Handler
}

func NewTableController(store TableStore, errs *apperr.Handler) *TableController {
	return &TableController{store: store, errors: errs}
}

type tableRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Shape    string `json:"shape"`
	Notes    string `json:"notes"`
}

// TableResponse is a table with its guests and seat usage.
type TableResponse struct {
	entities.SeatingTable
	Occupancy seating.Occupancy `json:"occupancy"`
}

func newTableResponse(t entities.SeatingTable) TableResponse {
	if t.Guests == nil {
		t.Guests = []entities.Guest{}
	}
	return TableResponse{SeatingTable: t, Occupancy: seating.TableOccupancy(t, t.Guests)}
}

func (tc *TableController) ListTables(c *gin.Context) {
	tables, err := tc.store.ListTables(GetUserID(c))
	if err != nil {
		tc.errors.Respond(c, err, "list_tables")
		return
	}

	out := make([]TableResponse, len(tables))
	capacity, seated := 0, 0
	for i, t := range tables {
		out[i] = newTableResponse(t)
		capacity += t.Capacity
		seated += out[i].Occupancy.SeatsUsed
	}
	c.JSON(http.StatusOK, gin.H{
		"tables":         out,
		"total":          len(out),
		"total_capacity": capacity,
		"seats_used":     seated,
	})
}

func (tc *TableController) CreateTable(c *gin.Context) {
	var req tableRequest
	if err := bindJSON(c, &req); err != nil {
		tc.errors.Respond(c, err, "create_table")
		return
	}

	table := &entities.SeatingTable{
		UserID:   GetUserID(c),
		Name:     req.Name,
		Capacity: req.Capacity,
		Shape:    req.Shape,
		Notes:    req.Notes,
	}
	if err := seating.ValidateTable(table); err != nil {
		tc.errors.Respond(c, err, "create_table")
		return
	}
	if err := tc.store.CreateTable(table); err != nil {
		tc.errors.Respond(c, err, "create_table")
		return
	}
	respondCreated(c, newTableResponse(*table))
}

// UpdateTable rejects shrinking a table below the seats already taken.
func (tc *TableController) UpdateTable(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req tableRequest
	if err := bindJSON(c, &req); err != nil {
		tc.errors.Respond(c, err, "update_table")
		return
	}

	table, err := tc.store.GetTable(GetUserID(c), id)
	if err != nil {
		tc.errors.Respond(c, notFoundAs(err, "table"), "update_table")
		return
	}
	table.Name = req.Name
	table.Capacity = req.Capacity
	table.Shape = req.Shape
	table.Notes = req.Notes
	if err := seating.ValidateTable(table); err != nil {
		tc.errors.Respond(c, err, "update_table")
		return
	}
	if used := seating.TableOccupancy(*table, table.Guests).SeatsUsed; used > table.Capacity {
		tc.errors.Respond(c, apperr.Validation("invalid input", map[string]string{
			"capacity": "is smaller than the seats already assigned",
		}), "update_table")
		return
	}

	if err := tc.store.UpdateTable(table); err != nil {
		tc.errors.Respond(c, notFoundAs(err, "table"), "update_table")
		return
	}
	c.JSON(http.StatusOK, newTableResponse(*table))
}

func (tc *TableController) DeleteTable(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := tc.store.DeleteTable(GetUserID(c), id); err != nil {
		tc.errors.Respond(c, notFoundAs(err, "table"), "delete_table")
		return
	}
	c.Status(http.StatusNoContent)
}

// AssignGuest seats a guest at a table, moving them from any previous table.
func (tc *TableController) AssignGuest(c *gin.Context) {
	tableID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	guestID, ok := parseIDParam(c, "guestId")
	if !ok {
		return
	}

	userID := GetUserID(c)
	table, err := tc.store.GetTable(userID, tableID)
	if err != nil {
		tc.errors.Respond(c, notFoundAs(err, "table"), "assign_guest")
		return
	}
	guest, err := tc.store.GetGuest(userID, guestID)
	if err != nil {
		tc.errors.Respond(c, notFoundAs(err, "guest"), "assign_guest")
		return
	}

	if err := seating.CanSeat(*table, table.Guests, *guest); err != nil {
		tc.errors.Respond(c, seatingError(err), "assign_guest")
		return
	}

	if err := tc.store.AssignGuestToTable(userID, guestID, &tableID); err != nil {
		tc.errors.Respond(c, notFoundAs(err, "guest"), "assign_guest")
		return
	}
	tc.respondTable(c, userID, tableID, "assign_guest")
}

// UnassignGuest removes a guest from the table.
func (tc *TableController) UnassignGuest(c *gin.Context) {
	tableID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	guestID, ok := parseIDParam(c, "guestId")
	if !ok {
		return
	}

	userID := GetUserID(c)
	guest, err := tc.store.GetGuest(userID, guestID)
	if err != nil {
		tc.errors.Respond(c, notFoundAs(err, "guest"), "unassign_guest")
		return
	}
	if guest.TableID == nil || *guest.TableID != tableID {
		tc.errors.Respond(c, apperr.NotFound("seated guest"), "unassign_guest")
		return
	}
	if err := tc.store.AssignGuestToTable(userID, guestID, nil); err != nil {
		tc.errors.Respond(c, notFoundAs(err, "guest"), "unassign_guest")
		return
	}
	tc.respondTable(c, userID, tableID, "unassign_guest")
}

func (tc *TableController) respondTable(c *gin.Context, userID, tableID uint, operation string) {
	table, err := tc.store.GetTable(userID, tableID)
	if err != nil {
		tc.errors.Respond(c, notFoundAs(err, "table"), operation)
		return
	}
	c.JSON(http.StatusOK, newTableResponse(*table))
}

// seatingError maps seating rule violations onto API errors.
func seatingError(err error) error {
	switch {
	case errors.Is(err, seating.ErrTableFull):
		appErr := apperr.Conflict(err.Error())
		appErr.Code = "table_full"
		return appErr
	case errors.Is(err, seating.ErrGuestDeclined):
		return apperr.Validation(err.Error(), nil)
	}
	return err
}
