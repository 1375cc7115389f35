package seating

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

// CSVHeader is the column layout used for guest list import and export.
var CSVHeader = []string{
	"first_name", "last_name", "email", "phone", "group", "side",
	"rsvp_status", "meal_preference", "plus_one_allowed", "plus_one_name", "notes",
}

// MaxImportRows bounds a single CSV import.
const MaxImportRows = 2000

// RowError describes a rejected CSV row. Line is 1-based and counts the header.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ExportCSV writes guests with a header row.
func ExportCSV(w io.Writer, guests []entities.Guest) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, g := range guests {
		record := []string{
			g.FirstName,
			g.LastName,
			g.Email,
			g.Phone,
			g.Group,
			g.Side,
			string(g.RSVPStatus),
			g.MealPreference,
			strconv.FormatBool(g.PlusOneAllowed),
			g.PlusOneName,
			g.Notes,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV parses a guest list. Columns are matched by header name, so order
// does not matter and unknown columns are ignored; first_name is required.
// Invalid rows are reported and skipped, valid rows are returned unsaved.
func ImportCSV(r io.Reader) ([]entities.Guest, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, apperr.Validation("CSV file is empty", nil)
	}
	if err != nil {
		return nil, nil, apperr.Validation("could not read CSV header", map[string]string{"file": err.Error()})
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		columns[name] = i
	}
	if _, ok := columns["first_name"]; !ok {
		return nil, nil, apperr.Validation("CSV header must include first_name", nil)
	}

	var guests []entities.Guest
	var rowErrors []RowError
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			rowErrors = append(rowErrors, RowError{Line: line, Message: err.Error()})
			continue
		}
		if line-1 > MaxImportRows {
			return nil, nil, apperr.Validation(fmt.Sprintf("CSV may contain at most %d guests", MaxImportRows), nil)
		}
		if isBlank(record) {
			continue
		}

		field := func(name string) string {
			if i, ok := columns[name]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		status, err := ParseRSVPStatus(field("rsvp_status"))
		if err != nil {
			rowErrors = append(rowErrors, RowError{Line: line, Message: err.Error()})
			continue
		}
		plusOne := parseBool(field("plus_one_allowed"))

		guest := entities.Guest{
			FirstName:      field("first_name"),
			LastName:       field("last_name"),
			Email:          field("email"),
			Phone:          field("phone"),
			Group:          field("group"),
			Side:           field("side"),
			RSVPStatus:     status,
			MealPreference: field("meal_preference"),
			PlusOneAllowed: plusOne,
			PlusOneName:    field("plus_one_name"),
			Notes:          field("notes"),
		}
		if err := ValidateGuest(&guest); err != nil {
			rowErrors = append(rowErrors, RowError{Line: line, Message: describe(err)})
			continue
		}
		guests = append(guests, guest)
	}
	return guests, rowErrors, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "y":
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func describe(err error) string {
	appErr := apperr.Classify(err)
	details, ok := appErr.Details.(map[string]string)
	if !ok || len(details) == 0 {
		return appErr.Message
	}
	parts := make([]string, 0, len(details))
	for _, field := range CSVHeader {
		if msg, ok := details[field]; ok {
			parts = append(parts, field+" "+msg)
		}
	}
	if len(parts) == 0 {
		return appErr.Message
	}
	return strings.Join(parts, "; ")
}
