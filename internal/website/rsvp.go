package website

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/seating"
	"github.com/mrlokans/weddingplanner/internal/security"
)

// WebsiteGroup is the guest group assigned to people who RSVP without being
// on the guest list.
const WebsiteGroup = "website"

var (
	ErrRSVPClosed   = apperr.Forbidden("RSVPs are closed for this website")
	ErrSiteNotFound = apperr.NotFound("website")
)

type SiteStore interface {
	GetBySlug(slug string) (*entities.WeddingWebsite, error)
	CreateRSVP(resp *entities.RSVPResponse) error
}

type GuestStore interface {
	FindGuestByEmail(userID uint, email string) (*entities.Guest, error)
	FindGuestByName(userID uint, firstName, lastName string) (*entities.Guest, error)
	CreateGuest(guest *entities.Guest) error
	UpdateGuest(guest *entities.Guest) error
	GetTable(userID, id uint) (*entities.SeatingTable, error)
}

// RSVPRequest is a public RSVP form submission.
type RSVPRequest struct {
	FirstName      string `json:"first_name" form:"first_name"`
	LastName       string `json:"last_name" form:"last_name"`
	Email          string `json:"email" form:"email"`
	Attending      bool   `json:"attending" form:"attending"`
	MealPreference string `json:"meal_preference" form:"meal_preference"`
	PlusOneName    string `json:"plus_one_name" form:"plus_one_name"`
	Message        string `json:"message" form:"message"`
}

func (r *RSVPRequest) normalize() error {
	r.FirstName = security.SanitizeText(r.FirstName, security.MaxNameLength)
	r.LastName = security.SanitizeText(r.LastName, security.MaxNameLength)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.MealPreference = security.SanitizeText(r.MealPreference, 50)
	r.PlusOneName = security.SanitizeText(r.PlusOneName, security.MaxNameLength)
	r.Message = security.SanitizeText(r.Message, 1000)

	errs := security.FieldErrors{}
	errs.Required("first_name", r.FirstName)
	errs.Email("email", r.Email)
	return errs.Err()
}

// RSVPResult tells the submitter which guest record was updated.
type RSVPResult struct {
	Response *entities.RSVPResponse `json:"response"`
	Guest    *entities.Guest        `json:"-"`
	Matched  bool                   `json:"matched"`
}

// RSVPService records public RSVPs against the site owner's guest list.
type RSVPService struct {
	sites  SiteStore
	guests GuestStore
	logger *slog.Logger
	now    func() time.Time
}

func NewRSVPService(sites SiteStore, guests GuestStore, logger *slog.Logger) *RSVPService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RSVPService{sites: sites, guests: guests, logger: logger, now: time.Now}
}

// Submit records an RSVP for the published site at slug. The guest is matched
// by email first, then by exact first and last name; otherwise a new guest is
// added to the website group.
func (s *RSVPService) Submit(ctx context.Context, slug string, req RSVPRequest) (*RSVPResult, error) {
	site, err := s.sites.GetBySlug(slug)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !site.IsPublished) {
		return nil, ErrSiteNotFound
	}
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !RSVPOpen(site, now) {
		return nil, ErrRSVPClosed
	}
	if err := req.normalize(); err != nil {
		return nil, err
	}

	guest, matched, err := s.findGuest(site.UserID, req)
	if err != nil {
		return nil, err
	}

	status := entities.RSVPDeclined
	if req.Attending {
		status = entities.RSVPAttending
	}
	respondedAt := now.UTC()
	guest.RSVPStatus = status
	guest.RespondedAt = &respondedAt
	if req.MealPreference != "" {
		guest.MealPreference = req.MealPreference
	}
	if guest.Email == "" {
		guest.Email = req.Email
	}
	if req.PlusOneName != "" && (guest.PlusOneAllowed || !matched) {
		guest.PlusOneAllowed = true
		guest.PlusOneName = req.PlusOneName
		guest.PlusOneAttending = req.Attending
	}
	if !req.Attending {
		guest.TableID = nil
		guest.PlusOneAttending = false
	}
	if err := s.keepSeatWithinCapacity(ctx, guest); err != nil {
		return nil, err
	}

	if matched {
		err = s.guests.UpdateGuest(guest)
	} else {
		err = s.guests.CreateGuest(guest)
	}
	if err != nil {
		return nil, err
	}

	partySize := 0
	if req.Attending {
		partySize = 1
		if guest.PlusOneAttending {
			partySize = 2
		}
	}
	resp := &entities.RSVPResponse{
		WebsiteID:      site.ID,
		GuestID:        guest.ID,
		Name:           strings.TrimSpace(req.FirstName + " " + req.LastName),
		Email:          req.Email,
		Attending:      req.Attending,
		PartySize:      partySize,
		MealPreference: req.MealPreference,
		Message:        req.Message,
	}
	if err := s.sites.CreateRSVP(resp); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "RSVP recorded",
		"website_id", site.ID,
		"guest_id", guest.ID,
		"matched", matched,
		"attending", req.Attending)
	return &RSVPResult{Response: resp, Guest: guest, Matched: matched}, nil
}

// keepSeatWithinCapacity unseats a guest whose answer no longer fits their
// table, so the couple can re-seat the party.
func (s *RSVPService) keepSeatWithinCapacity(ctx context.Context, guest *entities.Guest) error {
	if guest.TableID == nil {
		return nil
	}
	table, err := s.guests.GetTable(guest.UserID, *guest.TableID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := seating.CanSeat(*table, table.Guests, *guest); err != nil {
		s.logger.InfoContext(ctx, "RSVP no longer fits the guest's table, unseating",
			"guest_id", guest.ID,
			"table_id", table.ID,
			"reason", err)
		guest.TableID = nil
	}
	return nil
}

func (s *RSVPService) findGuest(ownerID uint, req RSVPRequest) (*entities.Guest, bool, error) {
	if req.Email != "" {
		guest, err := s.guests.FindGuestByEmail(ownerID, req.Email)
		if err == nil {
			return guest, true, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}
	if req.LastName != "" {
		guest, err := s.guests.FindGuestByName(ownerID, req.FirstName, req.LastName)
		if err == nil {
			return guest, true, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}
	return &entities.Guest{
		UserID:    ownerID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Group:     WebsiteGroup,
	}, false, nil
}
