package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/security"
)

const maxGuestEstimate = 10000

type ProfileController struct {
	store  ProfileStore
	errors *apperr.Handler
}

func NewProfileController(store ProfileStore, errs *apperr.Handler) *ProfileController {
	return &ProfileController{store: store, errors: errs}
}

type profileRequest struct {
	PartnerOne    string     `json:"partner_one"`
	PartnerTwo    string     `json:"partner_two"`
	WeddingDate   *time.Time `json:"wedding_date"`
	VenueName     string     `json:"venue_name"`
	Location      string     `json:"location"`
	GuestEstimate int        `json:"guest_estimate"`
	Style         string     `json:"style"`
}

// GetProfile returns the caller's profile. A user without one gets an empty
// profile so clients can render the form.
func (pc *ProfileController) GetProfile(c *gin.Context) {
	userID := GetUserID(c)
	profile, err := pc.store.GetProfile(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
		return
	}
	if err != nil {
		pc.errors.Respond(c, err, "get_profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (pc *ProfileController) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := bindJSON(c, &req); err != nil {
		pc.errors.Respond(c, err, "update_profile")
		return
	}

	profile := buildProfile(GetUserID(c), req)
	errs := security.FieldErrors{}
	errs.Required("partner_one", profile.PartnerOne)
	if profile.GuestEstimate < 0 || profile.GuestEstimate > maxGuestEstimate {
		errs.Add("guest_estimate", "must be between 0 and 10000")
	}
	if err := errs.Err(); err != nil {
		pc.errors.Respond(c, err, "update_profile")
		return
	}

	if err := pc.store.SaveProfile(profile); err != nil {
		pc.errors.Respond(c, err, "update_profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func buildProfile(userID uint, req profileRequest) *entities.WeddingProfile {
	return &entities.WeddingProfile{
		UserID:        userID,
		PartnerOne:    security.SanitizeText(req.PartnerOne, security.MaxNameLength),
		PartnerTwo:    security.SanitizeText(req.PartnerTwo, security.MaxNameLength),
		WeddingDate:   req.WeddingDate,
		VenueName:     security.SanitizeText(req.VenueName, security.MaxTitleLength),
		Location:      security.SanitizeText(req.Location, security.MaxTitleLength),
		GuestEstimate: req.GuestEstimate,
		Style:         strings.ToLower(security.SanitizeText(req.Style, 50)),
	}
}
