package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/audit"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

// UserAdminController lets admins manage accounts.
type UserAdminController struct {
	users   UserAdminStore
	auditor Auditor
	errors  *apperr.Handler
	now     func() time.Time
}

func NewUserAdminController(users UserAdminStore, auditor Auditor, errs *apperr.Handler) *UserAdminController {
	return &UserAdminController{users: users, auditor: auditor, errors: errs, now: time.Now}
}

type roleRequest struct {
	Role entities.UserRole `json:"role"`
}

type subscriptionRequest struct {
	Tier      entities.SubscriptionTier `json:"tier"`
	ExpiresAt *time.Time                `json:"expires_at"`
}

// AdminUser adds the derived premium flag to a user.
type AdminUser struct {
	entities.User
	PremiumActive bool `json:"premium_active"`
}

// ListUsers supports ?q= search with page/limit pagination.
func (uc *UserAdminController) ListUsers(c *gin.Context) {
	p := parsePagination(c)
	users, total, err := uc.users.ListUsers(strings.TrimSpace(c.Query("q")), p.Limit, p.Offset)
	if err != nil {
		uc.errors.Respond(c, err, "list_users")
		return
	}

	now := uc.now()
	out := make([]AdminUser, len(users))
	for i, u := range users {
		out[i] = AdminUser{User: u, PremiumActive: u.HasPremium(now)}
	}
	c.JSON(http.StatusOK, newPaginatedResponse(out, total, p))
}

// UpdateRole changes a user's role. Admins cannot demote themselves, which
// also keeps at least one admin around.
func (uc *UserAdminController) UpdateRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req roleRequest
	if err := bindJSON(c, &req); err != nil {
		uc.errors.Respond(c, err, "update_role")
		return
	}
	if !req.Role.Valid() {
		uc.errors.Respond(c, apperr.Validation("invalid input", map[string]string{"role": "must be admin or user"}), "update_role")
		return
	}

	adminID := GetUserID(c)
	if id == adminID && req.Role != entities.UserRoleAdmin {
		uc.errors.Respond(c, apperr.Forbidden("you cannot remove your own admin role"), "update_role")
		return
	}
	user, err := uc.users.GetUserByID(id)
	if err != nil {
		uc.errors.Respond(c, notFoundAs(err, "user"), "update_role")
		return
	}
	if err := uc.users.UpdateRole(id, req.Role); err != nil {
		uc.errors.Respond(c, notFoundAs(err, "user"), "update_role")
		return
	}

	uc.record(c, "role_change", id, map[string]any{"from": user.Role, "to": req.Role})
	user.Role = req.Role
	c.JSON(http.StatusOK, AdminUser{User: *user, PremiumActive: user.HasPremium(uc.now())})
}

// UpdateSubscription sets a user's tier. Premium without an expiry never
// lapses; downgrading clears the expiry.
func (uc *UserAdminController) UpdateSubscription(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req subscriptionRequest
	if err := bindJSON(c, &req); err != nil {
		uc.errors.Respond(c, err, "update_subscription")
		return
	}
	if !req.Tier.Valid() {
		uc.errors.Respond(c, apperr.Validation("invalid input", map[string]string{"tier": "must be free or premium"}), "update_subscription")
		return
	}
	if req.Tier == entities.SubscriptionFree {
		req.ExpiresAt = nil
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(uc.now()) {
		uc.errors.Respond(c, apperr.Validation("invalid input", map[string]string{"expires_at": "must be in the future"}), "update_subscription")
		return
	}

	user, err := uc.users.GetUserByID(id)
	if err != nil {
		uc.errors.Respond(c, notFoundAs(err, "user"), "update_subscription")
		return
	}
	if err := uc.users.UpdateSubscription(id, req.Tier, req.ExpiresAt); err != nil {
		uc.errors.Respond(c, notFoundAs(err, "user"), "update_subscription")
		return
	}

	uc.record(c, "subscription_change", id, map[string]any{
		"from": user.SubscriptionTier, "to": req.Tier, "expires_at": req.ExpiresAt,
	})
	user.SubscriptionTier = req.Tier
	user.SubscriptionExpiresAt = req.ExpiresAt
	c.JSON(http.StatusOK, AdminUser{User: *user, PremiumActive: user.HasPremium(uc.now())})
}

// DeleteUser removes an account and everything it owns.
func (uc *UserAdminController) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if id == GetUserID(c) {
		uc.errors.Respond(c, apperr.Forbidden("you cannot delete your own account"), "delete_user")
		return
	}
	user, err := uc.users.GetUserByID(id)
	if err != nil {
		uc.errors.Respond(c, notFoundAs(err, "user"), "delete_user")
		return
	}
	if err := uc.users.DeleteUser(id); err != nil {
		uc.errors.Respond(c, notFoundAs(err, "user"), "delete_user")
		return
	}
	uc.record(c, "user_delete", id, map[string]any{"username": user.Username})
	c.Status(http.StatusNoContent)
}

func (uc *UserAdminController) record(c *gin.Context, action string, targetID uint, metadata map[string]any) {
	recordAction(uc.auditor, c, audit.Action{
		EventType:  entities.AuditEventAdmin,
		Action:     action,
		EntityType: "user",
		EntityID:   targetID,
		Metadata:   metadata,
	})
}
