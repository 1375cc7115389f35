package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/audit"
	"github.com/mrlokans/weddingplanner/internal/auth"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

// PaymentController starts premium checkout and confirms payment.
type PaymentController struct {
	checkout CheckoutService
	auditor  Auditor
	errors   *apperr.Handler
}

func NewPaymentController(checkout CheckoutService, auditor Auditor, errs *apperr.Handler) *PaymentController {
	return &PaymentController{checkout: checkout, auditor: auditor, errors: errs}
}

type verifyRequest struct {
	SessionID string `json:"session_id"`
}

// Subscriptions belong to user accounts, so there is nothing to buy in auth
// mode none.
func (pc *PaymentController) currentUser(c *gin.Context, operation string) *entities.User {
	user := auth.GetUser(c)
	if user == nil {
		pc.errors.Respond(c, apperr.Unavailable("payments require user accounts"), operation)
	}
	return user
}

func (pc *PaymentController) Checkout(c *gin.Context) {
	user := pc.currentUser(c, "checkout")
	if user == nil {
		return
	}

	session, err := pc.checkout.StartCheckout(c.Request.Context(), user)
	pc.record(c, "checkout_start", session, err)
	if err != nil {
		pc.errors.Respond(c, err, "checkout")
		return
	}
	respondCreated(c, gin.H{
		"session_id":   session.SessionID,
		"checkout_url": session.CheckoutURL,
		"amount_total": session.AmountTotal,
		"currency":     session.Currency,
		"plan":         session.Plan,
	})
}

// Verify is safe to call repeatedly for the same session.
func (pc *PaymentController) Verify(c *gin.Context) {
	user := pc.currentUser(c, "verify_payment")
	if user == nil {
		return
	}
	var req verifyRequest
	if err := bindJSON(c, &req); err != nil {
		pc.errors.Respond(c, err, "verify_payment")
		return
	}

	result, err := pc.checkout.Verify(c.Request.Context(), user.ID, req.SessionID)
	if err != nil {
		pc.record(c, "payment_verify", &entities.CheckoutSession{SessionID: req.SessionID}, err)
		pc.errors.Respond(c, notFoundAs(err, "checkout session"), "verify_payment")
		return
	}
	if result.Paid && !result.AlreadyDone {
		pc.record(c, "subscription_upgrade", &entities.CheckoutSession{SessionID: result.SessionID}, nil)
	}
	c.JSON(http.StatusOK, result)
}

func (pc *PaymentController) record(c *gin.Context, action string, session *entities.CheckoutSession, err error) {
	sessionID := ""
	var id uint
	if session != nil {
		sessionID, id = session.SessionID, session.ID
	}
	recordAction(pc.auditor, c, audit.Action{
		EventType:   entities.AuditEventPayment,
		Action:      action,
		Description: "Checkout session " + sessionID,
		EntityType:  "checkout_session",
		EntityID:    id,
		Err:         err,
	})
}
