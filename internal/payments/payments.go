// Package payments runs premium checkout through the external payment
// functions and upgrades subscriptions once a payment is verified.
package payments

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/config"
	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/functions"
)

// SubscriptionPeriod is how long one premium payment lasts.
const SubscriptionPeriod = 365 * 24 * time.Hour

type CheckoutFunctions interface {
	Configured() bool
	CreateCheckoutSession(ctx context.Context, req functions.CheckoutRequest) (*functions.CheckoutSession, error)
	VerifyPayment(ctx context.Context, sessionID string) (*functions.PaymentVerification, error)
}

type SessionStore interface {
	CreateSession(session *entities.CheckoutSession) error
	GetSession(userID uint, sessionID string) (*entities.CheckoutSession, error)
	CompleteCheckout(id uint, at time.Time, tier entities.SubscriptionTier, extend func(user *entities.User) time.Time) (bool, error)
}

type UserStore interface {
	GetUserByID(id uint) (*entities.User, error)
}

// Verification is the outcome of a verify call.
type Verification struct {
	SessionID   string                    `json:"session_id"`
	Paid        bool                      `json:"paid"`
	Status      entities.CheckoutStatus   `json:"status"`
	Tier        entities.SubscriptionTier `json:"subscription_tier"`
	ExpiresAt   *time.Time                `json:"subscription_expires_at,omitempty"`
	AlreadyDone bool                      `json:"already_verified"`
}

type Service struct {
	fn       CheckoutFunctions
	sessions SessionStore
	users    UserStore
	cfg      config.Payments
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(fn CheckoutFunctions, sessions SessionStore, users UserStore, cfg config.Payments, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{fn: fn, sessions: sessions, users: users, cfg: cfg, logger: logger, now: time.Now}
}

// StartCheckout creates a hosted checkout session for the premium plan.
func (s *Service) StartCheckout(ctx context.Context, user *entities.User) (*entities.CheckoutSession, error) {
	if s.fn == nil || !s.fn.Configured() {
		return nil, apperr.Unavailable("payments are not configured")
	}

	plan := s.cfg.PremiumPlan
	if plan == "" {
		plan = string(entities.SubscriptionPremium)
	}
	created, err := s.fn.CreateCheckoutSession(ctx, functions.CheckoutRequest{
		UserID:         user.ID,
		Email:          user.Email,
		Plan:           plan,
		SuccessURL:     s.cfg.SuccessURL,
		CancelURL:      s.cfg.CancelURL,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return nil, upstream(err)
	}
	if created.SessionID == "" || created.URL == "" {
		return nil, apperr.Upstream("payments", errors.New("checkout session without id or url"))
	}

	session := &entities.CheckoutSession{
		UserID:      user.ID,
		SessionID:   created.SessionID,
		Plan:        plan,
		AmountTotal: created.AmountCents,
		Currency:    strings.ToUpper(created.Currency),
		Status:      entities.CheckoutOpen,
		CheckoutURL: created.URL,
	}
	if err := s.sessions.CreateSession(session); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Checkout session created", "user_id", user.ID, "session_id", session.SessionID)
	return session, nil
}

// Verify confirms payment of the user's session and upgrades the user to
// premium. Sessions that are already complete are answered from the database
// without calling the payment function again.
func (s *Service) Verify(ctx context.Context, userID uint, sessionID string) (*Verification, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperr.Validation("invalid input", map[string]string{"session_id": "is required"})
	}
	session, err := s.sessions.GetSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status == entities.CheckoutComplete {
		return s.result(session, true, true)
	}
	if session.Status == entities.CheckoutExpired {
		return nil, apperr.Conflict("checkout session has expired")
	}
	if s.fn == nil || !s.fn.Configured() {
		return nil, apperr.Unavailable("payments are not configured")
	}

	verification, err := s.fn.VerifyPayment(ctx, sessionID)
	if err != nil {
		return nil, upstream(err)
	}
	if !verification.Paid {
		return s.result(session, false, false)
	}

	now := s.now().UTC()
	var expiresAt time.Time
	transitioned, err := s.sessions.CompleteCheckout(session.ID, now, entities.SubscriptionPremium, func(user *entities.User) time.Time {
		expiresAt = ExtendSubscription(user, now)
		return expiresAt
	})
	if err != nil {
		return nil, err
	}
	session.Status = entities.CheckoutComplete
	if !transitioned {
		// A concurrent verify already upgraded the user.
		return s.result(session, true, true)
	}

	s.logger.InfoContext(ctx, "Subscription upgraded",
		"user_id", userID, "session_id", sessionID, "expires_at", expiresAt)
	return s.result(session, true, false)
}

// ExtendSubscription returns the new expiry after one more paid period. Time
// left on an active premium subscription is kept.
func ExtendSubscription(user *entities.User, now time.Time) time.Time {
	start := now
	if user.HasPremium(now) && user.SubscriptionExpiresAt != nil {
		start = *user.SubscriptionExpiresAt
	}
	return start.Add(SubscriptionPeriod)
}

func (s *Service) result(session *entities.CheckoutSession, paid, already bool) (*Verification, error) {
	user, err := s.users.GetUserByID(session.UserID)
	if err != nil {
		return nil, err
	}
	return &Verification{
		SessionID:   session.SessionID,
		Paid:        paid,
		Status:      session.Status,
		Tier:        user.SubscriptionTier,
		ExpiresAt:   user.SubscriptionExpiresAt,
		AlreadyDone: already,
	}, nil
}

func upstream(err error) error {
	if errors.Is(err, functions.ErrNotConfigured) {
		return apperr.Unavailable("payments are not configured")
	}
	return apperr.Upstream("payments", err)
}
