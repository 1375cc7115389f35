package functions

import "context"

type CheckoutRequest struct {
	UserID         uint   `json:"user_id"`
	Email          string `json:"email,omitempty"`
	Plan           string `json:"plan"`
	SuccessURL     string `json:"success_url"`
	CancelURL      string `json:"cancel_url"`
	IdempotencyKey string `json:"idempotency_key"`
}

// CheckoutSession is a hosted checkout page created by the payment provider.
type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	URL         string `json:"url"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

type PaymentVerification struct {
	SessionID   string `json:"session_id"`
	Paid        bool   `json:"paid"`
	Status      string `json:"status"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Plan        string `json:"plan"`
}

func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	var session CheckoutSession
	if err := c.call(ctx, "create-checkout-session", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) VerifyPayment(ctx context.Context, sessionID string) (*PaymentVerification, error) {
	var verification PaymentVerification
	in := map[string]string{"session_id": sessionID}
	if err := c.call(ctx, "verify-payment", in, &verification); err != nil {
		return nil, err
	}
	return &verification, nil
}
