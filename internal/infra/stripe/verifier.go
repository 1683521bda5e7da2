package stripe

import (
	"errors"
	"strings"
	"time"

	stripelib "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
)

const SignatureHeader = "Stripe-Signature"

var (
	ErrMissingSignature = errors.New("missing signature")
	ErrInvalidSignature = errors.New("invalid signature")
)

// Verifier authenticates webhook payloads against the endpoint secret.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	return &Verifier{secret: secret, tolerance: tolerance}
}

// Verify checks header against the exact payload bytes and returns the parsed
// event. The returned error never says which part of the check failed.
func (v *Verifier) Verify(payload []byte, header string) (stripelib.Event, error) {
	if strings.TrimSpace(header) == "" {
		return stripelib.Event{}, ErrMissingSignature
	}

	event, err := webhook.ConstructEventWithOptions(payload, header, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripelib.Event{}, ErrInvalidSignature
	}
	return event, nil
}
