package payments

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/wolfman30/nutrition-consult/pkg/logging"
)

// StubOrderCreator fabricates order ids locally instead of asking the gateway.
//
// This MUST be gated by configuration (ALLOW_STUB_PAYMENTS) and should never be
// enabled in production: the order is not known to the gateway, so nothing
// binds the amount the user pays to the plan they picked.
type StubOrderCreator struct {
	delay time.Duration
	now   func() time.Time
}

// NewStubOrderCreator returns a creator that waits delay before answering.
func NewStubOrderCreator(delay time.Duration) *StubOrderCreator {
	return &StubOrderCreator{delay: delay, now: time.Now}
}

// CreateOrder implements OrderCreator.
func (s *StubOrderCreator) CreateOrder(ctx context.Context, amount int, _ string) (*Order, error) {
	if err := sleepContext(ctx, s.delay); err != nil {
		return nil, err
	}
	return &Order{
		ID:       fmt.Sprintf("order_%d_%s", s.now().UnixMilli(), randomBase36(9)),
		Amount:   toPaise(amount),
		Currency: CurrencyINR,
	}, nil
}

// StubVerifier accepts every checkout response after a fixed delay.
//
// It stands in for the server-side signature check and must not be trusted:
// use SignatureVerifier whenever a key secret is available.
type StubVerifier struct {
	delay  time.Duration
	logger *logging.Logger
}

// NewStubVerifier creates a verifier that always succeeds.
func NewStubVerifier(delay time.Duration, logger *logging.Logger) *StubVerifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubVerifier{delay: delay, logger: logger}
}

// Verify implements Verifier.
func (s *StubVerifier) Verify(ctx context.Context, resp Response) (bool, error) {
	s.logger.Warn("stub verifier: accepting checkout response without signature check",
		"payment_id", resp.PaymentID,
		"order_id", resp.OrderID,
	)
	if err := sleepContext(ctx, s.delay); err != nil {
		return false, err
	}
	return true, nil
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomBase36(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(base36[rand.IntN(len(base36))])
	}
	return b.String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
