package payments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/nutrition-consult/pkg/logging"
)

// ScriptEnsurer confirms the hosted checkout script can be loaded.
type ScriptEnsurer interface {
	Ensure(ctx context.Context) bool
}

// Attempt is one opened checkout. It resolves exactly once: Done yields a
// single Result, either a verified Response or a failure.
type Attempt struct {
	OrderID   string
	Options   CheckoutOptions
	CreatedAt time.Time

	done chan Result
}

// Done delivers the attempt's result once the widget reports back.
func (a *Attempt) Done() <-chan Result {
	return a.done
}

// Wait blocks until the attempt resolves or ctx ends.
func (a *Attempt) Wait(ctx context.Context) (Result, error) {
	select {
	case res := <-a.done:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Bridge opens hosted checkouts and turns the widget's success/dismiss
// callbacks into one Result per attempt.
type Bridge struct {
	scripts  ScriptEnsurer
	orders   OrderCreator
	verifier Verifier
	merchant Merchant
	logger   *logging.Logger
	tracer   trace.Tracer
	now      func() time.Time

	mu      sync.Mutex
	pending map[string]*Attempt
}

// NewBridge wires the checkout steps together.
func NewBridge(scripts ScriptEnsurer, orders OrderCreator, verifier Verifier, merchant Merchant, logger *logging.Logger) *Bridge {
	if scripts == nil || orders == nil || verifier == nil {
		panic("payments: bridge requires script loader, order creator and verifier")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Bridge{
		scripts:  scripts,
		orders:   orders,
		verifier: verifier,
		merchant: merchant,
		logger:   logger,
		tracer:   otel.Tracer("nutrition.internal.payments.bridge"),
		now:      time.Now,
		pending:  make(map[string]*Attempt),
	}
}

// Initiate loads the checkout script, creates an order and registers a
// pending attempt whose options the browser hands to the widget.
func (b *Bridge) Initiate(ctx context.Context, data PaymentData, receipt string) (*Attempt, error) {
	ctx, span := b.tracer.Start(ctx, "payments.initiate")
	defer span.End()
	span.SetAttributes(
		attribute.String("nutrition.plan", data.Plan),
		attribute.Int("nutrition.amount_rupees", data.Amount),
	)

	if !b.scripts.Ensure(ctx) {
		span.RecordError(ErrScriptUnavailable)
		return nil, ErrScriptUnavailable
	}

	order, err := b.orders.CreateOrder(ctx, data.Amount, receipt)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("payments: create order: %w", err)
	}

	attempt := &Attempt{
		OrderID:   order.ID,
		CreatedAt: b.now(),
		Options: CheckoutOptions{
			Key:         b.merchant.KeyID,
			Amount:      order.Amount,
			Currency:    CurrencyINR,
			Name:        b.merchant.Name,
			Description: fmt.Sprintf("%s - Nutrition Consultation", data.Plan),
			OrderID:     order.ID,
			Prefill: Prefill{
				Name:    data.Name,
				Email:   data.Email,
				Contact: data.WhatsApp,
			},
			Theme: Theme{Color: b.merchant.ThemeColor},
		},
		done: make(chan Result, 1),
	}

	b.mu.Lock()
	b.pending[order.ID] = attempt
	b.mu.Unlock()

	b.logger.Info("checkout opened", "order_id", order.ID, "plan", data.Plan, "amount", order.Amount)
	return attempt, nil
}

// Complete handles the widget's success callback. The response is verified
// before the attempt resolves; a verifier error counts as a failed verification.
func (b *Bridge) Complete(ctx context.Context, resp Response) (Result, error) {
	ctx, span := b.tracer.Start(ctx, "payments.complete")
	defer span.End()
	span.SetAttributes(attribute.String("nutrition.order_id", resp.OrderID))

	attempt, ok := b.take(resp.OrderID)
	if !ok {
		return Result{}, ErrUnknownOrder
	}

	verified, err := b.verifier.Verify(ctx, resp)
	var res Result
	switch {
	case err != nil:
		span.RecordError(err)
		b.logger.Error("checkout verification errored", "error", err, "order_id", resp.OrderID)
		res = Result{Err: fmt.Errorf("%w: %v", ErrVerificationFailed, err)}
	case !verified:
		b.logger.Warn("checkout verification rejected", "order_id", resp.OrderID, "payment_id", resp.PaymentID)
		res = Result{Err: ErrVerificationFailed}
	default:
		confirmed := resp
		res = Result{Response: &confirmed}
		b.logger.Info("checkout verified", "order_id", resp.OrderID, "payment_id", resp.PaymentID)
	}

	attempt.done <- res
	return res, nil
}

// Dismiss handles the widget being closed by the user. No retry is attempted.
func (b *Bridge) Dismiss(orderID string) error {
	attempt, ok := b.take(orderID)
	if !ok {
		return ErrUnknownOrder
	}
	b.logger.Info("checkout dismissed", "order_id", orderID)
	attempt.done <- Result{Err: ErrCancelled}
	return nil
}

// Fail resolves an attempt with a failure reported by the browser, such as
// the checkout script not loading after the order was created.
func (b *Bridge) Fail(orderID string, cause error) error {
	attempt, ok := b.take(orderID)
	if !ok {
		return ErrUnknownOrder
	}
	if cause == nil {
		cause = ErrCancelled
	}
	b.logger.Warn("checkout failed in browser", "order_id", orderID, "error", cause)
	attempt.done <- Result{Err: cause}
	return nil
}

// Abandon forgets an attempt without resolving it. Waiters keep blocking
// until their own context ends.
func (b *Bridge) Abandon(orderID string) bool {
	_, ok := b.take(orderID)
	if ok {
		b.logger.Info("checkout abandoned", "order_id", orderID)
	}
	return ok
}

// Pending is the number of open attempts.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func (b *Bridge) take(orderID string) (*Attempt, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	attempt, ok := b.pending[orderID]
	if ok {
		delete(b.pending, orderID)
	}
	return attempt, ok
}
