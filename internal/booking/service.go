package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/nutrition-consult/internal/catalog"
	"github.com/wolfman30/nutrition-consult/internal/notify"
	"github.com/wolfman30/nutrition-consult/internal/payments"
	"github.com/wolfman30/nutrition-consult/pkg/logging"
)

// PaymentBridge opens hosted checkouts and resolves them from widget callbacks.
type PaymentBridge interface {
	Initiate(ctx context.Context, data payments.PaymentData, receipt string) (*payments.Attempt, error)
	Complete(ctx context.Context, resp payments.Response) (payments.Result, error)
	Dismiss(orderID string) error
	Fail(orderID string, cause error) error
	Abandon(orderID string) bool
}

// Notifier sends the booking confirmation after a verified payment.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, c notify.Confirmation) error
}

// Metrics records booking flow events.
type Metrics interface {
	ObservePlanSelected(plan string)
	ObserveCheckout(plan, status string)
	ObserveOutcome(outcome string, seconds float64)
}

// ServiceConfig wires the booking service.
type ServiceConfig struct {
	Store           Store
	Bridge          PaymentBridge
	Notifier        Notifier
	Metrics         Metrics
	Logger          *logging.Logger
	CheckoutTimeout time.Duration
}

// Service owns visitor sessions and drives them through the page state
// machine. Load-modify-save on a session is serialised by mu.
type Service struct {
	store           Store
	bridge          PaymentBridge
	notifier        Notifier
	metrics         Metrics
	logger          *logging.Logger
	checkoutTimeout time.Duration
	now             func() time.Time
	newID           func() string

	mu       sync.Mutex
	inflight map[string]*pendingCheckout

	subsMu sync.Mutex
	subs   map[string]map[chan Page]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// pendingCheckout is the waiter for one open attempt.
type pendingCheckout struct {
	orderID string
	done    chan struct{}
	cancel  context.CancelFunc
}

// NewService creates a booking service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Store == nil || cfg.Bridge == nil {
		panic("booking: store and payment bridge are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.CheckoutTimeout <= 0 {
		cfg.CheckoutTimeout = 30 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		store:           cfg.Store,
		bridge:          cfg.Bridge,
		notifier:        cfg.Notifier,
		metrics:         cfg.Metrics,
		logger:          cfg.Logger,
		checkoutTimeout: cfg.CheckoutTimeout,
		now:             time.Now,
		newID:           uuid.NewString,
		inflight:        make(map[string]*pendingCheckout),
		subs:            make(map[string]map[chan Page]struct{}),
		ctx:             ctx,
		cancel:          cancel,
	}
}

// NewSession starts a visitor on the home page.
func (s *Service) NewSession(ctx context.Context) (*Session, error) {
	sess := NewSession(s.newID(), s.now())
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads a session.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Load(ctx, id)
}

// SelectPlan opens the booking modal for a plan.
func (s *Service) SelectPlan(ctx context.Context, id, plan string) (*Session, error) {
	sess, err := s.update(ctx, id, func(sess *Session) error {
		return sess.SelectPlan(plan)
	})
	if err == nil && s.metrics != nil {
		s.metrics.ObservePlanSelected(plan)
	}
	return sess, err
}

// SetField updates one booking form field.
func (s *Service) SetField(ctx context.Context, id, field, value string) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		return sess.Form.Set(field, value)
	})
}

// CloseModal hides the booking modal.
func (s *Service) CloseModal(ctx context.Context, id string) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		sess.CloseModal()
		return nil
	})
}

// BackToHome leaves a result page and clears the form.
func (s *Service) BackToHome(ctx context.Context, id string) (*Session, error) {
	sess, err := s.update(ctx, id, func(sess *Session) error {
		return sess.BackToHome()
	})
	if err == nil {
		s.publish(id, sess.Page)
	}
	return sess, err
}

// Retry leaves the failure page and reopens the modal with the old form.
func (s *Service) Retry(ctx context.Context, id string) (*Session, error) {
	sess, err := s.update(ctx, id, func(sess *Session) error {
		return sess.Retry()
	})
	if err == nil {
		s.publish(id, sess.Page)
	}
	return sess, err
}

// NextTestimonial advances the carousel.
func (s *Service) NextTestimonial(ctx context.Context, id string) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		sess.TestimonialIndex = sess.carousel().Next().Index
		return nil
	})
}

// PrevTestimonial steps the carousel back.
func (s *Service) PrevTestimonial(ctx context.Context, id string) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		sess.TestimonialIndex = sess.carousel().Prev().Index
		return nil
	})
}

// GotoTestimonial jumps to a carousel entry. Out of range indexes are ignored.
func (s *Service) GotoTestimonial(ctx context.Context, id string, index int) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		if c, ok := sess.carousel().Goto(index); ok {
			sess.TestimonialIndex = c.Index
		}
		return nil
	})
}

// Checkout submits the booking modal with the posted contact fields and
// opens a hosted checkout. A checkout still pending for the session is
// abandoned first. If the checkout cannot be opened the session moves to the
// failure page and ErrCheckoutFailed is returned.
func (s *Service) Checkout(ctx context.Context, id string, fields Form) (*payments.Attempt, *Session, error) {
	if err := s.supersede(ctx, id); err != nil {
		return nil, nil, err
	}

	var data payments.PaymentData
	sess, err := s.update(ctx, id, func(sess *Session) error {
		sess.Form.Name = fields.Name
		sess.Form.Email = fields.Email
		sess.Form.WhatsApp = fields.WhatsApp
		sess.Form.Issue = fields.Issue
		if sess.PendingOrderID != "" && s.inflight[id] == nil {
			// left over from a previous process
			sess.PendingOrderID = ""
		}
		submitted, err := sess.Submit()
		if err != nil {
			return err
		}
		data = submitted
		return nil
	})
	if errors.Is(err, ErrIncompleteForm) {
		// keep whatever the visitor typed
		s.saveFieldsOnly(ctx, id, fields)
	}
	if err != nil {
		return nil, sess, err
	}

	log := s.logger.WithSession(id)
	attempt, err := s.bridge.Initiate(ctx, data, id)
	if err != nil {
		log.Error("checkout initiation failed", "error", err, "plan", data.Plan)
		s.observeCheckout(data.Plan, "failed")
		failed, resolveErr := s.update(ctx, id, func(sess *Session) error {
			return sess.Resolve(Failed(payments.FailureMessage(err)))
		})
		if resolveErr != nil {
			return nil, sess, resolveErr
		}
		s.publish(id, failed.Page)
		return nil, failed, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}

	s.mu.Lock()
	sess, err = s.store.Load(ctx, id)
	if err == nil && (sess.Page != PageHome || sess.PendingOrderID != "") {
		err = ErrInvalidTransition
	}
	if err == nil {
		sess.PendingOrderID = attempt.OrderID
		sess.UpdatedAt = s.now()
		err = s.store.Save(ctx, sess)
	}
	var pending *pendingCheckout
	var waitCtx context.Context
	if err == nil {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(s.ctx, s.checkoutTimeout)
		pending = &pendingCheckout{orderID: attempt.OrderID, done: make(chan struct{}), cancel: cancel}
		s.inflight[id] = pending
		s.wg.Add(1)
	}
	s.mu.Unlock()
	if err != nil {
		s.bridge.Abandon(attempt.OrderID)
		return nil, nil, err
	}

	s.observeCheckout(data.Plan, "opened")
	go s.await(waitCtx, id, attempt, data, pending)
	return attempt, sess, nil
}

// CompletePayment feeds the widget's success callback into the session's
// pending checkout and waits until the result page is set.
func (s *Service) CompletePayment(ctx context.Context, id string, resp payments.Response) (*Session, error) {
	if err := s.checkPending(ctx, id, resp.OrderID); err != nil {
		return nil, err
	}
	if _, err := s.bridge.Complete(ctx, resp); err != nil {
		return nil, err
	}
	if err := s.Await(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Load(ctx, id)
}

// DismissPayment records that the visitor closed the checkout widget.
func (s *Service) DismissPayment(ctx context.Context, id, orderID string) (*Session, error) {
	if err := s.checkPending(ctx, id, orderID); err != nil {
		return nil, err
	}
	if err := s.bridge.Dismiss(orderID); err != nil {
		return nil, err
	}
	if err := s.Await(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Load(ctx, id)
}

// FailPayment resolves the session's pending checkout with cause, for
// failures the browser reports such as the checkout script not loading.
func (s *Service) FailPayment(ctx context.Context, id, orderID string, cause error) (*Session, error) {
	if err := s.checkPending(ctx, id, orderID); err != nil {
		return nil, err
	}
	if err := s.bridge.Fail(orderID, cause); err != nil {
		return nil, err
	}
	if err := s.Await(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Load(ctx, id)
}

// Await blocks until the session's in-flight checkout has been applied.
// It returns immediately when nothing is pending.
func (s *Service) Await(ctx context.Context, id string) error {
	s.mu.Lock()
	pending, ok := s.inflight[id]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	select {
	case <-pending.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe returns a channel of page changes for a session. The returned
// func releases it.
func (s *Service) Subscribe(id string) (<-chan Page, func()) {
	ch := make(chan Page, 1)
	s.subsMu.Lock()
	if s.subs[id] == nil {
		s.subs[id] = make(map[chan Page]struct{})
	}
	s.subs[id][ch] = struct{}{}
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs[id], ch)
			if len(s.subs[id]) == 0 {
				delete(s.subs, id)
			}
			s.subsMu.Unlock()
		})
	}
}

// Shutdown stops waiting on open checkouts and waits for their goroutines.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) await(ctx context.Context, id string, attempt *payments.Attempt, data payments.PaymentData, pending *pendingCheckout) {
	defer s.wg.Done()
	defer s.finish(id, pending)

	log := s.logger.WithSession(id)
	res, err := attempt.Wait(ctx)
	if err != nil {
		s.bridge.Abandon(attempt.OrderID)
		log.Warn("checkout abandoned without a result", "order_id", attempt.OrderID, "error", err)
		_, _ = s.update(context.Background(), id, func(sess *Session) error {
			if sess.PendingOrderID == attempt.OrderID {
				sess.PendingOrderID = ""
			}
			return nil
		})
		return
	}

	outcome := OutcomeFromResult(res)
	sess, err := s.update(context.Background(), id, func(sess *Session) error {
		if sess.PendingOrderID != attempt.OrderID {
			return ErrOrderMismatch
		}
		return sess.Resolve(outcome)
	})
	if err != nil {
		log.Error("failed to apply checkout result", "error", err, "order_id", attempt.OrderID)
		return
	}

	label := "failure"
	if outcome.Success {
		label = "success"
	}
	if s.metrics != nil {
		s.metrics.ObserveOutcome(label, s.now().Sub(attempt.CreatedAt).Seconds())
	}
	log.Info("checkout resolved", "order_id", attempt.OrderID, "page", sess.Page.String(), "error", outcome.Error)
	s.publish(id, sess.Page)

	if outcome.Success && s.notifier != nil {
		s.wg.Add(1)
		go s.confirm(data, outcome)
	}
}

func (s *Service) confirm(data payments.PaymentData, outcome Outcome) {
	defer s.wg.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := s.notifier.SendBookingConfirmation(ctx, notify.Confirmation{
		Name:      data.Name,
		Email:     data.Email,
		WhatsApp:  data.WhatsApp,
		Plan:      data.Plan,
		Amount:    data.Amount,
		PaymentID: outcome.PaymentID,
		OrderID:   outcome.OrderID,
	})
	if err != nil {
		s.logger.Error("booking confirmation failed", "error", err, "order_id", outcome.OrderID)
	}
}

func (s *Service) finish(id string, pending *pendingCheckout) {
	pending.cancel()
	s.mu.Lock()
	if s.inflight[id] == pending {
		delete(s.inflight, id)
	}
	s.mu.Unlock()
	close(pending.done)
}

// supersede stops waiting on the session's open checkout, if any, and
// returns once its order has been abandoned and cleared from the session.
func (s *Service) supersede(ctx context.Context, id string) error {
	s.mu.Lock()
	pending, ok := s.inflight[id]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	s.logger.WithSession(id).Info("superseding open checkout", "order_id", pending.orderID)
	pending.cancel()
	select {
	case <-pending.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) checkPending(ctx context.Context, id, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.store.Load(ctx, id)
	if err != nil {
		return err
	}
	if orderID == "" || sess.PendingOrderID != orderID {
		return ErrOrderMismatch
	}
	return nil
}

func (s *Service) saveFieldsOnly(ctx context.Context, id string, fields Form) {
	_, err := s.update(ctx, id, func(sess *Session) error {
		sess.Form.Name = fields.Name
		sess.Form.Email = fields.Email
		sess.Form.WhatsApp = fields.WhatsApp
		sess.Form.Issue = fields.Issue
		return nil
	})
	if err != nil {
		s.logger.WithSession(id).Warn("failed to keep booking fields", "error", err)
	}
}

func (s *Service) update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return sess, err
	}
	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) publish(id string, page Page) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs[id] {
		select {
		case ch <- page:
		default:
		}
	}
}

func (s *Service) observeCheckout(plan, status string) {
	if s.metrics != nil {
		s.metrics.ObserveCheckout(plan, status)
	}
}

func (sess *Session) carousel() Carousel {
	return Carousel{Index: sess.TestimonialIndex, Len: catalog.TestimonialCount()}
}
