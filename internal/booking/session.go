package booking

import (
	"fmt"
	"time"

	"github.com/wolfman30/nutrition-consult/internal/catalog"
	"github.com/wolfman30/nutrition-consult/internal/payments"
)

// Page is the visitor's current screen. Exactly one is active.
type Page int

const (
	PageHome Page = iota
	PageSuccess
	PageFailure
)

func (p Page) String() string {
	switch p {
	case PageSuccess:
		return "success"
	case PageFailure:
		return "failure"
	default:
		return "home"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Page) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Page) UnmarshalText(text []byte) error {
	switch string(text) {
	case "home", "":
		*p = PageHome
	case "success":
		*p = PageSuccess
	case "failure":
		*p = PageFailure
	default:
		return fmt.Errorf("booking: unknown page %q", string(text))
	}
	return nil
}

// Outcome is the result shown on a result page: a payment on success, an
// error message on failure.
type Outcome struct {
	Success   bool   `json:"success"`
	PaymentID string `json:"payment_id,omitempty"`
	OrderID   string `json:"order_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Succeeded builds a success outcome.
func Succeeded(paymentID, orderID string) Outcome {
	return Outcome{Success: true, PaymentID: paymentID, OrderID: orderID}
}

// Failed builds a failure outcome carrying a user-facing message.
func Failed(message string) Outcome {
	return Outcome{Error: message}
}

// OutcomeFromResult converts a checkout result into a page outcome.
func OutcomeFromResult(res payments.Result) Outcome {
	if res.Succeeded() {
		return Succeeded(res.Response.PaymentID, res.Response.OrderID)
	}
	return Failed(payments.FailureMessage(res.Err))
}

// Session is one visitor's landing state. Outcome is set only while Page is
// not PageHome.
type Session struct {
	ID               string    `json:"id"`
	Page             Page      `json:"page"`
	Form             Form      `json:"form"`
	ModalOpen        bool      `json:"modal_open"`
	Outcome          *Outcome  `json:"outcome,omitempty"`
	PendingOrderID   string    `json:"pending_order_id,omitempty"`
	TestimonialIndex int       `json:"testimonial_index"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewSession creates a session on the home page with an empty form.
func NewSession(id string, now time.Time) *Session {
	return &Session{ID: id, Page: PageHome, CreatedAt: now, UpdatedAt: now}
}

// SelectPlan opens the booking modal for a catalog plan, keeping any contact
// details already typed.
func (s *Session) SelectPlan(name string) error {
	if s.Page != PageHome {
		return ErrInvalidTransition
	}
	if _, ok := catalog.FindPlan(name); !ok {
		return ErrUnknownPlan
	}
	s.Form.Plan = name
	s.ModalOpen = true
	return nil
}

// CloseModal hides the booking modal without touching the form.
func (s *Session) CloseModal() {
	s.ModalOpen = false
}

// Submit validates the modal and assembles the payment data. A missing plan
// aborts with ErrUnknownPlan and leaves the session untouched. On success the
// modal closes right away, before the payment resolves.
func (s *Session) Submit() (payments.PaymentData, error) {
	if s.Page != PageHome {
		return payments.PaymentData{}, ErrInvalidTransition
	}
	if !s.Form.Ready() {
		return payments.PaymentData{}, ErrIncompleteForm
	}
	plan, ok := catalog.FindPlan(s.Form.Plan)
	if !ok {
		return payments.PaymentData{}, ErrUnknownPlan
	}
	s.ModalOpen = false
	return payments.PaymentData{
		Name:     s.Form.Name,
		Email:    s.Form.Email,
		WhatsApp: s.Form.WhatsApp,
		Issue:    s.Form.Issue,
		Plan:     plan.Name,
		Amount:   plan.Price,
	}, nil
}

// Resolve moves the session off the home page with the payment outcome.
func (s *Session) Resolve(outcome Outcome) error {
	if s.Page != PageHome {
		return ErrInvalidTransition
	}
	s.PendingOrderID = ""
	s.ModalOpen = false
	s.Outcome = &outcome
	if outcome.Success {
		s.Page = PageSuccess
	} else {
		s.Page = PageFailure
	}
	return nil
}

// BackToHome returns to the landing page from either result page, dropping
// the outcome and clearing the form.
func (s *Session) BackToHome() error {
	if s.Page == PageHome {
		return ErrInvalidTransition
	}
	s.Page = PageHome
	s.Outcome = nil
	s.PendingOrderID = ""
	s.ModalOpen = false
	s.Form = Form{}
	return nil
}

// Retry returns from the failure page and reopens the modal with the
// previously entered form intact.
func (s *Session) Retry() error {
	if s.Page != PageFailure {
		return ErrInvalidTransition
	}
	s.Page = PageHome
	s.Outcome = nil
	s.PendingOrderID = ""
	s.ModalOpen = true
	return nil
}
