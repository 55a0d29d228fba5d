package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/nutrition-consult/internal/catalog"
	"github.com/wolfman30/nutrition-consult/pkg/logging"
)

// Confirmation describes a paid consultation booking.
type Confirmation struct {
	Name      string
	Email     string
	WhatsApp  string
	Plan      string
	Amount    int
	PaymentID string
	OrderID   string
}

// Service sends booking emails to the person who paid.
type Service struct {
	email  EmailSender
	logger *logging.Logger
}

// NewService creates a notification service. A nil sender disables email.
func NewService(email EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, logger: logger}
}

// SendBookingConfirmation emails the booking details and next steps.
func (s *Service) SendBookingConfirmation(ctx context.Context, c Confirmation) error {
	if s == nil || s.email == nil {
		return nil
	}
	if strings.TrimSpace(c.Email) == "" {
		s.logger.Warn("notify: confirmation skipped, no email on booking", "order_id", c.OrderID)
		return nil
	}

	msg := EmailMessage{
		To:      c.Email,
		ToName:  c.Name,
		Subject: fmt.Sprintf("Your %s consultation is booked", c.Plan),
		Body:    confirmationText(c),
		HTML:    confirmationHTML(c),

		ReplyTo:  catalog.Support().Email,
		Category: "booking-confirmation",
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: send confirmation: %w", err)
	}
	s.logger.Info("notify: booking confirmation sent", "order_id", c.OrderID, "plan", c.Plan)
	return nil
}

func confirmationText(c Confirmation) string {
	support := catalog.Support()
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", c.Name)
	fmt.Fprintf(&b, "Thank you for booking your consultation with Pooja Luthra. Your journey to better health starts now!\n\n")
	fmt.Fprintf(&b, "Plan: %s (₹%d)\n", c.Plan, c.Amount)
	if c.PaymentID != "" {
		fmt.Fprintf(&b, "Payment ID: %s\n", c.PaymentID)
	}
	if c.OrderID != "" {
		fmt.Fprintf(&b, "Order ID: %s\n", c.OrderID)
	}
	b.WriteString("\nWhat's next?\n")
	for i, step := range catalog.NextSteps() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	fmt.Fprintf(&b, "\nQuestions? Email %s, call %s or message us on WhatsApp: %s\n",
		support.Email, support.PhoneDisplay, support.WhatsAppURL)
	return b.String()
}

func confirmationHTML(c Confirmation) string {
	support := catalog.Support()
	esc := html.EscapeString
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s,</p>", esc(c.Name))
	b.WriteString("<p>Thank you for booking your consultation with Pooja Luthra. Your journey to better health starts now!</p>")
	fmt.Fprintf(&b, "<p><strong>Plan:</strong> %s (&#8377;%d)", esc(c.Plan), c.Amount)
	if c.PaymentID != "" {
		fmt.Fprintf(&b, "<br><strong>Payment ID:</strong> %s", esc(c.PaymentID))
	}
	if c.OrderID != "" {
		fmt.Fprintf(&b, "<br><strong>Order ID:</strong> %s", esc(c.OrderID))
	}
	b.WriteString("</p><h3>What's next?</h3><ol>")
	for _, step := range catalog.NextSteps() {
		fmt.Fprintf(&b, "<li>%s</li>", esc(step))
	}
	fmt.Fprintf(&b, `</ol><p>Questions? <a href="mailto:%s">%s</a> &middot; <a href="tel:%s">%s</a> &middot; <a href="%s">WhatsApp Support</a></p>`,
		support.Email, support.Email, support.Phone, support.PhoneDisplay, support.WhatsAppURL)
	return b.String()
}
