package payments

// CurrencyINR is the only currency the checkout is configured for.
const CurrencyINR = "INR"

// PaymentData is what the booking modal hands to the bridge.
// Amount is in whole rupees; the bridge converts it to paise.
type PaymentData struct {
	Name     string
	Email    string
	WhatsApp string
	Issue    string
	Plan     string
	Amount   int
}

// Order is a gateway order handle. Amount is in the smallest currency subunit.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Prefill carries contact fields pre-populated into the checkout widget.
type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// Theme controls the widget accent color.
type Theme struct {
	Color string `json:"color"`
}

// CheckoutOptions is the options object passed to the hosted checkout widget.
// The success and dismiss handlers are bound in the browser and post back to
// the callback and dismiss endpoints.
type CheckoutOptions struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	OrderID     string  `json:"order_id"`
	Prefill     Prefill `json:"prefill"`
	Theme       Theme   `json:"theme"`
}

// Response is what the widget reports to its success handler. All values are opaque.
type Response struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
}

// Result is the single outcome of a checkout attempt: a verified Response, or Err.
type Result struct {
	Response *Response
	Err      error
}

// Succeeded reports whether the attempt ended in a verified payment.
func (r Result) Succeeded() bool {
	return r.Err == nil && r.Response != nil
}

// Merchant describes the business as shown inside the checkout widget.
type Merchant struct {
	KeyID      string
	Name       string
	ThemeColor string
}
