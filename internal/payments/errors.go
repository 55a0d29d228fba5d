package payments

import "errors"

var (
	// ErrScriptUnavailable is returned when the checkout script cannot be loaded
	ErrScriptUnavailable = errors.New("Failed to load Razorpay SDK")

	// ErrOrderCreation is returned when the gateway refuses to create an order
	ErrOrderCreation = errors.New("Failed to create payment order")

	// ErrCancelled is returned when the user dismisses the checkout widget
	ErrCancelled = errors.New("Payment cancelled by user")

	// ErrVerificationFailed is returned when the checkout response cannot be verified
	ErrVerificationFailed = errors.New("Payment verification failed")

	// ErrUnknownOrder is returned when a callback names an order with no pending attempt
	ErrUnknownOrder = errors.New("payments: no pending checkout for order")

	// ErrMissingSecret is returned when signature verification runs without a key secret
	ErrMissingSecret = errors.New("payments: key secret not configured")
)

const fallbackFailureMessage = "Payment initialization failed"

// FailureMessage collapses any payment error into the single string shown on
// the failure view. No structure survives past this point.
func FailureMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrScriptUnavailable):
		return ErrScriptUnavailable.Error()
	case errors.Is(err, ErrOrderCreation):
		return ErrOrderCreation.Error()
	case errors.Is(err, ErrCancelled):
		return ErrCancelled.Error()
	case errors.Is(err, ErrVerificationFailed):
		return ErrVerificationFailed.Error()
	default:
		return fallbackFailureMessage
	}
}
