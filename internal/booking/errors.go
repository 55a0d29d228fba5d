package booking

import "errors"

var (
	// ErrUnknownPlan is returned when the submitted plan is not in the catalog
	ErrUnknownPlan = errors.New("Please select a valid plan")

	// ErrIncompleteForm is returned when a required booking field is empty
	ErrIncompleteForm = errors.New("booking: name, email, whatsapp and issue are required")

	// ErrUnknownField is returned when a form update names a field that does not exist
	ErrUnknownField = errors.New("booking: unknown form field")

	// ErrInvalidTransition is returned when an action is not allowed on the current page
	ErrInvalidTransition = errors.New("booking: action not allowed on current page")

	// ErrSessionNotFound is returned when a session id has no stored session
	ErrSessionNotFound = errors.New("booking: session not found")

	// ErrOrderMismatch is returned when a payment callback names an order the session did not open
	ErrOrderMismatch = errors.New("booking: order does not belong to session")

	// ErrCheckoutFailed is returned when the checkout could not be opened; the
	// session has already moved to the failure page.
	ErrCheckoutFailed = errors.New("booking: checkout could not be opened")
)
