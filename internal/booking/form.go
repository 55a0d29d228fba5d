package booking

import "fmt"

// Form field names as posted by the booking modal.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldWhatsApp = "whatsapp"
	FieldIssue    = "issue"
)

// Form is the booking modal's contact form plus the selected plan name.
type Form struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	WhatsApp string `json:"whatsapp"`
	Issue    string `json:"issue"`
	Plan     string `json:"plan"`
}

// Ready reports whether submission is allowed: every contact field is non-empty.
func (f Form) Ready() bool {
	return f.Name != "" && f.Email != "" && f.WhatsApp != "" && f.Issue != ""
}

// Set updates one contact field by name.
func (f *Form) Set(field, value string) error {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldWhatsApp:
		f.WhatsApp = value
	case FieldIssue:
		f.Issue = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// IsEmpty reports whether every field, plan included, is blank.
func (f Form) IsEmpty() bool {
	return f == Form{}
}
