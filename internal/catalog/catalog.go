// Package catalog holds the static landing page content: plans, testimonials,
// hero stats and the support contact surface. Everything here is immutable;
// accessors hand out copies so callers cannot mutate the shared data.
package catalog

// Plan is a monthly consultation plan. Price is in whole rupees.
type Plan struct {
	Name               string
	Price              int
	Features           []string
	AdditionalFeatures []string
	Popular            bool
}

// Testimonial is a client quote shown in the carousel.
type Testimonial struct {
	Name string
	Text string
}

// Stat is a headline number in the stats strip.
type Stat struct {
	Value string
	Label string
	Icon  string
}

// Contact is the support surface rendered on the result views.
type Contact struct {
	Email        string
	Phone        string
	PhoneDisplay string
	WhatsAppURL  string
}

var baseFeatures = []string{
	"1 Month Diet Plan",
	"Exercise Plan for One Month",
	"Energy Healing Affirmations and Meditation",
	"WhatsApp Support",
	"Easy to Follow Remedies",
}

var plans = []Plan{
	{
		Name:     "Weight Loss Plan",
		Price:    1000,
		Features: baseFeatures,
	},
	{
		Name:     "Lifestyle Disease Reversal Plan",
		Price:    1500,
		Features: baseFeatures,
		AdditionalFeatures: []string{
			"Fatty Liver Management",
			"High Blood Pressure Control",
			"Diabetes Reversal",
			"Thyroid Management",
			"IBS Treatment",
			"Gut Reset Program",
			"Hormonal Imbalance",
			"PCOD/PCOS",
		},
		Popular: true,
	},
	{
		Name:     "Menopause Management Plan",
		Price:    1500,
		Features: baseFeatures,
	},
}

var testimonials = []Testimonial{
	{
		Name: "Sunita Balmiki",
		Text: "Ap sabh try karein...i have been using this diet on my mom and it really works...it has been 5 days she has now only 174....before she use to have 300 above sometime after food.",
	},
	{
		Name: "Poonam Shinde",
		Text: "Thankyou so much pooja dii for this diet..... Mene mere papa ko ye kadha pilaya he ab lgbhg pite pite 1 month se upr time ho gyaa he or mene iske bahut achhe result dekhe he mene iske result 15din me hi dekh liye me bahut khush hu ki aapke dwara btaye gaye is kadhe ka itna achha asr dekhne ko mila ......... Thankyou so much again 🙏🥰😍❤",
	},
	{
		Name: "Vani Kuccha",
		Text: "Yes it actually does work 😊 I drink this in the morning and with in 6 hrs I got my periods 🎉😊",
	},
	{
		Name: "Kuldeep Singh",
		Text: "Thank u Puja di and helpful video Maine one week use Kiya aur result bahut achcha aaya 😘😘😘😘",
	},
	{
		Name: "Shruti",
		Text: "Dear Pooja, Your Diet Plan worked like magic for me. Mera pet sach me ander chala gya.",
	},
	{
		Name: "Rashi Mittal",
		Text: "Thank You Pooja, My hair fall has completely stopped with your home remedies and diet",
	},
}

var stats = []Stat{
	{Value: "7.6M", Label: "YouTube Subscribers", Icon: "youtube"},
	{Value: "4.9L", Label: "Instagram Followers", Icon: "instagram"},
	{Value: "100K", Label: "People Benefitted", Icon: "users"},
	{Value: "2K", Label: "Diabetes Reversed", Icon: "heart"},
	{Value: "28K", Label: "Weight Loss Success", Icon: "check"},
}

var services = []string{
	"Weight Loss",
	"Diabetes Reversal",
	"Thyroid Reversal",
	"PCOS & Hormonal Imbalance",
	"High Blood Pressure",
	"Cholesterol Management",
	"Fatty Liver",
	"Stress & Anxiety Related Eating",
	"Digestive Issues & Bloating",
}

var nextSteps = []string{
	"You'll receive a confirmation email within 5 minutes",
	"Pooja will contact you within 24 hours via WhatsApp",
	"Your personalized diet plan will be ready within 2-3 days",
}

var failureReasons = []string{
	"Insufficient balance in your account",
	"Network connectivity issues",
	"Card details entered incorrectly",
	"Transaction limit exceeded",
}

var support = Contact{
	Email:        "support@poojaluthra.com",
	Phone:        "+919876543210",
	PhoneDisplay: "+91 98765 43210",
	WhatsAppURL:  "https://wa.me/919876543210",
}

// Plans returns every plan in display order.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	for i, p := range plans {
		out[i] = p.clone()
	}
	return out
}

// FindPlan looks a plan up by its exact name.
func FindPlan(name string) (Plan, bool) {
	for _, p := range plans {
		if p.Name == name {
			return p.clone(), true
		}
	}
	return Plan{}, false
}

// Testimonials returns the carousel entries in display order.
func Testimonials() []Testimonial {
	return append([]Testimonial(nil), testimonials...)
}

// TestimonialCount is the carousel length.
func TestimonialCount() int {
	return len(testimonials)
}

// Stats returns the headline stats.
func Stats() []Stat {
	return append([]Stat(nil), stats...)
}

// Services returns the conditions listed in the hero section.
func Services() []string {
	return append([]string(nil), services...)
}

// NextSteps is the "What's Next?" list shown after a successful booking.
func NextSteps() []string {
	return append([]string(nil), nextSteps...)
}

// FailureReasons lists the common reasons a payment fails.
func FailureReasons() []string {
	return append([]string(nil), failureReasons...)
}

// Support returns the support contact details.
func Support() Contact {
	return support
}

func (p Plan) clone() Plan {
	p.Features = append([]string(nil), p.Features...)
	if p.AdditionalFeatures != nil {
		p.AdditionalFeatures = append([]string(nil), p.AdditionalFeatures...)
	}
	return p
}
