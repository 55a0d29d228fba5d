package landing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/nutrition-consult/internal/booking"
	httpmiddleware "github.com/wolfman30/nutrition-consult/internal/http/middleware"
	"github.com/wolfman30/nutrition-consult/internal/payments"
	"github.com/wolfman30/nutrition-consult/pkg/logging"
)

// LiveMetrics counts open live connections.
type LiveMetrics interface {
	LiveConnected()
	LiveDisconnected()
}

// Config wires the landing handler.
type Config struct {
	Bookings         *booking.Service
	Cookies          *httpmiddleware.SessionCookie
	ScriptURL        string
	MerchantName     string
	CarouselInterval time.Duration
	Metrics          LiveMetrics
	Logger           *logging.Logger

	// Throttle, when set, wraps the checkout endpoint, which creates gateway orders.
	Throttle func(http.Handler) http.Handler
}

// Handler serves the landing page, the booking actions and the payment
// callbacks posted by the checkout widget.
type Handler struct {
	bookings         *booking.Service
	cookies          *httpmiddleware.SessionCookie
	views            *views
	scriptURL        string
	merchant         string
	carouselInterval time.Duration
	metrics          LiveMetrics
	throttle         func(http.Handler) http.Handler
	logger           *logging.Logger
	now              func() time.Time
}

// checkoutRequest is what the booking modal posts.
type checkoutRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	WhatsApp string `json:"whatsapp"`
	Issue    string `json:"issue"`
}

// checkoutResponse carries either the widget options or a redirect when the
// checkout could not be opened.
type checkoutResponse struct {
	Options   *payments.CheckoutOptions `json:"options,omitempty"`
	ScriptURL string                    `json:"script_url,omitempty"`
	Redirect  string                    `json:"redirect,omitempty"`
}

// dismissRequest is posted when the widget closes without paying, or when the
// browser could not start it at all.
type dismissRequest struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason,omitempty"`
}

// dismissScriptUnavailable marks a dismiss caused by checkout.js failing to load.
const dismissScriptUnavailable = "script_unavailable"


var errUnknownDismissReason = errors.New("landing: unknown dismiss reason")

// NewHandler creates the landing handler.
func NewHandler(cfg Config) (*Handler, error) {
	if cfg.Bookings == nil || cfg.Cookies == nil {
		return nil, errors.New("landing: bookings and cookies are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.CarouselInterval <= 0 {
		cfg.CarouselInterval = 5 * time.Second
	}
	if cfg.ScriptURL == "" {
		cfg.ScriptURL = payments.DefaultCheckoutScriptURL
	}
	if cfg.MerchantName == "" {
		cfg.MerchantName = "Pooja Luthra Nutrition"
	}
	v, err := loadViews()
	if err != nil {
		return nil, err
	}
	return &Handler{
		bookings:         cfg.Bookings,
		cookies:          cfg.Cookies,
		views:            v,
		scriptURL:        cfg.ScriptURL,
		merchant:         cfg.MerchantName,
		carouselInterval: cfg.CarouselInterval,
		metrics:          cfg.Metrics,
		throttle:         cfg.Throttle,
		logger:           cfg.Logger,
		now:              time.Now,
	}, nil
}

// Routes returns the landing routes behind the session cookie middleware.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Handle("/static/*", staticHandler())
	r.Group(func(r chi.Router) {
		r.Use(h.cookies.Middleware)
		r.Get("/", h.HandleHome)
		r.Post("/plans/select", h.HandleSelectPlan)
		r.Post("/booking/close", h.HandleCloseModal)
		if h.throttle != nil {
			r.With(h.throttle).Post("/booking/checkout", h.HandleCheckout)
		} else {
			r.Post("/booking/checkout", h.HandleCheckout)
		}
		r.Post("/payments/callback", h.HandlePaymentCallback)
		r.Post("/payments/dismiss", h.HandlePaymentDismiss)
		r.Post("/payment/retry", h.HandleRetry)
		r.Post("/payment/home", h.HandleBackToHome)
		r.Post("/testimonials/next", h.HandleNextTestimonial)
		r.Post("/testimonials/prev", h.HandlePrevTestimonial)
		r.Post("/testimonials/{index}", h.HandleGotoTestimonial)
		r.Get("/live", h.HandleLive)
	})
	return r
}

// HandleHome renders the view for the visitor's current page.
func (h *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.views.render(w, newPageData(sess, h.merchant, h.now())); err != nil {
		h.logger.Error("landing: render failed", "error", err, "page", sess.Page.String())
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// HandleSelectPlan opens the booking modal for the posted plan.
func (h *Handler) HandleSelectPlan(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, id string) error {
		_, err := h.bookings.SelectPlan(ctx, id, r.FormValue("plan"))
		return err
	})
}

// HandleCloseModal keeps whatever the visitor typed and hides the modal.
func (h *Handler) HandleCloseModal(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, id string) error {
		if err := r.ParseForm(); err != nil {
			return err
		}
		for _, field := range []string{booking.FieldName, booking.FieldEmail, booking.FieldWhatsApp, booking.FieldIssue} {
			if _, ok := r.PostForm[field]; !ok {
				continue
			}
			if _, err := h.bookings.SetField(ctx, id, field, strings.TrimSpace(r.PostForm.Get(field))); err != nil {
				return err
			}
		}
		_, err := h.bookings.CloseModal(ctx, id)
		return err
	})
}

// HandleCheckout submits the booking modal and returns the widget options.
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		h.failJSON(w, r, err)
		return
	}
	req, err := decodeCheckout(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	attempt, _, err := h.bookings.Checkout(r.Context(), sess.ID, booking.Form{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		WhatsApp: strings.TrimSpace(req.WhatsApp),
		Issue:    strings.TrimSpace(req.Issue),
	})
	switch {
	case errors.Is(err, booking.ErrCheckoutFailed):
		writeJSON(w, http.StatusOK, checkoutResponse{Redirect: "/"})
	case err != nil:
		h.failJSON(w, r, err)
	default:
		writeJSON(w, http.StatusOK, checkoutResponse{Options: &attempt.Options, ScriptURL: h.scriptURL})
	}
}

// HandlePaymentCallback receives the widget's success response and waits for
// verification before redirecting to the result page.
func (h *Handler) HandlePaymentCallback(w http.ResponseWriter, r *http.Request) {
	var resp payments.Response
	if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	h.paymentAction(w, r, func(ctx context.Context, id string) error {
		_, err := h.bookings.CompletePayment(ctx, id, resp)
		return err
	})
}

// HandlePaymentDismiss records that the visitor closed the widget, or that
// the widget script failed to load in the browser.
func (h *Handler) HandlePaymentDismiss(w http.ResponseWriter, r *http.Request) {
	var req dismissRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	h.paymentAction(w, r, func(ctx context.Context, id string) error {
		var err error
		switch req.Reason {
		case "":
			_, err = h.bookings.DismissPayment(ctx, id, req.OrderID)
		case dismissScriptUnavailable:
			_, err = h.bookings.FailPayment(ctx, id, req.OrderID, payments.ErrScriptUnavailable)
		default:
			err = errUnknownDismissReason
		}
		return err
	})
}

// HandleRetry goes back from the failure page to the booking modal.
func (h *Handler) HandleRetry(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, id string) error {
		_, err := h.bookings.Retry(ctx, id)
		return err
	})
}

// HandleBackToHome leaves a result page.
func (h *Handler) HandleBackToHome(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, id string) error {
		_, err := h.bookings.BackToHome(ctx, id)
		return err
	})
}

// HandleNextTestimonial advances the carousel.
func (h *Handler) HandleNextTestimonial(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, id string) error {
		_, err := h.bookings.NextTestimonial(ctx, id)
		return err
	})
}

// HandlePrevTestimonial steps the carousel back.
func (h *Handler) HandlePrevTestimonial(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, id string) error {
		_, err := h.bookings.PrevTestimonial(ctx, id)
		return err
	})
}

// HandleGotoTestimonial jumps to a carousel dot.
func (h *Handler) HandleGotoTestimonial(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid testimonial index", http.StatusBadRequest)
		return
	}
	h.action(w, r, func(ctx context.Context, id string) error {
		_, err := h.bookings.GotoTestimonial(ctx, id, index)
		return err
	})
}

// action runs a form post against the visitor session and redirects home.
func (h *Handler) action(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) error) {
	sess, err := h.session(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := fn(r.Context(), sess.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// paymentAction runs a widget callback. Callbacks never start a session.
func (h *Handler) paymentAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) error) {
	id, ok := httpmiddleware.SessionIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	if err := fn(r.Context(), id); err != nil {
		h.failJSON(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResponse{Redirect: "/"})
}

// session loads the visitor session, starting a new one when the cookie is
// missing or points at an expired session.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*booking.Session, error) {
	ctx := r.Context()
	if id, ok := httpmiddleware.SessionIDFromContext(ctx); ok {
		sess, err := h.bookings.Get(ctx, id)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, booking.ErrSessionNotFound) {
			return nil, err
		}
	}
	sess, err := h.bookings.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.cookies.Issue(w, sess.ID); err != nil {
		return nil, fmt.Errorf("landing: issue session cookie: %w", err)
	}
	return sess, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := h.classify(r, err)
	http.Error(w, msg, status)
}

func (h *Handler) failJSON(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := h.classify(r, err)
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) classify(r *http.Request, err error) (int, string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("landing: request failed", "error", err, "path", r.URL.Path)
		return status, http.StatusText(status)
	}
	h.logger.Warn("landing: request rejected", "error", err, "path", r.URL.Path, "status", status)
	return status, err.Error()
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, booking.ErrUnknownPlan), errors.Is(err, booking.ErrUnknownField),
		errors.Is(err, errUnknownDismissReason):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrIncompleteForm):
		return http.StatusUnprocessableEntity
	case errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, booking.ErrOrderMismatch),
		errors.Is(err, payments.ErrUnknownOrder):
		return http.StatusConflict
	case errors.Is(err, booking.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func decodeCheckout(r *http.Request) (checkoutRequest, error) {
	var req checkoutRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Name = r.PostForm.Get(booking.FieldName)
	req.Email = r.PostForm.Get(booking.FieldEmail)
	req.WhatsApp = r.PostForm.Get(booking.FieldWhatsApp)
	req.Issue = r.PostForm.Get(booking.FieldIssue)
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
