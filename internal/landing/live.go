package landing

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/net/websocket"

	"github.com/wolfman30/nutrition-consult/internal/booking"
	httpmiddleware "github.com/wolfman30/nutrition-consult/internal/http/middleware"
)

// liveMessage is pushed to the browser over /live.
type liveMessage struct {
	Type  string `json:"type"` // "testimonial", "page", "pong"
	Index int    `json:"index"`
	Page  string `json:"page,omitempty"`
}

// liveInbound is what the browser may send.
type liveInbound struct {
	Type string `json:"type"` // "ping"
}

// HandleLive upgrades to a websocket that autoplays the testimonial carousel
// and pushes page transitions for the visitor session.
func (h *Handler) HandleLive(w http.ResponseWriter, r *http.Request) {
	id, ok := httpmiddleware.SessionIDFromContext(r.Context())
	if !ok {
		http.Error(w, "session required", http.StatusUnauthorized)
		return
	}
	if _, err := h.bookings.Get(r.Context(), id); err != nil {
		if errors.Is(err, booking.ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		h.fail(w, r, err)
		return
	}
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveLive(conn, id)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveLive(conn *websocket.Conn, id string) {
	log := h.logger.WithSession(id)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if h.metrics != nil {
		h.metrics.LiveConnected()
		defer h.metrics.LiveDisconnected()
	}

	pages, release := h.bookings.Subscribe(id)
	defer release()

	go func() {
		defer cancel()
		for {
			var msg liveInbound
			if err := websocket.JSON.Receive(conn, &msg); err != nil {
				log.Debug("landing: live connection closed", "error", err)
				return
			}
			if msg.Type == "ping" {
				_ = websocket.JSON.Send(conn, liveMessage{Type: "pong"})
			}
		}
	}()

	log.Debug("landing: live connection opened")
	autoplay(ctx, h.carouselInterval, func() error {
		sess, err := h.bookings.NextTestimonial(ctx, id)
		if err != nil {
			return err
		}
		return websocket.JSON.Send(conn, liveMessage{Type: "testimonial", Index: sess.TestimonialIndex})
	}, func(page booking.Page) error {
		return websocket.JSON.Send(conn, liveMessage{Type: "page", Page: page.String()})
	}, pages)
}

// autoplay calls tick every interval and forwards page changes until ctx
// ends or a callback fails. The ticker is stopped on return.
func autoplay(ctx context.Context, interval time.Duration, tick func() error, onPage func(booking.Page) error, pages <-chan booking.Page) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := tick(); err != nil {
				return
			}
		case page := <-pages:
			if err := onPage(page); err != nil {
				return
			}
		}
	}
}
