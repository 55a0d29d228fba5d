package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/wolfman30/nutrition-consult/pkg/logging"
)

func TestScriptLoader_EnsureIsIdempotent(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/javascript")
		_, _ = w.Write([]byte("window.Razorpay = function(){};"))
	}))
	defer srv.Close()

	loader := NewScriptLoader(srv.URL+"/v1/checkout.js", logging.Discard())
	if loader.Loaded() {
		t.Fatal("expected loader to start unloaded")
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !loader.Ensure(context.Background()) {
				t.Error("expected script to load")
			}
		}()
	}
	wg.Wait()

	if !loader.Ensure(context.Background()) {
		t.Fatal("expected cached load")
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected a single probe, got %d", got)
	}
}

func TestScriptLoader_FailureIsRetried(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	loader := NewScriptLoader(srv.URL, logging.Discard())
	if loader.Ensure(context.Background()) {
		t.Fatal("expected load failure on 503")
	}
	if loader.Loaded() {
		t.Fatal("failed probe must not mark the script loaded")
	}

	fail.Store(false)
	if !loader.Ensure(context.Background()) {
		t.Fatal("expected retry to succeed")
	}
}

func TestScriptLoader_DefaultURL(t *testing.T) {
	loader := NewScriptLoader("  ", nil)
	if loader.URL() != DefaultCheckoutScriptURL {
		t.Fatalf("unexpected url %s", loader.URL())
	}
}
