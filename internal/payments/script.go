package payments

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/nutrition-consult/pkg/logging"
)

// DefaultCheckoutScriptURL is the hosted checkout asset. There is no local fallback.
const DefaultCheckoutScriptURL = "https://checkout.razorpay.com/v1/checkout.js"

// ScriptLoader confirms the hosted checkout script is reachable before a
// checkout is opened. Once a probe succeeds, Ensure returns immediately;
// a failed probe is retried on the next call.
type ScriptLoader struct {
	url        string
	httpClient *http.Client
	logger     *logging.Logger

	mu     sync.Mutex
	loaded bool
}

// NewScriptLoader creates a loader for the given script URL.
func NewScriptLoader(url string, logger *logging.Logger) *ScriptLoader {
	if logger == nil {
		logger = logging.Default()
	}
	url = strings.TrimSpace(url)
	if url == "" {
		url = DefaultCheckoutScriptURL
	}
	return &ScriptLoader{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// WithHTTPClient overrides the HTTP client (for testing).
func (l *ScriptLoader) WithHTTPClient(client *http.Client) *ScriptLoader {
	if client != nil {
		l.httpClient = client
	}
	return l
}

// URL is the script the browser should load.
func (l *ScriptLoader) URL() string {
	return l.url
}

// Loaded reports whether a probe has already succeeded.
func (l *ScriptLoader) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// Ensure reports whether the checkout script is available. Concurrent callers
// share a single in-flight probe.
func (l *ScriptLoader) Ensure(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded {
		return true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		l.logger.Error("checkout script request build failed", "error", err, "url", l.url)
		return false
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		l.logger.Warn("checkout script unreachable", "error", err, "url", l.url)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		l.logger.Warn("checkout script returned error status", "status", resp.StatusCode, "url", l.url)
		return false
	}

	l.loaded = true
	l.logger.Debug("checkout script available", "url", l.url)
	return true
}
