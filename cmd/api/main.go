package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/nutrition-consult/cmd/mainconfig"
	"github.com/wolfman30/nutrition-consult/internal/api/router"
	"github.com/wolfman30/nutrition-consult/internal/booking"
	appconfig "github.com/wolfman30/nutrition-consult/internal/config"
	httpmiddleware "github.com/wolfman30/nutrition-consult/internal/http/middleware"
	"github.com/wolfman30/nutrition-consult/internal/landing"
	"github.com/wolfman30/nutrition-consult/internal/notify"
	"github.com/wolfman30/nutrition-consult/internal/observability/metrics"
	"github.com/wolfman30/nutrition-consult/internal/payments"
	"github.com/wolfman30/nutrition-consult/pkg/logging"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting nutrition-consult server",
		"env", cfg.Env,
		"port", cfg.Port,
		"razorpay_api", cfg.UseRazorpayAPI(),
		"email_provider", cfg.EmailProvider,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) error {
	metricsHandler, bookingMetrics := setupBookingMetrics()

	store, closeStore, err := setupSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	bridge := setupPaymentBridge(cfg, logger)
	emailSender := setupEmailSender(ctx, cfg, logger)

	bookings := booking.NewService(booking.ServiceConfig{
		Store:           store,
		Bridge:          bridge,
		Notifier:        notify.NewService(emailSender, logger),
		Metrics:         bookingMetrics,
		Logger:          logger,
		CheckoutTimeout: cfg.CheckoutTimeout,
	})

	landingHandler, err := landing.NewHandler(landing.Config{
		Bookings:         bookings,
		Cookies:          httpmiddleware.NewSessionCookie(sessionSecret(cfg, logger), cfg.SessionTTL, cfg.IsProduction()),
		ScriptURL:        cfg.RazorpayCheckoutURL,
		MerchantName:     cfg.MerchantName,
		CarouselInterval: cfg.CarouselInterval,
		Metrics:          bookingMetrics,
		Logger:           logger,
		Throttle:         httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	})
	if err != nil {
		return err
	}

	r := router.New(&router.Config{
		Logger:             logger,
		Landing:            landingHandler,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// No read/write timeouts: /live is a long-lived websocket and hijacked
	// connections keep the server's deadlines.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return bookings.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func setupBookingMetrics() (http.Handler, *metrics.BookingMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewBookingMetrics(reg)
}

// setupSessionStore uses Redis when REDIS_ADDR is set and an in-process
// store otherwise. The returned func releases the store.
func setupSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (booking.Store, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set; sessions are kept in memory and lost on restart")
		return booking.NewMemoryStore(cfg.SessionTTL), func() {}, nil
	}

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("session store: redis", "addr", cfg.RedisAddr)
	return booking.NewRedisStore(client, cfg.SessionTTL), func() { _ = client.Close() }, nil
}

// setupPaymentBridge wires the Razorpay Orders API and signature checks when
// credentials exist, and the local stubs otherwise. Validate has already
// refused stubs in production.
func setupPaymentBridge(cfg *appconfig.Config, logger *logging.Logger) *payments.Bridge {
	merchant := payments.Merchant{
		KeyID:      cfg.RazorpayKeyID,
		Name:       cfg.MerchantName,
		ThemeColor: cfg.ThemeColor,
	}
	scripts := payments.NewScriptLoader(cfg.RazorpayCheckoutURL, logger)

	if cfg.UseRazorpayAPI() {
		orders := payments.NewRazorpayOrdersClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, logger).
			WithBaseURL(cfg.RazorpayBaseURL)
		return payments.NewBridge(scripts, orders, payments.NewSignatureVerifier(cfg.RazorpayKeySecret), merchant, logger)
	}

	logger.Warn("payments: using stub orders and verification (ALLOW_STUB_PAYMENTS=true)")
	return payments.NewBridge(
		scripts,
		payments.NewStubOrderCreator(cfg.StubPaymentDelay),
		payments.NewStubVerifier(cfg.StubPaymentDelay, logger),
		merchant,
		logger,
	)
}

// setupEmailSender picks the confirmation email transport. Misconfigured
// providers fall back to the stub so a booking never fails on email.
func setupEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			return sender
		}
		logger.Warn("EMAIL_PROVIDER=sendgrid but SENDGRID_API_KEY is empty; using stub sender")
	case "ses":
		if cfg.SESFromEmail == "" {
			logger.Warn("EMAIL_PROVIDER=ses but SES_FROM_EMAIL is empty; using stub sender")
			break
		}
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config; using stub sender", "error", err)
			break
		}
		if sender := notify.NewSESSender(mainconfig.NewSESClient(awsCfg, cfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			return sender
		}
	}
	return notify.NewStubEmailSender(logger)
}

// sessionSecret returns SESSION_SECRET, or a per-process secret outside
// production. Cookies from a previous process then simply start new sessions.
func sessionSecret(cfg *appconfig.Config, logger *logging.Logger) string {
	if cfg.SessionSecret != "" {
		return cfg.SessionSecret
	}
	logger.Warn("SESSION_SECRET not set; using a random per-process secret")
	return uuid.NewString()
}
