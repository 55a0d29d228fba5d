package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	SessionSecret string
	SessionTTL    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Razorpay Configuration
	RazorpayKeyID       string
	RazorpayKeySecret   string
	RazorpayBaseURL     string
	RazorpayCheckoutURL string
	MerchantName        string
	ThemeColor          string
	AllowStubPayments   bool
	StubPaymentDelay    time.Duration
	CheckoutTimeout     time.Duration

	CarouselInterval time.Duration

	// Email Configuration
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

var (
	// ErrStubPaymentsInProduction is returned when stub payments are enabled with ENV=production.
	ErrStubPaymentsInProduction = errors.New("config: ALLOW_STUB_PAYMENTS cannot be enabled in production")

	// ErrMissingSessionSecret is returned when production runs without SESSION_SECRET.
	ErrMissingSessionSecret = errors.New("config: SESSION_SECRET is required in production")

	// ErrNoPaymentProvider is returned when neither Razorpay credentials nor stub payments are configured.
	ErrNoPaymentProvider = errors.New("config: RAZORPAY_KEY_ID/RAZORPAY_KEY_SECRET required unless ALLOW_STUB_PAYMENTS=true")
)

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 24*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		RazorpayKeyID:       getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:   getEnv("RAZORPAY_KEY_SECRET", ""),
		RazorpayBaseURL:     getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		RazorpayCheckoutURL: getEnv("RAZORPAY_CHECKOUT_URL", "https://checkout.razorpay.com/v1/checkout.js"),
		MerchantName:        getEnv("MERCHANT_NAME", "Pooja Luthra Nutrition"),
		ThemeColor:          getEnv("THEME_COLOR", "#ec4899"),
		AllowStubPayments:   getEnvAsBool("ALLOW_STUB_PAYMENTS", false),
		StubPaymentDelay:    getEnvAsDuration("STUB_PAYMENT_DELAY", time.Second),
		CheckoutTimeout:     getEnvAsDuration("CHECKOUT_TIMEOUT", 30*time.Minute),

		CarouselInterval: getEnvAsDuration("CAROUSEL_INTERVAL", 5*time.Second),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Pooja Luthra"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),

		AWSRegion:           getEnv("AWS_REGION", "ap-south-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 5),
	}
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

// UseRazorpayAPI reports whether orders and signatures go through the real gateway.
func (c *Config) UseRazorpayAPI() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}

// Validate rejects combinations that must never reach a running server.
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.AllowStubPayments {
			return ErrStubPaymentsInProduction
		}
		if c.SessionSecret == "" {
			return ErrMissingSessionSecret
		}
	}
	if !c.UseRazorpayAPI() && !c.AllowStubPayments {
		return ErrNoPaymentProvider
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
