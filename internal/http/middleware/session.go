package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const sessionIDKey contextKey = "sessionID"

// DefaultSessionCookie is the cookie carrying the signed visitor session id.
const DefaultSessionCookie = "nc_session"

// SessionCookie signs and reads the visitor session cookie. The cookie holds
// an HMAC-signed JWT whose subject is the session id.
type SessionCookie struct {
	Name   string
	Secret string
	TTL    time.Duration
	Secure bool

	now func() time.Time
}

// NewSessionCookie creates a cookie codec. secret must not be empty.
func NewSessionCookie(secret string, ttl time.Duration, secure bool) *SessionCookie {
	return &SessionCookie{
		Name:   DefaultSessionCookie,
		Secret: secret,
		TTL:    ttl,
		Secure: secure,
		now:    time.Now,
	}
}

// Middleware puts the session id from a valid cookie on the request context.
// Missing or tampered cookies are ignored; the handler starts a new session.
func (c *SessionCookie) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := c.parse(r); ok {
			r = r.WithContext(WithSessionID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// Issue writes a fresh cookie for session id.
func (c *SessionCookie) Issue(w http.ResponseWriter, id string) error {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:  id,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if c.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.TTL))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.Secret))
	if err != nil {
		return err
	}
	cookie := &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if c.TTL > 0 {
		cookie.MaxAge = int(c.TTL.Seconds())
	}
	http.SetCookie(w, cookie)
	return nil
}

func (c *SessionCookie) parse(r *http.Request) (string, bool) {
	if c.Secret == "" {
		return "", false
	}
	cookie, err := r.Cookie(c.Name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(c.Secret), nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

// WithSessionID stores a session id on ctx.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext returns the session id if the request carried a valid cookie.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}
