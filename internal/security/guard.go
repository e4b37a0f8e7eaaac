package security

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"odyssey/internal/metrics"
	"odyssey/internal/model"
	"odyssey/internal/util"
)

type contextKey string

const (
	IdentityContextKey contextKey = "identity"
)

// GuardState : position of a request in the session state machine
type GuardState int

const (
	StateNoToken GuardState = iota
	StateUnverified
	StateVerified
	StateRotated
	StateRejected
)

func (s GuardState) String() string {
	switch s {
	case StateNoToken:
		return "no_token"
	case StateUnverified:
		return "unverified"
	case StateVerified:
		return "verified"
	case StateRotated:
		return "rotated"
	default:
		return "rejected"
	}
}

type tokenCodec interface {
	Sign(identity string, ttl time.Duration) (string, error)
	Verify(token string) (*Claims, error)
}

type sessionChecker interface {
	IsValid(ctx context.Context, identity string) (bool, error)
}

type GuardConfig struct {
	CookieName   string
	CookieSecure bool
	TokenTTL     time.Duration
	LoginPath    string
}

// GuardResult : identity of an accepted request and its renewed token.
// A rejected result records in RejectedIn the state the request had reached.
type GuardResult struct {
	State      GuardState
	RejectedIn GuardState
	Identity   string
	Token      string
	ExpiresAt  time.Time
}

type Guard struct {
	codec    tokenCodec
	registry sessionChecker
	cfg      GuardConfig
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewGuard(codec tokenCodec, registry sessionChecker, cfg GuardConfig, m *metrics.Metrics) *Guard {
	return &Guard{
		codec:    codec,
		registry: registry,
		cfg:      cfg,
		metrics:  m,
		now:      time.Now,
	}
}

// Authenticate : walks NoToken -> Unverified -> Verified -> Rotated for one request.
// The carrier is a name->value view of the request credentials (cookies).
// A rejection returns a wrapped model.ErrNoToken, ErrTokenInvalid, ErrSessionRevoked
// or ErrRegistryUnavailable. Nothing is retried.
func (g *Guard) Authenticate(ctx context.Context, carrier map[string]string) (*GuardResult, error) {
	token := carrier[g.cfg.CookieName]
	if token == "" {
		return g.reject(StateNoToken, model.ErrNoToken)
	}

	claims, err := g.codec.Verify(token)
	if err != nil {
		return g.reject(StateUnverified, err)
	}

	valid, err := g.registry.IsValid(ctx, claims.Email)
	if err != nil {
		if !errors.Is(err, model.ErrRegistryUnavailable) {
			err = fmt.Errorf("%w: %w", model.ErrRegistryUnavailable, err)
		}
		return g.reject(StateUnverified, err)
	}
	if !valid {
		return g.reject(StateUnverified, fmt.Errorf("%w: %s", model.ErrSessionRevoked, claims.Email))
	}

	renewed, err := g.codec.Sign(claims.Email, g.cfg.TokenTTL)
	if err != nil {
		g.metrics.GuardDecision("error")
		return &GuardResult{State: StateVerified, Identity: claims.Email}, fmt.Errorf("rotate token: %w", err)
	}

	g.metrics.GuardDecision(StateRotated.String())
	return &GuardResult{
		State:     StateRotated,
		Identity:  claims.Email,
		Token:     renewed,
		ExpiresAt: g.now().Add(g.cfg.TokenTTL),
	}, nil
}

func (g *Guard) reject(state GuardState, err error) (*GuardResult, error) {
	outcome := "rejected"
	switch {
	case errors.Is(err, model.ErrNoToken):
		outcome = "no_token"
	case errors.Is(err, model.ErrTokenInvalid):
		outcome = "token_invalid"
	case errors.Is(err, model.ErrSessionRevoked):
		outcome = "session_revoked"
	case errors.Is(err, model.ErrRegistryUnavailable):
		outcome = "registry_unavailable"
	}
	g.metrics.GuardDecision(outcome)

	return &GuardResult{State: StateRejected, RejectedIn: state}, err
}

// RequirePage : guard for page routes, rejected visitors are sent to the login page
func (g *Guard) RequirePage(next http.Handler) http.Handler {
	return g.require(next, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, g.cfg.LoginPath, http.StatusSeeOther)
	})
}

// RequireAPI : guard for API routes, rejected callers get 401
func (g *Guard) RequireAPI(next http.Handler) http.Handler {
	return g.require(next, func(w http.ResponseWriter, r *http.Request) {
		writeGuardError(w, http.StatusUnauthorized, "please log in again")
	})
}

func (g *Guard) require(next http.Handler, deny http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, err := g.Authenticate(r.Context(), Carrier(r, g.cfg.CookieName))
		if err != nil {
			switch {
			case errors.Is(err, model.ErrRegistryUnavailable):
				slog.Warn("session registry unavailable", slog.String("path", r.URL.Path), slog.Any("error", err))
				writeGuardError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
			case errors.Is(err, model.ErrNoToken),
				errors.Is(err, model.ErrTokenInvalid),
				errors.Is(err, model.ErrSessionRevoked):
				slog.Debug("request rejected",
					slog.String("path", r.URL.Path),
					slog.String("state", result.RejectedIn.String()),
					slog.Any("error", err),
				)
				deny(w, r)
			default:
				slog.Error("session guard failed", slog.String("path", r.URL.Path), slog.Any("error", err))
				writeGuardError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		g.SetSessionCookie(w, result.Token, result.ExpiresAt)
		req := r.WithContext(context.WithValue(r.Context(), IdentityContextKey, result.Identity))
		next.ServeHTTP(w, req)
	})
}

// RedirectIfAuthenticated : visitors with a live session go straight to target,
// everyone else continues unauthenticated
func (g *Guard) RedirectIfAuthenticated(target string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := g.Authenticate(r.Context(), Carrier(r, g.cfg.CookieName))
			if err != nil {
				if errors.Is(err, model.ErrRegistryUnavailable) {
					slog.Warn("session registry unavailable, treating visitor as logged out", slog.Any("error", err))
				}
				next.ServeHTTP(w, r)
				return
			}

			g.SetSessionCookie(w, result.Token, result.ExpiresAt)
			http.Redirect(w, r, target, http.StatusSeeOther)
		})
	}
}

// SetSessionCookie : writes the access token as an HttpOnly cookie
func (g *Guard) SetSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     g.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(g.cfg.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   g.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie : expires the access-token cookie on the client
func (g *Guard) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     g.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Carrier : request cookies as a name->value map. A bearer header stands in
// for the access-token cookie when the cookie is absent.
func Carrier(r *http.Request, cookieName string) map[string]string {
	carrier := make(map[string]string)
	for _, cookie := range r.Cookies() {
		carrier[cookie.Name] = cookie.Value
	}

	if carrier[cookieName] == "" {
		authorizationHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authorizationHeader, "Bearer ") {
			carrier[cookieName] = strings.TrimSpace(strings.TrimPrefix(authorizationHeader, "Bearer "))
		}
	}

	return carrier
}

// IdentityFromContext : identity attached by RequirePage or RequireAPI
func IdentityFromContext(ctx context.Context) (string, error) {
	identity, ok := ctx.Value(IdentityContextKey).(string)
	if !ok || identity == "" {
		return "", model.ErrNoToken
	}
	return identity, nil
}

func writeGuardError(w http.ResponseWriter, statusCode int, message string) {
	util.HandleError(w, message, statusCode)
}
