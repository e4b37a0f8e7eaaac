package security_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"odyssey/internal/model"
	"odyssey/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRegistry
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) IsValid(ctx context.Context, identity string) (bool, error) {
	args := m.Called(ctx, identity)
	return args.Bool(0), args.Error(1)
}

const cookieName = "access_token"

type guardFixture struct {
	now      time.Time
	codec    *security.JWTService
	registry *MockRegistry
	guard    *security.Guard
}

func newGuardFixture() *guardFixture {
	f := &guardFixture{now: t0, registry: new(MockRegistry)}
	f.codec = security.NewJWTService("top-secret", "odyssey").WithClock(clockAt(&f.now))
	f.guard = security.NewGuard(f.codec, f.registry, security.GuardConfig{
		CookieName: cookieName,
		TokenTTL:   time.Hour,
		LoginPath:  "/login",
	}, nil)
	return f
}

func (f *guardFixture) token(t *testing.T, identity string) string {
	t.Helper()
	token, err := f.codec.Sign(identity, time.Hour)
	require.NoError(t, err)
	return token
}

func TestGuard_AuthenticateRotates(t *testing.T) {
	f := newGuardFixture()
	original := f.token(t, "traveler@example.com")
	f.registry.On("IsValid", mock.Anything, "traveler@example.com").Return(true, nil)

	f.now = t0.Add(10 * time.Minute)
	result, err := f.guard.Authenticate(context.Background(), map[string]string{cookieName: original})
	require.NoError(t, err)
	assert.Equal(t, security.StateRotated, result.State)
	assert.Equal(t, "traveler@example.com", result.Identity)
	require.NotEmpty(t, result.Token)

	renewed, err := f.codec.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "traveler@example.com", renewed.Email)
	assert.True(t, renewed.ExpiresAt.Time.After(t0), "renewed expiry is later than the original issuance")
	assert.Equal(t, t0.Add(10*time.Minute+time.Hour), renewed.ExpiresAt.Time.UTC())
	f.registry.AssertExpectations(t)
}

func TestGuard_AuthenticateRejects(t *testing.T) {
	foreign, err := security.NewJWTService("other-secret", "odyssey").
		WithClock(func() time.Time { return t0 }).
		Sign("traveler@example.com", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name        string
		carrier     func(f *guardFixture, t *testing.T) map[string]string
		at          time.Time
		setupMock   func(r *MockRegistry)
		expectErrIs error
		expectState security.GuardState
	}{
		{
			name:        "no token",
			carrier:     func(f *guardFixture, t *testing.T) map[string]string { return map[string]string{"other": "x"} },
			at:          t0,
			expectErrIs: model.ErrNoToken,
			expectState: security.StateNoToken,
		},
		{
			name:        "foreign signature",
			carrier:     func(f *guardFixture, t *testing.T) map[string]string { return map[string]string{cookieName: foreign} },
			at:          t0,
			expectErrIs: model.ErrTokenInvalid,
			expectState: security.StateUnverified,
		},
		{
			name: "expired token even with a live record",
			carrier: func(f *guardFixture, t *testing.T) map[string]string {
				return map[string]string{cookieName: f.token(t, "traveler@example.com")}
			},
			at: t0.Add(time.Hour),
			setupMock: func(r *MockRegistry) {
				r.On("IsValid", mock.Anything, "traveler@example.com").Return(true, nil).Maybe()
			},
			expectErrIs: model.ErrTokenInvalid,
			expectState: security.StateUnverified,
		},
		{
			name: "revoked session",
			carrier: func(f *guardFixture, t *testing.T) map[string]string {
				return map[string]string{cookieName: f.token(t, "traveler@example.com")}
			},
			at: t0,
			setupMock: func(r *MockRegistry) {
				r.On("IsValid", mock.Anything, "traveler@example.com").Return(false, nil)
			},
			expectErrIs: model.ErrSessionRevoked,
			expectState: security.StateUnverified,
		},
		{
			name: "registry failure fails closed",
			carrier: func(f *guardFixture, t *testing.T) map[string]string {
				return map[string]string{cookieName: f.token(t, "traveler@example.com")}
			},
			at: t0,
			setupMock: func(r *MockRegistry) {
				r.On("IsValid", mock.Anything, "traveler@example.com").Return(false, errors.New("dial tcp: refused"))
			},
			expectErrIs: model.ErrRegistryUnavailable,
			expectState: security.StateUnverified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGuardFixture()
			if tt.setupMock != nil {
				tt.setupMock(f.registry)
			}
			carrier := tt.carrier(f, t)
			f.now = tt.at

			result, err := f.guard.Authenticate(context.Background(), carrier)
			assert.ErrorIs(t, err, tt.expectErrIs)
			assert.Equal(t, security.StateRejected, result.State)
			assert.Equal(t, tt.expectState, result.RejectedIn)
			assert.Empty(t, result.Identity)
			assert.Empty(t, result.Token)
			f.registry.AssertExpectations(t)
		})
	}
}

func TestGuard_RevocationTakesEffectImmediately(t *testing.T) {
	f := newGuardFixture()
	token := f.token(t, "traveler@example.com")
	f.registry.On("IsValid", mock.Anything, "traveler@example.com").Return(true, nil).Once()
	f.registry.On("IsValid", mock.Anything, "traveler@example.com").Return(false, nil).Once()

	_, err := f.guard.Authenticate(context.Background(), map[string]string{cookieName: token})
	require.NoError(t, err)

	_, err = f.guard.Authenticate(context.Background(), map[string]string{cookieName: token})
	assert.ErrorIs(t, err, model.ErrSessionRevoked)
}

func protectedHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := security.IdentityFromContext(r.Context())
		require.NoError(t, err)
		_, _ = w.Write([]byte(identity))
	})
}

func TestGuard_RequirePage(t *testing.T) {
	f := newGuardFixture()
	token := f.token(t, "traveler@example.com")
	f.registry.On("IsValid", mock.Anything, "traveler@example.com").Return(true, nil)
	handler := f.guard.RequirePage(protectedHandler(t))

	t.Run("valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "traveler@example.com", rec.Body.String())

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, cookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.NotEmpty(t, cookies[0].Value)
	})

	t.Run("bearer header fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing cookie redirects to login", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})
}

func TestGuard_RequireAPI(t *testing.T) {
	f := newGuardFixture()
	token := f.token(t, "traveler@example.com")
	f.registry.On("IsValid", mock.Anything, "traveler@example.com").Return(false, model.ErrRegistryUnavailable).Once()
	handler := f.guard.RequireAPI(protectedHandler(t))

	t.Run("registry unavailable answers 503", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/find_nearby_places", nil)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"error":{"code":503,"text":"service temporarily unavailable"}}`, rec.Body.String())
	})

	t.Run("invalid token answers 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/find_nearby_places", nil)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: "garbage"})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	})
}

func TestGuard_RedirectIfAuthenticated(t *testing.T) {
	f := newGuardFixture()
	token := f.token(t, "traveler@example.com")
	f.registry.On("IsValid", mock.Anything, "traveler@example.com").Return(true, nil)

	handler := f.guard.RedirectIfAuthenticated("/dashboard")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestCarrier(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "from-cookie"})
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	req.Header.Set("Authorization", "Bearer from-header")

	carrier := security.Carrier(req, cookieName)
	assert.Equal(t, "from-cookie", carrier[cookieName], "cookie wins over header")
	assert.Equal(t, "dark", carrier["theme"])
}
