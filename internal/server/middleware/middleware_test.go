package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkboard/inkboard/internal/auth"
	"github.com/inkboard/inkboard/internal/server/middleware"
)

const testSecret = "middleware-test-secret-key"

// echoUserHandler writes 200 and records the user ID seen in context.
func echoUserHandler(seen *uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := middleware.UserIDFromContext(r.Context()); ok {
			*seen = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

func TestAuth(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("bearer_token_accepted", func(t *testing.T) {
		t.Parallel()

		token, err := auth.IssueAccessToken(testSecret, userID, 5*time.Minute)
		require.NoError(t, err)

		var seen uuid.UUID
		handler := middleware.Auth(testSecret)(echoUserHandler(&seen))

		req := httptest.NewRequest(http.MethodGet, "/boards", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, seen)
	})

	t.Run("query_token_accepted", func(t *testing.T) {
		t.Parallel()

		token, err := auth.IssueAccessToken(testSecret, userID, 5*time.Minute)
		require.NoError(t, err)

		var seen uuid.UUID
		handler := middleware.Auth(testSecret)(echoUserHandler(&seen))

		// Websocket clients cannot set headers; the token rides the URL.
		req := httptest.NewRequest(http.MethodGet, "/ws/boards/"+uuid.New().String()+"?token="+token, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, seen)
	})

	t.Run("missing_token_rejected", func(t *testing.T) {
		t.Parallel()

		handler := middleware.Auth(testSecret)(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			t.Fatal("handler must not run without credentials")
		}))

		req := httptest.NewRequest(http.MethodGet, "/boards", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong_secret_rejected", func(t *testing.T) {
		t.Parallel()

		token, err := auth.IssueAccessToken("some-other-secret", userID, 5*time.Minute)
		require.NoError(t, err)

		handler := middleware.Auth(testSecret)(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			t.Fatal("handler must not run with a forged token")
		}))

		req := httptest.NewRequest(http.MethodGet, "/boards", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh_token_rejected", func(t *testing.T) {
		t.Parallel()

		token, err := auth.IssueRefreshToken(testSecret, userID, time.Hour)
		require.NoError(t, err)

		handler := middleware.Auth(testSecret)(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			t.Fatal("refresh tokens must not grant API access")
		}))

		req := httptest.NewRequest(http.MethodGet, "/boards", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired_token_rejected", func(t *testing.T) {
		t.Parallel()

		token, err := auth.IssueAccessToken(testSecret, userID, -time.Second)
		require.NoError(t, err)

		handler := middleware.Auth(testSecret)(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			t.Fatal("expired tokens must be rejected")
		}))

		req := httptest.NewRequest(http.MethodGet, "/boards", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

// ---------------------------------------------------------------------------
// RateLimit
// ---------------------------------------------------------------------------

func TestRateLimit(t *testing.T) {
	t.Parallel()

	t.Run("burst_exhaustion_returns_429", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		userID := uuid.New()
		handler := middleware.RateLimit(ctx, 1, 2)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		do := func() int {
			req := httptest.NewRequest(http.MethodGet, "/boards", nil)
			req = req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyUserID, userID))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			return rec.Code
		}

		assert.Equal(t, http.StatusOK, do())
		assert.Equal(t, http.StatusOK, do())
		assert.Equal(t, http.StatusTooManyRequests, do())
	})

	t.Run("limits_are_per_user", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		handler := middleware.RateLimit(ctx, 1, 1)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		do := func(userID uuid.UUID) int {
			req := httptest.NewRequest(http.MethodGet, "/boards", nil)
			req = req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyUserID, userID))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			return rec.Code
		}

		alice := uuid.New()
		bob := uuid.New()

		assert.Equal(t, http.StatusOK, do(alice))
		assert.Equal(t, http.StatusTooManyRequests, do(alice))
		assert.Equal(t, http.StatusOK, do(bob), "one user's burst must not starve another")
	})

	t.Run("no_user_in_context_passes_through", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		handler := middleware.RateLimit(ctx, 1, 1)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		for range 5 {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

// ---------------------------------------------------------------------------
// RateLimitByIP
// ---------------------------------------------------------------------------

func TestRateLimitByIP(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimitByIP(ctx, 1, 1)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1234"), "limits are per address")
}
