package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/contrarian-report/internal/config"
	"github.com/magabrotheeeer/contrarian-report/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
	"github.com/magabrotheeeer/contrarian-report/internal/services"
)

const cookieName = "contrarian_session"

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

type MockStatusService struct {
	mock.Mock
}

func (m *MockStatusService) Status(ctx context.Context, userUID string) (models.SubscriptionStatus, error) {
	args := m.Called(ctx, userUID)
	return args.Get(0).(models.SubscriptionStatus), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sessionEcho(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := middlewarectx.SessionFrom(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(s.UserUID))
	})
}

func TestSessionAuth(t *testing.T) {
	session := &models.Session{ID: "sid", UserUID: "user-1", Role: models.RoleClient}

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		mockSetup  func(m *MockAuthenticator)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no token",
			setup:      func(r *http.Request) {},
			mockSetup:  func(m *MockAuthenticator) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "bearer header",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer header-token")
			},
			mockSetup: func(m *MockAuthenticator) {
				m.On("Authenticate", mock.Anything, "header-token").Return(session, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "user-1",
		},
		{
			name: "cookie",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: cookieName, Value: "cookie-token"})
			},
			mockSetup: func(m *MockAuthenticator) {
				m.On("Authenticate", mock.Anything, "cookie-token").Return(session, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "user-1",
		},
		{
			name: "header wins over cookie",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer header-token")
				r.AddCookie(&http.Cookie{Name: cookieName, Value: "cookie-token"})
			},
			mockSetup: func(m *MockAuthenticator) {
				m.On("Authenticate", mock.Anything, "header-token").Return(session, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "user-1",
		},
		{
			name: "expired session",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer stale")
			},
			mockSetup: func(m *MockAuthenticator) {
				m.On("Authenticate", mock.Anything, "stale").Return(nil, services.ErrUnauthorized)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "storage failure",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer token")
			},
			mockSetup: func(m *MockAuthenticator) {
				m.On("Authenticate", mock.Anything, "token").Return(nil, errors.New("redis down"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := new(MockAuthenticator)
			tt.mockSetup(auth)

			handler := middlewarectx.SessionAuth(newNoopLogger(), auth, cookieName)(sessionEcho(t))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rr.Body.String())
			}
			auth.AssertExpectations(t)
		})
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := middlewarectx.RequireRole(newNoopLogger(), models.RoleWriter, models.RoleAdmin)(ok)

	tests := []struct {
		name       string
		session    *models.Session
		wantStatus int
	}{
		{name: "writer", session: &models.Session{Role: models.RoleWriter}, wantStatus: http.StatusNoContent},
		{name: "admin", session: &models.Session{Role: models.RoleAdmin}, wantStatus: http.StatusNoContent},
		{name: "client", session: &models.Session{Role: models.RoleClient}, wantStatus: http.StatusForbidden},
		{name: "anonymous", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.session != nil {
				req = req.WithContext(middlewarectx.WithSession(req.Context(), tt.session))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestRequireActiveSubscription(t *testing.T) {
	tests := []struct {
		name       string
		status     models.SubscriptionStatus
		err        error
		wantStatus int
	}{
		{name: "active", status: models.SubscriptionStatusActive, wantStatus: http.StatusOK},
		{name: "inactive", status: models.SubscriptionStatusInactive, wantStatus: http.StatusForbidden},
		{name: "none", status: models.SubscriptionStatusNone, wantStatus: http.StatusForbidden},
		{name: "error", status: models.SubscriptionStatusNone, err: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockStatusService)
			svc.On("Status", mock.Anything, "user-1").Return(tt.status, tt.err)

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, models.SubscriptionStatusActive, r.Context().Value(middlewarectx.SubscriptionStatus))
			})
			handler := middlewarectx.RequireActiveSubscription(newNoopLogger(), svc)(next)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(middlewarectx.WithSession(req.Context(), &models.Session{UserUID: "user-1"}))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := middlewarectx.NewIPLimiter(config.RateLimit{RPS: 0.001, Burst: 2})
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := middlewarectx.RateLimitMiddleware(newNoopLogger(), limiter)(ok)

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/account/login", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:5000"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:5002"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:5000"), "other clients keep their own bucket")
}

func TestNoCache(t *testing.T) {
	handler := middlewarectx.NoCache(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "no-cache, no-store, must-revalidate", rr.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", rr.Header().Get("Pragma"))
	assert.Equal(t, "0", rr.Header().Get("Expires"))
}

func TestRecoverer(t *testing.T) {
	handler := middlewarectx.Recoverer(newNoopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"status":"Error","error":"internal error"}`, rr.Body.String())
}
