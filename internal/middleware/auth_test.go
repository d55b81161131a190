package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"ganbara/internal/session"
)

// newTestSession creates a session.Data value suitable for testing.
func newTestSession(role string, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      uuid.New(),
		Email:       "test@ganbara.local",
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

// ctxWithSession returns a context carrying the given session data using
// the same context key the middleware uses. This allows tests to simulate
// the state after LoadSession has run without needing a real Valkey store.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, SessionKey, data)
}

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

func TestSessionFromCtx(t *testing.T) {
	t.Run("returns session when present", func(t *testing.T) {
		sess := newTestSession("admin", true)
		got := SessionFromCtx(ctxWithSession(context.Background(), sess))
		if got == nil {
			t.Fatal("expected non-nil session, got nil")
		}
		if got.Role != "admin" {
			t.Errorf("Role: got %q, want %q", got.Role, "admin")
		}
	})

	t.Run("returns nil when absent", func(t *testing.T) {
		if got := SessionFromCtx(context.Background()); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

func TestRequireAuth(t *testing.T) {
	t.Run("rejects unauthenticated request", func(t *testing.T) {
		next, called := okHandler()
		req := httptest.NewRequest(http.MethodGet, "/admin/api/menu", nil)
		rr := httptest.NewRecorder()

		RequireAuth(next).ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
		if *called {
			t.Error("next handler must not run without a session")
		}
	})

	t.Run("passes authenticated request through", func(t *testing.T) {
		next, called := okHandler()
		req := httptest.NewRequest(http.MethodGet, "/admin/api/menu", nil)
		req = req.WithContext(ctxWithSession(req.Context(), newTestSession("staff", true)))
		rr := httptest.NewRecorder()

		RequireAuth(next).ServeHTTP(rr, req)

		if !*called {
			t.Error("next handler should have run")
		}
	})
}

func TestRequire2FA(t *testing.T) {
	next, called := okHandler()
	req := httptest.NewRequest(http.MethodPost, "/admin/api/menu", nil)
	req = req.WithContext(ctxWithSession(req.Context(), newTestSession("admin", false)))
	rr := httptest.NewRecorder()

	Require2FA(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
	if *called {
		t.Error("next handler must not run before 2FA completion")
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		sess       *session.Data
		wantStatus int
		wantPass   bool
	}{
		{"admin role passes", newTestSession("admin", true), http.StatusOK, true},
		{"staff role rejected", newTestSession("staff", true), http.StatusForbidden, false},
		{"no session rejected", nil, http.StatusForbidden, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, called := okHandler()
			req := httptest.NewRequest(http.MethodPost, "/admin/api/publish", nil)
			if tt.sess != nil {
				req = req.WithContext(ctxWithSession(req.Context(), tt.sess))
			}
			rr := httptest.NewRecorder()

			RequireAdmin(next).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
			if *called != tt.wantPass {
				t.Errorf("next called: got %v, want %v", *called, tt.wantPass)
			}
		})
	}
}
