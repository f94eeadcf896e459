package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"go.uber.org/zap"
)

// SessionCookieName is the cookie name used by NewSessionManager.
const SessionCookieName = "stajyerlog-test"

// NewSessionManager returns a cookie session manager with a fixed test key.
func NewSessionManager(t testing.TB) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32b", SessionCookieName, "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return sm
}

// FlashesAfter replays the cookies set on rec into a fresh GET and returns
// the toasts the next page would show.
func FlashesAfter(t testing.TB, sm *auth.SessionManager, rec *httptest.ResponseRecorder) []auth.Flash {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	var got []auth.Flash
	sm.LoadFlashes(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.Flashes(r)
	})).ServeHTTP(httptest.NewRecorder(), req)
	return got
}

// HasFlash reports whether flashes contains msg.
func HasFlash(flashes []auth.Flash, msg string) bool {
	for _, f := range flashes {
		if f.Message == msg {
			return true
		}
	}
	return false
}
