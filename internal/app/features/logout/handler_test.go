package logout_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/stajyerlog/internal/app/features/logout"
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/dalemusser/stajyerlog/internal/app/system/identity"
	"github.com/dalemusser/stajyerlog/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeCloser struct {
	closed []primitive.ObjectID
	err    error
}

func (f *fakeCloser) Logout(_ context.Context, id primitive.ObjectID) error {
	if f.err != nil {
		return f.err
	}
	f.closed = append(f.closed, id)
	return nil
}

func signedInRequest(method string) (*http.Request, primitive.ObjectID) {
	sid := primitive.NewObjectID()
	req := httptest.NewRequest(method, "/logout", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:        primitive.NewObjectID().Hex(),
		SessionID: sid.Hex(),
		Name:      "Ayşe",
		Role:      "stajyer",
	})
	return req, sid
}

func TestHandleLogout_ClosesSessionAndRedirects(t *testing.T) {
	sm := testutil.NewSessionManager(t)
	closer := &fakeCloser{}
	h := logout.NewHandler(sm, closer, zap.NewNop())

	req, sid := signedInRequest("POST")
	rec := httptest.NewRecorder()
	h.HandleLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	if len(closer.closed) != 1 || closer.closed[0] != sid {
		t.Errorf("closed = %v, want [%v]", closer.closed, sid)
	}
	if !testutil.HasFlash(testutil.FlashesAfter(t, sm, rec), logout.SuccessMessage) {
		t.Error("expected logout toast")
	}
}

func TestHandleLogout_HTMX(t *testing.T) {
	h := logout.NewHandler(testutil.NewSessionManager(t), &fakeCloser{}, zap.NewNop())

	req, _ := signedInRequest("POST")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.HandleLogout(rec, req)

	if got := rec.Header().Get("HX-Redirect"); got != "/login" {
		t.Errorf("HX-Redirect = %q, want /login", got)
	}
}

func TestHandleLogout_CloseFailureKeepsSession(t *testing.T) {
	sm := testutil.NewSessionManager(t)
	h := logout.NewHandler(sm, &fakeCloser{err: errors.Join(identity.ErrLogoutFailed, errors.New("db down"))}, zap.NewNop())

	req, _ := signedInRequest("POST")
	rec := httptest.NewRecorder()
	h.HandleLogout(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
	if !testutil.HasFlash(testutil.FlashesAfter(t, sm, rec), identity.ErrLogoutFailed.Message) {
		t.Error("expected logout failure toast")
	}
}

func TestRoutes_RequireSignedInAndPost(t *testing.T) {
	sm := testutil.NewSessionManager(t)
	r := logout.Routes(logout.NewHandler(sm, &fakeCloser{}, zap.NewNop()), sm)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous POST: status = %d, want 401", rec.Code)
	}

	req, _ := signedInRequest("GET")
	req.URL.Path = "/"
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET: status = %d, want 405", rec.Code)
	}
}
