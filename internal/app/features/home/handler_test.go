package home_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/stajyerlog/internal/app/features/home"
	"github.com/dalemusser/stajyerlog/internal/testutil"
	"go.uber.org/zap"
)

func TestServeRoot_ByRole(t *testing.T) {
	h := home.NewHandler(zap.NewNop())

	tests := []struct {
		name string
		user testutil.TestUser
		want string
	}{
		{"manager", testutil.ManagerUser(), "/dashboard"},
		{"intern", testutil.InternUser(), "/activities"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.ServeRoot(rec, testutil.NewAuthenticatedRequest("GET", "/", tt.user))
			rec.AssertRedirect(t, tt.want)
		})
	}
}

func TestRoutes_AnonymousGoesToLogin(t *testing.T) {
	sm := testutil.NewSessionManager(t)
	r := home.Routes(home.NewHandler(zap.NewNop()), sm)

	req := testutil.NewRequest("GET", "/")
	req.Header.Set("Accept", "text/html")
	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, req)

	rec.AssertStatus(t, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != "/login?return=%2F" {
		t.Errorf("Location = %q", loc)
	}
}
