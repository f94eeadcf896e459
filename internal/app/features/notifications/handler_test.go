package notifications_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/stajyerlog/internal/app/features/errors"
	"github.com/dalemusser/stajyerlog/internal/app/features/notifications"
	"github.com/dalemusser/stajyerlog/internal/app/system/identity"
	"github.com/dalemusser/stajyerlog/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*notifications.Handler, *testutil.Fixtures) {
	t.Helper()
	testutil.BootTemplates(t)
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	h := notifications.NewHandler(db, identity.New(db, time.Hour, logger), time.UTC, uierrors.NewErrorLogger(logger), logger)
	return h, testutil.NewFixtures(t, db)
}

func TestServeList_InternSeesOwnComments(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ayse := fx.CreateIntern(ctx, "Ayşe", "ayse@example.com")
	burak := fx.CreateIntern(ctx, "Burak", "burak@example.com")
	mine := fx.CreateActivity(ctx, ayse, "Yazılım", "kendi işim", time.Now())
	fx.CommentOn(ctx, mine, "Ayşe için yorum")
	theirs := fx.CreateActivity(ctx, burak, "Tasarım", "Burak'ın işi", time.Now())
	fx.CommentOn(ctx, theirs, "Burak için yorum")
	fx.CreateActivity(ctx, ayse, "Analiz", "yorumsuz iş", time.Now())

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/notifications", testutil.AsTestUser(ayse)))
	rec.AssertStatus(t, http.StatusOK)

	body := rec.Body.String()
	if !strings.Contains(body, "Ayşe için yorum") {
		t.Error("expected the intern's own comment")
	}
	if strings.Contains(body, "Burak için yorum") || strings.Contains(body, "yorumsuz iş") {
		t.Error("only the intern's commented activities belong here")
	}
}

func TestServeList_ManagerSeesAllCapped(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ayse := fx.CreateIntern(ctx, "Ayşe", "ayse@example.com")
	burak := fx.CreateIntern(ctx, "Burak", "burak@example.com")
	for _, u := range []string{"a", "b"} {
		owner := ayse
		if u == "b" {
			owner = burak
		}
		a := fx.CreateActivity(ctx, owner, "Yazılım", "iş "+u, time.Now())
		fx.CommentOn(ctx, a, "yorum "+u)
	}

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/notifications", testutil.ManagerUser()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "yorum a")
	rec.AssertContains(t, "yorum b")

	past := testutil.NewRecorder()
	h.ServeList(past, testutil.NewAuthenticatedRequest("GET", "/notifications?page=6", testutil.ManagerUser()))
	past.AssertStatus(t, http.StatusOK)
	past.AssertContains(t, "Henüz bildirim yok")
}
