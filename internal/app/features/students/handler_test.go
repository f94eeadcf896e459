package students_test

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/stajyerlog/internal/app/features/errors"
	"github.com/dalemusser/stajyerlog/internal/app/features/students"
	activitystore "github.com/dalemusser/stajyerlog/internal/app/store/activities"
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/dalemusser/stajyerlog/internal/app/system/identity"
	"github.com/dalemusser/stajyerlog/internal/app/system/stats"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"github.com/dalemusser/stajyerlog/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, maxScan int) (*students.Handler, *auth.SessionManager, *testutil.Fixtures) {
	t.Helper()
	testutil.BootTemplates(t)
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	statsSvc := stats.New(db, time.UTC, logger)
	if maxScan > 0 {
		statsSvc = statsSvc.WithMaxScan(maxScan)
	}
	sm := testutil.NewSessionManager(t)
	h := students.NewHandler(db, identity.New(db, time.Hour, logger), statsSvc, sm, uierrors.NewErrorLogger(logger), logger)
	return h, sm, testutil.NewFixtures(t, db)
}

func detailRequest(id string) *http.Request {
	return detailPageRequest(id, "")
}

func detailPageRequest(id, query string) *http.Request {
	target := "/students/" + id
	if query != "" {
		target += "?" + query
	}
	req := testutil.NewAuthenticatedRequest("GET", target, testutil.ManagerUser())
	return testutil.WithChiURLParam(req, "id", id)
}

func TestServeList_Counts(t *testing.T) {
	h, _, fx := newTestHandler(t, 0)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ayse := fx.CreateIntern(ctx, "Ayşe Yılmaz", "ayse@example.com")
	burak := fx.CreateIntern(ctx, "Burak", "burak@example.com")
	fx.CreateManager(ctx, "Müdür", "mudur@example.com")
	fx.CreateActivity(ctx, ayse, "Yazılım", "kendi işi", time.Now())
	fx.CreateActivity(ctx, burak, "Toplantı", "ortak toplantı", time.Now(), ayse.UserID)

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/students", testutil.ManagerUser()))
	rec.AssertStatus(t, http.StatusOK)

	body := rec.Body.String()
	if !strings.Contains(body, "Ayşe Yılmaz") || !strings.Contains(body, "Burak") {
		t.Error("expected both interns listed")
	}
	if strings.Contains(body, "Müdür") {
		t.Error("managers are not listed")
	}
	if !strings.Contains(body, "<td>2</td>") || !strings.Contains(body, "<td>1</td>") {
		t.Error("expected participation counts 2 and 1")
	}
	rec.AssertContains(t, ">AY<")
}

func TestServeDetail(t *testing.T) {
	h, _, fx := newTestHandler(t, 0)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ayse := fx.CreateIntern(ctx, "Ayşe", "ayse@example.com")
	a := fx.CreateActivity(ctx, ayse, "Yazılım", "API yazıldı", time.Now())
	fx.CommentOn(ctx, a, "Güzel iş")

	rec := testutil.NewRecorder()
	h.ServeDetail(rec, detailRequest(ayse.UserID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "API yazıldı")
	rec.AssertContains(t, "Güzel iş")
	rec.AssertContains(t, "/students/"+ayse.UserID.Hex()+"/activities/"+a.ID.Hex()+"/comment")
	if strings.Contains(rec.Body.String(), "en yeni") {
		t.Error("no truncation notice expected")
	}
}

func TestServeDetail_Truncated(t *testing.T) {
	h, _, fx := newTestHandler(t, 3)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ayse := fx.CreateIntern(ctx, "Ayşe", "ayse@example.com")
	for i := 0; i < 5; i++ {
		fx.CreateActivity(ctx, ayse, "Yazılım", "iş", time.Now().AddDate(0, 0, -i))
	}

	rec := testutil.NewRecorder()
	h.ServeDetail(rec, detailRequest(ayse.UserID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "en yeni 3 aktivite")
}

func TestServeDetail_PagesRows(t *testing.T) {
	h, _, fx := newTestHandler(t, 0)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ayse := fx.CreateIntern(ctx, "Ayşe", "ayse@example.com")
	for i := 0; i < 25; i++ {
		fx.CreateActivity(ctx, ayse, "Yazılım", fmt.Sprintf("görev no %02d", i), time.Now().AddDate(0, 0, -i))
	}

	rec := testutil.NewRecorder()
	h.ServeDetail(rec, detailRequest(ayse.UserID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	body := rec.Body.String()
	if n := strings.Count(body, `class="activity"`); n != 20 {
		t.Errorf("first page rows = %d, want 20", n)
	}
	rec.AssertContains(t, "görev no 00")
	rec.AssertContains(t, `href="?page=2"`)
	rec.AssertContains(t, ">25<")
	if strings.Contains(body, "görev no 20") {
		t.Error("row 21 belongs on the second page")
	}

	next := testutil.NewRecorder()
	h.ServeDetail(next, detailPageRequest(ayse.UserID.Hex(), "page=2"))
	next.AssertStatus(t, http.StatusOK)
	if n := strings.Count(next.Body.String(), `class="activity"`); n != 5 {
		t.Errorf("second page rows = %d, want 5", n)
	}
	next.AssertContains(t, "görev no 24")
	next.AssertContains(t, ">25<")
}

func TestServeDetail_NotFound(t *testing.T) {
	h, _, fx := newTestHandler(t, 0)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := testutil.NewRecorder()
	h.ServeDetail(rec, detailRequest("zzz"))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	h.ServeDetail(rec, detailRequest("65f000000000000000000000"))
	rec.AssertStatus(t, http.StatusNotFound)

	mgr := fx.CreateUser(ctx, "Müdür", "mudur@example.com", models.RoleManager)
	rec = testutil.NewRecorder()
	h.ServeDetail(rec, detailRequest(mgr.UserID.Hex()))
	rec.AssertStatus(t, http.StatusNotFound)
}

func commentRequest(studentID, activityID, comment string) *http.Request {
	form := url.Values{"comment": {comment}}.Encode()
	req := testutil.NewFormRequest("/students/"+studentID+"/activities/"+activityID+"/comment", form, testutil.ManagerUser())
	req = testutil.WithChiURLParam(req, "id", studentID)
	return testutil.WithChiURLParam(req, "activityID", activityID)
}

func TestHandleComment(t *testing.T) {
	h, sm, fx := newTestHandler(t, 0)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ayse := fx.CreateIntern(ctx, "Ayşe", "ayse@example.com")
	a := fx.CreateActivity(ctx, ayse, "Yazılım", "API yazıldı", time.Now())

	rec := testutil.NewRecorder()
	h.HandleComment(rec, commentRequest(ayse.UserID.Hex(), a.ID.Hex(), "  Çok iyi  "))
	rec.AssertRedirect(t, "/students/"+ayse.UserID.Hex()+"#activity-"+a.ID.Hex())
	if !testutil.HasFlash(testutil.FlashesAfter(t, sm, rec.ResponseRecorder), students.MsgCommentSaved) {
		t.Error("expected the saved toast")
	}

	got, err := activitystore.New(fx.DB()).GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ManagerComment != "Çok iyi" {
		t.Errorf("ManagerComment = %q, want trimmed comment", got.ManagerComment)
	}
}

func TestHandleComment_OtherInternsActivity(t *testing.T) {
	h, sm, fx := newTestHandler(t, 0)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ayse := fx.CreateIntern(ctx, "Ayşe", "ayse@example.com")
	burak := fx.CreateIntern(ctx, "Burak", "burak@example.com")
	a := fx.CreateActivity(ctx, burak, "Yazılım", "başkasının işi", time.Now())

	rec := testutil.NewRecorder()
	h.HandleComment(rec, commentRequest(ayse.UserID.Hex(), a.ID.Hex(), "yorum"))
	rec.AssertRedirect(t, "/students/"+ayse.UserID.Hex())
	if !testutil.HasFlash(testutil.FlashesAfter(t, sm, rec.ResponseRecorder), students.MsgActivityAbsent) {
		t.Error("expected the not found toast")
	}

	got, _ := activitystore.New(fx.DB()).GetByID(ctx, a.ID)
	if got.HasComment() {
		t.Error("comment must not be stored through another intern's page")
	}
}
