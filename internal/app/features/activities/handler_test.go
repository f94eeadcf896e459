package activities_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/stajyerlog/internal/app/features/activities"
	uierrors "github.com/dalemusser/stajyerlog/internal/app/features/errors"
	activitystore "github.com/dalemusser/stajyerlog/internal/app/store/activities"
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/dalemusser/stajyerlog/internal/app/system/identity"
	"github.com/dalemusser/stajyerlog/internal/app/system/inputval"
	"github.com/dalemusser/stajyerlog/internal/app/system/stats"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"github.com/dalemusser/stajyerlog/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var istanbul = mustZone("Europe/Istanbul")

func mustZone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// fixedNow is a day after the activities created in these tests.
var fixedNow = time.Date(2024, 6, 10, 12, 0, 0, 0, istanbul)

type env struct {
	h   *activities.Handler
	sm  *auth.SessionManager
	db  *mongo.Database
	fx  *testutil.Fixtures
	acs *activitystore.Store
}

func newEnv(t *testing.T) env {
	t.Helper()
	testutil.BootTemplates(t)
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sm := testutil.NewSessionManager(t)
	statsSvc := stats.New(db, istanbul, logger).WithClock(func() time.Time { return fixedNow })
	h := activities.NewHandler(db, identity.New(db, time.Hour, logger), statsSvc, sm, uierrors.NewErrorLogger(logger), logger).
		WithClock(func() time.Time { return fixedNow })
	return env{h: h, sm: sm, db: db, fx: testutil.NewFixtures(t, db), acs: activitystore.New(db)}
}

func activityForm(category, desc, date string, participants ...string) string {
	v := url.Values{"category": {category}, "description": {desc}, "date": {date}}
	for _, p := range participants {
		v.Add("participants", p)
	}
	return v.Encode()
}

func TestHandleNew_CreatesAndLists(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ayse := e.fx.CreateIntern(ctx, "Ayşe Yılmaz", "ayse@example.com")
	user := testutil.AsTestUser(ayse)

	rec := testutil.NewRecorder()
	e.h.HandleNew(rec, testutil.NewFormRequest("/activities/new", activityForm("Yazılım", "Test görevi tamamlandı", "2024-06-01"), user))
	rec.AssertRedirect(t, "/activities")
	if !testutil.HasFlash(testutil.FlashesAfter(t, e.sm, rec.ResponseRecorder), activities.MsgCreated) {
		t.Error("expected the created toast")
	}

	list := testutil.NewRecorder()
	e.h.ServeList(list, testutil.NewAuthenticatedRequest("GET", "/activities", user))
	list.AssertStatus(t, http.StatusOK)
	list.AssertContains(t, "1 Haziran 2024")
	list.AssertContains(t, `<span class="badge">Yazılım</span>`)
	if n := strings.Count(list.Body.String(), `class="activity" id=`); n != 1 {
		t.Errorf("rendered %d activity rows, want 1", n)
	}
	list.AssertContains(t, "/edit")
}

func TestHandleNew_KeepsAngleBrackets(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ayse := e.fx.CreateIntern(ctx, "Ayşe Yılmaz", "ayse@example.com")
	user := testutil.AsTestUser(ayse)

	desc := "Sorgu süresi x<y koşulunda ölçüldü ve raporlandı"
	rec := testutil.NewRecorder()
	e.h.HandleNew(rec, testutil.NewFormRequest("/activities/new", activityForm("Yazılım", desc, "2024-06-01"), user))
	rec.AssertRedirect(t, "/activities")

	list := testutil.NewRecorder()
	e.h.ServeList(list, testutil.NewAuthenticatedRequest("GET", "/activities", user))
	list.AssertContains(t, "x&lt;y koşulunda ölçüldü ve raporlandı")
}

func TestHandleNew_Participants(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ayse := e.fx.CreateIntern(ctx, "Ayşe", "ayse@example.com")
	burak := e.fx.CreateIntern(ctx, "Burak", "burak@example.com")

	form := activityForm("Toplantı", "Haftalık ekip toplantısı", "2024-06-03", burak.UserID.Hex(), "bozuk-id", ayse.UserID.Hex())
	rec := testutil.NewRecorder()
	e.h.HandleNew(rec, testutil.NewFormRequest("/activities/new", form, testutil.AsTestUser(ayse)))
	rec.AssertStatus(t, http.StatusSeeOther)

	acts, err := e.acs.ListByUser(ctx, burak.UserID, 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(acts) != 1 {
		t.Fatalf("participant sees %d activities, want 1", len(acts))
	}
	got := acts[0]
	if got.UserID != ayse.UserID || len(got.ParticipantIDs) != 2 {
		t.Errorf("owner=%v participants=%v", got.UserID, got.ParticipantIDs)
	}
	if strings.Join(got.ParticipantNames, ",") != "Ayşe,Burak" {
		t.Errorf("ParticipantNames = %v", got.ParticipantNames)
	}

	// Burak sees it as a shared activity without controls.
	list := testutil.NewRecorder()
	e.h.ServeList(list, testutil.NewAuthenticatedRequest("GET", "/activities", testutil.AsTestUser(burak)))
	list.AssertContains(t, "Ortak aktivite")
	list.AssertContains(t, "Ekleyen: Ayşe")
	if strings.Contains(list.Body.String(), "/edit") {
		t.Error("non-owner must not get edit controls")
	}
}

func TestHandleNew_Validation(t *testing.T) {
	e := newEnv(t)
	user := testutil.InternUser()

	tests := []struct {
		name string
		form string
		want string
	}{
		{"blank field", activityForm("", "Test görevi tamamlandı", "2024-06-01"), inputval.MsgFieldsRequired},
		{"short description", activityForm("Yazılım", "kısa", "2024-06-01"), inputval.MsgDescriptionShort},
		{"before 2024", activityForm("Yazılım", "Test görevi tamamlandı", "2023-12-31"), inputval.MsgDateOutOfRange},
		{"future", activityForm("Yazılım", "Test görevi tamamlandı", "2024-06-11"), inputval.MsgDateOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			e.h.HandleNew(rec, testutil.NewFormRequest("/activities/new", tt.form, user))
			rec.AssertStatus(t, http.StatusOK)
			rec.AssertContains(t, tt.want)
		})
	}
}

func TestHandleEdit_PreservesOwner(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ayse := e.fx.CreateIntern(ctx, "Ayşe", "ayse@example.com")
	a := e.fx.CreateActivity(ctx, ayse, "Yazılım", "İlk sürüm yazıldı", time.Date(2024, 6, 1, 0, 0, 0, 0, istanbul))

	req := testutil.NewFormRequest("/activities/"+a.ID.Hex()+"/edit",
		activityForm("Analiz", "Gereksinimler analiz edildi", "2024-06-02"), testutil.AsTestUser(ayse))
	req = testutil.WithChiURLParam(req, "id", a.ID.Hex())
	rec := testutil.NewRecorder()
	e.h.HandleEdit(rec, req)
	rec.AssertRedirect(t, "/activities")
	if !testutil.HasFlash(testutil.FlashesAfter(t, e.sm, rec.ResponseRecorder), activities.MsgUpdated) {
		t.Error("expected the updated toast")
	}

	got, err := e.acs.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.UserID != ayse.UserID || got.UserName != "Ayşe" {
		t.Errorf("owner changed: %v %q", got.UserID, got.UserName)
	}
	if got.Category != "Analiz" || got.Description != "Gereksinimler analiz edildi" {
		t.Errorf("fields not updated: %+v", got)
	}
}

func TestHandleEdit_BlankField(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ayse := e.fx.CreateIntern(ctx, "Ayşe", "ayse@example.com")
	a := e.fx.CreateActivity(ctx, ayse, "Yazılım", "İlk sürüm yazıldı", time.Date(2024, 6, 1, 0, 0, 0, 0, istanbul))

	req := testutil.NewFormRequest("/activities/"+a.ID.Hex()+"/edit",
		activityForm("Yazılım", "", "2024-06-01"), testutil.AsTestUser(ayse))
	rec := testutil.NewRecorder()
	e.h.HandleEdit(rec, testutil.WithChiURLParam(req, "id", a.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, inputval.MsgFieldsRequired)
}

func TestNonOwnerIsRefused(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ayse := e.fx.CreateIntern(ctx, "Ayşe", "ayse@example.com")
	burak := e.fx.CreateIntern(ctx, "Burak", "burak@example.com")
	a := e.fx.CreateActivity(ctx, ayse, "Yazılım", "İlk sürüm yazıldı", time.Date(2024, 6, 1, 0, 0, 0, 0, istanbul), burak.UserID)
	other := testutil.AsTestUser(burak)

	get := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest("GET", "/activities/"+a.ID.Hex()+"/edit", other), "id", a.ID.Hex())
	rec := testutil.NewRecorder()
	e.h.ServeEdit(rec, get)
	rec.AssertStatus(t, http.StatusForbidden)

	edit := testutil.WithChiURLParam(testutil.NewFormRequest("/activities/"+a.ID.Hex()+"/edit",
		activityForm("Analiz", "Başkasının kaydı değişti", "2024-06-02"), other), "id", a.ID.Hex())
	rec = testutil.NewRecorder()
	e.h.HandleEdit(rec, edit)
	rec.AssertStatus(t, http.StatusForbidden)

	del := testutil.WithChiURLParam(testutil.NewFormRequest("/activities/"+a.ID.Hex()+"/delete", "", other), "id", a.ID.Hex())
	rec = testutil.NewRecorder()
	e.h.HandleDelete(rec, del)
	rec.AssertStatus(t, http.StatusForbidden)

	got, err := e.acs.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("activity should still exist: %v", err)
	}
	if got.Category != "Yazılım" {
		t.Errorf("non-owner edit leaked through: %+v", got)
	}
}

func TestHandleDelete_Owner(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ayse := e.fx.CreateIntern(ctx, "Ayşe", "ayse@example.com")
	a := e.fx.CreateActivity(ctx, ayse, "Yazılım", "İlk sürüm yazıldı", time.Date(2024, 6, 1, 0, 0, 0, 0, istanbul))

	req := testutil.WithChiURLParam(testutil.NewFormRequest("/activities/"+a.ID.Hex()+"/delete", "", testutil.AsTestUser(ayse)), "id", a.ID.Hex())
	rec := testutil.NewRecorder()
	e.h.HandleDelete(rec, req)
	rec.AssertRedirect(t, "/activities")
	if !testutil.HasFlash(testutil.FlashesAfter(t, e.sm, rec.ResponseRecorder), activities.MsgDeleted) {
		t.Error("expected the deleted toast")
	}

	if _, err := e.acs.GetByID(ctx, a.ID); err != activitystore.ErrNotFound {
		t.Errorf("GetByID after delete: %v", err)
	}
}

func TestLoadOwned_BadIDAndMissing(t *testing.T) {
	e := newEnv(t)
	user := testutil.InternUser()

	rec := testutil.NewRecorder()
	e.h.ServeEdit(rec, testutil.WithChiURLParam(testutil.NewAuthenticatedRequest("GET", "/activities/x/edit", user), "id", "x"))
	rec.AssertStatus(t, http.StatusBadRequest)

	missing := "65f000000000000000000000"
	rec = testutil.NewRecorder()
	e.h.ServeEdit(rec, testutil.WithChiURLParam(testutil.NewAuthenticatedRequest("GET", "/activities/"+missing+"/edit", user), "id", missing))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, activities.MsgNotFound)
}

func TestServeList_Unauthenticated(t *testing.T) {
	e := newEnv(t)
	rec := testutil.NewRecorder()
	e.h.ServeList(rec, testutil.NewRequest("GET", "/activities"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeNew_Picker(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ayse := e.fx.CreateIntern(ctx, "Ayşe", "ayse@example.com")
	e.fx.CreateIntern(ctx, "Burak", "burak@example.com")
	e.fx.CreateUser(ctx, "Müdür", "mudur@example.com", models.RoleManager)

	rec := testutil.NewRecorder()
	e.h.ServeNew(rec, testutil.NewAuthenticatedRequest("GET", "/activities/new", testutil.AsTestUser(ayse)))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Burak")
	rec.AssertContains(t, `max="2024-06-10"`)
	rec.AssertContains(t, `min="2024-01-01"`)
	if strings.Contains(rec.Body.String(), "Müdür") {
		t.Error("managers are not offered as participants")
	}
}
