package identity_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/stajyerlog/internal/app/store/sessions"
	"github.com/dalemusser/stajyerlog/internal/app/system/identity"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"github.com/dalemusser/stajyerlog/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var client = identity.Client{IP: "127.0.0.1", UserAgent: "test"}

func newService(t *testing.T) (*identity.Service, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return identity.New(db, time.Hour, zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestRegister_CreatesInternProfile(t *testing.T) {
	svc, _ := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	got, err := svc.Register(ctx, "Ayse@Example.com", "guclu-sifre-1", "Ayşe Yılmaz", client)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if got.User.Role != models.RoleIntern {
		t.Errorf("Role: got %q, want %q", got.User.Role, models.RoleIntern)
	}
	if got.User.Name != "Ayşe Yılmaz" {
		t.Errorf("Name: got %q", got.User.Name)
	}
	if got.User.Email != "ayse@example.com" {
		t.Errorf("Email: got %q", got.User.Email)
	}

	prof, err := svc.GetUserProfile(ctx, got.User.UserID)
	if err != nil {
		t.Fatalf("GetUserProfile failed: %v", err)
	}
	if prof.Role != models.RoleIntern {
		t.Errorf("stored role: got %q", prof.Role)
	}

	cur, err := svc.CurrentUser(ctx, got.Session.ID, got.User.UserID)
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if cur.UserID != got.User.UserID {
		t.Errorf("CurrentUser returned a different user")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := svc.Register(ctx, "dup@example.com", "guclu-sifre-1", "Bir", client); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	_, err := svc.Register(ctx, "DUP@example.com", "guclu-sifre-1", "İki", client)
	if !errors.Is(err, identity.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _ := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := svc.Register(ctx, "weak@example.com", "kisa", "Zayıf", client)
	if !errors.Is(err, identity.ErrRegisterFailed) {
		t.Errorf("expected ErrRegisterFailed, got %v", err)
	}
}

func TestLogin_ClosesPriorSessions(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateAccount(ctx, "Mehmet", "mehmet@example.com", models.RoleIntern)

	first, err := svc.Login(ctx, "mehmet@example.com", testutil.DefaultPassword, client)
	if err != nil {
		t.Fatalf("first Login failed: %v", err)
	}
	second, err := svc.Login(ctx, "MEHMET@example.com", testutil.DefaultPassword, client)
	if err != nil {
		t.Fatalf("second Login failed: %v", err)
	}

	n, err := sessions.New(fx.DB()).CountOpen(ctx, u.UserID)
	if err != nil {
		t.Fatalf("CountOpen failed: %v", err)
	}
	if n != 1 {
		t.Errorf("open sessions: got %d, want 1", n)
	}

	if _, err := svc.CurrentUser(ctx, first.Session.ID, u.UserID); !errors.Is(err, identity.ErrNoSession) {
		t.Errorf("first session should be closed, got %v", err)
	}
	if _, err := svc.CurrentUser(ctx, second.Session.ID, u.UserID); err != nil {
		t.Errorf("second session should be open, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateAccount(ctx, "Zeynep", "zeynep@example.com", models.RoleIntern)

	_, err := svc.Login(ctx, "zeynep@example.com", "yanlis-sifre", client)
	if !errors.Is(err, identity.ErrLoginFailed) {
		t.Errorf("expected ErrLoginFailed, got %v", err)
	}
	if identity.Message(err) != "Giriş başarısız" {
		t.Errorf("Message: got %q", identity.Message(err))
	}

	_, err = svc.Login(ctx, "yok@example.com", testutil.DefaultPassword, client)
	if !errors.Is(err, identity.ErrLoginFailed) {
		t.Errorf("unknown email: expected ErrLoginFailed, got %v", err)
	}
}

func TestLogout_EndsSession(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateAccount(ctx, "Can", "can@example.com", models.RoleIntern)
	in, err := svc.Login(ctx, "can@example.com", testutil.DefaultPassword, client)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := svc.Logout(ctx, in.Session.ID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := svc.CurrentUser(ctx, in.Session.ID, u.UserID); !errors.Is(err, identity.ErrNoSession) {
		t.Errorf("expected ErrNoSession after logout, got %v", err)
	}
	if got := svc.FetchUser(ctx, u.UserID.Hex(), in.Session.ID.Hex()); got != nil {
		t.Errorf("FetchUser should not resolve a closed session")
	}
}

func TestFetchUser_ResolvesRole(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m := fx.CreateAccount(ctx, "Yönetici", "boss@example.com", models.RoleManager)
	in, err := svc.Login(ctx, "boss@example.com", testutil.DefaultPassword, client)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	got := svc.FetchUser(ctx, m.UserID.Hex(), in.Session.ID.Hex())
	if got == nil {
		t.Fatal("expected session user")
	}
	if got.Role != models.RoleManager {
		t.Errorf("Role: got %q, want %q", got.Role, models.RoleManager)
	}
	if svc.FetchUser(ctx, "not-an-id", in.Session.ID.Hex()) != nil {
		t.Error("malformed id should not resolve")
	}
}

func TestGetUserProfile_NotFound(t *testing.T) {
	svc, _ := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := svc.GetUserProfile(ctx, primitive.NewObjectID())
	if !errors.Is(err, identity.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
	if identity.Message(err) != "Profil bulunamadı" {
		t.Errorf("Message: got %q", identity.Message(err))
	}
}

func TestUpdatePassword(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateAccount(ctx, "Elif", "elif@example.com", models.RoleIntern)

	if err := svc.UpdatePassword(ctx, u.UserID, "yanlis-sifre", "yepyeni-sifre"); !errors.Is(err, identity.ErrWrongPassword) {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
	if err := svc.UpdatePassword(ctx, u.UserID, testutil.DefaultPassword, "yepyeni-sifre"); err != nil {
		t.Fatalf("UpdatePassword failed: %v", err)
	}
	if _, err := svc.Login(ctx, "elif@example.com", "yepyeni-sifre", client); err != nil {
		t.Errorf("Login with new password failed: %v", err)
	}
}

func TestUpdateName_And_ListInterns(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateIntern(ctx, "Ahmet", "ahmet@example.com")
	fx.CreateIntern(ctx, "Burak", "burak@example.com")
	fx.CreateManager(ctx, "Yönetici", "y@example.com")

	if err := svc.UpdateName(ctx, a.UserID, "  Ahmet   Kaya "); err != nil {
		t.Fatalf("UpdateName failed: %v", err)
	}

	interns, err := svc.ListInterns(ctx)
	if err != nil {
		t.Fatalf("ListInterns failed: %v", err)
	}
	if len(interns) != 2 {
		t.Fatalf("interns: got %d, want 2", len(interns))
	}
	if interns[0].Name != "Ahmet Kaya" {
		t.Errorf("first intern: got %q, want %q", interns[0].Name, "Ahmet Kaya")
	}
}

func TestEnsureManager_Idempotent(t *testing.T) {
	svc, _ := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := svc.EnsureManager(ctx, "admin@example.com", "yonetici-sifre", "Yönetici")
	if err != nil || !created {
		t.Fatalf("first EnsureManager: created=%v err=%v", created, err)
	}
	created, err = svc.EnsureManager(ctx, "admin@example.com", "yonetici-sifre", "Yönetici")
	if err != nil || created {
		t.Errorf("second EnsureManager: created=%v err=%v", created, err)
	}

	in, err := svc.Login(ctx, "admin@example.com", "yonetici-sifre", client)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if in.User.Role != models.RoleManager {
		t.Errorf("Role: got %q, want %q", in.User.Role, models.RoleManager)
	}
}
