package activitystore_test

import (
	"errors"
	"testing"
	"time"

	activitystore "github.com/dalemusser/stajyerlog/internal/app/store/activities"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"github.com/dalemusser/stajyerlog/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStore_Create_AddsOwnerToParticipants(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	a, err := store.Create(ctx, models.Activity{
		UserID:         owner,
		UserName:       "Sahip",
		Category:       "Yazılım",
		Description:    "Test görevi tamamlandı",
		Date:           day(2024, 6, 1),
		ParticipantIDs: []primitive.ObjectID{other, owner, other},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(a.ParticipantIDs) != 2 || a.ParticipantIDs[0] != owner || a.ParticipantIDs[1] != other {
		t.Errorf("ParticipantIDs: got %v, want [owner other]", a.ParticipantIDs)
	}

	got, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Category != "Yazılım" || got.UserName != "Sahip" {
		t.Errorf("unexpected stored activity: %+v", got)
	}
}

func TestStore_Create_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	tests := []struct {
		name string
		in   models.Activity
		want error
	}{
		{"no owner", models.Activity{Category: "x", Description: "y", Date: day(2024, 1, 1)}, activitystore.ErrMissingOwner},
		{"no category", models.Activity{UserID: owner, Category: " ", Description: "y", Date: day(2024, 1, 1)}, activitystore.ErrMissingCategory},
		{"blank description", models.Activity{UserID: owner, Category: "x", Description: " \r\n ", Date: day(2024, 1, 1)}, activitystore.ErrMissingDescription},
		{"no date", models.Activity{UserID: owner, Category: "x", Description: "y"}, activitystore.ErrMissingDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Create(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStore_KeepsAngleBracketsInText(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	texts := []string{
		"Sorgu süresi x<y koşulunda ölçüldü ve raporlandı",
		"Generic tip List<T> için testler yazıldı",
		"<b>kısa</b>",
		"<script>alert(1)</script>",
	}
	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			a, err := store.Create(ctx, models.Activity{UserID: owner, Category: "Yazılım", Description: text, Date: day(2024, 6, 1)})
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			got, err := store.GetByID(ctx, a.ID)
			if err != nil {
				t.Fatalf("GetByID failed: %v", err)
			}
			if got.Description != text {
				t.Errorf("Description: got %q, want %q", got.Description, text)
			}

			if err := store.SetComment(ctx, a.ID, text); err != nil {
				t.Fatalf("SetComment failed: %v", err)
			}
			got, _ = store.GetByID(ctx, a.ID)
			if got.ManagerComment != text {
				t.Errorf("ManagerComment: got %q, want %q", got.ManagerComment, text)
			}
		})
	}
}

func TestStore_Update_PreservesOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := activitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateIntern(ctx, "Sahip", "sahip@example.com")
	a := fixtures.CreateActivity(ctx, owner, "Tasarım", "İlk taslak hazırlandı", day(2024, 6, 1))

	err := store.Update(ctx, a.ID, owner.UserID, activitystore.Update{
		Category:    "Analiz",
		Description: "Gereksinimler analiz edildi",
		Date:        day(2024, 6, 2),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.UserID != owner.UserID || got.UserName != "Sahip" {
		t.Errorf("owner fields changed: %v %q", got.UserID, got.UserName)
	}
	if got.Category != "Analiz" {
		t.Errorf("Category: got %q, want %q", got.Category, "Analiz")
	}
	if len(got.ParticipantIDs) != 1 || got.ParticipantIDs[0] != owner.UserID {
		t.Errorf("ParticipantIDs: got %v, want [owner]", got.ParticipantIDs)
	}
}

func TestStore_Update_Delete_RequireOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := activitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateIntern(ctx, "Sahip", "sahip@example.com")
	stranger := fixtures.CreateIntern(ctx, "Yabancı", "yabanci@example.com")
	a := fixtures.CreateActivity(ctx, owner, "Tasarım", "İlk taslak hazırlandı", day(2024, 6, 1))

	err := store.Update(ctx, a.ID, stranger.UserID, activitystore.Update{
		Category: "x", Description: "yyyyyyyyyy", Date: day(2024, 6, 1),
	})
	if !errors.Is(err, activitystore.ErrNotFound) {
		t.Errorf("Update by non-owner: got %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, a.ID, stranger.UserID); !errors.Is(err, activitystore.ErrNotFound) {
		t.Errorf("Delete by non-owner: got %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, a.ID, owner.UserID); err != nil {
		t.Fatalf("Delete by owner failed: %v", err)
	}
	if _, err := store.GetByID(ctx, a.ID); !errors.Is(err, activitystore.ErrNotFound) {
		t.Errorf("expected deleted activity to be gone, got %v", err)
	}
}

func TestStore_SetComment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := activitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateIntern(ctx, "Sahip", "sahip@example.com")
	a := fixtures.CreateActivity(ctx, owner, "Tasarım", "İlk taslak hazırlandı", day(2024, 6, 1))

	if err := store.SetComment(ctx, a.ID, "  Güzel iş  "); err != nil {
		t.Fatalf("SetComment failed: %v", err)
	}
	got, _ := store.GetByID(ctx, a.ID)
	if got.ManagerComment != "Güzel iş" {
		t.Errorf("ManagerComment: got %q, want trimmed", got.ManagerComment)
	}

	commented, err := store.ListCommented(ctx, nil, 10, 0)
	if err != nil {
		t.Fatalf("ListCommented failed: %v", err)
	}
	if len(commented) != 1 {
		t.Errorf("ListCommented: got %d, want 1", len(commented))
	}

	if err := store.SetComment(ctx, a.ID, "   "); err != nil {
		t.Fatalf("SetComment(clear) failed: %v", err)
	}
	got, _ = store.GetByID(ctx, a.ID)
	if got.HasComment() {
		t.Errorf("expected comment cleared, got %q", got.ManagerComment)
	}

	if err := store.SetComment(ctx, primitive.NewObjectID(), "x"); !errors.Is(err, activitystore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListByUser_IncludesShared(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := activitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	me := fixtures.CreateIntern(ctx, "Ben", "ben@example.com")
	friend := fixtures.CreateIntern(ctx, "Arkadaş", "arkadas@example.com")
	other := fixtures.CreateIntern(ctx, "Diğer", "diger@example.com")

	fixtures.CreateActivity(ctx, me, "Yazılım", "Kendi işim yapıldı", day(2024, 6, 1))
	fixtures.CreateActivity(ctx, friend, "Toplantı", "Ortak toplantı yapıldı", day(2024, 6, 3), me.UserID)
	fixtures.CreateActivity(ctx, other, "Analiz", "Başkasının işi yapıldı", day(2024, 6, 2))

	got, err := store.ListByUser(ctx, me.UserID, 10)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d activities, want 2", len(got))
	}
	if got[0].Category != "Toplantı" {
		t.Errorf("expected newest first, got %q", got[0].Category)
	}
}

func TestStore_ListAll_Pagination(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := activitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateIntern(ctx, "Ben", "ben@example.com")
	for i := 1; i <= 5; i++ {
		fixtures.CreateActivity(ctx, u, "Yazılım", "Gün sonu raporu yazıldı", day(2024, 6, i))
	}

	page, err := store.ListAll(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("got %d, want 2", len(page))
	}
	if !page[0].Date.Equal(day(2024, 6, 3)) {
		t.Errorf("first of page 2: got %v, want 2024-06-03", page[0].Date)
	}
}

func TestStore_Collect_Bounded(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := activitystore.New(db).WithScanPageSize(3)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateIntern(ctx, "Ben", "ben@example.com")
	for i := 1; i <= 10; i++ {
		fixtures.CreateActivity(ctx, u, "Yazılım", "Gün sonu raporu yazıldı", day(2024, 6, i))
	}

	all, err := store.Collect(ctx, bson.M{}, 50)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(all.Activities) != 10 || all.Truncated {
		t.Errorf("unbounded: got %d truncated=%v, want 10 false", len(all.Activities), all.Truncated)
	}

	exact, err := store.Collect(ctx, bson.M{}, 10)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(exact.Activities) != 10 || exact.Truncated {
		t.Errorf("exact bound: got %d truncated=%v, want 10 false", len(exact.Activities), exact.Truncated)
	}

	capped, err := store.Collect(ctx, bson.M{}, 7)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(capped.Activities) != 7 || !capped.Truncated {
		t.Errorf("capped: got %d truncated=%v, want 7 true", len(capped.Activities), capped.Truncated)
	}
	seen := map[primitive.ObjectID]bool{}
	for _, a := range capped.Activities {
		if seen[a.ID] {
			t.Fatalf("duplicate activity %v across pages", a.ID)
		}
		seen[a.ID] = true
	}
	if !capped.Activities[0].Date.Equal(day(2024, 6, 10)) {
		t.Errorf("expected newest first, got %v", capped.Activities[0].Date)
	}
}

func TestStore_ParticipationCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := activitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateIntern(ctx, "A", "a@example.com")
	b := fixtures.CreateIntern(ctx, "B", "b@example.com")
	fixtures.CreateActivity(ctx, a, "Yazılım", "Tek başına yapıldı", day(2024, 6, 1))
	fixtures.CreateActivity(ctx, a, "Yazılım", "Birlikte yapıldı", day(2024, 6, 2), b.UserID)

	counts, err := store.ParticipationCounts(ctx)
	if err != nil {
		t.Fatalf("ParticipationCounts failed: %v", err)
	}
	if counts[a.UserID] != 2 || counts[b.UserID] != 1 {
		t.Errorf("counts: got a=%d b=%d, want 2 1", counts[a.UserID], counts[b.UserID])
	}
}

func TestWithOwner(t *testing.T) {
	owner := primitive.NewObjectID()
	x := primitive.NewObjectID()

	got := activitystore.WithOwner(owner, []primitive.ObjectID{x, primitive.NilObjectID, owner, x})
	if len(got) != 2 || got[0] != owner || got[1] != x {
		t.Errorf("WithOwner: got %v", got)
	}
}
