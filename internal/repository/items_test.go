package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/Binayak012/StillGood/internal/models"
	"github.com/Binayak012/StillGood/internal/repository"
	"github.com/Binayak012/StillGood/internal/testutil"
)

func createTestItem(t *testing.T, repo *repository.SQLiteItemRepository, householdID, userID, name string) models.Item {
	t.Helper()
	opened := false
	now := time.Now().UTC()
	item, err := repo.Create(context.Background(), models.Item{
		HouseholdID:     householdID,
		CreatedByUserID: userID,
		Name:            name,
		Category:        "dairy",
		Quantity:        "1",
		DateAdded:       now,
		Opened:          &opened,
		ExpiresAt:       now.AddDate(0, 0, 7),
		DaysRemaining:   7,
		Status:          models.ItemStatusFresh,
		Confidence:      0.75,
	})
	if err != nil {
		t.Fatalf("creating test item: %v", err)
	}
	return item
}

func TestItemRepository_CreateLowercasesCategory(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	householdRepo := repository.NewHouseholdRepository(db)
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	ctx := context.Background()

	household := createTestHousehold(t, householdRepo, "ABC234")
	user := createTestUser(t, userRepo)

	opened := false
	item, err := itemRepo.Create(ctx, models.Item{
		HouseholdID:     household.ID,
		CreatedByUserID: user.ID,
		Name:            "Milk",
		Category:        "Dairy",
		Quantity:        "1L",
		DateAdded:       time.Now().UTC(),
		Opened:          &opened,
		Status:          models.ItemStatusFresh,
	})
	if err != nil {
		t.Fatalf("creating item: %v", err)
	}
	if item.Category != "dairy" {
		t.Errorf("expected category 'dairy', got '%s'", item.Category)
	}

	found, err := itemRepo.FindByID(ctx, household.ID, item.ID)
	if err != nil {
		t.Fatalf("finding item: %v", err)
	}
	if found.Category != "dairy" {
		t.Errorf("expected stored category 'dairy', got '%s'", found.Category)
	}
}

func TestItemRepository_FindByIDScopedToHousehold(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	householdRepo := repository.NewHouseholdRepository(db)
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	ctx := context.Background()

	ours := createTestHousehold(t, householdRepo, "ABC234")
	theirs := createTestHousehold(t, householdRepo, "DEF567")
	user := createTestUser(t, userRepo)

	item := createTestItem(t, itemRepo, ours.ID, user.ID, "Milk")

	_, err := itemRepo.FindByID(ctx, theirs.ID, item.ID)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows for other household, got %v", err)
	}
}

func TestItemRepository_ActiveAndArchivedSplit(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	householdRepo := repository.NewHouseholdRepository(db)
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	ctx := context.Background()

	household := createTestHousehold(t, householdRepo, "ABC234")
	user := createTestUser(t, userRepo)

	keep := createTestItem(t, itemRepo, household.ID, user.ID, "Milk")
	eaten := createTestItem(t, itemRepo, household.ID, user.ID, "Yogurt")

	if err := itemRepo.Archive(ctx, eaten.ID, time.Now()); err != nil {
		t.Fatalf("archiving item: %v", err)
	}

	active, err := itemRepo.FindActive(ctx, household.ID)
	if err != nil {
		t.Fatalf("finding active items: %v", err)
	}
	if len(active) != 1 || active[0].ID != keep.ID {
		t.Fatalf("expected only the unarchived item, got %d items", len(active))
	}

	archived, err := itemRepo.FindArchived(ctx, household.ID)
	if err != nil {
		t.Fatalf("finding archived items: %v", err)
	}
	if len(archived) != 1 || archived[0].ID != eaten.ID {
		t.Fatalf("expected only the archived item, got %d items", len(archived))
	}
	if archived[0].ArchivedAt == nil || archived[0].ConsumedAt == nil {
		t.Error("expected archive to set both archivedAt and consumedAt")
	}
}

func TestItemRepository_UpdateDerivedFieldsLeavesRestUntouched(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	householdRepo := repository.NewHouseholdRepository(db)
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	ctx := context.Background()

	household := createTestHousehold(t, householdRepo, "ABC234")
	user := createTestUser(t, userRepo)
	item := createTestItem(t, itemRepo, household.ID, user.ID, "Milk")

	expires := time.Now().UTC().AddDate(0, 0, 1)
	if err := itemRepo.UpdateDerivedFields(ctx, item.ID, repository.DerivedFields{
		ExpiresAt:     expires,
		DaysRemaining: 1,
		Status:        models.ItemStatusUseSoon,
		Confidence:    0.9,
	}); err != nil {
		t.Fatalf("updating derived fields: %v", err)
	}

	found, err := itemRepo.FindByID(ctx, household.ID, item.ID)
	if err != nil {
		t.Fatalf("finding item: %v", err)
	}
	if found.Status != models.ItemStatusUseSoon || found.DaysRemaining != 1 || found.Confidence != 0.9 {
		t.Errorf("expected derived fields updated, got %s/%d/%v", found.Status, found.DaysRemaining, found.Confidence)
	}
	if found.Name != "Milk" || found.Quantity != "1" {
		t.Errorf("expected user-entered fields untouched, got %q/%q", found.Name, found.Quantity)
	}
}

func TestItemRepository_Delete(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	householdRepo := repository.NewHouseholdRepository(db)
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	ctx := context.Background()

	household := createTestHousehold(t, householdRepo, "ABC234")
	user := createTestUser(t, userRepo)
	item := createTestItem(t, itemRepo, household.ID, user.ID, "Milk")

	if err := itemRepo.Delete(ctx, item.ID); err != nil {
		t.Fatalf("deleting item: %v", err)
	}

	_, err := itemRepo.FindByID(ctx, household.ID, item.ID)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows after delete, got %v", err)
	}
}
