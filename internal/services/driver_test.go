package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/HerbHall/drivermatch/internal/services"
	"github.com/HerbHall/drivermatch/internal/testutil"
	"github.com/HerbHall/drivermatch/pkg/models"
)

func newDriverRepo(t *testing.T) services.DriverRepository {
	t.Helper()
	store := testutil.NewStore(t)
	repo, err := services.NewSQLiteDriverRepository(context.Background(), store)
	if err != nil {
		t.Fatalf("NewSQLiteDriverRepository: %v", err)
	}
	return repo
}

func seedDrivers(t *testing.T, repo services.DriverRepository) []models.DriverUnit {
	t.Helper()
	drivers := []models.DriverUnit{
		testutil.NewDriver(testutil.WithName("Slim"), testutil.WithWattage(60)),
		testutil.NewDriver(testutil.WithName("Slim"), testutil.WithWattage(150), testutil.WithPrice(700)),
		testutil.NewDriver(testutil.WithName("Rain"), testutil.WithVoltage(24), testutil.WithLocation("Outdoor")),
		testutil.NewDriver(testutil.WithName("Rain"), testutil.WithWattage(200), testutil.WithLocation("outdoor")),
	}
	n, err := repo.BulkInsert(context.Background(), drivers)
	if err != nil {
		t.Fatalf("BulkInsert: %v", err)
	}
	if n != len(drivers) {
		t.Fatalf("BulkInsert = %d, want %d", n, len(drivers))
	}
	return drivers
}

func TestSQLiteDriverRepository_CreateAndGet(t *testing.T) {
	repo := newDriverRepo(t)
	ctx := context.Background()

	d := testutil.NewDriver()
	if err := repo.Create(ctx, &d); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.ID == "" {
		t.Fatal("Create did not assign an ID")
	}

	got, err := repo.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != d.Name || got.Voltage != d.Voltage || got.Wattage != d.Wattage {
		t.Errorf("Get = %+v, want %+v", got, d)
	}
	if got.Price != 450 || got.Location != "Indoor" {
		t.Errorf("Price/Location = %v/%q, want 450/Indoor", got.Price, got.Location)
	}
}

func TestSQLiteDriverRepository_CreateDuplicateID(t *testing.T) {
	repo := newDriverRepo(t)
	ctx := context.Background()

	d := testutil.NewDriver()
	d.ID = "fixed"
	if err := repo.Create(ctx, &d); err != nil {
		t.Fatalf("Create: %v", err)
	}
	dup := testutil.NewDriver()
	dup.ID = "fixed"
	if err := repo.Create(ctx, &dup); !errors.Is(err, services.ErrAlreadyExists) {
		t.Errorf("Create duplicate error = %v, want ErrAlreadyExists", err)
	}
}

func TestSQLiteDriverRepository_GetNotFound(t *testing.T) {
	repo := newDriverRepo(t)
	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteDriverRepository_AllFilters(t *testing.T) {
	repo := newDriverRepo(t)
	seedDrivers(t, repo)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter services.DriverFilter
		want   int
	}{
		{"everything", services.DriverFilter{}, 4},
		{"both", services.DriverFilter{Location: "both"}, 4},
		{"outdoor any case", services.DriverFilter{Location: "OUTDOOR"}, 2},
		{"indoor 12V", services.DriverFilter{Location: "indoor", Voltage: 12}, 2},
		{"24V", services.DriverFilter{Voltage: 24}, 1},
		{"no match", services.DriverFilter{Voltage: 48}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.All(ctx, tt.filter)
			if err != nil {
				t.Fatalf("All: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("All(%+v) = %d drivers, want %d", tt.filter, len(got), tt.want)
			}
		})
	}
}

func TestSQLiteDriverRepository_AllKeepsInsertionOrder(t *testing.T) {
	repo := newDriverRepo(t)
	seeded := seedDrivers(t, repo)

	got, err := repo.All(context.Background(), services.DriverFilter{})
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	for i := range seeded {
		if got[i].ID != seeded[i].ID {
			t.Errorf("All()[%d].ID = %q, want %q", i, got[i].ID, seeded[i].ID)
		}
	}
}

func TestSQLiteDriverRepository_ListPaginationAndSort(t *testing.T) {
	repo := newDriverRepo(t)
	seedDrivers(t, repo)
	ctx := context.Background()

	res, err := repo.List(ctx, services.DriverFilter{}, services.ListOptions{Limit: 2, SortBy: "wattage", SortOrder: "desc"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Total != 4 {
		t.Errorf("Total = %d, want 4", res.Total)
	}
	if len(res.Items) != 2 {
		t.Fatalf("Items = %d, want 2", len(res.Items))
	}
	if res.Items[0].Wattage != 200 || res.Items[1].Wattage != 150 {
		t.Errorf("wattages = %v, %v, want 200, 150", res.Items[0].Wattage, res.Items[1].Wattage)
	}

	res, err = repo.List(ctx, services.DriverFilter{}, services.ListOptions{Limit: 2, Offset: 10})
	if err != nil {
		t.Fatalf("List offset: %v", err)
	}
	if res.Items == nil || len(res.Items) != 0 {
		t.Errorf("Items past the end = %v, want empty slice", res.Items)
	}
}

func TestSQLiteDriverRepository_DeleteAndCount(t *testing.T) {
	repo := newDriverRepo(t)
	seeded := seedDrivers(t, repo)
	ctx := context.Background()

	if err := repo.Delete(ctx, seeded[0].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, seeded[0].ID); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
}

func TestSQLiteDriverRepository_BulkInsertIsAtomic(t *testing.T) {
	repo := newDriverRepo(t)
	ctx := context.Background()

	a := testutil.NewDriver()
	a.ID = "same"
	b := testutil.NewDriver()
	b.ID = "same"
	if _, err := repo.BulkInsert(ctx, []models.DriverUnit{a, b}); !errors.Is(err, services.ErrAlreadyExists) {
		t.Fatalf("BulkInsert error = %v, want ErrAlreadyExists", err)
	}
	if n, _ := repo.Count(ctx); n != 0 {
		t.Errorf("Count after failed bulk insert = %d, want 0", n)
	}
}
