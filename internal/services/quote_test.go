package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/HerbHall/drivermatch/internal/services"
	"github.com/HerbHall/drivermatch/internal/testutil"
)

func newQuoteRepo(t *testing.T) services.QuoteRepository {
	t.Helper()
	store := testutil.NewStore(t)
	repo, err := services.NewSQLiteQuoteRepository(context.Background(), store)
	if err != nil {
		t.Fatalf("NewSQLiteQuoteRepository: %v", err)
	}
	return repo
}

func TestSQLiteQuoteRepository_AddAndList(t *testing.T) {
	repo := newQuoteRepo(t)
	ctx := context.Background()

	for _, brand := range []string{"A", "B", "C"} {
		l := testutil.NewQuoteLine("q1")
		l.Brand = brand
		if err := repo.AddLine(ctx, &l); err != nil {
			t.Fatalf("AddLine(%s): %v", brand, err)
		}
	}
	other := testutil.NewQuoteLine("q2")
	if err := repo.AddLine(ctx, &other); err != nil {
		t.Fatalf("AddLine(q2): %v", err)
	}
	if other.Position != 1 {
		t.Errorf("first line of q2 Position = %d, want 1", other.Position)
	}

	lines, err := repo.ListLines(ctx, "q1")
	if err != nil {
		t.Fatalf("ListLines: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("ListLines = %d lines, want 3", len(lines))
	}
	for i, want := range []string{"A", "B", "C"} {
		if lines[i].Brand != want || lines[i].Position != i+1 {
			t.Errorf("lines[%d] = %s/%d, want %s/%d", i, lines[i].Brand, lines[i].Position, want, i+1)
		}
	}
	if lines[0].CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
}

func TestSQLiteQuoteRepository_AddLineRequiresQuoteID(t *testing.T) {
	repo := newQuoteRepo(t)
	l := testutil.NewQuoteLine("")
	if err := repo.AddLine(context.Background(), &l); err == nil {
		t.Error("expected error for empty quote id")
	}
}

func TestSQLiteQuoteRepository_UpdateLine(t *testing.T) {
	repo := newQuoteRepo(t)
	ctx := context.Background()

	l := testutil.NewQuoteLine("q1")
	if err := repo.AddLine(ctx, &l); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	l.Price = 999
	l.DiscountPercent = 15
	if err := repo.UpdateLine(ctx, &l); err != nil {
		t.Fatalf("UpdateLine: %v", err)
	}

	got, err := repo.GetLine(ctx, "q1", l.ID)
	if err != nil {
		t.Fatalf("GetLine: %v", err)
	}
	if got.Price != 999 || got.DiscountPercent != 15 {
		t.Errorf("updated line = %v/%v, want 999/15", got.Price, got.DiscountPercent)
	}

	l.ID = "missing"
	if err := repo.UpdateLine(ctx, &l); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("UpdateLine missing error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteQuoteRepository_DeleteAndClear(t *testing.T) {
	repo := newQuoteRepo(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		l := testutil.NewQuoteLine("q1")
		if err := repo.AddLine(ctx, &l); err != nil {
			t.Fatalf("AddLine: %v", err)
		}
		ids = append(ids, l.ID)
	}

	if err := repo.DeleteLine(ctx, "q1", ids[0]); err != nil {
		t.Fatalf("DeleteLine: %v", err)
	}
	if err := repo.DeleteLine(ctx, "other", ids[1]); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("DeleteLine wrong quote error = %v, want ErrNotFound", err)
	}

	n, err := repo.Clear(ctx, "q1")
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 2 {
		t.Errorf("Clear removed %d, want 2", n)
	}
	lines, _ := repo.ListLines(ctx, "q1")
	if len(lines) != 0 {
		t.Errorf("ListLines after Clear = %d, want 0", len(lines))
	}
}
