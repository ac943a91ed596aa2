package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/finsight/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sandbox.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustUser(t *testing.T, s *Store, name string) User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), User{
		Username:       name,
		Email:          name + "@example.com",
		HashedPassword: "x",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func strPtr(s string) *string { return &s }

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sandbox.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		_ = s.Close()
	}
}

func TestCreateUserConflict(t *testing.T) {
	s := openTestStore(t)
	mustUser(t, s, "alice")

	_, err := s.CreateUser(context.Background(), User{Username: "alice", Email: "other@example.com"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestUserLookup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "bob")

	byName, err := s.UserByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("UserByUsername: %v", err)
	}
	if byName.ID != u.ID {
		t.Fatalf("ID = %q, want %q", byName.ID, u.ID)
	}
	if _, err := s.UserByID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestTransactionsNewestFirstAndScoped(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, amount := range []float64{10, 20, 30} {
		_, err := s.InsertTransaction(ctx, alice.ID, model.Transaction{
			Type:   model.Expense,
			Amount: amount,
			Date:   base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("InsertTransaction: %v", err)
		}
	}
	if _, err := s.InsertTransaction(ctx, bob.ID, model.Transaction{Type: model.Income, Amount: 99, Date: base}); err != nil {
		t.Fatalf("InsertTransaction: %v", err)
	}

	got, err := s.ListTransactions(ctx, alice.ID, ListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Amount != 30 || got[1].Amount != 20 {
		t.Fatalf("order = [%v %v], want [30 20]", got[0].Amount, got[1].Amount)
	}
	if got[0].Currency != "€" {
		t.Fatalf("Currency = %q, want default €", got[0].Currency)
	}

	n, err := s.TransactionCount(ctx, bob.ID)
	if err != nil || n != 1 {
		t.Fatalf("bob count = %d, %v; want 1", n, err)
	}
}

func TestListFilterByDateAndType(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "carol")

	march := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	april := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	for _, rec := range []model.Transaction{
		{Type: model.Income, Amount: 100, Date: march},
		{Type: model.Expense, Amount: 40, Date: march},
		{Type: model.Expense, Amount: 5, Date: april},
	} {
		if _, err := s.InsertTransaction(ctx, u.ID, rec); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListTransactions(ctx, u.ID, ListFilter{
		Type:  model.Expense,
		Start: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(got) != 1 || got[0].Amount != 40 {
		t.Fatalf("got %+v, want the single March expense", got)
	}
}

func TestInsertResolvesCategory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "dave")

	cat, err := s.CreateCategory(ctx, u.ID, Category{Name: "Groceries", Color: "#22C55E", Type: model.Expense})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	rec, err := s.InsertTransaction(ctx, u.ID, model.Transaction{
		Type:       model.Expense,
		Amount:     12.5,
		CategoryID: strPtr(cat.ID),
		Tags:       []string{"food"},
		Date:       time.Now(),
	})
	if err != nil {
		t.Fatalf("InsertTransaction: %v", err)
	}

	got, err := s.Transaction(ctx, u.ID, rec.ID)
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}
	if got.Category() != "Groceries" {
		t.Fatalf("Category() = %q, want Groceries", got.Category())
	}
	if len(got.Tags) != 1 || got.Tags[0] != "food" {
		t.Fatalf("Tags = %v", got.Tags)
	}

	cats, err := s.Categories(ctx, u.ID)
	if err != nil || cats[cat.ID].Color != "#22C55E" {
		t.Fatalf("Categories = %v, %v", cats, err)
	}
}

func TestDeleteTransaction(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, s, "erin")
	other := mustUser(t, s, "frank")

	rec, err := s.InsertTransaction(ctx, owner.ID, model.Transaction{Type: model.Income, Amount: 1, Date: time.Now()})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteTransaction(ctx, other.ID, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign delete err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteTransaction(ctx, owner.ID, rec.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if err := s.DeleteTransaction(ctx, owner.ID, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}
