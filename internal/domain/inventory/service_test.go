package inventory

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Item
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Item{}}
}

func (r *testRepo) Create(ctx context.Context, it Item) error {
	if it.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[it.ID] = it
	return nil
}

func (r *testRepo) Update(ctx context.Context, it Item) error {
	if _, ok := r.byID[it.ID]; !ok {
		return ErrNotFound
	}
	r.byID[it.ID] = it
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Item, error) {
	it, ok := r.byID[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	return it, nil
}

func (r *testRepo) List(ctx context.Context, f ListFilter) ([]Item, error) {
	out := make([]Item, 0, len(r.byID))
	for _, it := range r.byID {
		out = append(out, it)
	}
	return out, nil
}

func (r *testRepo) AdjustQuantity(ctx context.Context, id string, delta int) (Item, error) {
	it, ok := r.byID[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	if it.Quantity+delta < 0 {
		return Item{}, ErrInsufficientStock
	}
	it.Quantity += delta
	r.byID[id] = it
	return it, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_AddItem_Validation(t *testing.T) {
	svc := NewService(newTestRepo(), 5)

	cases := []AddItemInput{
		{Name: "", Quantity: 1},
		{Name: "Med", Quantity: -1},
		{Name: "Med", Quantity: 1, PurchasePrice: -0.5},
		{Name: "Med", Quantity: 1, SellingPrice: -1},
	}
	for i, in := range cases {
		if _, err := svc.AddItem(context.Background(), in); err != ErrInvalidInput {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestService_AddItem_DefaultsPurchaseDateToNow(t *testing.T) {
	svc := NewService(newTestRepo(), 5)

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	it, err := svc.AddItem(context.Background(), AddItemInput{
		Name:          "Amoxicillin",
		Quantity:      10,
		PurchasePrice: 2,
		SellingPrice:  5,
	})
	if err != nil {
		t.Fatalf("AddItem error: %v", err)
	}
	if !it.PurchaseDate.Equal(now) {
		t.Fatalf("expected purchase date = now, got %v", it.PurchaseDate)
	}
}

func TestService_AdjustStock_NeverGoesNegative(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, 5)

	it, _ := svc.AddItem(context.Background(), AddItemInput{
		Name: "Gauze", Quantity: 3, PurchasePrice: 1, SellingPrice: 2,
	})

	if _, err := svc.AdjustStock(context.Background(), it.ID, -5); err != ErrInsufficientStock {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	after, err := svc.AdjustStock(context.Background(), it.ID, -3)
	if err != nil {
		t.Fatalf("AdjustStock error: %v", err)
	}
	if after.Quantity != 0 {
		t.Fatalf("expected quantity 0, got %d", after.Quantity)
	}
}

func TestService_AdjustStock_ZeroDeltaRejected(t *testing.T) {
	svc := NewService(newTestRepo(), 5)

	if _, err := svc.AdjustStock(context.Background(), "any", 0); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_ReorderAlert_UsesItemOrDefaultThreshold(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, 5)

	// bajo el default (5)
	low, _ := svc.AddItem(context.Background(), AddItemInput{
		Name: "Syringes", Quantity: 3, PurchasePrice: 1, SellingPrice: 2,
	})
	// sobre el default
	_, _ = svc.AddItem(context.Background(), AddItemInput{
		Name: "Gloves", Quantity: 50, PurchasePrice: 1, SellingPrice: 2,
	})
	// umbral propio (20), cantidad 10 => alerta
	own, _ := svc.AddItem(context.Background(), AddItemInput{
		Name: "Vaccine doses", Quantity: 10, ReorderThreshold: 20, PurchasePrice: 5, SellingPrice: 12,
	})

	items, err := svc.ReorderAlert(context.Background())
	if err != nil {
		t.Fatalf("ReorderAlert error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(items))
	}

	got := map[string]bool{}
	for _, it := range items {
		got[it.ID] = true
	}
	if !got[low.ID] || !got[own.ID] {
		t.Fatalf("expected alerts for %s and %s, got %v", low.Name, own.Name, got)
	}
}

func TestService_ExpiryAlert_Window(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, 5)

	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	soon := now.Add(10 * 24 * time.Hour)
	far := now.Add(90 * 24 * time.Hour)

	expiring, _ := svc.AddItem(context.Background(), AddItemInput{
		Name: "Insulin", Quantity: 5, PurchasePrice: 10, SellingPrice: 20, ExpiryDate: &soon,
	})
	_, _ = svc.AddItem(context.Background(), AddItemInput{
		Name: "Dry food", Quantity: 5, PurchasePrice: 3, SellingPrice: 6, ExpiryDate: &far,
	})
	_, _ = svc.AddItem(context.Background(), AddItemInput{
		Name: "Collar", Quantity: 5, PurchasePrice: 2, SellingPrice: 4, // sin vencimiento
	})

	// default 30 días
	items, err := svc.ExpiryAlert(context.Background(), 0)
	if err != nil {
		t.Fatalf("ExpiryAlert error: %v", err)
	}
	if len(items) != 1 || items[0].ID != expiring.ID {
		t.Fatalf("expected only %s expiring, got %d items", expiring.Name, len(items))
	}

	// ventana amplia: entran los dos con vencimiento
	items, _ = svc.ExpiryAlert(context.Background(), 120*24*time.Hour)
	if len(items) != 2 {
		t.Fatalf("expected 2 items in wide window, got %d", len(items))
	}
}

func TestItem_Profit(t *testing.T) {
	it := Item{Quantity: 4, PurchasePrice: 2.5, SellingPrice: 6}
	if got := it.Profit(); got != 14 {
		t.Fatalf("expected profit 14, got %v", got)
	}
}
