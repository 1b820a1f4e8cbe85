package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"vet-clinic/internal/domain/inventory"
)

type inventoryRepo struct {
	mu   sync.RWMutex
	byID map[string]inventory.Item
}

func NewInventoryRepo() inventory.Repository {
	return &inventoryRepo{
		byID: make(map[string]inventory.Item),
	}
}

func (r *inventoryRepo) Create(ctx context.Context, it inventory.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(it.ID) == "" {
		return errors.New("item id required")
	}
	if _, exists := r.byID[it.ID]; exists {
		return errors.New("item already exists")
	}
	r.byID[it.ID] = it
	return nil
}

func (r *inventoryRepo) Update(ctx context.Context, it inventory.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(it.ID) == "" {
		return errors.New("item id required")
	}
	if _, exists := r.byID[it.ID]; !exists {
		return inventory.ErrNotFound
	}
	r.byID[it.ID] = it
	return nil
}

func (r *inventoryRepo) GetByID(ctx context.Context, id string) (inventory.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.byID[id]
	if !ok {
		return inventory.Item{}, inventory.ErrNotFound
	}
	return it, nil
}

func (r *inventoryRepo) List(ctx context.Context, f inventory.ListFilter) ([]inventory.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]inventory.Item, 0)
	for _, it := range r.byID {
		if f.Query != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(f.Query)) {
			continue
		}
		out = append(out, it)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out, nil
}

// AdjustQuantity aplica el delta bajo el mismo lock para que el stock
// nunca quede negativo aunque lleguen ajustes concurrentes.
func (r *inventoryRepo) AdjustQuantity(ctx context.Context, id string, delta int) (inventory.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.byID[id]
	if !ok {
		return inventory.Item{}, inventory.ErrNotFound
	}

	next := it.Quantity + delta
	if next < 0 {
		return inventory.Item{}, inventory.ErrInsufficientStock
	}

	it.Quantity = next
	r.byID[id] = it
	return it, nil
}
