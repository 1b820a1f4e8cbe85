package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"vet-clinic/internal/domain/expenses"
)

type expenseRepo struct {
	mu   sync.RWMutex
	byID map[string]expenses.Expense
}

func NewExpenseRepo() expenses.Repository {
	return &expenseRepo{
		byID: make(map[string]expenses.Expense),
	}
}

func (r *expenseRepo) Create(ctx context.Context, e expenses.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(e.ID) == "" {
		return errors.New("expense id required")
	}
	if _, exists := r.byID[e.ID]; exists {
		return errors.New("expense already exists")
	}
	r.byID[e.ID] = e
	return nil
}

func (r *expenseRepo) List(ctx context.Context, from, to time.Time) ([]expenses.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]expenses.Expense, 0)
	for _, e := range r.byID {
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})

	return out, nil
}
