package expenses

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, e Expense) error
	List(ctx context.Context, from, to time.Time) ([]Expense, error)
}
