package postgres

import (
	"context"
	"database/sql"
	"time"

	"vet-clinic/internal/domain/expenses"
)

type ExpensesRepo struct {
	db *sql.DB
}

func NewExpensesRepo(db *sql.DB) *ExpensesRepo {
	return &ExpensesRepo{db: db}
}

func (r *ExpensesRepo) Create(ctx context.Context, e expenses.Expense) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (
			id, date, category, amount, description, created_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		e.ID,
		e.Date,
		e.Category,
		e.Amount,
		e.Description,
		e.CreatedAt,
	)
	return err
}

func (r *ExpensesRepo) List(ctx context.Context, from, to time.Time) ([]expenses.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, category, amount, description, created_at
		FROM expenses
		WHERE date >= $1 AND date <= $2
		ORDER BY date ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]expenses.Expense, 0)
	for rows.Next() {
		var e expenses.Expense
		if err := rows.Scan(
			&e.ID,
			&e.Date,
			&e.Category,
			&e.Amount,
			&e.Description,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, rows.Err()
}
