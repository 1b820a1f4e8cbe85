package postgres

import (
	"context"
	"database/sql"
	"strings"

	"vet-clinic/internal/domain/inventory"
)

type InventoryRepo struct {
	db *sql.DB
}

func NewInventoryRepo(db *sql.DB) *InventoryRepo {
	return &InventoryRepo{db: db}
}

const itemColumns = `
	id, name,
	quantity, reorder_threshold,
	purchase_price, selling_price,
	purchase_date, expiry_date,
	created_at, updated_at
`

func (r *InventoryRepo) Create(ctx context.Context, it inventory.Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inventory_items (`+itemColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		it.ID,
		it.Name,
		it.Quantity,
		it.ReorderThreshold,
		it.PurchasePrice,
		it.SellingPrice,
		it.PurchaseDate,
		toNullTime(it.ExpiryDate),
		it.CreatedAt,
		it.UpdatedAt,
	)
	return err
}

func (r *InventoryRepo) Update(ctx context.Context, it inventory.Item) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE inventory_items
		SET
			name = $2,
			quantity = $3,
			reorder_threshold = $4,
			purchase_price = $5,
			selling_price = $6,
			purchase_date = $7,
			expiry_date = $8,
			updated_at = $9
		WHERE id = $1
	`,
		it.ID,
		it.Name,
		it.Quantity,
		it.ReorderThreshold,
		it.PurchasePrice,
		it.SellingPrice,
		it.PurchaseDate,
		toNullTime(it.ExpiryDate),
		it.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return inventory.ErrNotFound
	}
	return nil
}

func (r *InventoryRepo) GetByID(ctx context.Context, id string) (inventory.Item, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return inventory.Item{}, inventory.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM inventory_items
		WHERE id = $1
	`, id)

	it, err := scanItem(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return inventory.Item{}, inventory.ErrNotFound
		}
		return inventory.Item{}, err
	}
	return it, nil
}

func (r *InventoryRepo) List(ctx context.Context, f inventory.ListFilter) ([]inventory.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items`
	args := []any{}

	if strings.TrimSpace(f.Query) != "" {
		query += " WHERE name ILIKE $1"
		args = append(args, "%"+strings.TrimSpace(f.Query)+"%")
	}
	query += " ORDER BY name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]inventory.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}

	return out, rows.Err()
}

// AdjustQuantity revalida el stock dentro del propio UPDATE:
// si el delta dejaría la cantidad negativa no afecta ninguna fila.
func (r *InventoryRepo) AdjustQuantity(ctx context.Context, id string, delta int) (inventory.Item, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE inventory_items
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1 AND quantity + $2 >= 0
	`, id, delta)
	if err != nil {
		return inventory.Item{}, err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		// Distinguir "no existe" de "stock insuficiente"
		if _, err := r.GetByID(ctx, id); err != nil {
			return inventory.Item{}, err
		}
		return inventory.Item{}, inventory.ErrInsufficientStock
	}

	return r.GetByID(ctx, id)
}

func scanItem(row rowScanner) (inventory.Item, error) {
	var it inventory.Item
	var exp sql.NullTime

	if err := row.Scan(
		&it.ID,
		&it.Name,
		&it.Quantity,
		&it.ReorderThreshold,
		&it.PurchasePrice,
		&it.SellingPrice,
		&it.PurchaseDate,
		&exp,
		&it.CreatedAt,
		&it.UpdatedAt,
	); err != nil {
		return inventory.Item{}, err
	}

	it.ExpiryDate = fromNullTime(exp)
	return it, nil
}
