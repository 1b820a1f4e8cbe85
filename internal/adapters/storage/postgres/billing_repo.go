package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"vet-clinic/internal/domain/billing"
)

type BillingRepo struct {
	db *sql.DB
}

func NewBillingRepo(db *sql.DB) *BillingRepo {
	return &BillingRepo{db: db}
}

const invoiceColumns = `
	id, number,
	appointment_id, patient_id,
	lines,
	subtotal, discount_pct, discount_amount, tax_pct, tax_amount, total,
	amount_paid, status,
	issued_at, paid_at, updated_at
`

func (r *BillingRepo) Create(ctx context.Context, inv billing.Invoice) error {
	lines, err := json.Marshal(inv.Lines)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		inv.ID,
		inv.Number,
		inv.AppointmentID,
		inv.PatientID,
		lines,
		inv.Subtotal,
		inv.DiscountPct,
		inv.DiscountAmount,
		inv.TaxPct,
		inv.TaxAmount,
		inv.Total,
		inv.AmountPaid,
		string(inv.Status),
		inv.IssuedAt,
		toNullTime(inv.PaidAt),
		inv.UpdatedAt,
	)
	return err
}

func (r *BillingRepo) Update(ctx context.Context, inv billing.Invoice) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invoices
		SET
			amount_paid = $2,
			status = $3,
			paid_at = $4,
			updated_at = $5
		WHERE id = $1
	`,
		inv.ID,
		inv.AmountPaid,
		string(inv.Status),
		toNullTime(inv.PaidAt),
		inv.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return billing.ErrNotFound
	}
	return nil
}

func (r *BillingRepo) GetByID(ctx context.Context, id string) (billing.Invoice, error) {
	return r.getBy(ctx, "id", id)
}

func (r *BillingRepo) GetByAppointment(ctx context.Context, appointmentID string) (billing.Invoice, error) {
	return r.getBy(ctx, "appointment_id", appointmentID)
}

func (r *BillingRepo) getBy(ctx context.Context, col, val string) (billing.Invoice, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return billing.Invoice{}, billing.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE `+col+` = $1
	`, val)

	inv, err := scanInvoice(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return billing.Invoice{}, billing.ErrNotFound
		}
		return billing.Invoice{}, err
	}
	return inv, nil
}

func (r *BillingRepo) List(ctx context.Context, f billing.ListFilter) ([]billing.Invoice, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`)

	args := []any{}
	argN := 1

	if f.PatientID != "" {
		sb.WriteString(fmt.Sprintf(" AND patient_id = $%d", argN))
		args = append(args, f.PatientID)
		argN++
	}
	if f.Status != "" {
		sb.WriteString(fmt.Sprintf(" AND status = $%d", argN))
		args = append(args, string(f.Status))
		argN++
	}
	if f.From != nil {
		sb.WriteString(fmt.Sprintf(" AND issued_at >= $%d", argN))
		args = append(args, *f.From)
		argN++
	}
	if f.To != nil {
		sb.WriteString(fmt.Sprintf(" AND issued_at <= $%d", argN))
		args = append(args, *f.To)
		argN++
	}

	sb.WriteString(" ORDER BY issued_at ASC")

	if f.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]billing.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}

	return out, rows.Err()
}

func scanInvoice(row rowScanner) (billing.Invoice, error) {
	var inv billing.Invoice
	var status string
	var lines []byte
	var paidAt sql.NullTime

	if err := row.Scan(
		&inv.ID,
		&inv.Number,
		&inv.AppointmentID,
		&inv.PatientID,
		&lines,
		&inv.Subtotal,
		&inv.DiscountPct,
		&inv.DiscountAmount,
		&inv.TaxPct,
		&inv.TaxAmount,
		&inv.Total,
		&inv.AmountPaid,
		&status,
		&inv.IssuedAt,
		&paidAt,
		&inv.UpdatedAt,
	); err != nil {
		return billing.Invoice{}, err
	}

	if len(lines) > 0 {
		if err := json.Unmarshal(lines, &inv.Lines); err != nil {
			return billing.Invoice{}, err
		}
	}

	inv.Status = billing.Status(status)
	inv.PaidAt = fromNullTime(paidAt)
	return inv, nil
}
