package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"vet-clinic/internal/domain/appointments"
)

type AppointmentsRepo struct {
	db *sql.DB
}

func NewAppointmentsRepo(db *sql.DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

func (r *AppointmentsRepo) Create(ctx context.Context, a appointments.Appointment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO appointments (
			id, patient_id,
			start_at, purpose, notes,
			status,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		a.ID,
		a.PatientID,
		a.StartAt,
		a.Purpose,
		a.Notes,
		string(a.Status),
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AppointmentsRepo) Update(ctx context.Context, a appointments.Appointment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET
			start_at = $2,
			purpose = $3,
			notes = $4,
			status = $5,
			updated_at = $6
		WHERE id = $1
	`,
		a.ID,
		a.StartAt,
		a.Purpose,
		a.Notes,
		string(a.Status),
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return appointments.ErrNotFound
	}
	return nil
}

func (r *AppointmentsRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return appointments.Appointment{}, appointments.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, patient_id, start_at, purpose, notes, status, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`, id)

	var a appointments.Appointment
	var status string
	if err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.StartAt,
		&a.Purpose,
		&a.Notes,
		&status,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return appointments.Appointment{}, appointments.ErrNotFound
		}
		return appointments.Appointment{}, err
	}

	a.Status = appointments.Status(status)
	return a, nil
}

func (r *AppointmentsRepo) List(ctx context.Context, f appointments.ListFilter) ([]appointments.Appointment, error) {
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT id, patient_id, start_at, purpose, notes, status, created_at, updated_at
		FROM appointments
		WHERE 1=1
	`)

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
		sb.WriteString(fmt.Sprintf(" AND start_at >= $%d", argN))
		args = append(args, *f.From)
		argN++
	}
	if f.To != nil {
		sb.WriteString(fmt.Sprintf(" AND start_at <= $%d", argN))
		args = append(args, *f.To)
		argN++
	}

	sb.WriteString(" ORDER BY start_at ASC")

	if f.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		var a appointments.Appointment
		var status string
		if err := rows.Scan(
			&a.ID,
			&a.PatientID,
			&a.StartAt,
			&a.Purpose,
			&a.Notes,
			&status,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		a.Status = appointments.Status(status)
		out = append(out, a)
	}

	return out, rows.Err()
}

func (r *AppointmentsRepo) ExistsActiveAt(ctx context.Context, patientID string, startAt time.Time) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE patient_id = $1
			  AND start_at = $2
			  AND status <> 'cancelled'
		)
	`, patientID, startAt)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
