package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"vet-clinic/internal/domain/patients"
)

type OwnersRepo struct {
	db *sql.DB
}

func NewOwnersRepo(db *sql.DB) *OwnersRepo {
	return &OwnersRepo{db: db}
}

func (r *OwnersRepo) Create(ctx context.Context, o patients.Owner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO owners (
			id, name, phone, email, address,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		o.ID,
		o.Name,
		o.Phone,
		o.Email,
		o.Address,
		o.CreatedAt,
		o.UpdatedAt,
	)
	return err
}

func (r *OwnersRepo) GetByID(ctx context.Context, id string) (patients.Owner, error) {
	return r.getBy(ctx, "id", id)
}

func (r *OwnersRepo) GetByPhone(ctx context.Context, phone string) (patients.Owner, error) {
	return r.getBy(ctx, "phone", phone)
}

func (r *OwnersRepo) getBy(ctx context.Context, col, val string) (patients.Owner, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return patients.Owner{}, patients.ErrOwnerNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, phone, email, address, created_at, updated_at
		FROM owners
		WHERE `+col+` = $1
	`, val)

	var o patients.Owner
	if err := row.Scan(
		&o.ID,
		&o.Name,
		&o.Phone,
		&o.Email,
		&o.Address,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return patients.Owner{}, patients.ErrOwnerNotFound
		}
		return patients.Owner{}, err
	}

	return o, nil
}

func (r *OwnersRepo) List(ctx context.Context) ([]patients.Owner, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, phone, email, address, created_at, updated_at
		FROM owners
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]patients.Owner, 0)
	for rows.Next() {
		var o patients.Owner
		if err := rows.Scan(
			&o.ID,
			&o.Name,
			&o.Phone,
			&o.Email,
			&o.Address,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}

	return out, rows.Err()
}

type PatientsRepo struct {
	db *sql.DB
}

func NewPatientsRepo(db *sql.DB) *PatientsRepo {
	return &PatientsRepo{db: db}
}

const patientColumns = `
	id, owner_id,
	name, species, sex,
	birth_date, weight_kg, notes,
	archived, archived_at,
	created_at, updated_at
`

func (r *PatientsRepo) Create(ctx context.Context, p patients.Patient) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO patients (`+patientColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		p.ID,
		p.OwnerID,
		p.Name,
		string(p.Species),
		string(p.Sex),
		toNullTime(p.BirthDate),
		p.WeightKg,
		p.Notes,
		p.Archived,
		toNullTime(p.ArchivedAt),
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PatientsRepo) Update(ctx context.Context, p patients.Patient) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE patients
		SET
			name = $2,
			species = $3,
			sex = $4,
			birth_date = $5,
			weight_kg = $6,
			notes = $7,
			archived = $8,
			archived_at = $9,
			updated_at = $10
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		string(p.Species),
		string(p.Sex),
		toNullTime(p.BirthDate),
		p.WeightKg,
		p.Notes,
		p.Archived,
		toNullTime(p.ArchivedAt),
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return patients.ErrNotFound
	}
	return nil
}

func (r *PatientsRepo) GetByID(ctx context.Context, id string) (patients.Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return patients.Patient{}, patients.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE id = $1
	`, id)

	p, err := scanPatient(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return patients.Patient{}, patients.ErrNotFound
		}
		return patients.Patient{}, err
	}
	return p, nil
}

func (r *PatientsRepo) List(ctx context.Context, f patients.ListFilter) ([]patients.Patient, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + patientColumns + ` FROM patients WHERE 1=1`)

	args := []any{}
	argN := 1

	if !f.IncludeArchived {
		sb.WriteString(" AND archived = FALSE")
	}
	if f.OwnerID != "" {
		sb.WriteString(fmt.Sprintf(" AND owner_id = $%d", argN))
		args = append(args, f.OwnerID)
		argN++
	}
	if f.Species != "" {
		sb.WriteString(fmt.Sprintf(" AND species = $%d", argN))
		args = append(args, string(f.Species))
		argN++
	}
	if strings.TrimSpace(f.Query) != "" {
		sb.WriteString(fmt.Sprintf(" AND name ILIKE $%d", argN))
		args = append(args, "%"+strings.TrimSpace(f.Query)+"%")
		argN++
	}

	sb.WriteString(" ORDER BY created_at ASC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]patients.Patient, 0)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (patients.Patient, error) {
	var p patients.Patient
	var species, sex string
	var bd, aa sql.NullTime

	if err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&species,
		&sex,
		&bd,
		&p.WeightKg,
		&p.Notes,
		&p.Archived,
		&aa,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return patients.Patient{}, err
	}

	p.Species = patients.Species(species)
	p.Sex = patients.Sex(sex)
	p.BirthDate = fromNullTime(bd)
	p.ArchivedAt = fromNullTime(aa)

	return p, nil
}

type VaccinesRepo struct {
	db *sql.DB
}

func NewVaccinesRepo(db *sql.DB) *VaccinesRepo {
	return &VaccinesRepo{db: db}
}

func (r *VaccinesRepo) Create(ctx context.Context, v patients.Vaccine) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vaccines (
			id, patient_id, type, applied_at, next_due_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		v.ID,
		v.PatientID,
		v.Type,
		v.AppliedAt,
		toNullTime(v.NextDueAt),
		v.CreatedAt,
	)
	return err
}

func (r *VaccinesRepo) ListByPatient(ctx context.Context, patientID string) ([]patients.Vaccine, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, patient_id, type, applied_at, next_due_at, created_at
		FROM vaccines
		WHERE patient_id = $1
		ORDER BY applied_at ASC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]patients.Vaccine, 0)
	for rows.Next() {
		var v patients.Vaccine
		var nd sql.NullTime
		if err := rows.Scan(
			&v.ID,
			&v.PatientID,
			&v.Type,
			&v.AppliedAt,
			&nd,
			&v.CreatedAt,
		); err != nil {
			return nil, err
		}
		v.NextDueAt = fromNullTime(nd)
		out = append(out, v)
	}

	return out, rows.Err()
}

func (r *VaccinesRepo) ListDueBefore(ctx context.Context, cutoff time.Time) ([]patients.Vaccine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, patient_id, type, applied_at, next_due_at, created_at
		FROM vaccines
		WHERE next_due_at IS NOT NULL AND next_due_at <= $1
		ORDER BY next_due_at ASC
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]patients.Vaccine, 0)
	for rows.Next() {
		var v patients.Vaccine
		var nd sql.NullTime
		if err := rows.Scan(
			&v.ID,
			&v.PatientID,
			&v.Type,
			&v.AppliedAt,
			&nd,
			&v.CreatedAt,
		); err != nil {
			return nil, err
		}
		v.NextDueAt = fromNullTime(nd)
		out = append(out, v)
	}

	return out, rows.Err()
}
