package patients

import (
	"context"
	"time"
)

type ListFilter struct {
	OwnerID         string
	Species         Species
	Query           string // búsqueda simple por nombre
	IncludeArchived bool
}

type OwnerRepository interface {
	Create(ctx context.Context, o Owner) error
	GetByID(ctx context.Context, id string) (Owner, error)
	GetByPhone(ctx context.Context, phone string) (Owner, error)
	List(ctx context.Context) ([]Owner, error)
}

type Repository interface {
	Create(ctx context.Context, p Patient) error
	Update(ctx context.Context, p Patient) error
	GetByID(ctx context.Context, id string) (Patient, error)
	List(ctx context.Context, f ListFilter) ([]Patient, error)
}

type VaccineRepository interface {
	Create(ctx context.Context, v Vaccine) error
	ListByPatient(ctx context.Context, patientID string) ([]Vaccine, error)

	// ListDueBefore lista las vacunas con próxima dosis en o antes del corte
	// (las vencidas también: siguen necesitando recordatorio).
	ListDueBefore(ctx context.Context, cutoff time.Time) ([]Vaccine, error)
}
