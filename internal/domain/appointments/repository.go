package appointments

import (
	"context"
	"time"
)

type ListFilter struct {
	PatientID string
	Status    Status
	From      *time.Time
	To        *time.Time
	Limit     int
}

type Repository interface {
	Create(ctx context.Context, a Appointment) error
	Update(ctx context.Context, a Appointment) error
	GetByID(ctx context.Context, id string) (Appointment, error)
	List(ctx context.Context, f ListFilter) ([]Appointment, error)

	// ExistsActiveAt responde si el paciente ya tiene una cita no-cancelada
	// exactamente en ese horario.
	ExistsActiveAt(ctx context.Context, patientID string, startAt time.Time) (bool, error)
}

// PatientDirectory valida que el paciente exista sin importar el módulo patients
// (evita ciclos de imports).
type PatientDirectory interface {
	Exists(ctx context.Context, patientID string) (bool, error)
}
