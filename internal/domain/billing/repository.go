package billing

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
	Create(ctx context.Context, inv Invoice) error
	Update(ctx context.Context, inv Invoice) error
	GetByID(ctx context.Context, id string) (Invoice, error)
	GetByAppointment(ctx context.Context, appointmentID string) (Invoice, error)
	List(ctx context.Context, f ListFilter) ([]Invoice, error)
}

// AppointmentSource expone (patientID, status) de una cita sin importar
// el módulo appointments (evita ciclos de imports).
type AppointmentSource interface {
	Snapshot(ctx context.Context, appointmentID string) (patientID string, status string, err error)
}

// Stock es lo mínimo que billing necesita del inventario para consumir
// líneas de stock al facturar.
type Stock interface {
	GetQuantity(ctx context.Context, itemID string) (int, error)
	Deduct(ctx context.Context, itemID string, qty int) error
	Restock(ctx context.Context, itemID string, qty int) error
}
