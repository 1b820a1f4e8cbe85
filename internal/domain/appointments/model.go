package appointments

import "time"

// Status define el ciclo de vida de una cita.
// scheduled -> completed | cancelled (ambos terminales).
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type Appointment struct {
	ID        string
	PatientID string

	StartAt time.Time
	Purpose string
	Notes   string

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
