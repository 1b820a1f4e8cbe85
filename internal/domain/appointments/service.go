package appointments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("appointment not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrConflict        = errors.New("slot already taken for patient")
	ErrBadState        = errors.New("invalid state")
)

type Service struct {
	repo     Repository
	patients PatientDirectory
	now      func() time.Time
}

func NewService(repo Repository, patients PatientDirectory) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		now:      time.Now,
	}
}

type BookInput struct {
	PatientID string
	StartAt   time.Time
	Purpose   string
	Notes     string
}

func (s *Service) Book(ctx context.Context, in BookInput) (Appointment, error) {
	patientID := strings.TrimSpace(in.PatientID)
	purpose := strings.TrimSpace(in.Purpose)

	if patientID == "" || purpose == "" || in.StartAt.IsZero() {
		return Appointment{}, ErrInvalidInput
	}

	ok, err := s.patients.Exists(ctx, patientID)
	if err != nil {
		return Appointment{}, err
	}
	if !ok {
		return Appointment{}, ErrPatientNotFound
	}

	// Sin resolución automática de conflictos: mismo paciente + mismo horario = rechazo.
	taken, err := s.repo.ExistsActiveAt(ctx, patientID, in.StartAt)
	if err != nil {
		return Appointment{}, err
	}
	if taken {
		return Appointment{}, ErrConflict
	}

	now := s.now()
	a := Appointment{
		ID:        uuid.NewString(),
		PatientID: patientID,
		StartAt:   in.StartAt,
		Purpose:   purpose,
		Notes:     strings.TrimSpace(in.Notes),
		Status:    StatusScheduled,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Appointment{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Appointment, error) {
	return s.repo.List(ctx, f)
}

// Cancel marca la cita como cancelada. Idempotente; una cita completada
// ya es terminal y no se puede cancelar.
func (s *Service) Cancel(ctx context.Context, id string) (Appointment, error) {
	return s.transition(ctx, id, StatusCancelled)
}

// Complete marca la cita como completada. Idempotente; una cita cancelada
// ya es terminal y no se puede completar.
func (s *Service) Complete(ctx context.Context, id string) (Appointment, error) {
	return s.transition(ctx, id, StatusCompleted)
}

func (s *Service) transition(ctx context.Context, id string, target Status) (Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Appointment{}, ErrNotFound
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}

	// Idempotente
	if a.Status == target {
		return a, nil
	}
	if a.Status != StatusScheduled {
		return Appointment{}, ErrBadState
	}

	a.Status = target
	a.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

// Snapshot expone (patientID, status) de una cita para otros módulos
// sin obligarlos a importar este paquete completo (ver billing).
func (s *Service) Snapshot(ctx context.Context, id string) (string, string, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", "", err
	}
	return a.PatientID, string(a.Status), nil
}
