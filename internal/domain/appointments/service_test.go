package appointments

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Appointment
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Appointment{}}
}

func (r *testRepo) Create(ctx context.Context, a Appointment) error {
	if a.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) Update(ctx context.Context, a Appointment) error {
	if _, ok := r.byID[a.ID]; !ok {
		return ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Appointment, error) {
	a, ok := r.byID[id]
	if !ok {
		return Appointment{}, ErrNotFound
	}
	return a, nil
}

func (r *testRepo) List(ctx context.Context, f ListFilter) ([]Appointment, error) {
	out := make([]Appointment, 0)
	for _, a := range r.byID {
		if f.PatientID != "" && a.PatientID != f.PatientID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *testRepo) ExistsActiveAt(ctx context.Context, patientID string, startAt time.Time) (bool, error) {
	for _, a := range r.byID {
		if a.PatientID == patientID && a.StartAt.Equal(startAt) && a.Status != StatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

// stubDirectory simula el módulo de pacientes.
type stubDirectory struct {
	known map[string]bool
}

func (d stubDirectory) Exists(ctx context.Context, patientID string) (bool, error) {
	return d.known[patientID], nil
}

func newTestService(knownPatients ...string) (*Service, *testRepo) {
	repo := newTestRepo()
	known := map[string]bool{}
	for _, id := range knownPatients {
		known[id] = true
	}
	return NewService(repo, stubDirectory{known: known}), repo
}

// -------------------------
// Tests
// -------------------------

var slot = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func TestService_Book_UnknownPatient(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Book(context.Background(), BookInput{
		PatientID: "ghost",
		StartAt:   slot,
		Purpose:   "checkup",
	})
	if err != ErrPatientNotFound {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestService_Book_RejectsDoubleBooking(t *testing.T) {
	svc, _ := newTestService("pat-1")

	if _, err := svc.Book(context.Background(), BookInput{
		PatientID: "pat-1",
		StartAt:   slot,
		Purpose:   "checkup",
	}); err != nil {
		t.Fatalf("Book #1 error: %v", err)
	}

	_, err := svc.Book(context.Background(), BookInput{
		PatientID: "pat-1",
		StartAt:   slot,
		Purpose:   "another",
	})
	if err != ErrConflict {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestService_Book_CancelledSlotCanBeRebooked(t *testing.T) {
	svc, _ := newTestService("pat-1")

	a, err := svc.Book(context.Background(), BookInput{
		PatientID: "pat-1",
		StartAt:   slot,
		Purpose:   "checkup",
	})
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}

	if _, err := svc.Cancel(context.Background(), a.ID); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}

	if _, err := svc.Book(context.Background(), BookInput{
		PatientID: "pat-1",
		StartAt:   slot,
		Purpose:   "retry",
	}); err != nil {
		t.Fatalf("expected rebooking after cancel to succeed, got %v", err)
	}
}

func TestService_Transitions_IdempotentAndTerminal(t *testing.T) {
	svc, _ := newTestService("pat-1")

	a, err := svc.Book(context.Background(), BookInput{
		PatientID: "pat-1",
		StartAt:   slot,
		Purpose:   "checkup",
	})
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}

	done, err := svc.Complete(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", done.Status)
	}

	// Completar de nuevo: idempotente
	if _, err := svc.Complete(context.Background(), a.ID); err != nil {
		t.Fatalf("Complete #2 error: %v", err)
	}

	// Cancelar una completada: estado terminal
	if _, err := svc.Cancel(context.Background(), a.ID); err != ErrBadState {
		t.Fatalf("expected ErrBadState cancelling completed, got %v", err)
	}
}

func TestService_Book_RequiresPurpose(t *testing.T) {
	svc, _ := newTestService("pat-1")

	_, err := svc.Book(context.Background(), BookInput{
		PatientID: "pat-1",
		StartAt:   slot,
		Purpose:   "   ",
	})
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Snapshot(t *testing.T) {
	svc, _ := newTestService("pat-1")

	a, err := svc.Book(context.Background(), BookInput{
		PatientID: "pat-1",
		StartAt:   slot,
		Purpose:   "checkup",
	})
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}

	patientID, status, err := svc.Snapshot(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if patientID != "pat-1" || status != string(StatusScheduled) {
		t.Fatalf("unexpected snapshot: %s %s", patientID, status)
	}

	if _, _, err := svc.Snapshot(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
