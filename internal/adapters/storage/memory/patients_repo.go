package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"vet-clinic/internal/domain/patients"
)

type ownerRepo struct {
	mu   sync.RWMutex
	byID map[string]patients.Owner
}

func NewOwnerRepo() patients.OwnerRepository {
	return &ownerRepo{
		byID: make(map[string]patients.Owner),
	}
}

func (r *ownerRepo) Create(ctx context.Context, o patients.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(o.ID) == "" {
		return errors.New("owner id required")
	}
	if _, exists := r.byID[o.ID]; exists {
		return errors.New("owner already exists")
	}
	r.byID[o.ID] = o
	return nil
}

func (r *ownerRepo) GetByID(ctx context.Context, id string) (patients.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return patients.Owner{}, patients.ErrOwnerNotFound
	}
	return o, nil
}

func (r *ownerRepo) GetByPhone(ctx context.Context, phone string) (patients.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.byID {
		if o.Phone == phone {
			return o, nil
		}
	}
	return patients.Owner{}, patients.ErrOwnerNotFound
}

func (r *ownerRepo) List(ctx context.Context) ([]patients.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]patients.Owner, 0, len(r.byID))
	for _, o := range r.byID {
		out = append(out, o)
	}

	// Orden estable por created_at asc (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

type patientRepo struct {
	mu   sync.RWMutex
	byID map[string]patients.Patient
}

func NewPatientRepo() patients.Repository {
	return &patientRepo{
		byID: make(map[string]patients.Patient),
	}
}

func (r *patientRepo) Create(ctx context.Context, p patients.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("patient id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("patient already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *patientRepo) Update(ctx context.Context, p patients.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("patient id required")
	}
	if _, exists := r.byID[p.ID]; !exists {
		return patients.ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *patientRepo) GetByID(ctx context.Context, id string) (patients.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return patients.Patient{}, patients.ErrNotFound
	}
	return p, nil
}

func (r *patientRepo) List(ctx context.Context, f patients.ListFilter) ([]patients.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]patients.Patient, 0)
	for _, p := range r.byID {
		if p.Archived && !f.IncludeArchived {
			continue
		}
		if f.OwnerID != "" && p.OwnerID != f.OwnerID {
			continue
		}
		if f.Species != "" && p.Species != f.Species {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Query)) {
			continue
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

type vaccineRepo struct {
	mu        sync.RWMutex
	byPatient map[string][]patients.Vaccine
}

func NewVaccineRepo() patients.VaccineRepository {
	return &vaccineRepo{
		byPatient: make(map[string][]patients.Vaccine),
	}
}

func (r *vaccineRepo) Create(ctx context.Context, v patients.Vaccine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(v.ID) == "" || strings.TrimSpace(v.PatientID) == "" {
		return errors.New("vaccine id and patient id required")
	}
	r.byPatient[v.PatientID] = append(r.byPatient[v.PatientID], v)
	return nil
}

func (r *vaccineRepo) ListByPatient(ctx context.Context, patientID string) ([]patients.Vaccine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src := r.byPatient[patientID]
	out := make([]patients.Vaccine, len(src))
	copy(out, src)

	sort.Slice(out, func(i, j int) bool {
		return out[i].AppliedAt.Before(out[j].AppliedAt)
	})

	return out, nil
}

func (r *vaccineRepo) ListDueBefore(ctx context.Context, cutoff time.Time) ([]patients.Vaccine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]patients.Vaccine, 0)
	for _, vs := range r.byPatient {
		for _, v := range vs {
			if v.NextDueAt == nil || v.NextDueAt.After(cutoff) {
				continue
			}
			out = append(out, v)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].NextDueAt.Before(*out[j].NextDueAt)
	})

	return out, nil
}
