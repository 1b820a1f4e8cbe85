package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"vet-clinic/internal/domain/billing"
)

type invoiceRepo struct {
	mu     sync.RWMutex
	byID   map[string]billing.Invoice
	byAppt map[string]string // appointmentID -> invoiceID
}

func NewInvoiceRepo() billing.Repository {
	return &invoiceRepo{
		byID:   make(map[string]billing.Invoice),
		byAppt: make(map[string]string),
	}
}

func (r *invoiceRepo) Create(ctx context.Context, inv billing.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(inv.ID) == "" {
		return errors.New("invoice id required")
	}
	if _, exists := r.byID[inv.ID]; exists {
		return errors.New("invoice already exists")
	}
	if _, exists := r.byAppt[inv.AppointmentID]; exists {
		return errors.New("appointment already invoiced")
	}

	r.byID[inv.ID] = inv
	r.byAppt[inv.AppointmentID] = inv.ID
	return nil
}

func (r *invoiceRepo) Update(ctx context.Context, inv billing.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(inv.ID) == "" {
		return errors.New("invoice id required")
	}
	if _, exists := r.byID[inv.ID]; !exists {
		return billing.ErrNotFound
	}
	r.byID[inv.ID] = inv
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id string) (billing.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inv, ok := r.byID[id]
	if !ok {
		return billing.Invoice{}, billing.ErrNotFound
	}
	return inv, nil
}

func (r *invoiceRepo) GetByAppointment(ctx context.Context, appointmentID string) (billing.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byAppt[appointmentID]
	if !ok {
		return billing.Invoice{}, billing.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *invoiceRepo) List(ctx context.Context, f billing.ListFilter) ([]billing.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]billing.Invoice, 0)
	for _, inv := range r.byID {
		if f.PatientID != "" && inv.PatientID != f.PatientID {
			continue
		}
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if f.From != nil && inv.IssuedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && inv.IssuedAt.After(*f.To) {
			continue
		}
		out = append(out, inv)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].IssuedAt.Before(out[j].IssuedAt)
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}

	return out, nil
}
