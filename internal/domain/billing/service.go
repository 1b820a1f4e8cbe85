package billing

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("invoice not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrNotCompleted        = errors.New("appointment not completed")
	ErrAlreadyInvoiced     = errors.New("appointment already invoiced")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrOverpayment         = errors.New("payment exceeds balance")
	ErrAlreadyPaid         = errors.New("invoice already paid")
)

// statusCompleted replica appointments.StatusCompleted sin importar el paquete.
const statusCompleted = "completed"

type Service struct {
	repo  Repository
	appts AppointmentSource
	stock Stock
	now   func() time.Time
}

func NewService(repo Repository, appts AppointmentSource, stock Stock) *Service {
	return &Service{
		repo:  repo,
		appts: appts,
		stock: stock,
		now:   time.Now,
	}
}

type LineInput struct {
	Kind        LineKind
	Description string
	ItemID      string
	Quantity    int
	UnitPrice   float64
}

type GenerateInput struct {
	AppointmentID string
	Lines         []LineInput
	DiscountPct   float64
	TaxPct        float64
}

// Generate emite la factura de una cita completada.
// El descuento se aplica sobre el subtotal y el impuesto sobre el monto
// ya descontado (mismo orden que usaba caja).
func (s *Service) Generate(ctx context.Context, in GenerateInput) (Invoice, error) {
	apptID := strings.TrimSpace(in.AppointmentID)
	if apptID == "" || len(in.Lines) == 0 {
		return Invoice{}, ErrInvalidInput
	}
	if in.DiscountPct < 0 || in.DiscountPct > 100 || in.TaxPct < 0 || in.TaxPct > 100 {
		return Invoice{}, ErrInvalidInput
	}

	lines := make([]LineItem, 0, len(in.Lines))
	for _, l := range in.Lines {
		if l.Quantity <= 0 || l.UnitPrice < 0 {
			return Invoice{}, ErrInvalidInput
		}
		switch l.Kind {
		case LineService:
			if strings.TrimSpace(l.Description) == "" {
				return Invoice{}, ErrInvalidInput
			}
		case LineInventory:
			if strings.TrimSpace(l.ItemID) == "" {
				return Invoice{}, ErrInvalidInput
			}
		default:
			return Invoice{}, ErrInvalidInput
		}
		lines = append(lines, LineItem{
			Kind:        l.Kind,
			Description: strings.TrimSpace(l.Description),
			ItemID:      strings.TrimSpace(l.ItemID),
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Total:       round2(float64(l.Quantity) * l.UnitPrice),
		})
	}

	patientID, status, err := s.appts.Snapshot(ctx, apptID)
	if err != nil {
		return Invoice{}, ErrAppointmentNotFound
	}
	if status != statusCompleted {
		return Invoice{}, ErrNotCompleted
	}

	// 1-1 entre cita y factura.
	if _, err := s.repo.GetByAppointment(ctx, apptID); err == nil {
		return Invoice{}, ErrAlreadyInvoiced
	}

	// Primero verificar todo el stock, después descontar; si un descuento
	// intermedio falla, reponemos lo ya descontado (best-effort).
	if err := s.consumeStock(ctx, lines); err != nil {
		return Invoice{}, err
	}

	subtotal := 0.0
	for _, l := range lines {
		subtotal += l.Total
	}
	subtotal = round2(subtotal)

	discount := round2(subtotal * in.DiscountPct / 100)
	base := round2(subtotal - discount)
	tax := round2(base * in.TaxPct / 100)
	total := round2(base + tax)

	now := s.now()
	inv := Invoice{
		ID:             uuid.NewString(),
		Number:         "INV-" + now.Format("20060102150405"),
		AppointmentID:  apptID,
		PatientID:      patientID,
		Lines:          lines,
		Subtotal:       subtotal,
		DiscountPct:    in.DiscountPct,
		DiscountAmount: discount,
		TaxPct:         in.TaxPct,
		TaxAmount:      tax,
		Total:          total,
		AmountPaid:     0,
		Status:         StatusUnpaid,
		IssuedAt:       now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		// La factura no se guardó (p.ej. otra factura ganó la cita entre el
		// check y el insert): devolver el stock ya descontado.
		s.restock(ctx, lines)
		return Invoice{}, err
	}
	return inv, nil
}

func (s *Service) consumeStock(ctx context.Context, lines []LineItem) error {
	for _, l := range lines {
		if l.Kind != LineInventory {
			continue
		}
		qty, err := s.stock.GetQuantity(ctx, l.ItemID)
		if err != nil {
			return ErrInvalidInput
		}
		if qty < l.Quantity {
			return ErrInsufficientStock
		}
	}

	deducted := make([]LineItem, 0)
	for _, l := range lines {
		if l.Kind != LineInventory {
			continue
		}
		if err := s.stock.Deduct(ctx, l.ItemID, l.Quantity); err != nil {
			s.restock(ctx, deducted)
			return ErrInsufficientStock
		}
		deducted = append(deducted, l)
	}
	return nil
}

// restock devuelve (best-effort) las unidades de las líneas de inventario.
func (s *Service) restock(ctx context.Context, lines []LineItem) {
	for _, l := range lines {
		if l.Kind != LineInventory {
			continue
		}
		_ = s.stock.Restock(ctx, l.ItemID, l.Quantity)
	}
}

// RecordPayment registra un pago parcial o total.
// Una factura paid es inmutable; un pago nunca puede exceder el saldo.
func (s *Service) RecordPayment(ctx context.Context, invoiceID string, amount float64) (Invoice, error) {
	invoiceID = strings.TrimSpace(invoiceID)
	if invoiceID == "" {
		return Invoice{}, ErrNotFound
	}
	if amount <= 0 {
		return Invoice{}, ErrInvalidInput
	}

	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return Invoice{}, err
	}

	if inv.Status == StatusPaid {
		return Invoice{}, ErrAlreadyPaid
	}

	balance := inv.Balance()
	if round2(amount) > balance {
		return Invoice{}, ErrOverpayment
	}

	now := s.now()
	inv.AmountPaid = round2(inv.AmountPaid + amount)
	inv.UpdatedAt = now

	if inv.Balance() <= 0 {
		inv.Status = StatusPaid
		inv.PaidAt = &now
	} else {
		inv.Status = StatusPartial
	}

	if err := s.repo.Update(ctx, inv); err != nil {
		return Invoice{}, err
	}
	return inv, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Invoice, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Invoice{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByAppointment(ctx context.Context, appointmentID string) (Invoice, error) {
	appointmentID = strings.TrimSpace(appointmentID)
	if appointmentID == "" {
		return Invoice{}, ErrNotFound
	}
	return s.repo.GetByAppointment(ctx, appointmentID)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Invoice, error) {
	return s.repo.List(ctx, f)
}

// round2 redondea a centavos; con float64 alcanza para una caja de clínica.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
