package billing

import "time"

// LineKind distingue líneas de servicio (consulta, cirugía) de líneas
// que consumen stock del inventario.
type LineKind string

const (
	LineService   LineKind = "service"
	LineInventory LineKind = "inventory"
)

type LineItem struct {
	Kind        LineKind `json:"kind"`
	Description string   `json:"description"`
	ItemID      string   `json:"item_id,omitempty"` // solo líneas inventory
	Quantity    int      `json:"quantity"`
	UnitPrice   float64  `json:"unit_price"`
	Total       float64  `json:"total"`
}

// Status define el estado de pago de una factura.
// unpaid -> partial -> paid; una factura paid es inmutable.
type Status string

const (
	StatusUnpaid  Status = "unpaid"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
)

type Invoice struct {
	ID     string
	Number string // INV-YYYYMMDDHHMMSS

	AppointmentID string // única por cita
	PatientID     string

	Lines []LineItem

	Subtotal       float64
	DiscountPct    float64
	DiscountAmount float64
	TaxPct         float64
	TaxAmount      float64
	Total          float64

	AmountPaid float64
	Status     Status

	IssuedAt  time.Time
	PaidAt    *time.Time
	UpdatedAt time.Time
}

// Balance es el saldo pendiente de la factura.
func (inv Invoice) Balance() float64 {
	return round2(inv.Total - inv.AmountPaid)
}
