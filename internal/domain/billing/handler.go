package billing

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"vet-clinic/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, currency string) {
	r.Route("/invoices", func(ir chi.Router) {
		ir.Post("/", generateHandler(svc, currency))
		ir.Get("/", listHandler(svc, currency))
		ir.Get("/{invoiceID}", getHandler(svc, currency))
		ir.Post("/{invoiceID}/payments", recordPaymentHandler(svc, currency))
	})
}

type lineRequest struct {
	Kind        string  `json:"kind"` // service | inventory
	Description string  `json:"description"`
	ItemID      string  `json:"item_id"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type generateRequest struct {
	AppointmentID string        `json:"appointment_id"`
	Lines         []lineRequest `json:"lines"`
	DiscountPct   float64       `json:"discount_pct"`
	TaxPct        float64       `json:"tax_pct"`
}

type paymentRequest struct {
	Amount float64 `json:"amount"`
}

type invoiceResponse struct {
	ID             string     `json:"id"`
	Number         string     `json:"number"`
	AppointmentID  string     `json:"appointment_id"`
	PatientID      string     `json:"patient_id"`
	Lines          []LineItem `json:"lines"`
	Currency       string     `json:"currency"`
	Subtotal       float64    `json:"subtotal"`
	DiscountPct    float64    `json:"discount_pct"`
	DiscountAmount float64    `json:"discount_amount"`
	TaxPct         float64    `json:"tax_pct"`
	TaxAmount      float64    `json:"tax_amount"`
	Total          float64    `json:"total"`
	AmountPaid     float64    `json:"amount_paid"`
	Balance        float64    `json:"balance"`
	Status         string     `json:"status"`
	IssuedAt       time.Time  `json:"issued_at"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func generateHandler(svc *Service, currency string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		lines := make([]LineInput, 0, len(req.Lines))
		for _, l := range req.Lines {
			lines = append(lines, LineInput{
				Kind:        LineKind(strings.TrimSpace(l.Kind)),
				Description: l.Description,
				ItemID:      l.ItemID,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
			})
		}

		inv, err := svc.Generate(r.Context(), GenerateInput{
			AppointmentID: req.AppointmentID,
			Lines:         lines,
			DiscountPct:   req.DiscountPct,
			TaxPct:        req.TaxPct,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrAppointmentNotFound:
				http.Error(w, err.Error(), http.StatusNotFound)
			case ErrAlreadyInvoiced:
				http.Error(w, err.Error(), http.StatusConflict)
			case ErrNotCompleted, ErrInsufficientStock:
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toInvoiceResponse(inv, currency))
	}
}

func recordPaymentHandler(svc *Service, currency string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		var req paymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		inv, err := svc.RecordPayment(r.Context(), chi.URLParam(r, "invoiceID"), req.Amount)
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrNotFound:
				http.Error(w, "invoice not found", http.StatusNotFound)
			case ErrOverpayment, ErrAlreadyPaid:
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toInvoiceResponse(inv, currency))
	}
}

func getHandler(svc *Service, currency string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		inv, err := svc.GetByID(r.Context(), chi.URLParam(r, "invoiceID"))
		if err != nil {
			http.Error(w, "invoice not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toInvoiceResponse(inv, currency))
	}
}

func listHandler(svc *Service, currency string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		q := r.URL.Query()
		f := ListFilter{
			PatientID: strings.TrimSpace(q.Get("patient_id")),
			Status:    Status(strings.TrimSpace(q.Get("status"))),
		}
		if v := strings.TrimSpace(q.Get("from")); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				http.Error(w, "from must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			f.From = &t
		}
		if v := strings.TrimSpace(q.Get("to")); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				http.Error(w, "to must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			f.To = &t
		}

		items, err := svc.List(r.Context(), f)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]invoiceResponse, 0, len(items))
		for _, inv := range items {
			out = append(out, toInvoiceResponse(inv, currency))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toInvoiceResponse(inv Invoice, currency string) invoiceResponse {
	return invoiceResponse{
		ID:             inv.ID,
		Number:         inv.Number,
		AppointmentID:  inv.AppointmentID,
		PatientID:      inv.PatientID,
		Lines:          inv.Lines,
		Currency:       currency,
		Subtotal:       inv.Subtotal,
		DiscountPct:    inv.DiscountPct,
		DiscountAmount: inv.DiscountAmount,
		TaxPct:         inv.TaxPct,
		TaxAmount:      inv.TaxAmount,
		Total:          inv.Total,
		AmountPaid:     inv.AmountPaid,
		Balance:        inv.Balance(),
		Status:         string(inv.Status),
		IssuedAt:       inv.IssuedAt,
		PaidAt:         inv.PaidAt,
		UpdatedAt:      inv.UpdatedAt,
	}
}

func requireStaff(w http.ResponseWriter, r *http.Request) bool {
	staff, ok := middleware.GetStaff(r.Context())
	if !ok || strings.TrimSpace(staff.ID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
