package expenses

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"vet-clinic/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/expenses", func(er chi.Router) {
		er.Post("/", recordHandler(svc))
		er.Get("/", listHandler(svc))
	})
}

type recordRequest struct {
	Date        string  `json:"date"` // YYYY-MM-DD opcional (default hoy)
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

type expenseResponse struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func recordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		var req recordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var date time.Time
		if strings.TrimSpace(req.Date) != "" {
			t, err := time.Parse("2006-01-02", req.Date)
			if err != nil {
				http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			date = t
		}

		e, err := svc.Record(r.Context(), RecordInput{
			Date:        date,
			Category:    req.Category,
			Amount:      req.Amount,
			Description: req.Description,
		})
		if err != nil {
			if err == ErrInvalidInput {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toResponse(e))
	}
}

func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		q := r.URL.Query()
		from, err := time.Parse("2006-01-02", strings.TrimSpace(q.Get("from")))
		if err != nil {
			http.Error(w, "from must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		to, err := time.Parse("2006-01-02", strings.TrimSpace(q.Get("to")))
		if err != nil {
			http.Error(w, "to must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		// El rango es inclusivo hasta fin de día.
		to = to.Add(24*time.Hour - time.Nanosecond)

		items, err := svc.List(r.Context(), from, to)
		if err != nil {
			if err == ErrInvalidRange {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]expenseResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toResponse(e Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Date:        e.Date,
		Category:    e.Category,
		Amount:      e.Amount,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
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
