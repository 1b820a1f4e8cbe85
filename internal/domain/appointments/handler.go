package appointments

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"vet-clinic/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/appointments", func(ar chi.Router) {
		ar.Post("/", bookHandler(svc))
		ar.Get("/", listHandler(svc))
		ar.Get("/{apptID}", getHandler(svc))
		ar.Post("/{apptID}/cancel", transitionHandler(svc.Cancel))
		ar.Post("/{apptID}/complete", transitionHandler(svc.Complete))
	})
}

type bookRequest struct {
	PatientID string `json:"patient_id"`
	StartAt   string `json:"start_at"` // RFC3339
	Purpose   string `json:"purpose"`
	Notes     string `json:"notes"`
}

type appointmentResponse struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patient_id"`
	StartAt   time.Time `json:"start_at"`
	Purpose   string    `json:"purpose"`
	Notes     string    `json:"notes"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func bookHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		var req bookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		startAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartAt))
		if err != nil {
			http.Error(w, "start_at must be RFC3339", http.StatusBadRequest)
			return
		}

		a, err := svc.Book(r.Context(), BookInput{
			PatientID: req.PatientID,
			StartAt:   startAt,
			Purpose:   req.Purpose,
			Notes:     req.Notes,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrPatientNotFound:
				http.Error(w, err.Error(), http.StatusNotFound)
			case ErrConflict:
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toResponse(a))
	}
}

func listHandler(svc *Service) http.HandlerFunc {
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
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				http.Error(w, "from must be RFC3339", http.StatusBadRequest)
				return
			}
			f.From = &t
		}
		if v := strings.TrimSpace(q.Get("to")); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				http.Error(w, "to must be RFC3339", http.StatusBadRequest)
				return
			}
			f.To = &t
		}

		items, err := svc.List(r.Context(), f)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]appointmentResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "apptID"))
		if err != nil {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(a))
	}
}

func transitionHandler(fn func(ctx context.Context, id string) (Appointment, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		a, err := fn(r.Context(), chi.URLParam(r, "apptID"))
		if err != nil {
			switch err {
			case ErrNotFound:
				http.Error(w, "appointment not found", http.StatusNotFound)
			case ErrBadState:
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, toResponse(a))
	}
}

func toResponse(a Appointment) appointmentResponse {
	return appointmentResponse{
		ID:        a.ID,
		PatientID: a.PatientID,
		StartAt:   a.StartAt,
		Purpose:   a.Purpose,
		Notes:     a.Notes,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
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
