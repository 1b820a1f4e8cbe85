package analytics

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"vet-clinic/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/analytics", func(ar chi.Router) {
		ar.Get("/report", reportHandler(svc))
		ar.Get("/dashboard", dashboardHandler(svc))
	})
}

func reportHandler(svc *Service) http.HandlerFunc {
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
		// Rango inclusivo hasta fin de día.
		to = to.Add(24*time.Hour - time.Nanosecond)

		rep, err := svc.Report(r.Context(), from, to)
		if err != nil {
			if err == ErrInvalidRange {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

func dashboardHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		d, err := svc.Dashboard(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, d)
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
