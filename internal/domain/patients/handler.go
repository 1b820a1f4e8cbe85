package patients

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vet-clinic/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Dueños
	r.Route("/owners", func(or chi.Router) {
		or.Post("/", registerOwnerHandler(svc))
		or.Get("/", listOwnersHandler(svc))
		or.Get("/{ownerID}", getOwnerHandler(svc))
	})

	// Pacientes
	r.Route("/patients", func(pr chi.Router) {
		pr.Post("/", createPatientHandler(svc))
		pr.Get("/", listPatientsHandler(svc))

		// Alertas antes que {patientID} para que chi no las capture como ID.
		pr.Get("/alerts/vaccines", vaccineRemindersHandler(svc))

		pr.Get("/{patientID}", getPatientHandler(svc))
		pr.Patch("/{patientID}", updatePatientHandler(svc))
		pr.Post("/{patientID}/archive", archivePatientHandler(svc))

		pr.Post("/{patientID}/vaccines", addVaccineHandler(svc))
		pr.Get("/{patientID}/vaccines", listVaccinesHandler(svc))
	})
}

type registerOwnerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type ownerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type createPatientRequest struct {
	OwnerID   string  `json:"owner_id"`
	Name      string  `json:"name"`
	Species   string  `json:"species"`
	Sex       string  `json:"sex"`
	BirthDate string  `json:"birth_date"` // YYYY-MM-DD opcional
	WeightKg  float64 `json:"weight_kg"`
	Notes     string  `json:"notes"`
}

type patientResponse struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"owner_id"`
	Name       string     `json:"name"`
	Species    string     `json:"species"`
	Sex        string     `json:"sex"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	WeightKg   float64    `json:"weight_kg"`
	Notes      string     `json:"notes"`
	Archived   bool       `json:"archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type updatePatientRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name      *string  `json:"name"`
	Species   *string  `json:"species"`
	Sex       *string  `json:"sex"`
	WeightKg  *float64 `json:"weight_kg"`
	Notes     *string  `json:"notes"`
	BirthDate *string  `json:"birth_date"` // YYYY-MM-DD. Para limpiar: enviar null.
}

type vaccineRequest struct {
	Type      string `json:"type"`
	AppliedAt string `json:"applied_at"`  // YYYY-MM-DD
	NextDueAt string `json:"next_due_at"` // YYYY-MM-DD opcional
}

type vaccineResponse struct {
	ID        string     `json:"id"`
	PatientID string     `json:"patient_id"`
	Type      string     `json:"type"`
	AppliedAt time.Time  `json:"applied_at"`
	NextDueAt *time.Time `json:"next_due_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func registerOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		var req registerOwnerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		o, err := svc.RegisterOwner(r.Context(), RegisterOwnerInput{
			Name:    req.Name,
			Phone:   req.Phone,
			Email:   req.Email,
			Address: req.Address,
		})
		if err != nil {
			switch err {
			case ErrDuplicatePhone:
				http.Error(w, err.Error(), http.StatusConflict)
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toOwnerResponse(o))
	}
}

func listOwnersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		items, err := svc.ListOwners(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]ownerResponse, 0, len(items))
		for _, o := range items {
			out = append(out, toOwnerResponse(o))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		o, err := svc.GetOwner(r.Context(), chi.URLParam(r, "ownerID"))
		if err != nil {
			http.Error(w, "owner not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toOwnerResponse(o))
	}
}

func createPatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		var req createPatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var bd *time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse("2006-01-02", req.BirthDate)
			if err != nil {
				http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			bd = &t
		}

		p, err := svc.Create(r.Context(), req.OwnerID, CreateInput{
			Name:      req.Name,
			Species:   req.Species,
			Sex:       req.Sex,
			BirthDate: bd,
			WeightKg:  req.WeightKg,
			Notes:     req.Notes,
		})
		if err != nil {
			switch err {
			case ErrOwnerNotFound:
				http.Error(w, err.Error(), http.StatusNotFound)
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toPatientResponse(p))
	}
}

func listPatientsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		q := r.URL.Query()
		f := ListFilter{
			OwnerID:         strings.TrimSpace(q.Get("owner_id")),
			Species:         Species(strings.TrimSpace(q.Get("species"))),
			Query:           strings.TrimSpace(q.Get("q")),
			IncludeArchived: q.Get("include_archived") == "true",
		}

		items, err := svc.List(r.Context(), f)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]patientResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPatientResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "patientID"))
		if err != nil {
			http.Error(w, "patient not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(p))
	}
}

func updatePatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		patientID := chi.URLParam(r, "patientID")

		// Para soportar birth_date: null hay que detectar presencia del campo.
		// Estrategia: decodificar a map primero para ver si "birth_date" estuvo presente.
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		// Decodificar a map se come los campos desconocidos; validarlos a mano.
		for k := range raw {
			switch k {
			case "name", "species", "sex", "weight_kg", "notes", "birth_date":
			default:
				http.Error(w, "unknown field "+k, http.StatusBadRequest)
				return
			}
		}

		var req updatePatientRequest
		{
			// Re-marshal y decode al struct para reutilizar tags
			// (simple y suficiente para este volumen)
			b, _ := json.Marshal(raw)
			if err := json.Unmarshal(b, &req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		bd := OptionalDate{}
		if v, exists := raw["birth_date"]; exists {
			bd.Present = true
			if string(v) != "null" {
				var s string
				if err := json.Unmarshal(v, &s); err != nil {
					http.Error(w, "birth_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				t, err := time.Parse("2006-01-02", s)
				if err != nil {
					http.Error(w, "birth_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				bd.Value = &t
			}
		}

		updated, err := svc.UpdateProfile(r.Context(), patientID, UpdateProfileInput{
			Name:      req.Name,
			Species:   req.Species,
			Sex:       req.Sex,
			WeightKg:  req.WeightKg,
			Notes:     req.Notes,
			BirthDate: bd,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrNotFound:
				http.Error(w, "patient not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toPatientResponse(updated))
	}
}

func archivePatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		p, err := svc.Archive(r.Context(), chi.URLParam(r, "patientID"))
		if err != nil {
			if err == ErrNotFound {
				http.Error(w, "patient not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(p))
	}
}

func addVaccineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		var req vaccineRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		applied, err := time.Parse("2006-01-02", strings.TrimSpace(req.AppliedAt))
		if err != nil {
			http.Error(w, "applied_at must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		var next *time.Time
		if strings.TrimSpace(req.NextDueAt) != "" {
			t, err := time.Parse("2006-01-02", req.NextDueAt)
			if err != nil {
				http.Error(w, "next_due_at must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			next = &t
		}

		v, err := svc.AddVaccine(r.Context(), chi.URLParam(r, "patientID"), VaccineInput{
			Type:      req.Type,
			AppliedAt: applied,
			NextDueAt: next,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrNotFound:
				http.Error(w, "patient not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toVaccineResponse(v))
	}
}

func vaccineRemindersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		// days opcional; default 30
		window := time.Duration(0)
		if v := strings.TrimSpace(r.URL.Query().Get("days")); v != "" {
			days, err := strconv.Atoi(v)
			if err != nil || days <= 0 {
				http.Error(w, "days must be a positive number", http.StatusBadRequest)
				return
			}
			window = time.Duration(days) * 24 * time.Hour
		}

		items, err := svc.VaccinesDueSoon(r.Context(), window)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]vaccineResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toVaccineResponse(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listVaccinesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		items, err := svc.ListVaccines(r.Context(), chi.URLParam(r, "patientID"))
		if err != nil {
			if err == ErrNotFound {
				http.Error(w, "patient not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]vaccineResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toVaccineResponse(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toOwnerResponse(o Owner) ownerResponse {
	return ownerResponse{
		ID:        o.ID,
		Name:      o.Name,
		Phone:     o.Phone,
		Email:     o.Email,
		Address:   o.Address,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toPatientResponse(p Patient) patientResponse {
	return patientResponse{
		ID:         p.ID,
		OwnerID:    p.OwnerID,
		Name:       p.Name,
		Species:    string(p.Species),
		Sex:        string(p.Sex),
		BirthDate:  p.BirthDate,
		WeightKg:   p.WeightKg,
		Notes:      p.Notes,
		Archived:   p.Archived,
		ArchivedAt: p.ArchivedAt,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func toVaccineResponse(v Vaccine) vaccineResponse {
	return vaccineResponse{
		ID:        v.ID,
		PatientID: v.PatientID,
		Type:      v.Type,
		AppliedAt: v.AppliedAt,
		NextDueAt: v.NextDueAt,
		CreatedAt: v.CreatedAt,
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

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
