package inventory

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
	r.Route("/inventory", func(ir chi.Router) {
		ir.Post("/", addItemHandler(svc))
		ir.Get("/", listItemsHandler(svc))

		// Alertas antes que {itemID} para que chi no las capture como ID.
		ir.Get("/alerts/reorder", reorderAlertHandler(svc))
		ir.Get("/alerts/expiry", expiryAlertHandler(svc))

		ir.Get("/{itemID}", getItemHandler(svc))
		ir.Post("/{itemID}/adjust", adjustStockHandler(svc))
	})
}

type addItemRequest struct {
	Name             string  `json:"name"`
	Quantity         int     `json:"quantity"`
	ReorderThreshold int     `json:"reorder_threshold"`
	PurchasePrice    float64 `json:"purchase_price"`
	SellingPrice     float64 `json:"selling_price"`
	PurchaseDate     string  `json:"purchase_date"` // YYYY-MM-DD opcional
	ExpiryDate       string  `json:"expiry_date"`   // YYYY-MM-DD opcional
}

type itemResponse struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Quantity         int        `json:"quantity"`
	ReorderThreshold int        `json:"reorder_threshold"`
	PurchasePrice    float64    `json:"purchase_price"`
	SellingPrice     float64    `json:"selling_price"`
	PurchaseDate     time.Time  `json:"purchase_date"`
	ExpiryDate       *time.Time `json:"expiry_date,omitempty"`
	Profit           float64    `json:"projected_profit"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type adjustStockRequest struct {
	Delta int `json:"delta"`
}

func addItemHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		var req addItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var purchaseDate time.Time
		if strings.TrimSpace(req.PurchaseDate) != "" {
			t, err := time.Parse("2006-01-02", req.PurchaseDate)
			if err != nil {
				http.Error(w, "purchase_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			purchaseDate = t
		}

		var expiry *time.Time
		if strings.TrimSpace(req.ExpiryDate) != "" {
			t, err := time.Parse("2006-01-02", req.ExpiryDate)
			if err != nil {
				http.Error(w, "expiry_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			expiry = &t
		}

		it, err := svc.AddItem(r.Context(), AddItemInput{
			Name:             req.Name,
			Quantity:         req.Quantity,
			ReorderThreshold: req.ReorderThreshold,
			PurchasePrice:    req.PurchasePrice,
			SellingPrice:     req.SellingPrice,
			PurchaseDate:     purchaseDate,
			ExpiryDate:       expiry,
		})
		if err != nil {
			if err == ErrInvalidInput {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toItemResponse(it))
	}
}

func listItemsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		items, err := svc.List(r.Context(), ListFilter{
			Query: strings.TrimSpace(r.URL.Query().Get("q")),
		})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toItemResponses(items))
	}
}

func getItemHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		it, err := svc.GetByID(r.Context(), chi.URLParam(r, "itemID"))
		if err != nil {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toItemResponse(it))
	}
}

func adjustStockHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		var req adjustStockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		it, err := svc.AdjustStock(r.Context(), chi.URLParam(r, "itemID"), req.Delta)
		if err != nil {
			switch err {
			case ErrNotFound:
				http.Error(w, "item not found", http.StatusNotFound)
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrInsufficientStock:
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, toItemResponse(it))
	}
}

func reorderAlertHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}

		items, err := svc.ReorderAlert(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toItemResponses(items))
	}
}

func expiryAlertHandler(svc *Service) http.HandlerFunc {
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

		items, err := svc.ExpiryAlert(r.Context(), window)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toItemResponses(items))
	}
}

func toItemResponse(it Item) itemResponse {
	return itemResponse{
		ID:               it.ID,
		Name:             it.Name,
		Quantity:         it.Quantity,
		ReorderThreshold: it.ReorderThreshold,
		PurchasePrice:    it.PurchasePrice,
		SellingPrice:     it.SellingPrice,
		PurchaseDate:     it.PurchaseDate,
		ExpiryDate:       it.ExpiryDate,
		Profit:           it.Profit(),
		CreatedAt:        it.CreatedAt,
		UpdatedAt:        it.UpdatedAt,
	}
}

func toItemResponses(items []Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	return out
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
