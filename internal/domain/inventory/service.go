package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

const DefaultExpiryWindow = 30 * 24 * time.Hour

type Service struct {
	repo Repository

	// Umbral de recompra de la clínica para items que no definen uno propio.
	defaultThreshold int

	now func() time.Time
}

func NewService(repo Repository, defaultThreshold int) *Service {
	if defaultThreshold <= 0 {
		defaultThreshold = 5
	}
	return &Service{
		repo:             repo,
		defaultThreshold: defaultThreshold,
		now:              time.Now,
	}
}

type AddItemInput struct {
	Name             string
	Quantity         int
	ReorderThreshold int
	PurchasePrice    float64
	SellingPrice     float64
	PurchaseDate     time.Time
	ExpiryDate       *time.Time
}

func (s *Service) AddItem(ctx context.Context, in AddItemInput) (Item, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Item{}, ErrInvalidInput
	}
	if in.Quantity < 0 || in.ReorderThreshold < 0 {
		return Item{}, ErrInvalidInput
	}
	if in.PurchasePrice < 0 || in.SellingPrice < 0 {
		return Item{}, ErrInvalidInput
	}

	now := s.now()

	purchaseDate := in.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = now
	}

	it := Item{
		ID:               uuid.NewString(),
		Name:             strings.TrimSpace(in.Name),
		Quantity:         in.Quantity,
		ReorderThreshold: in.ReorderThreshold,
		PurchasePrice:    in.PurchasePrice,
		SellingPrice:     in.SellingPrice,
		PurchaseDate:     purchaseDate,
		ExpiryDate:       in.ExpiryDate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, it); err != nil {
		return Item{}, err
	}
	return it, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Item, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Item{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Item, error) {
	return s.repo.List(ctx, f)
}

// AdjustStock aplica un delta al stock (positivo = reposición, negativo = consumo).
// Nunca deja cantidades negativas: en ese caso falla con ErrInsufficientStock.
func (s *Service) AdjustStock(ctx context.Context, id string, delta int) (Item, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Item{}, ErrNotFound
	}
	if delta == 0 {
		return Item{}, ErrInvalidInput
	}
	return s.repo.AdjustQuantity(ctx, id, delta)
}

// ReorderAlert lista los items bajo el umbral de recompra.
func (s *Service) ReorderAlert(ctx context.Context) ([]Item, error) {
	items, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}

	out := make([]Item, 0)
	for _, it := range items {
		if BelowThreshold(it, s.defaultThreshold) {
			out = append(out, it)
		}
	}
	return out, nil
}

// ExpiryAlert lista los items que vencen dentro de la ventana dada
// (window <= 0 usa la ventana default de 30 días).
func (s *Service) ExpiryAlert(ctx context.Context, window time.Duration) ([]Item, error) {
	if window <= 0 {
		window = DefaultExpiryWindow
	}

	items, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]Item, 0)
	for _, it := range items {
		if ExpiringWithin(it, now, window) {
			out = append(out, it)
		}
	}
	return out, nil
}

// GetQuantity y Deduct exponen lo mínimo que billing necesita del stock
// sin acoplarlo al repo de inventario (ver billing.Stock).
func (s *Service) GetQuantity(ctx context.Context, itemID string) (int, error) {
	it, err := s.GetByID(ctx, itemID)
	if err != nil {
		return 0, err
	}
	return it.Quantity, nil
}

func (s *Service) Deduct(ctx context.Context, itemID string, qty int) error {
	if qty <= 0 {
		return ErrInvalidInput
	}
	_, err := s.AdjustStock(ctx, itemID, -qty)
	return err
}

func (s *Service) Restock(ctx context.Context, itemID string, qty int) error {
	if qty <= 0 {
		return ErrInvalidInput
	}
	_, err := s.AdjustStock(ctx, itemID, qty)
	return err
}
