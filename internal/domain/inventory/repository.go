package inventory

import "context"

type ListFilter struct {
	Query string // búsqueda simple por nombre
}

type Repository interface {
	Create(ctx context.Context, it Item) error
	Update(ctx context.Context, it Item) error
	GetByID(ctx context.Context, id string) (Item, error)
	List(ctx context.Context, f ListFilter) ([]Item, error)

	// AdjustQuantity aplica el delta de forma atómica.
	// Debe fallar con ErrInsufficientStock si el resultado quedaría negativo,
	// sin modificar el item.
	AdjustQuantity(ctx context.Context, id string, delta int) (Item, error)
}
