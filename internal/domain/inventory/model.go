package inventory

import "time"

// Item es un producto del stock de la clínica (medicinas, alimentos, insumos).
type Item struct {
	ID   string
	Name string

	Quantity         int
	ReorderThreshold int // 0 = usar el umbral configurado por la clínica

	PurchasePrice float64
	SellingPrice  float64

	PurchaseDate time.Time
	ExpiryDate   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profit es la ganancia proyectada del stock restante.
func (it Item) Profit() float64 {
	return (it.SellingPrice - it.PurchasePrice) * float64(it.Quantity)
}

// BelowThreshold responde si el item está bajo el umbral de recompra.
// defaultThreshold aplica cuando el item no define uno propio.
func BelowThreshold(it Item, defaultThreshold int) bool {
	threshold := it.ReorderThreshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	return it.Quantity < threshold
}

// ExpiringWithin responde si el item vence dentro de la ventana dada.
func ExpiringWithin(it Item, now time.Time, window time.Duration) bool {
	if it.ExpiryDate == nil {
		return false
	}
	return !it.ExpiryDate.After(now.Add(window))
}
