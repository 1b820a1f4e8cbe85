package expenses

import "time"

// Expense es un gasto operativo de la clínica (alquiler, insumos, sueldos).
// Solo alimenta el cálculo de ganancia neta en analytics.
type Expense struct {
	ID string

	Date        time.Time
	Category    string
	Amount      float64
	Description string

	CreatedAt time.Time
}
