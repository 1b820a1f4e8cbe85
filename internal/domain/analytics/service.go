// Package analytics agrega datos de los demás módulos en reportes de solo
// lectura. No tiene capacidad de mutación: depende de los repositorios de
// registry, scheduler, ledger, inventario y gastos, y el flujo es
// estrictamente unidireccional hacia acá.
package analytics

import (
	"context"
	"errors"
	"sort"
	"time"

	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/billing"
	"vet-clinic/internal/domain/expenses"
	"vet-clinic/internal/domain/inventory"
	"vet-clinic/internal/domain/patients"
)

var ErrInvalidRange = errors.New("invalid date range")

type Options struct {
	Currency          string
	LowStockThreshold int
	ExpiryWindow      time.Duration
}

type Service struct {
	patients patients.Repository
	appts    appointments.Repository
	stock    inventory.Repository
	invoices billing.Repository
	expenses expenses.Repository

	opts Options
	now  func() time.Time
}

func NewService(
	patientsRepo patients.Repository,
	apptsRepo appointments.Repository,
	stockRepo inventory.Repository,
	invoicesRepo billing.Repository,
	expensesRepo expenses.Repository,
	opts Options,
) *Service {
	if opts.LowStockThreshold <= 0 {
		opts.LowStockThreshold = 5
	}
	if opts.ExpiryWindow <= 0 {
		opts.ExpiryWindow = inventory.DefaultExpiryWindow
	}
	return &Service{
		patients: patientsRepo,
		appts:    apptsRepo,
		stock:    stockRepo,
		invoices: invoicesRepo,
		expenses: expensesRepo,
		opts:     opts,
		now:      time.Now,
	}
}

type MonthRevenue struct {
	Month   time.Time `json:"month"`
	Revenue float64   `json:"revenue"`
}

type Report struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	Currency      string  `json:"currency"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalExpenses float64 `json:"total_expenses"`
	NetProfit     float64 `json:"net_profit"`

	RevenueByMonth []MonthRevenue `json:"revenue_by_month"`

	Appointments map[string]int `json:"appointments"`

	InventoryValue  float64 `json:"inventory_value"`
	ProjectedProfit float64 `json:"projected_profit"`
}

// Report arma el resumen financiero del período [from, to].
func (s *Service) Report(ctx context.Context, from, to time.Time) (Report, error) {
	if from.IsZero() || to.IsZero() || from.After(to) {
		return Report{}, ErrInvalidRange
	}

	rep := Report{
		From:     from,
		To:       to,
		Currency: s.opts.Currency,
		Appointments: map[string]int{
			string(appointments.StatusScheduled): 0,
			string(appointments.StatusCompleted): 0,
			string(appointments.StatusCancelled): 0,
		},
	}

	invs, err := s.invoices.List(ctx, billing.ListFilter{From: &from, To: &to})
	if err != nil {
		return Report{}, err
	}

	// Buckets mensuales zero-filled para que el gráfico no tenga huecos.
	buckets := map[time.Time]float64{}
	for cur := monthStart(from); !cur.After(to); cur = cur.AddDate(0, 1, 0) {
		buckets[cur] = 0
	}

	for _, inv := range invs {
		rep.TotalRevenue += inv.Total
		m := monthStart(inv.IssuedAt)
		if _, ok := buckets[m]; ok {
			buckets[m] += inv.Total
		}
	}

	months := make([]time.Time, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	for _, m := range months {
		rep.RevenueByMonth = append(rep.RevenueByMonth, MonthRevenue{Month: m, Revenue: buckets[m]})
	}

	exps, err := s.expenses.List(ctx, from, to)
	if err != nil {
		return Report{}, err
	}
	for _, e := range exps {
		rep.TotalExpenses += e.Amount
	}
	rep.NetProfit = rep.TotalRevenue - rep.TotalExpenses

	appts, err := s.appts.List(ctx, appointments.ListFilter{From: &from, To: &to})
	if err != nil {
		return Report{}, err
	}
	for _, a := range appts {
		rep.Appointments[string(a.Status)]++
	}

	items, err := s.stock.List(ctx, inventory.ListFilter{})
	if err != nil {
		return Report{}, err
	}
	for _, it := range items {
		rep.InventoryValue += it.SellingPrice * float64(it.Quantity)
		rep.ProjectedProfit += it.Profit()
	}

	return rep, nil
}

type Dashboard struct {
	TotalPatients        int `json:"total_patients"`
	UpcomingAppointments int `json:"upcoming_appointments"`
	InventoryItems       int `json:"inventory_items"`

	LowStock     []string `json:"low_stock"`
	ExpiringSoon []string `json:"expiring_soon"`

	Currency           string  `json:"currency"`
	TotalRevenue       float64 `json:"total_revenue"`
	OutstandingBalance float64 `json:"outstanding_balance"`
}

// Dashboard calcula las métricas del panel principal.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	now := s.now()

	d := Dashboard{
		Currency:     s.opts.Currency,
		LowStock:     make([]string, 0),
		ExpiringSoon: make([]string, 0),
	}

	pts, err := s.patients.List(ctx, patients.ListFilter{})
	if err != nil {
		return Dashboard{}, err
	}
	d.TotalPatients = len(pts)

	appts, err := s.appts.List(ctx, appointments.ListFilter{
		Status: appointments.StatusScheduled,
		From:   &now,
	})
	if err != nil {
		return Dashboard{}, err
	}
	d.UpcomingAppointments = len(appts)

	items, err := s.stock.List(ctx, inventory.ListFilter{})
	if err != nil {
		return Dashboard{}, err
	}
	d.InventoryItems = len(items)
	for _, it := range items {
		if inventory.BelowThreshold(it, s.opts.LowStockThreshold) {
			d.LowStock = append(d.LowStock, it.Name)
		}
		if inventory.ExpiringWithin(it, now, s.opts.ExpiryWindow) {
			d.ExpiringSoon = append(d.ExpiringSoon, it.Name)
		}
	}

	invs, err := s.invoices.List(ctx, billing.ListFilter{})
	if err != nil {
		return Dashboard{}, err
	}
	for _, inv := range invs {
		d.TotalRevenue += inv.Total
		if inv.Status != billing.StatusPaid {
			d.OutstandingBalance += inv.Balance()
		}
	}

	return d, nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
