package router

import (
	"database/sql"
	"net/http"

	mem "vet-clinic/internal/adapters/storage/memory"
	pg "vet-clinic/internal/adapters/storage/postgres"
	"vet-clinic/internal/config"
	"vet-clinic/internal/domain/analytics"
	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/billing"
	"vet-clinic/internal/domain/expenses"
	"vet-clinic/internal/domain/inventory"
	"vet-clinic/internal/domain/patients"
	"vet-clinic/internal/middleware"
	"vet-clinic/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	AuthVerifier auth.Verifier // puede ser nil (modo dev con headers X-Staff-*)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Cfg config.Config
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.StaffContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var (
		ownerRepo   patients.OwnerRepository
		patientRepo patients.Repository
		vaccineRepo patients.VaccineRepository
		apptRepo    appointments.Repository
		itemRepo    inventory.Repository
		invoiceRepo billing.Repository
		expenseRepo expenses.Repository
	)

	if opts.DB != nil {
		ownerRepo = pg.NewOwnersRepo(opts.DB)
		patientRepo = pg.NewPatientsRepo(opts.DB)
		vaccineRepo = pg.NewVaccinesRepo(opts.DB)
		apptRepo = pg.NewAppointmentsRepo(opts.DB)
		itemRepo = pg.NewInventoryRepo(opts.DB)
		invoiceRepo = pg.NewBillingRepo(opts.DB)
		expenseRepo = pg.NewExpensesRepo(opts.DB)
	} else {
		ownerRepo = mem.NewOwnerRepo()
		patientRepo = mem.NewPatientRepo()
		vaccineRepo = mem.NewVaccineRepo()
		apptRepo = mem.NewAppointmentRepo()
		itemRepo = mem.NewInventoryRepo()
		invoiceRepo = mem.NewInvoiceRepo()
		expenseRepo = mem.NewExpenseRepo()
	}

	clinic := opts.Cfg.Clinic

	// Services por módulo. Los cruces van por interfaces angostas
	// (PatientDirectory, AppointmentSource, Stock) para no acoplar paquetes.
	patientsSvc := patients.NewService(ownerRepo, patientRepo, vaccineRepo)
	apptsSvc := appointments.NewService(apptRepo, patientsSvc)
	inventorySvc := inventory.NewService(itemRepo, clinic.LowStockThreshold)
	billingSvc := billing.NewService(invoiceRepo, apptsSvc, inventorySvc)
	expensesSvc := expenses.NewService(expenseRepo)
	analyticsSvc := analytics.NewService(
		patientRepo, apptRepo, itemRepo, invoiceRepo, expenseRepo,
		analytics.Options{
			Currency:          clinic.Currency,
			LowStockThreshold: clinic.LowStockThreshold,
			ExpiryWindow:      clinic.ExpiryWindow(),
		},
	)

	// Rutas por módulo
	patients.RegisterRoutes(r, patientsSvc)
	appointments.RegisterRoutes(r, apptsSvc)
	inventory.RegisterRoutes(r, inventorySvc)
	billing.RegisterRoutes(r, billingSvc, clinic.Currency)
	expenses.RegisterRoutes(r, expensesSvc)
	analytics.RegisterRoutes(r, analyticsSvc)

	return r
}
