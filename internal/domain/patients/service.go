package patients

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("patient not found")
	ErrOwnerNotFound  = errors.New("owner not found")
	ErrDuplicatePhone = errors.New("phone already registered")
)

// Mismo patrón que usaba recepción: dígitos con prefijo internacional opcional.
var phoneRegex = regexp.MustCompile(`^\+?\d{8,15}$`)

const DefaultReminderWindow = 30 * 24 * time.Hour

type Service struct {
	owners   OwnerRepository
	repo     Repository
	vaccines VaccineRepository
	now      func() time.Time
}

func NewService(owners OwnerRepository, repo Repository, vaccines VaccineRepository) *Service {
	return &Service{
		owners:   owners,
		repo:     repo,
		vaccines: vaccines,
		now:      time.Now,
	}
}

type RegisterOwnerInput struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

func (s *Service) RegisterOwner(ctx context.Context, in RegisterOwnerInput) (Owner, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)

	if name == "" {
		return Owner{}, ErrInvalidInput
	}
	if !phoneRegex.MatchString(phone) {
		return Owner{}, ErrInvalidInput
	}

	// El teléfono es único; si ya existe, no creamos otro dueño.
	if _, err := s.owners.GetByPhone(ctx, phone); err == nil {
		return Owner{}, ErrDuplicatePhone
	}

	now := s.now()
	o := Owner{
		ID:        uuid.NewString(),
		Name:      name,
		Phone:     phone,
		Email:     strings.TrimSpace(in.Email),
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.owners.Create(ctx, o); err != nil {
		return Owner{}, err
	}
	return o, nil
}

func (s *Service) GetOwner(ctx context.Context, id string) (Owner, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Owner{}, ErrOwnerNotFound
	}
	return s.owners.GetByID(ctx, id)
}

func (s *Service) ListOwners(ctx context.Context) ([]Owner, error) {
	return s.owners.List(ctx)
}

type CreateInput struct {
	Name      string
	Species   string
	Sex       string
	BirthDate *time.Time
	WeightKg  float64
	Notes     string
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (Patient, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Patient{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Patient{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Species) == "" {
		return Patient{}, ErrInvalidInput
	}
	if in.WeightKg < 0 {
		return Patient{}, ErrInvalidInput
	}

	if _, err := s.owners.GetByID(ctx, ownerID); err != nil {
		return Patient{}, ErrOwnerNotFound
	}

	sex := Sex(strings.TrimSpace(in.Sex))
	if sex == "" {
		sex = SexUnknown
	}

	now := s.now()
	p := Patient{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(in.Name),
		Species:   Species(strings.TrimSpace(in.Species)),
		Sex:       sex,
		BirthDate: in.BirthDate,
		WeightKg:  in.WeightKg,
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Patient{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Patient{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Patient, error) {
	return s.repo.List(ctx, f)
}

// OptionalDate distingue "no enviado" de "enviado como null" en un PATCH.
type OptionalDate struct {
	Present bool
	Value   *time.Time
}

type UpdateProfileInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name      *string
	Species   *string
	Sex       *string
	WeightKg  *float64
	Notes     *string
	BirthDate OptionalDate
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Patient{}, err
	}

	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return Patient{}, ErrInvalidInput
		}
		p.Name = v
	}
	if in.Species != nil {
		v := strings.TrimSpace(*in.Species)
		if v == "" {
			return Patient{}, ErrInvalidInput
		}
		p.Species = Species(v)
	}
	if in.Sex != nil {
		p.Sex = Sex(strings.TrimSpace(*in.Sex))
	}
	if in.WeightKg != nil {
		if *in.WeightKg < 0 {
			return Patient{}, ErrInvalidInput
		}
		p.WeightKg = *in.WeightKg
	}
	if in.Notes != nil {
		p.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.BirthDate.Present {
		p.BirthDate = in.BirthDate.Value // null = limpiar
	}

	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Patient{}, err
	}
	return p, nil
}

// Archive marca el paciente como archivado (no se borra).
// Idempotente: archivar dos veces devuelve el mismo estado.
func (s *Service) Archive(ctx context.Context, id string) (Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Patient{}, err
	}

	if p.Archived {
		return p, nil
	}

	now := s.now()
	p.Archived = true
	p.ArchivedAt = &now
	p.UpdatedAt = now

	if err := s.repo.Update(ctx, p); err != nil {
		return Patient{}, err
	}
	return p, nil
}

type VaccineInput struct {
	Type      string
	AppliedAt time.Time
	NextDueAt *time.Time
}

func (s *Service) AddVaccine(ctx context.Context, patientID string, in VaccineInput) (Vaccine, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" || strings.TrimSpace(in.Type) == "" || in.AppliedAt.IsZero() {
		return Vaccine{}, ErrInvalidInput
	}

	if _, err := s.repo.GetByID(ctx, patientID); err != nil {
		return Vaccine{}, err
	}

	v := Vaccine{
		ID:        uuid.NewString(),
		PatientID: patientID,
		Type:      strings.TrimSpace(in.Type),
		AppliedAt: in.AppliedAt,
		NextDueAt: in.NextDueAt,
		CreatedAt: s.now(),
	}

	if err := s.vaccines.Create(ctx, v); err != nil {
		return Vaccine{}, err
	}
	return v, nil
}

// VaccinesDueSoon lista las vacunas cuya próxima dosis cae dentro de la
// ventana dada (window <= 0 usa la ventana default de 30 días).
func (s *Service) VaccinesDueSoon(ctx context.Context, window time.Duration) ([]Vaccine, error) {
	if window <= 0 {
		window = DefaultReminderWindow
	}
	return s.vaccines.ListDueBefore(ctx, s.now().Add(window))
}

func (s *Service) ListVaccines(ctx context.Context, patientID string) ([]Vaccine, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.repo.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	return s.vaccines.ListByPatient(ctx, patientID)
}
