package patients

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repos (in-memory)
// -------------------------

type testOwnerRepo struct {
	byID map[string]Owner
}

func newTestOwnerRepo() *testOwnerRepo {
	return &testOwnerRepo{byID: map[string]Owner{}}
}

func (r *testOwnerRepo) Create(ctx context.Context, o Owner) error {
	if o.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[o.ID] = o
	return nil
}

func (r *testOwnerRepo) GetByID(ctx context.Context, id string) (Owner, error) {
	o, ok := r.byID[id]
	if !ok {
		return Owner{}, ErrOwnerNotFound
	}
	return o, nil
}

func (r *testOwnerRepo) GetByPhone(ctx context.Context, phone string) (Owner, error) {
	for _, o := range r.byID {
		if o.Phone == phone {
			return o, nil
		}
	}
	return Owner{}, ErrOwnerNotFound
}

func (r *testOwnerRepo) List(ctx context.Context) ([]Owner, error) {
	out := make([]Owner, 0, len(r.byID))
	for _, o := range r.byID {
		out = append(out, o)
	}
	return out, nil
}

type testPatientRepo struct {
	byID map[string]Patient
}

func newTestPatientRepo() *testPatientRepo {
	return &testPatientRepo{byID: map[string]Patient{}}
}

func (r *testPatientRepo) Create(ctx context.Context, p Patient) error {
	if p.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testPatientRepo) Update(ctx context.Context, p Patient) error {
	if _, ok := r.byID[p.ID]; !ok {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testPatientRepo) GetByID(ctx context.Context, id string) (Patient, error) {
	p, ok := r.byID[id]
	if !ok {
		return Patient{}, ErrNotFound
	}
	return p, nil
}

func (r *testPatientRepo) List(ctx context.Context, f ListFilter) ([]Patient, error) {
	out := make([]Patient, 0)
	for _, p := range r.byID {
		if p.Archived && !f.IncludeArchived {
			continue
		}
		if f.OwnerID != "" && p.OwnerID != f.OwnerID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type testVaccineRepo struct {
	byID map[string]Vaccine
}

func newTestVaccineRepo() *testVaccineRepo {
	return &testVaccineRepo{byID: map[string]Vaccine{}}
}

func (r *testVaccineRepo) Create(ctx context.Context, v Vaccine) error {
	r.byID[v.ID] = v
	return nil
}

func (r *testVaccineRepo) ListByPatient(ctx context.Context, patientID string) ([]Vaccine, error) {
	out := make([]Vaccine, 0)
	for _, v := range r.byID {
		if v.PatientID == patientID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *testVaccineRepo) ListDueBefore(ctx context.Context, cutoff time.Time) ([]Vaccine, error) {
	out := make([]Vaccine, 0)
	for _, v := range r.byID {
		if v.NextDueAt != nil && !v.NextDueAt.After(cutoff) {
			out = append(out, v)
		}
	}
	return out, nil
}

func newTestService() (*Service, *testOwnerRepo, *testPatientRepo, *testVaccineRepo) {
	owners := newTestOwnerRepo()
	repo := newTestPatientRepo()
	vaccines := newTestVaccineRepo()
	return NewService(owners, repo, vaccines), owners, repo, vaccines
}

func seedOwner(t *testing.T, svc *Service, phone string) Owner {
	t.Helper()

	o, err := svc.RegisterOwner(context.Background(), RegisterOwnerInput{
		Name:  "Ana Torres",
		Phone: phone,
	})
	if err != nil {
		t.Fatalf("RegisterOwner error: %v", err)
	}
	return o
}

// -------------------------
// Tests
// -------------------------

func TestService_RegisterOwner_ValidatesPhone(t *testing.T) {
	svc, _, _, _ := newTestService()

	cases := []struct {
		phone string
		ok    bool
	}{
		{"+51987654321", true},
		{"98765432", true},
		{"123", false},          // muy corto
		{"abc12345678", false},  // letras
		{"+5198765432x", false}, // sufijo inválido
		{"", false},
	}

	for _, c := range cases {
		_, err := svc.RegisterOwner(context.Background(), RegisterOwnerInput{
			Name:  "Ana",
			Phone: c.phone,
		})
		if c.ok && err != nil {
			t.Fatalf("phone %q: unexpected error %v", c.phone, err)
		}
		if !c.ok && err != ErrInvalidInput {
			t.Fatalf("phone %q: expected ErrInvalidInput, got %v", c.phone, err)
		}
	}
}

func TestService_RegisterOwner_DuplicatePhone(t *testing.T) {
	svc, _, _, _ := newTestService()

	seedOwner(t, svc, "+51987654321")

	_, err := svc.RegisterOwner(context.Background(), RegisterOwnerInput{
		Name:  "Otra Persona",
		Phone: "+51987654321",
	})
	if err != ErrDuplicatePhone {
		t.Fatalf("expected ErrDuplicatePhone, got %v", err)
	}
}

func TestService_Create_RequiresExistingOwner(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), "missing-owner", CreateInput{
		Name:    "Rex",
		Species: "dog",
	})
	if err != ErrOwnerNotFound {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
}

func TestService_Create_DefaultsSexToUnknown(t *testing.T) {
	svc, _, _, _ := newTestService()
	o := seedOwner(t, svc, "+51911222333")

	p, err := svc.Create(context.Background(), o.ID, CreateInput{
		Name:    "Rex",
		Species: "dog",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if p.Sex != SexUnknown {
		t.Fatalf("expected sex unknown, got %s", p.Sex)
	}
}

func TestService_UpdateProfile_BirthDateNullClears(t *testing.T) {
	svc, _, _, _ := newTestService()
	o := seedOwner(t, svc, "+51911222333")

	bd := time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC)
	p, err := svc.Create(context.Background(), o.ID, CreateInput{
		Name:      "Rex",
		Species:   "dog",
		BirthDate: &bd,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// Campo ausente => no tocar
	updated, err := svc.UpdateProfile(context.Background(), p.ID, UpdateProfileInput{})
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	if updated.BirthDate == nil || !updated.BirthDate.Equal(bd) {
		t.Fatalf("expected birth date untouched, got %v", updated.BirthDate)
	}

	// Presente con null => limpiar
	updated, err = svc.UpdateProfile(context.Background(), p.ID, UpdateProfileInput{
		BirthDate: OptionalDate{Present: true, Value: nil},
	})
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	if updated.BirthDate != nil {
		t.Fatalf("expected birth date cleared, got %v", updated.BirthDate)
	}
}

func TestService_UpdateProfile_RejectsEmptyName(t *testing.T) {
	svc, _, _, _ := newTestService()
	o := seedOwner(t, svc, "+51911222333")

	p, _ := svc.Create(context.Background(), o.ID, CreateInput{Name: "Rex", Species: "dog"})

	empty := "   "
	_, err := svc.UpdateProfile(context.Background(), p.ID, UpdateProfileInput{Name: &empty})
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Archive_Idempotent(t *testing.T) {
	svc, _, _, _ := newTestService()
	o := seedOwner(t, svc, "+51911222333")

	now1 := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	now2 := now1.Add(time.Hour)

	svc.now = func() time.Time { return now1 }
	p, _ := svc.Create(context.Background(), o.ID, CreateInput{Name: "Rex", Species: "dog"})

	archived, err := svc.Archive(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Archive error: %v", err)
	}
	if !archived.Archived || archived.ArchivedAt == nil {
		t.Fatalf("expected archived with timestamp, got %+v", archived)
	}

	// Segunda vez: mismo estado, sin mover ArchivedAt
	svc.now = func() time.Time { return now2 }
	again, err := svc.Archive(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Archive #2 error: %v", err)
	}
	if !again.ArchivedAt.Equal(*archived.ArchivedAt) {
		t.Fatalf("expected ArchivedAt unchanged, got %v", again.ArchivedAt)
	}
}

func TestService_ArchivedPatient_NotListedByDefault(t *testing.T) {
	svc, _, _, _ := newTestService()
	o := seedOwner(t, svc, "+51911222333")

	p, _ := svc.Create(context.Background(), o.ID, CreateInput{Name: "Rex", Species: "dog"})
	if _, err := svc.Archive(context.Background(), p.ID); err != nil {
		t.Fatalf("Archive error: %v", err)
	}

	items, err := svc.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected archived patient hidden, got %d items", len(items))
	}

	items, _ = svc.List(context.Background(), ListFilter{IncludeArchived: true})
	if len(items) != 1 {
		t.Fatalf("expected 1 item with include_archived, got %d", len(items))
	}
}

func TestService_Exists_FalseForArchived(t *testing.T) {
	svc, _, _, _ := newTestService()
	o := seedOwner(t, svc, "+51911222333")

	p, _ := svc.Create(context.Background(), o.ID, CreateInput{Name: "Rex", Species: "dog"})

	ok, err := svc.Exists(context.Background(), p.ID)
	if err != nil || !ok {
		t.Fatalf("expected exists true, got ok=%v err=%v", ok, err)
	}

	_, _ = svc.Archive(context.Background(), p.ID)

	ok, err = svc.Exists(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Exists error: %v", err)
	}
	if ok {
		t.Fatalf("expected exists false for archived patient")
	}
}

func TestService_AddVaccine_RequiresPatient(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.AddVaccine(context.Background(), "missing", VaccineInput{
		Type:      "rabies",
		AppliedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_VaccinesDueSoon_Window(t *testing.T) {
	svc, _, _, _ := newTestService()
	o := seedOwner(t, svc, "+51911222333")

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	p, _ := svc.Create(context.Background(), o.ID, CreateInput{Name: "Rex", Species: "dog"})

	addVaccine := func(typ string, next *time.Time) {
		t.Helper()
		_, err := svc.AddVaccine(context.Background(), p.ID, VaccineInput{
			Type:      typ,
			AppliedAt: now.AddDate(0, -6, 0),
			NextDueAt: next,
		})
		if err != nil {
			t.Fatalf("AddVaccine %s error: %v", typ, err)
		}
	}

	overdue := now.AddDate(0, 0, -3)
	soon := now.AddDate(0, 0, 10)
	far := now.AddDate(0, 4, 0)

	addVaccine("rabies", &overdue)   // vencida, sigue apareciendo
	addVaccine("parvovirus", &soon)  // dentro de la ventana default
	addVaccine("distemper", &far)    // fuera de los 30 días
	addVaccine("leptospirosis", nil) // sin próxima dosis

	due, err := svc.VaccinesDueSoon(context.Background(), 0)
	if err != nil {
		t.Fatalf("VaccinesDueSoon error: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("expected 2 vaccines due in default window, got %d", len(due))
	}

	// Ventana amplia: entra también la lejana
	due, err = svc.VaccinesDueSoon(context.Background(), 180*24*time.Hour)
	if err != nil {
		t.Fatalf("VaccinesDueSoon error: %v", err)
	}
	if len(due) != 3 {
		t.Fatalf("expected 3 vaccines due in wide window, got %d", len(due))
	}
}

func TestService_AddVaccine_AndList(t *testing.T) {
	svc, _, _, _ := newTestService()
	o := seedOwner(t, svc, "+51911222333")

	p, _ := svc.Create(context.Background(), o.ID, CreateInput{Name: "Rex", Species: "dog"})

	applied := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	next := applied.AddDate(1, 0, 0)

	v, err := svc.AddVaccine(context.Background(), p.ID, VaccineInput{
		Type:      "rabies",
		AppliedAt: applied,
		NextDueAt: &next,
	})
	if err != nil {
		t.Fatalf("AddVaccine error: %v", err)
	}
	if v.Type != "rabies" || v.NextDueAt == nil {
		t.Fatalf("unexpected vaccine: %+v", v)
	}

	items, err := svc.ListVaccines(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("ListVaccines error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 vaccine, got %d", len(items))
	}
}
