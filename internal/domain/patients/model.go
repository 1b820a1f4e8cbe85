package patients

import "time"

// Species define las especies soportadas.
// @Enum dog, cat, bird, reptile, other
type Species string

const (
	SpeciesDog     Species = "dog"
	SpeciesCat     Species = "cat"
	SpeciesBird    Species = "bird"
	SpeciesReptile Species = "reptile"
	SpeciesOther   Species = "other"
)

// Sex define el sexo del paciente.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// Owner representa al dueño de uno o más pacientes.
// El teléfono es único: es la llave natural con la que recepción busca al dueño.
type Owner struct {
	ID string

	Name    string
	Phone   string
	Email   string
	Address string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Patient representa el perfil de un paciente registrado en la clínica.
// Nunca se borra: se archiva (soft-archive) para conservar el historial.
type Patient struct {
	ID      string
	OwnerID string

	Name    string
	Species Species
	Sex     Sex

	BirthDate *time.Time
	WeightKg  float64 // 0 = no registrado

	Notes string

	Archived   bool
	ArchivedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Vaccine es una aplicación de vacuna registrada sobre un paciente.
type Vaccine struct {
	ID        string
	PatientID string

	Type      string
	AppliedAt time.Time
	NextDueAt *time.Time

	CreatedAt time.Time
}
