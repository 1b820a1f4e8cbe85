package patients

import "context"

// Exists responde si un paciente existe y no está archivado.
// Se usa para evitar ciclos de imports entre módulos (patients <-> appointments).
func (s *Service) Exists(ctx context.Context, patientID string) (bool, error) {
	p, err := s.repo.GetByID(ctx, patientID)
	if err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return !p.Archived, nil
}
