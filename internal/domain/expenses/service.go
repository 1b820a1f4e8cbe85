package expenses

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidRange = errors.New("invalid date range")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type RecordInput struct {
	Date        time.Time
	Category    string
	Amount      float64
	Description string
}

func (s *Service) Record(ctx context.Context, in RecordInput) (Expense, error) {
	if strings.TrimSpace(in.Category) == "" || in.Amount <= 0 {
		return Expense{}, ErrInvalidInput
	}

	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	e := Expense{
		ID:          uuid.NewString(),
		Date:        date,
		Category:    strings.TrimSpace(in.Category),
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   s.now(),
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return Expense{}, err
	}
	return e, nil
}

func (s *Service) List(ctx context.Context, from, to time.Time) ([]Expense, error) {
	if from.IsZero() || to.IsZero() || from.After(to) {
		return nil, ErrInvalidRange
	}
	return s.repo.List(ctx, from, to)
}
