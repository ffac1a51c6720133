package barber

import (
	"context"
	"strings"

	domain "github.com/BruksfildServices01/housecall-booking/internal/domain/barber"
	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
	"github.com/BruksfildServices01/housecall-booking/internal/validators"
)

type Input struct {
	Name            *string
	Phone           *string
	Email           *string
	BadgeNumber     *string
	Specialties     *string
	ExperienceYears *int
	IsActive        *bool
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func validationError(fields []FieldError) error {
	return httperr.Validation(domain.CodeValidation, "invalid barber").
		WithDetails(map[string]any{"fields": fields})
}

// apply copies the set fields onto b and validates the result.
func apply(b *models.Barber, in Input) error {
	if in.Name != nil {
		b.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		b.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		b.Email = strings.TrimSpace(*in.Email)
	}
	if in.BadgeNumber != nil {
		b.BadgeNumber = strings.TrimSpace(*in.BadgeNumber)
	}
	if in.Specialties != nil {
		b.Specialties = strings.TrimSpace(*in.Specialties)
	}
	if in.ExperienceYears != nil {
		b.ExperienceYears = *in.ExperienceYears
	}
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}

	var fields []FieldError
	if len([]rune(b.Name)) < 2 {
		fields = append(fields, FieldError{"name", "name must be at least 2 characters"})
	}
	if b.Phone == "" {
		fields = append(fields, FieldError{"phone", "phone is required"})
	}
	if b.BadgeNumber == "" {
		fields = append(fields, FieldError{"identity_badge_number", "badge number is required"})
	}
	if b.Email != "" && !validators.IsEmail(b.Email) {
		fields = append(fields, FieldError{"email", "invalid email format"})
	}
	if b.ExperienceYears < 0 {
		fields = append(fields, FieldError{"experience_years", "experience_years cannot be negative"})
	}
	if len(fields) > 0 {
		return validationError(fields)
	}
	return nil
}

type Manage struct {
	repo domain.Repository
}

func NewManage(repo domain.Repository) *Manage {
	return &Manage{repo: repo}
}

func (uc *Manage) List(ctx context.Context, includeInactive bool) ([]models.Barber, error) {
	return uc.repo.List(ctx, includeInactive)
}

// Available is the public view of the assignment pool.
func (uc *Manage) Available(ctx context.Context) ([]models.Barber, error) {
	pool, err := uc.repo.ListEligible(ctx)
	if err != nil {
		return nil, err
	}
	domain.SortPool(pool)
	return pool, nil
}

func (uc *Manage) Get(ctx context.Context, id uint) (*models.Barber, error) {
	return getBarber(ctx, uc.repo, id)
}

func (uc *Manage) Create(ctx context.Context, in Input) (*models.Barber, error) {
	b := &models.Barber{IsActive: true}
	if err := apply(b, in); err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, b); err != nil {
		if httperr.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists()
		}
		return nil, err
	}
	return b, nil
}

func (uc *Manage) Update(ctx context.Context, id uint, in Input) (*models.Barber, error) {
	b, err := getBarber(ctx, uc.repo, id)
	if err != nil {
		return nil, err
	}
	if err := apply(b, in); err != nil {
		return nil, err
	}

	if err := uc.repo.Update(ctx, b); err != nil {
		if httperr.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists()
		}
		return nil, err
	}
	return b, nil
}

func (uc *Manage) Delete(ctx context.Context, id uint) error {
	if _, err := getBarber(ctx, uc.repo, id); err != nil {
		return err
	}

	n, err := uc.repo.CountOccupyingBookings(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrHasActiveBookings(n)
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *Manage) Stats(ctx context.Context, id uint) (*domain.Stats, error) {
	if _, err := getBarber(ctx, uc.repo, id); err != nil {
		return nil, err
	}
	return uc.repo.Stats(ctx, id)
}
