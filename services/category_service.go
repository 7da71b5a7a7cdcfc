package services

import (
	"context"
	"strings"
	"time"

	"github.com/fedsports/registration-system/models"
	"github.com/fedsports/registration-system/repositories"
	"github.com/fedsports/registration-system/utils"
)

// CategoryService resolves the categories an athlete can compete in from
// gender, birth date and weight.
type CategoryService struct {
	categoryRepo repositories.CategoryRepository
	now          func() time.Time
}

func NewCategoryService(categoryRepo repositories.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, now: time.Now}
}

// NormalizeGender maps the single-letter form values onto the stored enum.
func NormalizeGender(gender string) string {
	g := strings.ToUpper(strings.TrimSpace(gender))
	switch g {
	case "M":
		return models.GenderMale
	case "F":
		return models.GenderFemale
	}
	return g
}

// Resolve returns the matching categories sorted by name. Any invalid input
// (empty gender, unparseable birth date, non-positive weight) yields an empty
// list rather than an error.
func (s *CategoryService) Resolve(ctx context.Context, gender, birthDate string, weight float64) ([]models.Category, error) {
	g := NormalizeGender(gender)
	if g != models.GenderMale && g != models.GenderFemale {
		return []models.Category{}, nil
	}
	born, ok := utils.ParseFlexibleDate(birthDate)
	if !ok {
		return []models.Category{}, nil
	}
	if weight <= 0 {
		return []models.Category{}, nil
	}

	age := utils.CivilYearAge(born, s.now())
	return s.categoryRepo.Resolve(ctx, g, age, weight)
}

// ListActive returns the whole active category table for the panel pickers.
func (s *CategoryService) ListActive(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.ListActive(ctx)
}

// ResolveForAthlete fills missing inputs from the athlete master record.
func (s *CategoryService) ResolveForAthlete(ctx context.Context, athlete *models.Athlete, gender, birthDate string, weight float64) ([]models.Category, error) {
	if athlete != nil {
		if gender == "" && athlete.Gender != nil {
			gender = *athlete.Gender
		}
		if birthDate == "" && athlete.BirthDate != nil {
			birthDate = athlete.BirthDate.Format(utils.DateLayoutISO)
		}
		if weight <= 0 && athlete.Weight != nil {
			weight = *athlete.Weight
		}
	}
	return s.Resolve(ctx, gender, birthDate, weight)
}

// Matches mirrors the repository predicate in Go for in-process checks.
func Matches(c *models.Category, gender string, age int, weight float64) bool {
	if !c.Active {
		return false
	}
	if !strings.EqualFold(c.Gender, gender) {
		return false
	}
	if c.AgeMin != nil && age < *c.AgeMin {
		return false
	}
	if c.AgeMax != nil && age > *c.AgeMax {
		return false
	}
	if c.WeightMin != nil && weight < *c.WeightMin {
		return false
	}
	if c.WeightMax != nil && weight > *c.WeightMax {
		return false
	}
	return true
}
