package services

import (
	"testing"

	"github.com/fedsports/registration-system/models"
)

func TestNormalizeGender(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"M", models.GenderMale},
		{"F", models.GenderFemale},
		{"m", models.GenderMale},
		{" f ", models.GenderFemale},
		{"MASCULINO", "MASCULINO"},
		{"feminino", "FEMININO"},
		{"", ""},
		{"X", "X"},
	}

	for _, tt := range tests {
		if got := NormalizeGender(tt.input); got != tt.want {
			t.Errorf("NormalizeGender(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategoryMatches(t *testing.T) {
	intPtr := func(v int) *int { return &v }
	floatPtr := func(v float64) *float64 { return &v }

	juvenile := models.Category{
		Gender:    models.GenderMale,
		Name:      "Juvenil Leve",
		AgeMin:    intPtr(15),
		AgeMax:    intPtr(17),
		WeightMin: floatPtr(60),
		WeightMax: floatPtr(66),
		Active:    true,
	}
	openWeight := models.Category{
		Gender: models.GenderFemale,
		Name:   "Absoluto",
		AgeMin: intPtr(18),
		Active: true,
	}
	inactive := juvenile
	inactive.Active = false

	tests := []struct {
		name     string
		category models.Category
		gender   string
		age      int
		weight   float64
		want     bool
	}{
		{"inside all bounds", juvenile, models.GenderMale, 16, 63, true},
		{"age at lower bound", juvenile, models.GenderMale, 15, 63, true},
		{"age at upper bound", juvenile, models.GenderMale, 17, 63, true},
		{"age below range", juvenile, models.GenderMale, 14, 63, false},
		{"age above range", juvenile, models.GenderMale, 18, 63, false},
		{"weight at lower bound", juvenile, models.GenderMale, 16, 60, true},
		{"weight at upper bound", juvenile, models.GenderMale, 16, 66, true},
		{"weight below range", juvenile, models.GenderMale, 16, 59.9, false},
		{"weight above range", juvenile, models.GenderMale, 16, 66.1, false},
		{"wrong gender", juvenile, models.GenderFemale, 16, 63, false},
		{"gender compared case insensitively", juvenile, "masculino", 16, 63, true},
		{"nil bounds are unbounded", openWeight, models.GenderFemale, 40, 120, true},
		{"nil bounds still check age min", openWeight, models.GenderFemale, 17, 60, false},
		{"inactive never matches", inactive, models.GenderMale, 16, 63, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.category
			if got := Matches(&c, tt.gender, tt.age, tt.weight); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
