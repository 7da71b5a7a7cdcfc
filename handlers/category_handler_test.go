package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fedsports/registration-system/middleware"
	"github.com/fedsports/registration-system/models"
	"github.com/fedsports/registration-system/repositories"
	"github.com/fedsports/registration-system/services"
)

type fakeCategoryRepo struct{}

func (fakeCategoryRepo) Resolve(context.Context, string, int, float64) ([]models.Category, error) {
	return []models.Category{{ID: 1, Name: "Adulto Leve", Active: true}}, nil
}

func (fakeCategoryRepo) ListActive(context.Context) ([]models.Category, error) {
	return []models.Category{{ID: 1, Name: "Adulto Leve", Active: true}}, nil
}

type fakeAthleteRepo struct {
	athletes  map[int]*models.Athlete
	ownerOf   map[int]int   // user ID to their own athlete record
	guardians map[int][]int // guardian user ID to linked athlete IDs
}

func (f *fakeAthleteRepo) GetByID(_ context.Context, id int) (*models.Athlete, error) {
	athlete, ok := f.athletes[id]
	if !ok {
		return nil, repositories.ErrAthleteNotFound
	}
	return athlete, nil
}

func (f *fakeAthleteRepo) GetByUserID(_ context.Context, userID int) (*models.Athlete, error) {
	id, ok := f.ownerOf[userID]
	if !ok {
		return nil, repositories.ErrAthleteNotFound
	}
	return f.GetByID(context.Background(), id)
}

func (f *fakeAthleteRepo) UpdateColumns(context.Context, repositories.SQLExecutor, int, map[string]interface{}) error {
	return nil
}

func (f *fakeAthleteRepo) IsGuardianOf(_ context.Context, guardianUserID, athleteID int) (bool, error) {
	for _, id := range f.guardians[guardianUserID] {
		if id == athleteID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAthleteRepo) GuardianAcademyIDs(context.Context, int) ([]int, error) {
	return nil, nil
}

func TestFindHandlerAthleteDefaultsScope(t *testing.T) {
	const secret = "test-secret"

	gender := "M"
	weight := 66.0
	born := time.Date(2000, 3, 15, 0, 0, 0, 0, time.UTC)
	athletes := &fakeAthleteRepo{
		athletes: map[int]*models.Athlete{
			5: {ID: 5, Name: "Own", Gender: &gender, BirthDate: &born, Weight: &weight},
			6: {ID: 6, Name: "Other", Gender: &gender, BirthDate: &born, Weight: &weight},
		},
		ownerOf:   map[int]int{10: 5},
		guardians: map[int][]int{20: {6}},
	}
	handler := NewCategoryHandler(services.NewCategoryService(fakeCategoryRepo{}), athletes)
	protected := middleware.NewAuthenticator(secret).Authenticate(http.HandlerFunc(handler.FindHandler))

	token := func(userID int, role models.UserRole) string {
		t.Helper()
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id":    float64(userID),
			"perfis":     []interface{}{string(role)},
			"panel_mode": "academia",
			"exp":        time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte(secret))
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}
		return signed
	}

	tests := []struct {
		name      string
		token     string
		athleteID string
		want      int
	}{
		{"athlete reads own record", token(10, models.RoleAthlete), "5", http.StatusOK},
		{"athlete blocked from another record", token(10, models.RoleAthlete), "6", http.StatusForbidden},
		{"guardian reads a linked athlete", token(20, models.RoleGuardian), "6", http.StatusOK},
		{"guardian blocked from unlinked athlete", token(20, models.RoleGuardian), "5", http.StatusForbidden},
		{"academy manager reads any athlete", token(30, models.RoleAcademyManager), "6", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/categories/find?aluno_id="+tt.athleteID, nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()

			protected.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	t.Run("no session rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/categories/find?aluno_id=5", nil)
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}
