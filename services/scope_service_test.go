package services

import (
	"context"
	"errors"
	"testing"

	"github.com/fedsports/registration-system/models"
)

type fakeUserRepo struct {
	linked map[int][]int
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeUserRepo) ListAcademyIDsByUser(ctx context.Context, userID int) ([]int, error) {
	return f.linked[userID], nil
}

type fakeTenantRepo struct {
	all           []int
	byFederation  map[int][]int
	byAssociation map[int][]int
}

func (f *fakeTenantRepo) GetAcademy(ctx context.Context, id int) (*models.Academy, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeTenantRepo) GetAssociation(ctx context.Context, id int) (*models.Association, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeTenantRepo) ListAcademiesByAssociation(ctx context.Context, associationID int) ([]models.Academy, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeTenantRepo) ListAcademyIDsByAssociation(ctx context.Context, associationID int) ([]int, error) {
	return f.byAssociation[associationID], nil
}

func (f *fakeTenantRepo) ListAcademyIDsByFederation(ctx context.Context, federationID int) ([]int, error) {
	return f.byFederation[federationID], nil
}

func (f *fakeTenantRepo) ListAllAcademyIDs(ctx context.Context) ([]int, error) {
	return f.all, nil
}

func intPtr(v int) *int { return &v }

func TestEffectiveAcademyIDs(t *testing.T) {
	scope := NewScopeService(
		&fakeUserRepo{linked: map[int][]int{10: {5, 6}}},
		&fakeTenantRepo{
			all:           []int{1, 2, 3, 4, 5, 6},
			byFederation:  map[int][]int{1: {1, 2, 3}},
			byAssociation: map[int][]int{2: {4, 5}},
		},
	)
	ctx := context.Background()

	tests := []struct {
		name string
		user models.User
		mode models.PanelMode
		want []int
	}{
		{
			"link table wins over everything",
			models.User{ID: 10, Roles: []models.UserRole{models.RoleAdmin}},
			models.PanelFederation,
			[]int{5, 6},
		},
		{
			"academy staff in academy mode use the legacy column",
			models.User{ID: 20, Roles: []models.UserRole{models.RoleAcademyManager}, AcademyID: intPtr(7)},
			models.PanelAcademy,
			[]int{7},
		},
		{
			"academy staff in academy mode without any academy",
			models.User{ID: 20, Roles: []models.UserRole{models.RoleProfessor}},
			models.PanelAcademy,
			nil,
		},
		{
			"admin sees every academy",
			models.User{ID: 30, Roles: []models.UserRole{models.RoleAdmin}},
			models.PanelFederation,
			[]int{1, 2, 3, 4, 5, 6},
		},
		{
			"federation manager scoped to the federation",
			models.User{ID: 40, Roles: []models.UserRole{models.RoleFederationManager}, FederationID: intPtr(1)},
			models.PanelFederation,
			[]int{1, 2, 3},
		},
		{
			"association manager scoped to the association",
			models.User{ID: 50, Roles: []models.UserRole{models.RoleAssociationManager}, AssociationID: intPtr(2)},
			models.PanelAssociation,
			[]int{4, 5},
		},
		{
			"plain user falls back to the legacy column",
			models.User{ID: 60, Roles: []models.UserRole{models.RoleAthlete}, AcademyID: intPtr(9)},
			models.PanelAcademy,
			[]int{9},
		},
		{
			"no scope at all",
			models.User{ID: 70, Roles: []models.UserRole{models.RoleAthlete}},
			models.PanelAcademy,
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := tt.user
			got, err := scope.EffectiveAcademyIDs(ctx, &u, tt.mode)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("scope = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("scope = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestRequireAcademyStaff(t *testing.T) {
	scope := NewScopeService(&fakeUserRepo{}, &fakeTenantRepo{})
	ctx := context.Background()

	t.Run("admin bypasses the scope check", func(t *testing.T) {
		u := models.User{ID: 1, Roles: []models.UserRole{models.RoleAdmin}}
		if err := scope.RequireAcademyStaff(ctx, &u, models.PanelAcademy, 99); err != nil {
			t.Errorf("admin rejected: %v", err)
		}
	})

	t.Run("staff of the academy passes", func(t *testing.T) {
		u := models.User{ID: 2, Roles: []models.UserRole{models.RoleProfessor}, AcademyID: intPtr(4)}
		if err := scope.RequireAcademyStaff(ctx, &u, models.PanelAcademy, 4); err != nil {
			t.Errorf("staff rejected: %v", err)
		}
	})

	t.Run("staff of another academy rejected", func(t *testing.T) {
		u := models.User{ID: 2, Roles: []models.UserRole{models.RoleAcademyManager}, AcademyID: intPtr(4)}
		if err := scope.RequireAcademyStaff(ctx, &u, models.PanelAcademy, 5); !errors.Is(err, ErrForbiddenOperation) {
			t.Errorf("err = %v, want ErrForbiddenOperation", err)
		}
	})

	t.Run("non-staff roles rejected", func(t *testing.T) {
		u := models.User{ID: 3, Roles: []models.UserRole{models.RoleAthlete}, AcademyID: intPtr(4)}
		if err := scope.RequireAcademyStaff(ctx, &u, models.PanelAcademy, 4); !errors.Is(err, ErrForbiddenOperation) {
			t.Errorf("err = %v, want ErrForbiddenOperation", err)
		}
	})
}

func TestRequireAssociationManager(t *testing.T) {
	scope := NewScopeService(&fakeUserRepo{}, &fakeTenantRepo{})
	ctx := context.Background()

	t.Run("association manager", func(t *testing.T) {
		u := models.User{ID: 1, Roles: []models.UserRole{models.RoleAssociationManager}, AssociationID: intPtr(8)}
		got, err := scope.RequireAssociationManager(ctx, &u)
		if err != nil || got != 8 {
			t.Errorf("got (%d, %v), want (8, nil)", got, err)
		}
	})

	t.Run("manager without an association", func(t *testing.T) {
		u := models.User{ID: 2, Roles: []models.UserRole{models.RoleAssociationManager}}
		if _, err := scope.RequireAssociationManager(ctx, &u); !errors.Is(err, ErrNoTenantSelected) {
			t.Errorf("err = %v, want ErrNoTenantSelected", err)
		}
	})

	t.Run("academy staff rejected", func(t *testing.T) {
		u := models.User{ID: 3, Roles: []models.UserRole{models.RoleAcademyManager}, AssociationID: intPtr(8)}
		if _, err := scope.RequireAssociationManager(ctx, &u); !errors.Is(err, ErrForbiddenOperation) {
			t.Errorf("err = %v, want ErrForbiddenOperation", err)
		}
	})
}
