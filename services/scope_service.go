package services

import (
	"context"

	"github.com/fedsports/registration-system/models"
	"github.com/fedsports/registration-system/repositories"
)

// ScopeService resolves which academies a user may act for. Every guarded
// operation goes through it before touching registrations or adhesions.
type ScopeService struct {
	userRepo   repositories.UserRepository
	tenantRepo repositories.TenantRepository
}

func NewScopeService(userRepo repositories.UserRepository, tenantRepo repositories.TenantRepository) *ScopeService {
	return &ScopeService{userRepo: userRepo, tenantRepo: tenantRepo}
}

// EffectiveAcademyIDs resolves the academy scope of a user. Rules are
// evaluated in order and the first one yielding a non-empty set wins:
// explicit link table, academy-mode restriction for academy staff, admin,
// federation manager, association manager, legacy single-academy column.
func (s *ScopeService) EffectiveAcademyIDs(ctx context.Context, user *models.User, mode models.PanelMode) ([]int, error) {
	linked, err := s.userRepo.ListAcademyIDsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(linked) > 0 {
		return linked, nil
	}

	// Academy staff in academy mode never inherit a wider scope; with no
	// link rows only the legacy column can still apply.
	if mode == models.PanelAcademy && user.HasAnyRole(models.RoleAcademyManager, models.RoleProfessor) {
		if user.AcademyID != nil {
			return []int{*user.AcademyID}, nil
		}
		return nil, nil
	}

	if user.HasRole(models.RoleAdmin) {
		return s.tenantRepo.ListAllAcademyIDs(ctx)
	}
	if user.HasRole(models.RoleFederationManager) && user.FederationID != nil {
		ids, err := s.tenantRepo.ListAcademyIDsByFederation(ctx, *user.FederationID)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			return ids, nil
		}
	}
	if user.HasRole(models.RoleAssociationManager) && user.AssociationID != nil {
		ids, err := s.tenantRepo.ListAcademyIDsByAssociation(ctx, *user.AssociationID)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			return ids, nil
		}
	}

	if user.AcademyID != nil {
		return []int{*user.AcademyID}, nil
	}
	return nil, nil
}

// CanActForAcademy reports whether the academy is inside the user's
// effective scope.
func (s *ScopeService) CanActForAcademy(ctx context.Context, user *models.User, mode models.PanelMode, academyID int) (bool, error) {
	ids, err := s.EffectiveAcademyIDs(ctx, user, mode)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == academyID {
			return true, nil
		}
	}
	return false, nil
}

// RequireAcademyStaff gates manager-side registration operations: the caller
// must be an admin, or academy staff whose scope covers the academy.
func (s *ScopeService) RequireAcademyStaff(ctx context.Context, user *models.User, mode models.PanelMode, academyID int) error {
	if user.HasRole(models.RoleAdmin) {
		return nil
	}
	if !user.HasAnyRole(models.RoleAcademyManager, models.RoleProfessor) {
		return ErrForbiddenOperation
	}
	ok, err := s.CanActForAcademy(ctx, user, mode, academyID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbiddenOperation
	}
	return nil
}

// RequireAssociationManager gates association-side operations and returns
// the association the user acts for.
func (s *ScopeService) RequireAssociationManager(ctx context.Context, user *models.User) (int, error) {
	if !user.HasAnyRole(models.RoleAdmin, models.RoleFederationManager, models.RoleAssociationManager) {
		return 0, ErrForbiddenOperation
	}
	if user.AssociationID == nil {
		return 0, ErrNoTenantSelected
	}
	return *user.AssociationID, nil
}
