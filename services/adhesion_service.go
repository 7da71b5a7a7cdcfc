package services

import (
	"context"
	"errors"
	"time"

	"github.com/fedsports/registration-system/live"
	"github.com/fedsports/registration-system/models"
	"github.com/fedsports/registration-system/repositories"
)

type AdhesionService struct {
	adhesionRepo repositories.AdhesionRepository
	eventRepo    repositories.EventRepository
	tenantRepo   repositories.TenantRepository
	scope        *ScopeService
	hub          *live.Hub
	now          func() time.Time
}

func NewAdhesionService(
	adhesionRepo repositories.AdhesionRepository,
	eventRepo repositories.EventRepository,
	tenantRepo repositories.TenantRepository,
	scope *ScopeService,
	hub *live.Hub,
) *AdhesionService {
	return &AdhesionService{
		adhesionRepo: adhesionRepo,
		eventRepo:    eventRepo,
		tenantRepo:   tenantRepo,
		scope:        scope,
		hub:          hub,
		now:          time.Now,
	}
}

// SetAdhesion flips the opt-in flag of an academy for an event. The call is
// idempotent and inserts the row when the fan-out missed the academy, e.g.
// one created after the event. The adhesion fee defaults to the event's
// suggested fee the first time the academy opts in.
func (s *AdhesionService) SetAdhesion(ctx context.Context, user *models.User, mode models.PanelMode, eventID, academyID int, adhered bool) error {
	if err := s.scope.RequireAcademyStaff(ctx, user, mode, academyID); err != nil {
		return err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	if event.Closed(s.now()) {
		return ErrEventClosed
	}

	adhesion := &models.Adhesion{
		EventID:   eventID,
		AcademyID: academyID,
		Adhered:   adhered,
	}
	existing, err := s.adhesionRepo.Get(ctx, eventID, academyID)
	switch {
	case err == nil:
		adhesion.FeeValue = existing.FeeValue
	case errors.Is(err, repositories.ErrAdhesionNotFound):
	default:
		return err
	}
	if adhered && adhesion.FeeValue == nil && event.HasFee {
		adhesion.FeeValue = event.SuggestedFee
	}

	if err := s.adhesionRepo.Upsert(ctx, nil, adhesion); err != nil {
		return err
	}

	s.hub.BroadcastRosterUpdate(live.RosterUpdate{
		Type:      live.UpdateAdhesion,
		EventID:   eventID,
		AcademyID: academyID,
	})
	return nil
}

// GetAdhesion reports the opt-in state for the pair. A missing row reads as
// not adhered, matching the fan-out default.
func (s *AdhesionService) GetAdhesion(ctx context.Context, eventID, academyID int) (*models.Adhesion, error) {
	adhesion, err := s.adhesionRepo.Get(ctx, eventID, academyID)
	if errors.Is(err, repositories.ErrAdhesionNotFound) {
		return &models.Adhesion{EventID: eventID, AcademyID: academyID, Adhered: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return adhesion, nil
}

// ListByEvent returns every adhesion row of the event with the academy names
// joined in for the association panel.
func (s *AdhesionService) ListByEvent(ctx context.Context, eventID int) ([]models.Adhesion, error) {
	adhesions, err := s.adhesionRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	academies, err := s.tenantRepo.ListAcademiesByAssociation(ctx, event.AssociationID)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(academies))
	for _, a := range academies {
		names[a.ID] = a.Name
	}
	for i := range adhesions {
		if name, ok := names[adhesions[i].AcademyID]; ok {
			adhesions[i].AcademyName = name
		}
	}
	return adhesions, nil
}
