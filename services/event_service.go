package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fedsports/registration-system/models"
	"github.com/fedsports/registration-system/repositories"
)

type CreateEventInput struct {
	Name         string
	Description  *string
	Type         string
	FormID       *int
	StartAt      string
	EndAt        string
	HasFee       bool
	SuggestedFee *float64
}

type EventService struct {
	db                *sql.DB
	eventRepo         repositories.EventRepository
	formRepo          repositories.FormRepository
	adhesionRepo      repositories.AdhesionRepository
	tenantRepo        repositories.TenantRepository
	attachmentService *AttachmentService
	calendarService   *CalendarService
	logger            *slog.Logger
	now               func() time.Time
}

func NewEventService(
	db *sql.DB,
	eventRepo repositories.EventRepository,
	formRepo repositories.FormRepository,
	adhesionRepo repositories.AdhesionRepository,
	tenantRepo repositories.TenantRepository,
	attachmentService *AttachmentService,
	calendarService *CalendarService,
	logger *slog.Logger,
) *EventService {
	return &EventService{
		db:                db,
		eventRepo:         eventRepo,
		formRepo:          formRepo,
		adhesionRepo:      adhesionRepo,
		tenantRepo:        tenantRepo,
		attachmentService: attachmentService,
		calendarService:   calendarService,
		logger:            logger,
		now:               time.Now,
	}
}

// parseEventTime accepts the datetime-local form value and a couple of
// common fallbacks.
func parseEventTime(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
}

func normalizeEventType(value string) models.EventType {
	if models.EventType(value) == models.TypeCompetition {
		return models.TypeCompetition
	}
	return models.TypeEvent
}

func (s *EventService) buildEvent(associationID int, input CreateEventInput) (*models.Event, error) {
	if input.Name == "" {
		return nil, ErrEventNameRequired
	}
	if input.EndAt == "" {
		return nil, ErrEventEndDateRequired
	}
	endAt, err := parseEventTime(input.EndAt)
	if err != nil {
		return nil, ErrEventEndDateRequired
	}

	event := &models.Event{
		AssociationID: associationID,
		Name:          input.Name,
		Description:   input.Description,
		Type:          normalizeEventType(input.Type),
		FormID:        input.FormID,
		EndAt:         endAt,
		Status:        models.EventActive,
		HasFee:        input.HasFee,
		SuggestedFee:  input.SuggestedFee,
	}
	if input.StartAt != "" {
		if startAt, err := parseEventTime(input.StartAt); err == nil {
			event.StartAt = &startAt
		}
	}
	return event, nil
}

// CreateEvent writes the event row, fans out adhesion rows to every academy
// of the association and persists the uploaded attachments, all in one
// transaction. The calendar mirror runs after commit and never fails the
// call.
func (s *EventService) CreateEvent(ctx context.Context, associationID, createdBy int, input CreateEventInput, attachments []AttachmentUpload) (*models.Event, error) {
	event, err := s.buildEvent(associationID, input)
	if err != nil {
		return nil, err
	}

	academyIDs, err := s.tenantRepo.ListAcademyIDsByAssociation(ctx, associationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list academies: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.eventRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}
	if err := s.adhesionRepo.CreateBatch(ctx, tx, event.ID, academyIDs); err != nil {
		return nil, err
	}
	for _, up := range attachments {
		attachment, storeErr := s.attachmentService.Store(ctx, tx, event.ID, up, createdBy)
		if storeErr != nil {
			return nil, storeErr
		}
		event.Attachments = append(event.Attachments, *attachment)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit event creation: %w", err)
	}

	s.calendarService.MirrorCreate(ctx, event, academyIDs, createdBy)
	return event, nil
}

// EditEvent processes field updates, attachment removals and attachment
// additions in one transaction, then refreshes the calendar mirror.
func (s *EventService) EditEvent(ctx context.Context, eventID, associationID, userID int, input CreateEventInput, removeAttachmentIDs []int, newAttachments []AttachmentUpload) (*models.Event, error) {
	existing, err := s.ownedEvent(ctx, eventID, associationID)
	if err != nil {
		return nil, err
	}
	if existing.Closed(s.now()) {
		return nil, ErrEventClosed
	}

	updated, err := s.buildEvent(associationID, input)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.Status = existing.Status
	updated.CreatedAt = existing.CreatedAt

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.eventRepo.Update(ctx, tx, updated); err != nil {
		return nil, err
	}
	for _, attachmentID := range removeAttachmentIDs {
		if err := s.attachmentService.Delete(ctx, tx, attachmentID); err != nil {
			return nil, err
		}
	}
	for _, up := range newAttachments {
		if _, err := s.attachmentService.Store(ctx, tx, updated.ID, up, userID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit event update: %w", err)
	}

	s.calendarService.MirrorUpdate(ctx, updated)
	return s.GetEvent(ctx, eventID)
}

// Finalize flips the explicit closure flag. Reactivate undoes it, but the
// time-based closure stays in force regardless.
func (s *EventService) Finalize(ctx context.Context, eventID, associationID int) error {
	return s.setStatus(ctx, eventID, associationID, models.EventFinalized)
}

func (s *EventService) Reactivate(ctx context.Context, eventID, associationID int) error {
	return s.setStatus(ctx, eventID, associationID, models.EventActive)
}

func (s *EventService) setStatus(ctx context.Context, eventID, associationID int, status models.EventStatus) error {
	if _, err := s.ownedEvent(ctx, eventID, associationID); err != nil {
		return err
	}
	if err := s.eventRepo.UpdateStatus(ctx, eventID, status); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	return nil
}

// DeleteEvent cascades registrations and adhesions through the schema and
// removes attachment files best-effort after the row deletes commit.
func (s *EventService) DeleteEvent(ctx context.Context, eventID, associationID int) error {
	if _, err := s.ownedEvent(ctx, eventID, associationID); err != nil {
		return err
	}

	attachments, err := s.attachmentService.ListByEvent(ctx, eventID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.eventRepo.Delete(ctx, tx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event deletion: %w", err)
	}

	for _, attachment := range attachments {
		if err := s.attachmentService.uploader.Delete(ctx, attachment.StoredName); err != nil {
			s.logger.Error("failed to remove attachment file on event deletion",
				slog.String("stored_name", attachment.StoredName), slog.Any("error", err))
		}
	}
	s.calendarService.MirrorDelete(ctx, eventID)
	return nil
}

func (s *EventService) GetEvent(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	attachments, err := s.attachmentService.ListByEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	event.Attachments = attachments

	if event.FormID != nil {
		form, err := s.formRepo.GetWithFields(ctx, *event.FormID)
		if err == nil {
			event.Form = form
		} else if !errors.Is(err, repositories.ErrFormNotFound) {
			return nil, err
		}
	}
	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context, filter repositories.ListEventsFilter) ([]models.Event, error) {
	return s.eventRepo.List(ctx, filter)
}

// EventClosed exposes the closure check with the service clock.
func (s *EventService) EventClosed(event *models.Event) bool {
	return event.Closed(s.now())
}

func (s *EventService) ownedEvent(ctx context.Context, eventID, associationID int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if event.AssociationID != associationID {
		return nil, ErrEventNotFound
	}
	return event, nil
}
