package services

import (
	"context"
	"log/slog"

	"github.com/fedsports/registration-system/models"
	"github.com/fedsports/registration-system/repositories"
)

const calendarSyncOrigin = "eventos_competicoes"

// CalendarService mirrors events into the shared calendar. It is a
// subscriber to the event lifecycle: every method swallows its own errors so
// a broken calendar can never abort an event operation. For the same reason
// the mirror runs after the event transaction commits, on its own
// connection (a failed statement would poison a shared transaction).
type CalendarService struct {
	calendarRepo repositories.CalendarRepository
	logger       *slog.Logger
}

func NewCalendarService(calendarRepo repositories.CalendarRepository, logger *slog.Logger) *CalendarService {
	return &CalendarService{calendarRepo: calendarRepo, logger: logger}
}

// MirrorCreate inserts one association-level entry plus one per academy.
func (s *CalendarService) MirrorCreate(ctx context.Context, event *models.Event, academyIDs []int, createdBy int) {
	start := event.EndAt
	if event.StartAt != nil {
		start = *event.StartAt
	}

	entry := models.CalendarEntry{
		Title:           event.Name,
		Description:     event.Description,
		StartDate:       start,
		EndDate:         event.EndAt,
		Type:            string(event.Type),
		Level:           models.CalendarLevelAssociation,
		LevelID:         event.AssociationID,
		CreatedByUserID: &createdBy,
		SyncOrigin:      ptr(calendarSyncOrigin),
		SourceEventID:   &event.ID,
	}
	if err := s.calendarRepo.InsertMirror(ctx, nil, &entry); err != nil {
		s.logger.Error("calendar mirror insert failed",
			slog.Int("event_id", event.ID), slog.Any("error", err))
	}

	for _, academyID := range academyIDs {
		academyEntry := entry
		academyEntry.ID = 0
		academyEntry.Level = models.CalendarLevelAcademy
		academyEntry.LevelID = academyID
		if err := s.calendarRepo.InsertMirror(ctx, nil, &academyEntry); err != nil {
			s.logger.Error("calendar mirror insert failed",
				slog.Int("event_id", event.ID), slog.Int("academy_id", academyID), slog.Any("error", err))
		}
	}
}

// MirrorUpdate refreshes every row tagged with the event id.
func (s *CalendarService) MirrorUpdate(ctx context.Context, event *models.Event) {
	start := event.EndAt
	if event.StartAt != nil {
		start = *event.StartAt
	}
	err := s.calendarRepo.UpdateBySourceEvent(ctx, nil, event.ID, event.Name, event.Description, start, event.EndAt)
	if err != nil {
		s.logger.Error("calendar mirror update failed",
			slog.Int("event_id", event.ID), slog.Any("error", err))
	}
}

func (s *CalendarService) MirrorDelete(ctx context.Context, eventID int) {
	if err := s.calendarRepo.DeleteBySourceEvent(ctx, nil, eventID); err != nil {
		s.logger.Error("calendar mirror delete failed",
			slog.Int("event_id", eventID), slog.Any("error", err))
	}
}

func ptr[T any](v T) *T {
	return &v
}
