package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/fedsports/registration-system/live"
	"github.com/fedsports/registration-system/models"
	"github.com/fedsports/registration-system/repositories"
	"github.com/fedsports/registration-system/utils"
)

type SubmitFormInput struct {
	EventID    int               `json:"evento_id"`
	AcademyID  int               `json:"id_academia"`
	AthleteID  int               `json:"aluno_id"`
	FormValues map[string]string `json:"dados_form"`
	Categories []string          `json:"categorias"`
}

type RegistrationService struct {
	db               *sql.DB
	registrationRepo repositories.RegistrationRepository
	eventRepo        repositories.EventRepository
	adhesionRepo     repositories.AdhesionRepository
	athleteRepo      repositories.AthleteRepository
	paymentRepo      repositories.PaymentRepository
	scope            *ScopeService
	hub              *live.Hub
	logger           *slog.Logger
	now              func() time.Time
}

func NewRegistrationService(
	db *sql.DB,
	registrationRepo repositories.RegistrationRepository,
	eventRepo repositories.EventRepository,
	adhesionRepo repositories.AdhesionRepository,
	athleteRepo repositories.AthleteRepository,
	paymentRepo repositories.PaymentRepository,
	scope *ScopeService,
	hub *live.Hub,
	logger *slog.Logger,
) *RegistrationService {
	return &RegistrationService{
		db:               db,
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		adhesionRepo:     adhesionRepo,
		athleteRepo:      athleteRepo,
		paymentRepo:      paymentRepo,
		scope:            scope,
		hub:              hub,
		logger:           logger,
		now:              time.Now,
	}
}

// SubmitForm creates one draft registration per selected category, or a
// single one when no category was selected, and writes the catalog-mapped
// form values back to the athlete master record, all in one transaction.
// Categories the athlete is already registered in are skipped. Returns how
// many registrations were created.
func (s *RegistrationService) SubmitForm(ctx context.Context, user *models.User, mode models.PanelMode, input SubmitFormInput) (int, error) {
	if _, err := s.openEvent(ctx, input.EventID); err != nil {
		return 0, err
	}

	athlete, err := s.athleteRepo.GetByID(ctx, input.AthleteID)
	if err != nil {
		if errors.Is(err, repositories.ErrAthleteNotFound) {
			return 0, ErrAthleteNotFound
		}
		return 0, err
	}

	if err := s.authorizeSubmitter(ctx, user, mode, athlete, input.AcademyID); err != nil {
		return 0, err
	}
	if err := s.requireAdhered(ctx, input.EventID, input.AcademyID); err != nil {
		return 0, err
	}

	categories := dedupeCategories(input.Categories)
	existing, err := s.registrationRepo.ListCategoriesByAthlete(ctx, input.EventID, input.AcademyID, input.AthleteID)
	if err != nil {
		return 0, err
	}
	taken := make(map[string]bool, len(existing))
	for _, c := range existing {
		taken[c] = true
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	create := func(category string) error {
		formData := make(map[string]string, len(input.FormValues)+1)
		for k, v := range input.FormValues {
			formData[k] = v
		}
		if category != "" {
			formData["categoria"] = category
		}
		reg := &models.Registration{
			EventID:     input.EventID,
			AcademyID:   input.AcademyID,
			AthleteID:   &input.AthleteID,
			SubmittedBy: user.ID,
			FormData:    formData,
			Status:      models.RegistrationDraft,
		}
		return s.registrationRepo.Create(ctx, tx, reg)
	}

	created := 0
	if len(categories) == 0 {
		// Forms without category selection still yield one registration.
		if err := create(""); err != nil {
			return 0, err
		}
		created = 1
	} else {
		for _, category := range categories {
			if taken[category] {
				continue
			}
			if err := create(category); err != nil {
				return 0, err
			}
			created++
		}
		if created == 0 {
			return 0, ErrValidationFailed
		}
	}

	if columns := athleteWriteBack(input.FormValues); len(columns) > 0 {
		if err := s.athleteRepo.UpdateColumns(ctx, tx, input.AthleteID, columns); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit registrations: %w", err)
	}

	s.hub.BroadcastRosterUpdate(live.RosterUpdate{
		Type:      live.UpdateRegistration,
		EventID:   input.EventID,
		AcademyID: input.AcademyID,
		Count:     created,
	})
	return created, nil
}

// EditRegistration replaces the form data wholesale. Only drafts of open
// events can be edited, and only by academy or association management.
func (s *RegistrationService) EditRegistration(ctx context.Context, user *models.User, mode models.PanelMode, registrationID int, formData map[string]string) error {
	reg, err := s.getRegistration(ctx, registrationID)
	if err != nil {
		return err
	}
	if reg.Status != models.RegistrationDraft {
		return ErrRegistrationLocked
	}
	if _, err := s.openEvent(ctx, reg.EventID); err != nil {
		return err
	}
	if err := s.authorizeManager(ctx, user, mode, reg.AcademyID); err != nil {
		return err
	}

	if err := s.registrationRepo.UpdateFormData(ctx, registrationID, formData); err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return ErrRegistrationNotFound
		}
		return err
	}
	return nil
}

// CancelRegistration removes a single draft row.
func (s *RegistrationService) CancelRegistration(ctx context.Context, user *models.User, mode models.PanelMode, registrationID int) error {
	reg, err := s.getRegistration(ctx, registrationID)
	if err != nil {
		return err
	}
	if reg.Status != models.RegistrationDraft {
		return ErrRegistrationLocked
	}
	if _, err := s.openEvent(ctx, reg.EventID); err != nil {
		return err
	}
	if err := s.authorizeManager(ctx, user, mode, reg.AcademyID); err != nil {
		return err
	}

	if err := s.registrationRepo.Delete(ctx, registrationID); err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return ErrRegistrationNotFound
		}
		return err
	}
	s.hub.BroadcastRosterUpdate(live.RosterUpdate{
		Type:      live.UpdateRegistration,
		EventID:   reg.EventID,
		AcademyID: reg.AcademyID,
	})
	return nil
}

// SubmitBatch flips every draft of the pair to submitted with a single
// timestamp. Rows already submitted are untouched, so a retry is harmless.
func (s *RegistrationService) SubmitBatch(ctx context.Context, user *models.User, mode models.PanelMode, eventID, academyID int) (int64, error) {
	event, err := s.openEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if err := s.scope.RequireAcademyStaff(ctx, user, mode, academyID); err != nil {
		return 0, err
	}

	submitted, err := s.registrationRepo.SubmitBatch(ctx, nil, eventID, academyID, s.now())
	if err != nil {
		return 0, err
	}
	if submitted == 0 {
		return 0, ErrNoRegistrations
	}

	s.recalcPayment(ctx, event, academyID)
	s.hub.BroadcastRosterUpdate(live.RosterUpdate{
		Type:      live.UpdateSubmission,
		EventID:   eventID,
		AcademyID: academyID,
		Count:     int(submitted),
	})
	return submitted, nil
}

// CancelSubmission reverts an academy's submitted rows back to draft. This
// is the association-side undo for a roster sent by mistake.
func (s *RegistrationService) CancelSubmission(ctx context.Context, user *models.User, eventID, academyID int) (int64, error) {
	associationID, err := s.scope.RequireAssociationManager(ctx, user)
	if err != nil {
		return 0, err
	}
	event, err := s.ownedEvent(ctx, eventID, associationID)
	if err != nil {
		return 0, err
	}

	reverted, err := s.registrationRepo.RevertBatch(ctx, nil, eventID, academyID)
	if err != nil {
		return 0, err
	}
	if reverted == 0 {
		return 0, ErrNothingSubmitted
	}

	s.recalcPayment(ctx, event, academyID)
	s.hub.BroadcastRosterUpdate(live.RosterUpdate{
		Type:      live.UpdateSubmission,
		EventID:   eventID,
		AcademyID: academyID,
	})
	return reverted, nil
}

// WipeAcademyRegistrations clears the whole roster of the pair, drafts and
// submitted rows alike, and drops the payment record with it. Both the academy
// staff and the owning association can wipe.
func (s *RegistrationService) WipeAcademyRegistrations(ctx context.Context, user *models.User, mode models.PanelMode, eventID, academyID int) (int64, error) {
	if _, err := s.openEvent(ctx, eventID); err != nil {
		return 0, err
	}
	if err := s.authorizeManager(ctx, user, mode, academyID); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	removed, err := s.registrationRepo.DeleteByEventAndAcademy(ctx, tx, eventID, academyID)
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, ErrNoRegistrations
	}
	if err := s.paymentRepo.DeleteByEventAndAcademy(ctx, tx, eventID, academyID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit roster wipe: %w", err)
	}

	s.hub.BroadcastRosterUpdate(live.RosterUpdate{
		Type:      live.UpdateRegistration,
		EventID:   eventID,
		AcademyID: academyID,
	})
	return removed, nil
}

// IncludeWalkIn lets a manager add an athlete who skipped the form. The row
// starts as a draft with empty form data and is picked up by the next batch
// submit. At most one walk-in per (event, academy, athlete).
func (s *RegistrationService) IncludeWalkIn(ctx context.Context, user *models.User, mode models.PanelMode, eventID, academyID, athleteID int) (*models.Registration, error) {
	if _, err := s.openEvent(ctx, eventID); err != nil {
		return nil, err
	}
	if err := s.scope.RequireAcademyStaff(ctx, user, mode, academyID); err != nil {
		return nil, err
	}
	if err := s.requireAdhered(ctx, eventID, academyID); err != nil {
		return nil, err
	}
	if _, err := s.athleteRepo.GetByID(ctx, athleteID); err != nil {
		if errors.Is(err, repositories.ErrAthleteNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}

	exists, err := s.registrationRepo.WalkInExists(ctx, eventID, academyID, athleteID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrWalkInAlreadyExists
	}

	reg := &models.Registration{
		EventID:     eventID,
		AcademyID:   academyID,
		AthleteID:   &athleteID,
		SubmittedBy: user.ID,
		FormData:    map[string]string{},
		WalkIn:      true,
		Status:      models.RegistrationDraft,
	}
	if err := s.registrationRepo.Create(ctx, nil, reg); err != nil {
		if errors.Is(err, repositories.ErrRegistrationWalkInConflict) {
			return nil, ErrWalkInAlreadyExists
		}
		return nil, err
	}

	s.hub.BroadcastRosterUpdate(live.RosterUpdate{
		Type:      live.UpdateRegistration,
		EventID:   eventID,
		AcademyID: academyID,
		Count:     1,
	})
	return reg, nil
}

// ListForAcademy returns the roster an academy sees: drafts and submitted
// rows of its own athletes.
func (s *RegistrationService) ListForAcademy(ctx context.Context, user *models.User, mode models.PanelMode, eventID, academyID int) ([]models.Registration, error) {
	if err := s.scope.RequireAcademyStaff(ctx, user, mode, academyID); err != nil {
		return nil, err
	}
	return s.registrationRepo.ListByEventAndAcademy(ctx, eventID, academyID)
}

func (s *RegistrationService) getRegistration(ctx context.Context, id int) (*models.Registration, error) {
	reg, err := s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (s *RegistrationService) openEvent(ctx context.Context, eventID int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if event.Closed(s.now()) {
		return nil, ErrEventClosed
	}
	return event, nil
}

func (s *RegistrationService) ownedEvent(ctx context.Context, eventID, associationID int) (*models.Event, error) {
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

func (s *RegistrationService) requireAdhered(ctx context.Context, eventID, academyID int) error {
	adhesion, err := s.adhesionRepo.Get(ctx, eventID, academyID)
	if errors.Is(err, repositories.ErrAdhesionNotFound) {
		return ErrAcademyNotAdhered
	}
	if err != nil {
		return err
	}
	if !adhesion.Adhered {
		return ErrAcademyNotAdhered
	}
	return nil
}

// authorizeSubmitter accepts the athlete themselves, a linked guardian, or
// academy staff acting for the athlete's academy.
func (s *RegistrationService) authorizeSubmitter(ctx context.Context, user *models.User, mode models.PanelMode, athlete *models.Athlete, academyID int) error {
	if user.HasRole(models.RoleAthlete) {
		own, err := s.athleteRepo.GetByUserID(ctx, user.ID)
		if err == nil && own.ID == athlete.ID {
			return nil
		}
		if err != nil && !errors.Is(err, repositories.ErrAthleteNotFound) {
			return err
		}
	}
	if user.HasRole(models.RoleGuardian) {
		linked, err := s.athleteRepo.IsGuardianOf(ctx, user.ID, athlete.ID)
		if err != nil {
			return err
		}
		if linked {
			return nil
		}
	}
	if err := s.scope.RequireAcademyStaff(ctx, user, mode, academyID); err == nil {
		return nil
	}
	return ErrForbiddenOperation
}

func (s *RegistrationService) authorizeManager(ctx context.Context, user *models.User, mode models.PanelMode, academyID int) error {
	if user.HasAnyRole(models.RoleAdmin, models.RoleAssociationManager) {
		return nil
	}
	return s.scope.RequireAcademyStaff(ctx, user, mode, academyID)
}

// recalcPayment refreshes the bookkeeping row after a batch submit or
// revert. Failures are logged, never surfaced.
func (s *RegistrationService) recalcPayment(ctx context.Context, event *models.Event, academyID int) {
	if !event.HasFee {
		return
	}

	count, err := s.registrationRepo.CountByStatus(ctx, event.ID, academyID, models.RegistrationSubmitted)
	if err != nil {
		s.logger.Error("payment recalc: failed to count submissions",
			slog.Int("event_id", event.ID), slog.Int("academy_id", academyID), slog.Any("error", err))
		return
	}

	fee := 0.0
	adhesion, err := s.adhesionRepo.Get(ctx, event.ID, academyID)
	switch {
	case err == nil && adhesion.FeeValue != nil:
		fee = *adhesion.FeeValue
	case err == nil || errors.Is(err, repositories.ErrAdhesionNotFound):
		if event.SuggestedFee != nil {
			fee = *event.SuggestedFee
		}
	default:
		s.logger.Error("payment recalc: failed to read adhesion",
			slog.Int("event_id", event.ID), slog.Int("academy_id", academyID), slog.Any("error", err))
		return
	}

	payment := &models.AcademyPayment{
		EventID:       event.ID,
		AcademyID:     academyID,
		ExpectedTotal: float64(count) * fee,
	}
	if existing, err := s.paymentRepo.Get(ctx, event.ID, academyID); err == nil {
		payment.PaidTotal = existing.PaidTotal
	}
	payment.Recalculate()

	if err := s.paymentRepo.Upsert(ctx, nil, payment); err != nil {
		s.logger.Error("payment recalc: failed to upsert payment",
			slog.Int("event_id", event.ID), slog.Int("academy_id", academyID), slog.Any("error", err))
	}
}

func dedupeCategories(categories []string) []string {
	out := make([]string, 0, len(categories))
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// athleteWriteBack translates catalog form values into athlete columns.
// Numeric and date fields are parsed; an unparseable value leaves the column
// out so the master record keeps its previous value.
func athleteWriteBack(formValues map[string]string) map[string]interface{} {
	columns := make(map[string]interface{})
	for key, value := range formValues {
		if models.WriteBackExcludedKeys[key] {
			continue
		}
		column, ok := models.FormToAthleteColumn[key]
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		switch {
		case models.IntegerAthleteColumns[column]:
			n, err := strconv.Atoi(value)
			if err != nil {
				continue
			}
			columns[column] = n
		case models.FloatAthleteColumns[column]:
			f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
			if err != nil {
				continue
			}
			columns[column] = f
		case models.DateAthleteColumns[column]:
			t, ok := utils.ParseFlexibleDate(value)
			if !ok {
				continue
			}
			columns[column] = t
		default:
			columns[column] = value
		}
	}
	return columns
}
