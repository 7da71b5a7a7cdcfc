package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fedsports/registration-system/models"
	"github.com/fedsports/registration-system/repositories"
	"github.com/fedsports/registration-system/storage"
	"github.com/google/uuid"
)

// allowedAttachmentExtensions is the upload allow-list.
var allowedAttachmentExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".zip": true, ".rar": true, ".txt": true,
}

type AttachmentUpload struct {
	FileName    string
	Size        int64
	ContentType string
	Description *string
	Reader      io.Reader
}

type AttachmentService struct {
	attachmentRepo repositories.AttachmentRepository
	eventRepo      repositories.EventRepository
	adhesionRepo   repositories.AdhesionRepository
	userRepo       repositories.UserRepository
	athleteRepo    repositories.AthleteRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewAttachmentService(
	attachmentRepo repositories.AttachmentRepository,
	eventRepo repositories.EventRepository,
	adhesionRepo repositories.AdhesionRepository,
	userRepo repositories.UserRepository,
	athleteRepo repositories.AthleteRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		eventRepo:      eventRepo,
		adhesionRepo:   adhesionRepo,
		userRepo:       userRepo,
		athleteRepo:    athleteRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

// StoredAttachmentName builds the opaque storage key:
// evento_{eventID}_{12 random hex}{ext}.
func StoredAttachmentName(eventID int, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedAttachmentExtensions[ext] {
		return "", ErrUnsupportedFileExtension
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("evento_%d_%s%s", eventID, suffix, ext), nil
}

// Store persists the file first, then its record; exec lets the caller keep
// the record inside a larger transaction (event create/edit).
func (s *AttachmentService) Store(ctx context.Context, exec repositories.SQLExecutor, eventID int, up AttachmentUpload, createdBy int) (*models.Attachment, error) {
	storedName, err := StoredAttachmentName(eventID, up.FileName)
	if err != nil {
		return nil, err
	}

	if _, err := s.uploader.Upload(ctx, storedName, up.ContentType, up.Reader); err != nil {
		return nil, fmt.Errorf("failed to store attachment file: %w", err)
	}

	attachment := &models.Attachment{
		EventID:      eventID,
		OriginalName: up.FileName,
		StoredName:   storedName,
		SizeBytes:    up.Size,
		Mime:         up.ContentType,
		Description:  up.Description,
		CreatedBy:    createdBy,
	}
	if err := s.attachmentRepo.Create(ctx, exec, attachment); err != nil {
		// Orphaned file cleanup; a leftover file is preferable to a
		// record pointing at nothing.
		if delErr := s.uploader.Delete(ctx, storedName); delErr != nil {
			s.logger.Error("failed to remove orphaned attachment file",
				slog.String("stored_name", storedName), slog.Any("error", delErr))
		}
		return nil, err
	}
	return attachment, nil
}

func (s *AttachmentService) ListByEvent(ctx context.Context, eventID int) ([]models.Attachment, error) {
	return s.attachmentRepo.ListByEvent(ctx, eventID)
}

// Delete removes the record and then the file best-effort. A failed file
// removal is logged, never surfaced.
func (s *AttachmentService) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	attachment, err := s.attachmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAttachmentNotFound) {
			return ErrAttachmentNotFound
		}
		return err
	}

	if err := s.attachmentRepo.Delete(ctx, exec, id); err != nil {
		if errors.Is(err, repositories.ErrAttachmentNotFound) {
			return ErrAttachmentNotFound
		}
		return err
	}

	if err := s.uploader.Delete(ctx, attachment.StoredName); err != nil {
		s.logger.Error("failed to remove attachment file",
			slog.String("stored_name", attachment.StoredName), slog.Any("error", err))
	}
	return nil
}

// Download streams the file after the permission chain passes: association
// manager of the owning association, staff of an adhered academy, or an
// athlete/guardian whose academy adhered.
func (s *AttachmentService) Download(ctx context.Context, id int, user *models.User) (*models.Attachment, io.ReadCloser, error) {
	attachment, err := s.attachmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAttachmentNotFound) {
			return nil, nil, ErrAttachmentNotFound
		}
		return nil, nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, attachment.EventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, nil, ErrEventNotFound
		}
		return nil, nil, err
	}

	allowed, err := s.canDownload(ctx, user, event)
	if err != nil {
		return nil, nil, err
	}
	if !allowed {
		return nil, nil, ErrForbiddenOperation
	}

	reader, err := s.uploader.Open(ctx, attachment.StoredName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open attachment file: %w", err)
	}
	return attachment, reader, nil
}

func (s *AttachmentService) canDownload(ctx context.Context, user *models.User, event *models.Event) (bool, error) {
	if user.HasRole(models.RoleAdmin) {
		return true, nil
	}
	if user.HasRole(models.RoleAssociationManager) &&
		user.AssociationID != nil && *user.AssociationID == event.AssociationID {
		return true, nil
	}

	if user.HasAnyRole(models.RoleAcademyManager, models.RoleProfessor) {
		academyIDs, err := s.userRepo.ListAcademyIDsByUser(ctx, user.ID)
		if err != nil {
			return false, err
		}
		if len(academyIDs) == 0 && user.AcademyID != nil {
			academyIDs = []int{*user.AcademyID}
		}
		if ok, err := s.anyAdhered(ctx, event.ID, academyIDs); ok || err != nil {
			return ok, err
		}
	}

	if user.HasRole(models.RoleAthlete) {
		athlete, err := s.athleteRepo.GetByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, repositories.ErrAthleteNotFound) {
			return false, err
		}
		if athlete != nil && athlete.AcademyID != nil {
			if ok, err := s.anyAdhered(ctx, event.ID, []int{*athlete.AcademyID}); ok || err != nil {
				return ok, err
			}
		}
	}

	if user.HasRole(models.RoleGuardian) {
		academyIDs, err := s.athleteRepo.GuardianAcademyIDs(ctx, user.ID)
		if err != nil {
			return false, err
		}
		if ok, err := s.anyAdhered(ctx, event.ID, academyIDs); ok || err != nil {
			return ok, err
		}
	}

	return false, nil
}

func (s *AttachmentService) anyAdhered(ctx context.Context, eventID int, academyIDs []int) (bool, error) {
	for _, academyID := range academyIDs {
		adhesion, err := s.adhesionRepo.Get(ctx, eventID, academyID)
		if err != nil {
			if errors.Is(err, repositories.ErrAdhesionNotFound) {
				continue
			}
			return false, err
		}
		if adhesion.Adhered {
			return true, nil
		}
	}
	return false, nil
}
