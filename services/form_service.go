package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fedsports/registration-system/models"
	"github.com/fedsports/registration-system/repositories"
)

type CreateFormInput struct {
	Name          string   `json:"nome"`
	FederationID  *int     `json:"id_federacao"`
	AssociationID *int     `json:"id_associacao"`
	FieldKeys     []string `json:"campos"`
}

type UpdateFormInput struct {
	Name      string   `json:"nome"`
	Active    bool     `json:"ativo"`
	FieldKeys []string `json:"campos"`
}

type FormService struct {
	db       *sql.DB
	formRepo repositories.FormRepository
}

func NewFormService(db *sql.DB, formRepo repositories.FormRepository) *FormService {
	return &FormService{db: db, formRepo: formRepo}
}

// buildFields turns selected catalog keys into ordered field rows. Unknown
// keys and repeats are dropped.
func buildFields(keys []string) []models.FormField {
	fields := make([]models.FormField, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	ordinal := 0
	for _, key := range keys {
		if key == "" || seen[key] || !models.IsCatalogField(key) {
			continue
		}
		seen[key] = true
		fields = append(fields, models.FormField{
			Key:     key,
			Label:   models.FieldLabel(key),
			Ordinal: ordinal,
		})
		ordinal++
	}
	return fields
}

func (s *FormService) CreateForm(ctx context.Context, input CreateFormInput) (*models.Form, error) {
	if input.Name == "" {
		return nil, ErrFormNameRequired
	}
	if (input.FederationID == nil) == (input.AssociationID == nil) {
		return nil, ErrFormOwnerRequired
	}

	form := &models.Form{
		Name:          input.Name,
		FederationID:  input.FederationID,
		AssociationID: input.AssociationID,
		Active:        true,
		Fields:        buildFields(input.FieldKeys),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.formRepo.Create(ctx, tx, form); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit form creation: %w", err)
	}
	return form, nil
}

func (s *FormService) GetForm(ctx context.Context, id int) (*models.Form, error) {
	form, err := s.formRepo.GetWithFields(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrFormNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}
	return form, nil
}

// GetFormForEvent loads a form for event-time consumers and backfills the
// categoria field when the form carries the inputs category resolution needs
// (peso, data_nascimento, sexo) but not the categoria column itself.
func (s *FormService) GetFormForEvent(ctx context.Context, id int) (*models.Form, error) {
	form, err := s.GetForm(ctx, id)
	if err != nil {
		return nil, err
	}

	augmented, changed := augmentWithCategory(form.Fields)
	if !changed {
		return form, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.formRepo.ReplaceFields(ctx, tx, form.ID, augmented); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit form augmentation: %w", err)
	}
	return s.GetForm(ctx, id)
}

// augmentWithCategory inserts a categoria field right after peso and
// renumbers ordinals. Returns changed=false when the form either lacks the
// category inputs or already has the field.
func augmentWithCategory(fields []models.FormField) ([]models.FormField, bool) {
	var hasWeight, hasBirthDate, hasGender, hasCategory bool
	for _, f := range fields {
		switch f.Key {
		case "peso":
			hasWeight = true
		case "data_nascimento":
			hasBirthDate = true
		case "sexo":
			hasGender = true
		case "categoria":
			hasCategory = true
		}
	}
	if hasCategory || !hasWeight || !hasBirthDate || !hasGender {
		return fields, false
	}

	augmented := make([]models.FormField, 0, len(fields)+1)
	for _, f := range fields {
		augmented = append(augmented, f)
		if f.Key == "peso" {
			augmented = append(augmented, models.FormField{
				Key:   "categoria",
				Label: models.FieldLabel("categoria"),
			})
		}
	}
	for i := range augmented {
		augmented[i].Ordinal = i
		augmented[i].ID = 0
	}
	return augmented, true
}

func (s *FormService) ListForms(ctx context.Context, federationID, associationID *int) ([]models.Form, error) {
	switch {
	case federationID != nil:
		return s.formRepo.ListByFederation(ctx, *federationID)
	case associationID != nil:
		return s.formRepo.ListByAssociation(ctx, *associationID)
	default:
		return nil, ErrNoTenantSelected
	}
}

// UpdateForm replaces the header and the whole field set atomically.
func (s *FormService) UpdateForm(ctx context.Context, id int, input UpdateFormInput, federationID, associationID *int) (*models.Form, error) {
	if input.Name == "" {
		return nil, ErrFormNameRequired
	}

	form, err := s.ownedForm(ctx, id, federationID, associationID)
	if err != nil {
		return nil, err
	}
	form.Name = input.Name
	form.Active = input.Active
	form.Fields = buildFields(input.FieldKeys)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.formRepo.Update(ctx, tx, form); err != nil {
		return nil, err
	}
	if err := s.formRepo.ReplaceFields(ctx, tx, form.ID, form.Fields); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit form update: %w", err)
	}
	return form, nil
}

func (s *FormService) DeleteForm(ctx context.Context, id int, federationID, associationID *int) error {
	if _, err := s.ownedForm(ctx, id, federationID, associationID); err != nil {
		return err
	}
	if err := s.formRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrFormNotFound) {
			return ErrFormNotFound
		}
		return err
	}
	return nil
}

// ownedForm loads the form and checks it belongs to the caller's tenant.
func (s *FormService) ownedForm(ctx context.Context, id int, federationID, associationID *int) (*models.Form, error) {
	form, err := s.formRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrFormNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}
	switch {
	case federationID != nil && form.FederationID != nil && *form.FederationID == *federationID:
		return form, nil
	case associationID != nil && form.AssociationID != nil && *form.AssociationID == *associationID:
		return form, nil
	}
	return nil, ErrFormNotFound
}
