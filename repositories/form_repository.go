package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fedsports/registration-system/models"
	"github.com/lib/pq"
)

var (
	ErrFormNotFound      = errors.New("form not found")
	ErrFormInUse         = errors.New("form is bound to one or more events")
	ErrFormInvalidOwner  = errors.New("invalid form owner reference")
	ErrFormFieldConflict = errors.New("duplicate field key in form")
)

type FormRepository interface {
	Create(ctx context.Context, exec SQLExecutor, form *models.Form) error
	GetByID(ctx context.Context, id int) (*models.Form, error)
	GetWithFields(ctx context.Context, id int) (*models.Form, error)
	ListByFederation(ctx context.Context, federationID int) ([]models.Form, error)
	ListByAssociation(ctx context.Context, associationID int) ([]models.Form, error)
	Update(ctx context.Context, exec SQLExecutor, form *models.Form) error
	ReplaceFields(ctx context.Context, exec SQLExecutor, formID int, fields []models.FormField) error
	Delete(ctx context.Context, id int) error
}

type postgresFormRepository struct {
	db *sql.DB
}

func NewPostgresFormRepository(db *sql.DB) FormRepository {
	return &postgresFormRepository{db: db}
}

func (r *postgresFormRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresFormRepository) Create(ctx context.Context, exec SQLExecutor, f *models.Form) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO formularios (nome, id_federacao, id_associacao, ativo)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		f.Name, f.FederationID, f.AssociationID, f.Active,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return r.handleFormError(err)
	}

	return r.insertFields(ctx, executor, f.ID, f.Fields)
}

func (r *postgresFormRepository) GetByID(ctx context.Context, id int) (*models.Form, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT id, nome, id_federacao, id_associacao, ativo, created_at
		FROM formularios
		WHERE id = $1`

	f := &models.Form{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&f.ID, &f.Name, &f.FederationID, &f.AssociationID, &f.Active, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *postgresFormRepository) GetWithFields(ctx context.Context, id int) (*models.Form, error) {
	f, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	executor := r.getExecutor(nil)
	query := `
		SELECT id, formulario_id, campo_chave, label, ordem
		FROM formularios_campos
		WHERE formulario_id = $1
		ORDER BY ordem`

	rows, err := executor.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := make([]models.FormField, 0)
	for rows.Next() {
		var c models.FormField
		if scanErr := rows.Scan(&c.ID, &c.FormID, &c.Key, &c.Label, &c.Ordinal); scanErr != nil {
			return nil, scanErr
		}
		fields = append(fields, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	f.Fields = fields
	return f, nil
}

func (r *postgresFormRepository) listByOwner(ctx context.Context, ownerColumn string, ownerID int) ([]models.Form, error) {
	executor := r.getExecutor(nil)
	query := fmt.Sprintf(`
		SELECT id, nome, id_federacao, id_associacao, ativo, created_at
		FROM formularios
		WHERE %s = $1
		ORDER BY nome`, ownerColumn)

	rows, err := executor.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	forms := make([]models.Form, 0)
	for rows.Next() {
		var f models.Form
		if scanErr := rows.Scan(&f.ID, &f.Name, &f.FederationID, &f.AssociationID, &f.Active, &f.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		forms = append(forms, f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return forms, nil
}

func (r *postgresFormRepository) ListByFederation(ctx context.Context, federationID int) ([]models.Form, error) {
	return r.listByOwner(ctx, "id_federacao", federationID)
}

func (r *postgresFormRepository) ListByAssociation(ctx context.Context, associationID int) ([]models.Form, error) {
	return r.listByOwner(ctx, "id_associacao", associationID)
}

func (r *postgresFormRepository) Update(ctx context.Context, exec SQLExecutor, f *models.Form) error {
	executor := r.getExecutor(exec)
	query := `UPDATE formularios SET nome = $1, ativo = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, f.Name, f.Active, f.ID)
	if err != nil {
		return r.handleFormError(err)
	}
	return checkAffectedRows(result, ErrFormNotFound)
}

// ReplaceFields swaps the whole field set: delete then reinsert in order.
// Callers are expected to run it inside a transaction.
func (r *postgresFormRepository) ReplaceFields(ctx context.Context, exec SQLExecutor, formID int, fields []models.FormField) error {
	executor := r.getExecutor(exec)

	if _, err := executor.ExecContext(ctx, `DELETE FROM formularios_campos WHERE formulario_id = $1`, formID); err != nil {
		return fmt.Errorf("failed to clear form fields: %w", err)
	}
	return r.insertFields(ctx, executor, formID, fields)
}

func (r *postgresFormRepository) insertFields(ctx context.Context, executor SQLExecutor, formID int, fields []models.FormField) error {
	query := `
		INSERT INTO formularios_campos (formulario_id, campo_chave, label, ordem)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	for i := range fields {
		fields[i].FormID = formID
		err := executor.QueryRowContext(ctx, query,
			formID, fields[i].Key, fields[i].Label, fields[i].Ordinal,
		).Scan(&fields[i].ID)
		if err != nil {
			return r.handleFormError(err)
		}
	}
	return nil
}

func (r *postgresFormRepository) Delete(ctx context.Context, id int) error {
	executor := r.getExecutor(nil)
	result, err := executor.ExecContext(ctx, `DELETE FROM formularios WHERE id = $1`, id)
	if err != nil {
		return r.handleFormError(err)
	}
	return checkAffectedRows(result, ErrFormNotFound)
}

func (r *postgresFormRepository) handleFormError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "formularios_campos_formulario_id_campo_chave_key" {
				return ErrFormFieldConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "formularios_id_federacao_fkey", "formularios_id_associacao_fkey":
				return ErrFormInvalidOwner
			default:
				return ErrFormInUse
			}
		}
	}
	return err
}
