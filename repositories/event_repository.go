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
	ErrEventNotFound           = errors.New("event not found")
	ErrEventInvalidAssociation = errors.New("invalid association reference")
	ErrEventInvalidForm        = errors.New("invalid form reference")
	ErrEventInUse              = errors.New("event is referenced by other records")
)

type ListEventsFilter struct {
	AssociationID *int
	Type          *models.EventType
	Status        *models.EventStatus
	Limit         int
	Offset        int
}

type EventRepository interface {
	Create(ctx context.Context, exec SQLExecutor, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	List(ctx context.Context, filter ListEventsFilter) ([]models.Event, error)
	Update(ctx context.Context, exec SQLExecutor, event *models.Event) error
	UpdateStatus(ctx context.Context, id int, status models.EventStatus) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	GetExportConfig(ctx context.Context, id int) (*string, error)
	UpdateExportConfig(ctx context.Context, id int, raw string) error
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const eventColumns = `
	id, id_associacao, nome, descricao, tipo, formulario_id,
	data_inicio, data_fim, status, tem_taxa, valor_taxa_sugerido,
	configuracao_exportacao, created_at`

func (r *postgresEventRepository) Create(ctx context.Context, exec SQLExecutor, e *models.Event) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO eventos_competicoes (
			id_associacao, nome, descricao, tipo, formulario_id,
			data_inicio, data_fim, status, tem_taxa, valor_taxa_sugerido
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		e.AssociationID, e.Name, e.Description, e.Type, e.FormID,
		e.StartAt, e.EndAt, e.Status, e.HasFee, e.SuggestedFee,
	).Scan(&e.ID, &e.CreatedAt)

	return r.handleEventError(err)
}

func (r *postgresEventRepository) scanEvent(row interface{ Scan(...interface{}) error }) (*models.Event, error) {
	e := &models.Event{}
	err := row.Scan(
		&e.ID, &e.AssociationID, &e.Name, &e.Description, &e.Type, &e.FormID,
		&e.StartAt, &e.EndAt, &e.Status, &e.HasFee, &e.SuggestedFee,
		&e.ExportConfigRaw, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	executor := r.getExecutor(nil)
	query := `SELECT` + eventColumns + ` FROM eventos_competicoes WHERE id = $1`

	e, err := r.scanEvent(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *postgresEventRepository) List(ctx context.Context, filter ListEventsFilter) ([]models.Event, error) {
	executor := r.getExecutor(nil)
	query := `SELECT` + eventColumns + ` FROM eventos_competicoes WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.AssociationID != nil {
		query += fmt.Sprintf(" AND id_associacao = $%d", argID)
		args = append(args, *filter.AssociationID)
		argID++
	}
	if filter.Type != nil {
		query += fmt.Sprintf(" AND tipo = $%d", argID)
		args = append(args, *filter.Type)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY data_fim DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		e, scanErr := r.scanEvent(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		events = append(events, *e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *postgresEventRepository) Update(ctx context.Context, exec SQLExecutor, e *models.Event) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE eventos_competicoes SET
			nome = $1,
			descricao = $2,
			tipo = $3,
			formulario_id = $4,
			data_inicio = $5,
			data_fim = $6,
			tem_taxa = $7,
			valor_taxa_sugerido = $8
		WHERE id = $9`

	result, err := executor.ExecContext(ctx, query,
		e.Name, e.Description, e.Type, e.FormID,
		e.StartAt, e.EndAt, e.HasFee, e.SuggestedFee,
		e.ID,
	)
	if err != nil {
		return r.handleEventError(err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) UpdateStatus(ctx context.Context, id int, status models.EventStatus) error {
	executor := r.getExecutor(nil)
	query := `UPDATE eventos_competicoes SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleEventError(err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM eventos_competicoes WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleEventError(err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) GetExportConfig(ctx context.Context, id int) (*string, error) {
	executor := r.getExecutor(nil)
	query := `SELECT configuracao_exportacao FROM eventos_competicoes WHERE id = $1`

	var raw *string
	err := executor.QueryRowContext(ctx, query, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return raw, nil
}

func (r *postgresEventRepository) UpdateExportConfig(ctx context.Context, id int, raw string) error {
	executor := r.getExecutor(nil)
	query := `UPDATE eventos_competicoes SET configuracao_exportacao = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, raw, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) handleEventError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23503":
			switch pqErr.Constraint {
			case "eventos_competicoes_id_associacao_fkey":
				return ErrEventInvalidAssociation
			case "eventos_competicoes_formulario_id_fkey":
				return ErrEventInvalidForm
			default:
				return ErrEventInUse
			}
		}
	}
	return err
}
