package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fedsports/registration-system/models"
	"github.com/lib/pq"
)

var (
	ErrAttachmentNotFound     = errors.New("attachment not found")
	ErrAttachmentInvalidEvent = errors.New("invalid event reference for attachment")
)

type AttachmentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, attachment *models.Attachment) error
	GetByID(ctx context.Context, id int) (*models.Attachment, error)
	ListByEvent(ctx context.Context, eventID int) ([]models.Attachment, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresAttachmentRepository struct {
	db *sql.DB
}

func NewPostgresAttachmentRepository(db *sql.DB) AttachmentRepository {
	return &postgresAttachmentRepository{db: db}
}

func (r *postgresAttachmentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresAttachmentRepository) Create(ctx context.Context, exec SQLExecutor, a *models.Attachment) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO eventos_competicoes_anexos (
			evento_id, nome_arquivo, nome_armazenado, tamanho, mime, descricao, criado_por
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		a.EventID, a.OriginalName, a.StoredName, a.SizeBytes, a.Mime, a.Description, a.CreatedBy,
	).Scan(&a.ID, &a.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrAttachmentInvalidEvent
		}
		return err
	}
	return nil
}

func (r *postgresAttachmentRepository) GetByID(ctx context.Context, id int) (*models.Attachment, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT id, evento_id, nome_arquivo, nome_armazenado, tamanho, mime, descricao, criado_por, created_at
		FROM eventos_competicoes_anexos
		WHERE id = $1`

	a := &models.Attachment{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.EventID, &a.OriginalName, &a.StoredName, &a.SizeBytes, &a.Mime, &a.Description, &a.CreatedBy, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *postgresAttachmentRepository) ListByEvent(ctx context.Context, eventID int) ([]models.Attachment, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT id, evento_id, nome_arquivo, nome_armazenado, tamanho, mime, descricao, criado_por, created_at
		FROM eventos_competicoes_anexos
		WHERE evento_id = $1
		ORDER BY created_at`

	rows, err := executor.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attachments := make([]models.Attachment, 0)
	for rows.Next() {
		var a models.Attachment
		if scanErr := rows.Scan(
			&a.ID, &a.EventID, &a.OriginalName, &a.StoredName, &a.SizeBytes, &a.Mime, &a.Description, &a.CreatedBy, &a.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		attachments = append(attachments, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *postgresAttachmentRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM eventos_competicoes_anexos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAttachmentNotFound)
}
