package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/fedsports/registration-system/models"
	"github.com/lib/pq"
)

// CalendarRepository writes mirror rows into the shared eventos table. The
// evento_competicao_id column may be absent on older schemas, so inserts try
// the tagged form first and fall back to the blind one.
type CalendarRepository interface {
	InsertMirror(ctx context.Context, exec SQLExecutor, entry *models.CalendarEntry) error
	UpdateBySourceEvent(ctx context.Context, exec SQLExecutor, sourceEventID int, title string, description *string, start, end time.Time) error
	DeleteBySourceEvent(ctx context.Context, exec SQLExecutor, sourceEventID int) error
}

type postgresCalendarRepository struct {
	db *sql.DB
}

func NewPostgresCalendarRepository(db *sql.DB) CalendarRepository {
	return &postgresCalendarRepository{db: db}
}

func (r *postgresCalendarRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresCalendarRepository) InsertMirror(ctx context.Context, exec SQLExecutor, e *models.CalendarEntry) error {
	executor := r.getExecutor(exec)

	tagged := `
		INSERT INTO eventos (
			titulo, descricao, data_inicio, data_fim, tipo, nivel, nivel_id,
			criado_por_usuario_id, origem_sincronizacao, evento_competicao_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err := executor.QueryRowContext(ctx, tagged,
		e.Title, e.Description, e.StartDate, e.EndDate, e.Type, e.Level, e.LevelID,
		e.CreatedByUserID, e.SyncOrigin, e.SourceEventID,
	).Scan(&e.ID)
	if err == nil {
		return nil
	}
	if !isUndefinedColumn(err) {
		return err
	}

	blind := `
		INSERT INTO eventos (
			titulo, descricao, data_inicio, data_fim, tipo, nivel, nivel_id,
			criado_por_usuario_id, origem_sincronizacao
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	return executor.QueryRowContext(ctx, blind,
		e.Title, e.Description, e.StartDate, e.EndDate, e.Type, e.Level, e.LevelID,
		e.CreatedByUserID, e.SyncOrigin,
	).Scan(&e.ID)
}

func (r *postgresCalendarRepository) UpdateBySourceEvent(ctx context.Context, exec SQLExecutor, sourceEventID int, title string, description *string, start, end time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE eventos
		SET titulo = $1, descricao = $2, data_inicio = $3, data_fim = $4
		WHERE evento_competicao_id = $5`

	_, err := executor.ExecContext(ctx, query, title, description, start, end, sourceEventID)
	if err != nil && isUndefinedColumn(err) {
		// Old schema keeps no source tag; nothing to update.
		return nil
	}
	return err
}

func (r *postgresCalendarRepository) DeleteBySourceEvent(ctx context.Context, exec SQLExecutor, sourceEventID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM eventos WHERE evento_competicao_id = $1`, sourceEventID)
	if err != nil && isUndefinedColumn(err) {
		return nil
	}
	return err
}

func isUndefinedColumn(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "42703"
	}
	return false
}
