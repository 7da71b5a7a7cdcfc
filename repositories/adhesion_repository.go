package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fedsports/registration-system/models"
	"github.com/lib/pq"
)

var (
	ErrAdhesionNotFound       = errors.New("adhesion row not found")
	ErrAdhesionInvalidAcademy = errors.New("invalid academy reference for adhesion")
)

type AdhesionRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, eventID int, academyIDs []int) error
	Get(ctx context.Context, eventID, academyID int) (*models.Adhesion, error)
	ListByEvent(ctx context.Context, eventID int) ([]models.Adhesion, error)
	Upsert(ctx context.Context, exec SQLExecutor, adhesion *models.Adhesion) error
}

type postgresAdhesionRepository struct {
	db *sql.DB
}

func NewPostgresAdhesionRepository(db *sql.DB) AdhesionRepository {
	return &postgresAdhesionRepository{db: db}
}

func (r *postgresAdhesionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateBatch fans out one aderiu=false row per academy at event creation.
func (r *postgresAdhesionRepository) CreateBatch(ctx context.Context, exec SQLExecutor, eventID int, academyIDs []int) error {
	if len(academyIDs) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO eventos_competicoes_adesoes (evento_id, academia_id, aderiu)
		SELECT $1, unnest($2::int[]), FALSE
		ON CONFLICT (evento_id, academia_id) DO NOTHING`

	_, err := executor.ExecContext(ctx, query, eventID, pq.Array(academyIDs))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrAdhesionInvalidAcademy
		}
		return err
	}
	return nil
}

func (r *postgresAdhesionRepository) Get(ctx context.Context, eventID, academyID int) (*models.Adhesion, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT evento_id, academia_id, aderiu, valor_taxa
		FROM eventos_competicoes_adesoes
		WHERE evento_id = $1 AND academia_id = $2`

	a := &models.Adhesion{}
	err := executor.QueryRowContext(ctx, query, eventID, academyID).Scan(
		&a.EventID, &a.AcademyID, &a.Adhered, &a.FeeValue,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdhesionNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *postgresAdhesionRepository) ListByEvent(ctx context.Context, eventID int) ([]models.Adhesion, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT ad.evento_id, ad.academia_id, ad.aderiu, ad.valor_taxa, ac.nome
		FROM eventos_competicoes_adesoes ad
		JOIN academias ac ON ac.id = ad.academia_id
		WHERE ad.evento_id = $1
		ORDER BY ac.nome`

	rows, err := executor.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	adhesions := make([]models.Adhesion, 0)
	for rows.Next() {
		var a models.Adhesion
		if scanErr := rows.Scan(&a.EventID, &a.AcademyID, &a.Adhered, &a.FeeValue, &a.AcademyName); scanErr != nil {
			return nil, scanErr
		}
		adhesions = append(adhesions, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return adhesions, nil
}

// Upsert covers academies created after the event: a missing row is inserted,
// an existing one updated. Idempotent on repeated toggles to the same value.
func (r *postgresAdhesionRepository) Upsert(ctx context.Context, exec SQLExecutor, a *models.Adhesion) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO eventos_competicoes_adesoes (evento_id, academia_id, aderiu, valor_taxa)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (evento_id, academia_id)
		DO UPDATE SET aderiu = EXCLUDED.aderiu, valor_taxa = COALESCE(EXCLUDED.valor_taxa, eventos_competicoes_adesoes.valor_taxa)`

	_, err := executor.ExecContext(ctx, query, a.EventID, a.AcademyID, a.Adhered, a.FeeValue)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrAdhesionInvalidAcademy
		}
		return err
	}
	return nil
}
