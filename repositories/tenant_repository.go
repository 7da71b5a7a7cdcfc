package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fedsports/registration-system/models"
)

var (
	ErrAcademyNotFound     = errors.New("academy not found")
	ErrAssociationNotFound = errors.New("association not found")
)

// TenantRepository reads the tenancy directory. All tables here belong to an
// external subsystem and are never written.
type TenantRepository interface {
	GetAcademy(ctx context.Context, id int) (*models.Academy, error)
	GetAssociation(ctx context.Context, id int) (*models.Association, error)
	ListAcademiesByAssociation(ctx context.Context, associationID int) ([]models.Academy, error)
	ListAcademyIDsByAssociation(ctx context.Context, associationID int) ([]int, error)
	ListAcademyIDsByFederation(ctx context.Context, federationID int) ([]int, error)
	ListAllAcademyIDs(ctx context.Context) ([]int, error)
}

type postgresTenantRepository struct {
	db *sql.DB
}

func NewPostgresTenantRepository(db *sql.DB) TenantRepository {
	return &postgresTenantRepository{db: db}
}

func (r *postgresTenantRepository) GetAcademy(ctx context.Context, id int) (*models.Academy, error) {
	query := `SELECT id, id_associacao, nome FROM academias WHERE id = $1`

	a := &models.Academy{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.AssociationID, &a.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAcademyNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *postgresTenantRepository) GetAssociation(ctx context.Context, id int) (*models.Association, error) {
	query := `SELECT id, id_federacao, nome FROM associacoes WHERE id = $1`

	a := &models.Association{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.FederationID, &a.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssociationNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *postgresTenantRepository) ListAcademiesByAssociation(ctx context.Context, associationID int) ([]models.Academy, error) {
	query := `SELECT id, id_associacao, nome FROM academias WHERE id_associacao = $1 ORDER BY nome`

	rows, err := r.db.QueryContext(ctx, query, associationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	academies := make([]models.Academy, 0)
	for rows.Next() {
		var a models.Academy
		if scanErr := rows.Scan(&a.ID, &a.AssociationID, &a.Name); scanErr != nil {
			return nil, scanErr
		}
		academies = append(academies, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return academies, nil
}

func (r *postgresTenantRepository) listIDs(ctx context.Context, query string, args ...interface{}) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *postgresTenantRepository) ListAcademyIDsByAssociation(ctx context.Context, associationID int) ([]int, error) {
	return r.listIDs(ctx, `SELECT id FROM academias WHERE id_associacao = $1`, associationID)
}

func (r *postgresTenantRepository) ListAcademyIDsByFederation(ctx context.Context, federationID int) ([]int, error) {
	query := `
		SELECT ac.id
		FROM academias ac
		JOIN associacoes a ON a.id = ac.id_associacao
		WHERE a.id_federacao = $1`
	return r.listIDs(ctx, query, federationID)
}

func (r *postgresTenantRepository) ListAllAcademyIDs(ctx context.Context) ([]int, error) {
	return r.listIDs(ctx, `SELECT id FROM academias`)
}
