package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fedsports/registration-system/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository reads the external usuarios directory: credentials, roles
// and the user↔academy link table. No writes from this subsystem.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListAcademyIDsByUser(ctx context.Context, userID int) ([]int, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, nome, email, senha_hash, id_federacao, id_associacao, id_academia, created_at`

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios WHERE id = $1`
	return r.scanWithRoles(ctx, r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios WHERE LOWER(email) = LOWER($1)`
	return r.scanWithRoles(ctx, r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresUserRepository) scanWithRoles(ctx context.Context, row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.FederationID, &u.AssociationID, &u.AcademyID, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT perfil FROM usuarios_perfis WHERE usuario_id = $1`, u.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var role models.UserRole
		if scanErr := rows.Scan(&role); scanErr != nil {
			return nil, scanErr
		}
		u.Roles = append(u.Roles, role)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *postgresUserRepository) ListAcademyIDsByUser(ctx context.Context, userID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT academia_id FROM usuario_academias WHERE usuario_id = $1`, userID)
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
