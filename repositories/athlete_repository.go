package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fedsports/registration-system/models"
)

var (
	ErrAthleteNotFound      = errors.New("athlete not found")
	ErrAthleteInvalidColumn = errors.New("column not allowed for athlete write-back")
	ErrGuardianLinkNotFound = errors.New("guardian link not found")
)

type AthleteRepository interface {
	GetByID(ctx context.Context, id int) (*models.Athlete, error)
	GetByUserID(ctx context.Context, userID int) (*models.Athlete, error)
	UpdateColumns(ctx context.Context, exec SQLExecutor, athleteID int, columns map[string]interface{}) error
	IsGuardianOf(ctx context.Context, guardianUserID, athleteID int) (bool, error)
	GuardianAcademyIDs(ctx context.Context, guardianUserID int) ([]int, error)
}

type postgresAthleteRepository struct {
	db *sql.DB
}

func NewPostgresAthleteRepository(db *sql.DB) AthleteRepository {
	return &postgresAthleteRepository{db: db}
}

func (r *postgresAthleteRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const athleteColumns = `id, id_academia, nome, sexo, data_nascimento, peso`

func (r *postgresAthleteRepository) GetByID(ctx context.Context, id int) (*models.Athlete, error) {
	query := `SELECT ` + athleteColumns + ` FROM alunos WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresAthleteRepository) GetByUserID(ctx context.Context, userID int) (*models.Athlete, error) {
	query := `SELECT ` + athleteColumns + ` FROM alunos WHERE usuario_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

func (r *postgresAthleteRepository) scanOne(row *sql.Row) (*models.Athlete, error) {
	a := &models.Athlete{}
	err := row.Scan(&a.ID, &a.AcademyID, &a.Name, &a.Gender, &a.BirthDate, &a.Weight)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	return a, nil
}

// writableAthleteColumns is the allow-list for dynamic column updates. It is
// derived from the write-back mapping so form input can never reach an
// arbitrary column.
var writableAthleteColumns = func() map[string]bool {
	cols := make(map[string]bool, len(models.FormToAthleteColumn))
	for _, col := range models.FormToAthleteColumn {
		cols[col] = true
	}
	return cols
}()

func (r *postgresAthleteRepository) UpdateColumns(ctx context.Context, exec SQLExecutor, athleteID int, columns map[string]interface{}) error {
	if len(columns) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)

	sets := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns)+1)
	argID := 1
	for col, val := range columns {
		if !writableAthleteColumns[col] {
			return fmt.Errorf("%w: %s", ErrAthleteInvalidColumn, col)
		}
		sets = append(sets, fmt.Sprintf("%q = $%d", col, argID))
		args = append(args, val)
		argID++
	}
	args = append(args, athleteID)

	query := fmt.Sprintf(`UPDATE alunos SET %s WHERE id = $%d`, strings.Join(sets, ", "), argID)
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAthleteNotFound)
}

func (r *postgresAthleteRepository) IsGuardianOf(ctx context.Context, guardianUserID, athleteID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM responsaveis_alunos
			WHERE responsavel_usuario_id = $1 AND aluno_id = $2
		)`

	var linked bool
	if err := r.db.QueryRowContext(ctx, query, guardianUserID, athleteID).Scan(&linked); err != nil {
		return false, err
	}
	return linked, nil
}

// GuardianAcademyIDs lists the academies of every athlete linked to the
// guardian, used by the attachment download permission chain.
func (r *postgresAthleteRepository) GuardianAcademyIDs(ctx context.Context, guardianUserID int) ([]int, error) {
	query := `
		SELECT DISTINCT al.id_academia
		FROM responsaveis_alunos ra
		JOIN alunos al ON al.id = ra.aluno_id
		WHERE ra.responsavel_usuario_id = $1 AND al.id_academia IS NOT NULL`

	rows, err := r.db.QueryContext(ctx, query, guardianUserID)
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
