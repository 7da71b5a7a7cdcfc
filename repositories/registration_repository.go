package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fedsports/registration-system/models"
	"github.com/lib/pq"
)

var (
	ErrRegistrationNotFound       = errors.New("registration not found")
	ErrRegistrationInvalidRef     = errors.New("invalid event, academy or athlete reference")
	ErrRegistrationWalkInConflict = errors.New("walk-in already exists for this athlete")
)

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, registration *models.Registration) error
	GetByID(ctx context.Context, id int) (*models.Registration, error)
	ListByEventAndAcademy(ctx context.Context, eventID, academyID int) ([]models.Registration, error)
	ListSubmittedByEvent(ctx context.Context, eventID int) ([]models.Registration, error)
	ListCategoriesByAthlete(ctx context.Context, eventID, academyID, athleteID int) ([]string, error)
	WalkInExists(ctx context.Context, eventID, academyID, athleteID int) (bool, error)
	UpdateFormData(ctx context.Context, id int, formData map[string]string) error
	Delete(ctx context.Context, id int) error
	SubmitBatch(ctx context.Context, exec SQLExecutor, eventID, academyID int, submittedAt time.Time) (int64, error)
	RevertBatch(ctx context.Context, exec SQLExecutor, eventID, academyID int) (int64, error)
	DeleteByEventAndAcademy(ctx context.Context, exec SQLExecutor, eventID, academyID int) (int64, error)
	CountByStatus(ctx context.Context, eventID, academyID int, status models.RegistrationStatus) (int, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	executor := r.getExecutor(exec)

	data, err := json.Marshal(reg.FormData)
	if err != nil {
		return fmt.Errorf("failed to encode form data: %w", err)
	}

	query := `
		INSERT INTO eventos_competicoes_inscricoes (
			evento_id, academia_id, aluno_id, usuario_inscricao_id,
			dados_form, inclusao_avulsa, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err = executor.QueryRowContext(ctx, query,
		reg.EventID, reg.AcademyID, reg.AthleteID, reg.SubmittedBy,
		data, reg.WalkIn, reg.Status,
	).Scan(&reg.ID, &reg.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrRegistrationWalkInConflict
			case "23503":
				return ErrRegistrationInvalidRef
			}
		}
		return err
	}
	return nil
}

func (r *postgresRegistrationRepository) scanRegistration(rowScanner interface {
	Scan(dest ...interface{}) error
}, withNames bool) (*models.Registration, error) {
	reg := &models.Registration{}
	var data []byte

	dest := []interface{}{
		&reg.ID, &reg.EventID, &reg.AcademyID, &reg.AthleteID, &reg.SubmittedBy,
		&data, &reg.WalkIn, &reg.Status, &reg.CreatedAt, &reg.SubmittedAt,
	}
	if withNames {
		var athleteName, academyName sql.NullString
		dest = append(dest, &athleteName, &academyName)
		if err := rowScanner.Scan(dest...); err != nil {
			return nil, err
		}
		reg.AthleteName = athleteName.String
		reg.AcademyName = academyName.String
	} else {
		if err := rowScanner.Scan(dest...); err != nil {
			return nil, err
		}
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &reg.FormData); err != nil {
			return nil, fmt.Errorf("failed to decode form data of registration %d: %w", reg.ID, err)
		}
	}
	if reg.FormData == nil {
		reg.FormData = map[string]string{}
	}
	return reg, nil
}

const registrationColumns = `
	i.id, i.evento_id, i.academia_id, i.aluno_id, i.usuario_inscricao_id,
	i.dados_form, i.inclusao_avulsa, i.status, i.created_at, i.data_envio`

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	executor := r.getExecutor(nil)
	query := `SELECT` + registrationColumns + `
		FROM eventos_competicoes_inscricoes i
		WHERE i.id = $1`

	reg, err := r.scanRegistration(executor.QueryRowContext(ctx, query, id), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Registration, error) {
	executor := r.getExecutor(nil)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make([]models.Registration, 0)
	for rows.Next() {
		reg, scanErr := r.scanRegistration(rows, true)
		if scanErr != nil {
			return nil, scanErr
		}
		registrations = append(registrations, *reg)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return registrations, nil
}

func (r *postgresRegistrationRepository) ListByEventAndAcademy(ctx context.Context, eventID, academyID int) ([]models.Registration, error) {
	query := `SELECT` + registrationColumns + `, al.nome, ac.nome
		FROM eventos_competicoes_inscricoes i
		LEFT JOIN alunos al ON al.id = i.aluno_id
		LEFT JOIN academias ac ON ac.id = i.academia_id
		WHERE i.evento_id = $1 AND i.academia_id = $2
		ORDER BY i.created_at`
	return r.list(ctx, query, eventID, academyID)
}

// ListSubmittedByEvent is the consolidation read set: every submitted row of
// an academy under the event's association.
func (r *postgresRegistrationRepository) ListSubmittedByEvent(ctx context.Context, eventID int) ([]models.Registration, error) {
	query := `SELECT` + registrationColumns + `, al.nome, ac.nome
		FROM eventos_competicoes_inscricoes i
		LEFT JOIN alunos al ON al.id = i.aluno_id
		JOIN academias ac ON ac.id = i.academia_id
		JOIN eventos_competicoes e ON e.id = i.evento_id
		WHERE i.evento_id = $1
		  AND i.status = $2
		  AND ac.id_associacao = e.id_associacao
		ORDER BY ac.nome, al.nome`
	return r.list(ctx, query, eventID, models.RegistrationSubmitted)
}

// ListCategoriesByAthlete returns the categoria values of the athlete's
// existing registrations, used to filter duplicate category selections.
func (r *postgresRegistrationRepository) ListCategoriesByAthlete(ctx context.Context, eventID, academyID, athleteID int) ([]string, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT COALESCE(dados_form->>'categoria', '')
		FROM eventos_competicoes_inscricoes
		WHERE evento_id = $1 AND academia_id = $2 AND aluno_id = $3`

	rows, err := executor.QueryContext(ctx, query, eventID, academyID, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var c string
		if scanErr := rows.Scan(&c); scanErr != nil {
			return nil, scanErr
		}
		if c != "" {
			categories = append(categories, c)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *postgresRegistrationRepository) WalkInExists(ctx context.Context, eventID, academyID, athleteID int) (bool, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT EXISTS (
			SELECT 1 FROM eventos_competicoes_inscricoes
			WHERE evento_id = $1 AND academia_id = $2 AND aluno_id = $3 AND inclusao_avulsa = TRUE
		)`

	var exists bool
	if err := executor.QueryRowContext(ctx, query, eventID, academyID, athleteID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresRegistrationRepository) UpdateFormData(ctx context.Context, id int, formData map[string]string) error {
	executor := r.getExecutor(nil)

	data, err := json.Marshal(formData)
	if err != nil {
		return fmt.Errorf("failed to encode form data: %w", err)
	}

	result, err := executor.ExecContext(ctx,
		`UPDATE eventos_competicoes_inscricoes SET dados_form = $1 WHERE id = $2`, data, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) Delete(ctx context.Context, id int) error {
	executor := r.getExecutor(nil)
	result, err := executor.ExecContext(ctx, `DELETE FROM eventos_competicoes_inscricoes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

// SubmitBatch flips every not-yet-submitted row of the pair. Already
// submitted rows are untouched, which makes the call idempotent.
func (r *postgresRegistrationRepository) SubmitBatch(ctx context.Context, exec SQLExecutor, eventID, academyID int, submittedAt time.Time) (int64, error) {
	executor := r.getExecutor(exec)
	query := `
		UPDATE eventos_competicoes_inscricoes
		SET status = $1, data_envio = $2
		WHERE evento_id = $3 AND academia_id = $4 AND status <> $1`

	result, err := executor.ExecContext(ctx, query, models.RegistrationSubmitted, submittedAt, eventID, academyID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// RevertBatch is the association-side undo: submitted rows return to draft.
func (r *postgresRegistrationRepository) RevertBatch(ctx context.Context, exec SQLExecutor, eventID, academyID int) (int64, error) {
	executor := r.getExecutor(exec)
	query := `
		UPDATE eventos_competicoes_inscricoes
		SET status = $1, data_envio = NULL
		WHERE evento_id = $2 AND academia_id = $3 AND status = $4`

	result, err := executor.ExecContext(ctx, query, models.RegistrationDraft, eventID, academyID, models.RegistrationSubmitted)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresRegistrationRepository) DeleteByEventAndAcademy(ctx context.Context, exec SQLExecutor, eventID, academyID int) (int64, error) {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`DELETE FROM eventos_competicoes_inscricoes WHERE evento_id = $1 AND academia_id = $2`, eventID, academyID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresRegistrationRepository) CountByStatus(ctx context.Context, eventID, academyID int, status models.RegistrationStatus) (int, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT COUNT(*) FROM eventos_competicoes_inscricoes
		WHERE evento_id = $1 AND academia_id = $2 AND status = $3`

	var count int
	if err := executor.QueryRowContext(ctx, query, eventID, academyID, status).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
