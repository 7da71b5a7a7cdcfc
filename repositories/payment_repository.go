package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fedsports/registration-system/models"
)

var ErrPaymentNotFound = errors.New("payment record not found")

type PaymentRepository interface {
	Get(ctx context.Context, eventID, academyID int) (*models.AcademyPayment, error)
	ListByEvent(ctx context.Context, eventID int) ([]models.AcademyPayment, error)
	Upsert(ctx context.Context, exec SQLExecutor, payment *models.AcademyPayment) error
	DeleteByEventAndAcademy(ctx context.Context, exec SQLExecutor, eventID, academyID int) error
}

type postgresPaymentRepository struct {
	db *sql.DB
}

func NewPostgresPaymentRepository(db *sql.DB) PaymentRepository {
	return &postgresPaymentRepository{db: db}
}

func (r *postgresPaymentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPaymentRepository) Get(ctx context.Context, eventID, academyID int) (*models.AcademyPayment, error) {
	query := `
		SELECT id, evento_id, academia_id, valor_total_esperado, valor_pago, valor_pendente, status
		FROM eventos_competicoes_academia_pagamentos
		WHERE evento_id = $1 AND academia_id = $2`

	p := &models.AcademyPayment{}
	err := r.db.QueryRowContext(ctx, query, eventID, academyID).Scan(
		&p.ID, &p.EventID, &p.AcademyID, &p.ExpectedTotal, &p.PaidTotal, &p.PendingTotal, &p.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPaymentRepository) ListByEvent(ctx context.Context, eventID int) ([]models.AcademyPayment, error) {
	query := `
		SELECT p.id, p.evento_id, p.academia_id, p.valor_total_esperado, p.valor_pago, p.valor_pendente, p.status, ac.nome
		FROM eventos_competicoes_academia_pagamentos p
		JOIN academias ac ON ac.id = p.academia_id
		WHERE p.evento_id = $1
		ORDER BY ac.nome`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]models.AcademyPayment, 0)
	for rows.Next() {
		var p models.AcademyPayment
		if scanErr := rows.Scan(
			&p.ID, &p.EventID, &p.AcademyID, &p.ExpectedTotal, &p.PaidTotal, &p.PendingTotal, &p.Status, &p.AcademyName,
		); scanErr != nil {
			return nil, scanErr
		}
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *postgresPaymentRepository) Upsert(ctx context.Context, exec SQLExecutor, p *models.AcademyPayment) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO eventos_competicoes_academia_pagamentos (
			evento_id, academia_id, valor_total_esperado, valor_pago, valor_pendente, status
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (evento_id, academia_id) DO UPDATE SET
			valor_total_esperado = EXCLUDED.valor_total_esperado,
			valor_pago = EXCLUDED.valor_pago,
			valor_pendente = EXCLUDED.valor_pendente,
			status = EXCLUDED.status
		RETURNING id`

	return executor.QueryRowContext(ctx, query,
		p.EventID, p.AcademyID, p.ExpectedTotal, p.PaidTotal, p.PendingTotal, p.Status,
	).Scan(&p.ID)
}

func (r *postgresPaymentRepository) DeleteByEventAndAcademy(ctx context.Context, exec SQLExecutor, eventID, academyID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`DELETE FROM eventos_competicoes_academia_pagamentos WHERE evento_id = $1 AND academia_id = $2`,
		eventID, academyID)
	return err
}
