package models

// PaymentStatus of an academy's fee record for one event.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pendente"
	PaymentPartial PaymentStatus = "parcial"
	PaymentSettled PaymentStatus = "quitado"
)

// AcademyPayment is bookkeeping only: expected totals derive from the
// per-registration fee times the submitted roster size. No money moves here.
type AcademyPayment struct {
	ID            int           `json:"id" db:"id"`
	EventID       int           `json:"evento_id" db:"evento_id"`
	AcademyID     int           `json:"academia_id" db:"academia_id"`
	ExpectedTotal float64       `json:"valor_total_esperado" db:"valor_total_esperado"`
	PaidTotal     float64       `json:"valor_pago" db:"valor_pago"`
	PendingTotal  float64       `json:"valor_pendente" db:"valor_pendente"`
	Status        PaymentStatus `json:"status" db:"status"`

	AcademyName string `json:"academia_nome,omitempty" db:"-"`
}

// Recalculate derives pending amount and status from the totals.
func (p *AcademyPayment) Recalculate() {
	p.PendingTotal = p.ExpectedTotal - p.PaidTotal
	switch {
	case p.PendingTotal <= 0:
		p.Status = PaymentSettled
	case p.PaidTotal > 0:
		p.Status = PaymentPartial
	default:
		p.Status = PaymentPending
	}
}
