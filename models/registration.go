package models

import "time"

// RegistrationStatus values match the enum stored in
// eventos_competicoes_inscricoes. A draft row is visible to the academy and
// still editable; a submitted row belongs to the association's consolidation.
type RegistrationStatus string

const (
	RegistrationDraft     RegistrationStatus = "confirmada"
	RegistrationSubmitted RegistrationStatus = "enviada"
)

type Registration struct {
	ID          int                `json:"id" db:"id"`
	EventID     int                `json:"evento_id" db:"evento_id"`
	AcademyID   int                `json:"academia_id" db:"academia_id"`
	AthleteID   *int               `json:"aluno_id,omitempty" db:"aluno_id"`
	SubmittedBy int                `json:"usuario_inscricao_id" db:"usuario_inscricao_id"`
	FormData    map[string]string  `json:"dados_form" db:"-"`
	WalkIn      bool               `json:"inclusao_avulsa" db:"inclusao_avulsa"`
	Status      RegistrationStatus `json:"status" db:"status"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
	SubmittedAt *time.Time         `json:"data_envio,omitempty" db:"data_envio"`

	// Joined for display and export fallbacks.
	AthleteName string `json:"aluno_nome,omitempty" db:"-"`
	AcademyName string `json:"academia_nome,omitempty" db:"-"`
}

// Category returns the categoria value inside the form data, empty when the
// registration was created without category selection.
func (r *Registration) Category() string {
	if r.FormData == nil {
		return ""
	}
	return r.FormData["categoria"]
}
