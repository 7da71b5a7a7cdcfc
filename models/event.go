package models

import "time"

// EventType distinguishes plain events from scored competitions.
type EventType string

const (
	TypeEvent       EventType = "evento"
	TypeCompetition EventType = "competicao"
)

// EventStatus is the explicit closure flag, independent of the clock.
type EventStatus string

const (
	EventActive    EventStatus = "ativo"
	EventFinalized EventStatus = "finalizado"
)

// Event is the aggregate root: it owns its attachments, adhesion rows,
// registrations and calendar mirror rows. The form is shared by reference.
type Event struct {
	ID              int         `json:"id" db:"id"`
	AssociationID   int         `json:"id_associacao" db:"id_associacao"`
	Name            string      `json:"nome" db:"nome"`
	Description     *string     `json:"descricao,omitempty" db:"descricao"`
	Type            EventType   `json:"tipo" db:"tipo"`
	FormID          *int        `json:"formulario_id,omitempty" db:"formulario_id"`
	StartAt         *time.Time  `json:"data_inicio,omitempty" db:"data_inicio"`
	EndAt           time.Time   `json:"data_fim" db:"data_fim"`
	Status          EventStatus `json:"status" db:"status"`
	HasFee          bool        `json:"tem_taxa" db:"tem_taxa"`
	SuggestedFee    *float64    `json:"valor_taxa_sugerido,omitempty" db:"valor_taxa_sugerido"`
	ExportConfigRaw *string     `json:"-" db:"configuracao_exportacao"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`

	Attachments []Attachment `json:"anexos,omitempty" db:"-"`
	Form        *Form        `json:"formulario,omitempty" db:"-"`
}

// Closed reports whether the event no longer accepts mutations. Finalization
// and the end date are independent closure causes.
func (e *Event) Closed(now time.Time) bool {
	return now.After(e.EndAt) || e.Status == EventFinalized
}
