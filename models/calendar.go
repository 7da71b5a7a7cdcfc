package models

import "time"

// Calendar mirror levels.
const (
	CalendarLevelAssociation = "associacao"
	CalendarLevelAcademy     = "academia"
)

// CalendarEntry mirrors an event into the shared eventos calendar table.
// Rows created by this subsystem carry the source event id so edits and
// deletes can find them again.
type CalendarEntry struct {
	ID              int        `json:"id" db:"id"`
	Title           string     `json:"titulo" db:"titulo"`
	Description     *string    `json:"descricao,omitempty" db:"descricao"`
	StartDate       time.Time  `json:"data_inicio" db:"data_inicio"`
	EndDate         time.Time  `json:"data_fim" db:"data_fim"`
	Type            string     `json:"tipo" db:"tipo"`
	Level           string     `json:"nivel" db:"nivel"`
	LevelID         int        `json:"nivel_id" db:"nivel_id"`
	CreatedByUserID *int       `json:"criado_por_usuario_id,omitempty" db:"criado_por_usuario_id"`
	SyncOrigin      *string    `json:"origem_sincronizacao,omitempty" db:"origem_sincronizacao"`
	SourceEventID   *int       `json:"evento_competicao_id,omitempty" db:"evento_competicao_id"`
	CreatedAt       *time.Time `json:"created_at,omitempty" db:"created_at"`
}
