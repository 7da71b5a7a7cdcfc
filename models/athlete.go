package models

import "time"

// Athlete is the subset of the alunos master record this subsystem reads.
// Writes go through the registration write-back only.
type Athlete struct {
	ID        int        `json:"id" db:"id"`
	AcademyID *int       `json:"id_academia,omitempty" db:"id_academia"`
	Name      string     `json:"nome" db:"nome"`
	Gender    *string    `json:"sexo,omitempty" db:"sexo"`
	BirthDate *time.Time `json:"data_nascimento,omitempty" db:"data_nascimento"`
	Weight    *float64   `json:"peso,omitempty" db:"peso"`
}
