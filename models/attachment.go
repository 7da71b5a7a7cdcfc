package models

import "time"

type Attachment struct {
	ID           int       `json:"id" db:"id"`
	EventID      int       `json:"evento_id" db:"evento_id"`
	OriginalName string    `json:"nome_arquivo" db:"nome_arquivo"`
	StoredName   string    `json:"-" db:"nome_armazenado"`
	SizeBytes    int64     `json:"tamanho" db:"tamanho"`
	Mime         string    `json:"mime" db:"mime"`
	Description  *string   `json:"descricao,omitempty" db:"descricao"`
	CreatedBy    int       `json:"criado_por" db:"criado_por"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
