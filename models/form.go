package models

import "time"

// Form is an ordered projection over the athlete field catalog. Owned by
// either a federation or an association, never both.
type Form struct {
	ID            int         `json:"id" db:"id"`
	Name          string      `json:"nome" db:"nome"`
	FederationID  *int        `json:"id_federacao,omitempty" db:"id_federacao"`
	AssociationID *int        `json:"id_associacao,omitempty" db:"id_associacao"`
	Active        bool        `json:"ativo" db:"ativo"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	Fields        []FormField `json:"campos,omitempty" db:"-"`
}

type FormField struct {
	ID      int    `json:"id" db:"id"`
	FormID  int    `json:"formulario_id" db:"formulario_id"`
	Key     string `json:"campo_chave" db:"campo_chave"`
	Label   string `json:"label" db:"label"`
	Ordinal int    `json:"ordem" db:"ordem"`
}

// HasField reports whether the form contains the given catalog key.
func (f *Form) HasField(key string) bool {
	for _, c := range f.Fields {
		if c.Key == key {
			return true
		}
	}
	return false
}
