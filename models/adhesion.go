package models

// Adhesion is the per-(event, academy) opt-in flag. One row per academy under
// the owning association is created together with the event.
type Adhesion struct {
	EventID   int      `json:"evento_id" db:"evento_id"`
	AcademyID int      `json:"academia_id" db:"academia_id"`
	Adhered   bool     `json:"aderiu" db:"aderiu"`
	FeeValue  *float64 `json:"valor_taxa,omitempty" db:"valor_taxa"`

	AcademyName string `json:"academia_nome,omitempty" db:"-"`
}
