package models

// Gender values as stored in categorias.sexo.
const (
	GenderMale   = "MASCULINO"
	GenderFemale = "FEMININO"
)

// Category is a (gender, age range, weight range) bucket. A nil bound is
// unbounded on that side.
type Category struct {
	ID        int      `json:"id" db:"id"`
	Gender    string   `json:"sexo" db:"sexo"`
	Name      string   `json:"nome_categoria" db:"nome_categoria"`
	WeightMin *float64 `json:"peso_min,omitempty" db:"peso_min"`
	WeightMax *float64 `json:"peso_max,omitempty" db:"peso_max"`
	AgeMin    *int     `json:"idade_min,omitempty" db:"idade_min"`
	AgeMax    *int     `json:"idade_max,omitempty" db:"idade_max"`
	Active    bool     `json:"ativo" db:"ativo"`
}
