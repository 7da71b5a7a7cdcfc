package services

import (
	"testing"
	"time"
)

func TestDedupeCategories(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"repeats dropped", []string{"Juvenil", "Adulto", "Juvenil"}, []string{"Juvenil", "Adulto"}},
		{"blanks dropped", []string{"", "  ", "Juvenil"}, []string{"Juvenil"}},
		{"whitespace trimmed", []string{" Adulto ", "Adulto"}, []string{"Adulto"}},
		{"empty input", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dedupeCategories(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("dedupeCategories(%v) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("category %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAthleteWriteBack(t *testing.T) {
	columns := athleteWriteBack(map[string]string{
		"nome":            "Maria Silva",
		"endereco":        "Rua das Flores",
		"telefone_celular": "11999990000",
		"peso":            "63,5",
		"graduacao_id":    "4",
		"data_nascimento": "31/12/2010",
		"categoria":       "Juvenil",
		"id_academia":     "7",
		"foto":            "foto.png",
		"observacoes":     "   ",
	})

	if got := columns["nome"]; got != "Maria Silva" {
		t.Errorf("nome = %v", got)
	}
	// Form keys translate to the column names of the master record.
	if got := columns["rua"]; got != "Rua das Flores" {
		t.Errorf("rua = %v", got)
	}
	if got := columns["tel_celular"]; got != "11999990000" {
		t.Errorf("tel_celular = %v", got)
	}
	if got := columns["peso"]; got != 63.5 {
		t.Errorf("peso = %v, want 63.5", got)
	}
	if got := columns["graduacao_id"]; got != 4 {
		t.Errorf("graduacao_id = %v, want 4", got)
	}
	born, ok := columns["data_nascimento"].(time.Time)
	if !ok || born.Year() != 2010 || born.Month() != time.December || born.Day() != 31 {
		t.Errorf("data_nascimento = %v, want 2010-12-31", columns["data_nascimento"])
	}

	for _, key := range []string{"categoria", "id_academia", "foto", "observacoes"} {
		if _, present := columns[key]; present {
			t.Errorf("key %q should not be written back", key)
		}
	}
}

func TestAthleteWriteBackSkipsUnparseable(t *testing.T) {
	columns := athleteWriteBack(map[string]string{
		"peso":            "pesado",
		"graduacao_id":    "quarta",
		"data_nascimento": "ontem",
		"nome":            "Ana",
	})

	for _, col := range []string{"peso", "graduacao_id", "data_nascimento"} {
		if _, present := columns[col]; present {
			t.Errorf("unparseable %q should be skipped, got %v", col, columns[col])
		}
	}
	if got := columns["nome"]; got != "Ana" {
		t.Errorf("nome = %v, want Ana", got)
	}
}
