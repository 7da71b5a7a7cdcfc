package services

import (
	"testing"

	"github.com/fedsports/registration-system/models"
)

func fieldKeys(fields []models.FormField) []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	return keys
}

func TestBuildFields(t *testing.T) {
	fields := buildFields([]string{"nome", "peso", "nome", "", "campo_invalido", "sexo"})

	want := []string{"nome", "peso", "sexo"}
	got := fieldKeys(fields)
	if len(got) != len(want) {
		t.Fatalf("buildFields kept %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %q, want %q", i, got[i], want[i])
		}
		if fields[i].Ordinal != i {
			t.Errorf("field %q ordinal = %d, want %d", got[i], fields[i].Ordinal, i)
		}
		if fields[i].Label != models.FieldLabel(want[i]) {
			t.Errorf("field %q label = %q, want %q", got[i], fields[i].Label, models.FieldLabel(want[i]))
		}
	}
}

func TestAugmentWithCategory(t *testing.T) {
	mk := func(keys ...string) []models.FormField {
		fields := make([]models.FormField, len(keys))
		for i, k := range keys {
			fields[i] = models.FormField{ID: i + 100, Key: k, Ordinal: i}
		}
		return fields
	}

	t.Run("inserts categoria after peso", func(t *testing.T) {
		fields := mk("nome", "sexo", "data_nascimento", "peso", "graduacao_id")
		augmented, changed := augmentWithCategory(fields)
		if !changed {
			t.Fatal("expected the field set to change")
		}
		want := []string{"nome", "sexo", "data_nascimento", "peso", "categoria", "graduacao_id"}
		got := fieldKeys(augmented)
		if len(got) != len(want) {
			t.Fatalf("augmented keys = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("field %d = %q, want %q", i, got[i], want[i])
			}
			if augmented[i].Ordinal != i {
				t.Errorf("field %q ordinal = %d, want %d", got[i], augmented[i].Ordinal, i)
			}
			if augmented[i].ID != 0 {
				t.Errorf("field %q keeps stale ID %d", got[i], augmented[i].ID)
			}
		}
	})

	t.Run("already has categoria", func(t *testing.T) {
		fields := mk("sexo", "data_nascimento", "peso", "categoria")
		if _, changed := augmentWithCategory(fields); changed {
			t.Error("field set with categoria should not change")
		}
	})

	t.Run("missing a resolution input", func(t *testing.T) {
		for _, keys := range [][]string{
			{"data_nascimento", "peso"},
			{"sexo", "peso"},
			{"sexo", "data_nascimento"},
		} {
			if _, changed := augmentWithCategory(mk(keys...)); changed {
				t.Errorf("fields %v lack a resolution input but still changed", keys)
			}
		}
	})
}
