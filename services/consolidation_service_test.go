package services

import (
	"testing"

	"github.com/fedsports/registration-system/models"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"empty becomes dash", "nome", "", "-"},
		{"whitespace becomes dash", "nome", "   ", "-"},
		{"plain text untouched", "nome", "Maria Silva", "Maria Silva"},
		{"sex code M expands", "sexo", "M", "Masculino"},
		{"sex code F expands", "sexo", "F", "Feminino"},
		{"sex full word normalizes", "sexo", "masculino", "Masculino"},
		{"unknown sex value kept", "sexo", "outro", "outro"},
		{"date field formats BR", "data_nascimento", "2010-12-31", "31/12/2010"},
		{"non-date field keeps ISO text", "nome", "2010-12-31", "2010-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatValue(tt.key, tt.value); got != tt.want {
				t.Errorf("formatValue(%q, %q) = %q, want %q", tt.key, tt.value, got, tt.want)
			}
		})
	}
}

func TestProjectValue(t *testing.T) {
	reg := models.Registration{
		AcademyID:   7,
		AcademyName: "Academia Centro",
		AthleteName: "João Souza",
		FormData:    map[string]string{"peso": "63,2"},
	}

	if got := projectValue(&reg, "peso"); got != "63,2" {
		t.Errorf("projectValue(peso) = %q, want form value", got)
	}
	if got := projectValue(&reg, "id_academia"); got != "Academia Centro" {
		t.Errorf("projectValue(id_academia) = %q, want academy name fallback", got)
	}
	if got := projectValue(&reg, "nome"); got != "João Souza" {
		t.Errorf("projectValue(nome) = %q, want athlete name fallback", got)
	}
	if got := projectValue(&reg, "graduacao_id"); got != "" {
		t.Errorf("projectValue(graduacao_id) = %q, want empty", got)
	}

	walkIn := models.Registration{AthleteName: "Ana", WalkIn: true}
	if got := projectValue(&walkIn, "nome"); got != "Ana" {
		t.Errorf("projectValue on nil form data = %q, want %q", got, "Ana")
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"numeric order", "9", "10", -1},
		{"numeric equal", "5", "5.0", 0},
		{"comma decimals parse", "63,5", "63.6", -1},
		{"numbers sort before text", "12", "abacaxi", -1},
		{"text after numbers", "abacaxi", "12", 1},
		{"text case insensitive", "Bruno", "amanda", 1},
		{"text equal ignoring case", "ANA", "ana", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compareValues(tt.a, tt.b)
			switch {
			case tt.want < 0 && got >= 0,
				tt.want > 0 && got <= 0,
				tt.want == 0 && got != 0:
				t.Errorf("compareValues(%q, %q) = %d, want sign of %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSortRegistrations(t *testing.T) {
	regs := func() []models.Registration {
		return []models.Registration{
			{AcademyName: "Sul", AthleteName: "Bruno", FormData: map[string]string{"peso": "80"}},
			{AcademyName: "Centro", AthleteName: "Ana", FormData: map[string]string{"peso": "63,5"}},
			{AcademyName: "Centro", AthleteName: "Carlos", FormData: map[string]string{"peso": "70"}},
		}
	}
	names := func(rs []models.Registration) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.AthleteName
		}
		return out
	}
	assertOrder := func(t *testing.T, got, want []string) {
		t.Helper()
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("order = %v, want %v", got, want)
			}
		}
	}

	t.Run("unknown key falls back to academy then athlete", func(t *testing.T) {
		rs := regs()
		sortRegistrations(rs, "inexistente", false, []string{"peso"})
		assertOrder(t, names(rs), []string{"Ana", "Carlos", "Bruno"})
	})

	t.Run("form key sorts by projected value", func(t *testing.T) {
		rs := regs()
		sortRegistrations(rs, "peso", false, []string{"peso"})
		assertOrder(t, names(rs), []string{"Ana", "Carlos", "Bruno"})
	})

	t.Run("descending reverses", func(t *testing.T) {
		rs := regs()
		sortRegistrations(rs, "peso", true, []string{"peso"})
		assertOrder(t, names(rs), []string{"Bruno", "Carlos", "Ana"})
	})
}

func TestGroupRows(t *testing.T) {
	registrations := []models.Registration{
		{AcademyID: 1, AcademyName: "Centro", AthleteName: "Ana", FormData: map[string]string{"categoria": "Juvenil"}},
		{AcademyID: 1, AcademyName: "Centro", AthleteName: "Bruno", FormData: map[string]string{"categoria": "Adulto"}},
		{AcademyID: 2, AcademyName: "Sul", AthleteName: "Carlos", FormData: map[string]string{"categoria": "Juvenil"}},
		{AcademyID: 1, AcademyName: "Centro", AthleteName: "Duda", WalkIn: true},
	}

	groups := groupRows(registrations, []string{"nome"}, academyKey, categoryKey)

	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Key != "Centro" || groups[1].Key != "Sul" {
		t.Errorf("group order = [%s, %s], want first-seen order [Centro, Sul]", groups[0].Key, groups[1].Key)
	}
	if groups[0].Total != 3 || groups[1].Total != 1 {
		t.Errorf("group totals = [%d, %d], want [3, 1]", groups[0].Total, groups[1].Total)
	}

	centro := groups[0]
	if len(centro.Subgroups) != 3 {
		t.Fatalf("Centro has %d subgroups, want 3", len(centro.Subgroups))
	}
	if centro.Subgroups[2].Key != NoCategoryGroup {
		t.Errorf("walk-in without form data grouped as %q, want %q", centro.Subgroups[2].Key, NoCategoryGroup)
	}

	// Cells are projected through the fallbacks: nome falls back to the
	// athlete name even without form data.
	row := centro.Subgroups[2].Rows[0]
	if row.Cells[0] != "Duda" {
		t.Errorf("walk-in nome cell = %q, want %q", row.Cells[0], "Duda")
	}
}
