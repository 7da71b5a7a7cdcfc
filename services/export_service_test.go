package services

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/fedsports/registration-system/models"
)

func testExportService() *ExportService {
	return NewExportService(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sampleConsolidation() *ConsolidationResult {
	return &ConsolidationResult{
		Event:           &models.Event{ID: 3, Name: "Copa Regional 2026"},
		AssociationName: "Associação Norte",
		GroupBy:         GroupByAcademy,
		Columns: []ConsolidationColumn{
			{Key: "nome", Label: "Nome"},
			{Key: "peso", Label: "Peso (kg)"},
		},
		Groups: []ConsolidatedGroup{
			{
				Key: "Academia Centro",
				Subgroups: []ConsolidatedSubgroup{
					{
						Key: "Juvenil",
						Rows: []ConsolidatedRow{
							{Cells: []string{"Ana", "63,5"}},
							{Cells: []string{"Bruno", "66"}},
						},
					},
				},
				Total: 2,
			},
		},
		Total: 2,
	}
}

func TestExportBaseName(t *testing.T) {
	tests := []struct {
		name  string
		event models.Event
		want  string
	}{
		{"spaces become underscores", models.Event{Name: "Copa Regional 2026"}, "inscricoes_Copa_Regional_2026"},
		{"punctuation dropped", models.Event{Name: "Copa (Etapa #1)!"}, "inscricoes_Copa_Etapa_1"},
		{"long names truncated", models.Event{Name: strings.Repeat("a", 60)}, "inscricoes_" + strings.Repeat("a", 30)},
		{"empty falls back to id", models.Event{ID: 9, Name: "???"}, "inscricoes_evento_9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.event
			if got := exportBaseName(&e); got != tt.want {
				t.Errorf("exportBaseName(%q) = %q, want %q", tt.event.Name, got, tt.want)
			}
		})
	}
}

func TestPDFLayoutWithDefaults(t *testing.T) {
	t.Run("zero value", func(t *testing.T) {
		l := PDFLayout{}.withDefaults()
		if l.Orientation != models.OrientationLandscape {
			t.Errorf("Orientation = %q, want landscape default", l.Orientation)
		}
		if l.ScalePercent != 100 || l.FontSizePt != 8 || l.VerticalMarginMM != 10 || l.HorizontalMarginMM != 10 {
			t.Errorf("defaults = %+v", l)
		}
	})

	t.Run("portrait kept", func(t *testing.T) {
		l := PDFLayout{Orientation: models.OrientationPortrait}.withDefaults()
		if l.Orientation != models.OrientationPortrait {
			t.Errorf("Orientation = %q, want portrait", l.Orientation)
		}
	})

	t.Run("out of range scale reset", func(t *testing.T) {
		if l := (PDFLayout{ScalePercent: 500}).withDefaults(); l.ScalePercent != 100 {
			t.Errorf("ScalePercent = %d, want 100", l.ScalePercent)
		}
	})

	t.Run("valid values kept", func(t *testing.T) {
		l := PDFLayout{ScalePercent: 80, FontSizePt: 10, VerticalMarginMM: 5, HorizontalMarginMM: 15}.withDefaults()
		if l.ScalePercent != 80 || l.FontSizePt != 10 || l.VerticalMarginMM != 5 || l.HorizontalMarginMM != 15 {
			t.Errorf("layout = %+v", l)
		}
	})
}

func TestSectionTitle(t *testing.T) {
	if got := sectionTitle("Centro", "Juvenil"); got != "Centro / Juvenil" {
		t.Errorf("sectionTitle = %q", got)
	}
	if got := sectionTitle("Centro", ""); got != "Centro" {
		t.Errorf("sectionTitle without subgroup = %q", got)
	}
}

func TestExportExcel(t *testing.T) {
	svc := testExportService()

	filename, data, err := svc.ExportExcel(sampleConsolidation())
	if err != nil {
		t.Fatalf("ExportExcel returned error: %v", err)
	}
	if filename != "inscricoes_Copa_Regional_2026.xlsx" {
		t.Errorf("filename = %q", filename)
	}
	// XLSX files are zip archives.
	if len(data) < 4 || !bytes.HasPrefix(data, []byte("PK")) {
		t.Errorf("workbook bytes do not look like a zip archive (%d bytes)", len(data))
	}
}

func TestExportPDF(t *testing.T) {
	svc := testExportService()

	filename, data, err := svc.ExportPDF(sampleConsolidation(), PDFLayout{})
	if err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	if filename != "inscricoes_Copa_Regional_2026.pdf" {
		t.Errorf("filename = %q", filename)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not start with the PDF magic (%d bytes)", len(data))
	}
}

func TestRenderPrintHTML(t *testing.T) {
	svc := testExportService()

	t.Run("with rows", func(t *testing.T) {
		page, err := svc.RenderPrintHTML(sampleConsolidation())
		if err != nil {
			t.Fatalf("RenderPrintHTML returned error: %v", err)
		}
		html := string(page)
		for _, want := range []string{
			"Copa Regional 2026",
			"Associação Norte",
			"Academia Centro / Juvenil",
			"Peso (kg)",
			"Ana",
			"Total: 2",
		} {
			if !strings.Contains(html, want) {
				t.Errorf("print page missing %q", want)
			}
		}
		if strings.Contains(html, "Nenhuma inscrição enviada.") {
			t.Error("non-empty consolidation should not show the empty notice")
		}
	})

	t.Run("empty", func(t *testing.T) {
		page, err := svc.RenderPrintHTML(&ConsolidationResult{
			Event: &models.Event{ID: 1, Name: "Evento Vazio"},
		})
		if err != nil {
			t.Fatalf("RenderPrintHTML returned error: %v", err)
		}
		if !strings.Contains(string(page), "Nenhuma inscrição enviada.") {
			t.Error("empty consolidation should show the empty notice")
		}
	})
}
