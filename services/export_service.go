package services

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/fedsports/registration-system/models"
)

// PDFLayout carries the user-tunable page parameters of the PDF export.
type PDFLayout struct {
	Orientation        string  `json:"orientacao"`
	ScalePercent       int     `json:"escala"`
	FontSizePt         float64 `json:"fonte_pt"`
	VerticalMarginMM   float64 `json:"margem_vertical_mm"`
	HorizontalMarginMM float64 `json:"margem_horizontal_mm"`
}

func (l PDFLayout) withDefaults() PDFLayout {
	if l.Orientation != models.OrientationPortrait {
		l.Orientation = models.OrientationLandscape
	}
	if l.ScalePercent <= 0 || l.ScalePercent > 200 {
		l.ScalePercent = 100
	}
	if l.FontSizePt <= 0 {
		l.FontSizePt = 8
	}
	if l.VerticalMarginMM <= 0 {
		l.VerticalMarginMM = 10
	}
	if l.HorizontalMarginMM <= 0 {
		l.HorizontalMarginMM = 10
	}
	return l
}

// ExportService renders a consolidation result as a spreadsheet, a PDF or a
// print-ready page. It never touches the database.
type ExportService struct {
	logger *slog.Logger
}

func NewExportService(logger *slog.Logger) *ExportService {
	return &ExportService{logger: logger}
}

// exportBaseName derives the artifact name from the event, capped so long
// event names keep the filename manageable.
func exportBaseName(event *models.Event) string {
	name := strings.TrimSpace(event.Name)
	cleaned := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cleaned = append(cleaned, r)
		case r == ' ' || r == '-' || r == '_':
			cleaned = append(cleaned, '_')
		}
	}
	base := string(cleaned)
	if len(base) > 30 {
		base = base[:30]
	}
	if base == "" {
		base = fmt.Sprintf("evento_%d", event.ID)
	}
	return "inscricoes_" + base
}

// sectionTitle renders the two-level group heading shown above each table
// block.
func sectionTitle(group, subgroup string) string {
	if subgroup == "" {
		return group
	}
	return fmt.Sprintf("%s / %s", group, subgroup)
}
