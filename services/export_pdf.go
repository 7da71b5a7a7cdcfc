package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/fedsports/registration-system/models"
)

// ExportPDF renders the consolidation as a paginated document. The header
// row repeats for every group block and the layout parameters come straight
// from the caller, with sane defaults filled in.
func (s *ExportService) ExportPDF(result *ConsolidationResult, layout PDFLayout) (string, []byte, error) {
	layout = layout.withDefaults()

	orientation := "L"
	if layout.Orientation == models.OrientationPortrait {
		orientation = "P"
	}

	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(layout.HorizontalMarginMM, layout.VerticalMarginMM, layout.HorizontalMarginMM)
	pdf.SetAutoPageBreak(true, layout.VerticalMarginMM)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	scale := float64(layout.ScalePercent) / 100
	fontSize := layout.FontSizePt * scale
	rowHeight := fontSize * 0.62
	if rowHeight < 4 {
		rowHeight = 4
	}

	pdf.SetFont("Arial", "B", fontSize+4)
	pdf.CellFormat(0, rowHeight*1.6, tr(result.Event.Name), "", 1, "C", false, 0, "")
	if result.AssociationName != "" {
		pdf.SetFont("Arial", "", fontSize+1)
		pdf.CellFormat(0, rowHeight*1.2, tr(result.AssociationName), "", 1, "C", false, 0, "")
	}
	pdf.Ln(rowHeight / 2)

	if result.Total == 0 {
		pdf.SetFont("Arial", "I", fontSize+2)
		pdf.CellFormat(0, rowHeight*1.5, tr("Nenhuma inscrição enviada."), "", 1, "C", false, 0, "")
		return finishPDF(pdf, result)
	}

	pageWidth, _ := pdf.GetPageSize()
	usable := pageWidth - 2*layout.HorizontalMarginMM
	indexWidth := 10.0
	cellWidth := usable
	if len(result.Columns) > 0 {
		cellWidth = (usable - indexWidth) / float64(len(result.Columns))
	}

	writeHeader := func() {
		pdf.SetFont("Arial", "B", fontSize)
		pdf.SetFillColor(220, 220, 220)
		pdf.CellFormat(indexWidth, rowHeight, "#", "1", 0, "C", true, 0, "")
		for _, col := range result.Columns {
			pdf.CellFormat(cellWidth, rowHeight, tr(col.Label), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	for _, group := range result.Groups {
		for _, sub := range group.Subgroups {
			pdf.SetFont("Arial", "B", fontSize+2)
			pdf.CellFormat(0, rowHeight*1.4, tr(sectionTitle(group.Key, sub.Key)), "", 1, "L", false, 0, "")

			writeHeader()
			pdf.SetFont("Arial", "", fontSize)
			for i, row := range sub.Rows {
				pdf.CellFormat(indexWidth, rowHeight, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
				for _, cell := range row.Cells {
					pdf.CellFormat(cellWidth, rowHeight, tr(cell), "1", 0, "L", false, 0, "")
				}
				pdf.Ln(-1)
			}

			pdf.SetFont("Arial", "B", fontSize)
			pdf.CellFormat(0, rowHeight*1.2, tr(fmt.Sprintf("Total: %d", len(sub.Rows))), "", 1, "L", false, 0, "")
			pdf.Ln(rowHeight / 2)
		}
	}

	return finishPDF(pdf, result)
}

func finishPDF(pdf *gofpdf.Fpdf, result *ConsolidationResult) (string, []byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return "", nil, fmt.Errorf("failed to serialize pdf: %w", err)
	}
	return exportBaseName(result.Event) + ".pdf", buf.Bytes(), nil
}
