package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const excelSheetName = "Inscrições"

// ExportExcel renders the consolidation as a styled worksheet. Each group
// and subgroup gets its own heading and header row so the sheet reads the
// same way the panel does.
func (s *ExportService) ExportExcel(result *ConsolidationResult) (string, []byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, excelSheetName); err != nil {
		return "", nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	sheet = excelSheetName

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to build header style: %w", err)
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	if err != nil {
		return "", nil, fmt.Errorf("failed to build title style: %w", err)
	}

	columnCount := len(result.Columns) + 1
	widths := make([]int, columnCount)
	widths[0] = 8
	for i, col := range result.Columns {
		widths[i+1] = len(col.Label) + 2
	}

	row := 1
	setRow := func(values []interface{}, style int) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		if style != 0 {
			end, err := excelize.CoordinatesToCellName(len(values), row)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, end, style); err != nil {
				return err
			}
		}
		row++
		return nil
	}

	if err := setRow([]interface{}{result.Event.Name}, titleStyle); err != nil {
		return "", nil, err
	}

	for _, group := range result.Groups {
		for _, sub := range group.Subgroups {
			if err := setRow([]interface{}{sectionTitle(group.Key, sub.Key)}, titleStyle); err != nil {
				return "", nil, err
			}

			header := make([]interface{}, 0, columnCount)
			header = append(header, "#")
			for _, col := range result.Columns {
				header = append(header, col.Label)
			}
			if err := setRow(header, headerStyle); err != nil {
				return "", nil, err
			}

			for i, r := range sub.Rows {
				values := make([]interface{}, 0, columnCount)
				values = append(values, i+1)
				for j, cell := range r.Cells {
					values = append(values, cell)
					if width := len(cell) + 2; width > widths[j+1] {
						widths[j+1] = width
					}
				}
				if err := setRow(values, 0); err != nil {
					return "", nil, err
				}
			}

			if err := setRow([]interface{}{fmt.Sprintf("Total: %d", len(sub.Rows))}, titleStyle); err != nil {
				return "", nil, err
			}
			row++
		}
	}

	for i, width := range widths {
		if i > 0 {
			if width < 10 {
				width = 10
			}
			if width > 50 {
				width = 50
			}
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return "", nil, err
		}
		if err := f.SetColWidth(sheet, name, name, float64(width)); err != nil {
			return "", nil, err
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return "", nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return "", nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return exportBaseName(result.Event) + ".xlsx", buf.Bytes(), nil
}
