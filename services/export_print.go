package services

import (
	"bytes"
	"fmt"
	"html/template"
)

// printTemplate is a self-contained page meant for the browser's print
// dialog. Styling stays inline so the artifact works offline.
var printTemplate = template.Must(template.New("print").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>{{.Event.Name}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 24px; color: #222; }
h1 { font-size: 20px; margin-bottom: 2px; }
h2 { font-size: 14px; color: #555; margin-top: 0; }
h3 { font-size: 14px; margin: 18px 0 6px; }
table { border-collapse: collapse; width: 100%; margin-bottom: 8px; }
th, td { border: 1px solid #999; padding: 4px 6px; font-size: 12px; text-align: left; }
th { background: #366092; color: #fff; }
.total { font-weight: bold; margin: 4px 0 16px; }
.empty { font-style: italic; color: #777; }
@media print { h3 { page-break-after: avoid; } table { page-break-inside: auto; } tr { page-break-inside: avoid; } }
</style>
</head>
<body>
<h1>{{.Event.Name}}</h1>
{{if .AssociationName}}<h2>{{.AssociationName}}</h2>{{end}}
{{if eq .Total 0}}<p class="empty">Nenhuma inscrição enviada.</p>{{end}}
{{range $group := .Groups}}{{range $sub := $group.Subgroups}}
<h3>{{$group.Key}}{{if $sub.Key}} / {{$sub.Key}}{{end}}</h3>
<table>
<thead><tr><th>#</th>{{range $.Columns}}<th>{{.Label}}</th>{{end}}</tr></thead>
<tbody>
{{range $i, $row := $sub.Rows}}<tr><td>{{inc $i}}</td>{{range $row.Cells}}<td>{{.}}</td>{{end}}</tr>
{{end}}
</tbody>
</table>
<p class="total">Total: {{len $sub.Rows}}</p>
{{end}}{{end}}
</body>
</html>
`))

// RenderPrintHTML renders the consolidation as a standalone printable page.
func (s *ExportService) RenderPrintHTML(result *ConsolidationResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := printTemplate.Execute(&buf, result); err != nil {
		return nil, fmt.Errorf("failed to render print page: %w", err)
	}
	return buf.Bytes(), nil
}
