package models

// ExportConfig is the per-event column layout persisted as JSON in
// eventos_competicoes.configuracao_exportacao.
type ExportConfig struct {
	Fields         []string `json:"campos"`
	PDFOrientation string   `json:"orientacao_pdf,omitempty"`
}

// PDF orientation values accepted by the export engine.
const (
	OrientationLandscape = "landscape"
	OrientationPortrait  = "portrait"
)
