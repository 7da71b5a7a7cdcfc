package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fedsports/registration-system/models"
	"github.com/fedsports/registration-system/repositories"
	"github.com/fedsports/registration-system/services"
)

type ConsolidationHandler struct {
	consolidationService *services.ConsolidationService
	exportService        *services.ExportService
	userRepo             repositories.UserRepository
}

func NewConsolidationHandler(
	consolidationService *services.ConsolidationService,
	exportService *services.ExportService,
	userRepo repositories.UserRepository,
) *ConsolidationHandler {
	return &ConsolidationHandler{
		consolidationService: consolidationService,
		exportService:        exportService,
		userRepo:             userRepo,
	}
}

func consolidationOptions(r *http.Request) services.ConsolidationOptions {
	query := r.URL.Query()
	opts := services.ConsolidationOptions{
		GroupBy:  query.Get("agrupamento"),
		SortKey:  query.Get("ordenar_por"),
		SortDesc: query.Get("direcao") == "desc",
	}
	if raw := query.Get("campos"); raw != "" {
		for _, key := range strings.Split(raw, ",") {
			if key = strings.TrimSpace(key); key != "" {
				opts.Columns = append(opts.Columns, key)
			}
		}
	}
	return opts
}

func pdfLayout(r *http.Request) services.PDFLayout {
	query := r.URL.Query()
	layout := services.PDFLayout{Orientation: query.Get("orientacao")}
	if v, err := strconv.Atoi(query.Get("escala")); err == nil {
		layout.ScalePercent = v
	}
	if v, err := strconv.ParseFloat(query.Get("fonte_pt"), 64); err == nil {
		layout.FontSizePt = v
	}
	if v, err := strconv.ParseFloat(query.Get("margem_vertical_mm"), 64); err == nil {
		layout.VerticalMarginMM = v
	}
	if v, err := strconv.ParseFloat(query.Get("margem_horizontal_mm"), 64); err == nil {
		layout.HorizontalMarginMM = v
	}
	return layout
}

func (h *ConsolidationHandler) consolidate(w http.ResponseWriter, r *http.Request) (*services.ConsolidationResult, bool) {
	user, _, err := sessionUser(r.Context(), h.userRepo)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return nil, false
	}
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return nil, false
	}

	result, err := h.consolidationService.Consolidate(r.Context(), user, eventID, consolidationOptions(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return nil, false
	}
	return result, true
}

// ConsolidatedHandler handles GET /events-competitions/{eventID}/consolidated
func (h *ConsolidationHandler) ConsolidatedHandler(w http.ResponseWriter, r *http.Request) {
	result, ok := h.consolidate(w, r)
	if !ok {
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"consolidado": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExportExcelHandler handles GET /events-competitions/{eventID}/export/xlsx
func (h *ConsolidationHandler) ExportExcelHandler(w http.ResponseWriter, r *http.Request) {
	result, ok := h.consolidate(w, r)
	if !ok {
		return
	}

	filename, content, err := h.exportService.ExportExcel(result)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	sendFile(w, filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}

// ExportPDFHandler handles GET /events-competitions/{eventID}/export/pdf
func (h *ConsolidationHandler) ExportPDFHandler(w http.ResponseWriter, r *http.Request) {
	result, ok := h.consolidate(w, r)
	if !ok {
		return
	}

	filename, content, err := h.exportService.ExportPDF(result, pdfLayout(r))
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	sendFile(w, filename, "application/pdf", content)
}

// PrintHandler handles GET /events-competitions/{eventID}/print
func (h *ConsolidationHandler) PrintHandler(w http.ResponseWriter, r *http.Request) {
	result, ok := h.consolidate(w, r)
	if !ok {
		return
	}

	page, err := h.exportService.RenderPrintHTML(result)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

// GetExportConfigHandler handles GET /events-competitions/{eventID}/export-config
func (h *ConsolidationHandler) GetExportConfigHandler(w http.ResponseWriter, r *http.Request) {
	user, _, err := sessionUser(r.Context(), h.userRepo)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	cfg, err := h.consolidationService.GetExportConfig(r.Context(), user, eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"configuracao": cfg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SaveExportConfigHandler handles PUT /events-competitions/{eventID}/export-config
func (h *ConsolidationHandler) SaveExportConfigHandler(w http.ResponseWriter, r *http.Request) {
	user, _, err := sessionUser(r.Context(), h.userRepo)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Fields         []string `json:"campos"`
		PDFOrientation string   `json:"orientacao_pdf"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	cfg := models.ExportConfig{Fields: input.Fields, PDFOrientation: input.PDFOrientation}
	if err := h.consolidationService.SaveExportConfig(r.Context(), user, eventID, cfg); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "configuracao salva"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func sendFile(w http.ResponseWriter, filename, contentType string, content []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}
