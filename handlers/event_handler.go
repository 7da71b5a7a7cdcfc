package handlers

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/fedsports/registration-system/middleware"
	"github.com/fedsports/registration-system/models"
	"github.com/fedsports/registration-system/repositories"
	"github.com/fedsports/registration-system/services"
)

const maxUploadMemory = 32 << 20 // 32MB

type EventHandler struct {
	eventService *services.EventService
	formService  *services.FormService
}

func NewEventHandler(eventService *services.EventService, formService *services.FormService) *EventHandler {
	return &EventHandler{eventService: eventService, formService: formService}
}

// parseEventForm reads the multipart payload shared by create and edit.
func parseEventForm(r *http.Request) (services.CreateEventInput, []services.AttachmentUpload, func(), error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return services.CreateEventInput{}, nil, nil, err
	}

	input := services.CreateEventInput{
		Name:    r.FormValue("nome"),
		Type:    r.FormValue("tipo"),
		StartAt: r.FormValue("data_inicio"),
		EndAt:   r.FormValue("data_fim"),
	}
	if description := r.FormValue("descricao"); description != "" {
		input.Description = &description
	}
	if rawFormID := r.FormValue("formulario_id"); rawFormID != "" {
		if formID, err := strconv.Atoi(rawFormID); err == nil && formID > 0 {
			input.FormID = &formID
		}
	}
	switch r.FormValue("possui_taxa") {
	case "true", "1", "on", "sim":
		input.HasFee = true
	}
	if rawFee := r.FormValue("valor_sugerido"); rawFee != "" {
		if fee, err := strconv.ParseFloat(rawFee, 64); err == nil && fee >= 0 {
			input.SuggestedFee = &fee
		}
	}

	var uploads []services.AttachmentUpload
	var open []multipart.File
	cleanup := func() {
		for _, f := range open {
			f.Close()
		}
	}

	if r.MultipartForm != nil {
		descriptions := r.MultipartForm.Value["anexos_descricao"]
		for i, header := range r.MultipartForm.File["anexos"] {
			file, err := header.Open()
			if err != nil {
				cleanup()
				return services.CreateEventInput{}, nil, nil, err
			}
			open = append(open, file)

			up := services.AttachmentUpload{
				FileName:    header.Filename,
				Size:        header.Size,
				ContentType: header.Header.Get("Content-Type"),
				Reader:      file,
			}
			if i < len(descriptions) && descriptions[i] != "" {
				description := descriptions[i]
				up.Description = &description
			}
			uploads = append(uploads, up)
		}
	}
	return input, uploads, cleanup, nil
}

func sessionAssociationID(r *http.Request) (*middleware.Session, int, bool) {
	session, err := middleware.SessionFromContext(r.Context())
	if err != nil || session.AssociationID == nil {
		return nil, 0, false
	}
	return session, *session.AssociationID, true
}

// CreateHandler handles POST /events-competitions (multipart)
func (h *EventHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	session, associationID, ok := sessionAssociationID(r)
	if !ok {
		forbiddenResponse(w, r, "an association scope is required to create events")
		return
	}

	input, uploads, cleanup, err := parseEventForm(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer cleanup()

	event, err := h.eventService.CreateEvent(r.Context(), associationID, session.UserID, input, uploads)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"evento": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EditHandler handles PUT /events-competitions/{eventID} (multipart)
func (h *EventHandler) EditHandler(w http.ResponseWriter, r *http.Request) {
	session, associationID, ok := sessionAssociationID(r)
	if !ok {
		forbiddenResponse(w, r, "an association scope is required to edit events")
		return
	}
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	input, uploads, cleanup, err := parseEventForm(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer cleanup()

	var removeIDs []int
	if r.MultipartForm != nil {
		for _, raw := range r.MultipartForm.Value["remover_anexos"] {
			if id, err := strconv.Atoi(raw); err == nil && id > 0 {
				removeIDs = append(removeIDs, id)
			}
		}
	}

	event, err := h.eventService.EditEvent(r.Context(), eventID, associationID, session.UserID, input, removeIDs, uploads)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"evento": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /events-competitions/{eventID}
func (h *EventHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.GetEvent(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"evento": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /events-competitions
func (h *EventHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	session, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var filter repositories.ListEventsFilter
	query := r.URL.Query()

	// Association panels see their own events; academy panels see the
	// events of the association above them through the same filter.
	if session.AssociationID != nil {
		filter.AssociationID = session.AssociationID
	}
	if t := query.Get("tipo"); t != "" {
		eventType := models.EventType(t)
		filter.Type = &eventType
	}
	if s := query.Get("status"); s != "" {
		status := models.EventStatus(s)
		filter.Status = &status
	}
	if raw := query.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if raw := query.Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	events, err := h.eventService.ListEvents(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"eventos": events}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FinalizeHandler handles POST /events-competitions/{eventID}/finalize
func (h *EventHandler) FinalizeHandler(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.eventService.Finalize, "evento finalizado")
}

// ReactivateHandler handles POST /events-competitions/{eventID}/reactivate
func (h *EventHandler) ReactivateHandler(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.eventService.Reactivate, "evento reativado")
}

func (h *EventHandler) setStatus(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, eventID, associationID int) error, message string) {
	_, associationID, ok := sessionAssociationID(r)
	if !ok {
		forbiddenResponse(w, r, "an association scope is required to change event status")
		return
	}
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := op(r.Context(), eventID, associationID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": message}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /events-competitions/{eventID}
func (h *EventHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	_, associationID, ok := sessionAssociationID(r)
	if !ok {
		forbiddenResponse(w, r, "an association scope is required to delete events")
		return
	}
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.eventService.DeleteEvent(r.Context(), eventID, associationID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "evento removido"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetFormHandler handles GET /events-competitions/{eventID}/form
func (h *EventHandler) GetFormHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.GetEvent(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if event.FormID == nil {
		notFoundResponse(w, r)
		return
	}

	form, err := h.formService.GetFormForEvent(r.Context(), *event.FormID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"formulario": form}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
