package handlers

import (
	"net/http"

	"github.com/fedsports/registration-system/middleware"
	"github.com/fedsports/registration-system/models"
	"github.com/fedsports/registration-system/services"
)

type FormHandler struct {
	formService *services.FormService
}

func NewFormHandler(formService *services.FormService) *FormHandler {
	return &FormHandler{formService: formService}
}

// CreateHandler handles POST /forms
func (h *FormHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	session, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.CreateFormInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// The owner always comes from the session, never from the payload.
	input.FederationID = nil
	input.AssociationID = nil
	if session.PanelMode == models.PanelFederation {
		input.FederationID = session.FederationID
	} else {
		input.AssociationID = session.AssociationID
	}

	form, err := h.formService.CreateForm(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"formulario": form}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /forms/{formID}
func (h *FormHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	formID, err := urlParamInt(r, "formID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	form, err := h.formService.GetForm(r.Context(), formID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"formulario": form}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /forms
func (h *FormHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	session, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var federationID, associationID *int
	if session.PanelMode == models.PanelFederation {
		federationID = session.FederationID
	} else {
		associationID = session.AssociationID
	}

	forms, err := h.formService.ListForms(r.Context(), federationID, associationID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"formularios": forms}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler handles PUT /forms/{formID}
func (h *FormHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	session, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	formID, err := urlParamInt(r, "formID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateFormInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	form, err := h.formService.UpdateForm(r.Context(), formID, input, session.FederationID, session.AssociationID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"formulario": form}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /forms/{formID}
func (h *FormHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	session, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	formID, err := urlParamInt(r, "formID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.formService.DeleteForm(r.Context(), formID, session.FederationID, session.AssociationID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "formulario removido"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FieldCatalogHandler handles GET /forms/field-catalog. The catalog is
// static: the grouped field definitions the form builder offers.
func (h *FormHandler) FieldCatalogHandler(w http.ResponseWriter, r *http.Request) {
	groups, byGroup := models.FieldGroups()

	payload := make([]jsonResponse, 0, len(groups))
	for _, group := range groups {
		payload = append(payload, jsonResponse{
			"grupo":  group,
			"campos": byGroup[group],
		})
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"catalogo": payload}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
