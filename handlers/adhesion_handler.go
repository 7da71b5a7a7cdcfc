package handlers

import (
	"net/http"

	"github.com/fedsports/registration-system/repositories"
	"github.com/fedsports/registration-system/services"
)

type AdhesionHandler struct {
	adhesionService *services.AdhesionService
	userRepo        repositories.UserRepository
}

func NewAdhesionHandler(adhesionService *services.AdhesionService, userRepo repositories.UserRepository) *AdhesionHandler {
	return &AdhesionHandler{adhesionService: adhesionService, userRepo: userRepo}
}

// AdhereHandler handles POST /events-competitions/adhere/{eventID}
func (h *AdhesionHandler) AdhereHandler(w http.ResponseWriter, r *http.Request) {
	h.setAdhesion(w, r, true, "adesao registrada")
}

// UnadhereHandler handles POST /events-competitions/unadhere/{eventID}
func (h *AdhesionHandler) UnadhereHandler(w http.ResponseWriter, r *http.Request) {
	h.setAdhesion(w, r, false, "adesao removida")
}

func (h *AdhesionHandler) setAdhesion(w http.ResponseWriter, r *http.Request, adhered bool, message string) {
	user, session, err := sessionUser(r.Context(), h.userRepo)
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
		AcademyID int `json:"academia_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.adhesionService.SetAdhesion(r.Context(), user, session.PanelMode, eventID, input.AcademyID, adhered); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": message}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByEventHandler handles GET /events-competitions/{eventID}/adhesions
func (h *AdhesionHandler) ListByEventHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	adhesions, err := h.adhesionService.ListByEvent(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"adesoes": adhesions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler handles GET /events-competitions/{eventID}/adhesion
func (h *AdhesionHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	academyID, err := queryInt(r, "academia_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	adhesion, err := h.adhesionService.GetAdhesion(r.Context(), eventID, academyID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"adesao": adhesion}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
