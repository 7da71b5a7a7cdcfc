package handlers

import (
	"net/http"

	"github.com/fedsports/registration-system/repositories"
	"github.com/fedsports/registration-system/services"
)

type RegistrationHandler struct {
	registrationService *services.RegistrationService
	userRepo            repositories.UserRepository
}

func NewRegistrationHandler(registrationService *services.RegistrationService, userRepo repositories.UserRepository) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService, userRepo: userRepo}
}

// SubmitFormHandler handles POST /events-competitions/{eventID}/register
func (h *RegistrationHandler) SubmitFormHandler(w http.ResponseWriter, r *http.Request) {
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

	var input services.SubmitFormInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.EventID = eventID

	created, err := h.registrationService.SubmitForm(r.Context(), user, session.PanelMode, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"inscricoes_criadas": created}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListRegisteredHandler handles GET /events-competitions/{eventID}/registered
func (h *RegistrationHandler) ListRegisteredHandler(w http.ResponseWriter, r *http.Request) {
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
	academyID, err := queryInt(r, "academia_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	registrations, err := h.registrationService.ListForAcademy(r.Context(), user, session.PanelMode, eventID, academyID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"inscricoes": registrations}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EditHandler handles PUT /registrations/{registrationID}
func (h *RegistrationHandler) EditHandler(w http.ResponseWriter, r *http.Request) {
	user, session, err := sessionUser(r.Context(), h.userRepo)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	registrationID, err := urlParamInt(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		FormData map[string]string `json:"dados_form"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.registrationService.EditRegistration(r.Context(), user, session.PanelMode, registrationID, input.FormData); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "inscricao atualizada"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CancelHandler handles DELETE /registrations/{registrationID}
func (h *RegistrationHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	user, session, err := sessionUser(r.Context(), h.userRepo)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	registrationID, err := urlParamInt(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.registrationService.CancelRegistration(r.Context(), user, session.PanelMode, registrationID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "inscricao cancelada"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitBatchHandler handles POST /events-competitions/{eventID}/submit-registrations
func (h *RegistrationHandler) SubmitBatchHandler(w http.ResponseWriter, r *http.Request) {
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

	submitted, err := h.registrationService.SubmitBatch(r.Context(), user, session.PanelMode, eventID, input.AcademyID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"inscricoes_enviadas": submitted}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CancelSubmissionHandler handles POST /events-competitions/{eventID}/cancel-submission
func (h *RegistrationHandler) CancelSubmissionHandler(w http.ResponseWriter, r *http.Request) {
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
		AcademyID int `json:"academia_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reverted, err := h.registrationService.CancelSubmission(r.Context(), user, eventID, input.AcademyID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"inscricoes_revertidas": reverted}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// WipeHandler handles DELETE /events-competitions/{eventID}/registrations
func (h *RegistrationHandler) WipeHandler(w http.ResponseWriter, r *http.Request) {
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
	academyID, err := queryInt(r, "academia_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	removed, err := h.registrationService.WipeAcademyRegistrations(r.Context(), user, session.PanelMode, eventID, academyID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"inscricoes_removidas": removed}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// WalkInHandler handles POST /events-competitions/{eventID}/walk-in
func (h *RegistrationHandler) WalkInHandler(w http.ResponseWriter, r *http.Request) {
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
		AthleteID int `json:"aluno_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	registration, err := h.registrationService.IncludeWalkIn(r.Context(), user, session.PanelMode, eventID, input.AcademyID, input.AthleteID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"inscricao": registration}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
