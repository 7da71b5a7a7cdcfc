package handlers

import (
	"net/http"

	"github.com/fedsports/registration-system/repositories"
	"github.com/fedsports/registration-system/services"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	userRepo       repositories.UserRepository
}

func NewPaymentHandler(paymentService *services.PaymentService, userRepo repositories.UserRepository) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, userRepo: userRepo}
}

// ListHandler handles GET /events-competitions/{eventID}/payments
func (h *PaymentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
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

	payments, err := h.paymentService.ListByEvent(r.Context(), user, eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"pagamentos": payments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordHandler handles PUT /events-competitions/{eventID}/payments
func (h *PaymentHandler) RecordHandler(w http.ResponseWriter, r *http.Request) {
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
		AcademyID int     `json:"academia_id"`
		PaidTotal float64 `json:"valor_pago"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	payment, err := h.paymentService.RecordPayment(r.Context(), user, eventID, input.AcademyID, input.PaidTotal)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"pagamento": payment}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
