package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/fedsports/registration-system/middleware"
	"github.com/fedsports/registration-system/models"
	"github.com/fedsports/registration-system/repositories"
	"github.com/fedsports/registration-system/services"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
	athleteRepo     repositories.AthleteRepository
}

func NewCategoryHandler(categoryService *services.CategoryService, athleteRepo repositories.AthleteRepository) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, athleteRepo: athleteRepo}
}

// ListHandler handles GET /categories and returns every active category.
func (h *CategoryHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.ListActive(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"categorias": categories}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FindHandler handles GET /categories/find. Query parameters: sexo,
// data_nascimento, peso and an optional aluno_id whose master record fills
// any gap.
func (h *CategoryHandler) FindHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	gender := query.Get("sexo")
	birthDate := query.Get("data_nascimento")
	weight := 0.0
	if raw := query.Get("peso"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			badRequestResponse(w, r, errors.New("invalid peso query parameter"))
			return
		}
		weight = parsed
	}

	if rawAthleteID := query.Get("aluno_id"); rawAthleteID != "" {
		athleteID, err := strconv.Atoi(rawAthleteID)
		if err != nil || athleteID <= 0 {
			badRequestResponse(w, r, errors.New("invalid aluno_id query parameter"))
			return
		}

		session, err := middleware.SessionFromContext(r.Context())
		if err != nil {
			unauthorizedResponse(w, r, "authentication required")
			return
		}
		allowed, err := h.canUseAthleteDefaults(r.Context(), session, athleteID)
		if err != nil {
			serverErrorResponse(w, r, err)
			return
		}
		if !allowed {
			forbiddenResponse(w, r, "aluno_id is outside your scope")
			return
		}

		athlete, err := h.athleteRepo.GetByID(r.Context(), athleteID)
		if err != nil {
			if errors.Is(err, repositories.ErrAthleteNotFound) {
				notFoundResponse(w, r)
				return
			}
			serverErrorResponse(w, r, err)
			return
		}

		categories, err := h.categoryService.ResolveForAthlete(r.Context(), athlete, gender, birthDate, weight)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		if err := writeJSON(w, http.StatusOK, jsonResponse{"categorias": categories}, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}

	categories, err := h.categoryService.Resolve(r.Context(), gender, birthDate, weight)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"categorias": categories}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// canUseAthleteDefaults limits whose master record may fill the lookup gaps:
// management roles, the athlete's own user, or a linked guardian.
func (h *CategoryHandler) canUseAthleteDefaults(ctx context.Context, session *middleware.Session, athleteID int) (bool, error) {
	if session.HasAnyRole(
		models.RoleAdmin, models.RoleFederationManager, models.RoleAssociationManager,
		models.RoleAcademyManager, models.RoleProfessor,
	) {
		return true, nil
	}

	if session.HasAnyRole(models.RoleAthlete) {
		own, err := h.athleteRepo.GetByUserID(ctx, session.UserID)
		if err != nil && !errors.Is(err, repositories.ErrAthleteNotFound) {
			return false, err
		}
		if err == nil && own.ID == athleteID {
			return true, nil
		}
	}

	if session.HasAnyRole(models.RoleGuardian) {
		linked, err := h.athleteRepo.IsGuardianOf(ctx, session.UserID, athleteID)
		if err != nil {
			return false, err
		}
		if linked {
			return true, nil
		}
	}
	return false, nil
}
