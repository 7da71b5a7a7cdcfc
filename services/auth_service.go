package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/fedsports/registration-system/models"
	"github.com/fedsports/registration-system/repositories"
)

type LoginInput struct {
	Email     string `json:"email"`
	Password  string `json:"senha"`
	PanelMode string `json:"painel"`
}

type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// Login checks the credentials and issues a token carrying the roles, the
// tenant ids and the panel mode chosen for the session.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, "", ErrAuthInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, "", ErrAuthInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to compare password hash: %w", err)
	}

	mode := resolvePanelMode(user, models.PanelMode(input.PanelMode))
	if mode == "" {
		return nil, "", ErrWrongPanelMode
	}

	token, err := s.issueToken(user, mode)
	if err != nil {
		return nil, "", err
	}

	user.PasswordHash = ""
	return user, token, nil
}

// Me reloads the authenticated user's profile.
func (s *AuthService) Me(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *AuthService) issueToken(user *models.User, mode models.PanelMode) (string, error) {
	now := time.Now()
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, string(r))
	}

	claims := jwt.MapClaims{
		"user_id":    user.ID,
		"perfis":     roles,
		"panel_mode": string(mode),
		"exp":        now.Add(s.tokenTTL).Unix(),
		"iat":        now.Unix(),
	}
	if user.FederationID != nil {
		claims["id_federacao"] = *user.FederationID
	}
	if user.AssociationID != nil {
		claims["id_associacao"] = *user.AssociationID
	}
	if user.AcademyID != nil {
		claims["id_academia"] = *user.AcademyID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// resolvePanelMode validates the requested panel against the user's roles
// and falls back to the widest panel the roles allow.
func resolvePanelMode(user *models.User, requested models.PanelMode) models.PanelMode {
	allowed := map[models.PanelMode]bool{}
	if user.HasAnyRole(models.RoleAdmin, models.RoleFederationManager) {
		allowed[models.PanelFederation] = true
		allowed[models.PanelAssociation] = true
		allowed[models.PanelAcademy] = true
	}
	if user.HasRole(models.RoleAssociationManager) {
		allowed[models.PanelAssociation] = true
		allowed[models.PanelAcademy] = true
	}
	if user.HasAnyRole(models.RoleAcademyManager, models.RoleProfessor, models.RoleAthlete, models.RoleGuardian) {
		allowed[models.PanelAcademy] = true
	}

	if requested != "" && allowed[requested] {
		return requested
	}
	for _, mode := range []models.PanelMode{models.PanelFederation, models.PanelAssociation, models.PanelAcademy} {
		if allowed[mode] {
			return mode
		}
	}
	return ""
}
