package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fedsports/registration-system/models"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Session is the authenticated request context decoded from the JWT.
type Session struct {
	UserID        int
	Roles         []models.UserRole
	PanelMode     models.PanelMode
	FederationID  *int
	AssociationID *int
	AcademyID     *int
}

func (s *Session) HasAnyRole(roles ...models.UserRole) bool {
	for _, want := range roles {
		for _, have := range s.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Authenticator validates the Bearer token and stores the decoded session in
// the request context.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(jwtSecret string) *Authenticator {
	return &Authenticator{secret: []byte(jwtSecret)}
}

func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		session, err := sessionFromClaims(claims)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFromClaims(claims jwt.MapClaims) (*Session, error) {
	userID, err := intClaim(claims, "user_id")
	if err != nil {
		return nil, err
	}
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user_id claim: %d", userID)
	}

	session := &Session{
		UserID:    userID,
		PanelMode: models.PanelMode(stringClaim(claims, "panel_mode")),
	}

	if rawRoles, ok := claims["perfis"].([]interface{}); ok {
		for _, r := range rawRoles {
			if s, ok := r.(string); ok {
				session.Roles = append(session.Roles, models.UserRole(s))
			}
		}
	}

	for claim, target := range map[string]**int{
		"id_federacao":  &session.FederationID,
		"id_associacao": &session.AssociationID,
		"id_academia":   &session.AcademyID,
	} {
		if _, ok := claims[claim]; !ok {
			continue
		}
		id, err := intClaim(claims, claim)
		if err != nil {
			return nil, err
		}
		*target = &id
	}
	return session, nil
}

func intClaim(claims jwt.MapClaims, name string) (int, error) {
	value, ok := claims[name]
	if !ok {
		return 0, fmt.Errorf("missing %q claim", name)
	}
	f, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("invalid type for %q claim: %T", name, value)
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("%q claim is not an integer: %f", name, f)
	}
	return int(f), nil
}

func stringClaim(claims jwt.MapClaims, name string) string {
	s, _ := claims[name].(string)
	return s
}
