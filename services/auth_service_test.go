package services

import (
	"testing"

	"github.com/fedsports/registration-system/models"
)

func TestResolvePanelMode(t *testing.T) {
	withRoles := func(roles ...models.UserRole) *models.User {
		return &models.User{ID: 1, Roles: roles}
	}

	tests := []struct {
		name      string
		user      *models.User
		requested models.PanelMode
		want      models.PanelMode
	}{
		{"admin gets requested panel", withRoles(models.RoleAdmin), models.PanelAcademy, models.PanelAcademy},
		{"admin defaults to federation", withRoles(models.RoleAdmin), "", models.PanelFederation},
		{"federation manager defaults to federation", withRoles(models.RoleFederationManager), "", models.PanelFederation},
		{"association manager defaults to association", withRoles(models.RoleAssociationManager), "", models.PanelAssociation},
		{"association manager may use academy panel", withRoles(models.RoleAssociationManager), models.PanelAcademy, models.PanelAcademy},
		{"association manager denied federation panel", withRoles(models.RoleAssociationManager), models.PanelFederation, models.PanelAssociation},
		{"professor only gets academy", withRoles(models.RoleProfessor), models.PanelFederation, models.PanelAcademy},
		{"athlete defaults to academy", withRoles(models.RoleAthlete), "", models.PanelAcademy},
		{"no roles yields nothing", withRoles(), models.PanelAcademy, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolvePanelMode(tt.user, tt.requested); got != tt.want {
				t.Errorf("resolvePanelMode = %q, want %q", got, tt.want)
			}
		})
	}
}
