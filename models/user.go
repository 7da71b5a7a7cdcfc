package models

import "time"

// UserRole matches the perfil values stored in usuarios_perfis.
type UserRole string

const (
	RoleAdmin              UserRole = "admin"
	RoleFederationManager  UserRole = "gestor_federacao"
	RoleAssociationManager UserRole = "gestor_associacao"
	RoleAcademyManager     UserRole = "gestor_academia"
	RoleProfessor          UserRole = "professor"
	RoleAthlete            UserRole = "aluno"
	RoleGuardian           UserRole = "responsavel"
)

// PanelMode is the session-scoped panel a user is operating in. It is carried
// as a JWT claim and checked independently of roles.
type PanelMode string

const (
	PanelFederation  PanelMode = "federacao"
	PanelAssociation PanelMode = "associacao"
	PanelAcademy     PanelMode = "academia"
)

type User struct {
	ID            int        `json:"id" db:"id"`
	Name          string     `json:"nome" db:"nome"`
	Email         string     `json:"email" db:"email"`
	PasswordHash  string     `json:"-" db:"senha_hash"`
	FederationID  *int       `json:"id_federacao,omitempty" db:"id_federacao"`
	AssociationID *int       `json:"id_associacao,omitempty" db:"id_associacao"`
	AcademyID     *int       `json:"id_academia,omitempty" db:"id_academia"`
	Roles         []UserRole `json:"perfis" db:"-"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

func (u *User) HasRole(role UserRole) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) HasAnyRole(roles ...UserRole) bool {
	for _, r := range roles {
		if u.HasRole(r) {
			return true
		}
	}
	return false
}
