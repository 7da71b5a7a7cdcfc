package models

// Tenant hierarchy records. These tables belong to the directory subsystem and
// are read-only here.

type Federation struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"nome" db:"nome"`
}

type Association struct {
	ID           int    `json:"id" db:"id"`
	FederationID int    `json:"id_federacao" db:"id_federacao"`
	Name         string `json:"nome" db:"nome"`
}

type Academy struct {
	ID            int    `json:"id" db:"id"`
	AssociationID int    `json:"id_associacao" db:"id_associacao"`
	Name          string `json:"nome" db:"nome"`
}
