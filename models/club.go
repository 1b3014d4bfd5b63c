package models

import "time"

// Club is the tenant record. Profile fields are filled in at
// profile-completion time by the invited club admin.
type Club struct {
	ID                string    `json:"-"`
	Name              string    `json:"nombre"`
	City              string    `json:"ciudad"`
	Email             string    `json:"email"`
	Status            Status    `json:"status"`
	Manager           string    `json:"responsable,omitempty"`
	Venue             string    `json:"sede,omitempty"`
	Phone             string    `json:"telefono,omitempty"`
	Courts            []string  `json:"canchas,omitempty"`
	AlternativeCourts []string  `json:"canchasAlternativas,omitempty"`
	FederationEnabled bool      `json:"habilitadoAsambal"`
	HeroURL           string    `json:"heroUrl,omitempty"`
	HeroUpdatedAt     *time.Time `json:"heroUpdatedAt,omitempty"`
	CreatedBy         string    `json:"createdBy,omitempty"`
	CreatedAt         time.Time `json:"createdAt,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt,omitempty"`
}

// ClubSnapshot is the club identity captured inside scholarship and transfer
// documents at the moment they are created.
type ClubSnapshot struct {
	ClubID     string   `json:"clubId"`
	Name       string   `json:"nombreClub"`
	Categories []string `json:"categorias,omitempty"`
}
