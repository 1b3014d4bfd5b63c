package models

import "time"

// User is the identity record behind every actor. Credentials live with the
// auth provider; the activation token is non-null only while the account is
// INCOMPLETO and is consumed exactly once when the profile is completed.
type User struct {
	ID              string           `json:"-"`
	Email           string           `json:"email"`
	Roles           []Role           `json:"roles"`
	Status          Status           `json:"status"`
	ActivationToken *string          `json:"activationToken"`
	Clubs           []ClubMembership `json:"clubs"`
	ClubIDs         []string         `json:"clubIds"`
	CreatedBy       string           `json:"createdBy,omitempty"`
	CreatedAt       time.Time        `json:"createdAt,omitempty"`
	UpdatedAt       time.Time        `json:"updatedAt,omitempty"`
}

// ActiveMemberships returns the entries usable for authorization claims.
func (u *User) ActiveMemberships() []ClubMembership {
	var out []ClubMembership
	for _, m := range u.Clubs {
		if m.Status == StatusActive {
			out = append(out, m)
		}
	}
	return out
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
