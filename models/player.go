package models

import "time"

// IneligibilityEnrollmentPending marks a player waiting for the yearly
// enrollment campaign (or with a revoked scholarship) as unable to play.
const IneligibilityEnrollmentPending = "EMPADRONAMIENTO_PENDIENTE"

// LegalAge is the threshold under which a player profile requires a tutor.
const LegalAge = 18

type Tutor struct {
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	DNI       string `json:"dni"`
	Phone     string `json:"telefono"`
}

// Player is the profile document keyed 1:1 with a user id.
// EligibleToPlay and IneligibilityReason are mutually exclusive: an eligible
// player carries no reason code.
type Player struct {
	ID                  string           `json:"-"`
	UserID              string           `json:"userId"`
	CoachID             string           `json:"coachId,omitempty"`
	FirstName           string           `json:"nombre"`
	LastName            string           `json:"apellido"`
	Email               string           `json:"email"`
	Gender              string           `json:"sexo,omitempty"`
	BirthDate           string           `json:"fechaNacimiento,omitempty"`
	DNI                 string           `json:"dni,omitempty"`
	Phone               string           `json:"telefono,omitempty"`
	Address             string           `json:"domicilio,omitempty"`
	School              string           `json:"escuela,omitempty"`
	Height              float64          `json:"estatura,omitempty"`
	Weight              float64          `json:"peso,omitempty"`
	Tutor               *Tutor           `json:"tutor,omitempty"`
	Scholarship         bool             `json:"becado"`
	EligibleToPlay      bool             `json:"habilitadoParaJugar"`
	IneligibilityReason string           `json:"motivoInhabilitacion,omitempty"`
	Status              Status           `json:"status"`
	Clubs               []ClubMembership `json:"clubs"`
	ClubIDs             []string         `json:"clubIds"`
	CreatedAt           time.Time        `json:"createdAt,omitempty"`
	UpdatedAt           time.Time        `json:"updatedAt,omitempty"`
}

// Age computes full years at the given instant from the ISO birth date.
func (p *Player) Age(at time.Time) (int, bool) {
	if p.BirthDate == "" {
		return 0, false
	}
	birth, err := time.Parse("2006-01-02", p.BirthDate)
	if err != nil {
		return 0, false
	}
	years := at.Year() - birth.Year()
	if at.YearDay() < birth.YearDay() {
		years--
	}
	if years < 0 {
		return 0, false
	}
	return years, true
}

// PrimaryClub returns the first membership entry, which by convention is the
// club the player was registered through.
func (p *Player) PrimaryClub() (ClubMembership, bool) {
	if len(p.Clubs) == 0 {
		return ClubMembership{}, false
	}
	return p.Clubs[0], true
}
