package models

import "time"

type ScholarshipStatus string

const (
	ScholarshipActive  ScholarshipStatus = "ACTIVA"
	ScholarshipRevoked ScholarshipStatus = "REVOCADA"
)

// Scholarship exempts a player from enrollment fees. At most one ACTIVA
// scholarship exists per player at any time.
type Scholarship struct {
	ID        string            `json:"-"`
	PlayerID  string            `json:"jugadorId"`
	Club      ClubSnapshot      `json:"club"`
	GrantedBy string            `json:"otorgadaPor"`
	GrantedAt time.Time         `json:"fechaOtorgamiento"`
	ExpiresAt time.Time         `json:"fechaVencimiento"`
	RevokedAt *time.Time        `json:"fechaRevocacion"`
	Status    ScholarshipStatus `json:"status"`
}

// ScholarshipExpiry computes the deterministic expiry for a grant date: the
// last day of February of the following year when granted on or after March,
// otherwise the last day of February of the same year. February ends the
// federation's membership year, so the boundary is not the calendar year.
func ScholarshipExpiry(grantedAt time.Time) time.Time {
	year := grantedAt.Year()
	if grantedAt.Month() >= time.March {
		year++
	}
	// March 1st minus one second lands on Feb 28/29 23:59:59.
	return time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC).Add(-time.Second)
}
