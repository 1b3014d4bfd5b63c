package models

import "fmt"

// Status is the lifecycle state shared by users, clubs, coaches, players and
// each club membership entry. Wire values stay in Spanish for compatibility
// with the existing collections.
type Status string

const (
	StatusIncomplete Status = "INCOMPLETO"
	StatusPending    Status = "PENDIENTE"
	StatusActive     Status = "ACTIVO"
	StatusInactive   Status = "INACTIVO"
	StatusRejected   Status = "RECHAZADO"
)

// Togglable reports whether the ACTIVO/INACTIVO switch applies. Entities that
// are still INCOMPLETO, PENDIENTE or RECHAZADO cannot be toggled.
func (s Status) Togglable() bool {
	return s == StatusActive || s == StatusInactive
}

// Toggled returns the opposite side of the ACTIVO/INACTIVO switch.
func (s Status) Toggled() (Status, error) {
	switch s {
	case StatusActive:
		return StatusInactive, nil
	case StatusInactive:
		return StatusActive, nil
	default:
		return "", fmt.Errorf("status %s cannot be toggled", s)
	}
}

// DecisionStatus maps an APPROVE/REJECT action to the resulting status.
func DecisionStatus(approve bool) Status {
	if approve {
		return StatusActive
	}
	return StatusRejected
}
