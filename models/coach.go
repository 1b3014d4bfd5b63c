package models

import "time"

// Coach is the profile document keyed 1:1 with a user id. The per-club status
// inside Clubs is independent per club; the top-level Status only tracks the
// profile lifecycle (INCOMPLETO until the invited coach completes it).
type Coach struct {
	ID        string           `json:"-"`
	UserID    string           `json:"userId"`
	FirstName string           `json:"nombre"`
	LastName  string           `json:"apellido"`
	Email     string           `json:"email"`
	Phone     string           `json:"telefono,omitempty"`
	Address   string           `json:"domicilio,omitempty"`
	ENEA      string           `json:"enea,omitempty"`
	DNI       string           `json:"dni,omitempty"`
	Status    Status           `json:"status"`
	Clubs     []ClubMembership `json:"clubs"`
	ClubIDs   []string         `json:"clubIds"`
	CreatedAt time.Time        `json:"createdAt,omitempty"`
	UpdatedAt time.Time        `json:"updatedAt,omitempty"`
}

type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "PENDIENTE"
	JoinRequestAccepted JoinRequestStatus = "ACEPTADA"
	JoinRequestRejected JoinRequestStatus = "RECHAZADA"
)

// CoachJoinRequest asks an existing coach to join another club. It requires
// the coach's own consent; membership is never added silently.
type CoachJoinRequest struct {
	ID          string            `json:"-"`
	CoachID     string            `json:"profesorId"`
	CoachEmail  string            `json:"emailProfesor"`
	ClubID      string            `json:"clubId"`
	ClubName    string            `json:"nombreClub"`
	Categories  []string          `json:"categorias"`
	Status      JoinRequestStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt,omitempty"`
	RespondedAt *time.Time        `json:"respondedAt,omitempty"`
}
