package models

import "time"

type TransferStatus string

const (
	// TransferPending awaits the federation admin's decision.
	TransferPending TransferStatus = "PENDIENTE"
	// TransferPendingPlayer awaits the player's own consent.
	TransferPendingPlayer TransferStatus = "PENDIENTE_JUGADOR"
	TransferRejectedAdmin  TransferStatus = "RECHAZADA_ADMIN"
	TransferRejectedPlayer TransferStatus = "RECHAZADA_JUGADOR"
	TransferConfirmed      TransferStatus = "CONFIRMADA"
)

// Terminal reports whether the request can no longer change state.
func (s TransferStatus) Terminal() bool {
	switch s {
	case TransferRejectedAdmin, TransferRejectedPlayer, TransferConfirmed:
		return true
	}
	return false
}

// OpenTransferStatuses are the non-terminal states; at most one request per
// player may sit in any of them.
var OpenTransferStatuses = []string{string(TransferPending), string(TransferPendingPlayer)}

// TransferRequest proposes moving a player between clubs. Consent is
// sequential: the destination club initiates, the federation admin arbitrates,
// the player confirms. Only a CONFIRMADA request mutates player data.
type TransferRequest struct {
	ID              string         `json:"-"`
	PlayerID        string         `json:"jugadorId"`
	PlayerName      string         `json:"jugadorNombre"`
	Origin          ClubSnapshot   `json:"clubOrigen"`
	Destination     ClubSnapshot   `json:"clubDestino"`
	Categories      []string       `json:"categorias"`
	Status          TransferStatus `json:"status"`
	CreatedAt       time.Time      `json:"createdAt,omitempty"`
	AdminDecidedAt  *time.Time     `json:"adminDecidedAt,omitempty"`
	PlayerDecidedAt *time.Time     `json:"playerDecidedAt,omitempty"`
}
