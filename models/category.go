package models

// Category is a playing category (age bracket per gender).
type Category struct {
	ID     string `json:"-"`
	Name   string `json:"nombre"`
	Gender string `json:"genero"`
}

// DashboardStats summarizes the federation for the admin landing page.
type DashboardStats struct {
	ClubsTotal       int `json:"clubs_total"`
	ClubsActive      int `json:"clubs_active"`
	PlayersTotal     int `json:"players_total"`
	PlayersEligible  int `json:"players_eligible"`
	CoachesTotal     int `json:"coaches_total"`
	PendingUsers     int `json:"pending_users"`
	OpenTransfers    int `json:"open_transfers"`
	ScholarshipsLive int `json:"scholarships_active"`
}
