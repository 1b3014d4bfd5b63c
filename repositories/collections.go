package repositories

// Collection names as they exist in the production datastore.
const (
	CollectionUsers               = "usuarios"
	CollectionClubs               = "clubes"
	CollectionCoaches             = "profesores"
	CollectionPlayers             = "jugadores"
	CollectionScholarships        = "becas"
	CollectionCoachRequests       = "coachRequests"
	CollectionTransfers           = "transferRequests"
	CollectionEnrollmentCampaigns = "empadronamientos"
	CollectionMembershipCampaigns = "membresias"
	CollectionInsuranceCampaigns  = "seguros"
	CollectionEnrollmentTickets   = "tickets"
	CollectionMembershipTickets   = "ticketsMembresias"
	CollectionInsuranceTickets    = "seguroProfesores"
	CollectionCategories          = "categorias"
	CollectionCredentials         = "credenciales"
)
