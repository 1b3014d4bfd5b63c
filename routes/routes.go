package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/luminospark/asambal-system/auth"
	"github.com/luminospark/asambal-system/handlers"
	"github.com/luminospark/asambal-system/middleware"
	"github.com/luminospark/asambal-system/models"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Asambal *handlers.AsambalHandler
	Club    *handlers.ClubHandler
	Coach   *handlers.CoachHandler
	Player  *handlers.PlayerHandler
}

func InitRoutes(h Handlers, tokens *auth.TokenManager) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.ActiveClubHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(tokens)

	router.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", h.Auth.Login)
		r.Post("/refresh", h.Auth.Refresh)
		r.Post("/activar-cuenta", h.Auth.Activate)
	})

	// Profile completion is token-gated, not session-gated: the account
	// is still INCOMPLETO and cannot log in yet.
	router.Post("/api/clubs/complete-profile", h.Club.CompleteProfile)
	router.Get("/api/coaches/prefill", h.Coach.Prefill)
	router.Post("/api/coaches/complete-profile", h.Coach.CompleteProfile)
	router.Post("/api/players/complete-profile", h.Player.CompleteProfile)

	router.Route("/api/asambal", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.RequireRole(models.RoleAsambalAdmin))

		r.Get("/pending-users", h.Asambal.ListPendingUsers)
		r.Post("/users/{userID}/validate", h.Asambal.ValidateUser)

		r.Get("/clubs", h.Asambal.ListClubs)
		r.Post("/clubs", h.Asambal.CreateClub)
		r.Post("/clubs/{clubID}/toggle", h.Asambal.ToggleClub)

		r.Get("/players", h.Asambal.ListPlayers)
		r.Get("/players/{playerID}/scholarships", h.Asambal.ScholarshipHistory)
		r.Post("/players/{playerID}/scholarships", h.Asambal.GrantScholarship)
		r.Post("/scholarships/{scholarshipID}/revoke", h.Asambal.RevokeScholarship)
		r.Get("/scholarships/holders", h.Asambal.ListScholarshipHolders)

		r.Get("/transfers", h.Asambal.ListPendingTransfers)
		r.Post("/transfers/{transferID}/decide", h.Asambal.DecideTransfer)

		r.Get("/campaigns/{kind}", h.Asambal.ListCampaigns)
		r.Post("/campaigns/{kind}", h.Asambal.CreateCampaign)
		r.Put("/empadronamiento/pagar-masivo", h.Asambal.PayEnrollmentBulk)

		r.Get("/seguros/years", h.Asambal.ListInsuranceYears)
		r.Get("/seguros", h.Asambal.ListInsurance)
		r.Post("/seguros", h.Asambal.CreateInsurance)

		r.Get("/dashboard", h.Asambal.Dashboard)
		r.Get("/categories", h.Asambal.ListCategories)
		r.Post("/categories", h.Asambal.CreateCategory)
	})

	router.Route("/api/clubs", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.RequireRole(models.RoleClubAdmin))
		r.Use(middleware.ResolveActiveClub)

		r.Get("/profile", h.Club.GetProfile)
		r.Patch("/profile", h.Club.Update)
		r.Post("/hero", h.Club.UploadHero)
		r.Delete("/hero", h.Club.RemoveHero)

		r.Get("/coaches", h.Club.ListCoaches)
		r.Post("/coaches", h.Club.CreateCoach)
		r.Post("/coaches/merge-categories", h.Club.ConfirmCategoryMerge)
		r.Post("/coaches/join-requests", h.Club.SendCoachJoinRequest)
		r.Post("/coaches/{coachID}/validate", h.Club.ValidateCoach)
		r.Post("/coaches/{coachID}/toggle", h.Club.ToggleCoach)

		r.Get("/players", h.Club.ListPlayers)
		r.Post("/players", h.Club.CreatePlayer)
		r.Post("/players/{playerID}/validate", h.Club.ValidatePlayer)

		r.Get("/tickets", h.Club.ListTickets)
		r.Post("/tickets/{ticketID}/pay", h.Club.PayTicket)
	})

	router.Route("/api/coaches", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.RequireRole(models.RoleCoach))

		r.Get("/me", h.Coach.Me)
		r.Get("/join-requests", h.Coach.ListJoinRequests)
		r.Post("/join-requests/{requestID}/respond", h.Coach.RespondJoinRequest)
		r.Get("/players", h.Coach.ListPlayers)
		r.Get("/seguros", h.Coach.ListInsurance)
		r.Post("/seguros/{ticketID}/pay", h.Coach.PayInsurance)

		r.Group(func(r chi.Router) {
			r.Use(middleware.ResolveActiveClub)
			r.Post("/players/{playerID}/validate", h.Coach.ValidatePlayer)
		})
	})

	router.Route("/api/players", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.RequireRole(models.RolePlayer))

		r.Get("/me", h.Player.Me)
		r.Get("/transfers", h.Player.ListTransfers)
		r.Post("/transfers/{transferID}/respond", h.Player.RespondTransfer)
		r.Get("/tickets", h.Player.ListTickets)
		r.Post("/tickets/{ticketID}/pay", h.Player.PayTicket)
	})

	return router
}
