package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/matchpoint-app/matchpoint/handlers"
	"github.com/matchpoint-app/matchpoint/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	bracketHandler *handlers.BracketHandler,
	matchHandler *handlers.MatchHandler,
	teamHandler *handlers.TeamHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)

	router.Route("/events/{eventID}", func(r chi.Router) {
		r.Get("/bracket", bracketHandler.GetEventBracketHandler)
		r.Get("/bracket/validation", bracketHandler.ValidateEventBracketHandler)
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/", matchHandler.GetMatchHandler)
		r.Get("/candidates", bracketHandler.ListNextMatchCandidatesHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/scoring", matchHandler.GetScoringStateHandler)
			r.Post("/score", matchHandler.UpdateScoreHandler)
			r.Post("/confirm-set", matchHandler.ConfirmSetHandler)
			r.Post("/referee-checkin", matchHandler.ConfirmRefereeCheckInHandler)
			r.Patch("/links", bracketHandler.UpdateMatchLinksHandler)
		})
	})

	router.Route("/teams/{teamID}", func(r chi.Router) {
		r.Get("/", teamHandler.GetTeamHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Put("/logo", teamHandler.UploadLogoHandler)
		})
	})

	router.Get("/ws/events/{eventID}", webSocketHandler.ServeWs)
}
