package routes

import (
	"github.com/changycj/tourneytrack/handlers"
	"github.com/changycj/tourneytrack/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes wires the HTTP surface. Reads are public; anything that
// mutates state sits behind JWT authentication, with ownership checks
// (tournament admin, team captain) enforced in the services.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	teamHandler *handlers.TeamHandler,
	bracketHandler *handlers.BracketHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/api", func(r chi.Router) {
		r.Post("/users", authHandler.Register)
		r.Post("/users/login", authHandler.Login)

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentHandler.List)
			r.Get("/{id}", tournamentHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Post("/", tournamentHandler.Create)
				r.Put("/{id}/start", tournamentHandler.Start)
				r.Put("/{id}/winner", tournamentHandler.SetWinner)
			})
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", teamHandler.List)
			r.Get("/{id}", teamHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Post("/", teamHandler.Create)
				r.Put("/{id}/logo", teamHandler.UploadLogo)
			})
		})

		r.Route("/brackets", func(r chi.Router) {
			r.Get("/", bracketHandler.List)
			r.Get("/{id}", bracketHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Post("/", bracketHandler.Create)
				r.Put("/{id}/winner", bracketHandler.DetermineWinner)
				r.Delete("/{id}", bracketHandler.Delete)
			})
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", matchHandler.List)
			r.Get("/{id}", matchHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Put("/{id}/outcome", matchHandler.SetOutcome)
			})
		})
	})

	router.Get("/ws/tournaments/{id}", webSocketHandler.ServeWs)
}
