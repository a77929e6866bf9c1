package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nexus-arena/backend/handlers"
	"github.com/nexus-arena/backend/middleware"
	"github.com/nexus-arena/backend/models"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Tournament  *handlers.TournamentHandler
	Match       *handlers.MatchHandler
	Referee     *handlers.RefereeHandler
	Leaderboard *handlers.LeaderboardHandler
	Player      *handlers.PlayerHandler
	WebSocket   *handlers.WebSocketHandler
}

func InitRoutes(h Handlers, auth *middleware.Authenticator) *chi.Mux {
	router := chi.NewRouter()

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

	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)

	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Get("/auth/me", h.Auth.Me)
	})

	router.Get("/leaderboard", h.Leaderboard.Get)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.List)
		r.Get("/{id}", h.Tournament.Get)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin))

			r.Post("/", h.Tournament.Create)
			r.Put("/{id}", h.Tournament.Update)
			r.Post("/{id}/banner", h.Tournament.UploadBanner)
			r.Post("/{id}/fixtures", h.Tournament.GenerateFixtures)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/", h.Match.List)
		r.Get("/{id}", h.Match.Get)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin))

			r.Post("/", h.Match.Create)
			r.Put("/{id}", h.Match.Update)
			r.Put("/{id}/room-code", h.Match.AssignRoomCode)
		})
	})

	router.Route("/referee", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.Authorize(models.RoleReferee, models.RoleAdmin))

		r.Post("/validate-code", h.Referee.ValidateCode)
		r.Post("/matches/{id}/result", h.Referee.SubmitResult)
		r.Get("/matches/pending", h.Referee.PendingMatches)
		r.Get("/matches/completed", h.Referee.CompletedMatches)
	})

	router.Route("/players", func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Get("/", h.Player.List)
		r.Get("/me", h.Player.Me)
		r.Get("/{id}", h.Player.Get)
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	return router
}
