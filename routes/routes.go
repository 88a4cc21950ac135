package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"

	"github.com/Dosada05/padel-americano/handlers"
)

func SetupRoutes(
	tournamentHandler *handlers.TournamentHandler,
	shareHandler *handlers.ShareHandler,
	wsHandler *handlers.WebSocketHandler,
) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/tournaments", func(r chi.Router) {
		r.Post("/", tournamentHandler.CreateTournament)
		r.Get("/", tournamentHandler.ListTournaments)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", tournamentHandler.GetTournament)
			r.Patch("/", tournamentHandler.UpdateTournament)
			r.Delete("/", tournamentHandler.DeleteTournament)

			// Правки состава
			r.Post("/players", tournamentHandler.AddPlayers)
			r.Post("/players/rename", tournamentHandler.RenamePlayer)
			r.Delete("/players/{playerName}", tournamentHandler.RemovePlayer)
			r.Put("/mix-players", tournamentHandler.UpdateMixPlayers)
			r.Post("/lineup", tournamentHandler.AdjustLineup)
			r.Post("/extend", tournamentHandler.ExtendRounds)
			r.Post("/end", tournamentHandler.EndTournament)

			// Счета матчей
			r.Put("/matches/{matchID}/score", tournamentHandler.SetMatchScore)
			r.Delete("/matches/{matchID}/score", tournamentHandler.ResetMatchScore)

			// Статистика
			r.Get("/leaderboard", tournamentHandler.GetLeaderboard)
			r.Get("/players/{playerName}/pairings", tournamentHandler.GetPlayerPairings)
			r.Get("/players/{playerName}/rounds", tournamentHandler.GetPlayerRounds)
			r.Get("/head-to-head", tournamentHandler.GetHeadToHead)

			// Публикация сохраненного турнира
			r.Post("/share", shareHandler.ShareStoredTournament)
		})
	})

	router.Route("/share", func(r chi.Router) {
		r.Post("/", shareHandler.ShareTournament)
		r.Get("/{shareID}", shareHandler.GetSharedTournament)
	})

	router.Get("/ws/tournaments/{tournamentID}", wsHandler.ServeWs)

	return router
}
