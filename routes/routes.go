package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Dosada05/scoreboard/handlers"
	"github.com/Dosada05/scoreboard/middleware"
)

const requestTimeout = 30 * time.Second

// Dependencies are the handlers and collaborators wired into the router.
type Dependencies struct {
	Games          *handlers.GameHandler
	History        *handlers.HistoryHandler
	Auth           *handlers.AuthHandler
	WebSocket      *handlers.WebSocketHandler
	TokenValidator middleware.TokenValidator
	Metrics        http.Handler
	AllowedOrigins []string
}

func SetupRoutes(router chi.Router, deps Dependencies) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if deps.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	// websocket connections are long-lived, keep them outside the timeout
	router.Get("/ws/games/{gameID}", deps.WebSocket.ServeWs)

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(requestTimeout))

		r.Get("/history", deps.History.ListHistory)
		r.Get("/history/overview", deps.History.Overview)
		r.Get("/leaderboard", deps.History.Leaderboard)

		r.Route("/games", func(r chi.Router) {
			r.Post("/", deps.Games.CreateGame)

			r.Route("/{gameID}", func(r chi.Router) {
				r.Get("/", deps.Games.GetGame)
				r.Get("/rounds", deps.Games.GetRounds)
				r.Get("/standings", deps.Games.GetStandings)
				r.Post("/token", deps.Auth.ExchangePIN)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireGameHost(deps.TokenValidator))

					r.Delete("/", deps.Games.DeleteGame)
					r.Post("/matches/{matchID}/result", deps.Games.SubmitResult)
					r.Post("/players/{playerID}/score", deps.Games.AdjustScore)
					r.Put("/players/{playerID}/score", deps.Games.SetScore)
					r.Post("/reset", deps.Games.ResetScores)
					r.Put("/round", deps.Games.SetRound)
					r.Post("/schedule", deps.Games.RegenerateSchedule)
					r.Post("/finish", deps.Games.FinishGame)
				})
			})
		})
	})
}
