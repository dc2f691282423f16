package routes

import (
	"net/http"

	"github.com/Dosada05/betting-pool/docs"
	"github.com/Dosada05/betting-pool/handlers"
	"github.com/Dosada05/betting-pool/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

const APIPrefix = "/api/v1"

// Handlers собирает все HTTP-обработчики API.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Bets       *handlers.BetHandler
	ScoreBets  *handlers.ScoreBetHandler
	BinaryBets *handlers.BinaryBetHandler
	Structure  *handlers.StructureHandler
	Rules      *handlers.RuleHandler
	Results    *handlers.ResultHandler
	Health     *handlers.HealthHandler
}

func SetupRoutes(router chi.Router, auth middleware.TokenResolver, h Handlers, allowedOrigins []string) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docs.OpenAPI)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Get("/api/health", h.Health.Check)
	router.Get("/api/health/", h.Health.Check)

	authenticate := middleware.Authenticate(auth)

	router.Route(APIPrefix, func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/signup", h.Auth.Signup)
			r.Post("/login", h.Auth.Login)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/current", h.Auth.CurrentUser)
				r.With(middleware.RequireAdmin).Patch("/{id}", h.Auth.ChangePassword)
			})
		})

		// Публичные справочники
		r.Get("/phases", h.Structure.ListPhases)
		r.Get("/phases/{phaseCode}", h.Structure.GetPhase)
		r.Route("/groups", func(r chi.Router) {
			r.Get("/", h.Structure.ListGroups)
			r.Get("/phases/{phaseCode}", h.Structure.ListGroupsByPhase)
			r.Get("/{groupCode}", h.Structure.GetGroup)
		})
		r.Get("/teams", h.Structure.ListTeams)
		r.Get("/teams/{teamID}", h.Structure.GetTeam)
		r.Get("/score_board", h.Results.ScoreBoard)

		// Маршруты, требующие аутентификации
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/matches", func(r chi.Router) {
				r.Get("/", h.Structure.ListMatches)
				r.Get("/phases/{phaseCode}", h.Structure.ListMatches)
				r.Get("/groups/{groupCode}", h.Structure.ListMatches)
			})

			r.Route("/bets", func(r chi.Router) {
				r.Get("/", h.Bets.GetAll)
				r.Get("/phases/{phaseCode}", h.Bets.GetByPhase)
				r.Get("/groups/rank/{groupCode}", h.Bets.GetGroupRank)
				r.Get("/groups/{groupCode}", h.Bets.GetByGroup)
			})

			r.Route("/score_bets", func(r chi.Router) {
				r.Post("/", h.ScoreBets.Create)
				r.Get("/{betID}", h.ScoreBets.Get)
				r.Patch("/{betID}", h.ScoreBets.Modify)
				r.Delete("/{betID}", h.ScoreBets.Delete)
			})

			r.Route("/binary_bets", func(r chi.Router) {
				r.Post("/", h.BinaryBets.Create)
				r.Get("/{betID}", h.BinaryBets.Get)
				r.Patch("/{betID}", h.BinaryBets.Modify)
				r.Delete("/{betID}", h.BinaryBets.Delete)
			})

			r.Post("/rules/{ruleID}", h.Rules.Execute)
			r.Get("/results", h.Results.Results)
			r.With(middleware.RequireAdmin).Post("/compute_points", h.Results.ComputePoints)
		})
	})
}
