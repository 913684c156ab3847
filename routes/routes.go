package routes

import (
	"net/http"

	"github.com/courtside/pickleball-league/handlers"
	"github.com/courtside/pickleball-league/middleware"
	"github.com/courtside/pickleball-league/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers собирает все HTTP-обработчики, нужные маршрутизатору.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Player     *handlers.PlayerHandler
	Tournament *handlers.TournamentHandler
	Match      *handlers.MatchHandler
	Display    *handlers.DisplayHandler
	Media      *handlers.MediaHandler
	Sponsor    *handlers.SponsorHandler
	Scoreboard *handlers.ScoreboardHandler
	WebSocket  *handlers.WebSocketHandler
}

// SetupRoutes настраивает все маршруты приложения. Три уровня доступа:
// публичный (экраны табло и форма регистрации), операторский (ход матча)
// и админский (контент и настройка показа).
func SetupRoutes(router *chi.Mux, h Handlers, jwtSecret string) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Post("/auth/login", h.Auth.Login)

	// Публичная форма регистрации игрока.
	router.Post("/players", h.Player.Register)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.List)
		r.Get("/{tournamentID}", h.Tournament.GetByID)
		r.Get("/{tournamentID}/matches", h.Match.ListByTournamentDate)

		// Состояние табло: снимок на первую отрисовку и сигнал
		// плеера о доигранном ролике.
		r.Get("/{tournamentID}/scoreboard/{date}", h.Scoreboard.Snapshot)
		r.Post("/{tournamentID}/scoreboard/{date}/media-ended", h.Scoreboard.MediaEnded)
	})

	// Экраны табло, живые обновления.
	router.Get("/ws/scoreboard/{tournamentID}/{date}", h.WebSocket.ServeWs)

	// Операторский пульт: ход матча.
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.Authorize(models.RoleOperator, models.RoleAdmin))

		r.Get("/matches/{matchID}", h.Match.GetByID)
		r.Patch("/matches/{matchID}/score", h.Match.UpdateScore)
		r.Patch("/matches/{matchID}/status", h.Match.UpdateStatus)
		r.Post("/matches/{matchID}/timeout", h.Match.StartTimeout)
		r.Delete("/matches/{matchID}/timeout", h.Match.CancelTimeout)
		r.Patch("/matches/{matchID}/drs", h.Match.SetDRS)
	})

	// Админский пульт: контент и настройка показа.
	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.Authorize(models.RoleAdmin))

		r.Post("/users", h.Auth.CreateUser)

		r.Get("/players", h.Player.List)
		r.Get("/players/{playerID}", h.Player.GetByID)
		r.Delete("/players/{playerID}", h.Player.Delete)

		r.Post("/tournaments", h.Tournament.Create)
		r.Put("/tournaments/{tournamentID}", h.Tournament.Update)
		r.Post("/tournaments/{tournamentID}/logo", h.Tournament.UploadLogo)
		r.Delete("/tournaments/{tournamentID}", h.Tournament.Delete)

		r.Post("/tournaments/{tournamentID}/matches", h.Match.Create)

		r.Put("/tournaments/{tournamentID}/display/{date}", h.Display.SetSelection)
		r.Get("/tournaments/{tournamentID}/display/{date}", h.Display.GetSelection)
		r.Delete("/tournaments/{tournamentID}/display/{date}", h.Display.ClearSelection)

		r.Post("/tournaments/{tournamentID}/media", h.Media.AddByURL)
		r.Post("/tournaments/{tournamentID}/media/upload", h.Media.Upload)
		r.Get("/tournaments/{tournamentID}/media", h.Media.List)
		r.Patch("/media/{mediaID}/rank", h.Media.UpdateRank)
		r.Delete("/media/{mediaID}", h.Media.Delete)

		r.Post("/sponsors", h.Sponsor.Create)
		r.Get("/sponsors", h.Sponsor.List)
		r.Post("/sponsors/{sponsorID}/logo", h.Sponsor.UploadLogo)
		r.Delete("/sponsors/{sponsorID}", h.Sponsor.Delete)
	})
}
