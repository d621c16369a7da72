package api

import (
	"context"
	"net/http"
	"time"

	"gamblelog/config"
	"gamblelog/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Pinger reports whether the database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the domain services the API exposes
type Services struct {
	Users       service.UserService
	Records     service.RecordService
	Budgets     service.BudgetService
	Stats       service.StatsService
	Dashboard   service.DashboardService
	Loans       service.LoanService
	Tournaments service.TournamentService
}

type server struct {
	Services
	db           Pinger
	loginLimiter *ipRateLimiter
	now          func() time.Time
}

// NewRouter builds the HTTP handler for the JSON API
func NewRouter(services Services, db Pinger, cfg *config.Config) http.Handler {
	return newServer(services, db, cfg).routes()
}

func newServer(services Services, db Pinger, cfg *config.Config) *server {
	return &server{
		Services:     services,
		db:           db,
		loginLimiter: newIPRateLimiter(cfg.LoginRateLimit, time.Minute),
		now:          time.Now,
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.db.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "db not ready")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			r.With(s.loginLimiter.middleware).Post("/login", s.login)
			r.With(s.requireAuth).Post("/logout", s.logout)
		})

		// Stateless calculator, no account needed
		r.Route("/simulator", func(r chi.Router) {
			r.Get("/systems", s.listSystems)
			r.Post("/run", s.runSimulation)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/me", s.getMe)
			r.Get("/me/balance-history", s.getBalanceHistory)
			r.Get("/users", s.listUsers)

			r.Route("/records", func(r chi.Router) {
				r.Get("/", s.listRecords)
				r.Post("/", s.createRecord)
				r.Get("/{id}", s.getRecord)
				r.Put("/{id}", s.updateRecord)
				r.Delete("/{id}", s.deleteRecord)
			})

			r.Route("/budgets", func(r chi.Router) {
				r.Get("/", s.listBudgets)
				r.Put("/", s.upsertBudget)
				r.Get("/status", s.getBudgetStatuses)
				r.Delete("/{id}", s.deleteBudget)
			})

			r.Get("/stats", s.getStats)
			r.Get("/stats/leaderboard", s.getLeaderboard)
			r.Get("/dashboard", s.getDashboard)

			r.Route("/loans", func(r chi.Router) {
				r.Get("/", s.listLoans)
				r.Post("/", s.requestLoan)
				r.Get("/{id}", s.getLoan)
				r.Post("/{id}/respond", s.respondToLoan)
				r.Post("/{id}/repayments", s.repayLoan)
			})

			r.Route("/tournaments", func(r chi.Router) {
				r.Get("/", s.listTournaments)
				r.Post("/", s.createTournament)
				r.Get("/{id}", s.getTournament)
				r.Post("/{id}/join", s.joinTournament)
				r.Post("/{id}/finish", s.finishTournament)
				r.Post("/{id}/cancel", s.cancelTournament)
			})
		})
	})

	return r
}
