package api

import (
	"net/http"

	"hearthshare-server/src/config"
	"hearthshare-server/src/events"
	"hearthshare-server/src/handlers"
	"hearthshare-server/src/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(pool *pgxpool.Pool, bus *events.Bus, cfg config.Config) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.RequestLoggingMiddleware)
	r.Use(middleware.DemoModeMiddleware(cfg.DemoMode))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handlers.Login(pool))
		r.Post("/register", handlers.Register(pool))
		r.Post("/internal/run-rules", handlers.RunAllSplittingRules(pool, bus, cfg.CronSecret))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware).Group(func(r chi.Router) {
			// User
			r.Get("/user", handlers.GetMe(pool))
			r.Put("/user", handlers.UpdateUser(pool))
			r.Post("/user/change-password", handlers.ChangePassword(pool))
			r.Delete("/user", handlers.DeleteUser(pool))

			// Households
			r.Post("/households", handlers.CreateHousehold(pool))
			r.Get("/households", handlers.GetHouseholds(pool))
			r.Get("/invites", handlers.GetMyInvites(pool))

			// Household-scoped routes
			r.Route("/households/{household_id}", func(r chi.Router) {
				// Joining needs an invite, not membership.
				r.Post("/join", handlers.JoinHousehold(pool))

				r.Group(func(r chi.Router) {
					r.Use(middleware.HouseholdMemberMiddleware(pool))

					r.Get("/members", handlers.GetHouseholdMembers(pool))
					r.With(middleware.RequireOwner).Post("/invites", handlers.InviteMember(pool))
					r.With(middleware.RequireOwner).Delete("/members/{user_id}", handlers.RemoveMember(pool))

					// Accounts
					r.Post("/accounts", handlers.CreateAccount(pool))
					r.Get("/accounts", handlers.GetAccounts(pool))
					r.Get("/accounts/{account_id}", handlers.GetAccountByID(pool))
					r.Put("/accounts/{account_id}", handlers.UpdateAccount(pool))
					r.Delete("/accounts/{account_id}", handlers.DeleteAccount(pool))

					// Transactions
					r.Post("/transactions", handlers.CreateTransaction(pool))
					r.Get("/accounts/{account_id}/transactions", handlers.GetTransactions(pool))
					r.Get("/transactions/{transaction_id}", handlers.GetTransaction(pool))
					r.Put("/transactions/{transaction_id}", handlers.UpdateTransaction(pool))
					r.Delete("/transactions/{transaction_id}", handlers.DeleteTransaction(pool))

					// Splitting Rules
					r.Post("/splitting-rules", handlers.CreateSplittingRule(pool))
					r.Post("/splitting-rules/trigger", handlers.TriggerSplittingRules(pool, bus))
					r.Get("/splitting-rules", handlers.GetAllSplittingRules(pool))
					r.Get("/splitting-rules/{rule_id}", handlers.GetSplittingRuleByID(pool))
					r.Put("/splitting-rules/{rule_id}", handlers.UpdateSplittingRule(pool))
					r.Delete("/splitting-rules/{rule_id}", handlers.DeleteSplittingRule(pool))

					// Realtime
					r.Get("/events", handlers.StreamHouseholdEvents(bus))
				})
			})
		})
	})

	return r
}
