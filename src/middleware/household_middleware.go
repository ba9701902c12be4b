package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	db "hearthshare-server/src/db/sql"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HouseholdMemberMiddleware guards {household_id}-scoped routes: the
// authenticated user must be a member, and the household id and their
// role are loaded into the request context.
func HouseholdMemberMiddleware(pool *pgxpool.Pool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Context().Value("user_id").(int64)

			householdIDStr := chi.URLParam(r, "household_id")
			householdID, err := strconv.ParseInt(householdIDStr, 10, 64)
			if err != nil {
				slog.Error("invalid household id param", "household_id", householdIDStr)
				http.Error(w, "invalid household id", http.StatusBadRequest)
				return
			}

			role, err := db.GetMemberRole(r.Context(), pool, householdID, userID)
			if err != nil {
				slog.Error("failed to check household membership", "household_id", householdID, "user_id", userID, "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if role == "" {
				slog.Warn("non-member attempted household access", "household_id", householdID, "user_id", userID)
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), "household_id", householdID)
			ctx = context.WithValue(ctx, "household_role", role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOwner allows only household owners through; must run after
// HouseholdMemberMiddleware.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value("household_role").(string)
		if !ok || role != "owner" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
