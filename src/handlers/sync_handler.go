package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	db "hearthshare-server/src/db/sql"
	"hearthshare-server/src/events"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunAllSplittingRules is the cron-triggered endpoint: it walks every
// household sequentially and applies its splitting rules. Authenticated
// by a shared secret header rather than a user JWT since the caller is
// a scheduler, not a person.
func RunAllSplittingRules(pool *pgxpool.Pool, bus *events.Bus, cronSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cronSecret == "" {
			slog.Error("rule run rejected, CRON_SECRET not configured")
			http.Error(w, "not configured", http.StatusServiceUnavailable)
			return
		}
		provided := r.Header.Get("X-Cron-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(cronSecret)) != 1 {
			slog.Warn("rule run rejected, bad cron secret", "remote_addr", r.RemoteAddr)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		householdIDs, err := db.GetAllHouseholdIDs(r.Context(), pool)
		if err != nil {
			slog.Error("failed to list households for rule run", "error", err)
			http.Error(w, "failed to list households", http.StatusInternalServerError)
			return
		}

		var results []*db.RuleRunResult
		for _, householdID := range householdIDs {
			result, err := db.ApplySplittingRulesToHousehold(r.Context(), pool, bus, householdID)
			if err != nil {
				// One bad household should not starve the rest of the
				// run.
				slog.Error("rule run failed for household", "household_id", householdID, "error", err)
				continue
			}
			results = append(results, result)
		}

		slog.Info("scheduled rule run complete", "households", len(householdIDs), "succeeded", len(results))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"households": len(householdIDs),
			"results":    results,
		})
	}
}
