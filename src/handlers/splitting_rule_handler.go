package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	db "hearthshare-server/src/db/sql"
	"hearthshare-server/src/events"
	"hearthshare-server/src/models"
	"hearthshare-server/src/rules"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type splittingRuleRequest struct {
	RuleName        string                    `json:"rule_name"`
	RuleType        string                    `json:"rule_type"`
	Priority        int                       `json:"priority"`
	MerchantPattern *string                   `json:"merchant_pattern"`
	CategoryMatch   *string                   `json:"category_match"`
	MinAmount       *decimal.Decimal          `json:"min_amount"`
	MaxAmount       *decimal.Decimal          `json:"max_amount"`
	SplitPercentage map[int64]decimal.Decimal `json:"split_percentage"`
	IsActive        *bool                     `json:"is_active"`
}

func (req *splittingRuleRequest) toModel(householdID int64) models.SplittingRule {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return models.SplittingRule{
		HouseholdID:     householdID,
		RuleName:        req.RuleName,
		RuleType:        req.RuleType,
		Priority:        req.Priority,
		MerchantPattern: req.MerchantPattern,
		CategoryMatch:   req.CategoryMatch,
		MinAmount:       req.MinAmount,
		MaxAmount:       req.MaxAmount,
		SplitPercentage: req.SplitPercentage,
		IsActive:        active,
	}
}

// validateRuleMembers rejects split percentages naming users outside the
// household.
func validateRuleMembers(r *http.Request, pool *pgxpool.Pool, rule models.SplittingRule) error {
	members, err := db.GetHouseholdMembers(r.Context(), pool, rule.HouseholdID)
	if err != nil {
		return err
	}
	memberIDs := make(map[int64]bool, len(members))
	for _, m := range members {
		memberIDs[m.UserID] = true
	}
	for userID := range rule.SplitPercentage {
		if !memberIDs[userID] {
			return &rules.RuleConfigurationError{
				Field:  "split_percentage",
				Reason: "user " + strconv.FormatInt(userID, 10) + " is not a household member",
			}
		}
	}
	return nil
}

func CreateSplittingRule(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := r.Context().Value("household_id").(int64)

		var req splittingRuleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Error("failed to decode create splitting rule request body", "household_id", householdID, "error", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		rule := req.toModel(householdID)
		if err := rules.ValidateRule(rule); err != nil {
			slog.Warn("splitting rule validation failed", "household_id", householdID, "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := validateRuleMembers(r, pool, rule); err != nil {
			var cfgErr *rules.RuleConfigurationError
			if errors.As(err, &cfgErr) {
				http.Error(w, cfgErr.Error(), http.StatusBadRequest)
				return
			}
			slog.Error("failed to check rule members", "household_id", householdID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		created, err := db.CreateSplittingRule(r.Context(), pool, &rule)
		if err != nil {
			slog.Error("failed to create splitting rule", "household_id", householdID, "error", err)
			http.Error(w, "failed to create splitting rule", http.StatusInternalServerError)
			return
		}

		slog.Info("splitting rule created", "rule_id", created.ID, "household_id", householdID, "rule_name", created.RuleName)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func GetSplittingRuleByID(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := r.Context().Value("household_id").(int64)

		ruleIDStr := chi.URLParam(r, "rule_id")
		ruleID, err := strconv.ParseInt(ruleIDStr, 10, 64)
		if err != nil {
			slog.Error("invalid rule id param", "rule_id", ruleIDStr)
			http.Error(w, "invalid rule id", http.StatusBadRequest)
			return
		}

		rule, err := db.GetSplittingRuleByID(r.Context(), pool, householdID, ruleID)
		if err != nil {
			slog.Warn("splitting rule not found", "rule_id", ruleID, "household_id", householdID, "error", err)
			http.Error(w, "splitting rule not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rule)
	}
}

func GetAllSplittingRules(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := r.Context().Value("household_id").(int64)

		ruleSet, err := db.GetAllSplittingRules(r.Context(), pool, householdID)
		if err != nil {
			slog.Error("failed to get splitting rules", "household_id", householdID, "error", err)
			http.Error(w, "failed to get splitting rules", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ruleSet)
	}
}

func UpdateSplittingRule(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := r.Context().Value("household_id").(int64)

		ruleIDStr := chi.URLParam(r, "rule_id")
		ruleID, err := strconv.ParseInt(ruleIDStr, 10, 64)
		if err != nil {
			slog.Error("invalid rule id param", "rule_id", ruleIDStr)
			http.Error(w, "invalid rule id", http.StatusBadRequest)
			return
		}

		var req splittingRuleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Error("failed to decode update splitting rule request body", "rule_id", ruleID, "error", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		rule := req.toModel(householdID)
		rule.ID = ruleID
		if err := rules.ValidateRule(rule); err != nil {
			slog.Warn("splitting rule validation failed", "rule_id", ruleID, "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := validateRuleMembers(r, pool, rule); err != nil {
			var cfgErr *rules.RuleConfigurationError
			if errors.As(err, &cfgErr) {
				http.Error(w, cfgErr.Error(), http.StatusBadRequest)
				return
			}
			slog.Error("failed to check rule members", "household_id", householdID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		updated, err := db.UpdateSplittingRule(r.Context(), pool, &rule)
		if err != nil {
			slog.Error("failed to update splitting rule", "rule_id", ruleID, "household_id", householdID, "error", err)
			http.Error(w, "failed to update splitting rule", http.StatusInternalServerError)
			return
		}

		slog.Info("splitting rule updated", "rule_id", updated.ID, "household_id", householdID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

func DeleteSplittingRule(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := r.Context().Value("household_id").(int64)

		ruleIDStr := chi.URLParam(r, "rule_id")
		ruleID, err := strconv.ParseInt(ruleIDStr, 10, 64)
		if err != nil {
			slog.Error("invalid rule id param", "rule_id", ruleIDStr)
			http.Error(w, "invalid rule id", http.StatusBadRequest)
			return
		}

		if err := db.DeleteSplittingRule(r.Context(), pool, householdID, ruleID); err != nil {
			slog.Error("failed to delete splitting rule", "rule_id", ruleID, "household_id", householdID, "error", err)
			http.Error(w, "failed to delete splitting rule", http.StatusInternalServerError)
			return
		}

		slog.Info("splitting rule deleted", "rule_id", ruleID, "household_id", householdID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "splitting rule deleted"})
	}
}

// TriggerSplittingRules re-runs the rule engine over the household on
// demand, typically after editing rules.
func TriggerSplittingRules(pool *pgxpool.Pool, bus *events.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := r.Context().Value("household_id").(int64)

		result, err := db.ApplySplittingRulesToHousehold(r.Context(), pool, bus, householdID)
		if err != nil {
			slog.Error("failed to apply splitting rules", "household_id", householdID, "error", err)
			http.Error(w, "failed to apply splitting rules", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}
