package db

import (
	"context"
	"fmt"
	"log/slog"

	"hearthshare-server/src/db"
	"hearthshare-server/src/events"
	"hearthshare-server/src/metrics"
	"hearthshare-server/src/models"
	"hearthshare-server/src/rules"
	"hearthshare-server/src/split"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const ruleColumns = `id, household_id, rule_name, rule_type, priority, merchant_pattern, category_match, min_amount, max_amount, split_percentage, is_active, created_at, updated_at`

func scanSplittingRule(row rowScanner) (*models.SplittingRule, error) {
	var r models.SplittingRule
	err := row.Scan(
		&r.ID,
		&r.HouseholdID,
		&r.RuleName,
		&r.RuleType,
		&r.Priority,
		&r.MerchantPattern,
		&r.CategoryMatch,
		&r.MinAmount,
		&r.MaxAmount,
		&r.SplitPercentage,
		&r.IsActive,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func CreateSplittingRule(ctx context.Context, pool *pgxpool.Pool, rule *models.SplittingRule) (*models.SplittingRule, error) {
	query := `
		INSERT INTO splitting_rules (household_id, rule_name, rule_type, priority, merchant_pattern, category_match, min_amount, max_amount, split_percentage, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + ruleColumns
	created, err := scanSplittingRule(pool.QueryRow(ctx, query,
		rule.HouseholdID, rule.RuleName, rule.RuleType, rule.Priority,
		rule.MerchantPattern, rule.CategoryMatch, rule.MinAmount, rule.MaxAmount,
		rule.SplitPercentage, rule.IsActive))
	if err != nil {
		return nil, err
	}
	db.ClearAllRuleCaches()
	return created, nil
}

func GetSplittingRuleByID(ctx context.Context, pool *pgxpool.Pool, householdID, ruleID int64) (*models.SplittingRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM splitting_rules
		WHERE id = $1 AND household_id = $2
	`
	return scanSplittingRule(pool.QueryRow(ctx, query, ruleID, householdID))
}

func GetAllSplittingRules(ctx context.Context, pool *pgxpool.Pool, householdID int64) ([]models.SplittingRule, error) {
	cacheKey := fmt.Sprintf("rules:%d", householdID)
	if cached, ok := db.Cache.Get(cacheKey); ok {
		if rs, ok := cached.([]models.SplittingRule); ok {
			return rs, nil
		}
	}

	query := `
		SELECT ` + ruleColumns + `
		FROM splitting_rules
		WHERE household_id = $1
		ORDER BY priority, id
	`
	rows, err := pool.Query(ctx, query, householdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ruleSet []models.SplittingRule
	for rows.Next() {
		r, err := scanSplittingRule(rows)
		if err != nil {
			return nil, err
		}
		ruleSet = append(ruleSet, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	db.SetRuleCache(cacheKey, ruleSet)
	return ruleSet, nil
}

func GetActiveSplittingRules(ctx context.Context, pool *pgxpool.Pool, householdID int64) ([]models.SplittingRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM splitting_rules
		WHERE household_id = $1 AND is_active = TRUE
		ORDER BY priority, id
	`
	rows, err := pool.Query(ctx, query, householdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ruleSet []models.SplittingRule
	for rows.Next() {
		r, err := scanSplittingRule(rows)
		if err != nil {
			return nil, err
		}
		ruleSet = append(ruleSet, *r)
	}
	return ruleSet, rows.Err()
}

func UpdateSplittingRule(ctx context.Context, pool *pgxpool.Pool, rule *models.SplittingRule) (*models.SplittingRule, error) {
	query := `
		UPDATE splitting_rules
		SET rule_name = $1, rule_type = $2, priority = $3, merchant_pattern = $4,
		    category_match = $5, min_amount = $6, max_amount = $7,
		    split_percentage = $8, is_active = $9, updated_at = NOW()
		WHERE id = $10 AND household_id = $11
		RETURNING ` + ruleColumns
	updated, err := scanSplittingRule(pool.QueryRow(ctx, query,
		rule.RuleName, rule.RuleType, rule.Priority, rule.MerchantPattern,
		rule.CategoryMatch, rule.MinAmount, rule.MaxAmount,
		rule.SplitPercentage, rule.IsActive, rule.ID, rule.HouseholdID))
	if err != nil {
		return nil, err
	}
	db.ClearAllRuleCaches()
	return updated, nil
}

func DeleteSplittingRule(ctx context.Context, pool *pgxpool.Pool, householdID, ruleID int64) error {
	query := `DELETE FROM splitting_rules WHERE id = $1 AND household_id = $2`
	cmd, err := pool.Exec(ctx, query, ruleID, householdID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("splitting rule not found")
	}
	db.ClearAllRuleCaches()
	return nil
}

// RuleRunResult summarizes one rule application pass over a household.
type RuleRunResult struct {
	HouseholdID int64 `json:"household_id"`
	Examined    int   `json:"examined"`
	Updated     int   `json:"updated"`
	Cleared     int   `json:"cleared"`
}

// ApplySplittingRulesToHousehold re-evaluates every non-manually-edited
// transaction in the household against the active rule set. Matching
// transactions get is_shared_expense, split_details, and a confidence
// score; transactions the rules no longer cover are reset. Only changed
// rows are written back.
func ApplySplittingRulesToHousehold(ctx context.Context, pool *pgxpool.Pool, bus *events.Bus, householdID int64) (*RuleRunResult, error) {
	result := &RuleRunResult{HouseholdID: householdID}

	ruleSet, err := GetActiveSplittingRules(ctx, pool, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch splitting rules: %w", err)
	}

	txns, err := GetTransactionsForHousehold(ctx, pool, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	metrics.RuleRuns.Inc()

	for _, txn := range txns {
		if txn.ManualOverride {
			continue
		}
		result.Examined++

		matched := rules.FindMatchingRule(txn, ruleSet)
		if matched == nil {
			// Reset rows a previous run auto-shared but no rule covers
			// anymore.
			if !txn.IsSharedExpense && txn.ConfidenceScore == nil {
				continue
			}
			_, err := pool.Exec(ctx, `
				UPDATE transactions
				SET is_shared_expense = FALSE, confidence_score = NULL, split_details = NULL, updated_at = NOW()
				WHERE id = $1
			`, txn.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to reset transaction %s: %w", txn.ID, err)
			}
			result.Cleared++
			continue
		}

		score := rules.CalculateConfidenceScore(txn, *matched)
		shares, err := split.ComputeSplits(txn.Amount, matched.SplitPercentage)
		if err != nil {
			return nil, fmt.Errorf("failed to compute splits for rule %d: %w", matched.ID, err)
		}

		if txn.IsSharedExpense && txn.ConfidenceScore != nil && *txn.ConfidenceScore == score && splitsEqual(txn.SplitDetails, shares) {
			continue
		}

		splitDetails, err := marshalSplitDetails(shares)
		if err != nil {
			return nil, err
		}
		_, err = pool.Exec(ctx, `
			UPDATE transactions
			SET is_shared_expense = TRUE, confidence_score = $1, split_details = $2, updated_at = NOW()
			WHERE id = $3
		`, score, splitDetails, txn.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to update transaction %s: %w", txn.ID, err)
		}
		metrics.RulesApplied.WithLabelValues(matched.RuleType).Inc()
		result.Updated++
	}

	if result.Updated > 0 || result.Cleared > 0 {
		slog.Info("splitting rules applied",
			"household_id", householdID,
			"examined", result.Examined,
			"updated", result.Updated,
			"cleared", result.Cleared,
		)
		db.ClearAllTransactionCaches()
		if bus != nil {
			bus.Publish(events.TransactionsTopic(householdID), result)
		}
	}

	return result, nil
}

func splitsEqual(a, b map[int64]decimal.Decimal) bool {
	if len(a) != len(b) {
		return false
	}
	for userID, amount := range a {
		other, ok := b[userID]
		if !ok || !amount.Equal(other) {
			return false
		}
	}
	return true
}
