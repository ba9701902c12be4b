package rules

import (
	"regexp"
	"strings"

	"hearthshare-server/src/models"
)

// ConfidenceLevel buckets a numeric confidence score for UI badges.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceNone   ConfidenceLevel = "none"
)

// CalculateConfidenceScore scores how certain we are that the matched
// rule correctly categorized the transaction. More specific criteria
// score higher: merchant patterns beat category equality, which beats
// amount thresholds, which beat the catch-all default.
//
//	merchant:         90, +5 if anchored ^...$, +5 if anchored literal equality
//	category:         80
//	amount_threshold: 60 with both bounds, 50 with one
//	default:          25
func CalculateConfidenceScore(txn models.Transaction, rule models.SplittingRule) int {
	switch rule.RuleType {
	case models.RuleTypeMerchant:
		score := 90
		if rule.MerchantPattern == nil {
			return score
		}
		pattern := *rule.MerchantPattern
		if !strings.HasPrefix(pattern, "^") || !strings.HasSuffix(pattern, "$") {
			return score
		}
		score += 5
		inner := pattern[1 : len(pattern)-1]
		if regexp.QuoteMeta(inner) == inner && txn.MerchantName != nil && inner == *txn.MerchantName {
			score += 5
		}
		return score
	case models.RuleTypeCategory:
		return 80
	case models.RuleTypeAmountThreshold:
		if rule.MinAmount != nil && rule.MaxAmount != nil {
			return 60
		}
		return 50
	case models.RuleTypeDefault:
		return 25
	}
	return 0
}

// ConfidenceLevelFor buckets a stored score: high >= 80, medium >= 50,
// low >= 1, none when absent or zero.
func ConfidenceLevelFor(score *int) ConfidenceLevel {
	switch {
	case score == nil || *score <= 0:
		return ConfidenceNone
	case *score >= 80:
		return ConfidenceHigh
	case *score >= 50:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
