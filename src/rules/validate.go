package rules

import (
	"fmt"
	"regexp"

	"hearthshare-server/src/models"

	"github.com/shopspring/decimal"
)

// RuleConfigurationError reports an invalid splitting rule at
// create/update time so the matcher never sees a rule it cannot
// evaluate.
type RuleConfigurationError struct {
	Field  string
	Reason string
}

func (e *RuleConfigurationError) Error() string {
	return fmt.Sprintf("invalid splitting rule: %s: %s", e.Field, e.Reason)
}

var hundred = decimal.NewFromInt(100)

// ValidateRule checks that exactly the criteria field implied by
// rule_type is populated, that merchant patterns compile, and that the
// split percentages are non-empty and sum to 100.
func ValidateRule(r models.SplittingRule) error {
	switch r.RuleType {
	case models.RuleTypeMerchant, models.RuleTypeCategory, models.RuleTypeAmountThreshold, models.RuleTypeDefault:
	default:
		return &RuleConfigurationError{Field: "rule_type", Reason: fmt.Sprintf("unknown rule type %q", r.RuleType)}
	}

	if r.Priority < 1 {
		return &RuleConfigurationError{Field: "priority", Reason: "must be at least 1"}
	}

	hasMerchant := r.MerchantPattern != nil
	hasCategory := r.CategoryMatch != nil
	hasAmount := r.MinAmount != nil || r.MaxAmount != nil

	switch r.RuleType {
	case models.RuleTypeMerchant:
		if !hasMerchant {
			return &RuleConfigurationError{Field: "merchant_pattern", Reason: "required for merchant rules"}
		}
		if hasCategory || hasAmount {
			return &RuleConfigurationError{Field: "rule_type", Reason: "merchant rules must not set category or amount criteria"}
		}
		if _, err := regexp.Compile(*r.MerchantPattern); err != nil {
			return &RuleConfigurationError{Field: "merchant_pattern", Reason: fmt.Sprintf("invalid pattern: %v", err)}
		}
	case models.RuleTypeCategory:
		if !hasCategory {
			return &RuleConfigurationError{Field: "category_match", Reason: "required for category rules"}
		}
		if hasMerchant || hasAmount {
			return &RuleConfigurationError{Field: "rule_type", Reason: "category rules must not set merchant or amount criteria"}
		}
	case models.RuleTypeAmountThreshold:
		if !hasAmount {
			return &RuleConfigurationError{Field: "min_amount", Reason: "amount_threshold rules need min_amount or max_amount"}
		}
		if hasMerchant || hasCategory {
			return &RuleConfigurationError{Field: "rule_type", Reason: "amount_threshold rules must not set merchant or category criteria"}
		}
		if r.MinAmount != nil && r.MinAmount.IsNegative() {
			return &RuleConfigurationError{Field: "min_amount", Reason: "must not be negative"}
		}
		if r.MaxAmount != nil && r.MaxAmount.IsNegative() {
			// Matching compares against abs(amount), so a negative bound
			// could never match anything.
			return &RuleConfigurationError{Field: "max_amount", Reason: "must not be negative"}
		}
		if r.MinAmount != nil && r.MaxAmount != nil && r.MaxAmount.LessThan(*r.MinAmount) {
			return &RuleConfigurationError{Field: "max_amount", Reason: "must not be less than min_amount"}
		}
	case models.RuleTypeDefault:
		if hasMerchant || hasCategory || hasAmount {
			return &RuleConfigurationError{Field: "rule_type", Reason: "default rules take no matching criteria"}
		}
	}

	if len(r.SplitPercentage) == 0 {
		return &RuleConfigurationError{Field: "split_percentage", Reason: "at least one member share is required"}
	}
	total := decimal.Zero
	for userID, pct := range r.SplitPercentage {
		if pct.IsNegative() {
			return &RuleConfigurationError{Field: "split_percentage", Reason: fmt.Sprintf("share for user %d is negative", userID)}
		}
		total = total.Add(pct)
	}
	if !total.Equal(hundred) {
		return &RuleConfigurationError{Field: "split_percentage", Reason: fmt.Sprintf("shares sum to %s, expected 100", total)}
	}

	return nil
}
