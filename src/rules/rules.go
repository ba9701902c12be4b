package rules

import (
	"regexp"
	"sort"
	"sync"

	"hearthshare-server/src/models"

	"github.com/shopspring/decimal"
)

// patternCache memoizes compiled merchant patterns. Rules are validated
// at create/update time so compilation here should never fail; a pattern
// that somehow slipped through validation simply never matches.
var patternCache sync.Map // pattern string -> *regexp.Regexp

func compilePattern(pattern string) *regexp.Regexp {
	if cached, ok := patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	patternCache.Store(pattern, re)
	return re
}

// FindMatchingRule returns the highest-priority active rule matching the
// transaction, or nil if none match. Non-default rules are evaluated in
// ascending priority order (1 first); default rules are held back and
// only consulted after every other rule has failed to match, so a
// default acts as a catch-all no matter what priority it was given.
func FindMatchingRule(txn models.Transaction, ruleSet []models.SplittingRule) *models.SplittingRule {
	var candidates, defaults []*models.SplittingRule
	for i := range ruleSet {
		r := &ruleSet[i]
		if !r.IsActive {
			continue
		}
		if r.RuleType == models.RuleTypeDefault {
			defaults = append(defaults, r)
		} else {
			candidates = append(candidates, r)
		}
	}
	byPriority := func(rs []*models.SplittingRule) {
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].Priority < rs[j].Priority })
	}
	byPriority(candidates)
	byPriority(defaults)

	for _, r := range candidates {
		if ruleMatches(txn, r) {
			return r
		}
	}
	if len(defaults) > 0 {
		return defaults[0]
	}
	return nil
}

func ruleMatches(txn models.Transaction, r *models.SplittingRule) bool {
	switch r.RuleType {
	case models.RuleTypeMerchant:
		if r.MerchantPattern == nil || txn.MerchantName == nil {
			return false
		}
		re := compilePattern(*r.MerchantPattern)
		return re != nil && re.MatchString(*txn.MerchantName)
	case models.RuleTypeCategory:
		return r.CategoryMatch != nil && *r.CategoryMatch == txn.Category
	case models.RuleTypeAmountThreshold:
		return amountInRange(txn.Amount.Abs(), r.MinAmount, r.MaxAmount)
	case models.RuleTypeDefault:
		return true
	}
	return false
}

// Bounds are inclusive; a nil bound is unbounded on that side.
func amountInRange(amount decimal.Decimal, min, max *decimal.Decimal) bool {
	if min == nil && max == nil {
		return false
	}
	if min != nil && amount.LessThan(*min) {
		return false
	}
	if max != nil && amount.GreaterThan(*max) {
		return false
	}
	return true
}
