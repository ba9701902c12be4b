package rules

import (
	"testing"

	"hearthshare-server/src/models"

	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func evenSplit() map[int64]decimal.Decimal {
	return map[int64]decimal.Decimal{
		1: decimal.NewFromInt(50),
		2: decimal.NewFromInt(50),
	}
}

func merchantRule(id int64, pattern string, priority int) models.SplittingRule {
	return models.SplittingRule{
		ID:              id,
		RuleType:        models.RuleTypeMerchant,
		Priority:        priority,
		MerchantPattern: strPtr(pattern),
		SplitPercentage: evenSplit(),
		IsActive:        true,
	}
}

func categoryRule(id int64, category string, priority int) models.SplittingRule {
	return models.SplittingRule{
		ID:              id,
		RuleType:        models.RuleTypeCategory,
		Priority:        priority,
		CategoryMatch:   strPtr(category),
		SplitPercentage: evenSplit(),
		IsActive:        true,
	}
}

func amountRule(id int64, min, max string, priority int) models.SplittingRule {
	r := models.SplittingRule{
		ID:              id,
		RuleType:        models.RuleTypeAmountThreshold,
		Priority:        priority,
		SplitPercentage: evenSplit(),
		IsActive:        true,
	}
	if min != "" {
		r.MinAmount = decPtr(min)
	}
	if max != "" {
		r.MaxAmount = decPtr(max)
	}
	return r
}

func defaultRule(id int64, priority int) models.SplittingRule {
	return models.SplittingRule{
		ID:              id,
		RuleType:        models.RuleTypeDefault,
		Priority:        priority,
		SplitPercentage: evenSplit(),
		IsActive:        true,
	}
}

func groceryTxn() models.Transaction {
	return models.Transaction{
		MerchantName: strPtr("Tesco"),
		Amount:       decimal.RequireFromString("-45.20"),
		Category:     "groceries",
	}
}

func TestFindMatchingRule(t *testing.T) {
	tests := []struct {
		name       string
		txn        models.Transaction
		rules      []models.SplittingRule
		wantRuleID int64 // 0 means no match
	}{
		{
			name:       "merchant beats category at higher priority",
			txn:        groceryTxn(),
			rules:      []models.SplittingRule{merchantRule(1, "^Tesco$", 1), categoryRule(2, "groceries", 2)},
			wantRuleID: 1,
		},
		{
			name:       "category rule alone matches",
			txn:        groceryTxn(),
			rules:      []models.SplittingRule{categoryRule(1, "groceries", 1)},
			wantRuleID: 1,
		},
		{
			name:       "category equality is case-sensitive",
			txn:        groceryTxn(),
			rules:      []models.SplittingRule{categoryRule(1, "Groceries", 1)},
			wantRuleID: 0,
		},
		{
			name:       "lower priority number wins when both match",
			txn:        groceryTxn(),
			rules:      []models.SplittingRule{categoryRule(1, "groceries", 5), merchantRule(2, "Tesco", 3)},
			wantRuleID: 2,
		},
		{
			name:       "inactive rules are skipped",
			txn:        groceryTxn(),
			rules:      []models.SplittingRule{{ID: 1, RuleType: models.RuleTypeCategory, Priority: 1, CategoryMatch: strPtr("groceries"), SplitPercentage: evenSplit(), IsActive: false}},
			wantRuleID: 0,
		},
		{
			name:       "amount threshold uses absolute value inclusive",
			txn:        models.Transaction{Amount: decimal.RequireFromString("-5000")},
			rules:      []models.SplittingRule{amountRule(1, "1000", "", 1)},
			wantRuleID: 1,
		},
		{
			name:       "amount below min does not match",
			txn:        models.Transaction{Amount: decimal.RequireFromString("-5000")},
			rules:      []models.SplittingRule{amountRule(1, "6000", "", 1)},
			wantRuleID: 0,
		},
		{
			name:       "amount below min falls through to default",
			txn:        models.Transaction{Amount: decimal.RequireFromString("-5000")},
			rules:      []models.SplittingRule{amountRule(1, "6000", "", 1), defaultRule(2, 2)},
			wantRuleID: 2,
		},
		{
			name:       "amount equal to bound matches",
			txn:        models.Transaction{Amount: decimal.RequireFromString("-100.00")},
			rules:      []models.SplittingRule{amountRule(1, "100", "100", 1)},
			wantRuleID: 1,
		},
		{
			name:       "default rule alone always matches",
			txn:        models.Transaction{Amount: decimal.NewFromInt(-3)},
			rules:      []models.SplittingRule{defaultRule(1, 1)},
			wantRuleID: 1,
		},
		{
			name: "default is catch-all even with best numeric priority",
			txn:  groceryTxn(),
			rules: []models.SplittingRule{
				defaultRule(1, 1),
				categoryRule(2, "groceries", 9),
			},
			wantRuleID: 2,
		},
		{
			name:       "merchant rule skipped when merchant name absent",
			txn:        models.Transaction{Amount: decimal.NewFromInt(-10), Category: "groceries"},
			rules:      []models.SplittingRule{merchantRule(1, ".*", 1)},
			wantRuleID: 0,
		},
		{
			name:       "merchant pattern is a regular expression",
			txn:        models.Transaction{MerchantName: strPtr("TESCO STORES 1234"), Amount: decimal.NewFromInt(-10)},
			rules:      []models.SplittingRule{merchantRule(1, "(?i)tesco", 1)},
			wantRuleID: 1,
		},
		{
			name:       "no rules no match",
			txn:        groceryTxn(),
			rules:      nil,
			wantRuleID: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindMatchingRule(tt.txn, tt.rules)
			if tt.wantRuleID == 0 {
				if got != nil {
					t.Errorf("FindMatchingRule() = rule %d, want nil", got.ID)
				}
				return
			}
			if got == nil {
				t.Fatalf("FindMatchingRule() = nil, want rule %d", tt.wantRuleID)
			}
			if got.ID != tt.wantRuleID {
				t.Errorf("FindMatchingRule() = rule %d, want rule %d", got.ID, tt.wantRuleID)
			}
		})
	}
}

func TestFindMatchingRuleReturnsActiveOnly(t *testing.T) {
	txn := groceryTxn()
	ruleSet := []models.SplittingRule{
		{ID: 1, RuleType: models.RuleTypeMerchant, Priority: 1, MerchantPattern: strPtr("Tesco"), SplitPercentage: evenSplit(), IsActive: false},
		merchantRule(2, "Tesco", 2),
		{ID: 3, RuleType: models.RuleTypeDefault, Priority: 3, SplitPercentage: evenSplit(), IsActive: false},
	}
	got := FindMatchingRule(txn, ruleSet)
	if got == nil || !got.IsActive {
		t.Fatalf("FindMatchingRule() must only return active rules, got %+v", got)
	}
	if got.ID != 2 {
		t.Errorf("FindMatchingRule() = rule %d, want rule 2", got.ID)
	}
}
