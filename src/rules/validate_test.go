package rules

import (
	"errors"
	"testing"

	"hearthshare-server/src/models"

	"github.com/shopspring/decimal"
)

func TestValidateRule(t *testing.T) {
	tests := []struct {
		name      string
		rule      models.SplittingRule
		wantField string // empty means valid
	}{
		{
			name:      "valid merchant rule",
			rule:      merchantRule(1, "^Tesco$", 1),
			wantField: "",
		},
		{
			name:      "valid category rule",
			rule:      categoryRule(1, "groceries", 1),
			wantField: "",
		},
		{
			name:      "valid amount rule with one bound",
			rule:      amountRule(1, "", "100", 1),
			wantField: "",
		},
		{
			name:      "valid default rule",
			rule:      defaultRule(1, 1),
			wantField: "",
		},
		{
			name: "unknown rule type",
			rule: models.SplittingRule{
				RuleType: "weird", Priority: 1, SplitPercentage: evenSplit(),
			},
			wantField: "rule_type",
		},
		{
			name: "priority below one",
			rule: models.SplittingRule{
				RuleType: models.RuleTypeDefault, Priority: 0, SplitPercentage: evenSplit(),
			},
			wantField: "priority",
		},
		{
			name: "merchant rule missing pattern",
			rule: models.SplittingRule{
				RuleType: models.RuleTypeMerchant, Priority: 1, SplitPercentage: evenSplit(),
			},
			wantField: "merchant_pattern",
		},
		{
			name: "merchant rule with invalid regexp",
			rule: merchantRule(1, "Tesco(", 1),
			wantField: "merchant_pattern",
		},
		{
			name: "merchant rule with extra criteria",
			rule: func() models.SplittingRule {
				r := merchantRule(1, "Tesco", 1)
				r.CategoryMatch = strPtr("groceries")
				return r
			}(),
			wantField: "rule_type",
		},
		{
			name: "category rule missing category",
			rule: models.SplittingRule{
				RuleType: models.RuleTypeCategory, Priority: 1, SplitPercentage: evenSplit(),
			},
			wantField: "category_match",
		},
		{
			name: "amount rule missing bounds",
			rule: models.SplittingRule{
				RuleType: models.RuleTypeAmountThreshold, Priority: 1, SplitPercentage: evenSplit(),
			},
			wantField: "min_amount",
		},
		{
			name:      "amount rule with inverted bounds",
			rule:      amountRule(1, "100", "10", 1),
			wantField: "max_amount",
		},
		{
			name:      "amount rule with negative min",
			rule:      amountRule(1, "-10", "", 1),
			wantField: "min_amount",
		},
		{
			name:      "amount rule with negative max only",
			rule:      amountRule(1, "", "-5", 1),
			wantField: "max_amount",
		},
		{
			name: "default rule with stray criteria",
			rule: func() models.SplittingRule {
				r := defaultRule(1, 1)
				r.MinAmount = decPtr("10")
				return r
			}(),
			wantField: "rule_type",
		},
		{
			name: "empty split percentages",
			rule: models.SplittingRule{
				RuleType: models.RuleTypeDefault, Priority: 1,
			},
			wantField: "split_percentage",
		},
		{
			name: "split percentages not summing to 100",
			rule: models.SplittingRule{
				RuleType: models.RuleTypeDefault, Priority: 1,
				SplitPercentage: map[int64]decimal.Decimal{
					1: decimal.NewFromInt(60),
					2: decimal.NewFromInt(60),
				},
			},
			wantField: "split_percentage",
		},
		{
			name: "negative split percentage",
			rule: models.SplittingRule{
				RuleType: models.RuleTypeDefault, Priority: 1,
				SplitPercentage: map[int64]decimal.Decimal{
					1: decimal.NewFromInt(150),
					2: decimal.NewFromInt(-50),
				},
			},
			wantField: "split_percentage",
		},
		{
			name: "fractional split percentages summing to 100",
			rule: models.SplittingRule{
				RuleType: models.RuleTypeDefault, Priority: 1,
				SplitPercentage: map[int64]decimal.Decimal{
					1: decimal.RequireFromString("33.33"),
					2: decimal.RequireFromString("33.33"),
					3: decimal.RequireFromString("33.34"),
				},
			},
			wantField: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRule(tt.rule)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("ValidateRule() = %v, want nil", err)
				}
				return
			}
			var cfgErr *RuleConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("ValidateRule() = %v, want *RuleConfigurationError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("ValidateRule() error field = %s, want %s", cfgErr.Field, tt.wantField)
			}
		})
	}
}
