package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RuleTypeMerchant        = "merchant"
	RuleTypeCategory        = "category"
	RuleTypeAmountThreshold = "amount_threshold"
	RuleTypeDefault         = "default"
)

// SplittingRule decides whether a transaction is a shared expense and how
// it is divided among household members. Exactly one criteria field is
// populated, matching RuleType; Priority 1 is evaluated first. Default
// rules act as a catch-all and are always evaluated after every other
// rule type regardless of their numeric priority.
type SplittingRule struct {
	ID              int64                     `json:"id"`
	HouseholdID     int64                     `json:"household_id"`
	RuleName        string                    `json:"rule_name"`
	RuleType        string                    `json:"rule_type"`
	Priority        int                       `json:"priority"`
	MerchantPattern *string                   `json:"merchant_pattern"`
	CategoryMatch   *string                   `json:"category_match"`
	MinAmount       *decimal.Decimal          `json:"min_amount"`
	MaxAmount       *decimal.Decimal          `json:"max_amount"`
	SplitPercentage map[int64]decimal.Decimal `json:"split_percentage"`
	IsActive        bool                      `json:"is_active"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}
