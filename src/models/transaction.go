package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction amounts are signed: spending is negative, income positive.
// SplitDetails holds per-member shares of abs(amount) keyed by user id;
// it is only set alongside IsSharedExpense and ConfidenceScore, either by
// the rule engine or by a manual edit (which also sets ManualOverride so
// later rule runs leave the row alone).
type Transaction struct {
	ID              uuid.UUID                 `json:"id"`
	AccountID       uuid.UUID                 `json:"account_id"`
	Amount          decimal.Decimal           `json:"amount"`
	MerchantName    *string                   `json:"merchant_name"`
	Category        string                    `json:"category"`
	Date            time.Time                 `json:"date"`
	IsSharedExpense bool                      `json:"is_shared_expense"`
	ManualOverride  bool                      `json:"manual_override"`
	ConfidenceScore *int                      `json:"confidence_score"`
	SplitDetails    map[int64]decimal.Decimal `json:"split_details"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}
