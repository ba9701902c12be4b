package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Account struct {
	ID             uuid.UUID       `json:"id"`
	HouseholdID    int64           `json:"household_id"`
	Name           string          `json:"name"`
	Institution    *string         `json:"institution"`
	AccountType    string          `json:"account_type"` // checking, savings, credit, cash
	CurrentBalance decimal.Decimal `json:"current_balance"`
	CreatedBy      int64           `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
