package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	db "hearthshare-server/src/db/sql"
	"hearthshare-server/src/models"
	"hearthshare-server/src/rules"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// IsSharedExpense and SplitDetails are only honored on updates; a new
// transaction starts unshared and is categorized by the rule engine or
// a later manual edit.
type transactionRequest struct {
	AccountID       uuid.UUID                 `json:"account_id"`
	Amount          decimal.Decimal           `json:"amount"`
	MerchantName    *string                   `json:"merchant_name"`
	Category        string                    `json:"category"`
	Date            string                    `json:"date"`
	IsSharedExpense bool                      `json:"is_shared_expense"`
	SplitDetails    map[int64]decimal.Decimal `json:"split_details"`
}

func CreateTransaction(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := r.Context().Value("household_id").(int64)

		var req transactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Error("failed to decode create transaction request body", "household_id", householdID, "error", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		if req.IsSharedExpense || len(req.SplitDetails) > 0 {
			http.Error(w, "sharing is set by splitting rules or a later edit", http.StatusBadRequest)
			return
		}

		// Ownership check: the target account must belong to this
		// household.
		if _, err := db.GetAccountByID(r.Context(), pool, householdID, req.AccountID); err != nil {
			slog.Warn("transaction create against foreign account", "account_id", req.AccountID, "household_id", householdID)
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}

		txn := &models.Transaction{
			AccountID:    req.AccountID,
			Amount:       req.Amount,
			MerchantName: req.MerchantName,
			Category:     req.Category,
			Date:         date,
		}
		created, err := db.CreateTransaction(r.Context(), pool, txn)
		if err != nil {
			slog.Error("failed to create transaction", "household_id", householdID, "error", err)
			http.Error(w, "failed to create transaction", http.StatusInternalServerError)
			return
		}

		slog.Info("transaction created", "transaction_id", created.ID, "household_id", householdID)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func GetTransactions(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := r.Context().Value("household_id").(int64)

		accountID, err := uuid.Parse(chi.URLParam(r, "account_id"))
		if err != nil {
			slog.Error("invalid account id param", "account_id", chi.URLParam(r, "account_id"))
			http.Error(w, "invalid account id", http.StatusBadRequest)
			return
		}

		txns, err := db.GetTransactionsForAccount(r.Context(), pool, householdID, accountID)
		if err != nil {
			slog.Error("failed to get transactions", "household_id", householdID, "account_id", accountID, "error", err)
			http.Error(w, "failed to get transactions", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(txns)
	}
}

// GetTransaction also reports the confidence level bucket used for UI
// badges alongside the raw score.
func GetTransaction(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := r.Context().Value("household_id").(int64)

		txnID, err := uuid.Parse(chi.URLParam(r, "transaction_id"))
		if err != nil {
			slog.Error("invalid transaction id param", "transaction_id", chi.URLParam(r, "transaction_id"))
			http.Error(w, "invalid transaction id", http.StatusBadRequest)
			return
		}

		txn, err := db.GetTransactionByID(r.Context(), pool, householdID, txnID)
		if err != nil {
			slog.Warn("transaction not found", "transaction_id", txnID, "household_id", householdID, "error", err)
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			*models.Transaction
			ConfidenceLevel rules.ConfidenceLevel `json:"confidence_level"`
		}{txn, rules.ConfidenceLevelFor(txn.ConfidenceScore)})
	}
}

// UpdateTransaction applies a manual edit, which marks the row
// manual_override so rule runs leave it alone afterwards.
func UpdateTransaction(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := r.Context().Value("household_id").(int64)

		txnID, err := uuid.Parse(chi.URLParam(r, "transaction_id"))
		if err != nil {
			slog.Error("invalid transaction id param", "transaction_id", chi.URLParam(r, "transaction_id"))
			http.Error(w, "invalid transaction id", http.StatusBadRequest)
			return
		}

		var req transactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Error("failed to decode update transaction request body", "transaction_id", txnID, "error", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		if req.IsSharedExpense && len(req.SplitDetails) == 0 {
			http.Error(w, "shared transactions need split_details", http.StatusBadRequest)
			return
		}
		if !req.IsSharedExpense {
			req.SplitDetails = nil
		}

		txn := &models.Transaction{
			ID:              txnID,
			Amount:          req.Amount,
			MerchantName:    req.MerchantName,
			Category:        req.Category,
			Date:            date,
			IsSharedExpense: req.IsSharedExpense,
			SplitDetails:    req.SplitDetails,
			// Manual edits carry no rule confidence.
			ConfidenceScore: nil,
		}
		updated, err := db.UpdateTransaction(r.Context(), pool, householdID, txn)
		if err != nil {
			slog.Error("failed to update transaction", "transaction_id", txnID, "household_id", householdID, "error", err)
			http.Error(w, "failed to update transaction", http.StatusInternalServerError)
			return
		}

		slog.Info("transaction updated", "transaction_id", updated.ID, "household_id", householdID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

func DeleteTransaction(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := r.Context().Value("household_id").(int64)

		txnID, err := uuid.Parse(chi.URLParam(r, "transaction_id"))
		if err != nil {
			slog.Error("invalid transaction id param", "transaction_id", chi.URLParam(r, "transaction_id"))
			http.Error(w, "invalid transaction id", http.StatusBadRequest)
			return
		}

		if err := db.DeleteTransaction(r.Context(), pool, householdID, txnID); err != nil {
			slog.Error("failed to delete transaction", "transaction_id", txnID, "household_id", householdID, "error", err)
			http.Error(w, "failed to delete transaction", http.StatusInternalServerError)
			return
		}

		slog.Info("transaction deleted", "transaction_id", txnID, "household_id", householdID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "transaction deleted"})
	}
}
