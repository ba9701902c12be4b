package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	db "hearthshare-server/src/db/sql"
	"hearthshare-server/src/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var validAccountTypes = map[string]bool{
	"checking": true,
	"savings":  true,
	"credit":   true,
	"cash":     true,
}

type accountRequest struct {
	Name           string          `json:"name"`
	Institution    *string         `json:"institution"`
	AccountType    string          `json:"account_type"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

func CreateAccount(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		householdID := r.Context().Value("household_id").(int64)

		var req accountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			slog.Error("failed to decode create account request body", "household_id", householdID, "error", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if !validAccountTypes[req.AccountType] {
			http.Error(w, "account_type must be one of checking, savings, credit, cash", http.StatusBadRequest)
			return
		}

		account := &models.Account{
			HouseholdID:    householdID,
			Name:           req.Name,
			Institution:    req.Institution,
			AccountType:    req.AccountType,
			CurrentBalance: req.CurrentBalance,
			CreatedBy:      userID,
		}
		created, err := db.CreateAccount(r.Context(), pool, account)
		if err != nil {
			slog.Error("failed to create account", "household_id", householdID, "error", err)
			http.Error(w, "failed to create account", http.StatusInternalServerError)
			return
		}

		slog.Info("account created", "account_id", created.ID, "household_id", householdID, "user_id", userID)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func GetAccounts(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := r.Context().Value("household_id").(int64)

		accounts, err := db.GetAccountsForHousehold(r.Context(), pool, householdID)
		if err != nil {
			slog.Error("failed to get accounts", "household_id", householdID, "error", err)
			http.Error(w, "failed to get accounts", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(accounts)
	}
}

func GetAccountByID(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := r.Context().Value("household_id").(int64)

		accountID, err := uuid.Parse(chi.URLParam(r, "account_id"))
		if err != nil {
			slog.Error("invalid account id param", "account_id", chi.URLParam(r, "account_id"))
			http.Error(w, "invalid account id", http.StatusBadRequest)
			return
		}

		account, err := db.GetAccountByID(r.Context(), pool, householdID, accountID)
		if err != nil {
			slog.Warn("account not found", "account_id", accountID, "household_id", householdID, "error", err)
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(account)
	}
}

func UpdateAccount(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := r.Context().Value("household_id").(int64)

		accountID, err := uuid.Parse(chi.URLParam(r, "account_id"))
		if err != nil {
			slog.Error("invalid account id param", "account_id", chi.URLParam(r, "account_id"))
			http.Error(w, "invalid account id", http.StatusBadRequest)
			return
		}

		var req accountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			slog.Error("failed to decode update account request body", "account_id", accountID, "error", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if !validAccountTypes[req.AccountType] {
			http.Error(w, "account_type must be one of checking, savings, credit, cash", http.StatusBadRequest)
			return
		}

		account := &models.Account{
			ID:             accountID,
			HouseholdID:    householdID,
			Name:           req.Name,
			Institution:    req.Institution,
			AccountType:    req.AccountType,
			CurrentBalance: req.CurrentBalance,
		}
		updated, err := db.UpdateAccount(r.Context(), pool, account)
		if err != nil {
			slog.Error("failed to update account", "account_id", accountID, "household_id", householdID, "error", err)
			http.Error(w, "failed to update account", http.StatusInternalServerError)
			return
		}

		slog.Info("account updated", "account_id", updated.ID, "household_id", householdID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

func DeleteAccount(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := r.Context().Value("household_id").(int64)

		accountID, err := uuid.Parse(chi.URLParam(r, "account_id"))
		if err != nil {
			slog.Error("invalid account id param", "account_id", chi.URLParam(r, "account_id"))
			http.Error(w, "invalid account id", http.StatusBadRequest)
			return
		}

		if err := db.DeleteAccount(r.Context(), pool, householdID, accountID); err != nil {
			slog.Error("failed to delete account", "account_id", accountID, "household_id", householdID, "error", err)
			http.Error(w, "failed to delete account", http.StatusInternalServerError)
			return
		}

		slog.Info("account deleted", "account_id", accountID, "household_id", householdID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "account deleted"})
	}
}
