package db

import (
	"context"
	"fmt"

	"hearthshare-server/src/db"
	"hearthshare-server/src/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func CreateAccount(ctx context.Context, pool *pgxpool.Pool, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (id, household_id, name, institution, account_type, current_balance, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, household_id, name, institution, account_type, current_balance, created_by, created_at, updated_at
	`
	var a models.Account
	err := pool.QueryRow(ctx, query,
		uuid.New(), account.HouseholdID, account.Name, account.Institution,
		account.AccountType, account.CurrentBalance, account.CreatedBy).
		Scan(&a.ID, &a.HouseholdID, &a.Name, &a.Institution, &a.AccountType, &a.CurrentBalance, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	db.ClearAllAccountCaches()
	return &a, nil
}

func GetAccountsForHousehold(ctx context.Context, pool *pgxpool.Pool, householdID int64) ([]models.Account, error) {
	cacheKey := fmt.Sprintf("accounts:%d", householdID)
	if cached, ok := db.Cache.Get(cacheKey); ok {
		if accounts, ok := cached.([]models.Account); ok {
			return accounts, nil
		}
	}

	query := `
		SELECT id, household_id, name, institution, account_type, current_balance, created_by, created_at, updated_at
		FROM accounts
		WHERE household_id = $1
		ORDER BY created_at
	`
	rows, err := pool.Query(ctx, query, householdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		err := rows.Scan(&a.ID, &a.HouseholdID, &a.Name, &a.Institution, &a.AccountType, &a.CurrentBalance, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	db.SetAccountCache(cacheKey, accounts)
	return accounts, nil
}

func GetAccountByID(ctx context.Context, pool *pgxpool.Pool, householdID int64, accountID uuid.UUID) (*models.Account, error) {
	query := `
		SELECT id, household_id, name, institution, account_type, current_balance, created_by, created_at, updated_at
		FROM accounts
		WHERE id = $1 AND household_id = $2
	`
	var a models.Account
	err := pool.QueryRow(ctx, query, accountID, householdID).
		Scan(&a.ID, &a.HouseholdID, &a.Name, &a.Institution, &a.AccountType, &a.CurrentBalance, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func UpdateAccount(ctx context.Context, pool *pgxpool.Pool, account *models.Account) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET name = $1, institution = $2, account_type = $3, current_balance = $4, updated_at = NOW()
		WHERE id = $5 AND household_id = $6
		RETURNING id, household_id, name, institution, account_type, current_balance, created_by, created_at, updated_at
	`
	var a models.Account
	err := pool.QueryRow(ctx, query,
		account.Name, account.Institution, account.AccountType, account.CurrentBalance,
		account.ID, account.HouseholdID).
		Scan(&a.ID, &a.HouseholdID, &a.Name, &a.Institution, &a.AccountType, &a.CurrentBalance, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	db.ClearAllAccountCaches()
	return &a, nil
}

func DeleteAccount(ctx context.Context, pool *pgxpool.Pool, householdID int64, accountID uuid.UUID) error {
	query := `DELETE FROM accounts WHERE id = $1 AND household_id = $2`
	cmd, err := pool.Exec(ctx, query, accountID, householdID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("account not found")
	}
	db.ClearAllAccountCaches()
	db.ClearAllTransactionCaches()
	return nil
}
