package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"hearthshare-server/src/db"
	"hearthshare-server/src/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, account_id, amount, merchant_name, category, date, is_shared_expense, manual_override, confidence_score, split_details, created_at, updated_at`

func transactionColumnsPrefixed(alias string) string {
	cols := strings.Split(transactionColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	var splitDetails []byte
	err := row.Scan(
		&t.ID,
		&t.AccountID,
		&t.Amount,
		&t.MerchantName,
		&t.Category,
		&t.Date,
		&t.IsSharedExpense,
		&t.ManualOverride,
		&t.ConfidenceScore,
		&splitDetails,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(splitDetails) > 0 {
		if err := json.Unmarshal(splitDetails, &t.SplitDetails); err != nil {
			return nil, fmt.Errorf("decode split details for transaction %s: %w", t.ID, err)
		}
	}
	return &t, nil
}

func marshalSplitDetails(details map[int64]decimal.Decimal) ([]byte, error) {
	if details == nil {
		return nil, nil
	}
	return json.Marshal(details)
}

func CreateTransaction(ctx context.Context, pool *pgxpool.Pool, txn *models.Transaction) (*models.Transaction, error) {
	splitDetails, err := marshalSplitDetails(txn.SplitDetails)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO transactions (id, account_id, amount, merchant_name, category, date, is_shared_expense, manual_override, confidence_score, split_details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + transactionColumns
	created, err := scanTransaction(pool.QueryRow(ctx, query,
		uuid.New(), txn.AccountID, txn.Amount, txn.MerchantName, txn.Category, txn.Date,
		txn.IsSharedExpense, txn.ManualOverride, txn.ConfidenceScore, splitDetails))
	if err != nil {
		return nil, err
	}
	db.ClearAllTransactionCaches()
	return created, nil
}

func GetTransactionsForAccount(ctx context.Context, pool *pgxpool.Pool, householdID int64, accountID uuid.UUID) ([]models.Transaction, error) {
	cacheKey := fmt.Sprintf("txns:%d:%s", householdID, accountID)
	if cached, ok := db.Cache.Get(cacheKey); ok {
		if txns, ok := cached.([]models.Transaction); ok {
			return txns, nil
		}
	}

	query := `
		SELECT ` + transactionColumnsPrefixed("t") + `
		FROM transactions t
		JOIN accounts a ON t.account_id = a.id
		WHERE a.household_id = $1 AND a.id = $2
		ORDER BY t.date DESC, t.created_at DESC
	`
	rows, err := pool.Query(ctx, query, householdID, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	db.SetTransactionCache(cacheKey, txns)
	return txns, nil
}

func GetTransactionsForHousehold(ctx context.Context, pool *pgxpool.Pool, householdID int64) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumnsPrefixed("t") + `
		FROM transactions t
		JOIN accounts a ON t.account_id = a.id
		WHERE a.household_id = $1
		ORDER BY t.date DESC, t.created_at DESC
	`
	rows, err := pool.Query(ctx, query, householdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

func GetTransactionByID(ctx context.Context, pool *pgxpool.Pool, householdID int64, txnID uuid.UUID) (*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumnsPrefixed("t") + `
		FROM transactions t
		JOIN accounts a ON t.account_id = a.id
		WHERE a.household_id = $1 AND t.id = $2
	`
	return scanTransaction(pool.QueryRow(ctx, query, householdID, txnID))
}

// UpdateTransaction applies a manual edit. Manual edits always set
// manual_override so subsequent rule runs skip the row.
func UpdateTransaction(ctx context.Context, pool *pgxpool.Pool, householdID int64, txn *models.Transaction) (*models.Transaction, error) {
	splitDetails, err := marshalSplitDetails(txn.SplitDetails)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE transactions t
		SET amount = $1, merchant_name = $2, category = $3, date = $4,
		    is_shared_expense = $5, manual_override = TRUE,
		    confidence_score = $6, split_details = $7, updated_at = NOW()
		FROM accounts a
		WHERE t.account_id = a.id AND a.household_id = $8 AND t.id = $9
		RETURNING ` + transactionColumnsPrefixed("t")
	updated, err := scanTransaction(pool.QueryRow(ctx, query,
		txn.Amount, txn.MerchantName, txn.Category, txn.Date,
		txn.IsSharedExpense, txn.ConfidenceScore, splitDetails,
		householdID, txn.ID))
	if err != nil {
		return nil, err
	}
	db.ClearAllTransactionCaches()
	return updated, nil
}

func DeleteTransaction(ctx context.Context, pool *pgxpool.Pool, householdID int64, txnID uuid.UUID) error {
	query := `
		DELETE FROM transactions t
		USING accounts a
		WHERE t.account_id = a.id AND a.household_id = $1 AND t.id = $2
	`
	cmd, err := pool.Exec(ctx, query, householdID, txnID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found")
	}
	db.ClearAllTransactionCaches()
	return nil
}
