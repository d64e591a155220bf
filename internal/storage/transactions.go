package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mwhitfield/ledgertags/internal/common"
	"github.com/mwhitfield/ledgertags/internal/model"
	"github.com/mwhitfield/ledgertags/internal/service"
)

// SaveTransactions stores a batch of transactions, skipping duplicates by
// hash so re-imports of the same statement are safe.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (id, hash, date, description, amount, currency, type,
			category, account_id, destination_account_id, tenant_type, tenant_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	var saved, skipped int64
	for i := range transactions {
		txn := &transactions[i]
		hash := txn.Hash
		if hash == "" {
			hash = txn.GenerateHash()
		}
		result, err := stmt.ExecContext(ctx, txn.ID, hash, txn.Date, txn.Description,
			txn.Amount.String(), txn.Currency, txn.Type, txn.Category, txn.AccountID,
			txn.DestinationAccountID, txn.TenantType, txn.TenantID)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check insert result: %w", err)
		}
		if affected > 0 {
			saved++
		} else {
			skipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}

	slog.Debug("saved transactions", "saved", saved, "skipped_duplicates", skipped)
	return nil
}

// GetTransactionByID returns one transaction, or a not-found error.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, transactionSelect+` WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, common.NewNotFoundError("transaction", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return txn, nil
}

// GetTransactionsByIDs loads the transactions with the given IDs within the
// tenant scope, further restricted to the window's inclusive period bounds
// when present.
func (s *SQLiteStorage) GetTransactionsByIDs(ctx context.Context, ids []string, window service.ResourceWindow) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTenant(window.TenantType, window.TenantID); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+4)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	query := transactionSelect + fmt.Sprintf(` WHERE id IN (%s) AND tenant_type = ? AND tenant_id = ?`,
		strings.Join(placeholders, ", "))
	args = append(args, window.TenantType, window.TenantID)

	if window.PeriodStart != nil {
		query += ` AND date >= ?`
		args = append(args, *window.PeriodStart)
	}
	if window.PeriodEnd != nil {
		query += ` AND date <= ?`
		args = append(args, *window.PeriodEnd)
	}
	query += ` ORDER BY date`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

// GetUnclassifiedTransactions returns tenant transactions that do not yet
// carry an active classification tag.
func (s *SQLiteStorage) GetUnclassifiedTransactions(ctx context.Context, tenantType model.TenantType, tenantID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTenant(tenantType, tenantID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, transactionSelect+`
		WHERE tenant_type = ? AND tenant_id = ?
			AND id NOT IN (
				SELECT resource_id FROM tags
				WHERE resource_type = 'transaction' AND tag_key = ? AND is_active = 1
			)
		ORDER BY date`,
		tenantType, tenantID, model.TagKeyClassification)
	if err != nil {
		return nil, fmt.Errorf("failed to query unclassified transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

const transactionSelect = `
	SELECT id, hash, date, description, amount, currency, type,
		category, account_id, destination_account_id, tenant_type, tenant_id
	FROM transactions`

func scanTransaction(row scanner) (*model.Transaction, error) {
	var txn model.Transaction
	var amount string
	var category, accountID, destAccountID sql.NullString

	err := row.Scan(&txn.ID, &txn.Hash, &txn.Date, &txn.Description, &amount,
		&txn.Currency, &txn.Type, &category, &accountID, &destAccountID,
		&txn.TenantType, &txn.TenantID)
	if err != nil {
		return nil, err
	}

	txn.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("stored amount %q is not a decimal: %w", amount, err)
	}
	txn.Category = category.String
	txn.AccountID = accountID.String
	txn.DestinationAccountID = destAccountID.String
	return &txn, nil
}
