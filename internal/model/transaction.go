package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType describes how money moved. The set is open: statements
// from real institutions carry values we cannot fully enumerate, so
// unrecognized strings are preserved rather than rejected.
type TransactionType string

// Well-known transaction types.
const (
	TransactionTypeDebit    TransactionType = "debit"
	TransactionTypeCredit   TransactionType = "credit"
	TransactionTypeTransfer TransactionType = "transfer"
	TransactionTypeWire     TransactionType = "wire"
)

// Transaction represents a single financial transaction from any source.
type Transaction struct {
	Date                 time.Time
	ID                   string
	Description          string // Raw transaction description, may be empty
	Hash                 string
	Currency             string
	AccountID            string
	DestinationAccountID string // Set for transfers between own accounts
	Category             string // Pre-existing category hint from the source, if any
	Type                 TransactionType
	TenantType           TenantType
	TenantID             string
	Amount               decimal.Decimal
}

// GenerateHash creates a unique hash for duplicate detection on import.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount.StringFixed(2),
		t.Description,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
