// Package ingest parses OFX/QFX bank statements into transactions ready
// for classification.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/mwhitfield/ledgertags/internal/model"
)

// Parser implements OFX/QFX statement parsing.
type Parser struct {
	tenantType model.TenantType
	tenantID   string
}

// NewParser creates a parser whose output is scoped to one tenant.
func NewParser(tenantType model.TenantType, tenantID string) (*Parser, error) {
	if err := tenantType.Validate(); err != nil {
		return nil, err
	}
	return &Parser{tenantType: tenantType, tenantID: tenantID}, nil
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagRegex  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocess fixes common formatting issues in real-world OFX files:
// leading whitespace, mixed-case SEVERITY values, and SGML-style tags
// missing their closing bracket.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	content = openTagRegex.ReplaceAllString(content, "$1>")
	return content
}

// ParseFile parses an OFX/QFX statement and returns transactions.
func (p *Parser) ParseFile(_ context.Context, reader io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.Transaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		currency := strings.ToUpper(stmt.CurDef.String())
		for _, ofxTx := range stmt.BankTranList.Transactions {
			txn, err := p.convert(ofxTx, string(stmt.BankAcctFrom.AcctID), currency)
			if err != nil {
				slog.Warn("skipping unparseable transaction",
					"account", string(stmt.BankAcctFrom.AcctID),
					"error", err)
				continue
			}
			transactions = append(transactions, txn)
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		currency := strings.ToUpper(stmt.CurDef.String())
		for _, ofxTx := range stmt.BankTranList.Transactions {
			txn, err := p.convert(ofxTx, string(stmt.CCAcctFrom.AcctID), currency)
			if err != nil {
				slog.Warn("skipping unparseable transaction",
					"account", string(stmt.CCAcctFrom.AcctID),
					"error", err)
				continue
			}
			transactions = append(transactions, txn)
		}
	}

	slog.Info("parsed OFX statement",
		"total_transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)
	return transactions, nil
}

// convert maps one OFX transaction to the domain model.
func (p *Parser) convert(ofxTx ofxgo.Transaction, accountID, currency string) (model.Transaction, error) {
	// TrnAmt is a big.Rat; two fractional digits covers every currency the
	// OFX spec carries.
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(2))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("amount %q is not a decimal: %w", ofxTx.TrnAmt.String(), err)
	}
	if currency == "" {
		currency = "USD"
	}

	txn := model.Transaction{
		ID:          string(ofxTx.FiTID),
		Date:        ofxTx.DtPosted.Time,
		Description: extractDescription(ofxTx),
		Amount:      amount,
		Currency:    currency,
		AccountID:   accountID,
		Type:        mapTransactionType(ofxTx.TrnType.String(), amount),
		TenantType:  p.tenantType,
		TenantID:    p.tenantID,
	}
	txn.Hash = txn.GenerateHash()
	return txn, nil
}

// mapTransactionType folds OFX transaction types onto the domain's open
// set. Unknown types fall back on the amount's sign.
func mapTransactionType(ofxType string, amount decimal.Decimal) model.TransactionType {
	switch strings.ToUpper(ofxType) {
	case "CREDIT", "DEP", "DIRECTDEP", "INT", "DIV":
		return model.TransactionTypeCredit
	case "XFER":
		return model.TransactionTypeTransfer
	case "DEBIT", "CHECK", "PAYMENT", "ATM", "POS", "FEE", "SRVCHG", "REPEATPMT":
		return model.TransactionTypeDebit
	default:
		if amount.IsNegative() {
			return model.TransactionTypeDebit
		}
		return model.TransactionTypeCredit
	}
}

// descriptionPrefixes are processor boilerplate stripped from raw names.
var descriptionPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// extractDescription builds the best available description text for
// pattern matching.
func extractDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && isGenericDescription(name) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range descriptionPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}
	return strings.TrimSpace(name)
}

// isGenericDescription checks if a transaction name carries no merchant
// information.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
