package rules

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mwhitfield/ledgertags/internal/common"
	"github.com/mwhitfield/ledgertags/internal/model"
)

// Version identifies the rule set; stamped into auto-generated tag metadata.
const Version = "1.0"

// Config holds the numeric thresholds used by the fallback rules. The
// relative ordering large > salary > micro must hold for the precedence
// rules to make sense.
type Config struct {
	LargeTransferThreshold    decimal.Decimal
	MicroTransactionThreshold decimal.Decimal
	SalaryIncomeThreshold     decimal.Decimal
	SalaryCategoryThreshold   decimal.Decimal
}

// DefaultConfig returns the reference thresholds.
func DefaultConfig() Config {
	return Config{
		LargeTransferThreshold:    decimal.NewFromInt(10000),
		MicroTransactionThreshold: decimal.NewFromInt(5),
		SalaryIncomeThreshold:     decimal.NewFromInt(1000),
		SalaryCategoryThreshold:   decimal.NewFromInt(2000),
	}
}

// Input is one transaction as seen by the classifier. Description may be
// empty; Type must be set; Amount must be a parsed decimal.
type Input struct {
	Description           string
	Category              string // pre-existing category hint, may be empty
	Type                  model.TransactionType
	Amount                decimal.Decimal
	HasDestinationAccount bool
}

// InputFromTransaction builds a classifier input from a stored transaction.
func InputFromTransaction(txn *model.Transaction) Input {
	return Input{
		Description:           txn.Description,
		Category:              txn.Category,
		Type:                  txn.Type,
		Amount:                txn.Amount,
		HasDestinationAccount: txn.DestinationAccountID != "",
	}
}

// ParseAmount parses a decimal amount string, returning a validation error
// for malformed input. The classifier never guesses at amounts.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, common.NewValidationError("amount", "is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, common.NewValidationError("amount", "must be a decimal number")
	}
	return d, nil
}

// Classifier assigns exactly one classification label and one category
// label per transaction, deterministically. It owns its pattern registry;
// there is no shared mutable pattern state.
type Classifier struct {
	registry *Registry
	cfg      Config
}

// NewClassifier creates a classifier over the given registry. Zero-valued
// thresholds fall back to the defaults.
func NewClassifier(registry *Registry, cfg Config) *Classifier {
	def := DefaultConfig()
	if cfg.LargeTransferThreshold.IsZero() {
		cfg.LargeTransferThreshold = def.LargeTransferThreshold
	}
	if cfg.MicroTransactionThreshold.IsZero() {
		cfg.MicroTransactionThreshold = def.MicroTransactionThreshold
	}
	if cfg.SalaryIncomeThreshold.IsZero() {
		cfg.SalaryIncomeThreshold = def.SalaryIncomeThreshold
	}
	if cfg.SalaryCategoryThreshold.IsZero() {
		cfg.SalaryCategoryThreshold = def.SalaryCategoryThreshold
	}
	return &Classifier{registry: registry, cfg: cfg}
}

// Registry exposes the classifier's pattern registry, e.g. for runtime
// pattern additions.
func (c *Classifier) Registry() *Registry {
	return c.registry
}

func (c *Classifier) validate(in Input) error {
	if strings.TrimSpace(string(in.Type)) == "" {
		return common.NewValidationError("transaction_type", "is required")
	}
	return nil
}

// Classify assigns a classification label. Precedence: pattern match,
// amount thresholds, type-based defaults, UNKNOWN.
func (c *Classifier) Classify(in Input) (model.Classification, error) {
	if err := c.validate(in); err != nil {
		return "", err
	}

	if label, ok := c.registry.matchClassification(in.Description); ok {
		return model.Classification(label), nil
	}

	abs := in.Amount.Abs()
	switch {
	case abs.GreaterThanOrEqual(c.cfg.LargeTransferThreshold):
		return model.ClassificationLargeTransfer, nil
	case abs.LessThanOrEqual(c.cfg.MicroTransactionThreshold):
		return model.ClassificationMicroTransaction, nil
	}

	switch in.Type {
	case model.TransactionTypeTransfer, model.TransactionTypeWire:
		if in.HasDestinationAccount {
			return model.ClassificationTransferInternal, nil
		}
		return model.ClassificationTransferExternal, nil
	case model.TransactionTypeCredit:
		if in.Amount.GreaterThan(c.cfg.SalaryIncomeThreshold) {
			return model.ClassificationSalaryIncome, nil
		}
	case model.TransactionTypeDebit:
		return model.ClassificationPersonalExpense, nil
	}

	return model.ClassificationUnknown, nil
}

// Categorize assigns a category label. A pre-existing category that maps
// onto a known label wins; then the pattern table; then type-based rules.
func (c *Classifier) Categorize(in Input) (model.Category, error) {
	if err := c.validate(in); err != nil {
		return "", err
	}

	if existing, ok := c.lookupCategory(in.Category); ok {
		return existing, nil
	}

	if label, ok := c.registry.matchCategory(in.Description); ok {
		return model.Category(label), nil
	}

	switch in.Type {
	case model.TransactionTypeCredit:
		if in.Amount.GreaterThanOrEqual(c.cfg.SalaryCategoryThreshold) {
			return model.CategorySalary, nil
		}
		return model.CategoryOtherIncome, nil
	case model.TransactionTypeDebit:
		return model.CategoryOtherExpense, nil
	case model.TransactionTypeTransfer, model.TransactionTypeWire:
		if in.HasDestinationAccount {
			return model.CategoryInternalTransfer, nil
		}
		return model.CategoryExternalTransfer, nil
	}

	return model.CategoryUncategorized, nil
}

// ClassifyAndCategorize runs both assignments on one input.
func (c *Classifier) ClassifyAndCategorize(in Input) (model.ClassificationResult, error) {
	classification, err := c.Classify(in)
	if err != nil {
		return model.ClassificationResult{}, err
	}
	category, err := c.Categorize(in)
	if err != nil {
		return model.ClassificationResult{}, err
	}
	return model.ClassificationResult{
		Classification: classification,
		Category:       category,
	}, nil
}

// fallbackCategories are the category labels assignable without a pattern
// table entry; a pre-existing category hint may name any of these too.
var fallbackCategories = []model.Category{
	model.CategorySalary,
	model.CategoryOtherIncome,
	model.CategoryOtherExpense,
	model.CategoryInternalTransfer,
	model.CategoryExternalTransfer,
	model.CategoryUncategorized,
}

// lookupCategory maps a free-form category hint onto a known label by
// case-insensitive exact match.
func (c *Classifier) lookupCategory(hint string) (model.Category, bool) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return "", false
	}
	upper := strings.ToUpper(hint)
	if c.registry.categories.hasLabel(upper) {
		return model.Category(upper), true
	}
	for _, known := range fallbackCategories {
		if upper == string(known) {
			return known, true
		}
	}
	return "", false
}
