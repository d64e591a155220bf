package model

// Classification is a behavioral label for a transaction derived from text
// patterns and numeric heuristics. Pattern tables may introduce labels
// beyond the constants below, so the type is an open string set.
type Classification string

// Classification labels assigned by the heuristic fallback rules.
const (
	ClassificationLargeTransfer    Classification = "LARGE_TRANSFER"
	ClassificationMicroTransaction Classification = "MICRO_TRANSACTION"
	ClassificationTransferInternal Classification = "TRANSFER_INTERNAL"
	ClassificationTransferExternal Classification = "TRANSFER_EXTERNAL"
	ClassificationSalaryIncome     Classification = "SALARY_INCOME"
	ClassificationPersonalExpense  Classification = "PERSONAL_EXPENSE"
	ClassificationUnknown          Classification = "UNKNOWN"
)

// Classification labels assigned from the default pattern table.
const (
	ClassificationRecurringPayment Classification = "RECURRING_PAYMENT"
	ClassificationAtmWithdrawal    Classification = "ATM_WITHDRAWAL"
	ClassificationFeeCharge        Classification = "FEE_CHARGE"
	ClassificationRefund           Classification = "REFUND"
	ClassificationInterestIncome   Classification = "INTEREST_INCOME"
	ClassificationLoanPayment      Classification = "LOAN_PAYMENT"
)

// Category is a semantic spending/income bucket, independent of
// classification. Open set for the same reason as Classification.
type Category string

// Category labels assigned by the heuristic fallback rules.
const (
	CategorySalary           Category = "SALARY"
	CategoryOtherIncome      Category = "OTHER_INCOME"
	CategoryOtherExpense     Category = "OTHER_EXPENSE"
	CategoryInternalTransfer Category = "INTERNAL_TRANSFER"
	CategoryExternalTransfer Category = "EXTERNAL_TRANSFER"
	CategoryUncategorized    Category = "UNCATEGORIZED"
)

// Category labels assigned from the default pattern table.
const (
	CategoryGroceries     Category = "GROCERIES"
	CategoryDining        Category = "DINING"
	CategoryTransport     Category = "TRANSPORT"
	CategoryUtilities     Category = "UTILITIES"
	CategoryEntertainment Category = "ENTERTAINMENT"
	CategoryRent          Category = "RENT"
	CategoryHealthcare    Category = "HEALTHCARE"
	CategoryShopping      Category = "SHOPPING"
	CategoryTravel        Category = "TRAVEL"
)

// ClassificationResult is the ephemeral output of one classification call.
// It is persisted only indirectly, as two tag records.
type ClassificationResult struct {
	Classification Classification
	Category       Category
}
