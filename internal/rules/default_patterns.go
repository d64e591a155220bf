package rules

import "github.com/mwhitfield/ledgertags/internal/model"

// defaultClassificationPatterns lists the built-in classification table in
// match order. Earlier labels win over later ones.
var defaultClassificationPatterns = []struct {
	label    model.Classification
	patterns []string
}{
	{model.ClassificationRecurringPayment, []string{
		`\b(subscription|netflix|spotify|hulu|disney\+)\b`,
		`\b(autopay|auto\s*pay|recurring|monthly\s*plan)\b`,
	}},
	{model.ClassificationAtmWithdrawal, []string{
		`\b(atm|cash\s*withdrawal|withdraw)\b`,
	}},
	{model.ClassificationFeeCharge, []string{
		`\b(fee|service\s*chg|service\s*charge|penalty|overdraft)\b`,
	}},
	{model.ClassificationRefund, []string{
		`\b(refund|reimb|reimbursement|cashback|cash\s*back|chargeback)\b`,
	}},
	{model.ClassificationInterestIncome, []string{
		`\b(interest|int\s*earned|dividend)\b`,
	}},
	{model.ClassificationLoanPayment, []string{
		`\b(loan\s*pmt|loan\s*payment|mortgage|student\s*loan)\b`,
	}},
}

// defaultCategoryPatterns lists the built-in category table in match order.
var defaultCategoryPatterns = []struct {
	label    model.Category
	patterns []string
}{
	{model.CategoryGroceries, []string{
		`\b(grocery|groceries|supermarket|whole\s*foods|trader\s*joe|safeway|kroger|aldi)\b`,
	}},
	{model.CategoryDining, []string{
		`\b(restaurant|cafe|coffee|diner|pizzeria|mcdonald|starbucks)\b`,
		`\b(doordash|uber\s*eats|grubhub|deliveroo)\b`,
	}},
	{model.CategoryTransport, []string{
		`\b(uber|lyft|taxi|gas\s*station|shell|chevron|parking|transit|metro)\b`,
	}},
	{model.CategoryUtilities, []string{
		`\b(electric|water\s*bill|internet|comcast|verizon|utility|phone\s*bill)\b`,
	}},
	{model.CategoryEntertainment, []string{
		`\b(netflix|spotify|hulu|cinema|theater|steam|playstation|xbox)\b`,
	}},
	{model.CategoryRent, []string{
		`\b(rent|landlord|property\s*management|lease)\b`,
	}},
	{model.CategoryHealthcare, []string{
		`\b(pharmacy|cvs|walgreens|clinic|hospital|dental|medical)\b`,
	}},
	{model.CategoryShopping, []string{
		`\b(amazon|walmart|target|ebay|etsy|best\s*buy)\b`,
	}},
	{model.CategoryTravel, []string{
		`\b(airline|hotel|airbnb|delta|united\s*air|expedia|booking\.com)\b`,
	}},
	{model.CategorySalary, []string{
		`\b(payroll|salary|direct\s*dep|directdep|wages)\b`,
	}},
}

// DefaultRegistry returns a registry seeded with the built-in pattern
// tables.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, entry := range defaultClassificationPatterns {
		for _, p := range entry.patterns {
			// Built-in patterns are static and known to compile.
			if err := r.AddClassificationPattern(string(entry.label), p); err != nil {
				panic(err)
			}
		}
	}
	for _, entry := range defaultCategoryPatterns {
		for _, p := range entry.patterns {
			if err := r.AddCategoryPattern(string(entry.label), p); err != nil {
				panic(err)
			}
		}
	}
	return r
}
