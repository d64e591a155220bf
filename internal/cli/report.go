package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mwhitfield/ledgertags/internal/analytics"
)

// FormatMetrics renders one metrics result for the terminal.
func FormatMetrics(m *analytics.Metrics) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("%s metrics", m.ResourceType)))
	b.WriteString("\n")

	if m.TotalCount == 0 {
		b.WriteString(SubtleStyle.Render(m.Message))
		b.WriteString("\n")
		return b.String()
	}

	writeRow(&b, "Total count", fmt.Sprintf("%d", m.TotalCount))

	switch {
	case m.Transaction != nil:
		t := m.Transaction
		writeRow(&b, "Total amount", t.TotalAmount.StringFixed(2))
		writeRow(&b, "Average amount", t.AverageAmount.StringFixed(2))
		writeRow(&b, "Min amount", t.MinAmount.StringFixed(2))
		writeRow(&b, "Max amount", t.MaxAmount.StringFixed(2))
		writeBreakdown(&b, "By type", t.ByType)
		writeBreakdown(&b, "By currency", t.ByCurrency)
	case m.Account != nil:
		a := m.Account
		writeRow(&b, "Active count", fmt.Sprintf("%d", a.ActiveCount))
		writeRow(&b, "Total balance", a.TotalBalance.StringFixed(2))
		writeRow(&b, "Average balance", a.AverageBalance.StringFixed(2))
		writeBreakdown(&b, "By account type", a.ByAccountType)
	case m.Budget != nil:
		bd := m.Budget
		writeRow(&b, "Active count", fmt.Sprintf("%d", bd.ActiveCount))
		writeRow(&b, "Over budget", fmt.Sprintf("%d", bd.OverBudgetCount))
		writeRow(&b, "Total budget", bd.TotalBudgetAmount.StringFixed(2))
		writeRow(&b, "Total spent", bd.TotalSpentAmount.StringFixed(2))
		writeRow(&b, "Remaining", bd.TotalRemaining.StringFixed(2))
		writeRow(&b, "Utilization", bd.UtilizationPercentage.StringFixed(2)+"%")
	}

	return b.String()
}

// FormatSummary renders a full cross-resource summary.
func FormatSummary(s *analytics.Summary) string {
	var b strings.Builder
	for _, entry := range []struct {
		name  string
		entry analytics.SummaryEntry
	}{
		{"transaction", s.Transactions},
		{"account", s.Accounts},
		{"budget", s.Budgets},
	} {
		if entry.entry.Error != "" {
			b.WriteString(TitleStyle.Render(fmt.Sprintf("%s metrics", entry.name)))
			b.WriteString("\n")
			b.WriteString(ErrorStyle.Render("error: " + entry.entry.Error))
			b.WriteString("\n\n")
			continue
		}
		if entry.entry.Metrics != nil {
			b.WriteString(FormatMetrics(entry.entry.Metrics))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(LabelStyle.Render(label))
	b.WriteString(value)
	b.WriteString("\n")
}

func writeBreakdown(b *strings.Builder, label string, buckets map[string]analytics.Breakdown) {
	if len(buckets) == 0 {
		return
	}
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString(LabelStyle.Render(label))
	b.WriteString("\n")
	for _, k := range keys {
		entry := buckets[k]
		b.WriteString(SubtleStyle.Render(fmt.Sprintf("  %-16s count=%d amount=%s",
			k, entry.Count, entry.Amount.StringFixed(2))))
		b.WriteString("\n")
	}
}
