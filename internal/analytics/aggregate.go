package analytics

import "github.com/shopspring/decimal"

// aggregateBy groups items by a key and accumulates count and amount per
// bucket. The same helper backs every secondary-dimension breakdown so the
// count/sum logic lives in one place.
func aggregateBy[T any](items []T, key func(T) string, amount func(T) decimal.Decimal) map[string]Breakdown {
	buckets := make(map[string]Breakdown)
	for _, item := range items {
		k := key(item)
		b := buckets[k]
		b.Count++
		b.Amount = b.Amount.Add(amount(item))
		buckets[k] = b
	}
	return buckets
}

// sumBy totals one extracted amount across items.
func sumBy[T any](items []T, amount func(T) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(amount(item))
	}
	return total
}
