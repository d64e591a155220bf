package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mwhitfield/ledgertags/internal/common"
	"github.com/mwhitfield/ledgertags/internal/model"
	"github.com/mwhitfield/ledgertags/internal/service"
)

// Engine computes aggregate metrics for tag-filter queries.
type Engine struct {
	tags  TagResolver
	store RecordStore
}

// NewEngine creates an analytics engine.
func NewEngine(tags TagResolver, store RecordStore) *Engine {
	return &Engine{tags: tags, store: store}
}

// Query describes one metric computation.
type Query struct {
	PeriodStart  *time.Time
	PeriodEnd    *time.Time
	Filters      service.TagFilters
	ResourceType string
	TenantID     string
	TenantType   model.TenantType
}

// ComputeTagMetrics resolves the query's tag filters to resource IDs, loads
// the underlying records, and aggregates them. No matching resources (or an
// unsupported resource type) yields the canonical empty shape.
func (e *Engine) ComputeTagMetrics(ctx context.Context, q Query) (*Metrics, error) {
	if err := q.TenantType.Validate(); err != nil {
		return nil, common.NewValidationError("tenant_type", err.Error())
	}

	ids, err := e.tags.TaggedResources(ctx, q.Filters, q.ResourceType, q.TenantType, q.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tag filters: %w", err)
	}
	if len(ids) == 0 {
		return emptyMetrics(q.ResourceType), nil
	}

	window := service.ResourceWindow{
		TenantType:  q.TenantType,
		TenantID:    q.TenantID,
		PeriodStart: q.PeriodStart,
		PeriodEnd:   q.PeriodEnd,
	}

	switch q.ResourceType {
	case ResourceTransaction:
		return e.transactionMetrics(ctx, ids, q, window)
	case ResourceAccount:
		return e.accountMetrics(ctx, ids, window)
	case ResourceBudget:
		return e.budgetMetrics(ctx, ids, window)
	default:
		slog.Debug("metrics requested for unsupported resource type", "resource_type", q.ResourceType)
		return emptyMetrics(q.ResourceType), nil
	}
}

func (e *Engine) transactionMetrics(ctx context.Context, ids []string, q Query, window service.ResourceWindow) (*Metrics, error) {
	transactions, err := e.store.GetTransactionsByIDs(ctx, ids, window)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	if len(transactions) == 0 {
		return emptyMetrics(ResourceTransaction), nil
	}

	total := sumBy(transactions, func(t model.Transaction) decimal.Decimal { return t.Amount })
	minAmount := transactions[0].Amount
	maxAmount := transactions[0].Amount
	for _, txn := range transactions[1:] {
		if txn.Amount.LessThan(minAmount) {
			minAmount = txn.Amount
		}
		if txn.Amount.GreaterThan(maxAmount) {
			maxAmount = txn.Amount
		}
	}

	count := len(transactions)
	return &Metrics{
		ResourceType: ResourceTransaction,
		TotalCount:   count,
		Transaction: &TransactionMetrics{
			TotalAmount:   total,
			AverageAmount: total.Div(decimal.NewFromInt(int64(count))).Round(2),
			MinAmount:     minAmount,
			MaxAmount:     maxAmount,
			ByType: aggregateBy(transactions,
				func(t model.Transaction) string { return string(t.Type) },
				func(t model.Transaction) decimal.Decimal { return t.Amount }),
			ByCurrency: aggregateBy(transactions,
				func(t model.Transaction) string { return t.Currency },
				func(t model.Transaction) decimal.Decimal { return t.Amount }),
			PeriodStart: q.PeriodStart,
			PeriodEnd:   q.PeriodEnd,
		},
	}, nil
}

func (e *Engine) accountMetrics(ctx context.Context, ids []string, window service.ResourceWindow) (*Metrics, error) {
	accounts, err := e.store.GetAccountsByIDs(ctx, ids, window)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	if len(accounts) == 0 {
		return emptyMetrics(ResourceAccount), nil
	}

	total := sumBy(accounts, func(a model.Account) decimal.Decimal { return a.Balance })
	active := 0
	for _, acct := range accounts {
		if acct.IsActive {
			active++
		}
	}

	count := len(accounts)
	return &Metrics{
		ResourceType: ResourceAccount,
		TotalCount:   count,
		Account: &AccountMetrics{
			ActiveCount:    active,
			TotalBalance:   total,
			AverageBalance: total.Div(decimal.NewFromInt(int64(count))).Round(2),
			ByAccountType: aggregateBy(accounts,
				func(a model.Account) string { return a.Type },
				func(a model.Account) decimal.Decimal { return a.Balance }),
		},
	}, nil
}

func (e *Engine) budgetMetrics(ctx context.Context, ids []string, window service.ResourceWindow) (*Metrics, error) {
	budgets, err := e.store.GetBudgetsByIDs(ctx, ids, window)
	if err != nil {
		return nil, fmt.Errorf("failed to load budgets: %w", err)
	}
	if len(budgets) == 0 {
		return emptyMetrics(ResourceBudget), nil
	}

	totalBudget := sumBy(budgets, func(b model.Budget) decimal.Decimal { return b.TotalAmount })
	totalSpent := sumBy(budgets, func(b model.Budget) decimal.Decimal { return b.SpentAmount })

	var active, overBudget int
	for _, b := range budgets {
		if b.IsActive {
			active++
		}
		if b.IsOverBudget() {
			overBudget++
		}
	}

	// Utilization is 0 for a zero total, never a division error.
	utilization := decimal.Zero
	if !totalBudget.IsZero() {
		utilization = totalSpent.Div(totalBudget).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return &Metrics{
		ResourceType: ResourceBudget,
		TotalCount:   len(budgets),
		Budget: &BudgetMetrics{
			ActiveCount:           active,
			OverBudgetCount:       overBudget,
			TotalBudgetAmount:     totalBudget,
			TotalSpentAmount:      totalSpent,
			TotalRemaining:        totalBudget.Sub(totalSpent),
			UtilizationPercentage: utilization,
		},
	}, nil
}

// Summary runs the metric computation for all three resource types under
// one filter set. A failure in one resource type is surfaced inline in its
// entry and does not prevent the others from computing.
func (e *Engine) Summary(ctx context.Context, tenantType model.TenantType, tenantID string, filters service.TagFilters) (*Summary, error) {
	if err := tenantType.Validate(); err != nil {
		return nil, common.NewValidationError("tenant_type", err.Error())
	}

	summary := &Summary{}
	for resourceType, entry := range map[string]*SummaryEntry{
		ResourceTransaction: &summary.Transactions,
		ResourceAccount:     &summary.Accounts,
		ResourceBudget:      &summary.Budgets,
	} {
		metrics, err := e.ComputeTagMetrics(ctx, Query{
			Filters:      filters,
			ResourceType: resourceType,
			TenantType:   tenantType,
			TenantID:     tenantID,
		})
		if err != nil {
			common.LogError(err, "summary computation failed for resource type", common.Fields{
				"resource_type": resourceType,
				"tenant_type":   tenantType,
				"tenant_id":     tenantID,
			})
			entry.Error = err.Error()
			entry.TotalCount = 0
			continue
		}
		entry.Metrics = metrics
		entry.TotalCount = metrics.TotalCount
	}
	return summary, nil
}

// CreateViewParams describes a saved analysis to persist.
type CreateViewParams struct {
	PeriodStart   *time.Time
	PeriodEnd     *time.Time
	Filters       service.TagFilters
	Name          string
	TenantID      string
	ResourceTypes []string
	TenantType    model.TenantType
}

// CreateView persists a saved analysis in pending state.
func (e *Engine) CreateView(ctx context.Context, params CreateViewParams) (*model.AnalyticsView, error) {
	if err := params.TenantType.Validate(); err != nil {
		return nil, common.NewValidationError("tenant_type", err.Error())
	}

	view := &model.AnalyticsView{
		ID:            uuid.NewString(),
		Name:          params.Name,
		TagFilters:    params.Filters,
		ResourceTypes: params.ResourceTypes,
		PeriodStart:   params.PeriodStart,
		PeriodEnd:     params.PeriodEnd,
		Status:        model.StatusPending,
		TenantType:    params.TenantType,
		TenantID:      params.TenantID,
	}
	if err := e.store.CreateAnalyticsView(ctx, view); err != nil {
		return nil, err
	}
	return view, nil
}

// RefreshView recomputes a saved view. The view is marked computing for the
// duration; on success its metrics are fully replaced and it is marked
// completed, on failure it is marked failed, the prior metrics are left
// untouched, and the underlying error is returned to the caller.
func (e *Engine) RefreshView(ctx context.Context, viewID string) (*model.AnalyticsView, error) {
	view, err := e.store.GetAnalyticsView(ctx, viewID)
	if err != nil {
		return nil, err
	}

	if err := e.store.SetAnalyticsViewStatus(ctx, viewID, model.StatusComputing); err != nil {
		return nil, err
	}

	metrics, err := e.computeViewMetrics(ctx, view)
	if err != nil {
		if statusErr := e.store.SetAnalyticsViewStatus(ctx, viewID, model.StatusFailed); statusErr != nil {
			common.LogError(statusErr, "failed to mark view as failed", common.Fields{"view_id": viewID})
		}
		return nil, fmt.Errorf("failed to refresh view %s: %w", viewID, err)
	}

	computedAt := time.Now().UTC()
	if err := e.store.CompleteAnalyticsView(ctx, viewID, metrics, computedAt); err != nil {
		return nil, err
	}

	return e.store.GetAnalyticsView(ctx, viewID)
}

func (e *Engine) computeViewMetrics(ctx context.Context, view *model.AnalyticsView) (map[string]any, error) {
	combined := make(map[string]any, len(view.ResourceTypes))
	for _, resourceType := range view.ResourceTypes {
		metrics, err := e.ComputeTagMetrics(ctx, Query{
			Filters:      view.TagFilters,
			ResourceType: resourceType,
			TenantType:   view.TenantType,
			TenantID:     view.TenantID,
			PeriodStart:  view.PeriodStart,
			PeriodEnd:    view.PeriodEnd,
		})
		if err != nil {
			return nil, err
		}
		flattened, err := metrics.toMap()
		if err != nil {
			return nil, err
		}
		combined[resourceType] = flattened
	}
	return combined, nil
}
