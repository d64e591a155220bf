package analytics

import (
	"context"
	"time"

	"github.com/mwhitfield/ledgertags/internal/model"
	"github.com/mwhitfield/ledgertags/internal/service"
)

// TagResolver resolves tag filters to matching resource IDs.
type TagResolver interface {
	TaggedResources(ctx context.Context, filters service.TagFilters, resourceType string, tenantType model.TenantType, tenantID string) ([]string, error)
}

// RecordStore is the slice of the persistence layer the engine needs: bulk
// record loads plus saved-view lifecycle operations.
type RecordStore interface {
	GetTransactionsByIDs(ctx context.Context, ids []string, window service.ResourceWindow) ([]model.Transaction, error)
	GetAccountsByIDs(ctx context.Context, ids []string, window service.ResourceWindow) ([]model.Account, error)
	GetBudgetsByIDs(ctx context.Context, ids []string, window service.ResourceWindow) ([]model.Budget, error)

	CreateAnalyticsView(ctx context.Context, view *model.AnalyticsView) error
	GetAnalyticsView(ctx context.Context, id string) (*model.AnalyticsView, error)
	SetAnalyticsViewStatus(ctx context.Context, id string, status model.ComputationStatus) error
	CompleteAnalyticsView(ctx context.Context, id string, metrics map[string]any, computedAt time.Time) error
}
