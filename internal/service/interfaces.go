// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/mwhitfield/ledgertags/internal/model"
)

// TagFilters maps tag keys to required values. A resource satisfies the
// filters only when it carries an active tag for every entry.
type TagFilters map[string]string

// ResourceWindow bounds a record query by tenant scope and an optional
// inclusive timestamp window.
type ResourceWindow struct {
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	TenantID    string
	TenantType  model.TenantType
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Tag operations. GetOrCreateTag enforces the 5-tuple uniqueness
	// constraint in a single statement; the bool reports whether a new
	// row was created.
	GetOrCreateTag(ctx context.Context, tag *model.Tag) (*model.Tag, bool, error)
	GetResourceTags(ctx context.Context, resourceType, resourceID string, tenantType model.TenantType, tenantID string, tagTypes []model.TagType) ([]model.Tag, error)
	FindTaggedResources(ctx context.Context, resourceType string, tenantType model.TenantType, tenantID, tagKey, tagValue string) ([]string, error)
	DeactivateTag(ctx context.Context, id string) error

	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactionsByIDs(ctx context.Context, ids []string, window ResourceWindow) ([]model.Transaction, error)
	GetUnclassifiedTransactions(ctx context.Context, tenantType model.TenantType, tenantID string) ([]model.Transaction, error)

	// Account operations
	SaveAccount(ctx context.Context, account *model.Account) error
	GetAccountsByIDs(ctx context.Context, ids []string, window ResourceWindow) ([]model.Account, error)

	// Budget operations
	SaveBudget(ctx context.Context, budget *model.Budget) error
	GetBudgetsByIDs(ctx context.Context, ids []string, window ResourceWindow) ([]model.Budget, error)

	// Analytics view operations
	CreateAnalyticsView(ctx context.Context, view *model.AnalyticsView) error
	GetAnalyticsView(ctx context.Context, id string) (*model.AnalyticsView, error)
	SetAnalyticsViewStatus(ctx context.Context, id string, status model.ComputationStatus) error
	CompleteAnalyticsView(ctx context.Context, id string, metrics map[string]any, computedAt time.Time) error

	// Role assignments
	SaveUserRole(ctx context.Context, userID string, role model.Role) error
	GetActiveRoles(ctx context.Context, userID string) ([]model.Role, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RoleProvider is the identity collaborator: it reports the active roles a
// user currently holds.
type RoleProvider interface {
	GetActiveRoles(ctx context.Context, userID string) ([]model.Role, error)
}
