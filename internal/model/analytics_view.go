package model

import "time"

// ComputationStatus tracks the lifecycle of a saved analytics view.
type ComputationStatus string

// Computation status constants.
const (
	StatusPending   ComputationStatus = "pending"
	StatusComputing ComputationStatus = "computing"
	StatusCompleted ComputationStatus = "completed"
	StatusFailed    ComputationStatus = "failed"
)

// AnalyticsView is a persisted tag-filter analysis. A refresh either fully
// replaces Metrics and marks the view completed, or marks it failed and
// leaves the prior metrics untouched.
type AnalyticsView struct {
	CreatedAt     time.Time
	LastComputed  time.Time
	PeriodStart   *time.Time
	PeriodEnd     *time.Time
	TagFilters    map[string]string
	Metrics       map[string]any
	ID            string
	Name          string
	ResourceTypes []string
	TenantID      string
	TenantType    TenantType
	Status        ComputationStatus
}
