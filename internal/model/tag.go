package model

import "time"

// TagType indicates which dimension a tag describes.
type TagType string

// Tag type constants.
const (
	TagTypeUser         TagType = "USER"
	TagTypeOrganization TagType = "ORGANIZATION"
	TagTypeRole         TagType = "ROLE"
	TagTypeCategory     TagType = "CATEGORY"
	TagTypeCustom       TagType = "CUSTOM"
)

// Well-known tag keys.
const (
	TagKeyUserID         = "user_id"
	TagKeyOrgID          = "org_id"
	TagKeyRoleID         = "role_id"
	TagKeyClassification = "classification"
	TagKeyCategory       = "category"
)

// Tag is an immutable-once-created (key, value) label attached to a resource
// within a tenant. The 5-tuple (Type, Key, Value, ResourceType, ResourceID)
// uniquely identifies a tag; re-tagging the same dimension of a resource
// never produces a second row.
type Tag struct {
	CreatedAt    time.Time
	Metadata     map[string]any
	ID           string
	Key          string
	Value        string
	ResourceType string
	ResourceID   string
	TenantID     string
	Label        string
	Type         TagType
	TenantType   TenantType
	Priority     int
	IsActive     bool
}

// Role is a named role held by a user, as reported by the identity
// collaborator.
type Role struct {
	ID       string
	Name     string
	IsActive bool
}
