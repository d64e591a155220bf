// Package model defines the core domain models used throughout the application.
package model

import "fmt"

// TenantType distinguishes an individual user's data from an organization's
// shared data.
type TenantType string

const (
	// TenantTypeUser scopes records to a single user.
	TenantTypeUser TenantType = "user"
	// TenantTypeOrganization scopes records to an organization.
	TenantTypeOrganization TenantType = "organization"
)

// Validate returns an error if the tenant type is not a known value.
func (t TenantType) Validate() error {
	switch t {
	case TenantTypeUser, TenantTypeOrganization:
		return nil
	default:
		return fmt.Errorf("invalid tenant type: %q", string(t))
	}
}
