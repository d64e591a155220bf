package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitfield/ledgertags/internal/model"
)

func TestResolveUserID(t *testing.T) {
	tests := []struct {
		name       string
		tenantType model.TenantType
		tenantID   string
		userID     string
		expected   string
	}{
		{
			name:       "user tenant defaults to tenant id",
			tenantType: model.TenantTypeUser,
			tenantID:   "alice",
			userID:     "",
			expected:   "alice",
		},
		{
			name:       "explicit user wins over the default",
			tenantType: model.TenantTypeUser,
			tenantID:   "alice",
			userID:     "bob",
			expected:   "bob",
		},
		{
			name:       "organization tenant has no implicit user",
			tenantType: model.TenantTypeOrganization,
			tenantID:   "org-1",
			userID:     "",
			expected:   "",
		},
		{
			name:       "organization tenant with explicit user",
			tenantType: model.TenantTypeOrganization,
			tenantID:   "org-1",
			userID:     "alice",
			expected:   "alice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveUserID(tt.tenantType, tt.tenantID, tt.userID))
		})
	}
}

func TestParseFilters(t *testing.T) {
	t.Run("valid pairs", func(t *testing.T) {
		filters, err := parseFilters([]string{"user_id=alice", "org_id=123"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"user_id": "alice", "org_id": "123"}, filters)
	})

	t.Run("value may contain an equals sign", func(t *testing.T) {
		filters, err := parseFilters([]string{"note=a=b"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"note": "a=b"}, filters)
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := parseFilters([]string{"user_id"})
		require.Error(t, err)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := parseFilters([]string{"=alice"})
		require.Error(t, err)
	})
}
