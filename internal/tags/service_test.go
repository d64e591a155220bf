package tags_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitfield/ledgertags/internal/common"
	"github.com/mwhitfield/ledgertags/internal/model"
	"github.com/mwhitfield/ledgertags/internal/service"
	"github.com/mwhitfield/ledgertags/internal/tags"
	"github.com/mwhitfield/ledgertags/internal/testutil"
)

func TestCreateTag(t *testing.T) {
	store := testutil.SetupTestDB(t)
	svc := tags.NewService(store)
	ctx := context.Background()

	params := tags.CreateTagParams{
		Type:         model.TagTypeCustom,
		Key:          "project",
		Value:        "apollo",
		ResourceType: "transaction",
		ResourceID:   "txn-1",
		TenantType:   model.TenantTypeUser,
		TenantID:     "user-1",
		Label:        "Project Apollo",
	}

	t.Run("creates a tag", func(t *testing.T) {
		tag, err := svc.CreateTag(ctx, params)
		require.NoError(t, err)
		assert.NotEmpty(t, tag.ID)
		assert.Equal(t, "Project Apollo", tag.Label)
		assert.True(t, tag.IsActive)
	})

	t.Run("duplicate create returns the existing tag", func(t *testing.T) {
		first, err := svc.CreateTag(ctx, params)
		require.NoError(t, err)

		second, err := svc.CreateTag(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		// Only one row exists for the tuple.
		all, err := svc.ResourceTags(ctx, "transaction", "txn-1", model.TenantTypeUser, "user-1")
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("invalid tenant type", func(t *testing.T) {
		bad := params
		bad.TenantType = "team"
		_, err := svc.CreateTag(ctx, bad)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrValidation)
	})
}

func TestCreateDimensionTags(t *testing.T) {
	store := testutil.SetupTestDB(t)
	svc := tags.NewService(store)
	ctx := context.Background()

	t.Run("user tag with default label", func(t *testing.T) {
		tag, err := svc.CreateUserTag(ctx, "transaction", "txn-1", model.TenantTypeUser, "user-1", "alice", "")
		require.NoError(t, err)
		assert.Equal(t, model.TagTypeUser, tag.Type)
		assert.Equal(t, model.TagKeyUserID, tag.Key)
		assert.Equal(t, "alice", tag.Value)
		assert.Equal(t, "User alice", tag.Label)
	})

	t.Run("organization tag", func(t *testing.T) {
		tag, err := svc.CreateOrganizationTag(ctx, "transaction", "txn-1", model.TenantTypeOrganization, "org-1", "org-1", "Acme")
		require.NoError(t, err)
		assert.Equal(t, model.TagTypeOrganization, tag.Type)
		assert.Equal(t, "Acme", tag.Label)
	})

	t.Run("role tag with default label", func(t *testing.T) {
		tag, err := svc.CreateRoleTag(ctx, "transaction", "txn-1", model.TenantTypeUser, "user-1", "admin", "")
		require.NoError(t, err)
		assert.Equal(t, model.TagTypeRole, tag.Type)
		assert.Equal(t, "Role admin", tag.Label)
	})
}

func TestTaggedResources(t *testing.T) {
	store := testutil.SetupTestDB(t)
	svc := tags.NewService(store)
	ctx := context.Background()

	// txn-1 and txn-2 belong to alice; only txn-2 also carries org 123.
	_, err := svc.CreateUserTag(ctx, "transaction", "txn-1", model.TenantTypeUser, "user-1", "alice", "")
	require.NoError(t, err)
	_, err = svc.CreateUserTag(ctx, "transaction", "txn-2", model.TenantTypeUser, "user-1", "alice", "")
	require.NoError(t, err)
	_, err = svc.CreateOrganizationTag(ctx, "transaction", "txn-2", model.TenantTypeUser, "user-1", "123", "")
	require.NoError(t, err)
	_, err = svc.CreateUserTag(ctx, "transaction", "txn-3", model.TenantTypeUser, "user-1", "bob", "")
	require.NoError(t, err)

	t.Run("single filter", func(t *testing.T) {
		ids, err := svc.TaggedResources(ctx, service.TagFilters{"user_id": "alice"}, "transaction", model.TenantTypeUser, "user-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"txn-1", "txn-2"}, ids)
	})

	t.Run("multiple filters intersect", func(t *testing.T) {
		ids, err := svc.TaggedResources(ctx, service.TagFilters{
			"user_id": "alice",
			"org_id":  "123",
		}, "transaction", model.TenantTypeUser, "user-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"txn-2"}, ids)
	})

	t.Run("disjoint filters yield empty intersection", func(t *testing.T) {
		ids, err := svc.TaggedResources(ctx, service.TagFilters{
			"user_id": "bob",
			"org_id":  "123",
		}, "transaction", model.TenantTypeUser, "user-1")
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("empty filter map yields empty result", func(t *testing.T) {
		ids, err := svc.TaggedResources(ctx, service.TagFilters{}, "transaction", model.TenantTypeUser, "user-1")
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("nonexistent value", func(t *testing.T) {
		ids, err := svc.TaggedResources(ctx, service.TagFilters{"user_id": "carol"}, "transaction", model.TenantTypeUser, "user-1")
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("invalid tenant type", func(t *testing.T) {
		_, err := svc.TaggedResources(ctx, service.TagFilters{"user_id": "alice"}, "transaction", "team", "user-1")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrValidation)
	})
}
