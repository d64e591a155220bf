package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitfield/ledgertags/internal/model"
	"github.com/mwhitfield/ledgertags/internal/testutil"
)

func testTag(resourceID, key, value string) *model.Tag {
	return &model.Tag{
		Type:         model.TagTypeCustom,
		Key:          key,
		Value:        value,
		ResourceType: "transaction",
		ResourceID:   resourceID,
		TenantType:   model.TenantTypeUser,
		TenantID:     "user-1",
	}
}

func TestGetOrCreateTag(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	t.Run("creates new tag with generated id", func(t *testing.T) {
		tag, isNew, err := store.GetOrCreateTag(ctx, testTag("txn-1", "project", "apollo"))
		require.NoError(t, err)
		assert.True(t, isNew)
		assert.NotEmpty(t, tag.ID)
		assert.True(t, tag.IsActive)
		assert.False(t, tag.CreatedAt.IsZero())
	})

	t.Run("duplicate tuple returns existing row", func(t *testing.T) {
		first, isNew, err := store.GetOrCreateTag(ctx, testTag("txn-2", "project", "apollo"))
		require.NoError(t, err)
		require.True(t, isNew)

		second, isNew, err := store.GetOrCreateTag(ctx, testTag("txn-2", "project", "apollo"))
		require.NoError(t, err)
		assert.False(t, isNew)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("same key different value is a new tag", func(t *testing.T) {
		first, _, err := store.GetOrCreateTag(ctx, testTag("txn-3", "project", "apollo"))
		require.NoError(t, err)

		second, isNew, err := store.GetOrCreateTag(ctx, testTag("txn-3", "project", "gemini"))
		require.NoError(t, err)
		assert.True(t, isNew)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("reactivates inactive duplicate", func(t *testing.T) {
		tag, _, err := store.GetOrCreateTag(ctx, testTag("txn-4", "project", "apollo"))
		require.NoError(t, err)
		require.NoError(t, store.DeactivateTag(ctx, tag.ID))

		revived, isNew, err := store.GetOrCreateTag(ctx, testTag("txn-4", "project", "apollo"))
		require.NoError(t, err)
		assert.False(t, isNew)
		assert.Equal(t, tag.ID, revived.ID)
		assert.True(t, revived.IsActive)
	})

	t.Run("metadata round trip", func(t *testing.T) {
		in := testTag("txn-5", "classification", "SALARY_INCOME")
		in.Type = model.TagTypeCategory
		in.Metadata = map[string]any{"auto_generated": true, "classifier_version": "1.0"}

		created, _, err := store.GetOrCreateTag(ctx, in)
		require.NoError(t, err)

		tags, err := store.GetResourceTags(ctx, "transaction", "txn-5", model.TenantTypeUser, "user-1", nil)
		require.NoError(t, err)
		require.Len(t, tags, 1)
		assert.Equal(t, created.ID, tags[0].ID)
		assert.Equal(t, true, tags[0].Metadata["auto_generated"])
		assert.Equal(t, "1.0", tags[0].Metadata["classifier_version"])
	})

	t.Run("rejects missing value", func(t *testing.T) {
		bad := testTag("txn-6", "project", "")
		_, _, err := store.GetOrCreateTag(ctx, bad)
		require.Error(t, err)
	})

	t.Run("rejects invalid tenant type", func(t *testing.T) {
		bad := testTag("txn-7", "project", "apollo")
		bad.TenantType = "team"
		_, _, err := store.GetOrCreateTag(ctx, bad)
		require.Error(t, err)
	})
}

func TestGetResourceTags(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	userTag := testTag("txn-1", "user_id", "alice")
	userTag.Type = model.TagTypeUser
	userTag.Priority = 5
	_, _, err := store.GetOrCreateTag(ctx, userTag)
	require.NoError(t, err)

	roleTag := testTag("txn-1", "role_id", "admin")
	roleTag.Type = model.TagTypeRole
	_, _, err = store.GetOrCreateTag(ctx, roleTag)
	require.NoError(t, err)

	t.Run("returns all active tags", func(t *testing.T) {
		tags, err := store.GetResourceTags(ctx, "transaction", "txn-1", model.TenantTypeUser, "user-1", nil)
		require.NoError(t, err)
		assert.Len(t, tags, 2)
	})

	t.Run("orders by priority descending", func(t *testing.T) {
		tags, err := store.GetResourceTags(ctx, "transaction", "txn-1", model.TenantTypeUser, "user-1", nil)
		require.NoError(t, err)
		require.Len(t, tags, 2)
		assert.Equal(t, "user_id", tags[0].Key)
	})

	t.Run("filters by tag type", func(t *testing.T) {
		tags, err := store.GetResourceTags(ctx, "transaction", "txn-1", model.TenantTypeUser, "user-1",
			[]model.TagType{model.TagTypeRole})
		require.NoError(t, err)
		require.Len(t, tags, 1)
		assert.Equal(t, model.TagTypeRole, tags[0].Type)
	})

	t.Run("excludes deactivated tags", func(t *testing.T) {
		tag, _, err := store.GetOrCreateTag(ctx, testTag("txn-1", "temp", "x"))
		require.NoError(t, err)
		require.NoError(t, store.DeactivateTag(ctx, tag.ID))

		tags, err := store.GetResourceTags(ctx, "transaction", "txn-1", model.TenantTypeUser, "user-1", nil)
		require.NoError(t, err)
		for _, got := range tags {
			assert.NotEqual(t, tag.ID, got.ID)
		}
	})

	t.Run("unknown resource yields empty list", func(t *testing.T) {
		tags, err := store.GetResourceTags(ctx, "transaction", "nope", model.TenantTypeUser, "user-1", nil)
		require.NoError(t, err)
		assert.Empty(t, tags)
	})
}

func TestFindTaggedResources(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	for _, resourceID := range []string{"txn-1", "txn-2", "txn-3"} {
		tag := testTag(resourceID, "user_id", "alice")
		tag.Type = model.TagTypeUser
		_, _, err := store.GetOrCreateTag(ctx, tag)
		require.NoError(t, err)
	}
	other := testTag("txn-9", "user_id", "bob")
	other.Type = model.TagTypeUser
	_, _, err := store.GetOrCreateTag(ctx, other)
	require.NoError(t, err)

	t.Run("returns matching resource ids", func(t *testing.T) {
		ids, err := store.FindTaggedResources(ctx, "transaction", model.TenantTypeUser, "user-1", "user_id", "alice")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"txn-1", "txn-2", "txn-3"}, ids)
	})

	t.Run("no matches yields empty list", func(t *testing.T) {
		ids, err := store.FindTaggedResources(ctx, "transaction", model.TenantTypeUser, "user-1", "user_id", "carol")
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("deactivated tags do not match", func(t *testing.T) {
		tag, _, err := store.GetOrCreateTag(ctx, testTag("txn-10", "user_id", "dave"))
		require.NoError(t, err)
		require.NoError(t, store.DeactivateTag(ctx, tag.ID))

		ids, err := store.FindTaggedResources(ctx, "transaction", model.TenantTypeUser, "user-1", "user_id", "dave")
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestDeactivateTag(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	t.Run("unknown tag id errors", func(t *testing.T) {
		err := store.DeactivateTag(ctx, "does-not-exist")
		require.Error(t, err)
	})
}
