package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitfield/ledgertags/internal/storage"
	"github.com/mwhitfield/ledgertags/internal/testutil"
)

func TestMigrate(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, storage.ExpectedSchemaVersion, version)

	// Running migrations again is a no-op.
	require.NoError(t, store.Migrate(ctx))

	version, err = store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, storage.ExpectedSchemaVersion, version)
}
