package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitfield/ledgertags/internal/common"
	"github.com/mwhitfield/ledgertags/internal/model"
	"github.com/mwhitfield/ledgertags/internal/service"
	"github.com/mwhitfield/ledgertags/internal/testutil"
)

func testTransaction(id string, amount string, date time.Time) model.Transaction {
	d, _ := decimal.NewFromString(amount)
	return model.Transaction{
		ID:          id,
		Date:        date,
		Description: "test purchase " + id,
		Amount:      d,
		Currency:    "USD",
		Type:        model.TransactionTypeDebit,
		AccountID:   "acct-1",
		TenantType:  model.TenantTypeUser,
		TenantID:    "user-1",
	}
}

func userWindow() service.ResourceWindow {
	return service.ResourceWindow{
		TenantType: model.TenantTypeUser,
		TenantID:   "user-1",
	}
}

func TestSaveTransactions(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("saves a batch", func(t *testing.T) {
		err := store.SaveTransactions(ctx, []model.Transaction{
			testTransaction("txn-1", "-42.50", date),
			testTransaction("txn-2", "1500.00", date),
		})
		require.NoError(t, err)

		txn, err := store.GetTransactionByID(ctx, "txn-1")
		require.NoError(t, err)
		assert.Equal(t, "-42.5", txn.Amount.String())
		assert.Equal(t, "USD", txn.Currency)
	})

	t.Run("duplicate hash is skipped silently", func(t *testing.T) {
		dup := testTransaction("txn-1-reimport", "-42.50", date)
		dup.Description = "test purchase txn-1"
		require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{dup}))

		// The re-import carried a colliding hash, so the original row wins.
		_, err := store.GetTransactionByID(ctx, "txn-1-reimport")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("decimal precision survives storage", func(t *testing.T) {
		txn := testTransaction("txn-precise", "0.10", date.AddDate(0, 0, 1))
		require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{txn}))

		loaded, err := store.GetTransactionByID(ctx, "txn-precise")
		require.NoError(t, err)
		assert.True(t, loaded.Amount.Equal(decimal.RequireFromString("0.1")))
	})

	t.Run("empty slice is rejected", func(t *testing.T) {
		err := store.SaveTransactions(ctx, []model.Transaction{})
		require.Error(t, err)
	})

	t.Run("transaction without date is rejected", func(t *testing.T) {
		bad := testTransaction("txn-bad", "1.00", time.Time{})
		err := store.SaveTransactions(ctx, []model.Transaction{bad})
		require.Error(t, err)
	})
}

func TestGetTransactionByID(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	_, err := store.GetTransactionByID(ctx, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)

	var notFound *common.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "missing", notFound.ID)
}

func TestGetTransactionsByIDs(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{
		testTransaction("txn-jan", "-100.00", jan),
		testTransaction("txn-feb", "-200.00", feb),
		testTransaction("txn-mar", "-300.00", mar),
	}))

	t.Run("loads requested ids in date order", func(t *testing.T) {
		txns, err := store.GetTransactionsByIDs(ctx, []string{"txn-mar", "txn-jan"}, userWindow())
		require.NoError(t, err)
		require.Len(t, txns, 2)
		assert.Equal(t, "txn-jan", txns[0].ID)
		assert.Equal(t, "txn-mar", txns[1].ID)
	})

	t.Run("empty id list yields empty result", func(t *testing.T) {
		txns, err := store.GetTransactionsByIDs(ctx, nil, userWindow())
		require.NoError(t, err)
		assert.Empty(t, txns)
	})

	t.Run("window bounds are inclusive", func(t *testing.T) {
		window := userWindow()
		window.PeriodStart = &feb
		window.PeriodEnd = &feb

		txns, err := store.GetTransactionsByIDs(ctx, []string{"txn-jan", "txn-feb", "txn-mar"}, window)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, "txn-feb", txns[0].ID)
	})

	t.Run("other tenant sees nothing", func(t *testing.T) {
		window := service.ResourceWindow{TenantType: model.TenantTypeUser, TenantID: "user-2"}
		txns, err := store.GetTransactionsByIDs(ctx, []string{"txn-jan"}, window)
		require.NoError(t, err)
		assert.Empty(t, txns)
	})
}

func TestGetUnclassifiedTransactions(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()
	date := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{
		testTransaction("txn-a", "-10.00", date),
		testTransaction("txn-b", "-20.00", date.AddDate(0, 0, 1)),
	}))

	t.Run("all transactions start unclassified", func(t *testing.T) {
		txns, err := store.GetUnclassifiedTransactions(ctx, model.TenantTypeUser, "user-1")
		require.NoError(t, err)
		assert.Len(t, txns, 2)
	})

	t.Run("classification tag removes transaction from the set", func(t *testing.T) {
		tag := &model.Tag{
			Type:         model.TagTypeCategory,
			Key:          model.TagKeyClassification,
			Value:        string(model.ClassificationPersonalExpense),
			ResourceType: "transaction",
			ResourceID:   "txn-a",
			TenantType:   model.TenantTypeUser,
			TenantID:     "user-1",
		}
		_, _, err := store.GetOrCreateTag(ctx, tag)
		require.NoError(t, err)

		txns, err := store.GetUnclassifiedTransactions(ctx, model.TenantTypeUser, "user-1")
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, "txn-b", txns[0].ID)
	})
}
