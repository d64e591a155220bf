package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateHash(t *testing.T) {
	base := Transaction{
		Date:        time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "WHOLE FOODS",
		Amount:      decimal.RequireFromString("-42.50"),
		AccountID:   "acct-1",
	}

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, base.GenerateHash(), base.GenerateHash())
	})

	t.Run("time of day does not affect the hash", func(t *testing.T) {
		other := base
		other.Date = base.Date.Add(5 * time.Hour)
		assert.Equal(t, base.GenerateHash(), other.GenerateHash())
	})

	t.Run("amount changes the hash", func(t *testing.T) {
		other := base
		other.Amount = decimal.RequireFromString("-42.51")
		assert.NotEqual(t, base.GenerateHash(), other.GenerateHash())
	})

	t.Run("trailing zeros are normalized", func(t *testing.T) {
		other := base
		other.Amount = decimal.RequireFromString("-42.5")
		assert.Equal(t, base.GenerateHash(), other.GenerateHash())
	})

	t.Run("account changes the hash", func(t *testing.T) {
		other := base
		other.AccountID = "acct-2"
		assert.NotEqual(t, base.GenerateHash(), other.GenerateHash())
	})
}

func TestTenantTypeValidate(t *testing.T) {
	require.NoError(t, TenantTypeUser.Validate())
	require.NoError(t, TenantTypeOrganization.Validate())
	require.Error(t, TenantType("team").Validate())
	require.Error(t, TenantType("").Validate())
}

func TestBudgetHelpers(t *testing.T) {
	b := Budget{
		TotalAmount: decimal.NewFromInt(500),
		SpentAmount: decimal.NewFromInt(400),
	}
	assert.Equal(t, "100", b.Remaining().String())
	assert.False(t, b.IsOverBudget())

	b.SpentAmount = decimal.NewFromInt(600)
	assert.True(t, b.Remaining().IsNegative())
	assert.True(t, b.IsOverBudget())
}
