package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryFirstMatchWins(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddClassificationPattern("FIRST", `alpha`))
	require.NoError(t, r.AddClassificationPattern("SECOND", `alpha|beta`))

	label, ok := r.matchClassification("contains alpha")
	require.True(t, ok)
	assert.Equal(t, "FIRST", label, "earlier label must win when both match")

	label, ok = r.matchClassification("contains beta")
	require.True(t, ok)
	assert.Equal(t, "SECOND", label)
}

func TestRegistryPreservesInsertionOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddCategoryPattern("B_LABEL", `b`))
	require.NoError(t, r.AddCategoryPattern("A_LABEL", `a`))
	require.NoError(t, r.AddCategoryPattern("B_LABEL", `bb`))

	snapshot := r.CategoryPatterns()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "B_LABEL", snapshot[0].Label)
	assert.Equal(t, []string{`b`, `bb`}, snapshot[0].Patterns)
	assert.Equal(t, "A_LABEL", snapshot[1].Label)
}

func TestRegistryCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddClassificationPattern("LABEL", `Netflix`))

	_, ok := r.matchClassification("NETFLIX.COM CHARGE")
	assert.True(t, ok)

	// Already-prefixed patterns are not double-prefixed.
	require.NoError(t, r.AddClassificationPattern("OTHER", `(?i)spotify`))
	_, ok = r.matchClassification("Spotify USA")
	assert.True(t, ok)
}

func TestRegistryInvalidPattern(t *testing.T) {
	r := NewRegistry()
	err := r.AddClassificationPattern("BAD", `[unclosed`)
	require.Error(t, err)

	// A failed add must not register the label.
	assert.Empty(t, r.ClassificationPatterns())
}

func TestRegistryEmptyText(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddClassificationPattern("LABEL", `.*`))

	_, ok := r.matchClassification("")
	assert.False(t, ok, "empty text never matches")
}

func TestDefaultRegistrySeeded(t *testing.T) {
	r := DefaultRegistry()
	assert.NotEmpty(t, r.ClassificationPatterns())
	assert.NotEmpty(t, r.CategoryPatterns())

	label, ok := r.matchCategory("WHOLE FOODS MARKET")
	require.True(t, ok)
	assert.Equal(t, "GROCERIES", label)
}
