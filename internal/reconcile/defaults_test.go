package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winback/message-service/internal/types"
)

func TestExpandDefaultsCartesianCompleteness(t *testing.T) {
	products := []string{"com.app.monthly", "com.app.yearly", "com.app.weekly"}
	locales := []string{"en-US", "de-DE"}

	units := ExpandDefaults("m1", products, locales)
	require.Len(t, units, len(products)*len(locales))

	// Order is products-major, matching input order.
	assert.Equal(t, types.DefaultMutationUnit{MessageID: "m1", ProductID: "com.app.monthly", Locale: "en-US"}, units[0])
	assert.Equal(t, types.DefaultMutationUnit{MessageID: "m1", ProductID: "com.app.monthly", Locale: "de-DE"}, units[1])
	assert.Equal(t, types.DefaultMutationUnit{MessageID: "m1", ProductID: "com.app.weekly", Locale: "de-DE"}, units[5])

	seen := make(map[string]bool)
	for _, u := range units {
		seen[u.ProductID+"/"+u.Locale] = true
	}
	assert.Len(t, seen, 6, "every pair appears exactly once")
}

func TestExpandDefaultsLocaleDefault(t *testing.T) {
	units := ExpandDefaults("m1", []string{"com.app.monthly"}, nil)
	require.Len(t, units, 1)
	assert.Equal(t, "en-US", units[0].Locale)
}

func TestExpandDefaultsDeduplicates(t *testing.T) {
	units := ExpandDefaults("m1", []string{"p1", "p1"}, []string{"en-US", "en-US"})
	assert.Len(t, units, 1)
}

func TestExpandRowDefaults(t *testing.T) {
	row := types.ImportRow{
		Number: 3,
		Values: map[types.TargetField]string{
			types.FieldMessageID: "m1",
			types.FieldLocale:    "fr-FR",
			types.FieldProductID: "com.app.from-row",
		},
	}

	t.Run("cli products win over row product", func(t *testing.T) {
		units, reason := ExpandRowDefaults(row, []string{"com.app.a", "com.app.b"})
		require.Empty(t, reason)
		require.Len(t, units, 2)
		assert.Equal(t, "com.app.a", units[0].ProductID)
		assert.Equal(t, "fr-FR", units[0].Locale)
		assert.Equal(t, 3, units[0].RowNumber)
	})

	t.Run("row product used when no cli products", func(t *testing.T) {
		units, reason := ExpandRowDefaults(row, nil)
		require.Empty(t, reason)
		require.Len(t, units, 1)
		assert.Equal(t, "com.app.from-row", units[0].ProductID)
	})

	t.Run("missing product", func(t *testing.T) {
		bare := types.ImportRow{Values: map[types.TargetField]string{
			types.FieldMessageID: "m1",
			types.FieldLocale:    "fr-FR",
		}}
		_, reason := ExpandRowDefaults(bare, nil)
		assert.Contains(t, reason, "product_id")
	})

	t.Run("missing locale", func(t *testing.T) {
		bare := types.ImportRow{Values: map[types.TargetField]string{
			types.FieldMessageID: "m1",
			types.FieldProductID: "p1",
		}}
		_, reason := ExpandRowDefaults(bare, nil)
		assert.Contains(t, reason, "locale")
	})

	t.Run("missing id and locale reported together", func(t *testing.T) {
		bare := types.ImportRow{Values: map[types.TargetField]string{
			types.FieldProductID: "p1",
		}}
		units, reason := ExpandRowDefaults(bare, nil)
		assert.Nil(t, units)
		assert.Contains(t, reason, "message_id")
		assert.Contains(t, reason, "locale")
	})
}
