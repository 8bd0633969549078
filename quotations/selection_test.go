package quotations_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	errs "github.com/techcorp/partsquote/internal/errors"
	"github.com/techcorp/partsquote/quotations"
)

func entry(part, vendor string, qty int, unit, freight float64) quotations.SelectionEntry {
	return quotations.SelectionEntry{
		PartName:    part,
		VendorID:    vendor,
		VendorName:  vendor,
		Quantity:    qty,
		UnitPrice:   unit,
		FreightCost: freight,
	}
}

func TestSelectionToggle(t *testing.T) {
	t.Run("one vendor per part", func(t *testing.T) {
		s := quotations.NewSelection(quotations.StatusOpen)

		require.NoError(t, s.Toggle(entry("Pastilha", "v-disk", 2, 245, 0), true))
		require.NoError(t, s.Toggle(entry("Pastilha", "v-auto", 2, 250, 25), true))

		require.Equal(t, 1, s.Len())
		require.False(t, s.Selected("Pastilha", "v-disk"))
		require.True(t, s.Selected("Pastilha", "v-auto"))
	})

	t.Run("different parts may come from different vendors", func(t *testing.T) {
		s := quotations.NewSelection(quotations.StatusOpen)

		require.NoError(t, s.Toggle(entry("Pastilha", "v-disk", 2, 245, 0), true))
		require.NoError(t, s.Toggle(entry("Filtro", "v-auto", 1, 35, 25), true))

		require.Equal(t, 2, s.Len())
		require.True(t, s.Selected("Pastilha", "v-disk"))
		require.True(t, s.Selected("Filtro", "v-auto"))
	})

	t.Run("uncheck removes only the holding vendor", func(t *testing.T) {
		s := quotations.NewSelection(quotations.StatusOpen)
		require.NoError(t, s.Toggle(entry("Pastilha", "v-disk", 2, 245, 0), true))

		require.NoError(t, s.Toggle(entry("Pastilha", "v-auto", 2, 250, 25), false))
		require.True(t, s.Selected("Pastilha", "v-disk"))

		require.NoError(t, s.Toggle(entry("Pastilha", "v-disk", 2, 245, 0), false))
		require.Equal(t, 0, s.Len())
	})

	t.Run("rechecking the same vendor does not duplicate", func(t *testing.T) {
		s := quotations.NewSelection(quotations.StatusOpen)
		e := entry("Pastilha", "v-disk", 2, 245, 0)
		require.NoError(t, s.Toggle(e, true))
		require.NoError(t, s.Toggle(e, true))
		require.Equal(t, 1, s.Len())
	})

	t.Run("frozen unless the quotation is open", func(t *testing.T) {
		for _, status := range []quotations.Status{
			quotations.StatusOrderConfirmed,
			quotations.StatusCompleted,
			quotations.StatusCancelled,
		} {
			s := quotations.NewSelection(status)
			err := s.Toggle(entry("Pastilha", "v-disk", 2, 245, 0), true)
			require.ErrorIs(t, err, errs.ErrQuotationNotOpen)
			require.Equal(t, 0, s.Len())
		}
	})
}

func TestSelectionDisabled(t *testing.T) {
	s := quotations.NewSelection(quotations.StatusOpen)
	require.NoError(t, s.Toggle(entry("Pastilha", "v-disk", 2, 245, 0), true))

	require.False(t, s.Disabled("Pastilha", "v-disk"))
	require.True(t, s.Disabled("Pastilha", "v-auto"))
	require.False(t, s.Disabled("Filtro", "v-auto"))

	frozen := quotations.NewSelection(quotations.StatusCompleted)
	require.True(t, frozen.Disabled("Pastilha", "v-disk"))
}

func TestSelectionTotal(t *testing.T) {
	t.Run("freight counted once per vendor", func(t *testing.T) {
		s := quotations.NewSelection(quotations.StatusOpen)
		require.NoError(t, s.Toggle(entry("Pastilha", "v-auto", 2, 250, 25), true))
		require.NoError(t, s.Toggle(entry("Filtro", "v-auto", 1, 35, 25), true))
		require.NoError(t, s.Toggle(entry("Vela", "v-disk", 4, 18, 10), true))

		// v-auto: 500 + 35 + 25, v-disk: 72 + 10
		require.InDelta(t, 642, s.Total(), 1e-9)
	})

	t.Run("empty selection totals zero", func(t *testing.T) {
		s := quotations.NewSelection(quotations.StatusOpen)
		require.Zero(t, s.Total())
	})

	t.Run("total tracks replacement", func(t *testing.T) {
		s := quotations.NewSelection(quotations.StatusOpen)
		require.NoError(t, s.Toggle(entry("Pastilha", "v-disk", 2, 245, 0), true))
		require.InDelta(t, 490, s.Total(), 1e-9)

		require.NoError(t, s.Toggle(entry("Pastilha", "v-auto", 2, 250, 25), true))
		require.InDelta(t, 525, s.Total(), 1e-9)
	})
}
