package po_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/procura-erp/procura/internal/po"
)

func item(qty int64, unitPrice float64) po.OrderItem {
	return po.OrderItem{
		ID:         "it",
		Quantity:   qty,
		UnitPrice:  unitPrice,
		TotalPrice: float64(qty) * unitPrice,
	}
}

func TestCalculateTotalsEmpty(t *testing.T) {
	for _, addVat := range []bool{false, true} {
		got := po.CalculateTotals(nil, addVat)
		require.Zero(t, got.Subtotal)
		require.Zero(t, got.VATAmount)
		require.Zero(t, got.Total)
		require.Equal(t, po.VATRate, got.VATRate)
	}
}

func TestCalculateTotalsWithoutVAT(t *testing.T) {
	items := []po.OrderItem{item(2, 10), item(1, 5.5), item(3, 99.9)}
	got := po.CalculateTotals(items, false)

	var want float64
	for _, it := range items {
		want += it.TotalPrice
	}
	require.Equal(t, want, got.Subtotal)
	require.Zero(t, got.VATAmount)
	require.Equal(t, want, got.Total)
}

func TestCalculateTotalsWithVAT(t *testing.T) {
	items := []po.OrderItem{item(3, 100)}
	got := po.CalculateTotals(items, true)

	require.Equal(t, 300.0, got.Subtotal)
	require.InDelta(t, 54.0, got.VATAmount, 1e-9)
	require.InDelta(t, 354.0, got.Total, 1e-9)
	require.Equal(t, got.Subtotal+got.VATAmount, got.Total)
}

func TestCalculateTotalsUsesStoredLineTotals(t *testing.T) {
	// The subtotal trusts TotalPrice even when it disagrees with
	// quantity * unitPrice; keeping them in sync is the caller's job.
	items := []po.OrderItem{{Quantity: 2, UnitPrice: 10, TotalPrice: 999}}
	got := po.CalculateTotals(items, false)
	require.Equal(t, 999.0, got.Subtotal)
}
