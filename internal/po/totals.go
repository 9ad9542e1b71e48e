package po

// VATRate is the flat value-added tax rate applied to order subtotals.
const VATRate = 0.18

// TotalSummary is the result of a totals calculation over order line items.
type TotalSummary struct {
	Subtotal  float64 `json:"subtotal"`
	VATRate   float64 `json:"vatRate"`
	VATAmount float64 `json:"vatAmount"`
	Total     float64 `json:"total"`
}

// CalculateTotals sums the stored line totals and applies VAT.
//
// addVat=true appends VAT on top of the subtotal; addVat=false means the
// total equals the subtotal and no VAT amount is reported. The summation
// trusts each item's TotalPrice field; keeping it in sync with quantity and
// unit price is the caller's responsibility.
func CalculateTotals(items []OrderItem, addVat bool) TotalSummary {
	var subtotal float64
	for _, item := range items {
		subtotal += item.TotalPrice
	}

	summary := TotalSummary{Subtotal: subtotal, VATRate: VATRate}
	if addVat {
		summary.VATAmount = subtotal * VATRate
	}
	summary.Total = subtotal + summary.VATAmount
	return summary
}
