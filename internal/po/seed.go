package po

import (
	"context"
	"fmt"
	"log/slog"
)

// EnsureSeedData writes the initial masterdata set when the store is empty.
// Idempotent: a store that already has suppliers is left alone. Runs at
// startup before the facade's initial Load, outside its transactional
// guarantees.
func EnsureSeedData(ctx context.Context, store Store, logger *slog.Logger) error {
	suppliers, err := store.ListSuppliers(ctx)
	if err != nil {
		return fmt.Errorf("seed check: %w", err)
	}
	if len(suppliers) > 0 {
		return nil
	}
	if logger != nil {
		logger.Info("seeding initial data")
	}
	if err := store.SeedState(ctx, SeedState()); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}

// SeedState is the dataset written into an empty store.
func SeedState() State {
	str := func(v string) *string { return &v }
	return State{
		Suppliers: []Supplier{
			{ID: 1, Name: "TechSource Ltd", ContactPerson: "Dana Peretz", Phone: "03-5551234", Email: str("dana@techsource.example")},
			{ID: 2, Name: "OfficePro Supplies", ContactPerson: "Yossi Mor", Phone: "09-7775678"},
		},
		Products: []Product{
			{ID: "prod-1001", Name: "27\" Monitor", SKU: "MON-27", Description: "27 inch IPS monitor", Currency: CurrencyILS, SupplierID: 1, Price: 899},
			{ID: "prod-1002", Name: "Docking Station", SKU: "DOCK-USBC", Description: "USB-C docking station", Currency: CurrencyUSD, SupplierID: 1, Price: 129},
			{ID: "prod-1003", Name: "Office Chair", SKU: "CHR-ERGO", Description: "Ergonomic office chair", Currency: CurrencyILS, SupplierID: 2, Price: 1250},
		},
		Companies: []Company{
			{
				ID:                 "comp-1",
				Name:               "Procura Holdings",
				RegistrationNumber: "514000001",
				PaymentTerms:       "Net 30",
				WarrantyOptions:    []string{"12 months", "24 months"},
			},
		},
		Budgets: []Budget{
			{Code: 100, Type: BudgetTypeExpenses, Name: str("General expenses")},
			{Code: 200, Type: BudgetTypeInvestments, Name: str("Equipment")},
		},
		OrderCounters: map[int]int64{},
	}
}
