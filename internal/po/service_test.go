package po_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/procura-erp/procura/internal/po"
	"github.com/procura-erp/procura/internal/po/filestore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) (*po.Service, po.Store) {
	t.Helper()
	store, err := filestore.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	svc := po.NewService(store, testLogger())
	require.NoError(t, svc.Load(context.Background()))
	return svc, store
}

// seedMasterdata creates one supplier, one product under it, one company and
// one budget, returning them for reference checks.
func seedMasterdata(t *testing.T, svc *po.Service) (po.Supplier, po.Product, po.Company, po.Budget) {
	t.Helper()
	ctx := context.Background()

	supplier, err := svc.AddSupplier(ctx, po.CreateSupplierRequest{
		Name:          "Acme Computing",
		ContactPerson: "Rina Levi",
		Phone:         "03-1234567",
	})
	require.NoError(t, err)

	product, err := svc.AddProduct(ctx, po.CreateProductRequest{
		Name:       "Laptop",
		SKU:        "LPT-01",
		Currency:   po.CurrencyILS,
		SupplierID: supplier.ID,
		Price:      100,
	})
	require.NoError(t, err)

	company, err := svc.AddCompany(ctx, po.CreateCompanyRequest{
		Name:         "HQ Holdings",
		PaymentTerms: "Net 60",
	})
	require.NoError(t, err)

	budget, err := svc.AddBudget(ctx, po.CreateBudgetRequest{
		Code: 500,
		Type: po.BudgetTypeExpenses,
	})
	require.NoError(t, err)

	return supplier, product, company, budget
}

func TestSupplierIDAssignment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.AddSupplier(ctx, po.CreateSupplierRequest{Name: "A"})
	require.NoError(t, err)
	require.Equal(t, int64(1), first.ID)

	second, err := svc.AddSupplier(ctx, po.CreateSupplierRequest{Name: "B"})
	require.NoError(t, err)
	require.Equal(t, int64(2), second.ID)

	// Deleting the highest id frees it for reuse: max(existing)+1.
	ok, err := svc.DeleteSupplier(ctx, second.ID)
	require.NoError(t, err)
	require.True(t, ok)

	third, err := svc.AddSupplier(ctx, po.CreateSupplierRequest{Name: "C"})
	require.NoError(t, err)
	require.Equal(t, int64(2), third.ID)
}

func TestDeleteSupplierIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seedMasterdata(t, svc)

	before, err := svc.ListSuppliers(ctx)
	require.NoError(t, err)

	ok, err := svc.DeleteSupplier(ctx, 9999)
	require.NoError(t, err)
	require.False(t, ok)

	after, err := svc.ListSuppliers(ctx)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestDeleteSupplierKeepsProducts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	supplier, product, _, _ := seedMasterdata(t, svc)

	ok, err := svc.DeleteSupplier(ctx, supplier.ID)
	require.NoError(t, err)
	require.True(t, ok)

	kept, err := svc.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, supplier.ID, kept.SupplierID)
}

func TestBudgetCodeUniqueness(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	name := "Ops"
	first, err := svc.AddBudget(ctx, po.CreateBudgetRequest{Code: 100, Type: po.BudgetTypeExpenses, Name: &name})
	require.NoError(t, err)

	_, err = svc.AddBudget(ctx, po.CreateBudgetRequest{Code: 100, Type: po.BudgetTypeInvestments})
	require.ErrorIs(t, err, po.ErrDuplicateBudgetCode)

	kept, err := svc.GetBudget(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, first, kept)

	budgets, err := svc.ListBudgets(ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
}

func TestUpdateProductMergeSemantics(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, product, _, _ := seedMasterdata(t, svc)

	price := 50.0
	updated, err := svc.UpdateProduct(ctx, product.ID, po.ProductPatch{Price: &price})
	require.NoError(t, err)

	require.Equal(t, 50.0, updated.Price)
	require.Equal(t, product.Name, updated.Name)
	require.Equal(t, product.SKU, updated.SKU)
	require.Equal(t, product.Description, updated.Description)
	require.Equal(t, product.Currency, updated.Currency)
	require.Equal(t, product.SupplierID, updated.SupplierID)
}

func TestCreateOrderEndToEnd(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	supplier, product, company, budget := seedMasterdata(t, svc)

	order, err := svc.CreateOrder(ctx, po.CreateOrderRequest{
		SupplierID: supplier.ID,
		CompanyID:  company.ID,
		BudgetCode: budget.Code,
		AddVAT:     true,
		Items:      []po.CreateOrderItemRequest{{ProductID: product.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	year := time.Now().Year()
	require.Equal(t, fmt.Sprintf("%d-1", year), order.OrderNumber)
	require.Equal(t, "order-"+order.OrderNumber, order.ID)
	require.Equal(t, po.OrderStatusDraft, order.Status)

	// Denormalized snapshots.
	require.Equal(t, supplier.Name, order.SupplierName)
	require.Equal(t, supplier.ContactPerson, order.SupplierContact)
	require.Equal(t, supplier.Phone, order.SupplierPhone)
	require.Equal(t, company.Name, order.CompanyName)
	require.Equal(t, budget.Type, order.BudgetType)
	require.Equal(t, company.PaymentTerms, order.PaymentTerms)

	require.Len(t, order.Items, 1)
	require.Equal(t, 300.0, order.Items[0].TotalPrice)
	require.Equal(t, product.Name, order.Items[0].ProductName)
	require.NotEmpty(t, order.Items[0].ID)

	require.Equal(t, 300.0, order.Subtotal)
	require.InDelta(t, 54.0, order.VATAmount, 1e-9)
	require.InDelta(t, 354.0, order.Total, 1e-9)
	require.Equal(t, po.VATRate, order.VATRate)
}

func TestOrderNumberSequence(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	supplier, product, company, budget := seedMasterdata(t, svc)

	req := po.CreateOrderRequest{
		SupplierID: supplier.ID,
		CompanyID:  company.ID,
		BudgetCode: budget.Code,
		Items:      []po.CreateOrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	}

	year := time.Now().Year()
	first, err := svc.CreateOrder(ctx, req)
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("%d-1", year), first.OrderNumber)

	second, err := svc.CreateOrder(ctx, req)
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("%d-2", year), second.OrderNumber)

	next, err := svc.NextOrderNumber(ctx)
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("%d-3", year), next)
}

func TestCreateOrderDuplicateNumber(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	supplier, product, company, budget := seedMasterdata(t, svc)

	req := po.CreateOrderRequest{
		SupplierID: supplier.ID,
		CompanyID:  company.ID,
		BudgetCode: budget.Code,
		Items:      []po.CreateOrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	}
	first, err := svc.CreateOrder(ctx, req)
	require.NoError(t, err)

	forced := req
	forced.OrderNumber = &first.OrderNumber
	_, err = svc.CreateOrder(ctx, forced)
	require.ErrorIs(t, err, po.ErrDuplicateOrderNumber)

	orders, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
}

func TestIssuedNumberSkipsManuallyMinted(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	supplier, product, company, budget := seedMasterdata(t, svc)

	year := time.Now().Year()
	manual := fmt.Sprintf("%d-1", year)
	req := po.CreateOrderRequest{
		OrderNumber: &manual,
		SupplierID:  supplier.ID,
		CompanyID:   company.ID,
		BudgetCode:  budget.Code,
		Items:       []po.CreateOrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	}
	_, err := svc.CreateOrder(ctx, req)
	require.NoError(t, err)

	// The counter has never issued 1, but scanning must skip past it.
	auto := req
	auto.OrderNumber = nil
	order, err := svc.CreateOrder(ctx, auto)
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("%d-2", year), order.OrderNumber)
}

func TestUpdateOrderRecomputesTotals(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	supplier, product, company, budget := seedMasterdata(t, svc)

	order, err := svc.CreateOrder(ctx, po.CreateOrderRequest{
		SupplierID: supplier.ID,
		CompanyID:  company.ID,
		BudgetCode: budget.Code,
		AddVAT:     true,
		Items:      []po.CreateOrderItemRequest{{ProductID: product.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	items := []po.OrderItem{{
		ProductID:   product.ID,
		ProductName: product.Name,
		SKU:         product.SKU,
		Quantity:    5,
		UnitPrice:   20,
	}}
	updated, err := svc.UpdateOrder(ctx, order.ID, po.OrderPatch{Items: &items})
	require.NoError(t, err)

	require.Len(t, updated.Items, 1)
	require.Equal(t, 100.0, updated.Items[0].TotalPrice)
	require.NotEmpty(t, updated.Items[0].ID)
	require.Equal(t, 100.0, updated.Subtotal)
	require.InDelta(t, 18.0, updated.VATAmount, 1e-9)
	require.InDelta(t, 118.0, updated.Total, 1e-9)
	require.False(t, updated.UpdatedAt.Before(order.UpdatedAt))

	// Flipping the VAT flag alone recomputes from the stored items.
	addVat := false
	flipped, err := svc.UpdateOrder(ctx, order.ID, po.OrderPatch{AddVAT: &addVat})
	require.NoError(t, err)
	require.Equal(t, 100.0, flipped.Subtotal)
	require.Zero(t, flipped.VATAmount)
	require.Equal(t, 100.0, flipped.Total)

	// Unchanged fields survive the merges.
	require.Equal(t, order.OrderNumber, flipped.OrderNumber)
	require.Equal(t, order.SupplierName, flipped.SupplierName)
}

func TestUpdateOrderStatusOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	supplier, product, company, budget := seedMasterdata(t, svc)

	order, err := svc.CreateOrder(ctx, po.CreateOrderRequest{
		SupplierID: supplier.ID,
		CompanyID:  company.ID,
		BudgetCode: budget.Code,
		AddVAT:     true,
		Items:      []po.CreateOrderItemRequest{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	status := po.OrderStatusSent
	updated, err := svc.UpdateOrder(ctx, order.ID, po.OrderPatch{Status: &status})
	require.NoError(t, err)
	require.Equal(t, po.OrderStatusSent, updated.Status)
	require.Equal(t, order.Subtotal, updated.Subtotal)
	require.Equal(t, order.Total, updated.Total)
}

func TestCreateOrderDanglingReference(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	supplier, product, company, _ := seedMasterdata(t, svc)

	_, err := svc.CreateOrder(ctx, po.CreateOrderRequest{
		SupplierID: supplier.ID,
		CompanyID:  company.ID,
		BudgetCode: 9999,
		Items:      []po.CreateOrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, po.ErrNotFound)

	orders, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestListOrdersNewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	supplier, product, company, budget := seedMasterdata(t, svc)

	older := time.Now().Add(-48 * time.Hour)
	newer := time.Now()
	for _, date := range []time.Time{older, newer} {
		d := date
		_, err := svc.CreateOrder(ctx, po.CreateOrderRequest{
			Date:       &d,
			SupplierID: supplier.ID,
			CompanyID:  company.ID,
			BudgetCode: budget.Code,
			Items:      []po.CreateOrderItemRequest{{ProductID: product.ID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	orders, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.True(t, orders[0].Date.After(orders[1].Date))
}

func TestSnapshotTracksWrites(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	supplier, product, company, budget := seedMasterdata(t, svc)

	order, err := svc.CreateOrder(ctx, po.CreateOrderRequest{
		SupplierID: supplier.ID,
		CompanyID:  company.ID,
		BudgetCode: budget.Code,
		Items:      []po.CreateOrderItemRequest{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	snap := svc.Snapshot()
	require.Equal(t, []po.Supplier{supplier}, snap.Suppliers)
	require.Equal(t, []po.Product{product}, snap.Products)
	require.Equal(t, []po.Company{company}, snap.Companies)
	require.Equal(t, []po.Budget{budget}, snap.Budgets)
	require.Len(t, snap.Orders, 1)
	require.Equal(t, order.ID, snap.Orders[0].ID)

	// The snapshot is a copy: mutating it must not leak back.
	snap.Suppliers[0].Name = "mutated"
	snap.Orders[0].Items[0].Quantity = 99
	again := svc.Snapshot()
	require.Equal(t, supplier.Name, again.Suppliers[0].Name)
	require.Equal(t, int64(2), again.Orders[0].Items[0].Quantity)
}

// flakyStore fails collection reads on demand to exercise the
// write-succeeded-refresh-failed path.
type flakyStore struct {
	po.Store
	failLists bool
}

var errListDown = errors.New("list backend down")

func (f *flakyStore) ListSuppliers(ctx context.Context) ([]po.Supplier, error) {
	if f.failLists {
		return nil, errListDown
	}
	return f.Store.ListSuppliers(ctx)
}

func TestStaleViewAfterWrite(t *testing.T) {
	inner, err := filestore.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	flaky := &flakyStore{Store: inner}
	svc := po.NewService(flaky, testLogger())
	require.NoError(t, svc.Load(context.Background()))

	flaky.failLists = true
	created, err := svc.AddSupplier(context.Background(), po.CreateSupplierRequest{Name: "Acme"})

	var stale *po.StaleViewError
	require.ErrorAs(t, err, &stale)
	require.ErrorIs(t, err, errListDown)
	require.Equal(t, int64(1), created.ID, "write must have committed")

	got, gerr := inner.GetSupplier(context.Background(), created.ID)
	require.NoError(t, gerr)
	require.Equal(t, "Acme", got.Name)
}
