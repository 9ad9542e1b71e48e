package po

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxNumberAttempts bounds the issue loop when the counter trails numbers
// that were minted manually.
const maxNumberAttempts = 100

// Service is the synchronization facade between UI-level callers and the
// Store. Every write is followed by a refetch of the affected collection
// into a guarded snapshot, so callers always observe a consistent view
// rather than an incrementally patched one. Writes are not coordinated
// between callers; overlapping updates to the same record are
// last-write-wins.
//
// When a write commits but the refetch fails, the write result is returned
// together with a *StaleViewError so callers can distinguish "failed" from
// "succeeded, view may be stale".
type Service struct {
	store  Store
	logger *slog.Logger

	mu    sync.RWMutex
	state State
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Load populates the snapshot with all five collections. Called once after
// construction, after any seeding has run.
func (s *Service) Load(ctx context.Context) error {
	suppliers, err := s.store.ListSuppliers(ctx)
	if err != nil {
		return fmt.Errorf("load suppliers: %w", err)
	}
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	companies, err := s.store.ListCompanies(ctx)
	if err != nil {
		return fmt.Errorf("load companies: %w", err)
	}
	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return fmt.Errorf("load budgets: %w", err)
	}
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	sortOrders(orders)

	s.mu.Lock()
	s.state = State{
		Suppliers: suppliers,
		Products:  products,
		Companies: companies,
		Budgets:   budgets,
		Orders:    orders,
	}
	s.mu.Unlock()
	return nil
}

// Snapshot returns a deep copy of the cached view state.
func (s *Service) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// ====== Suppliers ======

func (s *Service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return s.refreshSuppliers(ctx)
}

func (s *Service) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	return s.store.GetSupplier(ctx, id)
}

func (s *Service) AddSupplier(ctx context.Context, req CreateSupplierRequest) (Supplier, error) {
	created, err := s.store.AddSupplier(ctx, Supplier{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
	})
	if err != nil {
		return Supplier{}, fmt.Errorf("add supplier: %w", err)
	}
	return created, s.staleOnRefreshError("add supplier", s.refreshSuppliersErr(ctx))
}

func (s *Service) UpdateSupplier(ctx context.Context, id int64, patch SupplierPatch) (Supplier, error) {
	updated, err := s.store.UpdateSupplier(ctx, id, patch)
	if err != nil {
		return Supplier{}, fmt.Errorf("update supplier %d: %w", id, err)
	}
	return updated, s.staleOnRefreshError("update supplier", s.refreshSuppliersErr(ctx))
}

// DeleteSupplier is idempotent: a missing id reports ok=false with no error
// and leaves the collection untouched. Products owned by the supplier are
// not cascade-deleted, and historical orders keep their denormalized
// supplier fields.
func (s *Service) DeleteSupplier(ctx context.Context, id int64) (bool, error) {
	ok, err := s.store.DeleteSupplier(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete supplier %d: %w", id, err)
	}
	if !ok {
		return false, nil
	}
	return true, s.staleOnRefreshError("delete supplier", s.refreshSuppliersErr(ctx))
}

// ====== Products ======

func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	list, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.state.Products = list
	s.mu.Unlock()
	return append([]Product(nil), list...), nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *Service) AddProduct(ctx context.Context, req CreateProductRequest) (Product, error) {
	created, err := s.store.AddProduct(ctx, Product{
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		Currency:    req.Currency,
		SupplierID:  req.SupplierID,
		Price:       req.Price,
	})
	if err != nil {
		return Product{}, fmt.Errorf("add product: %w", err)
	}
	return created, s.staleOnRefreshError("add product", s.refreshProductsErr(ctx))
}

func (s *Service) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (Product, error) {
	updated, err := s.store.UpdateProduct(ctx, id, patch)
	if err != nil {
		return Product{}, fmt.Errorf("update product %s: %w", id, err)
	}
	return updated, s.staleOnRefreshError("update product", s.refreshProductsErr(ctx))
}

func (s *Service) DeleteProduct(ctx context.Context, id string) (bool, error) {
	ok, err := s.store.DeleteProduct(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete product %s: %w", id, err)
	}
	if !ok {
		return false, nil
	}
	return true, s.staleOnRefreshError("delete product", s.refreshProductsErr(ctx))
}

// ====== Companies ======

func (s *Service) ListCompanies(ctx context.Context) ([]Company, error) {
	list, err := s.store.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.state.Companies = list
	s.mu.Unlock()
	out := make([]Company, 0, len(list))
	for _, c := range list {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (s *Service) GetCompany(ctx context.Context, id string) (Company, error) {
	return s.store.GetCompany(ctx, id)
}

func (s *Service) AddCompany(ctx context.Context, req CreateCompanyRequest) (Company, error) {
	created, err := s.store.AddCompany(ctx, Company{
		Name:               req.Name,
		RegistrationNumber: req.RegistrationNumber,
		PaymentTerms:       req.PaymentTerms,
		WarrantyOptions:    append([]string(nil), req.WarrantyOptions...),
		Location:           req.Location,
	})
	if err != nil {
		return Company{}, fmt.Errorf("add company: %w", err)
	}
	return created, s.staleOnRefreshError("add company", s.refreshCompaniesErr(ctx))
}

func (s *Service) UpdateCompany(ctx context.Context, id string, patch CompanyPatch) (Company, error) {
	updated, err := s.store.UpdateCompany(ctx, id, patch)
	if err != nil {
		return Company{}, fmt.Errorf("update company %s: %w", id, err)
	}
	return updated, s.staleOnRefreshError("update company", s.refreshCompaniesErr(ctx))
}

func (s *Service) DeleteCompany(ctx context.Context, id string) (bool, error) {
	ok, err := s.store.DeleteCompany(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete company %s: %w", id, err)
	}
	if !ok {
		return false, nil
	}
	return true, s.staleOnRefreshError("delete company", s.refreshCompaniesErr(ctx))
}

// ====== Budgets ======

func (s *Service) ListBudgets(ctx context.Context) ([]Budget, error) {
	list, err := s.store.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.state.Budgets = list
	s.mu.Unlock()
	return append([]Budget(nil), list...), nil
}

func (s *Service) ListBudgetsByType(ctx context.Context, t BudgetType) ([]Budget, error) {
	list, err := s.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}
	filtered := list[:0]
	for _, b := range list {
		if b.Type == t {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

func (s *Service) GetBudget(ctx context.Context, code int64) (Budget, error) {
	return s.store.GetBudget(ctx, code)
}

func (s *Service) AddBudget(ctx context.Context, req CreateBudgetRequest) (Budget, error) {
	created, err := s.store.AddBudget(ctx, Budget{Code: req.Code, Type: req.Type, Name: req.Name})
	if err != nil {
		return Budget{}, fmt.Errorf("add budget %d: %w", req.Code, err)
	}
	return created, s.staleOnRefreshError("add budget", s.refreshBudgetsErr(ctx))
}

func (s *Service) UpdateBudget(ctx context.Context, code int64, patch BudgetPatch) (Budget, error) {
	updated, err := s.store.UpdateBudget(ctx, code, patch)
	if err != nil {
		return Budget{}, fmt.Errorf("update budget %d: %w", code, err)
	}
	return updated, s.staleOnRefreshError("update budget", s.refreshBudgetsErr(ctx))
}

func (s *Service) DeleteBudget(ctx context.Context, code int64) (bool, error) {
	ok, err := s.store.DeleteBudget(ctx, code)
	if err != nil {
		return false, fmt.Errorf("delete budget %d: %w", code, err)
	}
	if !ok {
		return false, nil
	}
	return true, s.staleOnRefreshError("delete budget", s.refreshBudgetsErr(ctx))
}

// ====== Orders ======

// ListOrders returns all orders newest-first.
func (s *Service) ListOrders(ctx context.Context) ([]PurchaseOrder, error) {
	return s.refreshOrders(ctx)
}

func (s *Service) ListOrdersBySupplier(ctx context.Context, supplierID int64) ([]PurchaseOrder, error) {
	list, err := s.refreshOrders(ctx)
	if err != nil {
		return nil, err
	}
	filtered := list[:0]
	for _, o := range list {
		if o.SupplierID == supplierID {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (PurchaseOrder, error) {
	return s.store.GetOrder(ctx, id)
}

// NextOrderNumber proposes the number the next created order would take for
// the current year, without consuming it: one greater than the highest
// suffix already in use. Forms show the proposal and may override it.
func (s *Service) NextOrderNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return "", fmt.Errorf("next order number: %w", err)
	}
	var max int64
	prefix := strconv.Itoa(year) + "-"
	for _, o := range orders {
		suffix, ok := strings.CutPrefix(o.OrderNumber, prefix)
		if !ok {
			continue
		}
		if n, err := strconv.ParseInt(suffix, 10, 64); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%d-%d", year, max+1), nil
}

// CreateOrder resolves and denormalizes the referenced supplier, company and
// budget, snapshots product fields into the line items, assigns the order
// number, and persists the assembled order. A caller-supplied number that
// collides with an existing order fails with ErrDuplicateOrderNumber before
// anything is written.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (PurchaseOrder, error) {
	supplier, err := s.store.GetSupplier(ctx, req.SupplierID)
	if err != nil {
		return PurchaseOrder{}, fmt.Errorf("resolve supplier %d: %w", req.SupplierID, err)
	}
	company, err := s.store.GetCompany(ctx, req.CompanyID)
	if err != nil {
		return PurchaseOrder{}, fmt.Errorf("resolve company %s: %w", req.CompanyID, err)
	}
	budget, err := s.store.GetBudget(ctx, req.BudgetCode)
	if err != nil {
		return PurchaseOrder{}, fmt.Errorf("resolve budget %d: %w", req.BudgetCode, err)
	}

	items, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return PurchaseOrder{}, err
	}

	var number string
	if req.OrderNumber != nil && *req.OrderNumber != "" {
		number = *req.OrderNumber
		exists, err := s.orderNumberExists(ctx, number)
		if err != nil {
			return PurchaseOrder{}, fmt.Errorf("validate order number %s: %w", number, err)
		}
		if exists {
			return PurchaseOrder{}, fmt.Errorf("order number %s: %w", number, ErrDuplicateOrderNumber)
		}
	} else {
		number, err = s.issueOrderNumber(ctx, time.Now().Year())
		if err != nil {
			return PurchaseOrder{}, fmt.Errorf("issue order number: %w", err)
		}
	}

	now := time.Now().UTC()
	date := now
	if req.Date != nil {
		date = *req.Date
	}
	status := OrderStatusDraft
	if req.Status != nil {
		status = *req.Status
	}
	paymentTerms := company.PaymentTerms
	if req.PaymentTerms != nil {
		paymentTerms = *req.PaymentTerms
	}
	var warrantyTerms string
	if req.WarrantyTerms != nil {
		warrantyTerms = *req.WarrantyTerms
	}

	totals := CalculateTotals(items, req.AddVAT)

	order := PurchaseOrder{
		ID:              "order-" + number,
		OrderNumber:     number,
		Date:            date,
		SupplierID:      supplier.ID,
		SupplierName:    supplier.Name,
		SupplierContact: supplier.ContactPerson,
		SupplierPhone:   supplier.Phone,
		CompanyID:       company.ID,
		CompanyName:     company.Name,
		BudgetCode:      budget.Code,
		BudgetType:      budget.Type,
		Status:          status,
		Items:           items,
		Subtotal:        totals.Subtotal,
		VATRate:         totals.VATRate,
		VATAmount:       totals.VATAmount,
		Total:           totals.Total,
		AddVAT:          req.AddVAT,
		PaymentTerms:    paymentTerms,
		WarrantyTerms:   warrantyTerms,
		ForDescription:  req.ForDescription,
		Location:        req.Location,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.store.AddOrder(ctx, order)
	if err != nil {
		return PurchaseOrder{}, fmt.Errorf("create order %s: %w", number, err)
	}
	return created, s.staleOnRefreshError("create order", s.refreshOrdersErr(ctx))
}

// UpdateOrder shallow-merges the patch. When the patch touches items or the
// VAT flag, line totals and order totals are recomputed before persisting;
// items without an id are assigned one.
func (s *Service) UpdateOrder(ctx context.Context, id string, patch OrderPatch) (PurchaseOrder, error) {
	if patch.Items != nil || patch.AddVAT != nil {
		existing, err := s.store.GetOrder(ctx, id)
		if err != nil {
			return PurchaseOrder{}, fmt.Errorf("update order %s: %w", id, err)
		}
		items := existing.Items
		if patch.Items != nil {
			normalized := normalizeItems(*patch.Items)
			patch.Items = &normalized
			items = normalized
		}
		addVat := existing.AddVAT
		if patch.AddVAT != nil {
			addVat = *patch.AddVAT
		}
		totals := CalculateTotals(items, addVat)
		patch.Subtotal = &totals.Subtotal
		patch.VATAmount = &totals.VATAmount
		patch.Total = &totals.Total
	}

	updated, err := s.store.UpdateOrder(ctx, id, patch)
	if err != nil {
		return PurchaseOrder{}, fmt.Errorf("update order %s: %w", id, err)
	}
	return updated, s.staleOnRefreshError("update order", s.refreshOrdersErr(ctx))
}

func (s *Service) DeleteOrder(ctx context.Context, id string) (bool, error) {
	ok, err := s.store.DeleteOrder(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete order %s: %w", id, err)
	}
	if !ok {
		return false, nil
	}
	return true, s.staleOnRefreshError("delete order", s.refreshOrdersErr(ctx))
}

// ====== internals ======

func (s *Service) buildItems(ctx context.Context, reqs []CreateOrderItemRequest) ([]OrderItem, error) {
	items := make([]OrderItem, 0, len(reqs))
	for _, ir := range reqs {
		product, err := s.store.GetProduct(ctx, ir.ProductID)
		if err != nil {
			return nil, fmt.Errorf("resolve product %s: %w", ir.ProductID, err)
		}
		price := product.Price
		if ir.UnitPrice != nil {
			price = *ir.UnitPrice
		}
		items = append(items, OrderItem{
			ID:          uuid.NewString(),
			ProductID:   product.ID,
			ProductName: product.Name,
			Description: product.Description,
			SKU:         product.SKU,
			Quantity:    ir.Quantity,
			UnitPrice:   price,
			TotalPrice:  float64(ir.Quantity) * price,
		})
	}
	return items, nil
}

// issueOrderNumber advances the year counter until the produced number is
// unused. The counter increment is atomic at the storage layer; the
// existence check covers numbers minted manually ahead of the counter.
func (s *Service) issueOrderNumber(ctx context.Context, year int) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		n, err := s.store.IncrOrderCounter(ctx, year)
		if err != nil {
			return "", err
		}
		candidate := fmt.Sprintf("%d-%d", year, n)
		exists, err := s.orderNumberExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free order number for year %d after %d attempts", year, maxNumberAttempts)
}

func (s *Service) orderNumberExists(ctx context.Context, number string) (bool, error) {
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return false, err
	}
	for _, o := range orders {
		if o.OrderNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func normalizeItems(items []OrderItem) []OrderItem {
	out := CloneItems(items)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
		out[i].TotalPrice = float64(out[i].Quantity) * out[i].UnitPrice
	}
	return out
}

func (s *Service) refreshSuppliers(ctx context.Context) ([]Supplier, error) {
	list, err := s.store.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.state.Suppliers = list
	s.mu.Unlock()
	return append([]Supplier(nil), list...), nil
}

func (s *Service) refreshOrders(ctx context.Context) ([]PurchaseOrder, error) {
	list, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	sortOrders(list)
	s.mu.Lock()
	s.state.Orders = list
	s.mu.Unlock()
	out := make([]PurchaseOrder, 0, len(list))
	for _, o := range list {
		out = append(out, o.Clone())
	}
	return out, nil
}

func (s *Service) refreshSuppliersErr(ctx context.Context) error {
	_, err := s.refreshSuppliers(ctx)
	return err
}

func (s *Service) refreshProductsErr(ctx context.Context) error {
	_, err := s.ListProducts(ctx)
	return err
}

func (s *Service) refreshCompaniesErr(ctx context.Context) error {
	_, err := s.ListCompanies(ctx)
	return err
}

func (s *Service) refreshBudgetsErr(ctx context.Context) error {
	_, err := s.ListBudgets(ctx)
	return err
}

func (s *Service) refreshOrdersErr(ctx context.Context) error {
	_, err := s.refreshOrders(ctx)
	return err
}

func (s *Service) staleOnRefreshError(op string, err error) error {
	if err == nil {
		return nil
	}
	if s.logger != nil {
		s.logger.Warn("refresh after write failed", slog.String("op", op), slog.Any("error", err))
	}
	return &StaleViewError{Op: op, Err: err}
}

func sortOrders(orders []PurchaseOrder) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Date.After(orders[j].Date)
	})
}
