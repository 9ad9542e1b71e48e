package po

import "context"

// State is the full persisted dataset: the five collections plus the
// per-year order number counters.
type State struct {
	Suppliers     []Supplier      `json:"suppliers"`
	Products      []Product       `json:"products"`
	Companies     []Company       `json:"companies"`
	Budgets       []Budget        `json:"budgets"`
	Orders        []PurchaseOrder `json:"orders"`
	OrderCounters map[int]int64   `json:"orderCounter"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	c := State{
		Suppliers: append([]Supplier(nil), s.Suppliers...),
		Products:  append([]Product(nil), s.Products...),
		Budgets:   append([]Budget(nil), s.Budgets...),
	}
	for _, company := range s.Companies {
		c.Companies = append(c.Companies, company.Clone())
	}
	for _, order := range s.Orders {
		c.Orders = append(c.Orders, order.Clone())
	}
	if s.OrderCounters != nil {
		c.OrderCounters = make(map[int]int64, len(s.OrderCounters))
		for year, n := range s.OrderCounters {
			c.OrderCounters[year] = n
		}
	}
	return c
}

// Store is the durable backing for the five collections and the order
// counter. Implementations must fully commit every mutation before
// returning, hand out copies rather than internal references, and report
// a missing target with ErrNotFound (or ok=false for deletes).
//
// Two implementations exist: filestore (single JSON file, the local
// storage backend) and redistore (Redis hashes, the remote document
// backend). The facade and calculator behave identically over either.
type Store interface {
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	GetSupplier(ctx context.Context, id int64) (Supplier, error)
	// AddSupplier assigns id = max(existing)+1, or 1 for an empty collection.
	AddSupplier(ctx context.Context, s Supplier) (Supplier, error)
	UpdateSupplier(ctx context.Context, id int64, patch SupplierPatch) (Supplier, error)
	DeleteSupplier(ctx context.Context, id int64) (bool, error)

	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	// AddProduct assigns a time-based string id.
	AddProduct(ctx context.Context, p Product) (Product, error)
	UpdateProduct(ctx context.Context, id string, patch ProductPatch) (Product, error)
	DeleteProduct(ctx context.Context, id string) (bool, error)

	ListCompanies(ctx context.Context) ([]Company, error)
	GetCompany(ctx context.Context, id string) (Company, error)
	// AddCompany assigns a time-based string id.
	AddCompany(ctx context.Context, c Company) (Company, error)
	UpdateCompany(ctx context.Context, id string, patch CompanyPatch) (Company, error)
	DeleteCompany(ctx context.Context, id string) (bool, error)

	ListBudgets(ctx context.Context) ([]Budget, error)
	GetBudget(ctx context.Context, code int64) (Budget, error)
	// AddBudget fails with ErrDuplicateBudgetCode when the caller-supplied
	// code already exists; the collection is left unchanged.
	AddBudget(ctx context.Context, b Budget) (Budget, error)
	UpdateBudget(ctx context.Context, code int64, patch BudgetPatch) (Budget, error)
	DeleteBudget(ctx context.Context, code int64) (bool, error)

	ListOrders(ctx context.Context) ([]PurchaseOrder, error)
	GetOrder(ctx context.Context, id string) (PurchaseOrder, error)
	// AddOrder persists a fully assembled order verbatim; id, number and
	// timestamps are the facade's responsibility.
	AddOrder(ctx context.Context, o PurchaseOrder) (PurchaseOrder, error)
	UpdateOrder(ctx context.Context, id string, patch OrderPatch) (PurchaseOrder, error)
	DeleteOrder(ctx context.Context, id string) (bool, error)

	// IncrOrderCounter atomically advances the given year's counter and
	// returns the new value. Atomicity lives at the storage layer, not in a
	// read-modify-write of the caller.
	IncrOrderCounter(ctx context.Context, year int) (int64, error)

	// SeedState writes an initial dataset as one batch: either the whole
	// batch commits or none of it does.
	SeedState(ctx context.Context, state State) error
}
