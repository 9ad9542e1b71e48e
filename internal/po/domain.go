package po

import "time"

// Currency enumerates the currencies a product may be priced in.
type Currency string

const (
	CurrencyILS Currency = "ILS"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// Valid reports whether c is one of the known currencies.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyILS, CurrencyUSD, CurrencyEUR:
		return true
	}
	return false
}

type BudgetType string

const (
	BudgetTypeExpenses    BudgetType = "expenses"
	BudgetTypeInvestments BudgetType = "investments"
)

func (t BudgetType) Valid() bool {
	return t == BudgetTypeExpenses || t == BudgetTypeInvestments
}

type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusSent      OrderStatus = "sent"
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusSent, OrderStatusReceived, OrderStatusCancelled:
		return true
	}
	return false
}

// Supplier ids are assigned by the store as max(existing)+1.
type Supplier struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	ContactPerson string  `json:"contactPerson"`
	Phone         string  `json:"phone"`
	Email         *string `json:"email,omitempty"`
}

// Product ids are time-based strings ("prod-<nanos>") assigned by the store.
// Deleting a supplier deliberately does not cascade to its products.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	SKU         string   `json:"sku"`
	Description string   `json:"description"`
	Currency    Currency `json:"currency"`
	SupplierID  int64    `json:"supplierId"`
	Price       float64  `json:"price"`
}

type Company struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	RegistrationNumber string   `json:"registrationNumber"`
	PaymentTerms       string   `json:"paymentTerms"`
	WarrantyOptions    []string `json:"warrantyOptions"`
	Location           *string  `json:"location,omitempty"`
}

// Budget is keyed by a caller-supplied numeric code, not an auto-id.
type Budget struct {
	Code int64      `json:"code"`
	Type BudgetType `json:"type"`
	Name *string    `json:"name,omitempty"`
}

// OrderItem is embedded in a purchase order. Product fields are snapshots
// taken when the line was added, not live joins. TotalPrice must equal
// Quantity * UnitPrice; the facade recomputes it on every item mutation.
type OrderItem struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Description string  `json:"description"`
	SKU         string  `json:"sku"`
	Quantity    int64   `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice"`
}

// PurchaseOrder carries denormalized supplier/company/budget fields captured
// at creation time so later edits or deletes of the referenced records never
// retroactively alter historical orders. Orders are never re-numbered.
type PurchaseOrder struct {
	ID              string      `json:"id"`
	OrderNumber     string      `json:"orderNumber"`
	Date            time.Time   `json:"date"`
	SupplierID      int64       `json:"supplierId"`
	SupplierName    string      `json:"supplierName"`
	SupplierContact string      `json:"supplierContact"`
	SupplierPhone   string      `json:"supplierPhone"`
	CompanyID       string      `json:"companyId"`
	CompanyName     string      `json:"companyName"`
	BudgetCode      int64       `json:"budgetCode"`
	BudgetType      BudgetType  `json:"budgetType"`
	Status          OrderStatus `json:"status"`
	Items           []OrderItem `json:"items"`
	Subtotal        float64     `json:"subtotal"`
	VATRate         float64     `json:"vatRate"`
	VATAmount       float64     `json:"vatAmount"`
	Total           float64     `json:"total"`
	AddVAT          bool        `json:"addVat"`
	PaymentTerms    string      `json:"paymentTerms"`
	WarrantyTerms   string      `json:"warrantyTerms"`
	ForDescription  *string     `json:"forDescription,omitempty"`
	Location        *string     `json:"location,omitempty"`
	Notes           *string     `json:"notes,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// CloneItems returns a defensive copy of the order's line items.
func CloneItems(items []OrderItem) []OrderItem {
	if items == nil {
		return nil
	}
	return append([]OrderItem(nil), items...)
}

// Clone returns a deep copy of the order (items included).
func (o PurchaseOrder) Clone() PurchaseOrder {
	c := o
	c.Items = CloneItems(o.Items)
	return c
}

// Clone returns a deep copy of the company (warranty options included).
func (c Company) Clone() Company {
	cp := c
	cp.WarrantyOptions = append([]string(nil), c.WarrantyOptions...)
	return cp
}
