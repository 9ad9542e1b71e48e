package po

import "time"

type CreateSupplierRequest struct {
	Name          string  `json:"name" validate:"required"`
	ContactPerson string  `json:"contactPerson"`
	Phone         string  `json:"phone"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
}

type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	SKU         string   `json:"sku"`
	Description string   `json:"description"`
	Currency    Currency `json:"currency" validate:"required,oneof=ILS USD EUR"`
	SupplierID  int64    `json:"supplierId" validate:"required,gt=0"`
	Price       float64  `json:"price" validate:"gte=0"`
}

type CreateCompanyRequest struct {
	Name               string   `json:"name" validate:"required"`
	RegistrationNumber string   `json:"registrationNumber"`
	PaymentTerms       string   `json:"paymentTerms"`
	WarrantyOptions    []string `json:"warrantyOptions"`
	Location           *string  `json:"location,omitempty"`
}

type CreateBudgetRequest struct {
	Code int64      `json:"code" validate:"required,gt=0"`
	Type BudgetType `json:"type" validate:"required,oneof=expenses investments"`
	Name *string    `json:"name,omitempty"`
}

// CreateOrderItemRequest references a catalog product; the facade snapshots
// the product's name, SKU and description into the line. A nil UnitPrice
// snapshots the product's current price.
type CreateOrderItemRequest struct {
	ProductID string   `json:"productId" validate:"required"`
	Quantity  int64    `json:"quantity" validate:"gte=0"`
	UnitPrice *float64 `json:"unitPrice,omitempty" validate:"omitempty,gte=0"`
}

// CreateOrderRequest carries everything needed to mint a purchase order.
// OrderNumber is the manual-numbering override; when nil the facade issues
// the next number for the current year from the atomic counter.
type CreateOrderRequest struct {
	OrderNumber    *string                  `json:"orderNumber,omitempty"`
	Date           *time.Time               `json:"date,omitempty"`
	SupplierID     int64                    `json:"supplierId" validate:"required,gt=0"`
	CompanyID      string                   `json:"companyId" validate:"required"`
	BudgetCode     int64                    `json:"budgetCode" validate:"required,gt=0"`
	Status         *OrderStatus             `json:"status,omitempty" validate:"omitempty,oneof=draft sent received cancelled"`
	Items          []CreateOrderItemRequest `json:"items" validate:"dive"`
	AddVAT         bool                     `json:"addVat"`
	PaymentTerms   *string                  `json:"paymentTerms,omitempty"`
	WarrantyTerms  *string                  `json:"warrantyTerms,omitempty"`
	ForDescription *string                  `json:"forDescription,omitempty"`
	Location       *string                  `json:"location,omitempty"`
	Notes          *string                  `json:"notes,omitempty"`
}
