package po

import "time"

// Patch types carry partial updates as optional fields. A nil field means
// "leave unchanged"; unknown keys never reach storage. Apply performs the
// shallow merge against the stored record; both store backends share it.

type SupplierPatch struct {
	Name          *string `json:"name,omitempty"`
	ContactPerson *string `json:"contactPerson,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
}

func (p SupplierPatch) Apply(s Supplier) Supplier {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.ContactPerson != nil {
		s.ContactPerson = *p.ContactPerson
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
	}
	if p.Email != nil {
		s.Email = p.Email
	}
	return s
}

type ProductPatch struct {
	Name        *string   `json:"name,omitempty"`
	SKU         *string   `json:"sku,omitempty"`
	Description *string   `json:"description,omitempty"`
	Currency    *Currency `json:"currency,omitempty" validate:"omitempty,oneof=ILS USD EUR"`
	SupplierID  *int64    `json:"supplierId,omitempty" validate:"omitempty,gt=0"`
	Price       *float64  `json:"price,omitempty" validate:"omitempty,gte=0"`
}

func (p ProductPatch) Apply(prod Product) Product {
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.SKU != nil {
		prod.SKU = *p.SKU
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.Currency != nil {
		prod.Currency = *p.Currency
	}
	if p.SupplierID != nil {
		prod.SupplierID = *p.SupplierID
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	return prod
}

type CompanyPatch struct {
	Name               *string   `json:"name,omitempty"`
	RegistrationNumber *string   `json:"registrationNumber,omitempty"`
	PaymentTerms       *string   `json:"paymentTerms,omitempty"`
	WarrantyOptions    *[]string `json:"warrantyOptions,omitempty"`
	Location           *string   `json:"location,omitempty"`
}

func (p CompanyPatch) Apply(c Company) Company {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.RegistrationNumber != nil {
		c.RegistrationNumber = *p.RegistrationNumber
	}
	if p.PaymentTerms != nil {
		c.PaymentTerms = *p.PaymentTerms
	}
	if p.WarrantyOptions != nil {
		c.WarrantyOptions = append([]string(nil), *p.WarrantyOptions...)
	}
	if p.Location != nil {
		c.Location = p.Location
	}
	return c
}

// BudgetPatch cannot change the code; it is the primary key.
type BudgetPatch struct {
	Type *BudgetType `json:"type,omitempty" validate:"omitempty,oneof=expenses investments"`
	Name *string     `json:"name,omitempty"`
}

func (p BudgetPatch) Apply(b Budget) Budget {
	if p.Type != nil {
		b.Type = *p.Type
	}
	if p.Name != nil {
		b.Name = p.Name
	}
	return b
}

// OrderPatch never carries the order number: orders are not re-numbered
// after creation. The totals fields are set by the facade when an update
// touches items or the VAT flag, never by outside callers directly.
type OrderPatch struct {
	Date            *time.Time   `json:"date,omitempty"`
	SupplierID      *int64       `json:"supplierId,omitempty" validate:"omitempty,gt=0"`
	SupplierName    *string      `json:"supplierName,omitempty"`
	SupplierContact *string      `json:"supplierContact,omitempty"`
	SupplierPhone   *string      `json:"supplierPhone,omitempty"`
	CompanyID       *string      `json:"companyId,omitempty"`
	CompanyName     *string      `json:"companyName,omitempty"`
	BudgetCode      *int64       `json:"budgetCode,omitempty" validate:"omitempty,gt=0"`
	BudgetType      *BudgetType  `json:"budgetType,omitempty" validate:"omitempty,oneof=expenses investments"`
	Status          *OrderStatus `json:"status,omitempty" validate:"omitempty,oneof=draft sent received cancelled"`
	Items           *[]OrderItem `json:"items,omitempty"`
	AddVAT          *bool        `json:"addVat,omitempty"`
	PaymentTerms    *string      `json:"paymentTerms,omitempty"`
	WarrantyTerms   *string      `json:"warrantyTerms,omitempty"`
	ForDescription  *string      `json:"forDescription,omitempty"`
	Location        *string      `json:"location,omitempty"`
	Notes           *string      `json:"notes,omitempty"`

	Subtotal  *float64 `json:"-"`
	VATAmount *float64 `json:"-"`
	Total     *float64 `json:"-"`
}

// Apply merges the patch into the stored order and stamps UpdatedAt.
func (p OrderPatch) Apply(o PurchaseOrder, now time.Time) PurchaseOrder {
	if p.Date != nil {
		o.Date = *p.Date
	}
	if p.SupplierID != nil {
		o.SupplierID = *p.SupplierID
	}
	if p.SupplierName != nil {
		o.SupplierName = *p.SupplierName
	}
	if p.SupplierContact != nil {
		o.SupplierContact = *p.SupplierContact
	}
	if p.SupplierPhone != nil {
		o.SupplierPhone = *p.SupplierPhone
	}
	if p.CompanyID != nil {
		o.CompanyID = *p.CompanyID
	}
	if p.CompanyName != nil {
		o.CompanyName = *p.CompanyName
	}
	if p.BudgetCode != nil {
		o.BudgetCode = *p.BudgetCode
	}
	if p.BudgetType != nil {
		o.BudgetType = *p.BudgetType
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.Items != nil {
		o.Items = CloneItems(*p.Items)
	}
	if p.AddVAT != nil {
		o.AddVAT = *p.AddVAT
	}
	if p.PaymentTerms != nil {
		o.PaymentTerms = *p.PaymentTerms
	}
	if p.WarrantyTerms != nil {
		o.WarrantyTerms = *p.WarrantyTerms
	}
	if p.ForDescription != nil {
		o.ForDescription = p.ForDescription
	}
	if p.Location != nil {
		o.Location = p.Location
	}
	if p.Notes != nil {
		o.Notes = p.Notes
	}
	if p.Subtotal != nil {
		o.Subtotal = *p.Subtotal
	}
	if p.VATAmount != nil {
		o.VATAmount = *p.VATAmount
	}
	if p.Total != nil {
		o.Total = *p.Total
	}
	o.UpdatedAt = now
	return o
}
