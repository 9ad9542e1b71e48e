// Package filestore persists the purchase-order dataset in a single JSON
// file. State lives in memory behind a mutex; every mutation rewrites the
// file through a temp-file rename, so a committed call survives a process
// restart and a failed write never leaves a torn file behind.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/procura-erp/procura/internal/po"
)

type Store struct {
	path string

	mu    sync.Mutex
	state po.State
}

// Open loads the dataset from path. A missing file yields an empty dataset;
// the file is created on the first mutation.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.state.OrderCounters = map[int]int64{}
		return s, nil
	}
	if err != nil {
		return nil, &po.PersistenceError{Op: "filestore open", Err: err}
	}
	if err := json.Unmarshal(raw, &s.state); err != nil {
		return nil, &po.PersistenceError{Op: "filestore decode", Err: err}
	}
	if s.state.OrderCounters == nil {
		s.state.OrderCounters = map[int]int64{}
	}
	return s, nil
}

// save must be called with the mutex held.
func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return &po.PersistenceError{Op: "filestore encode", Err: err}
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &po.PersistenceError{Op: "filestore mkdir", Err: err}
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return &po.PersistenceError{Op: "filestore write", Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return &po.PersistenceError{Op: "filestore rename", Err: err}
	}
	return nil
}

// ====== Suppliers ======

func (s *Store) ListSuppliers(ctx context.Context) ([]po.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]po.Supplier(nil), s.state.Suppliers...), nil
}

func (s *Store) GetSupplier(ctx context.Context, id int64) (po.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sup := range s.state.Suppliers {
		if sup.ID == id {
			return sup, nil
		}
	}
	return po.Supplier{}, po.ErrNotFound
}

func (s *Store) AddSupplier(ctx context.Context, sup po.Supplier) (po.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var maxID int64
	for _, existing := range s.state.Suppliers {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	sup.ID = maxID + 1
	s.state.Suppliers = append(s.state.Suppliers, sup)
	if err := s.save(); err != nil {
		s.state.Suppliers = s.state.Suppliers[:len(s.state.Suppliers)-1]
		return po.Supplier{}, err
	}
	return sup, nil
}

func (s *Store) UpdateSupplier(ctx context.Context, id int64, patch po.SupplierPatch) (po.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.Suppliers {
		if existing.ID == id {
			updated := patch.Apply(existing)
			s.state.Suppliers[i] = updated
			if err := s.save(); err != nil {
				s.state.Suppliers[i] = existing
				return po.Supplier{}, err
			}
			return updated, nil
		}
	}
	return po.Supplier{}, po.ErrNotFound
}

func (s *Store) DeleteSupplier(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.Suppliers {
		if existing.ID == id {
			prev := append([]po.Supplier(nil), s.state.Suppliers...)
			s.state.Suppliers = append(s.state.Suppliers[:i], s.state.Suppliers[i+1:]...)
			if err := s.save(); err != nil {
				s.state.Suppliers = prev
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// ====== Products ======

func (s *Store) ListProducts(ctx context.Context) ([]po.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]po.Product(nil), s.state.Products...), nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (po.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.state.Products {
		if p.ID == id {
			return p, nil
		}
	}
	return po.Product{}, po.ErrNotFound
}

func (s *Store) AddProduct(ctx context.Context, p po.Product) (po.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = fmt.Sprintf("prod-%d", time.Now().UnixNano())
	s.state.Products = append(s.state.Products, p)
	if err := s.save(); err != nil {
		s.state.Products = s.state.Products[:len(s.state.Products)-1]
		return po.Product{}, err
	}
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id string, patch po.ProductPatch) (po.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.Products {
		if existing.ID == id {
			updated := patch.Apply(existing)
			s.state.Products[i] = updated
			if err := s.save(); err != nil {
				s.state.Products[i] = existing
				return po.Product{}, err
			}
			return updated, nil
		}
	}
	return po.Product{}, po.ErrNotFound
}

func (s *Store) DeleteProduct(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.Products {
		if existing.ID == id {
			prev := append([]po.Product(nil), s.state.Products...)
			s.state.Products = append(s.state.Products[:i], s.state.Products[i+1:]...)
			if err := s.save(); err != nil {
				s.state.Products = prev
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// ====== Companies ======

func (s *Store) ListCompanies(ctx context.Context) ([]po.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]po.Company, 0, len(s.state.Companies))
	for _, c := range s.state.Companies {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (s *Store) GetCompany(ctx context.Context, id string) (po.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.state.Companies {
		if c.ID == id {
			return c.Clone(), nil
		}
	}
	return po.Company{}, po.ErrNotFound
}

func (s *Store) AddCompany(ctx context.Context, c po.Company) (po.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = fmt.Sprintf("comp-%d", time.Now().UnixNano())
	s.state.Companies = append(s.state.Companies, c)
	if err := s.save(); err != nil {
		s.state.Companies = s.state.Companies[:len(s.state.Companies)-1]
		return po.Company{}, err
	}
	return c.Clone(), nil
}

func (s *Store) UpdateCompany(ctx context.Context, id string, patch po.CompanyPatch) (po.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.Companies {
		if existing.ID == id {
			updated := patch.Apply(existing.Clone())
			s.state.Companies[i] = updated
			if err := s.save(); err != nil {
				s.state.Companies[i] = existing
				return po.Company{}, err
			}
			return updated.Clone(), nil
		}
	}
	return po.Company{}, po.ErrNotFound
}

func (s *Store) DeleteCompany(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.Companies {
		if existing.ID == id {
			prev := append([]po.Company(nil), s.state.Companies...)
			s.state.Companies = append(s.state.Companies[:i], s.state.Companies[i+1:]...)
			if err := s.save(); err != nil {
				s.state.Companies = prev
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// ====== Budgets ======

func (s *Store) ListBudgets(ctx context.Context) ([]po.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]po.Budget(nil), s.state.Budgets...), nil
}

func (s *Store) GetBudget(ctx context.Context, code int64) (po.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.state.Budgets {
		if b.Code == code {
			return b, nil
		}
	}
	return po.Budget{}, po.ErrNotFound
}

func (s *Store) AddBudget(ctx context.Context, b po.Budget) (po.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.Budgets {
		if existing.Code == b.Code {
			return po.Budget{}, po.ErrDuplicateBudgetCode
		}
	}
	s.state.Budgets = append(s.state.Budgets, b)
	if err := s.save(); err != nil {
		s.state.Budgets = s.state.Budgets[:len(s.state.Budgets)-1]
		return po.Budget{}, err
	}
	return b, nil
}

func (s *Store) UpdateBudget(ctx context.Context, code int64, patch po.BudgetPatch) (po.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.Budgets {
		if existing.Code == code {
			updated := patch.Apply(existing)
			s.state.Budgets[i] = updated
			if err := s.save(); err != nil {
				s.state.Budgets[i] = existing
				return po.Budget{}, err
			}
			return updated, nil
		}
	}
	return po.Budget{}, po.ErrNotFound
}

func (s *Store) DeleteBudget(ctx context.Context, code int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.Budgets {
		if existing.Code == code {
			prev := append([]po.Budget(nil), s.state.Budgets...)
			s.state.Budgets = append(s.state.Budgets[:i], s.state.Budgets[i+1:]...)
			if err := s.save(); err != nil {
				s.state.Budgets = prev
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// ====== Orders ======

func (s *Store) ListOrders(ctx context.Context) ([]po.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]po.PurchaseOrder, 0, len(s.state.Orders))
	for _, o := range s.state.Orders {
		out = append(out, o.Clone())
	}
	return out, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (po.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.state.Orders {
		if o.ID == id {
			return o.Clone(), nil
		}
	}
	return po.PurchaseOrder{}, po.ErrNotFound
}

func (s *Store) AddOrder(ctx context.Context, o po.PurchaseOrder) (po.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Orders = append(s.state.Orders, o.Clone())
	if err := s.save(); err != nil {
		s.state.Orders = s.state.Orders[:len(s.state.Orders)-1]
		return po.PurchaseOrder{}, err
	}
	return o.Clone(), nil
}

func (s *Store) UpdateOrder(ctx context.Context, id string, patch po.OrderPatch) (po.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.Orders {
		if existing.ID == id {
			updated := patch.Apply(existing.Clone(), time.Now().UTC())
			s.state.Orders[i] = updated
			if err := s.save(); err != nil {
				s.state.Orders[i] = existing
				return po.PurchaseOrder{}, err
			}
			return updated.Clone(), nil
		}
	}
	return po.PurchaseOrder{}, po.ErrNotFound
}

func (s *Store) DeleteOrder(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.Orders {
		if existing.ID == id {
			prev := append([]po.PurchaseOrder(nil), s.state.Orders...)
			s.state.Orders = append(s.state.Orders[:i], s.state.Orders[i+1:]...)
			if err := s.save(); err != nil {
				s.state.Orders = prev
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// ====== Counter ======

func (s *Store) IncrOrderCounter(ctx context.Context, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.OrderCounters[year] + 1
	s.state.OrderCounters[year] = next
	if err := s.save(); err != nil {
		s.state.OrderCounters[year] = next - 1
		return 0, err
	}
	return next, nil
}

// ====== Seed ======

// SeedState replaces the whole dataset in one write; the single atomic
// rename makes the batch all-or-nothing.
func (s *Store) SeedState(ctx context.Context, state po.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state
	s.state = state.Clone()
	if s.state.OrderCounters == nil {
		s.state.OrderCounters = map[int]int64{}
	}
	if err := s.save(); err != nil {
		s.state = prev
		return err
	}
	return nil
}
