// Package redistore persists the purchase-order dataset in Redis as one
// hash per collection, keyed by record id with JSON document values. The
// order counter lives in its own hash and advances with HINCRBY, so number
// issuance is atomic at the storage layer. Seed writes go through MULTI/EXEC
// and commit as a single batch.
package redistore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/procura-erp/procura/internal/po"
)

const (
	keySuppliers = "po:suppliers"
	keyProducts  = "po:products"
	keyCompanies = "po:companies"
	keyBudgets   = "po:budgets"
	keyOrders    = "po:orders"
	keyCounters  = "po:counters:orders"
)

type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func persistErr(op string, err error) error {
	return &po.PersistenceError{Op: "redistore " + op, Err: err}
}

func listDocs[T any](ctx context.Context, client *redis.Client, key string) ([]T, error) {
	raw, err := client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, persistErr("hgetall "+key, err)
	}
	out := make([]T, 0, len(raw))
	for _, doc := range raw {
		var v T
		if err := json.Unmarshal([]byte(doc), &v); err != nil {
			return nil, persistErr("decode "+key, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func getDoc[T any](ctx context.Context, client *redis.Client, key, field string) (T, error) {
	var v T
	doc, err := client.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return v, po.ErrNotFound
	}
	if err != nil {
		return v, persistErr("hget "+key, err)
	}
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		return v, persistErr("decode "+key, err)
	}
	return v, nil
}

func setDoc(ctx context.Context, client *redis.Client, key, field string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return persistErr("encode "+key, err)
	}
	if err := client.HSet(ctx, key, field, doc).Err(); err != nil {
		return persistErr("hset "+key, err)
	}
	return nil
}

func delDoc(ctx context.Context, client *redis.Client, key, field string) (bool, error) {
	n, err := client.HDel(ctx, key, field).Result()
	if err != nil {
		return false, persistErr("hdel "+key, err)
	}
	return n > 0, nil
}

// ====== Suppliers ======

func (s *Store) ListSuppliers(ctx context.Context) ([]po.Supplier, error) {
	return listDocs[po.Supplier](ctx, s.client, keySuppliers)
}

func (s *Store) GetSupplier(ctx context.Context, id int64) (po.Supplier, error) {
	return getDoc[po.Supplier](ctx, s.client, keySuppliers, strconv.FormatInt(id, 10))
}

func (s *Store) AddSupplier(ctx context.Context, sup po.Supplier) (po.Supplier, error) {
	existing, err := s.ListSuppliers(ctx)
	if err != nil {
		return po.Supplier{}, err
	}
	var maxID int64
	for _, e := range existing {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	sup.ID = maxID + 1
	if err := setDoc(ctx, s.client, keySuppliers, strconv.FormatInt(sup.ID, 10), sup); err != nil {
		return po.Supplier{}, err
	}
	return sup, nil
}

func (s *Store) UpdateSupplier(ctx context.Context, id int64, patch po.SupplierPatch) (po.Supplier, error) {
	existing, err := s.GetSupplier(ctx, id)
	if err != nil {
		return po.Supplier{}, err
	}
	updated := patch.Apply(existing)
	if err := setDoc(ctx, s.client, keySuppliers, strconv.FormatInt(id, 10), updated); err != nil {
		return po.Supplier{}, err
	}
	return updated, nil
}

func (s *Store) DeleteSupplier(ctx context.Context, id int64) (bool, error) {
	return delDoc(ctx, s.client, keySuppliers, strconv.FormatInt(id, 10))
}

// ====== Products ======

func (s *Store) ListProducts(ctx context.Context) ([]po.Product, error) {
	return listDocs[po.Product](ctx, s.client, keyProducts)
}

func (s *Store) GetProduct(ctx context.Context, id string) (po.Product, error) {
	return getDoc[po.Product](ctx, s.client, keyProducts, id)
}

func (s *Store) AddProduct(ctx context.Context, p po.Product) (po.Product, error) {
	p.ID = fmt.Sprintf("prod-%d", time.Now().UnixNano())
	if err := setDoc(ctx, s.client, keyProducts, p.ID, p); err != nil {
		return po.Product{}, err
	}
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id string, patch po.ProductPatch) (po.Product, error) {
	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return po.Product{}, err
	}
	updated := patch.Apply(existing)
	if err := setDoc(ctx, s.client, keyProducts, id, updated); err != nil {
		return po.Product{}, err
	}
	return updated, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) (bool, error) {
	return delDoc(ctx, s.client, keyProducts, id)
}

// ====== Companies ======

func (s *Store) ListCompanies(ctx context.Context) ([]po.Company, error) {
	return listDocs[po.Company](ctx, s.client, keyCompanies)
}

func (s *Store) GetCompany(ctx context.Context, id string) (po.Company, error) {
	return getDoc[po.Company](ctx, s.client, keyCompanies, id)
}

func (s *Store) AddCompany(ctx context.Context, c po.Company) (po.Company, error) {
	c.ID = fmt.Sprintf("comp-%d", time.Now().UnixNano())
	if err := setDoc(ctx, s.client, keyCompanies, c.ID, c); err != nil {
		return po.Company{}, err
	}
	return c, nil
}

func (s *Store) UpdateCompany(ctx context.Context, id string, patch po.CompanyPatch) (po.Company, error) {
	existing, err := s.GetCompany(ctx, id)
	if err != nil {
		return po.Company{}, err
	}
	updated := patch.Apply(existing)
	if err := setDoc(ctx, s.client, keyCompanies, id, updated); err != nil {
		return po.Company{}, err
	}
	return updated, nil
}

func (s *Store) DeleteCompany(ctx context.Context, id string) (bool, error) {
	return delDoc(ctx, s.client, keyCompanies, id)
}

// ====== Budgets ======

func (s *Store) ListBudgets(ctx context.Context) ([]po.Budget, error) {
	return listDocs[po.Budget](ctx, s.client, keyBudgets)
}

func (s *Store) GetBudget(ctx context.Context, code int64) (po.Budget, error) {
	return getDoc[po.Budget](ctx, s.client, keyBudgets, strconv.FormatInt(code, 10))
}

// AddBudget relies on HSETNX: the write and the uniqueness check are one
// operation, so a duplicate code can never clobber the stored budget.
func (s *Store) AddBudget(ctx context.Context, b po.Budget) (po.Budget, error) {
	doc, err := json.Marshal(b)
	if err != nil {
		return po.Budget{}, persistErr("encode "+keyBudgets, err)
	}
	ok, err := s.client.HSetNX(ctx, keyBudgets, strconv.FormatInt(b.Code, 10), doc).Result()
	if err != nil {
		return po.Budget{}, persistErr("hsetnx "+keyBudgets, err)
	}
	if !ok {
		return po.Budget{}, po.ErrDuplicateBudgetCode
	}
	return b, nil
}

func (s *Store) UpdateBudget(ctx context.Context, code int64, patch po.BudgetPatch) (po.Budget, error) {
	existing, err := s.GetBudget(ctx, code)
	if err != nil {
		return po.Budget{}, err
	}
	updated := patch.Apply(existing)
	if err := setDoc(ctx, s.client, keyBudgets, strconv.FormatInt(code, 10), updated); err != nil {
		return po.Budget{}, err
	}
	return updated, nil
}

func (s *Store) DeleteBudget(ctx context.Context, code int64) (bool, error) {
	return delDoc(ctx, s.client, keyBudgets, strconv.FormatInt(code, 10))
}

// ====== Orders ======

func (s *Store) ListOrders(ctx context.Context) ([]po.PurchaseOrder, error) {
	return listDocs[po.PurchaseOrder](ctx, s.client, keyOrders)
}

func (s *Store) GetOrder(ctx context.Context, id string) (po.PurchaseOrder, error) {
	return getDoc[po.PurchaseOrder](ctx, s.client, keyOrders, id)
}

func (s *Store) AddOrder(ctx context.Context, o po.PurchaseOrder) (po.PurchaseOrder, error) {
	if err := setDoc(ctx, s.client, keyOrders, o.ID, o); err != nil {
		return po.PurchaseOrder{}, err
	}
	return o, nil
}

func (s *Store) UpdateOrder(ctx context.Context, id string, patch po.OrderPatch) (po.PurchaseOrder, error) {
	existing, err := s.GetOrder(ctx, id)
	if err != nil {
		return po.PurchaseOrder{}, err
	}
	updated := patch.Apply(existing, time.Now().UTC())
	if err := setDoc(ctx, s.client, keyOrders, id, updated); err != nil {
		return po.PurchaseOrder{}, err
	}
	return updated, nil
}

func (s *Store) DeleteOrder(ctx context.Context, id string) (bool, error) {
	return delDoc(ctx, s.client, keyOrders, id)
}

// ====== Counter ======

func (s *Store) IncrOrderCounter(ctx context.Context, year int) (int64, error) {
	n, err := s.client.HIncrBy(ctx, keyCounters, strconv.Itoa(year), 1).Result()
	if err != nil {
		return 0, persistErr("hincrby "+keyCounters, err)
	}
	return n, nil
}

// ====== Seed ======

func (s *Store) SeedState(ctx context.Context, state po.State) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, sup := range state.Suppliers {
			doc, err := json.Marshal(sup)
			if err != nil {
				return err
			}
			pipe.HSet(ctx, keySuppliers, strconv.FormatInt(sup.ID, 10), doc)
		}
		for _, p := range state.Products {
			doc, err := json.Marshal(p)
			if err != nil {
				return err
			}
			pipe.HSet(ctx, keyProducts, p.ID, doc)
		}
		for _, c := range state.Companies {
			doc, err := json.Marshal(c)
			if err != nil {
				return err
			}
			pipe.HSet(ctx, keyCompanies, c.ID, doc)
		}
		for _, b := range state.Budgets {
			doc, err := json.Marshal(b)
			if err != nil {
				return err
			}
			pipe.HSet(ctx, keyBudgets, strconv.FormatInt(b.Code, 10), doc)
		}
		for _, o := range state.Orders {
			doc, err := json.Marshal(o)
			if err != nil {
				return err
			}
			pipe.HSet(ctx, keyOrders, o.ID, doc)
		}
		for year, n := range state.OrderCounters {
			pipe.HSet(ctx, keyCounters, strconv.Itoa(year), n)
		}
		return nil
	})
	if err != nil {
		return persistErr("seed", err)
	}
	return nil
}
