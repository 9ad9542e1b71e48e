package po_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/procura-erp/procura/internal/po"
)

func newTestServer(t *testing.T) (*httptest.Server, *po.Service) {
	t.Helper()
	svc, _ := newTestService(t)
	handler := po.NewHandler(testLogger(), svc)
	r := chi.NewRouter()
	r.Route("/api", handler.MountRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestSupplierEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/suppliers", map[string]any{
		"name":          "Acme",
		"contactPerson": "Dana",
		"phone":         "03-1234567",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[po.Supplier](t, resp)
	require.Equal(t, int64(1), created.ID)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/suppliers", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[[]po.Supplier](t, resp)
	require.Len(t, list, 1)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/suppliers/999", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/suppliers/999", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, srv.URL+fmt.Sprintf("/api/suppliers/%d", created.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

func TestSupplierValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	// Missing required name.
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/suppliers", map[string]any{"phone": "03-1"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Unknown keys never pass through to storage.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/suppliers", map[string]any{
		"name":  "Acme",
		"admin": true,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestBudgetConflict(t *testing.T) {
	srv, _ := newTestServer(t)

	body := map[string]any{"code": 100, "type": "expenses"}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/budgets", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	body["type"] = "investments"
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/budgets", body)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestProductPatchEndpoint(t *testing.T) {
	srv, svc := newTestServer(t)
	_, product, _, _ := seedMasterdata(t, svc)

	resp := doJSON(t, http.MethodPatch, srv.URL+"/api/products/"+product.ID, map[string]any{"price": 50})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody[po.Product](t, resp)
	require.Equal(t, 50.0, updated.Price)
	require.Equal(t, product.Name, updated.Name)
}

func TestOrderEndpoints(t *testing.T) {
	srv, svc := newTestServer(t)
	supplier, product, company, budget := seedMasterdata(t, svc)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/orders/next-number", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	proposal := decodeBody[map[string]string](t, resp)
	require.NotEmpty(t, proposal["orderNumber"])

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/orders", map[string]any{
		"supplierId": supplier.ID,
		"companyId":  company.ID,
		"budgetCode": budget.Code,
		"addVat":     true,
		"items":      []map[string]any{{"productId": product.ID, "quantity": 3}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decodeBody[po.PurchaseOrder](t, resp)
	require.Equal(t, proposal["orderNumber"], order.OrderNumber)
	require.InDelta(t, 354.0, order.Total, 1e-9)

	// Forcing the same number again conflicts.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/orders", map[string]any{
		"orderNumber": order.OrderNumber,
		"supplierId":  supplier.ID,
		"companyId":   company.ID,
		"budgetCode":  budget.Code,
		"items":       []map[string]any{{"productId": product.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/orders?supplierId="+fmt.Sprint(supplier.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	orders := decodeBody[[]po.PurchaseOrder](t, resp)
	require.Len(t, orders, 1)
}

func TestTotalsPreviewEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/orders/totals", map[string]any{
		"addVat": true,
		"items": []map[string]any{
			{"id": "a", "quantity": 3, "unitPrice": 100},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	totals := decodeBody[po.TotalSummary](t, resp)
	require.Equal(t, 300.0, totals.Subtotal)
	require.InDelta(t, 54.0, totals.VATAmount, 1e-9)
	require.InDelta(t, 354.0, totals.Total, 1e-9)
}
