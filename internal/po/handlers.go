package po

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/procura-erp/procura/internal/platform/httpx"
)

// Handler exposes the facade as a JSON REST API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// respondError maps domain errors onto problem-detail responses.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateBudgetCode), errors.Is(err, ErrDuplicateOrderNumber):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		h.logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// writeResult treats a stale-view outcome as success: the write committed,
// only the facade's cached snapshot lagged, and API reads go through the
// store anyway.
func (h *Handler) writeResult(w http.ResponseWriter, r *http.Request, status int, result any, err error) {
	var stale *StaleViewError
	if errors.As(err, &stale) {
		h.logger.Warn("view snapshot stale after write",
			slog.String("path", r.URL.Path),
			slog.Any("error", stale.Err))
		err = nil
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, status, result)
}

func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func intParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// ====== Suppliers ======

func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.service.ListSuppliers(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, suppliers)
}

func (h *Handler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "supplier id must be numeric")
		return
	}
	supplier, err := h.service.GetSupplier(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, supplier)
}

func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req CreateSupplierRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	created, err := h.service.AddSupplier(r.Context(), req)
	h.writeResult(w, r, http.StatusCreated, created, err)
}

func (h *Handler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "supplier id must be numeric")
		return
	}
	var patch SupplierPatch
	if !h.decodeValid(w, r, &patch) {
		return
	}
	updated, uerr := h.service.UpdateSupplier(r.Context(), id, patch)
	h.writeResult(w, r, http.StatusOK, updated, uerr)
}

func (h *Handler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "supplier id must be numeric")
		return
	}
	ok, derr := h.service.DeleteSupplier(r.Context(), id)
	h.deleteResult(w, r, ok, derr)
}

func (h *Handler) deleteResult(w http.ResponseWriter, r *http.Request, ok bool, err error) {
	var stale *StaleViewError
	if errors.As(err, &stale) {
		h.logger.Warn("view snapshot stale after delete",
			slog.String("path", r.URL.Path),
			slog.Any("error", stale.Err))
		err = nil
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "delete target does not exist")
		return
	}
	httpx.NoContent(w)
}

// ====== Products ======

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	created, err := h.service.AddProduct(r.Context(), req)
	h.writeResult(w, r, http.StatusCreated, created, err)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch ProductPatch
	if !h.decodeValid(w, r, &patch) {
		return
	}
	updated, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), patch)
	h.writeResult(w, r, http.StatusOK, updated, err)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ok, err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id"))
	h.deleteResult(w, r, ok, err)
}

// ====== Companies ======

func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.service.ListCompanies(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, companies)
}

func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.service.GetCompany(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req CreateCompanyRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	created, err := h.service.AddCompany(r.Context(), req)
	h.writeResult(w, r, http.StatusCreated, created, err)
}

func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	var patch CompanyPatch
	if !h.decodeValid(w, r, &patch) {
		return
	}
	updated, err := h.service.UpdateCompany(r.Context(), chi.URLParam(r, "id"), patch)
	h.writeResult(w, r, http.StatusOK, updated, err)
}

func (h *Handler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	ok, err := h.service.DeleteCompany(r.Context(), chi.URLParam(r, "id"))
	h.deleteResult(w, r, ok, err)
}

// ====== Budgets ======

func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	if t := r.URL.Query().Get("type"); t != "" {
		bt := BudgetType(t)
		if !bt.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Type", "type must be expenses or investments")
			return
		}
		budgets, err := h.service.ListBudgetsByType(r.Context(), bt)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, budgets)
		return
	}
	budgets, err := h.service.ListBudgets(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, budgets)
}

func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	code, err := intParam(r, "code")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Code", "budget code must be numeric")
		return
	}
	budget, err := h.service.GetBudget(r.Context(), code)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, budget)
}

func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var req CreateBudgetRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	created, err := h.service.AddBudget(r.Context(), req)
	h.writeResult(w, r, http.StatusCreated, created, err)
}

func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	code, err := intParam(r, "code")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Code", "budget code must be numeric")
		return
	}
	var patch BudgetPatch
	if !h.decodeValid(w, r, &patch) {
		return
	}
	updated, uerr := h.service.UpdateBudget(r.Context(), code, patch)
	h.writeResult(w, r, http.StatusOK, updated, uerr)
}

func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	code, err := intParam(r, "code")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Code", "budget code must be numeric")
		return
	}
	ok, derr := h.service.DeleteBudget(r.Context(), code)
	h.deleteResult(w, r, ok, derr)
}

// ====== Orders ======

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("supplierId"); raw != "" {
		supplierID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Supplier", "supplierId must be numeric")
			return
		}
		orders, err := h.service.ListOrdersBySupplier(r.Context(), supplierID)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, orders)
		return
	}
	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) NextOrderNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.service.NextOrderNumber(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"orderNumber": number})
}

// TotalsRequest is the payload for the totals preview endpoint. Line totals
// are recomputed from quantity and unit price before summing, so a form can
// send unsaved rows.
type TotalsRequest struct {
	Items  []OrderItem `json:"items"`
	AddVAT bool        `json:"addVat"`
}

func (h *Handler) PreviewTotals(w http.ResponseWriter, r *http.Request) {
	var req TotalsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	items := normalizeItems(req.Items)
	httpx.JSON(w, http.StatusOK, CalculateTotals(items, req.AddVAT))
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	created, err := h.service.CreateOrder(r.Context(), req)
	h.writeResult(w, r, http.StatusCreated, created, err)
}

func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var patch OrderPatch
	if !h.decodeValid(w, r, &patch) {
		return
	}
	updated, err := h.service.UpdateOrder(r.Context(), chi.URLParam(r, "id"), patch)
	h.writeResult(w, r, http.StatusOK, updated, err)
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ok, err := h.service.DeleteOrder(r.Context(), chi.URLParam(r, "id"))
	h.deleteResult(w, r, ok, err)
}
