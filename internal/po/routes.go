package po

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/suppliers", func(r chi.Router) {
		r.Get("/", h.ListSuppliers)
		r.Post("/", h.CreateSupplier)
		r.Get("/{id}", h.GetSupplier)
		r.Patch("/{id}", h.UpdateSupplier)
		r.Delete("/{id}", h.DeleteSupplier)
	})
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Get("/{id}", h.GetProduct)
		r.Patch("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
	})
	r.Route("/companies", func(r chi.Router) {
		r.Get("/", h.ListCompanies)
		r.Post("/", h.CreateCompany)
		r.Get("/{id}", h.GetCompany)
		r.Patch("/{id}", h.UpdateCompany)
		r.Delete("/{id}", h.DeleteCompany)
	})
	r.Route("/budgets", func(r chi.Router) {
		r.Get("/", h.ListBudgets)
		r.Post("/", h.CreateBudget)
		r.Get("/{code}", h.GetBudget)
		r.Patch("/{code}", h.UpdateBudget)
		r.Delete("/{code}", h.DeleteBudget)
	})
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Post("/", h.CreateOrder)
		r.Get("/next-number", h.NextOrderNumber)
		r.Post("/totals", h.PreviewTotals)
		r.Get("/{id}", h.GetOrder)
		r.Patch("/{id}", h.UpdateOrder)
		r.Delete("/{id}", h.DeleteOrder)
	})
}
