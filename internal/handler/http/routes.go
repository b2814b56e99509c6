package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(withGZip)

	router.Post("/api/sync/{familyId}", h.sync)

	router.Get("/api/families", h.listFamilies)
	router.Post("/api/families", h.createFamily)
	router.Get("/api/families/{id}", h.getFamily)
	router.Delete("/api/families/{id}", h.deleteFamily)
	router.Get("/api/families/{id}/members", h.listFamilyMembers)
	router.Post("/api/families/{id}/members", h.addFamilyMember)

	router.Get("/api/categories", h.listCategories)
	router.Post("/api/categories", h.createCategory)
	router.Get("/api/categories/{id}", h.getCategory)
	router.Put("/api/categories/{id}", h.updateCategory)
	router.Delete("/api/categories/{id}", h.deleteCategory)

	router.Get("/api/expenses", h.listExpenses)
	router.Post("/api/expenses", h.createExpense)
	router.Get("/api/expenses/{id}", h.getExpense)
	router.Put("/api/expenses/{id}", h.updateExpense)
	router.Delete("/api/expenses/{id}", h.deleteExpense)

	router.Get("/api/ping", h.ping)

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
