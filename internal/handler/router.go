package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	custommiddleware "github.com/mmeshcher/storefront-checkout/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса витрины.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.GetProducts)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddCartItem)
			r.Put("/items", h.UpdateCartItem)
		})

		r.Get("/shipping", h.GetShipping)

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/finalize", h.Finalize)
			r.Post("/card", h.PayByCard)
			r.Post("/pix", h.InitiatePix)
		})

		r.Route("/pix/{id}", func(r chi.Router) {
			r.Get("/", h.GetPixPayment)
			r.Get("/countdown", h.PixCountdown)
			r.Post("/confirm", h.ConfirmPix)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.GetOrders)
			r.Delete("/", h.ClearOrders)
			r.Get("/last", h.GetLastOrder)
			r.Post("/export", h.ExportOrders)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
