package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/marinamsm/GoMarketplace/internal/cart"
	"github.com/sirupsen/logrus"
)

func NewRouter(store *cart.Store, requestTimeout time.Duration, log logrus.FieldLogger) http.Handler {
	cartHandler := NewCartHandler(requestTimeout, log)

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		cartHandler.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(CartProvider(store))
		r.Get("/", cartHandler.GetCart)
		r.Post("/items", cartHandler.AddItem)
		r.Post("/items/{product_id}/increment", cartHandler.Increment)
		r.Post("/items/{product_id}/decrement", cartHandler.Decrement)
	})

	return r
}
