package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func NewRouter(controller *Controller) http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(recoverMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/holdings", controller.GetHoldings)
		r.Post("/holdings", controller.CreateHolding)
		r.Put("/holdings/{id}", controller.UpdateHolding)
		r.Delete("/holdings/{id}", controller.DeleteHolding)

		r.Get("/quote/{ticker}", controller.GetQuote)
		r.Get("/search", controller.Search)
		r.Post("/history", controller.GetHistory)

		r.Get("/portfolio", controller.GetPortfolio)
		r.Post("/refresh", controller.Refresh)

		r.Get("/report", controller.DownloadReport)
		r.Post("/report/export", controller.ExportReport)
	})

	return r
}
