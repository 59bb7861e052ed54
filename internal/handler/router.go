package handler

import (
	"log/slog"
	"net/http"

	"github.com/VictoriaMetrics/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/phonebook/internal/handler/phonebook"
	middlewarePkg "github.com/zhouzirui/phonebook/internal/middleware"
	"github.com/zhouzirui/phonebook/internal/model/contact"
	"github.com/zhouzirui/phonebook/pkg/utils"
)

// Greeting is served at the root path.
const Greeting = "<p>Running with Go and chi</p>"

// NewRouter wires HTTP routes to the contact store. Request metrics are
// recorded in set, which /metrics exposes together with process metrics.
func NewRouter(contacts contact.Store, set *metrics.Set, logger *slog.Logger) http.Handler {
	if sized, ok := contacts.(interface{ Len() int }); ok {
		set.NewGauge("phonebook_contacts", func() float64 { return float64(sized.Len()) })
	}

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middlewarePkg.RequestID(logger))
	r.Use(middlewarePkg.AccessLog)
	r.Use(middlewarePkg.Metrics(set))
	r.Use(middlewarePkg.Recover)

	r.NotFound(handleUnknownEndpoint)
	r.MethodNotAllowed(handleUnknownEndpoint)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondHTML(w, http.StatusOK, Greeting)
	})
	r.Get("/liveness", func(http.ResponseWriter, *http.Request) {})
	r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		set.WritePrometheus(w)
		metrics.WriteProcessMetrics(w)
	})

	r.Route("/api", func(api chi.Router) {
		phonebook.New(contacts).RegisterRoutes(api)
	})

	return r
}

// handleUnknownEndpoint answers every unmatched method or path.
func handleUnknownEndpoint(w http.ResponseWriter, _ *http.Request) {
	utils.RespondError(w, http.StatusNotFound, "Uknown endpoint")
}
