package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// Limiter throttles every request per client IP. Nil disables rate limiting.
	Limiter *RateLimiter
	// Gatherer backs /metrics. Nil leaves the route out.
	Gatherer prometheus.Gatherer
}

// NewRouter returns the route table of the API.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(h.cors)
	r.Use(h.logRequests)
	if opts.Limiter != nil {
		r.Use(opts.Limiter.Middleware(h.rateLimited))
	}
	r.Use(h.metrics.countCalls)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)

	r.HandleFunc("/", h.Index)
	r.Post("/register", h.RegisterHandler)
	r.Post("/login", h.LoginHandler)

	r.Route("/tasks", func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Get("/list", h.ListTasksHandler)
		r.Get("/detail", h.GetTaskHandler)
		r.Post("/create", h.CreateTaskHandler)
		r.Put("/update", h.UpdateTaskHandler)
		r.Delete("/delete", h.DeleteTaskHandler)
	})

	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}
