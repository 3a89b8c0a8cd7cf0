/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/budgets/*     Budgets, lines, forecast, archives
  /api/lines/*       Lines, patterns, composed occurrences
  /api/patterns/*    Patterns, expanded occurrences
  /api/calendar/*    Danish bank holidays and bank-day lookup
  /api/scenarios/*   Demo scenarios
  /health            Liveness probe

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured. The allowed
// CORS origins come from configuration so deployments can lock them down.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Budget routes
		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", h.ListBudgets)
			r.Post("/", h.CreateBudget)
			r.Get("/{budgetID}", h.GetBudget)
			r.Delete("/{budgetID}", h.DeleteBudget)
			r.Get("/{budgetID}/lines", h.ListLines)
			r.Post("/{budgetID}/lines", h.CreateLine)
			r.Get("/{budgetID}/forecast", h.Forecast)
			r.Post("/{budgetID}/archive", h.ArchivePeriod)
			r.Get("/{budgetID}/archives", h.ListArchives)
			r.Get("/{budgetID}/archives/{year}/{month}", h.GetArchive)
		})

		// Line routes
		r.Route("/lines", func(r chi.Router) {
			r.Get("/{lineID}", h.GetLine)
			r.Delete("/{lineID}", h.DeleteLine)
			r.Get("/{lineID}/patterns", h.ListPatterns)
			r.Post("/{lineID}/patterns", h.CreatePattern)
			r.Get("/{lineID}/occurrences", h.LineOccurrences)
		})

		// Pattern routes
		r.Route("/patterns", func(r chi.Router) {
			r.Get("/{patternID}", h.GetPattern)
			r.Delete("/{patternID}", h.DeletePattern)
			r.Get("/{patternID}/occurrences", h.PatternOccurrences)
		})

		// Calendar routes
		r.Route("/calendar", func(r chi.Router) {
			r.Get("/{year}/holidays", h.ListHolidays)
			r.Get("/bank-day", h.BankDayLookup)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
			r.Post("/demo", h.DemoScenario)
		})
	})

	r.Get("/health", h.Health)

	// Landing page pointing at the API surface.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Budget Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Budget Engine API</h1>
<p>Recurrence expansion, period archival and balance forecasting.</p>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/budgets">/api/budgets</a> - List budgets</li>
<li><a href="/api/calendar/2026/holidays">/api/calendar/2026/holidays</a> - Danish bank holidays</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo scenarios</li>
</ul>
</body>
</html>`))
	})

	return r
}
