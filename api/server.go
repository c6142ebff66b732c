/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address from X-Forwarded-For / X-Real-IP
  3. Logger:     Structured request logging (logrus)
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for browser clients

ROUTE GROUPS:
  /api/{function}       Time-value-of-money functions
  /api/amortization     Payment schedules
  /api/cashflows/*      Stored cash-flow series
  /api/calculations     Calculation journal
  /healthz              Liveness and database health

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", IdempotencyHeader},
		ExposedHeaders:   []string{ReplayedHeader},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Function routes
		r.Post("/fv", h.FV)
		r.Post("/pmt", h.PMT)
		r.Post("/nper", h.NPer)
		r.Post("/ipmt", h.IPMT)
		r.Post("/ppmt", h.PPMT)
		r.Post("/pv", h.PV)
		r.Post("/rate", h.Rate)
		r.Post("/irr", h.IRR)
		r.Post("/npv", h.NPV)
		r.Post("/mirr", h.MIRR)
		r.Post("/amortization", h.Amortization)

		// Cash-flow routes
		r.Route("/cashflows", func(r chi.Router) {
			r.Get("/", h.ListSeries)
			r.Post("/", h.CreateSeries)
			r.Get("/samples", h.ListSamples)
			r.Post("/samples", h.LoadSamples)
			r.Get("/{id}", h.GetSeries)
			r.Delete("/{id}", h.DeleteSeries)
			r.Post("/{id}/analysis", h.AnalyzeSeries)
		})

		// Journal routes
		r.Get("/calculations", h.ListCalculations)
	})

	return r
}

// requestLogger logs one structured line per request.
func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"remote":     r.RemoteAddr,
			}).Info("request")
		})
	}
}
