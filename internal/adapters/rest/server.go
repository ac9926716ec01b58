package rest

import (
	"context"
	"net/http"
	"time"

	"listing-service/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

// NewRouter собирает роутер отдельно от http.Server, чтобы его можно было гонять через httptest.
func NewRouter(hotelsHandler *HotelsHandler, allowedOrigins []string, baseLogger port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)

	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Trace-ID"},
			ExposedHeaders: []string{"X-Trace-ID"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/hotels", hotelsHandler.QueryListings)
		r.Get("/hotels/stats", hotelsHandler.GetListingStats)
		r.Post("/hotels/refresh", hotelsHandler.RefreshListings)
		r.Get("/hotels/{hotelID}", hotelsHandler.GetHotelDetails)

		r.Get("/filters/options", hotelsHandler.GetFilterOptions)
	})

	return r
}

func NewServer(listenPort string, handler http.Handler, baseLogger port.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + listenPort,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST server", port.Fields{"address": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST server...", nil)
	return s.httpServer.Shutdown(ctx)
}
