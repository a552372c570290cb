// Package transport implements L1 of the emulator: one HTTP server per
// emulated service port. It owns nothing about any particular wire
// protocol — that's L2 (internal/dispatch) and each service's own
// dispatch.go — it only binds a listener, applies the ambient
// middleware (CORS, request logging, panic recovery), and runs/stops the
// server.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// Service is one emulated AWS service's HTTP front-end: a name (for
// logs), a port to listen on, and a chi.Mux the service's dispatch layer
// registers its routes/handler on.
type Service struct {
	Name   string
	Port   int
	Router chi.Router

	srv *http.Server
}

// NewService builds a Service with the ambient middleware stack every
// emulated service shares: permissive CORS (AWS SDKs/tools occasionally
// issue browser-origin requests against local endpoints), structured
// request logging, and panic recovery so one bad request can't take down
// a service's listener.
func NewService(name string, port int) *Service {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))
	r.Use(requestLogger(name))

	return &Service{Name: name, Port: port, Router: r}
}

func requestLogger(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug().
				Str("service", service).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("latency", time.Since(start)).
				Msg("request")
		})
	}
}

// Run starts the service's listener and blocks until ctx is cancelled or
// ListenAndServe fails for a reason other than a clean shutdown.
func (s *Service) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.Port),
		Handler: s.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("service", s.Name).Int("port", s.Port).Msg("service listening")
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down %s: %w", s.Name, err)
		}
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s listener failed: %w", s.Name, err)
		}
		return nil
	}
}
