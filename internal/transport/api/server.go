package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sandevgo/syllabot/internal/core"
	"github.com/sandevgo/syllabot/internal/service/syllabus"
	"github.com/sandevgo/syllabot/pkg/log"
)

const (
	readHeaderTimeout = 10 * time.Second
	// Both pipelines accept full syllabus text.
	maxBodyBytes = 8 << 20
)

var allowedHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

type Extractor interface {
	Extract(ctx context.Context, req syllabus.ExtractRequest, credential string) (syllabus.ExtractResult, error)
}

type Relay interface {
	Chat(ctx context.Context, req syllabus.ChatRequest, credential string) (io.ReadCloser, error)
}

type Server struct {
	addr      string
	extractor Extractor
	relay     Relay
	store     core.Store
	metrics   *Metrics

	srv *http.Server
}

func NewServer(addr string, extractor Extractor, relay Relay, store core.Store, metrics *Metrics) *Server {
	if metrics == nil {
		metrics = NewMetrics()
	}
	s := &Server{
		addr:      addr,
		extractor: extractor,
		relay:     relay,
		store:     store,
		metrics:   metrics,
	}
	s.srv = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Start blocks until the listener is closed by Shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve handles connections on ln. Requests inherit the values of ctx but not
// its cancellation; in-flight requests are drained by Shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	base := context.WithoutCancel(ctx)
	s.srv.BaseContext = func(net.Listener) context.Context { return base }

	log.FromCtx(ctx).Info().Str("addr", ln.Addr().String()).Msg("http server listening")
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("shutting down http server")
	return s.srv.Shutdown(ctx)
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: allowedHeaders,
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", s.metrics.Handler())

	functions := func(r chi.Router) {
		r.Options("/analyze-syllabus", handlePreflight)
		r.Options("/syllabus-chat", handlePreflight)
		r.With(requireAuthorization(s.metrics, "analyze-syllabus")).Post("/analyze-syllabus", s.handleAnalyze)
		r.With(requireAuthorization(s.metrics, "syllabus-chat")).Post("/syllabus-chat", s.handleChat)
	}
	r.Group(functions)
	r.Route("/functions/v1", functions)

	return r
}

// corsHeaders sets the permissive headers on every response, including
// requests without an Origin header and error responses.
func corsHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		next.ServeHTTP(w, r)
	})
}

func handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func requireAuthorization(m *Metrics, endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				m.observeRequest(endpoint, http.StatusUnauthorized)
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: msgMissingAuth})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger puts a request scoped logger into the context and logs the
// outcome once the handler returns.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := log.WithFields(r.Context(), map[string]any{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		log.FromCtx(ctx).Debug().
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}
