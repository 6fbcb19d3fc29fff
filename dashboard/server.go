// Package dashboard serves the marathon views over HTTP: an HTML page,
// interactive charts, PNG images and a JSON/CSV API.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/pivolan/marathon_analyzer/analysis"
	"github.com/pivolan/marathon_analyzer/ingest"
	"github.com/pivolan/marathon_analyzer/logger"
	"github.com/pivolan/marathon_analyzer/metrics"
	"golang.org/x/time/rate"
)

var errRateLimited = errors.New("too many uploads, retry later")

// Options are the defaults applied when a request leaves a parameter out.
type Options struct {
	TopN      int
	Threshold int
	PageSize  int
	YearFrom  int
	YearTo    int
	// UploadDir receives files posted to /api/upload.
	UploadDir string
	Ingest    ingest.Options
}

type Server struct {
	store   *analysis.Store
	opts    Options
	metrics *metrics.Manager
	log     logger.Logger
	uploads *rate.Limiter
}

func New(store *analysis.Store, opts Options, m *metrics.Manager, log logger.Logger) *Server {
	return &Server{
		store:   store,
		opts:    opts,
		metrics: m,
		log:     log.Named("dashboard"),
		// one upload every ten seconds, bursts of three
		uploads: rate.NewLimiter(rate.Every(10*time.Second), 3),
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/", s.index)
	r.Get("/charts", s.charts)
	r.Get("/png/{name}.png", s.png)
	r.Get("/health", s.health)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/views", s.listViews)
		r.Get("/views/{name}", s.view)
		r.Get("/results", s.results)
		r.Get("/report", s.report)
		r.Get("/summary", s.summary)
		r.With(s.limitUploads).Post("/upload", s.upload)
	})
	return r
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "dashboard listening", logger.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info(ctx, "dashboard shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.RecordHTTP(route, strconv.Itoa(status))
		s.log.Debug(r.Context(), "request",
			logger.String("method", r.Method),
			logger.String("route", route),
			logger.Int("status", status),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Any("duration", time.Since(start)),
		)
	})
}

func (s *Server) limitUploads(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.uploads.Allow() {
			s.log.Warn(r.Context(), "upload rate limit exceeded", logger.String("remote_addr", r.RemoteAddr))
			w.Header().Set("Retry-After", "10")
			s.fail(w, r, http.StatusTooManyRequests, errRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Load()
	render.JSON(w, r, map[string]interface{}{
		"status":  "ok",
		"records": snap.Dataset.Len(),
		"source":  snap.Source,
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error(r.Context(), "request failed", logger.String("path", r.URL.Path), logger.Error(err))
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}
