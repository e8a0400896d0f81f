package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	mdprint "github.com/alnah/go-mdprint"
	"github.com/alnah/go-mdprint/internal/config"
)

// Server timeouts. Conversions are bounded by the render timings, so the
// write timeout is left to them.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// runServe starts the HTTP conversion endpoint and blocks until ctx is done.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: serve takes no arguments: %v", ErrUsage, positional)
	}

	s, err := loadSettings(flags.common, flags.render, flags.converter, env.Stderr)
	if err != nil {
		return err
	}
	if flags.addr != "" {
		s.cfg.Server.Addr = flags.addr
	}
	if flags.maxBody != 0 {
		s.cfg.Server.MaxBodyBytes = flags.maxBody
	}
	if flags.workers != 0 {
		s.cfg.Server.Workers = flags.workers
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common)
	conv, err := env.NewConverter(converterOptions(s, logger, workingDir())...)
	if err != nil {
		return err
	}

	srv := newServer(conv, logger, s.cfg.Server)
	hs := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	logger.Info("listening", "addr", hs.Addr, "workers", cap(srv.slots), "katex", conv.KaTeXDir())
	return serveUntilDone(ctx, hs, logger)
}

// serveUntilDone runs hs until it fails or ctx is canceled, then drains
// in-flight conversions.
func serveUntilDone(ctx context.Context, hs *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- hs.ListenAndServe() }()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// server converts request bodies. Each request is an independent pipeline
// run with its own browser; slots bounds how many run at once.
type server struct {
	conv    Converter
	logger  *slog.Logger
	maxBody int64
	slots   chan struct{}
}

func newServer(conv Converter, logger *slog.Logger, cfg config.ServerConfig) *server {
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = config.DefaultConfig().Server.MaxBodyBytes
	}
	return &server{
		conv:    conv,
		logger:  logger,
		maxBody: maxBody,
		slots:   make(chan struct{}, resolveWorkers(cfg.Workers)),
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/convert", s.handleConvert)
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

// handleConvert reads Markdown from the body and answers with the PDF.
// ?title= overrides the document title.
func (s *server) handleConvert(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "reading body: "+err.Error(), http.StatusBadRequest)
		return
	}

	select {
	case s.slots <- struct{}{}:
		defer func() { <-s.slots }()
	case <-r.Context().Done():
		http.Error(w, "server busy", http.StatusServiceUnavailable)
		return
	}

	dir, err := os.MkdirTemp("", "mdprint-serve-*")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer func() { _ = os.RemoveAll(dir) }()

	res, err := s.conv.Convert(r.Context(), mdprint.Input{
		Markdown:   string(body),
		Title:      r.URL.Query().Get("title"),
		OutputPath: filepath.Join(dir, "document.pdf"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "application/pdf")
	h.Set("Content-Length", strconv.Itoa(len(res.PDF)))
	h.Set("Content-Disposition", `inline; filename="document.pdf"`)
	h.Set("X-Page-Count", strconv.Itoa(res.Pages))
	h.Set("X-Diagram-Count", strconv.Itoa(res.Diagrams))
	_, _ = w.Write(res.PDF)
}

// fail maps a conversion error to a status code.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	s.logger.Error("conversion failed", "error", err, "status", status, "request_id", middleware.GetReqID(r.Context()))
	http.Error(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, mdprint.ErrEmptyMarkdown):
		return http.StatusBadRequest
	case mdprint.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		// Client went away; the status is only logged.
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).Round(time.Millisecond),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// resolveWorkers determines how many conversions may run at once.
// Priority: explicit value > GOMAXPROCS-based calculation.
func resolveWorkers(n int) int {
	if n > 0 {
		return n
	}

	// Each conversion runs its own browser; GOMAXPROCS is adjusted by
	// automaxprocs for containers.
	n = runtime.GOMAXPROCS(0) / 2
	if n < 1 {
		return 1
	}
	if n > 8 {
		return 8
	}
	return n
}
