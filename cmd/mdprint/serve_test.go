package main

// Notes:
// - The router is exercised through httptest with a fake converter; no
//   browser runs. Each request's temp output directory must be gone once the
//   response is written.
// - serveUntilDone: we test clean shutdown on context cancellation and the
//   error path for an unusable address.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mdprint "github.com/alnah/go-mdprint"
	"github.com/alnah/go-mdprint/internal/config"
)

func newTestServer(conv *fakeConverter, cfg config.ServerConfig) http.Handler {
	logger := slog.New(slog.DiscardHandler)
	return newServer(conv, logger, cfg).routes()
}

// ---------------------------------------------------------------------------
// TestServe_Health
// ---------------------------------------------------------------------------

func TestServe_Health(t *testing.T) {
	t.Parallel()

	h := newTestServer(&fakeConverter{}, config.ServerConfig{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Errorf("GET /healthz = %d %q", rec.Code, rec.Body.String())
	}
}

// ---------------------------------------------------------------------------
// TestServe_Convert
// ---------------------------------------------------------------------------

func TestServe_Convert(t *testing.T) {
	t.Parallel()

	conv := &fakeConverter{result: pdfResult()}
	h := newTestServer(conv, config.ServerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/convert?title=Weekly+%3CReport%3E", strings.NewReader("# Doc\n\n$x$\n"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if pc := rec.Header().Get("X-Page-Count"); pc != "3" {
		t.Errorf("X-Page-Count = %q, want 3", pc)
	}
	if dc := rec.Header().Get("X-Diagram-Count"); dc != "2" {
		t.Errorf("X-Diagram-Count = %q, want 2", dc)
	}
	if rec.Body.Len() != 2048 {
		t.Errorf("body length = %d, want 2048", rec.Body.Len())
	}

	in := conv.lastInput(t)
	if in.Title != "Weekly <Report>" {
		t.Errorf("Title = %q", in.Title)
	}
	if in.Markdown != "# Doc\n\n$x$\n" {
		t.Errorf("Markdown = %q", in.Markdown)
	}
	if _, err := os.Stat(filepath.Dir(in.OutputPath)); !os.IsNotExist(err) {
		t.Errorf("request directory %s not removed (stat error = %v)", filepath.Dir(in.OutputPath), err)
	}
}

func TestServe_ConvertErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		body       string
		convErr    error
		maxBody    int64
		wantStatus int
	}{
		{"empty markdown", http.MethodPost, "  \n", nil, 0, http.StatusBadRequest},
		{"body too large", http.MethodPost, strings.Repeat("a", 64), nil, 16, http.StatusRequestEntityTooLarge},
		{"diagram timeout", http.MethodPost, "# x", fmt.Errorf("%w: 0 of 1", mdprint.ErrDiagramRenderTimeout), 0, http.StatusGatewayTimeout},
		{"navigation timeout", http.MethodPost, "# x", mdprint.ErrNavigationTimeout, 0, http.StatusGatewayTimeout},
		{"capture failure", http.MethodPost, "# x", mdprint.ErrCaptureFailure, 0, http.StatusInternalServerError},
		{"wrong method", http.MethodGet, "", nil, 0, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conv := &fakeConverter{result: pdfResult(), err: tt.convErr}
			h := newTestServer(conv, config.ServerConfig{MaxBodyBytes: tt.maxBody})

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, "/convert", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %q)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if rec.Code != http.StatusOK && rec.Header().Get("Content-Type") == "application/pdf" {
				t.Error("error response labelled as PDF")
			}
		})
	}
}

func TestServe_Busy(t *testing.T) {
	t.Parallel()

	blocking := &fakeConverter{block: true}
	srv := newServer(blocking, slog.New(slog.DiscardHandler), config.ServerConfig{Workers: 1})
	h := srv.routes()

	// Fill the only slot with a request that holds it until canceled.
	firstCtx, cancelFirst := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader("# a")).WithContext(firstCtx)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}()
	for len(srv.slots) == 0 {
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader("# b")).WithContext(ctx))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	cancelFirst()
	<-done
}

// ---------------------------------------------------------------------------
// TestStatusFor / TestResolveWorkers
// ---------------------------------------------------------------------------

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{mdprint.ErrEmptyMarkdown, http.StatusBadRequest},
		{mdprint.ErrNavigationTimeout, http.StatusGatewayTimeout},
		{fmt.Errorf("x: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{context.Canceled, http.StatusServiceUnavailable},
		{mdprint.ErrPlaceholderCountMismatch, http.StatusInternalServerError},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestResolveWorkers(t *testing.T) {
	t.Parallel()

	if got := resolveWorkers(5); got != 5 {
		t.Errorf("resolveWorkers(5) = %d", got)
	}
	if got := resolveWorkers(0); got < 1 || got > 8 {
		t.Errorf("resolveWorkers(0) = %d, want 1..8", got)
	}
}

// ---------------------------------------------------------------------------
// TestServeUntilDone - Lifecycle
// ---------------------------------------------------------------------------

func TestServeUntilDone_Shutdown(t *testing.T) {
	t.Parallel()

	hs := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second}
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- serveUntilDone(ctx, hs, slog.New(slog.DiscardHandler)) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("serveUntilDone() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serveUntilDone() did not return after cancel")
	}
}

func TestServeUntilDone_BadAddr(t *testing.T) {
	t.Parallel()

	hs := &http.Server{Addr: "256.0.0.1:-1", Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second}
	err := serveUntilDone(context.Background(), hs, slog.New(slog.DiscardHandler))
	if err == nil || !strings.Contains(err.Error(), "server error") {
		t.Errorf("serveUntilDone() error = %v, want server error", err)
	}
}

// ---------------------------------------------------------------------------
// TestRequestLogger
// ---------------------------------------------------------------------------

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := requestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = io.WriteString(w, "short and stout")
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pot", nil))

	for _, want := range []string{"method=GET", "path=/pot", "status=418", "bytes=15"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log missing %q: %s", want, buf.String())
		}
	}
}
