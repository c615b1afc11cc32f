package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brisalabs/windrose-service/internal/domain"
	"github.com/brisalabs/windrose-service/internal/pipeline"
)

// multipartField is the form field carrying the uploaded observation files.
const multipartField = "files"

// RosePipeline runs a full parse-normalize-aggregate-render request.
type RosePipeline interface {
	Render(ctx context.Context, files []pipeline.InputFile, opts pipeline.RenderOptions) (pipeline.Result, error)
	CheckReadiness(ctx context.Context) error
}

// Server exposes the wind-rose upload endpoints plus health, readiness, and
// metrics.
type Server struct {
	httpServer *http.Server
	pipeline   RosePipeline
	logger     *slog.Logger
	maxFiles   int
	maxBytes   int64
}

// NewServer creates an HTTP server with the render, archive, health,
// readiness, and metrics routes.
func NewServer(addr string, p RosePipeline, logger *slog.Logger, maxFiles int, maxBytes int64) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		pipeline: p,
		logger:   logger,
		maxFiles: maxFiles,
		maxBytes: maxBytes,
	}

	mux.HandleFunc("POST /v1/windrose", s.handleRender)
	mux.HandleFunc("POST /v1/windrose/archive", s.handleArchive)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(p))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleRender answers with the combined multi-panel PNG.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	files, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	result, err := s.pipeline.Render(r.Context(), files, pipeline.RenderOptions{})
	if !s.writeRenderError(w, result, err) {
		return
	}

	setResultHeaders(w, result)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="`+pipeline.CombinedFilename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(result.Combined) //nolint:errcheck // client gone, nothing to recover
}

// handleArchive answers with a zip of the combined figure plus one PNG per
// non-empty band.
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	files, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	result, err := s.pipeline.Render(r.Context(), files, pipeline.RenderOptions{PerBand: true})
	if !s.writeRenderError(w, result, err) {
		return
	}

	archive, err := buildArchive(result)
	if err != nil {
		s.logger.Error("archive build failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	setResultHeaders(w, result)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="wind_roses.zip"`)
	w.WriteHeader(http.StatusOK)
	w.Write(archive) //nolint:errcheck // client gone, nothing to recover
}

// readUpload buffers the multipart upload into memory. It writes the error
// response itself and reports false when the request is unusable.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]pipeline.InputFile, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)
	if err := r.ParseMultipartForm(s.maxBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart upload: " + err.Error()})
		return nil, false
	}

	headers := r.MultipartForm.File[multipartField]
	if len(headers) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("no %q files in upload", multipartField)})
		return nil, false
	}
	if len(headers) > s.maxFiles {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("too many files: %d, limit %d", len(headers), s.maxFiles),
		})
		return nil, false
	}

	files := make([]pipeline.InputFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read upload " + fh.Filename + ": " + err.Error()})
			return nil, false
		}
		data, err := io.ReadAll(f)
		f.Close() //nolint:errcheck // read-only part
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read upload " + fh.Filename + ": " + err.Error()})
			return nil, false
		}
		files = append(files, pipeline.InputFile{Name: fh.Filename, Data: data})
	}
	return files, true
}

// writeRenderError maps pipeline errors onto status codes, writing the
// response for failures. Reports true when the result is usable.
func (s *Server) writeRenderError(w http.ResponseWriter, result pipeline.Result, err error) bool {
	if err == nil {
		return true
	}

	var malformed *domain.MalformedFileError
	if errors.As(err, &malformed) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": malformed.Error(), "file": malformed.File})
		return false
	}

	var noData *pipeline.NoDataError
	if errors.As(err, &noData) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   "no usable wind data in uploaded files",
			"skipped": result.FilesSkipped,
		})
		return false
	}

	s.logger.Error("render failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	return false
}

// setResultHeaders surfaces the user-facing signals: accepted count and the
// non-contributing file warning.
func setResultHeaders(w http.ResponseWriter, result pipeline.Result) {
	w.Header().Set("X-Windrose-Files-Accepted", strconv.Itoa(result.FilesAccepted))
	if len(result.FilesSkipped) > 0 {
		w.Header().Set("X-Windrose-Files-Skipped", strings.Join(result.FilesSkipped, ","))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(p RosePipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := p.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort error response
}
