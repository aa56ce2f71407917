// Package dashboard serves the broker-performance report as HTML pages.
package dashboard

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/KaramelBytes/brokerdash-cli/internal/broker"
	"github.com/KaramelBytes/brokerdash-cli/internal/chart"
	"github.com/KaramelBytes/brokerdash-cli/internal/dataset"
	"github.com/KaramelBytes/brokerdash-cli/internal/report"
	"github.com/KaramelBytes/brokerdash-cli/internal/session"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Options configures the dashboard server.
type Options struct {
	Addr             string
	DefaultThreshold int
	MaxUploadBytes   int64
	MaxSessions      int
	ExportFilename   string
	Report           report.Options
	// ParseOptions picks CSV options for an uploaded file name. Nil uses
	// comma or tab by extension with auto-detected number locale.
	ParseOptions func(filename string) dataset.ParseOptions
}

// Server is the upload-and-report HTTP frontend.
type Server struct {
	httpServer *http.Server
	opts       Options
	store      *session.Store
	tmpl       *template.Template
	logger     *zap.Logger
	startedAt  time.Time
}

// NewServer creates a dashboard server bound to opts.Addr.
func NewServer(opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	if opts.ExportFilename == "" {
		opts.ExportFilename = "filtered_data.csv"
	}
	if opts.ParseOptions == nil {
		opts.ParseOptions = func(filename string) dataset.ParseOptions {
			opt := dataset.DefaultParseOptions()
			opt.Delimiter = dataset.DelimiterFor(filename)
			return opt
		}
	}
	opts.DefaultThreshold = broker.ClampThreshold(opts.DefaultThreshold)

	s := &Server{
		opts:      opts,
		store:     session.NewStore(opts.MaxSessions),
		tmpl:      template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")),
		logger:    logger,
		startedAt: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /s/{id}", s.handleReport)
	mux.HandleFunc("GET /s/{id}/filtered_data.csv", s.handleExport)
	mux.HandleFunc("GET /s/{id}/report.json", s.handleJSON)
	mux.HandleFunc("GET /s/{id}/resolution.svg", s.handleChart(func(rep *report.Report) ([]byte, error) {
		return rep.ResolutionChart.SVG()
	}))
	mux.HandleFunc("GET /s/{id}/distribution.svg", s.handleChart(func(rep *report.Report) ([]byte, error) {
		return rep.Distribution.SVG()
	}))
	mux.HandleFunc("POST /s/{id}/delete", s.handleDelete)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Sessions returns the server's session store.
func (s *Server) Sessions() *session.Store { return s.store }

// Start begins serving HTTP requests. The listener is bound before Start
// returns so address errors surface immediately.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("dashboard listening", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("dashboard server", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type indexPage struct {
	Error            string
	DefaultThreshold int
	Recent           []*session.Session
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "index.html", indexPage{
		DefaultThreshold: s.opts.DefaultThreshold,
		Recent:           s.store.List(),
	})
}

// POST /upload: parse and validate a CSV, then open a session for it.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	tooLargeMsg := fmt.Sprintf("file exceeds the %d MB upload limit", s.opts.MaxUploadBytes>>20)
	if r.ContentLength > s.opts.MaxUploadBytes {
		s.uploadError(w, http.StatusRequestEntityTooLarge, tooLargeMsg)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.uploadError(w, http.StatusRequestEntityTooLarge, tooLargeMsg)
			return
		}
		s.uploadError(w, http.StatusBadRequest, "invalid upload: "+err.Error())
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		s.uploadError(w, http.StatusBadRequest, "Please upload a CSV to begin.")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		s.uploadError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}

	name := filepath.Base(hdr.Filename)
	raw, err := dataset.Parse(data, s.opts.ParseOptions(name))
	if err != nil {
		s.logger.Info("upload rejected", zap.String("file", name), zap.Error(err))
		s.uploadError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := broker.Validate(raw); err != nil {
		s.logger.Info("upload rejected", zap.String("file", name), zap.Error(err))
		s.uploadError(w, http.StatusBadRequest, err.Error())
		return
	}

	threshold := s.threshold(r.FormValue("min_success"), s.opts.DefaultThreshold)
	sess := s.store.Create(name, raw, threshold)
	s.logger.Info("session created",
		zap.String("session", sess.ID),
		zap.String("file", name),
		zap.Int("rows", raw.Len()),
		zap.Int("columns", len(raw.Columns())))
	http.Redirect(w, r, fmt.Sprintf("/s/%s?min_success=%d", sess.ID, threshold), http.StatusSeeOther)
}

func (s *Server) uploadError(w http.ResponseWriter, status int, msg string) {
	s.render(w, status, "index.html", indexPage{Error: msg, DefaultThreshold: s.opts.DefaultThreshold})
}

type reportPage struct {
	SessionID string
	FileName  string
	Export    string
	R         *report.Report
}

// GET /s/{id}: every view for the requested threshold.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sess, rep, ok := s.build(w, r)
	if !ok {
		return
	}
	s.render(w, http.StatusOK, "report.html", reportPage{
		SessionID: sess.ID,
		FileName:  sess.FileName,
		Export:    s.opts.ExportFilename,
		R:         rep,
	})
}

// GET /s/{id}/filtered_data.csv: filtered table download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	_, rep, ok := s.build(w, r)
	if !ok {
		return
	}
	b, err := rep.ExportCSV()
	if err != nil {
		s.logger.Error("export csv", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.opts.ExportFilename))
	_, _ = w.Write(b)
}

// GET /s/{id}/report.json: the report as JSON.
func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	_, rep, ok := s.build(w, r)
	if !ok {
		return
	}
	b, err := rep.JSON()
	if err != nil {
		s.logger.Error("encode report", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
}

// handleChart serves one of the report's charts as SVG. A chart with nothing
// to draw is a 404.
func (s *Server) handleChart(draw func(*report.Report) ([]byte, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, rep, ok := s.build(w, r)
		if !ok {
			return
		}
		b, err := draw(rep)
		if errors.Is(err, chart.ErrNothingToDraw) {
			http.Error(w, "(no data)", http.StatusNotFound)
			return
		}
		if err != nil {
			s.logger.Error("render chart", zap.String("session", sess.ID), zap.String("path", r.URL.Path), zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(b)
	}
}

// POST /s/{id}/delete: discard a session.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.store.Delete(r.PathValue("id"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GET /healthz: liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":       true,
		"sessions": s.store.Len(),
		"uptime_s": time.Since(s.startedAt).Seconds(),
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// build resolves the session and threshold for a request and runs the
// pipeline. It writes the error response itself and returns ok=false on failure.
func (s *Server) build(w http.ResponseWriter, r *http.Request) (*session.Session, *report.Report, bool) {
	sess, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, nil, false
	}
	threshold := s.threshold(r.URL.Query().Get("min_success"), sess.Threshold)
	if threshold != sess.Threshold {
		_ = s.store.SetThreshold(sess.ID, threshold)
	}
	start := time.Now()
	rep, err := report.Build(sess.FileName, sess.Raw, threshold, s.opts.Report)
	if err != nil {
		s.logger.Error("build report", zap.String("session", sess.ID), zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, nil, false
	}
	s.logger.Debug("report built",
		zap.String("session", sess.ID),
		zap.Int("threshold", threshold),
		zap.Int("rows", rep.Summary.Rows),
		zap.Duration("took", time.Since(start)))
	return sess, rep, true
}

// threshold reads a min_success value, clamped to [0,100]. Missing or
// non-integer input falls back to def.
func (s *Server) threshold(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return broker.ClampThreshold(n)
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
