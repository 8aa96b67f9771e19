package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baditaflorin/go_ab_runner/internal/adapters/analytics"
	"github.com/baditaflorin/go_ab_runner/internal/adapters/location"
	"github.com/baditaflorin/go_ab_runner/internal/adapters/logger"
	"github.com/baditaflorin/go_ab_runner/internal/adapters/random"
	"github.com/baditaflorin/go_ab_runner/internal/adapters/storage"
	"github.com/baditaflorin/go_ab_runner/internal/config"
	"github.com/baditaflorin/go_ab_runner/internal/core/assignment"
	"github.com/baditaflorin/go_ab_runner/internal/core/domain"
	"github.com/baditaflorin/go_ab_runner/internal/core/results"
	"github.com/baditaflorin/go_ab_runner/internal/core/runner"
	"github.com/baditaflorin/go_ab_runner/internal/ports"
	"github.com/baditaflorin/l"
	"github.com/valyala/fasthttp"
)

// visitorCookieLifetime keeps the local storage scope alive across visits.
const visitorCookieLifetime = 365 * 24 * time.Hour

// PageResponse is returned for evaluated pages that did not redirect and
// by the results endpoint.
type PageResponse struct {
	Path          string                    `json:"path"`
	Redirect      string                    `json:"redirect,omitempty"`
	Results       map[string]domain.Variant `json:"results"`
	Notifications []domain.Notification     `json:"notifications"`
	Outcomes      []OutcomeResponse         `json:"outcomes"`
}

// OutcomeResponse is the JSON view of one experiment outcome.
type OutcomeResponse struct {
	Index        int    `json:"index"`
	ExperimentID string `json:"experimentId,omitempty"`
	Skipped      string `json:"skipped,omitempty"`
	Variant      string `json:"variant,omitempty"`
	Fresh        bool   `json:"fresh,omitempty"`
	EventSent    bool   `json:"eventSent,omitempty"`
	Action       string `json:"action"`
	Target       string `json:"target,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// server evaluates the configured experiments for every page request.
type server struct {
	cfg         config.ServerConfig
	experiments config.ExperimentList
	listErr     error
	store       *storage.SQLiteStore
	client      *fasthttp.Client
	random      ports.RandomSource
	logger      ports.Logger
}

func main() {
	configPath := flag.String("config", "abtest.yaml", "Path to the server and experiment configuration")
	port := flag.Int("port", 0, "HTTP server port (overrides the config file)")
	dbPath := flag.String("db", "", "SQLite database for local storage assignments (overrides the config file)")
	logFile := flag.String("log-file", "", "Log file path (empty = stdout)")
	flag.Parse()

	cfg, err := config.LoadServerConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.Storage.DatabasePath = *dbPath
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}

	lg, err := createLogger(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.FromExisting(lg)
	defer log.Close()

	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		log.Error("Failed to open assignment store", "path", cfg.Storage.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	srv := newServer(cfg, store, &fasthttp.Client{}, random.NewTimeSeeded(), log)

	log.Info("Starting AB test server",
		"port", cfg.Port,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"experiments", len(srv.experiments.Experiments()),
		"database", cfg.Storage.DatabasePath,
	)

	httpServer := &fasthttp.Server{
		Handler:               srv.requestHandler,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		DisableKeepalive:      false,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxIdleWorkerDuration: 10 * time.Second,
		Logger:                nil, // we'll handle logging ourselves
	}

	// Set up graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("Shutting down server...")
		if err := httpServer.Shutdown(); err != nil {
			log.Error("Error during server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info("Server listening", "address", addr)
	if err := httpServer.ListenAndServe(addr); err != nil {
		log.Error("Server error", "error", err)
	}

	<-idleConnsClosed
	log.Info("Server stopped")
}

func newServer(cfg config.ServerConfig, store *storage.SQLiteStore, client *fasthttp.Client, rnd ports.RandomSource, log ports.Logger) *server {
	s := &server{cfg: cfg, store: store, client: client, random: rnd, logger: log}
	s.experiments, s.listErr = cfg.ExperimentList()
	if s.listErr != nil {
		log.Warn("AB Test configuration not found. Skipping AB Test execution.", "error", s.listErr)
	}
	return s
}

// requestHandler is the main fasthttp request handler
func (s *server) requestHandler(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	ctx.Response.Header.Set("Server", "ABTestServer")

	switch string(ctx.Path()) {
	case "/health":
		s.handleHealthCheck(ctx)
	case "/abtest/experiments":
		s.handleExperiments(ctx)
	case "/abtest/results":
		s.handleResults(ctx)
	default:
		s.handlePage(ctx)
	}

	s.logger.Info("Request processed",
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"duration", time.Since(startTime),
	)
}

func (s *server) handleHealthCheck(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, s.logger, map[string]interface{}{
		"status":      "ok",
		"experiments": len(s.experiments.Experiments()),
		"time":        time.Now().Format(time.RFC3339),
	})
}

func (s *server) handleExperiments(ctx *fasthttp.RequestCtx) {
	if s.listErr != nil {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		writeJSONError(ctx, s.logger, "AB test configuration not found")
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, s.logger, s.experiments.Experiments())
}

// handlePage evaluates the experiments for the requested path. A redirect
// experiment answers with 302; everything else returns the page's results.
func (s *server) handlePage(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() && !ctx.IsHead() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, s.logger, "Method not allowed")
		return
	}

	loc := location.FromRequest(ctx, string(ctx.Request.Header.Peek("X-Forwarded-Proto")))
	page, ok := s.evaluate(ctx, loc)
	if !ok {
		return
	}
	if loc.Apply() {
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, s.logger, page)
}

// handleResults evaluates the page named by the path query argument for the
// calling visitor and returns the edits registry and notifications. A
// redirect is reported, never followed.
func (s *server) handleResults(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, s.logger, "Method not allowed")
		return
	}
	if s.listErr != nil {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		writeJSONError(ctx, s.logger, "AB test configuration not found")
		return
	}

	path := string(ctx.QueryArgs().Peek("path"))
	if path == "" {
		path = "/"
	}
	loc := location.FromRequest(ctx, string(ctx.Request.Header.Peek("X-Forwarded-Proto"))).WithPath(path)
	page, ok := s.evaluate(ctx, loc)
	if !ok {
		return
	}
	if target, redirected := loc.Redirected(); redirected {
		page.Redirect = target
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, s.logger, page)
}

// evaluate runs the configured list against loc for the request's visitor.
// ok is false when an error response was already written.
func (s *server) evaluate(ctx *fasthttp.RequestCtx, loc *location.Request) (PageResponse, bool) {
	visitor := s.visitorScope(ctx)
	registry := results.NewRegistry()
	bus := results.NewBus()

	var report domain.Report
	if s.listErr == nil {
		r, err := runner.New(runner.Dependencies{
			Location:  loc,
			Navigator: loc,
			Stores: assignment.Stores{
				Cookie: storage.NewRequestCookies(ctx),
				Local:  s.store.Scope(visitor),
			},
			Analytics: analytics.Prefer(
				s.universal(visitor),
				s.measurement(visitor),
			),
			Results: registry,
			Events:  bus,
			Random:  s.random,
			Logger:  s.logger,
		})
		if err != nil {
			s.logger.Error("Failed to create runner", "error", err)
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			writeJSONError(ctx, s.logger, "Internal server error")
			return PageResponse{}, false
		}

		c, cancel := context.WithTimeout(context.Background(), s.cfg.Analytics.Timeout+time.Second)
		report = r.RunList(c, s.experiments)
		cancel()
	}

	return PageResponse{
		Path:          loc.Pathname(),
		Results:       registry.Snapshot(),
		Notifications: bus.Published(),
		Outcomes:      outcomesResponse(report),
	}, true
}

// visitorScope returns the visitor id the local storage scope is keyed by,
// issuing a new one when the client has none.
func (s *server) visitorScope(ctx *fasthttp.RequestCtx) string {
	name := s.cfg.Storage.VisitorCookie
	if id := string(ctx.Request.Header.Cookie(name)); storage.ValidScopeID(id) {
		return id
	}

	id := storage.NewScopeID()
	c := storage.NewAssignmentCookie(name, id, visitorCookieLifetime, time.Now())
	defer fasthttp.ReleaseCookie(c)
	c.SetHTTPOnly(true)
	ctx.Response.Header.SetCookie(c)
	return id
}

func (s *server) universal(visitor string) ports.AnalyticsSink {
	u := analytics.NewUniversal(s.client, s.cfg.Analytics.TrackingID, visitor)
	if s.cfg.Analytics.Endpoint != "" {
		u.Endpoint = s.cfg.Analytics.Endpoint
	}
	if s.cfg.Analytics.Timeout > 0 {
		u.Timeout = s.cfg.Analytics.Timeout
	}
	return u
}

func (s *server) measurement(visitor string) ports.AnalyticsSink {
	m := analytics.NewMeasurement(s.client, s.cfg.Analytics.MeasurementID, s.cfg.Analytics.APISecret, visitor)
	if s.cfg.Analytics.Endpoint != "" {
		m.Endpoint = s.cfg.Analytics.Endpoint
	}
	if s.cfg.Analytics.Timeout > 0 {
		m.Timeout = s.cfg.Analytics.Timeout
	}
	return m
}

func outcomesResponse(report domain.Report) []OutcomeResponse {
	out := make([]OutcomeResponse, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		resp := OutcomeResponse{
			Index:        o.Index,
			ExperimentID: o.ExperimentID,
			Skipped:      string(o.Skipped),
			EventSent:    o.EventSent,
			Action:       string(o.Action),
			Target:       o.Target,
		}
		if o.Assignment != nil {
			resp.Variant = o.Assignment.Variant.Name
			resp.Fresh = o.Assignment.Fresh
		}
		if o.Err != nil {
			resp.Error = o.Err.Error()
		}
		out = append(out, resp)
	}
	return out
}

// Helper functions

// writeJSONResponse writes a JSON response to the context
func writeJSONResponse(ctx *fasthttp.RequestCtx, log ports.Logger, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		log.Error("Error marshaling JSON response", "error", err)
		writeJSONError(ctx, log, "Internal server error")
		return
	}

	ctx.SetContentType("application/json")
	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func writeJSONError(ctx *fasthttp.RequestCtx, log ports.Logger, message string) {
	ctx.SetContentType("application/json")
	response, err := json.Marshal(ErrorResponse{Error: message})
	if err != nil {
		log.Error("Error marshaling JSON error response", "error", err)
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}

	ctx.SetBody(response)
}

// createLogger creates and configures a logger
func createLogger(logFile string) (l.Logger, error) {
	factory := l.NewStandardFactory()

	var output io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	cfg := logger.DefaultConfig(output)
	cfg.JsonFormat = true
	cfg.MaxFileSize = 100 * 1024 * 1024 // 100MB

	lg, err := factory.CreateLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return lg, nil
}
