// Package server serves harness pages and project files to the browsers of a run.
package server

import (
	"context"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gorilla/mux"

	"wtp/internal/domain"
	"wtp/internal/plan"
)

const (
	harnessPath   = "/__wtp__/harness/"
	frameworkPath = "/__wtp__/framework.js"
	baselinePath  = "/__wtp__/baseline/"
)

// mimeKinds maps the short names used in config to content types
var mimeKinds = map[string]string{
	"js":   "application/javascript; charset=utf-8",
	"css":  "text/css; charset=utf-8",
	"html": "text/html; charset=utf-8",
	"json": "application/json",
}

// Config holds server configuration options
type Config struct {
	Addr         string            // listen address; ":0" style for a random port
	Root         string            // project directory served under /
	MimeTypes    map[string]string // glob -> kind (js, css, html, json) or a full content type
	Screenshots  string            // directory under Root holding visual baselines
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns a loopback configuration on a random port
func DefaultConfig(root string) Config {
	return Config{
		Addr:         "127.0.0.1:0",
		Root:         root,
		Screenshots:  "screenshots",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server hosts the harness pages of one plan
type Server struct {
	cfg        Config
	units      []domain.ExecutionUnit
	templates  map[string]*template.Template
	patterns   []string // MimeTypes keys, sorted
	httpServer *http.Server

	mu       sync.Mutex
	listener net.Listener
	addr     string
	running  bool
}

// New creates a server for units. Harness templates are parsed up front.
// The server is not started until Start() is called.
func New(cfg Config, units []domain.ExecutionUnit) (*Server, error) {
	s := &Server{
		cfg:       cfg,
		units:     units,
		templates: make(map[string]*template.Template),
	}

	for pattern := range cfg.MimeTypes {
		s.patterns = append(s.patterns, pattern)
	}
	sort.Strings(s.patterns)

	for _, u := range units {
		if _, ok := s.templates[u.Harness.Name]; ok {
			continue
		}
		tmpl, err := template.New(u.Harness.Name).Parse(u.Harness.Template)
		if err != nil {
			return nil, fmt.Errorf("harness %q: %w", u.Harness.Name, err)
		}
		s.templates[u.Harness.Name] = tmpl
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc(harnessPath+"{unit:[0-9]+}", s.serveHarness).Methods("GET")
	router.HandleFunc(frameworkPath, s.serveFramework).Methods("GET")
	router.HandleFunc(baselinePath+"{browser}/{name:.+}", s.serveBaseline).Methods("GET", "HEAD")
	router.PathPrefix("/").Handler(s.staticHandler()).Methods("GET", "HEAD")
	return router
}

func (s *Server) serveHarness(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(mux.Vars(r)["unit"])
	if err != nil || idx < 0 || idx >= len(s.units) {
		http.NotFound(w, r)
		return
	}
	u := s.units[idx]

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct{ Framework string }{Framework: FrameworkURL(u.File)}
	if err := s.templates[u.Harness.Name].Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) serveFramework(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", mimeKinds["js"])
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(frameworkJS))
}

// serveBaseline serves the stored baseline screenshot of a browser
func (s *Server) serveBaseline(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	b := domain.BrowserTarget(vars["browser"])
	name := vars["name"]
	if !b.Valid() || strings.Contains(name, "..") {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, filepath.Join(s.cfg.Root, s.cfg.Screenshots, filepath.FromSlash(plan.BaselineName(b, name))))
}

// staticHandler serves project files, forcing content types configured in MimeTypes
func (s *Server) staticHandler() http.Handler {
	files := http.FileServer(http.Dir(s.cfg.Root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := s.contentType(strings.TrimPrefix(r.URL.Path, "/")); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		w.Header().Set("Cache-Control", "no-store")
		files.ServeHTTP(w, r)
	})
}

func (s *Server) contentType(path string) string {
	for _, pattern := range s.patterns {
		kind := s.cfg.MimeTypes[pattern]
		ok, err := doublestar.Match(pattern, path)
		if err != nil || !ok {
			continue
		}
		if ct, known := mimeKinds[kind]; known {
			return ct
		}
		return kind
	}
	return ""
}

// FrameworkURL is the bootstrap module URL for a test file
func FrameworkURL(file string) string {
	return frameworkPath + "?file=" + url.QueryEscape(file)
}

// HarnessURL returns the absolute harness URL of unit on a server at addr
func HarnessURL(addr string, u domain.ExecutionUnit) string {
	return fmt.Sprintf("http://%s%s%d", addr, harnessPath, u.Index)
}

// Start begins listening and serving HTTP requests.
// Returns the actual address the server is listening on (useful when port is 0).
// This method is non-blocking - the server runs in a goroutine.
func (s *Server) Start() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return s.addr, nil
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen: %w", err)
	}

	s.listener = ln
	s.addr = ln.Addr().String()
	s.running = true

	go func() {
		// ErrServerClosed after Shutdown is expected
		_ = s.httpServer.Serve(ln)
	}()

	return s.addr, nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the address the server is listening on.
// Returns empty string before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
