package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/dirmap/pkg/buildinfo"
	"github.com/matzehuels/dirmap/pkg/cache"
	derrors "github.com/matzehuels/dirmap/pkg/errors"
	"github.com/matzehuels/dirmap/pkg/fstree"
	"github.com/matzehuels/dirmap/pkg/observability"
	"github.com/matzehuels/dirmap/pkg/pipeline"
	"github.com/matzehuels/dirmap/pkg/treemap"
)

const (
	// maxLayouts bounds the per-frame layout memo.
	maxLayouts = 64

	shutdownTimeout = 5 * time.Second
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags inputFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve [dir|tree.json]",
		Short: "Serve an interactive treemap over HTTP",
		Long: `Serve an interactive treemap over HTTP.

The tree is scanned once at startup. Endpoints:

  GET /                          page showing the treemap at window size
  GET /treemap.{svg,png,pdf,json}?w=&h=   rendered treemap
  GET /api/node?x=&y=&w=&h=      block under a point, as JSON
  GET /api/tree                  the scanned tree, as JSON
  GET /healthz                   liveness probe`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "."
			if len(args) == 1 {
				input = args[0]
			}
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Serve.Addr
			}
			return c.runServe(cmd.Context(), input, addr, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, input, addr string, flags inputFlags) error {
	opts := c.baseOptions(input, flags)
	opts.Popups = true
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Scanning "+input+"...")
	opts.OnDir = func(path string) { spinner.SetMessage("Scanning " + path) }
	spinner.Start()
	snap, cached, err := runner.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Scan failed")
		return err
	}
	spinner.Stop()
	opts.OnDir = nil
	printSnapshot(snap, cached)

	srv := &http.Server{
		Addr:              addr,
		Handler:           newServer(snap, runner, opts).routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return withLogger(context.Background(), c.Logger)
		},
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	printInfo("Listening on %s", StyleLink.Render("http://"+addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// =============================================================================
// server - HTTP handlers
// =============================================================================

// server answers treemap requests for one snapshot. Layouts are computed once
// per frame size; concurrent requests for the same size share the work.
type server struct {
	snap        *fstree.Snapshot
	fingerprint string
	runner      *pipeline.Runner
	opts        pipeline.Options

	group   singleflight.Group
	mu      sync.Mutex
	layouts map[treemap.Rect]*treemap.Layout
}

func newServer(snap *fstree.Snapshot, runner *pipeline.Runner, opts pipeline.Options) *server {
	return &server{
		snap:        snap,
		fingerprint: cache.Fingerprint(snap.Root),
		runner:      runner,
		opts:        opts,
		layouts:     make(map[treemap.Rect]*treemap.Layout),
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observe)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/treemap.{format}", s.handleTreemap)
	r.Route("/api", func(r chi.Router) {
		r.Get("/node", s.handleNode)
		r.Get("/tree", s.handleTree)
	})
	return r
}

// observe reports requests to the HTTP hooks and stamps the Server header.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set("Server", buildinfo.UserAgent())
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
	})
}

// layout returns the memoized layout for a w×h frame.
func (s *server) layout(ctx context.Context, w, h int) (*treemap.Layout, error) {
	frame := treemap.Rect{W: w, H: h}
	s.mu.Lock()
	l, ok := s.layouts[frame]
	s.mu.Unlock()
	if ok {
		return l, nil
	}

	v, err, _ := s.group.Do(frame.String(), func() (any, error) {
		s.mu.Lock()
		l, ok := s.layouts[frame]
		s.mu.Unlock()
		if ok {
			return l, nil
		}

		opts := s.opts
		opts.Width, opts.Height = w, h
		l, err := s.runner.ComputeLayout(ctx, s.snap.Root, opts)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if len(s.layouts) >= maxLayouts {
			clear(s.layouts)
		}
		s.layouts[frame] = l
		s.mu.Unlock()
		return l, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*treemap.Layout), nil
}

// frameParams reads the w and h query parameters, defaulting to the
// configured frame.
func (s *server) frameParams(r *http.Request) (int, int, error) {
	w, err := intParam(r, "w", s.opts.Width)
	if err != nil {
		return 0, 0, err
	}
	h, err := intParam(r, "h", s.opts.Height)
	if err != nil {
		return 0, 0, err
	}
	return w, h, derrors.ValidateDimensions(w, h)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		if def < 0 {
			return 0, derrors.New(derrors.ErrCodeInvalidInput, "missing query parameter %q", name)
		}
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, derrors.New(derrors.ErrCodeInvalidInput, "query parameter %q must be an integer, got %q", name, v)
	}
	return n, nil
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": buildinfo.Version,
		"scan_id": s.snap.ID.String(),
	})
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

func (s *server) handleTreemap(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}
	width, height, err := s.frameParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	opts := s.opts
	opts.Width, opts.Height = width, height
	opts.Formats = []string{format}
	if v := r.URL.Query().Get("popups"); v != "" {
		opts.Popups = v != "0" && v != "false"
	}
	if v := r.URL.Query().Get("labels"); v != "" {
		opts.Labels = v != "0" && v != "false"
	}

	key, _ := json.Marshal(opts.ArtifactKeyOpts(format))
	etag := cache.ETag(append([]byte(s.fingerprint), key...))
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	l, err := s.layout(r.Context(), width, height)
	if err != nil {
		writeError(w, err)
		return
	}
	artifacts, hit, err := s.runner.RenderWithFingerprint(r.Context(), l, s.snap, s.fingerprint, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	loggerFromContext(r.Context()).Debug("served treemap", "format", format, "frame", l.Frame, "cached", hit)

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(artifacts[format])
}

// nodeResponse is the body of /api/node.
type nodeResponse struct {
	resolvedNode
	Trail []string `json:"trail"`
}

func (s *server) handleNode(w http.ResponseWriter, r *http.Request) {
	x, err := intParam(r, "x", -1)
	if err != nil {
		writeError(w, err)
		return
	}
	y, err := intParam(r, "y", -1)
	if err != nil {
		writeError(w, err)
		return
	}
	width, height, err := s.frameParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	l, err := s.layout(r.Context(), width, height)
	if err != nil {
		writeError(w, err)
		return
	}

	root := s.snap.Root
	if rect, ok := l.Rect(root); !ok || !rect.Contains(x, y) {
		writeError(w, derrors.New(derrors.ErrCodeNotFound, "no block at (%d, %d)", x, y))
		return
	}
	trail := l.Trail(root, x, y)
	resp := nodeResponse{
		resolvedNode: newResolvedNode(l, trail[len(trail)-1]),
		Trail:        make([]string, len(trail)),
	}
	for i, n := range trail {
		resp.Trail[i] = n.Path
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleTree(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", strconv.Quote(s.fingerprint))
	if err := fstree.WriteJSON(s.snap, w); err != nil {
		loggerFromContext(r.Context()).Warn("write tree", "error", err)
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>dirmap · {{.Root}}</title>
<style>
html, body { margin: 0; height: 100%; overflow: hidden; background: #222; }
#map { display: block; width: 100vw; height: 100vh; }
</style>
</head>
<body>
<object id="map" type="image/svg+xml"></object>
<script>
(function () {
  var map = document.getElementById("map");
  function load() {
    map.data = "/treemap.svg?w=" + window.innerWidth + "&h=" + window.innerHeight;
  }
  var timer;
  window.addEventListener("resize", function () {
    clearTimeout(timer);
    timer = setTimeout(load, 200);
  });
  load();
})();
</script>
</body>
</html>
`))

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, map[string]string{"Root": s.snap.RootPath}); err != nil {
		loggerFromContext(r.Context()).Warn("render index", "error", err)
	}
}

// =============================================================================
// Responses
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps coded errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch derrors.GetCode(err) {
	case derrors.ErrCodeInvalidInput, derrors.ErrCodeInvalidFormat, derrors.ErrCodeInvalidDimensions:
		status = http.StatusBadRequest
	case derrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case derrors.ErrCodeUnsupported:
		status = http.StatusNotImplemented
	}
	if status == http.StatusInternalServerError {
		log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{
		"error": derrors.UserMessage(err),
		"code":  string(derrors.GetCode(err)),
	})
}
