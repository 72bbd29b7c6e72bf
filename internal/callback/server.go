// ABOUTME: Loopback listener receiving OAuth redirects from the browser
// ABOUTME: Hands redirect locations to the auth controller and reports outcomes

package callback

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tsundip4/airport-ops-console/internal/auth"
)

// LocationHandler consumes redirect locations.
type LocationHandler interface {
	HandleLocation(ctx context.Context, raw string) auth.Outcome
	Message() string
}

// Server is the loopback redirect target.
type Server struct {
	addr    string
	handler LocationHandler
	log     *zap.Logger
	results chan auth.Outcome

	mu       sync.Mutex
	listener net.Listener
	srv      *http.Server
}

// New creates a server for addr (host:port). Port 0 picks a free port.
func New(addr string, handler LocationHandler, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		addr:    addr,
		handler: handler,
		log:     log,
		results: make(chan auth.Outcome, 4),
	}
}

// Router builds the chi routes.
//
// Routes:
//
//	GET /          → code/error redirects; otherwise the fragment relay page
//	GET /fragment  → fragment token forwarded by the relay page
//	GET /done      → current sign-in status
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(WithRequestLogging(s.log))

	r.Get("/", s.handleRoot)
	r.Get("/fragment", s.handleFragment)
	r.Get("/done", s.handleDone)
	return r
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.listener = ln
	s.srv = srv
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("callback server stopped", zap.Error(err))
		}
	}()
	s.log.Info("callback server listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// URL returns the base URL the server is reachable on.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return "http://" + s.addr
	}
	return "http://" + s.listener.Addr().String()
}

// Results delivers one outcome per handled redirect.
func (s *Server) Results() <-chan auth.Outcome {
	return s.results
}

// Wait blocks until a redirect is handled or ctx ends.
func (s *Server) Wait(ctx context.Context) (auth.Outcome, error) {
	select {
	case out := <-s.results:
		return out, nil
	case <-ctx.Done():
		return auth.Outcome{}, fmt.Errorf("waiting for sign-in redirect: %w", ctx.Err())
	}
}

// Shutdown stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("code") && !q.Has("error") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		relayPage.Execute(w, nil)
		return
	}

	s.consume(r, locationOf(r, r.URL.RawQuery, ""))
	http.Redirect(w, r, "/done", http.StatusSeeOther)
}

func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	hash := r.URL.Query().Get("hash")
	if hash == "" {
		http.Error(w, "missing hash", http.StatusBadRequest)
		return
	}
	if hash[0] == '#' {
		hash = hash[1:]
	}

	s.consume(r, locationOf(r, "", hash))
	http.Redirect(w, r, "/done", http.StatusSeeOther)
}

func (s *Server) handleDone(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	donePage.Execute(w, s.handler.Message())
}

// consume hands a location to the handler and publishes the outcome.
// Locations that carry nothing to act on are not published, so waiters
// keep waiting for a real redirect. The exchange outlives the browser
// request; the API call's own deadline bounds it.
func (s *Server) consume(r *http.Request, location string) {
	out := s.handler.HandleLocation(context.WithoutCancel(r.Context()), location)
	s.log.Debug("redirect handled",
		zap.Stringer("kind", out.Pending.Kind),
		zap.Bool("failed", out.Err != nil),
	)

	if out.Pending.Kind == auth.KindNone && out.Err == nil {
		s.log.Warn("redirect carried no credential", zap.String("location", out.CleanLocation))
		return
	}

	select {
	case s.results <- out:
	default:
		s.log.Warn("dropping redirect outcome, nobody is waiting")
	}
}

// locationOf rebuilds the browser-visible location for the request.
func locationOf(r *http.Request, rawQuery, fragment string) string {
	u := url.URL{Scheme: "http", Host: r.Host, Path: "/", RawQuery: rawQuery}
	loc := u.String()
	if fragment != "" {
		loc += "#" + fragment
	}
	return loc
}

var relayPage = template.Must(template.New("relay").Parse(`<!doctype html>
<html><head><title>Airport Ops sign-in</title></head>
<body>
<p id="msg">Waiting for sign-in...</p>
<script>
if (window.location.hash.indexOf("#token=") === 0) {
  window.location.replace("/fragment?hash=" + encodeURIComponent(window.location.hash));
}
</script>
</body></html>
`))

var donePage = template.Must(template.New("done").Parse(`<!doctype html>
<html><head><title>Airport Ops sign-in</title></head>
<body>
<p>{{.}}</p>
<p>You can close this window and return to the terminal.</p>
</body></html>
`))
