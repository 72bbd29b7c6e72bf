// ABOUTME: Test helpers for command tests
// ABOUTME: Fake operations API plus environment and flag isolation

package cmd

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/tsundip4/airport-ops-console/internal/auth"
)

type apiCall struct {
	method string
	path   string
	query  string
	body   string
	auth   string
}

// fakeAPI serves canned JSON per "METHOD /path" and records every call.
type fakeAPI struct {
	mu     sync.Mutex
	routes map[string]fakeRoute
	calls  []apiCall
}

type fakeRoute struct {
	status int
	body   string
}

func newFakeAPI(t *testing.T, routes map[string]fakeRoute) (*fakeAPI, string) {
	t.Helper()
	f := &fakeAPI{routes: routes}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv.URL
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	key := r.Method + " " + r.URL.Path

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{
		method: r.Method,
		path:   r.URL.Path,
		query:  r.URL.RawQuery,
		body:   string(body),
		auth:   r.Header.Get("Authorization"),
	})
	route, ok := f.routes[key]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Not Found"}`))
		return
	}
	if route.status == 0 {
		route.status = http.StatusOK
	}
	w.WriteHeader(route.status)
	w.Write([]byte(route.body))
}

func (f *fakeAPI) last() apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return apiCall{}
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeAPI) find(method, path string) (apiCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.method == method && c.path == path {
			return c, true
		}
	}
	return apiCall{}, false
}

// useAPI points the commands at url with a throwaway file store and
// resets global flags when the test ends.
func useAPI(t *testing.T, url string) {
	t.Helper()

	t.Setenv("AIRPORT_OPS_API_URL", "")
	t.Setenv("VITE_API_BASE_URL", "")
	t.Setenv("AIRPORT_OPS_CONFIG_DIR", t.TempDir())
	t.Setenv("AIRPORT_OPS_STORE", "file")
	t.Setenv("AIRPORT_OPS_ALL_PROXY", "")
	t.Setenv("LOG_LEVEL", "error")

	apiURL = url
	prevNav := navigator
	t.Cleanup(func() {
		apiURL = ""
		jsonOutput = false
		outputFormat = ""
		ephemeral = false
		navigator = prevNav
	})
	navigator = auth.NavigatorFunc(func(string) error { return nil })
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}
