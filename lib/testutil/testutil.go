package testutil

import (
	"database/sql"
	"fmt"
	"matchcast-backend/lib/sqliteutil"
	"matchcast-backend/lib/telemetry"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type ServiceParams struct {
	Name string
	// if unspecified, it will skip setting up a db
	DbSchema string
	// if unspecified, it will use `:memory:`
	DbPath string
}

type ServiceResult struct {
	DB *sql.DB
}

func SetupService(t testing.TB, params ServiceParams) (ServiceResult, func()) {
	cleanup := telemetry.SetupForTesting(fmt.Sprintf("test:%s", params.Name))
	if params.DbSchema == "" {
		return ServiceResult{}, cleanup
	}

	dbpath := params.DbPath
	if dbpath == "" {
		dbpath = ":memory:"
	}
	db, err := sqliteutil.OpenDB(params.DbSchema, dbpath)
	if err != nil {
		t.Fatal(err)
	}

	return ServiceResult{DB: db}, func() {
		db.Close()
		cleanup()
	}
}

// FixtureServer serves files from a testdata directory keyed by request path.
// Requests for unregistered paths get a 404. Every request is counted.
type FixtureServer struct {
	*httptest.Server

	lock   sync.Mutex
	routes map[string]fixtureRoute
	hits   map[string]int
}

type fixtureRoute struct {
	status  int
	body    []byte
	handler http.HandlerFunc
}

func NewFixtureServer(t testing.TB) *FixtureServer {
	f := &FixtureServer{
		routes: map[string]fixtureRoute{},
		hits:   map[string]int{},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *FixtureServer) serve(w http.ResponseWriter, r *http.Request) {
	key := r.URL.RequestURI()

	f.lock.Lock()
	f.hits[key]++
	route, ok := f.routes[key]
	f.lock.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if route.handler != nil {
		route.handler(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(route.status)
	w.Write(route.body)
}

// Handle registers `body` to be served for the exact request uri (path + query).
func (f *FixtureServer) Handle(requestUri string, status int, body string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.routes[requestUri] = fixtureRoute{status: status, body: []byte(body)}
}

// HandleFunc registers a custom handler for the exact request uri.
func (f *FixtureServer) HandleFunc(requestUri string, handler http.HandlerFunc) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.routes[requestUri] = fixtureRoute{handler: handler}
}

// HandleFile is Handle with the body read from testdata/<name>.
func (f *FixtureServer) HandleFile(t testing.TB, requestUri, name string) {
	contents, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	f.Handle(requestUri, http.StatusOK, string(contents))
}

func (f *FixtureServer) Hits(requestUri string) int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.hits[requestUri]
}
