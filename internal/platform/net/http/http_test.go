package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"narrativeradar/internal/platform/config"
	perr "narrativeradar/internal/platform/errors"
	pnet "narrativeradar/internal/platform/net"
	phttp "narrativeradar/internal/platform/net/http"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) pnet.Wire {
	t.Helper()
	var w pnet.Wire
	if err := json.Unmarshal(rec.Body.Bytes(), &w); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return w
}

func newRouter() (phttp.Router, http.Handler) {
	m := chi.NewRouter()
	return phttp.AdaptChi(m), m
}

func TestRouterFacade(t *testing.T) {
	r, h := newRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Root", "1")
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/api", func(api phttp.Router) {
		api.Get("/snapshots/{id}", func(w http.ResponseWriter, req *http.Request) {
			phttp.RespondOK(w, req, phttp.URLParam(req, "id"))
		})
		api.With(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.Header().Set("X-With", "1")
				next.ServeHTTP(w, req)
			})
		}).Post("/refresh", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		})
	})
	r.Group(func(g phttp.Router) {
		g.Handle("/raw", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshots/abc", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("X-Root") != "1" {
		t.Fatalf("GET = %d %v", rec.Code, rec.Header())
	}
	if w := decode(t, rec); w.Data != "abc" {
		t.Fatalf("data = %v", w.Data)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	if rec.Code != http.StatusAccepted || rec.Header().Get("X-With") != "1" {
		t.Fatalf("POST = %d %v", rec.Code, rec.Header())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/raw", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("Handle = %d", rec.Code)
	}
	if r.Mux() == nil {
		t.Fatalf("Mux nil")
	}
}

func TestRespondHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(pnet.WithRequest(req.Context(), "rid-9"))

	rec := httptest.NewRecorder()
	phttp.RespondError(rec, req, perr.NotFoundf("snapshot %q", "x"))
	w := decode(t, rec)
	if rec.Code != http.StatusNotFound || w.Code != perr.ErrorCodeNotFound || w.RequestID != "rid-9" {
		t.Fatalf("error envelope = %d %+v", rec.Code, w)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}

	rec = httptest.NewRecorder()
	phttp.Handle(func(*http.Request) phttp.Response {
		return phttp.Response{Status: http.StatusNoContent, Header: http.Header{"X-A": {"b"}}}
	})(rec, req)
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 || rec.Header().Get("X-A") != "b" {
		t.Fatalf("no content = %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	phttp.Handle(func(*http.Request) phttp.Response { return phttp.Accepted("queued") })(rec, req)
	if w := decode(t, rec); rec.Code != http.StatusAccepted || w.StatusCode != http.StatusAccepted || w.Data != "queued" {
		t.Fatalf("accepted = %d %+v", rec.Code, w)
	}
}

type refresh struct {
	Force bool `json:"force"`
}

type page struct {
	Limit int `query:"limit" validate:"max=50"`
}

func TestJSONAndQueryHandlers(t *testing.T) {
	r, h := newRouter()
	phttp.PostJSON(r, "/refresh", func(_ *http.Request, in refresh) (any, error) {
		return map[string]bool{"force": in.Force}, nil
	})
	phttp.GetQuery(r, "/list", func(_ *http.Request, q page) (any, error) { return q.Limit, nil })
	phttp.GetJSON(r, "/boom", func(*http.Request) (any, error) { return nil, errors.New("boom") })

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/refresh", strings.NewReader(`{"force":true}`)))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"force":true`) {
		t.Fatalf("post = %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/refresh", strings.NewReader(`nope`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/list?limit=7", nil))
	if w := decode(t, rec); w.Data != float64(7) {
		t.Fatalf("list = %+v", w)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/list?limit=99", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("validation = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("boom = %d", rec.Code)
	}
}

func TestServerRunStopsOnCancel(t *testing.T) {
	t.Setenv("TESTSRV_API_PORT", "127.0.0.1:0")
	called := false
	srv := phttp.NewServer(config.New().Prefix("TESTSRV_"), func(*chi.Mux) { called = true })
	if !called || srv.Addr() != "127.0.0.1:0" {
		t.Fatalf("option called=%v addr=%q", called, srv.Addr())
	}
	srv.Router().Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}
}

func TestMountProfiler(t *testing.T) {
	r, h := newRouter()
	phttp.MountProfiler(r, "/debug", false)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("disabled profiler served %d", rec.Code)
	}

	r2, h2 := newRouter()
	phttp.MountProfiler(r2, "/debug", true)
	rec = httptest.NewRecorder()
	h2.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("profiler index = %d", rec.Code)
	}
}
