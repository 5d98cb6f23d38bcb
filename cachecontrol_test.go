package cachecontrol

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	policystore "github.com/always-cache/cachecontrol/pkg/policy-store"
	transformer "github.com/always-cache/cachecontrol/pkg/response-transformer"
	"github.com/always-cache/cachecontrol/rfc9111"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func newMiddleware(t *testing.T, config Config) *CacheControl {
	if config.Logger == nil {
		logger := zerolog.Nop()
		config.Logger = &logger
	}
	c, err := New(config)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestHandlerSetsDirectives(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := ResponseDirectives(r)
		d.SetPublic(true)
		if err := d.SetMaxAge(10 * time.Minute); err != nil {
			t.Fatal(err)
		}
		if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=600" {
			t.Fatalf("Cache-Control header is '%s' before write", cc)
		}
		w.Write([]byte("Hello world"))
	})
	rr := httptest.NewRecorder()
	newMiddleware(t, Config{}).Middleware(handler).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if cc := rr.Header().Get("Cache-Control"); cc != "public, max-age=600" {
		t.Fatalf("Cache-Control header is '%s'", cc)
	}
	if body := rr.Body.String(); body != "Hello world" {
		t.Fatalf("Body is %s", body)
	}
}

func TestRequestDirectivesAreReadOnly(t *testing.T) {
	var called bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		d := RequestDirectives(r)
		if _, ok := d.NoCache(); !ok {
			t.Fatal("no-cache not present")
		}
		if err := d.Delete("no-cache"); !errors.Is(err, rfc9111.ErrImmutable) {
			t.Fatalf("Delete returned %v", err)
		}
	})
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Cache-Control", "no-cache")
	newMiddleware(t, Config{}).Middleware(handler).ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Fatal("Handler not called")
	}
}

func TestDefaultRuleAppliedOnWrite(t *testing.T) {
	mw := newMiddleware(t, Config{Rules: transformer.Rules{
		{Prefix: "/admin", Override: "no-store"},
		{Default: "max-age=60"},
	}})

	r := chi.NewRouter()
	r.Use(mw.Middleware)
	r.Get("/chi", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("default"))
	})
	r.Get("/own", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "private")
		ResponseDirectives(r).SetMustRevalidate(true)
		w.Write([]byte("own"))
	})
	r.Get("/admin/page", func(w http.ResponseWriter, r *http.Request) {
		ResponseDirectives(r).SetPublic(true)
		w.Write([]byte("admin"))
	})

	checks := map[string]string{
		"/chi":        "max-age=60",
		"/own":        "private, must-revalidate",
		"/admin/page": "no-store",
	}
	for path, want := range checks {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if cc := rec.Header().Get("Cache-Control"); cc != want {
			t.Fatalf("%s: Cache-Control header is '%s'", path, cc)
		}
	}
}

func TestRulesSkipErrors(t *testing.T) {
	mw := newMiddleware(t, Config{Rules: transformer.Rules{{Default: "max-age=60"}}})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	rec := httptest.NewRecorder()
	mw.Middleware(handler).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if cc := rec.Header().Get("Cache-Control"); cc != "" {
		t.Fatalf("Cache-Control header is '%s'", cc)
	}
}

func TestPoliciesFromStore(t *testing.T) {
	store := policystore.NewMemStore()
	if _, err := store.Put("/static/", "public, max-age=31536000, immutable"); err != nil {
		t.Fatal(err)
	}
	mw := newMiddleware(t, Config{Policies: store})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("asset"))
	})
	rec := httptest.NewRecorder()
	mw.Middleware(handler).ServeHTTP(rec, httptest.NewRequest("GET", "/static/app.js", nil))
	if cc := rec.Header().Get("Cache-Control"); cc != "public, max-age=31536000, immutable" {
		t.Fatalf("Cache-Control header is '%s'", cc)
	}
}

func TestInvalidRulesRejected(t *testing.T) {
	_, err := New(Config{Rules: transformer.Rules{{Override: "max-age=never"}}})
	if !errors.Is(err, rfc9111.ErrInvalidArgument) {
		t.Fatalf("New returned %v", err)
	}
}

func TestOutsideMiddleware(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Cache-Control", "max-age=5")
	if ResponseDirectives(req) != nil {
		t.Fatal("Response directives outside middleware")
	}
	if age, ok := RequestDirectives(req).MaxAge(); !ok || age != 5*time.Second {
		t.Fatalf("max-age: %s, %v", age, ok)
	}
}

func TestEarlierDirectivesFollowHeader(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := ResponseDirectives(r)
		d.SetPublic(true)
		w.Header().Set("Cache-Control", "private")
		ResponseDirectives(r).SetMustRevalidate(true)
		d.SetNoStore(true)
		w.Write([]byte("Hello world"))
	})
	rec := httptest.NewRecorder()
	newMiddleware(t, Config{}).Middleware(handler).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if cc := rec.Header().Get("Cache-Control"); cc != "private, must-revalidate, no-store" {
		t.Fatalf("Cache-Control header is '%s'", cc)
	}
}

func TestRuleRewriteLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	mw := newMiddleware(t, Config{
		Rules:  transformer.Rules{{Override: "no-store"}},
		Logger: &logger,
	})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ResponseDirectives(r).SetPrivate()
		w.Write([]byte("Hello world"))
	})
	rec := httptest.NewRecorder()
	mw.Middleware(handler).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
		t.Fatalf("Cache-Control header is '%s'", cc)
	}
	out := buf.String()
	if !strings.Contains(out, "Cache-Control rewritten by rule") || !strings.Contains(out, `private`) {
		t.Fatalf("Log is %s", out)
	}
}
