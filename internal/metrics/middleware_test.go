package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, http.NoBody))
	return rr
}

func TestMiddleware_LabelsBySurfaceAndRoute(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/api/v1/chat", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	r.Get("/chat", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("page"))
	})

	api := HTTPRequestsTotal.WithLabelValues(SurfaceAPI, "POST", "/api/v1/chat", "201")
	page := HTTPRequestsTotal.WithLabelValues(SurfacePage, "GET", "/chat", "200")
	apiBefore, pageBefore := testutil.ToFloat64(api), testutil.ToFloat64(page)

	serve(r, "POST", "/api/v1/chat")
	serve(r, "GET", "/chat")
	serve(r, "GET", "/chat")

	if got := testutil.ToFloat64(api) - apiBefore; got != 1 {
		t.Errorf("api requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(page) - pageBefore; got != 2 {
		t.Errorf("page requests = %v, want 2", got)
	}
	if testutil.CollectAndCount(HTTPRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/v1/usage", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("period") {
		case "year":
			w.WriteHeader(http.StatusBadRequest)
		case "boom":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte("{}"))
		}
	})

	tests := []struct {
		query  string
		status string
	}{
		{"", "200"},
		{"?period=year", "400"},
		{"?period=boom", "500"},
	}
	for _, tt := range tests {
		c := HTTPRequestsTotal.WithLabelValues(SurfaceAPI, "GET", "/api/v1/usage", tt.status)
		before := testutil.ToFloat64(c)
		serve(r, "GET", "/api/v1/usage"+tt.query)
		if got := testutil.ToFloat64(c) - before; got != 1 {
			t.Errorf("status %s: count delta = %v, want 1", tt.status, got)
		}
	}
}

func TestMiddleware_InFlight(t *testing.T) {
	var during float64
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/youtube", func(w http.ResponseWriter, _ *http.Request) {
		during = testutil.ToFloat64(HTTPRequestsInFlight.WithLabelValues(SurfacePage))
		w.WriteHeader(http.StatusSeeOther)
	})

	before := testutil.ToFloat64(HTTPRequestsInFlight.WithLabelValues(SurfacePage))
	serve(r, "POST", "/youtube")

	if during != before+1 {
		t.Errorf("in flight during request = %v, want %v", during, before+1)
	}
	if after := testutil.ToFloat64(HTTPRequestsInFlight.WithLabelValues(SurfacePage)); after != before {
		t.Errorf("in flight after request = %v, want %v", after, before)
	}
}

func TestMiddleware_SkipsProbes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	c := HTTPRequestsTotal.WithLabelValues(SurfacePage, "GET", "/health", "200")
	before := testutil.ToFloat64(c)
	serve(r, "GET", "/health")

	if after := testutil.ToFloat64(c); after != before {
		t.Errorf("health probe was recorded: before=%v after=%v", before, after)
	}
}

func TestMiddleware_OutsideChi(t *testing.T) {
	h := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	c := HTTPRequestsTotal.WithLabelValues(SurfacePage, "GET", "unmatched", "418")
	before := testutil.ToFloat64(c)
	serve(h, "GET", "/plain")

	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("unmatched requests = %v, want 1", got)
	}
}

func TestRegister_Idempotent(t *testing.T) {
	Register()
	Register()
}
