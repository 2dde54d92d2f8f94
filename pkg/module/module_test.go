package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/pestilab/pkg/module"
)

func TestRouterDispatch(t *testing.T) {
	inner := http.NewServeMux()
	inner.HandleFunc("GET /profiles", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("module:" + r.URL.Path))
	})

	m, err := module.New("/api", inner)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Module", "api")
			next.ServeHTTP(w, r)
		})
	})

	router := module.NewRouter()
	if err := router.Mount(m); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if err := router.Mount(m); err == nil {
		t.Error("second Mount on /api should fail")
	}
	router.HandleNative("GET /healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("native"))
	}))

	tests := []struct {
		name       string
		path       string
		wantBody   string
		wantHeader string
	}{
		{"module route", "/api/profiles", "module:/profiles", "api"},
		{"trailing slash", "/api/profiles/", "module:/profiles", "api"},
		{"native fallback", "/healthz", "native", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if got := rec.Header().Get("X-Module"); got != tt.wantHeader {
				t.Errorf("X-Module = %q, want %q", got, tt.wantHeader)
			}
		})
	}
}

func TestNewRejectsInvalidPrefix(t *testing.T) {
	for _, prefix := range []string{"", "api", "/api/v1"} {
		if _, err := module.New(prefix, http.NewServeMux()); err == nil {
			t.Errorf("New(%q) returned no error", prefix)
		}
	}
}
