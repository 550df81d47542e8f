package spec

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalDoc = `{
  "openrpc": "1.2.6",
  "info": {"title": "Demo API", "version": "1.0.0"},
  "methods": [
    {"name": "ping", "result": {"name": "pong", "schema": {"type": "string"}}}
  ]
}`

func writeSpec(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := writeSpec(t, "api.json", minimalDoc)
	doc, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Info.Title != "Demo API" {
		t.Errorf("title: got %q", doc.Info.Title)
	}
	if len(doc.Methods) != 1 || doc.Methods[0].Name != "ping" {
		t.Errorf("methods: got %+v", doc.Methods)
	}
}

func TestLoadRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), "   ")
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("want InputError, got %v", err)
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	t.Parallel()

	path := writeSpec(t, "api.yaml", minimalDoc)
	_, err := Load(context.Background(), path)
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("want InputError, got %v", err)
	}
	if !strings.Contains(se.Message, "JSON") {
		t.Errorf("message should mention JSON: %q", se.Message)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("want InputError, got %v", err)
	}
	if !strings.Contains(se.Message, "not found") {
		t.Errorf("unexpected message: %q", se.Message)
	}
}

func TestLoadMissingTopLevelKeys(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
		missing string
	}{
		{"no openrpc", `{"info": {}, "methods": []}`, "openrpc"},
		{"no info", `{"openrpc": "1.2.6", "methods": []}`, "info"},
		{"no methods", `{"openrpc": "1.2.6", "info": {}}`, "methods"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := writeSpec(t, "api.json", tc.content)
			_, err := Load(context.Background(), path)
			var se *SpecError
			if !errors.As(err, &se) || se.Code != ValidationError {
				t.Fatalf("want ValidationError, got %v", err)
			}
			if !strings.Contains(se.Message, tc.missing) {
				t.Errorf("message should name %q: %q", tc.missing, se.Message)
			}
		})
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	t.Parallel()

	path := writeSpec(t, "api.json", "{not json")
	_, err := Load(context.Background(), path)
	var se *SpecError
	if !errors.As(err, &se) || se.Code != ParseError {
		t.Fatalf("want ParseError, got %v", err)
	}
}

func TestLoadFromURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(minimalDoc))
	}))
	defer srv.Close()

	doc, err := Load(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Info.Title != "Demo API" {
		t.Errorf("title: got %q", doc.Info.Title)
	}
}

func TestLoadRetriesTransientHTTPErrors(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(minimalDoc))
	}))
	defer srv.Close()

	doc, err := Load(context.Background(), srv.URL,
		WithMaxRetries(3), WithBackoffBase(time.Millisecond))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc == nil || calls != 3 {
		t.Fatalf("want 3 calls, got %d", calls)
	}
}

func TestLoadDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), srv.URL,
		WithMaxRetries(3), WithBackoffBase(time.Millisecond))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != NetworkError {
		t.Fatalf("want NetworkError, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("4xx must not retry: %d calls", calls)
	}
}

func TestLoadRejectsUnsupportedScheme(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), "ftp://example.com/spec.json")
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("want InputError, got %v", err)
	}
}
