package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/odvcencio/furrykit/internal/config"
)

func TestFetchFlags_Options(t *testing.T) {
	f := fetchFlags{
		method:  "post",
		headers: []string{"Authorization: Bearer abc", "X-Trace:1"},
		params:  []string{"page=2", "q=a=b"},
		data:    `{"name":"gopher"}`,
	}
	opts, err := f.options("http://example.test/items")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Method != http.MethodPost {
		t.Fatalf("expected POST, got %q", opts.Method)
	}
	if opts.Headers["Authorization"] != "Bearer abc" || opts.Headers["X-Trace"] != "1" {
		t.Fatalf("unexpected headers: %v", opts.Headers)
	}
	if opts.Params["page"] != "2" || opts.Params["q"] != "a=b" {
		t.Fatalf("unexpected params: %v", opts.Params)
	}
	body, ok := opts.Body.(map[string]any)
	if !ok || body["name"] != "gopher" {
		t.Fatalf("unexpected body: %#v", opts.Body)
	}
}

func TestFetchFlags_OptionsErrors(t *testing.T) {
	cases := []struct {
		name  string
		flags fetchFlags
	}{
		{"header without colon", fetchFlags{headers: []string{"Authorization"}}},
		{"header without name", fetchFlags{headers: []string{": x"}}},
		{"param without equals", fetchFlags{params: []string{"page"}}},
		{"param without key", fetchFlags{params: []string{"=2"}}},
		{"body not json", fetchFlags{data: "{"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.flags.options("http://example.test"); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func testEnv() *env {
	return &env{
		cfg:    config.Config{HTTPTimeout: time.Second, TickRate: 10 * time.Millisecond},
		logger: zerolog.Nop(),
	}
}

func TestRunFetch_Success(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/users/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"name":"Ada"}`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	opts, _ := fetchFlags{method: http.MethodGet}.options(srv.URL + "/users/1")
	if err := runFetch(context.Background(), testEnv(), opts, &stdout, &stderr, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "{\n  \"id\": 1,\n  \"name\": \"Ada\"\n}\n"
	if stdout.String() != want {
		t.Fatalf("expected %q, got %q", want, stdout.String())
	}
}

func TestRunFetch_HTTPError(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	opts, _ := fetchFlags{method: http.MethodGet}.options(srv.URL + "/missing")
	err := runFetch(context.Background(), testEnv(), opts, &stdout, &stderr, false)
	if !errors.Is(err, errSilent) {
		t.Fatalf("expected silent failure, got %v", err)
	}
	if got := strings.TrimSpace(stderr.String()); got != "HTTP error! status: 404 (status 404)" {
		t.Fatalf("unexpected stderr %q", got)
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected no output, got %q", stdout.String())
	}
}

func TestRunFetch_BaseURL(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"pong"`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	e := testEnv()
	e.cfg.BaseURL = srv.URL + "/api/"
	var stdout, stderr bytes.Buffer
	opts, _ := fetchFlags{method: http.MethodGet}.options("ping")
	if err := runFetch(context.Background(), e, opts, &stdout, &stderr, false); err != nil {
		t.Fatalf("unexpected error: %v (stderr %q)", err, stderr.String())
	}
	if stdout.String() != "\"pong\"\n" {
		t.Fatalf("unexpected output %q", stdout.String())
	}
}

func TestWriteJSON_Color(t *testing.T) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, `{"a": 1}`+"\n", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ANSI escapes, got %q", buf.String())
	}
	buf.Reset()
	if err := writeJSON(&buf, `{"a": 1}`, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != `{"a": 1}` {
		t.Fatalf("expected plain output, got %q", buf.String())
	}
}
