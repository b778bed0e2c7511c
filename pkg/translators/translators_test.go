package translators

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGoogleTranslatorJoinsSegments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("sl") != "auto" || q.Get("tl") != "ru" || q.Get("client") != "gtx" {
			t.Errorf("unexpected query %v", q)
		}
		if q.Get("q") != "Hello. World." {
			t.Errorf("q = %q", q.Get("q"))
		}
		_, _ = w.Write([]byte(`[[["Привет. ","Hello. ",null,null,10],["Мир.","World.",null,null,10],[null,null,"Privet. Mir."]],null,"en"]`))
	}))
	defer srv.Close()

	tr, err := NewGoogle(Config{URL: srv.URL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewGoogle: %v", err)
	}
	got, err := tr.Translate(context.Background(), "Hello. World.", "ru")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Привет. Мир." {
		t.Fatalf("Translate = %q", got)
	}
}

func TestGoogleTranslatorErrorsOnStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tr, _ := NewGoogle(Config{URL: srv.URL, Timeout: time.Second})
	_, err := tr.Translate(context.Background(), "hi", "ru")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestParseGoogleResponseRejectsMalformed(t *testing.T) {
	for _, body := range []string{`{}`, `[]`, `[[]]`, `[[[null]]]`, `not json`} {
		if _, err := parseGoogleResponse([]byte(body)); err == nil {
			t.Errorf("expected error for %s", body)
		}
	}
}

func TestLibreTranslatorPostsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req libreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Source != "auto" || req.Target != "de" || req.Q != "hello" || req.APIKey != "k" {
			t.Errorf("unexpected request %+v", req)
		}
		_, _ = w.Write([]byte(`{"translatedText":"hallo"}`))
	}))
	defer srv.Close()

	tr, err := NewLibre(Config{URL: srv.URL + "/", APIKey: "k", Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewLibre: %v", err)
	}
	got, err := tr.Translate(context.Background(), "hello", "de")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "hallo" {
		t.Fatalf("Translate = %q", got)
	}
}

func TestLibreTranslatorSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"target language not supported"}`))
	}))
	defer srv.Close()

	tr, _ := NewLibre(Config{URL: srv.URL, Timeout: time.Second})
	_, err := tr.Translate(context.Background(), "hello", "xx")
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestNewLibreRequiresURL(t *testing.T) {
	if _, err := NewLibre(Config{}); err == nil {
		t.Fatalf("expected error without url")
	}
}

func TestDefaultRegistryBuild(t *testing.T) {
	reg := DefaultRegistry()

	tr, err := reg.Build(Config{Type: " Google "})
	if err != nil {
		t.Fatalf("Build google: %v", err)
	}
	if tr.Name() != TypeGoogle {
		t.Fatalf("Name = %s", tr.Name())
	}

	none, err := reg.Build(Config{Type: TypeNone})
	if err != nil {
		t.Fatalf("Build none: %v", err)
	}
	if got, _ := none.Translate(context.Background(), "same", "ru"); got != "same" {
		t.Fatalf("identity translate = %q", got)
	}

	if _, err := reg.Build(Config{Type: "deepl"}); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
