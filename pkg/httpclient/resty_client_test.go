package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRestyClientGetSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("User-Agent = %q", got)
		}
		if got := r.Header.Get("Accept-Language"); got != "en" {
			t.Errorf("Accept-Language = %q", got)
		}
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("body"))
	}))
	defer srv.Close()

	client := NewRestyClient(Options{Timeout: time.Second, UserAgent: "test-agent"})
	resp, err := client.Get(context.Background(), srv.URL, map[string]string{"Accept-Language": "en"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode() != http.StatusTeapot || string(resp.Body()) != "body" {
		t.Fatalf("unexpected response %d %q", resp.StatusCode(), resp.Body())
	}
}

func TestRestyClientPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode: %v", err)
		}
		if payload["q"] != "hi" {
			t.Errorf("payload = %#v", payload)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewRestyClient(Options{Timeout: time.Second})
	resp, err := client.PostJSON(context.Background(), srv.URL, nil, map[string]string{"q": "hi"})
	if err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode())
	}
}
