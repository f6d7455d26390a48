package engine

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test") != "yes" {
			t.Errorf("missing request header")
		}
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("missing user agent")
		}
		io.WriteString(w, "hello")
	}))
	defer srv.Close()
	Init(Config{RequestsPerSec: 0})

	body, err := Get(context.Background(), srv.URL, map[string]string{"X-Test": "yes"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "hello" {
		t.Errorf("body = %q", body)
	}
}

func TestGet_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()
	Init(Config{})

	_, err := Get(context.Background(), srv.URL, nil)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusGone {
		t.Errorf("status = %d", se.StatusCode)
	}
	if !strings.Contains(se.Error(), "410") {
		t.Errorf("error text = %q", se.Error())
	}
}

func TestGet_BodyCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, strings.Repeat("x", 100))
	}))
	defer srv.Close()
	Init(Config{CaptionMaxBytes: 10})

	body, err := Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(body) != 10 {
		t.Errorf("len = %d, want 10", len(body))
	}
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode: %v", err)
		}
		io.WriteString(w, `{"echo":"`+in["params"]+`"}`)
	}))
	defer srv.Close()
	Init(Config{})

	body, err := PostJSON(context.Background(), srv.URL, map[string]string{"params": "abc"}, nil)
	if err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if string(body) != `{"echo":"abc"}` {
		t.Errorf("body = %s", body)
	}
}

func TestFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "<html><title>ok</title></html>")
	}))
	defer srv.Close()
	Init(Config{})

	body, err := FetchPage(context.Background(), srv.URL+"/watch?v=abcdefghijk")
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if !strings.Contains(string(body), "<title>ok</title>") {
		t.Errorf("body = %q", body)
	}

	if _, err := FetchPage(context.Background(), srv.URL+"/missing"); err == nil {
		t.Error("expected error for 404")
	}
}

func TestGet_Cancelled(t *testing.T) {
	Init(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Get(ctx, "http://127.0.0.1:1/", nil); err == nil {
		t.Error("expected error for cancelled context")
	}
}
