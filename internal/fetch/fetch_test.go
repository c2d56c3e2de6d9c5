package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go-quina-board/internal/fetch"
)

func TestFetch_UserAgentAndBody(t *testing.T) {
	t.Setenv("QUINA_UA", "test-agent/1.0")
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cl, err := fetch.New(fetch.Options{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	b, err := cl.GetBytes(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(b) != "ok" || gotUA != "test-agent/1.0" {
		t.Fatalf("body=%q ua=%q", b, gotUA)
	}
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cl, _ := fetch.New(fetch.Options{Timeout: 2 * time.Second})
	if _, err := cl.Get(context.Background(), srv.URL); err == nil {
		t.Fatalf("expect error for 404")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("calls=%d want=1 (no retry by default)", n)
	}
}

func TestFetch_RetryOnStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cl, _ := fetch.New(fetch.Options{Retry: 1, Timeout: 2 * time.Second})
	resp, err := cl.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("calls=%d want=2", n)
	}
}

func TestCacheBust(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	u, err := fetch.CacheBust("http://h/data/results.json?x=1", now)
	if err != nil {
		t.Fatalf("cache bust: %v", err)
	}
	if !strings.Contains(u, "t=1700000000123") || !strings.Contains(u, "x=1") {
		t.Fatalf("url=%q", u)
	}
}
