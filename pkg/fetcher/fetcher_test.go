package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRequest(t *testing.T) {
	var gotUA, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotMethod = r.Method
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewFetcherWithClient(srv.Client())
	headers := map[string]string{"User-Agent": "test-agent"}

	code, err := f.Request(context.Background(), srv.URL+"/", http.MethodHead, headers, time.Second)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if code != http.StatusOK {
		t.Errorf("status = %d, want 200", code)
	}
	if gotUA != "test-agent" {
		t.Errorf("User-Agent = %q, want test-agent", gotUA)
	}
	if gotMethod != http.MethodHead {
		t.Errorf("method = %q, want HEAD", gotMethod)
	}

	code, err = f.Request(context.Background(), srv.URL+"/missing", http.MethodGet, nil, time.Second)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Request() error = %v, want *StatusError", err)
	}
	if code != http.StatusNotFound || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d (%d), want 404", code, statusErr.StatusCode)
	}
}

func TestRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := NewFetcherWithClient(srv.Client())
	start := time.Now()
	_, err := f.Request(context.Background(), srv.URL, http.MethodGet, nil, 50*time.Millisecond)
	if err == nil {
		t.Fatal("Request() error = nil, want timeout")
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("Request() took %s, timeout not applied", time.Since(start))
	}
}
