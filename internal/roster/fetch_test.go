package roster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetch_CachesAndRevalidates(t *testing.T) {
	body := "COMCODE,INSTRUCTOR_TIMING_ROOM\n1,M 2 LT4\n"
	var requests int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(body))
	}))
	defer upstream.Close()

	f := NewFetcher(t.TempDir())
	src := Source{ID: "test", URL: upstream.URL}

	first, err := f.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("first Fetch() error = %v", err)
	}
	if first.FromCache {
		t.Error("first fetch should not come from cache")
	}
	if string(first.Body) != body {
		t.Errorf("first body = %q", first.Body)
	}

	// Second fetch revalidates with the stored ETag and reuses the cache.
	second, err := f.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("second Fetch() error = %v", err)
	}
	if !second.FromCache {
		t.Error("second fetch should reuse the cached body on 304")
	}
	if string(second.Body) != body {
		t.Errorf("second body = %q", second.Body)
	}
	if requests != 2 {
		t.Errorf("upstream requests = %d, want 2", requests)
	}
}

func TestFetch_FallsBackToCacheOnNetworkError(t *testing.T) {
	body := "COMCODE,INSTRUCTOR_TIMING_ROOM\n1,M 2 LT4\n"
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))

	f := NewFetcher(t.TempDir())
	src := Source{ID: "test", URL: upstream.URL}

	if _, err := f.Fetch(context.Background(), src); err != nil {
		t.Fatalf("warm-up Fetch() error = %v", err)
	}

	// Upstream goes away; the cached body keeps serving.
	upstream.Close()

	res, err := f.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch() after upstream death error = %v", err)
	}
	if !res.FromCache {
		t.Error("expected cached body after network failure")
	}
	if string(res.Body) != body {
		t.Errorf("body = %q", res.Body)
	}
}

func TestFetch_EmptyURL(t *testing.T) {
	f := NewFetcher(t.TempDir())
	if _, err := f.Fetch(context.Background(), Source{}); err == nil {
		t.Error("Fetch() expected error for empty URL")
	}
}
