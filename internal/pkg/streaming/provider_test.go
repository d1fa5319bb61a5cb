package streaming

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbedURL(t *testing.T) {
	p := &Provider{BaseURL: "https://streams.example.com"}

	got, err := p.EmbedURL(603)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "https://streams.example.com/embed/movie/603"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	if _, err := p.EmbedURL(0); err == nil {
		t.Fatalf("expected error for missing movie id")
	}
}

func TestCheckAvailability(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Fatalf("expected HEAD probe, got %s", r.Method)
		}
		switch r.URL.Path {
		case "/embed/movie/603":
			w.WriteHeader(http.StatusOK)
		case "/embed/movie/999":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer ts.Close()

	p := &Provider{BaseURL: ts.URL, HTTPClient: ts.Client()}

	ok, err := p.CheckAvailability(context.Background(), 603)
	if err != nil || !ok {
		t.Fatalf("expected available, got ok=%v err=%v", ok, err)
	}

	ok, err = p.CheckAvailability(context.Background(), 999)
	if err != nil {
		t.Fatalf("unexpected error for missing source: %v", err)
	}
	if ok {
		t.Fatalf("expected unavailable for 404 probe")
	}

	if _, err := p.CheckAvailability(context.Background(), 1); err == nil {
		t.Fatalf("expected probe error for 5xx answer")
	}
}
