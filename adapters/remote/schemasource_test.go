package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchResolvesTypePath(t *testing.T) {
	var gotPath, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"attributes": {}}`))
	}))
	defer srv.Close()

	source := NewSchemaSource(srv.URL, time.Second)
	doc, err := source.Fetch(context.Background(), "core/user")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if gotPath != "/core/user" {
		t.Errorf("path = %q, want /core/user", gotPath)
	}
	if !strings.Contains(gotAccept, "application/json") {
		t.Errorf("Accept = %q", gotAccept)
	}
	if string(doc) != `{"attributes": {}}` {
		t.Errorf("doc = %s", doc)
	}
}

func TestFetchAbsoluteTypeURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/types/thing" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	source := NewSchemaSource("http://unused.example.org", time.Second)
	if _, err := source.Fetch(context.Background(), srv.URL+"/types/thing"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
}

func TestFetchNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	source := NewSchemaSource(srv.URL, time.Second)
	if _, err := source.Fetch(context.Background(), "mystery"); err == nil {
		t.Fatal("Fetch of missing type should fail")
	}
}

func TestFetchContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := NewSchemaSource(srv.URL, time.Second)
	if _, err := source.Fetch(ctx, "thing"); err == nil {
		t.Fatal("Fetch with cancelled context should fail")
	}
}
