package registry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchMetadataSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != UserAgent {
			t.Errorf("missing User-Agent header")
		}
		if r.URL.Path != "/p2/foo/bar.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"packages":{"foo/bar":[{"name":"foo/bar","version":"1.2.3"}]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	body, err := c.FetchMetadata("foo/bar")
	if err != nil {
		t.Fatalf("FetchMetadata: %v", err)
	}
	if !strings.Contains(string(body), "1.2.3") {
		t.Errorf("unexpected body %s", body)
	}
}

func TestFetchMetadataNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.FetchMetadata("nope/nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchArchiveFailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.FetchArchive(srv.URL + "/archive.zip"); err == nil {
		t.Fatal("expected error for non-2xx archive download")
	}
}
