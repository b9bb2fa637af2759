package fetch

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/mmcdole/folio/internal/domain"
)

func TestFetchReportsProgress(t *testing.T) {
	payload := bytes.Repeat([]byte("G"), 100*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/gif")
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		w.Write(payload)
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, 0, nil)

	var loadedSeen []int64
	var totalSeen int64
	got, err := client.Fetch(context.Background(), srv.URL, func(loaded, total int64) {
		loadedSeen = append(loadedSeen, loaded)
		totalSeen = total
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !bytes.Equal(got.Data, payload) {
		t.Errorf("Expected %d bytes, got %d", len(payload), len(got.Data))
	}
	if got.ContentType != "image/gif" {
		t.Errorf("Expected content type image/gif, got %s", got.ContentType)
	}
	if totalSeen != int64(len(payload)) {
		t.Errorf("Expected total %d, got %d", len(payload), totalSeen)
	}
	if len(loadedSeen) < 2 || loadedSeen[0] != 0 {
		t.Fatalf("Expected an initial zero report followed by chunks, got %v", loadedSeen)
	}
	for i := 1; i < len(loadedSeen); i++ {
		if loadedSeen[i] < loadedSeen[i-1] {
			t.Fatalf("Progress went backwards: %v", loadedSeen)
		}
	}
	if last := loadedSeen[len(loadedSeen)-1]; last != int64(len(payload)) {
		t.Errorf("Expected final report %d, got %d", len(payload), last)
	}
}

func TestFetchUnknownLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/webp")
		w.Write([]byte("part-one"))
		w.(http.Flusher).Flush()
		w.Write([]byte("part-two"))
	}))
	defer srv.Close()

	var totals []int64
	got, err := NewClient(0, 0, nil).Fetch(context.Background(), srv.URL, func(_, total int64) {
		totals = append(totals, total)
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(got.Data) != "part-onepart-two" {
		t.Errorf("Unexpected body %q", got.Data)
	}
	for _, total := range totals {
		if total > 0 {
			t.Errorf("Expected unknown total for chunked response, got %d", total)
		}
	}
}

func TestFetchDetectsContentType(t *testing.T) {
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		w.Write(gif)
	}))
	defer srv.Close()

	got, err := NewClient(0, 0, nil).Fetch(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got.ContentType != "image/gif" {
		t.Errorf("Expected sniffed image/gif, got %s", got.ContentType)
	}
}

func TestFetchUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewClient(0, 0, nil).Fetch(context.Background(), srv.URL, nil)
	if !errors.Is(err, domain.ErrUnexpectedStatus) {
		t.Errorf("Expected ErrUnexpectedStatus, got %v", err)
	}
	if errors.Is(err, domain.ErrCancelled) {
		t.Error("Status error must not look like a cancellation")
	}
}

func TestFetchTooLarge(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 4096)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	_, err := NewClient(0, 1024, nil).Fetch(context.Background(), srv.URL, nil)
	if !errors.Is(err, domain.ErrTooLarge) {
		t.Errorf("Expected ErrTooLarge, got %v", err)
	}
}

func TestFetchCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "2048")
		w.Write(bytes.Repeat([]byte("a"), 1024))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := NewClient(0, 0, nil).Fetch(ctx, srv.URL, func(loaded, _ int64) {
		if loaded >= 1024 {
			cancel()
		}
	})
	if !errors.Is(err, domain.ErrCancelled) {
		t.Errorf("Expected ErrCancelled, got %v", err)
	}
}

func TestFetchNetworkErrorIsNotCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(time.Second, 0, nil).Fetch(context.Background(), url, nil)
	if err == nil {
		t.Fatal("Expected an error for a closed server")
	}
	if errors.Is(err, domain.ErrCancelled) {
		t.Errorf("Expected a plain transfer failure, got %v", err)
	}
}

func TestInitialCapacity(t *testing.T) {
	tests := []struct {
		name     string
		maxBytes int64
		total    int64
		expected int
	}{
		{"unknown length", 0, -1, 0},
		{"small body", 0, 4096, 4096},
		{"bogus length unlimited", 0, 1 << 40, maxPrealloc},
		{"bogus length limited", 1024, 1 << 40, 1025},
		{"within limit", 1 << 20, 2048, 2048},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(0, tt.maxBytes, nil)
			if got := c.initialCapacity(tt.total); got != tt.expected {
				t.Errorf("initialCapacity(%d) = %d, expected %d", tt.total, got, tt.expected)
			}
		})
	}
}
