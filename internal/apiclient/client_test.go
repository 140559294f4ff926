package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/artboard/internal/config"
	"github.com/Clark-Hu/artboard/internal/filestore"
	"github.com/Clark-Hu/artboard/internal/gallery"
	httpserver "github.com/Clark-Hu/artboard/internal/http"
	"github.com/Clark-Hu/artboard/internal/idgen"
	"github.com/Clark-Hu/artboard/internal/repository"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	cfg := config.Config{
		UploadDir:         t.TempDir(),
		StaticDir:         t.TempDir(),
		MultipartMemoryMB: 1,
	}
	ids := idgen.New()
	files := filestore.NewLocal(cfg.UploadDir, ids, nil)
	svc := gallery.New(repository.NewMemory(ids), files, nil)
	ts := httptest.NewServer(httpserver.New(cfg, nil, svc, files, nil).Handler())
	t.Cleanup(ts.Close)

	client, err := New(ts.URL+"/", 5*time.Second, nil)
	require.NoError(t, err)
	return client
}

func TestClientRoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	arts, err := client.ListArtworks(ctx)
	require.NoError(t, err)
	assert.Empty(t, arts)

	art, err := client.CreateArtwork(ctx, "Sunset", "orange sky", []File{
		{Name: "sunset.png", ContentType: "image/png", Body: strings.NewReader("png")},
		{Name: "notes", Body: strings.NewReader("raw")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Sunset", art.Title)
	require.Len(t, art.Files, 2)
	assert.Equal(t, "image", art.Files[0].Type)
	assert.Equal(t, "application", art.Files[1].Type)

	require.NoError(t, client.RateArtwork(ctx, art.ID, "alice", 5))
	require.NoError(t, client.RateArtwork(ctx, art.ID, "bob", 3))

	arts, err = client.ListArtworks(ctx)
	require.NoError(t, err)
	require.Len(t, arts, 1)
	assert.Equal(t, 4.0, arts[0].AverageRating)
	assert.Equal(t, 2, arts[0].RatingCount)
}

func TestClientUploadedFileIsServed(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	art, err := client.CreateArtwork(ctx, "Served", "", []File{
		{Name: "a.txt", ContentType: "text/plain", Body: strings.NewReader("hello")},
	})
	require.NoError(t, err)

	resp, err := http.Get(client.baseURL.String() + art.Files[0].URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello", string(body))
}

func TestClientAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"BAD_REQUEST","message":"invalid id parameter"}`))
	}))
	defer ts.Close()

	client, err := New(ts.URL, time.Second, nil)
	require.NoError(t, err)

	err = client.RateArtwork(context.Background(), 1, "a", 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
	assert.Contains(t, apiErr.Error(), "invalid id parameter")
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:3000", time.Second, nil)
	assert.Error(t, err)
}

// TestClientSmoke runs against a live server when ARTBOARD_URL is set.
func TestClientSmoke(t *testing.T) {
	baseURL := os.Getenv("ARTBOARD_URL")
	if baseURL == "" {
		t.Skip("ARTBOARD_URL not provided")
	}
	client, err := New(baseURL, 3*time.Second, nil)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.ListArtworks(ctx); err != nil {
		t.Fatalf("list artworks: %v", err)
	}
}
