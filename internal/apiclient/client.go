// Package apiclient is a typed client for the artboard HTTP API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// MediaFile is one stored file of an artwork.
type MediaFile struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Artwork mirrors the record returned by the server.
type Artwork struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Files         []MediaFile `json:"files"`
	AverageRating float64     `json:"averageRating"`
	RatingCount   int         `json:"ratingCount"`
}

// File is a payload to upload. An empty ContentType is sent as
// application/octet-stream.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("artboard: server returned %d", e.Status)
	}
	return fmt.Sprintf("artboard: %d %s: %s", e.Status, e.Code, e.Message)
}

// Client talks to one artboard server.
type Client struct {
	baseURL *url.URL
	client  *http.Client
	logger  *zap.Logger
}

// New constructs a client for baseURL.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", baseURL)
	}
	return &Client{
		baseURL: parsed,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// CreateArtwork uploads files as one new artwork.
func (c *Client) CreateArtwork(ctx context.Context, title, description string, files []File) (Artwork, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("title", title); err != nil {
		return Artwork{}, err
	}
	if err := mw.WriteField("description", description); err != nil {
		return Artwork{}, err
	}
	for _, f := range files {
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="artFiles"; filename=%q`, f.Name))
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return Artwork{}, err
		}
		if _, err := io.Copy(part, f.Body); err != nil {
			return Artwork{}, fmt.Errorf("read %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return Artwork{}, err
	}

	var art Artwork
	if err := c.do(ctx, http.MethodPost, "/api/art", mw.FormDataContentType(), &buf, &art); err != nil {
		return Artwork{}, err
	}
	return art, nil
}

// ListArtworks returns every artwork in creation order.
func (c *Client) ListArtworks(ctx context.Context) ([]Artwork, error) {
	var arts []Artwork
	if err := c.do(ctx, http.MethodGet, "/api/art", "", nil, &arts); err != nil {
		return nil, err
	}
	return arts, nil
}

// RateArtwork submits userID's rating for artwork id.
func (c *Client) RateArtwork(ctx context.Context, id int64, userID string, rating float64) error {
	body, err := json.Marshal(struct {
		Rating float64 `json:"rating"`
		UserID string  `json:"userId"`
	}{Rating: rating, UserID: userID})
	if err != nil {
		return err
	}

	var resp struct {
		Success bool `json:"success"`
	}
	path := "/api/art/" + strconv.FormatInt(id, 10) + "/rate"
	if err := c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(body), &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("artboard: rating for %d not acknowledged", id)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, dst interface{}) error {
	endpoint := c.baseURL.ResolveReference(&url.URL{Path: c.baseURL.Path + path})

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(apiErr)
		c.logger.Debug("artboard request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
