// Package media retrieves provider-hosted MMS attachments.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/familyplate/recipebox/pkg/logging"
)

// DefaultContentType is assumed when the remote omits a Content-Type header.
const DefaultContentType = "image/jpeg"

// Object holds fetched media bytes plus the content type that drives both
// storage metadata and gallery classification.
type Object struct {
	Bytes       []byte
	ContentType string
}

// FetchError indicates the remote media endpoint did not hand over the media.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("media: fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("media: fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Config controls how the Fetcher behaves.
type Config struct {
	Timeout    time.Duration
	Username   string
	Password   string
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Fetcher downloads media referenced by inbound webhook notifications.
type Fetcher struct {
	client   *http.Client
	username string
	password string
	logger   *logging.Logger
}

// NewFetcher creates a Fetcher with sane defaults.
func NewFetcher(cfg Config) *Fetcher {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Fetcher{
		client:   client,
		username: cfg.Username,
		password: cfg.Password,
		logger:   logger,
	}
}

// Fetch retrieves the media at mediaURL. Provider media URLs are time-limited,
// so any non-success status is surfaced immediately as a FetchError.
func (f *Fetcher) Fetch(ctx context.Context, mediaURL string) (*Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, &FetchError{URL: mediaURL, Err: err}
	}
	if f.username != "" {
		req.SetBasicAuth(f.username, f.password)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: mediaURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{URL: mediaURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: mediaURL, Err: err}
	}

	contentType := strings.TrimSpace(resp.Header.Get("Content-Type"))
	if contentType == "" {
		contentType = DefaultContentType
	}

	f.logger.Debug("fetched media", "url", mediaURL, "bytes", len(body), "content_type", contentType)
	return &Object{Bytes: body, ContentType: contentType}, nil
}

// Extension derives the storage file extension from a content type by
// splitting the subtype, e.g. "image/png" becomes "png". No magic-byte
// sniffing is performed.
func Extension(contentType string) string {
	ct := strings.TrimSpace(contentType)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	parts := strings.SplitN(ct, "/", 2)
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}
	return "jpeg"
}

// TypeFor classifies a content type as a gallery media type.
func TypeFor(contentType string) string {
	if strings.HasPrefix(strings.TrimSpace(contentType), "video/") {
		return "video"
	}
	return "image"
}
