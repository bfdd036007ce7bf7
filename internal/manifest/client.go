package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mocworks/curricula-backend/internal/logger"
	"github.com/mocworks/curricula-backend/internal/platform/httpx"
	"github.com/mocworks/curricula-backend/internal/types"
)

// Fetcher retrieves curriculum manifests and mail templates from the content
// service. A transport or parse failure fails the whole scheduling run;
// defaults are never silently substituted.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*types.Manifest, error)
	FetchTemplate(ctx context.Context, url string) (string, error)
}

type client struct {
	http *http.Client
	log  *logger.Logger
}

func NewClient(log *logger.Logger) Fetcher {
	return &client{
		http: &http.Client{Timeout: 30 * time.Second},
		log:  log.With("client", "ManifestClient"),
	}
}

func (c *client) Fetch(ctx context.Context, url string) (*types.Manifest, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed loading manifest from %s: %w", url, err)
	}
	var man types.Manifest
	if err := json.Unmarshal(stripBOM(body), &man); err != nil {
		return nil, fmt.Errorf("failed parsing manifest from %s: %w", url, err)
	}
	return &man, nil
}

func (c *client) FetchTemplate(ctx context.Context, url string) (string, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed loading mail template from %s: %w", url, err)
	}
	return string(stripBOM(body)), nil
}

func (c *client) get(ctx context.Context, url string) ([]byte, error) {
	return httpx.DoWithRetry(ctx, c.http, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}, httpx.DefaultRetryConfig())
}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// stripBOM removes a leading UTF-8 byte-order mark some authoring tools
// leave on manifest files.
func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, utf8BOM)
}
