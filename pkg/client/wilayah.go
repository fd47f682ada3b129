package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// WilayahClient reads Indonesian administrative regions (provinces down to
// villages) from wilayah.id.
type WilayahClient struct {
	*BaseClient
	baseURL string
}

func NewWilayahClient(baseURL string, config ClientConfig, logger *zap.Logger) *WilayahClient {
	return &WilayahClient{
		BaseClient: NewBaseClient("wilayah", config, logger),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (c *WilayahClient) URLFor(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// GetRaw returns the upstream JSON for path. The caller validates path.
func (c *WilayahClient) GetRaw(ctx context.Context, path string) ([]byte, error) {
	data, err := c.Get(ctx, c.URLFor(path))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch region %s: %w", path, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("region response for %s is not valid JSON", path)
	}
	return data, nil
}
