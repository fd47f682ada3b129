package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/bobby-s-dev/farmlens/internal/models"
	"go.uber.org/zap"
)

// BMKGClient reads the public forecast of the Indonesian meteorological
// agency for one fixed village-level (adm4) area.
type BMKGClient struct {
	*BaseClient
	baseURL  string
	areaCode string
}

func NewBMKGClient(baseURL, areaCode string, config ClientConfig, logger *zap.Logger) *BMKGClient {
	return &BMKGClient{
		BaseClient: NewBaseClient("bmkg", config, logger),
		baseURL:    strings.TrimRight(baseURL, "/"),
		areaCode:   areaCode,
	}
}

func (c *BMKGClient) ForecastURL() string {
	return fmt.Sprintf("%s/prakiraan-cuaca?adm4=%s", c.baseURL, url.QueryEscape(c.areaCode))
}

// GetForecastRaw returns the upstream JSON exactly as received.
func (c *BMKGClient) GetForecastRaw(ctx context.Context) ([]byte, error) {
	data, err := c.Get(ctx, c.ForecastURL())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("forecast response is not valid JSON")
	}
	return data, nil
}

func (c *BMKGClient) GetForecast(ctx context.Context) (*models.BMKGForecast, error) {
	data, err := c.GetForecastRaw(ctx)
	if err != nil {
		return nil, err
	}
	return DecodeForecast(data)
}

func DecodeForecast(data []byte) (*models.BMKGForecast, error) {
	var forecast models.BMKGForecast
	if err := json.Unmarshal(data, &forecast); err != nil {
		return nil, fmt.Errorf("failed to parse forecast response: %w", err)
	}
	return &forecast, nil
}
