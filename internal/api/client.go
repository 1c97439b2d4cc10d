// Package api fetches historical readings and the tag catalog from the
// sensor REST backend.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rileyhilliard/sensorwatch/internal/errors"
	"github.com/rileyhilliard/sensorwatch/internal/logger"
	"github.com/rileyhilliard/sensorwatch/internal/sensor"
)

// DateLayout is the second-precision UTC form the backend expects for date bounds.
const DateLayout = "2006-01-02T15:04:05Z"

// maxBody caps how much of a response body is read.
const maxBody = 64 << 20

// Config holds client settings.
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:8080/api.
	BaseURL string

	// Timeout bounds each request (default: 15s).
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8080/api",
		Timeout: 15 * time.Second,
	}
}

// Client talks to the historical data and tag catalog endpoints.
type Client struct {
	base   string
	client *http.Client
	log    logger.Logger
}

// New creates a client. The HTTP client may be nil.
func New(cfg Config, hc *http.Client, log logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		client: hc,
		log:    logger.OrDefault(log),
	}
}

// Readings fetches historical readings matching f. Unset filter fields are
// omitted from the query.
func (c *Client) Readings(ctx context.Context, f sensor.Filter) ([]sensor.Reading, error) {
	q := url.Values{}
	if f.SensorType != "" {
		q.Set("sensorType", f.SensorType)
	}
	if f.Location != "" {
		q.Set("location", f.Location)
	}
	if !f.Start.IsZero() {
		q.Set("startDate", f.Start.UTC().Format(DateLayout))
	}
	if !f.End.IsZero() {
		q.Set("endDate", f.End.UTC().Format(DateLayout))
	}

	body, err := c.get(ctx, "/sensorData", q)
	if err != nil {
		return nil, err
	}
	readings, rejected, err := sensor.DecodeReadings(body)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFetch,
			"Historical data response was not a reading list",
			"Check that api_url points at the sensor backend.")
	}
	for _, r := range rejected {
		c.log.Warn("discarding historical reading: %v", r)
	}
	c.log.Debug("fetched %d historical readings for %s", len(readings), f)
	return readings, nil
}

// Tags fetches the catalog of known sensor types and locations.
func (c *Client) Tags(ctx context.Context) (sensor.Tags, error) {
	body, err := c.get(ctx, "/availableTags", nil)
	if err != nil {
		return sensor.Tags{}, err
	}
	var tags sensor.Tags
	if err := json.Unmarshal(body, &tags); err != nil {
		return sensor.Tags{}, errors.WrapWithCode(err, errors.ErrFetch,
			"Tag catalog response was malformed",
			"Check that api_url points at the sensor backend.")
	}
	return tags, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFetch,
			fmt.Sprintf("Couldn't build request for %s", u),
			"Check api_url in your config.")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFetch,
			fmt.Sprintf("Couldn't reach %s", c.base),
			"Is the sensor backend running? Check api_url or SENSORWATCH_API_URL.")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFetch,
			fmt.Sprintf("Couldn't read response from %s", u), "")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newFetchError(resp, body)
	}
	return body, nil
}
