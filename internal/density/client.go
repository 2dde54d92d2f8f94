package density

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Lookup retrieves the density of a solvent at a temperature.
type Lookup interface {
	Density(ctx context.Context, solvent string, temperatureC float64) (float64, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, solvent string, temperatureC float64) (float64, error)

func (f LookupFunc) Density(ctx context.Context, solvent string, temperatureC float64) (float64, error) {
	return f(ctx, solvent, temperatureC)
}

type response struct {
	Solvent     string   `json:"solvent"`
	Temperature float64  `json:"temperature"`
	Density     *float64 `json:"density_g_per_ml"`
}

// Client calls the external density service:
// GET {base}/calculate-density/{solvent}/{temperature}.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a Client for the service at base.
func NewClient(base string, timeout time.Duration) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Density(ctx context.Context, solvent string, temperatureC float64) (float64, error) {
	endpoint, err := url.JoinPath(
		c.base,
		"calculate-density",
		pathSegment(solvent),
		strconv.FormatFloat(temperatureC, 'f', -1, 64),
	)
	if err != nil {
		return 0, fmt.Errorf("build density url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("%w: decode: %w", ErrInvalidDensity, err)
	}
	if body.Density == nil {
		return 0, fmt.Errorf("%w: density_g_per_ml missing", ErrInvalidDensity)
	}
	return *body.Density, nil
}

// pathSegment escapes s so it stays a single path segment. Dot segments
// are percent-encoded so path cleaning cannot climb out of the base.
func pathSegment(s string) string {
	if s == "." || s == ".." {
		return strings.ReplaceAll(s, ".", "%2E")
	}
	return url.PathEscape(s)
}
