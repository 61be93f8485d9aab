package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rcliao/country-explorer/internal/model"
)

// DefaultBaseURL is the public REST Countries v3.1 endpoint.
const DefaultBaseURL = "https://restcountries.com/v3.1"

// DefaultFields is the field projection requested from the "all" endpoint.
// The service caps projections at ten fields; borders are omitted because
// the detail view re-fetches each record by name.
var DefaultFields = []string{
	"name", "cca3", "population", "region", "subregion",
	"capital", "flags", "tld", "currencies", "languages",
}

// SnapshotFields is the projection used when saving a snapshot. Borders
// replace flags so the snapshot can serve detail views on its own.
var SnapshotFields = []string{
	"name", "cca3", "population", "region", "subregion",
	"capital", "tld", "currencies", "languages", "borders",
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Fields  []string

	// Timeout bounds a single request. Zero leaves the transport defaults.
	Timeout time.Duration

	// RequestsPerSecond throttles outgoing requests. Zero means unlimited.
	RequestsPerSecond float64

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Client talks to the REST Countries API.
type Client struct {
	baseURL string
	fields  string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

var _ Source = (*Client)(nil)

// NewClient creates a REST Countries client.
func NewClient(opts Options, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		fields:  strings.Join(opts.Fields, ","),
		client:  httpClient,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

func (c *Client) FetchAll(ctx context.Context) ([]model.Country, error) {
	u := c.baseURL + "/all"
	if c.fields != "" {
		u += "?fields=" + url.QueryEscape(c.fields)
	}
	countries, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch all: %w", err)
	}
	return countries, nil
}

func (c *Client) FetchByName(ctx context.Context, name string) (model.Country, error) {
	u := c.baseURL + "/name/" + url.PathEscape(name) + "?fullText=true"
	countries, err := c.get(ctx, u)
	if err != nil {
		return model.Country{}, fmt.Errorf("fetch name %q: %w", name, err)
	}
	country, err := pickByName(name, countries)
	if err != nil {
		return model.Country{}, fmt.Errorf("fetch name %q: %w", name, err)
	}
	return country, nil
}

func (c *Client) FetchByCode(ctx context.Context, code string) (model.Country, error) {
	countries, err := c.get(ctx, c.baseURL+"/alpha/"+url.PathEscape(code))
	if err != nil {
		return model.Country{}, fmt.Errorf("fetch code %q: %w", code, err)
	}
	if len(countries) == 0 {
		return model.Country{}, fmt.Errorf("fetch code %q: %w", code, ErrNotFound)
	}
	return countries[0], nil
}

func (c *Client) get(ctx context.Context, u string) ([]model.Country, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("restcountries request",
		zap.String("url", u),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrTransport, resp.StatusCode, snippet(body))
	}

	return decodeCountries(body)
}

// decodeCountries accepts either a JSON array of records or a single record
// object.
func decodeCountries(body []byte) ([]model.Country, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid json: %s", ErrParse, snippet(body))
	}
	root := gjson.ParseBytes(body)
	switch {
	case root.IsArray():
	case root.IsObject():
		body = []byte("[" + root.Raw + "]")
	default:
		return nil, fmt.Errorf("%w: expected array or object, got %s", ErrParse, root.Type)
	}

	var countries []model.Country
	if err := json.Unmarshal(body, &countries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	for i, c := range countries {
		if c.Name.Common == "" {
			return nil, fmt.Errorf("%w: record %d has no name.common", ErrParse, i)
		}
	}
	return countries, nil
}

func snippet(b []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
