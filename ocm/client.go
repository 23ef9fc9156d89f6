// Package ocm queries the Open Charge Map directory for charging sites.
package ocm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/denysvitali/ev-nearby/evmap"
)

const (
	Backend           string = "https://api.openchargemap.io/v3"
	DefaultMaxResults int    = 10
	DefaultTimeout           = 30 * time.Second
)

var log = logrus.StandardLogger()

type Client struct {
	httpClient *http.Client
	baseURL    string
	transport  http.RoundTripper
}

type Option func(*Client)

// WithBaseURL points the client at another directory endpoint
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithTransport replaces the transport underneath the key-stamping round tripper
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("open charge map api key cannot be empty")
	}
	log.Debugf("ocm New")
	c := &Client{
		baseURL: Backend,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = &http.Client{
		Timeout: DefaultTimeout,
		Transport: ocmRoundTripper{
			inner:  c.transport,
			apiKey: apiKey,
		},
	}
	return c, nil
}

// FetchNearby returns the coordinates of up to limit charging sites around
// center, in directory order. Records without a usable AddressInfo are skipped.
func (c *Client) FetchNearby(ctx context.Context, center evmap.GeoPoint, limit int) ([]evmap.GeoPoint, error) {
	sites, err := c.FetchNearbySites(ctx, center, limit)
	if err != nil {
		return nil, err
	}
	points := make([]evmap.GeoPoint, 0, len(sites))
	for _, s := range sites {
		points = append(points, s.Location)
	}
	return points, nil
}

// FetchNearbySites is FetchNearby with the descriptive metadata of every site.
func (c *Client) FetchNearbySites(ctx context.Context, center evmap.GeoPoint, limit int) ([]evmap.ChargerSite, error) {
	if !center.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPoint, center)
	}
	if limit <= 0 {
		limit = DefaultMaxResults
	}

	body, err := c.getPOI(ctx, center, limit)
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}
	log.Debugf("chargers found: %d", len(records))

	sites := make([]evmap.ChargerSite, 0, len(records))
	for _, raw := range records {
		site, ok := toSite(raw)
		if !ok {
			continue
		}
		sites = append(sites, site)
	}
	return sites, nil
}

// GetSite resolves the charging site closest to point, with its metadata.
func (c *Client) GetSite(ctx context.Context, point evmap.GeoPoint) (*evmap.ChargerSite, error) {
	sites, err := c.FetchNearbySites(ctx, point, 1)
	if err != nil {
		return nil, err
	}
	if len(sites) == 0 {
		return nil, ErrNoSites
	}
	return &sites[0], nil
}

func (c *Client) getPOI(ctx context.Context, center evmap.GeoPoint, limit int) ([]byte, error) {
	params := url.Values{}
	params.Set("output", "json")
	params.Set("latitude", strconv.FormatFloat(center.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(center.Longitude, 'f', -1, 64))
	params.Set("maxresults", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/poi/?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	log.Debugf("fetching up to %d sites around %s", limit, center)
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching data: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", res.Status)
	}
	return io.ReadAll(res.Body)
}
