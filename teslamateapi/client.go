package teslamateapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	endpoint   string
	httpClient *http.Client
}

func New(addr string) (*Client, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid TeslaMate API URL %q", addr)
	}

	c := Client{
		endpoint:   strings.TrimSuffix(addr, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}

	return &c, nil
}

func (c *Client) GetCarStatus(ctx context.Context, carID int) (*CarStatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/v1/cars/%d/status", c.endpoint, carID), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", res.Status)
	}

	var response genericResponse[CarStatusResponse]
	err = json.NewDecoder(res.Body).Decode(&response)
	if err != nil {
		return nil, err
	}

	return &response.Data, nil
}
