package ocm

import (
	"net/http"
)

const UserAgent = "ev-nearby-go"

// ocmRoundTripper stamps the API key and client headers on every directory request.
type ocmRoundTripper struct {
	inner  http.RoundTripper
	apiKey string
}

func (o ocmRoundTripper) RoundTrip(request *http.Request) (*http.Response, error) {
	// RoundTrip must not modify the caller's request
	req := request.Clone(request.Context())

	if o.apiKey != "" {
		q := req.URL.Query()
		if q.Get("key") == "" {
			q.Set("key", o.apiKey)
			req.URL.RawQuery = q.Encode()
		}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	return o.transport().RoundTrip(req)
}

// transport resolves the inner transport at call time so that a replaced
// http.DefaultTransport is honoured.
func (o ocmRoundTripper) transport() http.RoundTripper {
	if o.inner != nil {
		return o.inner
	}
	return http.DefaultTransport
}

var _ http.RoundTripper = &ocmRoundTripper{}
