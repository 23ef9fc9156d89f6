package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/denysvitali/ev-nearby/evmap"
)

const (
	NominatimBackend = "https://nominatim.openstreetmap.org"
	UserAgent        = "ev-nearby-go"
)

var log = logrus.StandardLogger()

type nominatimAddress struct {
	Road         string `json:"road"`
	Suburb       string `json:"suburb"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	State        string `json:"state"`
	Postcode     string `json:"postcode"`
	Country      string `json:"country"`
}

// nominatimResult mirrors the relevant parts of the OSM search payload.
type nominatimResult struct {
	PlaceID     int64             `json:"place_id"`
	OsmType     string            `json:"osm_type"`
	OsmID       int64             `json:"osm_id"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	AddressType string            `json:"addresstype"`
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Address     *nominatimAddress `json:"address"`
}

// Nominatim searches places on an OpenStreetMap Nominatim instance.
type Nominatim struct {
	client       *http.Client
	baseURL      string
	countryCodes string
}

func NewNominatim(baseURL, countryCodes string) *Nominatim {
	if baseURL == "" {
		baseURL = NominatimBackend
	}
	return &Nominatim{
		client:       &http.Client{Timeout: 10 * time.Second},
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		countryCodes: countryCodes,
	}
}

// Search returns up to limit candidates for query. Candidates with an
// unparseable coordinate are dropped.
func (n *Nominatim) Search(ctx context.Context, query string, limit int, fields []Field) ([]evmap.PlaceSelection, error) {
	req := Request{Fields: fields}
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("accept-language", "en")
	if req.Wants(FieldAddressComponents) {
		params.Set("addressdetails", "1")
	}
	if n.countryCodes != "" {
		params.Set("countrycodes", n.countryCodes)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", UserAgent)

	res, err := n.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("nominatim request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", res.Status)
	}

	var raw []nominatimResult
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode nominatim payload: %w", err)
	}

	candidates := make([]evmap.PlaceSelection, 0, len(raw))
	for _, r := range raw {
		place, ok := buildSelection(r, req)
		if !ok {
			continue
		}
		candidates = append(candidates, place)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoCandidates, query)
	}
	return candidates, nil
}

func buildSelection(r nominatimResult, req Request) (evmap.PlaceSelection, bool) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		log.Debugf("skipping place %d: bad latitude %q", r.PlaceID, r.Lat)
		return evmap.PlaceSelection{}, false
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		log.Debugf("skipping place %d: bad longitude %q", r.PlaceID, r.Lon)
		return evmap.PlaceSelection{}, false
	}

	place := evmap.PlaceSelection{
		Name:     r.DisplayName,
		Location: evmap.NewGeoPoint(lat, lon),
	}
	if req.Wants(FieldID) {
		place.ID = placeID(r)
	}
	if req.Wants(FieldAddressComponents) {
		place.AddressComponents = addressComponents(r)
	}
	return place, true
}

func placeID(r nominatimResult) string {
	if r.OsmType != "" && r.OsmID != 0 {
		return fmt.Sprintf("%s/%d", r.OsmType, r.OsmID)
	}
	return strconv.FormatInt(r.PlaceID, 10)
}

// addressComponents lists the address from the most to the least specific
// part, starting with the place name itself.
func addressComponents(r nominatimResult) []evmap.AddressComponent {
	var components []evmap.AddressComponent
	add := func(name string, types ...string) {
		if name == "" {
			return
		}
		if n := len(components); n > 0 && components[n-1].Name == name {
			return
		}
		components = append(components, evmap.AddressComponent{Name: name, Types: types})
	}

	add(r.Name, r.AddressType)
	if r.Address == nil {
		return components
	}

	a := r.Address
	add(a.Road, "route")
	add(a.Suburb, "sublocality")
	switch {
	case a.City != "":
		add(a.City, "locality")
	case a.Town != "":
		add(a.Town, "locality")
	case a.Village != "":
		add(a.Village, "locality")
	case a.Municipality != "":
		add(a.Municipality, "locality")
	}
	add(a.State, "administrative_area_level_1")
	add(a.Postcode, "postal_code")
	add(a.Country, "country")
	return components
}
