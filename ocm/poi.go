package ocm

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/denysvitali/ev-nearby/evmap"
)

const (
	descriptionNotAvailable = "Description not available"
	costNotAvailable        = "N/A"
)

type addressInfo struct {
	Title        string   `json:"Title"`
	AddressLine1 string   `json:"AddressLine1"`
	Town         string   `json:"Town"`
	Latitude     *float64 `json:"Latitude"`
	Longitude    *float64 `json:"Longitude"`
}

// poiRecord is the subset of an Open Charge Map POI this client reads.
type poiRecord struct {
	ID              int          `json:"ID"`
	AddressInfo     *addressInfo `json:"AddressInfo"`
	GeneralComments *string      `json:"GeneralComments"`
	Description     *string      `json:"Description"`
	NumberOfPoints  *int         `json:"NumberOfPoints"`
	UsageCost       *string      `json:"UsageCost"`
}

// decodeRecords splits the payload into records. Only a payload that is not a
// JSON array is an error; broken records are dropped by toSite.
func decodeRecords(body []byte) ([]json.RawMessage, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// toSite converts one raw record, reporting false when the record has to be skipped.
func toSite(raw json.RawMessage) (evmap.ChargerSite, bool) {
	var rec poiRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		log.Debugf("skipping malformed record: %v", err)
		return evmap.ChargerSite{}, false
	}
	if rec.AddressInfo == nil {
		log.Debugf("skipping record %d: missing AddressInfo", rec.ID)
		return evmap.ChargerSite{}, false
	}
	if rec.AddressInfo.Latitude == nil || rec.AddressInfo.Longitude == nil {
		log.Debugf("skipping record %d: missing coordinates", rec.ID)
		return evmap.ChargerSite{}, false
	}

	location := evmap.NewGeoPoint(*rec.AddressInfo.Latitude, *rec.AddressInfo.Longitude)
	if !location.Valid() {
		log.Debugf("skipping record %d: coordinate out of range %s", rec.ID, location)
		return evmap.ChargerSite{}, false
	}

	points := 1
	if rec.NumberOfPoints != nil {
		points = *rec.NumberOfPoints
	}
	cost := costNotAvailable
	if rec.UsageCost != nil {
		cost = *rec.UsageCost
	}

	return evmap.ChargerSite{
		Title:       rec.AddressInfo.Title,
		Description: description(rec),
		Address:     joinAddress(rec.AddressInfo.AddressLine1, rec.AddressInfo.Town),
		Points:      points,
		Cost:        ParseCost(cost),
		Location:    location,
	}, true
}

// description prefers GeneralComments over Description
func description(rec poiRecord) string {
	var d string
	if rec.GeneralComments != nil {
		d = *rec.GeneralComments
	} else if rec.Description != nil {
		d = *rec.Description
	}
	if d == "" {
		return descriptionNotAvailable
	}
	return d
}

func joinAddress(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

var nonNumeric = regexp.MustCompile(`[^\d.]`)

// ParseCost extracts a per-kWh price from the free text UsageCost field.
// Every character that is not a digit or a dot becomes a zero, so "$0.50/kWh"
// parses as 0.5. Anything that still does not parse costs 0.
func ParseCost(s string) float64 {
	v, err := strconv.ParseFloat(nonNumeric.ReplaceAllString(s, "0"), 64)
	if err != nil {
		return 0
	}
	return v
}
