// Package geocode resolves birth place names to coordinates.
package geocode

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/starford/daivaya/internal/apperr"
)

// Location is a resolved place.
type Location struct {
	Place       string  `json:"place"`
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// Geocoder resolves a free-form place name.
type Geocoder interface {
	Resolve(ctx context.Context, place string) (Location, error)
}

// Nominatim queries an OpenStreetMap Nominatim search endpoint.
type Nominatim struct {
	http *resty.Client
}

// NewNominatim returns a client for baseURL. Nominatim's usage policy
// requires an identifying User-Agent.
func NewNominatim(baseURL, userAgent string, timeout time.Duration) *Nominatim {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
	return &Nominatim{http: client}
}

type searchHit struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve implements Geocoder.
func (n *Nominatim) Resolve(ctx context.Context, place string) (Location, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return Location{}, apperr.Validation("place is required")
	}

	var hits []searchHit
	resp, err := n.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":      place,
			"format": "json",
			"limit":  "1",
		}).
		SetResult(&hits).
		Get("/search")
	if err != nil {
		return Location{}, apperr.Wrap(apperr.ErrUpstream, fmt.Errorf("geocode: search: %w", err), "geocoding service unavailable")
	}
	if resp.IsError() {
		return Location{}, apperr.Wrap(apperr.ErrUpstream,
			fmt.Errorf("geocode: search: status %d: %s", resp.StatusCode(), resp.String()),
			"geocoding service unavailable")
	}
	if len(hits) == 0 {
		return Location{}, apperr.Lookup("could not find location: %s", place)
	}

	lat, err := strconv.ParseFloat(hits[0].Lat, 64)
	if err != nil {
		return Location{}, apperr.Wrap(apperr.ErrUpstream, fmt.Errorf("geocode: lat %q: %w", hits[0].Lat, err), "geocoding service returned bad data")
	}
	lon, err := strconv.ParseFloat(hits[0].Lon, 64)
	if err != nil {
		return Location{}, apperr.Wrap(apperr.ErrUpstream, fmt.Errorf("geocode: lon %q: %w", hits[0].Lon, err), "geocoding service returned bad data")
	}

	return Location{Place: place, DisplayName: hits[0].DisplayName, Lat: lat, Lon: lon}, nil
}
