package directions

import (
	"context"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves a free-form address to coordinates, consulting the
// geocode cache first. A provider-side failure or an unresolvable
// address surfaces as ports.ErrUnavailable.
func (g *GoogleDirectionsProvider) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	start := time.Now()
	defer func() { observe("geocode", start, err) }()

	address = strings.Join(strings.Fields(address), " ")
	if address == "" {
		return domain.Coordinates{}, errors.New("geocode: address must be non-empty")
	}

	if g.geocodeCache != nil {
		hits, err := g.geocodeCache.GetMany(ctx, []string{address})
		if err != nil {
			log.Printf("geocode cache read failed: %v", err)
		} else if c, ok := hits[address]; ok {
			return c, nil
		}
	}

	params := url.Values{}
	params.Set("address", address)

	resp, err := g.doWithRetry(ctx, func() (*http.Request, error) {
		p := url.Values{}
		for k, v := range params {
			p[k] = v
		}
		return g.newRequest(ctx, "/maps/api/geocode/json", p)
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w: %w", address, ports.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: decode response: %w", address, err)
	}

	if decoded.Status != "OK" || len(decoded.Results) == 0 {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: status %s: %w", address, decoded.Status, ports.ErrUnavailable)
	}

	loc := decoded.Results[0].Geometry.Location
	coord := domain.Coordinates{Lat: loc.Lat, Lng: loc.Lng}

	if g.geocodeCache != nil {
		if err := g.geocodeCache.PutMany(ctx, map[string]domain.Coordinates{address: coord}); err != nil {
			log.Printf("geocode cache write failed: %v", err)
		}
	}

	return coord, nil
}
