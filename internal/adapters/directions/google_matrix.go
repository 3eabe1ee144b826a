package directions

import (
	"context"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/ports"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type matrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Duration struct {
				Value float64 `json:"value"`
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// TravelTimeMatrix returns pairwise travel times in seconds with every
// point as both origin and destination. A nil cell means the provider
// knows no route for that pair; a nil error with partial cells is a
// valid outcome. Cached pairs are reused and only a full-matrix call is
// issued when any pair is missing.
func (g *GoogleDirectionsProvider) TravelTimeMatrix(ctx context.Context, coords []domain.Coordinates) (_ [][]*float64, err error) {
	start := time.Now()
	defer func() { observe("matrix", start, err) }()

	n := len(coords)
	if n == 0 {
		return [][]*float64{}, nil
	}

	out := make([][]*float64, n)
	for i := range out {
		out[i] = make([]*float64, n)
		zero := 0.0
		out[i][i] = &zero
	}

	if g.fillFromCache(ctx, coords, out) {
		return out, nil
	}

	locations := make([]string, 0, n)
	for _, c := range coords {
		locations = append(locations, c.LatLng())
	}
	joined := strings.Join(locations, "|")

	params := url.Values{}
	params.Set("origins", joined)
	params.Set("destinations", joined)
	params.Set("mode", g.mode)

	resp, err := g.doWithRetry(ctx, func() (*http.Request, error) {
		p := url.Values{}
		for k, v := range params {
			p[k] = v
		}
		return g.newRequest(ctx, "/maps/api/distancematrix/json", p)
	})
	if err != nil {
		return nil, fmt.Errorf("travel time matrix: %w: %w", ports.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var decoded matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("travel time matrix: decode response: %w", err)
	}

	if decoded.Status != "OK" || len(decoded.Rows) != n {
		return nil, fmt.Errorf("travel time matrix: status %s rows %d: %w", decoded.Status, len(decoded.Rows), ports.ErrUnavailable)
	}

	fresh := make(map[string]float64)
	for i, row := range decoded.Rows {
		if len(row.Elements) != n {
			return nil, fmt.Errorf("travel time matrix: row %d has %d elements, want %d", i, len(row.Elements), n)
		}

		for j, el := range row.Elements {
			if i == j {
				continue
			}
			// A failed element stays nil: the pair is unreachable as far
			// as the provider knows.
			if el.Status != "OK" {
				continue
			}
			seconds := el.Duration.Value
			out[i][j] = &seconds
			fresh[pairKey(coords[i], coords[j])] = seconds
		}
	}

	if g.timeCache != nil && len(fresh) > 0 {
		if err := g.timeCache.PutMany(ctx, fresh); err != nil {
			log.Printf("travel time cache write failed: %v", err)
		}
	}

	return out, nil
}

// fillFromCache populates the matrix from the pair cache and reports
// whether every off-diagonal cell was served. Cache errors just force a
// provider call.
func (g *GoogleDirectionsProvider) fillFromCache(ctx context.Context, coords []domain.Coordinates, out [][]*float64) bool {
	if g.timeCache == nil {
		return false
	}

	n := len(coords)
	pairs := make([]string, 0, n*n-n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				pairs = append(pairs, pairKey(coords[i], coords[j]))
			}
		}
	}

	hits, err := g.timeCache.GetMany(ctx, pairs)
	if err != nil {
		log.Printf("travel time cache read failed: %v", err)
		return false
	}
	if len(hits) < len(pairs) {
		return false
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			seconds := hits[pairKey(coords[i], coords[j])]
			out[i][j] = &seconds
		}
	}

	return true
}
