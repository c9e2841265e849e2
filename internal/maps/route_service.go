// README: Google Directions client that turns driving alternatives into candidate routes.
package maps

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"freightquote/internal/modules/pricing"

	"googlemaps.github.io/maps"
)

var ErrNoRoute = errors.New("no route found")

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client   *maps.Client
	region   string
	partners []string
}

// NewRouteService creates a RouteService. Routes whose summary names one of the
// partner corridors (e.g. "M62") are flagged as partner routes.
func NewRouteService(apiKey, region string, partnerCorridors []string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client, region: region, partners: partnerCorridors}, nil
}

// Alternatives returns every driving route Google offers between origin and destination.
func (s *RouteService) Alternatives(ctx context.Context, origin, destination string) ([]pricing.CandidateRoute, error) {
	r := &maps.DirectionsRequest{
		Origin:       origin,
		Destination:  destination,
		Mode:         maps.TravelModeDriving,
		Alternatives: true,
		Region:       s.region,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 {
		return nil, ErrNoRoute
	}
	return candidatesFromRoutes(routes, s.partners), nil
}

func candidatesFromRoutes(routes []maps.Route, partners []string) []pricing.CandidateRoute {
	out := make([]pricing.CandidateRoute, 0, len(routes))
	for i, route := range routes {
		var meters int
		var minutes float64
		for _, leg := range route.Legs {
			meters += leg.Distance.Meters
			minutes += leg.Duration.Minutes()
		}
		label := route.Summary
		if label == "" {
			label = "Route " + strconv.Itoa(i+1)
		}
		out = append(out, pricing.CandidateRoute{
			ID:           strconv.Itoa(i),
			Label:        label,
			Distance:     float64(meters) / 1000,
			Duration:     minutes,
			PartnerRoute: onCorridor(route.Summary, partners),
		})
	}
	return out
}

func onCorridor(summary string, corridors []string) bool {
	s := strings.ToLower(summary)
	for _, c := range corridors {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" && strings.Contains(s, c) {
			return true
		}
	}
	return false
}
