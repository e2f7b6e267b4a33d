package maps

import (
	"context"
	"fmt"
	"math"

	"googlemaps.github.io/maps"

	"github.com/UtkarshSingh-06/Taxigo/internal/routing"
)

// GoogleProvider fetches authoritative routes from the Google Directions API.
// It satisfies routing.DirectionsProvider; the heuristic optimizer remains
// the fallback when the provider errors or is unconfigured.
type GoogleProvider struct {
	client *maps.Client
}

// NewGoogleProvider creates a provider with the given API key.
func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

// GetRoute requests driving directions and converts the best route into a
// RouteOption.
func (p *GoogleProvider) GetRoute(ctx context.Context, origin, destination routing.Coordinate, waypoints []routing.Coordinate) (*routing.RouteOption, error) {
	req := &maps.DirectionsRequest{
		Origin:      formatLatLng(origin),
		Destination: formatLatLng(destination),
		Mode:        maps.TravelModeDriving,
	}
	for _, wp := range waypoints {
		req.Waypoints = append(req.Waypoints, formatLatLng(wp))
	}

	routes, _, err := p.client.Directions(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, fmt.Errorf("no route found")
	}

	best := routes[0]

	var distanceMeters int
	var durationSeconds float64
	for _, leg := range best.Legs {
		distanceMeters += leg.Distance.Meters
		durationSeconds += leg.Duration.Seconds()
	}

	points, err := best.OverviewPolyline.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode overview polyline: %w", err)
	}

	route := make([]routing.Coordinate, len(points))
	for i, pt := range points {
		route[i] = routing.Coordinate{Lat: pt.Lat, Lng: pt.Lng}
	}

	distanceKm := float64(distanceMeters) / 1000
	estimatedMinutes := durationSeconds / 60

	// The provider owns traffic modelling; report free flow and grade safety
	// from route complexity alone.
	safetyScore := math.Max(0, 100-float64(len(waypoints))*0.1*50)

	return &routing.RouteOption{
		Route:         route,
		DistanceKm:    math.Round(distanceKm*100) / 100,
		EstimatedTime: estimatedMinutes,
		TrafficFactor: 0,
		SafetyScore:   int(math.Round(safetyScore)),
	}, nil
}

func formatLatLng(c routing.Coordinate) string {
	return fmt.Sprintf("%f,%f", c.Lat, c.Lng)
}

var _ routing.DirectionsProvider = (*GoogleProvider)(nil)
