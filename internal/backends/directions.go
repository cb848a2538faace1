package backends

import "context"

// DirectionsBackend serves directions.route and directions.eta.
type DirectionsBackend struct{}

func (b *DirectionsBackend) Tools() []string {
	return []string{"directions.route", "directions.eta"}
}

func (b *DirectionsBackend) Handle(ctx context.Context, method string, payload map[string]any) (map[string]any, error) {
	origin, _ := payload["origin"].(string)
	destination, _ := payload["destination"].(string)

	switch method {
	case "route":
		return mockResponse(map[string]any{
			"origin":           origin,
			"destination":      destination,
			"distance_km":      5.2,
			"duration_minutes": 18,
			"steps": []map[string]any{
				{"instruction": "Head north on Broadway", "distance": "0.3 km"},
				{"instruction": "Turn right on W 42nd St", "distance": "1.2 km"},
				{"instruction": "Continue to destination", "distance": "3.7 km"},
			},
		}), nil
	case "eta":
		return mockResponse(map[string]any{
			"origin":      origin,
			"destination": destination,
			"eta_minutes": 18,
		}), nil
	}
	return nil, unknownMethod("directions", method)
}
