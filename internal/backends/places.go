package backends

import "context"

// PlacesBackend serves places.search and places.details.
type PlacesBackend struct{}

var mockPlaces = []map[string]any{
	{
		"place_id":    "ChIJN1t_tDeuEmsR",
		"name":        "Central Park",
		"vicinity":    "New York, NY",
		"address":     "Central Park, New York, NY 10024",
		"rating":      4.8,
		"description": "Iconic 843-acre urban park with walking paths, lakes, and cultural attractions.",
	},
	{
		"place_id":    "ChIJPTacEpBQwokR",
		"name":        "Times Square",
		"vicinity":    "Manhattan, NY",
		"address":     "Times Square, Manhattan, NY 10036",
		"rating":      4.5,
		"description": "World-famous commercial intersection and entertainment center.",
	},
	{
		"place_id":    "ChIJYXBiL0VYwokR",
		"name":        "The High Line",
		"vicinity":    "New York, NY",
		"address":     "The High Line, New York, NY 10011",
		"rating":      4.7,
		"description": "Elevated linear park on a historic freight rail line.",
	},
}

var mockPlaceDetails = map[string]map[string]any{
	"ChIJN1t_tDeuEmsR": {
		"name":              "Central Park",
		"formatted_address": "Central Park, New York, NY 10024",
		"phone":             "+1 212-310-6600",
		"website":           "https://www.centralparknyc.org",
		"opening_hours":     "6:00 AM – 1:00 AM",
		"rating":            4.8,
		"reviews_count":     120000,
	},
}

func (b *PlacesBackend) Tools() []string {
	return []string{"places.search", "places.details"}
}

func (b *PlacesBackend) Handle(ctx context.Context, method string, payload map[string]any) (map[string]any, error) {
	switch method {
	case "search":
		return mockResponse(map[string]any{"places": mockPlaces}), nil
	case "details":
		placeID, _ := payload["place_id"].(string)
		details, ok := mockPlaceDetails[placeID]
		if !ok {
			details = map[string]any{"name": "Unknown Place"}
		}
		return mockResponse(map[string]any{"details": details}), nil
	}
	return nil, unknownMethod("places", method)
}
