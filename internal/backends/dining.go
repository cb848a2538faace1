package backends

import "context"

// DiningBackend serves dining.search and dining.reserve.
type DiningBackend struct{}

var mockRestaurants = []map[string]any{
	{
		"restaurant_id":   "rst_mock_001",
		"name":            "Le Bernardin",
		"cuisine":         "French Seafood",
		"location":        "155 W 51st St, New York, NY",
		"rating":          4.8,
		"price_range":     "$$$$",
		"available_times": []string{"18:00", "19:30", "21:00"},
	},
	{
		"restaurant_id":   "rst_mock_002",
		"name":            "Peter Luger Steak House",
		"cuisine":         "Steakhouse",
		"location":        "178 Broadway, Brooklyn, NY",
		"rating":          4.5,
		"price_range":     "$$$$",
		"available_times": []string{"17:30", "19:00", "20:30"},
	},
	{
		"restaurant_id":   "rst_mock_003",
		"name":            "Joe's Pizza",
		"cuisine":         "Pizza",
		"location":        "7 Carmine St, New York, NY",
		"rating":          4.6,
		"price_range":     "$",
		"available_times": []string{"12:00", "13:00", "18:00", "19:00"},
	},
}

func (b *DiningBackend) Tools() []string {
	return []string{"dining.search", "dining.reserve"}
}

func (b *DiningBackend) Handle(ctx context.Context, method string, payload map[string]any) (map[string]any, error) {
	switch method {
	case "search":
		return mockResponse(map[string]any{"restaurants": mockRestaurants}), nil
	case "reserve":
		restaurantID, _ := payload["restaurant_id"].(string)
		if restaurantID == "" {
			restaurantID = "rst_mock_001"
		}
		reserveTime, _ := payload["time"].(string)
		if reserveTime == "" {
			reserveTime = "19:30"
		}
		partySize, ok := payload["party_size"]
		if !ok {
			partySize = 2
		}
		return mockResponse(map[string]any{
			"reservation_id":  "res_mock_001",
			"confirmation_id": "TS-DIN-9012",
			"restaurant_id":   restaurantID,
			"status":          "confirmed",
			"time":            reserveTime,
			"party_size":      partySize,
		}), nil
	}
	return nil, unknownMethod("dining", method)
}
