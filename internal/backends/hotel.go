package backends

import "context"

// HotelBackend serves hotel.search and hotel.book.
type HotelBackend struct{}

var mockHotels = []map[string]any{
	{
		"hotel_id":        "htl_mock_001",
		"name":            "The Standard, High Line",
		"location":        "New York, NY",
		"price_per_night": 171.00,
		"currency":        "USD",
		"rating":          4.4,
		"stars":           4,
		"amenities":       []string{"WiFi", "Gym", "Restaurant", "Bar"},
	},
	{
		"hotel_id":        "htl_mock_002",
		"name":            "Pod 51",
		"location":        "New York, NY",
		"price_per_night": 99.00,
		"currency":        "USD",
		"rating":          4.1,
		"stars":           3,
		"amenities":       []string{"WiFi", "Rooftop"},
	},
	{
		"hotel_id":        "htl_mock_003",
		"name":            "The Plaza",
		"location":        "New York, NY",
		"price_per_night": 645.00,
		"currency":        "USD",
		"rating":          4.7,
		"stars":           5,
		"amenities":       []string{"WiFi", "Spa", "Pool", "Concierge"},
	},
}

func (b *HotelBackend) Tools() []string {
	return []string{"hotel.search", "hotel.book"}
}

func (b *HotelBackend) Handle(ctx context.Context, method string, payload map[string]any) (map[string]any, error) {
	switch method {
	case "search":
		return mockResponse(map[string]any{"hotels": mockHotels}), nil
	case "book":
		hotelID, _ := payload["hotel_id"].(string)
		if hotelID == "" {
			hotelID = "htl_mock_001"
		}
		return mockResponse(map[string]any{
			"booking_id":      "bkg_mock_001",
			"confirmation_id": "TS-HTL-5678",
			"hotel_id":        hotelID,
			"status":          "confirmed",
			"total_price":     342.00,
			"currency":        "USD",
		}), nil
	}
	return nil, unknownMethod("hotel", method)
}
