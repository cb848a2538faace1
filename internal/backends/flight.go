package backends

import "context"

// FlightBackend serves flight.search_offers and flight.book_order.
type FlightBackend struct{}

var mockOffers = []map[string]any{
	{
		"offer_id":      "off_mock_001",
		"airline":       "United",
		"flight_number": "UA 234",
		"origin":        "SFO",
		"destination":   "JFK",
		"departure":     "2026-01-15T08:00:00",
		"arrival":       "2026-01-15T16:30:00",
		"price":         342.00,
		"currency":      "USD",
		"cabin_class":   "economy",
	},
	{
		"offer_id":      "off_mock_002",
		"airline":       "Delta",
		"flight_number": "DL 505",
		"origin":        "SFO",
		"destination":   "JFK",
		"departure":     "2026-01-15T10:15:00",
		"arrival":       "2026-01-15T18:45:00",
		"price":         289.00,
		"currency":      "USD",
		"cabin_class":   "economy",
	},
	{
		"offer_id":      "off_mock_003",
		"airline":       "JetBlue",
		"flight_number": "B6 816",
		"origin":        "SFO",
		"destination":   "JFK",
		"departure":     "2026-01-15T14:00:00",
		"arrival":       "2026-01-15T22:20:00",
		"price":         265.00,
		"currency":      "USD",
		"cabin_class":   "economy",
	},
}

func (b *FlightBackend) Tools() []string {
	return []string{"flight.search_offers", "flight.book_order"}
}

func (b *FlightBackend) Handle(ctx context.Context, method string, payload map[string]any) (map[string]any, error) {
	switch method {
	case "search_offers":
		return mockResponse(map[string]any{"offers": mockOffers}), nil
	case "book_order":
		offerID, _ := payload["offer_id"].(string)
		if offerID == "" {
			offerID = "off_mock_001"
		}
		return mockResponse(map[string]any{
			"booking_id":      "bkg_mock_flt_001",
			"confirmation_id": "TS-FLT-1234",
			"offer_id":        offerID,
			"status":          "confirmed",
		}), nil
	}
	return nil, unknownMethod("flight", method)
}
