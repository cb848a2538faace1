package agent

import "github.com/tmc/langchaingo/llms"

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

var stepSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"type":                stringProp("Step type: flight, hotel, restaurant, activity, transport or calendar_event"),
		"title":               stringProp("Short human-readable title, e.g. 'Dinner at Le Bernardin'"),
		"description":         stringProp("Optional longer description"),
		"date":                stringProp("Date in YYYY-MM-DD"),
		"start_time":          stringProp("Start time HH:MM, 24h"),
		"end_time":            stringProp("End time HH:MM, 24h"),
		"estimated_price_usd": map[string]any{"type": "number", "description": "Estimated cost in USD"},
		"location": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":    stringProp("Venue or place name"),
				"address": stringProp("Street address if known"),
			},
		},
		"notes": stringProp("Freeform notes"),
	},
	"required": []string{"type", "title"},
}

// Catalog is the tool surface offered to the model. The itinerary.*
// entries are handled in-process by the orchestrator; everything else is
// routed to a backend by prefix.
func Catalog() []llms.Tool {
	return []llms.Tool{
		fn("itinerary.generate",
			"Create a complete travel itinerary from the trip details gathered so far. Call this once you know the destination, dates and the activities the user wants.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":       stringProp("Trip title, e.g. 'Weekend in New York'"),
					"destination": stringProp("Destination city or region"),
					"start_date":  stringProp("Trip start date YYYY-MM-DD"),
					"end_date":    stringProp("Trip end date YYYY-MM-DD"),
					"steps": map[string]any{
						"type":        "array",
						"description": "Ordered list of itinerary steps",
						"items":       stepSchema,
					},
				},
				"required": []string{"title", "destination", "steps"},
			}),
		fn("itinerary.update_step",
			"Update fields on one step of an existing itinerary.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"itinerary_id": stringProp("The itinerary id"),
					"step_id":      stringProp("The step id to update"),
					"updates": map[string]any{
						"type":        "object",
						"description": "Fields to change, same shape as a step",
					},
				},
				"required": []string{"itinerary_id", "step_id", "updates"},
			}),
		fn("itinerary.add_step",
			"Append a new step to an existing itinerary.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"itinerary_id": stringProp("The itinerary id"),
					"step":         stepSchema,
				},
				"required": []string{"itinerary_id", "step"},
			}),
		fn("itinerary.remove_step",
			"Remove a step from an existing itinerary.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"itinerary_id": stringProp("The itinerary id"),
					"step_id":      stringProp("The step id to remove"),
				},
				"required": []string{"itinerary_id", "step_id"},
			}),
		fn("itinerary.execute",
			"Execute a confirmed itinerary: dispatch every pending step to its booking agent. Only call this after the user has confirmed the plan.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"itinerary_id": stringProp("The itinerary id to execute"),
				},
				"required": []string{"itinerary_id"},
			}),
		fn("flight.search_offers",
			"Search live flight offers between two airports.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"origin":         stringProp("Origin airport or city code"),
					"destination":    stringProp("Destination airport or city code"),
					"departure_date": stringProp("Departure date YYYY-MM-DD"),
					"passengers":     map[string]any{"type": "integer", "description": "Number of passengers"},
				},
				"required": []string{"origin", "destination"},
			}),
		fn("hotel.search",
			"Search hotels in a location for a date range.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"location":  stringProp("City or neighborhood"),
					"check_in":  stringProp("Check-in date YYYY-MM-DD"),
					"check_out": stringProp("Check-out date YYYY-MM-DD"),
					"guests":    map[string]any{"type": "integer", "description": "Number of guests"},
				},
				"required": []string{"location"},
			}),
		fn("dining.search",
			"Search restaurants by cuisine and location.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query":    stringProp("Cuisine or dish, e.g. 'seafood'"),
					"location": stringProp("City or neighborhood"),
				},
				"required": []string{"query"},
			}),
		fn("places.search",
			"Search points of interest near a location.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query":    stringProp("What to look for, e.g. 'museum'"),
					"location": stringProp("City or neighborhood"),
				},
				"required": []string{"query"},
			}),
		fn("directions.eta",
			"Estimate travel time between two places.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"origin":      stringProp("Starting point"),
					"destination": stringProp("End point"),
					"mode":        stringProp("Travel mode: driving, walking or transit"),
				},
				"required": []string{"origin", "destination"},
			}),
		fn("web.fetch",
			"Fetch and extract the readable content of a web page, e.g. a travel guide.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url": stringProp("The page URL"),
				},
				"required": []string{"url"},
			}),
	}
}

func fn(name, desc string, params map[string]any) llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        name,
			Description: desc,
			Parameters:  params,
		},
	}
}
