// Package backends holds the in-process tool backends. The mock backends
// return deterministic, valid-shaped data with no network and no
// randomness, so the whole engine can run end-to-end offline; the shapes
// match what the live adapters return.
package backends

import (
	"fmt"

	"github.com/tripsmith/tripsmith/internal/toolrouter"
)

// mockResponse wraps data in the standard mock envelope.
func mockResponse(data map[string]any) map[string]any {
	out := map[string]any{"mock": true}
	for k, v := range data {
		out[k] = v
	}
	return out
}

func unknownMethod(prefix, method string) error {
	return fmt.Errorf("unknown method: %s.%s", prefix, method)
}

// MockRegistry registers a deterministic backend for every known prefix.
func MockRegistry() toolrouter.Registry {
	return toolrouter.Registry{
		"flight":     &FlightBackend{},
		"hotel":      &HotelBackend{},
		"dining":     &DiningBackend{},
		"places":     &PlacesBackend{},
		"directions": &DirectionsBackend{},
		"gcal":       &CalendarBackend{},
		"wallet":     &WalletBackend{},
		"web":        NewWebBackend(true),
	}
}

// LocalRegistry registers the in-process adapters. The leaf travel services
// are swappable; until live adapters are plugged in, the mock modules stand
// in for them, while web fetches for real.
func LocalRegistry() toolrouter.Registry {
	r := MockRegistry()
	r["web"] = NewWebBackend(false)
	return r
}
