package agent

import (
	"io/ioutil"
	"log"
	"path/filepath"
	"sort"
	"strings"
)

const defaultSystemPrompt = `You are TripSmith, a travel concierge. You help the user plan trips
through conversation, then turn the conversation into a concrete itinerary.

How to work:
- Gather destination, dates and the activities the user cares about before planning.
- Use the lookup tools (flight.search_offers, hotel.search, dining.search, places.search,
  directions.eta, web.fetch) to ground suggestions in real options.
- When you have enough detail, call itinerary.generate exactly once to create the plan.
  Include an estimated_price_usd on every step you can price.
- Use itinerary.update_step, itinerary.add_step and itinerary.remove_step to revise the
  plan when the user changes their mind.
- Only call itinerary.execute after the user explicitly confirms they want to book.
- Keep replies short and concrete. Summarize the itinerary with per-step prices and the
  estimated total when you present it.`

// PromptManager assembles the system prompt. When a prompts directory is
// configured its .md files override the built-in default, concatenated in
// a fixed order so persona always leads.
type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

func (pm *PromptManager) SystemPrompt() string {
	if pm.Directory == "" {
		return defaultSystemPrompt
	}
	files, err := ioutil.ReadDir(pm.Directory)
	if err != nil {
		return defaultSystemPrompt
	}

	order := map[string]int{
		"persona.md":   1,
		"itinerary.md": 2,
		"tools.md":     3,
		"style.md":     4,
	}

	sort.Slice(files, func(i, j int) bool {
		oi, okI := order[files[i].Name()]
		oj, okJ := order[files[j].Name()]
		if okI && okJ {
			return oi < oj
		}
		if okI {
			return true
		}
		if okJ {
			return false
		}
		return files[i].Name() < files[j].Name()
	})

	var contents []string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".md") {
			continue
		}
		path := filepath.Join(pm.Directory, f.Name())
		data, err := ioutil.ReadFile(path)
		if err != nil {
			log.Printf("Warning: Failed to read prompt file %s: %v", path, err)
			continue
		}
		contents = append(contents, string(data))
	}

	if len(contents) == 0 {
		return defaultSystemPrompt
	}
	return strings.Join(contents, "\n\n---\n\n")
}
