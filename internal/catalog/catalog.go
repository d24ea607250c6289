package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed games.yaml
var gamesYAML []byte

// Game describes one quiz/simulation game's metadata. The question content
// itself lives with the frontend; the API only needs enough to list and
// validate game identifiers.
type Game struct {
	ID       string `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title"`
	Category string `yaml:"category" json:"category"`
	AgeBand  string `yaml:"ageBand" json:"ageBand"`
	MaxScore int    `yaml:"maxScore" json:"maxScore"`
}

// Catalog is the loaded game catalog with by-ID lookup.
type Catalog struct {
	games []Game
	byID  map[string]Game
}

// Load parses the embedded game catalog.
func Load() (*Catalog, error) {
	var doc struct {
		Games []Game `yaml:"games"`
	}

	if err := yaml.Unmarshal(gamesYAML, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse game catalog: %w", err)
	}

	byID := make(map[string]Game, len(doc.Games))
	for _, g := range doc.Games {
		if g.ID == "" {
			return nil, fmt.Errorf("game catalog entry missing id (title %q)", g.Title)
		}
		if _, exists := byID[g.ID]; exists {
			return nil, fmt.Errorf("duplicate game id %q in catalog", g.ID)
		}
		byID[g.ID] = g
	}

	return &Catalog{games: doc.Games, byID: byID}, nil
}

// Get returns the game with the given ID.
func (c *Catalog) Get(id string) (Game, bool) {
	g, ok := c.byID[id]
	return g, ok
}

// List returns games matching the category and age band filters. Empty
// filter values match everything.
func (c *Catalog) List(category, ageBand string) []Game {
	var result []Game
	for _, g := range c.games {
		if category != "" && g.Category != category {
			continue
		}
		if ageBand != "" && g.AgeBand != ageBand {
			continue
		}
		result = append(result, g)
	}
	return result
}
