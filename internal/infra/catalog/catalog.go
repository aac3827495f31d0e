package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"millionaire-service/internal/domain"
)

// Catalog is the YAML seed file: the question pool and the known players.
type Catalog struct {
	Questions []domain.Question `yaml:"questions"`
	Players   []domain.Player   `yaml:"players"`
}

// Load reads and validates a catalog file.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalog and rejects invalid questions and duplicate ids.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}

	var errs []error
	seen := make(map[string]bool, len(c.Questions))
	for _, q := range c.Questions {
		if err := q.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[q.ID] {
			errs = append(errs, fmt.Errorf("%w: duplicate id %s", domain.ErrInvalidQuestion, q.ID))
		}
		seen[q.ID] = true
	}
	players := make(map[string]bool, len(c.Players))
	for _, p := range c.Players {
		if p.ID == "" || players[p.ID] {
			errs = append(errs, fmt.Errorf("catalog: bad or duplicate player id %q", p.ID))
		}
		players[p.ID] = true
	}
	if err := errors.Join(errs...); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// MissingLevels lists the levels that have no question at all.
func (c Catalog) MissingLevels() []int {
	have := make(map[int]bool)
	for _, q := range c.Questions {
		have[q.Level] = true
	}
	var missing []int
	for level := domain.MinLevel; level <= domain.MaxLevel; level++ {
		if !have[level] {
			missing = append(missing, level)
		}
	}
	return missing
}
