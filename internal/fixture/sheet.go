package fixture

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/five82/ladder/internal/sheet"
)

//go:embed sheets/default.yaml
var defaultSheet []byte

// Seed is the YAML document a fixture is loaded from.
type Seed struct {
	Topics   []sheet.Topic `yaml:"topics"`
	Progress []SeedRecord  `yaml:"progress"`
}

// SeedRecord is a starting progress entry.
type SeedRecord struct {
	ProblemID string `yaml:"problemId"`
	Completed bool   `yaml:"completed"`
}

// DefaultSeed returns the embedded sample sheet.
func DefaultSeed() (Seed, error) {
	return ParseSeed(defaultSheet)
}

// LoadSeed reads a seed file. An empty path yields the default sheet.
func LoadSeed(path string) (Seed, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultSeed()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read sheet %s: %w", path, err)
	}
	seed, err := ParseSeed(data)
	if err != nil {
		return Seed{}, fmt.Errorf("%s: %w", path, err)
	}
	return seed, nil
}

// ParseSeed decodes and validates a seed document.
func ParseSeed(data []byte) (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse sheet: %w", err)
	}
	if err := seed.validate(); err != nil {
		return Seed{}, err
	}
	return seed, nil
}

// validate requires ids everywhere, unique topic ids, problem ids unique
// across the whole sheet and seed progress that refers to known problems.
func (s Seed) validate() error {
	topics := make(map[string]struct{}, len(s.Topics))
	problems := make(map[string]string)

	for i, topic := range s.Topics {
		if strings.TrimSpace(topic.ID) == "" {
			return fmt.Errorf("topic %d: id is required", i)
		}
		if _, dup := topics[topic.ID]; dup {
			return fmt.Errorf("topic %q: duplicate id", topic.ID)
		}
		topics[topic.ID] = struct{}{}

		for j, p := range topic.Problems {
			if strings.TrimSpace(p.ID) == "" {
				return fmt.Errorf("topic %q problem %d: id is required", topic.ID, j)
			}
			if owner, dup := problems[p.ID]; dup {
				return fmt.Errorf("problem %q: duplicate id (topics %q and %q)", p.ID, owner, topic.ID)
			}
			problems[p.ID] = topic.ID
		}
	}

	for _, rec := range s.Progress {
		if _, ok := problems[rec.ProblemID]; !ok {
			return fmt.Errorf("progress: unknown problem %q", rec.ProblemID)
		}
	}
	return nil
}
