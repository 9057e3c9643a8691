// Package topics holds the curated topic definitions and the derived topic index.
package topics

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed topics.yaml
var embedded []byte

// Definition is a named, hand-authored keyword cluster.
type Definition struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type definitionFile struct {
	Topics []Definition `yaml:"topics"`
}

// Definitions returns the built-in topic definitions.
func Definitions() ([]Definition, error) {
	return parseDefinitions(embedded)
}

// LoadDefinitions reads topic definitions from a YAML file. An empty path
// returns the built-in set.
func LoadDefinitions(path string) ([]Definition, error) {
	if strings.TrimSpace(path) == "" {
		return Definitions()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("topics: read definitions: %w", err)
	}
	return parseDefinitions(b)
}

func parseDefinitions(b []byte) ([]Definition, error) {
	var f definitionFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("topics: parse definitions: %w", err)
	}
	if len(f.Topics) == 0 {
		return nil, errors.New("topics: no topics defined")
	}
	seen := make(map[string]struct{}, len(f.Topics))
	for _, d := range f.Topics {
		if strings.TrimSpace(d.Name) == "" {
			return nil, errors.New("topics: topic without a name")
		}
		if _, dup := seen[d.Name]; dup {
			return nil, fmt.Errorf("topics: duplicate topic %q", d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	return f.Topics, nil
}
