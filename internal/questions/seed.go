package questions

import (
	"fmt"
	"os"

	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed corpus.yaml
var defaultCorpus []byte

// DefaultCorpus returns the built-in seed questions covering a few common
// technical roles.
func DefaultCorpus() ([]Question, error) {
	return parseCorpus(defaultCorpus)
}

// LoadCorpus reads questions from a YAML file with the same layout as the
// built-in corpus.
func LoadCorpus(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file: %w", err)
	}
	return parseCorpus(data)
}

func parseCorpus(data []byte) ([]Question, error) {
	var qs []Question
	if err := yaml.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("parsing corpus: %w", err)
	}

	seen := make(map[string]struct{}, len(qs))
	for i := range qs {
		if err := qs[i].Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[qs[i].ID]; ok {
			return nil, fmt.Errorf("duplicate question id %q in corpus", qs[i].ID)
		}
		seen[qs[i].ID] = struct{}{}
	}

	return qs, nil
}
