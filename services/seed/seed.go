// Package seed holds the discovery corpus every fresh process starts with.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Siilah/models"
)

//go:embed corpus.yaml
var corpusYAML []byte

// Load parses the embedded corpus.
func Load() (models.DiscoveryCorpus, error) {
	return Parse(corpusYAML)
}

func Parse(data []byte) (models.DiscoveryCorpus, error) {
	var corpus models.DiscoveryCorpus
	if err := yaml.Unmarshal(data, &corpus); err != nil {
		return models.DiscoveryCorpus{}, fmt.Errorf("failed to parse seed corpus: %w", err)
	}
	for i, person := range corpus.People {
		if person.User_ID == "" || person.Name == "" {
			return models.DiscoveryCorpus{}, fmt.Errorf("seed candidate %d is missing user_id or name", i)
		}
	}
	return corpus, nil
}
