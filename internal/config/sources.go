package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/deusflow/newsdesk/internal/category"
	"github.com/deusflow/newsdesk/internal/source"
)

// SourcesFile is the YAML structure of the sources file:
//
//	sources:
//	  - name: BBC World
//	    kind: rss
//	    url: https://feeds.bbci.co.uk/news/world/rss.xml
//	categories:
//	  - name: economy
//	    keywords: [market, oil]
type SourcesFile struct {
	Sources    []source.Source `yaml:"sources"`
	Categories []category.Bag  `yaml:"categories"`
}

// LoadSources reads and validates the sources file.
func LoadSources(path string) (*SourcesFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sf SourcesFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := sf.normalize(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sf, nil
}

func (sf *SourcesFile) normalize() error {
	if len(sf.Sources) == 0 {
		return fmt.Errorf("no sources configured")
	}
	names := make(map[string]bool, len(sf.Sources))
	for i := range sf.Sources {
		if err := sf.Sources[i].Normalize(); err != nil {
			return err
		}
		key := strings.ToLower(sf.Sources[i].Name)
		if names[key] {
			return fmt.Errorf("duplicate source name %q", sf.Sources[i].Name)
		}
		names[key] = true
	}
	for _, b := range sf.Categories {
		if strings.TrimSpace(b.Name) == "" || len(b.Keywords) == 0 {
			return fmt.Errorf("category entries need a name and keywords")
		}
	}
	return nil
}
