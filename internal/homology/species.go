package homology

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Species describes one projection target.
type Species struct {
	// Code is the four-letter species code used in mapping file names,
	// e.g. "mmus".
	Code string `yaml:"-"`
	// Name is the binomial species name, e.g. "Mus musculus".
	Name string `yaml:"name"`
	// Abbreviation replaces the source segment of stable identifiers,
	// e.g. "MMU".
	Abbreviation string `yaml:"abbreviation"`
	// AltGeneDB names an alternate gene reference database for species
	// whose gene identifiers are not Ensembl-native.
	AltGeneDB string `yaml:"alt_gene_db,omitempty"`
}

// SpeciesConfig is the parsed species configuration file.
type SpeciesConfig struct {
	// Source is the projection source species code, e.g. "hsap".
	Source string `yaml:"source"`
	// SourceName is the source's binomial name.
	SourceName string `yaml:"source_name"`
	// Species maps target species codes to their metadata.
	Species map[string]Species `yaml:"species"`
}

// LoadSpeciesConfig reads and validates the species configuration file.
func LoadSpeciesConfig(path string) (*SpeciesConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read species config: %w", err)
	}
	var cfg SpeciesConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse species config: %w", err)
	}
	if cfg.Source == "" {
		return nil, fmt.Errorf("species config: missing source")
	}
	for code, sp := range cfg.Species {
		if sp.Name == "" || sp.Abbreviation == "" {
			return nil, fmt.Errorf("species config: %s needs name and abbreviation", code)
		}
		sp.Code = code
		cfg.Species[code] = sp
	}
	return &cfg, nil
}

// Target returns the species entry for code.
func (c *SpeciesConfig) Target(code string) (Species, error) {
	sp, ok := c.Species[code]
	if !ok {
		return Species{}, fmt.Errorf("species config: unknown target %q", code)
	}
	return sp, nil
}
