// Package homology loads the precomputed orthopair mapping tables that drive
// cross-species projection.
package homology

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Mappings holds the homology tables for one source/target species pair.
type Mappings struct {
	// homologs maps a source protein identifier to its target homolog
	// tokens, each of the form "SOURCEDB:ID".
	homologs map[string][]string
	// genes maps a target protein identifier to its gene identifiers.
	genes map[string][]string
	// geneNames maps a target protein identifier to a display gene name.
	geneNames map[string]string

	// Skipped counts malformed lines dropped during the load.
	Skipped int
}

// NewStatic builds a mapping set from literal tables; used by tests and
// callers that source mappings elsewhere.
func NewStatic(homologs, genes map[string][]string, geneNames map[string]string) *Mappings {
	m := &Mappings{
		homologs:  map[string][]string{},
		genes:     map[string][]string{},
		geneNames: map[string]string{},
	}
	for k, v := range homologs {
		m.homologs[k] = append([]string(nil), v...)
	}
	for k, v := range genes {
		m.genes[k] = append([]string(nil), v...)
	}
	for k, v := range geneNames {
		m.geneNames[k] = v
	}
	return m
}

// Load reads the mapping files for the given species pair from dir. The gene
// name table is optional; the other two are required.
func Load(dir, source, target string) (*Mappings, error) {
	m := &Mappings{
		homologs:  map[string][]string{},
		genes:     map[string][]string{},
		geneNames: map[string]string{},
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s_mapping.tsv", source, target))
	if err := m.eachLine(path, func(key string, tokens []string) {
		m.homologs[key] = tokens
	}); err != nil {
		return nil, fmt.Errorf("load homolog mapping: %w", err)
	}

	// The gene to protein table is inverted at load: lookups run from the
	// protein side. Protein tokens may carry a "DB:" prefix.
	path = filepath.Join(dir, fmt.Sprintf("%s_gene_protein_mapping.tsv", target))
	if err := m.eachLine(path, func(gene string, proteins []string) {
		for _, p := range proteins {
			if i := strings.Index(p, ":"); i >= 0 {
				p = p[i+1:]
			}
			m.genes[p] = append(m.genes[p], gene)
		}
	}); err != nil {
		return nil, fmt.Errorf("load gene protein mapping: %w", err)
	}

	path = filepath.Join(dir, fmt.Sprintf("%s_gene_name_mapping.tsv", target))
	if err := m.eachLine(path, func(protein string, names []string) {
		if len(names) > 0 {
			m.geneNames[protein] = names[0]
		}
	}); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load gene name mapping: %w", err)
	}

	return m, nil
}

// Homologs returns the homolog tokens for a source protein identifier.
func (m *Mappings) Homologs(proteinID string) []string { return m.homologs[proteinID] }

// HasGeneMapping reports whether the target protein has at least one gene.
func (m *Mappings) HasGeneMapping(proteinID string) bool { return len(m.genes[proteinID]) > 0 }

// GeneIDs returns the gene identifiers for a target protein.
func (m *Mappings) GeneIDs(proteinID string) []string { return m.genes[proteinID] }

// GeneName returns the display gene name for a target protein, or "".
func (m *Mappings) GeneName(proteinID string) string { return m.geneNames[proteinID] }

// eachLine parses a two-column TSV file whose second column holds
// whitespace-separated tokens. Lines without exactly two columns are counted
// and skipped.
func (m *Mappings) eachLine(path string, fn func(key string, tokens []string)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) != 2 || cols[0] == "" {
			m.Skipped++
			continue
		}
		fn(cols[0], strings.Fields(cols[1]))
	}
	return sc.Err()
}
