package core

import (
	"testing"

	"orthoinfer/internal/homology"
	"orthoinfer/internal/infra/persistence/memory"
	"orthoinfer/pkg/domain"
)

// testMappings covers the cases the engine branches on: a single homolog, a
// paralog pair, and a protein with no mapping at all.
func testMappings() *homology.Mappings {
	return homology.NewStatic(
		map[string][]string{
			"P-ONE":    {"ENSEMBL:Q-ONE"},
			"P-TWO":    {"ENSEMBL:Q-TWO"},
			"P-PARA":   {"ENSEMBL:Q-A", "ENSEMBL:Q-B"},
			"P-NOGENE": {"ENSEMBL:Q-NOGENE"},
		},
		map[string][]string{
			"Q-ONE": {"G-ONE"},
			"Q-TWO": {"G-TWO"},
			"Q-A":   {"G-A"},
			"Q-B":   {"G-B"},
		},
		map[string]string{"Q-ONE": "GeneOne"},
	)
}

func newTestRun(t *testing.T, store domain.Store) *Run {
	t.Helper()
	r, err := NewRun(store, testMappings(), Config{
		SourceCode: "hsap",
		SourceName: "Homo sapiens",
		Target:     homology.Species{Code: "mmus", Name: "Mus musculus", Abbreviation: "MMU"},
		Release:    "93",
	}, nil, nil)
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	return r
}

func newHuman(s domain.Store) *domain.Instance {
	sp := domain.New(domain.ClassSpecies)
	sp.Set(domain.AttrName, "Homo sapiens")
	sp.DisplayName = "Homo sapiens"
	return s.Store(sp)
}

// newEWAS builds a human protein entity whose reference gene product carries
// the given identifier.
func newEWAS(s domain.Store, human *domain.Instance, identifier, name string) *domain.Instance {
	rgp := domain.New(domain.ClassReferenceGeneProduct)
	rgp.Set(domain.AttrIdentifier, identifier)
	rgp.Set(domain.AttrSpecies, human)
	rgp.DisplayName = "UniProt:" + identifier
	s.Store(rgp)

	ewas := domain.New(domain.ClassEWAS)
	ewas.Set(domain.AttrReferenceEntity, rgp)
	ewas.Set(domain.AttrName, name)
	ewas.Set(domain.AttrSpecies, human)
	ewas.DisplayName = name
	return s.Store(ewas)
}

func newSimple(s domain.Store, name string) *domain.Instance {
	se := domain.New(domain.ClassSimpleEntity)
	se.Set(domain.AttrName, name)
	se.DisplayName = name
	return s.Store(se)
}

func newComplexOf(s domain.Store, human *domain.Instance, name string, parts ...*domain.Instance) *domain.Instance {
	cx := domain.New(domain.ClassComplex)
	cx.Set(domain.AttrName, name)
	cx.Set(domain.AttrSpecies, human)
	for _, p := range parts {
		cx.Add(domain.AttrHasComponent, p)
	}
	cx.DisplayName = name
	return s.Store(cx)
}

func newStableID(s domain.Store, identifier string) *domain.Instance {
	st := domain.New(domain.ClassStableIdentifier)
	st.Set(domain.AttrIdentifier, identifier)
	st.Set(domain.AttrIdentifierVersion, "1")
	st.DisplayName = identifier + ".1"
	return s.Store(st)
}

// newReaction builds a human reaction with a stable identifier and the given
// inputs and outputs.
func newReaction(s domain.Store, human *domain.Instance, name, stableID string, inputs, outputs []*domain.Instance) *domain.Instance {
	rle := domain.New(domain.ClassReaction)
	rle.Set(domain.AttrName, name)
	rle.Set(domain.AttrSpecies, human)
	if stableID != "" {
		rle.Set(domain.AttrStableIdentifier, newStableID(s, stableID))
	}
	for _, in := range inputs {
		rle.Add(domain.AttrInput, in)
	}
	for _, out := range outputs {
		rle.Add(domain.AttrOutput, out)
	}
	rle.DisplayName = name
	return s.Store(rle)
}

func newStore() *memory.Store { return memory.NewStore() }

func hasRef(in *domain.Instance, attr string, want *domain.Instance) bool {
	for _, ref := range in.Refs(attr) {
		if ref == want {
			return true
		}
	}
	return false
}
