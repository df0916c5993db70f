package core

import (
	"orthoinfer/pkg/domain"
)

// Pathways whose reactions are never projected: pathogen-driven and
// aggregate-formation biology does not transfer across species.
var skipListPathwayIDs = []int64{
	162906,  // HIV Infection
	168255,  // Influenza Infection
	977225,  // Amyloid fiber formation
}

// diseasePathwayID is the top-level Disease pathway.
const diseasePathwayID = 1643685

// buildSkipList expands the skip-listed pathways to their reaction-like
// events once per run.
func (r *Run) buildSkipList() {
	for _, id := range skipListPathwayIDs {
		root, ok := r.store.Fetch(id)
		if !ok {
			continue
		}
		visited := map[int64]bool{}
		queue := []*domain.Instance{root}
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			if visited[node.ID] {
				continue
			}
			visited[node.ID] = true
			if node.IsA(domain.ClassReactionlike) {
				r.skipIDs[node.ID] = true
				continue
			}
			queue = append(queue, node.Refs(domain.AttrHasEvent)...)
		}
	}
}

// shouldSkip applies the eligibility checks to a reaction-like event and
// returns the first failing reason.
func (r *Run) shouldSkip(rle *domain.Instance) (string, bool) {
	switch {
	case r.skipIDs[rle.ID]:
		return "on skip list", true
	case r.onlyInDiseasePathway(rle):
		return "disease-only pathway", true
	case rle.Bool(domain.AttrIsChimeric):
		return "chimeric", true
	case rle.Get(domain.AttrRelatedSpecies) != nil:
		return "has related species", true
	case rle.Get(domain.AttrDisease) != nil:
		return "has disease", true
	case rle.Get(domain.AttrInferredFrom) != nil:
		return "manually inferred", true
	case r.multiSpecies(rle):
		return "multiple participant species", true
	}
	return "", false
}

// onlyInDiseasePathway reports whether every top-level pathway above the
// event is the Disease pathway.
func (r *Run) onlyInDiseasePathway(event *domain.Instance) bool {
	tops := map[int64]bool{}
	r.collectTopLevel(event, tops, map[int64]bool{})
	if len(tops) == 0 {
		return false
	}
	for id := range tops {
		if id != diseasePathwayID {
			return false
		}
	}
	return true
}

func (r *Run) collectTopLevel(event *domain.Instance, tops, visited map[int64]bool) {
	if visited[event.ID] {
		return
	}
	visited[event.ID] = true
	parents := r.store.Referrers(event.ID, domain.AttrHasEvent)
	if len(parents) == 0 {
		if event.IsA(domain.ClassPathway) {
			tops[event.ID] = true
		}
		return
	}
	for _, p := range parents {
		r.collectTopLevel(p, tops, visited)
	}
}

// multiSpecies reports whether the event's participants span more than one
// species, digging through set members, complex components and polymer
// repeat units.
func (r *Run) multiSpecies(rle *domain.Instance) bool {
	species := map[int64]bool{}
	visited := map[int64]bool{}
	var entities []*domain.Instance
	entities = append(entities, rle.Refs(domain.AttrInput)...)
	entities = append(entities, rle.Refs(domain.AttrOutput)...)
	for _, ca := range rle.Refs(domain.AttrCatalystActivity) {
		if pe := ca.Ref(domain.AttrPhysicalEntity); pe != nil {
			entities = append(entities, pe)
		}
	}
	for _, reg := range rle.Refs(domain.AttrRegulatedBy) {
		if regulator := reg.Ref(domain.AttrRegulator); regulator != nil && regulator.IsA(domain.ClassPhysicalEntity) {
			entities = append(entities, regulator)
		}
	}
	for _, e := range entities {
		r.collectSpecies(e, species, visited)
	}
	return len(species) > 1
}

func (r *Run) collectSpecies(entity *domain.Instance, species, visited map[int64]bool) {
	if visited[entity.ID] {
		return
	}
	visited[entity.ID] = true
	for _, sp := range entity.Refs(domain.AttrSpecies) {
		species[sp.ID] = true
	}
	for _, attr := range []string{domain.AttrHasMember, domain.AttrHasComponent, domain.AttrRepeatedUnit} {
		for _, sub := range entity.Refs(attr) {
			r.collectSpecies(sub, species, visited)
		}
	}
}
