package core

import (
	"orthoinfer/pkg/domain"
)

// hasSpecies reports whether the entity or anything it contains carries a
// species assignment. Entities without one cross species unchanged.
func (r *Run) hasSpecies(entity *domain.Instance) bool {
	return r.hasSpeciesGuarded(entity, map[int64]bool{})
}

func (r *Run) hasSpeciesGuarded(entity *domain.Instance, visited map[int64]bool) bool {
	if visited[entity.ID] {
		return false
	}
	visited[entity.ID] = true
	if entity.Class == domain.ClassOtherEntity {
		return false
	}
	var attrs []string
	switch {
	case entity.IsA(domain.ClassCandidateSet):
		attrs = []string{domain.AttrHasMember, domain.AttrHasCandidate}
	case entity.IsA(domain.ClassEntitySet):
		attrs = []string{domain.AttrHasMember}
	case entity.IsA(domain.ClassComplex):
		attrs = []string{domain.AttrHasComponent}
	case entity.IsA(domain.ClassPolymer):
		attrs = []string{domain.AttrRepeatedUnit}
	default:
		return entity.Ref(domain.AttrSpecies) != nil
	}
	for _, attr := range attrs {
		for _, sub := range entity.Refs(attr) {
			if r.hasSpeciesGuarded(sub, visited) {
				return true
			}
		}
	}
	return entity.Ref(domain.AttrSpecies) != nil
}
