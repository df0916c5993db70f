package core

import (
	"sort"

	"orthoinfer/pkg/domain"
)

// Counts aggregates protein evidence under an entity or event.
type Counts struct {
	// Total is the number of distinct proteins reached.
	Total int
	// Inferrable is how many of them have at least one homolog.
	Inferrable int
	// Max is the largest homolog count seen for a single protein.
	Max int
}

// coverageThreshold is the minimum inferrable share, in percent, a gated
// complex or polymer must reach.
const coverageThreshold = 75

// passesGate reports whether the counts clear the admission threshold.
// Entities with no protein evidence pass vacuously.
func (c Counts) passesGate() bool {
	if c.Total == 0 {
		return true
	}
	if c.Inferrable == 0 {
		return false
	}
	return c.Inferrable*100/c.Total >= coverageThreshold
}

// followSpec maps a class (matched through the hierarchy) to the attributes
// traversed from its instances.
type followSpec map[domain.Class][]string

var (
	proteinFollow = followSpec{
		domain.ClassReactionlike:     {domain.AttrInput, domain.AttrOutput, domain.AttrCatalystActivity},
		domain.ClassCatalystActivity: {domain.AttrPhysicalEntity},
		domain.ClassComplex:          {domain.AttrHasComponent},
		domain.ClassPolymer:          {domain.AttrRepeatedUnit},
		domain.ClassEWAS:             {domain.AttrReferenceEntity},
	}
	proteinOut = []domain.Class{domain.ClassReferenceGeneProduct, domain.ClassEntitySet}

	setFollow = followSpec{
		domain.ClassDefinedSet:   {domain.AttrHasMember},
		domain.ClassCandidateSet: {domain.AttrHasMember},
		domain.ClassEWAS:         {domain.AttrReferenceEntity},
	}
	candidateFollow = followSpec{
		domain.ClassCandidateSet: {domain.AttrHasCandidate},
		domain.ClassEWAS:         {domain.AttrReferenceEntity},
	}
	constituentOut = []domain.Class{domain.ClassComplex, domain.ClassPolymer, domain.ClassReferenceSequence}
)

// follow walks the instance graph from start along the spec's attributes,
// collecting distinct instances whose class matches a terminal class.
// Terminals are not expanded further. A visited set guards against reference
// cycles, and results come back in ascending DB ID order.
func follow(start *domain.Instance, spec followSpec, terminals []domain.Class) []*domain.Instance {
	visited := map[int64]bool{}
	var out []*domain.Instance
	queue := []*domain.Instance{start}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if visited[node.ID] {
			continue
		}
		visited[node.ID] = true
		if node != start && isTerminal(node, terminals) {
			out = append(out, node)
			continue
		}
		for class, attrs := range spec {
			if !node.IsA(class) {
				continue
			}
			for _, attr := range attrs {
				queue = append(queue, node.Refs(attr)...)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func isTerminal(in *domain.Instance, terminals []domain.Class) bool {
	for _, t := range terminals {
		if in.IsA(t) {
			return true
		}
	}
	return false
}

// CountProteins tallies protein evidence under an entity or reaction: every
// distinct reference gene product reached through inputs, outputs, catalysts
// and structural containment, with entity sets folded in by maximum rather
// than sum.
func (r *Run) CountProteins(entity *domain.Instance) Counts {
	var c Counts
	for _, reached := range follow(entity, proteinFollow, proteinOut) {
		if reached.IsA(domain.ClassReferenceGeneProduct) {
			c.Total++
			n := len(r.maps.Homologs(reached.Str(domain.AttrIdentifier)))
			if n > 0 {
				c.Inferrable++
			}
			if n > c.Max {
				c.Max = n
			}
			continue
		}
		r.countSet(reached, &c)
	}
	return c
}

// countSet folds one entity set into the running counts. Each set
// contributes at most one slot: complex constituents compete by maximum,
// while a reference sequence takes the slot outright.
func (r *Run) countSet(set *domain.Instance, c *Counts) {
	constituents := follow(set, setFollow, constituentOut)
	if len(constituents) == 0 && set.IsA(domain.ClassCandidateSet) {
		total, inferrable := r.candidateCounts(set)
		c.Total += total
		c.Inferrable += inferrable
		return
	}
	slot, slotInferrable := 0, 0
	for _, con := range constituents {
		switch {
		case con.IsA(domain.ClassComplex) || con.IsA(domain.ClassPolymer):
			sub := r.CountProteins(con)
			if sub.Total > slot {
				slot = sub.Total
			}
			if sub.Inferrable > slotInferrable {
				slotInferrable = sub.Inferrable
			}
			if sub.Max > c.Max {
				c.Max = sub.Max
			}
		case con.IsA(domain.ClassReferenceSequence):
			// A reference sequence overwrites the slot outright, so
			// constituent order matters.
			slot = 1
			n := len(r.maps.Homologs(con.Str(domain.AttrIdentifier)))
			if n > 0 {
				slotInferrable = 1
			}
			if n > c.Max {
				c.Max = n
			}
		}
	}
	c.Total += slot
	c.Inferrable += slotInferrable
}

// candidateCounts tallies a candidate-only set. A candidate branch with
// protein evidence but nothing inferrable poisons the whole set: its total
// stands but the inferrable half is dropped.
func (r *Run) candidateCounts(set *domain.Instance) (total, inferrable int) {
	flagged := 0
	for _, cand := range follow(set, candidateFollow, constituentOut) {
		switch {
		case cand.IsA(domain.ClassComplex) || cand.IsA(domain.ClassPolymer):
			sub := r.CountProteins(cand)
			if sub.Total > 0 && sub.Inferrable == 0 {
				flagged++
			}
			// A complex candidate can raise totals but never seed them;
			// only a reference sequence establishes the counts.
			if total > 0 && sub.Total > total {
				total = sub.Total
			}
			if inferrable > 0 && sub.Inferrable > inferrable {
				inferrable = sub.Inferrable
			}
		case cand.IsA(domain.ClassReferenceSequence):
			total = 1
			if len(r.maps.Homologs(cand.Str(domain.AttrIdentifier))) > 0 {
				inferrable = 1
			}
			// The flag reads the running inferrable, so candidate order
			// decides whether an unmapped sequence poisons the set.
			if inferrable == 0 {
				flagged++
			}
		}
	}
	if flagged > 0 {
		return total, 0
	}
	return total, inferrable
}
