package core

import (
	"fmt"

	"orthoinfer/pkg/domain"
)

// InferEntity projects a physical entity onto the target species. In strict
// mode (override=false) an entity that cannot be inferred yields nil; with
// override it yields a ghost stand-in instead, so containers keep their
// shape. Strict results are cached per source; override results are not.
func (r *Run) InferEntity(source *domain.Instance, override bool) (*domain.Instance, error) {
	if !domain.HasSpeciesAttribute(source.Class) {
		return source, nil
	}
	if !override {
		if cached, ok := r.orthologous[source.ID]; ok {
			return cached, nil
		}
	}
	if !r.hasSpecies(source) {
		return source, nil
	}

	var inferred *domain.Instance
	var err error
	switch {
	case source.IsA(domain.ClassGEE):
		inferred, err = r.inferGenomeEncoded(source, override)
	case source.IsA(domain.ClassComplex) || source.IsA(domain.ClassPolymer):
		inferred, err = r.inferComplexPolymer(source, override)
	case source.IsA(domain.ClassEntitySet):
		if source.Ref(domain.AttrSpecies) != nil {
			inferred, err = r.inferEntitySet(source, override)
		} else {
			inferred = source
		}
	case source.IsA(domain.ClassSimpleEntity):
		// Small molecules cross species unchanged.
		inferred = source
	default:
		return nil, fmt.Errorf("entity %d: no inference rule for class %s", source.ID, source.Class)
	}
	if err != nil {
		return nil, err
	}
	if inferred == nil {
		return nil, nil
	}
	if !override {
		r.orthologous[source.ID] = inferred
	}
	return inferred, nil
}

// inferGenomeEncoded handles EWAS and bare genome-encoded entities. A bare
// genome-encoded entity has no sequence to map, so only a ghost can stand in
// for it.
func (r *Run) inferGenomeEncoded(source *domain.Instance, override bool) (*domain.Instance, error) {
	if source.IsA(domain.ClassEWAS) {
		inferred, err := r.InferEWAS(source)
		if err != nil {
			return nil, err
		}
		if inferred != nil {
			return inferred, nil
		}
	}
	if override {
		return r.mockEntity(source), nil
	}
	return nil, nil
}

// inferComplexPolymer projects a complex or polymer. Strict mode applies the
// coverage gate; past the gate every constituent is inferred with override so
// the result keeps the source's full composition.
func (r *Run) inferComplexPolymer(source *domain.Instance, override bool) (*domain.Instance, error) {
	if !override && !r.CountProteins(source).passesGate() {
		return nil, nil
	}
	inferred := r.newInferredFrom(source)
	copyNames(source, inferred)
	attr := domain.AttrHasComponent
	if source.IsA(domain.ClassPolymer) {
		attr = domain.AttrRepeatedUnit
	}
	for _, part := range source.Refs(attr) {
		infPart, err := r.InferEntity(part, true)
		if err != nil {
			return nil, err
		}
		inferred.Add(attr, infPart)
	}
	inferred.DisplayName = r.entityDisplayName(inferred)

	key := domain.StructuralKey(inferred)
	if cached, ok := r.complexCache[key]; ok {
		// A dedup hit still belongs to this source's provenance.
		r.linkEntityInference(source, cached)
		return cached, nil
	}
	inferred = r.checkForIdentical(inferred)
	r.complexCache[key] = inferred
	r.linkEntityInference(source, inferred)
	return inferred, nil
}

// inferEntitySet projects a defined, candidate or open set. Members and
// candidates are always inferred strictly; a set degenerates to its single
// surviving member, and a candidate set whose candidates all drop falls back
// to its members as a defined set.
func (r *Run) inferEntitySet(source *domain.Instance, override bool) (*domain.Instance, error) {
	members, err := r.inferDistinct(source.Refs(domain.AttrHasMember), nil)
	if err != nil {
		return nil, err
	}
	if !override {
		var c Counts
		r.countSet(source, &c)
		if c.Total > 0 && c.Inferrable == 0 {
			return nil, nil
		}
	}

	inferred := r.newInferredFrom(source)
	copyNames(source, inferred)

	switch {
	case source.IsA(domain.ClassCandidateSet):
		candidates, err := r.inferDistinct(source.Refs(domain.AttrHasCandidate), members)
		if err != nil {
			return nil, err
		}
		switch {
		case len(candidates) > 0:
			setRefs(inferred, domain.AttrHasMember, members)
			setRefs(inferred, domain.AttrHasCandidate, candidates)
		case len(members) == 1:
			return members[0], nil
		case len(members) > 1:
			// All candidates dropped: what remains is a defined set.
			defined := r.newInferredFrom(source)
			defined.Class = domain.ClassDefinedSet
			copyNames(source, defined)
			setRefs(defined, domain.AttrHasMember, members)
			inferred = defined
		default:
			if override {
				return r.mockEntity(source), nil
			}
			return nil, nil
		}
	default:
		// An OpenSet keeps whatever members survive, including none; the
		// DefinedSet size rules do not apply to it.
		switch {
		case source.IsA(domain.ClassOpenSet):
			setRefs(inferred, domain.AttrHasMember, members)
		case len(members) == 0:
			if override {
				return r.mockEntity(source), nil
			}
			return nil, nil
		case len(members) == 1:
			return members[0], nil
		default:
			setRefs(inferred, domain.AttrHasMember, members)
		}
	}

	inferred.DisplayName = r.entityDisplayName(inferred)
	inferred = r.checkForIdentical(inferred)
	r.linkEntityInference(source, inferred)
	return inferred, nil
}

// inferDistinct strictly infers each entity, dropping failures and
// display-name duplicates, including duplicates of the already-taken names.
func (r *Run) inferDistinct(sources []*domain.Instance, taken []*domain.Instance) ([]*domain.Instance, error) {
	seen := map[string]bool{}
	for _, t := range taken {
		seen[t.DisplayName] = true
	}
	var out []*domain.Instance
	for _, src := range sources {
		inferred, err := r.InferEntity(src, false)
		if err != nil {
			return nil, err
		}
		if inferred == nil || seen[inferred.DisplayName] {
			continue
		}
		seen[inferred.DisplayName] = true
		out = append(out, inferred)
	}
	return out, nil
}

func copyNames(source, inferred *domain.Instance) {
	names := source.Strs(domain.AttrName)
	vals := make([]any, len(names))
	for i, n := range names {
		vals[i] = n
	}
	if len(vals) > 0 {
		inferred.Set(domain.AttrName, vals...)
	}
}

func setRefs(in *domain.Instance, attr string, refs []*domain.Instance) {
	vals := make([]any, len(refs))
	for i, ref := range refs {
		vals[i] = ref
	}
	in.Set(attr, vals...)
}
