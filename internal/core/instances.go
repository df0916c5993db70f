package core

import (
	"orthoinfer/pkg/domain"
)

// newInferred returns a fresh instance of the class stamped with the run's
// instance edit. ReferenceIsoform narrows to ReferenceGeneProduct: isoform
// identity does not survive cross-species projection.
func (r *Run) newInferred(class domain.Class) *domain.Instance {
	if class == domain.ClassReferenceIsoform {
		class = domain.ClassReferenceGeneProduct
	}
	in := domain.New(class)
	in.Add(domain.AttrCreated, r.instanceEdit)
	return in
}

// newInferredFrom copies the projection-invariant shell of a source entity:
// class, compartments (converted to Compartment where needed), and the
// target species when the source carried one.
func (r *Run) newInferredFrom(source *domain.Instance) *domain.Instance {
	in := r.newInferred(source.Class)
	for _, c := range source.Refs(domain.AttrCompartment) {
		in.Add(domain.AttrCompartment, r.asCompartment(c))
	}
	if source.Ref(domain.AttrSpecies) != nil {
		in.Set(domain.AttrSpecies, r.species)
	}
	return in
}

// asCompartment converts a GO cellular component to a Compartment instance,
// reusing an identical one when the store has it.
func (r *Run) asCompartment(c *domain.Instance) *domain.Instance {
	if c.IsA(domain.ClassCompartment) {
		return c
	}
	comp := domain.New(domain.ClassCompartment)
	if name := c.Str(domain.AttrName); name != "" {
		comp.Set(domain.AttrName, name)
	}
	if acc := c.Str(domain.AttrIdentifier); acc != "" {
		comp.Set(domain.AttrIdentifier, acc)
	}
	comp.DisplayName = c.DisplayName
	return r.checkForIdentical(comp)
}

// mockEntity returns the ghost stand-in for a source entity that cannot be
// inferred but must still occupy its slot in a gated complex.
func (r *Run) mockEntity(source *domain.Instance) *domain.Instance {
	if m, ok := r.mocks[source.ID]; ok {
		return m
	}
	name := "Ghost homologue of " + sourceName(source)
	mock := r.newInferred(domain.ClassGEE)
	mock.Set(domain.AttrName, name)
	for _, c := range source.Refs(domain.AttrCompartment) {
		mock.Add(domain.AttrCompartment, r.asCompartment(c))
	}
	mock.Set(domain.AttrSpecies, r.species)
	mock.Set(domain.AttrInferredFrom, source)
	mock.DisplayName = r.entityDisplayName(mock)
	mock = r.checkForIdentical(mock)
	source.AddIfAbsent(domain.AttrInferredTo, mock)
	r.store.Update(source)
	r.mocks[source.ID] = mock
	return mock
}

// checkForIdentical commits the instance unless the store already holds a
// structurally identical one, in which case the stored instance wins.
func (r *Run) checkForIdentical(in *domain.Instance) *domain.Instance {
	if matches := r.store.StructurallyIdentical(in); len(matches) > 0 {
		return matches[0]
	}
	return r.store.Store(in)
}

// linkEntityInference records bidirectional provenance between a source
// entity and its inferred counterpart.
func (r *Run) linkEntityInference(source, inferred *domain.Instance) {
	inferred.AddIfAbsent(domain.AttrInferredFrom, source)
	r.store.Update(inferred)
	source.AddIfAbsent(domain.AttrInferredTo, inferred)
	r.store.Update(source)
}

// linkEventInference records provenance between a source event and its
// projection: inferredFrom and orthologousEvent on the projection,
// orthologousEvent on the source.
func (r *Run) linkEventInference(source, inferred *domain.Instance) {
	inferred.AddIfAbsent(domain.AttrInferredFrom, source)
	inferred.AddIfAbsent(domain.AttrOrthologousEvent, source)
	r.store.Update(inferred)
	source.AddIfAbsent(domain.AttrOrthologousEvent, inferred)
	r.store.Update(source)
}

// entityDisplayName renders "name [compartment]" the way curated entities
// are displayed.
func (r *Run) entityDisplayName(in *domain.Instance) string {
	name := in.Str(domain.AttrName)
	if name == "" {
		name = in.DisplayName
	}
	if comp := in.Ref(domain.AttrCompartment); comp != nil {
		label := comp.DisplayName
		if label == "" {
			label = comp.Str(domain.AttrName)
		}
		if label != "" {
			return name + " [" + label + "]"
		}
	}
	return name
}

func sourceName(in *domain.Instance) string {
	if in.DisplayName != "" {
		return in.DisplayName
	}
	return in.Str(domain.AttrName)
}
