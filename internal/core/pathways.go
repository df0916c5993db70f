package core

import (
	"sort"

	"orthoinfer/pkg/domain"
)

// BuildPathways raises the pathway hierarchy above the inferred reactions:
// ancestor pathways get inferred shells, hasEvent is populated with inferred
// counterparts, preceding-event links are mapped over, and touched source
// events are stamped with the run's instance edit.
func (r *Run) BuildPathways() error {
	queue := r.sortedInferredSourceIDs()
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, parent := range r.store.Referrers(id, domain.AttrHasEvent) {
			if !parent.IsA(domain.ClassPathway) {
				continue
			}
			if _, done := r.inferredEvents[parent.ID]; done {
				continue
			}
			if r.onlyInDiseasePathway(parent) {
				continue
			}
			if existing, adopted, manual := r.previouslyInferred(parent); adopted {
				r.inferredEvents[parent.ID] = existing
				queue = append(queue, parent.ID)
				continue
			} else if manual {
				continue
			}
			inferred := r.newInferredEvent(parent)
			if err := r.assignStableIdentifier(inferred, parent); err != nil {
				return err
			}
			inferred = r.store.Store(inferred)
			r.linkEventInference(parent, inferred)
			r.inferredEvents[parent.ID] = inferred
			queue = append(queue, parent.ID)
		}
	}

	r.populateHasEvent()
	r.mapPrecedingEvents()
	r.stampSources()
	return nil
}

// populateHasEvent fills each inferred pathway with the inferred
// counterparts of its source's events. A counterpart that is not itself a
// pathway where the source child is one came from a manual projection and is
// left out.
func (r *Run) populateHasEvent() {
	for _, id := range r.sortedInferredSourceIDs() {
		source, ok := r.store.Fetch(id)
		if !ok || !source.IsA(domain.ClassPathway) {
			continue
		}
		inferred := r.inferredEvents[id]
		for _, child := range source.Refs(domain.AttrHasEvent) {
			infChild, done := r.inferredEvents[child.ID]
			if !done {
				continue
			}
			if child.IsA(domain.ClassPathway) && !infChild.IsA(domain.ClassPathway) {
				continue
			}
			inferred.AddIfAbsent(domain.AttrHasEvent, infChild)
		}
		r.store.Update(inferred)
	}
}

// mapPrecedingEvents carries precedingEvent links over to the inferred
// events wherever both ends were inferred.
func (r *Run) mapPrecedingEvents() {
	for _, id := range r.sortedInferredSourceIDs() {
		source, ok := r.store.Fetch(id)
		if !ok {
			continue
		}
		inferred := r.inferredEvents[id]
		changed := false
		for _, pre := range source.Refs(domain.AttrPrecedingEvent) {
			if infPre, done := r.inferredEvents[pre.ID]; done {
				inferred.AddIfAbsent(domain.AttrPrecedingEvent, infPre)
				changed = true
			}
		}
		if changed {
			r.store.Update(inferred)
		}
	}
}

// stampSources appends the run's instance edit to every source event that
// gained a projection.
func (r *Run) stampSources() {
	for _, id := range r.sortedInferredSourceIDs() {
		if source, ok := r.store.Fetch(id); ok {
			source.AddIfAbsent(domain.AttrModified, r.instanceEdit)
			r.store.Update(source)
		}
	}
}

func (r *Run) sortedInferredSourceIDs() []int64 {
	ids := make([]int64, 0, len(r.inferredEvents))
	for id := range r.inferredEvents {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
