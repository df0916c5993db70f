package core

import (
	"fmt"
	"strings"

	"orthoinfer/pkg/domain"
)

// assignStableIdentifier derives the inferred event's stable identifier from
// the source's, swapping the source species segment for the target's
// abbreviation. Paralogous reuse of the same identifier gets a "-<n>"
// suffix. A source event without a stable identifier is a data error that
// ends the run.
func (r *Run) assignStableIdentifier(inferred, source *domain.Instance) error {
	if inferred.Ref(domain.AttrStableIdentifier) != nil {
		return nil
	}
	src := source.Ref(domain.AttrStableIdentifier)
	if src == nil {
		return fmt.Errorf("event %d has no stable identifier", source.ID)
	}
	id := strings.Replace(src.Str(domain.AttrIdentifier), "HSA", r.cfg.Target.Abbreviation, 1)
	r.paralogCounts[id]++
	if n := r.paralogCounts[id]; n > 1 {
		id = fmt.Sprintf("%s-%d", id, n)
	}

	var stable *domain.Instance
	if existing := r.store.FetchByAttribute(domain.ClassStableIdentifier, domain.AttrIdentifier, id); len(existing) > 0 {
		stable = existing[0]
	} else {
		stable = domain.New(domain.ClassStableIdentifier)
		stable.Set(domain.AttrIdentifier, id)
		stable.Set(domain.AttrIdentifierVersion, "1")
		stable.DisplayName = id + ".1"
		stable = r.store.Store(stable)
	}
	inferred.Set(domain.AttrStableIdentifier, stable)
	return nil
}
