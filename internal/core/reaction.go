package core

import (
	"fmt"
	"strings"
	"time"

	"orthoinfer/pkg/domain"
)

// OutcomeKind classifies what happened to one reaction.
type OutcomeKind int

const (
	// OutcomeInferred means the reaction was projected successfully.
	OutcomeInferred OutcomeKind = iota
	// OutcomeNotEligible means a skip check or the protein-evidence test
	// excluded the reaction before it counted as eligible.
	OutcomeNotEligible
	// OutcomeAbandoned means the reaction counted as eligible but a
	// required participant could not be inferred.
	OutcomeAbandoned
	// OutcomeAlreadyInferred means a previous run's projection was
	// adopted.
	OutcomeAlreadyInferred
)

// Outcome is the closed result of projecting one reaction. Errors are
// reserved for malformed data and run-fatal conditions.
type Outcome struct {
	Kind     OutcomeKind
	Reason   string
	Inferred *domain.Instance
}

// InferReaction runs the per-reaction state machine: skip checks, the
// protein-evidence test, shell creation, participant inference, catalysts
// and regulations, then storage with provenance.
func (r *Run) InferReaction(source *domain.Instance) (Outcome, error) {
	if existing, adopted, manual := r.previouslyInferred(source); adopted {
		r.inferredEvents[source.ID] = existing
		return Outcome{Kind: OutcomeAlreadyInferred, Inferred: existing}, nil
	} else if manual {
		return Outcome{Kind: OutcomeNotEligible, Reason: "manually inferred counterpart exists"}, nil
	}
	if reason, skip := r.shouldSkip(source); skip {
		return Outcome{Kind: OutcomeNotEligible, Reason: reason}, nil
	}
	if _, done := r.inferredEvents[source.ID]; done {
		return Outcome{Kind: OutcomeAlreadyInferred, Inferred: r.inferredEvents[source.ID]}, nil
	}
	if r.CountProteins(source).Total == 0 {
		return Outcome{Kind: OutcomeNotEligible, Reason: "no protein participants"}, nil
	}

	inferred := r.newInferredEvent(source)
	if err := r.assignStableIdentifier(inferred, source); err != nil {
		return Outcome{}, err
	}
	r.recordEligible(source)

	// From here on, failure abandons the reaction: it stays on the
	// eligible ledger but never reaches the inferred one.
	if reason, ok, err := r.inferParticipants(source, inferred); err != nil {
		return Outcome{}, err
	} else if !ok {
		return Outcome{Kind: OutcomeAbandoned, Reason: reason}, nil
	}
	if reason, ok, err := r.inferCatalysts(source, inferred); err != nil {
		return Outcome{}, err
	} else if !ok {
		return Outcome{Kind: OutcomeAbandoned, Reason: reason}, nil
	}
	regulations, reason, ok, err := r.inferRegulations(source)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{Kind: OutcomeAbandoned, Reason: reason}, nil
	}

	inferred = r.store.Store(inferred)
	r.linkEventInference(source, inferred)
	r.inferredEvents[source.ID] = inferred
	for _, reg := range regulations {
		reg = r.checkForIdentical(reg)
		inferred.AddIfAbsent(domain.AttrRegulatedBy, reg)
	}
	r.store.Update(inferred)
	r.recordInferred(source)
	return Outcome{Kind: OutcomeInferred, Inferred: inferred}, nil
}

// newInferredEvent builds the shell of an inferred event: names, summation,
// evidence type, GO process and release date, without participants.
func (r *Run) newInferredEvent(source *domain.Instance) *domain.Instance {
	inferred := r.newInferred(source.Class)
	copyNames(source, inferred)
	if gbp := source.Ref(domain.AttrGoBiologicalProcess); gbp != nil {
		inferred.Set(domain.AttrGoBiologicalProcess, gbp)
	}
	inferred.Set(domain.AttrSummation, r.summation)
	inferred.Set(domain.AttrEvidenceType, r.evidenceType)
	inferred.Set(domain.AttrSpecies, r.species)
	inferred.Set(domain.AttrReleaseDate, time.Now().UTC().Format("2006-01-02"))
	inferred.DisplayName = sourceName(source)
	return inferred
}

// inferParticipants strictly infers inputs then outputs onto the shell.
func (r *Run) inferParticipants(source, inferred *domain.Instance) (string, bool, error) {
	for _, attr := range []string{domain.AttrInput, domain.AttrOutput} {
		for _, pe := range source.Refs(attr) {
			inf, err := r.InferEntity(pe, false)
			if err != nil {
				return "", false, err
			}
			if inf == nil {
				return fmt.Sprintf("%s %d not inferrable", attr, pe.ID), false, nil
			}
			inferred.Add(attr, inf)
		}
	}
	return "", true, nil
}

// inferCatalysts projects each catalyst activity. The catalyst's physical
// entity is required; active units that fail are dropped.
func (r *Run) inferCatalysts(source, inferred *domain.Instance) (string, bool, error) {
	for _, ca := range source.Refs(domain.AttrCatalystActivity) {
		infCA := r.newInferred(domain.ClassCatalystActivity)
		if activity := ca.Ref(domain.AttrActivity); activity != nil {
			infCA.Set(domain.AttrActivity, activity)
		}
		if pe := ca.Ref(domain.AttrPhysicalEntity); pe != nil {
			infPE, err := r.InferEntity(pe, false)
			if err != nil {
				return "", false, err
			}
			if infPE == nil {
				return fmt.Sprintf("catalyst entity %d not inferrable", pe.ID), false, nil
			}
			infCA.Set(domain.AttrPhysicalEntity, infPE)
		}
		for _, au := range ca.Refs(domain.AttrActiveUnit) {
			infAU, err := r.InferEntity(au, false)
			if err != nil {
				return "", false, err
			}
			if infAU != nil {
				infCA.Add(domain.AttrActiveUnit, infAU)
			}
		}
		infCA.DisplayName = ca.DisplayName
		key := domain.StructuralKey(infCA)
		if cached, ok := r.catalystCache[key]; ok {
			infCA = cached
		} else {
			infCA = r.checkForIdentical(infCA)
			r.catalystCache[key] = infCA
		}
		inferred.Add(domain.AttrCatalystActivity, infCA)
	}
	return "", true, nil
}

// inferRegulations projects the reaction's regulations. A regulation with
// no regulator is logged and skipped; a regulator that is not a physical
// entity is a data error. An uninferrable regulator abandons the reaction
// when the regulation is a requirement and is dropped otherwise. Built
// regulations are returned unstored so an abandonment further along leaves
// no trace.
func (r *Run) inferRegulations(source *domain.Instance) ([]*domain.Instance, string, bool, error) {
	var out []*domain.Instance
	for _, reg := range source.Refs(domain.AttrRegulatedBy) {
		regulator := reg.Ref(domain.AttrRegulator)
		if regulator == nil {
			r.log.Warn("regulation has no regulator", "regulation", reg.ID)
			continue
		}
		if !regulator.IsA(domain.ClassPhysicalEntity) {
			return nil, "", false, fmt.Errorf("regulation %d: regulator is not a physical entity", reg.ID)
		}
		infRegulator, err := r.InferEntity(regulator, false)
		if err != nil {
			return nil, "", false, err
		}
		if infRegulator == nil {
			if reg.IsA(domain.ClassRequirement) {
				return nil, fmt.Sprintf("required regulator %d not inferrable", regulator.ID), false, nil
			}
			continue
		}
		infReg := r.newInferred(reg.Class)
		infReg.Set(domain.AttrRegulator, infRegulator)
		infReg.DisplayName = reg.DisplayName
		out = append(out, infReg)
	}
	return out, "", true, nil
}

// previouslyInferred inspects the source's existing projections for the
// target species. An electronically inferred counterpart is adopted; a
// manual one blocks re-inference.
func (r *Run) previouslyInferred(source *domain.Instance) (existing *domain.Instance, adopted, manual bool) {
	candidates := source.Refs(domain.AttrOrthologousEvent)
	candidates = append(candidates, source.Refs(domain.AttrInferredTo)...)
	for _, cand := range candidates {
		sp := cand.Ref(domain.AttrSpecies)
		if sp == nil || sp.Str(domain.AttrName) != r.cfg.Target.Name || cand.Bool(domain.AttrIsChimeric) {
			continue
		}
		if ev := cand.Ref(domain.AttrEvidenceType); ev != nil && strings.Contains(ev.DisplayName, evidenceTypeName) {
			return cand, true, false
		}
		return nil, false, true
	}
	return nil, false, false
}
