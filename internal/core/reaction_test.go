package core

import (
	"testing"

	"orthoinfer/pkg/domain"
)

func TestInferReaction(t *testing.T) {
	s := newStore()
	human := newHuman(s)
	rle := newReaction(s, human, "phosphorylation", "R-HSA-100",
		[]*domain.Instance{newEWAS(s, human, "P-ONE", "substrate"), newSimple(s, "ATP")},
		[]*domain.Instance{newSimple(s, "ADP")})
	r := newTestRun(t, s)

	outcome, err := r.InferReaction(rle)
	if err != nil {
		t.Fatalf("InferReaction: %v", err)
	}
	if outcome.Kind != OutcomeInferred {
		t.Fatalf("Kind = %v, reason %q", outcome.Kind, outcome.Reason)
	}
	inferred := outcome.Inferred
	if inferred.ID == 0 {
		t.Fatalf("inferred reaction not committed")
	}
	if sp := inferred.Ref(domain.AttrSpecies); sp == nil || sp.Str(domain.AttrName) != "Mus musculus" {
		t.Fatalf("species = %v", sp)
	}
	if st := inferred.Ref(domain.AttrStableIdentifier); st == nil || st.Str(domain.AttrIdentifier) != "R-MMU-100" {
		t.Fatalf("stable identifier = %v", st)
	}
	if inferred.Ref(domain.AttrSummation) == nil || inferred.Ref(domain.AttrEvidenceType) == nil {
		t.Fatalf("summation or evidence type missing")
	}
	if inferred.Str(domain.AttrReleaseDate) == "" {
		t.Fatalf("release date missing")
	}
	if got := len(inferred.Refs(domain.AttrInput)); got != 2 {
		t.Fatalf("inputs = %d, want 2", got)
	}
	if got := len(inferred.Refs(domain.AttrOutput)); got != 1 {
		t.Fatalf("outputs = %d, want 1", got)
	}

	// Event provenance runs both ways: inferredFrom and orthologousEvent
	// on the projection, orthologousEvent on the source.
	if refs := inferred.Refs(domain.AttrInferredFrom); len(refs) != 1 || refs[0] != rle {
		t.Fatalf("inferredFrom = %v", refs)
	}
	if refs := inferred.Refs(domain.AttrOrthologousEvent); len(refs) != 1 || refs[0] != rle {
		t.Fatalf("orthologousEvent on projection = %v", refs)
	}
	if refs := rle.Refs(domain.AttrOrthologousEvent); len(refs) != 1 || refs[0] != inferred {
		t.Fatalf("orthologousEvent = %v", refs)
	}

	if r.eligibleCount != 1 || r.inferredCount != 1 {
		t.Fatalf("ledger counts = %d / %d", r.eligibleCount, r.inferredCount)
	}
}

func TestInferReactionNoProteins(t *testing.T) {
	s := newStore()
	human := newHuman(s)
	rle := newReaction(s, human, "hydration", "R-HSA-101",
		[]*domain.Instance{newSimple(s, "H2O")}, nil)
	r := newTestRun(t, s)

	outcome, err := r.InferReaction(rle)
	if err != nil {
		t.Fatalf("InferReaction: %v", err)
	}
	if outcome.Kind != OutcomeNotEligible {
		t.Fatalf("Kind = %v", outcome.Kind)
	}
	if r.eligibleCount != 0 {
		t.Fatalf("ineligible reaction landed on the eligible ledger")
	}
}

func TestInferReactionAbandoned(t *testing.T) {
	s := newStore()
	human := newHuman(s)
	rle := newReaction(s, human, "orphan binding", "R-HSA-102",
		[]*domain.Instance{newEWAS(s, human, "P-NONE", "orphan")}, nil)
	r := newTestRun(t, s)

	outcome, err := r.InferReaction(rle)
	if err != nil {
		t.Fatalf("InferReaction: %v", err)
	}
	if outcome.Kind != OutcomeAbandoned {
		t.Fatalf("Kind = %v, reason %q", outcome.Kind, outcome.Reason)
	}
	// Abandoned reactions stay eligible but never reach the inferred
	// ledger, and no projection is linked to the source.
	if r.eligibleCount != 1 || r.inferredCount != 0 {
		t.Fatalf("ledger counts = %d / %d", r.eligibleCount, r.inferredCount)
	}
	if refs := rle.Refs(domain.AttrOrthologousEvent); len(refs) != 0 {
		t.Fatalf("abandoned reaction gained a projection: %v", refs)
	}
}

func TestInferReactionSkipChecks(t *testing.T) {
	s := newStore()
	human := newHuman(s)

	chimeric := newReaction(s, human, "chimeric", "R-HSA-103",
		[]*domain.Instance{newEWAS(s, human, "P-ONE", "a")}, nil)
	chimeric.Set(domain.AttrIsChimeric, true)
	s.Update(chimeric)

	diseased := newReaction(s, human, "diseased", "R-HSA-104",
		[]*domain.Instance{newEWAS(s, human, "P-ONE", "b")}, nil)
	dis := s.Store(domain.New(domain.ClassDisease))
	diseased.Set(domain.AttrDisease, dis)
	s.Update(diseased)

	manual := newReaction(s, human, "manual", "R-HSA-105",
		[]*domain.Instance{newEWAS(s, human, "P-ONE", "c")}, nil)
	manual.Set(domain.AttrInferredFrom, s.Store(domain.New(domain.ClassReaction)))
	s.Update(manual)

	r := newTestRun(t, s)
	for _, rle := range []*domain.Instance{chimeric, diseased, manual} {
		outcome, err := r.InferReaction(rle)
		if err != nil {
			t.Fatalf("InferReaction(%s): %v", rle.DisplayName, err)
		}
		if outcome.Kind != OutcomeNotEligible {
			t.Fatalf("%s: Kind = %v, want not eligible", rle.DisplayName, outcome.Kind)
		}
	}
	if r.eligibleCount != 0 {
		t.Fatalf("skipped reactions should not count as eligible")
	}
}

func TestInferReactionRequiredRegulatorAbandons(t *testing.T) {
	s := newStore()
	human := newHuman(s)
	rle := newReaction(s, human, "gated", "R-HSA-106",
		[]*domain.Instance{newEWAS(s, human, "P-ONE", "a")}, nil)
	req := domain.New(domain.ClassRequirement)
	req.Set(domain.AttrRegulator, newEWAS(s, human, "P-NONE", "trigger"))
	s.Store(req)
	rle.Add(domain.AttrRegulatedBy, req)
	s.Update(rle)
	r := newTestRun(t, s)

	outcome, err := r.InferReaction(rle)
	if err != nil {
		t.Fatalf("InferReaction: %v", err)
	}
	if outcome.Kind != OutcomeAbandoned {
		t.Fatalf("Kind = %v, reason %q", outcome.Kind, outcome.Reason)
	}
}

func TestInferReactionOptionalRegulatorDropped(t *testing.T) {
	s := newStore()
	human := newHuman(s)
	rle := newReaction(s, human, "modulated", "R-HSA-107",
		[]*domain.Instance{newEWAS(s, human, "P-ONE", "a")}, nil)
	reg := domain.New(domain.ClassPositiveRegulation)
	reg.Set(domain.AttrRegulator, newEWAS(s, human, "P-NONE", "booster"))
	s.Store(reg)
	rle.Add(domain.AttrRegulatedBy, reg)
	s.Update(rle)
	r := newTestRun(t, s)

	outcome, err := r.InferReaction(rle)
	if err != nil {
		t.Fatalf("InferReaction: %v", err)
	}
	if outcome.Kind != OutcomeInferred {
		t.Fatalf("Kind = %v, reason %q", outcome.Kind, outcome.Reason)
	}
	if regs := outcome.Inferred.Refs(domain.AttrRegulatedBy); len(regs) != 0 {
		t.Fatalf("dropped regulation survived: %v", regs)
	}
}

func TestInferReactionSkipsRegulationWithoutRegulator(t *testing.T) {
	s := newStore()
	human := newHuman(s)
	rle := newReaction(s, human, "modulated", "R-HSA-108",
		[]*domain.Instance{newEWAS(s, human, "P-ONE", "a")}, nil)
	reg := domain.New(domain.ClassPositiveRegulation)
	s.Store(reg)
	rle.Add(domain.AttrRegulatedBy, reg)
	s.Update(rle)
	r := newTestRun(t, s)

	outcome, err := r.InferReaction(rle)
	if err != nil {
		t.Fatalf("a regulation without a regulator must not be fatal: %v", err)
	}
	if outcome.Kind != OutcomeInferred {
		t.Fatalf("Kind = %v, reason %q", outcome.Kind, outcome.Reason)
	}
	if regs := outcome.Inferred.Refs(domain.AttrRegulatedBy); len(regs) != 0 {
		t.Fatalf("regulator-less regulation survived: %v", regs)
	}
}

func TestInferReactionCarriesRegulation(t *testing.T) {
	s := newStore()
	human := newHuman(s)
	rle := newReaction(s, human, "inhibited", "R-HSA-108",
		[]*domain.Instance{newEWAS(s, human, "P-ONE", "a")}, nil)
	reg := domain.New(domain.ClassNegativeRegulation)
	reg.Set(domain.AttrRegulator, newEWAS(s, human, "P-TWO", "inhibitor"))
	s.Store(reg)
	rle.Add(domain.AttrRegulatedBy, reg)
	s.Update(rle)
	r := newTestRun(t, s)

	outcome, err := r.InferReaction(rle)
	if err != nil {
		t.Fatalf("InferReaction: %v", err)
	}
	regs := outcome.Inferred.Refs(domain.AttrRegulatedBy)
	if len(regs) != 1 || regs[0].Class != domain.ClassNegativeRegulation {
		t.Fatalf("regulations = %v", regs)
	}
	regulator := regs[0].Ref(domain.AttrRegulator)
	if regulator == nil || regulator.Ref(domain.AttrReferenceEntity).Str(domain.AttrIdentifier) != "Q-TWO" {
		t.Fatalf("regulator = %v", regulator)
	}
}

func TestInferReactionCatalyst(t *testing.T) {
	s := newStore()
	human := newHuman(s)
	rle := newReaction(s, human, "catalyzed", "R-HSA-109",
		[]*domain.Instance{newEWAS(s, human, "P-ONE", "substrate")}, nil)
	activity := s.Store(domain.New(domain.ClassGOMolecularFunction))
	ca := domain.New(domain.ClassCatalystActivity)
	ca.Set(domain.AttrActivity, activity)
	ca.Set(domain.AttrPhysicalEntity, newEWAS(s, human, "P-TWO", "kinase"))
	ca.DisplayName = "kinase activity"
	s.Store(ca)
	rle.Add(domain.AttrCatalystActivity, ca)
	s.Update(rle)
	r := newTestRun(t, s)

	outcome, err := r.InferReaction(rle)
	if err != nil {
		t.Fatalf("InferReaction: %v", err)
	}
	cas := outcome.Inferred.Refs(domain.AttrCatalystActivity)
	if len(cas) != 1 {
		t.Fatalf("catalyst activities = %v", cas)
	}
	if cas[0].Ref(domain.AttrActivity) != activity {
		t.Fatalf("molecular function not carried over")
	}
	pe := cas[0].Ref(domain.AttrPhysicalEntity)
	if pe == nil || pe.Ref(domain.AttrReferenceEntity).Str(domain.AttrIdentifier) != "Q-TWO" {
		t.Fatalf("catalyst entity = %v", pe)
	}
}

func TestInferReactionUninferrableCatalystAbandons(t *testing.T) {
	s := newStore()
	human := newHuman(s)
	rle := newReaction(s, human, "catalyzed", "R-HSA-110",
		[]*domain.Instance{newEWAS(s, human, "P-ONE", "substrate")}, nil)
	ca := domain.New(domain.ClassCatalystActivity)
	ca.Set(domain.AttrPhysicalEntity, newEWAS(s, human, "P-NONE", "lost enzyme"))
	s.Store(ca)
	rle.Add(domain.AttrCatalystActivity, ca)
	s.Update(rle)
	r := newTestRun(t, s)

	outcome, err := r.InferReaction(rle)
	if err != nil {
		t.Fatalf("InferReaction: %v", err)
	}
	if outcome.Kind != OutcomeAbandoned {
		t.Fatalf("Kind = %v, reason %q", outcome.Kind, outcome.Reason)
	}
}

func TestInferReactionAdoptsPreviousProjection(t *testing.T) {
	s := newStore()
	human := newHuman(s)
	rle := newReaction(s, human, "stable", "R-HSA-111",
		[]*domain.Instance{newEWAS(s, human, "P-ONE", "a")}, nil)
	r := newTestRun(t, s)

	first, err := r.InferReaction(rle)
	if err != nil {
		t.Fatalf("first InferReaction: %v", err)
	}
	second, err := r.InferReaction(rle)
	if err != nil {
		t.Fatalf("second InferReaction: %v", err)
	}
	if second.Kind != OutcomeAlreadyInferred {
		t.Fatalf("Kind = %v, want already inferred", second.Kind)
	}
	if second.Inferred != first.Inferred {
		t.Fatalf("adoption returned a different instance")
	}
	if r.eligibleCount != 1 || r.inferredCount != 1 {
		t.Fatalf("re-running inflated ledgers: %d / %d", r.eligibleCount, r.inferredCount)
	}
}

func TestInferReactionManualCounterpartBlocks(t *testing.T) {
	s := newStore()
	human := newHuman(s)
	mouse := domain.New(domain.ClassSpecies)
	mouse.Set(domain.AttrName, "Mus musculus")
	mouse.DisplayName = "Mus musculus"
	s.Store(mouse)

	manual := domain.New(domain.ClassReaction)
	manual.Set(domain.AttrSpecies, mouse)
	manual.DisplayName = "curated mouse reaction"
	s.Store(manual)

	rle := newReaction(s, human, "curated elsewhere", "R-HSA-112",
		[]*domain.Instance{newEWAS(s, human, "P-ONE", "a")}, nil)
	rle.Add(domain.AttrOrthologousEvent, manual)
	s.Update(rle)
	r := newTestRun(t, s)

	outcome, err := r.InferReaction(rle)
	if err != nil {
		t.Fatalf("InferReaction: %v", err)
	}
	if outcome.Kind != OutcomeNotEligible {
		t.Fatalf("Kind = %v, want not eligible", outcome.Kind)
	}
}

func TestInferReactionMissingStableIdentifier(t *testing.T) {
	s := newStore()
	human := newHuman(s)
	rle := newReaction(s, human, "unidentified", "",
		[]*domain.Instance{newEWAS(s, human, "P-ONE", "a")}, nil)
	r := newTestRun(t, s)

	if _, err := r.InferReaction(rle); err == nil {
		t.Fatalf("missing stable identifier should be a data error")
	}
}
