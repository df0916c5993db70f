package domain

import "testing"

func TestIsA(t *testing.T) {
	cases := []struct {
		class    Class
		ancestor Class
		want     bool
	}{
		{ClassReaction, ClassReactionlike, true},
		{ClassReaction, ClassEvent, true},
		{ClassBlackBoxEvent, ClassReactionlike, true},
		{ClassPathway, ClassEvent, true},
		{ClassTopLevelPathway, ClassPathway, true},
		{ClassEWAS, ClassGEE, true},
		{ClassEWAS, ClassPhysicalEntity, true},
		{ClassCandidateSet, ClassEntitySet, true},
		{ClassReferenceIsoform, ClassReferenceGeneProduct, true},
		{ClassReferenceIsoform, ClassReferenceSequence, true},
		{ClassRequirement, ClassPositiveRegulation, true},
		{ClassRequirement, ClassRegulation, true},
		{ClassCompartment, ClassGOCellularComponent, true},
		{ClassPathway, ClassReactionlike, false},
		{ClassComplex, ClassEntitySet, false},
		{ClassNegativeRegulation, ClassPositiveRegulation, false},
		{ClassSpecies, ClassPhysicalEntity, false},
	}
	for _, tc := range cases {
		if got := IsA(tc.class, tc.ancestor); got != tc.want {
			t.Fatalf("IsA(%s, %s) = %v, want %v", tc.class, tc.ancestor, got, tc.want)
		}
	}
}

func TestHasSpeciesAttribute(t *testing.T) {
	cases := []struct {
		class Class
		want  bool
	}{
		{ClassEWAS, true},
		{ClassComplex, true},
		{ClassSimpleEntity, true},
		{ClassOtherEntity, false},
		{ClassDrug, false},
		{ClassReaction, false},
		{ClassSpecies, false},
	}
	for _, tc := range cases {
		if got := HasSpeciesAttribute(tc.class); got != tc.want {
			t.Fatalf("HasSpeciesAttribute(%s) = %v, want %v", tc.class, got, tc.want)
		}
	}
}

func TestAccessors(t *testing.T) {
	in := New(ClassEWAS)
	if in.Get(AttrName) != nil {
		t.Fatalf("expected nil for unset attribute")
	}
	in.Set(AttrName, "PTEN", "phosphatase")
	if got := in.Str(AttrName); got != "PTEN" {
		t.Fatalf("Str = %q, want PTEN", got)
	}
	if got := in.Strs(AttrName); len(got) != 2 || got[1] != "phosphatase" {
		t.Fatalf("Strs = %v", got)
	}
	in.Set(AttrStartCoordinate, int64(12))
	if got := in.Int(AttrStartCoordinate); got != 12 {
		t.Fatalf("Int = %d, want 12", got)
	}
	in.Set(AttrEndCoordinate, 30)
	if got := in.Int(AttrEndCoordinate); got != 30 {
		t.Fatalf("Int from int = %d, want 30", got)
	}
	in.Set(AttrIsChimeric, true)
	if !in.Bool(AttrIsChimeric) {
		t.Fatalf("Bool = false, want true")
	}

	ref := New(ClassSpecies)
	ref.ID = 7
	in.Set(AttrSpecies, ref)
	if got := in.Ref(AttrSpecies); got != ref {
		t.Fatalf("Ref returned %v", got)
	}
	if got := in.Refs(AttrSpecies); len(got) != 1 || got[0] != ref {
		t.Fatalf("Refs = %v", got)
	}

	in.Set(AttrName)
	if in.Get(AttrName) != nil {
		t.Fatalf("Set with no values should clear the attribute")
	}
}

func TestAddIfAbsent(t *testing.T) {
	in := New(ClassReaction)
	a := New(ClassPathway)
	a.ID = 5
	b := New(ClassPathway)
	b.ID = 5
	in.AddIfAbsent(AttrHasEvent, a)
	in.AddIfAbsent(AttrHasEvent, b)
	if got := len(in.Refs(AttrHasEvent)); got != 1 {
		t.Fatalf("references sharing a DB ID should deduplicate, got %d values", got)
	}

	c := New(ClassPathway)
	c.ID = 6
	in.AddIfAbsent(AttrHasEvent, c)
	if got := len(in.Refs(AttrHasEvent)); got != 2 {
		t.Fatalf("distinct references should both be kept, got %d values", got)
	}

	in.AddIfAbsent(AttrName, "x")
	in.AddIfAbsent(AttrName, "x")
	in.AddIfAbsent(AttrName, "y")
	if got := in.Strs(AttrName); len(got) != 2 {
		t.Fatalf("scalar dedup failed: %v", got)
	}

	// Uncommitted references (zero ID) never compare equal.
	u1, u2 := New(ClassPathway), New(ClassPathway)
	in.AddIfAbsent(AttrPrecedingEvent, u1)
	in.AddIfAbsent(AttrPrecedingEvent, u2)
	if got := len(in.Refs(AttrPrecedingEvent)); got != 2 {
		t.Fatalf("uncommitted refs deduplicated, got %d values", got)
	}
}

func TestListIsBackingStorage(t *testing.T) {
	in := New(ClassComplex)
	in.Add(AttrName, "a")
	vs := in.List(AttrName)
	if len(vs) != 1 || vs[0] != "a" {
		t.Fatalf("List = %v", vs)
	}
	if in.List("missing") != nil {
		t.Fatalf("List of unset attribute should be nil")
	}
}
