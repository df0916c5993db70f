package domain

import (
	"sort"
	"strconv"
	"strings"
)

// definingAttributes lists, per class, the attributes whose values make two
// instances interchangeable. Classes without an entry (events in particular)
// are never deduplicated structurally.
var definingAttributes = map[Class][]string{
	ClassEWAS: {AttrReferenceEntity, AttrHasModifiedResidue, AttrStartCoordinate, AttrEndCoordinate, AttrName, AttrCompartment, AttrSpecies},
	ClassGEE:  {AttrName, AttrSpecies, AttrCompartment},

	ClassComplex:      {AttrHasComponent, AttrCompartment, AttrSpecies, AttrName},
	ClassPolymer:      {AttrRepeatedUnit, AttrCompartment, AttrSpecies, AttrName},
	ClassDefinedSet:   {AttrHasMember, AttrCompartment, AttrSpecies, AttrName},
	ClassCandidateSet: {AttrHasMember, AttrHasCandidate, AttrCompartment, AttrSpecies, AttrName},

	ClassReferenceGeneProduct: {AttrIdentifier, AttrReferenceDatabase, AttrSpecies},
	ClassReferenceDNASequence: {AttrIdentifier, AttrReferenceDatabase, AttrSpecies},

	ClassModifiedResidue:              {AttrCoordinate, AttrModification, AttrPsiMod, AttrReferenceSequence},
	ClassInterChainCrosslinkedResidue: {AttrCoordinate, AttrModification, AttrPsiMod, AttrReferenceSequence, AttrSecondReferenceSequence, AttrEquivalentTo},

	ClassCatalystActivity: {AttrActivity, AttrPhysicalEntity, AttrActiveUnit},

	ClassRegulation:         {AttrRegulator},
	ClassPositiveRegulation: {AttrRegulator},
	ClassNegativeRegulation: {AttrRegulator},
	ClassRequirement:        {AttrRegulator},

	ClassStableIdentifier: {AttrIdentifier, AttrIdentifierVersion},
	ClassSpecies:          {AttrName},
	ClassCompartment:      {AttrName},
	ClassSummation:        {AttrText},
	ClassEvidenceType:     {AttrName},
}

// StructuralKey renders an instance's defining attributes into a stable cache
// key. Instances of classes with no defining attributes yield "".
func StructuralKey(in *Instance) string {
	attrs, ok := definingAttributes[in.Class]
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(string(in.Class))
	for _, attr := range attrs {
		b.WriteByte('|')
		b.WriteString(attr)
		b.WriteByte('=')
		vs := in.List(attr)
		if len(vs) == 0 {
			b.WriteString("null")
			continue
		}
		parts := make([]string, 0, len(vs))
		for _, v := range vs {
			parts = append(parts, renderValue(v))
		}
		sort.Strings(parts)
		b.WriteString(strings.Join(parts, ","))
	}
	return b.String()
}

func renderValue(v any) string {
	switch t := v.(type) {
	case *Instance:
		return "#" + strconv.FormatInt(t.ID, 10)
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return "null"
	}
}
