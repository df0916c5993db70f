// Package domain defines the knowledgebase instance model shared by the
// inference engine and its storage backends. Instances are schema-lite: a
// numeric DB identifier, a class, and a multi-valued attribute map whose
// values are strings, integers, booleans, or references to other instances.
package domain

// Class identifies a knowledgebase schema class.
type Class string

const (
	// Events.
	ClassEvent            Class = "Event"
	ClassReactionlike     Class = "ReactionlikeEvent"
	ClassReaction         Class = "Reaction"
	ClassBlackBoxEvent    Class = "BlackBoxEvent"
	ClassPolymerisation   Class = "Polymerisation"
	ClassDepolymerisation Class = "Depolymerisation"
	ClassFailedReaction   Class = "FailedReaction"
	ClassPathway          Class = "Pathway"
	ClassTopLevelPathway  Class = "TopLevelPathway"

	// Physical entities.
	ClassPhysicalEntity Class = "PhysicalEntity"
	ClassEWAS           Class = "EntityWithAccessionedSequence"
	ClassGEE            Class = "GenomeEncodedEntity"
	ClassComplex        Class = "Complex"
	ClassPolymer        Class = "Polymer"
	ClassEntitySet      Class = "EntitySet"
	ClassDefinedSet     Class = "DefinedSet"
	ClassCandidateSet   Class = "CandidateSet"
	ClassOpenSet        Class = "OpenSet"
	ClassSimpleEntity   Class = "SimpleEntity"
	ClassOtherEntity    Class = "OtherEntity"
	ClassDrug           Class = "Drug"

	// Reference sequences.
	ClassReferenceSequence    Class = "ReferenceSequence"
	ClassReferenceGeneProduct Class = "ReferenceGeneProduct"
	ClassReferenceIsoform     Class = "ReferenceIsoform"
	ClassReferenceDNASequence Class = "ReferenceDNASequence"

	// Modifications.
	ClassModifiedResidue             Class = "ModifiedResidue"
	ClassInterChainCrosslinkedResidue Class = "InterChainCrosslinkedResidue"

	// Catalysis and regulation.
	ClassCatalystActivity   Class = "CatalystActivity"
	ClassRegulation         Class = "Regulation"
	ClassPositiveRegulation Class = "PositiveRegulation"
	ClassNegativeRegulation Class = "NegativeRegulation"
	ClassRequirement        Class = "Requirement"

	// Supporting classes.
	ClassSpecies             Class = "Species"
	ClassCompartment         Class = "Compartment"
	ClassGOCellularComponent Class = "GO_CellularComponent"
	ClassGOBiologicalProcess Class = "GO_BiologicalProcess"
	ClassGOMolecularFunction Class = "GO_MolecularFunction"
	ClassSummation           Class = "Summation"
	ClassEvidenceType        Class = "EvidenceType"
	ClassStableIdentifier    Class = "StableIdentifier"
	ClassInstanceEdit        Class = "InstanceEdit"
	ClassReferenceDatabase   Class = "ReferenceDatabase"
	ClassLiteratureReference Class = "LiteratureReference"
	ClassDisease             Class = "Disease"
	ClassPsiMod              Class = "PsiMod"
)

// Attribute names used by the inference engine. These follow the schema's
// lowerCamel attribute naming.
const (
	AttrInput                   = "input"
	AttrOutput                  = "output"
	AttrCatalystActivity        = "catalystActivity"
	AttrPhysicalEntity          = "physicalEntity"
	AttrActiveUnit              = "activeUnit"
	AttrActivity                = "activity"
	AttrHasComponent            = "hasComponent"
	AttrRepeatedUnit            = "repeatedUnit"
	AttrHasMember               = "hasMember"
	AttrHasCandidate            = "hasCandidate"
	AttrHasEvent                = "hasEvent"
	AttrPrecedingEvent          = "precedingEvent"
	AttrReferenceEntity         = "referenceEntity"
	AttrReferenceDatabase       = "referenceDatabase"
	AttrReferenceGene           = "referenceGene"
	AttrIdentifier              = "identifier"
	AttrIdentifierVersion       = "identifierVersion"
	AttrGeneName                = "geneName"
	AttrName                    = "name"
	AttrSpecies                 = "species"
	AttrCompartment             = "compartment"
	AttrStartCoordinate         = "startCoordinate"
	AttrEndCoordinate           = "endCoordinate"
	AttrHasModifiedResidue      = "hasModifiedResidue"
	AttrCoordinate              = "coordinate"
	AttrModification            = "modification"
	AttrPsiMod                  = "psiMod"
	AttrReferenceSequence       = "referenceSequence"
	AttrSecondReferenceSequence = "secondReferenceSequence"
	AttrEquivalentTo            = "equivalentTo"
	AttrInferredFrom            = "inferredFrom"
	AttrInferredTo              = "inferredTo"
	AttrOrthologousEvent        = "orthologousEvent"
	AttrEvidenceType            = "evidenceType"
	AttrSummation               = "summation"
	AttrText                    = "text"
	AttrGoBiologicalProcess     = "goBiologicalProcess"
	AttrReleaseDate             = "releaseDate"
	AttrStableIdentifier        = "stableIdentifier"
	AttrRegulatedBy             = "regulatedBy"
	AttrRegulator               = "regulator"
	AttrDisease                 = "disease"
	AttrRelatedSpecies          = "relatedSpecies"
	AttrIsChimeric              = "isChimeric"
	AttrCreated                 = "created"
	AttrModified                = "modified"
	AttrAbbreviation            = "abbreviation"
	AttrDateTime                = "dateTime"
	AttrNote                    = "note"
)

// parent maps each class to its immediate superclass. Classes absent from the
// map are hierarchy roots.
var parent = map[Class]Class{
	ClassReaction:         ClassReactionlike,
	ClassBlackBoxEvent:    ClassReactionlike,
	ClassPolymerisation:   ClassReactionlike,
	ClassDepolymerisation: ClassReactionlike,
	ClassFailedReaction:   ClassReactionlike,
	ClassReactionlike:     ClassEvent,
	ClassPathway:          ClassEvent,
	ClassTopLevelPathway:  ClassPathway,

	ClassDefinedSet:   ClassEntitySet,
	ClassCandidateSet: ClassEntitySet,
	ClassOpenSet:      ClassEntitySet,
	ClassEntitySet:    ClassPhysicalEntity,
	ClassComplex:      ClassPhysicalEntity,
	ClassPolymer:      ClassPhysicalEntity,
	ClassSimpleEntity: ClassPhysicalEntity,
	ClassOtherEntity:  ClassPhysicalEntity,
	ClassDrug:         ClassPhysicalEntity,
	ClassGEE:          ClassPhysicalEntity,
	ClassEWAS:         ClassGEE,

	ClassReferenceGeneProduct: ClassReferenceSequence,
	ClassReferenceIsoform:     ClassReferenceGeneProduct,
	ClassReferenceDNASequence: ClassReferenceSequence,

	ClassInterChainCrosslinkedResidue: ClassModifiedResidue,

	ClassPositiveRegulation: ClassRegulation,
	ClassNegativeRegulation: ClassRegulation,
	ClassRequirement:        ClassPositiveRegulation,

	ClassCompartment: ClassGOCellularComponent,
}

// IsA reports whether class c equals ancestor or descends from it.
func IsA(c, ancestor Class) bool {
	for c != "" {
		if c == ancestor {
			return true
		}
		c = parent[c]
	}
	return false
}

// speciesless lists physical-entity classes whose schema carries no species
// attribute. Instances of these classes are projected unchanged.
var speciesless = map[Class]bool{
	ClassOtherEntity: true,
	ClassDrug:        true,
}

// HasSpeciesAttribute reports whether the schema defines a species attribute
// for the class.
func HasSpeciesAttribute(c Class) bool {
	return IsA(c, ClassPhysicalEntity) && !speciesless[c]
}

// Instance is a single knowledgebase instance. A zero ID marks an instance
// not yet committed to a store.
type Instance struct {
	ID          int64
	Class       Class
	DisplayName string

	attrs map[string][]any
}

// New returns an uncommitted instance of the given class.
func New(class Class) *Instance {
	return &Instance{Class: class, attrs: map[string][]any{}}
}

// IsA reports whether the instance's class descends from ancestor.
func (in *Instance) IsA(ancestor Class) bool { return IsA(in.Class, ancestor) }

// AttrNames returns the names of all populated attributes.
func (in *Instance) AttrNames() []string {
	names := make([]string, 0, len(in.attrs))
	for name := range in.attrs {
		names = append(names, name)
	}
	return names
}

// List returns every value of the attribute. The returned slice is the
// instance's own backing storage; callers must not mutate it.
func (in *Instance) List(attr string) []any {
	return in.attrs[attr]
}

// Get returns the first value of the attribute, or nil when unset.
func (in *Instance) Get(attr string) any {
	vs := in.attrs[attr]
	if len(vs) == 0 {
		return nil
	}
	return vs[0]
}

// Set replaces the attribute's values. Passing no values clears it.
func (in *Instance) Set(attr string, values ...any) {
	if len(values) == 0 {
		delete(in.attrs, attr)
		return
	}
	in.attrs[attr] = append([]any(nil), values...)
}

// Add appends a value to the attribute.
func (in *Instance) Add(attr string, v any) {
	in.attrs[attr] = append(in.attrs[attr], v)
}

// AddIfAbsent appends v unless an equal value is already present. Instance
// references compare by DB ID.
func (in *Instance) AddIfAbsent(attr string, v any) {
	for _, have := range in.attrs[attr] {
		if ref, ok := v.(*Instance); ok {
			if hr, ok := have.(*Instance); ok && hr.ID == ref.ID && ref.ID != 0 {
				return
			}
			continue
		}
		if have == v {
			return
		}
	}
	in.Add(attr, v)
}

// Ref returns the first value of the attribute as an instance reference, or
// nil when unset or not a reference.
func (in *Instance) Ref(attr string) *Instance {
	ref, _ := in.Get(attr).(*Instance)
	return ref
}

// Refs returns every instance-reference value of the attribute.
func (in *Instance) Refs(attr string) []*Instance {
	vs := in.attrs[attr]
	refs := make([]*Instance, 0, len(vs))
	for _, v := range vs {
		if ref, ok := v.(*Instance); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// Str returns the first value of the attribute as a string, or "" when unset.
func (in *Instance) Str(attr string) string {
	s, _ := in.Get(attr).(string)
	return s
}

// Strs returns every string value of the attribute.
func (in *Instance) Strs(attr string) []string {
	vs := in.attrs[attr]
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Int returns the first value of the attribute as an int64, or 0 when unset.
func (in *Instance) Int(attr string) int64 {
	switch v := in.Get(attr).(type) {
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// Bool returns the first value of the attribute as a bool.
func (in *Instance) Bool(attr string) bool {
	b, _ := in.Get(attr).(bool)
	return b
}
