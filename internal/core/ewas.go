package core

import (
	"strings"

	"orthoinfer/pkg/domain"
)

// ensemblGeneDatabase names the reference database gene identifiers in the
// orthopair files come from.
const ensemblGeneDatabase = "ENSEMBL"

// InferEWAS projects an entity with accessioned sequence through the
// homology mapping. One homolog yields the inferred counterpart directly;
// paralogs are wrapped in a "Homologues of" defined set. Nil means the
// sequence has no usable homolog.
func (r *Run) InferEWAS(source *domain.Instance) (*domain.Instance, error) {
	rgpSource := source.Ref(domain.AttrReferenceEntity)
	if rgpSource == nil {
		return nil, nil
	}
	var inferred []*domain.Instance
	for _, token := range r.maps.Homologs(rgpSource.Str(domain.AttrIdentifier)) {
		prefix, homologID := splitHomolog(token)
		if prefix == "" {
			prefix = ensemblGeneDatabase
		}
		if homologID == "" || !r.maps.HasGeneMapping(homologID) {
			// Without a gene mapping no reference gene can be built.
			continue
		}
		rgp := r.inferReferenceGeneProduct(prefix, homologID)
		inferred = append(inferred, r.buildInferredEWAS(source, homologID, rgp))
	}
	switch len(inferred) {
	case 0:
		return nil, nil
	case 1:
		return inferred[0], nil
	}

	set := r.newInferredFrom(source)
	set.Class = domain.ClassDefinedSet
	set.Set(domain.AttrName, "Homologues of "+sourceName(source))
	setRefs(set, domain.AttrHasMember, inferred)
	set.DisplayName = r.entityDisplayName(set)
	set = r.checkForIdentical(set)
	r.linkEntityInference(source, set)
	return set, nil
}

// inferReferenceGeneProduct builds (or reuses) the target-species reference
// gene product for one homolog, with a reference DNA sequence per mapped
// gene plus the species' alternate gene database variant when configured.
func (r *Run) inferReferenceGeneProduct(prefix, homologID string) *domain.Instance {
	if cached, ok := r.rgps[homologID]; ok {
		return cached
	}
	rgp := r.newInferred(domain.ClassReferenceGeneProduct)
	rgp.Set(domain.AttrIdentifier, homologID)
	rgp.Set(domain.AttrReferenceDatabase, r.referenceDatabase(prefix))
	for _, gene := range r.maps.GeneIDs(homologID) {
		rgp.Add(domain.AttrReferenceGene, r.referenceDNASequence(gene, ensemblGeneDatabase))
		if alt := r.cfg.Target.AltGeneDB; alt != "" {
			rgp.Add(domain.AttrReferenceGene, r.referenceDNASequence(gene, alt))
		}
	}
	rgp.Set(domain.AttrSpecies, r.species)
	if gn := r.maps.GeneName(homologID); gn != "" {
		rgp.Set(domain.AttrGeneName, gn)
	}
	rgp.DisplayName = prefix + ":" + homologID
	rgp = r.checkForIdentical(rgp)
	r.rgps[homologID] = rgp
	return rgp
}

func (r *Run) referenceDNASequence(gene, db string) *domain.Instance {
	dna := domain.New(domain.ClassReferenceDNASequence)
	dna.Set(domain.AttrIdentifier, gene)
	dna.Set(domain.AttrReferenceDatabase, r.referenceDatabase(db))
	dna.Set(domain.AttrSpecies, r.species)
	dna.DisplayName = db + ":" + gene
	return r.checkForIdentical(dna)
}

// referenceDatabase fetches or creates the ReferenceDatabase named by a
// homolog token prefix.
func (r *Run) referenceDatabase(name string) *domain.Instance {
	if existing := r.store.FetchByAttribute(domain.ClassReferenceDatabase, domain.AttrName, name); len(existing) > 0 {
		return existing[0]
	}
	db := domain.New(domain.ClassReferenceDatabase)
	db.Set(domain.AttrName, name)
	db.DisplayName = name
	return r.store.Store(db)
}

// buildInferredEWAS assembles the inferred counterpart for one homolog:
// coordinates and modified residues carried over, names rebuilt around the
// homolog identifier.
func (r *Run) buildInferredEWAS(source *domain.Instance, homologID string, rgp *domain.Instance) *domain.Instance {
	ewas := r.newInferredFrom(source)
	ewas.Set(domain.AttrReferenceEntity, rgp)

	names := []string{homologID}
	if gn := rgp.Str(domain.AttrGeneName); gn != "" {
		names = append([]string{gn}, names...)
	}
	start, end := source.Int(domain.AttrStartCoordinate), source.Int(domain.AttrEndCoordinate)
	if source.Get(domain.AttrStartCoordinate) != nil {
		ewas.Set(domain.AttrStartCoordinate, start)
	}
	if source.Get(domain.AttrEndCoordinate) != nil {
		ewas.Set(domain.AttrEndCoordinate, end)
	}
	if start > 1 || end > 1 {
		// A trimmed sequence keeps the source name so the fragment stays
		// recognizable.
		if srcName := source.Str(domain.AttrName); srcName != "" {
			names = append(names, srcName)
		}
	}

	phospho := false
	for _, res := range source.Refs(domain.AttrHasModifiedResidue) {
		infRes := r.inferResidue(res, rgp)
		if !phospho {
			if mod := res.Ref(domain.AttrPsiMod); mod != nil && strings.Contains(strings.ToLower(mod.Str(domain.AttrName)), "phospho") {
				phospho = true
			}
		}
		ewas.Add(domain.AttrHasModifiedResidue, infRes)
	}
	if phospho {
		names[0] = "phospho-" + names[0]
	}
	nameVals := make([]any, len(names))
	for i, n := range names {
		nameVals[i] = n
	}
	ewas.Set(domain.AttrName, nameVals...)
	ewas.DisplayName = r.entityDisplayName(ewas)

	key := domain.StructuralKey(ewas)
	if cached, ok := r.ewasCache[key]; ok {
		// A dedup hit still belongs to this source's provenance.
		r.linkEntityInference(source, cached)
		return cached
	}
	ewas = r.checkForIdentical(ewas)
	r.ewasCache[key] = ewas
	r.linkEntityInference(source, ewas)
	return ewas
}

// inferResidue carries a modified residue over to the inferred sequence. The
// residue coordinate refers to the source sequence, so coordinate-bearing
// residues are labeled with the source species.
func (r *Run) inferResidue(res, rgp *domain.Instance) *domain.Instance {
	infRes := r.newInferred(res.Class)
	if res.Get(domain.AttrCoordinate) != nil {
		infRes.Set(domain.AttrCoordinate, res.Int(domain.AttrCoordinate))
	}
	for _, mod := range res.Refs(domain.AttrModification) {
		infRes.Add(domain.AttrModification, mod)
	}
	for _, mod := range res.Refs(domain.AttrPsiMod) {
		infRes.Add(domain.AttrPsiMod, mod)
	}
	infRes.Set(domain.AttrReferenceSequence, rgp)
	if res.IsA(domain.ClassInterChainCrosslinkedResidue) {
		for _, ref := range res.Refs(domain.AttrSecondReferenceSequence) {
			infRes.Add(domain.AttrSecondReferenceSequence, ref)
		}
		for _, eq := range res.Refs(domain.AttrEquivalentTo) {
			infRes.Add(domain.AttrEquivalentTo, eq)
		}
	}
	infRes.DisplayName = res.DisplayName
	if res.Get(domain.AttrCoordinate) != nil {
		infRes.DisplayName += " (in " + r.cfg.SourceName + ")"
	}
	key := domain.StructuralKey(infRes)
	if cached, ok := r.residueCache[key]; ok {
		return cached
	}
	infRes = r.checkForIdentical(infRes)
	r.residueCache[key] = infRes
	return infRes
}

// splitHomolog separates a "SOURCEDB:ID" homolog token.
func splitHomolog(token string) (prefix, id string) {
	if i := strings.Index(token, ":"); i >= 0 {
		return token[:i], token[i+1:]
	}
	return "", token
}
