// Package core implements the orthology inference engine: projecting curated
// source-species reactions and pathways onto a target species through
// precomputed homology mappings.
package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"orthoinfer/internal/blob"
	"orthoinfer/internal/homology"
	"orthoinfer/internal/platform/logger"
	"orthoinfer/pkg/domain"
)

// summationText is attached to every computationally inferred event.
const summationText = "This event has been computationally inferred from an event that has been demonstrated in another species. The inference is based on the homology mapping from PANTHER. Briefly, reactions for which all involved PhysicalEntities (in input, output and catalyst) have a mapped orthologue/paralogue (for complexes at least 75% of components must have a mapping) are inferred to the other species. High level events are also inferred for these events to allow for easier navigation."

const evidenceTypeName = "inferred by electronic annotation"

// Config carries the per-run parameters.
type Config struct {
	// SourceCode and SourceName identify the projection source species,
	// normally hsap / Homo sapiens.
	SourceCode string
	SourceName string
	// Target is the species being projected onto.
	Target homology.Species
	// Release tags the output report.
	Release string
	// RunID stamps run artifacts; assigned when empty.
	RunID string
}

// Run holds all state for one projection run. Every cache is run-scoped;
// nothing survives in package globals.
type Run struct {
	store   domain.Store
	maps    *homology.Mappings
	cfg     Config
	log     *logger.Logger
	metrics *Metrics

	// Run fixtures, created or deduplicated once at construction.
	species      *domain.Instance
	summation    *domain.Instance
	evidenceType *domain.Instance
	instanceEdit *domain.Instance

	// orthologous maps source physical entity ID to its strict-mode
	// inferred counterpart.
	orthologous map[int64]*domain.Instance
	// mocks maps source entity ID to its ghost stand-in.
	mocks map[int64]*domain.Instance
	// rgps maps homolog identifier to the inferred ReferenceGeneProduct.
	rgps map[string]*domain.Instance
	// ewasCache, residueCache, complexCache and catalystCache key on
	// structural identity.
	ewasCache     map[string]*domain.Instance
	residueCache  map[string]*domain.Instance
	complexCache  map[string]*domain.Instance
	catalystCache map[string]*domain.Instance
	// inferredEvents maps source event ID to the inferred event.
	inferredEvents map[int64]*domain.Instance
	// paralogCounts tracks stable identifier reuse.
	paralogCounts map[string]int
	// skipIDs holds reaction IDs excluded up front.
	skipIDs map[int64]bool

	eligibleLines []string
	inferredLines []string
	eligibleCount int
	inferredCount int
}

// NewRun prepares a run against the given store and mappings, creating the
// run fixtures (species, summation, evidence type, instance edit).
func NewRun(store domain.Store, maps *homology.Mappings, cfg Config, log *logger.Logger, metrics *Metrics) (*Run, error) {
	if cfg.Target.Name == "" || cfg.Target.Abbreviation == "" {
		return nil, fmt.Errorf("run config: target species incomplete")
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if log == nil {
		log = logger.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	r := &Run{
		store:          store,
		maps:           maps,
		cfg:            cfg,
		log:            log.With("run_id", cfg.RunID, "target", cfg.Target.Code),
		metrics:        metrics,
		orthologous:    map[int64]*domain.Instance{},
		mocks:          map[int64]*domain.Instance{},
		rgps:           map[string]*domain.Instance{},
		ewasCache:      map[string]*domain.Instance{},
		residueCache:   map[string]*domain.Instance{},
		complexCache:   map[string]*domain.Instance{},
		catalystCache:  map[string]*domain.Instance{},
		inferredEvents: map[int64]*domain.Instance{},
		paralogCounts:  map[string]int{},
		skipIDs:        map[int64]bool{},
	}

	edit := domain.New(domain.ClassInstanceEdit)
	edit.Set(domain.AttrDateTime, time.Now().UTC().Format(time.RFC3339))
	edit.Set(domain.AttrNote, "orthoinference run "+cfg.RunID)
	edit.DisplayName = "orthoinference, " + time.Now().UTC().Format("2006-01-02")
	r.instanceEdit = store.Store(edit)

	sp := domain.New(domain.ClassSpecies)
	sp.Set(domain.AttrName, cfg.Target.Name)
	sp.Set(domain.AttrAbbreviation, cfg.Target.Abbreviation)
	sp.DisplayName = cfg.Target.Name
	r.species = r.checkForIdentical(sp)

	sum := r.newInferred(domain.ClassSummation)
	sum.Set(domain.AttrText, summationText)
	sum.DisplayName = summationText
	r.summation = r.checkForIdentical(sum)

	ev := r.newInferred(domain.ClassEvidenceType)
	ev.Set(domain.AttrName, evidenceTypeName, "IEA")
	ev.DisplayName = evidenceTypeName
	r.evidenceType = r.checkForIdentical(ev)

	r.buildSkipList()
	return r, nil
}

// Summary holds the run's headline numbers.
type Summary struct {
	Target   string
	Eligible int
	Inferred int
}

// Percent returns the inferred share of eligible reactions as an integer
// percentage.
func (s Summary) Percent() int {
	if s.Eligible == 0 {
		return 0
	}
	return s.Inferred * 100 / s.Eligible
}

// Execute walks every source reaction-like event in ascending DB ID order,
// infers what it can, then builds the pathway hierarchy above the results.
func (r *Run) Execute(ctx context.Context) (Summary, error) {
	reactions := r.sourceReactions()
	r.log.Info("starting inference", "reactions", len(reactions))
	for _, rle := range reactions {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}
		start := time.Now()
		outcome, err := r.InferReaction(rle)
		if err != nil {
			return Summary{}, fmt.Errorf("reaction %d: %w", rle.ID, err)
		}
		r.metrics.observeOutcome(outcome, time.Since(start))
		switch outcome.Kind {
		case OutcomeInferred:
			r.log.Debug("inferred reaction", "source", rle.ID, "inferred", outcome.Inferred.ID)
		case OutcomeAbandoned:
			r.log.Info("abandoned reaction", "source", rle.ID, "reason", outcome.Reason)
		case OutcomeNotEligible:
			r.log.Debug("skipped reaction", "source", rle.ID, "reason", outcome.Reason)
		}
	}
	if err := r.BuildPathways(); err != nil {
		return Summary{}, err
	}
	s := Summary{Target: r.cfg.Target.Code, Eligible: r.eligibleCount, Inferred: r.inferredCount}
	r.log.Info("inference finished", "eligible", s.Eligible, "inferred", s.Inferred, "percent", s.Percent())
	return s, nil
}

// WriteOutputs publishes the eligible and inferred ledgers and appends the
// run's summary line to the release report.
func (r *Run) WriteOutputs(ctx context.Context, sink blob.Store) error {
	meta := map[string]string{"run_id": r.cfg.RunID}
	opts := blob.PutOptions{ContentType: "text/plain; charset=utf-8", Metadata: meta}

	key := fmt.Sprintf("eligible_%s_75.txt", r.cfg.Target.Code)
	if _, err := sink.Put(ctx, key, stringsReader(r.eligibleLines), opts); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	key = fmt.Sprintf("inferred_%s_75.txt", r.cfg.Target.Code)
	if _, err := sink.Put(ctx, key, stringsReader(r.inferredLines), opts); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	s := Summary{Target: r.cfg.Target.Code, Eligible: r.eligibleCount, Inferred: r.inferredCount}
	line := fmt.Sprintf("%s to %s:\t%d out of %d eligible reactions (%d%%)\n",
		r.cfg.SourceCode, r.cfg.Target.Code, s.Inferred, s.Eligible, s.Percent())
	reportKey := fmt.Sprintf("report_ortho_inference_%s.txt", r.cfg.Release)
	if err := appendLine(ctx, sink, reportKey, line, opts); err != nil {
		return fmt.Errorf("write %s: %w", reportKey, err)
	}
	return nil
}

// sourceReactions returns source-species reaction-like events sorted by DB
// ID. Events already carrying the target species are not projection sources.
func (r *Run) sourceReactions() []*domain.Instance {
	all := r.store.ListByClass(domain.ClassReactionlike)
	out := make([]*domain.Instance, 0, len(all))
	for _, rle := range all {
		sp := rle.Ref(domain.AttrSpecies)
		if sp != nil && sp.Str(domain.AttrName) == r.cfg.SourceName {
			out = append(out, rle)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
