package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/driftlab/trustdebt/internal/alignment"
	"github.com/driftlab/trustdebt/internal/audit"
	"github.com/driftlab/trustdebt/internal/config"
	"github.com/driftlab/trustdebt/internal/dictionary"
	"github.com/driftlab/trustdebt/internal/distribution"
	"github.com/driftlab/trustdebt/internal/grading"
	"github.com/driftlab/trustdebt/internal/index"
	"github.com/driftlab/trustdebt/internal/matrix"
	"github.com/driftlab/trustdebt/internal/taxonomy"
)

// RunStore indexes completed runs for scoped lookups. All methods are
// best-effort from the pipeline's point of view: the JSON artifacts are
// canonical, so store failures are logged and the run continues.
type RunStore interface {
	CreateRun(runID string) error
	FinishRun(runID, status string, sovereigntyScore float64, sovereigntyGrade string, overallAlignment float64) error
	SaveCategories(runID string, cats []taxonomy.Category) error
	SaveMatrix(runID string, m matrix.Matrix) error
	RecordMappings(runID string, mappings []index.KeywordMapping) error
}

// RunReport is the in-memory summary of one run. Unlike stage artifacts
// it carries the run ID and wall-clock times, so it is not expected to
// be byte-stable across runs.
type RunReport struct {
	RunID            string              `json:"run_id"`
	StartedAt        time.Time           `json:"started_at"`
	FinishedAt       time.Time           `json:"finished_at"`
	Results          []StageResult       `json:"results"`
	Audit            audit.Report        `json:"audit"`
	Sovereignty      grading.Sovereignty `json:"sovereignty"`
	OverallAlignment float64             `json:"overall_alignment"`
}

// Status is the audit verdict for the run.
func (r RunReport) Status() string {
	return string(r.Audit.Status)
}

// ResultFor returns the recorded result for one stage.
func (r RunReport) ResultFor(stage Stage) (StageResult, bool) {
	for _, res := range r.Results {
		if res.Stage == stage {
			return res, true
		}
	}
	return StageResult{}, false
}

// Runner executes the full stage sequence.
type Runner struct {
	cfg       config.EngineConfig
	artifacts ArtifactStore
	store     RunStore // nil disables run indexing
	logger    *log.Logger

	newRunID func() string
}

// NewRunner wires a runner. store may be nil.
func NewRunner(cfg config.EngineConfig, artifacts ArtifactStore, store RunStore, logger *log.Logger) *Runner {
	return &Runner{
		cfg:       cfg,
		artifacts: artifacts,
		store:     store,
		logger:    logger,
		newRunID:  uuid.NewString,
	}
}

// runState accumulates stage outputs as the sequence advances.
type runState struct {
	categories []taxonomy.Category
	indexed    index.Result
	matrix     matrix.Matrix
	dist       distribution.Analysis
	grades     grading.Report
	drift      alignment.Report
}

// Run executes every stage in order against the two corpora. Stage
// failures are recorded and downstream dependents skipped; the audit
// stage always runs. The returned error is reserved for context
// cancellation — domain failures live in the report.
func (r *Runner) Run(ctx context.Context, intent, reality index.Corpus) (RunReport, error) {
	report := RunReport{
		RunID:     r.newRunID(),
		StartedAt: timeNow().UTC(),
		Results:   make([]StageResult, 0, len(StageOrder)),
	}
	r.logger.Printf("run %s: starting %d stages", report.RunID, len(StageOrder))

	if r.store != nil {
		if err := r.store.CreateRun(report.RunID); err != nil {
			r.logger.Printf("run %s: store: %v", report.RunID, err)
		}
	}

	state := &runState{}
	outcomes := make(map[Stage]Outcome, len(StageOrder))

	for _, stage := range StageOrder {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("pipeline: run %s cancelled at stage %s: %w", report.RunID, stage, err)
		}

		res := StageResult{Stage: stage, Outcome: OutcomeSucceeded}

		if skip := unmetPrereq(stage, outcomes); skip != "" {
			res.Outcome = OutcomeSkipped
			r.logger.Printf("run %s: stage %s skipped (%s did not succeed)", report.RunID, stage, skip)
			outcomes[stage] = res.Outcome
			report.Results = append(report.Results, res)
			continue
		}

		artifact, err := r.execute(stage, state, intent, reality, outcomes, &report)
		if err != nil {
			res.Outcome = OutcomeFailed
			res.Err = err.Error()
			r.logger.Printf("run %s: stage %s failed: %v", report.RunID, stage, err)
		} else {
			path, saveErr := r.artifacts.Save(report.RunID, stage, artifact)
			if saveErr != nil {
				res.Outcome = OutcomeFailed
				res.Err = saveErr.Error()
				r.logger.Printf("run %s: stage %s failed: %v", report.RunID, stage, saveErr)
			} else {
				res.ArtifactPath = path
			}
		}

		outcomes[stage] = res.Outcome
		report.Results = append(report.Results, res)
	}

	report.Sovereignty = state.grades.Sovereignty
	report.OverallAlignment = state.drift.OverallAlignment
	report.FinishedAt = timeNow().UTC()

	if r.store != nil {
		if err := r.store.FinishRun(report.RunID, report.Status(),
			report.Sovereignty.Score, report.Sovereignty.Grade, report.OverallAlignment); err != nil {
			r.logger.Printf("run %s: store: %v", report.RunID, err)
		}
	}

	r.logger.Printf("run %s: finished with status %s", report.RunID, report.Status())
	return report, nil
}

// unmetPrereq returns the first prerequisite that did not succeed.
func unmetPrereq(stage Stage, outcomes map[Stage]Outcome) Stage {
	for _, pre := range stagePrereqs[stage] {
		if outcomes[pre] != OutcomeSucceeded {
			return pre
		}
	}
	return ""
}

// execute runs one stage's computation and returns its artifact.
func (r *Runner) execute(stage Stage, state *runState, intent, reality index.Corpus, outcomes map[Stage]Outcome, report *RunReport) (any, error) {
	switch stage {
	case StageTaxonomy:
		return r.runTaxonomy(state, report.RunID)
	case StageIndex:
		return r.runIndex(state, intent, reality, report.RunID)
	case StageMatrix:
		return r.runMatrix(state, report.RunID)
	case StageDistribution:
		return r.runDistribution(state)
	case StageGrading:
		return r.runGrading(state)
	case StageAlignment:
		return r.runAlignment(state)
	case StageAudit:
		return r.runAudit(state, outcomes, report), nil
	default:
		return nil, fmt.Errorf("pipeline: unknown stage %q", stage)
	}
}

func (r *Runner) runTaxonomy(state *runState, runID string) (any, error) {
	raw := taxonomy.DefaultCategories()
	if path := r.cfg.TaxonomyPath; path != "" {
		loaded, err := taxonomy.Load(path)
		if err != nil {
			return nil, err
		}
		raw = loaded
	}

	result, err := taxonomy.Normalize(raw)
	if err != nil {
		return nil, err
	}
	state.categories = taxonomy.ComputePercentages(result.Categories)
	result.Categories = state.categories

	if r.store != nil {
		if err := r.store.SaveCategories(runID, state.categories); err != nil {
			r.logger.Printf("run %s: store: %v", runID, err)
		}
	}
	return result, nil
}

func (r *Runner) runIndex(state *runState, intent, reality index.Corpus, runID string) (any, error) {
	dict, err := r.loadDictionary(state.categories)
	if err != nil {
		return nil, err
	}

	state.indexed = index.New(dict, state.categories).Index(intent, reality)

	if r.store != nil {
		if err := r.store.RecordMappings(runID, state.indexed.Mappings); err != nil {
			r.logger.Printf("run %s: store: %v", runID, err)
		}
	}
	return state.indexed, nil
}

func (r *Runner) loadDictionary(cats []taxonomy.Category) (*dictionary.Dictionary, error) {
	if path := r.cfg.DictionaryPath; path != "" {
		return dictionary.Load(path, cats)
	}
	return dictionary.Default(cats)
}

func (r *Runner) runMatrix(state *runState, runID string) (any, error) {
	m, err := matrix.Build(state.categories, taxonomy.UnitTotals(state.categories), r.cfg.Matrix)
	if err != nil {
		return nil, err
	}
	state.matrix = m

	if r.store != nil {
		if err := r.store.SaveMatrix(runID, m); err != nil {
			r.logger.Printf("run %s: store: %v", runID, err)
		}
	}
	return m, nil
}

func (r *Runner) runDistribution(state *runState) (any, error) {
	strengths := make([]distribution.Strength, 0, len(state.indexed.Evidence))
	for _, ev := range state.indexed.Evidence {
		strengths = append(strengths, distribution.Strength{
			CategoryCode: ev.CategoryCode,
			Value:        float64(ev.TotalStrength),
		})
	}
	state.dist = distribution.Analyze(strengths, r.cfg.Distribution)
	return state.dist, nil
}

func (r *Runner) runGrading(state *runState) (any, error) {
	state.grades = grading.Grade(state.indexed.Evidence, state.dist, r.cfg.Grading)
	return state.grades, nil
}

func (r *Runner) runAlignment(state *runState) (any, error) {
	counts := index.IntentKeywordCounts(state.indexed.Mappings)
	state.drift = alignment.Analyze(state.grades.Categories, counts, r.cfg.Alignment)
	return state.drift, nil
}

func (r *Runner) runAudit(state *runState, outcomes map[Stage]Outcome, report *RunReport) any {
	expected := make([]string, 0, len(StageOrder)-1)
	completed := make([]string, 0, len(StageOrder)-1)
	for _, stage := range StageOrder {
		if stage == StageAudit {
			continue
		}
		expected = append(expected, string(stage))
		if outcomes[stage] == OutcomeSucceeded {
			completed = append(completed, string(stage))
		}
	}

	report.Audit = audit.Run(audit.Input{
		ExpectedStages:   expected,
		CompletedStages:  completed,
		Categories:       state.categories,
		Matrix:           state.matrix,
		Grading:          state.grades,
		OverallAlignment: state.drift.OverallAlignment,
	})
	return report.Audit
}
