package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/ericfisherdev/prtriage/internal/domain/model"
	"github.com/ericfisherdev/prtriage/internal/domain/port/driven"
)

// backfillWorkers bounds concurrent enrichment fetches during a cold-start
// backfill. Each item is independent and individually fault-tolerant.
const backfillWorkers = 4

// TriageResult is the output of one triage pass: the ranked scored batch,
// the batch-level roadmap hint, and the backfill report when a cold-start
// backfill ran as part of the pass.
type TriageResult struct {
	Items       []TriageItem
	RoadmapHint string
	Backfill    *model.BackfillReport
}

// TriageService orchestrates the triage pipeline: cache-first store reads,
// cold-start backfill from run references, scoring, ranking, and
// recommendation.
type TriageService struct {
	prStore  driven.PRStore
	runs     driven.RunSource
	enricher *EnrichService
	engine   *ScoringEngine
	logger   *slog.Logger
}

// NewTriageService creates a TriageService with all required dependencies.
func NewTriageService(
	prStore driven.PRStore,
	runs driven.RunSource,
	enricher *EnrichService,
	engine *ScoringEngine,
) *TriageService {
	return &TriageService{
		prStore:  prStore,
		runs:     runs,
		enricher: enricher,
		engine:   engine,
		logger:   slog.Default(),
	}
}

// Triage returns the ranked, scored, annotated batch of recent pull requests.
// When the store holds no records at all, it first backfills from run
// references; an empty result under a repo filter does not trigger backfill.
func (s *TriageService) Triage(ctx context.Context, limit int, repoFilter string) (TriageResult, error) {
	prs, err := s.prStore.GetRecent(ctx, limit, repoFilter)
	if err != nil {
		return TriageResult{}, fmt.Errorf("read recent pull requests: %w", err)
	}

	var report *model.BackfillReport
	if len(prs) == 0 {
		count, err := s.prStore.Count(ctx)
		if err != nil {
			return TriageResult{}, fmt.Errorf("count pull requests: %w", err)
		}
		if count == 0 {
			r := s.backfill(ctx)
			report = &r

			prs, err = s.prStore.GetRecent(ctx, limit, repoFilter)
			if err != nil {
				return TriageResult{}, fmt.Errorf("read recent pull requests after backfill: %w", err)
			}
		}
	}

	items := s.scoreBatch(prs)
	Rank(items)

	return TriageResult{
		Items:       items,
		RoadmapHint: RoadmapHint(items),
		Backfill:    report,
	}, nil
}

// EnrichOne resolves, enriches, stores, and scores a single identifier. This
// is the direct resolution path: a malformed identifier is surfaced to the
// caller via ErrMalformedIdentifier.
func (s *TriageService) EnrichOne(ctx context.Context, identifier string) (TriageItem, error) {
	ref, err := Resolve(identifier)
	if err != nil {
		return TriageItem{}, err
	}

	pr := s.enricher.Enrich(ctx, ref)
	if err := s.prStore.Upsert(ctx, pr); err != nil {
		return TriageItem{}, fmt.Errorf("store pull request %s: %w", ref.ID(), err)
	}

	return s.scoreOne(pr), nil
}

func (s *TriageService) scoreBatch(prs []model.PullRequest) []TriageItem {
	items := make([]TriageItem, 0, len(prs))
	for _, pr := range prs {
		items = append(items, s.scoreOne(pr))
	}
	return items
}

func (s *TriageService) scoreOne(pr model.PullRequest) TriageItem {
	attention, factors, scores := s.engine.Score(pr)
	return TriageItem{
		PR:              pr,
		Attention:       attention,
		Factors:         factors,
		Scores:          scores,
		Recommendations: Recommendations(scores, pr.HasTests),
	}
}

// backfillJob is one deduplicated PR reference with every run that mentioned it.
type backfillJob struct {
	ref    model.PRRef
	runIDs []string
}

// backfill derives PR records from run references. References are
// deduplicated by resolved id within the pass (first occurrence wins; later
// runs are only linked, not re-enriched) and enriched concurrently. A
// failure on one reference never aborts the others; every outcome lands in
// the report.
func (s *TriageService) backfill(ctx context.Context) model.BackfillReport {
	var report model.BackfillReport

	runs, err := s.runs.ListRunsWithPR(ctx)
	if err != nil {
		s.logger.Warn("run source unavailable, skipping backfill", "error", err)
		return report
	}
	if len(runs) == 0 {
		return report
	}

	var order []string
	jobs := make(map[string]*backfillJob)
	for _, run := range runs {
		ref, err := Resolve(run.PRURL)
		if err != nil {
			s.logger.Warn("skipping unresolvable run reference", "run", run.ID, "pr_url", run.PRURL)
			report.Failed = append(report.Failed, model.BackfillFailure{Ref: run.PRURL, Reason: err.Error()})
			continue
		}

		id := ref.ID()
		if job, ok := jobs[id]; ok {
			job.runIDs = append(job.runIDs, run.ID)
			continue
		}
		jobs[id] = &backfillJob{ref: ref, runIDs: []string{run.ID}}
		order = append(order, id)
	}

	s.logger.Info("backfilling pull requests from runs", "runs", len(runs), "unique_prs", len(order))

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, backfillWorkers)
	)

	for _, id := range order {
		job := jobs[id]
		wg.Add(1)
		go func(id string, job *backfillJob) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			pr := s.enricher.Enrich(ctx, job.ref)
			if err := s.prStore.Upsert(ctx, pr); err != nil {
				s.logger.Warn("backfill write failed", "pr", id, "error", err)
				mu.Lock()
				report.Failed = append(report.Failed, model.BackfillFailure{Ref: id, Reason: fmt.Sprintf("store write: %v", err)})
				mu.Unlock()
				return
			}

			linked := 0
			for _, runID := range job.runIDs {
				if err := s.prStore.Link(ctx, runID, id); err != nil {
					s.logger.Warn("backfill link failed", "run", runID, "pr", id, "error", err)
					continue
				}
				linked++
			}

			mu.Lock()
			report.Succeeded = append(report.Succeeded, id)
			report.Linked += linked
			mu.Unlock()
		}(id, job)
	}

	wg.Wait()

	// Worker completion order is nondeterministic; sort for stable reports.
	sort.Strings(report.Succeeded)
	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].Ref < report.Failed[j].Ref })

	s.logger.Info("backfill complete",
		"succeeded", len(report.Succeeded),
		"failed", len(report.Failed),
		"links", report.Linked,
	)

	return report
}
