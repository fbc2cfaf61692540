package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"

	"jobfit/resume-matcher/internal/models"
	"jobfit/resume-matcher/internal/repositories"
)

// AnalyzeParams tunes one matching run.
type AnalyzeParams struct {
	MinScore float64
	TopN     int
	Sources  []string
}

// RankedMatch pairs a match result with the per-run context the API needs.
type RankedMatch struct {
	Result        *models.MatchResult
	CandidateName string
	Cached        bool
}

// AnalysisReport is the outcome of one full pipeline run.
type AnalysisReport struct {
	JobID           uuid.UUID
	TotalCandidates int
	EligibleCount   int
	RelaxedFilter   bool
	Matches         []RankedMatch
}

// MatchPipeline orchestrates the two-phase scoring run: a cheap deterministic
// pre-filter over the whole candidate pool, then bounded-concurrency
// qualitative judging and deterministic scoring over the survivors, with
// cached results reused per (job, candidate).
type MatchPipeline struct {
	candidateRepo repositories.CandidateRepository
	matchRepo     repositories.MatchResultRepository
	judge         QualitativeJudge
	concurrency   int
	minViable     int
	relaxedTopK   int
}

func NewMatchPipeline(
	candidateRepo repositories.CandidateRepository,
	matchRepo repositories.MatchResultRepository,
	judge QualitativeJudge,
	concurrency int,
	minViable int,
	relaxedTopK int,
) *MatchPipeline {
	if concurrency < 1 {
		concurrency = 1
	}
	return &MatchPipeline{
		candidateRepo: candidateRepo,
		matchRepo:     matchRepo,
		judge:         judge,
		concurrency:   concurrency,
		minViable:     minViable,
		relaxedTopK:   relaxedTopK,
	}
}

type phase1Entry struct {
	facts *models.CandidateFacts
	score float64
}

type phase2Outcome struct {
	result *models.MatchResult
	name   string
	cached bool
}

// Run executes the pipeline for one job. A single candidate's failure never
// fails the batch: judge errors degrade that candidate to its traditional
// score, flagged with the fallback method.
func (p *MatchPipeline) Run(ctx context.Context, spec *models.RequirementSpec, params AnalyzeParams) (*AnalysisReport, error) {
	candidates, err := p.candidateRepo.FindAll(params.Sources)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate pool: %w", err)
	}

	// Phase 1: traditional scoring over the whole pool.
	scored := make([]phase1Entry, 0, len(candidates))
	for i := range candidates {
		facts, err := candidates[i].Facts()
		if err != nil {
			log.Printf("⚠️  Skipping candidate %s: %v", candidates[i].ID, err)
			continue
		}
		scored = append(scored, phase1Entry{facts: facts, score: TraditionalScore(facts, spec)})
	}

	eligible := make([]phase1Entry, 0, len(scored))
	for _, entry := range scored {
		if entry.score >= params.MinScore {
			eligible = append(eligible, entry)
		}
	}
	log.Printf("🔎 %d/%d candidates passed minimum score %.0f in phase 1", len(eligible), len(scored), params.MinScore)

	// Relaxation: a miscalibrated threshold on a sparse pool must not yield
	// an empty result set. Take the top K by traditional score instead.
	relaxed := false
	if len(eligible) < p.minViable && len(scored) > len(eligible) {
		relaxed = true
		eligible = append([]phase1Entry(nil), scored...)
		sort.SliceStable(eligible, func(i, j int) bool {
			return eligible[i].score > eligible[j].score
		})
		if len(eligible) > p.relaxedTopK {
			eligible = eligible[:p.relaxedTopK]
		}
		log.Printf("🔎 Phase 1 yielded too few results, relaxing filter to top %d candidates", len(eligible))
	}

	cached, err := p.matchRepo.FindLatestByJob(spec.JobID)
	if err != nil {
		// A cache read failure only costs recomputation.
		log.Printf("⚠️  Failed to load cached results: %v", err)
		cached = map[uuid.UUID]*models.MatchResult{}
	}

	// Phase 2: bounded-concurrency judging. Cache hits bypass the judge and
	// the permit pool entirely.
	permits := make(chan struct{}, p.concurrency)
	outcomes := make(chan phase2Outcome, len(eligible))
	var wg sync.WaitGroup

	for _, entry := range eligible {
		wg.Add(1)
		go func(entry phase1Entry) {
			defer wg.Done()
			if outcome, ok := p.scoreCandidate(ctx, spec, entry, cached, permits); ok {
				outcomes <- outcome
			}
		}(entry)
	}

	wg.Wait()
	close(outcomes)

	if ctx.Err() != nil {
		// Abandoned run: discard in-flight work; rows committed for other
		// candidates are already durable on their own.
		return nil, fmt.Errorf("analysis cancelled: %w", ctx.Err())
	}

	// Per-run dedup. Two results for the same candidate cannot happen given
	// the unique pool; if it does, the freshly computed one wins.
	byCandidate := make(map[uuid.UUID]phase2Outcome, len(eligible))
	for outcome := range outcomes {
		existing, ok := byCandidate[outcome.result.CandidateID]
		if ok {
			log.Printf("🐛 Duplicate match result for candidate %s in one run; keeping fresh result", outcome.result.CandidateID)
			if existing.cached && !outcome.cached {
				byCandidate[outcome.result.CandidateID] = outcome
			}
			continue
		}
		byCandidate[outcome.result.CandidateID] = outcome
	}

	matches := make([]RankedMatch, 0, len(byCandidate))
	for _, outcome := range byCandidate {
		if !outcome.cached {
			// Each candidate's persistence is an independent unit of work;
			// one failed write does not fail the batch or other rows.
			if err := p.matchRepo.Create(outcome.result); err != nil {
				log.Printf("⚠️  Failed to persist match result for candidate %s: %v", outcome.result.CandidateID, err)
			}
		}
		matches = append(matches, RankedMatch{
			Result:        outcome.result,
			CandidateName: outcome.name,
			Cached:        outcome.cached,
		})
	}

	// Final ranking is a post-hoc sort by score; phase 2 completion order is
	// deliberately meaningless.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Result.OverallScore != matches[j].Result.OverallScore {
			return matches[i].Result.OverallScore > matches[j].Result.OverallScore
		}
		return matches[i].Result.CandidateID.String() < matches[j].Result.CandidateID.String()
	})
	if params.TopN > 0 && len(matches) > params.TopN {
		matches = matches[:params.TopN]
	}

	return &AnalysisReport{
		JobID:           spec.JobID,
		TotalCandidates: len(candidates),
		EligibleCount:   len(eligible),
		RelaxedFilter:   relaxed,
		Matches:         matches,
	}, nil
}

// scoreCandidate resolves one candidate to a match result: cache hit, full
// judge + deterministic score, or traditional fallback. Returns false when
// the run was cancelled before this candidate was scored.
func (p *MatchPipeline) scoreCandidate(ctx context.Context, spec *models.RequirementSpec, entry phase1Entry, cached map[uuid.UUID]*models.MatchResult, permits chan struct{}) (phase2Outcome, bool) {
	facts := entry.facts

	// Fallback rows are not reused so a later run can retry the judge.
	if hit, ok := cached[facts.CandidateID]; ok && hit.Method != models.MethodTraditionalFallback {
		return phase2Outcome{result: hit, name: facts.Name, cached: true}, true
	}

	select {
	case permits <- struct{}{}:
	case <-ctx.Done():
		return phase2Outcome{}, false
	}

	judgments, err := p.judge.Judge(ctx, facts, spec)
	<-permits

	if ctx.Err() != nil {
		return phase2Outcome{}, false
	}

	if err != nil {
		log.Printf("⚠️  Judgment unavailable for candidate %s, using traditional fallback: %v", facts.CandidateID, err)
		result, buildErr := buildFallbackResult(spec, facts, entry.score)
		if buildErr != nil {
			log.Printf("❌ Failed to build fallback result for candidate %s: %v", facts.CandidateID, buildErr)
			return phase2Outcome{}, false
		}
		return phase2Outcome{result: result, name: facts.Name}, true
	}

	breakdown := ScoreDeterministic(judgments, spec, facts)
	result, err := buildDeterministicResult(spec, facts, breakdown)
	if err != nil {
		log.Printf("❌ Failed to build match result for candidate %s: %v", facts.CandidateID, err)
		return phase2Outcome{}, false
	}
	return phase2Outcome{result: result, name: facts.Name}, true
}

func buildDeterministicResult(spec *models.RequirementSpec, facts *models.CandidateFacts, breakdown *ScoreBreakdown) (*models.MatchResult, error) {
	result := &models.MatchResult{
		ID:           uuid.New(),
		JobID:        spec.JobID,
		CandidateID:  facts.CandidateID,
		OverallScore: breakdown.OverallScore,
		BaseScore:    breakdown.BaseScore,
		RoleFit:      breakdown.RoleFit,
		Method:       models.MethodDeterministic,
		Bonus:        breakdown.Bonus,
		Penalty:      breakdown.Penalty,
		Explanation:  breakdown.Explanation(),
	}
	if err := result.SetSections(breakdown.SectionScores); err != nil {
		return nil, err
	}
	if err := result.SetKeyStrengths(breakdown.KeyStrengths); err != nil {
		return nil, err
	}
	if err := result.SetKeyGaps(breakdown.KeyGaps); err != nil {
		return nil, err
	}
	return result, nil
}

func buildFallbackResult(spec *models.RequirementSpec, facts *models.CandidateFacts, traditionalScore float64) (*models.MatchResult, error) {
	score := round2(traditionalScore)
	result := &models.MatchResult{
		ID:           uuid.New(),
		JobID:        spec.JobID,
		CandidateID:  facts.CandidateID,
		OverallScore: score,
		BaseScore:    score,
		RoleFit:      roleFitLabel(score),
		Method:       models.MethodTraditionalFallback,
		Explanation:  "Qualitative judgment unavailable; traditional screening score used",
	}
	if err := result.SetSections(map[string]models.SectionScore{}); err != nil {
		return nil, err
	}
	if err := result.SetKeyStrengths(nil); err != nil {
		return nil, err
	}
	if err := result.SetKeyGaps(nil); err != nil {
		return nil, err
	}
	return result, nil
}
