package services

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"jobfit/resume-matcher/internal/models"
)

// Match levels returned by the qualitative judge.
const (
	MatchHigh   = "HIGH"
	MatchMedium = "MEDIUM"
	MatchLow    = "LOW"
	MatchNo     = "NO"
	MatchNone   = "NONE"
)

// Ownership levels returned by the qualitative judge.
const (
	OwnershipLed         = "LED"
	OwnershipOwned       = "OWNED"
	OwnershipContributed = "CONTRIBUTED"
	OwnershipAssisted    = "ASSISTED"
	OwnershipNone        = "NONE"
)

type multiplierKey struct {
	MatchLevel string
	Ownership  string
}

// matchScoreMap maps (match level, ownership) to a score multiplier. These
// are hand-specified constants: the model reasons, this table decides.
// Numbers never come from the model.
var matchScoreMap = map[multiplierKey]float64{
	{MatchHigh, OwnershipLed}:           0.90,
	{MatchHigh, OwnershipOwned}:         0.85,
	{MatchHigh, OwnershipContributed}:   0.75,
	{MatchHigh, OwnershipAssisted}:      0.65,
	{MatchMedium, OwnershipLed}:         0.75,
	{MatchMedium, OwnershipOwned}:       0.70,
	{MatchMedium, OwnershipContributed}: 0.60,
	{MatchMedium, OwnershipAssisted}:    0.50,
	{MatchLow, OwnershipLed}:            0.55,
	{MatchLow, OwnershipOwned}:          0.50,
	{MatchLow, OwnershipContributed}:    0.40,
	{MatchLow, OwnershipAssisted}:       0.30,
	{MatchLow, OwnershipNone}:           0.20,
	{MatchNo, OwnershipNone}:            0.00,
	{MatchNone, OwnershipNone}:          0.00,
}

const (
	// defaultMultiplier covers combinations outside the table. Never an
	// error, never a silent zero.
	defaultMultiplier = 0.40

	// recencyFactor is the flat reduction for experience older than 5 years.
	recencyFactor = 0.85

	maxResumePages  = 4
	maxCertPenalty  = 3
	maxBonus        = 2
	maxKeyStrengths = 5
	maxKeyGaps      = 5
	maxWhyEntries   = 7

	strongFitThreshold  = 80
	partialFitThreshold = 60
)

// Keyword lists for the independent penalty/bonus heuristics. These scan the
// raw resume text, deliberately separate from the judge's own evidence.
var (
	offDomainKeywords = []string{"sales", "marketing", "hr", "finance", "accounting"}
	regulatedKeywords = []string{"banking", "finance", "healthcare", "fintech", "payment", "pci-dss", "sox", "hipaa"}
)

// CategoryJudgment is the judge's qualitative output for one category.
// It carries no numbers by construction; any numeric fields in the upstream
// response are simply not decoded.
type CategoryJudgment struct {
	MatchLevel string `json:"match_level"`
	Ownership  string `json:"ownership"`
	Evidence   string `json:"evidence"`
	Recent     *bool  `json:"recent,omitempty"`
}

// IsRecent treats an absent recency flag as recent.
func (j CategoryJudgment) IsRecent() bool {
	return j.Recent == nil || *j.Recent
}

// ScoreBreakdown is the full audit trail of one deterministic scoring run.
type ScoreBreakdown struct {
	OverallScore   float64
	BaseScore      float64
	RoleFit        string
	SectionScores  map[string]models.SectionScore
	Bonus          int
	BonusReasons   []string
	Penalty        int
	PenaltyReasons []string
	KeyStrengths   []string
	KeyGaps        []string
	WhyThisScore   []string
}

// ScoreDeterministic folds qualitative judgments, category weights and resume
// metadata into the final auditable score. Pure function: identical inputs
// always produce identical output, regardless of any non-determinism in the
// upstream reasoning call.
func ScoreDeterministic(judgments map[string]CategoryJudgment, spec *models.RequirementSpec, facts *models.CandidateFacts) *ScoreBreakdown {
	weights := spec.Weights()
	sections := make(map[string]models.SectionScore, len(judgments))
	baseScore := 0.0

	for category, judgment := range judgments {
		weight := weights[category]
		score := sectionScore(judgment, weight)

		if score > float64(weight) {
			log.Printf("🐛 Section score %.2f exceeds weight %d for category %q; clamping", score, weight, category)
			score = float64(weight)
		}

		sections[category] = models.SectionScore{
			Score:      score,
			Max:        weight,
			MatchLevel: normalizeLevel(judgment.MatchLevel),
			Ownership:  normalizeLevel(judgment.Ownership),
			Evidence:   judgment.Evidence,
			Recent:     judgment.IsRecent(),
		}
		baseScore += score
	}

	penalty, penaltyReasons := calculatePenalties(facts, spec)
	bonus, bonusReasons := calculateBonuses(facts, judgments)

	overall := math.Round(baseScore + float64(bonus) + float64(penalty))
	if overall > 100 || overall < 0 {
		log.Printf("🐛 Overall score %.0f out of [0,100]; clamping", overall)
	}
	overall = math.Max(0, math.Min(100, overall))

	breakdown := &ScoreBreakdown{
		OverallScore:   overall,
		BaseScore:      round2(baseScore),
		RoleFit:        roleFitLabel(overall),
		SectionScores:  sections,
		Bonus:          bonus,
		BonusReasons:   bonusReasons,
		Penalty:        penalty,
		PenaltyReasons: penaltyReasons,
	}
	breakdown.buildNarrative()

	return breakdown
}

func sectionScore(judgment CategoryJudgment, weight int) float64 {
	key := multiplierKey{
		MatchLevel: normalizeLevel(judgment.MatchLevel),
		Ownership:  normalizeLevel(judgment.Ownership),
	}
	multiplier, ok := matchScoreMap[key]
	if !ok {
		multiplier = defaultMultiplier
	}

	score := float64(weight) * multiplier
	if !judgment.IsRecent() {
		score *= recencyFactor
	}
	return round2(score)
}

func calculatePenalties(facts *models.CandidateFacts, spec *models.RequirementSpec) (int, []string) {
	penalty := 0
	var reasons []string

	if facts.ResumePages > maxResumePages {
		penalty -= 2
		reasons = append(reasons, fmt.Sprintf("Resume too long (%d pages > %d pages)", facts.ResumePages, maxResumePages))
	}

	missing := missingCertifications(facts.Certifications, spec.Categories[models.CategoryCertifications].Items)
	if len(missing) > 0 {
		deduction := len(missing)
		if deduction > maxCertPenalty {
			deduction = maxCertPenalty
		}
		penalty -= deduction
		shown := missing
		if len(shown) > 2 {
			shown = shown[:2]
		}
		reasons = append(reasons, fmt.Sprintf("Missing certifications: %s", strings.Join(shown, ", ")))
	}

	if careerDrift(facts.RawText, spec) {
		penalty -= 1
		reasons = append(reasons, "Career drift detected (irrelevant experience)")
	}

	return penalty, reasons
}

func missingCertifications(candidateCerts, requiredCerts []string) []string {
	var missing []string
	for _, required := range requiredCerts {
		req := strings.ToLower(strings.TrimSpace(required))
		if req == "" {
			continue
		}
		found := false
		for _, cert := range candidateCerts {
			held := strings.ToLower(strings.TrimSpace(cert))
			if held == "" {
				continue
			}
			if strings.Contains(held, req) || strings.Contains(req, held) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, req)
		}
	}
	return missing
}

// careerDrift flags resumes dominated by off-domain keywords with little
// presence of the JD's own domain vocabulary.
func careerDrift(rawText string, spec *models.RequirementSpec) bool {
	text := strings.ToLower(rawText)

	offDomain := 0
	for _, kw := range offDomainKeywords {
		if strings.Contains(text, kw) {
			offDomain++
		}
	}

	var domainKeywords []string
	for _, category := range []string{
		models.CategoryCoreTechnicalSkills,
		models.CategorySecurityTechnologies,
		models.CategoryNetworkingProtocols,
	} {
		for _, item := range spec.Categories[category].Items {
			domainKeywords = append(domainKeywords, strings.ToLower(item))
		}
	}
	if len(domainKeywords) > 10 {
		domainKeywords = domainKeywords[:10]
	}

	onDomain := 0
	for _, kw := range domainKeywords {
		if strings.Contains(text, kw) {
			onDomain++
		}
	}

	return offDomain > 3 && onDomain < 3
}

func calculateBonuses(facts *models.CandidateFacts, judgments map[string]CategoryJudgment) (int, []string) {
	bonus := 0
	var reasons []string

	text := strings.ToLower(facts.RawText)
	for _, kw := range regulatedKeywords {
		if strings.Contains(text, kw) {
			bonus++
			reasons = append(reasons, "Regulated industry experience (Banking/Finance/Healthcare)")
			break
		}
	}

	ledCount := 0
	for _, judgment := range judgments {
		if normalizeLevel(judgment.Ownership) == OwnershipLed {
			ledCount++
		}
	}
	if ledCount >= 3 {
		bonus++
		reasons = append(reasons, "Enterprise-scale leadership across multiple domains")
	}

	if bonus > maxBonus {
		bonus = maxBonus
	}
	return bonus, reasons
}

// buildNarrative derives key strengths, key gaps and the ordered
// "why this score" explanation from the section breakdown.
func (b *ScoreBreakdown) buildNarrative() {
	var strengths, gaps, why []string

	for _, category := range orderedCategories(b.SectionScores) {
		section := b.SectionScores[category]
		title := titleCase(category)

		switch section.MatchLevel {
		case MatchHigh, MatchMedium:
			if section.Score > 0 && section.Evidence != "" {
				strengths = append(strengths, fmt.Sprintf("%s: %s", title, section.Evidence))
			}
		case MatchLow, MatchNo, MatchNone:
			gaps = append(gaps, fmt.Sprintf("Limited %s", strings.ReplaceAll(category, "_", " ")))
		}

		if section.Score > 0 {
			evidence := section.Evidence
			if len(evidence) > 80 {
				evidence = evidence[:80]
			}
			why = append(why, fmt.Sprintf("%s: %s (%s) - %s", title, section.MatchLevel, section.Ownership, evidence))
		}
	}

	gaps = append(gaps, b.PenaltyReasons...)

	if b.Bonus > 0 {
		why = append(why, b.BonusReasons...)
	}
	if b.Penalty < 0 {
		for _, reason := range b.PenaltyReasons {
			why = append(why, fmt.Sprintf("Penalty: %s", reason))
		}
	}

	b.KeyStrengths = truncateList(strengths, maxKeyStrengths)
	b.KeyGaps = truncateList(gaps, maxKeyGaps)
	b.WhyThisScore = truncateList(why, maxWhyEntries)
}

// Explanation joins the why-this-score entries for storage.
func (b *ScoreBreakdown) Explanation() string {
	return strings.Join(b.WhyThisScore, " | ")
}

func roleFitLabel(overall float64) string {
	switch {
	case overall >= strongFitThreshold:
		return models.RoleFitStrong
	case overall >= partialFitThreshold:
		return models.RoleFitPartial
	default:
		return models.RoleFitWeak
	}
}

// orderedCategories returns category names in canonical order first, then any
// unknown categories alphabetically, so narratives are stable across runs.
func orderedCategories(sections map[string]models.SectionScore) []string {
	var ordered []string
	seen := make(map[string]bool, len(sections))
	for _, category := range models.RequirementCategories {
		if _, ok := sections[category]; ok {
			ordered = append(ordered, category)
			seen[category] = true
		}
	}

	var extra []string
	for category := range sections {
		if !seen[category] {
			extra = append(extra, category)
		}
	}
	sort.Strings(extra)
	return append(ordered, extra...)
}

func normalizeLevel(level string) string {
	return strings.ToUpper(strings.TrimSpace(level))
}

func titleCase(category string) string {
	words := strings.Split(strings.ReplaceAll(category, "_", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func truncateList(list []string, max int) []string {
	if len(list) > max {
		return list[:max]
	}
	return list
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
