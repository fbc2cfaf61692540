package services

import (
	"strings"

	"jobfit/resume-matcher/internal/models"
)

// Traditional scoring weights: skill 40%, experience 30%, keyword 30%.
const (
	skillWeight      = 0.4
	experienceWeight = 0.3
	keywordWeight    = 0.3

	// neutralSubScore is used when a job states no skills or keywords at all.
	// Absence of stated requirements should neither penalize nor inflate.
	neutralSubScore = 70.0
)

// TraditionalScore computes the cheap deterministic 0-100 fit estimate used
// as the phase 1 pre-filter. Pure function, no I/O: identical inputs always
// produce identical output.
func TraditionalScore(facts *models.CandidateFacts, spec *models.RequirementSpec) float64 {
	skill := SkillMatchScore(facts.Skills, spec.RequiredSkills)
	experience := ExperienceMatchScore(facts.ExperienceYears, spec.MinExperienceYears)
	keyword := KeywordMatchScore(facts.RawText, spec.Keywords)

	total := skill*skillWeight + experience*experienceWeight + keyword*keywordWeight
	if total > 100 {
		return 100
	}
	if total < 0 {
		return 0
	}
	return total
}

// SkillMatchScore returns the percentage of required skills the candidate
// covers. A required skill matches on equality, substring either direction,
// or (for multi-word skills) at least half of its words appearing in one
// candidate skill.
func SkillMatchScore(candidateSkills, requiredSkills []string) float64 {
	if len(requiredSkills) == 0 {
		return neutralSubScore
	}

	candidate := cleanSkillList(candidateSkills)
	required := cleanSkillList(requiredSkills)
	if len(required) == 0 {
		return neutralSubScore
	}

	matched := 0
	for _, req := range required {
		if skillMatches(req, candidate) {
			matched++
		}
	}

	percentage := float64(matched) / float64(len(required)) * 100
	if percentage > 100 {
		return 100
	}
	return percentage
}

func skillMatches(required string, candidateSkills []string) bool {
	for _, skill := range candidateSkills {
		if required == skill || strings.Contains(skill, required) || strings.Contains(required, skill) {
			return true
		}
	}

	// Word overlap for multi-word skills, e.g. "palo alto threat protection"
	// matches "palo alto".
	if !strings.Contains(required, " ") {
		return false
	}
	reqWords := uniqueWords(required)
	if len(reqWords) < 2 {
		return false
	}
	threshold := len(reqWords) / 2
	if threshold < 1 {
		threshold = 1
	}
	for _, skill := range candidateSkills {
		skillWords := uniqueWords(skill)
		overlap := 0
		for word := range reqWords {
			if skillWords[word] {
				overlap++
			}
		}
		if overlap >= threshold {
			return true
		}
	}
	return false
}

// ExperienceMatchScore scores candidate experience against the required
// minimum. Candidates below the bar get linear partial credit with a floor of
// 20, so marginal candidates are not hard-zeroed before the deeper phase
// evaluates them.
func ExperienceMatchScore(candidateYears, requiredYears float64) float64 {
	if candidateYears < 0 {
		candidateYears = 0
	}
	if requiredYears <= 0 {
		return 100
	}
	if candidateYears >= requiredYears {
		return 100
	}
	return (candidateYears/requiredYears)*80 + 20
}

// KeywordMatchScore returns the percentage of JD keywords present in the
// resume text. Multi-word keywords match when all their significant
// (longer than 2 characters) words appear.
func KeywordMatchScore(resumeText string, keywords []string) float64 {
	if len(keywords) == 0 {
		return neutralSubScore
	}

	text := strings.ToLower(resumeText)
	matched := 0
	for _, keyword := range keywords {
		kw := strings.ToLower(strings.TrimSpace(keyword))
		if kw == "" {
			continue
		}

		if strings.Contains(text, kw) {
			matched++
			continue
		}
		if strings.Contains(kw, " ") && allSignificantWordsPresent(text, kw) {
			matched++
		}
	}

	percentage := float64(matched) / float64(len(keywords)) * 100
	if percentage > 100 {
		return 100
	}
	return percentage
}

func allSignificantWordsPresent(text, keyword string) bool {
	for _, word := range strings.Fields(keyword) {
		if len(word) <= 2 {
			continue
		}
		if !strings.Contains(text, word) {
			return false
		}
	}
	return true
}

func cleanSkillList(skills []string) []string {
	cleaned := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.ToLower(strings.TrimSpace(skill))
		if len(skill) > 1 {
			cleaned = append(cleaned, skill)
		}
	}
	return cleaned
}

func uniqueWords(s string) map[string]bool {
	words := make(map[string]bool)
	for _, word := range strings.Fields(s) {
		words[word] = true
	}
	return words
}
