package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"

	"jobfit/resume-matcher/internal/models"
)

// minCategoryWeight is the residual weight for a category the JD barely
// mentions: weakly specified, but not absent.
const minCategoryWeight = 5

type RequirementExtractor interface {
	Extract(ctx context.Context, jobText string) (*models.RequirementSpec, error)
}

type requirementExtractor struct {
	reasoning     ReasoningService
	promptBuilder *PromptBuilder
	maxRetries    int
}

func NewRequirementExtractor(reasoning ReasoningService, maxRetries int) RequirementExtractor {
	return &requirementExtractor{
		reasoning:     reasoning,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
	}
}

// rawCategory is the wire shape of one category in the model's response.
// Unknown fields are ignored.
type rawCategory struct {
	Items         []string `json:"items"`
	Weight        float64  `json:"weight"`
	RequiredYears float64  `json:"required_years"`
	RoleLevel     string   `json:"role_level"`
}

// Extract decomposes job text into the fixed weighted category model.
// Returns an error wrapping ErrRequirementExtraction when the reasoning
// service is unavailable or returns malformed output; no partial requirement
// is ever produced.
func (e *requirementExtractor) Extract(ctx context.Context, jobText string) (*models.RequirementSpec, error) {
	if strings.TrimSpace(jobText) == "" {
		return nil, fmt.Errorf("%w: empty job text", ErrRequirementExtraction)
	}

	prompt := e.promptBuilder.BuildExtractionPrompt(jobText)
	response, err := e.reasoning.GenerateTextWithRetry(ctx, prompt, 0.2, e.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequirementExtraction, err)
	}

	var raw map[string]rawCategory
	if err := json.Unmarshal([]byte(extractJSON(response)), &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrRequirementExtraction, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty decomposition", ErrRequirementExtraction)
	}

	categories := buildCategories(raw)
	normalizeWeights(categories)

	spec := &models.RequirementSpec{Categories: categories}
	deriveFlatFields(spec)
	return spec, nil
}

// buildCategories maps the response onto the closed category set. Categories
// outside the set are dropped; missing ones get the minimum residual weight.
func buildCategories(raw map[string]rawCategory) map[string]models.CategoryRequirement {
	categories := make(map[string]models.CategoryRequirement, len(models.RequirementCategories))

	for _, name := range models.RequirementCategories {
		entry, ok := raw[name]
		weight := int(math.Round(entry.Weight))
		if !ok || weight < minCategoryWeight {
			weight = minCategoryWeight
		}

		category := models.CategoryRequirement{
			Items:  cleanItems(entry.Items),
			Weight: weight,
		}
		if name == models.CategoryExperienceSeniority {
			category.RequiredYears = entry.RequiredYears
			if category.RequiredYears < 0 {
				category.RequiredYears = 0
			}
			category.RoleLevel = strings.TrimSpace(entry.RoleLevel)
		}
		categories[name] = category
	}

	return categories
}

// normalizeWeights rescales category weights proportionally so they sum to
// exactly 100, absorbing the rounding drift into the largest category.
// A sum other than 100 from the model is recovered locally and logged, not
// surfaced as an error.
func normalizeWeights(categories map[string]models.CategoryRequirement) {
	sum := 0
	for _, category := range categories {
		sum += category.Weight
	}
	if sum == 100 || sum == 0 {
		return
	}

	log.Printf("⚠️  Extracted weights sum to %d, rescaling to 100", sum)

	scale := 100.0 / float64(sum)
	rescaled := 0
	for name, category := range categories {
		weight := int(math.Round(float64(category.Weight) * scale))
		if weight < minCategoryWeight {
			weight = minCategoryWeight
		}
		category.Weight = weight
		categories[name] = category
		rescaled += weight
	}

	if drift := 100 - rescaled; drift != 0 {
		largest := largestCategory(categories)
		category := categories[largest]
		category.Weight += drift
		if category.Weight < minCategoryWeight {
			category.Weight = minCategoryWeight
		}
		categories[largest] = category
	}
}

func largestCategory(categories map[string]models.CategoryRequirement) string {
	name := ""
	max := -1
	// Canonical order keeps the tie-break deterministic.
	for _, candidate := range models.RequirementCategories {
		if category, ok := categories[candidate]; ok && category.Weight > max {
			name = candidate
			max = category.Weight
		}
	}
	return name
}

// deriveFlatFields computes the legacy flat view consumers that do not
// understand categories rely on.
func deriveFlatFields(spec *models.RequirementSpec) {
	experience := spec.Categories[models.CategoryExperienceSeniority]
	spec.MinExperienceYears = experience.RequiredYears
	spec.JobLevel = experience.RoleLevel
	if spec.JobLevel == "" {
		spec.JobLevel = "Experienced"
	}

	for _, category := range []string{
		models.CategoryCoreTechnicalSkills,
		models.CategoryNetworkingProtocols,
		models.CategorySecurityTechnologies,
		models.CategoryCloudArchitecture,
	} {
		spec.RequiredSkills = append(spec.RequiredSkills, spec.Categories[category].Items...)
	}

	for _, category := range []string{
		models.CategoryComplianceGovernance,
		models.CategoryIncidentOperations,
	} {
		spec.Keywords = append(spec.Keywords, spec.Categories[category].Items...)
	}
}

func cleanItems(items []string) []string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			cleaned = append(cleaned, item)
		}
	}
	return cleaned
}

// extractJSON pulls a JSON object or array out of text that may wrap it in
// markdown or other formatting.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}
