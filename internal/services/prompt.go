package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"jobfit/resume-matcher/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildExtractionPrompt creates the JD decomposition prompt. The model must
// return a weighted category map only; it never sees a resume here.
func (pb *PromptBuilder) BuildExtractionPrompt(jobText string) string {
	if len(jobText) > 3500 {
		jobText = jobText[:3500]
	}

	return fmt.Sprintf(`You are an enterprise-grade Job Description (JD) Decomposition Engine.

Your ONLY task is to analyze a Job Description (JD) and convert it into a
structured, weighted requirement model suitable for strict resume matching.

You MUST NOT:
- Score resumes
- Mention candidates
- Infer skills not stated or strongly implied
- Add explanations outside the JSON output

You MUST:
- Decompose the JD into EXACTLY the categories listed below
- Assign weights based on importance implied by the JD
- Ensure total weight = 100
- Return VALID JSON ONLY (no markdown, no commentary)

MANDATORY JD CATEGORIES:
1. Experience & Seniority
2. Core Technical Skills
3. Networking & Protocols
4. Security Technologies
5. Cloud & Architecture
6. Incident & Operations
7. Compliance & Governance
8. Certifications

RULES:
- Prefer explicit requirements over nice-to-haves
- If a category is weakly mentioned, assign a lower weight (minimum 5)
- Do NOT invent certifications or tools
- Seniority must be inferred from role title and responsibilities
- Use concise, normalized skill names (e.g., "NGFW", "IDS/IPS", "BGP")

Return JSON in the following structure ONLY:

{
  "experience_seniority": {
    "required_years": <number>,
    "role_level": "<Engineer | Senior | Lead | Manager | Architect>",
    "weight": <number>
  },
  "core_technical_skills": { "items": ["<skill>"], "weight": <number> },
  "networking_protocols": { "items": ["<protocol>"], "weight": <number> },
  "security_technologies": { "items": ["<tool_or_tech>"], "weight": <number> },
  "cloud_architecture": { "items": ["<cloud_or_architecture>"], "weight": <number> },
  "incident_operations": { "items": ["<incident_or_ops_requirement>"], "weight": <number> },
  "compliance_governance": { "items": ["<standard_or_framework>"], "weight": <number> },
  "certifications": { "items": ["<certification>"], "weight": <number> }
}

Analyze this job description:

%s`, jobText)
}

// BuildJudgmentPrompt creates the qualitative judgment prompt for one
// candidate against one requirement spec. The model is explicitly forbidden
// from producing numbers; the deterministic scorer owns all math.
func (pb *PromptBuilder) BuildJudgmentPrompt(facts *models.CandidateFacts, spec *models.RequirementSpec) string {
	categoriesJSON, err := json.MarshalIndent(spec.Categories, "", "  ")
	if err != nil {
		categoriesJSON = []byte("{}")
	}

	skills := facts.Skills
	if len(skills) > 20 {
		skills = skills[:20]
	}

	rawText := facts.RawText
	if len(rawText) > 3500 {
		rawText = rawText[:3500]
	}

	return fmt.Sprintf(`You are an enterprise-grade Resume Analysis Engine.

Your task is to provide QUALITATIVE JUDGMENTS ONLY for each JD category.

DO NOT:
- Return numeric scores
- Return percentages
- Calculate final scores
- Apply penalties or bonuses

DO:
- Assess match level (HIGH, MEDIUM, LOW, NO)
- Assess ownership level (LED, OWNED, CONTRIBUTED, ASSISTED, NONE)
- Provide evidence from resume
- Indicate if experience is recent (last 5 years)

MATCH LEVEL DEFINITIONS:
- HIGH: Candidate has deep, proven expertise with strong evidence
- MEDIUM: Candidate has relevant experience but limited depth
- LOW: Candidate has minimal or tangential experience
- NO: No evidence of this skill/experience

OWNERSHIP LEVEL DEFINITIONS:
- LED: Led teams, projects, or initiatives
- OWNED: Owned outcomes, systems, or processes
- CONTRIBUTED: Contributed to team efforts
- ASSISTED: Assisted or supported
- NONE: No evidence

STRICT RULES:
- Prioritize recent experience (last 5 years)
- Look for ownership verbs over participation verbs
- Require explicit evidence, not assumptions
- Be brutally honest

For EACH JD category, return an object with fields:
"match_level", "ownership", "evidence", "recent" (true|false).
Return ONE JSON object keyed by the category names below. JSON ONLY.

[JD REQUIREMENTS BY CATEGORY]
%s

[CANDIDATE RESUME]
Name: %s
Current Role: %s
Total Experience: %.1f years
Skills: %s
Certifications: %s

Resume Text (Recent Experience):
%s`,
		string(categoriesJSON),
		facts.Name,
		facts.Role,
		facts.ExperienceYears,
		strings.Join(skills, ", "),
		strings.Join(facts.Certifications, ", "),
		rawText)
}

// BuildResumeParsePrompt creates the structured resume extraction prompt.
func (pb *PromptBuilder) BuildResumeParsePrompt(resumeText string) string {
	if len(resumeText) > 4000 {
		resumeText = resumeText[:4000]
	}

	return fmt.Sprintf(`You are an expert resume parser and HR analyst.
Extract structured information from resumes with high accuracy.
NEVER hallucinate or invent data. If information is not present, use "Not mentioned" for strings, 0.0 for numbers, or empty arrays.
Return data as valid JSON only, no additional text.

Extract Resume Data (JSON only):
%s

Fields:
"name",
"email",
"role",
"location",
"education",
"experience_years" (float),
"skills" (list),
"certifications" (list)`, resumeText)
}
