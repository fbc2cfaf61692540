package models

type SubmitJobRequest struct {
	JobText string `json:"job_text" validate:"required"`
}

type SubmitJobResponse struct {
	JobID              string         `json:"job_id"`
	RequiredSkills     []string       `json:"required_skills"`
	Keywords           []string       `json:"keywords"`
	MinExperienceYears float64        `json:"min_experience_years"`
	JobLevel           string         `json:"job_level"`
	Weights            map[string]int `json:"weights"`
}

type AnalyzeRequest struct {
	MinScore float64  `json:"min_score"`
	TopN     int      `json:"top_n"`
	Sources  []string `json:"sources,omitempty"`
}

type AnalyzeResponse struct {
	JobID           string         `json:"job_id"`
	TotalCandidates int            `json:"total_candidates"`
	EligibleCount   int            `json:"eligible_count"`
	RelaxedFilter   bool           `json:"relaxed_filter"`
	MinScore        float64        `json:"min_score_threshold"`
	TopMatches      []MatchSummary `json:"top_matches"`
}

// MatchSummary is the API projection of a MatchResult. Method is only
// populated in the debug/audit view.
type MatchSummary struct {
	ResultID      string                  `json:"result_id"`
	CandidateID   string                  `json:"candidate_id"`
	CandidateName string                  `json:"candidate_name,omitempty"`
	OverallScore  float64                 `json:"overall_score"`
	RoleFit       string                  `json:"role_fit"`
	KeyStrengths  []string                `json:"key_strengths,omitempty"`
	KeyGaps       []string                `json:"key_gaps,omitempty"`
	Explanation   string                  `json:"explanation,omitempty"`
	Sections      map[string]SectionScore `json:"sections,omitempty"`
	Cached        bool                    `json:"cached,omitempty"`
	Method        string                  `json:"method,omitempty"`
}

type UploadResumeResponse struct {
	CandidateID     string   `json:"candidate_id"`
	Name            string   `json:"name"`
	Role            string   `json:"role"`
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experience_years"`
	ResumePages     int      `json:"resume_pages"`
}
