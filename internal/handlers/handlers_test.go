package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfit/resume-matcher/internal/config"
	"jobfit/resume-matcher/internal/models"
	"jobfit/resume-matcher/internal/services"
)

type stubExtractor struct {
	spec *models.RequirementSpec
	err  error
}

func (s *stubExtractor) Extract(ctx context.Context, jobText string) (*models.RequirementSpec, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.spec, nil
}

type fakeJobRepo struct {
	jobs map[uuid.UUID]*models.JobRequirement
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uuid.UUID]*models.JobRequirement)}
}

func (f *fakeJobRepo) Create(job *models.JobRequirement) error {
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobRepo) FindByID(id uuid.UUID) (*models.JobRequirement, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, errors.New("job not found")
	}
	return job, nil
}

type fakeCandidateRepo struct {
	pool []models.CandidateProfile
}

func (f *fakeCandidateRepo) Create(candidate *models.CandidateProfile) error {
	f.pool = append(f.pool, *candidate)
	return nil
}

func (f *fakeCandidateRepo) FindByID(id uuid.UUID) (*models.CandidateProfile, error) {
	for i := range f.pool {
		if f.pool[i].ID == id {
			return &f.pool[i], nil
		}
	}
	return nil, errors.New("candidate not found")
}

func (f *fakeCandidateRepo) FindAll(sourceTypes []string) ([]models.CandidateProfile, error) {
	return f.pool, nil
}

func (f *fakeCandidateRepo) ReplaceFacts(candidate *models.CandidateProfile) error {
	return nil
}

type fakeMatchRepo struct {
	rows []models.MatchResult
}

func (f *fakeMatchRepo) Create(result *models.MatchResult) error {
	f.rows = append(f.rows, *result)
	return nil
}

func (f *fakeMatchRepo) FindByJobID(jobID uuid.UUID) ([]models.MatchResult, error) {
	var matches []models.MatchResult
	for _, row := range f.rows {
		if row.JobID == jobID {
			matches = append(matches, row)
		}
	}
	return matches, nil
}

func (f *fakeMatchRepo) FindLatestByJob(jobID uuid.UUID) (map[uuid.UUID]*models.MatchResult, error) {
	latest := make(map[uuid.UUID]*models.MatchResult)
	for i := range f.rows {
		if f.rows[i].JobID == jobID {
			row := f.rows[i]
			latest[row.CandidateID] = &row
		}
	}
	return latest, nil
}

type stubJudge struct{}

func (s *stubJudge) Judge(ctx context.Context, facts *models.CandidateFacts, spec *models.RequirementSpec) (map[string]services.CategoryJudgment, error) {
	return map[string]services.CategoryJudgment{
		models.CategoryCoreTechnicalSkills: {
			MatchLevel: services.MatchHigh,
			Ownership:  services.OwnershipOwned,
			Evidence:   "production firewall work",
		},
	}, nil
}

func testSpec() *models.RequirementSpec {
	return &models.RequirementSpec{
		Categories: map[string]models.CategoryRequirement{
			models.CategoryCoreTechnicalSkills: {Weight: 100, Items: []string{"Palo Alto", "SIEM"}},
		},
		RequiredSkills:     []string{"palo alto", "siem"},
		Keywords:           []string{"firewall"},
		MinExperienceYears: 5,
		JobLevel:           "Senior",
	}
}

func matchingDefaults() config.MatchingConfig {
	return config.MatchingConfig{
		JudgeConcurrency:    5,
		MinViableCandidates: 1,
		RelaxedTopK:         15,
		DefaultMinScore:     10,
		DefaultTopN:         10,
	}
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestHandleSubmitJob(t *testing.T) {
	jobRepo := newFakeJobRepo()
	handler := NewJobHandler(jobRepo, &stubExtractor{spec: testSpec()})

	app := fiber.New()
	app.Post("/jobs", handler.HandleSubmitJob)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/jobs", models.SubmitJobRequest{
		JobText: "Senior network security engineer with Palo Alto experience.",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody[models.SubmitJobResponse](t, resp)
	assert.NotEmpty(t, body.JobID)
	assert.Equal(t, "Senior", body.JobLevel)
	assert.Equal(t, 100, body.Weights[models.CategoryCoreTechnicalSkills])
	assert.Len(t, jobRepo.jobs, 1)
}

func TestHandleSubmitJobEmptyText(t *testing.T) {
	handler := NewJobHandler(newFakeJobRepo(), &stubExtractor{spec: testSpec()})

	app := fiber.New()
	app.Post("/jobs", handler.HandleSubmitJob)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/jobs", models.SubmitJobRequest{JobText: "   "}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleSubmitJobExtractionFailure(t *testing.T) {
	jobRepo := newFakeJobRepo()
	handler := NewJobHandler(jobRepo, &stubExtractor{
		err: fmt.Errorf("%w: upstream down", services.ErrRequirementExtraction),
	})

	app := fiber.New()
	app.Post("/jobs", handler.HandleSubmitJob)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/jobs", models.SubmitJobRequest{JobText: "some job"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	// Nothing is stored when extraction fails.
	assert.Empty(t, jobRepo.jobs)
}

func analyzeFixture(t *testing.T) (*fiber.App, uuid.UUID, *fakeMatchRepo) {
	t.Helper()

	job, err := models.NewJobRequirement("job text", testSpec())
	require.NoError(t, err)
	jobRepo := newFakeJobRepo()
	require.NoError(t, jobRepo.Create(job))

	candidate := models.CandidateProfile{
		ID:              uuid.New(),
		Name:            "Alice",
		SourceType:      "upload",
		ExperienceYears: 9,
		ResumePages:     2,
		RawText:         "Senior engineer. Palo Alto firewall and SIEM operations.",
	}
	require.NoError(t, candidate.SetSkills([]string{"palo alto", "siem"}))
	candidateRepo := &fakeCandidateRepo{pool: []models.CandidateProfile{candidate}}
	matchRepo := &fakeMatchRepo{}

	pipeline := services.NewMatchPipeline(candidateRepo, matchRepo, &stubJudge{}, 5, 1, 15)
	handler := NewAnalyzeHandler(jobRepo, pipeline, matchingDefaults())
	resultHandler := NewResultHandler(jobRepo, matchRepo)

	app := fiber.New()
	app.Post("/jobs/:id/analyze", handler.HandleAnalyze)
	app.Get("/jobs/:id/results", resultHandler.HandleGetResults)
	return app, job.ID, matchRepo
}

func TestHandleAnalyze(t *testing.T) {
	app, jobID, matchRepo := analyzeFixture(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/jobs/"+jobID.String()+"/analyze", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody[models.AnalyzeResponse](t, resp)
	assert.Equal(t, jobID.String(), body.JobID)
	assert.Equal(t, 1, body.TotalCandidates)
	require.Len(t, body.TopMatches, 1)

	match := body.TopMatches[0]
	assert.Equal(t, "Alice", match.CandidateName)
	assert.Equal(t, 85.0, match.OverallScore)
	assert.Equal(t, models.RoleFitStrong, match.RoleFit)
	// Method and cache flags stay internal outside the debug view.
	assert.Empty(t, match.Method)
	assert.False(t, match.Cached)

	assert.Len(t, matchRepo.rows, 1)
}

func TestHandleAnalyzeDebugView(t *testing.T) {
	app, jobID, _ := analyzeFixture(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/jobs/"+jobID.String()+"/analyze?debug=1", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody[models.AnalyzeResponse](t, resp)
	require.Len(t, body.TopMatches, 1)
	assert.Equal(t, models.MethodDeterministic, body.TopMatches[0].Method)
}

func TestHandleAnalyzeValidation(t *testing.T) {
	app, jobID, _ := analyzeFixture(t)

	t.Run("invalid job id", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/jobs/not-a-uuid/analyze", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown job id", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/jobs/"+uuid.NewString()+"/analyze", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("min_score out of range", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/jobs/"+jobID.String()+"/analyze", models.AnalyzeRequest{MinScore: 150}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandleGetResults(t *testing.T) {
	app, jobID, _ := analyzeFixture(t)

	// A fresh job has an empty, not missing, result list.
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/jobs/"+jobID.String()+"/results", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// After one analysis run the stored result is visible with its method.
	_, err = app.Test(jsonRequest(http.MethodPost, "/jobs/"+jobID.String()+"/analyze", nil), -1)
	require.NoError(t, err)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/jobs/"+jobID.String()+"/results", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		JobID   string                `json:"job_id"`
		Results []models.MatchSummary `json:"results"`
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &body))

	require.Len(t, body.Results, 1)
	assert.Equal(t, models.MethodDeterministic, body.Results[0].Method)
}

func TestHandleGetResultsUnknownJob(t *testing.T) {
	app, _, _ := analyzeFixture(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/jobs/"+uuid.NewString()+"/results", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
