package services

import "errors"

var (
	// ErrRequirementExtraction means the reasoning service was unavailable or
	// returned malformed output during job submission. No requirement is
	// stored and no matching can proceed for that submission.
	ErrRequirementExtraction = errors.New("requirement extraction failed")

	// ErrJudgmentUnavailable means the qualitative judgment for one candidate
	// could not be obtained (timeout, malformed response, service down). The
	// pipeline falls back to the traditional score for that candidate.
	ErrJudgmentUnavailable = errors.New("qualitative judgment unavailable")
)
