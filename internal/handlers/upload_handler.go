package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"jobfit/resume-matcher/internal/models"
	"jobfit/resume-matcher/internal/repositories"
	"jobfit/resume-matcher/internal/services"
)

type UploadHandler struct {
	candidateRepo  repositories.CandidateRepository
	storageService services.StorageService
	pdfParser      services.PDFParserService
	resumeParser   services.ResumeParserService
	maxFileSize    int64
}

func NewUploadHandler(
	candidateRepo repositories.CandidateRepository,
	storageService services.StorageService,
	pdfParser services.PDFParserService,
	resumeParser services.ResumeParserService,
	maxFileSize int64,
) *UploadHandler {
	return &UploadHandler{
		candidateRepo:  candidateRepo,
		storageService: storageService,
		pdfParser:      pdfParser,
		resumeParser:   resumeParser,
		maxFileSize:    maxFileSize,
	}
}

// HandleUploadResume handles POST /candidates. Saves the resume PDF, extracts
// its text and page count, parses structured facts and stores the profile.
// Passing candidate_id re-parses an existing profile in place: the facts are
// replaced, the identity is stable.
func (h *UploadHandler) HandleUploadResume(c *fiber.Ctx) error {
	file, err := c.FormFile("resume")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume file is required",
		})
	}

	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Resume file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	var existingID *uuid.UUID
	if idParam := c.FormValue("candidate_id"); idParam != "" {
		id, err := uuid.Parse(idParam)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid candidate_id format",
			})
		}
		if _, err := h.candidateRepo.FindByID(id); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Candidate not found",
			})
		}
		existingID = &id
	}

	filename, filePath, err := h.storageService.SaveResume(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to save resume file: %v", err),
		})
	}

	content, err := h.pdfParser.ExtractResume(filePath)
	if err != nil {
		h.storageService.DeleteFile(filename)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to extract resume text: %v", err),
		})
	}

	parsed, err := h.resumeParser.Parse(c.Context(), content.Text)
	if err != nil {
		log.Printf("❌ Resume parsing failed for %s: %v", file.Filename, err)
		h.storageService.DeleteFile(filename)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to parse resume content",
		})
	}

	candidate := &models.CandidateProfile{
		ID:              uuid.New(),
		Name:            parsed.Name,
		Email:           parsed.Email,
		Role:            parsed.Role,
		Location:        parsed.Location,
		Education:       parsed.Education,
		SourceType:      "upload",
		ExperienceYears: parsed.ExperienceYears,
		ResumePages:     content.PageCount,
		RawText:         content.Text,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := candidate.SetSkills(parsed.Skills); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to encode candidate skills",
		})
	}
	if err := candidate.SetCertifications(parsed.Certifications); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to encode candidate certifications",
		})
	}

	status := fiber.StatusCreated
	if existingID != nil {
		candidate.ID = *existingID
		if err := h.candidateRepo.ReplaceFacts(candidate); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update candidate profile",
			})
		}
		status = fiber.StatusOK
	} else {
		if err := h.candidateRepo.Create(candidate); err != nil {
			h.storageService.DeleteFile(filename)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to save candidate profile",
			})
		}
	}

	return c.Status(status).JSON(models.UploadResumeResponse{
		CandidateID:     candidate.ID.String(),
		Name:            candidate.Name,
		Role:            candidate.Role,
		Skills:          parsed.Skills,
		ExperienceYears: candidate.ExperienceYears,
		ResumePages:     candidate.ResumePages,
	})
}
