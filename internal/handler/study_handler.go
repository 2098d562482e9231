package handler

import (
	"io"
	"strings"

	"studydesk/internal/dto"
	"studydesk/internal/logger"
	"studydesk/internal/middleware"
	"studydesk/internal/service"
	"studydesk/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StudyHandler handles HTTP requests for analysis, subjects and materials
type StudyHandler struct {
	studyService service.StudyService
	validator    *validation.Validator
}

// NewStudyHandler creates a new instance of StudyHandler
func NewStudyHandler(studyService service.StudyService, validator *validation.Validator) *StudyHandler {
	return &StudyHandler{
		studyService: studyService,
		validator:    validator,
	}
}

// AnalyzeText analyzes pasted or uploaded lecture content.
// @Summary Analyze lecture content
// @Description Generates a study guide (summary, key points, flashcards, quizzes) from lecture text. Accepts either a JSON body or a multipart file upload under the "file" field.
// @Tags analysis
// @Accept json
// @Accept mpfd
// @Produce json
// @Param request body dto.AnalyzeTextRequest false "Lecture content to analyze"
// @Success 200 {object} dto.AnalysisResponse
// @Failure 400 {object} middleware.ValidationErrorResponse "Invalid request"
// @Failure 502 {object} middleware.ErrorResponse "Analysis failed"
// @Failure 503 {object} middleware.ErrorResponse "AI service overloaded"
// @Router /analyze [post]
func (h *StudyHandler) AnalyzeText(c *fiber.Ctx) error {
	content, sourceLabel, err := h.readContent(c)
	if err != nil {
		return err
	}

	if errs := h.validator.ValidateAnalyzeTextRequest(content, sourceLabel); len(errs) > 0 {
		return errs
	}

	logger.Get().Info("Analysis requested",
		zap.String("source_label", sourceLabel),
		zap.Int("content_bytes", len(content)))

	response, err := h.studyService.AnalyzeText(c.Context(), content, sourceLabel)
	if err != nil {
		return err
	}
	return c.JSON(response)
}

// readContent extracts lecture content from either a multipart upload or a JSON body.
func (h *StudyHandler) readContent(c *fiber.Ctx) (content string, sourceLabel string, err error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fileHeader, ferr := c.FormFile("file")
		if ferr != nil {
			return "", "", fiber.NewError(fiber.StatusBadRequest, "Multipart request must include a 'file' field")
		}
		f, ferr := fileHeader.Open()
		if ferr != nil {
			return "", "", fiber.NewError(fiber.StatusBadRequest, "Failed to open uploaded file")
		}
		defer f.Close()
		data, ferr := io.ReadAll(f)
		if ferr != nil {
			return "", "", fiber.NewError(fiber.StatusBadRequest, "Failed to read uploaded file")
		}
		return string(data), fileHeader.Filename, nil
	}

	var req dto.AnalyzeTextRequest
	if err := c.BodyParser(&req); err != nil {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return req.Content, req.SourceLabel, nil
}

// AnalyzeURL analyzes a lecture video by its link.
// @Summary Analyze a lecture video link
// @Description Fetches the transcript of a YouTube video and generates a study guide from it.
// @Tags analysis
// @Accept json
// @Produce json
// @Param request body dto.AnalyzeURLRequest true "Video link to analyze"
// @Success 200 {object} dto.AnalysisResponse
// @Failure 400 {object} middleware.ValidationErrorResponse "Invalid request"
// @Failure 422 {object} middleware.ErrorResponse "Transcript unavailable"
// @Router /analyze/url [post]
func (h *StudyHandler) AnalyzeURL(c *fiber.Ctx) error {
	var req dto.AnalyzeURLRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if errs := h.validator.ValidateAnalyzeURLRequest(req.URL); len(errs) > 0 {
		return errs
	}

	logger.Get().Info("URL analysis requested", zap.String("url", req.URL))

	response, err := h.studyService.AnalyzeURL(c.Context(), req.URL)
	if err != nil {
		return err
	}
	return c.JSON(response)
}

// CreateSubject creates a new subject folder.
// @Summary Create a subject
// @Description Creates a new subject folder for organizing saved materials.
// @Tags subjects
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateSubjectRequest true "Subject to create"
// @Success 201 {object} dto.SubjectResponse
// @Failure 400 {object} middleware.ValidationErrorResponse "Invalid request"
// @Router /subjects [post]
func (h *StudyHandler) CreateSubject(c *fiber.Ctx) error {
	var req dto.CreateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if errs := h.validator.ValidateSubjectName(req.Name); len(errs) > 0 {
		return errs
	}

	response, err := h.studyService.CreateSubject(c.Context(), userID(c), req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}

// ListSubjects lists the authenticated user's subjects.
// @Summary List subjects
// @Description Lists the user's subject folders, newest first.
// @Tags subjects
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.SubjectListResponse
// @Router /subjects [get]
func (h *StudyHandler) ListSubjects(c *fiber.Ctx) error {
	response, err := h.studyService.ListSubjects(c.Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(response)
}

// RenameSubject renames a subject.
// @Summary Rename a subject
// @Tags subjects
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param request body dto.RenameSubjectRequest true "New subject name"
// @Success 200 {object} dto.SubjectResponse
// @Failure 404 {object} middleware.ErrorResponse "Subject not found"
// @Router /subjects/{id} [put]
func (h *StudyHandler) RenameSubject(c *fiber.Ctx) error {
	subjectID := c.Params("id")
	if errs := h.validator.ValidateID("id", subjectID); len(errs) > 0 {
		return errs
	}

	var req dto.RenameSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := h.validator.ValidateSubjectName(req.Name); len(errs) > 0 {
		return errs
	}

	response, err := h.studyService.RenameSubject(c.Context(), userID(c), subjectID, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(response)
}

// DeleteSubject deletes a subject and all of its materials.
// @Summary Delete a subject
// @Description Deletes a subject folder together with every material saved in it.
// @Tags subjects
// @Security ApiKeyAuth
// @Param id path string true "Subject ID"
// @Success 204 "No Content"
// @Failure 404 {object} middleware.ErrorResponse "Subject not found"
// @Router /subjects/{id} [delete]
func (h *StudyHandler) DeleteSubject(c *fiber.Ctx) error {
	subjectID := c.Params("id")
	if errs := h.validator.ValidateID("id", subjectID); len(errs) > 0 {
		return errs
	}

	if err := h.studyService.DeleteSubject(c.Context(), userID(c), subjectID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SaveMaterial saves an analysis result into a subject.
// @Summary Save a material
// @Description Saves an analysis result as a material inside a subject folder.
// @Tags materials
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.SaveMaterialRequest true "Material to save"
// @Success 201 {object} dto.MaterialResponse
// @Failure 400 {object} middleware.ValidationErrorResponse "Invalid request"
// @Failure 404 {object} middleware.ErrorResponse "Subject not found"
// @Router /materials [post]
func (h *StudyHandler) SaveMaterial(c *fiber.Ctx) error {
	var req dto.SaveMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if errs := h.validator.ValidateSaveMaterialRequest(req.SubjectID, req.SourceType, req.Analysis != nil); len(errs) > 0 {
		return errs
	}

	response, err := h.studyService.SaveMaterial(c.Context(), userID(c), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}

// ListMaterials lists the materials in a subject.
// @Summary List materials in a subject
// @Description Lists materials in a subject in their stored order, analyses omitted.
// @Tags materials
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Subject ID"
// @Success 200 {object} dto.MaterialListResponse
// @Failure 404 {object} middleware.ErrorResponse "Subject not found"
// @Router /subjects/{id}/materials [get]
func (h *StudyHandler) ListMaterials(c *fiber.Ctx) error {
	subjectID := c.Params("id")
	if errs := h.validator.ValidateID("id", subjectID); len(errs) > 0 {
		return errs
	}

	response, err := h.studyService.ListMaterials(c.Context(), userID(c), subjectID)
	if err != nil {
		return err
	}
	return c.JSON(response)
}

// GetMaterial retrieves a single material with its full analysis.
// @Summary Get a material
// @Tags materials
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} dto.MaterialResponse
// @Failure 404 {object} middleware.ErrorResponse "Material not found"
// @Router /materials/{id} [get]
func (h *StudyHandler) GetMaterial(c *fiber.Ctx) error {
	materialID := c.Params("id")
	if errs := h.validator.ValidateID("id", materialID); len(errs) > 0 {
		return errs
	}

	response, err := h.studyService.GetMaterial(c.Context(), userID(c), materialID)
	if err != nil {
		return err
	}
	return c.JSON(response)
}

// DeleteMaterial deletes a material.
// @Summary Delete a material
// @Tags materials
// @Security ApiKeyAuth
// @Param id path string true "Material ID"
// @Success 204 "No Content"
// @Failure 404 {object} middleware.ErrorResponse "Material not found"
// @Router /materials/{id} [delete]
func (h *StudyHandler) DeleteMaterial(c *fiber.Ctx) error {
	materialID := c.Params("id")
	if errs := h.validator.ValidateID("id", materialID); len(errs) > 0 {
		return errs
	}

	if err := h.studyService.DeleteMaterial(c.Context(), userID(c), materialID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MoveMaterial moves a material to another subject.
// @Summary Move a material
// @Description Moves a material into another subject. Moving to its current subject is a no-op.
// @Tags materials
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Material ID"
// @Param request body dto.MoveMaterialRequest true "Target subject"
// @Success 200 {object} dto.MaterialResponse
// @Failure 404 {object} middleware.ErrorResponse "Material or target subject not found"
// @Router /materials/{id}/move [post]
func (h *StudyHandler) MoveMaterial(c *fiber.Ctx) error {
	materialID := c.Params("id")
	if errs := h.validator.ValidateID("id", materialID); len(errs) > 0 {
		return errs
	}

	var req dto.MoveMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := h.validator.ValidateID("target_subject_id", req.TargetSubjectID); len(errs) > 0 {
		return errs
	}

	response, err := h.studyService.MoveMaterial(c.Context(), userID(c), materialID, req.TargetSubjectID)
	if err != nil {
		return err
	}
	return c.JSON(response)
}

// userID returns the authenticated user's ID set by the auth middleware.
func userID(c *fiber.Ctx) string {
	id, _ := c.Locals(middleware.UserIDKey).(string)
	return id
}
