package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"ourxmas-backend/internal/deploy"
	"ourxmas-backend/internal/logger"
	"ourxmas-backend/internal/models"
	"ourxmas-backend/internal/services"
	"ourxmas-backend/internal/validator"
)

type GenerateHandler struct {
	generator      *services.GenerationService
	maxUploadBytes int64
	log            *logger.Logger
}

func NewGenerateHandler(generator *services.GenerationService, maxUploadBytes int64, log *logger.Logger) *GenerateHandler {
	return &GenerateHandler{
		generator:      generator,
		maxUploadBytes: maxUploadBytes,
		log:            log.With("component", "GenerateHandler"),
	}
}

// Validate godoc
// @Summary     Validate a generate form
// @Description Runs field validation and image normalization without checking payment or deploying
// @Tags        generate
// @Accept      multipart/form-data
// @Produce     json
// @Param       projectName formData string true  "Project name (letters and digits, max 63)"
// @Param       bodyImages  formData file   true  "5 to 15 PNG or JPEG images"
// @Param       youtubeUrl  formData string false "YouTube link"
// @Success     200 {object} models.ValidateResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/generate/validate [post]
func (h *GenerateHandler) Validate(c *gin.Context) {
	form, err := readForm(c, h.maxUploadBytes)
	if err != nil {
		h.writeFormError(c, err)
		return
	}

	_, err = h.generator.Validate(c.Request.Context(), form)
	var verr *validator.ValidationError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, models.ValidateResponse{Valid: true})
	case errors.As(err, &verr):
		c.JSON(http.StatusOK, models.ValidateResponse{Valid: false, Errors: verr.Errors})
	default:
		h.writeError(c, err)
	}
}

// Generate godoc
// @Summary     Generate and deploy an experience page
// @Description Validates the form, checks that the project was paid for, renders the page and deploys it.
// @Description A project can be deployed once; later calls return the existing URL with already_deployed.
// @Tags        generate
// @Accept      multipart/form-data
// @Produce     json
// @Param       projectName  formData string true  "Project name (letters and digits, max 63)"
// @Param       bodyImages   formData file   true  "5 to 15 PNG or JPEG images"
// @Param       music        formData file   false "MP3 soundtrack (max 10 MB)"
// @Param       youtubeUrl   formData string false "YouTube link"
// @Param       treeType     formData string false "Template style" default(tree1)
// @Param       mainTitle    formData string false "Headline"
// @Param       loveText     formData string false "Message"
// @Param       treeColor    formData string false "Tree colour"
// @Param       accentColor  formData string false "Accent colour"
// @Param       foliageCount formData int    false "Particle count" default(15000)
// @Param       deployTo     formData string false "s3 or local" default(s3)
// @Success     200 {object} models.GenerateResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     402 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/generate [post]
func (h *GenerateHandler) Generate(c *gin.Context) {
	form, err := readForm(c, h.maxUploadBytes)
	if err != nil {
		h.writeFormError(c, err)
		return
	}

	res, err := h.generator.Generate(c.Request.Context(), form)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.GenerateResponse{
		Success:          true,
		ProjectID:        res.ProjectID,
		PublicURL:        res.PublicURL,
		GenerationTimeMs: res.GenerationTime.Milliseconds(),
	})
}

func (h *GenerateHandler) writeFormError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, errBodyTooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	c.JSON(status, models.ErrorResponse{Error: "invalid_form", Message: err.Error()})
}

func (h *GenerateHandler) writeError(c *gin.Context, err error) {
	var (
		verr    *validator.ValidationError
		already *services.AlreadyDeployedError
		werr    *deploy.UpstreamWriteError
	)

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_failed",
			Message: "Validation failed",
			Errors:  verr.Errors,
		})
	case errors.Is(err, services.ErrPaymentRequired):
		c.JSON(http.StatusPaymentRequired, models.ErrorResponse{
			Error:   "payment_required",
			Message: "No payment found for this project. Please complete the payment first.",
		})
	case errors.As(err, &already):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "already_deployed",
			Message:   "This project has already been deployed",
			PublicURL: already.URL,
		})
	case errors.Is(err, deploy.ErrDeployerNotConfigured):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "deployer_not_configured",
			Message: "Object storage is not configured on this server",
		})
	case errors.Is(err, services.ErrDeploymentInProgress):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "deployment_in_progress",
			Message: "A deployment for this project is already running",
		})
	case errors.As(err, &werr):
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "upstream_write_failure",
			Message: "Failed to publish the project, please retry later",
		})
	default:
		h.log.Error("generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: "An unexpected error occurred",
		})
	}
}
