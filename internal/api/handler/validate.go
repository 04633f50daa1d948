package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/adastrum/photogate/internal/domain"
)

// PhotoValidator is the pipeline surface the handlers call.
type PhotoValidator interface {
	Validate(ctx context.Context, data []byte, mode domain.Mode) (*domain.Result, error)
	ValidateBase64(ctx context.Context, payload string, mode domain.Mode) (*domain.Result, error)
}

// AuditRecorder persists validation outcomes. A nil recorder disables the
// audit trail.
type AuditRecorder interface {
	Create(ctx context.Context, rec *domain.ValidationRecord) error
}

// ValidateHandler serves the photo validation endpoints.
type ValidateHandler struct {
	validator PhotoValidator
	audit     AuditRecorder
	logger    *slog.Logger
}

func NewValidateHandler(validator PhotoValidator, audit AuditRecorder, logger *slog.Logger) *ValidateHandler {
	return &ValidateHandler{
		validator: validator,
		audit:     audit,
		logger:    logger,
	}
}

// ValidateRequest is the JSON body of POST /v1/validate/photo.
type ValidateRequest struct {
	Image string `json:"image"`
	Mode  string `json:"mode"`
}

// ValidatePhoto POST /v1/validate/photo - validate a base64 encoded photo
func (h *ValidateHandler) ValidatePhoto(c *fiber.Ctx) error {
	var req ValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if req.Image == "" {
		return domain.ErrMissingImage
	}

	mode := domain.Mode(req.Mode)
	if req.Mode == "" {
		mode = domain.ModeFull
	}
	if !mode.Valid() {
		return domain.ErrInvalidMode
	}

	start := time.Now()
	result, err := h.validator.ValidateBase64(c.Context(), req.Image, mode)
	if err != nil {
		return mapPipelineError(err)
	}

	h.recordAudit(mode, result, time.Since(start))
	return c.JSON(result)
}

// ValidateUpload POST /v1/validate/upload - validate a multipart file upload
func (h *ValidateHandler) ValidateUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return domain.ErrMissingImage.WithError(err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	start := time.Now()
	result, err := h.validator.Validate(c.Context(), data, domain.ModeFull)
	if err != nil {
		return mapPipelineError(err)
	}

	h.recordAudit(domain.ModeFull, result, time.Since(start))
	return c.JSON(result)
}

// recordAudit persists the outcome asynchronously, best effort. A failed
// insert never fails the request.
func (h *ValidateHandler) recordAudit(mode domain.Mode, result *domain.Result, latency time.Duration) {
	if h.audit == nil {
		return
	}

	rec := domain.NewValidationRecord(mode, result, latency)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.audit.Create(ctx, rec); err != nil {
			h.logger.Warn("failed to record validation",
				slog.Any("error", err),
				slog.String("status", rec.Status),
			)
		}
	}()
}

// mapPipelineError keeps AppErrors as-is and wraps everything else, so the
// error middleware always has a status code to work with.
func mapPipelineError(err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return domain.ErrInternal.WithError(err)
}
