// Package pipeline orchestrates the validation stages: a fixed plan per
// mode, fatal-face gating, concurrent background analysis and result
// assembly. The pipeline is built once at startup and shared by every
// request.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/adastrum/photogate/internal/config"
	"github.com/adastrum/photogate/internal/domain"
	"github.com/adastrum/photogate/internal/imaging"
	"github.com/adastrum/photogate/internal/models"
	"github.com/adastrum/photogate/internal/validator"
)

// stageOrder fixes how errors and metadata are listed in results,
// independent of execution interleaving.
var stageOrder = []string{"format", "quality", "face", "pose", "geometry", "background"}

type Pipeline struct {
	logger *slog.Logger

	format     validator.Stage
	quality    validator.Stage
	face       validator.Stage
	pose       validator.Stage
	geometry   validator.Stage
	background validator.Stage

	// admission bounds concurrent validations; nil means unbounded.
	admission chan struct{}

	inferenceTimeout time.Duration
	maxImageSize     int
}

func New(cfg *config.Config, registry *models.Registry, logger *slog.Logger) *Pipeline {
	p := &Pipeline{
		logger:           logger,
		format:           validator.NewFormatStage(&cfg.Checks),
		quality:          validator.NewQualityStage(&cfg.Checks),
		face:             validator.NewFaceStage(registry.Detector, &cfg.Checks),
		pose:             validator.NewPoseStage(&cfg.Checks),
		geometry:         validator.NewGeometryStage(&cfg.Checks),
		background:       validator.NewBackgroundStage(registry.Segmenter, &cfg.Checks),
		inferenceTimeout: cfg.InferenceTimeout,
		maxImageSize:     cfg.MaxImageSize,
	}
	if cfg.MaxConcurrency > 0 {
		p.admission = make(chan struct{}, cfg.MaxConcurrency)
	}
	return p
}

// ValidateBase64 decodes a tolerant base64 payload and validates it.
func (p *Pipeline) ValidateBase64(ctx context.Context, payload string, mode domain.Mode) (*domain.Result, error) {
	data, err := imaging.DecodeBase64(payload)
	if err != nil {
		return nil, domain.ErrInvalidBase64.WithError(err)
	}
	return p.Validate(ctx, data, mode)
}

// Validate runs the stage plan for mode over the encoded image and always
// returns an assembled result; the error return covers only boundary
// conditions (bad mode, oversized payload, cancelled admission).
func (p *Pipeline) Validate(ctx context.Context, data []byte, mode domain.Mode) (*domain.Result, error) {
	if !mode.Valid() {
		return nil, domain.ErrInvalidMode
	}
	if len(data) > p.maxImageSize {
		return nil, domain.ErrImageTooLarge
	}

	if err := p.admit(ctx); err != nil {
		return nil, err
	}
	defer p.release()

	start := time.Now()
	result := p.run(ctx, data, mode)
	p.logger.Debug("validation finished",
		slog.String("mode", string(mode)),
		slog.String("status", result.Status),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, data []byte, mode domain.Mode) *domain.Result {
	frame, err := imaging.Decode(data)
	if err != nil {
		return decodeFailure(err)
	}

	req := &validator.Request{Mode: mode, Raw: data, Frame: frame}
	reports := make(map[string]validator.Report, len(stageOrder))

	reports["format"] = p.runStage(ctx, p.format, req)
	reports["quality"] = p.runStage(ctx, p.quality, req)

	// Background has no dependency on the face-derived stages, so in full
	// mode it runs alongside them.
	var backgroundDone chan validator.Report
	if mode == domain.ModeFull {
		backgroundDone = make(chan validator.Report, 1)
		go func() {
			backgroundDone <- p.runInferenceStage(ctx, p.background, req)
		}()
	}

	reports["face"] = p.runInferenceStage(ctx, p.face, req)

	// Zero or multiple faces leaves nothing for pose and geometry to work
	// on; background still completes in full mode.
	if req.Face != nil {
		reports["pose"] = p.runStage(ctx, p.pose, req)
		reports["geometry"] = p.runStage(ctx, p.geometry, req)
	}

	if backgroundDone != nil {
		reports["background"] = <-backgroundDone
	}

	return assemble(req, reports)
}

// runInferenceStage bounds stages that call an inference backend with the
// configured timeout.
func (p *Pipeline) runInferenceStage(ctx context.Context, st validator.Stage, req *validator.Request) validator.Report {
	ctx, cancel := context.WithTimeout(ctx, p.inferenceTimeout)
	defer cancel()
	return p.runStage(ctx, st, req)
}

// runStage converts stage errors and panics into the generic failure code.
// A stage can degrade a result but never abort the request.
func (p *Pipeline) runStage(ctx context.Context, st validator.Stage, req *validator.Request) (report validator.Report) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("stage panicked",
				slog.String("stage", st.Name()),
				slog.Any("panic", r))
			report = failedReport()
		}
	}()

	report, err := st.Run(ctx, req)
	if err != nil {
		p.logger.Warn("stage failed",
			slog.String("stage", st.Name()),
			slog.String("error", err.Error()))
		return failedReport()
	}
	return report
}

func (p *Pipeline) admit(ctx context.Context) error {
	if p.admission == nil {
		return nil
	}
	select {
	case p.admission <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) release() {
	if p.admission != nil {
		<-p.admission
	}
}

func failedReport() validator.Report {
	return validator.Report{
		Errors:   []domain.ValidationError{domain.NewError(domain.CodeProcessingFailed)},
		Metadata: map[string]any{"stage_failed": true},
	}
}

func decodeFailure(err error) *domain.Result {
	msg := "Only JPEG and PNG formats are supported"
	if errors.Is(err, imaging.ErrCorruptImage) {
		msg = "Image data is corrupt or truncated"
	}
	return &domain.Result{
		Status: domain.StatusFail,
		Errors: []domain.ValidationError{
			domain.NewErrorf(domain.CodeUnsupportedFormat, msg),
		},
		Metadata: map[string]map[string]any{},
	}
}

// assemble freezes the per-stage reports into the wire result. Errors keep
// the fixed stage order regardless of how stages actually interleaved.
func assemble(req *validator.Request, reports map[string]validator.Report) *domain.Result {
	result := &domain.Result{
		Status:   domain.StatusSuccess,
		Errors:   []domain.ValidationError{},
		Metadata: make(map[string]map[string]any, len(reports)),
	}

	for _, name := range stageOrder {
		report, ok := reports[name]
		if !ok {
			continue
		}
		result.Errors = append(result.Errors, report.Errors...)
		result.Metadata[name] = report.Metadata
	}

	if len(result.Errors) > 0 {
		result.Status = domain.StatusFail
	}

	if req.Mode == domain.ModeStream {
		attachGuidance(result, req)
	}
	return result
}

// attachGuidance adds the live-framing payload stream clients render:
// landmarks, bounding box, pose and centering deltas.
func attachGuidance(result *domain.Result, req *validator.Request) {
	face := req.Face
	if face == nil {
		return
	}

	landmarks := make([]domain.Point, 0, len(face.Landmarks))
	for i := range face.Landmarks {
		if p, ok := face.Landmark(i); ok {
			landmarks = append(landmarks, p)
		}
	}
	result.Landmarks = landmarks

	bbox := [4]float64{face.BBox.X, face.BBox.Y, face.BBox.W, face.BBox.H}
	ratio := face.AreaRatio(req.Frame)
	centering := face.CenterOffset(req.Frame)
	result.Guidance = &domain.Guidance{
		FaceBBox:      &bbox,
		Pose:          req.Pose,
		Centering:     &centering,
		FaceSizeRatio: &ratio,
	}
}
