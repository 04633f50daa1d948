// Package docs defines the OpenAPI description served at /swagger.
package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
)

// ValidatePhotoRequest is the JSON body for base64 validation
type ValidatePhotoRequest struct {
	Image string `json:"image" example:"data:image/jpeg;base64,/9j/4AAQ..."`
	Mode  string `json:"mode" example:"full"`
}

// ValidationErrorData is one rule violation
type ValidationErrorData struct {
	Code    string `json:"code" example:"face_not_centered"`
	Message string `json:"message" example:"Face is not centered. Adjust camera position"`
}

// ValidationResultData is the validation outcome
type ValidationResultData struct {
	Status   string                    `json:"status" example:"fail"`
	Errors   []ValidationErrorData     `json:"errors"`
	Metadata map[string]map[string]any `json:"metadata,omitempty"`
}

// StreamResultData is the stream-mode outcome with guidance
type StreamResultData struct {
	Status    string                `json:"status" example:"success"`
	Errors    []ValidationErrorData `json:"errors"`
	Landmarks []PointData           `json:"landmarks,omitempty"`
	Guidance  *GuidanceData         `json:"guidance,omitempty"`
}

// PointData is a 2D pixel coordinate
type PointData struct {
	X float64 `json:"x" example:"421.5"`
	Y float64 `json:"y" example:"318.2"`
}

// GuidanceData is the live framing payload
type GuidanceData struct {
	FaceBBox      []float64   `json:"face_bbox" example:"120.0,80.0,400.0,520.0"`
	Pose          *PoseData   `json:"pose,omitempty"`
	Centering     *CenterData `json:"centering,omitempty"`
	FaceSizeRatio float64     `json:"face_size_ratio" example:"0.58"`
}

// PoseData is the head orientation in degrees
type PoseData struct {
	Yaw   float64 `json:"yaw" example:"2.1"`
	Pitch float64 `json:"pitch" example:"-1.4"`
	Roll  float64 `json:"roll" example:"0.3"`
}

// CenterData is the normalized center offset
type CenterData struct {
	OffsetX float64 `json:"offset_x" example:"0.02"`
	OffsetY float64 `json:"offset_y" example:"0.05"`
}

// ErrorResponse is the transport-level error envelope
type ErrorResponse struct {
	Code    string `json:"code" example:"MISSING_IMAGE"`
	Message string `json:"message" example:"Request must contain a non-empty image field"`
}

// HealthData is the health endpoint payload
type HealthData struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version,omitempty" example:"0.1.0"`
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Photogate API",
		Version:     "v1.0.0",
		Description: "Passport and ID portrait photo validation: format, quality, face, pose, geometry and background checks",
		Host:        "localhost:3000",
		Path:        "/",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/validate/photo - validate a base64 encoded photo
		endpoint.New(
			endpoint.POST,
			"/v1/validate/photo",
			endpoint.WithTags("Validation"),
			endpoint.WithSummary("Validate a base64 encoded photo"),
			endpoint.WithDescription("Runs the validation pipeline over a base64 encoded JPEG or PNG. Mode \"full\" runs every check; mode \"stream\" skips background analysis and returns landmarks plus framing guidance."),
			endpoint.WithBody(ValidatePhotoRequest{}),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ValidationResultData{}, "200", "Validation completed; status reports pass or fail"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "MISSING_IMAGE", Message: "Request must contain a non-empty image field"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "IMAGE_TOO_LARGE", Message: "Image exceeds the maximum allowed size"}, "413", "Payload Too Large"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// POST /v1/validate/upload - validate a multipart upload
		endpoint.New(
			endpoint.POST,
			"/v1/validate/upload",
			endpoint.WithTags("Validation"),
			endpoint.WithSummary("Validate an uploaded photo file"),
			endpoint.WithDescription("Alternative to the base64 endpoint: accepts a multipart form with the image under the \"file\" field and runs the full pipeline."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ValidationResultData{}, "200", "Validation completed; status reports pass or fail"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "MISSING_IMAGE", Message: "Request must contain a file field"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "IMAGE_TOO_LARGE", Message: "Image exceeds the maximum allowed size"}, "413", "Payload Too Large"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/stream - websocket live guidance
		endpoint.New(
			endpoint.GET,
			"/v1/stream",
			endpoint.WithTags("Validation"),
			endpoint.WithSummary("Live camera guidance over websocket"),
			endpoint.WithDescription("Upgrades to a websocket. Each text frame is a base64 image (bare or {\"image\": ...}); each reply is a stream-mode result with landmarks and guidance."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StreamResultData{}, "101", "Switching Protocols"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "HTTP_ERROR", Message: "Upgrade Required"}, "426", "Upgrade Required"),
			}),
		),

		// GET /health
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthData{}, "200", "Service is up"),
			}),
		),

		// GET /ready
		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthData{}, "200", "Dependencies are reachable"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(HealthData{Status: "not ready"}, "503", "Service Unavailable"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
