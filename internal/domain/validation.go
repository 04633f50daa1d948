package domain

// Mode selects which stage set the pipeline runs.
type Mode string

const (
	// ModeFull runs every check including background segmentation.
	ModeFull Mode = "full"
	// ModeStream runs the fast path used for live camera guidance.
	ModeStream Mode = "stream"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeFull || m == ModeStream
}

// Code identifies a single validation rule violation. Codes are the stable
// contract with clients and never change between releases.
type Code string

const (
	// Format
	CodeWrongAspectRatio  Code = "wrong_aspect_ratio"
	CodeResolutionTooLow  Code = "resolution_too_low"
	CodeUnsupportedFormat Code = "unsupported_file_format"
	CodeLowQuality        Code = "low_quality_or_too_compressed"

	// Quality
	CodeInsufficientLighting Code = "insufficient_lighting"
	CodeOverexposed          Code = "overexposed_or_too_bright"
	CodeStrongShadows        Code = "strong_shadows_on_face"
	CodeImageBlurry          Code = "image_blurry_or_out_of_focus"
	CodeLowContrast          Code = "low_contrast"

	// Face detection
	CodeNoFaceDetected Code = "no_face_detected"
	CodeMultipleFaces  Code = "more_than_one_person_in_photo"

	// Pose
	CodeHeadTilted      Code = "head_is_tilted"
	CodeFaceNotStraight Code = "face_not_looking_straight_at_camera"

	// Geometry
	CodeFaceTooSmall    Code = "face_too_small_in_frame"
	CodeFaceTooClose    Code = "face_too_close_or_cropped"
	CodeFaceNotCentered Code = "face_not_centered"
	CodeHairCoversFace  Code = "hair_covers_part_of_face"

	// Background
	CodeBackgroundNotUniform Code = "background_not_uniform"
	CodeExtraneousPeople     Code = "extraneous_people_in_background"
	CodeExtraneousObjects    Code = "extraneous_objects_in_background"

	// Infrastructure failures inside a stage surface as a single generic code
	// instead of crashing the request.
	CodeProcessingFailed Code = "processing_failed"
)

var defaultMessages = map[Code]string{
	CodeWrongAspectRatio:     "Image must have a 2:3 aspect ratio (portrait orientation)",
	CodeResolutionTooLow:     "Image resolution is too low. Minimum 600px required",
	CodeUnsupportedFormat:    "Only JPEG and PNG formats are supported",
	CodeLowQuality:           "Image quality is too low or heavily compressed",
	CodeInsufficientLighting: "Insufficient lighting. Please take photo in better lighting",
	CodeOverexposed:          "Image is overexposed or too bright",
	CodeStrongShadows:        "Strong shadows detected on face. Use even lighting",
	CodeImageBlurry:          "Image is blurry or out of focus",
	CodeLowContrast:          "Image has very low contrast",
	CodeNoFaceDetected:       "No face detected in the image",
	CodeMultipleFaces:        "More than one person detected in the photo",
	CodeHeadTilted:           "Head is tilted. Please keep your head straight",
	CodeFaceNotStraight:      "Please look straight at the camera",
	CodeFaceTooSmall:         "Face is too small in the frame. Move closer to the camera",
	CodeFaceTooClose:         "Face is too close or cropped. Move back slightly",
	CodeFaceNotCentered:      "Face is not centered. Adjust camera position",
	CodeHairCoversFace:       "Hair covers part of the face. Please move hair away from face",
	CodeBackgroundNotUniform: "Background is not uniform. Use a plain background",
	CodeExtraneousPeople:     "Additional people detected in background",
	CodeExtraneousObjects:    "Extraneous objects detected in background",
	CodeProcessingFailed:     "Photo could not be processed. Please try again",
}

// ValidationError is one rule violation. It is data, not a Go error: rule
// violations are expected business outcomes.
type ValidationError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// NewError builds a ValidationError with the default message for code.
func NewError(code Code) ValidationError {
	return ValidationError{Code: code, Message: defaultMessages[code]}
}

// NewErrorf builds a ValidationError with a custom message.
func NewErrorf(code Code, message string) ValidationError {
	return ValidationError{Code: code, Message: message}
}

// Pose is a head orientation estimate in degrees. Yaw is left/right turn,
// pitch is up/down tilt, roll is in-plane tilt.
type Pose struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`

	Rotation    [3]float64 `json:"rotation_vector"`
	Translation [3]float64 `json:"translation_vector"`
}

// Point is a 2D landmark in upright image pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Guidance is the stream-mode payload a client uses to render live framing
// overlays.
type Guidance struct {
	FaceBBox      *[4]float64 `json:"face_bbox,omitempty"` // x, y, w, h in pixels
	Pose          *Pose       `json:"pose,omitempty"`
	Centering     *Centering  `json:"centering,omitempty"`
	FaceSizeRatio *float64    `json:"face_size_ratio,omitempty"`
}

// Centering is the normalized offset of the face center from the image center.
type Centering struct {
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// Result is the only object exposed across the system boundary. It is built
// by the orchestrator and frozen before return.
type Result struct {
	Status    string                    `json:"status"` // "success" or "fail"
	Errors    []ValidationError         `json:"errors"`
	Metadata  map[string]map[string]any `json:"metadata,omitempty"`
	Landmarks []Point                   `json:"landmarks,omitempty"`
	Guidance  *Guidance                 `json:"guidance,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)
