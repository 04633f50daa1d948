package facemesh

// DetectRequest is the request body for POST /v1/mesh
type DetectRequest struct {
	Img           string  `json:"img"` // base64-encoded image
	MaxFaces      int     `json:"max_faces"`
	MinConfidence float64 `json:"min_confidence"`
	StaticMode    bool    `json:"static_mode"`
}

// DetectResponse is the response body for POST /v1/mesh
type DetectResponse struct {
	Faces []DetectedFace `json:"faces"`
}

// DetectedFace is one face as reported by the sidecar
type DetectedFace struct {
	Confidence float64     `json:"confidence"`
	Box        RelBox      `json:"box"`
	Landmarks  []MeshPoint `json:"landmarks"`
}

// RelBox is a bounding box normalized to 0..1 of the image
type RelBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// MeshPoint is one normalized mesh landmark; z is relative to image width
type MeshPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}
