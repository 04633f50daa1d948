package facemesh

import "errors"

var (
	ErrMeshUnavailable = errors.New("facemesh sidecar unavailable")
	ErrInvalidResponse = errors.New("invalid response from facemesh sidecar")
)
