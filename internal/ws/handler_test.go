package ws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adastrum/photogate/internal/domain"
)

type stubValidator struct {
	result *domain.Result
	err    error

	gotImage string
	gotMode  domain.Mode
}

func (s *stubValidator) ValidateBase64(_ context.Context, payload string, mode domain.Mode) (*domain.Result, error) {
	s.gotImage = payload
	s.gotMode = mode
	return s.result, s.err
}

func streamResult() *domain.Result {
	ratio := 0.6
	return &domain.Result{
		Status:   domain.StatusSuccess,
		Errors:   []domain.ValidationError{},
		Guidance: &domain.Guidance{FaceSizeRatio: &ratio},
	}
}

func TestHandleFrameJSONEnvelope(t *testing.T) {
	stub := &stubValidator{result: streamResult()}

	reply := handleFrame(stub, []byte(`{"image":"aGVsbG8="}`))

	assert.Equal(t, "aGVsbG8=", stub.gotImage)
	assert.Equal(t, domain.ModeStream, stub.gotMode, "websocket frames always run the stream plan")

	var result domain.Result
	require.NoError(t, json.Unmarshal(reply, &result))
	assert.Equal(t, domain.StatusSuccess, result.Status)
	require.NotNil(t, result.Guidance)
}

func TestHandleFrameBarePayload(t *testing.T) {
	stub := &stubValidator{result: streamResult()}

	handleFrame(stub, []byte("aGVsbG8="))

	assert.Equal(t, "aGVsbG8=", stub.gotImage)
}

func TestHandleFrameValidationError(t *testing.T) {
	stub := &stubValidator{err: domain.ErrInvalidBase64}

	reply := handleFrame(stub, []byte("not base64 at all!!"))

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(reply, &envelope))
	assert.Equal(t, "INVALID_BASE64", envelope.Error.Code)
	assert.NotEmpty(t, envelope.Error.Message)
}

func TestHandleFrameUnknownError(t *testing.T) {
	stub := &stubValidator{err: errors.New("boom")}

	reply := handleFrame(stub, []byte("aGVsbG8="))

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(reply, &envelope))
	assert.Equal(t, "INTERNAL_ERROR", envelope.Error.Code)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Zero(t, r.Count())

	r.add(nil)
	assert.Equal(t, 1, r.Count())

	r.remove(nil)
	assert.Zero(t, r.Count())
}
