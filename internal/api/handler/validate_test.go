package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adastrum/photogate/internal/api/middleware"
	"github.com/adastrum/photogate/internal/domain"
)

type stubValidator struct {
	result *domain.Result
	err    error

	gotMode domain.Mode
	gotData []byte
}

func (s *stubValidator) Validate(_ context.Context, data []byte, mode domain.Mode) (*domain.Result, error) {
	s.gotMode = mode
	s.gotData = data
	return s.result, s.err
}

func (s *stubValidator) ValidateBase64(_ context.Context, payload string, mode domain.Mode) (*domain.Result, error) {
	s.gotMode = mode
	s.gotData = []byte(payload)
	return s.result, s.err
}

type stubAudit struct {
	records chan *domain.ValidationRecord
}

func (s *stubAudit) Create(_ context.Context, rec *domain.ValidationRecord) error {
	s.records <- rec
	return nil
}

func successResult() *domain.Result {
	return &domain.Result{
		Status: domain.StatusSuccess,
		Errors: []domain.ValidationError{},
		Metadata: map[string]map[string]any{
			"format": {"width": 600, "height": 900},
		},
	}
}

func newTestApp(v PhotoValidator, audit AuditRecorder) *fiber.App {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(logger)})

	h := NewValidateHandler(v, audit, logger)
	app.Post("/v1/validate/photo", h.ValidatePhoto)
	app.Post("/v1/validate/upload", h.ValidateUpload)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope.Error.Code
}

func TestValidatePhoto(t *testing.T) {
	stub := &stubValidator{result: successResult()}
	app := newTestApp(stub, nil)

	resp := postJSON(t, app, "/v1/validate/photo", ValidateRequest{Image: "aGVsbG8=", Mode: "stream"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result domain.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, domain.StatusSuccess, result.Status)
	assert.Equal(t, domain.ModeStream, stub.gotMode)
	assert.Equal(t, "aGVsbG8=", string(stub.gotData))
}

func TestValidatePhotoDefaultsToFullMode(t *testing.T) {
	stub := &stubValidator{result: successResult()}
	app := newTestApp(stub, nil)

	resp := postJSON(t, app, "/v1/validate/photo", ValidateRequest{Image: "aGVsbG8="})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.ModeFull, stub.gotMode)
}

func TestValidatePhotoRequestErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"missing image", ValidateRequest{Mode: "full"}, 422, "MISSING_IMAGE"},
		{"unknown mode", ValidateRequest{Image: "aGVsbG8=", Mode: "turbo"}, 422, "INVALID_MODE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&stubValidator{result: successResult()}, nil)

			resp := postJSON(t, app, "/v1/validate/photo", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, errorCode(t, resp))
		})
	}
}

func TestValidatePhotoMalformedBody(t *testing.T) {
	app := newTestApp(&stubValidator{result: successResult()}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/validate/photo", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "BAD_REQUEST", errorCode(t, resp))
}

func TestValidatePhotoPipelineErrors(t *testing.T) {
	t.Run("app error passes through", func(t *testing.T) {
		app := newTestApp(&stubValidator{err: domain.ErrImageTooLarge}, nil)

		resp := postJSON(t, app, "/v1/validate/photo", ValidateRequest{Image: "aGVsbG8="})
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
		assert.Equal(t, "IMAGE_TOO_LARGE", errorCode(t, resp))
	})

	t.Run("unknown error becomes internal", func(t *testing.T) {
		app := newTestApp(&stubValidator{err: errors.New("boom")}, nil)

		resp := postJSON(t, app, "/v1/validate/photo", ValidateRequest{Image: "aGVsbG8="})
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "INTERNAL_ERROR", errorCode(t, resp))
	})
}

func TestValidateUpload(t *testing.T) {
	stub := &stubValidator{result: successResult()}
	app := newTestApp(stub, nil)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "photo.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/validate/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.ModeFull, stub.gotMode, "uploads always run the full plan")
	assert.Equal(t, "fake image bytes", string(stub.gotData))
}

func TestValidateUploadMissingFile(t *testing.T) {
	app := newTestApp(&stubValidator{result: successResult()}, nil)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("other", "value"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/validate/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, 422, resp.StatusCode)
	assert.Equal(t, "MISSING_IMAGE", errorCode(t, resp))
}

func TestValidatePhotoRecordsAudit(t *testing.T) {
	audit := &stubAudit{records: make(chan *domain.ValidationRecord, 1)}
	app := newTestApp(&stubValidator{result: successResult()}, audit)

	resp := postJSON(t, app, "/v1/validate/photo", ValidateRequest{Image: "aGVsbG8=", Mode: "full"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	select {
	case rec := <-audit.records:
		assert.Equal(t, domain.ModeFull, rec.Mode)
		assert.Equal(t, domain.StatusSuccess, rec.Status)
		assert.Equal(t, 600, rec.Width)
		assert.Equal(t, 900, rec.Height)
	case <-time.After(2 * time.Second):
		t.Fatal("audit record was never written")
	}
}
