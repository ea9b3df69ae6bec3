package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mgonzalezcanudas/print3dhood/internal/domain/model"
)

type stubUseCase struct {
	artifact *model.ModelArtifact
	preview  *model.PreviewResponse
	err      error
}

func (s *stubUseCase) Generate(ctx context.Context, req *model.ModelRequest) (*model.ModelArtifact, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.artifact, nil
}

func (s *stubUseCase) Preview(ctx context.Context, req *model.ModelRequest) (*model.PreviewResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.preview, nil
}

func newTestRouter(uc *stubUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewModelHandler(uc, zap.NewNop())
	router := gin.New()
	router.POST("/api/models", h.PostModel)
	router.POST("/api/models/preview", h.PostPreview)
	return router
}

const validBody = `{"latitude":35.6812,"longitude":139.7671,"radius_meters":250}`

func TestPostModelSuccess(t *testing.T) {
	artifact := &model.ModelArtifact{
		ID: "test-id",
		Metadata: model.ModelMetadata{
			RadiusMeters:  250,
			BuildingCount: 12,
			Layers:        []model.LayerInfo{{Name: model.LayerWater}},
		},
		Layers: []model.LayerBlob{{Name: model.LayerWater, Format: "stl", Data: []byte{1, 2, 3}}},
	}
	router := newTestRouter(&stubUseCase{artifact: artifact})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/models", strings.NewReader(validBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got model.ModelArtifact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "test-id", got.ID)
	assert.Equal(t, 12, got.Metadata.BuildingCount)
	require.Len(t, got.Layers, 1)
	assert.Equal(t, []byte{1, 2, 3}, got.Layers[0].Data)
}

func TestPostModelMalformedBody(t *testing.T) {
	router := newTestRouter(&stubUseCase{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/models", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostModelErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid request", model.ErrInvalidRequest, http.StatusBadRequest},
		{"empty result", model.ErrEmptyResult, http.StatusNotFound},
		{"too many features", model.ErrTooManyFeatures, http.StatusUnprocessableEntity},
		{"upstream unavailable", model.ErrUpstreamUnavailable, http.StatusServiceUnavailable},
		{"extrusion failure", model.ErrExtrusion, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubUseCase{err: tt.err})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/models", strings.NewReader(validBody))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestPostPreviewSuccess(t *testing.T) {
	preview := &model.PreviewResponse{
		Metadata: model.PreviewMetadata{RadiusMeters: 250, BuildingCount: 3},
		Previews: []model.PreviewLayer{{Name: model.LayerWater}},
	}
	router := newTestRouter(&stubUseCase{preview: preview})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/models/preview", strings.NewReader(validBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got model.PreviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 3, got.Metadata.BuildingCount)
	require.Len(t, got.Previews, 1)
}

func TestPostPreviewErrorMapping(t *testing.T) {
	router := newTestRouter(&stubUseCase{err: model.ErrEmptyResult})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/models/preview", strings.NewReader(validBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
