package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/museworks/muse-api/internal/api"
	"github.com/museworks/muse-api/internal/api/shared"
	"github.com/museworks/muse-api/internal/domain"
	"github.com/museworks/muse-api/internal/store"
)

// fakeGenerationService implements api.GenerationService.
type fakeGenerationService struct {
	createFn func(ctx context.Context, userID uuid.UUID, req domain.GenerationRequest) (*domain.Generation, error)
	getFn    func(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*domain.Generation, error)
}

func (f *fakeGenerationService) CreateAndEnqueue(ctx context.Context, userID uuid.UUID, req domain.GenerationRequest) (*domain.Generation, error) {
	return f.createFn(ctx, userID, req)
}

func (f *fakeGenerationService) GetForUser(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*domain.Generation, error) {
	return f.getFn(ctx, id, userID)
}

func newGenerationRouter(service api.GenerationService) http.Handler {
	handler := api.NewGenerationHandler(service, nil)
	r := chi.NewRouter()
	r.Post("/api/generations", handler.CreateGeneration)
	r.Get("/api/generations/{id}", handler.GetGeneration)
	return r
}

// withUser injects an authenticated user ID the way the auth middleware
// would.
func withUser(r *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
	return r.WithContext(ctx)
}

func postJSON(t *testing.T, router http.Handler, userID uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/generations", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = withUser(req, userID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateGeneration_Accepted(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	service := &fakeGenerationService{
		createFn: func(_ context.Context, gotUser uuid.UUID, req domain.GenerationRequest) (*domain.Generation, error) {
			assert.Equal(t, userID, gotUser)
			assert.Equal(t, domain.ModeChat, req.Mode)
			return domain.NewGeneration(gotUser, req)
		},
	}
	router := newGenerationRouter(service)

	rec := postJSON(t, router, userID, `{"mode":"chat","prompt":"hello"}`)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp api.GenerationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "chat", resp.Mode)
	assert.NotEmpty(t, resp.ID)
}

func TestCreateGeneration_DecodesAsset(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	service := &fakeGenerationService{
		createFn: func(_ context.Context, gotUser uuid.UUID, req domain.GenerationRequest) (*domain.Generation, error) {
			require.NotNil(t, req.Asset)
			assert.Equal(t, []byte("picture"), req.Asset.Data)
			assert.Equal(t, "image/png", req.Asset.MIMEType)
			return domain.NewGeneration(gotUser, req)
		},
	}
	router := newGenerationRouter(service)

	// "cGljdHVyZQ==" is base64 for "picture".
	rec := postJSON(t, router, userID,
		`{"mode":"image_edit","prompt":"make it blue","asset_data":"cGljdHVyZQ==","asset_mime_type":"image/png"}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
}

func TestCreateGeneration_Unauthenticated(t *testing.T) {
	t.Parallel()

	router := newGenerationRouter(&fakeGenerationService{})

	req := httptest.NewRequest(http.MethodPost, "/api/generations",
		bytes.NewBufferString(`{"mode":"chat","prompt":"hello"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateGeneration_BadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"mode":`},
		{"unknown mode", `{"mode":"sculpture","prompt":"x"}`},
		{"missing mode", `{"prompt":"x"}`},
		{"invalid aspect ratio", `{"mode":"image","prompt":"x","aspect_ratio":"2:1"}`},
		{"asset without mime type", `{"mode":"image_edit","prompt":"x","asset_data":"cGljdHVyZQ=="}`},
		{"asset not base64", `{"mode":"image_edit","prompt":"x","asset_data":"%%%","asset_mime_type":"image/png"}`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router := newGenerationRouter(&fakeGenerationService{})
			rec := postJSON(t, router, uuid.New(), tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateGeneration_ServiceErrorMapsSafely(t *testing.T) {
	t.Parallel()

	service := &fakeGenerationService{
		createFn: func(_ context.Context, _ uuid.UUID, _ domain.GenerationRequest) (*domain.Generation, error) {
			return nil, domain.ErrEmptyPrompt
		},
	}
	router := newGenerationRouter(service)

	rec := postJSON(t, router, uuid.New(), `{"mode":"chat"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid request data", resp.Error)
}

func TestGetGeneration(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	gen, err := domain.NewGeneration(userID, domain.GenerationRequest{
		Mode:   domain.ModeChat,
		Prompt: "hello",
	})
	require.NoError(t, err)
	require.NoError(t, gen.UpdateStatus(domain.GenerationStatusCompleted))
	gen.Result = &domain.GenerationResult{Mode: domain.ModeChat, Text: "hi"}

	service := &fakeGenerationService{
		getFn: func(_ context.Context, id uuid.UUID, gotUser uuid.UUID) (*domain.Generation, error) {
			assert.Equal(t, gen.ID, id)
			assert.Equal(t, userID, gotUser)
			return gen, nil
		},
	}
	router := newGenerationRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/generations/"+gen.ID.String(), nil)
	req = withUser(req, userID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.GenerationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "hi", resp.Result.Text)
}

func TestGetGeneration_InvalidID(t *testing.T) {
	t.Parallel()

	router := newGenerationRouter(&fakeGenerationService{})

	req := httptest.NewRequest(http.MethodGet, "/api/generations/not-a-uuid", nil)
	req = withUser(req, uuid.New())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetGeneration_NotFound(t *testing.T) {
	t.Parallel()

	service := &fakeGenerationService{
		getFn: func(_ context.Context, _ uuid.UUID, _ uuid.UUID) (*domain.Generation, error) {
			return nil, store.ErrGenerationNotFound
		},
	}
	router := newGenerationRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/generations/"+uuid.NewString(), nil)
	req = withUser(req, uuid.New())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
