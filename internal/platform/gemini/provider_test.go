package gemini

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/museworks/muse-api/internal/domain"
	"github.com/museworks/muse-api/internal/generation"
)

func validConfig() Config {
	return Config{
		APIKey:         "test-key",
		TextModel:      "gemini-2.5-flash",
		ImageModel:     "imagen-3.0-generate-002",
		ImageEditModel: "gemini-2.0-flash-preview-image-generation",
		VideoModel:     "veo-2.0-generate-001",
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validConfig().Validate())

	missingKey := validConfig()
	missingKey.APIKey = ""
	assert.Error(t, missingKey.Validate())

	missingModel := validConfig()
	missingModel.VideoModel = ""
	assert.Error(t, missingModel.Validate())
}

func TestImageGenConfig(t *testing.T) {
	t.Parallel()

	cfg := imageGenConfig("")
	assert.Equal(t, int32(1), cfg.NumberOfImages)
	assert.Equal(t, "image/png", cfg.OutputMIMEType)
	assert.Empty(t, cfg.AspectRatio)

	wide := imageGenConfig("16:9")
	assert.Equal(t, int32(1), wide.NumberOfImages)
	assert.Equal(t, "16:9", wide.AspectRatio)
}

func TestOperationToHandle(t *testing.T) {
	t.Parallel()

	t.Run("pending", func(t *testing.T) {
		t.Parallel()

		op := &genai.GenerateVideosOperation{Name: "operations/abc"}
		handle := operationToHandle(op)

		assert.Equal(t, "operations/abc", handle.Name)
		assert.False(t, handle.Done)
		assert.Empty(t, handle.ResultURI)
		assert.Same(t, op, handle.Raw, "polling needs the raw operation back")
	})

	t.Run("done with result", func(t *testing.T) {
		t.Parallel()

		op := &genai.GenerateVideosOperation{
			Name: "operations/abc",
			Done: true,
			Response: &genai.GenerateVideosResponse{
				GeneratedVideos: []*genai.GeneratedVideo{
					{Video: &genai.Video{URI: "https://example.test/video.mp4"}},
				},
			},
		}
		handle := operationToHandle(op)

		assert.True(t, handle.Done)
		assert.Equal(t, "https://example.test/video.mp4", handle.ResultURI)
		assert.Empty(t, handle.FailureMessage)
	})

	t.Run("done with error", func(t *testing.T) {
		t.Parallel()

		op := &genai.GenerateVideosOperation{
			Name:  "operations/abc",
			Done:  true,
			Error: map[string]any{"code": float64(3), "message": "prompt was blocked"},
		}
		handle := operationToHandle(op)

		assert.True(t, handle.Done)
		assert.Equal(t, "prompt was blocked", handle.FailureMessage)
		assert.Empty(t, handle.ResultURI)
	})
}

func TestOperationErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "quota exceeded",
		operationErrorMessage(map[string]any{"message": "quota exceeded"}))

	// A payload without a usable message still yields something readable.
	got := operationErrorMessage(map[string]any{"code": float64(13)})
	assert.Contains(t, got, "13")
}

func TestGroundingRefs(t *testing.T) {
	t.Parallel()

	assert.Nil(t, groundingRefs(nil))

	meta := &genai.GroundingMetadata{
		GroundingChunks: []*genai.GroundingChunk{
			{Web: &genai.GroundingChunkWeb{URI: "https://a.test", Title: "A"}},
			{Web: nil},
			{Web: &genai.GroundingChunkWeb{URI: "", Title: "empty"}},
			{Web: &genai.GroundingChunkWeb{URI: "https://b.test", Title: "B"}},
		},
	}

	refs := groundingRefs(meta)
	require.Len(t, refs, 2)
	assert.Equal(t, "https://a.test", refs[0].URI)
	assert.Equal(t, "B", refs[1].Title)
}

func TestTextResultFromResponse(t *testing.T) {
	t.Parallel()

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()
		_, err := textResultFromResponse(nil)
		assert.ErrorIs(t, err, generation.ErrMalformedResponse)
	})

	t.Run("no candidates", func(t *testing.T) {
		t.Parallel()
		_, err := textResultFromResponse(&genai.GenerateContentResponse{})
		assert.ErrorIs(t, err, generation.ErrMalformedResponse)
	})

	t.Run("safety block", func(t *testing.T) {
		t.Parallel()

		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
		}
		_, err := textResultFromResponse(resp)
		require.Error(t, err)
		assert.Equal(t, generation.KindContentBlocked, generation.Classify(err).Kind)
	})

	t.Run("text with grounding", func(t *testing.T) {
		t.Parallel()

		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: genai.NewContentFromParts(
					[]*genai.Part{genai.NewPartFromText("answer")}, genai.RoleModel),
				GroundingMetadata: &genai.GroundingMetadata{
					GroundingChunks: []*genai.GroundingChunk{
						{Web: &genai.GroundingChunkWeb{URI: "https://src.test", Title: "Source"}},
					},
				},
			}},
		}

		result, err := textResultFromResponse(resp)
		require.NoError(t, err)
		assert.Equal(t, "answer", result.Text)
		require.Len(t, result.Grounding, 1)
		assert.Equal(t, "https://src.test", result.Grounding[0].URI)
	})
}

func TestFetchAsset(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("video bytes"))
	}))
	defer srv.Close()

	p := &Provider{config: validConfig(), httpc: srv.Client(), logger: slog.Default()}

	blob, err := p.FetchAsset(context.Background(), srv.URL+"/download")
	require.NoError(t, err)
	assert.Equal(t, []byte("video bytes"), blob.Data)
	assert.Equal(t, "video/mp4", blob.MIMEType)
}

func TestFetchAsset_DefaultsMIMEType(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Suppress automatic content-type sniffing.
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte{0x00})
	}))
	defer srv.Close()

	p := &Provider{config: validConfig(), httpc: srv.Client(), logger: slog.Default()}

	blob, err := p.FetchAsset(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "video/mp4", blob.MIMEType)
}

func TestFetchAsset_NonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	p := &Provider{config: validConfig(), httpc: srv.Client(), logger: slog.Default()}

	_, err := p.FetchAsset(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestPollVideo_ForeignHandle(t *testing.T) {
	t.Parallel()

	p := &Provider{config: validConfig(), logger: slog.Default()}

	handle := &domain.OperationHandle{Name: "operations/foreign"}
	_, err := p.PollVideo(context.Background(), handle)
	assert.ErrorIs(t, err, generation.ErrMalformedResponse)
}
