package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/museworks/muse-api/internal/domain"
)

func newTestDispatcher(provider *fakeProvider, saver *fakeSaver) *Dispatcher {
	cfg := PollerConfig{Interval: 1, MaxAttempts: 5}
	return NewDispatcher(provider, saver, cfg, nil)
}

func TestDispatch_Chat(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		generateTextFn: func(_ context.Context, req TextRequest) (*TextResult, error) {
			assert.Equal(t, "tell me a story", req.Prompt)
			assert.False(t, req.UseSearch)
			return &TextResult{Text: "once upon a time"}, nil
		},
	}
	d := newTestDispatcher(provider, &fakeSaver{})

	result, err := d.Dispatch(context.Background(), &domain.GenerationRequest{
		Mode:   domain.ModeChat,
		Prompt: "tell me a story",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ModeChat, result.Mode)
	assert.Equal(t, "once upon a time", result.Text)
	require.NoError(t, result.Validate())
}

func TestDispatch_ChatWithSearchCarriesGrounding(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		generateTextFn: func(_ context.Context, req TextRequest) (*TextResult, error) {
			assert.True(t, req.UseSearch)
			return &TextResult{
				Text:      "grounded answer",
				Grounding: []domain.GroundingRef{{URI: "https://example.test", Title: "Example"}},
			}, nil
		},
	}
	d := newTestDispatcher(provider, &fakeSaver{})

	result, err := d.Dispatch(context.Background(), &domain.GenerationRequest{
		Mode:      domain.ModeChat,
		Prompt:    "what happened today",
		UseSearch: true,
	})

	require.NoError(t, err)
	require.Len(t, result.Grounding, 1)
	assert.Equal(t, "https://example.test", result.Grounding[0].URI)
}

func TestDispatch_ImageSavesArtifact(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	saver := &fakeSaver{}
	d := newTestDispatcher(provider, saver)

	result, err := d.Dispatch(context.Background(), &domain.GenerationRequest{
		Mode:        domain.ModeImage,
		Prompt:      "a lighthouse at dusk",
		AspectRatio: "16:9",
	})

	require.NoError(t, err)
	assert.Equal(t, "artifact://1", result.ImageRef)
	assert.Equal(t, 1, saver.count())
	require.NoError(t, result.Validate())
}

func TestDispatch_ImageEditWithoutAssetFailsLocally(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	d := newTestDispatcher(provider, &fakeSaver{})

	result, err := d.Dispatch(context.Background(), &domain.GenerationRequest{
		Mode:   domain.ModeImageEdit,
		Prompt: "make the sky purple",
	})

	require.Error(t, err)
	assert.Nil(t, result)

	var classified *ClassifiedError
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindValidation, classified.Kind)

	text, image, start, poll, fetch := provider.calls()
	assert.Zero(t, text+image+start+poll+fetch,
		"missing-asset validation must fire before any provider call")
}

func TestDispatch_ImageAnalyzeWithoutAssetFailsLocally(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	d := newTestDispatcher(provider, &fakeSaver{})

	_, err := d.Dispatch(context.Background(), &domain.GenerationRequest{
		Mode: domain.ModeImageAnalyze,
	})

	var classified *ClassifiedError
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindValidation, classified.Kind)

	text, _, _, _, _ := provider.calls()
	assert.Zero(t, text)
}

func TestDispatch_ImageAnalyzeDefaultsPrompt(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		generateTextFn: func(_ context.Context, req TextRequest) (*TextResult, error) {
			assert.Equal(t, "Describe this image.", req.Prompt)
			require.NotNil(t, req.Asset)
			return &TextResult{Text: "a photo of a cat"}, nil
		},
	}
	d := newTestDispatcher(provider, &fakeSaver{})

	result, err := d.Dispatch(context.Background(), &domain.GenerationRequest{
		Mode:  domain.ModeImageAnalyze,
		Asset: &domain.Attachment{Data: []byte{0xFF}, MIMEType: "image/jpeg"},
	})

	require.NoError(t, err)
	assert.Equal(t, "a photo of a cat", result.Text)
}

func TestDispatch_Video(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		startVideoFn: func(_ context.Context, req VideoRequest) (*domain.OperationHandle, error) {
			assert.Equal(t, "720p", req.Resolution)
			return &domain.OperationHandle{
				Name:      "operations/vid1",
				Done:      true,
				ResultURI: "https://example.test/vid1",
			}, nil
		},
	}
	saver := &fakeSaver{}
	d := newTestDispatcher(provider, saver)

	result, err := d.Dispatch(context.Background(), &domain.GenerationRequest{
		Mode:        domain.ModeVideo,
		Prompt:      "waves crashing on rocks",
		AspectRatio: "16:9",
	})

	require.NoError(t, err)
	assert.Equal(t, "artifact://1", result.VideoRef)
	require.NoError(t, result.Validate())
}

func TestDispatch_InvalidMode(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(&fakeProvider{}, &fakeSaver{})

	_, err := d.Dispatch(context.Background(), &domain.GenerationRequest{
		Mode:   domain.Mode("hologram"),
		Prompt: "anything",
	})

	var classified *ClassifiedError
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindValidation, classified.Kind)
}

func TestDispatch_EmptyPrompt(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(&fakeProvider{}, &fakeSaver{})

	_, err := d.Dispatch(context.Background(), &domain.GenerationRequest{
		Mode: domain.ModeChat,
	})

	var classified *ClassifiedError
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindValidation, classified.Kind)
}

func TestDispatch_ProviderErrorIsClassified(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		generateTextFn: func(_ context.Context, _ TextRequest) (*TextResult, error) {
			return nil, errors.New("googleapi: Error 429: Resource has been exhausted")
		},
	}
	d := newTestDispatcher(provider, &fakeSaver{})

	_, err := d.Dispatch(context.Background(), &domain.GenerationRequest{
		Mode:   domain.ModeChat,
		Prompt: "anything",
	})

	var classified *ClassifiedError
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindRateLimited, classified.Kind)
}

func TestDispatch_ArtifactSaveFailure(t *testing.T) {
	t.Parallel()

	saver := &fakeSaver{err: errors.New("storage unavailable")}
	d := newTestDispatcher(&fakeProvider{}, saver)

	_, err := d.Dispatch(context.Background(), &domain.GenerationRequest{
		Mode:   domain.ModeImage,
		Prompt: "a lighthouse",
	})

	var classified *ClassifiedError
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindUnknown, classified.Kind)
	assert.Equal(t, "storage unavailable", classified.Message)
}
