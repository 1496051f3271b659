package generation

import (
	"context"
	"log/slog"

	"github.com/museworks/muse-api/internal/domain"
)

// videoResolution is the fixed resolution requested for video jobs.
const videoResolution = "720p"

// Dispatcher routes a GenerationRequest to the correct provider call
// shape and returns a normalized result or a classified failure. It
// performs no retries: any provider failure passes through Classify with
// its content unmodified.
type Dispatcher struct {
	provider  Provider
	pipeline  *DocumentPipeline
	poller    *Poller
	artifacts ArtifactSaver
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher and its document pipeline and video
// poller collaborators over the same provider.
func NewDispatcher(
	provider Provider,
	artifacts ArtifactSaver,
	pollerConfig PollerConfig,
	logger *slog.Logger,
) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		provider:  provider,
		pipeline:  NewDocumentPipeline(provider, artifacts, logger),
		poller:    NewPoller(provider, artifacts, pollerConfig, logger),
		artifacts: artifacts,
		logger:    logger.With(slog.String("component", "dispatcher")),
	}
}

// Dispatch consumes the request exactly once and produces exactly one
// GenerationResult or one ClassifiedError.
func (d *Dispatcher) Dispatch(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, NewValidationError(err.Error())
	}

	log := d.logger.With(slog.String("mode", string(req.Mode)))
	log.InfoContext(ctx, "dispatching generation request",
		slog.Int("prompt_length", len(req.Prompt)),
		slog.Bool("use_search", req.UseSearch))

	switch req.Mode {
	case domain.ModeChat:
		return d.dispatchChat(ctx, req)
	case domain.ModeImage:
		return d.dispatchImage(ctx, req)
	case domain.ModeImageEdit, domain.ModeImageAnalyze:
		// Both need the source asset; fail locally before any network
		// call when it is missing.
		if req.Asset == nil {
			return nil, NewValidationError("an attached image is required for " + string(req.Mode))
		}
		if req.Mode == domain.ModeImageEdit {
			return d.dispatchImage(ctx, req)
		}
		return d.dispatchImageAnalyze(ctx, req)
	case domain.ModeDocument:
		return d.dispatchDocument(ctx, req)
	case domain.ModeVideo:
		return d.dispatchVideo(ctx, req)
	default:
		return nil, NewValidationError("unsupported generation mode: " + string(req.Mode))
	}
}

func (d *Dispatcher) dispatchChat(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error) {
	res, err := d.provider.GenerateText(ctx, TextRequest{
		Prompt:    req.Prompt,
		UseSearch: req.UseSearch,
	})
	if err != nil {
		return nil, Classify(err)
	}

	return &domain.GenerationResult{
		Mode:      req.Mode,
		Text:      res.Text,
		Grounding: res.Grounding,
	}, nil
}

func (d *Dispatcher) dispatchImage(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error) {
	blob, err := d.provider.GenerateImage(ctx, ImageRequest{
		Prompt:      req.Prompt,
		AspectRatio: req.AspectRatio,
		Asset:       req.Asset,
	})
	if err != nil {
		return nil, Classify(err)
	}

	ref, err := d.artifacts.Save(ctx, blob)
	if err != nil {
		return nil, Classify(err)
	}

	return &domain.GenerationResult{Mode: req.Mode, ImageRef: ref}, nil
}

func (d *Dispatcher) dispatchImageAnalyze(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = "Describe this image."
	}

	res, err := d.provider.GenerateText(ctx, TextRequest{
		Prompt: prompt,
		Asset:  req.Asset,
	})
	if err != nil {
		return nil, Classify(err)
	}

	return &domain.GenerationResult{Mode: req.Mode, Text: res.Text}, nil
}

func (d *Dispatcher) dispatchDocument(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error) {
	doc, err := d.pipeline.Generate(ctx, req)
	if err != nil {
		return nil, Classify(err)
	}

	return &domain.GenerationResult{Mode: req.Mode, Document: doc}, nil
}

func (d *Dispatcher) dispatchVideo(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error) {
	handle, err := d.provider.StartVideo(ctx, VideoRequest{
		Prompt:      req.Prompt,
		AspectRatio: req.AspectRatio,
		Resolution:  videoResolution,
		Asset:       req.Asset,
	})
	if err != nil {
		return nil, Classify(err)
	}

	ref, err := d.poller.Await(ctx, handle)
	if err != nil {
		return nil, Classify(err)
	}

	return &domain.GenerationResult{Mode: req.Mode, VideoRef: ref}, nil
}
