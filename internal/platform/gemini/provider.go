package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"google.golang.org/genai"

	"github.com/museworks/muse-api/internal/domain"
	"github.com/museworks/muse-api/internal/generation"
)

// Config holds the provider-specific settings: the opaque credential and
// the model selectors for each call shape.
type Config struct {
	APIKey         string
	TextModel      string
	ImageModel     string
	ImageEditModel string
	VideoModel     string
}

// Validate checks that all required settings are present.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("gemini API key cannot be empty")
	}
	if c.TextModel == "" || c.ImageModel == "" || c.ImageEditModel == "" || c.VideoModel == "" {
		return errors.New("all gemini model names must be configured")
	}
	return nil
}

// Provider implements generation.Provider using the genai client.
type Provider struct {
	client *genai.Client
	config Config
	httpc  *http.Client
	logger *slog.Logger
}

// Ensure Provider implements the generation.Provider interface
var _ generation.Provider = (*Provider)(nil)

// NewProvider creates a Provider with the given configuration. The API
// key is injected once at construction; no further credential flow exists
// in this layer.
func NewProvider(ctx context.Context, config Config, logger *slog.Logger) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Provider{
		client: client,
		config: config,
		httpc:  &http.Client{},
		logger: logger.With(slog.String("component", "gemini_provider")),
	}, nil
}

// GenerateText issues one synchronous text call, optionally with the
// search tool or the strict document skeleton schema.
func (p *Provider) GenerateText(ctx context.Context, req generation.TextRequest) (*generation.TextResult, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if req.Asset != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Asset.Data, req.Asset.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{}
	if req.UseSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if req.Schema == generation.TextSchemaDocument {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = documentSkeletonSchema()
	}

	p.logger.DebugContext(ctx, "issuing text call",
		slog.String("model", p.config.TextModel),
		slog.Bool("use_search", req.UseSearch),
		slog.Bool("schema_enforced", req.Schema == generation.TextSchemaDocument))

	resp, err := p.client.Models.GenerateContent(ctx, p.config.TextModel, contents, cfg)
	if err != nil {
		return nil, err
	}

	return textResultFromResponse(resp)
}

// GenerateImage issues one image call. A request without an asset uses
// the image model's dedicated generation endpoint; a request with an
// asset (an edit) goes through the image-capable content model instead,
// since the generation endpoint takes no source image.
func (p *Provider) GenerateImage(ctx context.Context, req generation.ImageRequest) (*domain.Blob, error) {
	if req.Asset == nil {
		return p.generateImage(ctx, req)
	}
	return p.editImage(ctx, req)
}

// imageGenConfig builds the config for a dedicated image-generation
// call. Exactly one PNG image is requested per call.
func imageGenConfig(aspectRatio string) *genai.GenerateImagesConfig {
	cfg := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/png",
	}
	if aspectRatio != "" {
		cfg.AspectRatio = aspectRatio
	}
	return cfg
}

func (p *Provider) generateImage(ctx context.Context, req generation.ImageRequest) (*domain.Blob, error) {
	cfg := imageGenConfig(req.AspectRatio)

	p.logger.DebugContext(ctx, "issuing image call",
		slog.String("model", p.config.ImageModel),
		slog.String("aspect_ratio", req.AspectRatio))

	resp, err := p.client.Models.GenerateImages(ctx, p.config.ImageModel, req.Prompt, cfg)
	if err != nil {
		return nil, err
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("%w: no image generated", generation.ErrMalformedResponse)
	}

	img := resp.GeneratedImages[0].Image
	return &domain.Blob{Data: img.ImageBytes, MIMEType: img.MIMEType}, nil
}

func (p *Provider) editImage(ctx context.Context, req generation.ImageRequest) (*domain.Blob, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(req.Prompt),
		genai.NewPartFromBytes(req.Asset.Data, req.Asset.MIMEType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	p.logger.DebugContext(ctx, "issuing image edit call",
		slog.String("model", p.config.ImageEditModel))

	resp, err := p.client.Models.GenerateContent(ctx, p.config.ImageEditModel, contents, cfg)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrMalformedResponse)
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return &domain.Blob{
				Data:     part.InlineData.Data,
				MIMEType: part.InlineData.MIMEType,
			}, nil
		}
	}

	return nil, fmt.Errorf("%w: response carried no image data", generation.ErrMalformedResponse)
}

// StartVideo issues the initial call of a long-running video job and
// returns its handle. The job completes via PollVideo, never here.
func (p *Provider) StartVideo(ctx context.Context, req generation.VideoRequest) (*domain.OperationHandle, error) {
	var image *genai.Image
	if req.Asset != nil {
		image = &genai.Image{
			ImageBytes: req.Asset.Data,
			MIMEType:   req.Asset.MIMEType,
		}
	}

	cfg := &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
	}
	if req.AspectRatio != "" {
		cfg.AspectRatio = req.AspectRatio
	}
	if req.Resolution != "" {
		cfg.Resolution = req.Resolution
	}

	p.logger.InfoContext(ctx, "starting video operation",
		slog.String("model", p.config.VideoModel),
		slog.Bool("has_source_image", image != nil))

	op, err := p.client.Models.GenerateVideos(ctx, p.config.VideoModel, req.Prompt, image, cfg)
	if err != nil {
		return nil, err
	}

	return operationToHandle(op), nil
}

// PollVideo re-checks a video operation and returns the refreshed handle.
func (p *Provider) PollVideo(ctx context.Context, handle *domain.OperationHandle) (*domain.OperationHandle, error) {
	op, ok := handle.Raw.(*genai.GenerateVideosOperation)
	if !ok {
		return nil, fmt.Errorf("%w: unrecognized operation handle %q",
			generation.ErrMalformedResponse, handle.Name)
	}

	refreshed, err := p.client.Operations.GetVideosOperation(ctx, op, nil)
	if err != nil {
		return nil, err
	}

	return operationToHandle(refreshed), nil
}

// FetchAsset performs an authenticated GET of a result download URI,
// returning the binary payload.
func (p *Provider) FetchAsset(ctx context.Context, uri string) (*domain.Blob, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build asset request: %w", err)
	}
	httpReq.Header.Set("x-goog-api-key", p.config.APIKey)

	resp, err := p.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("asset fetch failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			p.logger.Warn("failed to close asset response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("asset fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset body: %w", err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "video/mp4"
	}

	return &domain.Blob{Data: data, MIMEType: mimeType}, nil
}

// textResultFromResponse normalizes a content response, surfacing safety
// blocks and empty candidates as errors the classifier recognizes.
func textResultFromResponse(resp *genai.GenerateContentResponse) (*generation.TextResult, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrMalformedResponse)
	}

	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return nil, errors.New("content blocked by safety filters")
	}
	if cand.Content == nil {
		return nil, fmt.Errorf("%w: empty content in response", generation.ErrMalformedResponse)
	}

	return &generation.TextResult{
		Text:      resp.Text(),
		Grounding: groundingRefs(cand.GroundingMetadata),
	}, nil
}

// groundingRefs extracts ordered citations from grounding metadata.
func groundingRefs(meta *genai.GroundingMetadata) []domain.GroundingRef {
	if meta == nil {
		return nil
	}

	refs := make([]domain.GroundingRef, 0, len(meta.GroundingChunks))
	for _, chunk := range meta.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		refs = append(refs, domain.GroundingRef{
			URI:   chunk.Web.URI,
			Title: chunk.Web.Title,
		})
	}
	if len(refs) == 0 {
		return nil
	}
	return refs
}

// operationToHandle converts the SDK operation into the domain handle,
// keeping the raw operation so polling can refresh it.
func operationToHandle(op *genai.GenerateVideosOperation) *domain.OperationHandle {
	handle := &domain.OperationHandle{
		Name: op.Name,
		Done: op.Done,
		Raw:  op,
	}

	if op.Error != nil {
		handle.FailureMessage = operationErrorMessage(op.Error)
	}

	if op.Done && op.Response != nil &&
		len(op.Response.GeneratedVideos) > 0 &&
		op.Response.GeneratedVideos[0].Video != nil {
		handle.ResultURI = op.Response.GeneratedVideos[0].Video.URI
	}

	return handle
}

// operationErrorMessage pulls a human-readable message out of the
// loosely-typed operation error payload.
func operationErrorMessage(errPayload map[string]any) string {
	if msg, ok := errPayload["message"].(string); ok && msg != "" {
		return msg
	}
	return fmt.Sprintf("operation error: %v", errPayload)
}
