package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/museworks/muse-api/internal/domain"
)

// documentAspectRatio is the fixed aspect ratio for section imagery.
const documentAspectRatio = "16:9"

// proseSchemaInstruction describes the skeleton structure in plain words
// for calls where the strict response schema cannot be enforced (search
// augmentation drops server-side schema support).
const proseSchemaInstruction = `Respond with a single JSON object and nothing else, shaped exactly as:
{"title": string, "sections": [{"title": string, "content": [string, ...], "image_prompt": string}]}.
Leave "image_prompt" empty for sections that need no illustration.`

// skeletonSchema mirrors the stage-1 provider response. Section order in
// the parsed skeleton is the order of the final document.
type skeletonSchema struct {
	Title    string            `json:"title"`
	Sections []sectionSkeleton `json:"sections"`
}

type sectionSkeleton struct {
	Title       string   `json:"title"`
	Content     []string `json:"content"`
	ImagePrompt string   `json:"image_prompt"`
}

// DocumentPipeline produces a structured document in two stages: one text
// call for the skeleton, then one concurrent image call per section that
// carries an image prompt.
type DocumentPipeline struct {
	provider  Provider
	artifacts ArtifactSaver
	logger    *slog.Logger
}

// NewDocumentPipeline creates a DocumentPipeline.
func NewDocumentPipeline(provider Provider, artifacts ArtifactSaver, logger *slog.Logger) *DocumentPipeline {
	if logger == nil {
		logger = slog.Default()
	}

	return &DocumentPipeline{
		provider:  provider,
		artifacts: artifacts,
		logger:    logger.With(slog.String("component", "document_pipeline")),
	}
}

// Generate runs both stages and returns the enriched document. A section
// whose enrichment call fails keeps its title and content and gets media
// set to the explicit "none" sentinel; the pipeline as a whole still
// succeeds. Only stage-1 failures fail the document.
func (p *DocumentPipeline) Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.Document, error) {
	skeleton, err := p.generateSkeleton(ctx, req)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		Title:    skeleton.Title,
		Sections: make([]domain.Section, len(skeleton.Sections)),
	}
	for i, sec := range skeleton.Sections {
		doc.Sections[i] = domain.Section{
			Title:       sec.Title,
			Content:     sec.Content,
			ImagePrompt: sec.ImagePrompt,
		}
	}

	if len(doc.Sections) == 0 {
		p.logger.InfoContext(ctx, "skeleton has no sections, skipping enrichment",
			slog.String("title", doc.Title))
		return doc, nil
	}

	p.enrichSections(ctx, doc)
	return doc, nil
}

// generateSkeleton issues the stage-1 text call and parses the response.
// Parse failure after fence stripping is a DataFormat error, never a
// guessed or partially-populated document.
func (p *DocumentPipeline) generateSkeleton(ctx context.Context, req *domain.GenerationRequest) (*skeletonSchema, error) {
	textReq := TextRequest{
		Prompt:    p.buildSkeletonPrompt(req),
		UseSearch: req.UseSearch,
		Schema:    TextSchemaDocument,
	}
	if req.UseSearch {
		// Schema enforcement and search augmentation do not combine; ask
		// for the same structure through the prompt instead.
		textReq.Schema = TextSchemaNone
	}

	res, err := p.provider.GenerateText(ctx, textReq)
	if err != nil {
		return nil, Classify(err)
	}

	body := stripCodeFence(res.Text)

	var skeleton skeletonSchema
	if err := json.Unmarshal([]byte(body), &skeleton); err != nil {
		p.logger.WarnContext(ctx, "skeleton parse failed",
			slog.String("error", err.Error()),
			slog.Int("body_length", len(body)))
		return nil, NewDataFormatError(
			fmt.Errorf("%w: parsing document skeleton: %v", ErrMalformedResponse, err))
	}

	p.logger.InfoContext(ctx, "skeleton generated",
		slog.String("title", skeleton.Title),
		slog.Int("section_count", len(skeleton.Sections)))
	return &skeleton, nil
}

func (p *DocumentPipeline) buildSkeletonPrompt(req *domain.GenerationRequest) string {
	var b strings.Builder
	b.WriteString("Create a structured document on the following subject: ")
	b.WriteString(req.Prompt)
	if req.DocumentStyle != "" {
		b.WriteString("\nPresentation style: ")
		b.WriteString(req.DocumentStyle)
	}
	if req.UseSearch {
		b.WriteString("\n")
		b.WriteString(proseSchemaInstruction)
	}
	return b.String()
}

// enrichSections fans out one image call per section with a non-empty
// image prompt and joins after every branch has settled. Branches are
// isolated: a failed call sets that section's media to "none" and never
// cancels or fails siblings. Results land by index, so completion order
// cannot reorder sections.
func (p *DocumentPipeline) enrichSections(ctx context.Context, doc *domain.Document) {
	var g errgroup.Group

	launched := 0
	for i := range doc.Sections {
		sec := &doc.Sections[i]
		if sec.ImagePrompt == "" {
			sec.Media = domain.MediaNone
			continue
		}

		launched++
		g.Go(func() error {
			blob, err := p.provider.GenerateImage(ctx, ImageRequest{
				Prompt:      sec.ImagePrompt,
				AspectRatio: documentAspectRatio,
			})
			if err != nil {
				p.logger.WarnContext(ctx, "section enrichment failed",
					slog.String("section", sec.Title),
					slog.String("error", err.Error()))
				sec.Media = domain.MediaNone
				return nil
			}

			ref, err := p.artifacts.Save(ctx, blob)
			if err != nil {
				p.logger.WarnContext(ctx, "section artifact save failed",
					slog.String("section", sec.Title),
					slog.String("error", err.Error()))
				sec.Media = domain.MediaNone
				return nil
			}

			sec.Media = ref
			return nil
		})
	}

	// Branches absorb their own failures, so Wait only joins.
	_ = g.Wait()

	p.logger.InfoContext(ctx, "section enrichment settled",
		slog.Int("launched", launched),
		slog.Int("section_count", len(doc.Sections)))
}

// stripCodeFence removes an optional wrapping fenced-code-block delimiter
// pair the provider may emit around a JSON body. Anything that is not a
// complete fence pair is returned unchanged.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop an optional language tag on the opening fence line.
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine == "" || isFenceLanguageTag(firstLine) {
			trimmed = trimmed[idx+1:]
		}
	}

	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

func isFenceLanguageTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
