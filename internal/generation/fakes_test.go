package generation

import (
	"context"
	"fmt"
	"sync"

	"github.com/museworks/muse-api/internal/domain"
)

// fakeProvider implements Provider with per-method hooks and call
// counters. A nil hook returns a minimal successful response.
type fakeProvider struct {
	mu sync.Mutex

	textCalls  int
	imageCalls int
	startCalls int
	pollCalls  int
	fetchCalls int

	generateTextFn  func(ctx context.Context, req TextRequest) (*TextResult, error)
	generateImageFn func(ctx context.Context, req ImageRequest) (*domain.Blob, error)
	startVideoFn    func(ctx context.Context, req VideoRequest) (*domain.OperationHandle, error)
	pollVideoFn     func(ctx context.Context, handle *domain.OperationHandle) (*domain.OperationHandle, error)
	fetchAssetFn    func(ctx context.Context, uri string) (*domain.Blob, error)
}

func (f *fakeProvider) GenerateText(ctx context.Context, req TextRequest) (*TextResult, error) {
	f.mu.Lock()
	f.textCalls++
	f.mu.Unlock()
	if f.generateTextFn != nil {
		return f.generateTextFn(ctx, req)
	}
	return &TextResult{Text: "ok"}, nil
}

func (f *fakeProvider) GenerateImage(ctx context.Context, req ImageRequest) (*domain.Blob, error) {
	f.mu.Lock()
	f.imageCalls++
	f.mu.Unlock()
	if f.generateImageFn != nil {
		return f.generateImageFn(ctx, req)
	}
	return &domain.Blob{Data: []byte{0x89}, MIMEType: "image/png"}, nil
}

func (f *fakeProvider) StartVideo(ctx context.Context, req VideoRequest) (*domain.OperationHandle, error) {
	f.mu.Lock()
	f.startCalls++
	f.mu.Unlock()
	if f.startVideoFn != nil {
		return f.startVideoFn(ctx, req)
	}
	return &domain.OperationHandle{Name: "operations/fake", Done: false}, nil
}

func (f *fakeProvider) PollVideo(ctx context.Context, handle *domain.OperationHandle) (*domain.OperationHandle, error) {
	f.mu.Lock()
	f.pollCalls++
	f.mu.Unlock()
	if f.pollVideoFn != nil {
		return f.pollVideoFn(ctx, handle)
	}
	return &domain.OperationHandle{Name: handle.Name, Done: true, ResultURI: "https://example.test/video"}, nil
}

func (f *fakeProvider) FetchAsset(ctx context.Context, uri string) (*domain.Blob, error) {
	f.mu.Lock()
	f.fetchCalls++
	f.mu.Unlock()
	if f.fetchAssetFn != nil {
		return f.fetchAssetFn(ctx, uri)
	}
	return &domain.Blob{Data: []byte("video"), MIMEType: "video/mp4"}, nil
}

func (f *fakeProvider) calls() (text, image, start, poll, fetch int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.textCalls, f.imageCalls, f.startCalls, f.pollCalls, f.fetchCalls
}

// fakeSaver implements ArtifactSaver, assigning sequential references.
type fakeSaver struct {
	mu    sync.Mutex
	saved []*domain.Blob
	err   error
}

func (f *fakeSaver) Save(_ context.Context, blob *domain.Blob) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, blob)
	return fmt.Sprintf("artifact://%d", len(f.saved)), nil
}

func (f *fakeSaver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}
