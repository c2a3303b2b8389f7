package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/comarapa/catalog-desk/config"
	"github.com/comarapa/catalog-desk/internal/domain"
)

// fakeImportClient scripts the backend's import endpoints for tests
type fakeImportClient struct {
	extractResult *domain.BatchExtractionResponse
	extractErr    error
	// release, when set, blocks ExtractFromImages until closed.
	release chan struct{}

	bulkFn    func(*domain.BulkCreateRequest) (*domain.BulkCreateResponse, error)
	bulkCalls []*domain.BulkCreateRequest
}

func (f *fakeImportClient) ExtractFromImages(ctx context.Context, files []domain.ImageFile) (*domain.BatchExtractionResponse, error) {
	if f.release != nil {
		<-f.release
	}
	return f.extractResult, f.extractErr
}

func (f *fakeImportClient) BulkCreateProducts(ctx context.Context, req *domain.BulkCreateRequest) (*domain.BulkCreateResponse, error) {
	f.bulkCalls = append(f.bulkCalls, req)
	if f.bulkFn != nil {
		return f.bulkFn(req)
	}
	return nil, errors.New("not scripted")
}

func (f *fakeImportClient) MatchProduct(ctx context.Context, description string, suggestedCategory *string) (*domain.MatchProductResponse, error) {
	return nil, errors.New("not scripted")
}

func (f *fakeImportClient) AutocompleteProduct(ctx context.Context, partialText string, context_ *string) (*domain.AutocompleteResponse, error) {
	return nil, errors.New("not scripted")
}

func (f *fakeImportClient) ImportHealth(ctx context.Context) (*domain.ImportHealthResponse, error) {
	return nil, errors.New("not scripted")
}

func testImportConfig() config.ImportConfig {
	return config.ImportConfig{
		MaxImages:          3,
		MaxImageSizeMB:     1,
		AllowedTypes:       []string{"image/jpeg", "image/png", "image/webp"},
		ProgressResetDelay: 50 * time.Millisecond,
	}
}

func newTestExtractor(client domain.ImportClient) *BatchExtractor {
	return NewBatchExtractor(client, testImportConfig(), zap.NewNop().Sugar())
}

func jpeg(name string, size int) domain.ImageFile {
	return domain.ImageFile{Name: name, ContentType: "image/jpeg", Data: make([]byte, size)}
}

func TestValidateFiles(t *testing.T) {
	e := newTestExtractor(&fakeImportClient{})

	tests := []struct {
		name    string
		files   []domain.ImageFile
		wantErr error
	}{
		{
			name:    "empty batch",
			files:   nil,
			wantErr: domain.ErrNoFiles,
		},
		{
			name:    "too many files",
			files:   []domain.ImageFile{jpeg("1.jpg", 10), jpeg("2.jpg", 10), jpeg("3.jpg", 10), jpeg("4.jpg", 10)},
			wantErr: domain.ErrTooManyFiles,
		},
		{
			name:    "unsupported type",
			files:   []domain.ImageFile{{Name: "doc.pdf", ContentType: "application/pdf", Data: []byte("x")}},
			wantErr: domain.ErrUnsupportedFileType,
		},
		{
			name:    "file too large",
			files:   []domain.ImageFile{jpeg("big.jpg", 1024*1024+1)},
			wantErr: domain.ErrFileTooLarge,
		},
		{
			name:  "valid batch",
			files: []domain.ImageFile{jpeg("a.jpg", 100), {Name: "b.webp", ContentType: "image/webp", Data: []byte("x")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.ValidateFiles(tt.files)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFilesCaseInsensitiveType(t *testing.T) {
	e := newTestExtractor(&fakeImportClient{})
	files := []domain.ImageFile{{Name: "a.jpg", ContentType: "IMAGE/JPEG", Data: []byte("x")}}
	if err := e.ValidateFiles(files); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExtractValidatesBeforeNetwork(t *testing.T) {
	client := &fakeImportClient{release: make(chan struct{})}
	e := newTestExtractor(client)

	_, err := e.Extract(context.Background(), nil)
	if !errors.Is(err, domain.ErrNoFiles) {
		t.Fatalf("error = %v, want ErrNoFiles", err)
	}
	// The client would have blocked forever; reaching here means it was
	// never called.
	if e.IsExtracting() {
		t.Error("failed validation must not start an extraction")
	}
}

func TestExtractSuccess(t *testing.T) {
	client := &fakeImportClient{extractResult: testBatch()}
	e := newTestExtractor(client)

	result, err := e.Extract(context.Background(), []domain.ImageFile{jpeg("a.jpg", 10)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalProducts != 5 {
		t.Errorf("TotalProducts = %d, want 5", result.TotalProducts)
	}

	if got := e.Progress(); got != 100 {
		t.Errorf("Progress = %v, want 100 right after completion", got)
	}
	if e.IsExtracting() {
		t.Error("IsExtracting = true after completion")
	}

	// Progress drops back to zero once the reset delay elapses.
	time.Sleep(120 * time.Millisecond)
	if got := e.Progress(); got != 0 {
		t.Errorf("Progress = %v, want 0 after reset delay", got)
	}
}

func TestExtractFailure(t *testing.T) {
	client := &fakeImportClient{extractErr: domain.ErrBackendTimeout}
	e := newTestExtractor(client)

	_, err := e.Extract(context.Background(), []domain.ImageFile{jpeg("a.jpg", 10)})
	if !errors.Is(err, domain.ErrBackendTimeout) {
		t.Fatalf("error = %v, want ErrBackendTimeout", err)
	}
	if got := e.Progress(); got != 0 {
		t.Errorf("Progress = %v, want 0 after failure", got)
	}
	if e.IsExtracting() {
		t.Error("IsExtracting = true after failure")
	}
}

func TestExtractProgressWhileInFlight(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}

	client := &fakeImportClient{extractResult: testBatch(), release: make(chan struct{})}
	e := newTestExtractor(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = e.Extract(context.Background(), []domain.ImageFile{jpeg("a.jpg", 10)})
	}()

	// Wait for the extraction to start, then sample progress across a
	// few ticks: it begins at the floor, only moves forward, and never
	// passes the cap while the request is pending.
	deadline := time.After(2 * time.Second)
	for !e.IsExtracting() {
		select {
		case <-deadline:
			t.Fatal("extraction never started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if got := e.Progress(); got != progressStart {
		t.Errorf("initial progress = %v, want %v", got, progressStart)
	}

	prev := e.Progress()
	for i := 0; i < 3; i++ {
		time.Sleep(550 * time.Millisecond)
		got := e.Progress()
		if got < prev {
			t.Errorf("progress went backwards: %v -> %v", prev, got)
		}
		if got > progressCap {
			t.Errorf("progress = %v, exceeded cap %v while pending", got, progressCap)
		}
		prev = got
	}

	close(client.release)
	<-done
	if got := e.Progress(); got != 100 {
		t.Errorf("Progress = %v, want 100 after release", got)
	}
}

func TestExtractRejectsConcurrentRun(t *testing.T) {
	client := &fakeImportClient{extractResult: testBatch(), release: make(chan struct{})}
	e := newTestExtractor(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = e.Extract(context.Background(), []domain.ImageFile{jpeg("a.jpg", 10)})
	}()

	deadline := time.After(2 * time.Second)
	for !e.IsExtracting() {
		select {
		case <-deadline:
			t.Fatal("extraction never started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	_, err := e.Extract(context.Background(), []domain.ImageFile{jpeg("b.jpg", 10)})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}

	close(client.release)
	<-done
}
