package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/comarapa/catalog-desk/config"
	"github.com/comarapa/catalog-desk/internal/domain"
)

const (
	progressStart = 10.0
	// Simulated progress never reaches the cap until the backend actually
	// answers; the jump to 100 is reserved for a completed extraction.
	progressCap  = 90.0
	progressDone = 100.0

	progressTick = 500 * time.Millisecond
)

// BatchExtractor validates a batch of invoice images and drives the
// extraction call against the backend, publishing a coarse progress
// figure while the request is in flight. Extraction takes on the order
// of a minute, so progress is simulated: it starts low, creeps upward
// on a timer without ever hitting the cap, and snaps to 100 only when
// the backend responds.
type BatchExtractor struct {
	client       domain.ImportClient
	maxImages    int
	maxSizeBytes int64
	allowedTypes map[string]bool
	resetDelay   time.Duration
	log          *zap.SugaredLogger

	mu         sync.Mutex
	progress   float64
	extracting bool
	stopTick   chan struct{}
	resetTimer *time.Timer
}

// NewBatchExtractor creates an extractor enforcing the configured limits
func NewBatchExtractor(client domain.ImportClient, cfg config.ImportConfig, log *zap.SugaredLogger) *BatchExtractor {
	allowed := make(map[string]bool, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[strings.ToLower(t)] = true
	}
	return &BatchExtractor{
		client:       client,
		maxImages:    cfg.MaxImages,
		maxSizeBytes: int64(cfg.MaxImageSizeMB) * 1024 * 1024,
		allowedTypes: allowed,
		resetDelay:   cfg.ProgressResetDelay,
		log:          log,
	}
}

// ValidateFiles checks a batch against the configured limits before any
// network activity: the batch must be non-empty and within the image
// count limit, and every file must carry an allowed content type and fit
// the size limit
func (e *BatchExtractor) ValidateFiles(files []domain.ImageFile) error {
	if len(files) == 0 {
		return domain.ErrNoFiles
	}
	if len(files) > e.maxImages {
		return fmt.Errorf("%w: got %d, maximum is %d", domain.ErrTooManyFiles, len(files), e.maxImages)
	}
	for _, f := range files {
		if !e.allowedTypes[strings.ToLower(f.ContentType)] {
			return fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedFileType, f.Name, f.ContentType)
		}
		if f.Size() > e.maxSizeBytes {
			return fmt.Errorf("%w: %s (%d bytes)", domain.ErrFileTooLarge, f.Name, f.Size())
		}
	}
	return nil
}

// Extract validates the batch and submits it to the backend, blocking
// until the extraction completes or fails. Progress is readable from
// other goroutines throughout; after a successful run it snaps to 100
// and drops back to zero once the reset delay elapses.
func (e *BatchExtractor) Extract(ctx context.Context, files []domain.ImageFile) (*domain.BatchExtractionResponse, error) {
	if err := e.ValidateFiles(files); err != nil {
		return nil, err
	}

	if err := e.begin(); err != nil {
		return nil, err
	}

	e.log.Infow("starting batch extraction", "files", len(files))
	result, err := e.client.ExtractFromImages(ctx, files)
	if err != nil {
		e.fail()
		e.log.Errorw("batch extraction failed", "error", err)
		return nil, err
	}

	e.finish()
	e.log.Infow("batch extraction complete",
		"invoices", len(result.Extractions),
		"products", result.TotalProducts,
		"processing_ms", result.ProcessingTimeMs)
	return result, nil
}

// Progress returns the current progress percentage in [0,100]
func (e *BatchExtractor) Progress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress
}

// IsExtracting reports whether an extraction is in flight
func (e *BatchExtractor) IsExtracting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.extracting
}

func (e *BatchExtractor) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.extracting {
		return fmt.Errorf("%w: extraction already in progress", domain.ErrInvalidRequest)
	}
	if e.resetTimer != nil {
		e.resetTimer.Stop()
		e.resetTimer = nil
	}
	e.extracting = true
	e.progress = progressStart
	e.stopTick = make(chan struct{})
	go e.tick(e.stopTick)
	return nil
}

// tick nudges progress upward on an interval. Increments are random so
// the figure does not look mechanical, but it only ever moves forward
// and never passes the cap.
func (e *BatchExtractor) tick(stop chan struct{}) {
	ticker := time.NewTicker(progressTick)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.mu.Lock()
			next := e.progress + rand.Float64()*10
			if next > progressCap {
				next = progressCap
			}
			if next > e.progress {
				e.progress = next
			}
			e.mu.Unlock()
		}
	}
}

func (e *BatchExtractor) finish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	close(e.stopTick)
	e.extracting = false
	e.progress = progressDone
	e.resetTimer = time.AfterFunc(e.resetDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if !e.extracting {
			e.progress = 0
		}
	})
}

func (e *BatchExtractor) fail() {
	e.mu.Lock()
	defer e.mu.Unlock()
	close(e.stopTick)
	e.extracting = false
	e.progress = 0
}
