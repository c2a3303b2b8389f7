package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/comarapa/catalog-desk/internal/domain"
)

// ImportService drives a session through the import workflow: upload,
// extraction, review, and bulk creation. It owns no state of its own;
// everything lives on the session so the workflow can be resumed from
// any handler or the CLI.
type ImportService struct {
	client    domain.ImportClient
	extractor *BatchExtractor
	errorText func(error) string
	log       *zap.SugaredLogger
}

// NewImportService creates the import workflow service. errorText maps
// an error to the user-facing message stored on the session; nil falls
// back to the raw error text.
func NewImportService(client domain.ImportClient, extractor *BatchExtractor, errorText func(error) string, log *zap.SugaredLogger) *ImportService {
	if errorText == nil {
		errorText = func(err error) string { return err.Error() }
	}
	return &ImportService{
		client:    client,
		extractor: extractor,
		errorText: errorText,
		log:       log,
	}
}

// Process runs upload through extraction: the files are stored on the
// session, validated, and submitted to the backend. Success lands the
// session in review with the new batch; failure stores the translated
// message and leaves the step where it was, so the user can retry.
func (s *ImportService) Process(ctx context.Context, sess *Session, files []domain.ImageFile) error {
	sess.SetFiles(files)

	if err := s.extractor.ValidateFiles(files); err != nil {
		sess.SetError(s.errorText(err))
		return err
	}

	sess.StartProcessing()
	result, err := s.extractor.Extract(ctx, files)
	if err != nil {
		sess.SetError(s.errorText(err))
		return err
	}

	sess.SetExtractionResult(result)
	return nil
}

// CreateProducts merges the session's edit overlays into the remaining
// uncreated items and bulk-creates them. Items persisted by an earlier
// call are never resubmitted, so calling again after a partial failure
// retries only the failures. A fully successful run resets the session;
// any failure sends it back to review with a composite message.
func (s *ImportService) CreateProducts(ctx context.Context, sess *Session) (*domain.BulkCreateResponse, error) {
	items, indices := sess.BuildBulkItems()
	if len(items) == 0 {
		return nil, domain.ErrNothingToCreate
	}

	sess.ClearError()
	sess.SetStep(StepCreating)

	req := &domain.BulkCreateRequest{
		Products:                items,
		CreateMissingCategories: true,
	}
	resp, err := s.client.BulkCreateProducts(ctx, req)
	if err != nil {
		sess.SetError(s.errorText(err))
		sess.SetStep(StepReview)
		return nil, err
	}

	// Results are parallel to the request; map each back to its
	// flat-list index before recording what got persisted.
	createdIndices := make([]int, 0, len(resp.Results))
	var failures []string
	for _, r := range resp.Results {
		if r.Index < 0 || r.Index >= len(indices) {
			continue
		}
		if r.Success {
			createdIndices = append(createdIndices, indices[r.Index])
			continue
		}
		reason := "error desconocido"
		if r.Error != nil {
			reason = *r.Error
		}
		failures = append(failures, fmt.Sprintf("%s: %s", items[r.Index].Name, reason))
	}
	sess.MarkCreated(createdIndices)

	s.log.Infow("bulk create finished",
		"requested", resp.TotalRequested,
		"created", resp.TotalCreated,
		"failed", resp.TotalFailed,
		"categories_created", resp.CategoriesCreated)

	if resp.TotalFailed > 0 {
		msg := fmt.Sprintf("Se crearon %d de %d productos.", resp.TotalCreated, resp.TotalRequested)
		if len(failures) > 0 {
			msg += " Errores: " + strings.Join(failures, "; ")
		}
		sess.SetError(msg)
		sess.SetStep(StepReview)
		return resp, nil
	}

	sess.Reset()
	return resp, nil
}
