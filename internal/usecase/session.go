package usecase

import (
	"sync"
	"time"

	"github.com/comarapa/catalog-desk/internal/domain"
)

// ImportStep is the current phase of an import session
type ImportStep string

const (
	StepUpload     ImportStep = "upload"
	StepProcessing ImportStep = "processing"
	StepReview     ImportStep = "review"
	StepCreating   ImportStep = "creating"
)

// SessionState is a snapshot of an import session. Error is an overlay,
// not a step: it never changes the current step by itself.
type SessionState struct {
	Step                 ImportStep
	Files                []domain.ImageFile
	ExtractionResult     *domain.BatchExtractionResponse
	SelectedInvoiceIndex int
	SelectedProductIndex *int
	EditingProduct       *domain.MatchedProduct
	IsProcessing         bool
	Error                string
}

// Session owns the state of one import workflow: the step, the uploaded
// files, the extraction batch, and the review selections. All mutations
// go through the closed set of methods below, each applied atomically
// under the session mutex; derived values are recomputed on every read
// rather than cached.
//
// The batch is immutable once set: it is replaced wholesale, never
// patched in place.
type Session struct {
	mu    sync.Mutex
	state SessionState

	// edits overlays user changes on line items, keyed by position in
	// the flat matched-products list. Merged only at bulk-create time.
	edits map[int]EditedProduct

	// created records flat indices already persisted by a previous
	// bulk-create call, so a retry after partial failure does not
	// resubmit them.
	created map[int]bool

	lastTouch time.Time
}

// NewSession creates a session in its initial state
func NewSession() *Session {
	return &Session{
		state:     initialState(),
		edits:     make(map[int]EditedProduct),
		created:   make(map[int]bool),
		lastTouch: time.Now(),
	}
}

func initialState() SessionState {
	return SessionState{
		Step:                 StepUpload,
		Files:                nil,
		ExtractionResult:     nil,
		SelectedInvoiceIndex: 0,
		SelectedProductIndex: nil,
		EditingProduct:       nil,
		IsProcessing:         false,
		Error:                "",
	}
}

// State returns a snapshot of the session
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetFiles replaces the file list and clears any error. Valid in any
// step; it does not move the session forward by itself.
func (s *Session) SetFiles(files []domain.ImageFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.state.Files = files
	s.state.Error = ""
}

// StartProcessing moves to the processing step. Callers are expected to
// have set a non-empty file list first.
func (s *Session) StartProcessing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.state.Step = StepProcessing
	s.state.IsProcessing = true
	s.state.Error = ""
}

// SetExtractionResult stores a new batch and moves to review. Invoice
// selection returns to the first invoice, item selection clears, and any
// edits or created-item tracking from a previous batch are discarded.
func (s *Session) SetExtractionResult(batch *domain.BatchExtractionResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.state.Step = StepReview
	s.state.ExtractionResult = batch
	s.state.IsProcessing = false
	s.state.SelectedInvoiceIndex = 0
	s.state.SelectedProductIndex = nil
	s.edits = make(map[int]EditedProduct)
	s.created = make(map[int]bool)
}

// SetError stores an error message and clears the processing flag. The
// step is untouched: errors overlay whatever the user was doing.
func (s *Session) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.state.IsProcessing = false
	s.state.Error = message
}

// ClearError clears the stored error message only
func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.state.Error = ""
}

// SelectInvoice changes the viewed invoice. Item selection and any
// in-progress edit are scoped to the viewed invoice, so both clear here
// regardless of their previous values.
func (s *Session) SelectInvoice(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.state.SelectedInvoiceIndex = index
	s.state.SelectedProductIndex = nil
	s.state.EditingProduct = nil
}

// SelectProduct sets or clears the selected line item without touching
// edit state
func (s *Session) SelectProduct(index *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.state.SelectedProductIndex = index
}

// StartEditing stores the item under edit, replacing any previous one.
// At most one item is under edit at a time.
func (s *Session) StartEditing(item domain.MatchedProduct) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.state.EditingProduct = &item
}

// StopEditing clears the item under edit
func (s *Session) StopEditing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.state.EditingProduct = nil
}

// SetStep overrides the current step directly. Used for the creating
// transition and for reverting to review after a partial bulk-create
// failure.
func (s *Session) SetStep(step ImportStep) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.state.Step = step
}

// Reset discards the session back to its initial state
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.state = initialState()
	s.edits = make(map[int]EditedProduct)
	s.created = make(map[int]bool)
}

// CurrentInvoice returns the selected invoice's extraction, or nil when
// no batch exists or the index is out of range
func (s *Session) CurrentInvoice() *domain.ExtractionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentInvoiceLocked()
}

func (s *Session) currentInvoiceLocked() *domain.ExtractionResult {
	batch := s.state.ExtractionResult
	if batch == nil {
		return nil
	}
	idx := s.state.SelectedInvoiceIndex
	if idx < 0 || idx >= len(batch.Extractions) {
		return nil
	}
	return &batch.Extractions[idx]
}

// AllProducts returns the full flat matched-products list, or an empty
// slice when no batch exists
func (s *Session) AllProducts() []domain.MatchedProduct {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allProductsLocked()
}

func (s *Session) allProductsLocked() []domain.MatchedProduct {
	if s.state.ExtractionResult == nil {
		return []domain.MatchedProduct{}
	}
	return s.state.ExtractionResult.MatchedProducts
}

// CurrentProducts returns the contiguous slice of the flat list
// belonging to the selected invoice. The flat list is partitioned by
// invoice in extraction order, so the slice starts at the sum of the
// preceding invoices' item counts.
func (s *Session) CurrentProducts() []domain.MatchedProduct {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.currentInvoiceLocked()
	if current == nil {
		return []domain.MatchedProduct{}
	}

	batch := s.state.ExtractionResult
	start := 0
	for i := 0; i < s.state.SelectedInvoiceIndex; i++ {
		start += len(batch.Extractions[i].Products)
	}
	end := start + len(current.Products)

	all := s.allProductsLocked()
	if start > len(all) {
		return []domain.MatchedProduct{}
	}
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

// NewProductsCount counts flat-list items flagged as new products
func (s *Session) NewProductsCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, p := range s.allProductsLocked() {
		if p.IsNewProduct {
			count++
		}
	}
	return count
}

// MatchedProductsCount counts flat-list items with catalog matches
func (s *Session) MatchedProductsCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, p := range s.allProductsLocked() {
		if !p.IsNewProduct {
			count++
		}
	}
	return count
}

// SetEdit stores or replaces the edit overlay for the item at the given
// flat-list index
func (s *Session) SetEdit(index int, edit EditedProduct) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.edits[index] = edit
}

// ClearEdit removes the edit overlay for the given flat-list index
func (s *Session) ClearEdit(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	delete(s.edits, index)
}

// Edit returns the edit overlay for a flat-list index, if present
func (s *Session) Edit(index int) (EditedProduct, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	edit, ok := s.edits[index]
	return edit, ok
}

// MarkCreated records flat-list indices persisted by a bulk-create call
func (s *Session) MarkCreated(indices []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	for _, i := range indices {
		s.created[i] = true
	}
}

// CreatedCount returns how many items have been persisted so far
func (s *Session) CreatedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.created)
}

// LastTouched reports when the session was last mutated
func (s *Session) LastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTouch
}

func (s *Session) touch() {
	s.lastTouch = time.Now()
}
