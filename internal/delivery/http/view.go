package http

import (
	"github.com/comarapa/catalog-desk/internal/domain"
	"github.com/comarapa/catalog-desk/internal/usecase"
)

// sessionViewResponse is the wire shape of an import session: the raw
// state plus the derived values a review screen renders
type sessionViewResponse struct {
	Step                 string                    `json:"step"`
	Files                []string                  `json:"files"`
	IsProcessing         bool                      `json:"is_processing"`
	Error                string                    `json:"error,omitempty"`
	SelectedInvoiceIndex int                       `json:"selected_invoice_index"`
	SelectedProductIndex *int                      `json:"selected_product_index"`
	EditingProduct       *domain.MatchedProduct    `json:"editing_product,omitempty"`
	CurrentInvoice       *domain.ExtractionResult  `json:"current_invoice,omitempty"`
	CurrentProducts      []domain.MatchedProduct   `json:"current_products"`
	Products             []usecase.EditableProduct `json:"products"`
	DetectedCategories   []domain.DetectedCategory `json:"detected_categories,omitempty"`
	NewProductsCount     int                       `json:"new_products_count"`
	MatchedProductsCount int                       `json:"matched_products_count"`
	CreatedCount         int                       `json:"created_count"`
}

func sessionView(sess *usecase.Session) sessionViewResponse {
	state := sess.State()

	names := make([]string, 0, len(state.Files))
	for _, f := range state.Files {
		names = append(names, f.Name)
	}

	view := sessionViewResponse{
		Step:                 string(state.Step),
		Files:                names,
		IsProcessing:         state.IsProcessing,
		Error:                state.Error,
		SelectedInvoiceIndex: state.SelectedInvoiceIndex,
		SelectedProductIndex: state.SelectedProductIndex,
		EditingProduct:       state.EditingProduct,
		CurrentInvoice:       sess.CurrentInvoice(),
		CurrentProducts:      sess.CurrentProducts(),
		Products:             sess.EditableProducts(),
		NewProductsCount:     sess.NewProductsCount(),
		MatchedProductsCount: sess.MatchedProductsCount(),
		CreatedCount:         sess.CreatedCount(),
	}
	if state.ExtractionResult != nil {
		view.DetectedCategories = state.ExtractionResult.DetectedCategories
	}
	return view
}
