package domain

import "fmt"

// MatchConfidence is the backend-assigned confidence tier for a catalog match.
// The tier is derived server-side from the similarity score and is never
// recomputed here.
type MatchConfidence string

const (
	ConfidenceHigh   MatchConfidence = "high"
	ConfidenceMedium MatchConfidence = "medium"
	ConfidenceLow    MatchConfidence = "low"
)

// ExtractedInvoice is the parsed header of one uploaded invoice image
type ExtractedInvoice struct {
	SupplierName  *string `json:"supplier_name"`
	InvoiceNumber *string `json:"invoice_number"`
	InvoiceDate   *string `json:"invoice_date"`
	ImageIndex    int     `json:"image_index"`
}

// ExtractedProduct is one product line parsed from an invoice
type ExtractedProduct struct {
	Quantity          float64 `json:"quantity"`
	Description       string  `json:"description"`
	UnitPrice         float64 `json:"unit_price"`
	TotalPrice        float64 `json:"total_price"`
	SuggestedCategory *string `json:"suggested_category"`
}

// ExtractionResult is the full parse of a single invoice image
type ExtractionResult struct {
	Invoice              ExtractedInvoice   `json:"invoice"`
	Products             []ExtractedProduct `json:"products"`
	ExtractionConfidence float64            `json:"extraction_confidence"`
	RawText              string             `json:"raw_text,omitempty"`
}

// ProductMatch references an existing catalog product candidate for an
// extracted line, ordered by the backend with the highest similarity first
type ProductMatch struct {
	ExistingProductID   string          `json:"existing_product_id"`
	ExistingProductName string          `json:"existing_product_name"`
	ExistingProductSKU  string          `json:"existing_product_sku"`
	SimilarityScore     float64         `json:"similarity_score"`
	Confidence          MatchConfidence `json:"confidence"`
}

// MatchedProduct pairs an extracted line with its catalog match candidates
type MatchedProduct struct {
	Extracted     ExtractedProduct `json:"extracted"`
	Matches       []ProductMatch   `json:"matches"`
	IsNewProduct  bool             `json:"is_new_product"`
	SuggestedName string           `json:"suggested_name"`
}

// DetectedCategory is a category name seen during extraction
type DetectedCategory struct {
	Name               string  `json:"name"`
	ExistsInCatalog    bool    `json:"exists_in_catalog"`
	ExistingCategoryID *string `json:"existing_category_id"`
	ProductCount       int     `json:"product_count"`
}

// BatchExtractionResponse is the result of submitting a batch of images.
// MatchedProducts is the concatenation of every invoice's line items in
// extraction order: slicing it by cumulative per-invoice product counts
// recovers each invoice's own items.
type BatchExtractionResponse struct {
	Extractions          []ExtractionResult `json:"extractions"`
	MatchedProducts      []MatchedProduct   `json:"matched_products"`
	DetectedCategories   []DetectedCategory `json:"detected_categories"`
	TotalProducts        int                `json:"total_products"`
	TotalImagesProcessed int                `json:"total_images_processed"`
	ProcessingTimeMs     int64              `json:"processing_time_ms"`
}

// MatchProductResponse is the result of matching a single description
type MatchProductResponse struct {
	Matched          MatchedProduct `json:"matched"`
	ProcessingTimeMs int64          `json:"processing_time_ms"`
}

// AutocompleteSuggestion is one AI completion for a partial product name
type AutocompleteSuggestion struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    *string `json:"category"`
}

// AutocompleteResponse wraps autocomplete suggestions
type AutocompleteResponse struct {
	Suggestions []AutocompleteSuggestion `json:"suggestions"`
}

// BulkProductItem is one product in a bulk create request
type BulkProductItem struct {
	Name          string   `json:"name"`
	Description   *string  `json:"description,omitempty"`
	CategoryID    *string  `json:"category_id,omitempty"`
	CategoryName  *string  `json:"category_name,omitempty"`
	UnitPrice     float64  `json:"unit_price"`
	CostPrice     *float64 `json:"cost_price,omitempty"`
	MinStockLevel int      `json:"min_stock_level,omitempty"`
}

// BulkCreateRequest creates multiple products (and optionally their
// categories) in one call
type BulkCreateRequest struct {
	Products                []BulkProductItem `json:"products"`
	CreateMissingCategories bool              `json:"create_missing_categories,omitempty"`
}

// BulkCreateResultItem reports the outcome for one requested product,
// parallel to the request order
type BulkCreateResultItem struct {
	Index      int     `json:"index"`
	Success    bool    `json:"success"`
	ProductID  *string `json:"product_id"`
	ProductSKU *string `json:"product_sku"`
	Error      *string `json:"error"`
}

// BulkCreateResponse summarizes a bulk create call
type BulkCreateResponse struct {
	TotalRequested    int                    `json:"total_requested"`
	TotalCreated      int                    `json:"total_created"`
	TotalFailed       int                    `json:"total_failed"`
	Results           []BulkCreateResultItem `json:"results"`
	CategoriesCreated int                    `json:"categories_created"`
	ProcessingTimeMs  int64                  `json:"processing_time_ms"`
}

// ImportHealthResponse reports whether the import service is configured
type ImportHealthResponse struct {
	Status            string  `json:"status"`
	AIConfigured      bool    `json:"ai_configured"`
	AIModel           *string `json:"ai_model"`
	MaxImagesPerBatch int     `json:"max_images_per_batch"`
	MaxImageSizeMB    int     `json:"max_image_size_mb"`
}

// FormatConfidence renders a similarity score in [0,1] as a whole percentage
func FormatConfidence(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}

// TopMatch returns the highest-confidence candidate, or nil when the line
// has no matches or is flagged as a new product
func (m *MatchedProduct) TopMatch() *ProductMatch {
	if m.IsNewProduct || len(m.Matches) == 0 {
		return nil
	}
	return &m.Matches[0]
}

// NeedsReview reports whether an item requires user attention before
// creation: new products, items without candidates, and low-tier matches
func (m *MatchedProduct) NeedsReview() bool {
	if m.IsNewProduct {
		return true
	}
	if len(m.Matches) == 0 {
		return true
	}
	return m.Matches[0].Confidence == ConfidenceLow
}
