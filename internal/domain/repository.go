package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	// GetStale returns the value together with whether it is past its
	// staleness window but still within retention. Stale entries are
	// served while a background refetch replaces them.
	GetStale(ctx context.Context, key string) (value interface{}, stale bool, err error)
	Set(ctx context.Context, key string, value interface{}, staleAfter, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CatalogClient defines the interface for the Comercial Comarapa backend API
type CatalogClient interface {
	SearchProducts(ctx context.Context, query string, limit int) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) (*PaginatedResponse[Product], error)
	GetLowStockProducts(ctx context.Context) ([]LowStockProduct, error)
}

// ImportClient defines the interface for the backend's import endpoints
type ImportClient interface {
	ExtractFromImages(ctx context.Context, files []ImageFile) (*BatchExtractionResponse, error)
	BulkCreateProducts(ctx context.Context, req *BulkCreateRequest) (*BulkCreateResponse, error)
	MatchProduct(ctx context.Context, description string, suggestedCategory *string) (*MatchProductResponse, error)
	AutocompleteProduct(ctx context.Context, partialText string, context_ *string) (*AutocompleteResponse, error)
	ImportHealth(ctx context.Context) (*ImportHealthResponse, error)
}

// ImageFile is an in-memory invoice image queued for extraction
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the file size in bytes
func (f *ImageFile) Size() int64 {
	return int64(len(f.Data))
}
