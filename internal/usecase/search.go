package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/comarapa/catalog-desk/config"
	"github.com/comarapa/catalog-desk/internal/domain"
	"github.com/comarapa/catalog-desk/internal/query"
)

// SearchService answers product lookups through the query store, so
// repeated searches for the same term are served from cache and stale
// entries refresh in the background
type SearchService struct {
	client   domain.CatalogClient
	store    *query.Store
	limit    int
	minChars int
	debounce time.Duration
}

// NewSearchService creates a search service with the configured limits
func NewSearchService(client domain.CatalogClient, store *query.Store, cfg config.SearchConfig) *SearchService {
	return &SearchService{
		client:   client,
		store:    store,
		limit:    cfg.Limit,
		minChars: cfg.MinChars,
		debounce: time.Duration(cfg.DebounceMs) * time.Millisecond,
	}
}

// Search resolves a search term through the store. Terms shorter than
// the minimum are never sent to the backend; they return an empty,
// non-loading result so callers can render "keep typing" states.
func (s *SearchService) Search(ctx context.Context, term string) query.Result[[]domain.Product] {
	term = strings.TrimSpace(term)
	enabled := len([]rune(term)) >= s.minChars
	key := query.Key("products:search", term, s.limit)
	return query.Fetch(ctx, s.store, key, enabled, func(ctx context.Context) ([]domain.Product, error) {
		return s.client.SearchProducts(ctx, term, s.limit)
	})
}

// Product resolves a product by id through the store. An empty id is a
// disabled query, not an error.
func (s *SearchService) Product(ctx context.Context, id string) query.Result[*domain.Product] {
	id = strings.TrimSpace(id)
	key := query.Key("products:id", id)
	return query.Fetch(ctx, s.store, key, id != "", func(ctx context.Context) (*domain.Product, error) {
		return s.client.GetProduct(ctx, id)
	})
}

// ProductBySKU resolves a product by SKU through the store
func (s *SearchService) ProductBySKU(ctx context.Context, sku string) query.Result[*domain.Product] {
	sku = strings.TrimSpace(sku)
	key := query.Key("products:sku", sku)
	return query.Fetch(ctx, s.store, key, sku != "", func(ctx context.Context) (*domain.Product, error) {
		return s.client.GetProductBySKU(ctx, sku)
	})
}

// LowStock lists products at or below their minimum stock level,
// cached like any other query
func (s *SearchService) LowStock(ctx context.Context) query.Result[[]domain.LowStockProduct] {
	key := query.Key("products:low-stock")
	return query.Fetch(ctx, s.store, key, true, func(ctx context.Context) ([]domain.LowStockProduct, error) {
		return s.client.GetLowStockProducts(ctx)
	})
}

// NewTermDebouncer returns a debouncer tuned to the configured search
// delay, for callers feeding keystrokes
func (s *SearchService) NewTermDebouncer() *query.Debouncer[string] {
	return query.NewDebouncer[string](s.debounce)
}

// MinChars returns the minimum term length for a live search
func (s *SearchService) MinChars() int {
	return s.minChars
}
