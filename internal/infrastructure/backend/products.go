package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/comarapa/catalog-desk/internal/domain"
)

// SearchProducts searches the catalog by name or SKU. Empty or
// whitespace-only terms short-circuit to an empty result without a call.
func (c *Client) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	term := strings.TrimSpace(query)
	if term == "" {
		return []domain.Product{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("q", term)
	params.Set("limit", strconv.Itoa(limit))

	var resp domain.APIResponse[[]domain.Product]
	if err := c.getJSON(ctx, "/products/search", params, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return []domain.Product{}, nil
	}
	return resp.Data, nil
}

// GetProduct retrieves a single product by its id
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, domain.ErrInvalidRequest
	}

	var resp domain.APIResponse[domain.Product]
	if err := c.getJSON(ctx, "/products/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// GetProductBySKU retrieves a single product by its SKU
func (c *Client) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	if sku == "" {
		return nil, domain.ErrInvalidRequest
	}

	var resp domain.APIResponse[domain.Product]
	if err := c.getJSON(ctx, "/products/sku/"+url.PathEscape(sku), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ListProducts lists products with optional filters and pagination
func (c *Client) ListProducts(ctx context.Context, p domain.ListProductsParams) (*domain.PaginatedResponse[domain.Product], error) {
	params := url.Values{}
	if p.Page > 0 {
		params.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.Search != "" {
		params.Set("search", p.Search)
	}
	if p.CategoryID != "" {
		params.Set("category_id", p.CategoryID)
	}
	if p.MinPrice != nil {
		params.Set("min_price", fmt.Sprintf("%g", *p.MinPrice))
	}
	if p.MaxPrice != nil {
		params.Set("max_price", fmt.Sprintf("%g", *p.MaxPrice))
	}
	if p.InStock != nil {
		params.Set("in_stock", strconv.FormatBool(*p.InStock))
	}
	if p.IsActive != nil {
		params.Set("is_active", strconv.FormatBool(*p.IsActive))
	}

	var resp domain.PaginatedResponse[domain.Product]
	if err := c.getJSON(ctx, "/products", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetLowStockProducts lists products whose stock is at or below their
// minimum level
func (c *Client) GetLowStockProducts(ctx context.Context) ([]domain.LowStockProduct, error) {
	var resp domain.APIResponse[[]domain.LowStockProduct]
	if err := c.getJSON(ctx, "/products/low-stock", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return []domain.LowStockProduct{}, nil
	}
	return resp.Data, nil
}
