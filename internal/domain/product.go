package domain

// Category represents a product category in the catalog
type Category struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// Product represents a catalog product as served by the backend
type Product struct {
	ID            string    `json:"id"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	CategoryID    *string   `json:"category_id"`
	UnitPrice     float64   `json:"unit_price"`
	CostPrice     *float64  `json:"cost_price"`
	CurrentStock  int       `json:"current_stock"`
	MinStockLevel int       `json:"min_stock_level"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     string    `json:"created_at"`
	UpdatedAt     string    `json:"updated_at"`
	Category      *Category `json:"category"`
}

// LowStockProduct is a product whose stock dropped below its minimum level
type LowStockProduct struct {
	ID            string `json:"id"`
	SKU           string `json:"sku"`
	Name          string `json:"name"`
	CurrentStock  int    `json:"current_stock"`
	MinStockLevel int    `json:"min_stock_level"`
}

// APIResponse is the backend's standard response wrapper
type APIResponse[T any] struct {
	Success bool    `json:"success"`
	Data    T       `json:"data"`
	Message *string `json:"message"`
}

// PaginationMeta describes the page window of a list response
type PaginationMeta struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// PaginatedResponse is the backend's wrapper for list endpoints
type PaginatedResponse[T any] struct {
	Success    bool           `json:"success"`
	Data       []T            `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
	Message    *string        `json:"message"`
}

// ErrorResponse is the backend's error envelope.
// Detail may also arrive as a FastAPI validation array; that shape is
// handled by the backend client when formatting messages.
type ErrorResponse struct {
	Success bool    `json:"success"`
	Error   string  `json:"error"`
	Detail  *string `json:"detail"`
}

// ListProductsParams are the optional filters accepted by the product list endpoint
type ListProductsParams struct {
	Page       int
	PageSize   int
	Search     string
	CategoryID string
	MinPrice   *float64
	MaxPrice   *float64
	InStock    *bool
	IsActive   *bool
}
