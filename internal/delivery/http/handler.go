package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/comarapa/catalog-desk/internal/domain"
	"github.com/comarapa/catalog-desk/internal/infrastructure/backend"
	"github.com/comarapa/catalog-desk/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	search    *usecase.SearchService
	importer  *usecase.ImportService
	extractor *usecase.BatchExtractor
	sessions  *usecase.SessionRegistry
	catalog   domain.CatalogClient
	imports   domain.ImportClient
	log       *zap.SugaredLogger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	search *usecase.SearchService,
	importer *usecase.ImportService,
	extractor *usecase.BatchExtractor,
	sessions *usecase.SessionRegistry,
	catalog domain.CatalogClient,
	imports domain.ImportClient,
	log *zap.SugaredLogger,
) *Handler {
	return &Handler{
		search:    search,
		importer:  importer,
		extractor: extractor,
		sessions:  sessions,
		catalog:   catalog,
		imports:   imports,
		log:       log,
	}
}

// HealthCheck returns the health status of the desk service
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "catalog-desk",
		"version":  "1.0.0",
		"sessions": h.sessions.Len(),
	})
}

// respondError maps domain errors onto HTTP statuses with the
// user-facing message in the error field
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrNoFiles),
		errors.Is(err, domain.ErrTooManyFiles),
		errors.Is(err, domain.ErrUnsupportedFileType),
		errors.Is(err, domain.ErrFileTooLarge),
		errors.Is(err, domain.ErrNoBatch),
		errors.Is(err, domain.ErrNothingToCreate):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrBackendTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrBackendUnavailable):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": backend.ErrorMessage(err)})
}

// SearchProducts handles GET /products/search?q=...&limit=...
func (h *Handler) SearchProducts(c *gin.Context) {
	term := c.Query("q")
	result := h.search.Search(c.Request.Context(), term)
	if result.IsError {
		h.respondError(c, result.Err)
		return
	}
	if result.Data == nil {
		result.Data = []domain.Product{}
	}
	c.JSON(http.StatusOK, gin.H{
		"products": result.Data,
		"stale":    result.IsFetching,
	})
}

// GetProduct handles GET /products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	result := h.search.Product(c.Request.Context(), c.Param("id"))
	if result.IsError {
		h.respondError(c, result.Err)
		return
	}
	if result.Data == nil {
		h.respondError(c, domain.ErrProductNotFound)
		return
	}
	c.JSON(http.StatusOK, result.Data)
}

// GetProductBySKU handles GET /products/sku/:sku
func (h *Handler) GetProductBySKU(c *gin.Context) {
	result := h.search.ProductBySKU(c.Request.Context(), c.Param("sku"))
	if result.IsError {
		h.respondError(c, result.Err)
		return
	}
	if result.Data == nil {
		h.respondError(c, domain.ErrProductNotFound)
		return
	}
	c.JSON(http.StatusOK, result.Data)
}

// ListProducts handles GET /products with pagination and filters,
// proxied straight through to the backend
func (h *Handler) ListProducts(c *gin.Context) {
	var params domain.ListProductsParams
	params.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	params.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	params.CategoryID = c.Query("category_id")
	params.Search = c.Query("search")

	resp, err := h.catalog.ListProducts(c.Request.Context(), params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetLowStockProducts handles GET /products/low-stock
func (h *Handler) GetLowStockProducts(c *gin.Context) {
	result := h.search.LowStock(c.Request.Context())
	if result.IsError {
		h.respondError(c, result.Err)
		return
	}
	if result.Data == nil {
		result.Data = []domain.LowStockProduct{}
	}
	c.JSON(http.StatusOK, gin.H{"products": result.Data})
}

// CreateSession handles POST /import/sessions
func (h *Handler) CreateSession(c *gin.Context) {
	id, sess := h.sessions.Create()
	c.JSON(http.StatusCreated, gin.H{
		"session_id": id,
		"session":    sessionView(sess),
	})
}

// GetSession handles GET /import/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(sess))
}

// DeleteSession handles DELETE /import/sessions/:id
func (h *Handler) DeleteSession(c *gin.Context) {
	h.sessions.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// ExtractSession handles POST /import/sessions/:id/extract. The images
// arrive as a multipart form under the "files" field; the request
// blocks until extraction completes, which can take over a minute.
func (h *Handler) ExtractSession(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		h.respondError(c, domain.ErrNoFiles)
		return
	}

	fileHeaders := form.File["files"]
	files := make([]domain.ImageFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		src, err := fh.Open()
		if err != nil {
			h.respondError(c, err)
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			h.respondError(c, err)
			return
		}
		files = append(files, domain.ImageFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	if err := h.importer.Process(c.Request.Context(), sess, files); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(sess))
}

// ExtractionProgress handles GET /import/progress
func (h *Handler) ExtractionProgress(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"progress":      h.extractor.Progress(),
		"is_extracting": h.extractor.IsExtracting(),
	})
}

type selectInvoiceRequest struct {
	Index int `json:"index"`
}

// SelectInvoice handles POST /import/sessions/:id/select-invoice
func (h *Handler) SelectInvoice(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req selectInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.ErrInvalidRequest)
		return
	}

	sess.SelectInvoice(req.Index)
	c.JSON(http.StatusOK, sessionView(sess))
}

type selectProductRequest struct {
	// Index null clears the selection.
	Index *int `json:"index"`
}

// SelectProduct handles POST /import/sessions/:id/select-product
func (h *Handler) SelectProduct(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req selectProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.ErrInvalidRequest)
		return
	}

	sess.SelectProduct(req.Index)
	c.JSON(http.StatusOK, sessionView(sess))
}

// PutEdit handles PUT /import/sessions/:id/edits/:index
func (h *Handler) PutEdit(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 || index >= len(sess.AllProducts()) {
		h.respondError(c, domain.ErrInvalidRequest)
		return
	}

	var edit usecase.EditedProduct
	if err := c.ShouldBindJSON(&edit); err != nil {
		h.respondError(c, domain.ErrInvalidRequest)
		return
	}

	sess.SetEdit(index, edit)
	c.JSON(http.StatusOK, sessionView(sess))
}

// DeleteEdit handles DELETE /import/sessions/:id/edits/:index
func (h *Handler) DeleteEdit(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.respondError(c, domain.ErrInvalidRequest)
		return
	}

	sess.ClearEdit(index)
	c.JSON(http.StatusOK, sessionView(sess))
}

// CreateProducts handles POST /import/sessions/:id/create
func (h *Handler) CreateProducts(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp, err := h.importer.CreateProducts(c.Request.Context(), sess)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":  resp,
		"session": sessionView(sess),
	})
}

// ResetSession handles POST /import/sessions/:id/reset
func (h *Handler) ResetSession(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	sess.Reset()
	c.JSON(http.StatusOK, sessionView(sess))
}

// ClearSessionError handles POST /import/sessions/:id/clear-error
func (h *Handler) ClearSessionError(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	sess.ClearError()
	c.JSON(http.StatusOK, sessionView(sess))
}

// ExportSession handles GET /import/sessions/:id/export, streaming the
// review sheet as an xlsx attachment
func (h *Handler) ExportSession(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="revision-importacion.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := usecase.ExportReviewXLSX(sess, c.Writer); err != nil {
		h.respondError(c, err)
		return
	}
}

type matchRequest struct {
	Description       string  `json:"description" binding:"required"`
	SuggestedCategory *string `json:"suggested_category"`
}

// MatchProduct handles POST /import/match, proxying a single
// description to the backend matcher
func (h *Handler) MatchProduct(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.ErrInvalidRequest)
		return
	}

	resp, err := h.imports.MatchProduct(c.Request.Context(), req.Description, req.SuggestedCategory)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type autocompleteRequest struct {
	PartialText string  `json:"partial_text" binding:"required"`
	Context     *string `json:"context"`
}

// AutocompleteProduct handles POST /import/autocomplete
func (h *Handler) AutocompleteProduct(c *gin.Context) {
	var req autocompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.ErrInvalidRequest)
		return
	}

	resp, err := h.imports.AutocompleteProduct(c.Request.Context(), req.PartialText, req.Context)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ImportHealth handles GET /import/health
func (h *Handler) ImportHealth(c *gin.Context) {
	resp, err := h.imports.ImportHealth(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
