package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/comarapa/catalog-desk/internal/domain"
)

// ExtractFromImages uploads a batch of invoice images for AI extraction
// and catalog matching. The call uses the extended import timeout.
func (c *Client) ExtractFromImages(ctx context.Context, files []domain.ImageFile) (*domain.BatchExtractionResponse, error) {
	if len(files) == 0 {
		return nil, domain.ErrNoFiles
	}

	makeBody := func() (io.Reader, string, error) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)

		for _, f := range files {
			header := make(textproto.MIMEHeader)
			header.Set("Content-Disposition",
				fmt.Sprintf(`form-data; name="files"; filename=%q`, escapeQuotes(f.Name)))
			header.Set("Content-Type", f.ContentType)

			part, err := writer.CreatePart(header)
			if err != nil {
				return nil, "", fmt.Errorf("failed to build upload: %w", err)
			}
			if _, err := part.Write(f.Data); err != nil {
				return nil, "", fmt.Errorf("failed to build upload: %w", err)
			}
		}

		if err := writer.Close(); err != nil {
			return nil, "", fmt.Errorf("failed to build upload: %w", err)
		}
		return &buf, writer.FormDataContentType(), nil
	}

	body, status, err := c.doWithRetry(ctx, c.importClient, http.MethodPost, "/import/extract-from-images", nil, makeBody)
	if err != nil {
		return nil, err
	}

	var resp domain.BatchExtractionResponse
	if err := c.decode("/import/extract-from-images", body, status, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BulkCreateProducts creates multiple products in one call. Partial
// failure is a normal response: inspect TotalFailed and Results.
func (c *Client) BulkCreateProducts(ctx context.Context, req *domain.BulkCreateRequest) (*domain.BulkCreateResponse, error) {
	if req == nil || len(req.Products) == 0 {
		return nil, domain.ErrNothingToCreate
	}

	var resp domain.BulkCreateResponse
	if err := c.postJSON(ctx, "/import/bulk-create", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MatchProduct matches a single description against the existing catalog
func (c *Client) MatchProduct(ctx context.Context, description string, suggestedCategory *string) (*domain.MatchProductResponse, error) {
	if strings.TrimSpace(description) == "" {
		return nil, domain.ErrInvalidRequest
	}

	payload := map[string]interface{}{
		"description":        description,
		"suggested_category": suggestedCategory,
	}

	var resp domain.MatchProductResponse
	if err := c.postJSON(ctx, "/import/match-products", payload, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AutocompleteProduct asks the backend for AI completions of a partial
// product name
func (c *Client) AutocompleteProduct(ctx context.Context, partialText string, context_ *string) (*domain.AutocompleteResponse, error) {
	if strings.TrimSpace(partialText) == "" {
		return nil, domain.ErrInvalidRequest
	}

	payload := map[string]interface{}{
		"partial_text": partialText,
		"context":      context_,
	}

	var resp domain.AutocompleteResponse
	if err := c.postJSON(ctx, "/import/autocomplete-product", payload, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ImportHealth reports whether the backend's import service is configured
func (c *Client) ImportHealth(ctx context.Context) (*domain.ImportHealthResponse, error) {
	var resp domain.ImportHealthResponse
	if err := c.getJSON(ctx, "/import/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
