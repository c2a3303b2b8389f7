package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comarapa/catalog-desk/internal/domain"
)

func TestExtractFromImages_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/import/extract-from-images", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		require.NoError(t, r.ParseMultipartForm(32<<20))
		files := r.MultipartForm.File["files"]
		require.Len(t, files, 2)
		assert.Equal(t, "factura-1.jpg", files[0].Filename)
		assert.Equal(t, "image/jpeg", files[0].Header.Get("Content-Type"))

		resp := domain.BatchExtractionResponse{
			Extractions: []domain.ExtractionResult{
				{Products: make([]domain.ExtractedProduct, 2), ExtractionConfidence: 0.9},
				{Products: make([]domain.ExtractedProduct, 1), ExtractionConfidence: 0.8},
			},
			MatchedProducts:      make([]domain.MatchedProduct, 3),
			TotalProducts:        3,
			TotalImagesProcessed: 2,
			ProcessingTimeMs:     4200,
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	batch, err := client.ExtractFromImages(context.Background(), []domain.ImageFile{
		{Name: "factura-1.jpg", ContentType: "image/jpeg", Data: []byte("jpeg-bytes")},
		{Name: "factura-2.png", ContentType: "image/png", Data: []byte("png-bytes")},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, batch.TotalImagesProcessed)
	assert.Len(t, batch.MatchedProducts, 3)
}

func TestExtractFromImages_NoFiles(t *testing.T) {
	client := newTestClient("http://localhost:1")
	_, err := client.ExtractFromImages(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNoFiles)
}

func TestBulkCreateProducts_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/import/bulk-create", r.URL.Path)

		var req domain.BulkCreateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Products, 2)
		assert.True(t, req.CreateMissingCategories)
		assert.Equal(t, "Aceite Fino 1L", req.Products[0].Name)

		id1, sku1 := "p-10", "ACF-001"
		resp := domain.BulkCreateResponse{
			TotalRequested: 2,
			TotalCreated:   2,
			Results: []domain.BulkCreateResultItem{
				{Index: 0, Success: true, ProductID: &id1, ProductSKU: &sku1},
				{Index: 1, Success: true},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.BulkCreateProducts(context.Background(), &domain.BulkCreateRequest{
		Products: []domain.BulkProductItem{
			{Name: "Aceite Fino 1L", UnitPrice: 15},
			{Name: "Azúcar Guabirá 1kg", UnitPrice: 8},
		},
		CreateMissingCategories: true,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalCreated)
	assert.Equal(t, 0, resp.TotalFailed)
}

func TestBulkCreateProducts_EmptyRequest(t *testing.T) {
	client := newTestClient("http://localhost:1")

	_, err := client.BulkCreateProducts(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNothingToCreate)

	_, err = client.BulkCreateProducts(context.Background(), &domain.BulkCreateRequest{})
	assert.ErrorIs(t, err, domain.ErrNothingToCreate)
}

func TestBulkCreateProducts_ValidationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":[{"loc":["body","products",0,"unit_price"],"msg":"ensure this value is greater than 0","type":"value_error"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.BulkCreateProducts(context.Background(), &domain.BulkCreateRequest{
		Products: []domain.BulkProductItem{{Name: "Sin precio"}},
	})

	require.Error(t, err)
	assert.Equal(t, "unit_price: ensure this value is greater than 0", ErrorMessage(err))
}

func TestMatchProduct_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/import/match-products", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "aceite fino botella 1 litro", req["description"])

		resp := domain.MatchProductResponse{
			Matched: domain.MatchedProduct{
				SuggestedName: "Aceite Fino 1L",
				Matches: []domain.ProductMatch{
					{ExistingProductID: "p-10", SimilarityScore: 0.91, Confidence: domain.ConfidenceHigh},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.MatchProduct(context.Background(), "aceite fino botella 1 litro", nil)

	require.NoError(t, err)
	require.Len(t, resp.Matched.Matches, 1)
	assert.Equal(t, domain.ConfidenceHigh, resp.Matched.Matches[0].Confidence)
}

func TestImportHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/import/health", r.URL.Path)
		model := "gpt-4o-mini"
		json.NewEncoder(w).Encode(domain.ImportHealthResponse{
			Status:            "healthy",
			AIConfigured:      true,
			AIModel:           &model,
			MaxImagesPerBatch: 20,
			MaxImageSizeMB:    10,
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	health, err := client.ImportHealth(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 20, health.MaxImagesPerBatch)
}
