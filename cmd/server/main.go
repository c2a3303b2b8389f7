package main

import (
	"fmt"
	"log"

	"github.com/comarapa/catalog-desk/config"
	httpDelivery "github.com/comarapa/catalog-desk/internal/delivery/http"
	"github.com/comarapa/catalog-desk/internal/infrastructure/backend"
	"github.com/comarapa/catalog-desk/internal/infrastructure/cache"
	"github.com/comarapa/catalog-desk/internal/logger"
	"github.com/comarapa/catalog-desk/internal/query"
	"github.com/comarapa/catalog-desk/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg := logger.GetLogger()
	defer logger.Close()

	logg.Infow("starting catalog desk",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"backend", cfg.Backend.BaseURL)

	// Infrastructure: cache and backend client
	memoryCache := cache.NewMemoryCache()
	client := backend.NewClient(cfg.Backend.BaseURL, backend.Options{
		Timeout:       cfg.Backend.Timeout,
		ImportTimeout: cfg.Backend.ImportTimeout,
		MaxRetries:    cfg.Backend.MaxRetries,
	}, logg)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		client.SetDebug(true)
		logg.Debug("backend client debug mode enabled")
	}

	// Usecase layer
	store := query.NewStore(memoryCache, cfg.Search.StaleTTL, cfg.Search.CacheTTL, logg)
	searchService := usecase.NewSearchService(client, store, cfg.Search)
	extractor := usecase.NewBatchExtractor(client, cfg.Import, logg)
	importService := usecase.NewImportService(client, extractor, backend.ErrorMessage, logg)
	registry := usecase.NewSessionRegistry(cfg.Sessions.IdleTTL, logg)
	defer registry.Close()

	logg.Infow("import limits",
		"max_images", cfg.Import.MaxImages,
		"max_image_size_mb", cfg.Import.MaxImageSizeMB,
		"extraction_timeout", cfg.Backend.ImportTimeout)

	// HTTP delivery
	handler := httpDelivery.NewHandler(searchService, importService, extractor, registry, client, client, logg)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logg.Infow("server listening", "addr", addr)

	if err := router.Run(addr); err != nil {
		logg.Fatalw("server stopped", "error", err)
	}
}
