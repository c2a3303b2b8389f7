// importctl runs a one-shot invoice import from the command line: it
// extracts products from the given images, prints the review table, and
// optionally creates the products or exports the review sheet.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/comarapa/catalog-desk/config"
	"github.com/comarapa/catalog-desk/internal/domain"
	"github.com/comarapa/catalog-desk/internal/infrastructure/backend"
	"github.com/comarapa/catalog-desk/internal/logger"
	"github.com/comarapa/catalog-desk/internal/usecase"
)

func main() {
	var (
		create  = flag.Bool("create", false, "bulk-create the new products after review")
		export  = flag.String("export", "", "write the review sheet to this xlsx path")
		timeout = flag.Duration("timeout", 3*time.Minute, "overall deadline for the run")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: importctl [flags] image.jpg [image2.jpg ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg := logger.GetLogger()
	defer logger.Close()

	files, err := loadImages(flag.Args())
	if err != nil {
		log.Fatalf("Failed to read images: %v", err)
	}

	client := backend.NewClient(cfg.Backend.BaseURL, backend.Options{
		Timeout:       cfg.Backend.Timeout,
		ImportTimeout: cfg.Backend.ImportTimeout,
		MaxRetries:    cfg.Backend.MaxRetries,
	}, logg)
	extractor := usecase.NewBatchExtractor(client, cfg.Import, logg)
	importer := usecase.NewImportService(client, extractor, backend.ErrorMessage, logg)
	sess := usecase.NewSession()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Printf("Extracting %d image(s) via %s\n", len(files), cfg.Backend.BaseURL)
	if err := runExtraction(ctx, importer, extractor, sess, files); err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}

	printReview(sess)

	if *export != "" {
		if err := writeExport(sess, *export); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		fmt.Printf("Review sheet written to %s\n", *export)
	}

	if *create {
		resp, err := importer.CreateProducts(ctx, sess)
		if err != nil {
			log.Fatalf("Bulk create failed: %v", err)
		}
		fmt.Printf("Created %d of %d products (%d categories added)\n",
			resp.TotalCreated, resp.TotalRequested, resp.CategoriesCreated)
		if resp.TotalFailed > 0 {
			fmt.Fprintf(os.Stderr, "Failures: %s\n", sess.State().Error)
			os.Exit(1)
		}
	}
}

// loadImages reads each path into memory, inferring the content type
// from the file extension
func loadImages(paths []string) ([]domain.ImageFile, error) {
	files := make([]domain.ImageFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
		files = append(files, domain.ImageFile{
			Name:        filepath.Base(path),
			ContentType: contentType,
			Data:        data,
		})
	}
	return files, nil
}

// runExtraction drives the workflow while rendering the extractor's
// progress figure as a terminal bar
func runExtraction(ctx context.Context, importer *usecase.ImportService, extractor *usecase.BatchExtractor, sess *usecase.Session, files []domain.ImageFile) error {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription("Extracting products"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	done := make(chan error, 1)
	go func() {
		done <- importer.Process(ctx, sess, files)
	}()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case err := <-done:
			_ = bar.Set(100)
			fmt.Println()
			return err
		case <-ticker.C:
			_ = bar.Set(int(extractor.Progress()))
		}
	}
}

func printReview(sess *usecase.Session) {
	state := sess.State()
	batch := state.ExtractionResult
	if batch == nil {
		return
	}

	fmt.Printf("\n%d invoice(s), %d product line(s): %d new, %d matched\n\n",
		len(batch.Extractions), len(batch.MatchedProducts),
		sess.NewProductsCount(), sess.MatchedProductsCount())

	for _, p := range sess.EditableProducts() {
		status := "link"
		if p.ShouldCreate {
			status = "create"
		} else if p.LinkedProductID == nil {
			status = "skip"
		}
		line := fmt.Sprintf("  [%s] %-40s %s", status, p.EditedName, domain.FormatPrice(p.UnitPrice))
		if top := p.TopMatch(); top != nil {
			line += fmt.Sprintf("  -> %s (%s)", top.ExistingProductName, domain.FormatConfidence(top.SimilarityScore))
		}
		fmt.Println(line)
	}
	fmt.Println()
}

func writeExport(sess *usecase.Session, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return usecase.ExportReviewXLSX(sess, f)
}
