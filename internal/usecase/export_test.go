package usecase

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/comarapa/catalog-desk/internal/domain"
)

func TestExportReviewXLSX(t *testing.T) {
	t.Run("no batch", func(t *testing.T) {
		var buf bytes.Buffer
		err := ExportReviewXLSX(NewSession(), &buf)
		if !errors.Is(err, domain.ErrNoBatch) {
			t.Errorf("error = %v, want ErrNoBatch", err)
		}
	})

	t.Run("writes one row per line item with overlays applied", func(t *testing.T) {
		sess := NewSession()
		sess.SetExtractionResult(testBatch())
		name := "Nombre Editado"
		sess.SetEdit(2, EditedProduct{Name: &name})

		var buf bytes.Buffer
		if err := ExportReviewXLSX(sess, &buf); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		f, err := excelize.OpenReader(&buf)
		if err != nil {
			t.Fatalf("output is not a readable workbook: %v", err)
		}
		defer f.Close()
		sheet := f.GetSheetName(0)

		rows, err := f.GetRows(sheet)
		if err != nil {
			t.Fatalf("reading rows: %v", err)
		}
		// Header plus five line items.
		if len(rows) != 6 {
			t.Fatalf("rows = %d, want 6", len(rows))
		}
		if rows[0][0] != "factura" || rows[0][6] != "nombre" {
			t.Errorf("unexpected headers: %v", rows[0])
		}

		// Row 4 is flat index 2: second invoice, edited name.
		got, err := f.GetCellValue(sheet, "A4")
		if err != nil || got != "2" {
			t.Errorf("invoice number = %q, want 2", got)
		}
		got, _ = f.GetCellValue(sheet, "G4")
		if got != "Nombre Editado" {
			t.Errorf("name = %q, want the edit overlay", got)
		}

		// First invoice rows carry its supplier.
		got, _ = f.GetCellValue(sheet, "B2")
		if got != "Distribuidora Santa Cruz" {
			t.Errorf("supplier = %q", got)
		}

		// Status column distinguishes create from link.
		got, _ = f.GetCellValue(sheet, "M2")
		if got != "crear" {
			t.Errorf("status = %q, want crear", got)
		}
		got, _ = f.GetCellValue(sheet, "M3")
		if got != "vincular" {
			t.Errorf("status = %q, want vincular", got)
		}
	})
}
