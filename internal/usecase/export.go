package usecase

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/comarapa/catalog-desk/internal/domain"
)

// ExportReviewXLSX writes the session's current batch, with edit
// overlays applied, as a spreadsheet for offline review. One row per
// line item in flat-list order, grouped by invoice.
func ExportReviewXLSX(sess *Session, w io.Writer) error {
	batch := sess.State().ExtractionResult
	if batch == nil {
		return domain.ErrNoBatch
	}
	rows := sess.EditableProducts()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := []string{
		"factura", "proveedor", "nro_factura",
		"descripcion_extraida", "cantidad", "precio_unitario_extraido",
		"nombre", "descripcion", "categoria", "precio_unitario", "precio_costo", "margen",
		"estado", "producto_vinculado", "confianza",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	// Walk invoices in order so each row can carry its invoice header;
	// the flat list is partitioned by cumulative per-invoice counts.
	flat := 0
	for invIdx, inv := range batch.Extractions {
		for range inv.Products {
			if flat >= len(rows) {
				break
			}
			p := rows[flat]
			r := flat + 2
			set := func(col int, value any) {
				cell, _ := excelize.CoordinatesToCellName(col, r)
				_ = f.SetCellValue(sheet, cell, value)
			}

			set(1, invIdx+1)
			set(2, derefString(inv.Invoice.SupplierName))
			set(3, derefString(inv.Invoice.InvoiceNumber))
			set(4, p.Extracted.Description)
			set(5, p.Extracted.Quantity)
			set(6, domain.FormatPrice(p.Extracted.UnitPrice))
			set(7, p.EditedName)
			set(8, p.EditedDescription)
			set(9, derefString(p.CategoryName))
			set(10, domain.FormatPrice(p.UnitPrice))
			if p.CostPrice != nil {
				set(11, domain.FormatPrice(*p.CostPrice))
			}
			if margin := domain.CalculateMargin(p.UnitPrice, p.CostPrice); margin != nil {
				set(12, fmt.Sprintf("%.1f%%", *margin))
			}
			if p.ShouldCreate {
				set(13, "crear")
			} else if p.LinkedProductID != nil {
				set(13, "vincular")
			} else {
				set(13, "omitir")
			}
			set(14, derefString(p.LinkedProductID))
			if top := p.TopMatch(); top != nil {
				set(15, domain.FormatConfidence(top.SimilarityScore))
			}

			flat++
		}
	}

	return f.Write(w)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
