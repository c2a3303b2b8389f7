package usecase

import "github.com/comarapa/catalog-desk/internal/domain"

// EditedProduct is a user edit overlay for one extracted line item. Every
// field is optional: nil means "no override", and at merge time the value
// falls back to the extraction default for that field. Overlays are kept
// in a side map on the session, keyed by flat-list index, and are only
// consulted when bulk-create items are built.
type EditedProduct struct {
	Name            *string  `json:"name,omitempty"`
	Description     *string  `json:"description,omitempty"`
	CategoryID      *string  `json:"category_id,omitempty"`
	CategoryName    *string  `json:"category_name,omitempty"`
	UnitPrice       *float64 `json:"unit_price,omitempty"`
	CostPrice       *float64 `json:"cost_price,omitempty"`
	ShouldCreate    *bool    `json:"should_create,omitempty"`
	LinkedProductID *string  `json:"linked_product_id,omitempty"`
}

// EditableProduct is a matched line item expanded with its effective
// editable values, defaults filled from the extraction
type EditableProduct struct {
	domain.MatchedProduct

	EditedName        string   `json:"edited_name"`
	EditedDescription string   `json:"edited_description"`
	CategoryID        *string  `json:"category_id"`
	CategoryName      *string  `json:"category_name"`
	UnitPrice         float64  `json:"unit_price"`
	CostPrice         *float64 `json:"cost_price"`
	ShouldCreate      bool     `json:"should_create"`
	LinkedProductID   *string  `json:"linked_product_id"`
}

// ToEditableProduct seeds the editable view of a line item from its
// extraction: name from the cleaned suggestion, description and prices
// from the raw line, cost price empty, and the create flag mirroring the
// backend's new-product decision. Items with candidates link to the top
// match by default.
func ToEditableProduct(m domain.MatchedProduct) EditableProduct {
	e := EditableProduct{
		MatchedProduct:    m,
		EditedName:        m.SuggestedName,
		EditedDescription: m.Extracted.Description,
		CategoryName:      m.Extracted.SuggestedCategory,
		UnitPrice:         m.Extracted.UnitPrice,
		ShouldCreate:      m.IsNewProduct,
	}
	if top := m.TopMatch(); top != nil {
		id := top.ExistingProductID
		e.LinkedProductID = &id
	}
	return e
}

// applyEdit overlays a stored edit on the extraction defaults,
// field by field
func applyEdit(m domain.MatchedProduct, edit EditedProduct, ok bool) EditableProduct {
	e := ToEditableProduct(m)
	if !ok {
		return e
	}
	if edit.Name != nil {
		e.EditedName = *edit.Name
	}
	if edit.Description != nil {
		e.EditedDescription = *edit.Description
	}
	if edit.CategoryID != nil {
		e.CategoryID = edit.CategoryID
	}
	if edit.CategoryName != nil {
		e.CategoryName = edit.CategoryName
	}
	if edit.UnitPrice != nil {
		e.UnitPrice = *edit.UnitPrice
	}
	if edit.CostPrice != nil {
		e.CostPrice = edit.CostPrice
	}
	if edit.ShouldCreate != nil {
		e.ShouldCreate = *edit.ShouldCreate
	}
	if edit.LinkedProductID != nil {
		e.LinkedProductID = edit.LinkedProductID
	}
	return e
}

// EditableProducts returns the full flat list expanded with edit
// overlays applied, for review display and export
func (s *Session) EditableProducts() []EditableProduct {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.allProductsLocked()
	out := make([]EditableProduct, 0, len(all))
	for i, m := range all {
		edit, ok := s.edits[i]
		out = append(out, applyEdit(m, edit, ok))
	}
	return out
}

// BuildBulkItems merges edit overlays into the flat list and returns the
// bulk-create payload together with the flat-list index of each item, in
// request order. Included are items whose effective create flag is set,
// minus those already persisted by an earlier call; everything else is
// either linked to an existing product or skipped entirely.
func (s *Session) BuildBulkItems() ([]domain.BulkProductItem, []int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.allProductsLocked()
	items := make([]domain.BulkProductItem, 0, len(all))
	indices := make([]int, 0, len(all))

	for i, m := range all {
		if s.created[i] {
			continue
		}
		edit, ok := s.edits[i]
		e := applyEdit(m, edit, ok)
		if !e.ShouldCreate {
			continue
		}

		item := domain.BulkProductItem{
			Name:      e.EditedName,
			UnitPrice: e.UnitPrice,
		}
		if e.EditedDescription != "" {
			desc := e.EditedDescription
			item.Description = &desc
		}
		item.CategoryID = e.CategoryID
		item.CategoryName = e.CategoryName
		item.CostPrice = e.CostPrice

		items = append(items, item)
		indices = append(indices, i)
	}
	return items, indices
}
