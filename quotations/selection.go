package quotations

import (
	errs "github.com/techcorp/partsquote/internal/errors"
)

// SelectionEntry is a tentative choice of which vendor supplies one part.
type SelectionEntry struct {
	PartName    string  `json:"partName"`
	VendorID    string  `json:"vendorId"`
	VendorName  string  `json:"vendorName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	FreightCost float64 `json:"freightCost"`
}

// Selection is the ephemeral cross-vendor pick built while a quotation
// detail view is open. It holds at most one entry per part: selecting a
// vendor for a part replaces any other vendor previously selected for it.
// Different parts may come from different vendors.
type Selection struct {
	status  Status
	entries []SelectionEntry
}

// NewSelection creates a selection for a quotation in the given status.
// Only an open quotation accepts toggles; any other status freezes the set.
func NewSelection(status Status) *Selection {
	return &Selection{status: status}
}

// Toggle applies one checkbox change. Checking inserts the entry and drops
// any other vendor's entry for the same part; unchecking removes the entry
// when the part is currently held by that vendor.
func (s *Selection) Toggle(entry SelectionEntry, checked bool) error {
	if !s.status.Selectable() {
		return errs.ErrQuotationNotOpen
	}

	kept := make([]SelectionEntry, 0, len(s.entries)+1)
	for _, e := range s.entries {
		if e.PartName == entry.PartName {
			if !checked && e.VendorID != entry.VendorID {
				// Unchecking a vendor that does not hold the part leaves
				// the current holder in place.
				kept = append(kept, e)
			}
			continue
		}
		kept = append(kept, e)
	}
	if checked {
		kept = append(kept, entry)
	}
	s.entries = kept
	return nil
}

// Selected reports whether the given vendor currently holds the part.
func (s *Selection) Selected(partName, vendorID string) bool {
	for _, e := range s.entries {
		if e.PartName == partName && e.VendorID == vendorID {
			return true
		}
	}
	return false
}

// Disabled reports whether the checkbox for the given vendor should be
// rendered inactive: another vendor already holds the part, or the
// quotation is no longer open.
func (s *Selection) Disabled(partName, vendorID string) bool {
	if !s.status.Selectable() {
		return true
	}
	for _, e := range s.entries {
		if e.PartName == partName && e.VendorID != vendorID {
			return true
		}
	}
	return false
}

// Len returns the number of selected parts.
func (s *Selection) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the selection in insertion order.
func (s *Selection) Entries() []SelectionEntry {
	out := make([]SelectionEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Total computes the blended order total: per vendor, the sum of unit
// price times quantity over that vendor's selected parts plus the vendor's
// freight charged exactly once, summed across vendors. It is a pure
// function of the current selection.
func (s *Selection) Total() float64 {
	type vendorTotal struct {
		parts   float64
		freight float64
	}

	byVendor := make(map[string]*vendorTotal)
	for _, e := range s.entries {
		vt, ok := byVendor[e.VendorID]
		if !ok {
			vt = &vendorTotal{freight: e.FreightCost}
			byVendor[e.VendorID] = vt
		}
		vt.parts += e.UnitPrice * float64(e.Quantity)
	}

	var total float64
	for _, vt := range byVendor {
		total += vt.parts + vt.freight
	}
	return total
}
