package quotations

import (
	"sort"
	"time"
)

// PartQuote is one vendor's quote for a single part, flattened for the
// by-part comparison view.
type PartQuote struct {
	VendorID    string
	VendorName  string
	SubmittedAt time.Time
	UnitPrice   float64
	LineTotal   float64
	FreightCost float64
	// Best marks every quote whose unit price equals the part's minimum.
	// Ties produce multiple best badges.
	Best bool
}

// PartOffers is the per-part bucket: the nominal quantity and all vendor
// quotes for that part, cheapest first.
type PartOffers struct {
	PartName string
	Quantity int
	Quotes   []PartQuote
}

// BestUnitPrice returns the lowest quoted unit price for the part.
func (p *PartOffers) BestUnitPrice() float64 {
	if len(p.Quotes) == 0 {
		return 0
	}
	return p.Quotes[0].UnitPrice
}

// PartGroups holds the by-part view of a quotation's offers. Parts keep
// the order in which they first appeared across the offers.
type PartGroups struct {
	order []string
	parts map[string]*PartOffers
}

// GroupByPart buckets every offer line by part name. Within each bucket
// quotes are sorted ascending by unit price; equal prices keep their
// submission order. All vendors are expected to quote the same quantity
// per part; the bucket records whichever quantity was seen first and no
// reconciliation is attempted.
func GroupByPart(offers []VendorOffer) *PartGroups {
	g := &PartGroups{parts: make(map[string]*PartOffers)}

	for _, offer := range offers {
		for _, line := range offer.Lines {
			bucket, ok := g.parts[line.PartName]
			if !ok {
				bucket = &PartOffers{PartName: line.PartName, Quantity: line.Quantity}
				g.parts[line.PartName] = bucket
				g.order = append(g.order, line.PartName)
			}
			bucket.Quotes = append(bucket.Quotes, PartQuote{
				VendorID:    offer.VendorID,
				VendorName:  offer.VendorName,
				SubmittedAt: offer.SubmittedAt,
				UnitPrice:   line.UnitPrice,
				LineTotal:   line.UnitPrice * float64(line.Quantity),
				FreightCost: offer.FreightCost,
			})
		}
	}

	for _, name := range g.order {
		bucket := g.parts[name]
		sort.SliceStable(bucket.Quotes, func(i, j int) bool {
			return bucket.Quotes[i].UnitPrice < bucket.Quotes[j].UnitPrice
		})
		best := bucket.Quotes[0].UnitPrice
		for i := range bucket.Quotes {
			bucket.Quotes[i].Best = bucket.Quotes[i].UnitPrice == best
		}
	}

	return g
}

// Len returns the number of distinct parts.
func (g *PartGroups) Len() int {
	return len(g.order)
}

// Parts returns the buckets in first-appearance order.
func (g *PartGroups) Parts() []*PartOffers {
	out := make([]*PartOffers, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.parts[name])
	}
	return out
}

// Get returns the bucket for a part name.
func (g *PartGroups) Get(partName string) (*PartOffers, bool) {
	bucket, ok := g.parts[partName]
	return bucket, ok
}

// VendorBundle is one vendor's full offer summarized for the by-vendor
// comparison view.
type VendorBundle struct {
	Offer         VendorOffer
	PartsSubtotal float64
	Total         float64
	// Best marks the cheapest bundle, and only while the quotation is open.
	Best bool
	// Confirmed marks the vendor the order was placed with. It takes
	// precedence over Best in the view.
	Confirmed bool
}

// GroupByVendor summarizes each offer as parts subtotal plus freight and
// returns the bundles sorted ascending by total, stable on ties.
func GroupByVendor(quotation *Quotation, offers []VendorOffer) []VendorBundle {
	bundles := make([]VendorBundle, 0, len(offers))
	for _, offer := range offers {
		var subtotal float64
		for _, line := range offer.Lines {
			subtotal += line.UnitPrice * float64(line.Quantity)
		}
		bundles = append(bundles, VendorBundle{
			Offer:         offer,
			PartsSubtotal: subtotal,
			Total:         subtotal + offer.FreightCost,
		})
	}

	sort.SliceStable(bundles, func(i, j int) bool {
		return bundles[i].Total < bundles[j].Total
	})

	if quotation == nil || len(bundles) == 0 {
		return bundles
	}

	switch quotation.Status {
	case StatusOpen:
		bundles[0].Best = true
	case StatusOrderConfirmed, StatusCompleted:
		for i := range bundles {
			if bundles[i].Offer.VendorID == quotation.ConfirmedVendorID {
				bundles[i].Confirmed = true
			}
		}
	case StatusCancelled:
		// no badges on a cancelled quotation
	}

	return bundles
}
