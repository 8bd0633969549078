// Package quotations is the client for the quotation endpoints plus the
// offer aggregation and selection engine used by the quotation detail view.
package quotations

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/techcorp/partsquote/rest"
)

const basePath = "/api/quotations"

// Status is the quotation lifecycle. It is a closed set: every switch over
// it handles all four values so a new status is a compile-visible change.
type Status string

const (
	StatusOpen           Status = "OPEN"
	StatusOrderConfirmed Status = "ORDER_CONFIRMED"
	StatusCompleted      Status = "COMPLETED"
	StatusCancelled      Status = "CANCELLED"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusOrderConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Selectable reports whether vendor selection is still allowed. Any status
// other than Open freezes the selection set.
func (s Status) Selectable() bool {
	return s == StatusOpen
}

// Decided reports whether a confirmed-vendor badge applies.
func (s Status) Decided() bool {
	return s == StatusOrderConfirmed || s == StatusCompleted
}

// Label returns the display label for the status.
func (s Status) Label() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusOrderConfirmed:
		return "Order confirmed"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// Requester identifies the staff member who opened the quotation.
type Requester struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Item is one requested part within a quotation.
type Item struct {
	PartName       string `json:"partName"`
	Quantity       int    `json:"quantity"`
	ExpectedQuotes int    `json:"expectedQuotes"`
	ReceivedQuotes int    `json:"receivedQuotes"`
}

// Quotation is a request for pricing on a set of parts for one vehicle.
type Quotation struct {
	ID                string     `json:"id"`
	LicensePlate      string     `json:"licensePlate"`
	Brand             string     `json:"brand"`
	Model             string     `json:"model,omitempty"`
	Year              int        `json:"year,omitempty"`
	Engine            string     `json:"engine,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	Items             []Item     `json:"items"`
	Status            Status     `json:"status"`
	ConfirmedVendorID string     `json:"confirmedVendorId,omitempty"`
	Requester         *Requester `json:"requester,omitempty"`
}

// OfferLine is one part's price and quantity within a vendor offer.
type OfferLine struct {
	PartName  string  `json:"partName"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// VendorOffer is one vendor's full response to a quotation. Freight is
// vendor-level: one flat cost covering every line.
type VendorOffer struct {
	VendorID    string      `json:"vendorId"`
	VendorName  string      `json:"vendorName"`
	SubmittedAt time.Time   `json:"submittedAt"`
	FreightCost float64     `json:"freightCost"`
	Lines       []OfferLine `json:"lines"`
}

// NewItem is one part requested on a new quotation.
type NewItem struct {
	PartName string `json:"partName"`
	Brand    string `json:"partBrand,omitempty"`
	Quantity int    `json:"quantity"`
}

// NewQuotation is the payload for opening a quotation and routing it to
// the selected vendors.
type NewQuotation struct {
	LicensePlate string    `json:"licensePlate"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model,omitempty"`
	Year         int       `json:"year,omitempty"`
	Engine       string    `json:"engine,omitempty"`
	Items        []NewItem `json:"items"`
	VendorIDs    []string  `json:"selectedVendorIds"`
}

// ListParams filters the paginated quotation list. Page is zero-based.
type ListParams struct {
	LicensePlate string
	Status       Status
	Page         int
	Size         int
}

// Service calls the quotation endpoints.
type Service struct {
	api *rest.Client
}

// NewService creates a quotation service on top of the shared API client.
func NewService(api *rest.Client) *Service {
	return &Service{api: api}
}

// List returns one page of quotations.
func (s *Service) List(ctx context.Context, params ListParams) (rest.Page[Quotation], error) {
	query := url.Values{}
	if params.LicensePlate != "" {
		query.Set("licensePlate", params.LicensePlate)
	}
	if params.Status != "" {
		query.Set("status", string(params.Status))
	}
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("size", strconv.Itoa(params.Size))

	var page rest.Page[Quotation]
	if err := s.api.Get(ctx, basePath, query, &page); err != nil {
		return rest.Page[Quotation]{}, err
	}
	return page, nil
}

// Get returns a single quotation by id. A missing id yields ErrNotFound;
// the caller renders the not-found state and never invokes the aggregator.
func (s *Service) Get(ctx context.Context, id string) (*Quotation, error) {
	var quotation Quotation
	if err := s.api.Get(ctx, basePath+"/"+url.PathEscape(id), nil, &quotation); err != nil {
		return nil, err
	}
	return &quotation, nil
}

// Create opens a new quotation.
func (s *Service) Create(ctx context.Context, payload NewQuotation) (*Quotation, error) {
	var quotation Quotation
	if err := s.api.Post(ctx, basePath, payload, &quotation); err != nil {
		return nil, err
	}
	return &quotation, nil
}

// Offers returns the vendor offers submitted for a quotation.
func (s *Service) Offers(ctx context.Context, id string) ([]VendorOffer, error) {
	var offers []VendorOffer
	if err := s.api.Get(ctx, basePath+"/"+url.PathEscape(id)+"/offers", nil, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

type confirmOrderRequest struct {
	Selections []SelectionEntry `json:"selections"`
	Total      float64          `json:"total"`
}

// ConfirmOrder places the final cross-vendor order built from the current
// selection. The backend owns the status transition; the returned quotation
// reflects it.
func (s *Service) ConfirmOrder(ctx context.Context, id string, selection *Selection) (*Quotation, error) {
	if selection == nil || selection.Len() == 0 {
		return nil, errors.New("confirm order: empty selection")
	}

	payload := confirmOrderRequest{
		Selections: selection.Entries(),
		Total:      selection.Total(),
	}

	var quotation Quotation
	if err := s.api.Post(ctx, fmt.Sprintf("%s/%s/confirm", basePath, url.PathEscape(id)), payload, &quotation); err != nil {
		return nil, err
	}
	return &quotation, nil
}
