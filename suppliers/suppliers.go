// Package suppliers is the client for the supplier and supplier-group
// endpoints.
package suppliers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/techcorp/partsquote/rest"
)

const basePath = "/api/suppliers"

// ShippingMode is how a quotation request reaches the supplier.
type ShippingMode string

const (
	ShippingWhatsApp ShippingMode = "WHATSAPP"
	ShippingEmail    ShippingMode = "EMAIL"
)

// Valid reports whether the mode is one of the known values.
func (m ShippingMode) Valid() bool {
	switch m {
	case ShippingWhatsApp, ShippingEmail:
		return true
	}
	return false
}

// Classification is the supplier's product segment.
type Classification string

const (
	ClassificationTires      Classification = "TIRE"
	ClassificationParts      Classification = "PARTS"
	ClassificationLubricants Classification = "LUBRICANTS"
)

// Valid reports whether the classification is one of the known values.
func (c Classification) Valid() bool {
	switch c {
	case ClassificationTires, ClassificationParts, ClassificationLubricants:
		return true
	}
	return false
}

// Supplier is a vendor registered to receive quotation requests.
type Supplier struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	SellerName     string         `json:"sellerName"`
	ShippingModes  []ShippingMode `json:"shippingModes"`
	Classification Classification `json:"classification"`
	Email          string         `json:"email,omitempty"`
	WhatsApp       string         `json:"whatsapp,omitempty"`
	Active         bool           `json:"active"`
}

// UpsertSupplier is the payload for create and update.
type UpsertSupplier struct {
	Name           string         `json:"name"`
	SellerName     string         `json:"sellerName,omitempty"`
	ShippingModes  []ShippingMode `json:"shippingModes"`
	Classification Classification `json:"classification"`
	Email          string         `json:"email,omitempty"`
	WhatsApp       string         `json:"whatsapp,omitempty"`
	Active         bool           `json:"active"`
}

// ListParams filters the paginated supplier list. Page is zero-based.
type ListParams struct {
	Name string
	Page int
	Size int
}

// Service calls the supplier endpoints.
type Service struct {
	api *rest.Client
}

// NewService creates a supplier service on top of the shared API client.
func NewService(api *rest.Client) *Service {
	return &Service{api: api}
}

// List returns one page of suppliers, optionally filtered by name.
func (s *Service) List(ctx context.Context, params ListParams) (rest.Page[Supplier], error) {
	query := url.Values{}
	if params.Name != "" {
		query.Set("name", params.Name)
	}
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("size", strconv.Itoa(params.Size))

	var page rest.Page[Supplier]
	if err := s.api.Get(ctx, basePath, query, &page); err != nil {
		return rest.Page[Supplier]{}, err
	}
	return page, nil
}

// Get returns a single supplier by id.
func (s *Service) Get(ctx context.Context, id int64) (*Supplier, error) {
	var supplier Supplier
	if err := s.api.Get(ctx, fmt.Sprintf("%s/%d", basePath, id), nil, &supplier); err != nil {
		return nil, err
	}
	return &supplier, nil
}

// Create registers a new supplier.
func (s *Service) Create(ctx context.Context, payload UpsertSupplier) (*Supplier, error) {
	var supplier Supplier
	if err := s.api.Post(ctx, basePath, payload, &supplier); err != nil {
		return nil, err
	}
	return &supplier, nil
}

// Update replaces an existing supplier.
func (s *Service) Update(ctx context.Context, id int64, payload UpsertSupplier) (*Supplier, error) {
	var supplier Supplier
	if err := s.api.Put(ctx, fmt.Sprintf("%s/%d", basePath, id), payload, &supplier); err != nil {
		return nil, err
	}
	return &supplier, nil
}

// Delete removes a supplier.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("%s/%d", basePath, id))
}
