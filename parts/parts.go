// Package parts is the client for the part catalog endpoints.
package parts

import (
	"context"
	"net/url"
	"strconv"

	"github.com/techcorp/partsquote/rest"
)

const basePath = "/api/parts"

// Part is a catalog entry linking a part description to a vehicle.
type Part struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	VehicleID   int64  `json:"vehicleId"`
}

// UpsertPart is the payload for part registration.
type UpsertPart struct {
	Description string `json:"description"`
	VehicleID   int64  `json:"vehicleId"`
}

// ListParams filters the paginated part list. Page is zero-based.
type ListParams struct {
	Description string
	Page        int
	Size        int
}

// Service calls the part endpoints.
type Service struct {
	api *rest.Client
}

// NewService creates a part service on top of the shared API client.
func NewService(api *rest.Client) *Service {
	return &Service{api: api}
}

// List returns one page of parts, optionally filtered by description.
func (s *Service) List(ctx context.Context, params ListParams) (rest.Page[Part], error) {
	query := url.Values{}
	if params.Description != "" {
		query.Set("description", params.Description)
	}
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("size", strconv.Itoa(params.Size))

	var page rest.Page[Part]
	if err := s.api.Get(ctx, basePath, query, &page); err != nil {
		return rest.Page[Part]{}, err
	}
	return page, nil
}

// Create registers a new part.
func (s *Service) Create(ctx context.Context, payload UpsertPart) (*Part, error) {
	var part Part
	if err := s.api.Post(ctx, basePath, payload, &part); err != nil {
		return nil, err
	}
	return &part, nil
}
