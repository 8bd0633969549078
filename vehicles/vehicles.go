// Package vehicles is the client for the vehicle registry endpoints.
package vehicles

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/techcorp/partsquote/rest"
)

const basePath = "/api/vehicles"

// FuelType is the closed set of fuel types a vehicle can be registered with.
type FuelType string

const (
	FuelGasoline FuelType = "GASOLINE"
	FuelEthanol  FuelType = "ETHANOL"
	FuelFlex     FuelType = "FLEX"
	FuelDiesel   FuelType = "DIESEL"
)

// Valid reports whether the fuel type is one of the known values.
func (f FuelType) Valid() bool {
	switch f {
	case FuelGasoline, FuelEthanol, FuelFlex, FuelDiesel:
		return true
	}
	return false
}

// Vehicle is a registered vehicle quotations can reference.
type Vehicle struct {
	ID           int64    `json:"id"`
	Model        string   `json:"model"`
	Brand        string   `json:"brand"`
	Year         int      `json:"year"`
	Engine       string   `json:"engine"`
	FuelType     FuelType `json:"fuelType"`
	LicensePlate string   `json:"licensePlate"`
	Chassis      string   `json:"chassis,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// UpsertVehicle is the payload for vehicle registration.
type UpsertVehicle struct {
	Model        string   `json:"model"`
	Brand        string   `json:"brand"`
	Year         int      `json:"year"`
	Engine       string   `json:"engine"`
	FuelType     FuelType `json:"fuelType"`
	LicensePlate string   `json:"licensePlate"`
	Chassis      string   `json:"chassis,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// SearchParams filters the paginated vehicle search. Page is zero-based.
type SearchParams struct {
	Model    string
	Brand    string
	Engine   string
	FuelType FuelType
	Page     int
	Size     int
}

// Service calls the vehicle endpoints.
type Service struct {
	api *rest.Client
}

// NewService creates a vehicle service on top of the shared API client.
func NewService(api *rest.Client) *Service {
	return &Service{api: api}
}

// Search returns one page of vehicles matching the given filters.
func (s *Service) Search(ctx context.Context, params SearchParams) (rest.Page[Vehicle], error) {
	query := url.Values{}
	if params.Model != "" {
		query.Set("model", params.Model)
	}
	if params.Brand != "" {
		query.Set("brand", params.Brand)
	}
	if params.Engine != "" {
		query.Set("engine", params.Engine)
	}
	if params.FuelType != "" {
		query.Set("fuelType", string(params.FuelType))
	}
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("size", strconv.Itoa(params.Size))

	var page rest.Page[Vehicle]
	if err := s.api.Get(ctx, basePath, query, &page); err != nil {
		return rest.Page[Vehicle]{}, err
	}
	return page, nil
}

// Get returns a single vehicle by id.
func (s *Service) Get(ctx context.Context, id int64) (*Vehicle, error) {
	var vehicle Vehicle
	if err := s.api.Get(ctx, fmt.Sprintf("%s/%d", basePath, id), nil, &vehicle); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// Create registers a new vehicle.
func (s *Service) Create(ctx context.Context, payload UpsertVehicle) (*Vehicle, error) {
	var vehicle Vehicle
	if err := s.api.Post(ctx, basePath, payload, &vehicle); err != nil {
		return nil, err
	}
	return &vehicle, nil
}
