package suppliers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/techcorp/partsquote/rest"
)

const groupBasePath = "/api/supplier-groups"

// Group is a named set of suppliers a quotation can be routed to at once.
type Group struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	Suppliers   []Supplier `json:"suppliers"`
	Active      bool       `json:"active"`
}

// UpsertGroup is the payload for group create and update.
type UpsertGroup struct {
	Description string  `json:"description"`
	SupplierIDs []int64 `json:"supplierIds"`
	Active      bool    `json:"active"`
}

// GroupListParams filters the paginated group list. Page is zero-based.
type GroupListParams struct {
	Description string
	Page        int
	Size        int
}

// GroupService calls the supplier-group endpoints.
type GroupService struct {
	api *rest.Client
}

// NewGroupService creates a supplier-group service on top of the shared API client.
func NewGroupService(api *rest.Client) *GroupService {
	return &GroupService{api: api}
}

// List returns one page of groups, optionally filtered by description.
func (s *GroupService) List(ctx context.Context, params GroupListParams) (rest.Page[Group], error) {
	query := url.Values{}
	if params.Description != "" {
		query.Set("description", params.Description)
	}
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("size", strconv.Itoa(params.Size))

	var page rest.Page[Group]
	if err := s.api.Get(ctx, groupBasePath, query, &page); err != nil {
		return rest.Page[Group]{}, err
	}
	return page, nil
}

// Get returns a single group by id.
func (s *GroupService) Get(ctx context.Context, id int64) (*Group, error) {
	var group Group
	if err := s.api.Get(ctx, fmt.Sprintf("%s/%d", groupBasePath, id), nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// Create registers a new group.
func (s *GroupService) Create(ctx context.Context, payload UpsertGroup) (*Group, error) {
	var group Group
	if err := s.api.Post(ctx, groupBasePath, payload, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// Update replaces an existing group.
func (s *GroupService) Update(ctx context.Context, id int64, payload UpsertGroup) (*Group, error) {
	var group Group
	if err := s.api.Put(ctx, fmt.Sprintf("%s/%d", groupBasePath, id), payload, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// Delete removes a group.
func (s *GroupService) Delete(ctx context.Context, id int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("%s/%d", groupBasePath, id))
}
