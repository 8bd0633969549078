// Package vendorquote is the client for the public, token-addressed vendor
// submission endpoints. Suppliers receive a one-off link and use it without
// logging in, so this client carries no bearer credentials.
package vendorquote

import (
	"context"
	"errors"
	"net/url"

	errs "github.com/techcorp/partsquote/internal/errors"
	"github.com/techcorp/partsquote/rest"
)

const basePath = "/api/vendor-quotations"

// Status is the lifecycle of a submission link.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSubmitted Status = "SUBMITTED"
	StatusExpired   Status = "EXPIRED"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSubmitted, StatusExpired:
		return true
	}
	return false
}

// Company identifies the workshop requesting the quotation.
type Company struct {
	Name        string `json:"name"`
	ContactName string `json:"contactName"`
	Phone       string `json:"phone"`
}

// RequestItem is one part the vendor is asked to price.
type RequestItem struct {
	PartName string `json:"partName"`
	Quantity int    `json:"quantity"`
}

// Request is the quotation request as presented to the vendor.
type Request struct {
	ID                string        `json:"id"`
	Vehicle           string        `json:"vehicle"`
	Engine            string        `json:"engine"`
	FuelType          string        `json:"fuelType"`
	RequestingCompany Company       `json:"requestingCompany"`
	Items             []RequestItem `json:"items"`
	Status            Status        `json:"status"`
}

// Pending reports whether the request still accepts a submission.
func (r *Request) Pending() bool {
	return r.Status == StatusPending
}

// SubmissionItem is one priced line of the vendor's response.
type SubmissionItem struct {
	PartName  string  `json:"partName"`
	Brand     string  `json:"brand,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// Submission is the vendor's full response. CourtesyFreight zeroes the
// freight cost regardless of what was typed in.
type Submission struct {
	VendorName      string           `json:"vendorName"`
	FreightCost     float64          `json:"freightCost"`
	CourtesyFreight bool             `json:"-"`
	Items           []SubmissionItem `json:"items"`
}

// Service calls the vendor submission endpoints.
type Service struct {
	api *rest.Client
}

// NewService creates a vendor submission service. The rest.Client must be
// constructed without credentials.
func NewService(api *rest.Client) *Service {
	return &Service{api: api}
}

// Fetch loads the quotation request behind a submission token. An unknown
// token yields ErrNotFound.
func (s *Service) Fetch(ctx context.Context, token string) (*Request, error) {
	var request Request
	if err := s.api.Get(ctx, basePath+"/"+url.PathEscape(token), nil, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

// Submit sends the vendor's offer. A link that was already used yields
// ErrAlreadySubmitted; a lapsed link yields ErrSubmissionExpired.
func (s *Service) Submit(ctx context.Context, token string, submission Submission) error {
	if submission.CourtesyFreight {
		submission.FreightCost = 0
	}

	err := s.api.Post(ctx, basePath+"/"+url.PathEscape(token), submission, nil)
	if err == nil {
		return nil
	}

	var apiErr *rest.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 409:
			return errs.ErrAlreadySubmitted
		case 410:
			return errs.ErrSubmissionExpired
		}
	}
	return err
}
