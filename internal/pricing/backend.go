package pricing

import (
	"context"
	"fmt"

	"github.com/raine/pricemate/internal/estimate"
)

// Backend is the estimate request/response pipeline as seen by the client.
// Implementations never retry on their own; a failed call is surfaced as is
// and the user decides whether to try again.
type Backend interface {
	// CreateEstimate submits the form and returns a new estimate identifier.
	CreateEstimate(ctx context.Context, sub estimate.Submission) (string, error)

	// GetEstimate returns the result for id. It has no side effects.
	GetEstimate(ctx context.Context, id string) (*estimate.Result, error)

	// GenerateListing produces listing text for the item at the given price.
	GenerateListing(ctx context.Context, item estimate.FormData, price float64) (*estimate.ListingContent, error)
}

// Mode selects the Backend implementation at startup.
type Mode string

const (
	ModeStub Mode = "stub"
	ModeHTTP Mode = "http"
)

// ParseMode parses a configured backend mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeStub, ModeHTTP:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown backend mode %q (use %q or %q)", s, ModeStub, ModeHTTP)
	}
}

// Options configures NewBackend.
type Options struct {
	Mode    Mode
	BaseURL string
	Stub    StubOptions
}

// NewBackend returns the Backend selected by opts.Mode.
func NewBackend(opts Options) (Backend, error) {
	switch opts.Mode {
	case ModeStub:
		return NewStub(opts.Stub), nil
	case ModeHTTP:
		if opts.BaseURL == "" {
			return nil, fmt.Errorf("base url is required for %s backend", ModeHTTP)
		}
		return NewHTTPBackend(opts.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown backend mode %q", opts.Mode)
	}
}

// Wire types shared by the HTTP transport and the server.

// CreateEstimateRequest is the JSON body of POST /api/estimates.
type CreateEstimateRequest struct {
	estimate.FormData
	// ImageURI is a base64 data URL, or null when no image was attached.
	ImageURI    *string  `json:"imageUri"`
	DamageScore *float64 `json:"damageScore,omitempty"`
}

// NewCreateEstimateRequest builds the request body for sub.
func NewCreateEstimateRequest(sub estimate.Submission) CreateEstimateRequest {
	req := CreateEstimateRequest{
		FormData:    sub.Form,
		DamageScore: sub.DamageScore,
	}
	if sub.Image != nil {
		uri := sub.Image.DataURL()
		req.ImageURI = &uri
	}
	return req
}

// CreateEstimateResponse is the JSON body answered by POST /api/estimates.
type CreateEstimateResponse struct {
	ID string `json:"id"`
}

// ListingRequest is the JSON body of POST /api/listings/publish.
type ListingRequest struct {
	Item  estimate.FormData `json:"item"`
	Price float64           `json:"price"`
}

// ErrorResponse is the error body shape. Servers may set either field.
type ErrorResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
