package pricing

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/raine/pricemate/internal/apperror"
	"github.com/raine/pricemate/internal/estimate"
	"github.com/raine/pricemate/internal/listing"
)

// StubOptions configures the fixture backend.
type StubOptions struct {
	// Latency is waited before answering each call, to mimic a network hop.
	Latency time.Duration
	// Listing generates listing content. Defaults to the template generator.
	Listing listing.Generator
}

// Stub answers from static fixtures keyed by category. It never touches the
// network.
type Stub struct {
	latency time.Duration
	listing listing.Generator
}

var _ Backend = (*Stub)(nil)

func NewStub(opts StubOptions) *Stub {
	s := &Stub{latency: opts.Latency, listing: opts.Listing}
	if s.listing == nil {
		s.listing = listing.TemplateGenerator{}
	}
	return s
}

func (s *Stub) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Stub) CreateEstimate(ctx context.Context, sub estimate.Submission) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	if err := sub.Form.Validate(); err != nil {
		return "", err
	}
	id := FixtureID(sub.Form.Category)
	log.Debug().Str("category", sub.Form.Category).Str("id", id).Bool("hasImage", sub.Image != nil).Msg("stub estimate created")
	return id, nil
}

func (s *Stub) GetEstimate(ctx context.Context, id string) (*estimate.Result, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, apperror.New(apperror.KindValidation, apperror.MsgMissingEstimateID)
	}
	res, ok := Fixture(id)
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, apperror.MsgNotFound)
	}
	return &res, nil
}

func (s *Stub) GenerateListing(ctx context.Context, item estimate.FormData, price float64) (*estimate.ListingContent, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.listing.GenerateListing(ctx, item, price)
}
