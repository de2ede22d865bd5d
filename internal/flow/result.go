package flow

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/raine/pricemate/internal/apperror"
	"github.com/raine/pricemate/internal/estimate"
	"github.com/raine/pricemate/internal/feedback"
	"github.com/raine/pricemate/internal/pricing"
	"github.com/raine/pricemate/internal/session"
)

// Result shows one estimate. It fetches the estimate once on mount and
// never polls.
type Result struct {
	lifecycle
	id       string
	backend  pricing.Backend
	session  *session.State
	feedback *feedback.Widget

	mu      sync.Mutex
	fetched bool
	loading bool
	result  *estimate.Result
	err     string

	generating bool
	listing    *estimate.ListingContent
	listingErr string
}

func NewResult(id string, backend pricing.Backend, sess *session.State, ratings *feedback.Store) *Result {
	return &Result{
		id:       id,
		backend:  backend,
		session:  sess,
		feedback: feedback.NewWidget(ratings, id),
	}
}

func (r *Result) ID() string { return r.id }

// Mount activates the view, loads the saved rating and fetches the
// estimate. Mounting again does not fetch again.
func (r *Result) Mount(ctx context.Context) {
	if !r.mount(ctx) {
		return
	}
	r.feedback.Load()

	r.mu.Lock()
	if r.fetched {
		r.mu.Unlock()
		return
	}
	r.fetched = true
	if r.id == "" {
		r.err = apperror.MsgMissingEstimateID
		r.mu.Unlock()
		return
	}
	r.loading = true
	r.err = ""
	r.mu.Unlock()

	opCtx, done, tok, err := r.begin(ctx)
	if err != nil {
		return
	}
	defer done()

	res, err := r.backend.GetEstimate(opCtx, r.id)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false
	if !r.current(tok) {
		// A later mount fetches again.
		log.Debug().Str("estimateID", r.id).Msg("discarding estimate for unmounted view")
		r.fetched = false
		return
	}
	if err != nil {
		log.Error().Err(err).Str("estimateID", r.id).Msg("get estimate failed")
		r.err = apperror.UserMessage(err)
		return
	}
	if !res.Prices.Ordered() || !res.Stats.Ordered() {
		log.Warn().Str("estimateID", r.id).Interface("prices", res.Prices).Interface("stats", res.Stats).Msg("estimate out of order")
	}
	r.result = res
}

// Unmount deactivates the view; late responses are dropped.
func (r *Result) Unmount() {
	r.unmount()
}

func (r *Result) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// Err is the message of a failed fetch.
func (r *Result) Err() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Estimate is the fetched result, or nil.
func (r *Result) Estimate() *estimate.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

// CanGenerateListing reports whether the listing control is available:
// a result and the flow's form data exist and no generation is running.
func (r *Result) CanGenerateListing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result != nil && !r.generating && r.session.FormData() != nil
}

// GenerateListing asks for listing content at the recommended price. On
// failure the message is kept and the control stays available for retry.
func (r *Result) GenerateListing(ctx context.Context) error {
	form := r.session.FormData()

	r.mu.Lock()
	if r.result == nil || form == nil {
		r.mu.Unlock()
		return apperror.New(apperror.KindValidation, apperror.MsgListingFailed)
	}
	if r.generating {
		r.mu.Unlock()
		return ErrInFlight
	}
	price := r.result.Prices.Recommended
	r.generating = true
	r.listing = nil
	r.listingErr = ""
	r.mu.Unlock()

	opCtx, done, tok, err := r.begin(ctx)
	if err != nil {
		r.mu.Lock()
		r.generating = false
		r.mu.Unlock()
		return err
	}
	defer done()

	content, err := r.backend.GenerateListing(opCtx, *form, price)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.generating = false
	if !r.current(tok) {
		return ErrNotMounted
	}
	if err != nil {
		log.Error().Err(err).Str("estimateID", r.id).Msg("generate listing failed")
		r.listingErr = apperror.UserMessage(err)
		return err
	}
	r.listing = content
	return nil
}

func (r *Result) Generating() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generating
}

// Listing is the generated listing, or nil.
func (r *Result) Listing() *estimate.ListingContent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listing
}

// ListingErr is the message of the last failed generation.
func (r *Result) ListingErr() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listingErr
}

// Feedback is the rating widget for this estimate.
func (r *Result) Feedback() *feedback.Widget {
	return r.feedback
}

// StartOver clears the session and leaves the view.
func (r *Result) StartOver() {
	r.session.Clear()
	r.unmount()
}
