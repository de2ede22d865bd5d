package flow

import (
	"context"
	"time"

	"github.com/raine/pricemate/internal/form"
	"github.com/raine/pricemate/internal/llm"
	"github.com/raine/pricemate/internal/pricing"
	"github.com/raine/pricemate/internal/session"
)

// Details is the attribute form view.
type Details struct {
	lifecycle
	session *session.State
	*form.Collector
}

func NewDetails(sess *session.State, backend pricing.Backend, analyzer llm.Analyzer, now time.Time) *Details {
	return &Details{
		session:   sess,
		Collector: form.NewCollector(sess, backend, analyzer, now),
	}
}

// HasImage reports whether the flow carries a photo.
func (d *Details) HasImage() bool {
	return d.session.Image() != nil
}

// Mount activates the view and analyzes the session photo, if any. It
// returns when the analysis has finished or the view was unmounted.
func (d *Details) Mount(ctx context.Context) {
	if !d.mount(ctx) {
		return
	}
	img := d.session.Image()
	if img == nil {
		return
	}
	opCtx, done, _, err := d.begin(ctx)
	if err != nil {
		return
	}
	defer done()
	d.AnalyzeImage(opCtx, img)
}

func (d *Details) Unmount() {
	d.unmount()
}

// Submit creates the estimate. If the view is unmounted before the backend
// answers, the identifier is dropped and ErrNotMounted returned.
func (d *Details) Submit(ctx context.Context) (string, error) {
	opCtx, done, tok, err := d.begin(ctx)
	if err != nil {
		return "", err
	}
	defer done()

	id, err := d.Collector.Submit(opCtx)
	if !d.current(tok) {
		return "", ErrNotMounted
	}
	return id, err
}
