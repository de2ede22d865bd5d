package form

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/raine/pricemate/internal/apperror"
	"github.com/raine/pricemate/internal/estimate"
	"github.com/raine/pricemate/internal/llm"
	"github.com/raine/pricemate/internal/pricing"
	"github.com/raine/pricemate/internal/session"
)

var (
	ErrAnalysisInFlight   = errors.New("image analysis in progress")
	ErrSubmissionInFlight = errors.New("submission in progress")
)

// ApplyAnalysis pre-fills form from analysis. Brand and model are set only
// when empty, and the description goes into accessories only when those are
// empty. Nothing the user typed is overwritten.
func ApplyAnalysis(form estimate.FormData, analysis *llm.ImageAnalysis) estimate.FormData {
	if analysis == nil {
		return form
	}
	if strings.TrimSpace(form.Brand) == "" && analysis.DetectedBrand != nil {
		form.Brand = *analysis.DetectedBrand
	}
	if strings.TrimSpace(form.Model) == "" && analysis.DetectedModel != nil {
		form.Model = *analysis.DetectedModel
	}
	if strings.TrimSpace(form.Accessories) == "" && analysis.Description != "" {
		form.Accessories = analysis.Description
	}
	return form
}

// Collector gathers the attribute set for one estimate and submits it.
// Each initiator (analysis, submit) has at most one call outstanding, and
// submit is refused while an analysis runs.
type Collector struct {
	session  *session.State
	backend  pricing.Backend
	analyzer llm.Analyzer

	mu       sync.Mutex
	form     estimate.FormData
	category *SearchableSelect

	analyzing   bool
	analyzedKey string
	analysisGen uint64
	analysis    *llm.ImageAnalysis
	warning     string

	submitting  bool
	submitError string
}

// NewCollector starts from the session's form data when present and from
// the defaults otherwise. analyzer may be nil, which disables analysis.
func NewCollector(sess *session.State, backend pricing.Backend, analyzer llm.Analyzer, now time.Time) *Collector {
	data := estimate.DefaultFormData(now)
	if saved := sess.FormData(); saved != nil {
		data = *saved
	}
	return &Collector{
		session:  sess,
		backend:  backend,
		analyzer: analyzer,
		form:     data,
		category: NewSearchableSelect(estimate.Categories, data.Category),
	}
}

// Form returns a copy of the current form data.
func (c *Collector) Form() estimate.FormData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Set changes one field.
func (c *Collector) Set(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := SetValue(&c.form, name, value); err != nil {
		return err
	}
	if name == estimate.FieldCategory {
		c.category.SetValue(value)
	}
	return nil
}

// CategoryQuery types into the category selector and returns the options
// that match.
func (c *Collector) CategoryQuery(query string) []estimate.Option {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.category.Type(query)
	return c.category.Filtered()
}

// SelectCategory picks a category from the selector.
func (c *Collector) SelectCategory(value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.category.Select(value); err != nil {
		return err
	}
	c.form.Category = value
	return nil
}

// BlurCategory closes the selector and resets its query.
func (c *Collector) BlurCategory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.category.Blur()
}

// RenderCategory draws the category selector.
func (c *Collector) RenderCategory() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.category.Render("الفئة")
}

func (c *Collector) Analyzing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.analyzing
}

func (c *Collector) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// CanSubmit reports whether the submit control is enabled.
func (c *Collector) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.analyzing && !c.submitting
}

// AnalysisWarning is the soft warning left by a failed analysis.
func (c *Collector) AnalysisWarning() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.warning
}

// Analysis returns the last applied analysis, if any.
func (c *Collector) Analysis() *llm.ImageAnalysis {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.analysis
}

// SubmitError is the message of the last failed submission.
func (c *Collector) SubmitError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitError
}

// DismissSubmitError clears the submission error.
func (c *Collector) DismissSubmitError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitError = ""
}

// AnalyzeImage runs image analysis once per image identity and pre-fills
// the form from the result. A result for an image that has since been
// replaced is dropped. Failure leaves a warning and never blocks the flow.
func (c *Collector) AnalyzeImage(ctx context.Context, img *estimate.Image) {
	key := img.Key()

	c.mu.Lock()
	if key == "" {
		// Image removed: forget it and drop any analysis still running.
		if c.analyzedKey != "" {
			c.analyzedKey = ""
			c.analysisGen++
			c.analyzing = false
		}
		c.analysis = nil
		c.warning = ""
		c.mu.Unlock()
		return
	}
	if c.analyzer == nil || key == c.analyzedKey {
		c.mu.Unlock()
		return
	}
	c.analyzedKey = key
	c.analysisGen++
	gen := c.analysisGen
	c.analyzing = true
	c.analysis = nil
	c.warning = ""
	c.mu.Unlock()

	analysis, err := c.analyzer.AnalyzeImage(ctx, img)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.analysisGen {
		log.Debug().Str("imageKey", key[:16]).Msg("discarding analysis for replaced image")
		return
	}
	c.analyzing = false
	if err != nil {
		log.Warn().Err(err).Msg("image analysis failed")
		c.warning = apperror.MsgAnalysisFailed
		return
	}
	c.analysis = analysis
	c.form = ApplyAnalysis(c.form, analysis)
	c.category.SetValue(c.form.Category)
}

// Submit validates the form, stores it in the session and creates the
// estimate. Failures are never retried; the message is kept for display
// and replaces any earlier one.
func (c *Collector) Submit(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.analyzing {
		c.mu.Unlock()
		return "", ErrAnalysisInFlight
	}
	if c.submitting {
		c.mu.Unlock()
		return "", ErrSubmissionInFlight
	}
	data := c.form
	if err := data.Validate(); err != nil {
		c.mu.Unlock()
		return "", err
	}
	c.submitting = true
	c.submitError = ""
	var damage *float64
	if c.analysis != nil && !c.analysis.Placeholder {
		d := c.analysis.DamageScore
		damage = &d
	}
	c.mu.Unlock()

	c.session.SetFormData(&data)
	sub := estimate.Submission{
		Form:        data,
		Image:       c.session.Image(),
		DamageScore: damage,
	}

	id, err := c.backend.CreateEstimate(ctx, sub)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if err != nil {
		log.Error().Err(err).Str("category", data.Category).Msg("create estimate failed")
		c.submitError = apperror.UserMessage(err)
		return "", err
	}
	log.Info().Str("estimateID", id).Str("category", data.Category).Msg("estimate created")
	return id, nil
}
