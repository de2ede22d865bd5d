package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/raine/pricemate/internal/apperror"
	"github.com/raine/pricemate/internal/estimate"
	"github.com/raine/pricemate/internal/feedback"
	"github.com/raine/pricemate/internal/flow"
	"github.com/raine/pricemate/internal/form"
	"github.com/raine/pricemate/internal/llm"
	"github.com/raine/pricemate/internal/prefs"
	"github.com/raine/pricemate/internal/pricing"
	"github.com/raine/pricemate/internal/session"
)

// app runs one pass through the estimate flow on a terminal.
type app struct {
	in  *bufio.Reader
	out io.Writer

	backend  pricing.Backend
	analyzer llm.Analyzer
	theme    *prefs.ThemeState
	counter  *prefs.Counter
	ratings  *feedback.Store

	maxImageBytes int64
	interactive   bool
	now           time.Time
}

type runOptions struct {
	ImagePath string
	Category  string
	// Values holds field name -> raw input for the detail fields.
	Values  map[string]string
	Listing bool
	Rate    int
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) println(s string) {
	fmt.Fprintln(a.out, s)
}

func (a *app) prompt(label string) string {
	a.printf("%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		log.Warn().Err(err).Msg("failed to read input")
	}
	return strings.TrimSpace(line)
}

// runNew walks home, details and result for a new estimate and returns
// its identifier.
func (a *app) runNew(ctx context.Context, opts runOptions) (string, error) {
	sess := session.New()

	home := flow.NewHome(sess, a.counter, a.maxImageBytes)
	a.println(renderHome(a.theme.Theme(), home.CountLine()))
	if opts.ImagePath != "" {
		if err := home.PickImageFile(ctx, opts.ImagePath); err != nil {
			a.printf("تعذر قراءة الصورة: %v\n", err)
		}
	}
	a.println("› " + home.PrimaryLabel())
	if err := home.Start(); err != nil {
		return "", err
	}

	details := flow.NewDetails(sess, a.backend, a.analyzer, a.now)
	details.Mount(ctx)
	defer details.Unmount()

	if warning := details.AnalysisWarning(); warning != "" {
		a.println(warning)
	} else if analysis := details.Analysis(); analysis != nil {
		a.println(renderAnalysis(analysis))
	}

	if err := a.applyValues(details, opts); err != nil {
		return "", err
	}
	if a.interactive {
		a.fillInteractively(details)
	}

	id, err := details.Submit(ctx)
	if err != nil {
		a.println(apperror.UserMessage(err))
		return "", err
	}
	details.Unmount()

	return id, a.showResult(ctx, id, sess, opts)
}

func (a *app) applyValues(details *flow.Details, opts runOptions) error {
	if opts.Category != "" {
		if err := a.chooseCategory(details, opts.Category); err != nil {
			return err
		}
	}
	for _, f := range form.DetailFields() {
		name := form.FieldBase(f).Name
		raw := opts.Values[name]
		if raw == "" {
			continue
		}
		v, err := form.Parse(f, raw)
		if err != nil {
			return err
		}
		if err := details.Set(name, v); err != nil {
			return err
		}
	}
	return nil
}

// chooseCategory accepts a category value, its label, or a search query
// matching exactly one option.
func (a *app) chooseCategory(details *flow.Details, query string) error {
	defer details.BlurCategory()
	for _, opt := range estimate.Categories {
		if strings.EqualFold(opt.Value, query) {
			return details.SelectCategory(opt.Value)
		}
	}
	matches := details.CategoryQuery(query)
	for _, opt := range matches {
		if strings.EqualFold(opt.Value, query) || opt.Label == query {
			return details.SelectCategory(opt.Value)
		}
	}
	if len(matches) == 1 {
		return details.SelectCategory(matches[0].Value)
	}
	if len(matches) == 0 {
		return fmt.Errorf("%s: %q", form.NoResults, query)
	}
	labels := make([]string, 0, len(matches))
	for _, opt := range matches {
		labels = append(labels, opt.Label)
	}
	return fmt.Errorf("ambiguous category %q: %s", query, strings.Join(labels, ", "))
}

// fillInteractively prompts for every field; an empty answer keeps the
// current value.
func (a *app) fillInteractively(details *flow.Details) {
	for {
		a.println(details.RenderCategory())
		q := a.prompt("الفئة")
		if q == "" {
			break
		}
		if err := a.chooseCategory(details, q); err != nil {
			a.println(err.Error())
			continue
		}
		break
	}

	for _, f := range form.DetailFields() {
		name := form.FieldBase(f).Name
		for {
			a.println(form.Render(f, form.Value(details.Form(), name)))
			raw := a.prompt(form.FieldBase(f).Label)
			if raw == "" {
				break
			}
			v, err := form.Parse(f, raw)
			if err != nil {
				a.println(err.Error())
				continue
			}
			_ = details.Set(name, v)
			break
		}
	}
}

// showResult renders the estimate, optionally generates the listing and
// records a rating.
func (a *app) showResult(ctx context.Context, id string, sess *session.State, opts runOptions) error {
	result := flow.NewResult(id, a.backend, sess, a.ratings)
	result.Mount(ctx)
	defer result.Unmount()

	if msg := result.Err(); msg != "" {
		a.println(msg)
		return errors.New(msg)
	}
	a.println(renderResult(a.theme.Theme(), id, result.Estimate()))

	if opts.Listing {
		switch {
		case !result.CanGenerateListing():
			a.println("إنشاء الإعلان متاح فقط بعد تعبئة بيانات المنتج.")
		case result.GenerateListing(ctx) != nil:
			a.println(result.ListingErr())
		default:
			a.println(renderListing(result.Listing()))
		}
	}

	w := result.Feedback()
	if opts.Rate != 0 {
		if err := w.Rate(opts.Rate); err != nil {
			if errors.Is(err, feedback.ErrAlreadyRated) {
				a.println("تم تقييم هذه التسعيرة مسبقاً.")
			} else {
				a.println(apperror.UserMessage(err))
			}
		}
	}
	a.printf("%s %s %s\n", w.Prompt(), w.Stars(), feedback.ScaleHint)
	return nil
}
