package flow

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raine/pricemate/internal/apperror"
	"github.com/raine/pricemate/internal/estimate"
	"github.com/raine/pricemate/internal/feedback"
	"github.com/raine/pricemate/internal/llm"
	"github.com/raine/pricemate/internal/prefs"
	"github.com/raine/pricemate/internal/pricing"
	"github.com/raine/pricemate/internal/session"
	"github.com/raine/pricemate/internal/storage"
)

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func phoneForm() *estimate.FormData {
	return &estimate.FormData{
		Category:  estimate.CategoryPhones,
		Brand:     "Apple",
		Model:     "iPhone 14",
		Year:      "2023",
		Condition: estimate.ConditionLikeNew,
		Region:    estimate.RegionJeddah,
	}
}

func TestHome_PickAndStart(t *testing.T) {
	kv := storage.NewMemoryKV()
	sess := session.New()
	h := NewHome(sess, prefs.LoadCounter(kv), 0)

	assert.Equal(t, "ابدأ التسعير", h.PrimaryLabel())
	assert.Equal(t, "كن أول من يقيّم منتجاً!", h.CountLine())

	require.NoError(t, h.PickImage(context.Background(), bytes.NewReader(pngBytes)))
	assert.Equal(t, "متابعة مع الصورة", h.PrimaryLabel())

	require.NoError(t, h.Start())
	require.NotNil(t, sess.Image())
	assert.Equal(t, "image/png", sess.Image().MIMEType)
	assert.Equal(t, "1 منتجاً تم تقييمه حتى الآن", h.CountLine())
}

func TestHome_StartWithoutImageClearsSessionImage(t *testing.T) {
	sess := session.New()
	sess.SetImage(&estimate.Image{Data: pngBytes, MIMEType: "image/png"})
	h := NewHome(sess, prefs.LoadCounter(storage.NewMemoryKV()), 0)

	require.NoError(t, h.Start())
	assert.Nil(t, sess.Image())
}

func TestHome_RejectsNonImageAndOversize(t *testing.T) {
	h := NewHome(session.New(), prefs.LoadCounter(storage.NewMemoryKV()), 8)

	require.NoError(t, NewHome(session.New(), prefs.LoadCounter(storage.NewMemoryKV()), 0).PickImage(context.Background(), bytes.NewReader(pngBytes)))

	assert.Error(t, h.PickImage(context.Background(), bytes.NewReader(pngBytes)))
	assert.Nil(t, h.Image())

	h = NewHome(session.New(), prefs.LoadCounter(storage.NewMemoryKV()), 0)
	assert.Error(t, h.PickImage(context.Background(), bytes.NewReader([]byte("hello world"))))
	assert.Nil(t, h.Image())
	assert.True(t, h.CanStart())
}

func TestHome_PickImageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, pngBytes, 0o600))

	h := NewHome(session.New(), prefs.LoadCounter(storage.NewMemoryKV()), 0)
	require.NoError(t, h.PickImageFile(context.Background(), path))
	assert.NotNil(t, h.Image())

	assert.Error(t, h.PickImageFile(context.Background(), filepath.Join(t.TempDir(), "missing.png")))
}

func TestDetails_MountAnalyzesSessionImage(t *testing.T) {
	sess := session.New()
	sess.SetImage(&estimate.Image{Data: pngBytes, MIMEType: "image/png"})
	d := NewDetails(sess, pricing.NewStub(pricing.StubOptions{}), llm.PlaceholderAnalyzer{}, now)

	d.Mount(context.Background())
	defer d.Unmount()

	assert.True(t, d.HasImage())
	assert.Equal(t, "Samsung", d.Form().Brand)

	id, err := d.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mock-estimate-phones", id)
	assert.Equal(t, "Samsung", sess.FormData().Brand)
}

func TestDetails_SubmitAfterUnmount(t *testing.T) {
	d := NewDetails(session.New(), pricing.NewStub(pricing.StubOptions{}), nil, now)
	_, err := d.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotMounted)
}

func TestDetails_LateSubmitResponseDropped(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	backend := &pricing.MockBackend{
		CreateEstimateFunc: func(ctx context.Context, sub estimate.Submission) (string, error) {
			close(started)
			<-release
			return "late-id", nil
		},
	}
	d := NewDetails(session.New(), backend, nil, now)
	d.Mount(context.Background())
	require.NoError(t, d.Set(estimate.FieldBrand, "Apple"))
	require.NoError(t, d.Set(estimate.FieldModel, "iPhone 14"))

	errc := make(chan error, 1)
	go func() {
		_, err := d.Submit(context.Background())
		errc <- err
	}()
	<-started
	d.Unmount()
	close(release)

	assert.ErrorIs(t, <-errc, ErrNotMounted)
}

func newResult(t *testing.T, id string, backend pricing.Backend, sess *session.State) (*Result, *storage.MemoryKV) {
	t.Helper()
	kv := storage.NewMemoryKV()
	return NewResult(id, backend, sess, feedback.NewStore(kv)), kv
}

func TestResult_FetchesOnceOnMount(t *testing.T) {
	backend := &pricing.MockBackend{}
	r, _ := newResult(t, "mock-estimate-phones", backend, session.New())

	r.Mount(context.Background())
	r.Mount(context.Background())

	require.NotNil(t, r.Estimate())
	assert.Equal(t, 2850.0, r.Estimate().Prices.Recommended)
	assert.Equal(t, 1, backend.CallCount("GetEstimate"))
	assert.False(t, r.Loading())
	assert.Empty(t, r.Err())
}

func TestResult_NotFoundMessage(t *testing.T) {
	r, _ := newResult(t, "does-not-exist", pricing.NewStub(pricing.StubOptions{}), session.New())
	r.Mount(context.Background())

	assert.Nil(t, r.Estimate())
	assert.Equal(t, apperror.MsgNotFound, r.Err())
}

func TestResult_MissingID(t *testing.T) {
	backend := &pricing.MockBackend{}
	r, _ := newResult(t, "", backend, session.New())
	r.Mount(context.Background())

	assert.Equal(t, apperror.MsgMissingEstimateID, r.Err())
	assert.Equal(t, 0, backend.CallCount("GetEstimate"))
}

func TestResult_LateFetchDiscardedAfterUnmount(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	backend := &pricing.MockBackend{
		GetEstimateFunc: func(ctx context.Context, id string) (*estimate.Result, error) {
			close(started)
			<-release
			res := pricing.FixtureForCategory(estimate.CategoryPhones)
			return &res, nil
		},
	}
	r, _ := newResult(t, "mock-estimate-phones", backend, session.New())

	done := make(chan struct{})
	go func() {
		r.Mount(context.Background())
		close(done)
	}()
	<-started
	r.Unmount()
	close(release)
	<-done

	assert.Nil(t, r.Estimate())
}

func TestResult_GenerateListingWithRetry(t *testing.T) {
	sess := session.New()
	sess.SetFormData(phoneForm())
	fail := true
	var price float64
	backend := &pricing.MockBackend{
		GenerateListingFunc: func(ctx context.Context, item estimate.FormData, p float64) (*estimate.ListingContent, error) {
			price = p
			if fail {
				return nil, apperror.ServerStatus(500, errors.New("boom"))
			}
			return pricing.NewStub(pricing.StubOptions{}).GenerateListing(ctx, item, p)
		},
	}
	r, _ := newResult(t, "mock-estimate-phones", backend, sess)
	r.Mount(context.Background())
	defer r.Unmount()

	require.True(t, r.CanGenerateListing())
	err := r.GenerateListing(context.Background())
	require.Error(t, err)
	assert.Equal(t, "حدث خطأ في الخادم (الحالة: 500)", r.ListingErr())
	assert.True(t, r.CanGenerateListing())

	fail = false
	require.NoError(t, r.GenerateListing(context.Background()))
	assert.Empty(t, r.ListingErr())
	require.NotNil(t, r.Listing())
	assert.Contains(t, r.Listing().Hints[0], "البطارية")
	assert.Equal(t, 2850.0, price)
}

func TestResult_GenerateListingNeedsResultAndForm(t *testing.T) {
	r, _ := newResult(t, "mock-estimate-phones", pricing.NewStub(pricing.StubOptions{}), session.New())
	r.Mount(context.Background())
	defer r.Unmount()

	assert.False(t, r.CanGenerateListing())
	assert.Error(t, r.GenerateListing(context.Background()))
}

func TestResult_FeedbackAndStartOver(t *testing.T) {
	sess := session.New()
	sess.SetFormData(phoneForm())
	sess.SetImage(&estimate.Image{Data: pngBytes, MIMEType: "image/png"})
	r, kv := newResult(t, "mock-estimate-phones", pricing.NewStub(pricing.StubOptions{}), sess)
	r.Mount(context.Background())

	require.NoError(t, r.Feedback().Rate(5))
	v, ok, _ := kv.GetValue("priceMateRating_mock-estimate-phones")
	assert.True(t, ok)
	assert.Equal(t, "5", v)

	r.StartOver()
	snap := sess.Snapshot()
	assert.Nil(t, snap.Form)
	assert.Nil(t, snap.Image)
	assert.False(t, r.isMounted())
}

func TestResult_RatingReadOnMount(t *testing.T) {
	kv := storage.NewMemoryKV()
	ratings := feedback.NewStore(kv)
	require.NoError(t, ratings.Rate("mock-estimate-phones", 3))

	r := NewResult("mock-estimate-phones", pricing.NewStub(pricing.StubOptions{}), session.New(), ratings)
	r.Mount(context.Background())
	defer r.Unmount()

	assert.True(t, r.Feedback().ReadOnly())
	star, _ := r.Feedback().Rating()
	assert.Equal(t, 3, star)
}

func TestFullFlowWithStub(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	sess := session.New()
	backend := pricing.NewStub(pricing.StubOptions{})

	home := NewHome(sess, prefs.LoadCounter(kv), 0)
	require.NoError(t, home.Start())

	details := NewDetails(sess, backend, nil, now)
	details.Mount(ctx)
	require.NoError(t, details.Set(estimate.FieldBrand, "Apple"))
	require.NoError(t, details.Set(estimate.FieldModel, "iPhone 14"))
	require.NoError(t, details.Set(estimate.FieldYear, "2023"))
	id, err := details.Submit(ctx)
	require.NoError(t, err)
	details.Unmount()

	result := NewResult(id, backend, sess, feedback.NewStore(kv))
	result.Mount(ctx)
	require.NotNil(t, result.Estimate())
	assert.Equal(t, estimate.Prices{Fast: 2650, Recommended: 2850, Max: 3000}, result.Estimate().Prices)

	require.NoError(t, result.GenerateListing(ctx))
	assert.Contains(t, result.Listing().Description, "السعر: 2850 ريال")

	result.StartOver()
	assert.Nil(t, sess.FormData())
}
