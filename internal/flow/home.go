package flow

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/raine/pricemate/internal/estimate"
	"github.com/raine/pricemate/internal/prefs"
	"github.com/raine/pricemate/internal/session"
)

// DefaultMaxImageBytes bounds a picked image.
const DefaultMaxImageBytes = 8 << 20

// Home is the landing view: pick an optional photo, then start.
type Home struct {
	session  *session.State
	counter  *prefs.Counter
	maxBytes int64

	mu      sync.Mutex
	reading bool
	image   *estimate.Image
}

func NewHome(sess *session.State, counter *prefs.Counter, maxBytes int64) *Home {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &Home{session: sess, counter: counter, maxBytes: maxBytes}
}

// PickImage reads a photo from r. The previous pick is dropped first, so a
// failed read leaves no image selected.
func (h *Home) PickImage(ctx context.Context, r io.Reader) error {
	h.mu.Lock()
	if h.reading {
		h.mu.Unlock()
		return ErrInFlight
	}
	h.reading = true
	h.image = nil
	h.mu.Unlock()

	img, err := readImage(ctx, r, h.maxBytes)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.reading = false
	if err != nil {
		log.Error().Err(err).Msg("error reading image")
		return err
	}
	h.image = img
	return nil
}

// PickImageFile reads the photo at path.
func (h *Home) PickImageFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	return h.PickImage(ctx, f)
}

func readImage(ctx context.Context, r io.Reader, maxBytes int64) (*estimate.Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxBytes)
	}
	return estimate.NewImage(data)
}

// Image returns the picked photo, or nil.
func (h *Home) Image() *estimate.Image {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.image
}

// CanStart reports whether the primary action is enabled.
func (h *Home) CanStart() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.reading
}

// Start counts the estimate and hands the photo, or its absence, to the
// session.
func (h *Home) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.reading {
		return ErrInFlight
	}
	h.counter.Increment()
	h.session.SetImage(h.image)
	return nil
}

// PrimaryLabel is the start button text.
func (h *Home) PrimaryLabel() string {
	if h.Image() != nil {
		return "متابعة مع الصورة"
	}
	return "ابدأ التسعير"
}

// CountLine is the line under the greeting.
func (h *Home) CountLine() string {
	n := h.counter.Count()
	if n > 0 {
		return fmt.Sprintf("%d منتجاً تم تقييمه حتى الآن", n)
	}
	return "كن أول من يقيّم منتجاً!"
}
