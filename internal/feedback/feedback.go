package feedback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/raine/pricemate/internal/apperror"
	"github.com/raine/pricemate/internal/storage"
)

// KeyPrefix namespaces rating keys in local storage.
const KeyPrefix = "priceMateRating_"

const (
	MinStars = 1
	MaxStars = 5
)

var ErrAlreadyRated = errors.New("estimate already rated")

func key(estimateID string) string {
	return KeyPrefix + estimateID
}

// Store persists one star rating per estimate identifier. Writes overwrite.
type Store struct {
	kv storage.KV
}

func NewStore(kv storage.KV) *Store {
	return &Store{kv: kv}
}

// Rate records star for estimateID, replacing any previous rating.
func (s *Store) Rate(estimateID string, star int) error {
	if estimateID == "" {
		return apperror.New(apperror.KindValidation, apperror.MsgMissingEstimateID)
	}
	if star < MinStars || star > MaxStars {
		return apperror.New(apperror.KindValidation, fmt.Sprintf("التقييم يجب أن يكون بين %d و %d.", MinStars, MaxStars))
	}
	if err := s.kv.SetValue(key(estimateID), strconv.Itoa(star)); err != nil {
		return apperror.Wrap(err, apperror.KindStorageUnavailable, apperror.MsgStorageUnavailable)
	}
	return nil
}

// Rating returns the stored rating for estimateID. Missing, unreadable and
// out-of-range values all read as "not rated".
func (s *Store) Rating(estimateID string) (int, bool) {
	if estimateID == "" {
		return 0, false
	}
	raw, ok, err := s.kv.GetValue(key(estimateID))
	if err != nil {
		log.Warn().Err(err).Str("estimateID", estimateID).Msg("failed to read rating")
		return 0, false
	}
	if !ok {
		return 0, false
	}
	star, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || star < MinStars || star > MaxStars {
		log.Warn().Str("estimateID", estimateID).Str("value", raw).Msg("ignoring invalid stored rating")
		return 0, false
	}
	return star, true
}

// Widget is the rating control for one estimate. It reads storage once on
// Load and becomes read-only as soon as a rating exists.
type Widget struct {
	store      *Store
	estimateID string

	mu     sync.Mutex
	loaded bool
	rating int
}

func NewWidget(store *Store, estimateID string) *Widget {
	return &Widget{store: store, estimateID: estimateID}
}

// Load reads the saved rating. Only the first call touches storage.
func (w *Widget) Load() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.loaded {
		return
	}
	w.loaded = true
	if star, ok := w.store.Rating(w.estimateID); ok {
		w.rating = star
	}
}

// Rating returns the saved rating, if any.
func (w *Widget) Rating() (int, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rating, w.rating != 0
}

// ReadOnly reports whether the widget no longer accepts ratings.
func (w *Widget) ReadOnly() bool {
	_, rated := w.Rating()
	return rated
}

// Rate saves star. A storage failure is logged and leaves the widget
// unrated so the user can try again.
func (w *Widget) Rate(star int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.rating != 0 {
		return ErrAlreadyRated
	}
	if err := w.store.Rate(w.estimateID, star); err != nil {
		if apperror.Is(err, apperror.KindStorageUnavailable) {
			log.Warn().Err(err).Str("estimateID", w.estimateID).Msg("failed to save rating")
			return nil
		}
		return err
	}
	w.loaded = true
	w.rating = star
	return nil
}

const (
	promptUnrated = "ما مدى دقة التسعيرة؟"
	promptRated   = "شكراً لتقييمك!"
	ScaleHint     = "(1 = غير دقيق، 5 = دقيق جداً)"
)

// Prompt is the heading shown above the stars.
func (w *Widget) Prompt() string {
	if w.ReadOnly() {
		return promptRated
	}
	return promptUnrated
}

// Stars renders the current rating as five filled or empty stars.
func (w *Widget) Stars() string {
	star, _ := w.Rating()
	return strings.Repeat("★", star) + strings.Repeat("☆", MaxStars-star)
}
