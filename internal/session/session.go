package session

import (
	"sync"

	"github.com/raine/pricemate/internal/estimate"
)

// State holds the in-progress submission for one estimation flow. It lives
// in memory only.
type State struct {
	mu    sync.Mutex
	image *estimate.Image
	form  *estimate.FormData
}

func New() *State {
	return &State{}
}

// Snapshot is a by-value copy of the session.
type Snapshot struct {
	Image *estimate.Image
	Form  *estimate.FormData
}

// SetImage replaces the captured image. nil removes it.
func (s *State) SetImage(img *estimate.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.image = cloneImage(img)
}

// SetFormData replaces the form data. nil removes it.
func (s *State) SetFormData(form *estimate.FormData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if form == nil {
		s.form = nil
		return
	}
	f := *form
	s.form = &f
}

// Clear resets both slots at once.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.image = nil
	s.form = nil
}

// Image returns a copy of the captured image, or nil.
func (s *State) Image() *estimate.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneImage(s.image)
}

// FormData returns a copy of the form data, or nil.
func (s *State) FormData() *estimate.FormData {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil {
		return nil
	}
	f := *s.form
	return &f
}

// Snapshot returns copies of both slots taken under one lock.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{Image: cloneImage(s.image)}
	if s.form != nil {
		f := *s.form
		snap.Form = &f
	}
	return snap
}

func cloneImage(img *estimate.Image) *estimate.Image {
	if img == nil {
		return nil
	}
	data := make([]byte, len(img.Data))
	copy(data, img.Data)
	return &estimate.Image{Data: data, MIMEType: img.MIMEType}
}
