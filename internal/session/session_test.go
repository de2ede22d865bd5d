package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raine/pricemate/internal/estimate"
)

func TestState_SetAndSnapshot(t *testing.T) {
	s := New()
	img := &estimate.Image{Data: []byte{1, 2, 3}, MIMEType: "image/png"}
	form := estimate.FormData{Category: estimate.CategoryPhones, Brand: "Apple"}

	s.SetImage(img)
	s.SetFormData(&form)

	snap := s.Snapshot()
	require.NotNil(t, snap.Image)
	require.NotNil(t, snap.Form)
	assert.Equal(t, img, snap.Image)
	assert.Equal(t, "Apple", snap.Form.Brand)
}

func TestState_CopiesOnWayInAndOut(t *testing.T) {
	s := New()
	img := &estimate.Image{Data: []byte{1, 2, 3}, MIMEType: "image/png"}
	form := estimate.FormData{Brand: "Apple"}
	s.SetImage(img)
	s.SetFormData(&form)

	img.Data[0] = 9
	form.Brand = "Samsung"
	assert.Equal(t, byte(1), s.Image().Data[0])
	assert.Equal(t, "Apple", s.FormData().Brand)

	out := s.FormData()
	out.Brand = "Nokia"
	assert.Equal(t, "Apple", s.FormData().Brand)
}

func TestState_ClearResetsBoth(t *testing.T) {
	s := New()
	s.SetImage(&estimate.Image{Data: []byte{1}, MIMEType: "image/png"})
	s.SetFormData(&estimate.FormData{Brand: "Apple"})

	s.Clear()

	snap := s.Snapshot()
	assert.Nil(t, snap.Image)
	assert.Nil(t, snap.Form)
}

func TestState_SetNil(t *testing.T) {
	s := New()
	s.SetImage(&estimate.Image{Data: []byte{1}, MIMEType: "image/png"})
	s.SetImage(nil)
	s.SetFormData(nil)
	assert.Nil(t, s.Image())
	assert.Nil(t, s.FormData())
}

func TestState_ClearNeverHalfVisible(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetImage(&estimate.Image{Data: []byte{1}, MIMEType: "image/png"})
			s.SetFormData(&estimate.FormData{Brand: "x"})
		}()
		go func() {
			defer wg.Done()
			s.Clear()
		}()
	}
	wg.Wait()

	s.Clear()
	snap := s.Snapshot()
	assert.Nil(t, snap.Image)
	assert.Nil(t, snap.Form)
}
