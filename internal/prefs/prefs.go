package prefs

import (
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/raine/pricemate/internal/storage"
)

// Storage keys.
const (
	ThemeKey   = "theme"
	CounterKey = "priceMateItemCount"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ThemeState is the theme preference. It reads storage once in LoadTheme
// and writes back on every change.
type ThemeState struct {
	kv storage.KV

	mu    sync.Mutex
	theme Theme
}

// LoadTheme reads the stored theme. Anything other than "light" or "dark"
// yields the light default.
func LoadTheme(kv storage.KV) *ThemeState {
	s := &ThemeState{kv: kv, theme: ThemeLight}
	raw, ok, err := kv.GetValue(ThemeKey)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read theme")
		return s
	}
	if ok {
		switch t := Theme(strings.TrimSpace(raw)); t {
		case ThemeLight, ThemeDark:
			s.theme = t
		}
	}
	return s
}

func (s *ThemeState) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// Toggle flips between light and dark and returns the new theme.
func (s *ThemeState) Toggle() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.theme == ThemeDark {
		s.theme = ThemeLight
	} else {
		s.theme = ThemeDark
	}
	if err := s.kv.SetValue(ThemeKey, string(s.theme)); err != nil {
		log.Warn().Err(err).Str("theme", string(s.theme)).Msg("failed to save theme")
	}
	return s.theme
}

// Counter counts started estimates across runs.
type Counter struct {
	kv storage.KV

	mu    sync.Mutex
	count int
}

// LoadCounter reads the stored count. Missing or invalid values yield 0.
func LoadCounter(kv storage.KV) *Counter {
	c := &Counter{kv: kv}
	raw, ok, err := kv.GetValue(CounterKey)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read item count")
		return c
	}
	if !ok {
		return c
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		log.Warn().Str("value", raw).Msg("ignoring invalid item count")
		return c
	}
	c.count = n
	return c
}

func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Increment adds one and persists the new value.
func (c *Counter) Increment() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	if err := c.kv.SetValue(CounterKey, strconv.Itoa(c.count)); err != nil {
		log.Warn().Err(err).Int("count", c.count).Msg("failed to save item count")
	}
	return c.count
}
