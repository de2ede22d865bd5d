package llm

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/raine/pricemate/internal/estimate"
	"github.com/raine/pricemate/internal/storage"
)

// VisionCache stores analysis results by image key.
type VisionCache interface {
	GetVisionCache(imageHash string) (*storage.VisionCacheEntry, error)
	SetVisionCache(imageHash string, entry *storage.VisionCacheEntry) error
}

// CachedAnalyzer wraps an Analyzer with SQLite caching.
type CachedAnalyzer struct {
	inner Analyzer
	store VisionCache
}

var _ Analyzer = (*CachedAnalyzer)(nil)

// NewCachedAnalyzer creates a cached analyzer.
func NewCachedAnalyzer(inner Analyzer, store VisionCache) *CachedAnalyzer {
	return &CachedAnalyzer{inner: inner, store: store}
}

// AnalyzeImage implements the Analyzer interface with caching. Cache
// failures are logged and never fail the analysis.
func (c *CachedAnalyzer) AnalyzeImage(ctx context.Context, img *estimate.Image) (*ImageAnalysis, error) {
	hash := img.Key()

	if c.store != nil && hash != "" {
		cached, err := c.store.GetVisionCache(hash)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check vision cache")
		} else if cached != nil {
			log.Debug().Str("hash", hash[:16]).Msg("vision cache hit")
			analysis := &ImageAnalysis{
				DamageScore: cached.DamageScore,
				Description: cached.Description,
			}
			if cached.Brand != "" {
				analysis.DetectedBrand = strPtr(cached.Brand)
			}
			if cached.Model != "" {
				analysis.DetectedModel = strPtr(cached.Model)
			}
			return analysis, nil
		}
	}

	result, err := c.inner.AnalyzeImage(ctx, img)
	if err != nil {
		return nil, err
	}

	// Placeholders are not real answers, so they are not worth keeping.
	if c.store != nil && hash != "" && !result.Placeholder {
		entry := &storage.VisionCacheEntry{
			DamageScore: result.DamageScore,
			Description: result.Description,
		}
		if result.DetectedBrand != nil {
			entry.Brand = *result.DetectedBrand
		}
		if result.DetectedModel != nil {
			entry.Model = *result.DetectedModel
		}
		if err := c.store.SetVisionCache(hash, entry); err != nil {
			log.Warn().Err(err).Msg("failed to cache vision result")
		} else {
			log.Debug().Str("hash", hash[:16]).Msg("cached vision result")
		}
	}

	return result, nil
}

// GetGeminiAnalyzer extracts GeminiAnalyzer from an Analyzer.
// Recursively unwraps CachedAnalyzer wrappers to find the underlying GeminiAnalyzer.
func GetGeminiAnalyzer(a Analyzer) *GeminiAnalyzer {
	curr := a
	for {
		switch t := curr.(type) {
		case *GeminiAnalyzer:
			return t
		case *CachedAnalyzer:
			curr = t.inner
		default:
			return nil
		}
	}
}

// NewAnalyzer returns the Gemini analyzer when apiKey is set and the
// placeholder otherwise, wrapped in the cache when store is non-nil.
func NewAnalyzer(ctx context.Context, apiKey string, store VisionCache) (Analyzer, error) {
	var inner Analyzer
	if apiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set, image analysis returns a placeholder result")
		inner = PlaceholderAnalyzer{}
	} else {
		g, err := NewGeminiAnalyzer(ctx, apiKey)
		if err != nil {
			return nil, err
		}
		inner = g
	}
	if store == nil {
		return inner, nil
	}
	return NewCachedAnalyzer(inner, store), nil
}
