package llm

import (
	"context"

	"github.com/raine/pricemate/internal/estimate"
)

// ImageAnalysis is what the vision model reports about a product photo.
type ImageAnalysis struct {
	DetectedBrand *string `json:"detectedBrand"`
	DetectedModel *string `json:"detectedModel"`
	// DamageScore ranges from 0 (mint) to 1 (heavily damaged).
	DamageScore float64 `json:"damageScore"`
	Description string  `json:"description"`
	// Placeholder is set when the result is a fixed stand-in because no
	// vision model is configured.
	Placeholder bool `json:"placeholder,omitempty"`
}

// Usage contains token usage and cost information.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	CostUSD      float64
}

// Analyzer can analyze a product photo.
type Analyzer interface {
	// AnalyzeImage identifies the product in img. Failures are
	// apperror.KindAnalysisUnavailable.
	AnalyzeImage(ctx context.Context, img *estimate.Image) (*ImageAnalysis, error)
}

func strPtr(s string) *string {
	return &s
}

func clampDamage(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
