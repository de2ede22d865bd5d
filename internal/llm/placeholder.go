package llm

import (
	"context"

	"github.com/raine/pricemate/internal/estimate"
)

// PlaceholderAnalyzer returns a fixed, clearly labeled result. It stands in
// for the vision model when no API key is configured so the flow still works.
type PlaceholderAnalyzer struct{}

var _ Analyzer = PlaceholderAnalyzer{}

func (PlaceholderAnalyzer) AnalyzeImage(ctx context.Context, img *estimate.Image) (*ImageAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &ImageAnalysis{
		DetectedBrand: strPtr("Samsung"),
		DetectedModel: strPtr("Galaxy S22"),
		DamageScore:   0.1,
		Description:   "A Samsung Galaxy S22 phone in good condition with minor scratches on the screen.",
		Placeholder:   true,
	}, nil
}
