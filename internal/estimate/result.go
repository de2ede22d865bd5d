package estimate

import (
	"fmt"
	"math"
	"strconv"
)

// Submission is what the pipeline sends to the backend for one estimate.
type Submission struct {
	Form  FormData
	Image *Image
	// DamageScore comes from image analysis when an image was analyzed.
	DamageScore *float64
}

// Prices are the three price points of an estimate.
type Prices struct {
	Fast        float64 `json:"fast"`
	Recommended float64 `json:"recommended"`
	Max         float64 `json:"max"`
}

// Ordered reports whether fast <= recommended <= max.
func (p Prices) Ordered() bool {
	return p.Fast <= p.Recommended && p.Recommended <= p.Max
}

// Stats describe the comparable-sale population behind the prices.
type Stats struct {
	P25             float64 `json:"p25"`
	Median          float64 `json:"median"`
	P75             float64 `json:"p75"`
	SampleSize      int     `json:"sampleSize"`
	OutliersRemoved int     `json:"outliersRemoved"`
}

// Ordered reports whether p25 <= median <= p75.
func (s Stats) Ordered() bool {
	return s.P25 <= s.Median && s.Median <= s.P75
}

// Adjustments are signed fractional effects of each factor on the base price.
type Adjustments struct {
	Condition   float64 `json:"condition"`
	Age         float64 `json:"age"`
	Seasonality float64 `json:"seasonality"`
	Region      float64 `json:"region"`
	Damage      float64 `json:"damage"`
}

// Result is the backend's answer for one estimate identifier.
type Result struct {
	Prices      Prices       `json:"prices"`
	Stats       Stats        `json:"stats"`
	Adjustments *Adjustments `json:"adjustments,omitempty"`
}

// Factor is one displayable adjustment.
type Factor struct {
	Key     string
	Label   string
	Tooltip string
	Value   float64
}

// Factors returns the non-zero adjustments in display order.
func (a *Adjustments) Factors() []Factor {
	if a == nil {
		return nil
	}
	all := []Factor{
		{Key: "condition", Label: "الحالة", Tooltip: "تأثير حالة المنتج على السعر.", Value: a.Condition},
		{Key: "age", Label: "عمر المنتج", Tooltip: "تأثير عمر المنتج على السعر.", Value: a.Age},
		{Key: "seasonality", Label: "الموسمية", Tooltip: "تأثير الموسم الحالي على الطلب والسعر.", Value: a.Seasonality},
		{Key: "region", Label: "المنطقة", Tooltip: "تأثير المنطقة الجغرافية على السعر.", Value: a.Region},
		{Key: "damage", Label: "الأضرار الملحوظة", Tooltip: "تأثير الأضرار الملحوظة على السعر.", Value: a.Damage},
	}
	factors := make([]Factor, 0, len(all))
	for _, f := range all {
		if f.Value != 0 {
			factors = append(factors, f)
		}
	}
	return factors
}

// Percent renders the factor as a signed whole percentage, e.g. "+5%".
func (f Factor) Percent() string {
	pct := math.Round(f.Value * 100)
	if pct > 0 {
		return fmt.Sprintf("+%.0f%%", pct)
	}
	return fmt.Sprintf("%.0f%%", pct)
}

// CurrencyLabel is appended to every displayed price.
const CurrencyLabel = "ريال"

// FormatPrice renders a price with the currency label.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + CurrencyLabel
}

// ListingContent is a generated marketplace listing.
type ListingContent struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Hints       []string `json:"hints"`
}
