package estimate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raine/pricemate/internal/apperror"
)

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}

func validForm() FormData {
	return FormData{
		Category:  CategoryPhones,
		Brand:     "Apple",
		Model:     "iPhone 14",
		Year:      "2023",
		Condition: ConditionLikeNew,
		Region:    RegionJeddah,
	}
}

func TestDefaultFormData(t *testing.T) {
	f := DefaultFormData(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, CategoryPhones, f.Category)
	assert.Equal(t, "2026", f.Year)
	assert.Equal(t, ConditionLikeNew, f.Condition)
	assert.Equal(t, RegionJeddah, f.Region)
	assert.Empty(t, f.Brand)
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, validForm().Validate())
}

func TestValidate_AccessoriesOptional(t *testing.T) {
	f := validForm()
	f.Accessories = ""
	assert.NoError(t, f.Validate())
}

func TestValidate_ReportsEveryInvalidField(t *testing.T) {
	f := FormData{Category: "spaceships", Year: "twenty", Condition: "Broken", Region: "NYC"}

	err := f.Validate()
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{FieldCategory, FieldBrand, FieldModel, FieldYear, FieldCondition, FieldRegion}, vErr.Fields)
}

func TestValidate_WhitespaceBrandIsEmpty(t *testing.T) {
	f := validForm()
	f.Brand = "   "
	err := f.Validate()

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{FieldBrand}, vErr.Fields)
}

func TestLabelOf(t *testing.T) {
	assert.Equal(t, "جوالات", LabelOf(Categories, CategoryPhones))
	assert.Equal(t, "", LabelOf(Categories, "unknown"))
}

func TestAdjustmentFactors_SkipsZero(t *testing.T) {
	a := &Adjustments{Condition: -0.1, Age: -0.25, Seasonality: 0, Region: 0.05, Damage: 0}

	factors := a.Factors()
	require.Len(t, factors, 3)
	assert.Equal(t, "condition", factors[0].Key)
	assert.Equal(t, "age", factors[1].Key)
	assert.Equal(t, "region", factors[2].Key)
	assert.Equal(t, "-10%", factors[0].Percent())
	assert.Equal(t, "-25%", factors[1].Percent())
	assert.Equal(t, "+5%", factors[2].Percent())
}

func TestAdjustmentFactors_Nil(t *testing.T) {
	var a *Adjustments
	assert.Empty(t, a.Factors())
}

func TestOrdered(t *testing.T) {
	assert.True(t, Prices{Fast: 1, Recommended: 2, Max: 3}.Ordered())
	assert.False(t, Prices{Fast: 3, Recommended: 2, Max: 3}.Ordered())
	assert.True(t, Stats{P25: 1, Median: 1, P75: 2}.Ordered())
	assert.False(t, Stats{P25: 1, Median: 3, P75: 2}.Ordered())
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "2850 ريال", FormatPrice(2850))
	assert.Equal(t, "99.5 ريال", FormatPrice(99.5))
}

func TestNewImage_SniffsPNG(t *testing.T) {
	img, err := NewImage(pngBytes)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
}

func TestNewImage_RejectsUnknown(t *testing.T) {
	_, err := NewImage([]byte("plain text, not an image"))
	assert.Error(t, err)

	_, err = NewImage(nil)
	assert.Error(t, err)
}

func TestImageDataURLRoundTrip(t *testing.T) {
	img := &Image{Data: []byte("abc"), MIMEType: "image/jpeg"}
	url := img.DataURL()
	assert.Equal(t, "data:image/jpeg;base64,YWJj", url)

	parsed, err := ParseDataURL(url)
	require.NoError(t, err)
	assert.Equal(t, img, parsed)
}

func TestParseDataURL_Malformed(t *testing.T) {
	for _, in := range []string{"image/jpeg;base64,YWJj", "data:image/jpeg;base64", "data:image/jpeg,YWJj", "data:image/jpeg;base64,!!"} {
		_, err := ParseDataURL(in)
		assert.Error(t, err, in)
	}
}

func TestImageKey(t *testing.T) {
	a := &Image{Data: []byte("abc"), MIMEType: "image/jpeg"}
	b := &Image{Data: []byte("abc"), MIMEType: "image/jpeg"}
	c := &Image{Data: []byte("abd"), MIMEType: "image/jpeg"}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
	assert.Len(t, a.Key(), 64)

	var none *Image
	assert.Equal(t, "", none.Key())
}
