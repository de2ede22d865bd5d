package listing

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raine/pricemate/internal/estimate"
)

func item(category string) estimate.FormData {
	return estimate.FormData{
		Category:  category,
		Brand:     "Apple",
		Model:     "iPhone 14",
		Year:      "2023",
		Condition: estimate.ConditionLikeNew,
		Region:    estimate.RegionJeddah,
	}
}

func TestGenerateListing_Phones(t *testing.T) {
	got, err := TemplateGenerator{}.GenerateListing(context.Background(), item(estimate.CategoryPhones), 2850)
	require.NoError(t, err)

	assert.Equal(t, "Apple iPhone 14 2023 حالة كالجديد", got.Title)
	assert.Equal(t, "Apple iPhone 14 2023 حالة كالجديد\nملحقات: لا يوجد\nصحة البطارية: ممتازة\nالموقع: جدة\nالسعر: 2850 ريال", got.Description)
	require.Len(t, got.Hints, 4)
	assert.Contains(t, got.Hints[0], "البطارية")
}

func TestGenerateListing_LaptopsHintMentionsSpecs(t *testing.T) {
	got, err := TemplateGenerator{}.GenerateListing(context.Background(), item(estimate.CategoryLaptops), 3500)
	require.NoError(t, err)

	assert.Contains(t, got.Hints[0], "مواصفات")
	assert.Contains(t, got.Description, "المواصفات: Core i7")
}

func TestGenerateListing_OtherCategoryGetsGenericHintsOnly(t *testing.T) {
	for _, category := range []string{estimate.CategoryFurniture, estimate.CategoryAppliancesSmall, "unknown"} {
		got, err := TemplateGenerator{}.GenerateListing(context.Background(), item(category), 450)
		require.NoError(t, err)

		assert.Equal(t, genericHints, got.Hints, category)
		assert.Equal(t, 4, strings.Count(got.Description, "\n")+1, category)
	}
}

func TestGenerateListing_KeepsAccessories(t *testing.T) {
	it := item(estimate.CategoryCameras)
	it.Accessories = "العلبة الأصلية"

	got, err := TemplateGenerator{}.GenerateListing(context.Background(), it, 2150)
	require.NoError(t, err)
	assert.Contains(t, got.Description, "ملحقات: العلبة الأصلية")
	assert.Contains(t, got.Description, "مع عدسة 18-55mm الأصلية")
}

func TestGenerateListing_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := TemplateGenerator{}.GenerateListing(ctx, item(estimate.CategoryPhones), 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHintsDoNotShareBackingArray(t *testing.T) {
	a := Hints(estimate.CategoryPhones)
	a[1] = "changed"
	assert.Equal(t, genericHints[0], Hints(estimate.CategoryPhones)[1])
}

func TestEnrich(t *testing.T) {
	content := &estimate.ListingContent{
		Description: "لابتوب نظيف\nالمواصفات: Core i7, 16GB RAM, 512GB SSD",
		Hints:       []string{"صور جيدة"},
	}
	Enrich(content, estimate.CategoryLaptops)

	require.Len(t, content.Hints, 2)
	assert.Contains(t, content.Hints[0], "مواصفات")
	assert.Equal(t, "صور جيدة", content.Hints[1])
	assert.Equal(t, 1, strings.Count(content.Description, "المواصفات:"))
}

func TestEnrich_EmptyHintsAndUnknownCategory(t *testing.T) {
	content := &estimate.ListingContent{Description: "وصف"}
	Enrich(content, estimate.CategoryFurniture)

	assert.Equal(t, Hints(estimate.CategoryFurniture), content.Hints)
	assert.Equal(t, "وصف", content.Description)
}
