package listing

import (
	"context"
	"fmt"
	"strings"

	"github.com/raine/pricemate/internal/estimate"
)

// Generator produces listing content for a priced item. Output may differ
// between calls for the same input.
type Generator interface {
	GenerateListing(ctx context.Context, item estimate.FormData, price float64) (*estimate.ListingContent, error)
}

// genericHints are given for every category, after any category hint.
var genericHints = []string{
	"التقاط صور في إضاءة جيدة ومن زوايا متعددة",
	"كن صادقاً بشأن أي عيوب أو خدوش",
	"استخدم تسعير البيع السريع لسرعة الإغلاق",
}

type categoryExtra struct {
	descriptionLine string
	hint            string
}

// categoryExtras is the fixed enrichment table. Categories missing from it
// get only the generic hints.
var categoryExtras = map[string]categoryExtra{
	estimate.CategoryPhones: {
		descriptionLine: "صحة البطارية: ممتازة",
		hint:            "اذكر نسبة صحة البطارية إن أمكن",
	},
	estimate.CategoryLaptops: {
		descriptionLine: "المواصفات: Core i7, 16GB RAM, 512GB SSD",
		hint:            "اذكر مواصفات الجهاز (RAM, سعة التخزين)",
	},
	estimate.CategoryTablets: {
		descriptionLine: "مساحة التخزين: 128GB, واي فاي فقط",
		hint:            "وضح إذا كان الجهاز يدعم شريحة اتصال أم واي فاي فقط",
	},
	estimate.CategoryGamingConsoles: {
		descriptionLine: "يأتي مع يد تحكم واحدة وأسطوانة لعبة FIFA 23",
		hint:            "اذكر الألعاب أو الملحقات الإضافية المرفقة",
	},
	estimate.CategoryCameras: {
		descriptionLine: "مع عدسة 18-55mm الأصلية",
		hint:            "اذكر نوع العدسة المرفقة وعدد الشاتر إن أمكن",
	},
}

// Hints returns the selling hints for category: the category hint first
// when there is one, then the generic hints.
func Hints(category string) []string {
	hints := make([]string, 0, len(genericHints)+1)
	if extra, ok := categoryExtras[category]; ok {
		hints = append(hints, extra.hint)
	}
	return append(hints, genericHints...)
}

// Enrich applies the category table to generated content: the category
// hint goes first without duplicates and the category description line is
// appended when missing. Content without hints gets the full hint list.
func Enrich(content *estimate.ListingContent, category string) {
	extra, ok := categoryExtras[category]
	switch {
	case len(content.Hints) == 0:
		content.Hints = Hints(category)
	case ok:
		hints := make([]string, 0, len(content.Hints)+1)
		hints = append(hints, extra.hint)
		for _, h := range content.Hints {
			if strings.TrimSpace(h) != extra.hint {
				hints = append(hints, h)
			}
		}
		content.Hints = hints
	}
	if ok && !strings.Contains(content.Description, extra.descriptionLine) {
		content.Description = strings.TrimRight(content.Description, "\n") + "\n" + extra.descriptionLine
	}
}

// Title renders "<brand> <model> <year> حالة <condition label>".
func Title(item estimate.FormData) string {
	return fmt.Sprintf("%s %s %s حالة %s", item.Brand, item.Model, item.Year, conditionLabel(item.Condition))
}

// TemplateGenerator builds listings from the fixed category table.
type TemplateGenerator struct{}

var _ Generator = TemplateGenerator{}

func (TemplateGenerator) GenerateListing(ctx context.Context, item estimate.FormData, price float64) (*estimate.ListingContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title := Title(item)

	accessories := strings.TrimSpace(item.Accessories)
	if accessories == "" {
		accessories = "لا يوجد"
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\nملحقات: " + accessories)
	if extra, ok := categoryExtras[item.Category]; ok {
		b.WriteString("\n" + extra.descriptionLine)
	}
	b.WriteString("\nالموقع: " + regionLabel(item.Region))
	b.WriteString("\nالسعر: " + estimate.FormatPrice(price))

	return &estimate.ListingContent{
		Title:       title,
		Description: b.String(),
		Hints:       Hints(item.Category),
	}, nil
}

func conditionLabel(c estimate.Condition) string {
	if label := estimate.LabelOf(estimate.Conditions, string(c)); label != "" {
		return label
	}
	return string(c)
}

func regionLabel(r estimate.Region) string {
	if label := estimate.LabelOf(estimate.Regions, string(r)); label != "" {
		return label
	}
	return string(r)
}
