package main

import (
	"fmt"
	"strings"

	"github.com/lithammer/dedent"

	"github.com/raine/pricemate/internal/estimate"
	"github.com/raine/pricemate/internal/llm"
	"github.com/raine/pricemate/internal/prefs"
)

func formatText(text string, a ...any) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(text)), a...)
}

func divider(theme prefs.Theme) string {
	if theme == prefs.ThemeDark {
		return strings.Repeat("━", 32)
	}
	return strings.Repeat("─", 32)
}

func renderHome(theme prefs.Theme, countLine string) string {
	return formatText(`
		%s
		PriceMate - سعّر منتجك المستعمل
		%s
		%s
	`, divider(theme), countLine, divider(theme))
}

func renderAnalysis(a *llm.ImageAnalysis) string {
	brand, model := "-", "-"
	if a.DetectedBrand != nil {
		brand = *a.DetectedBrand
	}
	if a.DetectedModel != nil {
		model = *a.DetectedModel
	}
	text := formatText(`
		تحليل الصورة:
		  العلامة التجارية: %s
		  الموديل: %s
		  الأضرار: %.0f%%
	`, brand, model, a.DamageScore*100)
	if a.Placeholder {
		text += "\n  (نتيجة تجريبية)"
	}
	return text
}

func renderResult(theme prefs.Theme, id string, res *estimate.Result) string {
	var b strings.Builder
	b.WriteString(formatText(`
		%s
		التقييم: %s

		السعر الموصى به: %s
		بيع سريع: %s
		أعلى سعر: %s

		عدد العينات: %d (تم استبعاد %d)
		الربع الأدنى: %s
		الوسيط: %s
		الربع الأعلى: %s
	`,
		divider(theme), id,
		estimate.FormatPrice(res.Prices.Recommended),
		estimate.FormatPrice(res.Prices.Fast),
		estimate.FormatPrice(res.Prices.Max),
		res.Stats.SampleSize, res.Stats.OutliersRemoved,
		estimate.FormatPrice(res.Stats.P25),
		estimate.FormatPrice(res.Stats.Median),
		estimate.FormatPrice(res.Stats.P75),
	))

	if factors := res.Adjustments.Factors(); len(factors) > 0 {
		b.WriteString("\n\nعوامل التعديل:")
		for _, f := range factors {
			fmt.Fprintf(&b, "\n  %s: %s  (%s)", f.Label, f.Percent(), f.Tooltip)
		}
	}
	b.WriteString("\n" + divider(theme))
	return b.String()
}

func renderListing(content *estimate.ListingContent) string {
	var b strings.Builder
	b.WriteString(formatText(`
		عنوان الإعلان:
		%s

		الوصف:
		%s
	`, content.Title, content.Description))
	if len(content.Hints) > 0 {
		b.WriteString("\n\nنصائح:")
		for _, h := range content.Hints {
			b.WriteString("\n  • " + h)
		}
	}
	return b.String()
}
