package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/raine/pricemate/internal/apperror"
	"github.com/raine/pricemate/internal/estimate"
	"github.com/raine/pricemate/internal/listing"
)

const (
	geminiModel     = "gemini-2.5-flash"
	geminiLiteModel = "gemini-2.5-flash-lite"
)

// Gemini pricing (per million tokens)
const (
	geminiInputPricePerMillion      = 0.30
	geminiOutputPricePerMillion     = 2.50
	geminiLiteInputPricePerMillion  = 0.10
	geminiLiteOutputPricePerMillion = 0.40
)

const visionPrompt = `Analyze the image of this product. Identify its brand, model, and overall condition. Provide a short description. Also, provide a damage score from 0 (mint condition) to 1 (heavily damaged).`

const listingPrompt = `اكتب إعلان بيع لمنتج مستعمل في سوق إلكتروني سعودي.

الفئة: %s
الماركة: %s
الموديل: %s
سنة الشراء: %s
الحالة: %s
الملحقات: %s
المدينة: %s
السعر المقترح: %s

المطلوب:
- title: عنوان قصير وواضح يتضمن الماركة والموديل
- description: وصف من عدة أسطر يذكر الحالة والملحقات والموقع والسعر
- hints: من 3 إلى 5 نصائح قصيرة للبائع لبيع المنتج بسرعة

اكتب باللغة العربية فقط.`

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiAnalyzer uses Google's Gemini API for image analysis and listing
// generation.
type GeminiAnalyzer struct {
	models contentGenerator
}

var (
	_ Analyzer          = (*GeminiAnalyzer)(nil)
	_ listing.Generator = (*GeminiAnalyzer)(nil)
)

// NewGeminiAnalyzer creates a new Gemini-based analyzer.
func NewGeminiAnalyzer(ctx context.Context, apiKey string) (*GeminiAnalyzer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiAnalyzer{models: client.Models}, nil
}

func imageAnalysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"detectedBrand": {
				Type:        genai.TypeString,
				Nullable:    genai.Ptr(true),
				Description: "The identified brand of the product, or null if not identifiable.",
			},
			"detectedModel": {
				Type:        genai.TypeString,
				Nullable:    genai.Ptr(true),
				Description: "The identified model of the product, or null if not identifiable.",
			},
			"damageScore": {
				Type:        genai.TypeNumber,
				Description: "A score from 0.0 to 1.0 indicating the level of damage.",
			},
			"description": {
				Type:        genai.TypeString,
				Description: "A brief one-sentence description of the item and its condition.",
			},
		},
		Required:         []string{"detectedBrand", "detectedModel", "damageScore", "description"},
		PropertyOrdering: []string{"detectedBrand", "detectedModel", "damageScore", "description"},
	}
}

func listingSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":       {Type: genai.TypeString},
			"description": {Type: genai.TypeString},
			"hints": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required:         []string{"title", "description", "hints"},
		PropertyOrdering: []string{"title", "description", "hints"},
	}
}

// AnalyzeImage implements the Analyzer interface using Gemini.
func (g *GeminiAnalyzer) AnalyzeImage(ctx context.Context, img *estimate.Image) (*ImageAnalysis, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, apperror.New(apperror.KindAnalysisUnavailable, apperror.MsgAnalysisFailed)
	}

	parts := []*genai.Part{
		{InlineData: &genai.Blob{Data: img.Data, MIMEType: img.MIMEType}},
		genai.NewPartFromText(visionPrompt),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   imageAnalysisSchema(),
	}

	result, err := g.models.GenerateContent(ctx, geminiModel, []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}, config)
	if err != nil {
		log.Error().Err(err).Msg("gemini vision call failed")
		return nil, apperror.Wrap(err, apperror.KindAnalysisUnavailable, apperror.MsgAnalysisFailed)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, apperror.New(apperror.KindAnalysisUnavailable, apperror.MsgAnalysisFailed)
	}

	analysis, err := parseImageAnalysis(result.Text())
	if err != nil {
		log.Error().Err(err).Msg("unusable gemini vision response")
		return nil, apperror.Wrap(err, apperror.KindAnalysisUnavailable, apperror.MsgAnalysisFailed)
	}

	usage := usageOf(result, geminiInputPricePerMillion, geminiOutputPricePerMillion)
	log.Info().
		Str("model", geminiModel).
		Str("mimeType", img.MIMEType).
		Int64("inputTokens", usage.InputTokens).
		Int64("outputTokens", usage.OutputTokens).
		Float64("costUSD", usage.CostUSD).
		Float64("damageScore", analysis.DamageScore).
		Msg("vision llm call")

	return analysis, nil
}

// GenerateListing writes listing content with Gemini Lite, then applies the
// category table.
func (g *GeminiAnalyzer) GenerateListing(ctx context.Context, item estimate.FormData, price float64) (*estimate.ListingContent, error) {
	accessories := item.Accessories
	if strings.TrimSpace(accessories) == "" {
		accessories = "لا يوجد"
	}
	prompt := fmt.Sprintf(listingPrompt,
		labelOr(estimate.Categories, item.Category),
		item.Brand,
		item.Model,
		item.Year,
		labelOr(estimate.Conditions, string(item.Condition)),
		accessories,
		labelOr(estimate.Regions, string(item.Region)),
		estimate.FormatPrice(price),
	)
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   listingSchema(),
	}

	result, err := g.models.GenerateContent(ctx, geminiLiteModel, []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}, config)
	if err != nil {
		log.Error().Err(err).Msg("gemini listing call failed")
		return nil, apperror.Wrap(err, apperror.KindServer, apperror.MsgListingFailed)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, apperror.New(apperror.KindServer, apperror.MsgListingFailed)
	}

	content, err := parseListingContent(result.Text())
	if err != nil {
		log.Error().Err(err).Msg("unusable gemini listing response")
		return nil, apperror.Wrap(err, apperror.KindServer, apperror.MsgListingFailed)
	}
	listing.Enrich(content, item.Category)

	usage := usageOf(result, geminiLiteInputPricePerMillion, geminiLiteOutputPricePerMillion)
	log.Info().
		Str("model", geminiLiteModel).
		Str("category", item.Category).
		Int64("inputTokens", usage.InputTokens).
		Int64("outputTokens", usage.OutputTokens).
		Float64("costUSD", usage.CostUSD).
		Msg("listing llm call")

	return content, nil
}

func usageOf(result *genai.GenerateContentResponse, inputPrice, outputPrice float64) Usage {
	usage := Usage{}
	if result.UsageMetadata != nil {
		usage.InputTokens = int64(result.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int64(result.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int64(result.UsageMetadata.TotalTokenCount)
		usage.CostUSD = calculateGeminiCost(usage.InputTokens, usage.OutputTokens, inputPrice, outputPrice)
	}
	return usage
}

func calculateGeminiCost(inputTokens, outputTokens int64, inputPrice, outputPrice float64) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * inputPrice
	outputCost := float64(outputTokens) / 1_000_000 * outputPrice
	return inputCost + outputCost
}

// extractJSONObject extracts a JSON object from text that may contain markdown
// code blocks or other formatting. Returns the extracted JSON string or an error.
func extractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response: %s", text)
	}
	return text[start : end+1], nil
}

func parseImageAnalysis(text string) (*ImageAnalysis, error) {
	jsonStr, err := extractJSONObject(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}

	var analysis ImageAnalysis
	if err := json.Unmarshal([]byte(jsonStr), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w (response: %s)", err, jsonStr)
	}

	analysis.DetectedBrand = nonBlank(analysis.DetectedBrand)
	analysis.DetectedModel = nonBlank(analysis.DetectedModel)
	analysis.DamageScore = clampDamage(analysis.DamageScore)
	analysis.Description = strings.TrimSpace(analysis.Description)
	analysis.Placeholder = false

	return &analysis, nil
}

func parseListingContent(text string) (*estimate.ListingContent, error) {
	jsonStr, err := extractJSONObject(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}

	var content estimate.ListingContent
	if err := json.Unmarshal([]byte(jsonStr), &content); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w (response: %s)", err, jsonStr)
	}
	content.Title = strings.TrimSpace(content.Title)
	if content.Title == "" {
		return nil, fmt.Errorf("listing response has no title")
	}
	return &content, nil
}

// nonBlank turns blank strings and the literal "null" into nil.
func nonBlank(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	return &v
}

func labelOr(options []estimate.Option, value string) string {
	if label := estimate.LabelOf(options, value); label != "" {
		return label
	}
	return value
}
