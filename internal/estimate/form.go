package estimate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/raine/pricemate/internal/apperror"
)

// Condition is the wear level of the item.
type Condition string

const (
	ConditionNew      Condition = "New"
	ConditionLikeNew  Condition = "LikeNew"
	ConditionUsed     Condition = "Used"
	ConditionHeavyUse Condition = "HeavyUse"
)

// Region is the city the item is sold in.
type Region string

const (
	RegionJeddah Region = "JED"
	RegionRiyadh Region = "RUH"
	RegionDammam Region = "DMM"
)

// Option is one selectable value with its display label.
type Option struct {
	Value string
	Label string
}

// Category values known to the backend fixtures and the listing table.
const (
	CategoryPhones          = "phones"
	CategoryLaptops         = "laptops"
	CategoryAppliancesSmall = "appliances_small"
	CategoryFurniture       = "furniture"
	CategoryTablets         = "tablets"
	CategoryGamingConsoles  = "gaming_consoles"
	CategoryCameras         = "cameras"
)

// Categories is the category catalog in display order. New categories are
// added here; nothing else needs to change for them to be selectable.
var Categories = []Option{
	{Value: CategoryPhones, Label: "جوالات"},
	{Value: CategoryLaptops, Label: "لابتوبات"},
	{Value: CategoryAppliancesSmall, Label: "أجهزة صغيرة"},
	{Value: CategoryFurniture, Label: "أثاث"},
	{Value: CategoryTablets, Label: "أجهزة لوحية"},
	{Value: CategoryGamingConsoles, Label: "منصات ألعاب"},
	{Value: CategoryCameras, Label: "كاميرات"},
}

var Conditions = []Option{
	{Value: string(ConditionNew), Label: "جديد"},
	{Value: string(ConditionLikeNew), Label: "كالجديد"},
	{Value: string(ConditionUsed), Label: "مستخدم"},
	{Value: string(ConditionHeavyUse), Label: "استخدام كثيف"},
}

var Regions = []Option{
	{Value: string(RegionJeddah), Label: "جدة"},
	{Value: string(RegionRiyadh), Label: "الرياض"},
	{Value: string(RegionDammam), Label: "الدمام"},
}

// FormData is the attribute set the user fills in for one estimate.
type FormData struct {
	Category    string    `json:"category"`
	Brand       string    `json:"brand"`
	Model       string    `json:"model"`
	Year        string    `json:"year"`
	Condition   Condition `json:"condition"`
	Accessories string    `json:"accessories"`
	Region      Region    `json:"region"`
}

// DefaultFormData returns the initial form values for a new flow.
func DefaultFormData(now time.Time) FormData {
	return FormData{
		Category:  CategoryPhones,
		Year:      strconv.Itoa(now.Year()),
		Condition: ConditionLikeNew,
		Region:    RegionJeddah,
	}
}

// Field names, used as form keys and in validation errors.
const (
	FieldCategory    = "category"
	FieldBrand       = "brand"
	FieldModel       = "model"
	FieldYear        = "year"
	FieldCondition   = "condition"
	FieldAccessories = "accessories"
	FieldRegion      = "region"
)

// ValidationError lists the fields that block submission.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

const msgRequiredFields = "يرجى تعبئة الحقول المطلوبة: %s"

// Validate checks the submission invariants. The returned error is an
// *apperror.Error of KindValidation wrapping a *ValidationError.
func (f FormData) Validate() error {
	var invalid []string
	if !IsKnown(Categories, f.Category) {
		invalid = append(invalid, FieldCategory)
	}
	if strings.TrimSpace(f.Brand) == "" {
		invalid = append(invalid, FieldBrand)
	}
	if strings.TrimSpace(f.Model) == "" {
		invalid = append(invalid, FieldModel)
	}
	if _, err := strconv.Atoi(strings.TrimSpace(f.Year)); err != nil {
		invalid = append(invalid, FieldYear)
	}
	if !IsKnown(Conditions, string(f.Condition)) {
		invalid = append(invalid, FieldCondition)
	}
	if !IsKnown(Regions, string(f.Region)) {
		invalid = append(invalid, FieldRegion)
	}
	if len(invalid) == 0 {
		return nil
	}
	return apperror.Wrap(
		&ValidationError{Fields: invalid},
		apperror.KindValidation,
		fmt.Sprintf(msgRequiredFields, strings.Join(invalid, "، ")),
	)
}

// IsKnown reports whether value is one of the options.
func IsKnown(options []Option, value string) bool {
	for _, opt := range options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// LabelOf returns the label for value, or "" when value is not an option.
func LabelOf(options []Option, value string) string {
	for _, opt := range options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return ""
}
