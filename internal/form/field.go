package form

import (
	"fmt"
	"strings"

	"github.com/raine/pricemate/internal/estimate"
)

// Base holds what every field has.
type Base struct {
	Name     string
	Label    string
	HelpText string
	Required bool
}

// Field is either a TextField or a SelectField.
type Field interface {
	base() Base
}

// TextField is free text input.
type TextField struct {
	Base
	Placeholder string
	Numeric     bool
}

// SelectField picks one of a fixed set of options.
type SelectField struct {
	Base
	Options []estimate.Option
}

func (f TextField) base() Base   { return f.Base }
func (f SelectField) base() Base { return f.Base }

// FieldBase returns the shared attributes of f.
func FieldBase(f Field) Base {
	return f.base()
}

// DetailFields are the fields shown below the category selector, in order.
func DetailFields() []Field {
	return []Field{
		TextField{Base: Base{Name: estimate.FieldBrand, Label: "الماركة", Required: true}, Placeholder: "مثال: أبل"},
		TextField{Base: Base{Name: estimate.FieldModel, Label: "الموديل", Required: true}, Placeholder: "مثال: آيفون 14 برو"},
		TextField{Base: Base{Name: estimate.FieldYear, Label: "سنة الشراء", Required: true}, Placeholder: "مثال: 2023", Numeric: true},
		SelectField{Base: Base{Name: estimate.FieldCondition, Label: "الحالة", Required: true}, Options: estimate.Conditions},
		TextField{
			Base:        Base{Name: estimate.FieldAccessories, Label: "الملحقات (اختياري)", HelpText: "اذكر جميع الملحقات المرفقة لتقدير أدق."},
			Placeholder: "مثال: الشاحن الأصلي، العلبة",
		},
		SelectField{Base: Base{Name: estimate.FieldRegion, Label: "المنطقة", Required: true}, Options: estimate.Regions},
	}
}

// Render draws f with its current value as plain text lines.
func Render(f Field, value string) string {
	var b strings.Builder
	switch f := f.(type) {
	case TextField:
		b.WriteString(f.Label + ": ")
		if value == "" {
			b.WriteString("[" + f.Placeholder + "]")
		} else {
			b.WriteString(value)
		}
		if f.HelpText != "" {
			b.WriteString("\n  " + f.HelpText)
		}
	case SelectField:
		b.WriteString(f.Label + ":")
		for _, opt := range f.Options {
			mark := " "
			if opt.Value == value {
				mark = "x"
			}
			fmt.Fprintf(&b, "\n  [%s] %s", mark, opt.Label)
		}
	default:
		panic(fmt.Sprintf("form: unhandled field type %T", f))
	}
	return b.String()
}

// Parse converts user input for f into a stored value. Select fields accept
// either the option value or its label.
func Parse(f Field, input string) (string, error) {
	input = strings.TrimSpace(input)
	switch f := f.(type) {
	case TextField:
		if f.Numeric && input != "" {
			for _, r := range input {
				if r < '0' || r > '9' {
					return "", fmt.Errorf("%s: expected a number, got %q", f.Name, input)
				}
			}
		}
		return input, nil
	case SelectField:
		for _, opt := range f.Options {
			if strings.EqualFold(opt.Value, input) || opt.Label == input {
				return opt.Value, nil
			}
		}
		return "", fmt.Errorf("%s: unknown option %q", f.Name, input)
	default:
		panic(fmt.Sprintf("form: unhandled field type %T", f))
	}
}

// Value reads the named field from data.
func Value(data estimate.FormData, name string) string {
	switch name {
	case estimate.FieldCategory:
		return data.Category
	case estimate.FieldBrand:
		return data.Brand
	case estimate.FieldModel:
		return data.Model
	case estimate.FieldYear:
		return data.Year
	case estimate.FieldCondition:
		return string(data.Condition)
	case estimate.FieldAccessories:
		return data.Accessories
	case estimate.FieldRegion:
		return string(data.Region)
	default:
		return ""
	}
}

// SetValue writes the named field into data.
func SetValue(data *estimate.FormData, name, value string) error {
	switch name {
	case estimate.FieldCategory:
		data.Category = value
	case estimate.FieldBrand:
		data.Brand = value
	case estimate.FieldModel:
		data.Model = value
	case estimate.FieldYear:
		data.Year = value
	case estimate.FieldCondition:
		data.Condition = estimate.Condition(value)
	case estimate.FieldAccessories:
		data.Accessories = value
	case estimate.FieldRegion:
		data.Region = estimate.Region(value)
	default:
		return fmt.Errorf("unknown field %q", name)
	}
	return nil
}
