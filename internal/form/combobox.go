package form

import (
	"fmt"
	"strings"

	"github.com/raine/pricemate/internal/estimate"
)

// NoResults is shown when the query matches no option.
const NoResults = "لا توجد نتائج"

// SearchableSelect is a combo box over a fixed option list: a free-text
// query that filters the options, plus an open/closed list.
type SearchableSelect struct {
	options []estimate.Option
	value   string
	query   string
	open    bool
}

func NewSearchableSelect(options []estimate.Option, value string) *SearchableSelect {
	s := &SearchableSelect{options: options, value: value}
	s.query = s.selectedLabel()
	return s
}

func (s *SearchableSelect) selectedLabel() string {
	return estimate.LabelOf(s.options, s.value)
}

func (s *SearchableSelect) Value() string { return s.value }
func (s *SearchableSelect) Query() string { return s.query }
func (s *SearchableSelect) IsOpen() bool  { return s.open }

// SetValue changes the selection from outside; the query follows the label.
func (s *SearchableSelect) SetValue(value string) {
	s.value = value
	s.query = s.selectedLabel()
}

// Focus opens the list.
func (s *SearchableSelect) Focus() {
	s.open = true
}

// Type replaces the query and opens the list.
func (s *SearchableSelect) Type(query string) {
	s.query = query
	s.open = true
}

// Filtered returns the options to show for the current query. An empty
// query, or one equal to the selected label, shows everything.
func (s *SearchableSelect) Filtered() []estimate.Option {
	if s.query == "" || s.query == s.selectedLabel() {
		return s.options
	}
	q := strings.ToLower(s.query)
	var out []estimate.Option
	for _, opt := range s.options {
		if strings.Contains(strings.ToLower(opt.Label), q) {
			out = append(out, opt)
		}
	}
	return out
}

// Select picks the option with value, puts its label in the query and
// closes the list.
func (s *SearchableSelect) Select(value string) error {
	for _, opt := range s.options {
		if opt.Value == value {
			s.value = opt.Value
			s.query = opt.Label
			s.open = false
			return nil
		}
	}
	return fmt.Errorf("unknown option %q", value)
}

// Blur closes the list and drops any unmatched typed text.
func (s *SearchableSelect) Blur() {
	s.open = false
	s.query = s.selectedLabel()
}

// Render draws the control as text lines.
func (s *SearchableSelect) Render(label string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", label, s.query)
	if !s.open {
		return b.String()
	}
	filtered := s.Filtered()
	if len(filtered) == 0 {
		b.WriteString("\n  " + NoResults)
		return b.String()
	}
	for _, opt := range filtered {
		b.WriteString("\n  - " + opt.Label)
	}
	return b.String()
}
