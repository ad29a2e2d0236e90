package reference

import (
	"strings"

	"golang.org/x/text/cases"
)

// MaxFilterResults caps the dropdown list.
const MaxFilterResults = 20

var folder = cases.Fold()

func fold(s string) string {
	return folder.String(strings.TrimSpace(s))
}

// forms returns the three spellings an option can be matched by.
func forms(opt LanguageOption) [3]string {
	return [3]string{fold(opt.Code), fold(opt.Label), fold(Display(opt))}
}

// Resolve returns the first option whose code, label, or "label (code)"
// equals input, ignoring case and surrounding space.
func Resolve(input string) (LanguageOption, bool) {
	q := fold(input)
	if q == "" {
		return LanguageOption{}, false
	}
	for _, opt := range Languages {
		for _, f := range forms(opt) {
			if f == q {
				return opt, true
			}
		}
	}
	return LanguageOption{}, false
}

// Filter returns options with a substring match on any form, in table order,
// capped at MaxFilterResults. An empty query lists the head of the table.
func Filter(query string) []LanguageOption {
	q := fold(query)
	out := make([]LanguageOption, 0, MaxFilterResults)
	for _, opt := range Languages {
		if len(out) == MaxFilterResults {
			break
		}
		if q == "" {
			out = append(out, opt)
			continue
		}
		for _, f := range forms(opt) {
			if strings.Contains(f, q) {
				out = append(out, opt)
				break
			}
		}
	}
	return out
}
