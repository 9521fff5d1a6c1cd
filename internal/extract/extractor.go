package extract

import (
	"regexp"
	"strings"
)

// Extractor pulls named values out of the markdown key/value tables the
// case platform embeds in alert and case descriptions. Rows look like:
//
//	| **Source IP** | 10.0.0.1 |
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// FromText returns the value for a variable in a table-formatted text.
// Underscores in the variable name are converted to spaces first, since
// authored tables use spaced labels. The second return is false when the
// variable is absent.
func (e *Extractor) FromText(text, variable string) (string, bool) {
	label := strings.ReplaceAll(variable, "_", " ")
	re, err := regexp.Compile(`\|\s*\*\*` + regexp.QuoteMeta(label) + `\*\*\s*\|\s*(.*?)\s*\|`)
	if err != nil {
		return "", false
	}

	sub := re.FindStringSubmatch(text)
	if sub == nil {
		return "", false
	}
	return sub[1], true
}
