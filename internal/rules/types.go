package rules

import "case-automation/internal/model"

// Match pairs a rule with the tag that activated it.
type Match struct {
	Rule model.Rule
	Tag  string
}
