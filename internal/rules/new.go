package rules

import (
	"fmt"
	"regexp"

	"case-automation/internal/model"
	"case-automation/pkg/log"
)

// Matcher recognizes rule identifiers inside event tags and resolves them
// against the loaded rule set.
type Matcher struct {
	ruleSet  model.RuleSet
	patterns []*regexp.Regexp
	l        log.Logger
}

// New compiles the rule set's tag patterns. An invalid pattern is a
// configuration error and fails startup.
func New(ruleSet model.RuleSet, l log.Logger) (*Matcher, error) {
	patterns := make([]*regexp.Regexp, 0, len(ruleSet.TagPatterns))
	for _, raw := range ruleSet.TagPatterns {
		re, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid tag pattern %q: %w", raw, err)
		}
		patterns = append(patterns, re)
	}

	return &Matcher{
		ruleSet:  ruleSet,
		patterns: patterns,
		l:        l,
	}, nil
}
