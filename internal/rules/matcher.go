package rules

import (
	"context"

	"case-automation/internal/model"
)

// Match walks the event's tags in order and tries each configured pattern
// in order. A matching tag yields the captured rule id, which is looked
// up in the rule set. Unmatched tags and unknown ids are skipped without
// error; every hit is returned in encounter order.
func (m *Matcher) Match(ctx context.Context, event model.WebhookEvent) []Match {
	var matches []Match

	for _, tag := range event.Object.Tags {
		id, ok := m.extractRuleID(tag)
		if !ok {
			m.l.Infof(ctx, "Tag %q does not match any rule pattern", tag)
			continue
		}

		rule, ok := m.ruleSet.Rules[id]
		if !ok {
			m.l.Infof(ctx, "No rule configured for id %q (tag %q)", id, tag)
			continue
		}

		m.l.Infof(ctx, "Tag %q matched rule %q", tag, id)
		matches = append(matches, Match{Rule: rule, Tag: tag})
	}

	return matches
}

// extractRuleID returns the first pattern capture for the tag. A pattern
// without capture groups uses the whole match as the id.
func (m *Matcher) extractRuleID(tag string) (string, bool) {
	for _, re := range m.patterns {
		sub := re.FindStringSubmatch(tag)
		if sub == nil {
			continue
		}
		if len(sub) > 1 {
			return sub[1], true
		}
		return sub[0], true
	}
	return "", false
}
