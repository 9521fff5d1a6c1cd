package model

// Action is one configured unit of work dispatched to a handler module.
// Type follows the "module.function" convention from the rule files.
type Action struct {
	Type       string         `mapstructure:"type" yaml:"type"`
	Parameters map[string]any `mapstructure:",remain" yaml:",inline"`
}

// StringParam returns a string parameter or "" when absent.
func (a Action) StringParam(key string) string {
	v, _ := a.Parameters[key].(string)
	return v
}

// IntParam returns an integer parameter or 0 when absent. Rule files may
// carry numbers as int or float depending on the YAML decoder.
func (a Action) IntParam(key string) int {
	switch v := a.Parameters[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// BoolParam returns a boolean parameter or false when absent.
func (a Action) BoolParam(key string) bool {
	v, _ := a.Parameters[key].(bool)
	return v
}

// StringListParam returns a list-of-strings parameter, tolerating the
// []any form the YAML decoder produces.
func (a Action) StringListParam(key string) []string {
	switch v := a.Parameters[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// SubActions returns the nested action list declared under the given
// parameter key, if any. Used for multi-task actions.
func (a Action) SubActions(key string) []Action {
	raw, ok := a.Parameters[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Action, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		sub := Action{Parameters: map[string]any{}}
		for k, v := range m {
			if k == "type" {
				sub.Type, _ = v.(string)
				continue
			}
			sub.Parameters[k] = v
		}
		out = append(out, sub)
	}
	return out
}

// Rule is one configured automation entry, activated by a matching tag.
type Rule struct {
	ID       string
	Internal bool
	Debug    bool
	Actions  []Action
}

// RuleSet is the full automation configuration: the ordered tag patterns
// used to recognize rule identifiers in tags, plus the rules by id.
// Built once at startup, read-only afterwards.
type RuleSet struct {
	TagPatterns []string
	Rules       map[string]Rule
}
