package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"case-automation/internal/model"
)

// rawRule is the on-disk shape of one automation rule.
type rawRule struct {
	Internal bool             `yaml:"internal"`
	Debug    bool             `yaml:"debug"`
	Actions  []map[string]any `yaml:"actions"`
}

// LoadRules reads every YAML file in the rules directory and builds the
// rule set. Each file maps rule identifiers to their definition; a rule
// identifier appearing in two files is an error.
func LoadRules(dir string, tagPatterns []string) (model.RuleSet, error) {
	ruleSet := model.RuleSet{
		TagPatterns: tagPatterns,
		Rules:       map[string]model.Rule{},
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return model.RuleSet{}, fmt.Errorf("read rules dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return model.RuleSet{}, fmt.Errorf("read rule file %s: %w", path, err)
		}

		var fileRules map[string]rawRule
		if err := yaml.Unmarshal(raw, &fileRules); err != nil {
			return model.RuleSet{}, fmt.Errorf("parse rule file %s: %w", path, err)
		}

		for id, r := range fileRules {
			if _, exists := ruleSet.Rules[id]; exists {
				return model.RuleSet{}, fmt.Errorf("rule %s defined twice (last in %s)", id, path)
			}
			rule, err := buildRule(id, r)
			if err != nil {
				return model.RuleSet{}, fmt.Errorf("rule file %s: %w", path, err)
			}
			ruleSet.Rules[id] = rule
		}
	}

	return ruleSet, nil
}

func buildRule(id string, r rawRule) (model.Rule, error) {
	rule := model.Rule{
		ID:       id,
		Internal: r.Internal,
		Debug:    r.Debug,
	}

	for i, rawAction := range r.Actions {
		action := model.Action{Parameters: map[string]any{}}
		for key, value := range rawAction {
			if key == "type" {
				actionType, ok := value.(string)
				if !ok || strings.TrimSpace(actionType) == "" {
					return model.Rule{}, fmt.Errorf("rule %s action %d has no type", id, i)
				}
				action.Type = actionType
				continue
			}
			action.Parameters[key] = value
		}
		if action.Type == "" {
			return model.Rule{}, fmt.Errorf("rule %s action %d has no type", id, i)
		}
		rule.Actions = append(rule.Actions, action)
	}

	return rule, nil
}

// CustomerDirectoryOf converts the configured customer list into the
// lookup directory used by notification routing.
func CustomerDirectoryOf(customers []CustomerConfig) model.CustomerDirectory {
	directory := make(model.CustomerDirectory, len(customers))
	for _, customer := range customers {
		directory[customer.ID] = model.Customer{
			Recipient: customer.Recipient,
			SlackURL:  customer.SlackURL,
			TeamsURL:  customer.TeamsURL,
		}
	}
	return directory
}
