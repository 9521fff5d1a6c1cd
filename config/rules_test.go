package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"case-automation/config"
)

func writeRuleFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write rule file: %v", err)
	}
}

func TestLoadRules(t *testing.T) {
	t.Run("Loads Rules From Multiple Files", func(t *testing.T) {
		dir := t.TempDir()
		writeRuleFile(t, dir, "siem.yaml", `
UC-100:
  actions:
    - type: siem.searchQuery
      title: Authentication events
      query: SELECT * FROM events
      start_time_offset: 10
`)
		writeRuleFile(t, dir, "notify.yml", `
UC-200:
  internal: true
  actions:
    - type: notify.sendNotification
      platforms:
        - slack
      short_template: "{Source IP} triggered {Use Case}"
`)

		ruleSet, err := config.LoadRules(dir, []string{`^(UC-\d+)`})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ruleSet.Rules) != 2 {
			t.Fatalf("expected 2 rules, got %d", len(ruleSet.Rules))
		}
		if len(ruleSet.TagPatterns) != 1 {
			t.Errorf("tag patterns not carried: %v", ruleSet.TagPatterns)
		}

		search := ruleSet.Rules["UC-100"]
		if len(search.Actions) != 1 || search.Actions[0].Type != "siem.searchQuery" {
			t.Errorf("unexpected actions: %+v", search.Actions)
		}
		if search.Actions[0].IntParam("start_time_offset") != 10 {
			t.Errorf("numeric parameter lost: %+v", search.Actions[0].Parameters)
		}

		note := ruleSet.Rules["UC-200"]
		if !note.Internal {
			t.Errorf("internal flag lost: %+v", note)
		}
		if got := note.Actions[0].StringListParam("platforms"); len(got) != 1 || got[0] != "slack" {
			t.Errorf("list parameter lost: %v", got)
		}
	})

	t.Run("Duplicate Rule Is An Error", func(t *testing.T) {
		dir := t.TempDir()
		writeRuleFile(t, dir, "a.yaml", "UC-100:\n  actions:\n    - type: x.y\n")
		writeRuleFile(t, dir, "b.yaml", "UC-100:\n  actions:\n    - type: x.z\n")

		if _, err := config.LoadRules(dir, nil); err == nil {
			t.Errorf("expected duplicate rule error")
		}
	})

	t.Run("Action Without Type Is An Error", func(t *testing.T) {
		dir := t.TempDir()
		writeRuleFile(t, dir, "a.yaml", "UC-100:\n  actions:\n    - title: oops\n")

		if _, err := config.LoadRules(dir, nil); err == nil {
			t.Errorf("expected missing type error")
		}
	})

	t.Run("Non YAML Files Ignored", func(t *testing.T) {
		dir := t.TempDir()
		writeRuleFile(t, dir, "README.md", "# not a rule")
		writeRuleFile(t, dir, "a.yaml", "UC-100:\n  actions:\n    - type: x.y\n")

		ruleSet, err := config.LoadRules(dir, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ruleSet.Rules) != 1 {
			t.Errorf("expected 1 rule, got %d", len(ruleSet.Rules))
		}
	})
}
