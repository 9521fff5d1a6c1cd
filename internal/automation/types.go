package automation

// Config toggles the processing stages.
type Config struct {
	// RuleAutomation enables tag-rule matching and action dispatch.
	RuleAutomation bool
}
