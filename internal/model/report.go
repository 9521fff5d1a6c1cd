package model

// Report is the outcome of one webhook cycle. Action holds the label of
// the most recent successful action; last write wins when several fire.
// Success reports whether any action was ultimately taken, so a cycle
// where nothing fired is unsuccessful even if no stage errored.
type Report struct {
	Success bool   `json:"success"`
	Action  string `json:"action,omitempty"`
}
