package classifier

import "context"

// AlertFinder is the single collaborator the classifier needs: resolving
// which alert a case was created from. Everything else is computed from
// the event itself.
type AlertFinder interface {
	FindAlertsByCase(ctx context.Context, caseID string) ([]LinkedAlert, error)
}
