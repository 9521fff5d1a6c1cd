package render

import (
	"fmt"
	"time"

	"case-automation/internal/extract"
	"case-automation/internal/model"
	"case-automation/pkg/log"
)

// Renderer substitutes description-table values into notification
// templates and wraps the result in a channel-specific envelope.
type Renderer struct {
	cfg       Config
	mail      MailSettings
	customers model.CustomerDirectory
	extractor *extract.Extractor
	location  *time.Location
	l         log.Logger
}

// New creates a Renderer. The display timezone must be a valid IANA name.
func New(cfg Config, mail MailSettings, customers model.CustomerDirectory, extractor *extract.Extractor, l log.Logger) (*Renderer, error) {
	tz := cfg.DisplayTimezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid display timezone %q: %w", tz, err)
	}

	return &Renderer{
		cfg:       cfg,
		mail:      mail,
		customers: customers,
		extractor: extractor,
		location:  loc,
		l:         l,
	}, nil
}

// ResolveCustomer returns the customer id routed by the given tags.
func (r *Renderer) ResolveCustomer(tags []string) (string, bool) {
	return r.customers.Lookup(tags)
}
