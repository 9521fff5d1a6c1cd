package classifier

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"case-automation/pkg/log"
)

// Classifier maps a raw webhook event to its semantic kinds in one pass.
type Classifier struct {
	cfg    Config
	alerts AlertFinder
	// caseRefs caches caseID → SIEM sourceRef ("" = not SIEM-sourced) so
	// merge-chain walks do not repeat the alert lookup.
	caseRefs *lru.Cache[string, string]
	l        log.Logger
}

// New creates a Classifier. The finder may be nil, in which case the
// case-origin kinds stay false.
func New(cfg Config, alerts AlertFinder, l log.Logger) *Classifier {
	cache, _ := lru.New[string, string](1024)
	return &Classifier{
		cfg:      cfg,
		alerts:   alerts,
		caseRefs: cache,
		l:        l,
	}
}
