package classifier

// Kinds is the immutable flags record computed once per webhook event.
// It replaces repeated predicate calls downstream: classify once, pass by
// value.
type Kinds struct {
	// Base predicates from objectType / operation.
	Alert       bool
	Case        bool
	Artifact    bool
	ArtifactJob bool
	New         bool
	Update      bool
	Delete      bool

	// Status predicates from details.
	MarkedAsRead bool
	Closed       bool
	Success      bool

	// Merge predicates from presence of merge keys.
	MergedInto      bool
	FromMergedCases bool

	// Composite kinds.
	NewAlert      bool
	ImportedAlert bool
	NewCase       bool

	// SIEM-sourced kinds (marker tag / source configured).
	SIEM                 bool
	SIEMAlertImported    bool
	SIEMAlertFollowed    bool
	SIEMAlertWithEvents  bool
	SIEMAlertMarkedRead  bool
	NewSIEMCase          bool
	UpdatedSIEMCase      bool
	ClosedSIEMCase       bool
	DeletedSIEMCase      bool

	// Intel-sourced kinds (threat-intel marker configured).
	Intel            bool
	NewIntelAlert    bool
	NewIntelCase     bool
	NewIntelArtifact bool

	// SourceRef holds the SIEM-native identifier (e.g. an offense id)
	// when a SIEM kind that needs it matched.
	SourceRef string
}

// LinkedAlert is the slice of an alert the classifier needs when walking
// from a case back to its originating alert.
type LinkedAlert struct {
	Source    string
	SourceRef string
}

// Config carries the vendor markers the classifier matches against.
type Config struct {
	// SIEMTag marks SIEM-sourced records by tag membership.
	SIEMTag string
	// SIEMSource is the alert source name set by the SIEM ingestion flow.
	SIEMSource string
	// IntelType marks intel alerts via the object type field.
	IntelType string
	// IntelTag marks intel records by tag membership.
	IntelTag string
	// IntelTagPrefix matches intel taxonomy tags by substring.
	IntelTagPrefix string
}
