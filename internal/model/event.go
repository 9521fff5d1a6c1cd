package model

import "encoding/json"

// ObjectType identifies what kind of record a webhook describes.
type ObjectType string

const (
	ObjectTypeAlert       ObjectType = "alert"
	ObjectTypeCase        ObjectType = "case"
	ObjectTypeArtifact    ObjectType = "case_artifact"
	ObjectTypeArtifactJob ObjectType = "case_artifact_job"
)

// Operation identifies the lifecycle operation of a webhook.
type Operation string

const (
	OperationCreation Operation = "Creation"
	OperationUpdate   Operation = "Update"
	OperationDelete   Operation = "Delete"
)

// Object statuses carried in webhook details.
const (
	StatusIgnored  = "Ignored"
	StatusResolved = "Resolved"
	StatusImported = "Imported"
	StatusSuccess  = "Success"
	StatusOpen     = "Open"
)

// WebhookEvent is one inbound notification from the case platform.
// It is created per request and never persisted.
type WebhookEvent struct {
	ObjectType ObjectType `json:"objectType"`
	Operation  Operation  `json:"operation"`
	RootID     string     `json:"rootId"`
	ObjectID   string     `json:"objectId"`
	Object     Payload    `json:"object"`
	Details    Payload    `json:"details"`
}

// CaseID returns the case this event belongs to: the object itself for
// case events, otherwise the case reference carried on the payload.
func (e WebhookEvent) CaseID() string {
	if e.ObjectType == ObjectTypeCase {
		return e.ObjectID
	}
	if e.Object.Case != "" {
		return e.Object.Case
	}
	return e.RootID
}

// Payload is the loosely typed record attached to a webhook. Which fields
// are populated depends on the object type; absent fields stay zero.
type Payload struct {
	ID          string     `json:"id,omitempty"`
	Type        string     `json:"type,omitempty"`
	Status      string     `json:"status,omitempty"`
	Source      string     `json:"source,omitempty"`
	SourceRef   string     `json:"sourceRef,omitempty"`
	Case        string     `json:"case,omitempty"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Follow      bool       `json:"follow,omitempty"`
	MergeInto   string     `json:"mergeInto,omitempty"`
	MergeFrom   []string   `json:"mergeFrom,omitempty"`
	Artifacts   []Artifact `json:"artifacts,omitempty"`
	DataType    string     `json:"dataType,omitempty"`
	Data        string     `json:"data,omitempty"`
	ArtifactID  string     `json:"artifactId,omitempty"`
	CortexJobID string     `json:"cortexJobId,omitempty"`
	Report      *JobReport `json:"report,omitempty"`
}

// HasTag reports whether the payload carries the exact tag.
func (p Payload) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Artifact is a typed piece of evidence attached to an alert or case.
type Artifact struct {
	DataType string   `json:"dataType"`
	Data     string   `json:"data"`
	Message  string   `json:"message,omitempty"`
	TLP      int      `json:"tlp,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// JobReport is the nested analyzer job result carried on job webhooks.
type JobReport struct {
	Success bool       `json:"success,omitempty"`
	Summary JobSummary `json:"summary,omitempty"`
}

// JobSummary holds the taxonomy entries produced by an analyzer.
type JobSummary struct {
	Taxonomies []Taxonomy `json:"taxonomies,omitempty"`
}

// Taxonomy is one scored classification entry of an analyzer report.
type Taxonomy struct {
	Level     string      `json:"level,omitempty"`
	Namespace string      `json:"namespace,omitempty"`
	Predicate string      `json:"predicate,omitempty"`
	Value     json.Number `json:"value,omitempty"`
}
