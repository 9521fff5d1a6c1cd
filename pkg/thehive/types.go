package thehive

// Alert is the case platform's alert object, limited to the fields this
// service reads and writes.
type Alert struct {
	ID           string       `json:"id,omitempty"`
	Title        string       `json:"title,omitempty"`
	Description  string       `json:"description,omitempty"`
	Type         string       `json:"type,omitempty"`
	Source       string       `json:"source,omitempty"`
	SourceRef    string       `json:"sourceRef,omitempty"`
	Severity     int          `json:"severity,omitempty"`
	TLP          int          `json:"tlp,omitempty"`
	Date         int64        `json:"date,omitempty"`
	Status       string       `json:"status,omitempty"`
	Follow       bool         `json:"follow,omitempty"`
	CaseTemplate string       `json:"caseTemplate,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	Artifacts    []Observable `json:"artifacts,omitempty"`
}

// Case is the platform's case object.
type Case struct {
	ID           string         `json:"id,omitempty"`
	Title        string         `json:"title,omitempty"`
	Description  string         `json:"description,omitempty"`
	Status       string         `json:"status,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	CustomFields map[string]any `json:"customFields,omitempty"`
}

// Task is one case task.
type Task struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Observable is a typed piece of evidence attached to a case or alert.
type Observable struct {
	ID       string   `json:"id,omitempty"`
	DataType string   `json:"dataType"`
	Data     string   `json:"data"`
	Message  string   `json:"message,omitempty"`
	TLP      int      `json:"tlp,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// CustomField builders for the platform's {name: {type: value}} shape.

// StringField builds a string custom field value.
func StringField(value string) map[string]any {
	return map[string]any{"string": value}
}

// NumberField builds a numeric custom field value.
func NumberField(value int) map[string]any {
	return map[string]any{"number": value}
}

// DateField builds a date custom field value (epoch millis).
func DateField(millis int64) map[string]any {
	return map[string]any{"date": millis}
}
