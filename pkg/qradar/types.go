package qradar

// Offense is a SIEM offense record, limited to the fields this service
// consumes.
type Offense struct {
	ID                         int64   `json:"id"`
	Description                string  `json:"description"`
	OffenseType                int64   `json:"offense_type"`
	OffenseSource              string  `json:"offense_source"`
	Status                     string  `json:"status"`
	StartTime                  int64   `json:"start_time"`
	LastUpdatedTime            int64   `json:"last_updated_time"`
	Credibility                int     `json:"credibility"`
	Relevance                  int     `json:"relevance"`
	Severity                   int     `json:"severity"`
	SourceAddressIDs           []int64 `json:"source_address_ids"`
	LocalDestinationAddressIDs []int64 `json:"local_destination_address_ids"`
	Rules                      []Rule  `json:"rules"`
}

// Rule identifies a SIEM correlation rule that contributed to an
// offense.
type Rule struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// search statuses reported by the Ariel API.
const (
	searchCompleted = "COMPLETED"
	searchError     = "ERROR"
	searchCanceled  = "CANCELED"
)

type searchHandle struct {
	SearchID string `json:"search_id"`
	Status   string `json:"status"`
}

type addressRecord struct {
	SourceIP string `json:"source_ip"`
	LocalIP  string `json:"local_destination_ip"`
}
