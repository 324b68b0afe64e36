package model

// IngestLog summarises one POST /logs batch.
type IngestLog struct {
	RequestID   string `json:"request_id"`
	ProjectName string `json:"project_name,omitempty"`
	Schema      string `json:"schema"`
	Table       string `json:"table"`
	Entries     int    `json:"entries"`
	Inserted    int    `json:"inserted"`
	Skipped     int    `json:"skipped"`
	Errors      int    `json:"errors"`
	Committed   bool   `json:"committed"`
	Error       string `json:"error,omitempty"`
	DurationMs  int64  `json:"duration_ms"`
	Version     string `json:"version,omitempty"`
	LoggedAt    string `json:"logged_at"`
}
