package dto

// IngestResult is the body of a successful POST /logs.
// Inserted + Skipped + Errors always equals the number of submitted entries.
type IngestResult struct {
	Status   string `json:"status" example:"ok"`
	Inserted int    `json:"inserted" example:"1"`
	Skipped  int    `json:"skipped" example:"1"`
	Errors   int    `json:"errors" example:"0"`
}
