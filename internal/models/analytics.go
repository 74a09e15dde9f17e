// internal/models/analytics.go
package models

import "time"

// EntityType classifies a tracked entity.
type EntityType string

const (
	EntityTypeBrand      EntityType = "brand"
	EntityTypeCompetitor EntityType = "competitor"
	EntityTypeOther      EntityType = "other"
)

// Entity is a tracked brand, competitor or generic industry subject.
type Entity struct {
	ID   int64      `json:"id"`
	Name string     `json:"canonicalName"`
	Type EntityType `json:"entityType"`
}

// Prompt is one tracked prompt; Cluster groups related prompts thematically.
// An empty Cluster is presented as "Unclustered" downstream.
type Prompt struct {
	ID      string `json:"id"`
	Cluster string `json:"promptCluster"`
}

// Response is one recorded answer from an AI platform to one prompt.
// The date-only component of Date is the unit of all bucketing.
type Response struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"responseDate"`
	PromptID string    `json:"promptId"`
}

// Citation is one detected mention of one entity at a source URL inside one
// platform response. Multiple rows may share a URL; user-facing "citation
// counts" are always distinct URLs, never row counts.
type Citation struct {
	ID         int64  `json:"id"`
	URL        string `json:"url"`
	ResponseID string `json:"responseId"`
	EntityID   int64  `json:"entityId"`
	Platform   string `json:"platform"`
	Name       string `json:"name"`
}

// DateKey truncates a timestamp to the YYYY-MM-DD bucket used everywhere.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
