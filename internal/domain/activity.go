package domain

import "time"

// ActivityLogCapacity bounds the append-only activity log.
const ActivityLogCapacity = 200

// ActivityType classifies an audit trail entry.
type ActivityType string

const (
	ActivityBuyback    ActivityType = "BUYBACK"
	ActivityBurn       ActivityType = "BURN"
	ActivityLock       ActivityType = "LOCK"
	ActivityModeChange ActivityType = "MODE_CHANGE"
	ActivitySkip       ActivityType = "SKIP"
	ActivityError      ActivityType = "ERROR"
)

// ActivityEntry is one append-only audit record. Write-only from the
// controller's perspective; read by the transparency dashboard.
type ActivityEntry struct {
	ID        string       `json:"id"`
	Type      ActivityType `json:"type"`
	Content   string       `json:"content"`
	Result    string       `json:"result"`
	Timestamp time.Time    `json:"timestamp"`
	Source    string       `json:"source"`
}
