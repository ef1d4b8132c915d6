package dto

import "time"

// AccessLogResponse represents a recorded access-log entry.
type AccessLogResponse struct {
	ID        int64     `json:"id"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Timestamp time.Time `json:"timestamp"`
}

// AccessStatResponse is one row of the grouped hit-count report.
type AccessStatResponse struct {
	IP   string `json:"ip"`
	Hits int64  `json:"hits"`
}
