package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// AccessLog records a single inbound request for traffic accounting.
type AccessLog struct {
	bun.BaseModel `bun:"table:access_logs"`

	ID        int64     `bun:",pk,autoincrement"`
	IP        string    `bun:"ip"`
	UserAgent string    `bun:"user_agent"`
	Timestamp time.Time `bun:"timestamp,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}

// AccessStat is an aggregated hit count for one client IP.
type AccessStat struct {
	IP   string `bun:"ip"`
	Hits int64  `bun:"hits"`
}
