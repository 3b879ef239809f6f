package domain

import "time"

// QueryDefinition represents a normalized query definition stored in ClickHouse
type QueryDefinition struct {
	QueryID     string    `ch:"query_id"`
	TeamID      int64     `ch:"team_id"`
	Name        string    `ch:"name"`
	Kind        string    `ch:"kind"`
	Properties  string    `ch:"properties"`
	Series      string    `ch:"series"`
	Exclusions  string    `ch:"exclusions"`
	ProcessedAt time.Time `ch:"processed_at"`
	Version     uint64    `ch:"version"`
}
