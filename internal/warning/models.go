package warning

import (
	"time"

	"backcountry-crews/internal/zones"
)

// Type classifies the severity of a live advisory.
type Type string

const (
	TypeWarning Type = "warning"
	TypeWatch   Type = "watch"
	TypeSpecial Type = "special"
)

// Warning is a live advisory derived from an upstream bulletin. Warnings are
// rebuilt on every ingestion cycle and never persisted; consumers treat them
// as replaceable, valid only for the polling interval that produced them.
type Warning struct {
	Id           string       `json:"id"`
	Zone         string       `json:"zone"`
	ZoneId       zones.ZoneID `json:"zoneId"`
	Type         Type         `json:"type"`
	Title        string       `json:"title"`
	DangerRating int          `json:"dangerRating"`
	IssuedTime   string       `json:"issuedTime"`
	ExpiresTime  string       `json:"expiresTime"`
	BottomLine   string       `json:"bottomLine"`
	Author       string       `json:"author"`
	SourceURL    string       `json:"sourceUrl"`
}

// Result is the served warning payload. Err carries the upstream failure
// message when a cycle degraded to an empty list; the consuming page renders
// with zero warnings rather than failing outright.
type Result struct {
	Warnings  []Warning `json:"warnings"`
	FetchedAt time.Time `json:"fetchedAt"`
	Err       string    `json:"error,omitempty"`
}
