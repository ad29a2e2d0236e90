// Package db stores the local history of dictated transcripts in SQLite.
package db

import "time"

// Transcript is one finished dictation as delivered by the daemon.
type Transcript struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
