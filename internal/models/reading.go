// Package models defines the domain types shared by the storage layers.
package models

import "time"

// Reading kinds.
const (
	KindReading  = "reading"
	KindPorondam = "porondam"
)

// Reading is a generated report as archived for one user.
type Reading struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Kind        string         `json:"kind"`
	Title       string         `json:"title"`
	Body        string         `json:"body"`
	Sections    []Section      `json:"sections,omitempty"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Checksum    string         `json:"checksum"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Section is one "###" block of a reading.
type Section struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// ReadingMeta is the lightweight form returned by list operations.
type ReadingMeta struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

// LedgerEntry is one credit movement. Amount is negative for charges.
type LedgerEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	RequestID string    `json:"request_id"`
	Kind      string    `json:"kind"`
	Amount    int       `json:"amount"`
	Balance   int       `json:"balance"`
	Memo      string    `json:"memo,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
