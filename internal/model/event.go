package model

import "time"

type EventType string

const (
	EventCreate EventType = "CREATE"
	EventWrite  EventType = "WRITE"
	EventRemove EventType = "REMOVE"
	EventRename EventType = "RENAME"
)

// FileEvent is one observed filesystem change in the watched agent-file
// directory, feeding watch-mode sync cycles.
type FileEvent struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}
