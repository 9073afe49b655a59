package model

import "time"

// Snapshot is a serialized UserRecord queued for or held in persistent
// storage. Data is the record's JSON encoding.
type Snapshot struct {
	UserEmail string    `json:"user_email"`
	Data      []byte    `json:"data"`
	SyncedAt  time.Time `json:"synced_at"`
}
