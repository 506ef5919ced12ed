package app

import "github.com/google/uuid"

// newID returns a time-sortable UUIDv7 so creation order survives equal timestamps.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func newEntryID() string { return newID() }
