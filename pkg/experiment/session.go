package experiment

import (
	"time"

	"github.com/google/uuid"
)

// Session identifies a single launcher run.
type Session struct {
	ID        string
	StartTime time.Time
}

// NewSession generates a session with unique ID based on start time and a
// random UUID.
func NewSession() Session {
	now := time.Now()
	return Session{
		ID:        now.Format("2006-01-02T15h04m05s_") + uuid.New().String(),
		StartTime: now,
	}
}
