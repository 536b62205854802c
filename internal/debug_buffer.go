package internal

import (
	"strings"
	"sync"
)

// DebugBuffer collects log output for the logs screen. Remote calls log from
// command goroutines, so writes are serialized.
type DebugBuffer struct {
	mu      sync.Mutex
	content strings.Builder
}

func (db *DebugBuffer) Write(p []byte) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.content.Write(p)
}

func (db *DebugBuffer) String() string {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.content.String()
}
