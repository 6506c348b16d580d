package commands

import (
	"fmt"
)

// CommandResponse represents a standardized response format for all commands
type CommandResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) *CommandResponse {
	return &CommandResponse{
		Status: "ok",
		Data:   data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err error) *CommandResponse {
	return &CommandResponse{
		Status: "error",
		Error:  err.Error(),
	}
}

// sessionStore holds the process-wide session store.
// It is set once at application startup via SetSessionStore.
var sessionStore *SessionStore

// SetSessionStore sets the global session store.
// This should be called once at application startup (main.go or server start).
func SetSessionStore(store *SessionStore) {
	sessionStore = store
}

// GetSessionStore returns the current session store.
// Returns nil if SetSessionStore has not been called yet.
func GetSessionStore() *SessionStore {
	return sessionStore
}

// FindSession looks up a live session by ID
func FindSession(sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}
	if sessionStore == nil {
		return nil, fmt.Errorf("session store is not configured")
	}
	return sessionStore.Get(sessionID)
}
