package server

import (
	"encoding/json"
	"fmt"

	"github.com/mobile-next/windowthrottle/commands"
)

// HandlerFunc is the signature for non-streaming JSON-RPC method handlers
type HandlerFunc func(params json.RawMessage) (interface{}, error)

// GetMethodRegistry returns a map of method names to handler functions
// shared by the HTTP and WebSocket transports
func GetMethodRegistry() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"session_create":    handleSessionCreate,
		"session_event":     handleSessionEvent,
		"session_state":     handleSessionState,
		"session_is_active": handleSessionIsActive,
		"session_close":     handleSessionClose,
		"sessions_list":     handleSessionsList,
	}
}

// Execute dispatches a method call using the registry
func Execute(method string, params json.RawMessage) (interface{}, error) {
	handler, exists := GetMethodRegistry()[method]
	if !exists {
		return nil, fmt.Errorf("method not found: %s", method)
	}

	return handler(params)
}

// decodeParams unmarshals params into v; empty params are allowed when
// the method has no required fields
func decodeParams(params json.RawMessage, v interface{}, expected string) error {
	if len(params) == 0 {
		if expected == "" {
			return nil
		}
		return invalidParams("'params' is required with fields: %s", expected)
	}
	if err := json.Unmarshal(params, v); err != nil {
		return invalidParams("invalid parameters: %v. Expected fields: %s", err, expected)
	}
	return nil
}

func commandResult(response *commands.CommandResponse) (interface{}, error) {
	if response.Status == "error" {
		return nil, fmt.Errorf("%s", response.Error)
	}
	return response.Data, nil
}

func handleSessionCreate(params json.RawMessage) (interface{}, error) {
	var req commands.SessionCreateRequest
	if err := decodeParams(params, &req, ""); err != nil {
		return nil, err
	}
	return commandResult(commands.SessionCreateCommand(req))
}

func handleSessionEvent(params json.RawMessage) (interface{}, error) {
	var req commands.SessionEventRequest
	if err := decodeParams(params, &req, "sessionId, event"); err != nil {
		return nil, err
	}
	if req.SessionID == "" {
		return nil, invalidParams("'sessionId' is required")
	}
	if req.Event == "" {
		return nil, invalidParams("'event' is required")
	}
	return commandResult(commands.SessionEventCommand(req))
}

func handleSessionState(params json.RawMessage) (interface{}, error) {
	var req commands.SessionRequest
	if err := decodeParams(params, &req, "sessionId"); err != nil {
		return nil, err
	}
	return commandResult(commands.SessionStateCommand(req))
}

func handleSessionIsActive(params json.RawMessage) (interface{}, error) {
	var req commands.SessionActivityRequest
	if err := decodeParams(params, &req, "sessionId, kind"); err != nil {
		return nil, err
	}
	return commandResult(commands.SessionIsActiveCommand(req))
}

func handleSessionClose(params json.RawMessage) (interface{}, error) {
	var req commands.SessionRequest
	if err := decodeParams(params, &req, "sessionId"); err != nil {
		return nil, err
	}
	return commandResult(commands.SessionCloseCommand(req))
}

func handleSessionsList(params json.RawMessage) (interface{}, error) {
	return commandResult(commands.SessionsListCommand())
}
