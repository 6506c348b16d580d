package commands

import (
	"fmt"

	"github.com/mobile-next/windowthrottle/platform"
	"github.com/mobile-next/windowthrottle/types"
)

// SessionCreateRequest configures a new session. Metrics seed the initial
// window state.
type SessionCreateRequest struct {
	Options OptionsParams    `json:"options"`
	Metrics platform.Metrics `json:"metrics"`
}

type SessionCreateResponse struct {
	SessionID string            `json:"sessionId"`
	Options   OptionsView       `json:"options"`
	State     types.WindowState `json:"state"`
}

// SessionRequest addresses an existing session.
type SessionRequest struct {
	SessionID string `json:"sessionId"`
}

// SessionEventRequest reports a raw event together with the measurements
// that changed.
type SessionEventRequest struct {
	SessionID string `json:"sessionId"`
	Event     string `json:"event"`
	platform.Metrics
}

type SessionActivityRequest struct {
	SessionID string `json:"sessionId"`
	Kind      string `json:"kind"`
}

type SessionActivityResponse struct {
	Kind   string `json:"kind"`
	Active bool   `json:"active"`
}

type SessionStateResponse struct {
	SessionID string            `json:"sessionId"`
	State     types.WindowState `json:"state"`
	Markers   []string          `json:"markers"`
}

type SessionsListResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

// SessionCreateCommand creates a session using the store defaults overlaid
// with the requested options
func SessionCreateCommand(req SessionCreateRequest) *CommandResponse {
	store := GetSessionStore()
	if store == nil {
		return NewErrorResponse(fmt.Errorf("session store is not configured"))
	}

	session, err := store.Create(req.Options, req.Metrics)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to create session: %w", err))
	}

	return NewSuccessResponse(SessionCreateResponse{
		SessionID: session.ID,
		Options:   NewOptionsView(session.Options()),
		State:     session.State(),
	})
}

// SessionEventCommand feeds a raw resize, scroll or orientationchange event
// into a session
func SessionEventCommand(req SessionEventRequest) *CommandResponse {
	if req.Event == "" {
		return NewErrorResponse(fmt.Errorf("event is required"))
	}

	session, err := FindSession(req.SessionID)
	if err != nil {
		return NewErrorResponse(err)
	}

	if err := session.Report(req.Event, req.Metrics); err != nil {
		return NewErrorResponse(fmt.Errorf("failed to report %s event: %w", req.Event, err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"accepted": true,
	})
}

func SessionStateCommand(req SessionRequest) *CommandResponse {
	session, err := FindSession(req.SessionID)
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(SessionStateResponse{
		SessionID: session.ID,
		State:     session.State(),
		Markers:   session.Markers(),
	})
}

func SessionIsActiveCommand(req SessionActivityRequest) *CommandResponse {
	session, err := FindSession(req.SessionID)
	if err != nil {
		return NewErrorResponse(err)
	}

	active, err := session.IsActive(req.Kind)
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(SessionActivityResponse{
		Kind:   req.Kind,
		Active: active,
	})
}

// SessionCloseCommand closes a session and releases its engine
func SessionCloseCommand(req SessionRequest) *CommandResponse {
	if _, err := FindSession(req.SessionID); err != nil {
		return NewErrorResponse(err)
	}

	GetSessionStore().Remove(req.SessionID)
	return NewSuccessResponse(map[string]interface{}{
		"sessionId": req.SessionID,
		"closed":    true,
	})
}

func SessionsListCommand() *CommandResponse {
	store := GetSessionStore()
	if store == nil {
		return NewErrorResponse(fmt.Errorf("session store is not configured"))
	}

	return NewSuccessResponse(SessionsListResponse{
		Sessions: store.List(),
	})
}
