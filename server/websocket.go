package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mobile-next/windowthrottle/commands"
	"github.com/mobile-next/windowthrottle/types"
	"github.com/mobile-next/windowthrottle/utils"
)

// notificationQueueSize bounds notifications waiting to be written to one connection.
const notificationQueueSize = 256

// methods that only exist over WebSocket
const (
	MethodSubscribe   = "session_subscribe"
	MethodUnsubscribe = "session_unsubscribe"

	// notificationMethod is the method name of pushed notifications
	notificationMethod = "notification"
)

var allEvents = []types.EventName{types.EventResize, types.EventResizeEnd, types.EventScroll, types.EventScrollEnd}

type wsConnection struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	subsMu        sync.Mutex
	subscriptions map[string]func()
	outbox        chan JSONRPCNotification
	closed        chan struct{}
}

// SubscribeParams selects the notifications pushed for one session
type SubscribeParams struct {
	SessionID string   `json:"sessionId"`
	Events    []string `json:"events,omitempty"`
}

type UnsubscribeParams struct {
	SubscriptionID string `json:"subscriptionId"`
}

// NotificationParams is the payload of a pushed notification
type NotificationParams struct {
	SessionID      string `json:"sessionId"`
	SubscriptionID string `json:"subscriptionId"`
	types.Notification
}

func newUpgrader(enableCORS bool) *websocket.Upgrader {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	if enableCORS {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	} else {
		upgrader.CheckOrigin = isSameOrigin
	}

	return &upgrader
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, enableCORS bool, shutdown func()) {
	conn, err := newUpgrader(enableCORS).Upgrade(w, r, nil)
	if err != nil {
		utils.Warn("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	wsConn := &wsConnection{
		conn:          conn,
		subscriptions: make(map[string]func()),
		outbox:        make(chan JSONRPCNotification, notificationQueueSize),
		closed:        make(chan struct{}),
	}
	go wsConn.pump()
	defer wsConn.close()

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			// connection closed or error
			utils.Verbose("WebSocket connection closed: %v", err)
			break
		}

		if messageType != websocket.TextMessage {
			_ = wsConn.sendError(nil, ErrCodeInvalidRequest, errTitleInvalidReq, "only text messages accepted for requests")
			continue
		}

		handleWSMessage(wsConn, message, shutdown)
	}
}

func isSameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return originURL.Host == r.Host
}

func handleWSMessage(wsConn *wsConnection, message []byte, shutdown func()) {
	var req JSONRPCRequest
	if err := json.Unmarshal(message, &req); err != nil {
		_ = wsConn.sendError(nil, ErrCodeParseError, errTitleParseError, errMsgParseError)
		return
	}

	if req.JSONRPC != "2.0" {
		_ = wsConn.sendError(req.ID, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgInvalidJSONRPC)
		return
	}

	if req.ID == nil {
		_ = wsConn.sendError(nil, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgIDRequired)
		return
	}

	if req.Method == "" {
		_ = wsConn.sendError(req.ID, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgMethodRequired)
		return
	}

	utils.Info("WebSocket Request ID: %v, Method: %s, Params: %s", req.ID, req.Method, string(req.Params))

	handleWSMethodCall(wsConn, req, shutdown)
}

func handleWSMethodCall(wsConn *wsConnection, req JSONRPCRequest, shutdown func()) {
	var handler HandlerFunc
	switch req.Method {
	case MethodShutdown:
		_ = wsConn.sendResponse(req.ID, okResponse)
		shutdown()
		return
	case MethodSubscribe:
		handler = wsConn.handleSubscribe
	case MethodUnsubscribe:
		handler = wsConn.handleUnsubscribe
	default:
		var exists bool
		handler, exists = GetMethodRegistry()[req.Method]
		if !exists {
			_ = wsConn.sendError(req.ID, ErrCodeMethodNotFound, errTitleNotFound, req.Method+" not found")
			return
		}
	}

	result, err := handler(req.Params)
	if err != nil {
		utils.Verbose("Error executing method %s: %v", req.Method, err)
		code, title := errorCode(err)
		_ = wsConn.sendError(req.ID, code, title, err.Error())
		return
	}

	_ = wsConn.sendResponse(req.ID, result)
}

func (wsc *wsConnection) handleSubscribe(params json.RawMessage) (interface{}, error) {
	var req SubscribeParams
	if err := decodeParams(params, &req, "sessionId, events"); err != nil {
		return nil, err
	}

	names := allEvents
	if len(req.Events) > 0 {
		names = make([]types.EventName, 0, len(req.Events))
		for _, event := range req.Events {
			name, ok := types.ParseEventName(event)
			if !ok {
				return nil, invalidParams("unknown event '%s', must be one of 'resize', 'resizeEnd', 'scroll', 'scrollEnd'", event)
			}
			names = append(names, name)
		}
	}

	session, err := commands.FindSession(req.SessionID)
	if err != nil {
		return nil, err
	}

	subscriptionID := uuid.NewString()
	cancel, err := session.Subscribe(names, func(n types.Notification) {
		wsc.enqueue(JSONRPCNotification{
			JSONRPC: "2.0",
			Method:  notificationMethod,
			Params: NotificationParams{
				SessionID:      session.ID,
				SubscriptionID: subscriptionID,
				Notification:   n,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	wsc.subsMu.Lock()
	wsc.subscriptions[subscriptionID] = cancel
	wsc.subsMu.Unlock()

	return map[string]interface{}{
		"subscriptionId": subscriptionID,
		"events":         names,
	}, nil
}

func (wsc *wsConnection) handleUnsubscribe(params json.RawMessage) (interface{}, error) {
	var req UnsubscribeParams
	if err := decodeParams(params, &req, "subscriptionId"); err != nil {
		return nil, err
	}

	wsc.subsMu.Lock()
	cancel, ok := wsc.subscriptions[req.SubscriptionID]
	delete(wsc.subscriptions, req.SubscriptionID)
	wsc.subsMu.Unlock()

	if !ok {
		return nil, invalidParams("subscription not found: %s", req.SubscriptionID)
	}
	cancel()
	return okResponse, nil
}

// enqueue runs on the engine loop and must not block on the network
func (wsc *wsConnection) enqueue(n JSONRPCNotification) {
	select {
	case <-wsc.closed:
	case wsc.outbox <- n:
	default:
		utils.Warn("WebSocket notification queue full, dropping notification")
	}
}

func (wsc *wsConnection) pump() {
	for {
		select {
		case <-wsc.closed:
			return
		case n := <-wsc.outbox:
			if err := wsc.sendJSON(n); err != nil {
				utils.Verbose("failed to push notification: %v", err)
			}
		}
	}
}

func (wsc *wsConnection) close() {
	wsc.subsMu.Lock()
	subscriptions := wsc.subscriptions
	wsc.subscriptions = map[string]func(){}
	wsc.subsMu.Unlock()

	for _, cancel := range subscriptions {
		cancel()
	}
	close(wsc.closed)
}

func (wsc *wsConnection) sendResponse(id interface{}, result interface{}) error {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}
	return wsc.sendJSON(response)
}

func (wsc *wsConnection) sendError(id interface{}, code int, message string, data interface{}) error {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		ID: id,
	}
	return wsc.sendJSON(response)
}

func (wsc *wsConnection) sendJSON(v interface{}) error {
	wsc.writeMu.Lock()
	defer wsc.writeMu.Unlock()
	return wsc.conn.WriteJSON(v)
}
