package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/matchpoint-app/matchpoint/brackets"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict Origin to the deployed frontend hosts.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub *brackets.Hub
}

func NewWebSocketHandler(hub *brackets.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWs subscribes the connection to an event's update room. The stream is
// push-only: MATCH_UPDATED, MATCH_FINISHED and BRACKET_UPDATED messages.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	eventID, err := getStringParam(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		log.Printf("failed to upgrade connection for event %s: %v", eventID, err)
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: "event_" + eventID,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
