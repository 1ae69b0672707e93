package handlers

import (
	"log"
	"net/http"

	"belajarbahasa/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FeedHandler streams newly stored answers of one user over WebSocket.
type FeedHandler struct {
	hub *services.Hub
}

func NewFeedHandler(hub *services.Hub) *FeedHandler {
	return &FeedHandler{
		hub: hub,
	}
}

func (h *FeedHandler) Subscribe(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		respondError(c, http.StatusBadRequest, "User ID required")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		log.Printf("WebSocket upgrade failed for user %s: %v", userID, err)
		return
	}

	h.hub.RegisterClient(conn, userID)
}
