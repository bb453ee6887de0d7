package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Siilah/initializers"
	"github.com/Siilah/models"
	"github.com/Siilah/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The mobile web client is served from a different origin; auth is the bearer token.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamCircle upgrades to a websocket and pushes the circle's live events
// until the client disconnects.
func StreamCircle(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)
	circleID := c.Param("circle_id")

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}
	if _, err := sanctuary.GetCircle(currentUser.User_ID, circleID); err != nil {
		respondWithError(c, "Failed to open live feed", err)
		return
	}

	hub := services.GetRealtimeHub()
	if hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live updates not available"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		initializers.Log.Debugw("websocket upgrade failed", "circleId", circleID, "error", err)
		return
	}

	hub.Serve(conn, circleID)
}
