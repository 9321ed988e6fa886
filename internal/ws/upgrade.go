package ws

import (
	"net/http"
	"time"

	"tablepick/internal/repository"

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

// UpgradeLobbyWS attaches a connection to a group lobby. There is no
// session system; the caller identifies itself with its user id and
// must already be a member of the group.
func UpgradeLobbyWS(hub *LobbyHub, groups *repository.GroupRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID := c.Query("group_id")
		userID := c.Query("user_id")
		if groupID == "" || userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "group_id and user_id required"})
			return
		}
		member, err := groups.IsMember(groupID, userID)
		if err != nil || !member {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this group"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		client := &Client{
			UserID:  userID,
			GroupID: groupID,
			Send:    make(chan []byte, 256),
		}
		hub.Register(client)
		defer client.Close()
		go writePump(client, conn)
		readPump(conn)
	}
}

func writePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func readPump(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
