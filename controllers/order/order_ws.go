package orderControllers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	eventOrderPlaced        = "order.placed"
	eventOrderCancelled     = "order.cancelled"
	eventOrderStatusUpdated = "order.status_updated"
)

type orderEvent struct {
	Type  string        `json:"type"`
	Order OrderResponse `json:"order"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var (
	wsMu      sync.Mutex
	wsClients = make(map[*websocket.Conn]bool)
)

// OrderFeedHandler upgrades the connection and streams order events until
// the client goes away. The read loop exists only to detect disconnects.
func OrderFeedHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		wsMu.Lock()
		wsClients[conn] = true
		wsMu.Unlock()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wsMu.Lock()
				delete(wsClients, conn)
				wsMu.Unlock()
				break
			}
		}
	}
}

func broadcastOrderEvent(evt orderEvent) {
	wsMu.Lock()
	defer wsMu.Unlock()
	for client := range wsClients {
		if err := client.WriteJSON(evt); err != nil {
			client.Close()
			delete(wsClients, client)
		}
	}
}
