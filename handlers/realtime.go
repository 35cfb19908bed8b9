// handlers/realtime.go - Websocket change feed
package handlers

import (
	"log"
	"time"

	"lanarena/realtime"
	"lanarena/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// RequireUpgrade rejects plain HTTP requests on websocket routes.
func RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// RequireKnownTable rejects feeds for tables the server does not publish.
func RequireKnownTable(c *fiber.Ctx) error {
	if table := c.Params("table"); table == realtime.AllTables || realtime.KnownTable(table) {
		return c.Next()
	}
	return utils.JSONError(c, fiber.StatusNotFound, "Unknown table")
}

// AdminChangeFeed streams every change of one table (or "*")
// GET /ws/admin/:table
func AdminChangeFeed(c *websocket.Conn) {
	streamChanges(c, c.Params("table"))
}

// NotificationFeed streams notification changes to the public bell
// GET /ws/notifications
func NotificationFeed(c *websocket.Conn) {
	streamChanges(c, realtime.TableNotifications)
}

func streamChanges(c *websocket.Conn, table string) {
	sub := broker.Subscribe(table)
	defer sub.Close()

	// the reader only drains control frames and notices the close
	closed := make(chan struct{})
	c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case ev, ok := <-sub.C:
			if !ok {
				c.SetWriteDeadline(time.Now().Add(writeWait))
				c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteJSON(ev); err != nil {
				log.Printf("⚠️ realtime feed %s: write failed: %v", table, err)
				return
			}
		case <-ticker.C:
			c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
