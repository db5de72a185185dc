package chat

import (
	"time"

	"github.com/gorilla/websocket"

	"ChatApp/logger"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 1 << 20 // 1MB
	sendBufSize    = 256
)

// Client 一条活跃的 WebSocket 连接。
// ConnID 连接期内唯一；UserID 为空表示匿名连接（不进注册表、不能进房间）。
// send 只由 hub 协程写入与关闭，写协程只读，避免并发写 socket。
type Client struct {
	ConnID string
	UserID string

	conn *websocket.Conn
	send chan []byte
}

func NewClient(connID, userID string, conn *websocket.Conn) *Client {
	return &Client{
		ConnID: connID,
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufSize),
	}
}

// trySend 非阻塞投递；缓冲满直接丢（best-effort，绝不拖住 hub 循环）。
// 只允许 hub 协程调用。
func (c *Client) trySend(frame []byte) {
	select {
	case c.send <- frame:
	default:
		logger.Warnf("[WS] send buffer full, drop frame conn=%s user=%s", c.ConnID, c.UserID)
	}
}

// writePump 连接独占的写协程：串行写 + 心跳。
// send 被 hub 关闭后发 CloseMessage 退出。
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Infof("[WS] write err conn=%s err=%v", c.ConnID, err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
