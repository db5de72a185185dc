package chat

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/mongo"

	"ChatApp/logger"
	chatservice "ChatApp/module/chat/service"
	userservice "ChatApp/module/user/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server WebSocket 接入层：握手、读循环、连接状态机。
// 连接的生命周期：Connecting（升级完成）→ Connected（注册进 hub）→ Disconnected。
// 断开永远走同一条收尾路径：hub.Unregister 做守卫下线 + 房间清理 + 在线广播。
type Server struct {
	hub  *Hub
	disp *Dispatcher
	db   *mongo.Database
}

func NewServer(hub *Hub, disp *Dispatcher, db *mongo.Database) *Server {
	return &Server{hub: hub, disp: disp, db: db}
}

func (s *Server) Hub() *Hub         { return s.hub }
func (s *Server) Disp() *Dispatcher { return s.disp }

// HandleWS GET /ws?userId=xxx
// userId 缺失或查无此人时按匿名连接处理：收得到广播，但不进注册表、不能进房间。
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[WS] upgrade error: %v", err)
		return
	}

	userID := c.Query("userId")
	if userID != "" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		ok, err := userservice.Exists(ctx, s.db, userID)
		cancel()
		if err != nil || !ok {
			logger.Warnf("[WS] unknown userId=%s, treat as anonymous err=%v", userID, err)
			userID = ""
		}
	}

	client := NewClient(uuid.NewString(), userID, ws)
	s.hub.Register(client)
	go client.writePump()

	s.readLoop(client, ws)

	// 读循环退出即视为断开；守卫下线 + 房间清理 + 在线广播都在 hub 内完成
	s.hub.Unregister(client)
}

func (s *Server) readLoop(client *Client, ws *websocket.Conn) {
	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[WS] peer closed conn=%s err=%v", client.ConnID, rerr)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[WS] read timeout conn=%s err=%v", client.ConnID, rerr)
			} else {
				logger.Infof("[WS] read err conn=%s err=%v", client.ConnID, rerr)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		frame, perr := ParseFrame(data)
		if perr != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Warnf("[WS] ParseFrame err conn=%s err=%v sample=%q", client.ConnID, perr, sample)
			continue
		}

		s.handleFrame(client, frame)
	}
}

// handleFrame 入站事件分发。坏载荷只打日志丢弃，不断连接。
func (s *Server) handleFrame(client *Client, frame *Frame) {
	switch frame.Event {
	case EventJoinGroup:
		s.handleJoinGroup(client, frame)
	case EventTyping, EventStopTyping:
		s.handleTyping(client, frame)
	default:
		logger.Infof("[WS] no handler for event=%s conn=%s", frame.Event, client.ConnID)
	}
}

// handleJoinGroup 订阅群房间。授权以持久化的群成员为准，在进 hub 之前完成；
// hub.Join 本身不做任何校验。
func (s *Server) handleJoinGroup(client *Client, frame *Frame) {
	if client.UserID == "" {
		logger.Warnf("[WS] anonymous conn=%s cannot join group", client.ConnID)
		return
	}
	groupID, err := ParseJoinGroup(frame.Data)
	if err != nil {
		logger.Warnf("[WS] joinGroup bad payload conn=%s err=%v", client.ConnID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	members, err := chatservice.Membership(ctx, s.db, groupID)
	cancel()
	if err != nil {
		logger.Warnf("[WS] joinGroup membership lookup failed group=%s err=%v", groupID, err)
		return
	}
	if _, ok := members[client.UserID]; !ok {
		logger.Warnf("[WS] joinGroup denied user=%s group=%s", client.UserID, groupID)
		return
	}

	s.hub.Join(client, groupID)
	logger.Infof("[WS] joinGroup user=%s group=%s conn=%s", client.UserID, groupID, client.ConnID)
}

func (s *Server) handleTyping(client *Client, frame *Frame) {
	if client.UserID == "" {
		return
	}
	var p TypingPayload
	if len(frame.Data) > 0 {
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			logger.Warnf("[WS] %s bad payload conn=%s err=%v", frame.Event, client.ConnID, err)
			return
		}
	}
	p.SenderID = client.UserID
	if err := p.Validate(); err != nil {
		logger.Warnf("[WS] %s invalid target conn=%s err=%v", frame.Event, client.ConnID, err)
		return
	}
	s.disp.RelayTyping(frame.Event, p, client.ConnID)
}
