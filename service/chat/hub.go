package chat

import (
	"ChatApp/logger"
)

// ===== hub 命令 =====

type joinReq struct {
	client *Client
	roomID string
}

type directReq struct {
	userID string
	frame  []byte
}

type roomReq struct {
	roomID string
	frame  []byte
	except string // 排除的 connID；空表示不排除
}

type lookupReq struct {
	userID string
	reply  chan string // 不在线回空串
}

// Hub 在线状态的唯一所有者：注册表（userID→connID）、房间表与反向索引
// 全部由 run 协程串行维护，外界只能通过命令通道进出。
// 任何命令处理中途不挂起，读-改-写天然原子（对应事件循环语义）。
type Hub struct {
	clients  map[string]*Client            // connID -> client（含匿名连接）
	registry map[string]string             // userID -> connID；后连接的覆盖前者
	rooms    map[string]map[string]*Client // roomID -> connID -> client
	joined   map[string]map[string]struct{} // connID -> roomID 反向索引，断开时清房间

	register   chan *Client
	unregister chan *Client
	join       chan joinReq
	direct     chan directReq
	room       chan roomReq
	all        chan []byte
	online     chan chan []string
	lookup     chan lookupReq
	stop       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		registry:   make(map[string]string),
		rooms:      make(map[string]map[string]*Client),
		joined:     make(map[string]map[string]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan joinReq),
		direct:     make(chan directReq, 1024),
		room:       make(chan roomReq, 1024),
		all:        make(chan []byte, 256),
		online:     make(chan chan []string),
		lookup:     make(chan lookupReq),
		stop:       make(chan struct{}),
	}
}

// Run 事件循环；独占所有权，直到 Stop。
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.handleRegister(c)
		case c := <-h.unregister:
			h.handleUnregister(c)
		case req := <-h.join:
			h.handleJoin(req)
		case req := <-h.direct:
			if connID, ok := h.registry[req.userID]; ok {
				if c, ok := h.clients[connID]; ok {
					c.trySend(req.frame)
				}
			}
			// 不在线：静默丢弃，不是错误
		case req := <-h.room:
			for connID, c := range h.rooms[req.roomID] {
				if req.except != "" && connID == req.except {
					continue
				}
				c.trySend(req.frame)
			}
		case frame := <-h.all:
			for _, c := range h.clients {
				c.trySend(frame)
			}
		case reply := <-h.online:
			reply <- h.onlineSnapshot()
		case req := <-h.lookup:
			req.reply <- h.registry[req.userID]
		case <-h.stop:
			return
		}
	}
}

func (h *Hub) Stop() { close(h.stop) }

// ===== 循环内部处理（只在 run 协程跑） =====

func (h *Hub) handleRegister(c *Client) {
	h.clients[c.ConnID] = c
	if c.UserID != "" {
		// 同一用户再次连接：覆盖映射，旧连接不再收直推（last-connect-wins）
		h.registry[c.UserID] = c.ConnID
	}
	h.broadcastPresence()
	logger.Infof("[Hub] register conn=%s user=%s online=%d", c.ConnID, c.UserID, len(h.registry))
}

func (h *Hub) handleUnregister(c *Client) {
	if _, ok := h.clients[c.ConnID]; !ok {
		return // 重复断开，幂等
	}
	delete(h.clients, c.ConnID)

	// 清掉该连接加入过的所有房间
	for roomID := range h.joined[c.ConnID] {
		if members := h.rooms[roomID]; members != nil {
			delete(members, c.ConnID)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	delete(h.joined, c.ConnID)

	// 守卫：仅当注册表仍指向本连接才算真正下线。
	// 被新连接顶替后的旧连接断开时不能把用户标记为离线。
	if c.UserID != "" && h.registry[c.UserID] == c.ConnID {
		delete(h.registry, c.UserID)
		h.broadcastPresence()
	}

	close(c.send)
	logger.Infof("[Hub] unregister conn=%s user=%s online=%d", c.ConnID, c.UserID, len(h.registry))
}

func (h *Hub) handleJoin(req joinReq) {
	c := req.client
	if _, ok := h.clients[c.ConnID]; !ok {
		return // 已断开的连接不入房间
	}
	if h.rooms[req.roomID] == nil {
		h.rooms[req.roomID] = make(map[string]*Client)
	}
	h.rooms[req.roomID][c.ConnID] = c
	if h.joined[c.ConnID] == nil {
		h.joined[c.ConnID] = make(map[string]struct{})
	}
	h.joined[c.ConnID][req.roomID] = struct{}{}
}

func (h *Hub) onlineSnapshot() []string {
	ids := make([]string, 0, len(h.registry))
	for userID := range h.registry {
		ids = append(ids, userID)
	}
	return ids
}

// broadcastPresence 每次在线集合变动都全量广播（不做diff/去抖）
func (h *Hub) broadcastPresence() {
	frame, err := EncodeFrame(EventOnlineUsers, h.onlineSnapshot())
	if err != nil {
		logger.Errorf("[Hub] encode presence: %v", err)
		return
	}
	for _, c := range h.clients {
		c.trySend(frame)
	}
}

// ===== 对外 API（任意协程） =====

func (h *Hub) Register(c *Client)   { h.register <- c }
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

// Join 调用方必须已经用持久化的群成员数据做过授权（见 ws 层）
func (h *Hub) Join(c *Client, roomID string) { h.join <- joinReq{client: c, roomID: roomID} }

// SendToUser 推给某用户当前注册的那一条连接；不在线静默丢弃
func (h *Hub) SendToUser(userID string, frame []byte) {
	h.direct <- directReq{userID: userID, frame: frame}
}

// SendToRoom 推给房间全部成员；exceptConnID 非空时跳过该连接
func (h *Hub) SendToRoom(roomID string, frame []byte, exceptConnID string) {
	h.room <- roomReq{roomID: roomID, frame: frame, except: exceptConnID}
}

// Broadcast 推给全部连接（含匿名）
func (h *Hub) Broadcast(frame []byte) { h.all <- frame }

// OnlineUsers 当前在线用户ID快照
func (h *Hub) OnlineUsers() []string {
	reply := make(chan []string, 1)
	h.online <- reply
	return <-reply
}

// Lookup 用户当前注册的连接ID；离线返回 ("", false)
func (h *Hub) Lookup(userID string) (string, bool) {
	reply := make(chan string, 1)
	h.lookup <- lookupReq{userID: userID, reply: reply}
	connID := <-reply
	return connID, connID != ""
}
