package chat

import (
	"encoding/json"
	"testing"
	"time"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	go h.Run()
	t.Cleanup(h.Stop)
	return h
}

func newTestClient(connID, userID string) *Client {
	return NewClient(connID, userID, nil)
}

// recvEvent 从连接的发送缓冲里捞出第一帧指定事件，超时判失败
func recvEvent(t *testing.T, c *Client, event string, timeout time.Duration) *Frame {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case raw, ok := <-c.send:
			if !ok {
				t.Fatalf("send channel closed while waiting for %q", event)
			}
			f, err := ParseFrame(raw)
			if err != nil {
				t.Fatalf("bad frame: %v", err)
			}
			if f.Event == event {
				return f
			}
		case <-deadline:
			t.Fatalf("no %q frame within %v", event, timeout)
		}
	}
}

// drainEvents 丢掉缓冲里已有的帧（例如注册时的在线广播）
func drainEvents(c *Client) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}

func assertNoEvent(t *testing.T, c *Client, event string) {
	t.Helper()
	time.Sleep(50 * time.Millisecond)
	for {
		select {
		case raw, ok := <-c.send:
			if !ok {
				return
			}
			f, err := ParseFrame(raw)
			if err != nil {
				t.Fatalf("bad frame: %v", err)
			}
			if f.Event == event {
				t.Fatalf("unexpected %q frame: %s", event, f.Data)
			}
		default:
			return
		}
	}
}

func onlineSet(t *testing.T, h *Hub) map[string]bool {
	t.Helper()
	set := make(map[string]bool)
	for _, id := range h.OnlineUsers() {
		set[id] = true
	}
	return set
}

func TestRegisterBroadcastsPresence(t *testing.T) {
	h := newTestHub(t)

	a := newTestClient("c1", "u1")
	h.Register(a)

	f := recvEvent(t, a, EventOnlineUsers, time.Second)
	var users []string
	if err := json.Unmarshal(f.Data, &users); err != nil {
		t.Fatalf("unmarshal online users: %v", err)
	}
	if len(users) != 1 || users[0] != "u1" {
		t.Fatalf("want [u1], got %v", users)
	}

	b := newTestClient("c2", "u2")
	h.Register(b)

	// 第二个用户上线后双方都收到全量名单
	f = recvEvent(t, a, EventOnlineUsers, time.Second)
	if err := json.Unmarshal(f.Data, &users); err != nil {
		t.Fatalf("unmarshal online users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("want 2 online users, got %v", users)
	}

	set := onlineSet(t, h)
	if !set["u1"] || !set["u2"] {
		t.Fatalf("online set wrong: %v", set)
	}
}

func TestAnonymousReceivesBroadcastsButNotRegistered(t *testing.T) {
	h := newTestHub(t)

	anon := newTestClient("c-anon", "")
	h.Register(anon)
	recvEvent(t, anon, EventOnlineUsers, time.Second)

	if len(h.OnlineUsers()) != 0 {
		t.Fatalf("anonymous conn must not enter registry")
	}

	u := newTestClient("c1", "u1")
	h.Register(u)
	// 匿名连接也收在线广播
	recvEvent(t, anon, EventOnlineUsers, time.Second)
}

func TestLastConnectWins(t *testing.T) {
	h := newTestHub(t)

	old := newTestClient("c-old", "u1")
	h.Register(old)
	fresh := newTestClient("c-new", "u1")
	h.Register(fresh)

	if connID, ok := h.Lookup("u1"); !ok || connID != "c-new" {
		t.Fatalf("registry should point at c-new, got %q ok=%v", connID, ok)
	}

	drainEvents(old)
	drainEvents(fresh)

	frame, _ := EncodeFrame(EventNewMessage, map[string]string{"text": "hi"})
	h.SendToUser("u1", frame)

	recvEvent(t, fresh, EventNewMessage, time.Second)
	assertNoEvent(t, old, EventNewMessage)
}

func TestStaleDisconnectKeepsUserOnline(t *testing.T) {
	h := newTestHub(t)

	old := newTestClient("c-old", "u1")
	h.Register(old)
	fresh := newTestClient("c-new", "u1")
	h.Register(fresh)

	// 旧连接断开不能把已被顶替的用户标记为离线
	h.Unregister(old)

	set := onlineSet(t, h)
	if !set["u1"] {
		t.Fatalf("u1 must stay online after stale disconnect")
	}
	if connID, ok := h.Lookup("u1"); !ok || connID != "c-new" {
		t.Fatalf("registry must still point at c-new, got %q", connID)
	}

	// 当前连接断开才真正下线
	h.Unregister(fresh)
	if set := onlineSet(t, h); set["u1"] {
		t.Fatalf("u1 must be offline after current conn disconnects")
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	h := newTestHub(t)

	c := newTestClient("c1", "u1")
	h.Register(c)
	h.Unregister(c)
	h.Unregister(c) // 二次断开不得 panic、不得重复广播

	if len(h.OnlineUsers()) != 0 {
		t.Fatalf("u1 should be offline")
	}
}

func TestDirectToOfflineIsDropped(t *testing.T) {
	h := newTestHub(t)

	frame, _ := EncodeFrame(EventNewMessage, map[string]string{"text": "hi"})
	h.SendToUser("nobody", frame) // 不在线：无动作也无错误

	if _, ok := h.Lookup("nobody"); ok {
		t.Fatalf("nobody should not be online")
	}
}

func TestRoomBroadcastAndExclusion(t *testing.T) {
	h := newTestHub(t)

	a := newTestClient("c1", "u1")
	b := newTestClient("c2", "u2")
	c := newTestClient("c3", "u3")
	h.Register(a)
	h.Register(b)
	h.Register(c)

	h.Join(a, "g1")
	h.Join(b, "g1")
	// c 不进房间

	drainEvents(a)
	drainEvents(b)
	drainEvents(c)

	frame, _ := EncodeFrame(EventNewGroupMessage, map[string]string{"text": "hey"})
	h.SendToRoom("g1", frame, "")

	recvEvent(t, a, EventNewGroupMessage, time.Second)
	recvEvent(t, b, EventNewGroupMessage, time.Second)
	assertNoEvent(t, c, EventNewGroupMessage)

	drainEvents(a)
	drainEvents(b)

	// 排除发送方连接（typing 语义）
	typing, _ := EncodeFrame(EventTyping, TypingPayload{SenderID: "u1"})
	h.SendToRoom("g1", typing, "c1")

	recvEvent(t, b, EventTyping, time.Second)
	assertNoEvent(t, a, EventTyping)
}

func TestDisconnectCleansRoomMembership(t *testing.T) {
	h := newTestHub(t)

	a := newTestClient("c1", "u1")
	b := newTestClient("c2", "u2")
	h.Register(a)
	h.Register(b)
	h.Join(a, "g1")
	h.Join(b, "g1")

	h.Unregister(a)
	drainEvents(b)

	frame, _ := EncodeFrame(EventNewGroupMessage, map[string]string{"text": "after"})
	h.SendToRoom("g1", frame, "")

	recvEvent(t, b, EventNewGroupMessage, time.Second)

	// a 已断开：不能再收到任何房间消息（send 已被关闭且缓冲清空语义上不可达）
	select {
	case raw, ok := <-a.send:
		if ok {
			t.Fatalf("disconnected conn received frame: %s", raw)
		}
	default:
	}
}

func TestJoinAfterDisconnectIgnored(t *testing.T) {
	h := newTestHub(t)

	a := newTestClient("c1", "u1")
	b := newTestClient("c2", "u2")
	h.Register(a)
	h.Register(b)
	h.Unregister(a)

	h.Join(a, "g1")
	h.Join(b, "g1")
	drainEvents(b)

	frame, _ := EncodeFrame(EventNewGroupMessage, nil)
	h.SendToRoom("g1", frame, "")
	recvEvent(t, b, EventNewGroupMessage, time.Second)
}

func TestJoinIsIdempotent(t *testing.T) {
	h := newTestHub(t)

	a := newTestClient("c1", "u1")
	h.Register(a)
	h.Join(a, "g1")
	h.Join(a, "g1")
	drainEvents(a)

	frame, _ := EncodeFrame(EventNewGroupMessage, map[string]string{"n": "1"})
	h.SendToRoom("g1", frame, "")

	recvEvent(t, a, EventNewGroupMessage, time.Second)
	// 重复加入不能导致重复投递
	assertNoEvent(t, a, EventNewGroupMessage)
}
