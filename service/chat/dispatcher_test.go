package chat

import (
	"encoding/json"
	"testing"
	"time"

	chatmodel "ChatApp/module/chat/model"
)

func TestPushDirectMessageOnlyReceiver(t *testing.T) {
	h := newTestHub(t)
	d := NewDispatcher(h)

	sender := newTestClient("c-s", "alice")
	receiver := newTestClient("c-r", "bob")
	h.Register(sender)
	h.Register(receiver)
	drainEvents(sender)
	drainEvents(receiver)

	d.PushDirectMessage(&chatmodel.Message{
		MessageID:  "m1",
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       "hi",
	})

	f := recvEvent(t, receiver, EventNewMessage, time.Second)
	var got chatmodel.Message
	if err := json.Unmarshal(f.Data, &got); err != nil {
		t.Fatalf("unmarshal message: %v", err)
	}
	if got.MessageID != "m1" || got.SenderID != "alice" {
		t.Fatalf("wrong message payload: %+v", got)
	}

	// 发送方没有回显
	assertNoEvent(t, sender, EventNewMessage)
}

func TestPushDirectMessageOfflineReceiver(t *testing.T) {
	h := newTestHub(t)
	d := NewDispatcher(h)

	sender := newTestClient("c-s", "alice")
	h.Register(sender)
	drainEvents(sender)

	// 接收方不在线：静默丢弃
	d.PushDirectMessage(&chatmodel.Message{MessageID: "m1", SenderID: "alice", ReceiverID: "bob"})
	assertNoEvent(t, sender, EventNewMessage)
}

func TestPushGroupMessageIncludesSender(t *testing.T) {
	h := newTestHub(t)
	d := NewDispatcher(h)

	a := newTestClient("c1", "alice")
	b := newTestClient("c2", "bob")
	h.Register(a)
	h.Register(b)
	h.Join(a, "g1")
	h.Join(b, "g1")
	drainEvents(a)
	drainEvents(b)

	d.PushGroupMessage(&chatmodel.GroupMessage{
		MessageID: "gm1",
		GroupID:   "g1",
		SenderID:  "alice",
		Text:      "hey all",
	})

	// 群消息广播包含发送方自己
	recvEvent(t, a, EventNewGroupMessage, time.Second)
	recvEvent(t, b, EventNewGroupMessage, time.Second)
}

func TestRelayTypingDirect(t *testing.T) {
	h := newTestHub(t)
	d := NewDispatcher(h)

	a := newTestClient("c1", "alice")
	b := newTestClient("c2", "bob")
	c := newTestClient("c3", "carol")
	h.Register(a)
	h.Register(b)
	h.Register(c)
	drainEvents(a)
	drainEvents(b)
	drainEvents(c)

	d.RelayTyping(EventTyping, TypingPayload{SenderID: "alice", ReceiverID: "bob"}, "c1")

	f := recvEvent(t, b, EventTyping, time.Second)
	var p TypingPayload
	if err := json.Unmarshal(f.Data, &p); err != nil {
		t.Fatalf("unmarshal typing: %v", err)
	}
	if p.SenderID != "alice" {
		t.Fatalf("want senderId=alice, got %+v", p)
	}
	// 出站载荷不回带目标字段
	if p.ReceiverID != "" || p.GroupID != "" {
		t.Fatalf("outbound payload must only carry senderId: %+v", p)
	}

	assertNoEvent(t, a, EventTyping)
	assertNoEvent(t, c, EventTyping)
}

func TestRelayTypingGroupExcludesSenderConn(t *testing.T) {
	h := newTestHub(t)
	d := NewDispatcher(h)

	a := newTestClient("c1", "alice")
	b := newTestClient("c2", "bob")
	h.Register(a)
	h.Register(b)
	h.Join(a, "g1")
	h.Join(b, "g1")
	drainEvents(a)
	drainEvents(b)

	d.RelayTyping(EventTyping, TypingPayload{SenderID: "alice", GroupID: "g1"}, "c1")
	recvEvent(t, b, EventTyping, time.Second)
	assertNoEvent(t, a, EventTyping)

	// stopTyping 走同一条路
	d.RelayTyping(EventStopTyping, TypingPayload{SenderID: "alice", GroupID: "g1"}, "c1")
	recvEvent(t, b, EventStopTyping, time.Second)
	assertNoEvent(t, a, EventStopTyping)
}
