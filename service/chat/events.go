package chat

import (
	"encoding/json"

	errs "ChatApp/tools/errs"
)

// ===== 事件名 =====
//
// 与前端约定的 socket 事件；名字就是线上协议的一部分，不要改。
const (
	EventOnlineUsers     = "getOnlineUsers"  // 服务端→全体：在线用户ID列表（全量快照）
	EventNewMessage      = "newMessage"      // 服务端→单个：新单聊消息
	EventNewGroupMessage = "newGroupMessage" // 服务端→房间：新群聊消息
	EventTyping          = "typing"          // 双向：输入中
	EventStopTyping      = "stopTyping"      // 双向：停止输入
	EventJoinGroup       = "joinGroup"       // 客户端→服务端：订阅群房间
)

// Frame 统一的 JSON 信封 {event, data}
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func ParseFrame(raw []byte) (*Frame, error) {
	f := &Frame{}
	if err := json.Unmarshal(raw, f); err != nil {
		return nil, errs.WrapMsg(err, "unmarshal frame failed")
	}
	if f.Event == "" {
		return nil, errs.New("frame event empty")
	}
	return f, nil
}

// EncodeFrame 组包。payload 为 nil 时 data 省略。
func EncodeFrame(event string, payload any) ([]byte, error) {
	f := Frame{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errs.WrapMsg(err, "marshal payload failed", "event", event)
		}
		f.Data = data
	}
	return json.Marshal(f)
}

// TypingPayload typing/stopTyping 的载荷。
// 入站：ReceiverID/GroupID 二选一指明目标；出站：只带 SenderID。
type TypingPayload struct {
	SenderID   string `json:"senderId,omitempty"`
	ReceiverID string `json:"receiverId,omitempty"`
	GroupID    string `json:"groupId,omitempty"`
}

// Validate 目标必须二选一
func (p *TypingPayload) Validate() error {
	if (p.ReceiverID == "") == (p.GroupID == "") {
		return errs.ErrArgs.WrapMsg("exactly one of receiverId/groupId required")
	}
	return nil
}

// JoinGroupPayload joinGroup 的载荷；兼容裸字符串形式（前端直接 emit 群ID）
type JoinGroupPayload struct {
	GroupID string `json:"groupId"`
}

func ParseJoinGroup(data json.RawMessage) (string, error) {
	if len(data) == 0 {
		return "", errs.ErrArgs.WrapMsg("groupId required")
	}
	// 裸字符串："g1"
	var s string
	if err := json.Unmarshal(data, &s); err == nil && s != "" {
		return s, nil
	}
	var p JoinGroupPayload
	if err := json.Unmarshal(data, &p); err != nil || p.GroupID == "" {
		return "", errs.ErrArgs.WrapMsg("groupId required")
	}
	return p.GroupID, nil
}
