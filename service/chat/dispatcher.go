package chat

import (
	"ChatApp/logger"
	chatmodel "ChatApp/module/chat/model"
)

// Dispatcher 消息扇出。只接受"已经落库成功"的记录 —— 推送先于持久化是被禁止的，
// 失败的保存路径绝不能走到这里。
type Dispatcher struct {
	hub *Hub
}

func NewDispatcher(hub *Hub) *Dispatcher {
	return &Dispatcher{hub: hub}
}

// PushDirectMessage 单聊推送：只推给接收方当前注册的连接；
// 接收方离线则无动作（对方下次拉历史补齐），发送方不收回显。
func (d *Dispatcher) PushDirectMessage(m *chatmodel.Message) {
	frame, err := EncodeFrame(EventNewMessage, m)
	if err != nil {
		logger.Errorf("[Dispatcher] encode newMessage: %v", err)
		return
	}
	d.hub.SendToUser(m.ReceiverID, frame)
}

// PushGroupMessage 群聊推送：广播给房间全部连接，包含发送方自己
// （客户端按消息ID去重自己的乐观渲染）。
func (d *Dispatcher) PushGroupMessage(m *chatmodel.GroupMessage) {
	frame, err := EncodeFrame(EventNewGroupMessage, m)
	if err != nil {
		logger.Errorf("[Dispatcher] encode newGroupMessage: %v", err)
		return
	}
	d.hub.SendToRoom(m.GroupID, frame, "")
}

// RelayTyping typing/stopTyping 转发。fire-and-forget：
// 单聊目标离线、群房间为空都静默丢弃，绝不算错误。
// 群目标时排除发送方自己的连接（socket.to 语义）。
func (d *Dispatcher) RelayTyping(event string, p TypingPayload, senderConnID string) {
	out := TypingPayload{SenderID: p.SenderID}
	frame, err := EncodeFrame(event, out)
	if err != nil {
		logger.Errorf("[Dispatcher] encode %s: %v", event, err)
		return
	}
	if p.ReceiverID != "" {
		d.hub.SendToUser(p.ReceiverID, frame)
		return
	}
	d.hub.SendToRoom(p.GroupID, frame, senderConnID)
}
