package model

import "time"

const MessageTableName = "messages"

// Message 单聊消息。落库后不可变，不支持编辑/删除。
// 约束：Text 与 Image 至少一个非空（写路径校验，见 service 层）。
type Message struct {
	MessageID  string    `bson:"_id" json:"id"`
	SenderID   string    `bson:"sender_id" json:"senderId"`
	ReceiverID string    `bson:"receiver_id" json:"receiverId"`
	Text       string    `bson:"text,omitempty" json:"text,omitempty"`
	Image      string    `bson:"image,omitempty" json:"image,omitempty"` // 媒体托管返回的URL
	CreateTime time.Time `bson:"create_time" json:"createdAt"`
}

func (*Message) TableName() string { return MessageTableName }
