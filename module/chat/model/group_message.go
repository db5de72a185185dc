package model

import "time"

const GroupMessageTableName = "group_messages"

// GroupMessage 群聊消息，约束与单聊一致：Text/Image 至少一个非空。
type GroupMessage struct {
	MessageID  string    `bson:"_id" json:"id"`
	GroupID    string    `bson:"group_id" json:"groupId"`
	SenderID   string    `bson:"sender_id" json:"senderId"`
	Text       string    `bson:"text,omitempty" json:"text,omitempty"`
	Image      string    `bson:"image,omitempty" json:"image,omitempty"`
	CreateTime time.Time `bson:"create_time" json:"createdAt"`
}

func (*GroupMessage) TableName() string { return GroupMessageTableName }
