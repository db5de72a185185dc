package model

import "time"

const UserTableName = "users"

// User 用户档案。资料编辑不在本服务范围内，这里只存聊天展示需要的字段。
type User struct {
	UserID       string    `bson:"_id" json:"id"`
	FullName     string    `bson:"full_name" json:"fullName"`
	Email        string    `bson:"email" json:"email"` // 唯一键
	PasswordHash string    `bson:"password_hash" json:"-"`
	ProfilePic   string    `bson:"profile_pic" json:"profilePic"` // 头像URL
	CreateTime   time.Time `bson:"create_time" json:"createdAt"`
	UpdateTime   time.Time `bson:"update_time" json:"updatedAt"`
}

func (*User) TableName() string { return UserTableName }
