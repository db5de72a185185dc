package model

import "time"

const GroupTableName = "groups"

// Group 群元数据。持久化的 MemberIDs 是"谁可以订阅该群房间"的唯一权威，
// 实时层（rooms）只做广播，不做成员校验。
type Group struct {
	GroupID     string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"` // 唯一键
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	AdminID     string    `bson:"admin_id" json:"admin"`      // 建群人；始终在 MemberIDs 内
	MemberIDs   []string  `bson:"member_ids" json:"members"`  // 去重后的成员ID集合
	ProfilePic  string    `bson:"profile_pic" json:"profilePic"`
	CreateTime  time.Time `bson:"create_time" json:"createdAt"`
	UpdateTime  time.Time `bson:"update_time" json:"updatedAt"`
}

func (*Group) TableName() string { return GroupTableName }

// HasMember 判断 userID 是否为群成员
func (g *Group) HasMember(userID string) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
