package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	chatmodel "ChatApp/module/chat/model"
	errs "ChatApp/tools/errs"
	ids "ChatApp/tools/ids"
)

func groupColl(db *mongo.Database) *mongo.Collection {
	return db.Collection(chatmodel.GroupTableName)
}

func groupMsgColl(db *mongo.Database) *mongo.Collection {
	return db.Collection(chatmodel.GroupMessageTableName)
}

// EnsureGroupIndexes 群名唯一索引
func EnsureGroupIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := groupColl(db).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errs.Wrap(err)
	}
	// 群消息按 group_id + create_time 查询
	_, err = groupMsgColl(db).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "create_time", Value: 1}},
	})
	return errs.Wrap(err)
}

type CreateGroupParams struct {
	Name        string
	Description string
	AdminID     string
	MemberIDs   []string
	ProfilePic  string // 已上传完成的URL
}

// CreateGroup 建群。admin 永远是成员；成员列表去重。
func CreateGroup(ctx context.Context, db *mongo.Database, p CreateGroupParams) (*chatmodel.Group, error) {
	if p.Name == "" || p.AdminID == "" {
		return nil, errs.ErrArgs.WrapMsg("name/admin required")
	}

	seen := map[string]struct{}{p.AdminID: {}}
	members := []string{p.AdminID}
	for _, id := range p.MemberIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}

	now := time.Now()
	g := &chatmodel.Group{
		GroupID:     ids.GenerateString(),
		Name:        p.Name,
		Description: p.Description,
		AdminID:     p.AdminID,
		MemberIDs:   members,
		ProfilePic:  p.ProfilePic,
		CreateTime:  now,
		UpdateTime:  now,
	}
	if _, err := groupColl(db).InsertOne(ctx, g); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errs.ErrDuplicate.WrapMsg("group name taken", "name", p.Name)
		}
		return nil, errs.ErrDatabase.WrapMsg(err.Error())
	}
	return g, nil
}

// GetGroup 不存在返回 ErrRecordNotFound
func GetGroup(ctx context.Context, db *mongo.Database, groupID string) (*chatmodel.Group, error) {
	var g chatmodel.Group
	err := groupColl(db).FindOne(ctx, bson.M{"_id": groupID}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrRecordNotFound.WrapMsg("group not found", "group_id", groupID)
	}
	if err != nil {
		return nil, errs.ErrDatabase.WrapMsg(err.Error())
	}
	return &g, nil
}

// MyGroups 我所在的群
func MyGroups(ctx context.Context, db *mongo.Database, userID string) ([]*chatmodel.Group, error) {
	return findGroups(ctx, db, bson.M{"member_ids": userID})
}

// AllGroups 全部群
func AllGroups(ctx context.Context, db *mongo.Database) ([]*chatmodel.Group, error) {
	return findGroups(ctx, db, bson.M{})
}

func findGroups(ctx context.Context, db *mongo.Database, filter bson.M) ([]*chatmodel.Group, error) {
	cur, err := groupColl(db).Find(ctx, filter)
	if err != nil {
		return nil, errs.ErrDatabase.WrapMsg(err.Error())
	}
	defer func() { _ = cur.Close(ctx) }()

	groups := make([]*chatmodel.Group, 0)
	if err := cur.All(ctx, &groups); err != nil {
		return nil, errs.ErrDatabase.WrapMsg(err.Error())
	}
	return groups, nil
}

// RenameGroup 改名
func RenameGroup(ctx context.Context, db *mongo.Database, groupID, newName string) (*chatmodel.Group, error) {
	if groupID == "" || newName == "" {
		return nil, errs.ErrArgs.WrapMsg("groupId/newName required")
	}
	return updateGroup(ctx, db, groupID, bson.M{"name": newName})
}

// UpdateGroupDescription 更新群描述（允许清空）
func UpdateGroupDescription(ctx context.Context, db *mongo.Database, groupID, description string) (*chatmodel.Group, error) {
	if groupID == "" {
		return nil, errs.ErrArgs.WrapMsg("groupId required")
	}
	return updateGroup(ctx, db, groupID, bson.M{"description": description})
}

// UpdateGroupProfile 更新群头像（URL已上传完成）
func UpdateGroupProfile(ctx context.Context, db *mongo.Database, groupID, profilePicURL string) (*chatmodel.Group, error) {
	if groupID == "" {
		return nil, errs.ErrArgs.WrapMsg("groupId required")
	}
	return updateGroup(ctx, db, groupID, bson.M{"profile_pic": profilePicURL})
}

func updateGroup(ctx context.Context, db *mongo.Database, groupID string, set bson.M) (*chatmodel.Group, error) {
	set["update_time"] = time.Now()
	var g chatmodel.Group
	err := groupColl(db).FindOneAndUpdate(ctx,
		bson.M{"_id": groupID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrRecordNotFound.WrapMsg("group not found", "group_id", groupID)
	}
	if err != nil {
		return nil, errs.ErrDatabase.WrapMsg(err.Error())
	}
	return &g, nil
}

// AddUserToGroup 拉人。重复拉同一个人是参数错误。
func AddUserToGroup(ctx context.Context, db *mongo.Database, groupID, userID string) (*chatmodel.Group, error) {
	if groupID == "" || userID == "" {
		return nil, errs.ErrArgs.WrapMsg("groupId/userId required")
	}
	g, err := GetGroup(ctx, db, groupID)
	if err != nil {
		return nil, err
	}
	if g.HasMember(userID) {
		return nil, errs.ErrDuplicate.WrapMsg("user already in group", "user_id", userID)
	}
	return updateGroup(ctx, db, groupID, bson.M{
		"member_ids": append(g.MemberIDs, userID),
	})
}

// RemoveUserFromGroup 踢人。不在群里是参数错误。
func RemoveUserFromGroup(ctx context.Context, db *mongo.Database, groupID, userID string) (*chatmodel.Group, error) {
	if groupID == "" || userID == "" {
		return nil, errs.ErrArgs.WrapMsg("groupId/userId required")
	}
	g, err := GetGroup(ctx, db, groupID)
	if err != nil {
		return nil, err
	}
	if !g.HasMember(userID) {
		return nil, errs.ErrArgs.WrapMsg("user not in group", "user_id", userID)
	}
	return updateGroup(ctx, db, groupID, bson.M{"member_ids": withoutMember(g.MemberIDs, userID)})
}

// LeaveGroup 主动退群。管理员不能退，只能解散（见 DeleteGroup）。
func LeaveGroup(ctx context.Context, db *mongo.Database, groupID, userID string) (*chatmodel.Group, error) {
	if groupID == "" || userID == "" {
		return nil, errs.ErrArgs.WrapMsg("groupId/userId required")
	}
	g, err := GetGroup(ctx, db, groupID)
	if err != nil {
		return nil, err
	}
	if g.AdminID == userID {
		return nil, errs.ErrArgs.WrapMsg("admin cannot leave, delete the group instead", "group_id", groupID)
	}
	if !g.HasMember(userID) {
		return nil, errs.ErrArgs.WrapMsg("user not in group", "user_id", userID)
	}
	return updateGroup(ctx, db, groupID, bson.M{"member_ids": withoutMember(g.MemberIDs, userID)})
}

// DeleteGroup 解散群，级联删除群消息。仅管理员可操作。
func DeleteGroup(ctx context.Context, db *mongo.Database, groupID, callerID string) error {
	if groupID == "" || callerID == "" {
		return errs.ErrArgs.WrapMsg("groupId/callerId required")
	}
	g, err := GetGroup(ctx, db, groupID)
	if err != nil {
		return err
	}
	if g.AdminID != callerID {
		return errs.ErrArgs.WrapMsg("only the group admin can delete the group", "group_id", groupID)
	}
	if _, err := groupColl(db).DeleteOne(ctx, bson.M{"_id": groupID}); err != nil {
		return errs.ErrDatabase.WrapMsg(err.Error())
	}
	// 群没了历史也没意义，一并清掉
	if _, err := groupMsgColl(db).DeleteMany(ctx, bson.M{"group_id": groupID}); err != nil {
		return errs.ErrDatabase.WrapMsg(err.Error())
	}
	return nil
}

// withoutMember 返回去掉 userID 后的成员列表，保持原有顺序
func withoutMember(memberIDs []string, userID string) []string {
	out := make([]string, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id != userID {
			out = append(out, id)
		}
	}
	return out
}

// Membership joinGroup 授权入口：返回群成员集合。
// 实时层不自己查库，必须先过这里（见 ws 层 joinGroup 处理）。
func Membership(ctx context.Context, db *mongo.Database, groupID string) (map[string]struct{}, error) {
	g, err := GetGroup(ctx, db, groupID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(g.MemberIDs))
	for _, id := range g.MemberIDs {
		set[id] = struct{}{}
	}
	return set, nil
}

// SaveGroupMessage 持久化群消息。群必须存在；内容校验与单聊一致。
func SaveGroupMessage(ctx context.Context, db *mongo.Database, groupID, senderID, text, imageURL string) (*chatmodel.GroupMessage, error) {
	if groupID == "" || senderID == "" {
		return nil, errs.ErrArgs.WrapMsg("groupId/senderId required")
	}
	if err := ValidateContent(text, imageURL); err != nil {
		return nil, err
	}
	if _, err := GetGroup(ctx, db, groupID); err != nil {
		return nil, err
	}

	m := &chatmodel.GroupMessage{
		MessageID:  ids.GenerateString(),
		GroupID:    groupID,
		SenderID:   senderID,
		Text:       text,
		Image:      imageURL,
		CreateTime: time.Now(),
	}
	if _, err := groupMsgColl(db).InsertOne(ctx, m); err != nil {
		return nil, errs.ErrDatabase.WrapMsg(err.Error())
	}
	return m, nil
}

// ListGroupMessages 群历史，按时间升序
func ListGroupMessages(ctx context.Context, db *mongo.Database, groupID string) ([]*chatmodel.GroupMessage, error) {
	if groupID == "" {
		return nil, errs.ErrArgs.WrapMsg("groupId required")
	}
	cur, err := groupMsgColl(db).Find(ctx,
		bson.M{"group_id": groupID},
		options.Find().SetSort(bson.D{{Key: "create_time", Value: 1}}),
	)
	if err != nil {
		return nil, errs.ErrDatabase.WrapMsg(err.Error())
	}
	defer func() { _ = cur.Close(ctx) }()

	msgs := make([]*chatmodel.GroupMessage, 0)
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, errs.ErrDatabase.WrapMsg(err.Error())
	}
	return msgs, nil
}
