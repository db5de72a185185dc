package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	chatmodel "ChatApp/module/chat/model"
	errs "ChatApp/tools/errs"
	ids "ChatApp/tools/ids"
)

func msgColl(db *mongo.Database) *mongo.Collection {
	return db.Collection(chatmodel.MessageTableName)
}

// ValidateContent 消息体校验：文本与图片不能同时为空。
// 落库前必须通过，失败属于参数错误，不触发任何持久化与推送。
func ValidateContent(text, image string) error {
	if text == "" && image == "" {
		return errs.ErrArgs.WrapMsg("text or image required")
	}
	return nil
}

// SaveDirectMessage 持久化一条单聊消息。imageURL 必须是已上传完成的URL，
// 上传失败的请求不应该走到这里。
func SaveDirectMessage(ctx context.Context, db *mongo.Database, senderID, receiverID, text, imageURL string) (*chatmodel.Message, error) {
	if senderID == "" || receiverID == "" {
		return nil, errs.ErrArgs.WrapMsg("senderId/receiverId required")
	}
	if err := ValidateContent(text, imageURL); err != nil {
		return nil, err
	}

	m := &chatmodel.Message{
		MessageID:  ids.GenerateString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Image:      imageURL,
		CreateTime: time.Now(),
	}
	if _, err := msgColl(db).InsertOne(ctx, m); err != nil {
		return nil, errs.ErrDatabase.WrapMsg(err.Error())
	}
	return m, nil
}

// ListConversation 拉取与某个用户的双向历史，按时间升序。
// 离线期间错过推送的消息靠这里补齐（reconnect-and-refetch）。
func ListConversation(ctx context.Context, db *mongo.Database, selfID, peerID string) ([]*chatmodel.Message, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"sender_id": selfID, "receiver_id": peerID},
			bson.M{"sender_id": peerID, "receiver_id": selfID},
		},
	}
	cur, err := msgColl(db).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "create_time", Value: 1}}),
	)
	if err != nil {
		return nil, errs.ErrDatabase.WrapMsg(err.Error())
	}
	defer func() { _ = cur.Close(ctx) }()

	msgs := make([]*chatmodel.Message, 0)
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, errs.ErrDatabase.WrapMsg(err.Error())
	}
	return msgs, nil
}
