package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	usermodel "ChatApp/module/user/model"
	errs "ChatApp/tools/errs"
	ids "ChatApp/tools/ids"
)

func coll(db *mongo.Database) *mongo.Collection {
	return db.Collection(usermodel.UserTableName)
}

// EnsureIndexes 建唯一索引（email）
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := coll(db).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return errs.Wrap(err)
}

// Create 注册一个用户（密码已是 bcrypt hash）
func Create(ctx context.Context, db *mongo.Database, fullName, email, passwordHash string) (*usermodel.User, error) {
	now := time.Now()
	u := &usermodel.User{
		UserID:       ids.GenerateString(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: passwordHash,
		CreateTime:   now,
		UpdateTime:   now,
	}
	if _, err := coll(db).InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errs.ErrDuplicate.WrapMsg("email already registered", "email", email)
		}
		return nil, errs.ErrDatabase.WrapMsg(err.Error())
	}
	return u, nil
}

// GetByID 按ID取用户；不存在返回 ErrRecordNotFound
func GetByID(ctx context.Context, db *mongo.Database, userID string) (*usermodel.User, error) {
	var u usermodel.User
	err := coll(db).FindOne(ctx, bson.M{"_id": userID}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrRecordNotFound.WrapMsg("user not found", "user_id", userID)
	}
	if err != nil {
		return nil, errs.ErrDatabase.WrapMsg(err.Error())
	}
	return &u, nil
}

// GetByEmail 登录路径使用
func GetByEmail(ctx context.Context, db *mongo.Database, email string) (*usermodel.User, error) {
	var u usermodel.User
	err := coll(db).FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrRecordNotFound.WrapMsg("user not found", "email", email)
	}
	if err != nil {
		return nil, errs.ErrDatabase.WrapMsg(err.Error())
	}
	return &u, nil
}

// Exists 在线性校验（如注册表握手时判断 userId 是否真实存在）
func Exists(ctx context.Context, db *mongo.Database, userID string) (bool, error) {
	n, err := coll(db).CountDocuments(ctx, bson.M{"_id": userID}, options.Count().SetLimit(1))
	if err != nil {
		return false, errs.ErrDatabase.WrapMsg(err.Error())
	}
	return n > 0, nil
}

// ListOthers 侧边栏用户列表：除自己外的全部用户，按创建时间倒序
func ListOthers(ctx context.Context, db *mongo.Database, selfID string) ([]*usermodel.User, error) {
	cur, err := coll(db).Find(ctx,
		bson.M{"_id": bson.M{"$ne": selfID}},
		options.Find().SetSort(bson.D{{Key: "create_time", Value: -1}}),
	)
	if err != nil {
		return nil, errs.ErrDatabase.WrapMsg(err.Error())
	}
	defer func() { _ = cur.Close(ctx) }()

	users := make([]*usermodel.User, 0)
	if err := cur.All(ctx, &users); err != nil {
		return nil, errs.ErrDatabase.WrapMsg(err.Error())
	}
	return users, nil
}

// Search 按名字模糊搜索用户（大小写不敏感），不含自己。
// name 为空时退化成全量列表（等价 ListOthers 的过滤条件）。
func Search(ctx context.Context, db *mongo.Database, selfID, name string) ([]*usermodel.User, error) {
	cur, err := coll(db).Find(ctx,
		searchFilter(selfID, name),
		options.Find().SetSort(bson.D{{Key: "create_time", Value: -1}}),
	)
	if err != nil {
		return nil, errs.ErrDatabase.WrapMsg(err.Error())
	}
	defer func() { _ = cur.Close(ctx) }()

	users := make([]*usermodel.User, 0)
	if err := cur.All(ctx, &users); err != nil {
		return nil, errs.ErrDatabase.WrapMsg(err.Error())
	}
	return users, nil
}

// searchFilter 搜索词按字面量匹配（转义正则元字符，避免注入）
func searchFilter(selfID, name string) bson.M {
	filter := bson.M{"_id": bson.M{"$ne": selfID}}
	if name != "" {
		filter["full_name"] = primitive.Regex{Pattern: regexp.QuoteMeta(name), Options: "i"}
	}
	return filter
}
