package errs

// ===== 错误码定义 =====
//
// 1xxx 请求/参数类；2xxx 资源类；3xxx 外部依赖类；5xxx 服务内部
const (
	ArgsError           = 1001 // 参数缺失/非法
	TokenInvalidError   = 1101 // 令牌无效
	TokenExpiredError   = 1102 // 令牌过期
	RateLimitedError    = 1201 // 触发限流
	RecordNotFoundError = 2001 // 记录不存在
	DuplicateError      = 2002 // 重复操作（如重复入群）
	MediaUploadError    = 3001 // 媒体上传失败
	DatabaseError       = 3002 // 持久化失败
	ServerInternalError = 5000 // 内部错误
)

// 预定义错误；使用侧通过 WithDetail/WrapMsg 派生副本
var (
	ErrArgs           = NewCodeError(ArgsError, "args invalid")
	ErrTokenInvalid   = NewCodeError(TokenInvalidError, "token invalid")
	ErrTokenExpired   = NewCodeError(TokenExpiredError, "token expired")
	ErrRateLimited    = NewCodeError(RateLimitedError, "too many requests")
	ErrRecordNotFound = NewCodeError(RecordNotFoundError, "record not found")
	ErrDuplicate      = NewCodeError(DuplicateError, "duplicate operation")
	ErrMediaUpload    = NewCodeError(MediaUploadError, "media upload failed")
	ErrDatabase       = NewCodeError(DatabaseError, "database error")
	ErrInternal       = NewCodeError(ServerInternalError, "server internal error")
)
