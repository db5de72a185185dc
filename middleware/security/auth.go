package security

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	errs "ChatApp/tools/errs"
	jwtlib "ChatApp/tools/security"
)

// —— context key ——
// 后续 handler 统一用这个 key 读取登录用户
const CtxUserIDKey = "user_id"

type Options struct {
	HeaderToken               string // 默认 "Authorization"
	EnableAuthorizationBearer bool   // 默认 true
}

func DefaultOptions() *Options {
	return &Options{
		HeaderToken:               "Authorization",
		EnableAuthorizationBearer: true,
	}
}

var (
	jwtMu   sync.RWMutex
	jwtOpts jwtlib.Options
)

// Configure main() 初始化时注入 JWT 参数
func Configure(opts jwtlib.Options) {
	jwtMu.Lock()
	defer jwtMu.Unlock()
	jwtOpts = opts
}

func currentJwtOpts() jwtlib.Options {
	jwtMu.RLock()
	defer jwtMu.RUnlock()
	return jwtOpts
}

// Middleware 校验 Bearer token，把 userID 写进 gin context
func Middleware(opts *Options) gin.HandlerFunc {
	if opts == nil {
		opts = DefaultOptions()
	}
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(opts.HeaderToken))

		// 兼容 Authorization: Bearer xxx
		if opts.EnableAuthorizationBearer && token != "" {
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[len("bearer "):])
			}
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrTokenInvalid.WithDetail("token missing"))
			return
		}

		userID, err := jwtlib.Verify(currentJwtOpts(), token)
		if err != nil {
			if errs.ErrTokenExpired.Is(err) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrTokenExpired)
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrTokenInvalid)
			return
		}

		c.Set(CtxUserIDKey, userID)
		c.Next()
	}
}
