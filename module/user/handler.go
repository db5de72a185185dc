package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	midsec "ChatApp/middleware/security"
	userservice "ChatApp/module/user/service"
	errs "ChatApp/tools/errs"
	jwtlib "ChatApp/tools/security"
	"ChatApp/tools/web"
)

// Handler 认证与用户列表。会话/资料编辑不在本服务范围，这里只做
// 最薄的发令牌与取用户，供实时核心消费。
type Handler struct {
	DB  *mongo.Database
	Jwt jwtlib.Options
}

func NewHandler(db *mongo.Database, jwt jwtlib.Options) *Handler {
	return &Handler{DB: db, Jwt: jwt}
}

type signupReq struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// HandlerSignup POST /api/auth/signup
func (h *Handler) HandlerSignup(c *gin.Context) {
	var req signupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		web.RespErr(c, errs.ErrArgs.WrapMsg(err.Error()))
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		web.RespErr(c, errs.ErrInternal.WrapMsg(err.Error()))
		return
	}
	u, err := userservice.Create(c.Request.Context(), h.DB, req.FullName, req.Email, string(hash))
	if err != nil {
		web.RespErr(c, err)
		return
	}
	token, exp, err := jwtlib.Generate(h.Jwt, u.UserID)
	if err != nil {
		web.RespErr(c, errs.ErrInternal.WrapMsg(err.Error()))
		return
	}
	web.RespData(c, http.StatusCreated, gin.H{"token": token, "expireAt": exp, "user": u})
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// HandlerLogin POST /api/auth/login
func (h *Handler) HandlerLogin(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		web.RespErr(c, errs.ErrArgs.WrapMsg(err.Error()))
		return
	}
	u, err := userservice.GetByEmail(c.Request.Context(), h.DB, req.Email)
	if err != nil {
		// 不区分"用户不存在/密码错误"
		web.RespErr(c, errs.ErrTokenInvalid.WithDetail("bad credentials"))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		web.RespErr(c, errs.ErrTokenInvalid.WithDetail("bad credentials"))
		return
	}
	token, exp, err := jwtlib.Generate(h.Jwt, u.UserID)
	if err != nil {
		web.RespErr(c, errs.ErrInternal.WrapMsg(err.Error()))
		return
	}
	web.RespData(c, http.StatusOK, gin.H{"token": token, "expireAt": exp, "user": u})
}

// HandlerSidebarUsers GET /api/messages/users 侧边栏：除自己外的全部用户
func (h *Handler) HandlerSidebarUsers(c *gin.Context) {
	selfID := c.GetString(midsec.CtxUserIDKey)
	users, err := userservice.ListOthers(c.Request.Context(), h.DB, selfID)
	if err != nil {
		web.RespErr(c, err)
		return
	}
	web.RespData(c, http.StatusOK, users)
}

// HandlerSearchUsers GET /api/users?name=xx 按名字模糊搜索（不含自己）
func (h *Handler) HandlerSearchUsers(c *gin.Context) {
	selfID := c.GetString(midsec.CtxUserIDKey)
	users, err := userservice.Search(c.Request.Context(), h.DB, selfID, c.Query("name"))
	if err != nil {
		web.RespErr(c, err)
		return
	}
	web.RespData(c, http.StatusOK, users)
}
