package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	midsec "ChatApp/middleware/security"
	chatservice "ChatApp/module/chat/service"
	chat "ChatApp/service/chat"
	"ChatApp/service/media"
	errs "ChatApp/tools/errs"
	"ChatApp/tools/web"
)

// GroupMessageHandler 群消息。顺序同单聊：校验 → 上传 → 落库 → 房间广播。
type GroupMessageHandler struct {
	DB    *mongo.Database
	Media media.Uploader
	Disp  *chat.Dispatcher
}

func NewGroupMessageHandler(db *mongo.Database, up media.Uploader, disp *chat.Dispatcher) *GroupMessageHandler {
	return &GroupMessageHandler{DB: db, Media: up, Disp: disp}
}

type sendGroupMessageReq struct {
	GroupID string `json:"groupId" binding:"required"`
	Text    string `json:"text"`
	Image   string `json:"image"`
}

// HandlerSendGroupMessage POST /api/group-messages/send
func (h *GroupMessageHandler) HandlerSendGroupMessage(c *gin.Context) {
	senderID := c.GetString(midsec.CtxUserIDKey)

	var req sendGroupMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		web.RespErr(c, errs.ErrArgs.WrapMsg(err.Error()))
		return
	}
	if err := chatservice.ValidateContent(req.Text, req.Image); err != nil {
		web.RespErr(c, err)
		return
	}

	imageURL := ""
	if req.Image != "" {
		url, err := h.Media.Upload(c.Request.Context(), req.Image)
		if err != nil {
			web.RespErr(c, err)
			return
		}
		imageURL = url
	}

	msg, err := chatservice.SaveGroupMessage(c.Request.Context(), h.DB, req.GroupID, senderID, req.Text, imageURL)
	if err != nil {
		web.RespErr(c, err)
		return
	}

	// 广播给房间全部连接，含发送方自己（客户端按消息ID去重）
	h.Disp.PushGroupMessage(msg)

	web.RespData(c, http.StatusCreated, gin.H{"message": msg})
}

// HandlerGetGroupMessages GET /api/group-messages/:groupId
func (h *GroupMessageHandler) HandlerGetGroupMessages(c *gin.Context) {
	groupID := c.Param("groupId")
	msgs, err := chatservice.ListGroupMessages(c.Request.Context(), h.DB, groupID)
	if err != nil {
		web.RespErr(c, err)
		return
	}
	web.RespData(c, http.StatusOK, gin.H{"messages": msgs})
}
