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

// MessageHandler 单聊消息。写路径的顺序是硬约束：
// 校验 → （可选）上传 → 落库 → 推送。任何一步失败都在推送之前短路。
type MessageHandler struct {
	DB    *mongo.Database
	Media media.Uploader
	Disp  *chat.Dispatcher
}

func NewMessageHandler(db *mongo.Database, up media.Uploader, disp *chat.Dispatcher) *MessageHandler {
	return &MessageHandler{DB: db, Media: up, Disp: disp}
}

type sendMessageReq struct {
	Text  string `json:"text"`
	Image string `json:"image"` // base64/data-uri，服务端负责换成托管URL
}

// HandlerSendMessage POST /api/messages/send/:id
func (h *MessageHandler) HandlerSendMessage(c *gin.Context) {
	senderID := c.GetString(midsec.CtxUserIDKey)
	receiverID := c.Param("id")

	var req sendMessageReq
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
			// 上传失败：整个请求失败，不落库不推送
			web.RespErr(c, err)
			return
		}
		imageURL = url
	}

	msg, err := chatservice.SaveDirectMessage(c.Request.Context(), h.DB, senderID, receiverID, req.Text, imageURL)
	if err != nil {
		web.RespErr(c, err)
		return
	}

	// 落库成功之后才推送
	h.Disp.PushDirectMessage(msg)

	web.RespData(c, http.StatusCreated, msg)
}

// HandlerGetMessages GET /api/messages/:id 与某用户的双向历史
func (h *MessageHandler) HandlerGetMessages(c *gin.Context) {
	selfID := c.GetString(midsec.CtxUserIDKey)
	peerID := c.Param("id")

	msgs, err := chatservice.ListConversation(c.Request.Context(), h.DB, selfID, peerID)
	if err != nil {
		web.RespErr(c, err)
		return
	}
	web.RespData(c, http.StatusOK, msgs)
}
