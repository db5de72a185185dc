package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	midsec "ChatApp/middleware/security"
	chatservice "ChatApp/module/chat/service"
	"ChatApp/service/media"
	errs "ChatApp/tools/errs"
	"ChatApp/tools/web"
)

// GroupHandler 群 CRUD 与成员管理。持久化的成员表是实时层 joinGroup
// 授权的唯一依据，所以这里的写操作就是在改"谁能收到房间广播"。
type GroupHandler struct {
	DB    *mongo.Database
	Media media.Uploader
}

func NewGroupHandler(db *mongo.Database, up media.Uploader) *GroupHandler {
	return &GroupHandler{DB: db, Media: up}
}

type createGroupReq struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
	ProfilePic  string   `json:"profilePic"` // base64，可选
}

// HandlerCreateGroup POST /api/groups/create
func (h *GroupHandler) HandlerCreateGroup(c *gin.Context) {
	adminID := c.GetString(midsec.CtxUserIDKey)

	var req createGroupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		web.RespErr(c, errs.ErrArgs.WrapMsg(err.Error()))
		return
	}

	picURL := ""
	if req.ProfilePic != "" {
		url, err := h.Media.Upload(c.Request.Context(), req.ProfilePic)
		if err != nil {
			web.RespErr(c, err)
			return
		}
		picURL = url
	}

	g, err := chatservice.CreateGroup(c.Request.Context(), h.DB, chatservice.CreateGroupParams{
		Name:        req.Name,
		Description: req.Description,
		AdminID:     adminID,
		MemberIDs:   req.Members,
		ProfilePic:  picURL,
	})
	if err != nil {
		web.RespErr(c, err)
		return
	}
	web.RespData(c, http.StatusCreated, gin.H{"group": g})
}

// HandlerMyGroups GET /api/groups/my
func (h *GroupHandler) HandlerMyGroups(c *gin.Context) {
	userID := c.GetString(midsec.CtxUserIDKey)
	groups, err := chatservice.MyGroups(c.Request.Context(), h.DB, userID)
	if err != nil {
		web.RespErr(c, err)
		return
	}
	web.RespData(c, http.StatusOK, gin.H{"groups": groups})
}

// HandlerAllGroups GET /api/groups/
func (h *GroupHandler) HandlerAllGroups(c *gin.Context) {
	groups, err := chatservice.AllGroups(c.Request.Context(), h.DB)
	if err != nil {
		web.RespErr(c, err)
		return
	}
	web.RespData(c, http.StatusOK, gin.H{"groups": groups})
}

type renameGroupReq struct {
	GroupID string `json:"groupId" binding:"required"`
	NewName string `json:"newName" binding:"required"`
}

// HandlerRenameGroup PUT /api/groups/rename
func (h *GroupHandler) HandlerRenameGroup(c *gin.Context) {
	var req renameGroupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		web.RespErr(c, errs.ErrArgs.WrapMsg(err.Error()))
		return
	}
	g, err := chatservice.RenameGroup(c.Request.Context(), h.DB, req.GroupID, req.NewName)
	if err != nil {
		web.RespErr(c, err)
		return
	}
	web.RespData(c, http.StatusOK, gin.H{"group": g})
}

type updateDescriptionReq struct {
	GroupID     string `json:"groupId" binding:"required"`
	Description string `json:"description"`
}

// HandlerUpdateDescription PUT /api/groups/update-description
func (h *GroupHandler) HandlerUpdateDescription(c *gin.Context) {
	var req updateDescriptionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		web.RespErr(c, errs.ErrArgs.WrapMsg(err.Error()))
		return
	}
	g, err := chatservice.UpdateGroupDescription(c.Request.Context(), h.DB, req.GroupID, req.Description)
	if err != nil {
		web.RespErr(c, err)
		return
	}
	web.RespData(c, http.StatusOK, gin.H{"group": g})
}

type updateGroupProfileReq struct {
	GroupID    string `json:"groupId" binding:"required"`
	ProfilePic string `json:"profilePic"`
}

// HandlerUpdateGroupProfile PUT /api/groups/update-profile
func (h *GroupHandler) HandlerUpdateGroupProfile(c *gin.Context) {
	var req updateGroupProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		web.RespErr(c, errs.ErrArgs.WrapMsg(err.Error()))
		return
	}

	picURL := ""
	if req.ProfilePic != "" {
		url, err := h.Media.Upload(c.Request.Context(), req.ProfilePic)
		if err != nil {
			web.RespErr(c, err)
			return
		}
		picURL = url
	}

	g, err := chatservice.UpdateGroupProfile(c.Request.Context(), h.DB, req.GroupID, picURL)
	if err != nil {
		web.RespErr(c, err)
		return
	}
	web.RespData(c, http.StatusOK, gin.H{"group": g})
}

type groupMemberReq struct {
	GroupID string `json:"groupId" binding:"required"`
	UserID  string `json:"userId" binding:"required"`
}

// HandlerAddUserToGroup PUT /api/groups/add-user
func (h *GroupHandler) HandlerAddUserToGroup(c *gin.Context) {
	var req groupMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		web.RespErr(c, errs.ErrArgs.WrapMsg(err.Error()))
		return
	}
	g, err := chatservice.AddUserToGroup(c.Request.Context(), h.DB, req.GroupID, req.UserID)
	if err != nil {
		web.RespErr(c, err)
		return
	}
	web.RespData(c, http.StatusOK, gin.H{"group": g})
}

// HandlerRemoveUserFromGroup PUT /api/groups/remove-user
func (h *GroupHandler) HandlerRemoveUserFromGroup(c *gin.Context) {
	var req groupMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		web.RespErr(c, errs.ErrArgs.WrapMsg(err.Error()))
		return
	}
	g, err := chatservice.RemoveUserFromGroup(c.Request.Context(), h.DB, req.GroupID, req.UserID)
	if err != nil {
		web.RespErr(c, err)
		return
	}
	web.RespData(c, http.StatusOK, gin.H{"group": g})
}

type leaveGroupReq struct {
	GroupID string `json:"groupId" binding:"required"`
}

// HandlerLeaveGroup PUT /api/groups/leave 调用方把自己移出成员表
func (h *GroupHandler) HandlerLeaveGroup(c *gin.Context) {
	userID := c.GetString(midsec.CtxUserIDKey)

	var req leaveGroupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		web.RespErr(c, errs.ErrArgs.WrapMsg(err.Error()))
		return
	}
	g, err := chatservice.LeaveGroup(c.Request.Context(), h.DB, req.GroupID, userID)
	if err != nil {
		web.RespErr(c, err)
		return
	}
	web.RespData(c, http.StatusOK, gin.H{"group": g})
}

// HandlerDeleteGroup DELETE /api/groups/:groupId 仅管理员；群消息一并删除
func (h *GroupHandler) HandlerDeleteGroup(c *gin.Context) {
	userID := c.GetString(midsec.CtxUserIDKey)
	groupID := c.Param("groupId")

	if err := chatservice.DeleteGroup(c.Request.Context(), h.DB, groupID, userID); err != nil {
		web.RespErr(c, err)
		return
	}
	web.RespData(c, http.StatusOK, gin.H{"groupId": groupID})
}
