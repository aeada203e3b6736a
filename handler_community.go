package thinky_sdk

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/thinky-app/thinky-sdk/response"
	"github.com/thinky-app/thinky-sdk/service"

	"github.com/gin-gonic/gin"
)

// -------------------- 社区（Community）相关接口 --------------------

type postCommunityMessageReq struct {
	Message string `json:"message" binding:"required"`
}

type toggleReactionReq struct {
	MessageID uint64 `json:"message_id" binding:"required"`
	Emoji     string `json:"emoji" binding:"required"`
}

// GinHandleGetCommunityMessages 拉取社区留言
// @Summary 拉取社区留言
// @Description 返回最近的社区留言（按时间正序），客户端对账重拉也走这里
// @Tags 社区
// @Accept json
// @Produce json
// @Param limit query int false "条数上限，默认 100"
// @Success 200 {object} response.Response{data=[]service.CommunityMessageDTO} "留言列表"
// @Failure 500 {object} response.Response "服务器错误"
// @Router /community/messages [get]
func (c *ThinkyEngine) GinHandleGetCommunityMessages(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "100"))

	list, err := c.CommunityService.ListRecent(limit)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}

// GinHandleGetCommunityMessageCount 社区留言总数
// @Summary 社区留言总数
// @Description 返回留言总条数，客户端用它和本地条数比对判断是否需要重拉
// @Tags 社区
// @Accept json
// @Produce json
// @Success 200 {object} response.Response "{\"count\": 123}"
// @Failure 500 {object} response.Response "服务器错误"
// @Router /community/messages/count [get]
func (c *ThinkyEngine) GinHandleGetCommunityMessageCount(ctx *gin.Context) {
	count, err := c.CommunityService.MessageCount()
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]any{"count": count}))
}

// GinHandlePostCommunityMessage 发布社区留言
// @Summary 发布社区留言
// @Description 发布一条社区留言（500 字上限，服务端审核）；命中违禁词返回 20001 并带剩余次数，封禁设备返回 20002
// @Tags 社区
// @Accept json
// @Produce json
// @Param X-Device-ID header string true "设备ID"
// @Param body body postCommunityMessageReq true "留言内容"
// @Success 200 {object} response.Response{data=service.CommunityMessageDTO} "留言"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 500 {object} response.Response "服务器错误"
// @Router /community/message [post]
func (c *ThinkyEngine) GinHandlePostCommunityMessage(ctx *gin.Context) {
	did, exists := ctx.Get("device_id")
	if !exists {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "device_id not found"))
		return
	}

	var req postCommunityMessageReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid message payload"))
		return
	}

	dto, violation, err := c.CommunityService.PostMessage(did.(string), req.Message)
	if err != nil {
		if errors.Is(err, service.ErrBanned) {
			ctx.JSON(http.StatusOK, response.Error(response.CodeBanned, "device is banned"))
			return
		}
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	if violation != nil {
		ctx.JSON(http.StatusOK, response.ErrorWithData(response.CodeViolation, "message rejected", violation))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(dto))
}

// GinHandleToggleReaction 表情回应开关
// @Summary 表情回应开关
// @Description 对某条留言点一个表情；已点过则取消。返回该留言最新的回应集合
// @Tags 社区
// @Accept json
// @Produce json
// @Param X-Device-ID header string true "设备ID"
// @Param body body toggleReactionReq true "留言ID与表情"
// @Success 200 {object} response.Response "最新回应集合"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 500 {object} response.Response "服务器错误"
// @Router /community/reaction [post]
func (c *ThinkyEngine) GinHandleToggleReaction(ctx *gin.Context) {
	did, exists := ctx.Get("device_id")
	if !exists {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "device_id not found"))
		return
	}

	var req toggleReactionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid reaction payload"))
		return
	}

	reactions, err := c.CommunityService.ToggleReaction(req.MessageID, req.Emoji, did.(string))
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]any{
		"message_id": req.MessageID,
		"reactions":  reactions,
	}))
}
