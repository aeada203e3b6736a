package thinky_sdk

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/thinky-app/thinky-sdk/response"
	"github.com/thinky-app/thinky-sdk/service"

	"github.com/gin-gonic/gin"
)

// -------------------- 私信（DirectMessage）相关接口 --------------------

type sendDirectMessageReq struct {
	ToDeviceID string `json:"to_device_id" binding:"required"`
	Message    string `json:"message" binding:"required"`
}

type markReadReq struct {
	PeerDeviceID string `json:"peer_device_id" binding:"required"`
}

// GinHandleSendDirectMessage 发送私信
// @Summary 发送私信
// @Description 给另一台设备发送私信（1000 字上限）。限流返回 20003，对方不在线返回 20004，封禁返回 20002，命中违禁词返回 20001
// @Tags 私信
// @Accept json
// @Produce json
// @Param X-Device-ID header string true "设备ID"
// @Param body body sendDirectMessageReq true "收件设备与内容"
// @Success 200 {object} response.Response{data=service.DirectMessageDTO} "私信"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 500 {object} response.Response "服务器错误"
// @Router /direct/send [post]
func (c *ThinkyEngine) GinHandleSendDirectMessage(ctx *gin.Context) {
	did, exists := ctx.Get("device_id")
	if !exists {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "device_id not found"))
		return
	}

	var req sendDirectMessageReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid message payload"))
		return
	}

	dto, violation, err := c.DirectService.Send(ctx.Request.Context(), did.(string), req.ToDeviceID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBanned):
			ctx.JSON(http.StatusOK, response.Error(response.CodeBanned, "device is banned"))
		case errors.Is(err, service.ErrRateLimited):
			ctx.JSON(http.StatusOK, response.Error(response.CodeRateLimited, "sending too fast, slow down"))
		case errors.Is(err, service.ErrRecipientOffline):
			ctx.JSON(http.StatusOK, response.Error(response.CodeRecipientOffline, "recipient is offline"))
		default:
			ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		}
		return
	}
	if violation != nil {
		ctx.JSON(http.StatusOK, response.ErrorWithData(response.CodeViolation, "message rejected", violation))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(dto))
}

// GinHandleGetConversation 拉取私信会话
// @Summary 拉取私信会话
// @Description 返回与某台设备的私信记录（按时间正序，分页）；第一页会顺带把对方发来的未读标记已读
// @Tags 私信
// @Accept json
// @Produce json
// @Param X-Device-ID header string true "设备ID"
// @Param peer query string true "对方设备ID"
// @Param page query int false "页码，默认 1"
// @Param size query int false "每页条数，默认 50"
// @Success 200 {object} response.Response{data=[]service.DirectMessageDTO} "私信列表"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 500 {object} response.Response "服务器错误"
// @Router /direct/conversation [get]
func (c *ThinkyEngine) GinHandleGetConversation(ctx *gin.Context) {
	did, exists := ctx.Get("device_id")
	if !exists {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "device_id not found"))
		return
	}
	peer := ctx.Query("peer")
	if peer == "" {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "peer is required"))
		return
	}
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(ctx.DefaultQuery("size", "50"))

	list, err := c.DirectService.Conversation(did.(string), peer, page, size)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}

// GinHandleMarkConversationRead 标记会话已读
// @Summary 标记会话已读
// @Description 把对方发给自己的未读私信全部标记为已读，并通过 WS 通知对方
// @Tags 私信
// @Accept json
// @Produce json
// @Param X-Device-ID header string true "设备ID"
// @Param body body markReadReq true "对方设备ID"
// @Success 200 {object} response.Response "成功响应"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 500 {object} response.Response "服务器错误"
// @Router /direct/read [post]
func (c *ThinkyEngine) GinHandleMarkConversationRead(ctx *gin.Context) {
	did, exists := ctx.Get("device_id")
	if !exists {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "device_id not found"))
		return
	}

	var req markReadReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid payload"))
		return
	}

	if err := c.DirectService.MarkRead(did.(string), req.PeerDeviceID); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]any{"message": "ok"}))
}

// GinHandleGetUnreadCounts 未读数
// @Summary 未读数
// @Description 按发件设备分组返回自己的未读私信数
// @Tags 私信
// @Accept json
// @Produce json
// @Param X-Device-ID header string true "设备ID"
// @Success 200 {object} response.Response "{\"<device_id>\": 3}"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 500 {object} response.Response "服务器错误"
// @Router /direct/unread [get]
func (c *ThinkyEngine) GinHandleGetUnreadCounts(ctx *gin.Context) {
	did, exists := ctx.Get("device_id")
	if !exists {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "device_id not found"))
		return
	}

	counts, err := c.DirectService.UnreadCounts(did.(string))
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(counts))
}

// GinHandleGetActiveDevices 可私信设备列表
// @Summary 可私信设备列表
// @Description 返回最近 15 秒内有心跳的设备（私信只允许发给在线设备），自己不在列表里
// @Tags 私信
// @Accept json
// @Produce json
// @Param X-Device-ID header string true "设备ID"
// @Success 200 {object} response.Response{data=[]service.PresenceDTO} "在线设备"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 500 {object} response.Response "服务器错误"
// @Router /direct/devices [get]
func (c *ThinkyEngine) GinHandleGetActiveDevices(ctx *gin.Context) {
	did, exists := ctx.Get("device_id")
	if !exists {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "device_id not found"))
		return
	}

	list, err := c.PresenceService.ActiveDevices(service.WindowActiveDevices)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	// 列表里不回自己
	out := make([]service.PresenceDTO, 0, len(list))
	for _, p := range list {
		if p.DeviceID == did.(string) {
			continue
		}
		out = append(out, p)
	}
	ctx.JSON(http.StatusOK, response.Success(out))
}
