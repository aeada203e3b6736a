package thinky_sdk

import (
	"net/http"

	"github.com/thinky-app/thinky-sdk/response"
	"github.com/thinky-app/thinky-sdk/service"

	"github.com/gin-gonic/gin"
)

// -------------------- 管理端（Admin）相关接口 --------------------

type adminLoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type adminBroadcastReq struct {
	Message string `json:"message" binding:"required"`
}

type unbanReq struct {
	DeviceID string `json:"device_id" binding:"required"`
}

// GinHandleAdminLogin 管理员登录
// @Summary 管理员登录
// @Description 用户名密码登录，换取 Bearer Token
// @Tags 管理端
// @Accept json
// @Produce json
// @Param body body adminLoginReq true "用户名与密码"
// @Success 200 {object} response.Response{data=service.LoginResp} "登录结果"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 500 {object} response.Response "服务器错误"
// @Router /admin/login [post]
func (c *ThinkyEngine) GinHandleAdminLogin(ctx *gin.Context) {
	var req adminLoginReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid login payload"))
		return
	}

	resp, err := c.AdminService.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodePasswordError, "invalid username or password"))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(resp))
}

// GinHandleAdminBroadcast 管理员广播
// @Summary 管理员广播
// @Description 以 Thinky Team 名义发一条 @all 社区留言，并对最近 5 分钟活跃的设备弹通知
// @Tags 管理端
// @Accept json
// @Produce json
// @Param body body adminBroadcastReq true "广播内容"
// @Success 200 {object} response.Response{data=service.CommunityMessageDTO} "广播留言"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 500 {object} response.Response "服务器错误"
// @Security BearerAuth
// @Router /admin/broadcast [post]
func (c *ThinkyEngine) GinHandleAdminBroadcast(ctx *gin.Context) {
	var req adminBroadcastReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid broadcast payload"))
		return
	}

	dto, err := c.CommunityService.AdminBroadcast(req.Message)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(dto))
}

// GinHandleAdminOverview 审核概览
// @Summary 审核概览
// @Description 返回设备数、封禁数、留言数等整体计数
// @Tags 管理端
// @Accept json
// @Produce json
// @Success 200 {object} response.Response{data=service.ModerationOverview} "概览"
// @Failure 500 {object} response.Response "服务器错误"
// @Security BearerAuth
// @Router /admin/overview [get]
func (c *ThinkyEngine) GinHandleAdminOverview(ctx *gin.Context) {
	overview, err := c.AdminService.Overview()
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(overview))
}

// GinHandleAdminFlaggedDevices 违规设备列表
// @Summary 违规设备列表
// @Description 返回有违规记录或已封禁的设备
// @Tags 管理端
// @Accept json
// @Produce json
// @Success 200 {object} response.Response "设备列表"
// @Failure 500 {object} response.Response "服务器错误"
// @Security BearerAuth
// @Router /admin/flagged [get]
func (c *ThinkyEngine) GinHandleAdminFlaggedDevices(ctx *gin.Context) {
	list, err := c.ModerationService.ListFlagged()
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}

// GinHandleAdminUnban 解除封禁
// @Summary 解除封禁
// @Description 清零某台设备的违规次数并解除封禁
// @Tags 管理端
// @Accept json
// @Produce json
// @Param body body unbanReq true "设备ID"
// @Success 200 {object} response.Response "成功响应"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 500 {object} response.Response "服务器错误"
// @Security BearerAuth
// @Router /admin/unban [post]
func (c *ThinkyEngine) GinHandleAdminUnban(ctx *gin.Context) {
	var req unbanReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid payload"))
		return
	}

	if err := c.ModerationService.Unban(req.DeviceID); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]any{"message": "ok"}))
}

// GinHandleAdminActiveDevices 活跃设备列表
// @Summary 活跃设备列表
// @Description 返回最近 5 分钟内有心跳的设备（管理端看板用）
// @Tags 管理端
// @Accept json
// @Produce json
// @Success 200 {object} response.Response{data=[]service.PresenceDTO} "设备列表"
// @Failure 500 {object} response.Response "服务器错误"
// @Security BearerAuth
// @Router /admin/devices [get]
func (c *ThinkyEngine) GinHandleAdminActiveDevices(ctx *gin.Context) {
	list, err := c.PresenceService.ActiveDevices(service.WindowAdminBroadcast)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}
