package thinky_sdk

import (
	"net/http"

	"github.com/thinky-app/thinky-sdk/response"
	"github.com/thinky-app/thinky-sdk/service"

	"github.com/gin-gonic/gin"
)

// -------------------- 在线状态（Presence）相关接口 --------------------
// 心跳主通道是 WebSocket（见 ws_on_function.go），这组 HTTP 接口
// 给没有建立 WS 连接的页面兜底，以及给前端取在线人数角标。

type heartbeatReq struct {
	DeviceName  string `json:"device_name"`
	Browser     string `json:"browser"`
	OS          string `json:"os"`
	CurrentPage string `json:"current_page"`
}

// GinHandleHeartbeat 上报心跳
// @Summary 上报心跳
// @Description 刷新设备的最后活跃时间与所在页面
// @Tags 在线状态
// @Accept json
// @Produce json
// @Param X-Device-ID header string true "设备ID"
// @Param body body heartbeatReq true "设备环境与当前页面"
// @Success 200 {object} response.Response "成功响应"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 500 {object} response.Response "服务器错误"
// @Router /presence/heartbeat [post]
func (c *ThinkyEngine) GinHandleHeartbeat(ctx *gin.Context) {
	did, exists := ctx.Get("device_id")
	if !exists {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "device_id not found"))
		return
	}

	var req heartbeatReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid heartbeat payload"))
		return
	}

	// 昵称和管理员标记都由服务端解析，不收客户端上报
	username, isAdmin := c.DeviceService.CachedProfile(ctx.Request.Context(), did.(string))
	err := c.PresenceService.Heartbeat(service.HeartbeatInput{
		DeviceID:    did.(string),
		DeviceName:  req.DeviceName,
		Browser:     req.Browser,
		OS:          req.OS,
		CurrentPage: req.CurrentPage,
		Username:    username,
		IsAdmin:     isAdmin,
	})
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]any{"message": "ok"}))
}

// GinHandleGetOnlineCount 在线人数
// @Summary 在线人数
// @Description 返回最近 60 秒内有心跳的设备数，前端角标用
// @Tags 在线状态
// @Accept json
// @Produce json
// @Success 200 {object} response.Response "{\"count\": 7}"
// @Failure 500 {object} response.Response "服务器错误"
// @Router /presence/online-count [get]
func (c *ThinkyEngine) GinHandleGetOnlineCount(ctx *gin.Context) {
	count, err := c.PresenceService.OnlineCount(service.WindowOnlineBadge)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]any{"count": count}))
}

// GinHandleUnload 页面卸载
// @Summary 页面卸载
// @Description 页面关闭前的下线上报（sendBeacon 调用），删掉在线记录
// @Tags 在线状态
// @Accept json
// @Produce json
// @Param X-Device-ID header string true "设备ID"
// @Success 200 {object} response.Response "成功响应"
// @Failure 400 {object} response.Response "参数错误"
// @Router /presence/unload [post]
func (c *ThinkyEngine) GinHandleUnload(ctx *gin.Context) {
	did, exists := ctx.Get("device_id")
	if !exists {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "device_id not found"))
		return
	}

	if err := c.PresenceService.Remove(did.(string)); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]any{"message": "ok"}))
}
