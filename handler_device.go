package thinky_sdk

import (
	"net/http"

	"github.com/thinky-app/thinky-sdk/response"
	"github.com/thinky-app/thinky-sdk/service"

	"github.com/gin-gonic/gin"
)

// -------------------- 设备（Device）相关接口 --------------------

// GinHandleRegisterDevice 设备注册 / 登录
// @Summary 设备注册
// @Description 提交浏览器指纹，换取设备ID、会话ID和随机匿名用户名；同一指纹重复提交返回同一设备
// @Tags 设备
// @Accept json
// @Produce json
// @Param body body service.FingerprintInput true "浏览器指纹"
// @Success 200 {object} response.Response{data=service.DeviceDTO} "设备信息"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 500 {object} response.Response "服务器错误"
// @Router /device/register [post]
func (c *ThinkyEngine) GinHandleRegisterDevice(ctx *gin.Context) {
	var in service.FingerprintInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid fingerprint payload"))
		return
	}

	dto, err := c.DeviceService.RegisterDevice(ctx.Request.Context(), in)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(dto))
}

// GinHandleGetDevice 查询当前设备
// @Summary 查询当前设备
// @Description 按 X-Device-ID 返回设备档案（用户名、违规次数、封禁状态）
// @Tags 设备
// @Accept json
// @Produce json
// @Param X-Device-ID header string true "设备ID"
// @Success 200 {object} response.Response{data=service.DeviceDTO} "设备信息"
// @Failure 400 {object} response.Response "参数错误"
// @Router /device/me [get]
func (c *ThinkyEngine) GinHandleGetDevice(ctx *gin.Context) {
	did, exists := ctx.Get("device_id")
	if !exists {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "device_id not found"))
		return
	}

	dto, err := c.DeviceService.GetDevice(did.(string))
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeDeviceNotFound, "device not registered"))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(dto))
}
