package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thinky-app/thinky-sdk/response"
)

const (
	// ContextDeviceIDKey gin context 里保存设备指纹的 key
	ContextDeviceIDKey = "device_id"

	// HeaderDeviceID 客户端在每个匿名请求上携带的指纹头
	HeaderDeviceID = "X-Device-ID"
)

// GinDeviceMiddleware 匿名设备识别中间件。
// 设备指纹不是登录态，这里不做任何鉴权——只要求请求携带一个形状合法的
// device_id（X-Device-ID 头或 query device_id），写入 gin.Context 供 handler 使用。
// 封禁校验不在这里：各发送路径在写入前自己做鲜活重查。
func GinDeviceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := strings.TrimSpace(c.GetHeader(HeaderDeviceID))
		if deviceID == "" {
			deviceID = strings.TrimSpace(c.Query("device_id"))
		}
		if !validDeviceID(deviceID) {
			c.Header("Content-Type", "application/json")
			c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
				Code: response.CodeParamError,
				Msg:  "missing or malformed device id",
			})
			return
		}
		c.Set(ContextDeviceIDKey, deviceID)
		c.Next()
	}
}

// validDeviceID 指纹形状校验：32 位小写 hex（见 service.ComputeDeviceID）。
func validDeviceID(id string) bool {
	if len(id) != 32 {
		return false
	}
	for _, c := range id {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}
