package service

import (
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Service 基础服务，包含数据库和配置
type Service struct {
	DB          *gorm.DB
	RDB         *redis.Client
	TablePrefix string

	// WsNotifier 用于向单台设备推送 WebSocket 消息的回调函数
	// 避免循环依赖，通过函数注入的方式
	WsNotifier func(deviceID string, message []byte)

	// WsBroadcaster 向所有在线连接广播（社区留言/表情回应等公共事件）
	WsBroadcaster func(message []byte)

	// Notify 通知分发服务（弹窗队列 + 抑制规则 + WS 推送）
	Notify *NotificationService

	// SessionState 获取某设备 WS 会话的即时状态（当前页面、打开中的私信对端）。
	// 通知抑制规则依赖它，避免 service 层直接引用 WsServer。
	// ok=false 表示设备当前没有任何活跃连接。
	SessionState func(deviceID string) (page string, openPeer string, ok bool)

	// OnlineDevices 当前有活跃 WS 连接的设备列表（社区通知的分发范围）
	OnlineDevices func() []string
}

// Table 获取带前缀的表名
func (s *Service) Table(name string) *gorm.DB {
	return s.DB.Table(s.TablePrefix + name)
}
