package thinky_sdk

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/thinky-app/thinky-sdk/middleware"
	model "github.com/thinky-app/thinky-sdk/models"
	"github.com/thinky-app/thinky-sdk/service"
)

type ThinkyEngine struct {
	config *Config

	DeviceService     *service.DeviceService
	ModerationService *service.ModerationService
	CommunityService  *service.CommunityService
	PresenceService   *service.PresenceService
	DirectService     *service.DirectMessageService
	NotifyService     *service.NotificationService
	GradingService    *service.GradingService
	AdminService      *service.AdminService
	AuthService       *service.AuthService // 管理后台鉴权服务
	WsServer          *WsServer
}

var (
	Instance *ThinkyEngine
	once     sync.Once
)

// NewEngine 创建实例
// 使用选项模式传入配置，Option回调
func NewEngine(opts ...Option) *ThinkyEngine {
	once.Do(func() {
		c := &Config{
			TablePrefix: "tk_", // Default
		}
		for _, opt := range opts {
			opt(c)
		}

		Instance = &ThinkyEngine{config: c}

		// 初始化 WS
		Instance.WsServer = NewWsServer()
		go Instance.WsServer.Run()

		// 初始化基础 Service，注入 WS 回调
		baseService := &service.Service{
			DB:            c.DB,
			RDB:           c.RDB,
			TablePrefix:   c.TablePrefix,
			WsNotifier:    Instance.WsServer.SendToDevice,
			WsBroadcaster: Instance.WsServer.Broadcast,
			SessionState:  Instance.WsServer.SessionState,
			OnlineDevices: Instance.WsServer.OnlineDeviceIDs,
		}

		// 初始化各个 Service
		Instance.NotifyService = service.NewNotificationService(baseService, c.Notify.MaxVisible, c.Notify.AutoDismiss)
		baseService.Notify = Instance.NotifyService

		Instance.DeviceService = service.NewDeviceService(baseService)
		Instance.ModerationService = service.NewModerationService(baseService, c.Moderation.BanThreshold, c.Moderation.ExtraTerms)
		Instance.PresenceService = service.NewPresenceService(baseService)
		Instance.CommunityService = service.NewCommunityService(baseService, Instance.ModerationService, Instance.PresenceService)
		Instance.DirectService = service.NewDirectMessageService(baseService, Instance.ModerationService, Instance.PresenceService,
			c.DirectMessage.RatePerMinute, c.DirectMessage.RecipientWindow)
		Instance.GradingService = service.NewGradingService(baseService)
		Instance.AdminService = service.NewAdminService(baseService)
		Instance.AuthService = service.NewAuthService(c.RDB) // 初始化鉴权服务

		// 设备断连且宽限期未重连：清弹窗队列 + 尽力删除 presence 行
		Instance.WsServer.onSessionExpired = func(deviceID string) {
			Instance.NotifyService.Reset(deviceID)
			if err := Instance.PresenceService.Remove(deviceID); err != nil {
				log.Printf("presence cleanup failed: %v", err)
			}
		}

		// 迁移表
		if err := Instance.AutoMigrate(); err != nil {
			log.Printf("AutoMigrate failed: %v", err)
		}

		// 绑定 WS 上行回调
		Instance.bindWsHandlersOnMessage()
	})

	return Instance
}

func (c *ThinkyEngine) AutoMigrate() error {
	db := c.config.DB
	log.Println("AutoMigrate...")
	return db.AutoMigrate(
		&model.Device{},
		&model.Presence{},
		&model.CommunityMessage{},
		&model.DirectMessage{},
		&model.AdminUser{},
		&model.Reviewer{},
		&model.ReviewerQuestion{},
	)
}

// ServeWS 处理 WebSocket 请求，需要传入 deviceID
// 昵称从设备表读取；设备未注册时按空昵称接入（注册接口会补齐）。
func (c *ThinkyEngine) ServeWS(w http.ResponseWriter, r *http.Request, deviceID string) {
	username := ""
	if d, err := c.DeviceService.GetDevice(deviceID); err == nil && d != nil {
		username = d.Username
	}
	c.WsServer.ServeWS(w, r, deviceID, username)
}

// GinAuthMiddleware 返回配置好的管理后台鉴权中间件
// 使用 ThinkyEngine 内部的 AuthService 和 Redis 配置
//
// 使用示例:
//
//	engine := thinky_sdk.NewEngine(...)
//	admin := r.Group("/admin")
//	admin.Use(engine.GinAuthMiddleware(nil)) // 使用默认配置
func (c *ThinkyEngine) GinAuthMiddleware(opt *middleware.AuthOptions) gin.HandlerFunc {
	return middleware.GinAuthMiddleware(c.AuthService, opt)
}

// GinDeviceMiddleware 返回匿名设备识别中间件
func (c *ThinkyEngine) GinDeviceMiddleware() gin.HandlerFunc {
	return middleware.GinDeviceMiddleware()
}
