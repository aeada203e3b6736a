package main

import (
	"log"

	"github.com/thinky-app/thinky-sdk"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	// 1. 初始化数据库连接
	dsn := "root:password@tcp(127.0.0.1:3306)/thinky_db?charset=utf8mb4&parseTime=True&loc=Local"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("数据库连接失败:", err)
	}

	// Redis：私信限流和管理端 Token 都依赖它
	rdb := redis.NewClient(&redis.Options{
		Addr: "127.0.0.1:6379",
	})

	// 2. 初始化 Thinky Engine（单例模式，全局只需调用一次）
	engine := thinky_sdk.NewEngine(
		thinky_sdk.WithDB(db),
		thinky_sdk.WithRDB(rdb),
		thinky_sdk.WithTablePrefix("tk_"), // 自定义表前缀

		// 审核与限流默认值够用，需要调的话在这改：
		// thinky_sdk.WithModerationConfig(thinky_sdk.ModerationConfig{BanThreshold: 5}),
		// thinky_sdk.WithDirectMessageConfig(thinky_sdk.DirectMessageConfig{RatePerMinute: 10}),
	)

	// 3. 创建 Gin 路由
	r := gin.Default()

	// 设置 CORS（如果需要）
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Device-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// 注册 Swagger UI
	thinky_sdk.RegisterSwagger(r, "/swagger/*any")

	// 4. WebSocket 连接路由
	// 客户端连接：ws://localhost:6789/ws?device_id=xxxx
	r.GET("/ws", func(c *gin.Context) {
		deviceID := c.Query("device_id")
		if deviceID == "" {
			c.JSON(400, gin.H{"error": "缺少 device_id 参数"})
			return
		}

		// 升级为 WebSocket 连接
		engine.ServeWS(c.Writer, c.Request, deviceID)
	})

	// 5. API 路由组
	api := r.Group("/api/v1")

	// 设备模块（注册不需要设备头，其余接口带 X-Device-ID）
	deviceAPI := api.Group("/device")
	{
		deviceAPI.POST("/register", engine.GinHandleRegisterDevice)
		deviceAPI.GET("/me", engine.GinDeviceMiddleware(), engine.GinHandleGetDevice)
	}

	// 社区模块
	communityAPI := api.Group("/community")
	{
		communityAPI.GET("/messages", engine.GinHandleGetCommunityMessages)
		communityAPI.GET("/messages/count", engine.GinHandleGetCommunityMessageCount)
		communityAPI.POST("/message", engine.GinDeviceMiddleware(), engine.GinHandlePostCommunityMessage)
		communityAPI.POST("/reaction", engine.GinDeviceMiddleware(), engine.GinHandleToggleReaction)
	}

	// 私信模块
	directAPI := api.Group("/direct", engine.GinDeviceMiddleware())
	{
		directAPI.POST("/send", engine.GinHandleSendDirectMessage)
		directAPI.GET("/conversation", engine.GinHandleGetConversation)
		directAPI.POST("/read", engine.GinHandleMarkConversationRead)
		directAPI.GET("/unread", engine.GinHandleGetUnreadCounts)
		directAPI.GET("/devices", engine.GinHandleGetActiveDevices)
	}

	// 在线状态模块
	presenceAPI := api.Group("/presence")
	{
		presenceAPI.POST("/heartbeat", engine.GinDeviceMiddleware(), engine.GinHandleHeartbeat)
		presenceAPI.GET("/online-count", engine.GinHandleGetOnlineCount)
		presenceAPI.POST("/unload", engine.GinDeviceMiddleware(), engine.GinHandleUnload)
	}

	// 测验模块
	reviewerAPI := api.Group("/reviewer")
	{
		reviewerAPI.GET("/list", engine.GinHandleListReviewers)
		reviewerAPI.GET("/:id", engine.GinHandleGetReviewer)
		reviewerAPI.POST("/grade", engine.GinHandleGradeQuiz)
	}

	// 管理端模块（登录开放，其余走 Token 鉴权）
	adminAPI := api.Group("/admin")
	{
		adminAPI.POST("/login", engine.GinHandleAdminLogin)

		adminAuth := adminAPI.Group("", engine.GinAuthMiddleware(nil))
		{
			adminAuth.POST("/broadcast", engine.GinHandleAdminBroadcast)
			adminAuth.GET("/overview", engine.GinHandleAdminOverview)
			adminAuth.GET("/flagged", engine.GinHandleAdminFlaggedDevices)
			adminAuth.POST("/unban", engine.GinHandleAdminUnban)
			adminAuth.GET("/devices", engine.GinHandleAdminActiveDevices)
		}
	}

	// 6. 启动服务器
	log.Println("Thinky Server 启动在 :6789")
	log.Println("Swagger UI: http://localhost:6789/swagger/index.html")
	log.Println("WebSocket 地址: ws://localhost:6789/ws?device_id=YOUR_DEVICE_ID")
	if err := r.Run(":6789"); err != nil {
		log.Fatal("服务器启动失败:", err)
	}
}
