package message

// WS 上行消息类型
const (
	WsTypeHeartbeat         = "heartbeat"          // 在线心跳（每 5s 一次）
	WsTypePage              = "page"               // 当前页面变更（通知抑制用）
	WsTypeConversationOpen  = "conversation_open"  // 打开某个私信会话
	WsTypeConversationClose = "conversation_close" // 关闭私信会话
	WsTypeNotifyDismiss     = "notify_dismiss"     // 手动关闭一条通知
)

// HeartbeatReq 心跳：上报设备环境与当前页面。
// 服务端据此 upsert Presence 行；重复上报是幂等更新而不是插入。
type HeartbeatReq struct {
	Type        string `json:"type"`         // heartbeat
	DeviceName  string `json:"device_name"`  // 设备名
	Browser     string `json:"browser"`      // 浏览器
	OS          string `json:"os"`           // 操作系统
	CurrentPage string `json:"current_page"` // 当前页面
}

// PageReq 页面变更：只更新会话内的 current_page，不落库（下次心跳带上）。
type PageReq struct {
	Type string `json:"type"` // page
	Page string `json:"page"` // 页面标识，如 "community"
}

// ConversationReq 私信会话打开/关闭。
// 打开后该会话的来信不再弹通知（抑制规则），并顺带把来信标记已读。
type ConversationReq struct {
	Type         string `json:"type"`           // conversation_open / conversation_close
	PeerDeviceID string `json:"peer_device_id"` // 对端设备
}

// NotifyDismissReq 手动关闭通知：释放一个可见槽位，可能触发队列中下一条展示。
type NotifyDismissReq struct {
	Type     string `json:"type"`      // notify_dismiss
	NotifyID string `json:"notify_id"` // 通知 ID
}
