package cons

// 统一的 WS 下行事件类型（event_type）
const (
	EventCommunityMessage  = "community.message.created"  // 社区新留言
	EventCommunityReaction = "community.reaction.updated" // 表情回应变更
	EventDirectMessage     = "direct.message.created"     // 私信新消息
	EventDirectRead        = "direct.message.read"        // 私信已读回执
	EventAdminBroadcast    = "admin.broadcast"            // 管理员广播
)

// 通知/审核相关事件
const (
	EventNotifyShow    = "notify.show"        // 弹出一条通知
	EventNotifyDismiss = "notify.dismiss"     // 收起一条通知
	EventViolation     = "moderation.warning" // 违规警告（剩余次数）
	EventBanned        = "moderation.banned"  // 设备被封禁
)
