package thinky_sdk

import (
	"context"
	"encoding/json"
	"log"

	"github.com/thinky-app/thinky-sdk/message"
	"github.com/thinky-app/thinky-sdk/service"
)

// bindWsHandlersOnMessage 将 WS 上行回调从 engine.go 抽出来，避免 engine.go 臃肿。
// 说明：放在 thinky_sdk 包根目录（同 WsServer/engine.go 同级），
// 这样可以直接访问 Instance 与 Client 类型，避免 service 层循环依赖。
//
// 上行消息只有轻量的状态包：心跳 / 页面变更 / 私信会话开关 / 通知关闭。
// 留言和私信的发送都走 HTTP（发送路径要过审核闸门和限流，不适合裸 WS）。
func (c *ThinkyEngine) bindWsHandlersOnMessage() {
	c.WsServer.onMessage = func(client *Client, msg []byte) {
		if client == nil {
			return
		}

		// 先探 type 再按类型二次解析
		var typeProbe struct {
			Type string `json:"type"`
		}
		_ = json.Unmarshal(msg, &typeProbe)

		switch typeProbe.Type {
		case message.WsTypeHeartbeat:
			var hb message.HeartbeatReq
			if err := json.Unmarshal(msg, &hb); err != nil {
				return
			}
			if client.session != nil && hb.CurrentPage != "" {
				client.session.SetPage(hb.CurrentPage)
			}
			// 管理员标记由服务端从设备行解析（镜像优先），不信任客户端
			_, isAdmin := Instance.DeviceService.CachedProfile(context.Background(), client.DeviceID)
			// 心跳落库失败只记日志：presence 靠下一次心跳自愈
			if err := Instance.PresenceService.Heartbeat(service.HeartbeatInput{
				DeviceID:    client.DeviceID,
				DeviceName:  hb.DeviceName,
				Browser:     hb.Browser,
				OS:          hb.OS,
				Username:    client.Username,
				IsAdmin:     isAdmin,
				CurrentPage: hb.CurrentPage,
			}); err != nil {
				log.Printf("heartbeat upsert failed: %v", err)
			}

		case message.WsTypePage:
			var req message.PageReq
			if err := json.Unmarshal(msg, &req); err != nil {
				return
			}
			if client.session != nil {
				client.session.SetPage(req.Page)
			}

		case message.WsTypeConversationOpen:
			var req message.ConversationReq
			if err := json.Unmarshal(msg, &req); err != nil || req.PeerDeviceID == "" {
				return
			}
			if client.session != nil {
				client.session.SetOpenPeer(req.PeerDeviceID)
			}
			// 打开会话顺带把对方的来信标记已读
			if err := Instance.DirectService.MarkRead(client.DeviceID, req.PeerDeviceID); err != nil {
				log.Printf("mark read failed: %v", err)
			}

		case message.WsTypeConversationClose:
			if client.session != nil {
				client.session.SetOpenPeer("")
			}

		case message.WsTypeNotifyDismiss:
			var req message.NotifyDismissReq
			if err := json.Unmarshal(msg, &req); err != nil || req.NotifyID == "" {
				return
			}
			Instance.NotifyService.Dismiss(client.DeviceID, req.NotifyID)

		default:
			log.Printf("unknown ws message type: %q", typeProbe.Type)
		}
	}
}
