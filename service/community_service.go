package service

import (
	"encoding/json"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/thinky-app/thinky-sdk/cons"
	"github.com/thinky-app/thinky-sdk/models"
)

const (
	maxCommunityMessageLen   = 500
	defaultRecentLimit       = 100
	adminBroadcastUsernameAs = "Thinky Team" // 管理员广播统一署名
)

// CommunityService 社区公共留言板
// 客户端用“实时推送 + 30s 总数对账轮询”双通道刷新：推送负责即时性，
// 轮询比对总数、不一致就整页重拉，兜住掉线期间丢掉的推送。
// 服务端只需提供 ListRecent（权威快照）与 Count（对账）两个原语。
type CommunityService struct {
	*Service
	msgDao     *models.CommunityMessageDAO
	deviceDao  *models.DeviceDAO
	Moderation *ModerationService
	Presence   *PresenceService
}

func NewCommunityService(s *Service, moderation *ModerationService, presence *PresenceService) *CommunityService {
	return &CommunityService{
		Service:    s,
		msgDao:     models.NewCommunityMessageDAO(s.DB),
		deviceDao:  models.NewDeviceDAO(s.DB),
		Moderation: moderation,
		Presence:   presence,
	}
}

// CommunityMessageDTO 留言（对外）
type CommunityMessageDTO struct {
	ID         uint64              `json:"id"`
	DeviceID   string              `json:"device_id"`
	Username   string              `json:"username"`
	Message    string              `json:"message"`
	AvatarURL  string              `json:"avatar_url,omitempty"`
	IsAdmin    bool                `json:"is_admin"`
	MentionAll bool                `json:"mention_all"`
	Reactions  map[string][]string `json:"reactions"`
	CreatedAt  time.Time           `json:"created_at"`
}

func toCommunityMessageDTO(m *models.CommunityMessage) *CommunityMessageDTO {
	if m == nil {
		return nil
	}
	reactions := map[string][]string{}
	if len(m.Reactions) > 0 {
		// 坏数据不致命：解析失败按空 map 处理
		_ = json.Unmarshal(m.Reactions, &reactions)
	}
	return &CommunityMessageDTO{
		ID:         m.ID,
		DeviceID:   m.DeviceID,
		Username:   m.Username,
		Message:    m.Message,
		AvatarURL:  m.AvatarURL,
		IsAdmin:    m.IsAdmin,
		MentionAll: m.MentionAll,
		Reactions:  reactions,
		CreatedAt:  m.CreatedAt,
	}
}

// PostMessage 发布一条社区留言。
// 返回值三选一：成功时 dto 非空；命中屏蔽词时 violation 非空（警告或封禁，
// 不算系统错误）；否则 err 非空。
func (s *CommunityService) PostMessage(deviceID, text string) (*CommunityMessageDTO, *ViolationResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, fmt.Errorf("message is required")
	}
	if len([]rune(text)) > maxCommunityMessageLen {
		return nil, nil, fmt.Errorf("message too long (max %d)", maxCommunityMessageLen)
	}

	d, err := s.deviceDao.FindByDeviceID(deviceID)
	if err != nil {
		return nil, nil, err
	}

	// 发送前必须重查封禁状态，不能信任客户端缓存
	if err := s.Moderation.EnsureNotBanned(deviceID); err != nil {
		return nil, nil, err
	}

	if s.Moderation.ScanForViolation(text) {
		violation, err := s.Moderation.RecordViolation(deviceID, d.Username)
		if err != nil {
			return nil, nil, err
		}
		s.pushModerationEvent(deviceID, violation)
		return nil, violation, nil
	}

	msg := &models.CommunityMessage{
		DeviceID:  deviceID,
		Username:  d.Username,
		Message:   html.EscapeString(text),
		AvatarURL: d.AvatarURL,
		IsAdmin:   d.IsAdmin,
		CreatedAt: time.Now(),
	}
	if err := s.msgDao.Create(msg); err != nil {
		return nil, nil, err
	}

	dto := toCommunityMessageDTO(msg)
	s.broadcastEvent(cons.EventCommunityMessage, dto)
	s.notifyCommunity(dto)
	return dto, nil, nil
}

// ListRecent 权威快照：最近 limit 条，按时间正序返回。
// 对账重拉永远走这里重新取全量排序，而不是增量合并。
func (s *CommunityService) ListRecent(limit int) ([]CommunityMessageDTO, error) {
	if limit <= 0 || limit > 500 {
		limit = defaultRecentLimit
	}
	rows, err := s.msgDao.FindRecent(limit)
	if err != nil {
		return nil, err
	}
	// DAO 返回倒序（取最新的 limit 条），这里翻转成正序
	out := make([]CommunityMessageDTO, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		out = append(out, *toCommunityMessageDTO(&rows[i]))
	}
	return out, nil
}

// MessageCount 留言总数（客户端 30s 对账轮询比对用）
func (s *CommunityService) MessageCount() (int64, error) {
	return s.msgDao.Count()
}

// toggleReactionEntry 纯函数：在 reactions map 上切换 (emoji, deviceID)。
// 有则删、无则加；emoji 下没人了就把键删掉。两次调用互为逆操作。
func toggleReactionEntry(reactions map[string][]string, emoji, deviceID string) map[string][]string {
	if reactions == nil {
		reactions = map[string][]string{}
	}
	ids := reactions[emoji]
	for i, id := range ids {
		if id == deviceID {
			ids = append(ids[:i], ids[i+1:]...)
			if len(ids) == 0 {
				delete(reactions, emoji)
			} else {
				reactions[emoji] = ids
			}
			return reactions
		}
	}
	reactions[emoji] = append(ids, deviceID)
	return reactions
}

// ToggleReaction 切换表情回应。
// 实现是对整个 reactions 字段的读改写：两个设备同时切换会丢失其中一次
// 更新（整 map last-write-wins）。这是沿用的已知限制，不在此处加乐观锁。
func (s *CommunityService) ToggleReaction(messageID uint64, emoji, deviceID string) (map[string][]string, error) {
	emoji = strings.TrimSpace(emoji)
	if messageID == 0 || emoji == "" || deviceID == "" {
		return nil, fmt.Errorf("message_id, emoji and device_id are required")
	}

	msg, err := s.msgDao.FindByID(messageID)
	if err != nil {
		return nil, err
	}

	reactions := map[string][]string{}
	if len(msg.Reactions) > 0 {
		_ = json.Unmarshal(msg.Reactions, &reactions)
	}
	reactions = toggleReactionEntry(reactions, emoji, deviceID)

	raw, err := json.Marshal(reactions)
	if err != nil {
		return nil, err
	}
	if err := s.msgDao.UpdateReactions(messageID, raw); err != nil {
		return nil, err
	}

	s.broadcastEvent(cons.EventCommunityReaction, map[string]any{
		"message_id": messageID,
		"reactions":  reactions,
	})
	return reactions, nil
}

// AdminBroadcast 管理员广播：以 @all 留言落库，并对五分钟内活跃的设备弹通知。
func (s *CommunityService) AdminBroadcast(text string) (*CommunityMessageDTO, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("message is required")
	}
	if len([]rune(text)) > maxCommunityMessageLen {
		return nil, fmt.Errorf("message too long (max %d)", maxCommunityMessageLen)
	}

	msg := &models.CommunityMessage{
		DeviceID:   "admin",
		Username:   adminBroadcastUsernameAs,
		Message:    html.EscapeString(text),
		IsAdmin:    true,
		MentionAll: true,
		CreatedAt:  time.Now(),
	}
	if err := s.msgDao.Create(msg); err != nil {
		return nil, err
	}

	dto := toCommunityMessageDTO(msg)
	s.broadcastEvent(cons.EventAdminBroadcast, dto)

	// 广播触达：最近 5 分钟出现过的设备
	if s.Notify != nil && s.Presence != nil {
		targets, err := s.Presence.ActiveDevices(WindowAdminBroadcast)
		if err != nil {
			log.Printf("admin broadcast targeting failed: %v", err)
			return dto, nil
		}
		for _, t := range targets {
			s.Notify.Publish(&Notification{
				DeviceID: t.DeviceID,
				Kind:     NotifyKindSystem,
				Title:    adminBroadcastUsernameAs,
				Body:     dto.Message,
			})
		}
	}
	return dto, nil
}

// pushModerationEvent 只推给违规设备本人：先告知违规次数，封禁时再补一条封禁事件。
func (s *CommunityService) pushModerationEvent(deviceID string, v *ViolationResult) {
	if s.WsNotifier == nil || v == nil {
		return
	}
	b, err := json.Marshal(map[string]any{"type": cons.EventViolation, "data": v})
	if err != nil {
		return
	}
	s.WsNotifier(deviceID, b)
	if v.IsNowBanned {
		bb, err := json.Marshal(map[string]any{"type": cons.EventBanned, "data": map[string]any{"device_id": deviceID}})
		if err != nil {
			return
		}
		s.WsNotifier(deviceID, bb)
	}
}

// broadcastEvent 向所有在线连接广播一条事件
func (s *CommunityService) broadcastEvent(eventType string, payload any) {
	if s.WsBroadcaster == nil {
		return
	}
	b, err := json.Marshal(map[string]any{"type": eventType, "data": payload})
	if err != nil {
		return
	}
	s.WsBroadcaster(b)
}

// notifyCommunity 给其他设备入队弹窗通知（发送者自己不通知；
// 正在社区页的设备由 Notify 内的抑制规则过滤）。
func (s *CommunityService) notifyCommunity(dto *CommunityMessageDTO) {
	if s.Notify == nil || dto == nil {
		return
	}
	s.Notify.PublishToOnline(&Notification{
		Kind:         NotifyKindCommunity,
		Title:        dto.Username,
		Body:         dto.Message,
		FromDeviceID: dto.DeviceID,
	}, dto.DeviceID)
}
