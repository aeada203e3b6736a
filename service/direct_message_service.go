package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/thinky-app/thinky-sdk/cons"
	"github.com/thinky-app/thinky-sdk/models"
	"github.com/thinky-app/thinky-sdk/repository"
	"gorm.io/gorm"
)

const (
	maxDirectMessageLen     = 1000
	defaultDMRatePerMinute  = 10
	defaultConversationSize = 50
)

// 发送失败的三种“设计内结果”，各自映射到不同的响应码，
// 客户端据此给出有针对性的提示而不是笼统的失败。
var (
	ErrRateLimited      = errors.New("too many messages, slow down")
	ErrRecipientOffline = errors.New("recipient is offline")
)

// suspiciousPatterns 私信内容的 XSS/SQL 特征初筛。
// 和屏蔽词不同：命中不算违规、不计数，直接按参数错误拒绝。
var suspiciousPatterns = []string{
	"<script", "</script", "javascript:", "onerror=", "onload=", "<iframe",
	"union select", "drop table", "insert into", "delete from", "' or '1'='1",
	" or 1=1", "--;",
}

func screenSuspicious(text string) bool {
	lowered := strings.ToLower(text)
	for _, p := range suspiciousPatterns {
		if strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}

// DirectMessageService 设备间私信
// 发送是受限的服务端路径：内容校验 → 审核闸门（含鲜活封禁重查）→
// Redis 固定窗口限流 → 收件方在线校验（15s 窗口）→ 落库。
// 在写入时就拒绝注定送不到的消息，而不是事后发现。
type DirectMessageService struct {
	*Service
	dmDao      *repository.DirectMessageDAO
	deviceDao  *models.DeviceDAO
	Moderation *ModerationService
	Presence   *PresenceService

	ratePerMinute   int
	recipientWindow time.Duration
}

func NewDirectMessageService(s *Service, moderation *ModerationService, presence *PresenceService, ratePerMinute int, recipientWindow time.Duration) *DirectMessageService {
	if ratePerMinute <= 0 {
		ratePerMinute = defaultDMRatePerMinute
	}
	if recipientWindow <= 0 {
		recipientWindow = WindowActiveDevices
	}
	return &DirectMessageService{
		Service:         s,
		dmDao:           repository.NewDirectMessageDAO(s.DB),
		deviceDao:       models.NewDeviceDAO(s.DB),
		Moderation:      moderation,
		Presence:        presence,
		ratePerMinute:   ratePerMinute,
		recipientWindow: recipientWindow,
	}
}

// DirectMessageDTO 私信（对外）
type DirectMessageDTO struct {
	ID           uint64    `json:"id"`
	FromDeviceID string    `json:"from_device_id"`
	ToDeviceID   string    `json:"to_device_id"`
	Message      string    `json:"message"`
	IsRead       bool      `json:"is_read"`
	CreatedAt    time.Time `json:"created_at"`
}

func toDirectMessageDTO(m *models.DirectMessage) *DirectMessageDTO {
	if m == nil {
		return nil
	}
	return &DirectMessageDTO{
		ID:           m.ID,
		FromDeviceID: m.FromDeviceID,
		ToDeviceID:   m.ToDeviceID,
		Message:      m.Message,
		IsRead:       m.IsRead,
		CreatedAt:    m.CreatedAt,
	}
}

func (s *DirectMessageService) rateKey(deviceID string) string {
	return "tk:dm_rate:" + deviceID
}

// allowSend Redis 固定窗口限流：每分钟每发送方 ratePerMinute 条。
// Redis 未配置时放行（单实例部署的降级，不作为安全边界）。
func (s *DirectMessageService) allowSend(ctx context.Context, deviceID string) (bool, error) {
	if s.RDB == nil {
		return true, nil
	}
	key := s.rateKey(deviceID)
	n, err := s.RDB.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		// 窗口首条，挂上过期时间
		_ = s.RDB.Expire(ctx, key, time.Minute).Err()
	}
	return n <= int64(s.ratePerMinute), nil
}

// Send 发送私信。
// violation 非空表示命中屏蔽词（警告/封禁）；err 可能是
// ErrBanned / ErrRateLimited / ErrRecipientOffline 或一般错误。
func (s *DirectMessageService) Send(ctx context.Context, from, to, text string) (*DirectMessageDTO, *ViolationResult, error) {
	text = strings.TrimSpace(text)
	if from == "" || to == "" || text == "" {
		return nil, nil, fmt.Errorf("from, to and message are required")
	}
	if from == to {
		return nil, nil, fmt.Errorf("cannot message yourself")
	}
	if len([]rune(text)) > maxDirectMessageLen {
		return nil, nil, fmt.Errorf("message too long (max %d)", maxDirectMessageLen)
	}
	if screenSuspicious(text) {
		return nil, nil, fmt.Errorf("message contains disallowed markup")
	}

	sender, err := s.deviceDao.FindByDeviceID(from)
	if err != nil {
		return nil, nil, err
	}

	// 鲜活封禁重查（另一个 tab 可能刚触发封禁）
	if err := s.Moderation.EnsureNotBanned(from); err != nil {
		return nil, nil, err
	}

	if s.Moderation.ScanForViolation(text) {
		violation, err := s.Moderation.RecordViolation(from, sender.Username)
		if err != nil {
			return nil, nil, err
		}
		return nil, violation, nil
	}

	ok, err := s.allowSend(ctx, from)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrRateLimited
	}

	// 收件方必须“现在就在”：最近 recipientWindow 内有过心跳
	p, err := s.Presence.Get(to)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRecipientOffline
		}
		return nil, nil, err
	}
	if !Fresh(p.LastSeen, time.Now(), s.recipientWindow) {
		return nil, nil, ErrRecipientOffline
	}

	msg := &models.DirectMessage{
		FromDeviceID: from,
		ToDeviceID:   to,
		Message:      html.EscapeString(text),
		CreatedAt:    time.Now(),
	}
	if err := s.dmDao.Create(msg); err != nil {
		return nil, nil, err
	}

	dto := toDirectMessageDTO(msg)
	s.pushPair(dto)
	s.notifyRecipient(sender.Username, dto)
	return dto, nil, nil
}

// Conversation 分页拉取双向会话历史（最新一页），并把来信标记已读。
// page 从 1 起；返回按时间正序。
func (s *DirectMessageService) Conversation(owner, peer string, page, size int) ([]DirectMessageDTO, error) {
	if owner == "" || peer == "" {
		return nil, fmt.Errorf("owner and peer are required")
	}
	if size <= 0 || size > 200 {
		size = defaultConversationSize
	}
	if page <= 0 {
		page = 1
	}

	rows, err := s.dmDao.FindPair(owner, peer, size, (page-1)*size)
	if err != nil {
		return nil, err
	}

	// 打开会话即已读（只第一页；翻旧页不重复打标）。
	// 打标失败不拖垮已经取到的历史，下次打开会话会再试。
	if page == 1 {
		if err := s.MarkRead(owner, peer); err != nil {
			log.Printf("mark read failed for %s<-%s: %v", owner, peer, err)
		}
	}

	out := make([]DirectMessageDTO, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		out = append(out, *toDirectMessageDTO(&rows[i]))
	}
	return out, nil
}

// MarkRead 把 peer 发给 owner 的未读消息置为已读，并回执给 peer。
func (s *DirectMessageService) MarkRead(owner, peer string) error {
	if err := s.dmDao.MarkRead(owner, peer); err != nil {
		return err
	}
	s.pushTo(peer, cons.EventDirectRead, map[string]string{"reader_device_id": owner})
	return nil
}

// UnreadCounts 按发送方统计未读私信数
func (s *DirectMessageService) UnreadCounts(owner string) (map[string]int64, error) {
	rows, err := s.dmDao.UnreadCounts(owner)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.FromDeviceID] = r.Count
	}
	return out, nil
}

// pushPair 新私信实时推给会话两端（发送方回显、接收方即时上屏）
func (s *DirectMessageService) pushPair(dto *DirectMessageDTO) {
	s.pushTo(dto.FromDeviceID, cons.EventDirectMessage, dto)
	s.pushTo(dto.ToDeviceID, cons.EventDirectMessage, dto)
}

func (s *DirectMessageService) pushTo(deviceID, eventType string, payload any) {
	if s.WsNotifier == nil {
		return
	}
	b, err := json.Marshal(map[string]any{"type": eventType, "data": payload})
	if err != nil {
		return
	}
	s.WsNotifier(deviceID, b)
}

// notifyRecipient 给收件方入队弹窗；正开着这个会话时由抑制规则过滤。
func (s *DirectMessageService) notifyRecipient(senderName string, dto *DirectMessageDTO) {
	if s.Notify == nil {
		return
	}
	s.Notify.Publish(&Notification{
		DeviceID:     dto.ToDeviceID,
		Kind:         NotifyKindDirect,
		Title:        senderName,
		Body:         dto.Message,
		FromDeviceID: dto.FromDeviceID,
	})
}
