package service

import (
	"fmt"
	"time"

	"github.com/thinky-app/thinky-sdk/models"
	"gorm.io/gorm/clause"
)

// 三个独立消费方使用三档不同的新鲜度窗口，刻意不统一：
// 私信目标列表要求“现在就在”，在线角标允许一分钟的迟滞，
// 管理员广播面向五分钟内出现过的设备。
const (
	WindowActiveDevices  = 15 * time.Second // 可私信的活跃设备列表
	WindowOnlineBadge    = 60 * time.Second // 在线人数角标
	WindowAdminBroadcast = 5 * time.Minute  // 管理员广播触达范围
)

// PresenceService 在线心跳
// 每设备一行，心跳是幂等 upsert；页面卸载时的删除只是尽力而为，
// 所有读方一律按 last_seen 新鲜度判断在线，绝不依赖行是否存在。
type PresenceService struct {
	*Service
}

func NewPresenceService(s *Service) *PresenceService {
	return &PresenceService{Service: s}
}

// HeartbeatInput 心跳载荷
type HeartbeatInput struct {
	DeviceID    string `json:"device_id"`
	DeviceName  string `json:"device_name"`
	Browser     string `json:"browser"`
	OS          string `json:"os"`
	Username    string `json:"username"`
	CurrentPage string `json:"current_page"`
	IsAdmin     bool   `json:"is_admin"`
}

// Heartbeat 上报一次心跳（按 device_id 冲突则更新）
func (s *PresenceService) Heartbeat(in HeartbeatInput) error {
	if in.DeviceID == "" {
		return fmt.Errorf("device_id is required")
	}
	now := time.Now()
	p := &models.Presence{
		DeviceID:    in.DeviceID,
		DeviceName:  in.DeviceName,
		Browser:     in.Browser,
		OS:          in.OS,
		Username:    in.Username,
		CurrentPage: in.CurrentPage,
		IsAdmin:     in.IsAdmin,
		LastSeen:    now,
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"device_name", "browser", "os", "username", "current_page", "is_admin", "last_seen", "updated_at",
		}),
	}).Create(p).Error
}

// Fresh 新鲜度判断：last_seen 落在 [now-window, now] 内算在线。
// 边界是闭区间：恰好等于 now-window 的心跳仍然算数。
func Fresh(lastSeen, now time.Time, window time.Duration) bool {
	return !lastSeen.Before(now.Add(-window))
}

// OnlineCount 统计窗口内的在线设备数
func (s *PresenceService) OnlineCount(window time.Duration) (int64, error) {
	var cnt int64
	cutoff := time.Now().Add(-window)
	err := s.DB.Model(&models.Presence{}).
		Where("last_seen >= ?", cutoff).
		Count(&cnt).Error
	return cnt, err
}

// PresenceDTO 在线设备信息（对外）
type PresenceDTO struct {
	DeviceID    string    `json:"device_id"`
	DeviceName  string    `json:"device_name"`
	Browser     string    `json:"browser"`
	OS          string    `json:"os"`
	Username    string    `json:"username"`
	CurrentPage string    `json:"current_page"`
	IsAdmin     bool      `json:"is_admin"`
	LastSeen    time.Time `json:"last_seen"`
}

// ActiveDevices 列出窗口内活跃的设备（私信目标列表/广播触达用）
func (s *PresenceService) ActiveDevices(window time.Duration) ([]PresenceDTO, error) {
	var rows []models.Presence
	cutoff := time.Now().Add(-window)
	err := s.DB.Where("last_seen >= ?", cutoff).
		Order("last_seen DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]PresenceDTO, 0, len(rows))
	for _, p := range rows {
		out = append(out, PresenceDTO{
			DeviceID:    p.DeviceID,
			DeviceName:  p.DeviceName,
			Browser:     p.Browser,
			OS:          p.OS,
			Username:    p.Username,
			CurrentPage: p.CurrentPage,
			IsAdmin:     p.IsAdmin,
			LastSeen:    p.LastSeen,
		})
	}
	return out, nil
}

// Get 读取单台设备的心跳行（私信发送前的在线校验用）
func (s *PresenceService) Get(deviceID string) (*models.Presence, error) {
	var p models.Presence
	if err := s.DB.Where("device_id = ?", deviceID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Remove 页面卸载时的尽力清理；失败无所谓，窗口机制兜底。
func (s *PresenceService) Remove(deviceID string) error {
	if deviceID == "" {
		return nil
	}
	return s.DB.Where("device_id = ?", deviceID).Delete(&models.Presence{}).Error
}
